package main

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govsupport-chatbot/pkg/registry"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRegistryUpdater_AddUpdateList(t *testing.T) {
	now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	path := filepath.Join(t.TempDir(), "registry.json")

	out, err := run(t, "add", "-p", path,
		"--id", "search-policies", "--displayName", "Search Policies",
		"--description", "Full-text policy search", "--category", "policy",
		"--taskType", "search-policies", "--status", "completed")
	require.NoError(t, err)
	assert.Contains(t, out, "Added activity: search-policies")

	_, err = run(t, "update", "-p", path, "--id", "search-policies", "--field", "retries", "--value", "3")
	require.NoError(t, err)

	out, err = run(t, "list", "-p", path)
	require.NoError(t, err)
	assert.Contains(t, out, "search-policies")
	assert.Contains(t, out, "completed")

	reg, err := registry.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-02T03:04:05Z", reg.LastUpdated)
	assert.Equal(t, 3, reg.Activities[0].Retries)
}

func TestRegistryUpdater_Validate(t *testing.T) {
	path := filepath.Join("..", "..", "..", "configs", "activity-registry.json")

	out, err := run(t, "validate", "-p", path, "--served", "process-chat-turn,update-user-profile")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 6 activities")

	_, err = run(t, "validate", "-p", path, "--served", "send-newsletter")
	assert.Error(t, err)
}

func TestRegistryUpdater_AddRequiresFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")

	_, err := run(t, "add", "-p", path, "--id", "x")
	assert.Error(t, err)
}
