package main

import (
	"bytes"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govsupport-chatbot/pkg/registry"
)

func TestExportedName(t *testing.T) {
	tests := map[string]string{
		"sessionId":       "SessionID",
		"user_profile":    "UserProfile",
		"completionScore": "CompletionScore",
		"policy-url":      "PolicyURL",
		"message":         "Message",
	}
	for in, want := range tests {
		assert.Equal(t, want, exportedName(in), in)
	}
}

func TestDurationLiteral(t *testing.T) {
	assert.Equal(t, "2 * time.Minute", durationLiteral(2*60e9))
	assert.Equal(t, "10 * time.Second", durationLiteral(10e9))
	assert.Equal(t, "1500 * time.Millisecond", durationLiteral(1.5e9))
}

func TestGenerate_ProjectActivities(t *testing.T) {
	reg, err := registry.Load(filepath.Join("..", "..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)

	root := t.TempDir()
	for _, a := range reg.Activities {
		files, err := Generate(a, root, false)
		require.NoError(t, err, a.ID)
		assert.Len(t, files, 4)

		fset := token.NewFileSet()
		for _, f := range files {
			_, err := parser.ParseFile(fset, f, nil, parser.AllErrors)
			assert.NoError(t, err, f)
		}
	}

	models, err := os.ReadFile(filepath.Join(root, "chatbot", "process-chat-turn", "models.go"))
	require.NoError(t, err)
	assert.Contains(t, string(models), "package processchatturn")
	assert.Contains(t, string(models), "SessionID string `json:\"sessionId\"`")
	assert.Contains(t, string(models), "ProfileComplete bool")

	handler, err := os.ReadFile(filepath.Join(root, "chatbot", "process-chat-turn", "handler.go"))
	require.NoError(t, err)
	assert.Contains(t, string(handler), `TaskType = "process-chat-turn"`)
	assert.Contains(t, string(handler), "SESSION_STORE_UNAVAILABLE")

	config, err := os.ReadFile(filepath.Join(root, "chatbot", "process-chat-turn", "config.go"))
	require.NoError(t, err)
	assert.Contains(t, string(config), "Timeout: 10 * time.Second")
}

func TestGenerate_RefusesOverwrite(t *testing.T) {
	a := registry.Activity{ID: "notify-user", TaskType: "notify-user", Category: "profile", Timeout: "5s"}
	root := t.TempDir()

	_, err := Generate(a, root, false)
	require.NoError(t, err)

	_, err = Generate(a, root, false)
	assert.ErrorContains(t, err, "already exists")

	_, err = Generate(a, root, true)
	assert.NoError(t, err)
}

func TestGenerate_RejectsBadTimeout(t *testing.T) {
	a := registry.Activity{ID: "x", TaskType: "x", Category: "policy", Timeout: "soon"}

	_, err := Generate(a, t.TempDir(), false)
	assert.ErrorContains(t, err, "invalid timeout")
}

func TestRootCmd_UnknownActivity(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"no-such-activity", "--registry", filepath.Join("..", "..", "..", "configs", "activity-registry.json"), "-o", t.TempDir()})

	err := cmd.Execute()
	assert.ErrorContains(t, err, "not found")
}
