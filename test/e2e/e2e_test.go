// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"govsupport-chatbot/internal/api"
	"govsupport-chatbot/internal/app"
	"govsupport-chatbot/internal/common/camunda"
	"govsupport-chatbot/internal/common/config"
	"govsupport-chatbot/internal/common/errors"
	apiclient "govsupport-chatbot/internal/common/http"
	"govsupport-chatbot/internal/common/logger"
	"govsupport-chatbot/internal/common/observability"
	"govsupport-chatbot/internal/engine/conversation"
	"govsupport-chatbot/internal/models"
	"govsupport-chatbot/internal/search"
)

// These tests talk to the Postgres, Redis and Elasticsearch instances
// from docker-compose. Set E2E_ENABLED=1 to run them.

var zapLog *zap.Logger

const seededPolicyID = "e2e-youth-startup"

func TestMain(m *testing.M) {
	if os.Getenv("E2E_ENABLED") == "" {
		os.Exit(0)
	}
	zapLog, _ = zap.NewDevelopment()
	code := m.Run()
	_ = zapLog.Sync()
	os.Exit(code)
}

type stack struct {
	cfg    *config.Config
	conns  *app.Connections
	comps  *app.Components
	server *httptest.Server
}

func setup(t *testing.T) *stack {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	require.NoError(t, err)

	log := logger.NewZapAdapter(zapLog)
	obs := observability.New("e2e", observability.WithRegisterer(prometheus.NewRegistry()), observability.WithoutGlobal())
	t.Cleanup(obs.Shutdown)

	conns, err := app.Connect(ctx, cfg, log)
	require.NoError(t, err, "backing stores must be up (docker compose up -d)")
	t.Cleanup(conns.Close)
	require.NoError(t, conns.Prepare(ctx, cfg))

	comps, err := app.Build(cfg, conns, nil, obs, log)
	require.NoError(t, err)

	checks := make(map[string]api.ReadinessCheck)
	for name, check := range conns.Checks() {
		checks[name] = check
	}
	srv := api.NewServer(cfg, api.Deps{
		Chat:        comps.Orchestrator,
		Sessions:    comps.Sessions,
		Eligibility: comps.Checker,
		Profiles:    comps.Profiles,
		Policies:    comps.Policies,
		Indexer:     comps.Searcher,
		Searcher:    comps.Searcher,
		Selector:    comps.Selector,
		Validator:   comps.Validator,
		Checks:      checks,
		Obs:         obs,
		Logger:      log,
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &stack{cfg: cfg, conns: conns, comps: comps, server: ts}
}

// seedPolicy writes through the API so the row and the index stay in step.
func seedPolicy(t *testing.T, s *stack) {
	t.Helper()
	p := models.Policy{
		ID:          seededPolicyID,
		Title:       "청년창업지원사업",
		Description: "만 39세 이하 예비 창업자 사업화 자금 지원",
		Provider:    "중소벤처기업부",
		Eligibility: "만 39세 이하, 서울 거주, 창업 예정자",
		Regions:     []string{"서울"},
		Category:    "창업지원",
	}
	status, out := postJSON(t, s.server.URL+"/policies", p)
	require.Equal(t, http.StatusCreated, status, out)
	require.Equal(t, seededPolicyID, out["id"])

	stored, err := s.comps.Policies.GetByID(context.Background(), seededPolicyID)
	require.NoError(t, err)
	assert.Equal(t, p.Title, stored.Title)
}

func postJSON(t *testing.T, url string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

// ============================================================================
// Tests
// ============================================================================

func TestE2E_Readiness(t *testing.T) {
	s := setup(t)

	client := apiclient.NewClient(s.server.URL, 5*time.Second)
	require.NoError(t, client.Ready(context.Background()))
}

func TestE2E_ZeebeTopology(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	if cfg.ValidateWorkers() != nil {
		t.Skip("camunda.broker_address not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := camunda.Connect(ctx, cfg.Camunda, camunda.RetryConfig{MaxRetries: 2, BaseDelay: time.Second, MaxDelay: 2 * time.Second}, logger.NewZapAdapter(zapLog))
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, camunda.HealthCheck(ctx, client, 5*time.Second))
}

func TestE2E_ConversationRecommendsSeededPolicy(t *testing.T) {
	s := setup(t)
	seedPolicy(t, s)

	ctx := context.Background()
	client := apiclient.NewClient(s.server.URL, 10*time.Second)
	sessionID := "e2e-" + uuid.NewString()

	greeting, err := client.HandleTurn(ctx, sessionID, "")
	require.NoError(t, err)
	assert.Equal(t, conversation.MessageConsentRequest, greeting.Message)

	var last *conversation.TurnResult
	for _, msg := range []string{"동의합니다", "서울", "30대", "사업자등록 되어있어요", "일반", "체납 없음"} {
		last, err = client.HandleTurn(ctx, sessionID, msg)
		require.NoError(t, err, "turn %q", msg)
		if last.Type == conversation.TypeComplete {
			break
		}
	}
	require.NotNil(t, last)
	assert.Equal(t, conversation.TypeComplete, last.Type)
	assert.Equal(t, conversation.MessageComplete, last.Message)
	require.NotNil(t, last.Profile.Region)
	assert.Equal(t, "서울", *last.Profile.Region)

	var found bool
	for _, rec := range last.Recommendations {
		if rec.ID == seededPolicyID {
			found = true
		}
	}
	assert.True(t, found, "seeded policy should be recommended: %+v", last.Recommendations)

	// the session outlives the HTTP request
	stored, err := s.comps.Sessions.Load(ctx, sessionID)
	require.NoError(t, err)
	assert.True(t, stored.IsComplete())
}

func TestE2E_MatchAndSearch(t *testing.T) {
	s := setup(t)
	seedPolicy(t, s)

	status, out := postJSON(t, s.server.URL+"/match", map[string]interface{}{
		"userProfile": map[string]interface{}{"age": 29, "region": "서울"},
		"policyId":    seededPolicyID,
	})
	require.Equal(t, http.StatusOK, status, out)
	assert.Equal(t, true, out["eligible"])
	assert.Equal(t, seededPolicyID, out["policyId"])

	res, err := s.comps.Searcher.Search(context.Background(), search.Query{Text: "청년창업", Region: "서울"})
	require.NoError(t, err)
	ids := make([]string, 0, len(res.Policies))
	for _, h := range res.Policies {
		ids = append(ids, h.ID)
	}
	assert.Contains(t, ids, seededPolicyID)
}

func TestE2E_ProfileRoundTrip(t *testing.T) {
	s := setup(t)
	userID := "e2e-" + uuid.NewString()
	t.Cleanup(func() { _ = s.comps.Profiles.Delete(context.Background(), userID) })

	raw, _ := json.Marshal(map[string]interface{}{"region": "경기", "income_level": "일반"})
	req, err := http.NewRequest(http.MethodPut, s.server.URL+"/profiles/"+userID, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stored, err := s.comps.Profiles.Get(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, stored.Profile.Region)
	assert.Equal(t, "경기", *stored.Profile.Region)

	req, err = http.NewRequest(http.MethodDelete, s.server.URL+"/profiles/"+userID, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, err = s.comps.Profiles.Get(context.Background(), userID)
	assert.True(t, errors.HasCode(err, errors.ErrCodeProfileNotFound))
}
