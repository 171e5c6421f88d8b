package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govsupport-chatbot/internal/common/config"
	"govsupport-chatbot/internal/common/database"
	"govsupport-chatbot/internal/common/logger"
	"govsupport-chatbot/internal/engine/conversation"
	"govsupport-chatbot/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Chat: config.ChatConfig{
			SessionTTL:       60,
			SessionKeyPrefix: "chat:session:",
			Recommendations:  2,
		},
		Search:   config.SearchConfig{Index: "policies", MaxResults: 20, CacheTTL: 60, Timeout: 2000},
		Matching: config.MatchingConfig{CacheTTL: 60},
	}
}

func testConnections(t *testing.T, esBody string) (*Connections, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	db, _, err := sqlmock.New()
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(esBody))
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	conns := &Connections{
		Postgres:      &database.PostgresClient{DB: db},
		Redis:         &database.RedisClient{Client: rdb},
		Elasticsearch: &database.ElasticsearchClient{Client: es},
	}
	t.Cleanup(conns.Close)
	return conns, mr
}

const oneHit = `{"took":1,"hits":{"total":{"value":1},"hits":[
  {"_id":"policy_001","_score":1.0,"_source":{"title":"청년창업지원사업","eligibility":"만 39세 이하 청년","provider":"중소벤처기업부"}}
]}}`

func TestBuild_ConversationUsesRedisAndIndex(t *testing.T) {
	conns, mr := testConnections(t, oneHit)

	c, err := Build(testConfig(), conns, nil, nil, logger.NewTestLogger(t))
	require.NoError(t, err)

	ctx := context.Background()
	messages := []string{"안녕하세요", "동의합니다", "서울", "30대", "예"}
	var res *conversation.TurnResult
	for _, msg := range messages {
		res, err = c.Orchestrator.HandleTurn(ctx, "s-1", msg)
		require.NoError(t, err)
	}
	assert.True(t, mr.Exists("chat:session:s-1"))
	ttl := mr.TTL("chat:session:s-1")
	assert.Equal(t, time.Minute, ttl)

	require.NotNil(t, res)
	assert.Equal(t, conversation.TypeQuestion, res.Type)
	assert.Equal(t, "income_level", res.Field)
}

func TestBuild_RecommendationsUseSearchCache(t *testing.T) {
	conns, mr := testConnections(t, oneHit)

	c, err := Build(testConfig(), conns, nil, nil, logger.NewNoOpLogger())
	require.NoError(t, err)

	profile := models.UserProfile{Age: models.IntPtr(29)}
	recs, err := c.Searcher.Recommend(context.Background(), profile, 2)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "policy_001", recs[0].ID)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "search:"), keys[0])
}

func TestRetryWithBackoff(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("connection refused")
		}
		return nil
	}, 5, time.Millisecond, logger.NewTestLogger(t), "test op")

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_GivesUp(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		return fmt.Errorf("down")
	}, 3, time.Millisecond, logger.NewNoOpLogger(), "test op")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error { return fmt.Errorf("down") }, 5, time.Hour, logger.NewNoOpLogger(), "test op")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConnections_Checks(t *testing.T) {
	conns, mr := testConnections(t, `{}`)

	checks := conns.Checks()
	assert.Len(t, checks, 3)
	assert.NoError(t, checks["redis"](context.Background()))
	assert.NoError(t, checks["elasticsearch"](context.Background()))

	mr.Close()
	assert.Error(t, checks["redis"](context.Background()))

	assert.Empty(t, (&Connections{}).Checks())
}

func TestCompletionPublisher_Disabled(t *testing.T) {
	p, err := CompletionPublisher(context.Background(), testConfig(), logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.Nil(t, p)
}
