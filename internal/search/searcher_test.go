package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govsupport-chatbot/internal/cache"
	"govsupport-chatbot/internal/common/config"
	"govsupport-chatbot/internal/common/errors"
	"govsupport-chatbot/internal/common/logger"
	"govsupport-chatbot/internal/models"
)

const searchResponse = `{
  "took": 4,
  "hits": {
    "total": {"value": 2},
    "hits": [
      {"_id": "p-busan", "_score": 2.1, "_source": {"id": "p-busan", "title": "부산 청년 지원", "eligibility": "부산 거주 청년", "provider": "부산시"}},
      {"_id": "p-youth", "_score": 1.3, "_source": {"title": "청년창업지원사업", "description": "만 39세 이하 청년의 창업을 지원하는 사업", "provider": "중소벤처기업부"}}
    ]
  }
}`

type fakeES struct {
	srv      *httptest.Server
	searches int32
	lastBody string
}

func newFakeES(t *testing.T, status int, body string) *fakeES {
	f := &fakeES{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")

		if strings.HasSuffix(r.URL.Path, "/_search") {
			atomic.AddInt32(&f.searches, 1)
			raw, _ := io.ReadAll(r.Body)
			f.lastBody = string(raw)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func newSearcher(t *testing.T, es *fakeES, c *cache.Cache) *PolicySearcher {
	t.Helper()
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{es.srv.URL}})
	require.NoError(t, err)
	cfg := config.SearchConfig{Index: "policies", MaxResults: 20, Timeout: 2000}
	return NewPolicySearcher(client, cfg, c, logger.NewTestLogger(t))
}

// ==========================
// Search
// ==========================

func TestSearch_ParsesHits(t *testing.T) {
	es := newFakeES(t, http.StatusOK, searchResponse)
	s := newSearcher(t, es, nil)

	res, err := s.Search(context.Background(), Query{Text: "청년", Region: "서울", Category: "창업지원"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 4, res.Took)
	require.Len(t, res.Policies, 2)
	assert.Equal(t, "p-busan", res.Policies[0].ID)
	assert.Equal(t, "p-youth", res.Policies[1].ID, "id falls back to _id")
	assert.Equal(t, 2.1, res.Policies[0].Score)
	assert.False(t, res.Cached)

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(es.lastBody), &sent))
	assert.Contains(t, es.lastBody, `"multi_match"`)
	assert.Contains(t, es.lastBody, `"category":"창업지원"`)
	assert.Contains(t, es.lastBody, `"regions":"서울"`)
}

func TestSearch_EmptyQueryMatchesAll(t *testing.T) {
	es := newFakeES(t, http.StatusOK, searchResponse)
	s := newSearcher(t, es, nil)

	_, err := s.Search(context.Background(), Query{})
	require.NoError(t, err)
	assert.Contains(t, es.lastBody, `"match_all"`)
	assert.NotContains(t, es.lastBody, `"filter"`)
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   errors.ErrorCode
	}{
		{"missing index", http.StatusNotFound, `{"error":{"type":"index_not_found_exception"}}`, errors.ErrCodeIndexNotFound},
		{"cluster error", http.StatusInternalServerError, `{"error":"boom"}`, errors.ErrCodeSearchQueryFailed},
		{"bad body", http.StatusOK, `not json`, errors.ErrCodeSearchQueryFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			es := newFakeES(t, tt.status, tt.body)
			s := newSearcher(t, es, nil)

			_, err := s.Search(context.Background(), Query{Text: "x"})
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), err.Error())
		})
	}
}

func TestSearch_UsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	es := newFakeES(t, http.StatusOK, searchResponse)
	s := newSearcher(t, es, cache.New(rdb, "search", "search:", time.Minute))

	first, err := s.Search(context.Background(), Query{Text: "청년"})
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := s.Search(context.Background(), Query{Text: "청년"})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Policies, second.Policies)
	assert.Equal(t, int32(1), atomic.LoadInt32(&es.searches))
}

// ==========================
// Recommend
// ==========================

func TestRecommend_RanksByEligibility(t *testing.T) {
	es := newFakeES(t, http.StatusOK, searchResponse)
	s := newSearcher(t, es, nil)

	profile := models.UserProfile{
		Region:         models.StringPtr("서울"),
		Age:            models.IntPtr(29),
		SupportPurpose: models.StringPtr("창업지원"),
	}
	recs, err := s.Recommend(context.Background(), profile, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 1.0, recs[0].MatchScore)
}

func TestRecommend_ZeroLimit(t *testing.T) {
	es := newFakeES(t, http.StatusOK, searchResponse)
	s := newSearcher(t, es, nil)

	recs, err := s.Recommend(context.Background(), models.UserProfile{}, 0)
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Equal(t, int32(0), atomic.LoadInt32(&es.searches))
}

func TestIndex(t *testing.T) {
	es := newFakeES(t, http.StatusCreated, `{"result":"created"}`)
	s := newSearcher(t, es, nil)

	require.NoError(t, s.Index(context.Background(), models.Policy{ID: "p1", Title: "A"}))

	bad := newFakeES(t, http.StatusBadRequest, `{"error":"mapping"}`)
	s = newSearcher(t, bad, nil)
	assert.True(t, errors.HasCode(s.Index(context.Background(), models.Policy{ID: "p1"}), errors.ErrCodeSearchQueryFailed))
}
