// Package search queries the policy index and ranks programs for a
// user profile.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"govsupport-chatbot/internal/cache"
	"govsupport-chatbot/internal/common/config"
	"govsupport-chatbot/internal/common/errors"
	"govsupport-chatbot/internal/common/logger"
	"govsupport-chatbot/internal/engine/matcher"
	"govsupport-chatbot/internal/models"
)

// Hit is a policy with its relevance score.
type Hit struct {
	models.Policy
	Score float64 `json:"score"`
}

// Result is one page of search hits.
type Result struct {
	Policies []Hit `json:"policies"`
	Total    int   `json:"total"`
	Took     int   `json:"took"`
	Cached   bool  `json:"cached"`
}

type esResponse struct {
	Took int `json:"took"`
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string        `json:"_id"`
			Score  float64       `json:"_score"`
			Source models.Policy `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// PolicySearcher runs searches against the policy index.
type PolicySearcher struct {
	client     *elasticsearch.Client
	index      string
	maxResults int
	timeout    time.Duration
	cache      *cache.Cache
	logger     logger.Logger
}

func NewPolicySearcher(client *elasticsearch.Client, cfg config.SearchConfig, c *cache.Cache, log logger.Logger) *PolicySearcher {
	return &PolicySearcher{
		client:     client,
		index:      cfg.Index,
		maxResults: cfg.MaxResults,
		timeout:    config.GetDuration(cfg.Timeout),
		cache:      c,
		logger:     log.WithFields(map[string]interface{}{"component": "policy-search"}),
	}
}

// Search returns matching policies, newest first among equal scores.
func (s *PolicySearcher) Search(ctx context.Context, q Query) (*Result, error) {
	if q.Size <= 0 || q.Size > s.maxResults {
		q.Size = s.maxResults
	}

	key := cache.Key(s.index, q.Text, q.Region, q.Category, strconv.Itoa(q.Size))
	var cached Result
	if s.cache.Get(ctx, key, &cached) {
		cached.Cached = true
		return &cached, nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	body, err := json.Marshal(buildQuery(q))
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	size := q.Size
	res, err := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}.Do(ctx, s.client)
	if err != nil {
		if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errors.NewSearchTimeoutError("policy_search")
		}
		return nil, errors.NewSearchQueryFailedError("policy_search", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, errors.NewIndexNotFoundError(s.index)
	}
	if res.IsError() {
		return nil, errors.NewSearchQueryFailedError("policy_search", fmt.Errorf("status %s", res.Status()))
	}

	var parsed esResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewSearchQueryFailedError("policy_search", err)
	}

	out := &Result{
		Policies: make([]Hit, 0, len(parsed.Hits.Hits)),
		Total:    parsed.Hits.Total.Value,
		Took:     parsed.Took,
	}
	for _, h := range parsed.Hits.Hits {
		p := h.Source
		if p.ID == "" {
			p.ID = h.ID
		}
		out.Policies = append(out.Policies, Hit{Policy: p, Score: h.Score})
	}

	if err := s.cache.Set(ctx, key, out); err != nil {
		s.logger.Warn("search cache write failed", map[string]interface{}{"error": err})
	}

	s.logger.Debug("policy search", map[string]interface{}{
		"query":  q.Text,
		"region": q.Region,
		"hits":   len(out.Policies),
		"total":  out.Total,
	})
	return out, nil
}

// Recommend ranks indexed policies by eligibility score for profile.
func (s *PolicySearcher) Recommend(ctx context.Context, profile models.UserProfile, limit int) ([]models.Recommendation, error) {
	if limit <= 0 {
		return nil, nil
	}

	q := Query{Size: limit * 3}
	if profile.Region != nil {
		q.Region = *profile.Region
	}
	if profile.SupportPurpose != nil {
		q.Category = *profile.SupportPurpose
	}

	res, err := s.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	recs := make([]models.Recommendation, 0, len(res.Policies))
	for _, h := range res.Policies {
		score := matcher.ScoreText(profile, h.Text())
		recs = append(recs, models.Recommendation{
			ID:          h.ID,
			Title:       h.Title,
			Description: h.Description,
			Provider:    h.Provider,
			MatchScore:  score.Score,
		})
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].MatchScore > recs[j].MatchScore
	})
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// Index writes p into the policy index and makes it searchable
// immediately.
func (s *PolicySearcher) Index(ctx context.Context, p models.Policy) error {
	body, err := json.Marshal(p)
	if err != nil {
		return errors.NewInternalError(err)
	}

	res, err := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: p.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}.Do(ctx, s.client)
	if err != nil {
		return errors.NewSearchQueryFailedError("index_policy", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewSearchQueryFailedError("index_policy", fmt.Errorf("status %s", res.Status()))
	}
	return nil
}
