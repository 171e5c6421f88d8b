// internal/search/query.go
package search

// Query narrows a policy search.
type Query struct {
	Text     string `json:"query"`
	Region   string `json:"region,omitempty"`
	Category string `json:"category,omitempty"`
	Size     int    `json:"size,omitempty"`
}

func buildQuery(q Query) map[string]interface{} {
	var must []interface{}
	var filter []interface{}

	if q.Text != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q.Text,
				"fields": []string{"title^3", "description^2", "eligibility"},
				"type":   "best_fields",
			},
		})
	} else {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	if q.Category != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"category": q.Category},
		})
	}

	// programs without regions are nationwide
	if q.Region != "" {
		filter = append(filter, map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"regions": q.Region}},
					map[string]interface{}{"bool": map[string]interface{}{
						"must_not": map[string]interface{}{"exists": map[string]interface{}{"field": "regions"}},
					}},
				},
				"minimum_should_match": 1,
			},
		})
	}

	boolQuery := map[string]interface{}{"must": must}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			map[string]interface{}{"_score": map[string]interface{}{"order": "desc"}},
			map[string]interface{}{"updatedAt": map[string]interface{}{"order": "desc", "unmapped_type": "date"}},
		},
	}
}
