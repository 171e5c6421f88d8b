// internal/api/policies.go
package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"govsupport-chatbot/internal/common/errors"
	"govsupport-chatbot/internal/common/validation"
	"govsupport-chatbot/internal/models"
)

const maxPolicyPage = 100

func (s *Server) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	if s.deps.Policies == nil {
		writeError(w, errors.NewDatabaseConnectionFailedError(errUnavailable))
		return
	}

	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > maxPolicyPage {
			writeError(w, errors.NewInvalidRequestError("limit must be an integer between 0 and 100"))
			return
		}
		limit = n
	}

	policies, err := s.deps.Policies.List(r.Context(), q.Get("category"), q.Get("region"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if policies == nil {
		policies = []models.Policy{}
	}
	writeJSON(w, http.StatusOK, policies)
}

func (s *Server) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	if s.deps.Policies == nil {
		writeError(w, errors.NewDatabaseConnectionFailedError(errUnavailable))
		return
	}
	p, err := s.deps.Policies.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	if s.deps.Policies == nil {
		writeError(w, errors.NewDatabaseConnectionFailedError(errUnavailable))
		return
	}

	var p models.Policy
	if err := s.decode(r, validation.SchemaPolicy, &p); err != nil {
		writeError(w, err)
		return
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	s.storePolicy(w, r, p, http.StatusCreated)
}

// handleUpdatePolicy replaces an existing policy. The path id wins over
// any id in the body.
func (s *Server) handleUpdatePolicy(w http.ResponseWriter, r *http.Request) {
	if s.deps.Policies == nil {
		writeError(w, errors.NewDatabaseConnectionFailedError(errUnavailable))
		return
	}

	id := r.PathValue("id")
	if _, err := s.deps.Policies.GetByID(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	var p models.Policy
	if err := s.decode(r, validation.SchemaPolicy, &p); err != nil {
		writeError(w, err)
		return
	}
	p.ID = id

	s.storePolicy(w, r, p, http.StatusOK)
}

func (s *Server) storePolicy(w http.ResponseWriter, r *http.Request, p models.Policy, status int) {
	if err := s.deps.Policies.Save(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}

	// the row is the source of truth; a stale index is repaired by re-import
	if s.deps.Indexer != nil {
		if err := s.deps.Indexer.Index(r.Context(), p); err != nil {
			s.logger.Warn("policy index update failed", map[string]interface{}{
				"policyId": p.ID,
				"error":    err,
			})
		}
	}

	s.logger.Info("policy saved", map[string]interface{}{"policyId": p.ID})
	writeJSON(w, status, p)
}
