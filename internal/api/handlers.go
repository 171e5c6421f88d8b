// internal/api/handlers.go
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"govsupport-chatbot/internal/common/errors"
	"govsupport-chatbot/internal/common/validation"
	"govsupport-chatbot/internal/eligibility"
	"govsupport-chatbot/internal/engine/conditions"
	"govsupport-chatbot/internal/engine/questions"
	"govsupport-chatbot/internal/models"
	"govsupport-chatbot/internal/search"
)

const maxBodyBytes = 1 << 20

type chatRequest struct {
	Message     string                 `json:"message"`
	SessionID   string                 `json:"session_id"`
	PolicyText  string                 `json:"policyText"`
	UserProfile map[string]interface{} `json:"userProfile"`
}

type questionRequest struct {
	UserProfile    map[string]interface{} `json:"userProfile"`
	QuestionsAsked []string               `json:"questions_asked"`
}

type matchRequest struct {
	UserProfile map[string]interface{} `json:"userProfile"`
	PolicyText  string                 `json:"policyText"`
	PolicyID    string                 `json:"policyId"`
}

type extractRequest struct {
	PolicyText string `json:"policyText"`
}

// decode reads the body, checks it against schema and fills dst.
func (s *Server) decode(r *http.Request, schema string, dst interface{}) error {
	raw, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		return errors.NewInvalidRequestError("request body too large or unreadable")
	}
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return errors.NewInvalidRequestError("request body must be a JSON object")
	}
	if err := s.validate(schema, doc, errors.NewInvalidRequestError); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.NewInvalidRequestError(err.Error())
	}
	return nil
}

func (s *Server) validate(schema string, doc interface{}, wrap func(string) *errors.StandardError) error {
	if s.deps.Validator == nil {
		return nil
	}
	res, err := s.deps.Validator.Validate(schema, doc)
	if err != nil {
		return errors.NewInternalError(err)
	}
	if !res.Valid {
		return wrap(res.Summary())
	}
	return nil
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := s.decode(r, validation.SchemaChatRequest, &req); err != nil {
		writeError(w, err)
		return
	}

	// stateless prompt mode used by the policy detail page
	if req.PolicyText != "" && req.UserProfile != nil {
		profile := models.ProfileFromMap(req.UserProfile)
		writeJSON(w, http.StatusOK, map[string]string{"question": questions.SimplePrompt(profile)})
		return
	}

	if s.deps.Chat == nil {
		writeError(w, errors.NewSessionStoreUnavailableError("chat", errUnavailable))
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	res, err := s.deps.Chat.HandleTurn(r.Context(), sessionID, req.Message)
	if err != nil {
		s.logger.Error("chat turn failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err,
		})
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := s.decode(r, validation.SchemaExtractRequest, &req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conditions.Extract(req.PolicyText))
}

func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := s.decode(r, validation.SchemaChatRequest, &req); err != nil {
		writeError(w, err)
		return
	}

	profile := models.ProfileFromMap(req.UserProfile)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"question": questions.PolicyPrompt(profile),
		"next":     s.deps.Selector.Next(profile, req.QuestionsAsked),
	})
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := s.decode(r, validation.SchemaMatchRequest, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.UserProfile == nil {
		req.UserProfile = map[string]interface{}{}
	}
	if err := s.validate(validation.SchemaUserProfile, req.UserProfile, errors.NewProfileValidationFailedError); err != nil {
		writeError(w, err)
		return
	}

	checker := s.deps.Eligibility
	if checker == nil {
		checker = eligibility.NewChecker(nil, nil, s.logger)
	}
	out, err := checker.Check(r.Context(), eligibility.Request{
		Profile:    models.ProfileFromMap(req.UserProfile),
		PolicyText: req.PolicyText,
		PolicyID:   req.PolicyID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.deps.Searcher == nil {
		writeError(w, errors.NewSearchQueryFailedError("policy_search", errUnavailable))
		return
	}

	q := r.URL.Query()
	query := search.Query{
		Text:     q.Get("q"),
		Region:   q.Get("region"),
		Category: q.Get("category"),
	}
	if size := q.Get("size"); size != "" {
		n, err := strconv.Atoi(size)
		if err != nil || n < 0 {
			writeError(w, errors.NewInvalidRequestError("size must be a non-negative integer"))
			return
		}
		query.Size = n
	}

	res, err := s.deps.Searcher.Search(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	if s.deps.Profiles == nil {
		writeError(w, errors.NewDatabaseConnectionFailedError(errUnavailable))
		return
	}
	stored, err := s.deps.Profiles.Get(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	if s.deps.Profiles == nil {
		writeError(w, errors.NewDatabaseConnectionFailedError(errUnavailable))
		return
	}

	var doc map[string]interface{}
	if err := s.decode(r, validation.SchemaUserProfile, &doc); err != nil {
		if stdErr, ok := errors.As(err); ok && stdErr.Code == errors.ErrCodeInvalidRequest {
			err = errors.NewProfileValidationFailedError(stdErr.Details)
		}
		writeError(w, err)
		return
	}

	stored, err := s.deps.Profiles.Upsert(r.Context(), r.PathValue("userId"), models.ProfileFromMap(doc))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	if s.deps.Profiles == nil {
		writeError(w, errors.NewDatabaseConnectionFailedError(errUnavailable))
		return
	}
	if err := s.deps.Profiles.Delete(r.Context(), r.PathValue("userId")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if s.deps.Sessions == nil {
		writeError(w, errors.NewSessionStoreUnavailableError("delete", errUnavailable))
		return
	}
	if err := s.deps.Sessions.Delete(r.Context(), r.PathValue("sessionId")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	results := make(map[string]string, len(s.deps.Checks))
	for name, check := range s.deps.Checks {
		if err := check(r.Context()); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	writeJSON(w, status, map[string]interface{}{
		"status": state,
		"checks": results,
		"time":   time.Now().Format(time.RFC3339),
	})
}
