// internal/api/respond.go
package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"govsupport-chatbot/internal/common/errors"
)

type errorBody struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		Details   string `json:"details,omitempty"`
		Retryable bool   `json:"retryable"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	stdErr := errors.Normalize(err)

	var body errorBody
	body.Error.Code = string(stdErr.Code)
	body.Error.Message = stdErr.Message
	body.Error.Details = stdErr.Details
	body.Error.Retryable = stdErr.Retryable

	writeJSON(w, errors.HTTPStatus(stdErr.Code), body)
}

var errUnavailable = stderrors.New("backend not configured")
