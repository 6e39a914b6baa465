package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"revista/backend/internal/apperr"
	"revista/backend/internal/logging"
	"revista/backend/internal/pagination"
)

type successResponse struct {
	Success    bool             `json:"success"`
	Data       any              `json:"data,omitempty"`
	Count      *int             `json:"count,omitempty"`
	Message    string           `json:"message,omitempty"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
}

type errorBody struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

type errorResponse struct {
	Success    bool      `json:"success"`
	Error      errorBody `json:"error"`
	StatusCode int       `json:"statusCode"`
	Stack      string    `json:"stack,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, successResponse{Success: true, Data: data, Message: message})
}

func writeList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	count := len(items)
	writeJSON(w, http.StatusOK, successResponse{Success: true, Data: items, Count: &count})
}

func writePage[T any](w http.ResponseWriter, page pagination.Envelope[T]) {
	meta := page.Pagination
	writeJSON(w, http.StatusOK, successResponse{Success: true, Data: page.Data, Pagination: &meta})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, successResponse{Success: true, Message: message})
}

// writeAppError is the single place failures become HTTP responses.
func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.From(err)
	status := appErr.Status()

	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context()).WithError(err).WithField("code", appErr.Code).Error("request failed")
	}

	resp := errorResponse{
		Error: errorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		},
		StatusCode: status,
	}
	if !s.production && appErr.Err != nil {
		resp.Stack = appErr.Error()
	}
	writeJSON(w, status, resp)
}

var errInvalidJSON = apperr.New(apperr.KindValidation, "INVALID_JSON", "Invalid JSON payload")

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errInvalidJSON.Wrap(err)
	}
	return nil
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
