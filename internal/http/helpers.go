package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"expensetracker/internal/core"
	"expensetracker/internal/currency"
	applog "expensetracker/internal/log"
)

type errorBody struct {
	Error string `json:"error"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case core.IsValidationError(err), errors.Is(err, currency.ErrNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrExpenseNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadBody):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError responds with the status for err. Internal failures are
// logged and their message is not exposed.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		applog.NewStructuredLogger(applog.FromContext(r.Context())).LogError(r.Context(),
			"Request failed", err, applog.ComponentHTTP, op,
			applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, "", "", ""))
		msg = http.StatusText(status)
	}

	if wantsHTML(r) {
		ErrorResponse(status, msg).Write(w)
		return
	}
	writeJSON(w, status, errorBody{Error: msg})
}

// wantsHTML reports whether the client is a browser form or an HTMX
// request rather than an API client.
func wantsHTML(r *http.Request) bool {
	return isHTMX(r) || isFormPost(r)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// isFormPost is true for a plain browser form submission, which is
// answered with a redirect instead of JSON.
func isFormPost(r *http.Request) bool {
	if isHTMX(r) {
		return false
	}
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") &&
		strings.Contains(r.Header.Get("Accept"), "text/html")
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}
