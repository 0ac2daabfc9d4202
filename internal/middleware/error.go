package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// rejection is a refusal issued before a request reaches a handler. It is
// rendered in the same envelope as httpx.WriteError, which cannot be used
// here because httpx imports this package.
type rejection struct {
	status     int
	code       string
	message    string
	details    any
	retryAfter time.Duration
}

func (rj rejection) write(w http.ResponseWriter, r *http.Request) {
	if rj.retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(rj.retryAfter.Round(time.Second)/time.Second)))
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(rj.status)

	body := map[string]any{
		"code":    rj.code,
		"message": rj.message,
	}
	if rj.details != nil {
		body["details"] = rj.details
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":     body,
		"detail":    rj.message,
		"requestId": RequestIDFromContext(r.Context()),
	})
}
