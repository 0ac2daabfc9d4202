package httpx

import (
	"net/http"

	"github.com/clinica-platform/apps/api/internal/middleware"
)

// ErrorEnvelope repeats the message in Detail for the front desk client,
// which reads only that field.
type ErrorEnvelope struct {
	Error     ErrorBody `json:"error"`
	Detail    string    `json:"detail"`
	RequestID string    `json:"requestId"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	WriteJSON(w, status, ErrorEnvelope{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
		Detail:    message,
		RequestID: middleware.RequestIDFromContext(r.Context()),
	})
}
