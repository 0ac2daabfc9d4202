package middleware

import (
	"fmt"
	"net/http"
	"strings"
)

// BodyLimitOverride raises the body limit for requests under PathPrefix,
// which may be given with or without the /api mount prefix.
type BodyLimitOverride struct {
	PathPrefix string
	MaxBytes   int64
}

// LimitBodyBytesWithOverrides caps request bodies at defaultMax, or at the
// first matching override. A declared Content-Length above the cap is
// refused with 413 before the body is read; chunked bodies are cut by
// http.MaxBytesReader and surface as *http.MaxBytesError in the handler.
func LimitBodyBytesWithOverrides(defaultMax int64, overrides []BodyLimitOverride) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			maxBytes := bodyLimitFor(r.URL.Path, defaultMax, overrides)
			if maxBytes <= 0 || r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > maxBytes {
				rejection{
					status:  http.StatusRequestEntityTooLarge,
					code:    "payload_too_large",
					message: fmt.Sprintf("Requisição excede o limite de %d bytes.", maxBytes),
					details: map[string]any{"maxBytes": maxBytes},
				}.write(w, r)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

func bodyLimitFor(path string, defaultMax int64, overrides []BodyLimitOverride) int64 {
	apiPath := strings.TrimPrefix(path, "/api")
	for _, o := range overrides {
		if o.PathPrefix == "" || o.MaxBytes <= 0 {
			continue
		}
		if strings.HasPrefix(path, o.PathPrefix) || strings.HasPrefix(apiPath, o.PathPrefix) {
			return o.MaxBytes
		}
	}
	return defaultMax
}
