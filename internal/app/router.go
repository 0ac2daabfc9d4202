package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	openapimiddleware "github.com/oapi-codegen/nethttp-middleware"

	"github.com/clinica-platform/apps/api/internal/config"
	"github.com/clinica-platform/apps/api/internal/gen/oapi"
	"github.com/clinica-platform/apps/api/internal/handlers"
	"github.com/clinica-platform/apps/api/internal/httpx"
	"github.com/clinica-platform/apps/api/internal/middleware"
)

const importPathPrefix = "/api/pacientes/convites/importacoes/"

// NewRouter mounts the API under /api. limiter guards the two write
// endpoints and may be nil.
func NewRouter(cfg config.Config, h *handlers.Server, limiter middleware.RateLimiter, logger *slog.Logger) (http.Handler, error) {
	doc, err := LoadSpec()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders(cfg.Env))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.LimitBodyBytesWithOverrides(cfg.APIMaxBodyBytes, []middleware.BodyLimitOverride{
		{PathPrefix: importPathPrefix, MaxBytes: cfg.ImportMaxFileBytes + 1<<20},
	}))

	api := chi.NewRouter()
	api.Use(openapimiddleware.OapiRequestValidatorWithOptions(doc, &openapimiddleware.Options{
		SilenceServersWarning: true,
		ErrorHandler: func(w http.ResponseWriter, message string, statusCode int) {
			requestID := w.Header().Get("X-Request-Id")
			httpx.WriteJSON(w, statusCode, httpx.ErrorEnvelope{
				Error:     httpx.ErrorBody{Code: "validation_error", Message: message},
				Detail:    message,
				RequestID: requestID,
			})
		},
	}))

	wrapper := oapi.ServerInterfaceWrapper{Handler: h, ErrorHandlerFunc: handlers.InvalidParamHandler}
	writeLimit := func(next http.Handler) http.Handler { return next }
	if limiter != nil {
		writeLimit = limiter.Middleware("Muitas requisições. Aguarde um minuto e tente novamente.")
	}

	api.Get("/health", wrapper.GetHealth)
	api.Route("/pacientes/convites", func(convites chi.Router) {
		convites.Get("/", wrapper.ListContacts)
		convites.Get("/exportar.csv", wrapper.ExportContacts)
		convites.Get("/importacoes/", wrapper.ListContactImports)
		convites.With(writeLimit).Post("/importacoes/", wrapper.ImportContacts)
		convites.Get("/importacoes/modelo.csv", wrapper.GetContactImportTemplate)
		convites.With(writeLimit).Post("/enviar/", wrapper.SendContactMessages)
		convites.Get("/mensagens/", wrapper.ListContactMessages)
		convites.Get("/{contatoId}/", wrapper.GetContact)
	})

	r.Mount("/api", api)
	return r, nil
}
