package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinica-platform/apps/api/internal/config"
	"github.com/clinica-platform/apps/api/internal/contactimport"
	gen "github.com/clinica-platform/apps/api/internal/gen/db"
	"github.com/clinica-platform/apps/api/internal/gen/oapi"
	"github.com/clinica-platform/apps/api/internal/handlers"
	"github.com/clinica-platform/apps/api/internal/httpx"
	"github.com/clinica-platform/apps/api/internal/memstore"
	"github.com/clinica-platform/apps/api/internal/middleware"
	"github.com/clinica-platform/apps/api/internal/outreach"
)

func newMemoryRouter(t *testing.T, limiter middleware.RateLimiter) (http.Handler, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{
		Env:                "test",
		CORSAllowedOrigins: []string{"http://localhost:5173"},
		APIMaxBodyBytes:    1 << 20,
		ImportMaxFileBytes: 1 << 20,
	}

	importer := contactimport.NewImporter(func(ctx context.Context, fn func(contactimport.Store) error) error {
		return store.InTx(ctx, func(tx *memstore.Tx) error { return fn(tx) })
	}, contactimport.Options{Logger: logger})
	svc := outreach.NewService(func(ctx context.Context, fn func(outreach.Store) error) error {
		return store.InTx(ctx, func(tx *memstore.Tx) error { return fn(tx) })
	}, logger)

	router, err := NewRouter(cfg, handlers.NewServer(cfg, store, importer, svc, nil, logger), limiter, logger)
	require.NoError(t, err)
	return router, store
}

func seedContact(t *testing.T, store *memstore.Store, name, phone string) int64 {
	t.Helper()
	var id int64
	require.NoError(t, store.InTx(context.Background(), func(tx *memstore.Tx) error {
		c, err := tx.CreateContact(context.Background(), gen.CreateContactParams{Name: name, Phone: phone, PhoneNormalized: phone})
		id = c.ID
		return err
	}))
	return id
}

func TestLoadSpec(t *testing.T) {
	doc, err := LoadSpec()
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/api/pacientes/convites/importacoes/"))
	assert.NotNil(t, doc.Paths.Find("/api/pacientes/convites/{contatoId}/"))
}

func TestHealthCarriesRequestID(t *testing.T) {
	router, _ := newMemoryRouter(t, nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
}

func TestRouterValidatesQueryAgainstSpec(t *testing.T) {
	router, _ := newMemoryRouter(t, nil)

	for _, target := range []string{
		"/api/pacientes/convites/?status=arquivado",
		"/api/pacientes/convites/?page=0",
		"/api/pacientes/convites/0/",
	} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code, target)
		var body httpx.ErrorEnvelope
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "validation_error", body.Error.Code, target)
		assert.NotEmpty(t, body.Detail, target)
	}
}

func TestRouterRoutesStaticPathsBeforeContactID(t *testing.T) {
	router, store := newMemoryRouter(t, nil)
	seedContact(t, store, "Ana Souza", "11999990000")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/pacientes/convites/importacoes/", nil))
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"count":0,"next":null,"previous":null,"results":[]}`, rr.Body.String())

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/pacientes/convites/mensagens/", nil))
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestRouterSendsMessagesAndRateLimits(t *testing.T) {
	limiter := middleware.NewIPRateLimiter(1, time.Minute)
	router, store := newMemoryRouter(t, limiter)
	id := seedContact(t, store, "Ana Souza", "11999990000")

	send := func() *httptest.ResponseRecorder {
		body := `{"contatos":[` + strconv.FormatInt(id, 10) + `],"mensagem":"Lembrete de retorno"}`
		req := httptest.NewRequest(http.MethodPost, "/api/pacientes/convites/enviar/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "203.0.113.7:5050"
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	first := send()
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	assert.JSONEq(t, `{"enviados":1,"falhas":[]}`, first.Body.String())

	second := send()
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Len(t, store.Messages(), 1)

	rr := httptest.NewRecorder()
	listReq := httptest.NewRequest(http.MethodGet, "/api/pacientes/convites/", nil)
	listReq.RemoteAddr = "203.0.113.7:5050"
	router.ServeHTTP(rr, listReq)
	assert.Equal(t, http.StatusOK, rr.Code, "reads are not rate limited")
}

func TestRouterCORSPreflight(t *testing.T) {
	router, _ := newMemoryRouter(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/pacientes/convites/enviar/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
}

func multipartImport(t *testing.T, filename string, content []byte, origin string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("arquivo", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	if origin != "" {
		require.NoError(t, mw.WriteField("origem", origin))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/pacientes/convites/importacoes/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestRouterAcceptsMultipartImport(t *testing.T) {
	cases := []struct {
		name     string
		content  []byte
		wantName string
	}{
		{name: "utf-8", content: []byte("nome;telefone\nJosé Araújo;11999990000\n"), wantName: "José Araújo"},
		{name: "latin-1", content: []byte("nome;telefone\nJos\xe9 Ara\xfajo;11999990000\n"), wantName: "José Araújo"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, store := newMemoryRouter(t, nil)
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, multipartImport(t, "feira.csv", tc.content, "Feira"))

			require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
			var body oapi.ImportResult
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, "Feira", body.OrigemUtilizada)
			assert.Equal(t, 1, body.Resumo.Importados)

			contacts := store.Contacts()
			require.Len(t, contacts, 1)
			assert.Equal(t, tc.wantName, contacts[0].Name)
		})
	}
}

func TestRouterRejectsImportWithoutFile(t *testing.T) {
	router, store := newMemoryRouter(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("origem", "Feira"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/pacientes/convites/importacoes/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, store.ImportRuns())
}
