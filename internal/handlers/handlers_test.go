package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinica-platform/apps/api/internal/config"
	"github.com/clinica-platform/apps/api/internal/contactimport"
	gen "github.com/clinica-platform/apps/api/internal/gen/db"
	"github.com/clinica-platform/apps/api/internal/gen/oapi"
	"github.com/clinica-platform/apps/api/internal/httpx"
	"github.com/clinica-platform/apps/api/internal/memstore"
	"github.com/clinica-platform/apps/api/internal/outreach"
)

var fixedNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

const importPath = "/api/pacientes/convites/importacoes/"

type recordingArchive struct {
	keys []string
	data [][]byte
	err  error
}

func (a *recordingArchive) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if a.err != nil {
		return a.err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	a.keys = append(a.keys, key)
	a.data = append(a.data, body)
	return nil
}

func newTestServer(t *testing.T) (*Server, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	store.SetClock(func() time.Time { return fixedNow })

	importTx := func(ctx context.Context, fn func(contactimport.Store) error) error {
		return store.InTx(ctx, func(tx *memstore.Tx) error { return fn(tx) })
	}
	outreachTx := func(ctx context.Context, fn func(outreach.Store) error) error {
		return store.InTx(ctx, func(tx *memstore.Tx) error { return fn(tx) })
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{ImportMaxFileBytes: 1 << 20, ImportMaxRows: 5}
	importer := contactimport.NewImporter(importTx, contactimport.Options{
		MaxRows:  cfg.ImportMaxRows,
		Location: time.UTC,
		Now:      func() time.Time { return fixedNow },
		Logger:   logger,
	})
	svc := outreach.NewService(outreachTx, logger).WithClock(func() time.Time { return fixedNow })

	return NewServer(cfg, store, importer, svc, nil, logger), store
}

func newTestRouter(srv *Server) http.Handler {
	wrapper := oapi.ServerInterfaceWrapper{Handler: srv, ErrorHandlerFunc: InvalidParamHandler}
	r := chi.NewRouter()
	r.Route("/api/pacientes/convites", func(api chi.Router) {
		api.Get("/", wrapper.ListContacts)
		api.Get("/importacoes/", wrapper.ListContactImports)
		api.Post("/importacoes/", wrapper.ImportContacts)
		api.Get("/importacoes/modelo.csv", wrapper.GetContactImportTemplate)
		api.Post("/enviar/", wrapper.SendContactMessages)
		api.Get("/mensagens/", wrapper.ListContactMessages)
		api.Get("/exportar.csv", wrapper.ExportContacts)
		api.Get("/{contatoId}/", wrapper.GetContact)
	})
	return r
}

func seedContacts(t *testing.T, store *memstore.Store, names ...string) []int64 {
	t.Helper()
	var ids []int64
	err := store.InTx(context.Background(), func(tx *memstore.Tx) error {
		for i, name := range names {
			phone := fmt.Sprintf("11955%06d", i)
			c, err := tx.CreateContact(context.Background(), gen.CreateContactParams{
				Name:            name,
				Phone:           phone,
				PhoneNormalized: phone,
				Origin:          "Campanha",
			})
			if err != nil {
				return err
			}
			ids = append(ids, c.ID)
		}
		return nil
	})
	require.NoError(t, err)
	return ids
}

func uploadRequest(t *testing.T, filename, content, origin string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile(uploadFileField, filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	if origin != "" {
		require.NoError(t, mw.WriteField(uploadOriginField, origin))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, importPath, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) httpx.ErrorEnvelope {
	t.Helper()
	var body httpx.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestImportContactsReportsSummary(t *testing.T) {
	srv, store := newTestServer(t)
	csv := "nome;cpf;telefone;data_nascimento;idade;origem;convenio\n" +
		"Ana Souza;123.456.789-09;(11) 98888-7777;15/03/1990;;Indicação;Unimed\n" +
		";;;;;;\n" +
		"Bia Lima;;;;;;\n"

	rr := httptest.NewRecorder()
	srv.ImportContacts(rr, uploadRequest(t, "pacientes.csv", csv, ""))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var body oapi.ImportResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "pacientes.csv", body.ArquivoNome)
	assert.Equal(t, contactimport.DefaultOrigin, body.OrigemUtilizada)
	assert.Equal(t, []string{"convenio"}, body.ColunasDesconhecidas)
	assert.Equal(t, oapi.ImportSummary{Total: 2, Importados: 1, Erros: 1}, body.Resumo)
	assert.Equal(t, 2, body.TotalLinhas)
	assert.Equal(t, "Linha 4: campo 'telefone' vazio.", body.Log)
	assert.Contains(t, body.Detail, "1 importados")
	assert.Nil(t, body.ArquivoChave)

	contacts := store.Contacts()
	require.Len(t, contacts, 1)
	assert.Equal(t, "Indicação", contacts[0].Origin)
	require.NotNil(t, contacts[0].Age)
	assert.Equal(t, int32(34), *contacts[0].Age)

	audits := store.AuditLogs()
	require.Len(t, audits, 1)
	assert.Equal(t, "contacts.import", audits[0].Action)
	require.NotNil(t, audits[0].EntityID)
	assert.Equal(t, body.Id, *audits[0].EntityID)
}

func TestImportContactsUsesFormOriginAndArchive(t *testing.T) {
	srv, store := newTestServer(t)
	archive := &recordingArchive{}
	srv.Archive = archive
	csv := "nome,telefone\nCaio,11 97777-0000\n"

	rr := httptest.NewRecorder()
	srv.ImportContacts(rr, uploadRequest(t, "lista.csv", csv, "  Feira de saúde  "))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var body oapi.ImportResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Feira de saúde", body.OrigemUtilizada)
	assert.Equal(t, []string{}, body.ColunasDesconhecidas)

	require.Len(t, archive.keys, 1)
	assert.True(t, strings.HasPrefix(archive.keys[0], "imports/"))
	assert.True(t, strings.HasSuffix(archive.keys[0], "-lista.csv"))
	assert.Equal(t, csv, string(archive.data[0]))
	require.NotNil(t, body.ArquivoChave)
	assert.Equal(t, archive.keys[0], *body.ArquivoChave)

	runs := store.ImportRuns()
	require.Len(t, runs, 1)
	require.NotNil(t, runs[0].ArchiveKey)
	assert.Equal(t, archive.keys[0], *runs[0].ArchiveKey)
}

func TestImportContactsContinuesWhenArchiveFails(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.Archive = &recordingArchive{err: errors.New("connection refused")}

	rr := httptest.NewRecorder()
	srv.ImportContacts(rr, uploadRequest(t, "lista.csv", "nome;telefone\nDavi;11 96666-0000\n", ""))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var body oapi.ImportResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Nil(t, body.ArquivoChave)
	assert.Equal(t, 1, body.Importados)
}

func TestImportContactsInputErrors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		status   int
		code     string
	}{
		{name: "empty file", filename: "vazio.csv", content: "", status: http.StatusBadRequest, code: "empty_file"},
		{name: "blank lines only", filename: "vazio.csv", content: "\n\n  \n", status: http.StatusBadRequest, code: "empty_file"},
		{name: "missing file", filename: "", status: http.StatusBadRequest, code: "missing_file"},
		{name: "excel upload", filename: "lista.xlsx", content: "PK", status: http.StatusBadRequest, code: "xlsx_not_supported"},
		{
			name:     "too many rows",
			filename: "grande.csv",
			content:  "nome;telefone\nA;1\nB;2\nC;3\nD;4\nE;5\nF;6\n",
			status:   http.StatusBadRequest,
			code:     "row_limit_exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, store := newTestServer(t)
			rr := httptest.NewRecorder()
			srv.ImportContacts(rr, uploadRequest(t, tt.filename, tt.content, ""))

			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
			body := decodeError(t, rr)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.NotEmpty(t, body.Detail)
			assert.Empty(t, store.ImportRuns())
			assert.Empty(t, store.Contacts())
		})
	}
}

func TestImportContactsMissingColumns(t *testing.T) {
	srv, store := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.ImportContacts(rr, uploadRequest(t, "cpfs.csv", "cpf\n123\n", ""))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decodeError(t, rr)
	assert.Equal(t, "missing_columns", body.Error.Code)
	assert.Equal(t, map[string]any{"colunas": []any{"nome", "telefone"}}, body.Error.Details)
	assert.Equal(t, "Colunas obrigatórias ausentes: nome, telefone.", body.Detail)
	assert.Empty(t, store.ImportRuns())
}

func TestImportContactsRejectsNonMultipart(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, importPath, strings.NewReader(`{"arquivo":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	srv.ImportContacts(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_content_type", decodeError(t, rr).Error.Code)
}

func TestImportContactsStoreFaultRollsBack(t *testing.T) {
	srv, store := newTestServer(t)
	store.FailOn = map[string]error{"CreateContactImportRun": errors.New("disk full")}

	rr := httptest.NewRecorder()
	srv.ImportContacts(rr, uploadRequest(t, "lista.csv", "nome;telefone\nEva;11 95555-0000\n", ""))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal_error", decodeError(t, rr).Error.Code)
	assert.Empty(t, store.Contacts())
	assert.Empty(t, store.ImportRuns())
}

func TestImportContactsUniqueRaceIsReported(t *testing.T) {
	srv, store := newTestServer(t)
	store.FailOn = map[string]error{"CreateContact": &pgconn.PgError{Code: "23505", ConstraintName: "contacts_phone_normalized_key"}}

	rr := httptest.NewRecorder()
	srv.ImportContacts(rr, uploadRequest(t, "lista.csv", "nome;telefone\nEva;11 95555-0000\n", ""))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "import_conflict", decodeError(t, rr).Error.Code)
	assert.Empty(t, store.ImportRuns())
}

func TestListContactImportsNewestFirst(t *testing.T) {
	srv, _ := newTestServer(t)
	router := newTestRouter(srv)

	for _, name := range []string{"primeira.csv", "segunda.csv"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, uploadRequest(t, name, "nome;telefone\nFabio;11 94444-0000\n", ""))
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, importPath+"?page=1", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var page oapi.ImportRunPage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Equal(t, int64(2), page.Count)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "segunda.csv", page.Results[0].ArquivoNome)
	assert.Equal(t, 0, page.Results[0].Importados)
	assert.Equal(t, 1, page.Results[0].Ignorados)
	assert.Nil(t, page.Next)
	assert.Nil(t, page.Previous)
}

func TestGetContactImportTemplate(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := httptest.NewRecorder()

	newTestRouter(srv).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, importPath+"modelo.csv", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, "\ufeffnome;cpf;telefone;data_nascimento;idade;origem\n", rr.Body.String())

	table, err := contactimport.DecodeTable(rr.Body.Bytes())
	require.NoError(t, err)
	mapping, err := contactimport.ReconcileHeader(table.Header)
	require.NoError(t, err)
	assert.Empty(t, mapping.Unknown)
}

func TestListContactsPaginates(t *testing.T) {
	srv, store := newTestServer(t)
	names := make([]string, PageSize+1)
	for i := range names {
		names[i] = fmt.Sprintf("Paciente %03d", i)
	}
	ids := seedContacts(t, store, names...)
	router := newTestRouter(srv)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/pacientes/convites/?status=novo", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var first oapi.ContactPage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &first))
	assert.Equal(t, int64(PageSize+1), first.Count)
	require.Len(t, first.Results, PageSize)
	assert.Equal(t, ids[len(ids)-1], first.Results[0].Id)
	assert.Equal(t, "Novo", first.Results[0].StatusLabel)
	require.NotNil(t, first.Next)
	assert.Equal(t, "/api/pacientes/convites/?page=2&status=novo", *first.Next)
	assert.Nil(t, first.Previous)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, *first.Next, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var second oapi.ContactPage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &second))
	require.Len(t, second.Results, 1)
	assert.Equal(t, ids[0], second.Results[0].Id)
	assert.Nil(t, second.Next)
	require.NotNil(t, second.Previous)
	assert.Equal(t, "/api/pacientes/convites/?status=novo", *second.Previous)
}

func TestListContactsSearch(t *testing.T) {
	srv, store := newTestServer(t)
	seedContacts(t, store, "Ana Souza", "Bruno Alves", "Mariana Costa")

	rr := httptest.NewRecorder()
	newTestRouter(srv).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/pacientes/convites/?search=ANA", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var page oapi.ContactPage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Equal(t, int64(2), page.Count)
	names := []string{page.Results[0].Nome, page.Results[1].Nome}
	assert.ElementsMatch(t, []string{"Ana Souza", "Mariana Costa"}, names)
}

func TestGetContact(t *testing.T) {
	srv, store := newTestServer(t)
	ids := seedContacts(t, store, "Ana Souza")
	router := newTestRouter(srv)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/pacientes/convites/%d/", ids[0]), nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var contact oapi.Contact
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &contact))
	assert.Equal(t, "Ana Souza", contact.Nome)
	assert.Nil(t, contact.DataNascimento)
	assert.Nil(t, contact.UltimaMensagemEm)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/pacientes/convites/999/", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not_found", decodeError(t, rr).Error.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/pacientes/convites/abc/", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "validation_error", decodeError(t, rr).Error.Code)
}

func TestExportContactsCSV(t *testing.T) {
	srv, store := newTestServer(t)
	seedContacts(t, store, "Ana Souza", "Bruno Alves")
	rr := httptest.NewRecorder()

	newTestRouter(srv).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/pacientes/convites/exportar.csv", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "contatos.csv")
	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,nome,cpf,telefone,data_nascimento,idade,origem,status,ultima_mensagem_em,criado_em", lines[0])
	assert.Equal(t, "2,Bruno Alves,,11955000001,,,Campanha,novo,,2024-06-15T12:00:00Z", lines[1])
}

func sendRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/pacientes/convites/enviar/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestSendContactMessages(t *testing.T) {
	srv, store := newTestServer(t)
	ids := seedContacts(t, store, "Ana Souza", "Bruno Alves")
	router := newTestRouter(srv)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, sendRequest(fmt.Sprintf(`{"contatos":[%d,%d],"mensagem":"  Olá! Sua consulta está confirmada.  "}`, ids[0], ids[1])))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"enviados":2,"falhas":[]}`, rr.Body.String())

	for _, c := range store.Contacts() {
		assert.Equal(t, outreach.ContactStatusSent, c.Status)
		require.NotNil(t, c.LastMessagedAt)
		assert.True(t, c.LastMessagedAt.Equal(fixedNow))
	}

	audits := store.AuditLogs()
	require.Len(t, audits, 1)
	assert.Equal(t, "contacts.message", audits[0].Action)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/pacientes/convites/mensagens/?contato=%d", ids[1]), nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var page oapi.MessagePage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Count)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Bruno Alves", page.Results[0].ContatoNome)
	assert.Equal(t, "Olá! Sua consulta está confirmada.", page.Results[0].Conteudo)
	assert.Equal(t, oapi.MessageStatusEnviado, page.Results[0].Status)
}

func TestSendContactMessagesErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		code    string
		details any
	}{
		{name: "unknown ids", body: `{"contatos":[1,99,42],"mensagem":"Oi"}`, status: http.StatusNotFound, code: "contacts_not_found", details: map[string]any{"ids": []any{float64(42), float64(99)}}},
		{name: "duplicate ids", body: `{"contatos":[1,1],"mensagem":"Oi"}`, status: http.StatusBadRequest, code: "duplicate_contacts", details: map[string]any{"ids": []any{float64(1)}}},
		{name: "blank message", body: `{"contatos":[1],"mensagem":"   "}`, status: http.StatusBadRequest, code: "blank_message"},
		{name: "no contacts", body: `{"contatos":[],"mensagem":"Oi"}`, status: http.StatusBadRequest, code: "no_contacts"},
		{name: "invalid id", body: `{"contatos":[0],"mensagem":"Oi"}`, status: http.StatusBadRequest, code: "invalid_contact_id"},
		{name: "malformed json", body: `{"contatos":`, status: http.StatusBadRequest, code: "invalid_body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, store := newTestServer(t)
			seedContacts(t, store, "Ana Souza")
			rr := httptest.NewRecorder()

			srv.SendContactMessages(rr, sendRequest(tt.body))

			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
			body := decodeError(t, rr)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Equal(t, tt.details, body.Error.Details)
			assert.Empty(t, store.Messages())
			assert.Equal(t, outreach.ContactStatusNew, store.Contacts()[0].Status)
		})
	}
}

func TestTruncateTextKeepsRunes(t *testing.T) {
	assert.Equal(t, "ação", truncateText("ação rápida", 4))
	assert.Equal(t, "curta", truncateText("curta", 10))
	assert.Equal(t, "", truncateText("x", 0))
}
