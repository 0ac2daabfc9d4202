package handlers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/clinica-platform/apps/api/internal/archive"
	"github.com/clinica-platform/apps/api/internal/audit"
	"github.com/clinica-platform/apps/api/internal/contactimport"
	"github.com/clinica-platform/apps/api/internal/db"
	gen "github.com/clinica-platform/apps/api/internal/gen/db"
	"github.com/clinica-platform/apps/api/internal/gen/oapi"
	"github.com/clinica-platform/apps/api/internal/httpx"
)

const (
	uploadFileField   = "arquivo"
	uploadOriginField = "origem"
	maxFilenameLength = 255
)

type appError struct {
	Status  int
	Code    string
	Message string
	Details any
}

type importUpload struct {
	filename string
	origin   string
	data     []byte
}

func (s *Server) ImportContacts(w http.ResponseWriter, r *http.Request) {
	upload, appErr := parseImportUpload(r, s.Config.ImportMaxFileBytes)
	if appErr != nil {
		httpx.WriteError(w, r, appErr.Status, appErr.Code, appErr.Message, appErr.Details)
		return
	}

	archiveKey := s.archiveUpload(r, upload)

	result, err := s.Importer.Import(r.Context(), contactimport.Upload{
		Filename:   upload.filename,
		Origin:     upload.origin,
		Data:       upload.data,
		ArchiveKey: archiveKey,
	})
	if err != nil {
		appErr := s.importError(err)
		if appErr.Status >= http.StatusInternalServerError {
			s.Logger.Error("contact import failed", "filename", upload.filename, "error", err)
		}
		httpx.WriteError(w, r, appErr.Status, appErr.Code, appErr.Message, appErr.Details)
		return
	}

	runID := result.Run.ID
	if err := s.Audit.Log(r.Context(), audit.Entry{
		Action:     audit.ActionContactsImport,
		EntityType: audit.EntityContactImportRun,
		EntityID:   &runID,
		Metadata: map[string]any{
			"filename":       upload.filename,
			"origin":         result.Origin,
			"total":          result.Summary.Total,
			"imported":       result.Summary.Imported,
			"updated":        result.Summary.Updated,
			"skipped":        result.Summary.Skipped,
			"errored":        result.Summary.Errored,
			"unknownColumns": result.UnknownColumns,
		},
	}); err != nil {
		s.Logger.Warn("audit log failed", "error", err)
	}

	httpx.WriteJSON(w, http.StatusCreated, mapImportResult(result))
}

func (s *Server) ListContactImports(w http.ResponseWriter, r *http.Request, params oapi.ListContactImportsParams) {
	page := paginate(params.Page)

	count, err := s.Q.CountContactImportRuns(r.Context())
	if err != nil {
		s.Logger.Error("count import runs", "error", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Falha ao carregar importações", nil)
		return
	}
	runs, err := s.Q.ListContactImportRuns(r.Context(), gen.ListContactImportRunsParams{
		LimitRows:  page.limit,
		OffsetRows: page.offset,
	})
	if err != nil {
		s.Logger.Error("list import runs", "error", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Falha ao carregar importações", nil)
		return
	}

	results := make([]oapi.ImportRun, 0, len(runs))
	for _, run := range runs {
		results = append(results, mapImportRun(run))
	}
	next, previous := page.links(r, count)
	httpx.WriteJSON(w, http.StatusOK, oapi.ImportRunPage{
		Count:    count,
		Next:     next,
		Previous: previous,
		Results:  results,
	})
}

// GetContactImportTemplate serves an empty CSV carrying the expected header,
// semicolon separated as spreadsheet tools in pt-BR locales expect.
func (s *Server) GetContactImportTemplate(w http.ResponseWriter, r *http.Request) {
	header := make([]string, len(contactimport.ExpectedColumns))
	for i, col := range contactimport.ExpectedColumns {
		header[i] = string(col)
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="modelo_contatos.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "\ufeff")

	writer := csv.NewWriter(w)
	writer.Comma = ';'
	_ = writer.Write(header)
	writer.Flush()
}

// archiveUpload stores the raw file when an archive is configured. Failures
// are logged and the import proceeds without a key.
func (s *Server) archiveUpload(r *http.Request, upload importUpload) string {
	if s.Archive == nil {
		return ""
	}
	key := archive.ImportKey(time.Now(), upload.filename)
	err := s.Archive.Put(r.Context(), key, bytes.NewReader(upload.data), int64(len(upload.data)), "text/csv")
	if err != nil {
		s.Logger.Warn("archive upload failed", "filename", upload.filename, "key", key, "error", err)
		return ""
	}
	return key
}

func (s *Server) importError(err error) *appError {
	var missing *contactimport.MissingColumnsError
	switch {
	case errors.As(err, &missing):
		names := make([]string, len(missing.Columns))
		for i, col := range missing.Columns {
			names[i] = string(col)
		}
		return &appError{
			Status:  http.StatusBadRequest,
			Code:    "missing_columns",
			Message: "Colunas obrigatórias ausentes: " + strings.Join(names, ", ") + ".",
			Details: map[string]any{"colunas": names},
		}
	case errors.Is(err, contactimport.ErrEmptyFile):
		return &appError{Status: http.StatusBadRequest, Code: "empty_file", Message: "Arquivo vazio."}
	case errors.Is(err, contactimport.ErrMissingHeader):
		return &appError{Status: http.StatusBadRequest, Code: "missing_header", Message: "Cabeçalho não encontrado no arquivo."}
	case errors.Is(err, contactimport.ErrInvalidCSV):
		return &appError{Status: http.StatusBadRequest, Code: "invalid_csv", Message: "Não foi possível ler o CSV enviado."}
	case errors.Is(err, contactimport.ErrRowLimitExceeded):
		return &appError{
			Status:  http.StatusBadRequest,
			Code:    "row_limit_exceeded",
			Message: fmt.Sprintf("O arquivo excede o limite de %d linhas.", s.Config.ImportMaxRows),
			Details: map[string]any{"maxRows": s.Config.ImportMaxRows},
		}
	case db.IsUniqueViolation(err):
		return &appError{
			Status:  http.StatusInternalServerError,
			Code:    "import_conflict",
			Message: "Outra importação alterou os mesmos contatos. Envie o arquivo novamente.",
		}
	default:
		return &appError{Status: http.StatusInternalServerError, Code: "internal_error", Message: "Falha durante a importação do CSV."}
	}
}

func parseImportUpload(r *http.Request, maxFileBytes int64) (importUpload, *appError) {
	if !strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data") {
		return importUpload{}, &appError{
			Status:  http.StatusBadRequest,
			Code:    "invalid_content_type",
			Message: "Content-Type deve ser multipart/form-data.",
		}
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return importUpload{}, fileTooLarge(maxErr.Limit)
		}
		return importUpload{}, &appError{
			Status:  http.StatusBadRequest,
			Code:    "invalid_multipart",
			Message: "Falha ao ler o formulário enviado.",
		}
	}

	file, header, err := r.FormFile(uploadFileField)
	if err != nil {
		return importUpload{}, &appError{
			Status:  http.StatusBadRequest,
			Code:    "missing_file",
			Message: "Envie um arquivo CSV no campo 'arquivo'.",
		}
	}
	defer file.Close()

	filename := truncateText(strings.TrimSpace(filepath.Base(header.Filename)), maxFilenameLength)
	if filename == "" || filename == "." {
		filename = "contatos.csv"
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		return importUpload{}, &appError{
			Status:  http.StatusBadRequest,
			Code:    "xlsx_not_supported",
			Message: "Planilhas Excel não são aceitas. Exporte a planilha como CSV e envie novamente.",
		}
	}
	if maxFileBytes > 0 && header.Size > maxFileBytes {
		return importUpload{}, fileTooLarge(maxFileBytes)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return importUpload{}, &appError{
			Status:  http.StatusBadRequest,
			Code:    "invalid_file",
			Message: "Falha ao ler o arquivo enviado.",
		}
	}

	return importUpload{
		filename: filename,
		origin:   strings.TrimSpace(r.FormValue(uploadOriginField)),
		data:     data,
	}, nil
}

func fileTooLarge(limit int64) *appError {
	return &appError{
		Status:  http.StatusRequestEntityTooLarge,
		Code:    "file_too_large",
		Message: fmt.Sprintf("O arquivo excede o limite de %d MB.", limit/(1024*1024)),
		Details: map[string]any{"maxBytes": limit},
	}
}

func mapImportRun(run gen.ContactImportRun) oapi.ImportRun {
	return oapi.ImportRun{
		Id:           run.ID,
		ArquivoNome:  run.Filename,
		Origem:       run.Origin,
		TotalLinhas:  int(run.TotalRows),
		Importados:   int(run.Imported),
		Atualizados:  int(run.Updated),
		Ignorados:    int(run.Skipped),
		Erros:        int(run.Errored),
		Log:          run.Log,
		ArquivoChave: run.ArchiveKey,
		CriadoEm:     run.CreatedAt,
	}
}

func mapImportResult(result contactimport.Result) oapi.ImportResult {
	run := mapImportRun(result.Run)
	summary := result.Summary
	return oapi.ImportResult{
		Id:                   run.Id,
		ArquivoNome:          run.ArquivoNome,
		Origem:               run.Origem,
		TotalLinhas:          run.TotalLinhas,
		Importados:           run.Importados,
		Atualizados:          run.Atualizados,
		Ignorados:            run.Ignorados,
		Erros:                run.Erros,
		Log:                  run.Log,
		ArquivoChave:         run.ArquivoChave,
		CriadoEm:             run.CriadoEm,
		ColunasDesconhecidas: result.UnknownColumns,
		OrigemUtilizada:      result.Origin,
		Detail: fmt.Sprintf("Importação concluída: %d importados, %d atualizados, %d ignorados, %d com erro.",
			summary.Imported, summary.Updated, summary.Skipped, summary.Errored),
		Resumo: oapi.ImportSummary{
			Total:       summary.Total,
			Importados:  summary.Imported,
			Atualizados: summary.Updated,
			Ignorados:   summary.Skipped,
			Erros:       summary.Errored,
		},
	}
}
