package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/clinica-platform/apps/api/internal/archive"
	"github.com/clinica-platform/apps/api/internal/audit"
	"github.com/clinica-platform/apps/api/internal/config"
	"github.com/clinica-platform/apps/api/internal/contactimport"
	gen "github.com/clinica-platform/apps/api/internal/gen/db"
	"github.com/clinica-platform/apps/api/internal/gen/oapi"
	"github.com/clinica-platform/apps/api/internal/httpx"
	"github.com/clinica-platform/apps/api/internal/outreach"
)

// PageSize is the fixed page size of every listing endpoint.
const PageSize = 100

// Queries is the read side the handlers use outside of transactions.
// *gen.Queries satisfies it.
type Queries interface {
	audit.Inserter
	GetContactByID(ctx context.Context, id int64) (gen.Contact, error)
	CountContacts(ctx context.Context, arg gen.CountContactsParams) (int64, error)
	ListContacts(ctx context.Context, arg gen.ListContactsParams) ([]gen.Contact, error)
	ListContactsForExport(ctx context.Context) ([]gen.Contact, error)
	CountContactImportRuns(ctx context.Context) (int64, error)
	ListContactImportRuns(ctx context.Context, arg gen.ListContactImportRunsParams) ([]gen.ContactImportRun, error)
	CountContactMessages(ctx context.Context, contactID *int64) (int64, error)
	ListContactMessages(ctx context.Context, arg gen.ListContactMessagesParams) ([]gen.ListContactMessagesRow, error)
}

type Server struct {
	Config   config.Config
	Q        Queries
	Audit    *audit.Logger
	Logger   *slog.Logger
	Importer *contactimport.Importer
	Outreach *outreach.Service
	// Archive is nil when uploads are not archived.
	Archive archive.Store
}

var _ oapi.ServerInterface = (*Server)(nil)

func NewServer(
	cfg config.Config,
	q Queries,
	importer *contactimport.Importer,
	outreachSvc *outreach.Service,
	archiveStore archive.Store,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		Config:   cfg,
		Q:        q,
		Audit:    audit.NewLogger(q),
		Logger:   logger,
		Importer: importer,
		Outreach: outreachSvc,
		Archive:  archiveStore,
	}
}

func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, oapi.HealthResponse{Status: "ok"})
}

// InvalidParamHandler renders binding failures from the generated wrapper.
func InvalidParamHandler(w http.ResponseWriter, r *http.Request, err error) {
	httpx.WriteError(w, r, http.StatusBadRequest, "validation_error", err.Error(), nil)
}

type pagination struct {
	page   int
	limit  int32
	offset int32
}

func paginate(page *oapi.Page) pagination {
	p := 1
	if page != nil && *page > 1 {
		p = *page
	}
	return pagination{page: p, limit: PageSize, offset: int32((p - 1) * PageSize)}
}

// links returns the next and previous page URLs, keeping every other query
// parameter of the current request.
func (p pagination) links(r *http.Request, count int64) (next, previous *string) {
	if int64(p.page)*PageSize < count {
		next = ptr(pageURL(r.URL, p.page+1))
	}
	if p.page > 1 {
		previous = ptr(pageURL(r.URL, p.page-1))
	}
	return next, previous
}

func pageURL(u *url.URL, page int) string {
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	out := url.URL{Path: u.Path, RawQuery: q.Encode()}
	return out.String()
}

func stringPtrOrNil(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func truncateText(value string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max])
}

func ptr[T any](v T) *T {
	return &v
}
