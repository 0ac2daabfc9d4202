package audit

import (
	"context"
	"encoding/json"
	"fmt"

	gen "github.com/clinica-platform/apps/api/internal/gen/db"
	"github.com/clinica-platform/apps/api/internal/middleware"
)

const (
	ActionContactsImport  = "contacts.import"
	ActionContactsMessage = "contacts.message"

	EntityContact          = "contact"
	EntityContactImportRun = "contact_import_run"
)

// maxListedIDs bounds id lists copied into metadata; the full count is
// still recorded next to them.
const maxListedIDs = 200

type Inserter interface {
	InsertAuditLog(ctx context.Context, arg gen.InsertAuditLogParams) error
}

type Logger struct {
	q Inserter
}

func NewLogger(q Inserter) *Logger {
	return &Logger{q: q}
}

type Entry struct {
	Action     string
	EntityType string
	EntityID   *int64
	Metadata   map[string]any
}

// Log writes one audit row. The request id is taken from ctx.
func (l *Logger) Log(ctx context.Context, entry Entry) error {
	params := gen.InsertAuditLogParams{
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Metadata:   []byte("{}"),
	}
	if len(entry.Metadata) > 0 {
		encoded, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("marshal %s metadata: %w", entry.Action, err)
		}
		params.Metadata = encoded
	}
	if requestID := middleware.RequestIDFromContext(ctx); requestID != "" {
		params.RequestID = &requestID
	}

	if err := l.q.InsertAuditLog(ctx, params); err != nil {
		return fmt.Errorf("insert audit log %s: %w", entry.Action, err)
	}
	return nil
}

// IDs returns ids for metadata, cut to the first maxListedIDs.
func IDs(ids []int64) []int64 {
	if len(ids) <= maxListedIDs {
		return ids
	}
	return ids[:maxListedIDs]
}
