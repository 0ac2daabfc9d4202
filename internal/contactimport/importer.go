package contactimport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gen "github.com/clinica-platform/apps/api/internal/gen/db"
	"github.com/jackc/pgx/v5"
)

const DefaultOrigin = "Importação CSV"

// Store is the slice of the query layer an import needs. *gen.Queries
// satisfies it.
type Store interface {
	FindContactByKeys(ctx context.Context, arg gen.FindContactByKeysParams) (gen.Contact, error)
	CreateContact(ctx context.Context, arg gen.CreateContactParams) (gen.Contact, error)
	UpdateContactFromImport(ctx context.Context, arg gen.UpdateContactFromImportParams) (gen.Contact, error)
	CreateContactImportRun(ctx context.Context, arg gen.CreateContactImportRunParams) (gen.ContactImportRun, error)
}

// TxFunc runs fn inside one transaction, committing only if fn returns nil.
type TxFunc func(ctx context.Context, fn func(Store) error) error

type Options struct {
	MaxRows       int
	DefaultOrigin string
	Location      *time.Location
	Now           func() time.Time
	Logger        *slog.Logger
}

type Importer struct {
	inTx          TxFunc
	maxRows       int
	defaultOrigin string
	location      *time.Location
	now           func() time.Time
	logger        *slog.Logger
}

func NewImporter(inTx TxFunc, opts Options) *Importer {
	im := &Importer{
		inTx:          inTx,
		maxRows:       opts.MaxRows,
		defaultOrigin: strings.TrimSpace(opts.DefaultOrigin),
		location:      opts.Location,
		now:           opts.Now,
		logger:        opts.Logger,
	}
	if im.defaultOrigin == "" {
		im.defaultOrigin = DefaultOrigin
	}
	if im.location == nil {
		im.location = time.UTC
	}
	if im.now == nil {
		im.now = time.Now
	}
	if im.logger == nil {
		im.logger = slog.Default()
	}
	return im
}

type Upload struct {
	Filename   string
	Origin     string
	Data       []byte
	ArchiveKey string
}

type Result struct {
	Run            gen.ContactImportRun
	Summary        Summary
	UnknownColumns []string
	Origin         string
}

// Import ingests a whole CSV upload in one transaction. Input-shape problems
// (empty file, no header, missing columns, too many rows) are returned before
// anything is written. Row problems only move counters; a store error rolls
// back every row of the upload.
func (im *Importer) Import(ctx context.Context, upload Upload) (Result, error) {
	table, err := DecodeTable(upload.Data)
	if err != nil {
		return Result{}, err
	}
	if im.maxRows > 0 && len(table.Rows) > im.maxRows {
		return Result{}, fmt.Errorf("%w: %d linhas, máximo %d", ErrRowLimitExceeded, len(table.Rows), im.maxRows)
	}

	mapping, err := ReconcileHeader(table.Header)
	if err != nil {
		return Result{}, err
	}

	origin := strings.TrimSpace(upload.Origin)
	if origin == "" {
		origin = im.defaultOrigin
	}
	today := dateOnly(im.now().In(im.location))

	var (
		run     gen.ContactImportRun
		summary Summary
	)
	err = im.inTx(ctx, func(store Store) error {
		summary = Summary{}
		for _, record := range table.Rows {
			if err := im.ingestRow(ctx, store, mapping, record, origin, today, &summary); err != nil {
				return err
			}
		}

		created, err := store.CreateContactImportRun(ctx, summary.runParams(upload.Filename, origin, upload.ArchiveKey))
		if err != nil {
			return fmt.Errorf("create import run: %w", err)
		}
		run = created
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	im.logger.Info("contact_import_completed",
		"import_run_id", run.ID,
		"filename", upload.Filename,
		"origin", origin,
		"total", summary.Total,
		"imported", summary.Imported,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
		"errored", summary.Errored,
		"unknown_columns", len(mapping.Unknown),
	)

	unknown := mapping.Unknown
	if unknown == nil {
		unknown = []string{}
	}
	return Result{Run: run, Summary: summary, UnknownColumns: unknown, Origin: origin}, nil
}

type contactFields struct {
	name      string
	phone     string
	phoneNorm string
	cpf       string
	cpfNorm   string
	birthDate *time.Time
	age       *int32
	origin    string
}

func (im *Importer) ingestRow(
	ctx context.Context,
	store Store,
	mapping HeaderMapping,
	record Record,
	uploadOrigin string,
	today time.Time,
	summary *Summary,
) error {
	cells := mapping.Row(record.Cells)
	if isBlankRow(cells) {
		return nil
	}
	summary.Total++

	name := mapping.Value(cells, ColumnName)
	phoneRaw := stripFloatSuffix(mapping.Value(cells, ColumnPhone))
	cpfRaw := stripFloatSuffix(mapping.Value(cells, ColumnCPF))
	birthRaw := mapping.Value(cells, ColumnBirthDate)
	ageRaw := mapping.Value(cells, ColumnAge)
	rowOrigin := mapping.Value(cells, ColumnOrigin)

	if name == "" && phoneRaw == "" && cpfRaw == "" {
		summary.Skipped++
		return nil
	}
	if name == "" {
		summary.fail(record.Line, "campo 'nome' vazio.")
		return nil
	}
	if phoneRaw == "" {
		summary.fail(record.Line, "campo 'telefone' vazio.")
		return nil
	}
	phoneNorm := NormalizeDigits(phoneRaw)
	if phoneNorm == "" {
		summary.fail(record.Line, "telefone '%s' sem dígitos válidos.", phoneRaw)
		return nil
	}

	fields := contactFields{
		name:      name,
		phone:     phoneRaw,
		phoneNorm: phoneNorm,
		cpf:       cpfRaw,
		cpfNorm:   NormalizeDigits(cpfRaw),
		birthDate: ParseDate(birthRaw),
		origin:    rowOrigin,
	}
	if fields.birthDate != nil {
		birth := dateOnly(*fields.birthDate)
		fields.birthDate = &birth
	}
	age := parseAge(ageRaw)
	if age == nil {
		age = ComputeAge(fields.birthDate, today)
	}
	if age != nil {
		v := int32(*age)
		fields.age = &v
	}

	existing, err := store.FindContactByKeys(ctx, gen.FindContactByKeysParams{
		CpfNormalized:   fields.cpfNorm,
		PhoneNormalized: fields.phoneNorm,
	})
	switch {
	case err == nil:
		update, changed := mergeContact(existing, fields, uploadOrigin)
		if !changed {
			summary.Skipped++
			return nil
		}
		if _, err := store.UpdateContactFromImport(ctx, update); err != nil {
			return fmt.Errorf("line %d: update contact %d: %w", record.Line, existing.ID, err)
		}
		summary.Updated++
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		origin := fields.origin
		if origin == "" {
			origin = uploadOrigin
		}
		if _, err := store.CreateContact(ctx, gen.CreateContactParams{
			Name:            fields.name,
			Cpf:             fields.cpf,
			CpfNormalized:   fields.cpfNorm,
			Phone:           fields.phone,
			PhoneNormalized: fields.phoneNorm,
			BirthDate:       fields.birthDate,
			Age:             fields.age,
			Origin:          origin,
		}); err != nil {
			return fmt.Errorf("line %d: create contact: %w", record.Line, err)
		}
		summary.Imported++
		return nil
	default:
		return fmt.Errorf("line %d: find contact: %w", record.Line, err)
	}
}

// mergeContact applies the row onto an existing contact. Name and phone are
// always taken from the row; cpf, birth date and age only when the row has
// them. Origin changes when the row carries its own, or fills a blank one.
func mergeContact(existing gen.Contact, row contactFields, uploadOrigin string) (gen.UpdateContactFromImportParams, bool) {
	next := gen.UpdateContactFromImportParams{
		ID:              existing.ID,
		Name:            existing.Name,
		Cpf:             existing.Cpf,
		CpfNormalized:   existing.CpfNormalized,
		Phone:           existing.Phone,
		PhoneNormalized: existing.PhoneNormalized,
		BirthDate:       existing.BirthDate,
		Age:             existing.Age,
		Origin:          existing.Origin,
	}
	changed := false

	if existing.Name != row.name {
		next.Name = row.name
		changed = true
	}
	if existing.Phone != row.phone || existing.PhoneNormalized != row.phoneNorm {
		next.Phone = row.phone
		next.PhoneNormalized = row.phoneNorm
		changed = true
	}
	if row.cpf != "" && (existing.Cpf != row.cpf || existing.CpfNormalized != row.cpfNorm) {
		next.Cpf = row.cpf
		next.CpfNormalized = row.cpfNorm
		changed = true
	}
	if row.birthDate != nil && !sameDate(existing.BirthDate, row.birthDate) {
		next.BirthDate = row.birthDate
		changed = true
	}
	if row.age != nil && (existing.Age == nil || *existing.Age != *row.age) {
		next.Age = row.age
		changed = true
	}

	switch {
	case row.origin != "" && row.origin != existing.Origin:
		next.Origin = row.origin
		changed = true
	case row.origin == "" && existing.Origin == "" && uploadOrigin != "":
		next.Origin = uploadOrigin
		changed = true
	}

	return next, changed
}
