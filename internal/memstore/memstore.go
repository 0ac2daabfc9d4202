// Package memstore is an in-memory contact store with the same query surface
// and uniqueness rules as the Postgres schema. cmd/seed uses it for dry runs.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	gen "github.com/clinica-platform/apps/api/internal/gen/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type state struct {
	contacts  map[int64]gen.Contact
	runs      []gen.ContactImportRun
	messages  []gen.ContactMessage
	audit     []gen.InsertAuditLogParams
	nextID    int64
	nextRunID int64
	nextMsgID int64
}

func (s *state) clone() *state {
	c := *s
	c.contacts = make(map[int64]gen.Contact, len(s.contacts))
	for id, contact := range s.contacts {
		c.contacts[id] = contact
	}
	c.runs = append([]gen.ContactImportRun(nil), s.runs...)
	c.messages = append([]gen.ContactMessage(nil), s.messages...)
	c.audit = append([]gen.InsertAuditLogParams(nil), s.audit...)
	return &c
}

// Store serializes every call. InTx works on a copy and swaps it in only when
// fn succeeds.
type Store struct {
	mu  sync.Mutex
	cur *state
	now func() time.Time

	// FailOn makes the named operation return an error, for fault tests.
	FailOn map[string]error
}

func New() *Store {
	return &Store{
		cur: &state{contacts: map[int64]gen.Contact{}},
		now: time.Now,
	}
}

func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// InTx runs fn against a snapshot. Nested calls are not supported.
func (s *Store) InTx(ctx context.Context, fn func(q *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{store: s, st: s.cur.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	s.cur = tx.st
	return nil
}

func (s *Store) Contacts() []gen.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]gen.Contact, 0, len(s.cur.contacts))
	for _, c := range s.cur.contacts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) ImportRuns() []gen.ContactImportRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]gen.ContactImportRun(nil), s.cur.runs...)
}

func (s *Store) Messages() []gen.ContactMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]gen.ContactMessage(nil), s.cur.messages...)
}

func (s *Store) AuditLogs() []gen.InsertAuditLogParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]gen.InsertAuditLogParams(nil), s.cur.audit...)
}

// InsertAuditLog writes outside any transaction, like the pool-level query.
func (s *Store) InsertAuditLog(ctx context.Context, arg gen.InsertAuditLogParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailOn["InsertAuditLog"]; err != nil {
		return err
	}
	s.cur.audit = append(s.cur.audit, arg)
	return nil
}

// Tx is the transactional view handed to InTx callbacks.
type Tx struct {
	store *Store
	st    *state
}

func (t *Tx) fail(op string) error {
	return t.store.FailOn[op]
}

func (t *Tx) FindContactByKeys(ctx context.Context, arg gen.FindContactByKeysParams) (gen.Contact, error) {
	if err := t.fail("FindContactByKeys"); err != nil {
		return gen.Contact{}, err
	}
	var (
		found gen.Contact
		ok    bool
	)
	for _, c := range t.st.contacts {
		match := (arg.CpfNormalized != "" && c.CpfNormalized == arg.CpfNormalized) ||
			(arg.PhoneNormalized != "" && c.PhoneNormalized == arg.PhoneNormalized)
		if match && (!ok || c.ID < found.ID) {
			found, ok = c, true
		}
	}
	if !ok {
		return gen.Contact{}, pgx.ErrNoRows
	}
	return found, nil
}

func (t *Tx) CreateContact(ctx context.Context, arg gen.CreateContactParams) (gen.Contact, error) {
	if err := t.fail("CreateContact"); err != nil {
		return gen.Contact{}, err
	}
	if err := t.checkUnique(0, arg.CpfNormalized, arg.PhoneNormalized); err != nil {
		return gen.Contact{}, err
	}
	now := t.store.now()
	t.st.nextID++
	c := gen.Contact{
		ID:              t.st.nextID,
		Name:            arg.Name,
		Cpf:             arg.Cpf,
		CpfNormalized:   arg.CpfNormalized,
		Phone:           arg.Phone,
		PhoneNormalized: arg.PhoneNormalized,
		BirthDate:       arg.BirthDate,
		Age:             arg.Age,
		Origin:          arg.Origin,
		Status:          "novo",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	t.st.contacts[c.ID] = c
	return c, nil
}

func (t *Tx) UpdateContactFromImport(ctx context.Context, arg gen.UpdateContactFromImportParams) (gen.Contact, error) {
	if err := t.fail("UpdateContactFromImport"); err != nil {
		return gen.Contact{}, err
	}
	c, ok := t.st.contacts[arg.ID]
	if !ok {
		return gen.Contact{}, pgx.ErrNoRows
	}
	if err := t.checkUnique(arg.ID, arg.CpfNormalized, arg.PhoneNormalized); err != nil {
		return gen.Contact{}, err
	}
	c.Name = arg.Name
	c.Cpf = arg.Cpf
	c.CpfNormalized = arg.CpfNormalized
	c.Phone = arg.Phone
	c.PhoneNormalized = arg.PhoneNormalized
	c.BirthDate = arg.BirthDate
	c.Age = arg.Age
	c.Origin = arg.Origin
	c.UpdatedAt = t.store.now()
	t.st.contacts[c.ID] = c
	return c, nil
}

func (t *Tx) CreateContactImportRun(ctx context.Context, arg gen.CreateContactImportRunParams) (gen.ContactImportRun, error) {
	if err := t.fail("CreateContactImportRun"); err != nil {
		return gen.ContactImportRun{}, err
	}
	t.st.nextRunID++
	run := gen.ContactImportRun{
		ID:         t.st.nextRunID,
		Filename:   arg.Filename,
		Origin:     arg.Origin,
		TotalRows:  arg.TotalRows,
		Imported:   arg.Imported,
		Updated:    arg.Updated,
		Skipped:    arg.Skipped,
		Errored:    arg.Errored,
		Log:        arg.Log,
		ArchiveKey: arg.ArchiveKey,
		CreatedAt:  t.store.now(),
	}
	t.st.runs = append(t.st.runs, run)
	return run, nil
}

func (t *Tx) ListContactsByIDs(ctx context.Context, ids []int64) ([]gen.Contact, error) {
	if err := t.fail("ListContactsByIDs"); err != nil {
		return nil, err
	}
	out := make([]gen.Contact, 0, len(ids))
	for _, id := range ids {
		if c, ok := t.st.contacts[id]; ok {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *Tx) CreateContactMessage(ctx context.Context, arg gen.CreateContactMessageParams) (gen.ContactMessage, error) {
	if err := t.fail("CreateContactMessage"); err != nil {
		return gen.ContactMessage{}, err
	}
	if _, ok := t.st.contacts[arg.ContactID]; !ok {
		return gen.ContactMessage{}, &pgconn.PgError{Code: "23503", ConstraintName: "contact_messages_contact_id_fkey"}
	}
	t.st.nextMsgID++
	msg := gen.ContactMessage{
		ID:        t.st.nextMsgID,
		ContactID: arg.ContactID,
		Content:   arg.Content,
		Status:    arg.Status,
		Error:     arg.Error,
		CreatedAt: t.store.now(),
	}
	t.st.messages = append(t.st.messages, msg)
	return msg, nil
}

func (t *Tx) MarkContactMessaged(ctx context.Context, arg gen.MarkContactMessagedParams) error {
	if err := t.fail("MarkContactMessaged"); err != nil {
		return err
	}
	c, ok := t.st.contacts[arg.ID]
	if !ok {
		return nil
	}
	c.Status = arg.Status
	c.LastMessagedAt = arg.LastMessagedAt
	c.UpdatedAt = t.store.now()
	t.st.contacts[c.ID] = c
	return nil
}

func (t *Tx) checkUnique(selfID int64, cpfNorm, phoneNorm string) error {
	for id, c := range t.st.contacts {
		if id == selfID {
			continue
		}
		if cpfNorm != "" && c.CpfNormalized == cpfNorm {
			return &pgconn.PgError{Code: "23505", ConstraintName: "contacts_cpf_normalized_key"}
		}
		if phoneNorm != "" && c.PhoneNormalized == phoneNorm {
			return &pgconn.PgError{Code: "23505", ConstraintName: "contacts_phone_normalized_key"}
		}
	}
	return nil
}

func (s *Store) GetContactByID(ctx context.Context, id int64) (gen.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cur.contacts[id]
	if !ok {
		return gen.Contact{}, pgx.ErrNoRows
	}
	return c, nil
}

func (s *Store) CountContacts(ctx context.Context, arg gen.CountContactsParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.filterContacts(arg.Search, arg.Status))), nil
}

func (s *Store) ListContacts(ctx context.Context, arg gen.ListContactsParams) ([]gen.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return page(s.filterContacts(arg.Search, arg.Status), arg.LimitRows, arg.OffsetRows), nil
}

func (s *Store) ListContactsForExport(ctx context.Context) ([]gen.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterContacts(nil, nil), nil
}

func (s *Store) CountContactImportRuns(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.cur.runs)), nil
}

func (s *Store) ListContactImportRuns(ctx context.Context, arg gen.ListContactImportRunsParams) ([]gen.ContactImportRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	runs := append([]gen.ContactImportRun(nil), s.cur.runs...)
	sort.Slice(runs, func(i, j int) bool { return newer(runs[i].CreatedAt, runs[i].ID, runs[j].CreatedAt, runs[j].ID) })
	return page(runs, arg.LimitRows, arg.OffsetRows), nil
}

func (s *Store) CountContactMessages(ctx context.Context, contactID *int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, m := range s.cur.messages {
		if contactID == nil || m.ContactID == *contactID {
			n++
		}
	}
	return n, nil
}

func (s *Store) ListContactMessages(ctx context.Context, arg gen.ListContactMessagesParams) ([]gen.ListContactMessagesRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]gen.ListContactMessagesRow, 0, len(s.cur.messages))
	for _, m := range s.cur.messages {
		if arg.ContactID != nil && m.ContactID != *arg.ContactID {
			continue
		}
		rows = append(rows, gen.ListContactMessagesRow{
			ID:          m.ID,
			ContactID:   m.ContactID,
			ContactName: s.cur.contacts[m.ContactID].Name,
			Content:     m.Content,
			Status:      m.Status,
			Error:       m.Error,
			CreatedAt:   m.CreatedAt,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return newer(rows[i].CreatedAt, rows[i].ID, rows[j].CreatedAt, rows[j].ID) })
	return page(rows, arg.LimitRows, arg.OffsetRows), nil
}

// filterContacts mirrors the ILIKE search and status filter, newest first.
func (s *Store) filterContacts(search, status *string) []gen.Contact {
	out := make([]gen.Contact, 0, len(s.cur.contacts))
	for _, c := range s.cur.contacts {
		if status != nil && c.Status != *status {
			continue
		}
		if search != nil {
			needle := strings.ToLower(*search)
			if !strings.Contains(strings.ToLower(c.Name), needle) &&
				!strings.Contains(strings.ToLower(c.Cpf), needle) &&
				!strings.Contains(strings.ToLower(c.Phone), needle) {
				continue
			}
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID) })
	return out
}

func newer(at time.Time, id int64, otherAt time.Time, otherID int64) bool {
	if !at.Equal(otherAt) {
		return at.After(otherAt)
	}
	return id > otherID
}

func page[T any](items []T, limit, offset int32) []T {
	if offset < 0 {
		offset = 0
	}
	if int(offset) >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit >= 0 && int(offset+limit) < end {
		end = int(offset + limit)
	}
	return items[offset:end]
}
