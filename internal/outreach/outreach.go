package outreach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	gen "github.com/clinica-platform/apps/api/internal/gen/db"
	"github.com/go-playground/validator/v10"
)

const (
	ContactStatusNew    = "novo"
	ContactStatusSent   = "enviado"
	ContactStatusFailed = "falha"
	MessageStatusSent   = "enviado"
	MessageStatusFailed = "falha"
)

var (
	ErrNoContacts        = errors.New("informe ao menos um contato")
	ErrInvalidContactID  = errors.New("identificador de contato inválido")
	ErrDuplicateContacts = errors.New("lista de contatos contém duplicados")
	ErrBlankMessage      = errors.New("mensagem vazia")
)

type NotFoundError struct {
	IDs []int64
}

func (e *NotFoundError) Error() string {
	parts := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		parts[i] = fmt.Sprint(id)
	}
	return "contatos não encontrados: " + strings.Join(parts, ", ")
}

type Store interface {
	ListContactsByIDs(ctx context.Context, ids []int64) ([]gen.Contact, error)
	CreateContactMessage(ctx context.Context, arg gen.CreateContactMessageParams) (gen.ContactMessage, error)
	MarkContactMessaged(ctx context.Context, arg gen.MarkContactMessagedParams) error
}

type TxFunc func(ctx context.Context, fn func(Store) error) error

type Request struct {
	ContactIDs []int64 `validate:"required,min=1,unique,dive,gt=0"`
	Message    string  `validate:"required"`
}

type Failure struct {
	ContactID int64
	Reason    string
}

type Result struct {
	Sent     int
	Failures []Failure
	Messages []gen.ContactMessage
}

type Service struct {
	inTx     TxFunc
	validate *validator.Validate
	now      func() time.Time
	logger   *slog.Logger
}

func NewService(inTx TxFunc, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		inTx:     inTx,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock replaces the time source used for last-messaged timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Send records one outgoing message per contact and marks each contact as
// messaged, all in one transaction. Every id must exist before anything is
// written. Delivery is assumed to succeed, so Failures is always empty.
func (s *Service) Send(ctx context.Context, req Request) (Result, error) {
	req.Message = strings.TrimSpace(req.Message)
	if err := s.check(req); err != nil {
		return Result{}, err
	}

	startedAt := s.now()
	result := Result{Failures: []Failure{}}
	err := s.inTx(ctx, func(store Store) error {
		contacts, err := store.ListContactsByIDs(ctx, req.ContactIDs)
		if err != nil {
			return fmt.Errorf("load contacts: %w", err)
		}
		if missing := missingIDs(req.ContactIDs, contacts); len(missing) > 0 {
			return &NotFoundError{IDs: missing}
		}

		messages := make([]gen.ContactMessage, 0, len(contacts))
		for _, contact := range contacts {
			msg, err := store.CreateContactMessage(ctx, gen.CreateContactMessageParams{
				ContactID: contact.ID,
				Content:   req.Message,
				Status:    MessageStatusSent,
			})
			if err != nil {
				return fmt.Errorf("create message for contact %d: %w", contact.ID, err)
			}
			if err := store.MarkContactMessaged(ctx, gen.MarkContactMessagedParams{
				ID:             contact.ID,
				Status:         ContactStatusSent,
				LastMessagedAt: &startedAt,
			}); err != nil {
				return fmt.Errorf("mark contact %d: %w", contact.ID, err)
			}
			messages = append(messages, msg)
		}
		result.Sent = len(messages)
		result.Messages = messages
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	s.logger.Info("contact_messages_sent",
		"sent", result.Sent,
		"failures", len(result.Failures),
	)
	return result, nil
}

func (s *Service) check(req Request) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := verrs[0]
	switch {
	case fe.StructField() == "Message":
		return ErrBlankMessage
	case fe.Tag() == "unique":
		return ErrDuplicateContacts
	case fe.Tag() == "gt":
		return ErrInvalidContactID
	default:
		return ErrNoContacts
	}
}

func missingIDs(requested []int64, found []gen.Contact) []int64 {
	present := make(map[int64]struct{}, len(found))
	for _, c := range found {
		present[c.ID] = struct{}{}
	}
	var missing []int64
	for _, id := range requested {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}
