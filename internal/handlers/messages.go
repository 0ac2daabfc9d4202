package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/clinica-platform/apps/api/internal/audit"
	gen "github.com/clinica-platform/apps/api/internal/gen/db"
	"github.com/clinica-platform/apps/api/internal/gen/oapi"
	"github.com/clinica-platform/apps/api/internal/httpx"
	"github.com/clinica-platform/apps/api/internal/outreach"
)

func (s *Server) SendContactMessages(w http.ResponseWriter, r *http.Request) {
	var req oapi.SendContactMessagesJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Corpo JSON inválido.", nil)
		return
	}

	result, err := s.Outreach.Send(r.Context(), outreach.Request{
		ContactIDs: req.Contatos,
		Message:    req.Mensagem,
	})
	if err != nil {
		s.writeSendError(w, r, req.Contatos, err)
		return
	}

	if err := s.Audit.Log(r.Context(), audit.Entry{
		Action:     audit.ActionContactsMessage,
		EntityType: audit.EntityContact,
		Metadata: map[string]any{
			"contactIds": audit.IDs(req.Contatos),
			"contacts":   len(req.Contatos),
			"sent":       result.Sent,
			"preview":    truncateText(strings.TrimSpace(req.Mensagem), 80),
		},
	}); err != nil {
		s.Logger.Warn("audit log failed", "error", err)
	}

	failures := make([]oapi.SendFailure, 0, len(result.Failures))
	for _, f := range result.Failures {
		failures = append(failures, oapi.SendFailure{Contato: f.ContactID, Erro: f.Reason})
	}
	httpx.WriteJSON(w, http.StatusOK, oapi.SendMessagesResponse{
		Enviados: result.Sent,
		Falhas:   failures,
	})
}

func (s *Server) writeSendError(w http.ResponseWriter, r *http.Request, ids []int64, err error) {
	var notFound *outreach.NotFoundError
	switch {
	case errors.As(err, &notFound):
		httpx.WriteError(w, r, http.StatusNotFound, "contacts_not_found", "Contatos não encontrados.", map[string]any{"ids": notFound.IDs})
	case errors.Is(err, outreach.ErrDuplicateContacts):
		httpx.WriteError(w, r, http.StatusBadRequest, "duplicate_contacts", "Remova contatos duplicados da seleção.", map[string]any{"ids": duplicateIDs(ids)})
	case errors.Is(err, outreach.ErrBlankMessage):
		httpx.WriteError(w, r, http.StatusBadRequest, "blank_message", "Escreva a mensagem que será enviada.", nil)
	case errors.Is(err, outreach.ErrNoContacts):
		httpx.WriteError(w, r, http.StatusBadRequest, "no_contacts", "Selecione ao menos um contato para enviar.", nil)
	case errors.Is(err, outreach.ErrInvalidContactID):
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_contact_id", "Identificador de contato inválido.", nil)
	default:
		s.Logger.Error("send contact messages", "contacts", len(ids), "error", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Falha ao registrar as mensagens.", nil)
	}
}

func (s *Server) ListContactMessages(w http.ResponseWriter, r *http.Request, params oapi.ListContactMessagesParams) {
	page := paginate(params.Page)

	count, err := s.Q.CountContactMessages(r.Context(), params.Contato)
	if err != nil {
		s.Logger.Error("count messages", "error", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Falha ao carregar mensagens", nil)
		return
	}
	rows, err := s.Q.ListContactMessages(r.Context(), gen.ListContactMessagesParams{
		ContactID:  params.Contato,
		LimitRows:  page.limit,
		OffsetRows: page.offset,
	})
	if err != nil {
		s.Logger.Error("list messages", "error", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Falha ao carregar mensagens", nil)
		return
	}

	results := make([]oapi.Message, 0, len(rows))
	for _, row := range rows {
		results = append(results, oapi.Message{
			Id:          row.ID,
			Contato:     row.ContactID,
			ContatoNome: row.ContactName,
			Conteudo:    row.Content,
			Status:      oapi.MessageStatus(row.Status),
			Erro:        row.Error,
			CriadoEm:    row.CreatedAt,
		})
	}
	next, previous := page.links(r, count)
	httpx.WriteJSON(w, http.StatusOK, oapi.MessagePage{
		Count:    count,
		Next:     next,
		Previous: previous,
		Results:  results,
	})
}

func duplicateIDs(ids []int64) []int64 {
	seen := make(map[int64]int, len(ids))
	for _, id := range ids {
		seen[id]++
	}
	dups := []int64{}
	for id, n := range seen {
		if n > 1 {
			dups = append(dups, id)
		}
	}
	sort.Slice(dups, func(i, j int) bool { return dups[i] < dups[j] })
	return dups
}
