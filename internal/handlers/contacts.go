package handlers

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/clinica-platform/apps/api/internal/db"
	gen "github.com/clinica-platform/apps/api/internal/gen/db"
	"github.com/clinica-platform/apps/api/internal/gen/oapi"
	"github.com/clinica-platform/apps/api/internal/httpx"
	"github.com/clinica-platform/apps/api/internal/outreach"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

var contactStatusLabels = map[string]string{
	outreach.ContactStatusNew:    "Novo",
	outreach.ContactStatusSent:   "Mensagem enviada",
	outreach.ContactStatusFailed: "Falha no envio",
}

func (s *Server) ListContacts(w http.ResponseWriter, r *http.Request, params oapi.ListContactsParams) {
	var search *string
	if params.Search != nil {
		search = stringPtrOrNil(*params.Search)
	}
	var status *string
	if params.Status != nil {
		status = ptr(string(*params.Status))
	}
	page := paginate(params.Page)

	count, err := s.Q.CountContacts(r.Context(), gen.CountContactsParams{Search: search, Status: status})
	if err != nil {
		s.Logger.Error("count contacts", "error", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Falha ao carregar contatos", nil)
		return
	}
	rows, err := s.Q.ListContacts(r.Context(), gen.ListContactsParams{
		Search:     search,
		Status:     status,
		LimitRows:  page.limit,
		OffsetRows: page.offset,
	})
	if err != nil {
		s.Logger.Error("list contacts", "error", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Falha ao carregar contatos", nil)
		return
	}

	results := make([]oapi.Contact, 0, len(rows))
	for _, row := range rows {
		results = append(results, mapContact(row))
	}
	next, previous := page.links(r, count)
	httpx.WriteJSON(w, http.StatusOK, oapi.ContactPage{
		Count:    count,
		Next:     next,
		Previous: previous,
		Results:  results,
	})
}

func (s *Server) GetContact(w http.ResponseWriter, r *http.Request, contatoId int64) {
	contact, err := s.Q.GetContactByID(r.Context(), contatoId)
	if err != nil {
		if db.IsNotFound(err) {
			httpx.WriteError(w, r, http.StatusNotFound, "not_found", "Contato não encontrado", map[string]any{"ids": []int64{contatoId}})
			return
		}
		s.Logger.Error("get contact", "contact_id", contatoId, "error", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Falha ao carregar contato", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, mapContact(contact))
}

func (s *Server) ExportContacts(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Q.ListContactsForExport(r.Context())
	if err != nil {
		s.Logger.Error("export contacts", "error", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Falha ao exportar contatos", nil)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="contatos.csv"`)
	w.WriteHeader(http.StatusOK)

	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"id", "nome", "cpf", "telefone", "data_nascimento", "idade", "origem", "status", "ultima_mensagem_em", "criado_em"})
	for _, row := range rows {
		_ = writer.Write([]string{
			strconv.FormatInt(row.ID, 10),
			row.Name,
			row.Cpf,
			row.Phone,
			formatDatePtrCSV(row.BirthDate),
			formatInt32Ptr(row.Age),
			row.Origin,
			row.Status,
			formatTimePtrCSV(row.LastMessagedAt),
			row.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writer.Flush()
}

func mapContact(c gen.Contact) oapi.Contact {
	out := oapi.Contact{
		Id:               c.ID,
		Nome:             c.Name,
		Cpf:              c.Cpf,
		Telefone:         c.Phone,
		Origem:           c.Origin,
		Status:           oapi.ContactStatus(c.Status),
		StatusLabel:      contactStatusLabels[c.Status],
		UltimaMensagemEm: c.LastMessagedAt,
		CriadoEm:         c.CreatedAt,
		AtualizadoEm:     c.UpdatedAt,
	}
	if out.StatusLabel == "" {
		out.StatusLabel = c.Status
	}
	if c.BirthDate != nil {
		out.DataNascimento = &openapi_types.Date{Time: *c.BirthDate}
	}
	if c.Age != nil {
		out.Idade = ptr(int(*c.Age))
	}
	return out
}

func formatDatePtrCSV(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.Format("2006-01-02")
}

func formatTimePtrCSV(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}

func formatInt32Ptr(value *int32) string {
	if value == nil {
		return ""
	}
	return strconv.Itoa(int(*value))
}
