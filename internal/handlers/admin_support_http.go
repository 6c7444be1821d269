package handlers

import (
	"net/http"
	"strings"

	"github.com/Hira-Iftikhar-123/preloved-backend/internal/models"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/service"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// AdminSupportHTTP serves the REST-shaped admin view of support tickets.
// Every route is mounted behind Gate.RequireAdmin.
type AdminSupportHTTP struct {
	log     zerolog.Logger
	tickets *service.TicketService
}

func NewAdminSupportHTTP(log zerolog.Logger, tickets *service.TicketService) *AdminSupportHTTP {
	return &AdminSupportHTTP{log: log, tickets: tickets}
}

// GET /api/admin/support/tickets?status=&priority=&category=&userId=
func (h *AdminSupportHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qv := r.URL.Query()
		items, err := h.tickets.ListTickets(r.Context(), requester(r), service.ListTicketsInput{
			OwnerID:  strings.TrimSpace(qv.Get("userId")),
			Status:   models.Status(strings.TrimSpace(qv.Get("status"))),
			Priority: models.Priority(strings.TrimSpace(qv.Get("priority"))),
			Category: models.Category(strings.TrimSpace(qv.Get("category"))),
		})
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, items)
	}
}

// GET /api/admin/support/tickets/{id}
func (h *AdminSupportHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := h.tickets.GetTicket(r.Context(), requester(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, t)
	}
}

type replyReq struct {
	Content string `json:"content" validate:"required"`
}

// POST /api/admin/support/tickets/{id}/messages
// Returns the refreshed ticket with its owner joined.
func (h *AdminSupportHTTP) Reply() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in replyReq
		if err := decode(r, &in); err != nil {
			writeError(w, r, h.log, err)
			return
		}
		t, _, err := h.tickets.ReplyToTicket(r.Context(), requester(r), chi.URLParam(r, "id"), in.Content)
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		utils.JSON(w, http.StatusCreated, t)
	}
}

type patchTicketReq struct {
	Status        *models.Status   `json:"status" validate:"omitempty,oneof=open in-progress resolved closed"`
	Priority      *models.Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
	AssignedTo    *string          `json:"assignedTo"`
	AdminResponse *string          `json:"adminResponse"`
}

// PATCH /api/admin/support/tickets/{id}
func (h *AdminSupportHTTP) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in patchTicketReq
		if err := decode(r, &in); err != nil {
			writeError(w, r, h.log, err)
			return
		}
		t, err := h.tickets.UpdateTicket(r.Context(), requester(r), chi.URLParam(r, "id"), service.UpdateTicketInput{
			Status:        in.Status,
			Priority:      in.Priority,
			AssignedTo:    in.AssignedTo,
			AdminResponse: in.AdminResponse,
		})
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, t)
	}
}
