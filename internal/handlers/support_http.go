package handlers

import (
	"net/http"
	"strings"

	"github.com/Hira-Iftikhar-123/preloved-backend/internal/models"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/service"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/utils"

	"github.com/rs/zerolog"
)

// SupportPaths are the mount points of the action route.
var SupportPaths = []string{
	"/support",
	"/support/tickets",
	"/support/ticket",
	"/support/chat",
	"/support/chatRoom",
}

// supportActions maps ?action= to the only method it accepts.
var supportActions = map[string]string{
	"createTicket": http.MethodPost,
	"getTickets":   http.MethodGet,
	"updateTicket": http.MethodPut,
	"sendMessage":  http.MethodPost,
	"getMessages":  http.MethodGet,
	"getChatRooms": http.MethodGet,
}

type SupportHTTP struct {
	log     zerolog.Logger
	tickets *service.TicketService
}

func NewSupportHTTP(log zerolog.Logger, tickets *service.TicketService) *SupportHTTP {
	return &SupportHTTP{log: log, tickets: tickets}
}

// Dispatch serves /api/support?action=... behind the gate.
func (h *SupportHTTP) Dispatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action := r.URL.Query().Get("action")
		method, ok := supportActions[action]
		if !ok {
			utils.Error(w, http.StatusBadRequest, "invalid action")
			return
		}
		if r.Method != method {
			w.Header().Set("Allow", method)
			utils.Error(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		switch action {
		case "createTicket":
			h.createTicket(w, r)
		case "getTickets":
			h.getTickets(w, r)
		case "updateTicket":
			h.updateTicket(w, r)
		case "sendMessage":
			h.sendMessage(w, r)
		case "getMessages":
			h.getMessages(w, r)
		case "getChatRooms":
			h.getChatRooms(w, r)
		}
	}
}

type createTicketReq struct {
	UserID      string          `json:"userId" validate:"required"`
	Subject     string          `json:"subject" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Priority    models.Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
	Category    models.Category `json:"category" validate:"omitempty,oneof=general technical billing product other"`
}

func (h *SupportHTTP) createTicket(w http.ResponseWriter, r *http.Request) {
	var in createTicketReq
	if err := decode(r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	me := requester(r)
	// userId can only name the caller
	if in.UserID != me.ID {
		writeError(w, r, h.log, service.ErrForbidden)
		return
	}
	t, err := h.tickets.CreateTicket(r.Context(), me, service.CreateTicketInput{
		Subject:     in.Subject,
		Description: in.Description,
		Priority:    in.Priority,
		Category:    in.Category,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	utils.JSON(w, http.StatusCreated, map[string]any{
		"message":  "Support ticket created successfully",
		"ticketId": t.ID,
	})
}

func (h *SupportHTTP) getTickets(w http.ResponseWriter, r *http.Request) {
	items, err := h.tickets.ListTickets(r.Context(), requester(r), h.listInput(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	utils.JSON(w, http.StatusOK, items)
}

func (h *SupportHTTP) getChatRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.tickets.ChatRooms(r.Context(), requester(r), h.listInput(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	utils.JSON(w, http.StatusOK, rooms)
}

// listInput reads ?userId&status. The isAdmin flag never grants anything;
// the role always comes from the resolved account.
func (h *SupportHTTP) listInput(r *http.Request) service.ListTicketsInput {
	q := r.URL.Query()
	me := requester(r)
	if utils.QueryBool(q, "isAdmin", false) && !me.IsAdmin() {
		h.log.Debug().Str("uid", me.ID).Msg("ignoring isAdmin from non-admin")
	}
	return service.ListTicketsInput{
		OwnerID: strings.TrimSpace(q.Get("userId")),
		Status:  models.Status(strings.TrimSpace(q.Get("status"))),
	}
}

type updateTicketReq struct {
	TicketID      string           `json:"ticketId" validate:"required"`
	Status        *models.Status   `json:"status" validate:"omitempty,oneof=open in-progress resolved closed"`
	Priority      *models.Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
	AssignedTo    *string          `json:"assignedTo"`
	AdminResponse *string          `json:"adminResponse"`
}

func (h *SupportHTTP) updateTicket(w http.ResponseWriter, r *http.Request) {
	var in updateTicketReq
	if err := decode(r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	t, err := h.tickets.UpdateTicket(r.Context(), requester(r), in.TicketID, service.UpdateTicketInput{
		Status:        in.Status,
		Priority:      in.Priority,
		AssignedTo:    in.AssignedTo,
		AdminResponse: in.AdminResponse,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{
		"message": "Ticket updated successfully",
		"ticket":  t,
	})
}

type sendMessageReq struct {
	TicketID   string `json:"ticketId" validate:"required"`
	SenderID   string `json:"senderId" validate:"required"`
	Message    string `json:"message" validate:"required"`
	SenderType string `json:"senderType"`
}

func (h *SupportHTTP) sendMessage(w http.ResponseWriter, r *http.Request) {
	var in sendMessageReq
	if err := decode(r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	me := requester(r)
	// senderType is derived from the account role; a client value is ignored
	if in.SenderID != me.ID {
		writeError(w, r, h.log, service.ErrForbidden)
		return
	}
	_, m, err := h.tickets.ReplyToTicket(r.Context(), me, in.TicketID, in.Message)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	utils.JSON(w, http.StatusCreated, map[string]any{
		"message":   "Message sent successfully",
		"messageId": m.ID,
	})
}

func (h *SupportHTTP) getMessages(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("ticketId"))
	if id == "" {
		utils.Error(w, http.StatusBadRequest, "ticketId is required")
		return
	}
	msgs, err := h.tickets.Messages(r.Context(), requester(r), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	utils.JSON(w, http.StatusOK, msgs)
}
