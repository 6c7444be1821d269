package handlers

import (
	"net/http"

	"github.com/Hira-Iftikhar-123/preloved-backend/internal/service"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/utils"

	"github.com/rs/zerolog"
)

type ReportsHTTP struct {
	log     zerolog.Logger
	tickets *service.TicketService
}

func NewReportsHTTP(log zerolog.Logger, tickets *service.TicketService) *ReportsHTTP {
	return &ReportsHTTP{log: log, tickets: tickets}
}

// GET /api/admin/support/summary
// Returns: { total, open, inProgress, resolved, closed, resolved7d, highOpen }
func (h *ReportsHTTP) Summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := h.tickets.Summary(r.Context(), requester(r))
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, st)
	}
}
