package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Hira-Iftikhar-123/preloved-backend/internal/utils"

	"github.com/rs/zerolog"
)

// Health reports liveness. When ping is set it is also asked about the
// backing store, and a failure yields 503. The cause is logged, never
// returned.
func Health(log zerolog.Logger, ping func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				log.Warn().Err(err).Msg("store ping failed")
				utils.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Index lists the public surface of the API.
func Index() http.HandlerFunc {
	endpoints := map[string]string{
		"health":       "GET /api/health",
		"register":     "POST /api/auth/register",
		"login":        "POST /api/auth/login",
		"me":           "GET /api/auth/me",
		"account":      "GET /api/accounts/{id}",
		"support":      "/api/support?action=createTicket|getTickets|updateTicket|sendMessage|getMessages|getChatRooms",
		"adminLogin":   "POST /api/admin/login",
		"adminTickets": "/api/admin/support/tickets",
		"adminSummary": "GET /api/admin/support/summary",
	}
	return func(w http.ResponseWriter, r *http.Request) {
		utils.JSON(w, http.StatusOK, map[string]any{
			"message":   "Preloved API is running",
			"endpoints": endpoints,
		})
	}
}
