package handlers

import (
	"net/http"

	"github.com/Hira-Iftikhar-123/preloved-backend/internal/repository"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type AccountHTTP struct {
	log  zerolog.Logger
	repo repository.AccountRepository
}

func NewAccountHTTP(log zerolog.Logger, r repository.AccountRepository) *AccountHTTP {
	return &AccountHTTP{log: log, repo: r}
}

// GET /api/accounts/{id}
// Mounted behind RequireSelfOrRoles(admin).
func (h *AccountHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, a.Public())
	}
}
