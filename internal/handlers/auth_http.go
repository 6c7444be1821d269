package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Hira-Iftikhar-123/preloved-backend/internal/models"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/service"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/utils"

	"github.com/rs/zerolog"
)

type AuthHTTP struct {
	log zerolog.Logger
	svc *service.AuthService
}

func NewAuthHTTP(log zerolog.Logger, s *service.AuthService) *AuthHTTP {
	return &AuthHTTP{log: log, svc: s}
}

type registerReq struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=5"`
	Location string `json:"location"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResp struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	IsAdmin   bool            `json:"isAdmin"`
	User      *models.Account `json:"user"`
}

// POST /api/auth/register
func (h *AuthHTTP) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in registerReq
		if err := decode(r, &in); err != nil {
			writeError(w, r, h.log, err)
			return
		}
		u, err := h.svc.Register(r.Context(), service.RegisterInput{
			Email:    in.Email,
			Name:     in.Name,
			Password: in.Password,
			Location: in.Location,
		})
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		utils.JSON(w, http.StatusCreated, u)
	}
}

// POST /api/auth/login
// Admin accounts are told to use /api/admin/login instead.
func (h *AuthHTTP) Login() http.HandlerFunc {
	return h.login(h.svc.Login)
}

// POST /api/admin/login
func (h *AuthHTTP) AdminLogin() http.HandlerFunc {
	return h.login(h.svc.AdminLogin)
}

func (h *AuthHTTP) login(check func(ctx context.Context, email, password string) (*service.Session, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in loginReq
		if err := decode(r, &in); err != nil {
			writeError(w, r, h.log, err)
			return
		}
		sess, err := check(r.Context(), in.Email, in.Password)
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		h.log.Info().Str("uid", sess.Account.ID).Str("role", string(sess.Account.Role)).Msg("login")
		utils.JSON(w, http.StatusOK, sessionResp{
			Token:     sess.Token,
			ExpiresAt: sess.ExpiresAt,
			IsAdmin:   sess.Account.IsAdmin(),
			User:      sess.Account,
		})
	}
}

// GET /api/auth/me
func (h *AuthHTTP) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.JSON(w, http.StatusOK, requester(r))
	}
}
