package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/Hira-Iftikhar-123/preloved-backend/internal/models"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/token"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/utils"

	"github.com/rs/zerolog"
)

type ctxKey string

const (
	CtxUserID  ctxKey = "uid"
	CtxRole    ctxKey = "role"
	ctxAccount ctxKey = "account"
)

// Gate admits or rejects requests by bearer token and role.
type Gate struct {
	log      zerolog.Logger
	tokens   TokenVerifier
	accounts AccountResolver
}

func NewGate(log zerolog.Logger, tokens TokenVerifier, accounts AccountResolver) *Gate {
	return &Gate{log: log, tokens: tokens, accounts: accounts}
}

func (g *Gate) RequireAuth(next http.Handler) http.Handler  { return g.require(Authenticated, next) }
func (g *Gate) RequireAdmin(next http.Handler) http.Handler { return g.require(AdminOnly, next) }

func (g *Gate) require(req Requirement, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acc, err := g.Admit(r.Context(), r.Header.Get("Authorization"), req)
		switch {
		case err == nil:
			next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), acc)))
		case errors.Is(err, ErrMissingToken), errors.Is(err, ErrAccountNotFound):
			utils.Error(w, http.StatusUnauthorized, err.Error())
		case errors.Is(err, token.ErrInvalidToken):
			utils.Error(w, http.StatusUnauthorized, "token is not valid")
		case errors.Is(err, ErrForbidden):
			utils.Error(w, http.StatusForbidden, err.Error())
		default:
			g.log.Error().Err(err).Str("path", r.URL.Path).Msg("resolve account")
			utils.Error(w, http.StatusInternalServerError, "internal server error")
		}
	})
}

// WithAccount attaches the admitted account, its id and role to ctx.
func WithAccount(ctx context.Context, a *models.Account) context.Context {
	ctx = context.WithValue(ctx, ctxAccount, a)
	ctx = context.WithValue(ctx, CtxUserID, a.ID)
	return context.WithValue(ctx, CtxRole, string(a.Role))
}

// AccountFrom returns the account attached by the gate, if any.
func AccountFrom(ctx context.Context) (*models.Account, bool) {
	a, ok := ctx.Value(ctxAccount).(*models.Account)
	return a, ok && a != nil
}
