package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/Hira-Iftikhar-123/preloved-backend/internal/models"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/repository"
)

var (
	ErrMissingToken    = errors.New("no authentication token, access denied")
	ErrAccountNotFound = errors.New("user not found")
	ErrForbidden       = errors.New("access denied, admin privileges required")
)

// Requirement is the role level a route demands.
type Requirement int

const (
	Authenticated Requirement = iota
	AdminOnly
)

type TokenVerifier interface {
	Verify(token string) (subjectID string, err error)
}

type AccountResolver interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
}

// Admit decides whether a request carrying the given Authorization header
// value satisfies req. The account is looked up on every call so role
// changes apply to the very next request.
func (g *Gate) Admit(ctx context.Context, header string, req Requirement) (*models.Account, error) {
	raw, ok := bearer(header)
	if !ok {
		return nil, ErrMissingToken
	}
	sub, err := g.tokens.Verify(raw)
	if err != nil {
		return nil, err
	}
	acc, err := g.accounts.GetByID(ctx, sub)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	if req == AdminOnly && !acc.IsAdmin() {
		return nil, ErrForbidden
	}
	return acc, nil
}

func bearer(header string) (string, bool) {
	tok, ok := strings.CutPrefix(strings.TrimSpace(header), "Bearer ")
	if !ok {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
