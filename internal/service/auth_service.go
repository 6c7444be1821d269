package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Hira-Iftikhar-123/preloved-backend/internal/models"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/repository"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/token"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/utils"
)

const minPasswordLen = 5

type AuthService struct {
	users         repository.AccountRepository
	tokens        *token.Service
	tokenTTL      time.Duration
	adminTokenTTL time.Duration
}

func NewAuthService(users repository.AccountRepository, tokens *token.Service, tokenTTL, adminTokenTTL time.Duration) *AuthService {
	return &AuthService{users: users, tokens: tokens, tokenTTL: tokenTTL, adminTokenTTL: adminTokenTTL}
}

type RegisterInput struct {
	Email    string
	Name     string
	Password string
	Location string
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Account   *models.Account
}

// Register creates a regular account. Self-registration never yields an
// admin.
func (a *AuthService) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	return a.create(ctx, in, models.RoleUser)
}

// SeedAdmin creates an admin account unless the email is already taken,
// in which case the existing account is returned untouched.
func (a *AuthService) SeedAdmin(ctx context.Context, in RegisterInput) (*models.Account, error) {
	acc, err := a.create(ctx, in, models.RoleAdmin)
	if errors.Is(err, repository.ErrDuplicate) {
		existing, _, gerr := a.users.GetByEmail(ctx, in.Email)
		return existing, gerr
	}
	return acc, err
}

func (a *AuthService) create(ctx context.Context, in RegisterInput, role models.Role) (*models.Account, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if in.Email == "" || in.Name == "" {
		return nil, invalid("name and email are required")
	}
	if len(in.Password) < minPasswordLen {
		return nil, invalid("password must be at least %d characters", minPasswordLen)
	}
	if len(in.Password) > utils.MaxPasswordBytes {
		return nil, invalid("password must be at most %d bytes", utils.MaxPasswordBytes)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	acc := &models.Account{
		Email:    in.Email,
		Name:     in.Name,
		Location: strings.TrimSpace(in.Location),
		Role:     role,
	}
	if err := a.users.Create(ctx, acc, hash); err != nil {
		return nil, err
	}
	return acc, nil
}

// Login authenticates a regular account. Admin accounts are refused here
// even with a correct password.
func (a *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := a.checkCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if u.IsAdmin() {
		return nil, ErrAdminLoginRequired
	}
	return a.issue(u, a.tokenTTL)
}

// AdminLogin authenticates admin accounts only.
func (a *AuthService) AdminLogin(ctx context.Context, email, password string) (*Session, error) {
	u, err := a.checkCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !u.IsAdmin() {
		return nil, ErrInvalidCredentials
	}
	return a.issue(u, a.adminTokenTTL)
}

func (a *AuthService) checkCredentials(ctx context.Context, email, password string) (*models.Account, error) {
	u, hash, err := a.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrNotFound) {
		utils.BurnPasswordCheck(password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(hash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (a *AuthService) issue(u *models.Account, ttl time.Duration) (*Session, error) {
	tok, exp, err := a.tokens.Issue(u.ID, ttl)
	if err != nil {
		return nil, err
	}
	return &Session{Token: tok, ExpiresAt: exp, Account: u}, nil
}
