package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/Hira-Iftikhar-123/preloved-backend/internal/models"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccountRepo struct{ db *pgxpool.Pool }

func NewAccountRepo(db *pgxpool.Pool) *AccountRepo { return &AccountRepo{db: db} }

const accountColumns = `id::text, email, name, location, role, created_at, updated_at`

// Create inserts an account; the bcrypt hash goes to password_h and is
// never selected back except by GetByEmail.
func (r *AccountRepo) Create(ctx context.Context, a *models.Account, passwordHash string) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (email, name, location, role, password_h)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id::text, created_at, updated_at`,
		strings.TrimSpace(a.Email), a.Name, a.Location, string(a.Role), passwordHash).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, string, error) {
	var ph string
	a, err := scanAccount(r.db.QueryRow(ctx, `
		SELECT `+accountColumns+`, password_h
		FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email)), &ph)
	if err != nil {
		return nil, "", err
	}
	return a, ph, nil
}

func (r *AccountRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return scanAccount(r.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM users WHERE id = $1`, id))
}

func scanAccount(row pgx.Row, extra ...any) (*models.Account, error) {
	var (
		a    models.Account
		role string
	)
	dest := append([]any{&a.ID, &a.Email, &a.Name, &a.Location, &role, &a.CreatedAt, &a.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	a.Role = models.Role(role)
	return &a, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
