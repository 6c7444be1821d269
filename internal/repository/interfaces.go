package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Hira-Iftikhar-123/preloved-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type TicketRepository interface {
	Create(ctx context.Context, t *models.Ticket) error
	Get(ctx context.Context, id string) (*models.Ticket, error)
	List(ctx context.Context, f TicketFilter) ([]models.Ticket, error)
	Summaries(ctx context.Context, f TicketFilter) ([]models.TicketSummary, error)
	Update(ctx context.Context, id string, p TicketPatch) (*models.Ticket, error)
	AppendMessage(ctx context.Context, ticketID string, m *models.Message) error
	Messages(ctx context.Context, ticketID string) ([]models.Message, error)
	Stats(ctx context.Context, resolvedSince time.Time) (models.TicketStats, error)
}

type AccountRepository interface {
	Create(ctx context.Context, a *models.Account, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (*models.Account, string /*passwordHash*/, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
}
