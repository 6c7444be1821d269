package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Hira-Iftikhar-123/preloved-backend/internal/models"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepo struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func NewTicketRepo(db *pgxpool.Pool) *TicketRepo { return &TicketRepo{db: db, now: time.Now} }

const ticketSelect = `
	SELECT
		t.id::text, t.user_id::text, t.subject, t.description, t.status, t.priority, t.category,
		COALESCE(t.assigned_to::text, ''), COALESCE(t.admin_response, ''), t.created_at, t.updated_at,
		COALESCE(u.name, ''), COALESCE(u.email, '')
	FROM support_tickets t
	LEFT JOIN users u ON u.id = t.user_id`

// -----------------------------------------------------------------------------
// Listing (owner name/email joined)
// -----------------------------------------------------------------------------

// List returns tickets matching f, newest first.
func (r *TicketRepo) List(ctx context.Context, f repository.TicketFilter) ([]models.Ticket, error) {
	if f.OwnerID != "" && !validID(f.OwnerID) {
		return []models.Ticket{}, nil
	}
	whereSQL, args := buildTicketWhere(f)
	rows, err := r.db.Query(ctx, ticketSelect+"\n"+whereSQL+"\nORDER BY t.created_at DESC, t.id DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// Summaries is the projection used for chat rooms.
func (r *TicketRepo) Summaries(ctx context.Context, f repository.TicketFilter) ([]models.TicketSummary, error) {
	if f.OwnerID != "" && !validID(f.OwnerID) {
		return []models.TicketSummary{}, nil
	}
	whereSQL, args := buildTicketWhere(f)
	rows, err := r.db.Query(ctx, `
		SELECT t.id::text, t.subject, t.status, t.created_at
		FROM support_tickets t
		`+whereSQL+`
		ORDER BY t.created_at DESC, t.id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.TicketSummary{}
	for rows.Next() {
		var (
			s      models.TicketSummary
			status string
		)
		if err := rows.Scan(&s.ID, &s.Subject, &status, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Status = models.Status(status)
		out = append(out, s)
	}
	return out, rows.Err()
}

// -----------------------------------------------------------------------------
// Single ticket + create/update
// -----------------------------------------------------------------------------

func (r *TicketRepo) Get(ctx context.Context, id string) (*models.Ticket, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	t, err := scanTicket(r.db.QueryRow(ctx, ticketSelect+"\nWHERE t.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	msgs, err := r.Messages(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Messages = msgs
	return t, nil
}

func (r *TicketRepo) Create(ctx context.Context, t *models.Ticket) error {
	now := r.now()
	t.Status = models.StatusOpen
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if t.Category == "" {
		t.Category = models.CategoryGeneral
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO support_tickets (user_id, subject, description, status, priority, category, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id::text, created_at, updated_at
	`,
		t.UserID, t.Subject, t.Description, string(t.Status), string(t.Priority), string(t.Category), now, now,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return err
	}
	t.Messages = []models.Message{}
	return nil
}

// Update applies p and refreshes updated_at. GREATEST keeps updated_at
// monotonic when app clocks disagree.
func (r *TicketRepo) Update(ctx context.Context, id string, p repository.TicketPatch) (*models.Ticket, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	args := []any{r.now()}
	sets := []string{"updated_at = GREATEST(updated_at, $1)"}

	if p.Status != nil {
		args = append(args, string(*p.Status))
		sets = append(sets, "status = $"+itoa(len(args)))
	}
	if p.Priority != nil {
		args = append(args, string(*p.Priority))
		sets = append(sets, "priority = $"+itoa(len(args)))
	}
	if p.AssignedTo != nil {
		args = append(args, nullIfEmpty(*p.AssignedTo))
		sets = append(sets, "assigned_to = $"+itoa(len(args))+"::uuid")
	}
	if p.AdminResponse != nil {
		args = append(args, nullIfEmpty(*p.AdminResponse))
		sets = append(sets, "admin_response = $"+itoa(len(args)))
	}
	args = append(args, id)

	ct, err := r.db.Exec(ctx,
		`UPDATE support_tickets SET `+strings.Join(sets, ", ")+` WHERE id = $`+itoa(len(args)),
		args...)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, repository.ErrNotFound
	}
	return r.Get(ctx, id)
}

// -----------------------------------------------------------------------------
// Message ledger
// -----------------------------------------------------------------------------

// AppendMessage touches the ticket and inserts the message in one
// transaction; a missing ticket leaves the ledger untouched.
func (r *TicketRepo) AppendMessage(ctx context.Context, ticketID string, m *models.Message) error {
	if !validID(ticketID) {
		return repository.ErrNotFound
	}
	now := r.now()
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx,
			`UPDATE support_tickets SET updated_at = GREATEST(updated_at, $2) WHERE id = $1`,
			ticketID, now)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return repository.ErrNotFound
		}
		m.TicketID = ticketID
		return tx.QueryRow(ctx, `
			INSERT INTO ticket_messages (ticket_id, sender_id, sender_type, content, created_at)
			VALUES ($1,$2,$3,$4,$5)
			RETURNING id::text, created_at
		`, ticketID, m.SenderID, string(m.SenderType), m.Content, now).Scan(&m.ID, &m.Timestamp)
	})
}

func (r *TicketRepo) Messages(ctx context.Context, ticketID string) ([]models.Message, error) {
	if !validID(ticketID) {
		return nil, repository.ErrNotFound
	}
	rows, err := r.db.Query(ctx, `
		SELECT id::text, ticket_id::text, sender_id::text, sender_type, content, created_at
		FROM ticket_messages
		WHERE ticket_id = $1
		ORDER BY seq ASC
	`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Message{}
	for rows.Next() {
		var (
			m          models.Message
			senderType string
		)
		if err := rows.Scan(&m.ID, &m.TicketID, &m.SenderID, &senderType, &m.Content, &m.Timestamp); err != nil {
			return nil, err
		}
		m.SenderType = models.Role(senderType)
		out = append(out, m)
	}
	return out, rows.Err()
}

// -----------------------------------------------------------------------------
// Reporting (used by /api/admin/support/summary)
// -----------------------------------------------------------------------------

func (r *TicketRepo) Stats(ctx context.Context, resolvedSince time.Time) (models.TicketStats, error) {
	var s models.TicketStats
	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'open'),
			COUNT(*) FILTER (WHERE status = 'in-progress'),
			COUNT(*) FILTER (WHERE status = 'resolved'),
			COUNT(*) FILTER (WHERE status = 'closed'),
			COUNT(*) FILTER (WHERE status IN ('resolved','closed') AND updated_at >= $1),
			COUNT(*) FILTER (WHERE status NOT IN ('resolved','closed') AND priority = 'high')
		FROM support_tickets
	`, resolvedSince).Scan(&s.Total, &s.Open, &s.InProgress, &s.Resolved, &s.Closed, &s.Resolved7d, &s.HighOpen)
	return s, err
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func scanTicket(row pgx.Row) (*models.Ticket, error) {
	var (
		t                          models.Ticket
		status, priority, category string
		ownerName, ownerEmail      string
	)
	if err := row.Scan(
		&t.ID, &t.UserID, &t.Subject, &t.Description, &status, &priority, &category,
		&t.AssignedTo, &t.AdminResponse, &t.CreatedAt, &t.UpdatedAt,
		&ownerName, &ownerEmail,
	); err != nil {
		return nil, err
	}
	t.Status = models.Status(status)
	t.Priority = models.Priority(priority)
	t.Category = models.Category(category)
	t.Messages = []models.Message{}
	if ownerEmail != "" {
		t.Owner = &models.AccountRef{ID: t.UserID, Name: ownerName, Email: ownerEmail}
	}
	return &t, nil
}

// buildTicketWhere composes the WHERE clause and args for f (aliased t).
func buildTicketWhere(f repository.TicketFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if f.OwnerID != "" {
		args = append(args, f.OwnerID)
		clauses = append(clauses, "t.user_id = $"+itoa(len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		clauses = append(clauses, "t.status = $"+itoa(len(args)))
	}
	if f.Priority != "" {
		args = append(args, string(f.Priority))
		clauses = append(clauses, "t.priority = $"+itoa(len(args)))
	}
	if f.Category != "" {
		args = append(args, string(f.Category))
		clauses = append(clauses, "t.category = $"+itoa(len(args)))
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// validID filters ids that would make the uuid cast fail server-side.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func itoa(i int) string { return strconv.Itoa(i) }
