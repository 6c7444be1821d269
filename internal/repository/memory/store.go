// Package memory is an in-process implementation of the repository
// interfaces. It backs STORE_DRIVER=memory and the service/handler tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Hira-Iftikhar-123/preloved-backend/internal/models"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/repository"
)

type accountRecord struct {
	account      models.Account
	passwordHash string
}

type ticketRecord struct {
	seq    int
	ticket models.Ticket
}

// Store holds accounts and tickets behind a single RWMutex.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*accountRecord
	emails   map[string]string // lower(email) -> id
	tickets  map[string]*ticketRecord
	seq      int
	now      func() time.Time
}

type Option func(*Store)

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		accounts: make(map[string]*accountRecord),
		emails:   make(map[string]string),
		tickets:  make(map[string]*ticketRecord),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) Accounts() *AccountRepo { return &AccountRepo{s: s} }
func (s *Store) Tickets() *TicketRepo   { return &TicketRepo{s: s} }

// -----------------------------------------------------------------------------
// Accounts
// -----------------------------------------------------------------------------

type AccountRepo struct{ s *Store }

var _ repository.AccountRepository = (*AccountRepo)(nil)

func (r *AccountRepo) Create(_ context.Context, a *models.Account, passwordHash string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(a.Email))
	if _, ok := s.emails[key]; ok {
		return repository.ErrDuplicate
	}
	now := s.now()
	a.ID = uuid.NewString()
	a.CreatedAt, a.UpdatedAt = now, now
	s.accounts[a.ID] = &accountRecord{account: *a, passwordHash: passwordHash}
	s.emails[key] = a.ID
	return nil
}

func (r *AccountRepo) GetByEmail(_ context.Context, email string) (*models.Account, string, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, "", repository.ErrNotFound
	}
	rec := s.accounts[id]
	a := rec.account
	return &a, rec.passwordHash, nil
}

func (r *AccountRepo) GetByID(_ context.Context, id string) (*models.Account, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	a := rec.account
	return &a, nil
}

// -----------------------------------------------------------------------------
// Tickets + message ledger
// -----------------------------------------------------------------------------

type TicketRepo struct{ s *Store }

var _ repository.TicketRepository = (*TicketRepo)(nil)

func (r *TicketRepo) Create(_ context.Context, t *models.Ticket) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	t.ID = uuid.NewString()
	t.Status = models.StatusOpen
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if t.Category == "" {
		t.Category = models.CategoryGeneral
	}
	t.Messages = []models.Message{}
	t.CreatedAt, t.UpdatedAt = now, now

	s.seq++
	s.tickets[t.ID] = &ticketRecord{seq: s.seq, ticket: copyTicket(*t)}
	t.Owner = s.ownerRef(t.UserID)
	return nil
}

func (r *TicketRepo) Get(_ context.Context, id string) (*models.Ticket, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t := copyTicket(rec.ticket)
	t.Owner = s.ownerRef(t.UserID)
	return &t, nil
}

func (r *TicketRepo) List(_ context.Context, f repository.TicketFilter) ([]models.Ticket, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.match(f)
	out := make([]models.Ticket, 0, len(recs))
	for _, rec := range recs {
		t := copyTicket(rec.ticket)
		t.Owner = s.ownerRef(t.UserID)
		out = append(out, t)
	}
	return out, nil
}

func (r *TicketRepo) Summaries(_ context.Context, f repository.TicketFilter) ([]models.TicketSummary, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.match(f)
	out := make([]models.TicketSummary, 0, len(recs))
	for _, rec := range recs {
		out = append(out, models.TicketSummary{
			ID:        rec.ticket.ID,
			Subject:   rec.ticket.Subject,
			Status:    rec.ticket.Status,
			CreatedAt: rec.ticket.CreatedAt,
		})
	}
	return out, nil
}

func (r *TicketRepo) Update(_ context.Context, id string, p repository.TicketPatch) (*models.Ticket, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t := &rec.ticket
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.AssignedTo != nil {
		t.AssignedTo = *p.AssignedTo
	}
	if p.AdminResponse != nil {
		t.AdminResponse = *p.AdminResponse
	}
	s.touch(t)

	out := copyTicket(*t)
	out.Owner = s.ownerRef(out.UserID)
	return &out, nil
}

func (r *TicketRepo) AppendMessage(_ context.Context, ticketID string, m *models.Message) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.tickets[ticketID]
	if !ok {
		return repository.ErrNotFound
	}
	m.ID = uuid.NewString()
	m.TicketID = ticketID
	m.Timestamp = s.now()
	rec.ticket.Messages = append(rec.ticket.Messages, *m)
	s.touch(&rec.ticket)
	return nil
}

func (r *TicketRepo) Messages(_ context.Context, ticketID string) ([]models.Message, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.tickets[ticketID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := make([]models.Message, len(rec.ticket.Messages))
	copy(out, rec.ticket.Messages)
	return out, nil
}

func (r *TicketRepo) Stats(_ context.Context, resolvedSince time.Time) (models.TicketStats, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st models.TicketStats
	for _, rec := range s.tickets {
		t := rec.ticket
		st.Total++
		closed := false
		switch t.Status {
		case models.StatusOpen:
			st.Open++
		case models.StatusInProgress:
			st.InProgress++
		case models.StatusResolved:
			st.Resolved++
			closed = true
		case models.StatusClosed:
			st.Closed++
			closed = true
		}
		if closed && !t.UpdatedAt.Before(resolvedSince) {
			st.Resolved7d++
		}
		if !closed && t.Priority == models.PriorityHigh {
			st.HighOpen++
		}
	}
	return st, nil
}

// -----------------------------------------------------------------------------
// Helpers (callers hold s.mu)
// -----------------------------------------------------------------------------

// match returns the records passing f, newest first. Ties on createdAt
// fall back to insertion order.
func (s *Store) match(f repository.TicketFilter) []*ticketRecord {
	var recs []*ticketRecord
	for _, rec := range s.tickets {
		t := rec.ticket
		if f.OwnerID != "" && t.UserID != f.OwnerID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i].ticket.CreatedAt, recs[j].ticket.CreatedAt
		if !a.Equal(b) {
			return a.After(b)
		}
		return recs[i].seq > recs[j].seq
	})
	return recs
}

// touch refreshes updatedAt without ever moving it backwards.
func (s *Store) touch(t *models.Ticket) {
	if now := s.now(); now.After(t.UpdatedAt) {
		t.UpdatedAt = now
	}
}

func (s *Store) ownerRef(id string) *models.AccountRef {
	rec, ok := s.accounts[id]
	if !ok {
		return nil
	}
	return rec.account.Public()
}

func copyTicket(t models.Ticket) models.Ticket {
	msgs := make([]models.Message, len(t.Messages))
	copy(msgs, t.Messages)
	t.Messages = msgs
	t.Owner = nil
	return t
}
