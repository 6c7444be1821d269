package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Hira-Iftikhar-123/preloved-backend/internal/models"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/repository"
)

// TicketService enforces who may read and mutate support tickets. Every
// method takes the requester resolved by the authorization gate; a nil
// requester is always refused.
//
// Status changes are deliberately unconstrained: an admin may move a
// ticket from any status to any other. Concurrent updates are last write
// wins.
type TicketService struct {
	tickets  repository.TicketRepository
	accounts repository.AccountRepository
	now      func() time.Time
}

func NewTicketService(tickets repository.TicketRepository, accounts repository.AccountRepository) *TicketService {
	return &TicketService{tickets: tickets, accounts: accounts, now: time.Now}
}

type CreateTicketInput struct {
	Subject     string
	Description string
	Priority    models.Priority
	Category    models.Category
}

// ListTicketsInput narrows listings. OwnerID is honoured for admins and
// must match the requester otherwise.
type ListTicketsInput struct {
	OwnerID  string
	Status   models.Status
	Priority models.Priority
	Category models.Category
}

type UpdateTicketInput struct {
	Status        *models.Status
	Priority      *models.Priority
	AssignedTo    *string
	AdminResponse *string
}

func (s *TicketService) CreateTicket(ctx context.Context, requester *models.Account, in CreateTicketInput) (*models.Ticket, error) {
	if requester == nil {
		return nil, ErrForbidden
	}
	t := &models.Ticket{
		UserID:      requester.ID,
		Subject:     strings.TrimSpace(in.Subject),
		Description: strings.TrimSpace(in.Description),
		Priority:    in.Priority,
		Category:    in.Category,
	}
	if t.Subject == "" || t.Description == "" {
		return nil, invalid("subject and description are required")
	}
	if t.Priority != "" && !t.Priority.Valid() {
		return nil, invalid("unknown priority %q", t.Priority)
	}
	if t.Category != "" && !t.Category.Valid() {
		return nil, invalid("unknown category %q", t.Category)
	}
	if err := s.tickets.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TicketService) ListTickets(ctx context.Context, requester *models.Account, in ListTicketsInput) ([]models.Ticket, error) {
	f, err := s.filterFor(requester, in)
	if err != nil {
		return nil, err
	}
	return s.tickets.List(ctx, f)
}

// ChatRooms lists the same tickets as ListTickets, projected to
// {id, subject, status, createdAt}.
func (s *TicketService) ChatRooms(ctx context.Context, requester *models.Account, in ListTicketsInput) ([]models.TicketSummary, error) {
	f, err := s.filterFor(requester, in)
	if err != nil {
		return nil, err
	}
	return s.tickets.Summaries(ctx, f)
}

func (s *TicketService) GetTicket(ctx context.Context, requester *models.Account, id string) (*models.Ticket, error) {
	if requester == nil {
		return nil, ErrForbidden
	}
	t, err := s.tickets.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(requester, t) {
		return nil, ErrForbidden
	}
	return t, nil
}

// Messages returns the ticket's ledger in insertion order, with the same
// authorization as GetTicket.
func (s *TicketService) Messages(ctx context.Context, requester *models.Account, ticketID string) ([]models.Message, error) {
	if _, err := s.GetTicket(ctx, requester, ticketID); err != nil {
		return nil, err
	}
	return s.tickets.Messages(ctx, ticketID)
}

// ReplyToTicket appends content to the ticket's ledger on behalf of the
// owner or an admin and returns the refreshed ticket with its owner
// joined, plus the stored message.
func (s *TicketService) ReplyToTicket(ctx context.Context, requester *models.Account, ticketID, content string) (*models.Ticket, *models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil, invalid("message content is required")
	}
	if _, err := s.GetTicket(ctx, requester, ticketID); err != nil {
		return nil, nil, err
	}

	m := &models.Message{
		SenderID:   requester.ID,
		SenderType: requester.Role,
		Content:    content,
	}
	if err := s.tickets.AppendMessage(ctx, ticketID, m); err != nil {
		return nil, nil, err
	}
	t, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	return t, m, nil
}

// UpdateTicket is admin only, regardless of ownership.
func (s *TicketService) UpdateTicket(ctx context.Context, requester *models.Account, ticketID string, in UpdateTicketInput) (*models.Ticket, error) {
	if !requester.IsAdmin() {
		return nil, ErrForbidden
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, invalid("unknown status %q", *in.Status)
	}
	if in.Priority != nil && !in.Priority.Valid() {
		return nil, invalid("unknown priority %q", *in.Priority)
	}
	if in.AssignedTo != nil {
		id := strings.TrimSpace(*in.AssignedTo)
		in.AssignedTo = &id
		if id != "" {
			if err := s.checkAssignee(ctx, id); err != nil {
				return nil, err
			}
		}
	}
	return s.tickets.Update(ctx, ticketID, repository.TicketPatch{
		Status:        in.Status,
		Priority:      in.Priority,
		AssignedTo:    in.AssignedTo,
		AdminResponse: in.AdminResponse,
	})
}

// Summary reports ticket counts for the admin dashboard.
func (s *TicketService) Summary(ctx context.Context, requester *models.Account) (models.TicketStats, error) {
	if !requester.IsAdmin() {
		return models.TicketStats{}, ErrForbidden
	}
	return s.tickets.Stats(ctx, s.now().Add(-7*24*time.Hour))
}

func (s *TicketService) checkAssignee(ctx context.Context, id string) error {
	a, err := s.accounts.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return invalid("assignee %q does not exist", id)
	}
	if err != nil {
		return err
	}
	if !a.IsAdmin() {
		return invalid("assignee must be an admin")
	}
	return nil
}

func (s *TicketService) filterFor(requester *models.Account, in ListTicketsInput) (repository.TicketFilter, error) {
	if requester == nil {
		return repository.TicketFilter{}, ErrForbidden
	}
	if in.Status != "" && !in.Status.Valid() {
		return repository.TicketFilter{}, invalid("unknown status %q", in.Status)
	}
	if in.Priority != "" && !in.Priority.Valid() {
		return repository.TicketFilter{}, invalid("unknown priority %q", in.Priority)
	}
	if in.Category != "" && !in.Category.Valid() {
		return repository.TicketFilter{}, invalid("unknown category %q", in.Category)
	}
	f := repository.TicketFilter{
		OwnerID:  in.OwnerID,
		Status:   in.Status,
		Priority: in.Priority,
		Category: in.Category,
	}
	if requester.IsAdmin() {
		return f, nil
	}
	if in.OwnerID != "" && in.OwnerID != requester.ID {
		return repository.TicketFilter{}, ErrForbidden
	}
	f.OwnerID = requester.ID
	return f, nil
}

func canAccess(a *models.Account, t *models.Ticket) bool {
	return a.IsAdmin() || t.UserID == a.ID
}
