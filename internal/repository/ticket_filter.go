package repository

import "github.com/Hira-Iftikhar-123/preloved-backend/internal/models"

// TicketFilter narrows ticket listings. Zero values match everything;
// results are always ordered newest first.
type TicketFilter struct {
	OwnerID  string
	Status   models.Status
	Priority models.Priority
	Category models.Category
}

// TicketPatch holds the only fields mutable after creation. Nil means
// "leave unchanged"; an empty AssignedTo clears the assignment.
type TicketPatch struct {
	Status        *models.Status
	Priority      *models.Priority
	AssignedTo    *string
	AdminResponse *string
}
