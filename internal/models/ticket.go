package models

import "time"

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in-progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Category string

const (
	CategoryGeneral   Category = "general"
	CategoryTechnical Category = "technical"
	CategoryBilling   Category = "billing"
	CategoryProduct   Category = "product"
	CategoryOther     Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryTechnical, CategoryBilling, CategoryProduct, CategoryOther:
		return true
	}
	return false
}

type Ticket struct {
	ID            string      `json:"id"`
	UserID        string      `json:"userId"`
	Subject       string      `json:"subject"`
	Description   string      `json:"description"`
	Status        Status      `json:"status"`
	Priority      Priority    `json:"priority"`
	Category      Category    `json:"category"`
	AssignedTo    string      `json:"assignedTo,omitempty"`
	AdminResponse string      `json:"adminResponse,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
	Messages      []Message   `json:"messages"`
	Owner         *AccountRef `json:"owner,omitempty"`
}

type Message struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticketId"`
	SenderID   string    `json:"senderId"`
	SenderType Role      `json:"senderType"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
}

// TicketSummary is the chat-room projection of a ticket.
type TicketSummary struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// TicketStats backs the admin support summary.
type TicketStats struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Resolved   int `json:"resolved"`
	Closed     int `json:"closed"`
	Resolved7d int `json:"resolved7d"`
	HighOpen   int `json:"highOpen"`
}
