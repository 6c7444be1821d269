package models

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

func (r Role) IsAdmin() bool { return r == RoleAdmin }

type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	Role      Role      `json:"role"` // user | admin
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a *Account) IsAdmin() bool { return a != nil && a.Role.IsAdmin() }

// Public returns the identity that may be joined into ticket payloads.
func (a *Account) Public() *AccountRef {
	return &AccountRef{ID: a.ID, Name: a.Name, Email: a.Email}
}

// AccountRef is the owner identity embedded in tickets. It never carries
// the credential.
type AccountRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
