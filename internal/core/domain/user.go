package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployer Role = "employer"
	RoleStandard Role = "standard"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmployer, RoleStandard:
		return true
	}
	return false
}

// User is the canonical account record owned by the credential store.
type User struct {
	ID             string
	Name           string
	Email          string
	PasswordHash   string
	Role           Role
	State          string
	Active         bool
	ProfilePicture *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PublicUser is the projection of a User that may leave the service.
type PublicUser struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Role           Role    `json:"role"`
	State          string  `json:"state"`
	Active         bool    `json:"active"`
	ProfilePicture *string `json:"profilePicture"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		State:          u.State,
		Active:         u.Active,
		ProfilePicture: u.ProfilePicture,
	}
}

// Identity is the request-scoped principal resolved from a verified session token.
type Identity struct {
	UserID string
	Role   Role
	Name   string
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// NormalizeEmail is applied before every lookup and insert so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
