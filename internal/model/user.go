package model

import (
	"context"
	"time"
)

// Role is the capability level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, user User) (User, error)
	List(ctx context.Context) ([]User, error)
}

// User represents a stored user with authentication material.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
}

// Profile returns the user without authentication material.
func (u User) Profile() Profile {
	return Profile{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// Caller returns the identity of u as seen by the lifecycle engine.
func (u User) Caller() Caller {
	return Caller{ID: u.ID, Name: u.Name, Role: u.Role}
}

// Profile is the public view of a user.
type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// Caller is the authenticated identity performing an operation.
// The zero value is an anonymous caller.
type Caller struct {
	ID   string
	Name string
	Role Role
}

// Authenticated reports whether the caller carries an identity.
func (c Caller) Authenticated() bool {
	return c.ID != ""
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Authenticated() && c.Role == RoleAdmin
}
