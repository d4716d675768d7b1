package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is an account that can log in and own leads and tasks.
// PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func NewUser(name, email, passwordHash string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(name),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if user.Name == "" || user.Email == "" || user.PasswordHash == "" {
		return nil, errors.New("name, email and password are required")
	}

	return user, nil
}

// Ref returns a reference labelled with the user's name and email.
func (u *User) Ref() *Ref {
	return &Ref{ID: u.ID, Name: u.Name, Email: u.Email}
}

type UserRepository interface {
	// Create returns ErrEmailAlreadyExists when the email is taken.
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
}
