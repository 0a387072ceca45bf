package domain

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	CreatedAt time.Time
}

func NewUser(name, email string, now time.Time) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" || len(name) > 250 {
		return nil, ErrValidation("user name is required and must be <= 250 chars")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrValidation("email is not valid")
	}
	return &User{ID: uuid.New(), Name: name, Email: email, CreatedAt: now.UTC()}, nil
}
