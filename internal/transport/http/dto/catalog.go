package dto

import (
	"time"

	"github.com/google/uuid"
)

type NewCategoryReq struct {
	Name string `json:"name" validate:"required,max=50"`
}

type CategoryResp struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type NewUserReq struct {
	Name  string `json:"name" validate:"required,max=250"`
	Email string `json:"email" validate:"required,email"`
}

type UserResp struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type NewCompilationReq struct {
	Title    string      `json:"title" validate:"required,max=50"`
	Pinned   bool        `json:"pinned"`
	EventIDs []uuid.UUID `json:"event_ids"`
}

type UpdateCompilationReq struct {
	Title    *string     `json:"title,omitempty" validate:"omitempty,max=50"`
	Pinned   *bool       `json:"pinned,omitempty"`
	EventIDs []uuid.UUID `json:"event_ids,omitempty"`
}

type CompilationResp struct {
	ID       uuid.UUID   `json:"id"`
	Title    string      `json:"title"`
	Pinned   bool        `json:"pinned"`
	EventIDs []uuid.UUID `json:"event_ids"`
}
