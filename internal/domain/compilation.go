package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Compilation is a curated, optionally pinned set of events.
type Compilation struct {
	ID        uuid.UUID
	Title     string
	Pinned    bool
	EventIDs  []uuid.UUID
	CreatedAt time.Time
}

func NewCompilation(title string, pinned bool, eventIDs []uuid.UUID, now time.Time) (*Compilation, error) {
	title = strings.TrimSpace(title)
	if title == "" || len(title) > 50 {
		return nil, ErrValidation("compilation title is required and must be <= 50 chars")
	}
	return &Compilation{
		ID:        uuid.New(),
		Title:     title,
		Pinned:    pinned,
		EventIDs:  eventIDs,
		CreatedAt: now.UTC(),
	}, nil
}

type CompilationUpdate struct {
	Title    *string
	Pinned   *bool
	EventIDs []uuid.UUID
}

func (c *Compilation) ApplyUpdate(u CompilationUpdate) error {
	if u.Title != nil {
		v := strings.TrimSpace(*u.Title)
		if v == "" || len(v) > 50 {
			return ErrValidation("compilation title is required and must be <= 50 chars")
		}
		c.Title = v
	}
	if u.Pinned != nil {
		c.Pinned = *u.Pinned
	}
	if u.EventIDs != nil {
		c.EventIDs = u.EventIDs
	}
	return nil
}
