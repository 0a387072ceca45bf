package event

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avoronov/eventhub/internal/domain"
)

type CreateCmd struct {
	InitiatorID uuid.UUID

	Title             string
	Annotation        string
	Description       string
	CategoryID        uuid.UUID
	Location          domain.Location
	EventDate         time.Time
	Paid              bool
	ParticipantLimit  int
	RequestModeration bool
}

func (s *Service) Create(ctx context.Context, cmd CreateCmd) (*domain.Event, error) {
	if ok, err := s.users.Exists(ctx, cmd.InitiatorID); err != nil {
		return nil, err
	} else if !ok {
		return nil, domain.ErrNotFound("user not found")
	}
	if ok, err := s.categories.Exists(ctx, cmd.CategoryID); err != nil {
		return nil, err
	} else if !ok {
		return nil, domain.ErrNotFound("category not found")
	}

	now := s.clock.Now()
	ev, err := domain.NewEvent(domain.NewEventParams{
		Title:             cmd.Title,
		Annotation:        cmd.Annotation,
		Description:       cmd.Description,
		CategoryID:        cmd.CategoryID,
		InitiatorID:       cmd.InitiatorID,
		Location:          cmd.Location,
		EventDate:         cmd.EventDate,
		Paid:              cmd.Paid,
		ParticipantLimit:  cmd.ParticipantLimit,
		RequestModeration: cmd.RequestModeration,
	}, now)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}
