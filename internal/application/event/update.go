package event

import (
	"context"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/avoronov/eventhub/internal/domain"
)

type UpdateCmd struct {
	ActorID uuid.UUID
	EventID uuid.UUID

	Title             *string
	Annotation        *string
	Description       *string
	CategoryID        *uuid.UUID
	Location          *domain.Location
	EventDate         *time.Time
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool

	// StateAction is optional; initiators may only submit for review or
	// withdraw from it.
	StateAction *domain.StateAction
}

// UpdateByInitiator edits a non-published event owned by the actor and
// optionally moves it through the review queue.
func (s *Service) UpdateByInitiator(ctx context.Context, cmd UpdateCmd) (*domain.Event, error) {
	ev, err := s.repo.GetByID(ctx, cmd.EventID)
	if err != nil {
		return nil, err
	}
	if ev.InitiatorID != cmd.ActorID {
		return nil, domain.ErrForbidden("only the initiator can edit this event")
	}

	now := s.clock.Now()

	if err := ev.ApplyUpdate(domain.EventUpdate{
		Title:             cmd.Title,
		Annotation:        cmd.Annotation,
		Description:       cmd.Description,
		CategoryID:        cmd.CategoryID,
		Location:          cmd.Location,
		EventDate:         cmd.EventDate,
		Paid:              cmd.Paid,
		ParticipantLimit:  cmd.ParticipantLimit,
		RequestModeration: cmd.RequestModeration,
	}, now, false); err != nil {
		return nil, err
	}

	if cmd.CategoryID != nil {
		if ok, err := s.categories.Exists(ctx, *cmd.CategoryID); err != nil {
			return nil, err
		} else if !ok {
			return nil, domain.ErrNotFound("category not found")
		}
	}

	if cmd.StateAction != nil {
		switch *cmd.StateAction {
		case domain.ActionSubmitForReview, domain.ActionWithdraw:
		default:
			return nil, domain.ErrForbidden("initiator cannot perform this state action")
		}
		if err := ev.Apply(*cmd.StateAction, now); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, ev); err != nil {
		return nil, err
	}

	s.invalidate(ctx, ev.ID)
	return ev, nil
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	key := cacheKeyEventDetails(id)
	if err := s.cache.Delete(ctx, key); err != nil {
		zlog.Warn().Err(err).Str("key", key).Msg("cache invalidate failed")
	}
}
