package event

import (
	"context"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/avoronov/eventhub/internal/domain"
)

type ModerateCmd struct {
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

	// Publish or Reject; nil for a pure field update.
	StateAction *domain.StateAction
}

type EventPublishedPayload struct {
	EventID     uuid.UUID         `json:"event_id"`
	InitiatorID uuid.UUID         `json:"initiator_id"`
	Title       string            `json:"title"`
	EventDate   string            `json:"event_date"`
	State       domain.EventState `json:"state"`
}

// Moderate applies an admin update and, optionally, a publish/reject
// decision. Admin edits bypass the lead-time restriction.
func (s *Service) Moderate(ctx context.Context, cmd ModerateCmd) (*domain.Event, error) {
	ev, err := s.repo.GetByID(ctx, cmd.EventID)
	if err != nil {
		return nil, err
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
	}, now, true); err != nil {
		return nil, err
	}

	if cmd.StateAction != nil {
		switch *cmd.StateAction {
		case domain.ActionPublish, domain.ActionReject:
		default:
			return nil, domain.ErrValidation("admin state action must be PUBLISH_EVENT or REJECT_EVENT")
		}
		if err := ev.Apply(*cmd.StateAction, now); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, ev); err != nil {
		return nil, err
	}

	s.invalidate(ctx, ev.ID)

	if cmd.StateAction != nil && *cmd.StateAction == domain.ActionPublish && s.pub != nil {
		payload := EventPublishedPayload{
			EventID:     ev.ID,
			InitiatorID: ev.InitiatorID,
			Title:       ev.Title,
			EventDate:   ev.EventDate.Format(time.RFC3339),
			State:       ev.State,
		}
		if err := s.pub.Publish(ctx, "event.published", payload); err != nil {
			zlog.Error().Err(err).Str("event_id", ev.ID.String()).Msg("publish domain event failed")
		}
	}

	return ev, nil
}
