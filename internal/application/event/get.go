package event

import (
	"context"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/avoronov/eventhub/internal/domain"
)

// GetPublic serves the public detail view. Only published events are
// visible; anything else reads as absent. Each call records a hit with the
// stats service and refreshes the denormalized view counter.
func (s *Service) GetPublic(ctx context.Context, id uuid.UUID, uri, ip string) (*domain.Event, error) {
	if s.cache != nil {
		var cached domain.Event
		if hit, err := s.cache.Get(ctx, cacheKeyEventDetails(id), &cached); err == nil && hit {
			s.recordHit(ctx, uri, ip)
			return &cached, nil
		}
	}

	ev, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev.State != domain.StatePublished {
		return nil, domain.ErrNotFound("event not found")
	}

	s.recordHit(ctx, uri, ip)

	if s.stats != nil {
		if views, err := s.stats.Views(ctx, uri); err == nil && views != ev.Views {
			ev.Views = views
			if err := s.repo.Update(ctx, ev); err != nil {
				zlog.Warn().Err(err).Str("event_id", id.String()).Msg("view counter update failed")
			}
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKeyEventDetails(id), ev, s.ttlDetails); err != nil {
			zlog.Warn().Err(err).Msg("cache set failed")
		}
	}
	return ev, nil
}

// GetByInitiator serves the full detail view to the owning initiator.
func (s *Service) GetByInitiator(ctx context.Context, eventID, actorID uuid.UUID) (*domain.Event, error) {
	ev, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.InitiatorID != actorID {
		return nil, domain.ErrForbidden("only the initiator can view this event in full")
	}
	return ev, nil
}

func (s *Service) recordHit(ctx context.Context, uri, ip string) {
	if s.stats == nil {
		return
	}
	if err := s.stats.RecordHit(ctx, uri, ip); err != nil {
		zlog.Warn().Err(err).Str("uri", uri).Msg("stats hit failed")
	}
}
