package event

import (
	"context"

	"github.com/google/uuid"

	"github.com/avoronov/eventhub/internal/domain"
)

// Delete removes an event that never went live. An event with any
// participation request, or referenced by a compilation, stays forever.
func (s *Service) Delete(ctx context.Context, eventID, actorID uuid.UUID, role string) error {
	ev, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if ev.InitiatorID != actorID && !isAdmin(role) {
		return domain.ErrForbidden("only the initiator or an admin can delete this event")
	}
	if ev.State == domain.StatePublished {
		return domain.ErrNotModifiable("published event cannot be deleted")
	}

	if has, err := s.repo.HasRequests(ctx, eventID); err != nil {
		return err
	} else if has {
		return domain.ErrConflict("event with participation requests cannot be deleted")
	}
	if ref, err := s.repo.InCompilation(ctx, eventID); err != nil {
		return err
	} else if ref {
		return domain.ErrConflict("event referenced by a compilation cannot be deleted")
	}

	if err := s.repo.Delete(ctx, eventID); err != nil {
		return err
	}
	s.invalidate(ctx, eventID)
	return nil
}
