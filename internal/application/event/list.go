package event

import (
	"context"

	"github.com/google/uuid"

	"github.com/avoronov/eventhub/internal/domain"
)

func (s *Service) ListPublic(ctx context.Context, f ListFilter, uri, ip string) ([]*domain.Event, error) {
	normalizePage(&f.From, &f.Size)
	if f.RangeStart != nil && f.RangeEnd != nil && f.RangeEnd.Before(*f.RangeStart) {
		return nil, domain.ErrValidation("range_end must not precede range_start")
	}
	events, err := s.repo.ListPublished(ctx, f)
	if err != nil {
		return nil, err
	}
	s.recordHit(ctx, uri, ip)
	return events, nil
}

func (s *Service) ListByInitiator(ctx context.Context, initiatorID uuid.UUID, from, size int) ([]*domain.Event, error) {
	normalizePage(&from, &size)
	return s.repo.ListByInitiator(ctx, initiatorID, from, size)
}

// Search is the admin-side lookup over any state.
func (s *Service) Search(ctx context.Context, f AdminFilter) ([]*domain.Event, error) {
	normalizePage(&f.From, &f.Size)
	for _, st := range f.States {
		if !st.Valid() {
			return nil, domain.ErrValidation("unknown event state: " + string(st))
		}
	}
	return s.repo.Search(ctx, f)
}

func normalizePage(from, size *int) {
	if *from < 0 {
		*from = 0
	}
	if *size <= 0 {
		*size = 10
	}
	if *size > 100 {
		*size = 100
	}
}
