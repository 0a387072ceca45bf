package compilation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avoronov/eventhub/internal/domain"
)

type Clock interface {
	Now() time.Time
}

type Repo interface {
	Create(ctx context.Context, c *domain.Compilation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Compilation, error)
	Update(ctx context.Context, c *domain.Compilation) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, pinned *bool, from, size int) ([]*domain.Compilation, error)
}

type EventReader interface {
	ExistAll(ctx context.Context, ids []uuid.UUID) (bool, error)
}

type Service struct {
	repo   Repo
	events EventReader
	clock  Clock
}

func New(repo Repo, events EventReader, clock Clock) *Service {
	return &Service{repo: repo, events: events, clock: clock}
}

func (s *Service) Create(ctx context.Context, title string, pinned bool, eventIDs []uuid.UUID) (*domain.Compilation, error) {
	if len(eventIDs) > 0 {
		if ok, err := s.events.ExistAll(ctx, eventIDs); err != nil {
			return nil, err
		} else if !ok {
			return nil, domain.ErrNotFound("one or more events not found")
		}
	}
	comp, err := domain.NewCompilation(title, pinned, eventIDs, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, comp); err != nil {
		return nil, err
	}
	return comp, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, u domain.CompilationUpdate) (*domain.Compilation, error) {
	comp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(u.EventIDs) > 0 {
		if ok, err := s.events.ExistAll(ctx, u.EventIDs); err != nil {
			return nil, err
		} else if !ok {
			return nil, domain.ErrNotFound("one or more events not found")
		}
	}
	if err := comp.ApplyUpdate(u); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, comp); err != nil {
		return nil, err
	}
	return comp, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Compilation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, pinned *bool, from, size int) ([]*domain.Compilation, error) {
	if from < 0 {
		from = 0
	}
	if size <= 0 {
		size = 10
	}
	if size > 100 {
		size = 100
	}
	return s.repo.List(ctx, pinned, from, size)
}
