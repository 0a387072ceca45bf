package category

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
	Create(ctx context.Context, c *domain.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, from, size int) ([]*domain.Category, error)
	NameTaken(ctx context.Context, name string, exclude uuid.UUID) (bool, error)
	HasEvents(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	repo  Repo
	clock Clock
}

func New(repo Repo, clock Clock) *Service {
	return &Service{repo: repo, clock: clock}
}

func (s *Service) Create(ctx context.Context, name string) (*domain.Category, error) {
	cat, err := domain.NewCategory(name, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if taken, err := s.repo.NameTaken(ctx, cat.Name, uuid.Nil); err != nil {
		return nil, err
	} else if taken {
		return nil, domain.ErrConflict("category name already in use")
	}
	if err := s.repo.Create(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *Service) Rename(ctx context.Context, id uuid.UUID, name string) (*domain.Category, error) {
	cat, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := cat.Rename(name); err != nil {
		return nil, err
	}
	if taken, err := s.repo.NameTaken(ctx, cat.Name, id); err != nil {
		return nil, err
	} else if taken {
		return nil, domain.ErrConflict("category name already in use")
	}
	if err := s.repo.Update(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// Delete refuses to remove a category still referenced by events.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if has, err := s.repo.HasEvents(ctx, id); err != nil {
		return err
	} else if has {
		return domain.ErrConflict("category is referenced by events")
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, from, size int) ([]*domain.Category, error) {
	if from < 0 {
		from = 0
	}
	if size <= 0 {
		size = 10
	}
	if size > 100 {
		size = 100
	}
	return s.repo.List(ctx, from, size)
}
