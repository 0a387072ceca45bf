package user

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
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, ids []uuid.UUID, from, size int) ([]*domain.User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
}

type Service struct {
	repo  Repo
	clock Clock
}

func New(repo Repo, clock Clock) *Service {
	return &Service{repo: repo, clock: clock}
}

func (s *Service) Register(ctx context.Context, name, email string) (*domain.User, error) {
	u, err := domain.NewUser(name, email, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if taken, err := s.repo.EmailTaken(ctx, u.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, domain.ErrConflict("email already registered")
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// List returns users by explicit ids, or a page of all users when ids is
// empty.
func (s *Service) List(ctx context.Context, ids []uuid.UUID, from, size int) ([]*domain.User, error) {
	if from < 0 {
		from = 0
	}
	if size <= 0 {
		size = 10
	}
	if size > 100 {
		size = 100
	}
	return s.repo.List(ctx, ids, from, size)
}
