package event

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avoronov/eventhub/internal/domain"
)

type Clock interface {
	Now() time.Time
}

type Sort string

const (
	SortEventDate Sort = "EVENT_DATE"
	SortViews     Sort = "VIEWS"
)

type ListFilter struct {
	Text          string
	Categories    []uuid.UUID
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
	Sort          Sort
	From          int
	Size          int
}

type AdminFilter struct {
	Users      []uuid.UUID
	States     []domain.EventState
	Categories []uuid.UUID
	RangeStart *time.Time
	RangeEnd   *time.Time
	From       int
	Size       int
}

type EventRepo interface {
	Create(ctx context.Context, e *domain.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	Update(ctx context.Context, e *domain.Event) error
	Delete(ctx context.Context, id uuid.UUID) error

	ListPublished(ctx context.Context, f ListFilter) ([]*domain.Event, error)
	ListByInitiator(ctx context.Context, initiatorID uuid.UUID, from, size int) ([]*domain.Event, error)
	Search(ctx context.Context, f AdminFilter) ([]*domain.Event, error)

	// Deletion guards: an event holding requests or referenced by a
	// compilation is never removed.
	HasRequests(ctx context.Context, eventID uuid.UUID) (bool, error)
	InCompilation(ctx context.Context, eventID uuid.UUID) (bool, error)
}

type CategoryReader interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type UserReader interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// StatsClient is the narrow interface over the external hit-counter
// service. Implementations must be safe to call best-effort.
type StatsClient interface {
	RecordHit(ctx context.Context, uri, ip string) error
	Views(ctx context.Context, uri string) (int64, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, val any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}
