package request

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avoronov/eventhub/internal/domain"
)

type Clock interface {
	Now() time.Time
}

type OutboxMessage struct {
	MessageID  uuid.UUID
	RoutingKey string
	Body       []byte
	CreatedAt  time.Time
}

// Store persists participation requests. WithTx opens the per-event
// mutual-exclusion scope every admission decision must run inside.
type Store interface {
	WithTx(ctx context.Context, fn func(tx TxStore) error) error

	ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*domain.ParticipationRequest, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*domain.ParticipationRequest, error)
}

// TxStore is the transaction-scoped view of the store.
//
// GetEventForUpdate acquires the event row lock; every read-check-increment
// of the confirmed counter in the closure happens under it, so two
// concurrent admissions against the same event serialize instead of both
// observing count < limit.
type TxStore interface {
	GetEventForUpdate(ctx context.Context, eventID uuid.UUID) (*domain.Event, error)
	GetRequestForUpdate(ctx context.Context, requestID uuid.UUID) (*domain.ParticipationRequest, error)
	FindByRequesterAndEvent(ctx context.Context, requesterID, eventID uuid.UUID) (*domain.ParticipationRequest, error)

	// ListByIDs returns requests in the order the ids were given.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.ParticipationRequest, error)

	CreateRequest(ctx context.Context, r *domain.ParticipationRequest) error
	UpdateRequest(ctx context.Context, r *domain.ParticipationRequest) error
	UpdateEvent(ctx context.Context, e *domain.Event) error

	InsertOutbox(ctx context.Context, m OutboxMessage) error
}

type EventReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)
}

type UserReader interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
