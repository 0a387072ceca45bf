package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avoronov/eventhub/internal/application/request"
	"github.com/avoronov/eventhub/internal/domain"
)

// RequestStore persists participation requests. All admission paths go
// through WithTx, which scopes the per-event row lock.
type RequestStore struct {
	pool *pgxpool.Pool
}

func NewRequestStore(pool *pgxpool.Pool) *RequestStore {
	return &RequestStore{pool: pool}
}

func (s *RequestStore) WithTx(ctx context.Context, fn func(tx request.TxStore) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		// Safety: in case fn panics, rollback to avoid leaked tx.
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(&txStore{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *RequestStore) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*domain.ParticipationRequest, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+requestColumns+`
FROM participation_requests
WHERE requester_id = $1
ORDER BY created_on ASC, id ASC`, requesterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRequests(rows)
}

func (s *RequestStore) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*domain.ParticipationRequest, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+requestColumns+`
FROM participation_requests
WHERE event_id = $1
ORDER BY created_on ASC, id ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRequests(rows)
}

type txStore struct {
	tx pgx.Tx
}

// GetEventForUpdate takes the row lock that serializes all admission
// decisions for one event.
func (t *txStore) GetEventForUpdate(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	return scanEvent(t.tx.QueryRow(ctx, getEventForUpdateSQL, eventID))
}

func (t *txStore) GetRequestForUpdate(ctx context.Context, requestID uuid.UUID) (*domain.ParticipationRequest, error) {
	return scanRequest(t.tx.QueryRow(ctx, `SELECT `+requestColumns+`
FROM participation_requests
WHERE id = $1
FOR UPDATE`, requestID))
}

// FindByRequesterAndEvent prefers a live request over canceled ones so the
// duplicate check sees the row that matters.
func (t *txStore) FindByRequesterAndEvent(ctx context.Context, requesterID, eventID uuid.UUID) (*domain.ParticipationRequest, error) {
	req, err := scanRequest(t.tx.QueryRow(ctx, `SELECT `+requestColumns+`
FROM participation_requests
WHERE requester_id = $1 AND event_id = $2
ORDER BY (status = 'CANCELED') ASC, created_on DESC
LIMIT 1
FOR UPDATE`, requesterID, eventID))
	if err != nil {
		var ae *domain.AppError
		if errors.As(err, &ae) && ae.Code == domain.CodeNotFound {
			return nil, nil
		}
		return nil, err
	}
	return req, nil
}

// ListByIDs returns requests in the order the ids were given.
func (t *txStore) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.ParticipationRequest, error) {
	rows, err := t.tx.Query(ctx, `SELECT r.id, r.requester_id, r.event_id, r.status, r.created_on
FROM unnest($1::uuid[]) WITH ORDINALITY AS wanted(id, ord)
JOIN participation_requests r ON r.id = wanted.id
ORDER BY wanted.ord
FOR UPDATE OF r`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRequests(rows)
}

func (t *txStore) CreateRequest(ctx context.Context, r *domain.ParticipationRequest) error {
	_, err := t.tx.Exec(ctx, insertRequestSQL,
		r.ID, r.RequesterID, r.EventID, string(r.Status), r.CreatedOn,
	)
	return err
}

func (t *txStore) UpdateRequest(ctx context.Context, r *domain.ParticipationRequest) error {
	_, err := t.tx.Exec(ctx, updateRequestSQL, r.ID, string(r.Status))
	return err
}

func (t *txStore) UpdateEvent(ctx context.Context, e *domain.Event) error {
	_, err := t.tx.Exec(ctx, updateEventSQL,
		e.ID, e.Title, e.Annotation, e.Description, e.CategoryID,
		e.Location.Lat, e.Location.Lon, e.EventDate, e.Paid,
		e.ParticipantLimit, e.RequestModeration,
		string(e.State), e.PublishedOn, e.Views, e.ConfirmedRequests,
		e.UpdatedAt,
	)
	return err
}

func (t *txStore) InsertOutbox(ctx context.Context, m request.OutboxMessage) error {
	_, err := t.tx.Exec(ctx, insertOutboxSQL,
		m.MessageID, m.RoutingKey, m.Body, m.CreatedAt.UTC(),
	)
	return err
}

func scanRequest(row rowScanner) (*domain.ParticipationRequest, error) {
	var r domain.ParticipationRequest
	var status string
	err := row.Scan(&r.ID, &r.RequesterID, &r.EventID, &status, &r.CreatedOn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound("participation request not found")
		}
		return nil, err
	}
	r.Status = domain.ParticipationStatus(status)
	return &r, nil
}

func scanRequests(rows pgx.Rows) ([]*domain.ParticipationRequest, error) {
	var out []*domain.ParticipationRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
