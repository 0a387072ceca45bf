package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avoronov/eventhub/internal/application/event"
	"github.com/avoronov/eventhub/internal/domain"
)

type EventRepo struct {
	pool *pgxpool.Pool
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

func (r *EventRepo) Create(ctx context.Context, e *domain.Event) error {
	_, err := r.pool.Exec(ctx, insertEventSQL,
		e.ID, e.Title, e.Annotation, e.Description, e.CategoryID, e.InitiatorID,
		e.Location.Lat, e.Location.Lon, e.EventDate, e.Paid, e.ParticipantLimit, e.RequestModeration,
		string(e.State), e.PublishedOn, e.Views, e.ConfirmedRequests, e.CreatedOn, e.UpdatedAt,
	)
	return err
}

func (r *EventRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, getEventSQL, id))
}

func (r *EventRepo) Update(ctx context.Context, e *domain.Event) error {
	_, err := r.pool.Exec(ctx, updateEventSQL,
		e.ID, e.Title, e.Annotation, e.Description, e.CategoryID,
		e.Location.Lat, e.Location.Lon, e.EventDate, e.Paid,
		e.ParticipantLimit, e.RequestModeration,
		string(e.State), e.PublishedOn, e.Views, e.ConfirmedRequests,
		e.UpdatedAt,
	)
	return err
}

func (r *EventRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	return err
}

func (r *EventRepo) ListPublished(ctx context.Context, f event.ListFilter) ([]*domain.Event, error) {
	where := []string{"state = 'PUBLISHED'"}
	args := []any{}
	argN := 1

	if t := strings.TrimSpace(f.Text); t != "" {
		where = append(where, fmt.Sprintf("(annotation ILIKE $%d OR description ILIKE $%d)", argN, argN))
		args = append(args, "%"+t+"%")
		argN++
	}
	if len(f.Categories) > 0 {
		where = append(where, fmt.Sprintf("category_id = ANY($%d)", argN))
		args = append(args, f.Categories)
		argN++
	}
	if f.Paid != nil {
		where = append(where, fmt.Sprintf("paid = $%d", argN))
		args = append(args, *f.Paid)
		argN++
	}
	switch {
	case f.RangeStart != nil && f.RangeEnd != nil:
		where = append(where, fmt.Sprintf("event_date BETWEEN $%d AND $%d", argN, argN+1))
		args = append(args, f.RangeStart.UTC(), f.RangeEnd.UTC())
		argN += 2
	case f.RangeStart != nil:
		where = append(where, fmt.Sprintf("event_date >= $%d", argN))
		args = append(args, f.RangeStart.UTC())
		argN++
	case f.RangeEnd != nil:
		where = append(where, fmt.Sprintf("event_date <= $%d", argN))
		args = append(args, f.RangeEnd.UTC())
		argN++
	default:
		// no range means upcoming events only
		where = append(where, "event_date > NOW()")
	}
	if f.OnlyAvailable {
		where = append(where, "(participant_limit = 0 OR confirmed_requests < participant_limit)")
	}

	order := "event_date ASC, id ASC"
	if f.Sort == event.SortViews {
		order = "views DESC, id ASC"
	}

	q := `SELECT ` + eventColumns + `
FROM events
WHERE ` + strings.Join(where, " AND ") + `
ORDER BY ` + order + `
OFFSET $` + fmt.Sprintf("%d", argN) + ` LIMIT $` + fmt.Sprintf("%d", argN+1)
	args = append(args, f.From, f.Size)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *EventRepo) ListByInitiator(ctx context.Context, initiatorID uuid.UUID, from, size int) ([]*domain.Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+`
FROM events
WHERE initiator_id = $1
ORDER BY created_on DESC, id ASC
OFFSET $2 LIMIT $3`, initiatorID, from, size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *EventRepo) Search(ctx context.Context, f event.AdminFilter) ([]*domain.Event, error) {
	where := []string{"TRUE"}
	args := []any{}
	argN := 1

	if len(f.Users) > 0 {
		where = append(where, fmt.Sprintf("initiator_id = ANY($%d)", argN))
		args = append(args, f.Users)
		argN++
	}
	if len(f.States) > 0 {
		states := make([]string, len(f.States))
		for i, st := range f.States {
			states[i] = string(st)
		}
		where = append(where, fmt.Sprintf("state = ANY($%d)", argN))
		args = append(args, states)
		argN++
	}
	if len(f.Categories) > 0 {
		where = append(where, fmt.Sprintf("category_id = ANY($%d)", argN))
		args = append(args, f.Categories)
		argN++
	}
	if f.RangeStart != nil {
		where = append(where, fmt.Sprintf("event_date >= $%d", argN))
		args = append(args, f.RangeStart.UTC())
		argN++
	}
	if f.RangeEnd != nil {
		where = append(where, fmt.Sprintf("event_date <= $%d", argN))
		args = append(args, f.RangeEnd.UTC())
		argN++
	}

	q := `SELECT ` + eventColumns + `
FROM events
WHERE ` + strings.Join(where, " AND ") + `
ORDER BY created_on DESC, id ASC
OFFSET $` + fmt.Sprintf("%d", argN) + ` LIMIT $` + fmt.Sprintf("%d", argN+1)
	args = append(args, f.From, f.Size)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *EventRepo) HasRequests(ctx context.Context, eventID uuid.UUID) (bool, error) {
	var has bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM participation_requests WHERE event_id = $1)`, eventID,
	).Scan(&has)
	return has, err
}

func (r *EventRepo) InCompilation(ctx context.Context, eventID uuid.UUID) (bool, error) {
	var ref bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM compilation_events WHERE event_id = $1)`, eventID,
	).Scan(&ref)
	return ref, err
}

// ExistAll reports whether every id resolves to a stored event.
func (r *EventRepo) ExistAll(ctx context.Context, ids []uuid.UUID) (bool, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT id) FROM events WHERE id = ANY($1)`, ids,
	).Scan(&count)
	if err != nil {
		return false, err
	}

	seen := map[uuid.UUID]struct{}{}
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return count == len(seen), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	var e domain.Event
	var state string
	err := row.Scan(
		&e.ID, &e.Title, &e.Annotation, &e.Description, &e.CategoryID, &e.InitiatorID,
		&e.Location.Lat, &e.Location.Lon, &e.EventDate, &e.Paid, &e.ParticipantLimit, &e.RequestModeration,
		&state, &e.PublishedOn, &e.Views, &e.ConfirmedRequests, &e.CreatedOn, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound("event not found")
		}
		return nil, err
	}
	e.State = domain.EventState(state)
	return &e, nil
}

func scanEvents(rows pgx.Rows) ([]*domain.Event, error) {
	var out []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
