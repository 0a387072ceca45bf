package request

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/eventhub/internal/domain"
)

// --- Fakes ---

type fakeClock struct{ t time.Time }

func (c fakeClock) Now() time.Time { return c.t }

// memStore serializes WithTx with a mutex, standing in for the event row
// lock the Postgres store takes.
type memStore struct {
	mu       sync.Mutex
	events   map[uuid.UUID]*domain.Event
	requests map[uuid.UUID]*domain.ParticipationRequest
	outbox   []OutboxMessage
}

func newMemStore() *memStore {
	return &memStore{
		events:   map[uuid.UUID]*domain.Event{},
		requests: map[uuid.UUID]*domain.ParticipationRequest{},
	}
}

func (m *memStore) WithTx(ctx context.Context, fn func(tx TxStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&memTx{store: m})
}

func (m *memStore) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*domain.ParticipationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.ParticipationRequest
	for _, r := range m.requests {
		if r.RequesterID == requesterID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*domain.ParticipationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.ParticipationRequest
	for _, r := range m.requests {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

type memTx struct{ store *memStore }

func (t *memTx) GetEventForUpdate(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	ev, ok := t.store.events[eventID]
	if !ok {
		return nil, domain.ErrNotFound("event not found")
	}
	return ev, nil
}

func (t *memTx) GetRequestForUpdate(ctx context.Context, requestID uuid.UUID) (*domain.ParticipationRequest, error) {
	r, ok := t.store.requests[requestID]
	if !ok {
		return nil, domain.ErrNotFound("participation request not found")
	}
	return r, nil
}

func (t *memTx) FindByRequesterAndEvent(ctx context.Context, requesterID, eventID uuid.UUID) (*domain.ParticipationRequest, error) {
	for _, r := range t.store.requests {
		if r.RequesterID == requesterID && r.EventID == eventID {
			return r, nil
		}
	}
	return nil, nil
}

func (t *memTx) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.ParticipationRequest, error) {
	var out []*domain.ParticipationRequest
	for _, id := range ids {
		if r, ok := t.store.requests[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (t *memTx) CreateRequest(ctx context.Context, r *domain.ParticipationRequest) error {
	t.store.requests[r.ID] = r
	return nil
}

func (t *memTx) UpdateRequest(ctx context.Context, r *domain.ParticipationRequest) error {
	t.store.requests[r.ID] = r
	return nil
}

func (t *memTx) UpdateEvent(ctx context.Context, e *domain.Event) error {
	t.store.events[e.ID] = e
	return nil
}

func (t *memTx) InsertOutbox(ctx context.Context, m OutboxMessage) error {
	t.store.outbox = append(t.store.outbox, m)
	return nil
}

type memEvents struct{ store *memStore }

func (m memEvents) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	ev, ok := m.store.events[id]
	if !ok {
		return nil, domain.ErrNotFound("event not found")
	}
	return ev, nil
}

type allUsers struct{}

func (allUsers) Exists(ctx context.Context, id uuid.UUID) (bool, error) { return true, nil }

// --- Helpers ---

func newService(store *memStore, now time.Time) *Service {
	return New(store, memEvents{store: store}, allUsers{}, nil, fakeClock{t: now})
}

func publishedEvent(initiatorID uuid.UUID, limit int, moderation bool) *domain.Event {
	return &domain.Event{
		ID:                uuid.New(),
		InitiatorID:       initiatorID,
		State:             domain.StatePublished,
		ParticipantLimit:  limit,
		RequestModeration: moderation,
	}
}

func appCode(t *testing.T, err error) domain.ErrCode {
	t.Helper()
	var ae *domain.AppError
	require.ErrorAs(t, err, &ae)
	return ae.Code
}

// --- Create request ---

func TestService_Request(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	initiator := uuid.New()

	t.Run("moderated_event_creates_pending", func(t *testing.T) {
		store := newMemStore()
		ev := publishedEvent(initiator, 5, true)
		store.events[ev.ID] = ev
		svc := newService(store, now)

		req, err := svc.Request(context.Background(), uuid.New(), ev.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestPending, req.Status)
		assert.Zero(t, ev.ConfirmedRequests)
	})

	t.Run("zero_limit_auto_confirms", func(t *testing.T) {
		store := newMemStore()
		ev := publishedEvent(initiator, 0, true)
		store.events[ev.ID] = ev
		svc := newService(store, now)

		req, err := svc.Request(context.Background(), uuid.New(), ev.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestConfirmed, req.Status)
		assert.Equal(t, 1, ev.ConfirmedRequests)
	})

	t.Run("moderation_off_auto_confirms", func(t *testing.T) {
		store := newMemStore()
		ev := publishedEvent(initiator, 5, false)
		store.events[ev.ID] = ev
		svc := newService(store, now)

		req, err := svc.Request(context.Background(), uuid.New(), ev.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestConfirmed, req.Status)
		assert.Equal(t, 1, ev.ConfirmedRequests)
	})

	t.Run("unpublished_event_conflicts", func(t *testing.T) {
		store := newMemStore()
		ev := publishedEvent(initiator, 5, true)
		ev.State = domain.StatePending
		store.events[ev.ID] = ev
		svc := newService(store, now)

		_, err := svc.Request(context.Background(), uuid.New(), ev.ID)
		assert.Equal(t, domain.CodeNotPublished, appCode(t, err))
	})

	t.Run("initiator_cannot_request_own_event", func(t *testing.T) {
		store := newMemStore()
		ev := publishedEvent(initiator, 5, true)
		store.events[ev.ID] = ev
		svc := newService(store, now)

		_, err := svc.Request(context.Background(), initiator, ev.ID)
		assert.Equal(t, domain.CodeSelfParticipation, appCode(t, err))
	})

	t.Run("duplicate_request_conflicts", func(t *testing.T) {
		store := newMemStore()
		ev := publishedEvent(initiator, 5, true)
		store.events[ev.ID] = ev
		svc := newService(store, now)
		requester := uuid.New()

		_, err := svc.Request(context.Background(), requester, ev.ID)
		require.NoError(t, err)
		_, err = svc.Request(context.Background(), requester, ev.ID)
		assert.Equal(t, domain.CodeDuplicateRequest, appCode(t, err))
	})

	t.Run("rerequest_after_cancel_is_allowed", func(t *testing.T) {
		store := newMemStore()
		ev := publishedEvent(initiator, 5, true)
		store.events[ev.ID] = ev
		svc := newService(store, now)
		requester := uuid.New()

		first, err := svc.Request(context.Background(), requester, ev.ID)
		require.NoError(t, err)
		_, err = svc.Cancel(context.Background(), requester, first.ID)
		require.NoError(t, err)

		second, err := svc.Request(context.Background(), requester, ev.ID)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("full_event_conflicts", func(t *testing.T) {
		store := newMemStore()
		ev := publishedEvent(initiator, 1, false)
		store.events[ev.ID] = ev
		svc := newService(store, now)

		_, err := svc.Request(context.Background(), uuid.New(), ev.ID)
		require.NoError(t, err)
		_, err = svc.Request(context.Background(), uuid.New(), ev.ID)
		assert.Equal(t, domain.CodeCapacityExceeded, appCode(t, err))
	})

	t.Run("missing_event_is_not_found", func(t *testing.T) {
		store := newMemStore()
		svc := newService(store, now)
		_, err := svc.Request(context.Background(), uuid.New(), uuid.New())
		assert.Equal(t, domain.CodeNotFound, appCode(t, err))
	})
}

// --- Cancel ---

func TestService_Cancel(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	initiator := uuid.New()

	t.Run("only_requester_can_cancel", func(t *testing.T) {
		store := newMemStore()
		ev := publishedEvent(initiator, 5, true)
		store.events[ev.ID] = ev
		svc := newService(store, now)

		requester := uuid.New()
		req, err := svc.Request(context.Background(), requester, ev.ID)
		require.NoError(t, err)

		_, err = svc.Cancel(context.Background(), uuid.New(), req.ID)
		assert.Equal(t, domain.CodeForbidden, appCode(t, err))
	})

	t.Run("cancel_twice_is_noop_success", func(t *testing.T) {
		store := newMemStore()
		ev := publishedEvent(initiator, 5, true)
		store.events[ev.ID] = ev
		svc := newService(store, now)

		requester := uuid.New()
		req, err := svc.Request(context.Background(), requester, ev.ID)
		require.NoError(t, err)

		first, err := svc.Cancel(context.Background(), requester, req.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestCanceled, first.Status)

		second, err := svc.Cancel(context.Background(), requester, req.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestCanceled, second.Status)
	})

	// Pins the accounting choice: a canceled confirmed request does not
	// free its slot for new admissions.
	t.Run("canceling_confirmed_request_keeps_counter", func(t *testing.T) {
		store := newMemStore()
		ev := publishedEvent(initiator, 1, false)
		store.events[ev.ID] = ev
		svc := newService(store, now)

		requester := uuid.New()
		req, err := svc.Request(context.Background(), requester, ev.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RequestConfirmed, req.Status)
		require.Equal(t, 1, ev.ConfirmedRequests)

		_, err = svc.Cancel(context.Background(), requester, req.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, ev.ConfirmedRequests)

		_, err = svc.Request(context.Background(), uuid.New(), ev.ID)
		assert.Equal(t, domain.CodeCapacityExceeded, appCode(t, err))
	})
}

// --- Batch status update ---

func TestService_UpdateStatuses(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	initiator := uuid.New()

	setup := func(limit int, moderation bool, pending int) (*memStore, *Service, *domain.Event, []uuid.UUID) {
		store := newMemStore()
		ev := publishedEvent(initiator, limit, moderation)
		store.events[ev.ID] = ev
		svc := newService(store, now)

		ids := make([]uuid.UUID, 0, pending)
		for i := 0; i < pending; i++ {
			req, err := svc.Request(context.Background(), uuid.New(), ev.ID)
			require.NoError(t, err)
			ids = append(ids, req.ID)
		}
		return store, svc, ev, ids
	}

	t.Run("confirms_up_to_limit_and_rejects_rest", func(t *testing.T) {
		_, svc, ev, ids := setup(2, true, 3)

		res, err := svc.UpdateStatuses(context.Background(), initiator, ev.ID, ids, domain.RequestConfirmed)
		require.NoError(t, err)

		require.Len(t, res.Confirmed, 2)
		require.Len(t, res.Rejected, 1)
		assert.Equal(t, ids[0], res.Confirmed[0].ID)
		assert.Equal(t, ids[1], res.Confirmed[1].ID)
		assert.Equal(t, ids[2], res.Rejected[0].ID)
		assert.Equal(t, 2, ev.ConfirmedRequests)
	})

	t.Run("reject_target_rejects_everything", func(t *testing.T) {
		_, svc, ev, ids := setup(5, true, 3)

		res, err := svc.UpdateStatuses(context.Background(), initiator, ev.ID, ids, domain.RequestRejected)
		require.NoError(t, err)
		assert.Empty(t, res.Confirmed)
		assert.Len(t, res.Rejected, 3)
		assert.Zero(t, ev.ConfirmedRequests)
	})

	t.Run("not_initiator_is_forbidden", func(t *testing.T) {
		_, svc, ev, ids := setup(2, true, 1)
		_, err := svc.UpdateStatuses(context.Background(), uuid.New(), ev.ID, ids, domain.RequestConfirmed)
		assert.Equal(t, domain.CodeForbidden, appCode(t, err))
	})

	t.Run("zero_limit_needs_no_approval", func(t *testing.T) {
		store := newMemStore()
		ev := publishedEvent(initiator, 0, true)
		store.events[ev.ID] = ev
		svc := newService(store, now)

		_, err := svc.UpdateStatuses(context.Background(), initiator, ev.ID, nil, domain.RequestConfirmed)
		assert.Equal(t, domain.CodeNotModifiable, appCode(t, err))
	})

	t.Run("moderation_off_needs_no_approval", func(t *testing.T) {
		store := newMemStore()
		ev := publishedEvent(initiator, 5, false)
		store.events[ev.ID] = ev
		svc := newService(store, now)

		_, err := svc.UpdateStatuses(context.Background(), initiator, ev.ID, nil, domain.RequestConfirmed)
		assert.Equal(t, domain.CodeNotModifiable, appCode(t, err))
	})

	t.Run("full_event_conflicts", func(t *testing.T) {
		_, svc, ev, ids := setup(2, true, 2)

		_, err := svc.UpdateStatuses(context.Background(), initiator, ev.ID, ids, domain.RequestConfirmed)
		require.NoError(t, err)

		_, err = svc.Request(context.Background(), uuid.New(), ev.ID)
		assert.Equal(t, domain.CodeCapacityExceeded, appCode(t, err))

		_, err = svc.UpdateStatuses(context.Background(), initiator, ev.ID, ids[:1], domain.RequestConfirmed)
		assert.Equal(t, domain.CodeCapacityExceeded, appCode(t, err))
	})

	t.Run("non_pending_request_fails_batch_without_partial_application", func(t *testing.T) {
		store, svc, ev, ids := setup(5, true, 3)

		store.requests[ids[1]].Status = domain.RequestCanceled

		_, err := svc.UpdateStatuses(context.Background(), initiator, ev.ID, ids, domain.RequestConfirmed)
		assert.Equal(t, domain.CodeInvalidRequestState, appCode(t, err))
		assert.Equal(t, domain.RequestPending, store.requests[ids[0]].Status)
		assert.Equal(t, domain.RequestPending, store.requests[ids[2]].Status)
		assert.Zero(t, ev.ConfirmedRequests)
	})

	t.Run("unknown_request_id_is_not_found", func(t *testing.T) {
		_, svc, ev, ids := setup(5, true, 1)
		_, err := svc.UpdateStatuses(context.Background(), initiator, ev.ID, append(ids, uuid.New()), domain.RequestConfirmed)
		assert.Equal(t, domain.CodeNotFound, appCode(t, err))
	})
}

// Concurrent admissions against one event must never overshoot the limit:
// the WithTx scope serializes every read-check-increment.
func TestService_Request_ConcurrentNeverOvershootsLimit(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	initiator := uuid.New()

	const limit = 5
	const attempts = 40

	store := newMemStore()
	ev := publishedEvent(initiator, limit, false) // auto-confirm path
	store.events[ev.ID] = ev
	svc := newService(store, now)

	var wg sync.WaitGroup
	errs := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Request(context.Background(), uuid.New(), ev.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var confirmed, rejected int
	for err := range errs {
		if err == nil {
			confirmed++
		} else {
			assert.Equal(t, domain.CodeCapacityExceeded, appCode(t, err))
			rejected++
		}
	}

	assert.Equal(t, limit, confirmed)
	assert.Equal(t, attempts-limit, rejected)
	assert.Equal(t, limit, ev.ConfirmedRequests)
}

func TestService_ListForEvent_OwnershipRequired(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	initiator := uuid.New()

	store := newMemStore()
	ev := publishedEvent(initiator, 5, true)
	store.events[ev.ID] = ev
	svc := newService(store, now)

	_, err := svc.Request(context.Background(), uuid.New(), ev.ID)
	require.NoError(t, err)

	reqs, err := svc.ListForEvent(context.Background(), initiator, ev.ID)
	require.NoError(t, err)
	assert.Len(t, reqs, 1)

	_, err = svc.ListForEvent(context.Background(), uuid.New(), ev.ID)
	assert.Equal(t, domain.CodeForbidden, appCode(t, err))
}
