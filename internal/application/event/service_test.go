package event

import (
	"context"
	"encoding/json"
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

type memRepo struct {
	events map[uuid.UUID]*domain.Event

	hasRequests   map[uuid.UUID]bool
	inCompilation map[uuid.UUID]bool

	lastListFilter  ListFilter
	lastAdminFilter AdminFilter
}

func newMemRepo() *memRepo {
	return &memRepo{
		events:        map[uuid.UUID]*domain.Event{},
		hasRequests:   map[uuid.UUID]bool{},
		inCompilation: map[uuid.UUID]bool{},
	}
}

func (r *memRepo) Create(ctx context.Context, e *domain.Event) error {
	r.events[e.ID] = e
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	ev, ok := r.events[id]
	if !ok {
		return nil, domain.ErrNotFound("event not found")
	}
	return ev, nil
}

func (r *memRepo) Update(ctx context.Context, e *domain.Event) error {
	r.events[e.ID] = e
	return nil
}

func (r *memRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.events, id)
	return nil
}

func (r *memRepo) ListPublished(ctx context.Context, f ListFilter) ([]*domain.Event, error) {
	r.lastListFilter = f
	var out []*domain.Event
	for _, ev := range r.events {
		if ev.State == domain.StatePublished {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r *memRepo) ListByInitiator(ctx context.Context, initiatorID uuid.UUID, from, size int) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, ev := range r.events {
		if ev.InitiatorID == initiatorID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r *memRepo) Search(ctx context.Context, f AdminFilter) ([]*domain.Event, error) {
	r.lastAdminFilter = f
	var out []*domain.Event
	for _, ev := range r.events {
		out = append(out, ev)
	}
	return out, nil
}

func (r *memRepo) HasRequests(ctx context.Context, eventID uuid.UUID) (bool, error) {
	return r.hasRequests[eventID], nil
}

func (r *memRepo) InCompilation(ctx context.Context, eventID uuid.UUID) (bool, error) {
	return r.inCompilation[eventID], nil
}

type fakeExists struct{ known map[uuid.UUID]bool }

func (f fakeExists) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return f.known[id], nil
}

type allExist struct{}

func (allExist) Exists(ctx context.Context, id uuid.UUID) (bool, error) { return true, nil }

type fakeStats struct {
	hits  []string
	views map[string]int64
}

func (f *fakeStats) RecordHit(ctx context.Context, uri, ip string) error {
	f.hits = append(f.hits, uri)
	return nil
}

func (f *fakeStats) Views(ctx context.Context, uri string) (int64, error) {
	return f.views[uri], nil
}

type memCache struct {
	entries map[string][]byte
	deleted []string
}

func newMemCache() *memCache { return &memCache{entries: map[string][]byte{}} }

func (c *memCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memCache) Set(ctx context.Context, key string, val any, ttl time.Duration) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *memCache) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.entries, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

type capturePub struct {
	keys     []string
	payloads []any
}

func (p *capturePub) Publish(ctx context.Context, routingKey string, payload any) error {
	p.keys = append(p.keys, routingKey)
	p.payloads = append(p.payloads, payload)
	return nil
}

// --- Helpers ---

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *Service
	repo  *memRepo
	stats *fakeStats
	cache *memCache
	pub   *capturePub
}

func newFixture() *fixture {
	repo := newMemRepo()
	stats := &fakeStats{views: map[string]int64{}}
	cache := newMemCache()
	pub := &capturePub{}
	svc := New(repo, allExist{}, allExist{}, stats, cache, pub, fakeClock{t: testNow}, 0)
	return &fixture{svc: svc, repo: repo, stats: stats, cache: cache, pub: pub}
}

func validCreateCmd(initiatorID uuid.UUID) CreateCmd {
	return CreateCmd{
		InitiatorID:       initiatorID,
		Title:             "Sunrise rooftop concert",
		Annotation:        "An acoustic set above the city at first light.",
		Description:       "Two hours of live acoustic music on the rooftop, coffee included.",
		CategoryID:        uuid.New(),
		Location:          domain.Location{Lat: 55.75, Lon: 37.61},
		EventDate:         testNow.Add(72 * time.Hour),
		Paid:              true,
		ParticipantLimit:  30,
		RequestModeration: true,
	}
}

func seedEvent(f *fixture, state domain.EventState) *domain.Event {
	ev, err := f.svc.Create(context.Background(), validCreateCmd(uuid.New()))
	if err != nil {
		panic(err)
	}
	ev.State = state
	if state == domain.StatePublished {
		t := testNow.Add(-time.Hour)
		ev.PublishedOn = &t
	}
	return ev
}

func ptr[T any](v T) *T { return &v }

func wantCode(t *testing.T, err error, code domain.ErrCode) {
	t.Helper()
	var ae *domain.AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, code, ae.Code)
}

// --- Create ---

func TestService_Create(t *testing.T) {
	t.Run("new_event_starts_pending", func(t *testing.T) {
		f := newFixture()
		ev, err := f.svc.Create(context.Background(), validCreateCmd(uuid.New()))
		require.NoError(t, err)
		assert.Equal(t, domain.StatePending, ev.State)
		assert.Contains(t, f.repo.events, ev.ID)
	})

	t.Run("unknown_user_is_not_found", func(t *testing.T) {
		repo := newMemRepo()
		svc := New(repo, allExist{}, fakeExists{known: map[uuid.UUID]bool{}}, nil, nil, nil, fakeClock{t: testNow}, 0)
		_, err := svc.Create(context.Background(), validCreateCmd(uuid.New()))
		wantCode(t, err, domain.CodeNotFound)
	})

	t.Run("unknown_category_is_not_found", func(t *testing.T) {
		repo := newMemRepo()
		svc := New(repo, fakeExists{known: map[uuid.UUID]bool{}}, allExist{}, nil, nil, nil, fakeClock{t: testNow}, 0)
		_, err := svc.Create(context.Background(), validCreateCmd(uuid.New()))
		wantCode(t, err, domain.CodeNotFound)
	})

	t.Run("too_close_event_date_rejected", func(t *testing.T) {
		f := newFixture()
		cmd := validCreateCmd(uuid.New())
		cmd.EventDate = testNow.Add(time.Hour)
		_, err := f.svc.Create(context.Background(), cmd)
		wantCode(t, err, domain.CodeValidation)
	})
}

// --- UpdateByInitiator ---

func TestService_UpdateByInitiator(t *testing.T) {
	t.Run("owner_edits_pending_event", func(t *testing.T) {
		f := newFixture()
		ev := seedEvent(f, domain.StatePending)

		got, err := f.svc.UpdateByInitiator(context.Background(), UpdateCmd{
			ActorID: ev.InitiatorID,
			EventID: ev.ID,
			Title:   ptr("Sunset rooftop concert"),
			Paid:    ptr(false),
		})
		require.NoError(t, err)
		assert.Equal(t, "Sunset rooftop concert", got.Title)
		assert.False(t, got.Paid)
	})

	t.Run("non_owner_is_forbidden", func(t *testing.T) {
		f := newFixture()
		ev := seedEvent(f, domain.StatePending)
		_, err := f.svc.UpdateByInitiator(context.Background(), UpdateCmd{
			ActorID: uuid.New(),
			EventID: ev.ID,
			Title:   ptr("Hijacked title"),
		})
		wantCode(t, err, domain.CodeForbidden)
	})

	t.Run("published_event_is_immutable", func(t *testing.T) {
		f := newFixture()
		ev := seedEvent(f, domain.StatePublished)
		_, err := f.svc.UpdateByInitiator(context.Background(), UpdateCmd{
			ActorID: ev.InitiatorID,
			EventID: ev.ID,
			Title:   ptr("Too late for edits"),
		})
		wantCode(t, err, domain.CodeNotModifiable)
	})

	t.Run("withdraw_then_resubmit", func(t *testing.T) {
		f := newFixture()
		ev := seedEvent(f, domain.StatePending)

		got, err := f.svc.UpdateByInitiator(context.Background(), UpdateCmd{
			ActorID:     ev.InitiatorID,
			EventID:     ev.ID,
			StateAction: ptr(domain.ActionWithdraw),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StateCanceled, got.State)

		got, err = f.svc.UpdateByInitiator(context.Background(), UpdateCmd{
			ActorID:     ev.InitiatorID,
			EventID:     ev.ID,
			StateAction: ptr(domain.ActionSubmitForReview),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatePending, got.State)
	})

	t.Run("initiator_cannot_publish", func(t *testing.T) {
		f := newFixture()
		ev := seedEvent(f, domain.StatePending)
		_, err := f.svc.UpdateByInitiator(context.Background(), UpdateCmd{
			ActorID:     ev.InitiatorID,
			EventID:     ev.ID,
			StateAction: ptr(domain.ActionPublish),
		})
		wantCode(t, err, domain.CodeForbidden)
	})

	t.Run("edit_invalidates_cached_details", func(t *testing.T) {
		f := newFixture()
		ev := seedEvent(f, domain.StatePending)
		f.cache.entries[cacheKeyEventDetails(ev.ID)] = []byte(`{}`)

		_, err := f.svc.UpdateByInitiator(context.Background(), UpdateCmd{
			ActorID: ev.InitiatorID,
			EventID: ev.ID,
			Title:   ptr("Fresh title for everyone"),
		})
		require.NoError(t, err)
		assert.NotContains(t, f.cache.entries, cacheKeyEventDetails(ev.ID))
	})
}

// --- Moderate ---

func TestService_Moderate(t *testing.T) {
	t.Run("publish_stamps_and_notifies", func(t *testing.T) {
		f := newFixture()
		ev := seedEvent(f, domain.StatePending)

		got, err := f.svc.Moderate(context.Background(), ModerateCmd{
			EventID:     ev.ID,
			StateAction: ptr(domain.ActionPublish),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatePublished, got.State)
		require.NotNil(t, got.PublishedOn)
		assert.Equal(t, testNow, got.PublishedOn.UTC())

		require.Equal(t, []string{"event.published"}, f.pub.keys)
		payload, ok := f.pub.payloads[0].(EventPublishedPayload)
		require.True(t, ok)
		assert.Equal(t, ev.ID, payload.EventID)
	})

	t.Run("reject_sends_back_to_canceled", func(t *testing.T) {
		f := newFixture()
		ev := seedEvent(f, domain.StatePending)

		got, err := f.svc.Moderate(context.Background(), ModerateCmd{
			EventID:     ev.ID,
			StateAction: ptr(domain.ActionReject),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StateCanceled, got.State)
		assert.Empty(t, f.pub.keys)
	})

	t.Run("cannot_publish_canceled_event", func(t *testing.T) {
		f := newFixture()
		ev := seedEvent(f, domain.StateCanceled)
		_, err := f.svc.Moderate(context.Background(), ModerateCmd{
			EventID:     ev.ID,
			StateAction: ptr(domain.ActionPublish),
		})
		wantCode(t, err, domain.CodeInvalidState)
	})

	t.Run("review_actions_are_not_for_admins", func(t *testing.T) {
		f := newFixture()
		ev := seedEvent(f, domain.StatePending)
		_, err := f.svc.Moderate(context.Background(), ModerateCmd{
			EventID:     ev.ID,
			StateAction: ptr(domain.ActionSubmitForReview),
		})
		wantCode(t, err, domain.CodeValidation)
	})

	t.Run("admin_edit_skips_lead_time_check", func(t *testing.T) {
		f := newFixture()
		ev := seedEvent(f, domain.StatePending)

		soon := testNow.Add(30 * time.Minute)
		got, err := f.svc.Moderate(context.Background(), ModerateCmd{
			EventID:   ev.ID,
			EventDate: &soon,
		})
		require.NoError(t, err)
		assert.Equal(t, soon, got.EventDate)
	})
}

// --- Public read side ---

func TestService_GetPublic(t *testing.T) {
	t.Run("published_event_records_hit_and_caches", func(t *testing.T) {
		f := newFixture()
		ev := seedEvent(f, domain.StatePublished)
		uri := "/events/" + ev.ID.String()

		got, err := f.svc.GetPublic(context.Background(), ev.ID, uri, "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, ev.ID, got.ID)
		assert.Equal(t, []string{uri}, f.stats.hits)
		assert.Contains(t, f.cache.entries, cacheKeyEventDetails(ev.ID))
	})

	t.Run("cache_hit_skips_repo_but_still_counts", func(t *testing.T) {
		f := newFixture()
		ev := seedEvent(f, domain.StatePublished)
		uri := "/events/" + ev.ID.String()

		_, err := f.svc.GetPublic(context.Background(), ev.ID, uri, "10.0.0.1")
		require.NoError(t, err)

		delete(f.repo.events, ev.ID)
		got, err := f.svc.GetPublic(context.Background(), ev.ID, uri, "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, ev.ID, got.ID)
		assert.Len(t, f.stats.hits, 2)
	})

	t.Run("pending_event_reads_as_absent", func(t *testing.T) {
		f := newFixture()
		ev := seedEvent(f, domain.StatePending)
		_, err := f.svc.GetPublic(context.Background(), ev.ID, "/events/x", "10.0.0.1")
		wantCode(t, err, domain.CodeNotFound)
		assert.Empty(t, f.stats.hits)
	})

	t.Run("view_counter_refreshes_from_stats", func(t *testing.T) {
		f := newFixture()
		ev := seedEvent(f, domain.StatePublished)
		uri := "/events/" + ev.ID.String()
		f.stats.views[uri] = 42

		got, err := f.svc.GetPublic(context.Background(), ev.ID, uri, "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, int64(42), got.Views)
		assert.Equal(t, int64(42), f.repo.events[ev.ID].Views)
	})
}

func TestService_GetByInitiator(t *testing.T) {
	f := newFixture()
	ev := seedEvent(f, domain.StatePending)

	got, err := f.svc.GetByInitiator(context.Background(), ev.ID, ev.InitiatorID)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, got.ID)

	_, err = f.svc.GetByInitiator(context.Background(), ev.ID, uuid.New())
	wantCode(t, err, domain.CodeForbidden)
}

// --- Listing ---

func TestService_ListPublic(t *testing.T) {
	t.Run("only_published_events_returned", func(t *testing.T) {
		f := newFixture()
		seedEvent(f, domain.StatePending)
		pub := seedEvent(f, domain.StatePublished)

		events, err := f.svc.ListPublic(context.Background(), ListFilter{}, "/events", "10.0.0.1")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, pub.ID, events[0].ID)
		assert.Equal(t, []string{"/events"}, f.stats.hits)
	})

	t.Run("inverted_range_rejected", func(t *testing.T) {
		f := newFixture()
		start := testNow
		end := testNow.Add(-time.Hour)
		_, err := f.svc.ListPublic(context.Background(), ListFilter{RangeStart: &start, RangeEnd: &end}, "/events", "10.0.0.1")
		wantCode(t, err, domain.CodeValidation)
	})

	t.Run("page_defaults_applied", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.ListPublic(context.Background(), ListFilter{From: -5, Size: 0}, "/events", "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, 0, f.repo.lastListFilter.From)
		assert.Equal(t, 10, f.repo.lastListFilter.Size)
	})

	t.Run("page_size_capped", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.ListPublic(context.Background(), ListFilter{Size: 5000}, "/events", "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, 100, f.repo.lastListFilter.Size)
	})
}

func TestService_Search(t *testing.T) {
	f := newFixture()
	seedEvent(f, domain.StatePending)
	seedEvent(f, domain.StatePublished)

	events, err := f.svc.Search(context.Background(), AdminFilter{States: []domain.EventState{domain.StatePending}})
	require.NoError(t, err)
	assert.Len(t, events, 2)

	_, err = f.svc.Search(context.Background(), AdminFilter{States: []domain.EventState{"NONSENSE"}})
	wantCode(t, err, domain.CodeValidation)
}

// --- Delete ---

func TestService_Delete(t *testing.T) {
	t.Run("owner_deletes_pending_event", func(t *testing.T) {
		f := newFixture()
		ev := seedEvent(f, domain.StatePending)
		require.NoError(t, f.svc.Delete(context.Background(), ev.ID, ev.InitiatorID, ""))
		assert.NotContains(t, f.repo.events, ev.ID)
	})

	t.Run("admin_deletes_any_event", func(t *testing.T) {
		f := newFixture()
		ev := seedEvent(f, domain.StateCanceled)
		require.NoError(t, f.svc.Delete(context.Background(), ev.ID, uuid.New(), RoleAdmin))
	})

	t.Run("stranger_is_forbidden", func(t *testing.T) {
		f := newFixture()
		ev := seedEvent(f, domain.StatePending)
		err := f.svc.Delete(context.Background(), ev.ID, uuid.New(), "user")
		wantCode(t, err, domain.CodeForbidden)
	})

	t.Run("published_event_stays", func(t *testing.T) {
		f := newFixture()
		ev := seedEvent(f, domain.StatePublished)
		err := f.svc.Delete(context.Background(), ev.ID, ev.InitiatorID, "")
		wantCode(t, err, domain.CodeNotModifiable)
	})

	t.Run("event_with_requests_stays", func(t *testing.T) {
		f := newFixture()
		ev := seedEvent(f, domain.StatePending)
		f.repo.hasRequests[ev.ID] = true
		err := f.svc.Delete(context.Background(), ev.ID, ev.InitiatorID, "")
		wantCode(t, err, domain.CodeConflict)
	})

	t.Run("compiled_event_stays", func(t *testing.T) {
		f := newFixture()
		ev := seedEvent(f, domain.StatePending)
		f.repo.inCompilation[ev.ID] = true
		err := f.svc.Delete(context.Background(), ev.ID, ev.InitiatorID, "")
		wantCode(t, err, domain.CodeConflict)
	})
}
