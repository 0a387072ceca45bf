package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type EventState string

const (
	StatePending   EventState = "PENDING"
	StatePublished EventState = "PUBLISHED"
	StateCanceled  EventState = "CANCELED"
)

func (s EventState) Valid() bool {
	return s == StatePending || s == StatePublished || s == StateCanceled
}

// StateAction is the variant of transitions a caller may request.
// Publish/Reject are admin moderation actions; SubmitForReview/Withdraw
// belong to the initiator.
type StateAction string

const (
	ActionPublish         StateAction = "PUBLISH_EVENT"
	ActionReject          StateAction = "REJECT_EVENT"
	ActionSubmitForReview StateAction = "SEND_TO_REVIEW"
	ActionWithdraw        StateAction = "CANCEL_REVIEW"
)

func (a StateAction) Valid() bool {
	switch a {
	case ActionPublish, ActionReject, ActionSubmitForReview, ActionWithdraw:
		return true
	}
	return false
}

type transitionRule struct {
	from map[EventState]bool
	to   EventState
}

// PUBLISHED and CANCELED have no outgoing transitions except
// CANCELED -> PENDING on resubmit.
var transitions = map[StateAction]transitionRule{
	ActionPublish:         {from: map[EventState]bool{StatePending: true}, to: StatePublished},
	ActionReject:          {from: map[EventState]bool{StatePending: true}, to: StateCanceled},
	ActionSubmitForReview: {from: map[EventState]bool{StatePending: true, StateCanceled: true}, to: StatePending},
	ActionWithdraw:        {from: map[EventState]bool{StatePending: true}, to: StateCanceled},
}

// Location is owned by its event; it has no identity of its own.
type Location struct {
	Lat float64
	Lon float64
}

// MinLeadTime is the minimum gap between "now" and an event's start
// required from non-admin callers.
const MinLeadTime = 2 * time.Hour

type Event struct {
	ID          uuid.UUID
	Title       string
	Annotation  string
	Description string
	CategoryID  uuid.UUID
	InitiatorID uuid.UUID
	Location    Location
	EventDate   time.Time
	Paid        bool

	// ParticipantLimit caps confirmed requests; 0 means unlimited.
	ParticipantLimit  int
	RequestModeration bool

	State       EventState
	PublishedOn *time.Time

	// Views and ConfirmedRequests are server-maintained counters,
	// never settable by clients.
	Views             int64
	ConfirmedRequests int

	CreatedOn time.Time
	UpdatedAt time.Time
}

type NewEventParams struct {
	Title             string
	Annotation        string
	Description       string
	CategoryID        uuid.UUID
	InitiatorID       uuid.UUID
	Location          Location
	EventDate         time.Time
	Paid              bool
	ParticipantLimit  int
	RequestModeration bool
}

func ValidateEventDate(date, now time.Time, admin bool) error {
	if date.IsZero() {
		return ErrValidation("event_date is required")
	}
	if admin {
		return nil
	}
	if date.Before(now.Add(MinLeadTime)) {
		return ErrValidationMeta("event_date is too soon", map[string]string{
			"event_date": "must be at least 2 hours from now",
		})
	}
	return nil
}

func NewEvent(p NewEventParams, now time.Time) (*Event, error) {
	p.Title = strings.TrimSpace(p.Title)
	p.Annotation = strings.TrimSpace(p.Annotation)
	p.Description = strings.TrimSpace(p.Description)

	if p.InitiatorID == uuid.Nil {
		return nil, ErrValidation("initiator_id is required")
	}
	if p.CategoryID == uuid.Nil {
		return nil, ErrValidation("category_id is required")
	}
	if n := len(p.Title); n < 3 || n > 120 {
		return nil, ErrValidation("title must be 3..120 chars")
	}
	if n := len(p.Annotation); n < 20 || n > 2000 {
		return nil, ErrValidation("annotation must be 20..2000 chars")
	}
	if n := len(p.Description); n < 20 || n > 7000 {
		return nil, ErrValidation("description must be 20..7000 chars")
	}
	if p.ParticipantLimit < 0 {
		return nil, ErrValidation("participant_limit must be >= 0 (0 means unlimited)")
	}
	if err := ValidateEventDate(p.EventDate, now, false); err != nil {
		return nil, err
	}

	return &Event{
		ID:                uuid.New(),
		Title:             p.Title,
		Annotation:        p.Annotation,
		Description:       p.Description,
		CategoryID:        p.CategoryID,
		InitiatorID:       p.InitiatorID,
		Location:          p.Location,
		EventDate:         p.EventDate.UTC(),
		Paid:              p.Paid,
		ParticipantLimit:  p.ParticipantLimit,
		RequestModeration: p.RequestModeration,
		State:             StatePending,
		CreatedOn:         now.UTC(),
		UpdatedAt:         now.UTC(),
	}, nil
}

// Apply runs one state action against the transition table. It returns a
// conflict error when the current state has no edge for the action.
func (e *Event) Apply(action StateAction, now time.Time) error {
	rule, ok := transitions[action]
	if !ok {
		return ErrValidation("unknown state action")
	}
	if !rule.from[e.State] {
		return e.transitionError(action)
	}

	t := now.UTC()
	e.State = rule.to
	e.UpdatedAt = t
	if action == ActionPublish {
		e.PublishedOn = &t
	}
	return nil
}

func (e *Event) transitionError(action StateAction) error {
	switch action {
	case ActionPublish:
		if e.State == StateCanceled {
			return ErrInvalidState("cannot publish a canceled event")
		}
		return ErrInvalidState("already published")
	case ActionReject:
		return ErrInvalidState("published event cannot be rejected")
	case ActionWithdraw:
		return ErrInvalidState("only a pending event can be withdrawn")
	case ActionSubmitForReview:
		return ErrInvalidState("published event cannot be resubmitted for review")
	}
	return ErrInvalidState("illegal state transition")
}

type EventUpdate struct {
	Title             *string
	Annotation        *string
	Description       *string
	CategoryID        *uuid.UUID
	Location          *Location
	EventDate         *time.Time
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool
}

// ApplyUpdate mutates fields while the event is still editable. A published
// event is immutable.
func (e *Event) ApplyUpdate(u EventUpdate, now time.Time, admin bool) error {
	if e.State == StatePublished {
		return ErrNotModifiable("published event cannot be modified")
	}

	if u.Title != nil {
		v := strings.TrimSpace(*u.Title)
		if n := len(v); n < 3 || n > 120 {
			return ErrValidation("title must be 3..120 chars")
		}
		e.Title = v
	}
	if u.Annotation != nil {
		v := strings.TrimSpace(*u.Annotation)
		if n := len(v); n < 20 || n > 2000 {
			return ErrValidation("annotation must be 20..2000 chars")
		}
		e.Annotation = v
	}
	if u.Description != nil {
		v := strings.TrimSpace(*u.Description)
		if n := len(v); n < 20 || n > 7000 {
			return ErrValidation("description must be 20..7000 chars")
		}
		e.Description = v
	}
	if u.CategoryID != nil {
		if *u.CategoryID == uuid.Nil {
			return ErrValidation("category_id must not be empty")
		}
		e.CategoryID = *u.CategoryID
	}
	if u.Location != nil {
		e.Location = *u.Location
	}
	if u.EventDate != nil {
		if err := ValidateEventDate(*u.EventDate, now, admin); err != nil {
			return err
		}
		e.EventDate = u.EventDate.UTC()
	}
	if u.Paid != nil {
		e.Paid = *u.Paid
	}
	if u.ParticipantLimit != nil {
		if *u.ParticipantLimit < 0 {
			return ErrValidation("participant_limit must be >= 0 (0 means unlimited)")
		}
		e.ParticipantLimit = *u.ParticipantLimit
	}
	if u.RequestModeration != nil {
		e.RequestModeration = *u.RequestModeration
	}

	e.UpdatedAt = now.UTC()
	return nil
}

// AddParticipant increments the confirmed counter under the capacity
// invariant and returns the new count. Callers must hold the per-event
// lock (see AdmissionController).
func (e *Event) AddParticipant() (int, error) {
	if e.ParticipantLimit > 0 && e.ConfirmedRequests >= e.ParticipantLimit {
		return e.ConfirmedRequests, ErrCapacityExceeded("participant limit reached")
	}
	e.ConfirmedRequests++
	return e.ConfirmedRequests, nil
}

func (e *Event) IsFull() bool {
	return e.ParticipantLimit > 0 && e.ConfirmedRequests >= e.ParticipantLimit
}
