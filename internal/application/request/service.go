package request

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/avoronov/eventhub/internal/audit"
	"github.com/avoronov/eventhub/internal/domain"
)

// Service owns the participation workflow: creating requests,
// auto-confirming unmoderated ones, and the batch adjudication that
// enforces the participant cap.
type Service struct {
	store  Store
	events EventReader
	users  UserReader
	audit  *audit.Logger
	clock  Clock
}

func New(store Store, events EventReader, users UserReader, auditLog *audit.Logger, clock Clock) *Service {
	return &Service{
		store:  store,
		events: events,
		users:  users,
		audit:  auditLog,
		clock:  clock,
	}
}

// Request creates a participation request for a published event. The whole
// check-decide-persist sequence runs under the event row lock so the
// confirmed counter can never be over-incremented by concurrent callers.
func (s *Service) Request(ctx context.Context, requesterID, eventID uuid.UUID) (*domain.ParticipationRequest, error) {
	if ok, err := s.users.Exists(ctx, requesterID); err != nil {
		return nil, err
	} else if !ok {
		return nil, domain.ErrNotFound("user not found")
	}

	var out *domain.ParticipationRequest
	err := s.store.WithTx(ctx, func(tx TxStore) error {
		ev, err := tx.GetEventForUpdate(ctx, eventID)
		if err != nil {
			return err
		}

		existing, err := tx.FindByRequesterAndEvent(ctx, requesterID, eventID)
		if err != nil {
			return err
		}
		if err := domain.CanRequestParticipation(ev, requesterID, existing); err != nil {
			return err
		}

		now := s.clock.Now()
		req := domain.NewParticipationRequest(requesterID, eventID, domain.InitialRequestStatus(ev), now)

		if req.Status == domain.RequestConfirmed {
			if _, err := ev.AddParticipant(); err != nil {
				return err
			}
			if err := tx.UpdateEvent(ctx, ev); err != nil {
				return err
			}
		}
		if err := tx.CreateRequest(ctx, req); err != nil {
			return err
		}

		if err := s.enqueue(ctx, tx, "request.created", map[string]any{
			"participation_id": req.ID,
			"event_id":         eventID,
			"requester_id":     requesterID,
			"status":           req.Status,
		}, now); err != nil {
			return err
		}

		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		s.audit.RequestCreated(ctx, eventID, requesterID, out.Status)
	}
	return out, nil
}

// Cancel transitions the requester's own request to CANCELED. Canceling an
// already canceled request is a no-op success. A confirmed slot is not
// returned to the pool on cancel; the confirmed counter keeps its value.
func (s *Service) Cancel(ctx context.Context, requesterID, requestID uuid.UUID) (*domain.ParticipationRequest, error) {
	var out *domain.ParticipationRequest
	err := s.store.WithTx(ctx, func(tx TxStore) error {
		req, err := tx.GetRequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req.RequesterID != requesterID {
			return domain.ErrForbidden("only the requester can cancel this request")
		}
		if req.Status == domain.RequestCanceled {
			out = req
			return nil
		}

		req.Status = domain.RequestCanceled
		if err := tx.UpdateRequest(ctx, req); err != nil {
			return err
		}

		if err := s.enqueue(ctx, tx, "request.canceled", map[string]any{
			"participation_id": req.ID,
			"event_id":         req.EventID,
			"requester_id":     requesterID,
		}, s.clock.Now()); err != nil {
			return err
		}

		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		s.audit.RequestCanceled(ctx, requestID, requesterID)
	}
	return out, nil
}

// UpdateStatuses adjudicates a batch of pending requests for the
// initiator's event. The decision itself is the pure
// domain.DecideAdmission; this method supplies the locking scope and a
// single persistence step.
func (s *Service) UpdateStatuses(
	ctx context.Context,
	initiatorID, eventID uuid.UUID,
	requestIDs []uuid.UUID,
	target domain.ParticipationStatus,
) (domain.AdmissionResult, error) {
	var res domain.AdmissionResult

	err := s.store.WithTx(ctx, func(tx TxStore) error {
		ev, err := tx.GetEventForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		if ev.InitiatorID != initiatorID {
			return domain.ErrForbidden("only the initiator can moderate requests for this event")
		}
		if ev.ParticipantLimit == 0 || !ev.RequestModeration {
			return domain.ErrNotModifiable("requests auto-confirm for this event, no approval needed")
		}
		if ev.IsFull() {
			return domain.ErrCapacityExceeded("participant limit already reached")
		}

		reqs, err := tx.ListByIDs(ctx, requestIDs)
		if err != nil {
			return err
		}
		if len(reqs) != len(requestIDs) {
			return domain.ErrNotFound("one or more participation requests not found")
		}
		for _, r := range reqs {
			if r.EventID != eventID {
				return domain.ErrNotFound("participation request does not belong to this event")
			}
		}

		decided, newCount, err := domain.DecideAdmission(reqs, ev.ConfirmedRequests, ev.ParticipantLimit, target)
		if err != nil {
			return err
		}

		ev.ConfirmedRequests = newCount
		if err := tx.UpdateEvent(ctx, ev); err != nil {
			return err
		}
		for _, r := range reqs {
			if err := tx.UpdateRequest(ctx, r); err != nil {
				return err
			}
		}

		if err := s.enqueue(ctx, tx, "request.batch_decided", map[string]any{
			"event_id":  eventID,
			"confirmed": len(decided.Confirmed),
			"rejected":  len(decided.Rejected),
		}, s.clock.Now()); err != nil {
			return err
		}

		res = decided
		return nil
	})
	if err != nil {
		return domain.AdmissionResult{}, err
	}

	if s.audit != nil {
		s.audit.BatchDecided(ctx, eventID, initiatorID, len(res.Confirmed), len(res.Rejected))
	}
	return res, nil
}

// ListOwn returns the requester's requests across all events.
func (s *Service) ListOwn(ctx context.Context, requesterID uuid.UUID) ([]*domain.ParticipationRequest, error) {
	if ok, err := s.users.Exists(ctx, requesterID); err != nil {
		return nil, err
	} else if !ok {
		return nil, domain.ErrNotFound("user not found")
	}
	return s.store.ListByRequester(ctx, requesterID)
}

// ListForEvent returns all requests against the initiator's event.
func (s *Service) ListForEvent(ctx context.Context, initiatorID, eventID uuid.UUID) ([]*domain.ParticipationRequest, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.InitiatorID != initiatorID {
		return nil, domain.ErrForbidden("only the initiator can view requests for this event")
	}
	return s.store.ListByEvent(ctx, eventID)
}

func (s *Service) enqueue(ctx context.Context, tx TxStore, routingKey string, payload map[string]any, now time.Time) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return tx.InsertOutbox(ctx, OutboxMessage{
		MessageID:  uuid.New(),
		RoutingKey: routingKey,
		Body:       body,
		CreatedAt:  now.UTC(),
	})
}
