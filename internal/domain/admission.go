package domain

import "github.com/google/uuid"

// Admission rules are pure: they read and mutate in-memory models only,
// so they can be unit-tested without a database. Persistence and locking
// live in the application/repository layers.

// InitialRequestStatus decides the status a brand-new request is born with.
// Events without a limit, or with moderation disabled, auto-confirm.
func InitialRequestStatus(ev *Event) ParticipationStatus {
	if ev.ParticipantLimit == 0 || !ev.RequestModeration {
		return RequestConfirmed
	}
	return RequestPending
}

// CanRequestParticipation checks creation preconditions in order, each with
// its own error kind: event published, not the initiator, no live duplicate,
// capacity left. existing is the requester's prior request for this event,
// nil if none.
func CanRequestParticipation(ev *Event, requesterID uuid.UUID, existing *ParticipationRequest) error {
	if ev.State != StatePublished {
		return ErrNotPublished("participation is only open for published events")
	}
	if ev.InitiatorID == requesterID {
		return ErrSelfParticipation("initiator cannot request participation in own event")
	}
	if existing != nil && existing.Status != RequestCanceled {
		return ErrDuplicateRequest("participation request already exists for this event")
	}
	if ev.IsFull() {
		return ErrCapacityExceeded("participant limit reached")
	}
	return nil
}

// AdmissionResult partitions a batch of requests after adjudication.
// Confirmed and Rejected are disjoint and cover exactly the input set.
type AdmissionResult struct {
	Confirmed []*ParticipationRequest
	Rejected  []*ParticipationRequest
}

// DecideAdmission adjudicates requests in input order against the remaining
// capacity. All requests must be PENDING; any other status fails the whole
// batch. When target is CONFIRMED, requests are confirmed until the limit
// is hit, and every request left over is rejected in cascade. When target
// is REJECTED the limit logic is skipped and all requests are rejected.
//
// Returns the partitioned result and the new confirmed count.
func DecideAdmission(requests []*ParticipationRequest, confirmedCount, limit int, target ParticipationStatus) (AdmissionResult, int, error) {
	if target != RequestConfirmed && target != RequestRejected {
		return AdmissionResult{}, confirmedCount, ErrValidation("target status must be CONFIRMED or REJECTED")
	}
	for _, req := range requests {
		if req.Status != RequestPending {
			return AdmissionResult{}, confirmedCount, ErrInvalidRequestState(
				"request must be PENDING to change status, current status: " + string(req.Status))
		}
	}

	var res AdmissionResult
	count := confirmedCount

	processed := 0
	if target == RequestConfirmed {
		for _, req := range requests {
			req.Status = RequestConfirmed
			res.Confirmed = append(res.Confirmed, req)
			count++
			processed++
			if count == limit {
				break
			}
		}
	}

	// Cascade: once capacity is full (or the target was rejection),
	// everything left is rejected.
	for _, req := range requests[processed:] {
		req.Status = RequestRejected
		res.Rejected = append(res.Rejected, req)
	}

	return res, count, nil
}
