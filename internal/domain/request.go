package domain

import (
	"time"

	"github.com/google/uuid"
)

type ParticipationStatus string

const (
	RequestPending   ParticipationStatus = "PENDING"
	RequestConfirmed ParticipationStatus = "CONFIRMED"
	RequestRejected  ParticipationStatus = "REJECTED"
	RequestCanceled  ParticipationStatus = "CANCELED"
)

func (s ParticipationStatus) Valid() bool {
	switch s {
	case RequestPending, RequestConfirmed, RequestRejected, RequestCanceled:
		return true
	}
	return false
}

// CanTransitionTo encodes the request status machine. PENDING is the only
// adjudicable state; a requester may cancel from anywhere but CANCELED.
func (s ParticipationStatus) CanTransitionTo(target ParticipationStatus) bool {
	allowed := map[ParticipationStatus][]ParticipationStatus{
		RequestPending:   {RequestConfirmed, RequestRejected, RequestCanceled},
		RequestConfirmed: {RequestCanceled},
		RequestRejected:  {RequestCanceled},
		RequestCanceled:  {},
	}
	for _, st := range allowed[s] {
		if st == target {
			return true
		}
	}
	return false
}

type ParticipationRequest struct {
	ID          uuid.UUID
	RequesterID uuid.UUID
	EventID     uuid.UUID
	Status      ParticipationStatus
	CreatedOn   time.Time
}

func NewParticipationRequest(requesterID, eventID uuid.UUID, status ParticipationStatus, now time.Time) *ParticipationRequest {
	return &ParticipationRequest{
		ID:          uuid.New(),
		RequesterID: requesterID,
		EventID:     eventID,
		Status:      status,
		CreatedOn:   now.UTC(),
	}
}
