package dto

import (
	"time"

	"github.com/google/uuid"
)

type RequestResp struct {
	ID          uuid.UUID `json:"id"`
	RequesterID uuid.UUID `json:"requester_id"`
	EventID     uuid.UUID `json:"event_id"`
	Status      string    `json:"status"`
	CreatedOn   time.Time `json:"created_on"`
}

type UpdateRequestStatusesReq struct {
	RequestIDs []uuid.UUID `json:"request_ids" validate:"required,min=1"`
	Status     string      `json:"status" validate:"required,oneof=CONFIRMED REJECTED"`
}

type AdmissionResultResp struct {
	Confirmed []RequestResp `json:"confirmed_requests"`
	Rejected  []RequestResp `json:"rejected_requests"`
}
