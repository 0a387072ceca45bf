package dto

import (
	"time"

	"github.com/google/uuid"
)

type LocationDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type CreateEventReq struct {
	Title             string      `json:"title" validate:"required,min=3,max=120"`
	Annotation        string      `json:"annotation" validate:"required,min=20,max=2000"`
	Description       string      `json:"description" validate:"required,min=20,max=7000"`
	CategoryID        uuid.UUID   `json:"category_id" validate:"required"`
	Location          LocationDTO `json:"location"`
	EventDate         time.Time   `json:"event_date" validate:"required"`
	Paid              bool        `json:"paid"`
	ParticipantLimit  int         `json:"participant_limit" validate:"gte=0"`
	RequestModeration *bool       `json:"request_moderation"`
}

type UpdateEventReq struct {
	Title             *string      `json:"title,omitempty" validate:"omitempty,min=3,max=120"`
	Annotation        *string      `json:"annotation,omitempty" validate:"omitempty,min=20,max=2000"`
	Description       *string      `json:"description,omitempty" validate:"omitempty,min=20,max=7000"`
	CategoryID        *uuid.UUID   `json:"category_id,omitempty"`
	Location          *LocationDTO `json:"location,omitempty"`
	EventDate         *time.Time   `json:"event_date,omitempty"`
	Paid              *bool        `json:"paid,omitempty"`
	ParticipantLimit  *int         `json:"participant_limit,omitempty" validate:"omitempty,gte=0"`
	RequestModeration *bool        `json:"request_moderation,omitempty"`

	// SEND_TO_REVIEW or CANCEL_REVIEW for initiators,
	// PUBLISH_EVENT or REJECT_EVENT for admins
	StateAction *string `json:"state_action,omitempty" validate:"omitempty,oneof=SEND_TO_REVIEW CANCEL_REVIEW PUBLISH_EVENT REJECT_EVENT"`
}

type EventResp struct {
	ID                uuid.UUID   `json:"id"`
	Title             string      `json:"title"`
	Annotation        string      `json:"annotation"`
	Description       string      `json:"description"`
	CategoryID        uuid.UUID   `json:"category_id"`
	InitiatorID       uuid.UUID   `json:"initiator_id"`
	Location          LocationDTO `json:"location"`
	EventDate         time.Time   `json:"event_date"`
	Paid              bool        `json:"paid"`
	ParticipantLimit  int         `json:"participant_limit"`
	RequestModeration bool        `json:"request_moderation"`
	State             string      `json:"state"`
	PublishedOn       *time.Time  `json:"published_on,omitempty"`
	Views             int64       `json:"views"`
	ConfirmedRequests int         `json:"confirmed_requests"`
	CreatedOn         time.Time   `json:"created_on"`

	Available bool `json:"available"`
}
