package dto

import (
	"github.com/avoronov/eventhub/internal/domain"
)

func ToEventResp(e *domain.Event) EventResp {
	return EventResp{
		ID:                e.ID,
		Title:             e.Title,
		Annotation:        e.Annotation,
		Description:       e.Description,
		CategoryID:        e.CategoryID,
		InitiatorID:       e.InitiatorID,
		Location:          LocationDTO{Lat: e.Location.Lat, Lon: e.Location.Lon},
		EventDate:         e.EventDate,
		Paid:              e.Paid,
		ParticipantLimit:  e.ParticipantLimit,
		RequestModeration: e.RequestModeration,
		State:             string(e.State),
		PublishedOn:       e.PublishedOn,
		Views:             e.Views,
		ConfirmedRequests: e.ConfirmedRequests,
		CreatedOn:         e.CreatedOn,

		Available: !e.IsFull(),
	}
}

func ToEventResps(events []*domain.Event) []EventResp {
	out := make([]EventResp, 0, len(events))
	for _, e := range events {
		out = append(out, ToEventResp(e))
	}
	return out
}

func ToRequestResp(r *domain.ParticipationRequest) RequestResp {
	return RequestResp{
		ID:          r.ID,
		RequesterID: r.RequesterID,
		EventID:     r.EventID,
		Status:      string(r.Status),
		CreatedOn:   r.CreatedOn,
	}
}

func ToRequestResps(reqs []*domain.ParticipationRequest) []RequestResp {
	out := make([]RequestResp, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, ToRequestResp(r))
	}
	return out
}

func ToAdmissionResultResp(res domain.AdmissionResult) AdmissionResultResp {
	return AdmissionResultResp{
		Confirmed: ToRequestResps(res.Confirmed),
		Rejected:  ToRequestResps(res.Rejected),
	}
}

func ToCategoryResp(c *domain.Category) CategoryResp {
	return CategoryResp{ID: c.ID, Name: c.Name}
}

func ToUserResp(u *domain.User) UserResp {
	return UserResp{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

func ToCompilationResp(c *domain.Compilation) CompilationResp {
	return CompilationResp{ID: c.ID, Title: c.Title, Pinned: c.Pinned, EventIDs: c.EventIDs}
}
