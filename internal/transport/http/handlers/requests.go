package handlers

import (
	"net/http"

	"github.com/avoronov/eventhub/internal/application/request"
	"github.com/avoronov/eventhub/internal/domain"
	"github.com/avoronov/eventhub/internal/transport/http/dto"
	"github.com/avoronov/eventhub/internal/transport/http/middleware"
	"github.com/avoronov/eventhub/internal/transport/http/response"
	"github.com/avoronov/eventhub/internal/transport/http/validate"
)

type RequestsHandler struct {
	svc *request.Service
}

func NewRequestsHandler(svc *request.Service) *RequestsHandler {
	return &RequestsHandler{svc: svc}
}

func (h *RequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathUUID(r, "event_id")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	req, err := h.svc.Request(r.Context(), middleware.UserID(r), eventID)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, dto.ToRequestResp(req))
}

func (h *RequestsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	requestID, err := pathUUID(r, "request_id")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	req, err := h.svc.Cancel(r.Context(), middleware.UserID(r), requestID)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToRequestResp(req))
}

func (h *RequestsHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.svc.ListOwn(r.Context(), middleware.UserID(r))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToRequestResps(reqs))
}

// ListForEvent serves the initiator's moderation view.
func (h *RequestsHandler) ListForEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathUUID(r, "event_id")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	reqs, err := h.svc.ListForEvent(r.Context(), middleware.UserID(r), eventID)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToRequestResps(reqs))
}

// UpdateStatuses adjudicates a batch of pending requests for the
// initiator's event.
func (h *RequestsHandler) UpdateStatuses(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathUUID(r, "event_id")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	var body dto.UpdateRequestStatusesReq
	if err := validate.DecodeJSON(r, &body); err != nil {
		response.Err(w, r, err)
		return
	}

	res, err := h.svc.UpdateStatuses(
		r.Context(),
		middleware.UserID(r),
		eventID,
		body.RequestIDs,
		domain.ParticipationStatus(body.Status),
	)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToAdmissionResultResp(res))
}
