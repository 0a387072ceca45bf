package handlers

import (
	"net/http"
	"strings"

	"github.com/avoronov/eventhub/internal/application/event"
	"github.com/avoronov/eventhub/internal/domain"
	"github.com/avoronov/eventhub/internal/transport/http/dto"
	"github.com/avoronov/eventhub/internal/transport/http/middleware"
	"github.com/avoronov/eventhub/internal/transport/http/response"
	"github.com/avoronov/eventhub/internal/transport/http/validate"
)

type EventsHandler struct {
	svc *event.Service
}

func NewEventsHandler(svc *event.Service) *EventsHandler {
	return &EventsHandler{svc: svc}
}

// Public

func (h *EventsHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sort := event.Sort(strings.TrimSpace(q.Get("sort")))
	switch sort {
	case "", event.SortEventDate, event.SortViews:
	default:
		response.Err(w, r, domain.ErrValidationMeta("invalid query param", map[string]string{
			"sort": "must be one of: EVENT_DATE, VIEWS",
		}))
		return
	}

	categories, err := queryUUIDList(r, "categories")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	rangeStart, err := queryTimePtr(r, "range_start")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	rangeEnd, err := queryTimePtr(r, "range_end")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	filter := event.ListFilter{
		Text:          q.Get("text"),
		Categories:    categories,
		Paid:          queryBoolPtr(r, "paid"),
		RangeStart:    rangeStart,
		RangeEnd:      rangeEnd,
		OnlyAvailable: q.Get("only_available") == "true",
		Sort:          sort,
		From:          queryInt(r, "from", 0),
		Size:          queryInt(r, "size", 10),
	}

	events, err := h.svc.ListPublic(r.Context(), filter, r.URL.RequestURI(), clientIP(r))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEventResps(events))
}

func (h *EventsHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "event_id")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	ev, err := h.svc.GetPublic(r.Context(), id, r.URL.Path, clientIP(r))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEventResp(ev))
}

// Initiator

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEventReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	moderation := true
	if req.RequestModeration != nil {
		moderation = *req.RequestModeration
	}

	ev, err := h.svc.Create(r.Context(), event.CreateCmd{
		InitiatorID:       middleware.UserID(r),
		Title:             req.Title,
		Annotation:        req.Annotation,
		Description:       req.Description,
		CategoryID:        req.CategoryID,
		Location:          domain.Location{Lat: req.Location.Lat, Lon: req.Location.Lon},
		EventDate:         req.EventDate,
		Paid:              req.Paid,
		ParticipantLimit:  req.ParticipantLimit,
		RequestModeration: moderation,
	})
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, dto.ToEventResp(ev))
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "event_id")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	var req dto.UpdateEventReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	cmd := event.UpdateCmd{
		ActorID:           middleware.UserID(r),
		EventID:           id,
		Title:             req.Title,
		Annotation:        req.Annotation,
		Description:       req.Description,
		CategoryID:        req.CategoryID,
		Location:          toLocationPtr(req.Location),
		EventDate:         req.EventDate,
		Paid:              req.Paid,
		ParticipantLimit:  req.ParticipantLimit,
		RequestModeration: req.RequestModeration,
		StateAction:       toActionPtr(req.StateAction),
	}

	ev, err := h.svc.UpdateByInitiator(r.Context(), cmd)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEventResp(ev))
}

func (h *EventsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListByInitiator(r.Context(), middleware.UserID(r),
		queryInt(r, "from", 0), queryInt(r, "size", 10))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEventResps(events))
}

func (h *EventsHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "event_id")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	ev, err := h.svc.GetByInitiator(r.Context(), id, middleware.UserID(r))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEventResp(ev))
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "event_id")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id, middleware.UserID(r), middleware.Role(r)); err != nil {
		response.Err(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Admin

func (h *EventsHandler) Search(w http.ResponseWriter, r *http.Request) {
	users, err := queryUUIDList(r, "users")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	categories, err := queryUUIDList(r, "categories")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	rangeStart, err := queryTimePtr(r, "range_start")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	rangeEnd, err := queryTimePtr(r, "range_end")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	var states []domain.EventState
	if v := strings.TrimSpace(r.URL.Query().Get("states")); v != "" {
		for _, s := range strings.Split(v, ",") {
			states = append(states, domain.EventState(strings.TrimSpace(s)))
		}
	}

	events, err := h.svc.Search(r.Context(), event.AdminFilter{
		Users:      users,
		States:     states,
		Categories: categories,
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,
		From:       queryInt(r, "from", 0),
		Size:       queryInt(r, "size", 10),
	})
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEventResps(events))
}

func (h *EventsHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "event_id")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	var req dto.UpdateEventReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	ev, err := h.svc.Moderate(r.Context(), event.ModerateCmd{
		EventID:           id,
		Title:             req.Title,
		Annotation:        req.Annotation,
		Description:       req.Description,
		CategoryID:        req.CategoryID,
		Location:          toLocationPtr(req.Location),
		EventDate:         req.EventDate,
		Paid:              req.Paid,
		ParticipantLimit:  req.ParticipantLimit,
		RequestModeration: req.RequestModeration,
		StateAction:       toActionPtr(req.StateAction),
	})
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEventResp(ev))
}

func toLocationPtr(l *dto.LocationDTO) *domain.Location {
	if l == nil {
		return nil
	}
	return &domain.Location{Lat: l.Lat, Lon: l.Lon}
}

func toActionPtr(s *string) *domain.StateAction {
	if s == nil {
		return nil
	}
	a := domain.StateAction(*s)
	return &a
}

func clientIP(r *http.Request) string {
	// chi's RealIP middleware rewrites RemoteAddr from X-Forwarded-For
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	return host
}
