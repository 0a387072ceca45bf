package handlers

import (
	"net/http"

	"github.com/avoronov/eventhub/internal/application/user"
	"github.com/avoronov/eventhub/internal/transport/http/dto"
	"github.com/avoronov/eventhub/internal/transport/http/response"
	"github.com/avoronov/eventhub/internal/transport/http/validate"
)

type UsersHandler struct {
	svc *user.Service
}

func NewUsersHandler(svc *user.Service) *UsersHandler {
	return &UsersHandler{svc: svc}
}

func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.NewUserReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	u, err := h.svc.Register(r.Context(), req.Name, req.Email)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, dto.ToUserResp(u))
}

func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "user_id")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		response.Err(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := queryUUIDList(r, "ids")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	users, err := h.svc.List(r.Context(), ids, queryInt(r, "from", 0), queryInt(r, "size", 10))
	if err != nil {
		response.Err(w, r, err)
		return
	}

	out := make([]dto.UserResp, 0, len(users))
	for _, u := range users {
		out = append(out, dto.ToUserResp(u))
	}
	response.Data(w, http.StatusOK, out)
}
