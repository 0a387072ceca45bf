package handlers

import (
	"net/http"

	"github.com/avoronov/eventhub/internal/application/compilation"
	"github.com/avoronov/eventhub/internal/domain"
	"github.com/avoronov/eventhub/internal/transport/http/dto"
	"github.com/avoronov/eventhub/internal/transport/http/response"
	"github.com/avoronov/eventhub/internal/transport/http/validate"
)

type CompilationsHandler struct {
	svc *compilation.Service
}

func NewCompilationsHandler(svc *compilation.Service) *CompilationsHandler {
	return &CompilationsHandler{svc: svc}
}

func (h *CompilationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.NewCompilationReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	comp, err := h.svc.Create(r.Context(), req.Title, req.Pinned, req.EventIDs)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, dto.ToCompilationResp(comp))
}

func (h *CompilationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "comp_id")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	var req dto.UpdateCompilationReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	comp, err := h.svc.Update(r.Context(), id, domain.CompilationUpdate{
		Title:    req.Title,
		Pinned:   req.Pinned,
		EventIDs: req.EventIDs,
	})
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToCompilationResp(comp))
}

func (h *CompilationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "comp_id")
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

func (h *CompilationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "comp_id")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	comp, err := h.svc.Get(r.Context(), id)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToCompilationResp(comp))
}

func (h *CompilationsHandler) List(w http.ResponseWriter, r *http.Request) {
	comps, err := h.svc.List(r.Context(), queryBoolPtr(r, "pinned"),
		queryInt(r, "from", 0), queryInt(r, "size", 10))
	if err != nil {
		response.Err(w, r, err)
		return
	}

	out := make([]dto.CompilationResp, 0, len(comps))
	for _, c := range comps {
		out = append(out, dto.ToCompilationResp(c))
	}
	response.Data(w, http.StatusOK, out)
}
