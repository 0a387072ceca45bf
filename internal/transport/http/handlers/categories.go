package handlers

import (
	"net/http"

	"github.com/avoronov/eventhub/internal/application/category"
	"github.com/avoronov/eventhub/internal/transport/http/dto"
	"github.com/avoronov/eventhub/internal/transport/http/response"
	"github.com/avoronov/eventhub/internal/transport/http/validate"
)

type CategoriesHandler struct {
	svc *category.Service
}

func NewCategoriesHandler(svc *category.Service) *CategoriesHandler {
	return &CategoriesHandler{svc: svc}
}

func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.NewCategoryReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	cat, err := h.svc.Create(r.Context(), req.Name)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, dto.ToCategoryResp(cat))
}

func (h *CategoriesHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "cat_id")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	var req dto.NewCategoryReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	cat, err := h.svc.Rename(r.Context(), id, req.Name)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToCategoryResp(cat))
}

func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "cat_id")
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

func (h *CategoriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "cat_id")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	cat, err := h.svc.Get(r.Context(), id)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToCategoryResp(cat))
}

func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.List(r.Context(), queryInt(r, "from", 0), queryInt(r, "size", 10))
	if err != nil {
		response.Err(w, r, err)
		return
	}

	out := make([]dto.CategoryResp, 0, len(cats))
	for _, c := range cats {
		out = append(out, dto.ToCategoryResp(c))
	}
	response.Data(w, http.StatusOK, out)
}
