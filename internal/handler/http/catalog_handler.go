package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/vasiliy-maslov/ecommerce-api/internal/catalog"
)

type CatalogItemRequest struct {
	Name  string `json:"name" validate:"required"`
	Image string `json:"image" validate:"omitempty,url"`
}

// CatalogHandler serves one catalog kind; mount one per kind.
type CatalogHandler struct {
	service  catalog.Service
	validate *validator.Validate
}

func NewCatalogHandler(service catalog.Service) *CatalogHandler {
	return &CatalogHandler{service: service, validate: newValidator()}
}

func pluralKey(k catalog.Kind) string {
	switch k {
	case catalog.KindCategory:
		return "categories"
	default:
		return k.String() + "s"
	}
}

// RegisterRoutes mounts reads on r and mutations on admin.
func (h *CatalogHandler) RegisterRoutes(r, admin chi.Router, prefix string) {
	r.Get(prefix, h.handleList)
	r.Get(prefix+"/{id}", h.handleGet)
	admin.Post(prefix, h.handleCreate)
	admin.Put(prefix+"/{id}", h.handleUpdate)
	admin.Delete(prefix+"/{id}", h.handleDelete)
}

// catalogError swaps generic catalog sentinels for kind specific messages.
func (h *CatalogHandler) catalogError(w http.ResponseWriter, err error, fallback string) {
	title := h.service.Kind().Title()
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		respondWithError(w, http.StatusNotFound, title+" not found")
	case errors.Is(err, catalog.ErrExists):
		respondWithError(w, http.StatusConflict, title+" already exists")
	default:
		respondWithServiceError(w, err, fallback)
	}
}

func (h *CatalogHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, capitalize(errUnauthorized.Error()))
		return
	}

	var req CatalogItemRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	kind := h.service.Kind()
	item, err := h.service.Create(r.Context(), catalog.Input{Name: req.Name, Image: req.Image}, u.ID)
	if err != nil {
		h.catalogError(w, err, "Failed to create "+kind.String())
		return
	}

	respondWithJSON(w, http.StatusCreated, envelope(kind.Title()+" created successfully", kind.String(), item))
}

func (h *CatalogHandler) handleList(w http.ResponseWriter, r *http.Request) {
	kind := h.service.Kind()
	items, err := h.service.List(r.Context())
	if err != nil {
		h.catalogError(w, err, "Failed to fetch "+pluralKey(kind))
		return
	}

	respondWithJSON(w, http.StatusOK, envelope(kind.Title()+" list fetched successfully", pluralKey(kind), items))
}

func (h *CatalogHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithServiceError(w, err, "Invalid id parameter")
		return
	}

	kind := h.service.Kind()
	item, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.catalogError(w, err, "Failed to fetch "+kind.String())
		return
	}

	respondWithJSON(w, http.StatusOK, envelope(kind.Title()+" fetched successfully", kind.String(), item))
}

func (h *CatalogHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithServiceError(w, err, "Invalid id parameter")
		return
	}

	var req CatalogItemRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	kind := h.service.Kind()
	item, err := h.service.Update(r.Context(), id, catalog.Input{Name: req.Name, Image: req.Image})
	if err != nil {
		h.catalogError(w, err, "Failed to update "+kind.String())
		return
	}

	respondWithJSON(w, http.StatusOK, envelope(kind.Title()+" updated successfully", kind.String(), item))
}

func (h *CatalogHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithServiceError(w, err, "Invalid id parameter")
		return
	}

	kind := h.service.Kind()
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.catalogError(w, err, "Failed to delete "+kind.String())
		return
	}

	respondWithJSON(w, http.StatusOK, envelope(kind.Title()+" deleted successfully", "", nil))
}
