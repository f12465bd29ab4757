package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	apimw "github.com/skillforge/platform/internal/api/middleware"
	catalogApp "github.com/skillforge/platform/internal/catalog/app"
)

type CategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
	Slug string `json:"slug" validate:"required,min=1,max=100"`
}

type CategoryHandler struct {
	catalog  *catalogApp.Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewCategoryHandler(catalog *catalogApp.Service, validate *validator.Validate, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		catalog:  catalog,
		validate: validate,
		logger:   logger.With("handler", "category"),
	}
}

func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/categories", h.handleList)
	r.Get("/categories/{categoryID}", h.handleGet)

	// Category management is admin only.
	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireAdmin)
		r.Post("/categories", h.handleCreate)
		r.Put("/categories/{categoryID}", h.handleUpdate)
		r.Delete("/categories/{categoryID}", h.handleDelete)
	})
}

func (h *CategoryHandler) handleList(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := parseUUIDParam(r, "categoryID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid category id")
		return
	}
	category, err := h.catalog.GetCategory(r.Context(), categoryID)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}
	category, err := h.catalog.CreateCategory(r.Context(), req.Name, req.Slug)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := parseUUIDParam(r, "categoryID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid category id")
		return
	}
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	category, err := h.catalog.GetCategory(r.Context(), categoryID)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	category.Name = req.Name
	category.Slug = req.Slug
	if err := h.catalog.UpdateCategory(r.Context(), category); err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := parseUUIDParam(r, "categoryID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid category id")
		return
	}
	if err := h.catalog.DeleteCategory(r.Context(), categoryID); err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}
