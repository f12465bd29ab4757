package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apimw "github.com/skillforge/platform/internal/api/middleware"
	catalogApp "github.com/skillforge/platform/internal/catalog/app"
)

type CreateChapterRequest struct {
	Title       string    `json:"title" validate:"required,min=1,max=200"`
	Description string    `json:"description,omitempty"`
	CourseID    uuid.UUID `json:"course_id" validate:"required"`
	Order       int       `json:"order" validate:"gte=0"`
}

type UpdateChapterRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Order       *int    `json:"order,omitempty" validate:"omitempty,gte=0"`
}

type ChapterHandler struct {
	catalog  *catalogApp.Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewChapterHandler(catalog *catalogApp.Service, validate *validator.Validate, logger *slog.Logger) *ChapterHandler {
	return &ChapterHandler{
		catalog:  catalog,
		validate: validate,
		logger:   logger.With("handler", "chapter"),
	}
}

func (h *ChapterHandler) RegisterRoutes(r chi.Router) {
	r.Get("/courses/{courseID}/chapters", h.handleListByCourse)
	r.Get("/chapters/{chapterID}", h.handleGet)

	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireAuth)
		r.Post("/chapters", h.handleCreate)
		r.Put("/chapters/{chapterID}", h.handleUpdate)
		r.Delete("/chapters/{chapterID}", h.handleDelete)
	})
}

// requireOwnerOfCourse checks the caller owns the course the chapter hangs
// off, admins excepted.
func (h *ChapterHandler) requireOwnerOfCourse(w http.ResponseWriter, r *http.Request, courseID uuid.UUID) bool {
	identity := apimw.IdentityFromContext(r.Context())
	if identity.IsAdmin() {
		return true
	}
	course, err := h.catalog.GetCourse(r.Context(), courseID)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return false
	}
	if course.TutorID != identity.UserID {
		respondWithError(w, http.StatusForbidden, "forbidden", "not the course owner")
		return false
	}
	return true
}

func (h *ChapterHandler) handleListByCourse(w http.ResponseWriter, r *http.Request) {
	courseID, ok := parseUUIDParam(r, "courseID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid course id")
		return
	}
	chapters, err := h.catalog.ListChaptersByCourse(r.Context(), courseID)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, chapters)
}

func (h *ChapterHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	chapterID, ok := parseUUIDParam(r, "chapterID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid chapter id")
		return
	}
	chapter, err := h.catalog.GetChapter(r.Context(), chapterID)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, chapter)
}

func (h *ChapterHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateChapterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}
	if !h.requireOwnerOfCourse(w, r, req.CourseID) {
		return
	}

	chapter, err := h.catalog.CreateChapter(r.Context(), catalogApp.ChapterInput{
		Title:       req.Title,
		Description: req.Description,
		CourseID:    req.CourseID,
		Order:       req.Order,
	})
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, chapter)
}

func (h *ChapterHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	chapterID, ok := parseUUIDParam(r, "chapterID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid chapter id")
		return
	}
	chapter, err := h.catalog.GetChapter(r.Context(), chapterID)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	if !h.requireOwnerOfCourse(w, r, chapter.CourseID) {
		return
	}

	var req UpdateChapterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	updated, err := h.catalog.UpdateChapter(r.Context(), chapterID, catalogApp.ChapterUpdate{
		Title:       req.Title,
		Description: req.Description,
		Order:       req.Order,
	})
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *ChapterHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	chapterID, ok := parseUUIDParam(r, "chapterID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid chapter id")
		return
	}
	chapter, err := h.catalog.GetChapter(r.Context(), chapterID)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	if !h.requireOwnerOfCourse(w, r, chapter.CourseID) {
		return
	}
	if err := h.catalog.DeleteChapter(r.Context(), chapterID); err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}
