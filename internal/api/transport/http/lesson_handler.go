package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/skillforge/platform/internal/access"
	apimw "github.com/skillforge/platform/internal/api/middleware"
	catalogApp "github.com/skillforge/platform/internal/catalog/app"
)

type CreateLessonRequest struct {
	Title         string          `json:"title" validate:"required,min=1,max=200"`
	ChapterID     uuid.UUID       `json:"chapter_id" validate:"required"`
	ContentBlocks json.RawMessage `json:"content_blocks,omitempty"`
	Order         int             `json:"order" validate:"gte=0"`
}

type UpdateLessonRequest struct {
	Title         *string         `json:"title,omitempty"`
	ContentBlocks json.RawMessage `json:"content_blocks,omitempty"`
	Order         *int            `json:"order,omitempty" validate:"omitempty,gte=0"`
}

// LessonHandler serves lesson content. Reads go through the access
// evaluator; lesson bodies are the only catalog data that is gated.
type LessonHandler struct {
	catalog   *catalogApp.Service
	evaluator *access.Evaluator
	validate  *validator.Validate
	logger    *slog.Logger
}

func NewLessonHandler(catalog *catalogApp.Service, evaluator *access.Evaluator, validate *validator.Validate, logger *slog.Logger) *LessonHandler {
	return &LessonHandler{
		catalog:   catalog,
		evaluator: evaluator,
		validate:  validate,
		logger:    logger.With("handler", "lesson"),
	}
}

func (h *LessonHandler) RegisterRoutes(r chi.Router) {
	r.Get("/chapters/{chapterID}/lessons", h.handleListByChapter)

	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireAuth)
		r.Get("/lessons/{lessonID}", h.handleGet)
		r.Post("/lessons", h.handleCreate)
		r.Put("/lessons/{lessonID}", h.handleUpdate)
		r.Delete("/lessons/{lessonID}", h.handleDelete)
	})
}

func (h *LessonHandler) handleListByChapter(w http.ResponseWriter, r *http.Request) {
	chapterID, ok := parseUUIDParam(r, "chapterID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid chapter id")
		return
	}
	lessons, err := h.catalog.ListLessonsByChapter(r.Context(), chapterID)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	// Titles and ordering only; content stays behind the access check.
	type lessonListing struct {
		ID    uuid.UUID `json:"id"`
		Title string    `json:"title"`
		Order int       `json:"order"`
	}
	listings := make([]lessonListing, 0, len(lessons))
	for _, l := range lessons {
		listings = append(listings, lessonListing{ID: l.ID, Title: l.Title, Order: l.Order})
	}
	respondWithJSON(w, http.StatusOK, listings)
}

func (h *LessonHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	lessonID, ok := parseUUIDParam(r, "lessonID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid lesson id")
		return
	}
	identity := apimw.IdentityFromContext(r.Context())

	decision, err := h.evaluator.LessonAccess(r.Context(), identity, lessonID)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	if !decision.HasAccess() {
		respondWithError(w, http.StatusForbidden, "forbidden", "no access to this lesson")
		return
	}

	lesson, err := h.catalog.GetLesson(r.Context(), lessonID)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, lesson)
}

// requireLessonOwner walks lesson -> chapter -> course to check ownership.
func (h *LessonHandler) requireLessonOwner(w http.ResponseWriter, r *http.Request, lessonID uuid.UUID) bool {
	identity := apimw.IdentityFromContext(r.Context())
	decision, err := h.evaluator.LessonAccess(r.Context(), identity, lessonID)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return false
	}
	if !decision.IsOwner() {
		respondWithError(w, http.StatusForbidden, "forbidden", "not the course owner")
		return false
	}
	return true
}

func (h *LessonHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	identity := apimw.IdentityFromContext(r.Context())
	decision, err := h.evaluator.ChapterAccess(r.Context(), identity, req.ChapterID)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	if !decision.IsOwner() {
		respondWithError(w, http.StatusForbidden, "forbidden", "not the course owner")
		return
	}

	lesson, err := h.catalog.CreateLesson(r.Context(), catalogApp.LessonInput{
		Title:         req.Title,
		ChapterID:     req.ChapterID,
		ContentBlocks: req.ContentBlocks,
		Order:         req.Order,
	})
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, lesson)
}

func (h *LessonHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	lessonID, ok := parseUUIDParam(r, "lessonID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid lesson id")
		return
	}
	if !h.requireLessonOwner(w, r, lessonID) {
		return
	}

	var req UpdateLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	lesson, err := h.catalog.UpdateLesson(r.Context(), lessonID, catalogApp.LessonUpdate{
		Title:         req.Title,
		ContentBlocks: req.ContentBlocks,
		Order:         req.Order,
	})
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, lesson)
}

func (h *LessonHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	lessonID, ok := parseUUIDParam(r, "lessonID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid lesson id")
		return
	}
	if !h.requireLessonOwner(w, r, lessonID) {
		return
	}
	if err := h.catalog.DeleteLesson(r.Context(), lessonID); err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}
