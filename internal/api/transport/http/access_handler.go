package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/skillforge/platform/internal/access"
	apimw "github.com/skillforge/platform/internal/api/middleware"
)

// AccessResponse is always returned with status 200; denial is expressed in
// the booleans, never as an HTTP error.
type AccessResponse struct {
	HasAccess bool       `json:"has_access"`
	IsOwner   bool       `json:"is_owner"`
	CourseID  *uuid.UUID `json:"course_id,omitempty"`
	ChapterID *uuid.UUID `json:"chapter_id,omitempty"`
}

type AccessHandler struct {
	evaluator *access.Evaluator
	logger    *slog.Logger
}

func NewAccessHandler(evaluator *access.Evaluator, logger *slog.Logger) *AccessHandler {
	return &AccessHandler{
		evaluator: evaluator,
		logger:    logger.With("handler", "access"),
	}
}

func (h *AccessHandler) RegisterRoutes(r chi.Router) {
	r.Get("/access/course/{courseID}", h.handleCourse)
	r.Get("/access/chapter/{chapterID}", h.handleChapter)
	r.Get("/access/lesson/{lessonID}", h.handleLesson)
}

func toAccessResponse(d access.Decision) AccessResponse {
	return AccessResponse{
		HasAccess: d.HasAccess(),
		IsOwner:   d.IsOwner(),
		CourseID:  d.CourseID,
		ChapterID: d.ChapterID,
	}
}

func (h *AccessHandler) handleCourse(w http.ResponseWriter, r *http.Request) {
	courseID, ok := parseUUIDParam(r, "courseID")
	if !ok {
		respondWithJSON(w, http.StatusOK, AccessResponse{})
		return
	}
	decision, err := h.evaluator.CourseAccess(r.Context(), apimw.IdentityFromContext(r.Context()), courseID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Course access evaluation failed", "error", err)
		respondWithJSON(w, http.StatusOK, AccessResponse{})
		return
	}
	respondWithJSON(w, http.StatusOK, toAccessResponse(decision))
}

func (h *AccessHandler) handleChapter(w http.ResponseWriter, r *http.Request) {
	chapterID, ok := parseUUIDParam(r, "chapterID")
	if !ok {
		respondWithJSON(w, http.StatusOK, AccessResponse{})
		return
	}
	decision, err := h.evaluator.ChapterAccess(r.Context(), apimw.IdentityFromContext(r.Context()), chapterID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Chapter access evaluation failed", "error", err)
		respondWithJSON(w, http.StatusOK, AccessResponse{})
		return
	}
	respondWithJSON(w, http.StatusOK, toAccessResponse(decision))
}

func (h *AccessHandler) handleLesson(w http.ResponseWriter, r *http.Request) {
	lessonID, ok := parseUUIDParam(r, "lessonID")
	if !ok {
		respondWithJSON(w, http.StatusOK, AccessResponse{})
		return
	}
	decision, err := h.evaluator.LessonAccess(r.Context(), apimw.IdentityFromContext(r.Context()), lessonID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Lesson access evaluation failed", "error", err)
		respondWithJSON(w, http.StatusOK, AccessResponse{})
		return
	}
	respondWithJSON(w, http.StatusOK, toAccessResponse(decision))
}
