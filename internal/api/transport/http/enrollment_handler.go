package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apimw "github.com/skillforge/platform/internal/api/middleware"
	ledgerApp "github.com/skillforge/platform/internal/ledger/app"
)

type ProgressRequest struct {
	LessonID  uuid.UUID `json:"lesson_id" validate:"required"`
	Completed bool      `json:"completed"`
}

type EnrollmentHandler struct {
	ledger   *ledgerApp.Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewEnrollmentHandler(ledger *ledgerApp.Service, validate *validator.Validate, logger *slog.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		ledger:   ledger,
		validate: validate,
		logger:   logger.With("handler", "enrollment"),
	}
}

func (h *EnrollmentHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireAuth)
		r.Get("/enrollments/me", h.handleListMine)
		r.Get("/enrollments/{enrollmentID}", h.handleGet)
		r.Put("/enrollments/{enrollmentID}/progress", h.handleProgress)
	})
}

func (h *EnrollmentHandler) handleListMine(w http.ResponseWriter, r *http.Request) {
	identity := apimw.IdentityFromContext(r.Context())
	enrollments, err := h.ledger.ListStudentEnrollments(r.Context(), identity.UserID)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, enrollments)
}

// loadOwnEnrollment fetches the enrollment and checks it belongs to the
// caller (admins may read any).
func (h *EnrollmentHandler) loadOwnEnrollment(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	enrollmentID, ok := parseUUIDParam(r, "enrollmentID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid enrollment id")
		return uuid.Nil, false
	}
	identity := apimw.IdentityFromContext(r.Context())
	if identity.IsAdmin() {
		return enrollmentID, true
	}
	enrollment, err := h.ledger.GetEnrollment(r.Context(), enrollmentID)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return uuid.Nil, false
	}
	if enrollment.StudentID != identity.UserID {
		respondWithError(w, http.StatusForbidden, "forbidden", "not your enrollment")
		return uuid.Nil, false
	}
	return enrollmentID, true
}

func (h *EnrollmentHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	enrollmentID, ok := h.loadOwnEnrollment(w, r)
	if !ok {
		return
	}
	enrollment, err := h.ledger.GetEnrollment(r.Context(), enrollmentID)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, enrollment)
}

func (h *EnrollmentHandler) handleProgress(w http.ResponseWriter, r *http.Request) {
	enrollmentID, ok := h.loadOwnEnrollment(w, r)
	if !ok {
		return
	}

	var req ProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	enrollment, err := h.ledger.CompleteLesson(r.Context(), enrollmentID, req.LessonID, req.Completed)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, enrollment)
}
