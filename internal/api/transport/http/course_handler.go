package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	catalogApp "github.com/skillforge/platform/internal/catalog/app"
	"github.com/skillforge/platform/internal/identity/domain"
	ledgerApp "github.com/skillforge/platform/internal/ledger/app"

	apimw "github.com/skillforge/platform/internal/api/middleware"
)

type CreateCourseRequest struct {
	Title       string     `json:"title" validate:"required,min=2,max=200"`
	Slug        string     `json:"slug" validate:"required,min=2,max=200"`
	Description string     `json:"description,omitempty"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	CoverImage  string     `json:"cover_image,omitempty"`
	Price       int64      `json:"price" validate:"gte=0"`
	IsPublished bool       `json:"is_published"`
}

type UpdateCourseRequest struct {
	Title       *string    `json:"title,omitempty"`
	Slug        *string    `json:"slug,omitempty"`
	Description *string    `json:"description,omitempty"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	CoverImage  *string    `json:"cover_image,omitempty"`
	Price       *int64     `json:"price,omitempty" validate:"omitempty,gte=0"`
	IsPublished *bool      `json:"is_published,omitempty"`
}

type CourseHandler struct {
	catalog  *catalogApp.Service
	ledger   *ledgerApp.Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewCourseHandler(catalog *catalogApp.Service, ledger *ledgerApp.Service, validate *validator.Validate, logger *slog.Logger) *CourseHandler {
	return &CourseHandler{
		catalog:  catalog,
		ledger:   ledger,
		validate: validate,
		logger:   logger.With("handler", "course"),
	}
}

func (h *CourseHandler) RegisterRoutes(r chi.Router) {
	r.Get("/courses", h.handleList)
	r.Get("/courses/summaries", h.handleListSummaries)
	r.Get("/courses/slug/{slug}", h.handleGetBySlug)
	r.Get("/courses/{courseID}", h.handleGet)

	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireAuth)
		r.Post("/courses", h.handleCreate)
		r.Put("/courses/{courseID}", h.handleUpdate)
		r.Delete("/courses/{courseID}", h.handleDelete)
		r.Post("/courses/{courseID}/enroll", h.handleEnroll)
	})
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}

func (h *CourseHandler) handleList(w http.ResponseWriter, r *http.Request) {
	courses, err := h.catalog.ListCourses(r.Context())
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, courses)
}

func (h *CourseHandler) handleListSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.catalog.ListCourseSummaries(r.Context())
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, summaries)
}

func (h *CourseHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	courseID, ok := parseUUIDParam(r, "courseID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid course id")
		return
	}
	course, err := h.catalog.GetCourse(r.Context(), courseID)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) handleGetBySlug(w http.ResponseWriter, r *http.Request) {
	course, err := h.catalog.GetCourseBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	identity := apimw.IdentityFromContext(r.Context())
	if identity.Role != domain.RoleTutor && !identity.IsAdmin() {
		respondWithError(w, http.StatusForbidden, "forbidden", "only tutors can create courses")
		return
	}

	var req CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	course, err := h.catalog.CreateCourse(r.Context(), identity.UserID, catalogApp.CourseInput{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		CoverImage:  req.CoverImage,
		Price:       req.Price,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, course)
}

// requireCourseOwner loads the course and checks the caller may modify it.
func (h *CourseHandler) requireCourseOwner(w http.ResponseWriter, r *http.Request, courseID uuid.UUID) bool {
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

func (h *CourseHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	courseID, ok := parseUUIDParam(r, "courseID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid course id")
		return
	}
	if !h.requireCourseOwner(w, r, courseID) {
		return
	}

	var req UpdateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	course, err := h.catalog.UpdateCourse(r.Context(), courseID, catalogApp.CourseUpdate{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		CoverImage:  req.CoverImage,
		Price:       req.Price,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	courseID, ok := parseUUIDParam(r, "courseID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid course id")
		return
	}
	if !h.requireCourseOwner(w, r, courseID) {
		return
	}
	if err := h.catalog.DeleteCourse(r.Context(), courseID); err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

func (h *CourseHandler) handleEnroll(w http.ResponseWriter, r *http.Request) {
	courseID, ok := parseUUIDParam(r, "courseID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid course id")
		return
	}
	identity := apimw.IdentityFromContext(r.Context())

	res, err := h.ledger.PurchaseCourse(r.Context(), identity.UserID, courseID)
	if err != nil {
		coursePurchasesTotal.WithLabelValues(purchaseOutcomeRejected).Inc()
		respondWithDomainError(w, h.logger, err)
		return
	}
	coursePurchasesTotal.WithLabelValues(purchaseOutcomeCompleted).Inc()
	respondWithJSON(w, http.StatusCreated, res)
}
