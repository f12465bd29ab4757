package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	apimw "github.com/skillforge/platform/internal/api/middleware"
	catalogApp "github.com/skillforge/platform/internal/catalog/app"
	ledgerApp "github.com/skillforge/platform/internal/ledger/app"
)

type AssignLicenseRequest struct {
	Slug string `json:"slug" validate:"required"`
}

type LicenseHandler struct {
	catalog  *catalogApp.Service
	ledger   *ledgerApp.Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewLicenseHandler(catalog *catalogApp.Service, ledger *ledgerApp.Service, validate *validator.Validate, logger *slog.Logger) *LicenseHandler {
	return &LicenseHandler{
		catalog:  catalog,
		ledger:   ledger,
		validate: validate,
		logger:   logger.With("handler", "license"),
	}
}

func (h *LicenseHandler) RegisterRoutes(r chi.Router) {
	r.Get("/licenses", h.handleList)

	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireAuth)
		r.Post("/licenses/assign", h.handleAssign)
	})
}

func (h *LicenseHandler) handleList(w http.ResponseWriter, r *http.Request) {
	licenses, err := h.catalog.ListLicenses(r.Context())
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, licenses)
}

func (h *LicenseHandler) handleAssign(w http.ResponseWriter, r *http.Request) {
	var req AssignLicenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	identity := apimw.IdentityFromContext(r.Context())
	res, err := h.ledger.AssignLicense(r.Context(), identity.UserID, req.Slug)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}
