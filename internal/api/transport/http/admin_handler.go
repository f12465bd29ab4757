package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	apimw "github.com/skillforge/platform/internal/api/middleware"
	catalogApp "github.com/skillforge/platform/internal/catalog/app"
	identityApp "github.com/skillforge/platform/internal/identity/app"
	ledgerApp "github.com/skillforge/platform/internal/ledger/app"
	settingsApp "github.com/skillforge/platform/internal/settings/app"
	settingsDomain "github.com/skillforge/platform/internal/settings/domain"
)

type AdminLoginRequest struct {
	// Key takes either the configured admin key or the admin email.
	Key      string `json:"key" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AdminUpdateUserRequest struct {
	Balance     *int64  `json:"balance,omitempty" validate:"omitempty,gte=0"`
	IsActive    *bool   `json:"is_active,omitempty"`
	LicenseSlug *string `json:"license_slug,omitempty"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=8"`
}

type UpdateConfigRequest struct {
	AllowRegistration *bool  `json:"allow_registration,omitempty"`
	AllowLogin        *bool  `json:"allow_login,omitempty"`
	DefaultCredits    *int64 `json:"default_credits,omitempty" validate:"omitempty,gte=0"`
}

type TopUpRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type AdminSummary struct {
	Users        int `json:"users"`
	Courses      int `json:"courses"`
	Enrollments  int `json:"enrollments"`
	Transactions int `json:"transactions"`
}

type AdminHandler struct {
	auth     *identityApp.AuthService
	users    *identityApp.UserService
	catalog  *catalogApp.Service
	ledger   *ledgerApp.Service
	settings *settingsApp.Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewAdminHandler(
	auth *identityApp.AuthService,
	users *identityApp.UserService,
	catalog *catalogApp.Service,
	ledger *ledgerApp.Service,
	settings *settingsApp.Service,
	validate *validator.Validate,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		auth:     auth,
		users:    users,
		catalog:  catalog,
		ledger:   ledger,
		settings: settings,
		validate: validate,
		logger:   logger.With("handler", "admin"),
	}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Post("/admin/login", h.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireAdmin)
		r.Get("/admin/summary", h.handleSummary)
		r.Get("/admin/overview", h.handleOverview)
		r.Get("/admin/users", h.handleListUsers)
		r.Get("/admin/users/{userID}", h.handleGetUser)
		r.Put("/admin/users/{userID}", h.handleUpdateUser)
		r.Delete("/admin/users/{userID}", h.handleDeleteUser)
		r.Post("/admin/users/{userID}/topup", h.handleTopUp)
		r.Get("/admin/transactions", h.handleListTransactions)
		r.Get("/admin/enrollments", h.handleListEnrollments)
		r.Get("/admin/config", h.handleGetConfig)
		r.Put("/admin/config", h.handleUpdateConfig)
	})
}

func (h *AdminHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	res, err := h.auth.AdminLogin(r.Context(), req.Key, req.Password)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

func (h *AdminHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	users, err := h.users.List(ctx)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	courses, err := h.catalog.ListCourses(ctx)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	enrollments, err := h.ledger.ListEnrollments(ctx)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	transactions, err := h.ledger.ListAllTransactions(ctx)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, AdminSummary{
		Users:        len(users),
		Courses:      len(courses),
		Enrollments:  len(enrollments),
		Transactions: len(transactions),
	})
}

func (h *AdminHandler) handleOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	enrollments, err := h.ledger.ListEnrollments(ctx)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	transactions, err := h.ledger.ListAllTransactions(ctx)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}

	const recent = 20
	if len(enrollments) > recent {
		enrollments = enrollments[:recent]
	}
	if len(transactions) > recent {
		transactions = transactions[:recent]
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"recent_enrollments":  enrollments,
		"recent_transactions": transactions,
	})
}

func (h *AdminHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUIDParam(r, "userID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid user id")
		return
	}
	user, err := h.users.Get(r.Context(), userID)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUIDParam(r, "userID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid user id")
		return
	}

	var req AdminUpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	user, err := h.users.AdminUpdate(r.Context(), userID, identityApp.AdminUserUpdate{
		Balance:     req.Balance,
		IsActive:    req.IsActive,
		LicenseSlug: req.LicenseSlug,
		Password:    req.Password,
	})
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUIDParam(r, "userID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid user id")
		return
	}
	if err := h.users.Delete(r.Context(), userID); err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

func (h *AdminHandler) handleTopUp(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUIDParam(r, "userID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid user id")
		return
	}

	var req TopUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	balance, err := h.ledger.TopUp(r.Context(), userID, req.Amount)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}

func (h *AdminHandler) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.ledger.ListAllTransactions(r.Context())
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, transactions)
}

func (h *AdminHandler) handleListEnrollments(w http.ResponseWriter, r *http.Request) {
	enrollments, err := h.ledger.ListEnrollments(r.Context())
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, enrollments)
}

func (h *AdminHandler) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, settings)
}

func (h *AdminHandler) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req UpdateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	settings, err := h.settings.Update(r.Context(), settingsDomain.Update{
		AllowRegistration: req.AllowRegistration,
		AllowLogin:        req.AllowLogin,
		DefaultCredits:    req.DefaultCredits,
	})
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, settings)
}
