package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apimw "github.com/skillforge/platform/internal/api/middleware"
	identityApp "github.com/skillforge/platform/internal/identity/app"
	ledgerApp "github.com/skillforge/platform/internal/ledger/app"
)

type UpdateProfileRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	AuthorName *string `json:"author_name,omitempty"`
	Bio        *string `json:"bio,omitempty"`
}

// UserHandler serves the self-service user surface: profile and own
// transaction history.
type UserHandler struct {
	users    *identityApp.UserService
	ledger   *ledgerApp.Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewUserHandler(users *identityApp.UserService, ledger *ledgerApp.Service, validate *validator.Validate, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:    users,
		ledger:   ledger,
		validate: validate,
		logger:   logger.With("handler", "user"),
	}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireAuth)
		r.Get("/users/me", h.handleMe)
		r.Put("/users/me", h.handleUpdateMe)
		r.Get("/transactions/me", h.handleMyTransactions)
	})
}

// requireUserID rejects the bootstrap admin, who has no user row.
func requireUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	identity := apimw.IdentityFromContext(r.Context())
	if identity.UserID == uuid.Nil {
		respondWithError(w, http.StatusNotFound, "user_not_found", "no account for this identity")
		return uuid.Nil, false
	}
	return identity.UserID, true
}

func (h *UserHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	user, err := h.users.Get(r.Context(), userID)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "bad_request", "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, identityApp.ProfileUpdate{
		Name:       req.Name,
		AuthorName: req.AuthorName,
		Bio:        req.Bio,
	})
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) handleMyTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	transactions, err := h.ledger.ListUserTransactions(r.Context(), userID)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, transactions)
}
