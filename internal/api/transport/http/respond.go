package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	catalogDomain "github.com/skillforge/platform/internal/catalog/domain"
	identityApp "github.com/skillforge/platform/internal/identity/app"
	identityRepo "github.com/skillforge/platform/internal/identity/repository"
	ledgerDomain "github.com/skillforge/platform/internal/ledger/domain"
)

// errorBody is the stable error envelope every endpoint uses.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondWithError(w http.ResponseWriter, status int, code, message string) {
	respondWithJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// respondWithDomainError maps known sentinels onto stable codes; anything
// unknown is a 500 with the detail kept out of the response.
func respondWithDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, ledgerDomain.ErrCourseNotFound),
		errors.Is(err, catalogDomain.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, ledgerDomain.ErrUserNotFound),
		errors.Is(err, identityRepo.ErrUserNotFound):
		respondWithError(w, http.StatusNotFound, "user_not_found", "user not found")
	case errors.Is(err, ledgerDomain.ErrLicenseNotFound),
		errors.Is(err, identityApp.ErrLicenseNotFound):
		respondWithError(w, http.StatusNotFound, "license_not_found", "license not found")
	case errors.Is(err, ledgerDomain.ErrEnrollmentNotFound):
		respondWithError(w, http.StatusNotFound, "enrollment_not_found", "enrollment not found")
	case errors.Is(err, ledgerDomain.ErrAlreadyEnrolled):
		respondWithError(w, http.StatusConflict, "already_enrolled", "student is already enrolled in this course")
	case errors.Is(err, ledgerDomain.ErrInsufficientFunds):
		respondWithError(w, http.StatusPaymentRequired, "insufficient_funds", "balance is too low")
	case errors.Is(err, catalogDomain.ErrDuplicateSlug):
		respondWithError(w, http.StatusConflict, "duplicate_slug", "slug already in use")
	case errors.Is(err, catalogDomain.ErrLimitReached):
		respondWithError(w, http.StatusForbidden, "limit_reached", "license limit reached")
	case errors.Is(err, identityApp.ErrEmailTaken):
		respondWithError(w, http.StatusConflict, "email_taken", "email already registered")
	case errors.Is(err, identityApp.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
	case errors.Is(err, identityApp.ErrRegistrationDisabled):
		respondWithError(w, http.StatusForbidden, "registration_disabled", "registration is currently disabled")
	case errors.Is(err, identityApp.ErrLoginDisabled):
		respondWithError(w, http.StatusForbidden, "login_disabled", "login is currently disabled")
	default:
		logger.Error("Unhandled error in HTTP handler", "error", err)
		respondWithError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
