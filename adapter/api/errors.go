package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/edusense/edusense/internal/coursework/domain/task"
	"github.com/edusense/edusense/internal/coursework/domain/value_objects"
	courseworkPersistence "github.com/edusense/edusense/internal/coursework/infrastructure/persistence"
	identityApplication "github.com/edusense/edusense/internal/identity/application"
	identityDomain "github.com/edusense/edusense/internal/identity/domain"
	"github.com/edusense/edusense/internal/shared/infrastructure/security"
	studyplanDomain "github.com/edusense/edusense/internal/studyplan/domain"
	studyplanPersistence "github.com/edusense/edusense/internal/studyplan/infrastructure/persistence"
)

// httpStatus maps application errors to HTTP status codes. Anything it
// does not recognize is an internal error.
func httpStatus(err error) int {
	switch {
	case matchesAny(err,
		task.ErrNotFound,
		studyplanDomain.ErrScheduleNotFound,
		identityDomain.ErrUserNotFound):
		return http.StatusNotFound

	case matchesAny(err,
		identityApplication.ErrInvalidCredentials,
		security.ErrInvalidToken):
		return http.StatusUnauthorized

	case matchesAny(err,
		identityDomain.ErrEmailTaken,
		task.ErrTaskAlreadyComplete,
		studyplanDomain.ErrScheduleAlreadyComplete,
		courseworkPersistence.ErrOptimisticLocking,
		studyplanPersistence.ErrOptimisticLocking):
		return http.StatusConflict

	case matchesAny(err,
		task.ErrEmptyTitle,
		task.ErrEmptySubject,
		task.ErrMissingDeadline,
		value_objects.ErrInvalidStatus,
		value_objects.ErrInvalidDifficulty,
		identityDomain.ErrInvalidEmail,
		identityDomain.ErrNameTooShort,
		identityApplication.ErrPasswordTooShort,
		studyplanDomain.ErrEmptyTitle,
		studyplanDomain.ErrEmptySubject,
		studyplanDomain.ErrMissingDeadline,
		studyplanDomain.ErrInvalidScheduleStatus):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

func matchesAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondError translates an application error into an HTTP response.
// Internal errors are logged and masked with the fallback message so
// infrastructure details never reach clients.
func respondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, fallback string) {
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), fallback, "error", err)
		writeError(w, status, fallback)
		return
	}
	writeError(w, status, err.Error())
}
