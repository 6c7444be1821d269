package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/Hira-Iftikhar-123/preloved-backend/internal/middleware"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/models"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/repository"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/service"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/token"
	"github.com/Hira-Iftikhar-123/preloved-backend/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json field names in messages
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and runs its validate tags. Every
// failure wraps service.ErrValidation.
func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid json", service.ErrValidation)
	}
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		fe := fields[0]
		if fe.Tag() == "required" {
			return fmt.Errorf("%w: %s is required", service.ErrValidation, fe.Field())
		}
		return fmt.Errorf("%w: invalid %s %q", service.ErrValidation, fe.Field(), fmt.Sprint(fe.Value()))
	}
	return fmt.Errorf("%w: %v", service.ErrValidation, err)
}

// writeError maps domain errors to status codes. Unknown errors are logged
// and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		utils.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrDuplicate):
		utils.Error(w, http.StatusBadRequest, "user already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		utils.Error(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, middleware.ErrMissingToken),
		errors.Is(err, middleware.ErrAccountNotFound),
		errors.Is(err, token.ErrInvalidToken):
		utils.Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrAdminLoginRequired):
		utils.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrForbidden), errors.Is(err, middleware.ErrForbidden):
		utils.Error(w, http.StatusForbidden, "access denied")
	case errors.Is(err, repository.ErrNotFound):
		utils.Error(w, http.StatusNotFound, "not found")
	default:
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		utils.Error(w, http.StatusInternalServerError, "internal server error")
	}
}

// requester returns the account admitted by the gate. Handlers mounted
// behind the gate always have one.
func requester(r *http.Request) *models.Account {
	a, _ := middleware.AccountFrom(r.Context())
	return a
}
