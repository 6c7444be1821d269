package service

import (
	"errors"
	"fmt"

	"github.com/Hira-Iftikhar-123/preloved-backend/internal/repository"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = repository.ErrNotFound
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminLoginRequired = errors.New("please use the admin login page to log in as admin")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
