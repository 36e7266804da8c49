package services

import (
	"errors"
	"net/http"

	"github.com/yungbote/coursemarket-backend/internal/platform/apierr"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingToken       = errors.New("missing token")
	ErrTokenRevoked       = errors.New("token revoked")
)

func unauthorized(err error) error {
	return apierr.New(http.StatusUnauthorized, "unauthorized", err)
}
