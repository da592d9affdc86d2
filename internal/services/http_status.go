package services

import (
	"errors"
	"net/http"

	chatsync_errors "chatsync/pkg/errors"
)

// HTTPStatus maps service errors onto response codes.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, chatsync_errors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, chatsync_errors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, chatsync_errors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, chatsync_errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, chatsync_errors.ErrConflict), errors.Is(err, chatsync_errors.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, chatsync_errors.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
