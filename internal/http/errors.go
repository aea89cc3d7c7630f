package api

import (
	"database/sql"
	"errors"
	"net/http"

	"easyfood/internal/domain/order"
	"easyfood/internal/domain/poll"
	"easyfood/internal/domain/user"
	"easyfood/internal/domain/vote"
	"easyfood/internal/platform/apperr"
)

func errorResponse(w http.ResponseWriter, err error) {
	appErr := mapError(err)
	writeJSON(w, appErr.StatusCode(), map[string]string{
		"error":   appErr.Code,
		"message": appErr.Message,
	})
}

func mapError(err error) *apperr.AppError {
	if err == nil {
		return apperr.Internal("internal_error", "internal server error", nil)
	}

	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return apperr.NotFound("not_found", "resource not found", err)
	case errors.Is(err, user.ErrInvalidCredentials):
		return apperr.Unauthorized("invalid_credentials", "invalid credentials", err)
	case errors.Is(err, user.ErrEmailTaken):
		return apperr.BadRequest("email_taken", "email already taken", err)
	case errors.Is(err, user.ErrNotFound):
		return apperr.NotFound("user_not_found", "user not found", err)
	case errors.Is(err, poll.ErrNotFound):
		return apperr.NotFound("poll_not_found", "poll not found", err)
	case errors.Is(err, order.ErrNotFound):
		return apperr.NotFound("order_not_found", "order not found", err)
	case errors.Is(err, order.ErrExists):
		return apperr.Conflict("order_exists", "user already has an order in this poll", err)
	case errors.Is(err, vote.ErrAlreadyVoted):
		return apperr.Conflict("already_voted", "user already voted in this poll", err)
	case errors.Is(err, vote.ErrOptionNotInPoll):
		return apperr.BadRequest("invalid_option", "restaurant is not an option of this poll", err)
	default:
		return apperr.Internal("internal_error", http.StatusText(http.StatusInternalServerError), err)
	}
}
