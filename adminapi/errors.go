package adminapi

import (
	"errors"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-moderation/pkg/types"
)

const (
	textCodeInvalidArgument     = "INVALID_ARGUMENT"
	textCodeInvalidTransition   = "INVALID_TRANSITION"
	textCodeUnauthorized        = "UNAUTHORIZED"
	textCodeActorRequired       = "ACTOR_REQUIRED"
	textCodeNotFound            = "ENTITY_NOT_FOUND"
	textCodeStoreUnavailable    = "STORE_UNAVAILABLE"
	textCodeTransitionsDisabled = "TRANSITIONS_DISABLED"
	textCodeInternal            = "INTERNAL_ERROR"
)

// ToError converts a moderation failure into a rich go-errors value whose
// Code is the HTTP status. Errors that are already rich (for example the
// authctx actor errors) are returned as is.
func ToError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}

	var invalid *types.InvalidArgumentError
	switch {
	case errors.As(err, &invalid):
		return goerrors.Wrap(err, goerrors.CategoryValidation, invalid.Error()).
			WithCode(goerrors.CodeBadRequest).
			WithTextCode(textCodeInvalidArgument).
			WithMetadata(map[string]any{"field": invalid.Field})
	case errors.Is(err, types.ErrInvalidArgument):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "go-moderation: invalid argument").
			WithCode(goerrors.CodeBadRequest).
			WithTextCode(textCodeInvalidArgument)
	case errors.Is(err, types.ErrInvalidTransition):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "go-moderation: status transition not allowed").
			WithCode(goerrors.CodeBadRequest).
			WithTextCode(textCodeInvalidTransition)
	case errors.Is(err, types.ErrActorRequired):
		return goerrors.Wrap(err, goerrors.CategoryAuth, "go-moderation: authentication required").
			WithCode(goerrors.CodeUnauthorized).
			WithTextCode(textCodeActorRequired)
	case errors.Is(err, types.ErrUnauthorized):
		return goerrors.Wrap(err, goerrors.CategoryAuthz, "go-moderation: actor not authorized").
			WithCode(goerrors.CodeForbidden).
			WithTextCode(textCodeUnauthorized)
	case errors.Is(err, types.ErrEntityNotFound):
		return goerrors.Wrap(err, goerrors.CategoryNotFound, "go-moderation: entity not found").
			WithCode(goerrors.CodeNotFound).
			WithTextCode(textCodeNotFound)
	case errors.Is(err, types.ErrTransitionsDisabled):
		return goerrors.Wrap(err, goerrors.CategoryInternal, "go-moderation: transitions are temporarily disabled").
			WithCode(http.StatusServiceUnavailable).
			WithTextCode(textCodeTransitionsDisabled)
	case errors.Is(err, types.ErrStoreUnavailable):
		return goerrors.Wrap(err, goerrors.CategoryInternal, "go-moderation: store unavailable").
			WithCode(http.StatusServiceUnavailable).
			WithTextCode(textCodeStoreUnavailable)
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "go-moderation: request failed").
		WithCode(goerrors.CodeInternal).
		WithTextCode(textCodeInternal)
}

// StatusCode returns the HTTP status ToError assigns to err.
func StatusCode(err error) int {
	richErr := ToError(err)
	if richErr == nil {
		return http.StatusOK
	}
	if richErr.Code < 400 || richErr.Code > 599 {
		return http.StatusInternalServerError
	}
	return richErr.Code
}
