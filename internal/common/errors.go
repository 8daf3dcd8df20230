// Package common defines shared constants, helpers and sentinel errors used
// across the gophauth server and client. Callers should use errors.Is to
// match the error values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrorStorage marks transient failures of the backing store. Repositories
	// wrap driver errors with it so callers can tell them apart from domain
	// errors without inspecting driver types.
	ErrorStorage = errors.New("storage error")

	// Domain errors surfaced by the auth service.
	ErrorAlreadyExists = errors.New("already exists")
	ErrorUserNotFound  = errors.New("user not found")
	ErrorInvalidToken  = errors.New("invalid token")
	ErrorConflict      = errors.New("conflict")

	// Errors reported at the edges: gRPC status text and config validation.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")
)
