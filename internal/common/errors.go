// Package common defines the error taxonomy and small helpers shared by the
// storage layer, the services and the binaries. Callers should use errors.Is
// (or errors.As for *StorageError) to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrInvariantViolation means a keyed lookup returned more than one row.
	// The database is in a corrupted state; callers must not retry.
	ErrInvariantViolation = errors.New("invariant violation")

	// Pool and transaction lifecycle errors.
	ErrConnectionTimeout = errors.New("connection timeout")
	ErrConnReleased      = errors.New("connection already released")
	ErrTxNotActive       = errors.New("transaction not active")

	// ErrCheckpointMisuse is returned by pop/restore on an empty checkpoint stack.
	ErrCheckpointMisuse = errors.New("checkpoint misuse")

	// ErrStorage matches every *StorageError.
	ErrStorage = errors.New("storage error")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Workflow errors.
	ErrInviteExpired    = errors.New("invite expired")
	ErrTeamFull         = errors.New("team is full")
	ErrInvalidChoices   = errors.New("invalid choices")
	ErrAlreadyOnTeam    = errors.New("already on a team")
	ErrNotModifiable    = errors.New("project is not modifiable")
	ErrUnknownEntity    = errors.New("unknown entity")
	ErrInvalidPrincipal = errors.New("invalid principal")
	ErrAlreadyExists    = errors.New("already exists")
)
