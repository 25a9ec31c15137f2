package statestore

import "errors"

var (
	// ErrNotFound is returned by Consume when the state was never saved,
	// has expired or was already consumed.
	ErrNotFound = errors.New("statestore: state not found")

	// ErrEmptyState is returned when saving or consuming an empty state.
	ErrEmptyState = errors.New("statestore: empty state")

	// ErrClosed is returned when using a closed store.
	ErrClosed = errors.New("statestore: store is closed")

	ErrEmptyConnectionURL = errors.New("statestore: empty redis connection URL")
	ErrFailedToParseURL   = errors.New("statestore: failed to parse redis connection URL")
	ErrConnectionFailed   = errors.New("statestore: failed to connect to redis")
	ErrHealthcheckFailed  = errors.New("statestore: healthcheck failed")
)
