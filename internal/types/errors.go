package types

import "errors"

// Error kinds of the planning core. Only invalid input and missing
// configuration are fatal; every external-service failure is recovered
// locally by the providers layer.
var (
	ErrNotFound      = errors.New("requested item not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrConfiguration = errors.New("missing configuration")
	ErrConflict      = errors.New("item already exists or conflict")
)
