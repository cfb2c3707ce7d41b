package domain

import "errors"

// ErrNotFound is returned when an operation references a trip id that is not
// in the session.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails a ledger rule (e.g. end
// odometer reading before start) before anything is mutated.
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrPersistence wraps load and save failures of the backing sheet store.
// A failed save never rolls back the in-memory mutation.
var ErrPersistence = errors.New("persistence error")
