package apperrors

import "errors"

// ErrNotFound indicates that a requested record or payment could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrConflict indicates an attempt to modify an immutable field.
var ErrConflict = errors.New("immutable field conflict")

// ErrUnauthorized indicates that the caller's role or allowed flag does not
// permit the operation.
var ErrUnauthorized = errors.New("unauthorized")

// ErrUnknownIdentity indicates an operation on an id that is not in the registry.
var ErrUnknownIdentity = errors.New("unknown identity")

// ErrStoreIO indicates a failure in the underlying local store.
var ErrStoreIO = errors.New("store I/O error")

// ErrGatewayTransient indicates a spreadsheet service hiccup (rate limit,
// network, 5xx). Safe to retry.
var ErrGatewayTransient = errors.New("transient gateway error")

// ErrGatewayPermanent indicates a non-retryable spreadsheet failure such as a
// missing sheet or bad credentials.
var ErrGatewayPermanent = errors.New("permanent gateway error")

// ErrDeadline indicates a cache load exceeded its deadline.
var ErrDeadline = errors.New("deadline exceeded")

// IsTransient reports whether err should be retried by the mirror worker.
func IsTransient(err error) bool {
	return errors.Is(err, ErrGatewayTransient)
}

// IsPermanent reports whether err is a terminal gateway failure.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrGatewayPermanent)
}
