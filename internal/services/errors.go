package services

import "errors"

// Failure classes surfaced to the HTTP boundary. All are terminal,
// user-visible errors; nothing is retried internally.
var (
	// ErrDuplicateUser rejects signup with an email that already exists.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrInvalidCredentials rejects login with an unknown email or a
	// password that does not verify against the stored hash.
	ErrInvalidCredentials = errors.New("incorrect credentials")

	// ErrInvalidToken rejects malformed, forged, or expired tokens.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrUnauthorized rejects bearer tokens whose claims are missing or
	// whose subject no longer exists.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden rejects an authenticated caller that fails a
	// role/verification predicate.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidFileType rejects uploads with a disallowed extension.
	ErrInvalidFileType = errors.New("invalid file type")

	// ErrInvalidAccess rejects scoped download tokens with the wrong
	// role or an unknown subject.
	ErrInvalidAccess = errors.New("invalid access")
)
