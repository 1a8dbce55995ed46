package service

import "errors"

// Domain error taxonomy shared across services. Handlers map these to HTTP
// statuses; none are fatal and no service retries internally.
var (
	// ErrNotFound indicates a referenced user, chat, message or entity is absent.
	ErrNotFound = errors.New("resource not found")
	// ErrConflict indicates a duplicate relationship, chat or account.
	ErrConflict = errors.New("resource already exists")
	// ErrInvalidState indicates the operation is not valid for the current status.
	ErrInvalidState = errors.New("operation not valid in current state")
	// ErrForbidden indicates the actor lacks rights over the target row.
	ErrForbidden = errors.New("operation not permitted")
	// ErrSelfReference indicates the actor targeted themself.
	ErrSelfReference = errors.New("operation cannot target yourself")
	// ErrInvalidOperation indicates a structurally disallowed operation, such
	// as adding a participant to a private chat.
	ErrInvalidOperation = errors.New("operation not supported for this resource")
)
