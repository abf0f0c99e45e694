package ticket

import "errors"

// Domain failures surfaced to handlers, which translate them into
// user-facing replies.
var (
	ErrUnknownCategory  = errors.New("unknown ticket category")
	ErrNotATicket       = errors.New("channel is not a ticket")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUserNotFound     = errors.New("user not found")
	ErrValidation       = errors.New("invalid input")
)
