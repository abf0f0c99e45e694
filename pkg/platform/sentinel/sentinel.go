package sentinel

import "errors"

// Sentinel errors for infrastructure facts. The gateway client, stores and
// the scheduler return these (optionally wrapped) so services can translate
// them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist (channel, member, message)
// - ErrConflict: resource already exists in a conflicting state
// - ErrPermission: the platform rejected the call for missing permissions
// - ErrUnavailable: platform or backing service temporarily unavailable
//
// For validation errors (bad input, missing fields), use the ticket
// domain errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrPermission  = errors.New("permission denied")
	ErrUnavailable = errors.New("unavailable")
)
