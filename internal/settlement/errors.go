package settlement

import "errors"

// Precondition errors. Callers are expected to validate input before
// calling into the engine; these are returned when they did not.
var (
	ErrNoParticipants       = errors.New("no participants")
	ErrDuplicateParticipant = errors.New("duplicate participant")
	ErrUnknownParticipant   = errors.New("unknown participant")
	ErrEmptyBeneficiaries   = errors.New("payment has no beneficiaries")
	ErrInvalidAmount        = errors.New("payment amount must be positive and finite")
)
