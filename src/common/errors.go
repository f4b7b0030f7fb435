package common

import (
	"errors"
	"fmt"
)

// Sentinels for the booking path. The soft-lock conflict is a value callers
// check with errors.Is, never a panic.
var (
	ErrSlotLockHeld     = errors.New("timeslot is currently held by another request")
	ErrSlotTaken        = errors.New("timeslot conflicts with an existing reservation")
	ErrCourtNotFound    = errors.New("court not found")
	ErrCourtUnavailable = errors.New("court is not available for booking")
	ErrJoinNotAllowed   = errors.New("reservation is not open for joining")
	ErrGameFull         = errors.New("reservation already has enough players")
)

type PromotionInvalidError struct {
	Reason string
}

func (e *PromotionInvalidError) Error() string {
	return fmt.Sprintf("promotion code rejected: %s", e.Reason)
}
