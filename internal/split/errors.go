package split

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownParticipant is returned when an ID does not belong to the receipt being edited.
	ErrUnknownParticipant = errors.New("unknown participant")
	// ErrNotSelected is returned when a manual amount is entered for an excluded participant.
	ErrNotSelected = errors.New("participant is not selected")
)

// ValidationError reports input that was rejected before any store write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Stage identifies which store write of an operation failed.
type Stage string

const (
	StageCreate       Stage = "create"
	StageTotal        Stage = "total"
	StageParticipants Stage = "participants"
)

// SaveError reports a failed write to the authoritative store.
//
// Writes that succeeded before the failure stay committed. For the
// participants stage, Updated lists the participant IDs whose amounts were
// written and Failed those that were not.
type SaveError struct {
	ReceiptID string
	Stage     Stage
	Updated   []string
	Failed    []string
	Err       error
}

func (e *SaveError) Error() string {
	if e.Stage == StageParticipants {
		return fmt.Sprintf("save failed for receipt %s: %d of %d participant updates failed (%s): %v",
			e.ReceiptID, len(e.Failed), len(e.Failed)+len(e.Updated), strings.Join(e.Failed, ", "), e.Err)
	}
	if e.ReceiptID == "" {
		return fmt.Sprintf("save failed at %s stage: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("save failed for receipt %s at %s stage: %v", e.ReceiptID, e.Stage, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// Partial reports whether some writes of the failed operation were committed.
// A participants-stage failure always follows a committed total; a
// create-stage failure with a ReceiptID left a receipt without participants.
func (e *SaveError) Partial() bool {
	switch e.Stage {
	case StageParticipants:
		return true
	case StageCreate:
		return e.ReceiptID != ""
	}
	return false
}

// ReadError reports a failure loading a receipt for editing.
type ReadError struct {
	ReceiptID string
	Err       error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to load receipt %s: %v", e.ReceiptID, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
