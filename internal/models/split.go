package models

import (
	"fmt"
	"strings"
)

// SplitMode selects how a receipt total is divided.
type SplitMode string

const (
	// SplitEqual divides the total evenly among selected participants.
	SplitEqual SplitMode = "EQUAL"
	// SplitCustom uses the amount entered for each selected participant.
	SplitCustom SplitMode = "CUSTOM"
)

// ParseSplitMode converts user input into a SplitMode (case-insensitive).
func ParseSplitMode(raw string) (SplitMode, error) {
	switch SplitMode(strings.ToUpper(strings.TrimSpace(raw))) {
	case SplitEqual:
		return SplitEqual, nil
	case SplitCustom:
		return SplitCustom, nil
	}
	return "", fmt.Errorf("unknown split mode %q (want equal or custom)", raw)
}
