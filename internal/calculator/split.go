package calculator

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/roomsplit/internal/models"
)

// Places is the number of decimal places every owed amount is rounded to.
const Places = 2

// Bounds on accepted amounts. Anything outside them parses as zero and is
// rejected at the RPC boundary.
const (
	MaxIntegerDigits  = 12 // amounts stay below 10^12
	MaxFractionDigits = 8
	maxInputLen       = 32
)

var (
	ErrNegativeAmount   = errors.New("amount must not be negative")
	ErrAmountOutOfRange = errors.New("amount out of range")

	maxAmount = decimal.New(1, MaxIntegerDigits)
)

// CheckAmount reports whether d is a usable money amount: non-negative,
// below 10^12 and with at most MaxFractionDigits decimals. The exponent is
// checked before any arithmetic so that values like 1e2000000 stay cheap to reject.
func CheckAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return ErrNegativeAmount
	}
	if exp := d.Exponent(); exp > MaxIntegerDigits || exp < -MaxFractionDigits {
		return ErrAmountOutOfRange
	}
	if d.NumDigits() > MaxIntegerDigits+MaxFractionDigits || d.Cmp(maxAmount) >= 0 {
		return ErrAmountOutOfRange
	}
	return nil
}

// AllocationInput is everything needed to work out who owes what.
type AllocationInput struct {
	// Total is the amount being split (already parsed, non-negative).
	Total decimal.Decimal

	// Mode selects equal or custom division.
	Mode models.SplitMode

	// Participants is every participant ID of the receipt, selected or not.
	Participants []string

	// Selected holds the IDs currently included in the split.
	Selected map[string]bool

	// Manual holds the raw per-participant entries used in custom mode.
	Manual map[string]string
}

// ParseAmount coerces raw user input into a non-negative amount.
// Empty, malformed, negative and out-of-range input all become zero.
func ParseAmount(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxInputLen {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || CheckAmount(d) != nil {
		return decimal.Zero
	}
	return d
}

// EqualShare returns total/count rounded half-up to two decimals.
// Every selected participant receives this same value; the rounding remainder
// is not redistributed.
func EqualShare(total decimal.Decimal, count int) decimal.Decimal {
	if count <= 0 || !total.IsPositive() {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count))).Round(Places)
}

// Allocate computes the owed amount of every participant.
// Unselected participants owe zero; the result has an entry for each
// participant in in.Participants.
func Allocate(in AllocationInput) map[string]decimal.Decimal {
	owed := make(map[string]decimal.Decimal, len(in.Participants))

	selectedCount := 0
	for _, id := range in.Participants {
		if in.Selected[id] {
			selectedCount++
		}
	}
	share := EqualShare(in.Total, selectedCount)

	for _, id := range in.Participants {
		if !in.Selected[id] {
			owed[id] = decimal.Zero
			continue
		}
		switch in.Mode {
		case models.SplitCustom:
			owed[id] = ParseAmount(in.Manual[id])
		default:
			owed[id] = share
		}
	}

	return owed
}

// Complement returns what the other participant of a two-person custom split
// owes once one of them owes changed: max(total - changed, 0), rounded.
func Complement(total, changed decimal.Decimal) decimal.Decimal {
	remaining := total.Sub(changed)
	if !remaining.IsPositive() {
		return decimal.Zero
	}
	return remaining.Round(Places)
}
