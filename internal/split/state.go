// Package split is the allocation and reconciliation engine.
//
// An EditState holds everything the user is editing for one receipt: the raw
// total, the split mode, which participants are included and the amounts
// typed for them. The Reconciler loads an EditState from the authoritative
// store, and later computes and commits the allocation it describes.
package split

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/roomsplit/internal/calculator"
	"github.com/mmynk/roomsplit/internal/models"
)

// EditState is the mutable state of one split being edited.
// It is owned by a single editor and is not safe for concurrent use.
type EditState struct {
	// Receipt is the receipt being split, as loaded.
	Receipt models.Receipt

	// Participants are all participants of the receipt, in store order.
	Participants []*models.Participant

	// Total is the total amount exactly as typed.
	Total string

	// Mode selects equal or custom division.
	Mode models.SplitMode

	selected map[string]bool
	manual   map[string]string
}

// NewEditState starts an edit with every participant selected, in equal mode.
// The total and manual amounts are prefilled from previously saved values;
// a saved amount of zero prefills as empty.
func NewEditState(receipt *models.Receipt, participants []*models.Participant) *EditState {
	s := &EditState{
		Receipt:      *receipt,
		Participants: participants,
		Mode:         models.SplitEqual,
		selected:     make(map[string]bool, len(participants)),
		manual:       make(map[string]string, len(participants)),
	}
	if receipt.TotalAmount.Valid {
		s.Total = receipt.TotalAmount.Decimal.String()
	}
	for _, p := range participants {
		s.selected[p.ID] = true
		if p.AmountOwed.Valid && !p.AmountOwed.Decimal.IsZero() {
			s.manual[p.ID] = p.AmountOwed.Decimal.String()
		}
	}
	return s
}

// ParticipantIDs returns every participant ID in store order.
func (s *EditState) ParticipantIDs() []string {
	ids := make([]string, len(s.Participants))
	for i, p := range s.Participants {
		ids[i] = p.ID
	}
	return ids
}

// Find looks a participant up by ID, then by case-insensitive name.
func (s *EditState) Find(ref string) (*models.Participant, bool) {
	for _, p := range s.Participants {
		if p.ID == ref {
			return p, true
		}
	}
	for _, p := range s.Participants {
		if strings.EqualFold(p.Name, ref) {
			return p, true
		}
	}
	return nil, false
}

func (s *EditState) known(id string) bool {
	for _, p := range s.Participants {
		if p.ID == id {
			return true
		}
	}
	return false
}

// IsSelected reports whether the participant is included in the split.
func (s *EditState) IsSelected(id string) bool {
	return s.selected[id]
}

// Selected returns the included participant IDs in store order.
func (s *EditState) Selected() []string {
	var ids []string
	for _, p := range s.Participants {
		if s.selected[p.ID] {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// AllSelected reports whether every participant is included.
func (s *EditState) AllSelected() bool {
	return len(s.selected) == len(s.Participants)
}

// Toggle includes or excludes a participant.
// Excluding clears the participant's manual amount, and re-including does
// not bring it back.
func (s *EditState) Toggle(id string) error {
	if !s.known(id) {
		return ErrUnknownParticipant
	}
	if s.selected[id] {
		delete(s.selected, id)
		delete(s.manual, id)
		return nil
	}
	s.selected[id] = true
	return nil
}

// ToggleAll excludes everyone (dropping all manual amounts) when everyone is
// included, and includes everyone otherwise.
func (s *EditState) ToggleAll() {
	if s.AllSelected() {
		s.selected = make(map[string]bool, len(s.Participants))
		s.manual = make(map[string]string, len(s.Participants))
		return
	}
	for _, p := range s.Participants {
		s.selected[p.ID] = true
	}
}

// ManualAmount returns the raw amount typed for a participant ("" if none).
func (s *EditState) ManualAmount(id string) string {
	return s.manual[id]
}

// SetManualAmount records the raw amount typed for a selected participant.
//
// In custom mode with exactly two participants selected and a positive total,
// the other participant's amount is set to what remains of the total, never
// below zero.
func (s *EditState) SetManualAmount(id, raw string) error {
	if !s.known(id) {
		return ErrUnknownParticipant
	}
	if !s.selected[id] {
		return ErrNotSelected
	}

	if raw == "" {
		delete(s.manual, id)
	} else {
		s.manual[id] = raw
	}

	total := calculator.ParseAmount(s.Total)
	selected := s.Selected()
	if s.Mode != models.SplitCustom || len(selected) != 2 || !total.IsPositive() {
		return nil
	}

	other := selected[0]
	if other == id {
		other = selected[1]
	}
	s.manual[other] = calculator.Complement(total, calculator.ParseAmount(raw)).String()
	return nil
}

// Allocation computes every participant's owed amount from the current state.
func (s *EditState) Allocation() map[string]decimal.Decimal {
	return calculator.Allocate(calculator.AllocationInput{
		Total:        calculator.ParseAmount(s.Total),
		Mode:         s.Mode,
		Participants: s.ParticipantIDs(),
		Selected:     s.selected,
		Manual:       s.manual,
	})
}
