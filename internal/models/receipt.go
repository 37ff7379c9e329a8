package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Category classifies what a receipt was for.
type Category string

const (
	CategoryGrocery   Category = "GROCERY"
	CategoryFurniture Category = "FURNITURE"
	CategoryTrip      Category = "TRIP"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryGrocery, CategoryFurniture, CategoryTrip}

// ParseCategory converts user input into a Category (case-insensitive).
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(raw)))
	if c.Valid() {
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", raw)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Receipt is the authoritative record of a shared expense.
type Receipt struct {
	// ID is the unique identifier for the receipt (UUID format).
	// Assigned by the store on creation.
	ID string

	// Title is the human-readable name of the receipt (e.g., "GROCERY RUN").
	Title string

	// Category is what the money was spent on.
	Category Category

	// Date is the receipt date exactly as the user typed it.
	// The format is not validated.
	Date string

	// TotalAmount is the amount being split.
	// Invalid (null) until the first split is saved.
	TotalAmount decimal.NullDecimal

	// CreatedAt is the Unix timestamp when the receipt was created.
	CreatedAt int64
}

// Participant is one person sharing a receipt.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	ID string

	// ReceiptID is the receipt this participant belongs to.
	ReceiptID string

	// Name is the display name, free text.
	Name string

	// AmountOwed is this participant's share of the receipt total.
	// Invalid (null) until a split has been saved.
	AmountOwed decimal.NullDecimal
}
