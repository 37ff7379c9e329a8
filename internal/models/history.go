package models

import "github.com/shopspring/decimal"

// HistoryEntry is the local, client-side summary of a saved receipt.
//
// An entry is written the first time a receipt is saved and is never updated
// afterwards, so Total is the amount of that first save.
type HistoryEntry struct {
	ID       string          `json:"id" yaml:"id"`
	Category Category        `json:"category" yaml:"category"`
	Date     string          `json:"date" yaml:"date"`
	Total    decimal.Decimal `json:"total" yaml:"total"`
}
