// Package models defines the core domain models for roomsplit.
//
// # Models
//
//   - Receipt: a shared expense recorded by a group of roommates
//   - Participant: one person taking part in a receipt, with the amount they owe
//   - HistoryEntry: the summary of a saved receipt kept on the client device
//
// Receipts and participants live in the authoritative store. History entries
// never leave the client and are not kept in sync with the store.
//
// # Amounts
//
// Money is represented with decimal.Decimal. Values that are unknown until the
// first save (a receipt's total, a participant's share) use decimal.NullDecimal
// so that "not yet saved" and "zero" stay distinguishable.
package models
