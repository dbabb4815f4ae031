// Package models defines the core domain models for SplitShare.
//
// # Models
//
//   - Member: a person in a group, identified by ID
//   - Group: a set of members who share expenses
//   - Expense: one payment made by a member on behalf of the group
//   - SplitLine: one member's share of an expense
//
// # Design Principles
//
// 1. **Explicit records**: every entity is a concrete struct with JSON tags; unknown
// fields are rejected at the RPC boundary and missing fields by Validate.
// 2. **Exact money**: amounts are decimal.Decimal, never float64.
// 3. **Avoid circular references**: relationships use ID strings, not pointers.
// 4. **Derived values are not stored**: Group.TotalExpenses is computed on read.
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// NewID returns a fresh entity identifier (UUID format).
func NewID() string {
	return uuid.New().String()
}
