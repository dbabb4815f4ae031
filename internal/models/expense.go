package models

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryOther is the catch-all expense category.
const CategoryOther = "Other"

// Categories lists the accepted expense categories.
var Categories = []string{
	"Food & Drinks",
	"Transportation",
	"Accommodation",
	"Entertainment",
	"Groceries",
	"Utilities",
	"Rent",
	"Shopping",
	CategoryOther,
}

// SplitTolerance is the largest accepted difference between an expense amount
// and the sum of its split lines (one cent).
var SplitTolerance = decimal.New(1, -2)

// IsCategory reports whether c is an accepted category.
func IsCategory(c string) bool {
	return slices.Contains(Categories, c)
}

// Expense is one payment made by a group member on behalf of others.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// GroupID references the group the expense belongs to.
	GroupID string `json:"groupId"`

	// Title is the human-readable name (e.g., "Dinner at Thalassa").
	Title string `json:"title"`

	// Amount is the total paid. Always positive.
	Amount decimal.Decimal `json:"amount"`

	// PaidBy is the member who fronted the money.
	PaidBy Member `json:"paidBy"`

	// Date is when the expense happened.
	Date time.Time `json:"date"`

	// Category is one of Categories.
	Category string `json:"category"`

	// Notes is optional free text.
	Notes string `json:"notes,omitempty"`

	// SplitWith holds each participant's share, in display order.
	// The amounts sum to Amount within SplitTolerance.
	SplitWith []SplitLine `json:"splitWith"`
}

// SplitLine is one member's share of an expense.
type SplitLine struct {
	MemberID string          `json:"memberId"`
	Name     string          `json:"name"`
	Avatar   string          `json:"avatar,omitempty"`
	Amount   decimal.Decimal `json:"amount"`

	// Paid is true once the member has settled this share. The payer's own
	// line starts out paid.
	Paid bool `json:"paid"`
}

// Line returns the split line for memberID.
func (e *Expense) Line(memberID string) (SplitLine, bool) {
	for _, l := range e.SplitWith {
		if l.MemberID == memberID {
			return l, true
		}
	}
	return SplitLine{}, false
}

// Involves reports whether memberID paid for or shares in the expense.
func (e *Expense) Involves(memberID string) bool {
	if e.PaidBy.ID == memberID {
		return true
	}
	_, ok := e.Line(memberID)
	return ok
}

// SplitSum returns the sum of all split line amounts.
func (e *Expense) SplitSum() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range e.SplitWith {
		sum = sum.Add(l.Amount)
	}
	return sum
}

// Clone returns a deep copy of the expense.
func (e *Expense) Clone() *Expense {
	c := *e
	c.SplitWith = append([]SplitLine(nil), e.SplitWith...)
	return &c
}

// Validate checks the expense's intrinsic invariants. Membership of the payer
// and split members in the group is checked by callers that hold the group.
func (e *Expense) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return invalid("id", "required")
	}
	if strings.TrimSpace(e.GroupID) == "" {
		return invalid("groupId", "required")
	}
	if strings.TrimSpace(e.Title) == "" {
		return invalid("title", "required")
	}
	if !e.Amount.IsPositive() {
		return invalid("amount", "must be positive, got "+e.Amount.String())
	}
	if strings.TrimSpace(e.PaidBy.ID) == "" {
		return invalid("paidBy.id", "required")
	}
	if e.Date.IsZero() {
		return invalid("date", "required")
	}
	if !IsCategory(e.Category) {
		return invalid("category", "unknown category "+e.Category)
	}
	if len(e.SplitWith) == 0 {
		return invalid("splitWith", "at least one split line is required")
	}
	seen := make(map[string]bool, len(e.SplitWith))
	for _, l := range e.SplitWith {
		if strings.TrimSpace(l.MemberID) == "" {
			return invalid("splitWith.memberId", "required")
		}
		if seen[l.MemberID] {
			return invalid("splitWith", "duplicate member "+l.MemberID)
		}
		seen[l.MemberID] = true
		if l.Amount.IsNegative() {
			return invalid("splitWith.amount", "negative share "+l.Amount.String()+" for member "+l.MemberID)
		}
	}
	if sum := e.SplitSum(); sum.Sub(e.Amount).Abs().GreaterThan(SplitTolerance) {
		return invalid("splitWith", "shares sum to "+sum.String()+", expected "+e.Amount.String())
	}
	return nil
}

// ExpensePatch is a shallow update of an expense. Nil fields are left
// untouched; non-nil fields replace the stored value wholesale.
type ExpensePatch struct {
	Title     *string          `json:"title,omitempty"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	PaidBy    *Member          `json:"paidBy,omitempty"`
	Date      *time.Time       `json:"date,omitempty"`
	Category  *string          `json:"category,omitempty"`
	Notes     *string          `json:"notes,omitempty"`
	SplitWith *[]SplitLine     `json:"splitWith,omitempty"`
}

// Apply returns a copy of e with the patch merged in.
func (p ExpensePatch) Apply(e *Expense) *Expense {
	out := e.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Amount != nil {
		out.Amount = *p.Amount
	}
	if p.PaidBy != nil {
		out.PaidBy = *p.PaidBy
	}
	if p.Date != nil {
		out.Date = *p.Date
	}
	if p.Category != nil {
		out.Category = *p.Category
	}
	if p.Notes != nil {
		out.Notes = *p.Notes
	}
	if p.SplitWith != nil {
		out.SplitWith = append([]SplitLine(nil), (*p.SplitWith)...)
	}
	return out
}
