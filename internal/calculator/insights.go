package calculator

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitshare/internal/models"
)

// CategorySpend is a user's share of spending in one category.
type CategorySpend struct {
	Category    string          `json:"category"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Percentage  decimal.Decimal `json:"percentage"`
}

var hundred = decimal.NewFromInt(100)

// SpendingInsights sums userID's share of expenses dated at or after since,
// per category, largest first. Percentage is relative to the user's total
// share in the window.
func SpendingInsights(expenses []models.Expense, userID string, since time.Time) []CategorySpend {
	totals := make(map[string]decimal.Decimal)
	grand := decimal.Zero
	for i := range expenses {
		e := &expenses[i]
		if e.Date.Before(since) {
			continue
		}
		line, ok := e.Line(userID)
		if !ok {
			continue
		}
		totals[e.Category] = totals[e.Category].Add(line.Amount)
		grand = grand.Add(line.Amount)
	}

	out := make([]CategorySpend, 0, len(totals))
	for category, amount := range totals {
		pct := decimal.Zero
		if grand.IsPositive() {
			pct = amount.Mul(hundred).Div(grand).Round(2)
		}
		out = append(out, CategorySpend{Category: category, TotalAmount: amount, Percentage: pct})
	}

	slices.SortFunc(out, func(a, b CategorySpend) int {
		if c := b.TotalAmount.Cmp(a.TotalAmount); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}

// RecentExpenses returns up to limit expenses, newest first.
// A non-positive limit returns all of them.
func RecentExpenses(expenses []models.Expense, limit int) []models.Expense {
	out := slices.Clone(expenses)
	slices.SortFunc(out, func(a, b models.Expense) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
