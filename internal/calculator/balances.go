package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitshare/internal/models"
)

// Balance is one user's position across a set of expenses.
type Balance struct {
	TotalOwed  decimal.Decimal `json:"totalOwed"`  // others still owe the user
	TotalOwing decimal.Decimal `json:"totalOwing"` // the user still owes others
	NetBalance decimal.Decimal `json:"netBalance"` // Positive = owed money, Negative = owes money
}

// MemberBalance is a Balance attributed to one group member.
type MemberBalance struct {
	Member models.Member `json:"member"`
	Balance
}

// Aggregate computes userID's balance across expenses.
//
// Algorithm, per expense:
//   - user paid: every unpaid line of another member adds to TotalOwed
//   - otherwise: the user's own unpaid line, if any, adds to TotalOwing
//
// Debts are tracked through each expense separately. Opposite debts between
// the same two people on different expenses are not netted against each other.
func Aggregate(expenses []models.Expense, userID string) Balance {
	owed, owing := decimal.Zero, decimal.Zero

	for i := range expenses {
		e := &expenses[i]
		if e.PaidBy.ID == userID {
			for _, line := range e.SplitWith {
				if line.MemberID != userID && !line.Paid {
					owed = owed.Add(line.Amount)
				}
			}
			continue
		}
		if line, ok := e.Line(userID); ok && !line.Paid {
			owing = owing.Add(line.Amount)
		}
	}

	return Balance{
		TotalOwed:  owed,
		TotalOwing: owing,
		NetBalance: owed.Sub(owing),
	}
}

// AggregateByGroup is Aggregate partitioned by expense group.
// Groups where the user has no expenses are absent from the result.
func AggregateByGroup(expenses []models.Expense, userID string) map[string]Balance {
	byGroup := make(map[string][]models.Expense)
	for _, e := range expenses {
		if e.Involves(userID) {
			byGroup[e.GroupID] = append(byGroup[e.GroupID], e)
		}
	}

	out := make(map[string]Balance, len(byGroup))
	for groupID, groupExpenses := range byGroup {
		out[groupID] = Aggregate(groupExpenses, userID)
	}
	return out
}

// MemberBalances computes the balance of every member of group, in member order.
// Expenses from other groups are ignored.
func MemberBalances(group models.Group, expenses []models.Expense) []MemberBalance {
	own := make([]models.Expense, 0, len(expenses))
	for _, e := range expenses {
		if e.GroupID == group.ID {
			own = append(own, e)
		}
	}

	out := make([]MemberBalance, len(group.Members))
	for i, m := range group.Members {
		out[i] = MemberBalance{Member: m, Balance: Aggregate(own, m.ID)}
	}
	return out
}

// GroupTotal sums the amounts of groupID's expenses.
func GroupTotal(expenses []models.Expense, groupID string) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if e.GroupID == groupID {
			total = total.Add(e.Amount)
		}
	}
	return total
}
