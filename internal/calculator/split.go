package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitshare/internal/models"
)

// Strategy selects how an expense is divided among members.
type Strategy string

const (
	StrategyEqual  Strategy = "equal"
	StrategyCustom Strategy = "custom"
)

// centPlaces is the precision split lines are stored at.
const centPlaces = 2

var (
	ErrSumMismatch      = errors.New("split amounts do not sum to the total")
	ErrUnknownMember    = errors.New("member is not part of the group")
	ErrNegativeAmount   = errors.New("split amount cannot be negative")
	ErrEmptyMemberSet   = errors.New("at least one member is required")
	ErrDuplicateMember  = errors.New("member appears more than once")
	ErrNonPositiveTotal = errors.New("total amount must be positive")
	ErrUnknownStrategy  = errors.New("unknown split strategy")
)

// SplitError describes why a split was rejected. Err is one of the sentinel
// errors above; MemberID and Amount identify the offending line when there is one.
type SplitError struct {
	Err      error
	MemberID string
	Amount   decimal.Decimal
	Expected decimal.Decimal
}

func (e *SplitError) Error() string {
	switch {
	case errors.Is(e.Err, ErrSumMismatch):
		return fmt.Sprintf("%v: got %s, want %s", e.Err, e.Amount, e.Expected)
	case errors.Is(e.Err, ErrNegativeAmount):
		return fmt.Sprintf("%v: member %s has %s", e.Err, e.MemberID, e.Amount)
	case errors.Is(e.Err, ErrNonPositiveTotal):
		return fmt.Sprintf("%v: got %s", e.Err, e.Amount)
	case e.MemberID != "":
		return fmt.Sprintf("%v: %s", e.Err, e.MemberID)
	default:
		return e.Err.Error()
	}
}

func (e *SplitError) Unwrap() error { return e.Err }

// Reason is a short label for the rejection, suitable for metrics.
func (e *SplitError) Reason() string {
	switch {
	case errors.Is(e.Err, ErrSumMismatch):
		return "sum_mismatch"
	case errors.Is(e.Err, ErrUnknownMember):
		return "unknown_member"
	case errors.Is(e.Err, ErrNegativeAmount):
		return "negative_amount"
	case errors.Is(e.Err, ErrEmptyMemberSet):
		return "empty_member_set"
	case errors.Is(e.Err, ErrDuplicateMember):
		return "duplicate_member"
	case errors.Is(e.Err, ErrNonPositiveTotal):
		return "non_positive_total"
	case errors.Is(e.Err, ErrUnknownStrategy):
		return "unknown_strategy"
	default:
		return "other"
	}
}

// Share is a caller-chosen amount for one member in a custom split.
type Share struct {
	MemberID string          `json:"memberId"`
	Amount   decimal.Decimal `json:"amount"`
}

// ComputeSplit divides total among members using the given strategy.
// shares is only read for StrategyCustom.
func ComputeSplit(strategy Strategy, total decimal.Decimal, members []models.Member, payerID string, shares []Share) ([]models.SplitLine, error) {
	switch strategy {
	case StrategyEqual, "":
		return ComputeEqualSplit(total, members, payerID)
	case StrategyCustom:
		return ComputeCustomSplit(total, members, payerID, shares)
	default:
		return nil, &SplitError{Err: ErrUnknownStrategy, MemberID: string(strategy)}
	}
}

// ComputeEqualSplit divides total evenly among members.
// Every line but the last gets total/n truncated to cents; the last line
// absorbs the residual so the lines sum to total exactly. The payer's line
// is marked paid.
func ComputeEqualSplit(total decimal.Decimal, members []models.Member, payerID string) ([]models.SplitLine, error) {
	if err := checkMembers(total, members); err != nil {
		return nil, err
	}

	n := decimal.NewFromInt(int64(len(members)))
	share := total.Div(n).Truncate(centPlaces)

	lines := make([]models.SplitLine, len(members))
	allocated := decimal.Zero
	for i, m := range members {
		amount := share
		if i == len(members)-1 {
			amount = total.Sub(allocated)
		}
		allocated = allocated.Add(amount)
		lines[i] = newLine(m, amount, payerID)
	}
	return lines, nil
}

// ValidateCustomSplit checks caller-chosen shares against the total and the
// group's members. Shares must name distinct members, be non-negative and sum
// to total within one cent.
func ValidateCustomSplit(total decimal.Decimal, members []models.Member, shares []Share) error {
	if err := checkMembers(total, members); err != nil {
		return err
	}
	if len(shares) == 0 {
		return &SplitError{Err: ErrEmptyMemberSet}
	}

	known := make(map[string]bool, len(members))
	for _, m := range members {
		known[m.ID] = true
	}

	seen := make(map[string]bool, len(shares))
	sum := decimal.Zero
	for _, s := range shares {
		if !known[s.MemberID] {
			return &SplitError{Err: ErrUnknownMember, MemberID: s.MemberID, Amount: s.Amount}
		}
		if seen[s.MemberID] {
			return &SplitError{Err: ErrDuplicateMember, MemberID: s.MemberID, Amount: s.Amount}
		}
		seen[s.MemberID] = true
		if s.Amount.IsNegative() {
			return &SplitError{Err: ErrNegativeAmount, MemberID: s.MemberID, Amount: s.Amount}
		}
		sum = sum.Add(s.Amount)
	}

	if sum.Sub(total).Abs().GreaterThan(models.SplitTolerance) {
		return &SplitError{Err: ErrSumMismatch, Amount: sum, Expected: total}
	}
	return nil
}

// ComputeCustomSplit validates shares and turns them into split lines, in
// member order. Members without a share are left out.
func ComputeCustomSplit(total decimal.Decimal, members []models.Member, payerID string, shares []Share) ([]models.SplitLine, error) {
	if err := ValidateCustomSplit(total, members, shares); err != nil {
		return nil, err
	}

	byMember := make(map[string]decimal.Decimal, len(shares))
	for _, s := range shares {
		byMember[s.MemberID] = s.Amount
	}

	lines := make([]models.SplitLine, 0, len(shares))
	for _, m := range members {
		amount, ok := byMember[m.ID]
		if !ok {
			continue
		}
		lines = append(lines, newLine(m, amount, payerID))
	}
	return lines, nil
}

func checkMembers(total decimal.Decimal, members []models.Member) error {
	if !total.IsPositive() {
		return &SplitError{Err: ErrNonPositiveTotal, Amount: total}
	}
	if len(members) == 0 {
		return &SplitError{Err: ErrEmptyMemberSet}
	}
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if seen[m.ID] {
			return &SplitError{Err: ErrDuplicateMember, MemberID: m.ID}
		}
		seen[m.ID] = true
	}
	return nil
}

func newLine(m models.Member, amount decimal.Decimal, payerID string) models.SplitLine {
	return models.SplitLine{
		MemberID: m.ID,
		Name:     m.Name,
		Avatar:   m.Avatar,
		Amount:   amount,
		Paid:     m.ID == payerID,
	}
}
