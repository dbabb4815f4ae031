package calculator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitshare/internal/models"
)

var (
	alice   = models.Member{ID: "alice", Name: "Alice", Avatar: "https://img/alice.png"}
	bob     = models.Member{ID: "bob", Name: "Bob"}
	charlie = models.Member{ID: "charlie", Name: "Charlie"}
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sumLines(lines []models.SplitLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Amount)
	}
	return sum
}

func TestComputeEqualSplit(t *testing.T) {
	tests := []struct {
		name         string
		total        decimal.Decimal
		members      []models.Member
		payerID      string
		wantErr      error
		validateFunc func(t *testing.T, lines []models.SplitLine)
	}{
		{
			name:    "single member pays for themselves",
			total:   dec("100"),
			members: []models.Member{alice},
			payerID: alice.ID,
			validateFunc: func(t *testing.T, lines []models.SplitLine) {
				if len(lines) != 1 {
					t.Fatalf("got %d lines, want 1", len(lines))
				}
				l := lines[0]
				if l.MemberID != alice.ID || !l.Amount.Equal(dec("100")) || !l.Paid {
					t.Errorf("line = %+v, want alice 100 paid", l)
				}
			},
		},
		{
			name:    "three-way split assigns residual to last line",
			total:   dec("100"),
			members: []models.Member{alice, bob, charlie},
			payerID: alice.ID,
			validateFunc: func(t *testing.T, lines []models.SplitLine) {
				want := []string{"33.33", "33.33", "33.34"}
				for i, w := range want {
					if !lines[i].Amount.Equal(dec(w)) {
						t.Errorf("line %d amount = %s, want %s", i, lines[i].Amount, w)
					}
				}
				if !sumLines(lines).Equal(dec("100")) {
					t.Errorf("sum = %s, want exactly 100", sumLines(lines))
				}
				if !lines[0].Paid || lines[1].Paid || lines[2].Paid {
					t.Errorf("paid flags = %v %v %v, want true false false", lines[0].Paid, lines[1].Paid, lines[2].Paid)
				}
			},
		},
		{
			name:    "payer in the middle",
			total:   dec("90"),
			members: []models.Member{alice, bob, charlie},
			payerID: bob.ID,
			validateFunc: func(t *testing.T, lines []models.SplitLine) {
				for _, l := range lines {
					if !l.Amount.Equal(dec("30")) {
						t.Errorf("%s amount = %s, want 30", l.MemberID, l.Amount)
					}
					if l.Paid != (l.MemberID == bob.ID) {
						t.Errorf("%s paid = %v", l.MemberID, l.Paid)
					}
				}
			},
		},
		{
			name:    "payer outside the split leaves every line unpaid",
			total:   dec("10"),
			members: []models.Member{bob, charlie},
			payerID: alice.ID,
			validateFunc: func(t *testing.T, lines []models.SplitLine) {
				for _, l := range lines {
					if l.Paid {
						t.Errorf("%s unexpectedly paid", l.MemberID)
					}
				}
			},
		},
		{
			name:    "tiny total never produces a negative line",
			total:   dec("0.05"),
			members: []models.Member{alice, bob, charlie, {ID: "d", Name: "D"}, {ID: "e", Name: "E"}, {ID: "f", Name: "F"}, {ID: "g", Name: "G"}},
			payerID: alice.ID,
			validateFunc: func(t *testing.T, lines []models.SplitLine) {
				for _, l := range lines {
					if l.Amount.IsNegative() {
						t.Errorf("%s amount = %s, negative", l.MemberID, l.Amount)
					}
				}
				if !sumLines(lines).Equal(dec("0.05")) {
					t.Errorf("sum = %s, want 0.05", sumLines(lines))
				}
			},
		},
		{
			name:    "copies member name and avatar",
			total:   dec("20"),
			members: []models.Member{alice, bob},
			payerID: alice.ID,
			validateFunc: func(t *testing.T, lines []models.SplitLine) {
				if lines[0].Name != "Alice" || lines[0].Avatar != alice.Avatar {
					t.Errorf("line 0 = %+v, want Alice with avatar", lines[0])
				}
			},
		},
		{
			name:    "empty member set",
			total:   dec("10"),
			members: nil,
			wantErr: ErrEmptyMemberSet,
		},
		{
			name:    "zero total",
			total:   decimal.Zero,
			members: []models.Member{alice},
			wantErr: ErrNonPositiveTotal,
		},
		{
			name:    "duplicate members",
			total:   dec("10"),
			members: []models.Member{alice, alice},
			wantErr: ErrDuplicateMember,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := ComputeEqualSplit(tt.total, tt.members, tt.payerID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ComputeEqualSplit() error = %v, want %v", err, tt.wantErr)
				}
				var splitErr *SplitError
				if !errors.As(err, &splitErr) {
					t.Errorf("error %T is not a *SplitError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ComputeEqualSplit() unexpected error: %v", err)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, lines)
			}
		})
	}
}

func TestComputeEqualSplit_SumInvariant(t *testing.T) {
	members := []models.Member{alice, bob, charlie, {ID: "d", Name: "D"}, {ID: "e", Name: "E"}, {ID: "f", Name: "F"}}
	totals := []string{"0.01", "1", "7.77", "10.005", "100", "333.33", "1000000.01", "49.99"}

	for _, total := range totals {
		for n := 1; n <= len(members); n++ {
			t.Run(fmt.Sprintf("%s/%d", total, n), func(t *testing.T) {
				lines, err := ComputeEqualSplit(dec(total), members[:n], alice.ID)
				if err != nil {
					t.Fatalf("ComputeEqualSplit() error = %v", err)
				}
				if len(lines) != n {
					t.Fatalf("got %d lines, want %d", len(lines), n)
				}
				if diff := sumLines(lines).Sub(dec(total)).Abs(); diff.GreaterThan(models.SplitTolerance) {
					t.Errorf("sum off by %s", diff)
				}
			})
		}
	}
}

func TestValidateCustomSplit(t *testing.T) {
	members := []models.Member{alice, bob, charlie}

	tests := []struct {
		name       string
		total      decimal.Decimal
		shares     []Share
		wantErr    error
		wantMember string
	}{
		{
			name:   "exact sum",
			total:  dec("100"),
			shares: []Share{{alice.ID, dec("40")}, {bob.ID, dec("60")}},
		},
		{
			name:   "within one cent",
			total:  dec("100"),
			shares: []Share{{alice.ID, dec("33.33")}, {bob.ID, dec("33.33")}, {charlie.ID, dec("33.33")}},
		},
		{
			name:    "sum short by ten",
			total:   dec("100"),
			shares:  []Share{{alice.ID, dec("40")}, {bob.ID, dec("50")}},
			wantErr: ErrSumMismatch,
		},
		{
			name:    "sum over by two cents",
			total:   dec("100"),
			shares:  []Share{{alice.ID, dec("50.01")}, {bob.ID, dec("50.01")}},
			wantErr: ErrSumMismatch,
		},
		{
			name:       "unknown member",
			total:      dec("100"),
			shares:     []Share{{alice.ID, dec("50")}, {"mallory", dec("50")}},
			wantErr:    ErrUnknownMember,
			wantMember: "mallory",
		},
		{
			name:       "negative amount",
			total:      dec("100"),
			shares:     []Share{{alice.ID, dec("110")}, {bob.ID, dec("-10")}},
			wantErr:    ErrNegativeAmount,
			wantMember: bob.ID,
		},
		{
			name:       "member listed twice",
			total:      dec("100"),
			shares:     []Share{{alice.ID, dec("50")}, {alice.ID, dec("50")}},
			wantErr:    ErrDuplicateMember,
			wantMember: alice.ID,
		},
		{
			name:    "no shares",
			total:   dec("100"),
			wantErr: ErrEmptyMemberSet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCustomSplit(tt.total, members, tt.shares)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateCustomSplit() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateCustomSplit() = %v, want %v", err, tt.wantErr)
			}
			var splitErr *SplitError
			if !errors.As(err, &splitErr) {
				t.Fatalf("error %T is not a *SplitError", err)
			}
			if splitErr.MemberID != tt.wantMember {
				t.Errorf("MemberID = %q, want %q", splitErr.MemberID, tt.wantMember)
			}
		})
	}
}

func TestValidateCustomSplit_ReportsSum(t *testing.T) {
	err := ValidateCustomSplit(dec("100"), []models.Member{alice, bob}, []Share{{alice.ID, dec("40")}, {bob.ID, dec("50")}})

	var splitErr *SplitError
	if !errors.As(err, &splitErr) {
		t.Fatalf("error = %v, want *SplitError", err)
	}
	if !splitErr.Amount.Equal(dec("90")) || !splitErr.Expected.Equal(dec("100")) {
		t.Errorf("Amount/Expected = %s/%s, want 90/100", splitErr.Amount, splitErr.Expected)
	}
	if got, want := splitErr.Error(), "split amounts do not sum to the total: got 90, want 100"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestComputeCustomSplit(t *testing.T) {
	lines, err := ComputeCustomSplit(dec("100"), []models.Member{alice, bob, charlie}, bob.ID,
		[]Share{{charlie.ID, dec("70")}, {bob.ID, dec("30")}})
	if err != nil {
		t.Fatalf("ComputeCustomSplit() error = %v", err)
	}

	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2 (alice has no share)", len(lines))
	}
	// Member order, not share order.
	if lines[0].MemberID != bob.ID || lines[1].MemberID != charlie.ID {
		t.Errorf("order = %s,%s, want bob,charlie", lines[0].MemberID, lines[1].MemberID)
	}
	if !lines[0].Paid || lines[1].Paid {
		t.Errorf("paid = %v,%v, want true,false", lines[0].Paid, lines[1].Paid)
	}
	if !lines[1].Amount.Equal(dec("70")) {
		t.Errorf("charlie amount = %s, want 70", lines[1].Amount)
	}
}

func TestComputeSplit_Dispatch(t *testing.T) {
	members := []models.Member{alice, bob}

	lines, err := ComputeSplit(StrategyEqual, dec("10"), members, alice.ID, nil)
	if err != nil || len(lines) != 2 {
		t.Fatalf("equal: lines=%d err=%v", len(lines), err)
	}

	lines, err = ComputeSplit(StrategyCustom, dec("10"), members, alice.ID, []Share{{bob.ID, dec("10")}})
	if err != nil || len(lines) != 1 {
		t.Fatalf("custom: lines=%d err=%v", len(lines), err)
	}

	if _, err := ComputeSplit("percentage", dec("10"), members, alice.ID, nil); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("unknown strategy error = %v, want ErrUnknownStrategy", err)
	}
}

func TestSplitError_Reason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrSumMismatch, "sum_mismatch"},
		{ErrUnknownMember, "unknown_member"},
		{ErrNegativeAmount, "negative_amount"},
		{ErrEmptyMemberSet, "empty_member_set"},
		{ErrDuplicateMember, "duplicate_member"},
		{ErrNonPositiveTotal, "non_positive_total"},
		{ErrUnknownStrategy, "unknown_strategy"},
		{errors.New("boom"), "other"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := (&SplitError{Err: tt.err}).Reason(); got != tt.want {
				t.Errorf("Reason() = %q, want %q", got, tt.want)
			}
		})
	}
}
