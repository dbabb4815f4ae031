// Package storagetest holds the behavioral tests every storage.Store
// implementation must pass.
package storagetest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitshare/internal/models"
	"github.com/mmynk/splitshare/internal/storage"
)

// Factory returns a fresh, empty store. Cleanup is the factory's job.
type Factory func(t *testing.T) storage.Store

// Group returns a valid two-member group with a fresh ID.
func Group(name string) *models.Group {
	return &models.Group{
		ID:          models.NewID(),
		Name:        name,
		Description: "shared flat",
		Members: []models.Member{
			{ID: "asha", Name: "Asha", Phone: "+91 98000 00001", Avatar: "https://img/asha.png"},
			{ID: "bilal", Name: "Bilal", Phone: "+91 98000 00002"},
		},
		CreatedBy:  "asha",
		CreatedAt:  time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
		CoverImage: "https://img/cover.png",
	}
}

// Expense returns a valid expense in groupID paid by asha, split evenly.
func Expense(groupID, title string, amount string, date time.Time) *models.Expense {
	total := decimal.RequireFromString(amount)
	half := total.Div(decimal.NewFromInt(2)).Truncate(2)
	return &models.Expense{
		ID:       models.NewID(),
		GroupID:  groupID,
		Title:    title,
		Amount:   total,
		PaidBy:   models.Member{ID: "asha", Name: "Asha", Phone: "+91 98000 00001"},
		Date:     date,
		Category: "Groceries",
		Notes:    "weekly run",
		SplitWith: []models.SplitLine{
			{MemberID: "asha", Name: "Asha", Avatar: "https://img/asha.png", Amount: half, Paid: true},
			{MemberID: "bilal", Name: "Bilal", Amount: total.Sub(half)},
		},
	}
}

// Run exercises the full storage.Store contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("CreateGroup round trips every field", func(t *testing.T) {
		s := newStore(t)
		want := Group("Flat 4B")
		if err := s.CreateGroup(ctx, want); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		got, err := s.GetGroup(ctx, want.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		assertGroup(t, got, want)
	})

	t.Run("CreateGroup generates ID and CreatedAt", func(t *testing.T) {
		s := newStore(t)
		g := Group("Trip")
		g.ID = ""
		g.CreatedAt = time.Time{}
		if err := s.CreateGroup(ctx, g); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if g.ID == "" {
			t.Error("Expected group ID to be generated")
		}
		if g.CreatedAt.IsZero() {
			t.Error("Expected CreatedAt to be set")
		}
		got, err := s.GetGroup(ctx, g.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if !got.CreatedAt.Equal(g.CreatedAt) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, g.CreatedAt)
		}
	})

	t.Run("CreateGroup rejects duplicate ID", func(t *testing.T) {
		s := newStore(t)
		g := Group("Flat")
		if err := s.CreateGroup(ctx, g); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		dup := Group("Other")
		dup.ID = g.ID
		if err := s.CreateGroup(ctx, dup); !errors.Is(err, storage.ErrDuplicateID) {
			t.Errorf("CreateGroup duplicate = %v, want ErrDuplicateID", err)
		}
	})

	t.Run("CreateGroup rejects invalid group", func(t *testing.T) {
		s := newStore(t)
		g := Group("No members")
		g.Members = nil
		var verr *models.ValidationError
		if err := s.CreateGroup(ctx, g); !errors.As(err, &verr) {
			t.Errorf("CreateGroup = %v, want *models.ValidationError", err)
		}
		if _, err := s.GetGroup(ctx, g.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("invalid group was stored: %v", err)
		}
	})

	t.Run("TotalExpenses is not persisted", func(t *testing.T) {
		s := newStore(t)
		g := Group("Flat")
		g.TotalExpenses = decimal.NewFromInt(999)
		if err := s.CreateGroup(ctx, g); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		got, err := s.GetGroup(ctx, g.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if !got.TotalExpenses.IsZero() {
			t.Errorf("TotalExpenses = %s, want 0", got.TotalExpenses)
		}
	})

	t.Run("GetGroup returns ErrNotFound", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.GetGroup(ctx, "nonexistent-id"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetGroup = %v, want ErrNotFound", err)
		}
	})

	t.Run("ReplaceGroup merges shallowly", func(t *testing.T) {
		s := newStore(t)
		g := Group("Flat")
		if err := s.CreateGroup(ctx, g); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		name := "Flat 4B"
		members := append(g.Members, models.Member{ID: "chen", Name: "Chen", Phone: "+91 98000 00003"})
		got, err := s.ReplaceGroup(ctx, g.ID, models.GroupPatch{Name: &name, Members: &members})
		if err != nil {
			t.Fatalf("ReplaceGroup failed: %v", err)
		}
		if got.Name != name || len(got.Members) != 3 {
			t.Errorf("ReplaceGroup result = %+v", got)
		}
		if got.Description != g.Description || got.CreatedBy != g.CreatedBy {
			t.Error("ReplaceGroup changed untouched fields")
		}

		stored, err := s.GetGroup(ctx, g.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if stored.Name != name || len(stored.Members) != 3 || stored.Members[2].ID != "chen" {
			t.Errorf("stored group = %+v", stored)
		}
	})

	t.Run("ReplaceGroup validates the merged group", func(t *testing.T) {
		s := newStore(t)
		g := Group("Flat")
		if err := s.CreateGroup(ctx, g); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		empty := []models.Member{}
		var verr *models.ValidationError
		if _, err := s.ReplaceGroup(ctx, g.ID, models.GroupPatch{Members: &empty}); !errors.As(err, &verr) {
			t.Errorf("ReplaceGroup = %v, want *models.ValidationError", err)
		}
		stored, _ := s.GetGroup(ctx, g.ID)
		if stored == nil || len(stored.Members) != 2 {
			t.Error("rejected patch was persisted")
		}
	})

	t.Run("ReplaceGroup and DeleteGroup return ErrNotFound", func(t *testing.T) {
		s := newStore(t)
		name := "x"
		if _, err := s.ReplaceGroup(ctx, "missing", models.GroupPatch{Name: &name}); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("ReplaceGroup = %v, want ErrNotFound", err)
		}
		if err := s.DeleteGroup(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("DeleteGroup = %v, want ErrNotFound", err)
		}
	})

	t.Run("DeleteGroup does not cascade", func(t *testing.T) {
		s := newStore(t)
		g := Group("Flat")
		if err := s.CreateGroup(ctx, g); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		e := Expense(g.ID, "Milk", "4.50", time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))
		if err := s.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if err := s.DeleteGroup(ctx, g.ID); err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}
		if _, err := s.GetGroup(ctx, g.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetGroup after delete = %v, want ErrNotFound", err)
		}
		if _, err := s.GetExpense(ctx, e.ID); err != nil {
			t.Errorf("expense was removed with its group: %v", err)
		}
	})

	t.Run("empty lists encode as JSON arrays", func(t *testing.T) {
		s := newStore(t)
		g := Group("Empty")
		if err := s.CreateGroup(ctx, g); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		groups, err := s.ListGroups(ctx, storage.GroupFilter{MemberID: "nobody"})
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		expenses, err := s.ListExpenses(ctx, storage.ExpenseFilter{GroupID: g.ID})
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		for name, v := range map[string]any{"ListGroups": groups, "ListExpenses": expenses} {
			data, err := json.Marshal(v)
			if err != nil {
				t.Fatalf("marshal %s: %v", name, err)
			}
			if string(data) != "[]" {
				t.Errorf("%s encoded as %s, want []", name, data)
			}
		}
	})

	t.Run("ListGroups filters and orders", func(t *testing.T) {
		s := newStore(t)
		late := Group("Goa Trip")
		late.CreatedAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		early := Group("Flat 4B")
		early.Description = "Rent and bills"
		other := Group("Office lunch")
		other.Members = []models.Member{{ID: "chen", Name: "Chen"}}
		other.CreatedBy = "chen"
		for _, g := range []*models.Group{late, early, other} {
			if err := s.CreateGroup(ctx, g); err != nil {
				t.Fatalf("CreateGroup failed: %v", err)
			}
		}

		all, err := s.ListGroups(ctx, storage.GroupFilter{MemberID: "asha"})
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		if len(all) != 2 || all[0].ID != early.ID || all[1].ID != late.ID {
			t.Errorf("ListGroups(member) = %v, want [early late]", groupIDs(all))
		}

		found, err := s.ListGroups(ctx, storage.GroupFilter{Search: "RENT"})
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		if len(found) != 1 || found[0].ID != early.ID {
			t.Errorf("ListGroups(search) = %v, want [early]", groupIDs(found))
		}

		everything, err := s.ListGroups(ctx, storage.GroupFilter{})
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		if len(everything) != 3 {
			t.Errorf("ListGroups() returned %d groups, want 3", len(everything))
		}
	})

	t.Run("CreateExpense round trips every field", func(t *testing.T) {
		s := newStore(t)
		want := Expense("g1", "Vegetables", "100", time.Date(2026, 2, 3, 18, 30, 0, 0, time.UTC))
		want.SplitWith = []models.SplitLine{
			{MemberID: "asha", Name: "Asha", Amount: decimal.RequireFromString("33.33"), Paid: true},
			{MemberID: "bilal", Name: "Bilal", Amount: decimal.RequireFromString("33.33")},
			{MemberID: "chen", Name: "Chen", Avatar: "https://img/chen.png", Amount: decimal.RequireFromString("33.34")},
		}
		if err := s.CreateExpense(ctx, want); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		got, err := s.GetExpense(ctx, want.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		assertExpense(t, got, want)
	})

	t.Run("expense dates are stored at millisecond precision", func(t *testing.T) {
		s := newStore(t)
		nanos := time.Date(2026, 2, 3, 18, 30, 0, 123456789, time.FixedZone("IST", 5*3600+1800))
		e := Expense("g1", "Chai", "10", nanos)
		if err := s.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		wantDate := time.Date(2026, 2, 3, 13, 0, 0, 123000000, time.UTC)
		if !e.Date.Equal(wantDate) || e.Date.Location() != time.UTC {
			t.Errorf("created Date = %v, want %v", e.Date, wantDate)
		}
		got, err := s.GetExpense(ctx, e.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if !got.Date.Equal(e.Date) {
			t.Errorf("stored Date = %v, want %v", got.Date, e.Date)
		}

		later := nanos.Add(time.Hour)
		updated, err := s.ReplaceExpense(ctx, e.ID, models.ExpensePatch{Date: &later})
		if err != nil {
			t.Fatalf("ReplaceExpense failed: %v", err)
		}
		got, err = s.GetExpense(ctx, e.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if !got.Date.Equal(updated.Date) || !updated.Date.Equal(wantDate.Add(time.Hour)) {
			t.Errorf("replaced Date = %v, stored %v, want %v", updated.Date, got.Date, wantDate.Add(time.Hour))
		}
	})

	t.Run("CreateExpense rejects duplicates and invalid splits", func(t *testing.T) {
		s := newStore(t)
		e := Expense("g1", "Milk", "4.50", time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))
		if err := s.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		dup := Expense("g1", "Bread", "3", time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))
		dup.ID = e.ID
		if err := s.CreateExpense(ctx, dup); !errors.Is(err, storage.ErrDuplicateID) {
			t.Errorf("CreateExpense duplicate = %v, want ErrDuplicateID", err)
		}

		bad := Expense("g1", "Eggs", "10", time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))
		bad.SplitWith[1].Amount = decimal.NewFromInt(1)
		var verr *models.ValidationError
		if err := s.CreateExpense(ctx, bad); !errors.As(err, &verr) {
			t.Errorf("CreateExpense bad split = %v, want *models.ValidationError", err)
		}
	})

	t.Run("ListExpenses filters by group and orders by date", func(t *testing.T) {
		s := newStore(t)
		d := func(day int) time.Time { return time.Date(2026, 2, day, 0, 0, 0, 0, time.UTC) }
		second := Expense("g1", "Second", "20", d(5))
		first := Expense("g1", "First", "10", d(1))
		elsewhere := Expense("g2", "Elsewhere", "30", d(3))
		for _, e := range []*models.Expense{second, first, elsewhere} {
			if err := s.CreateExpense(ctx, e); err != nil {
				t.Fatalf("CreateExpense failed: %v", err)
			}
		}

		got, err := s.ListExpenses(ctx, storage.ExpenseFilter{GroupID: "g1"})
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if len(got) != 2 || got[0].ID != first.ID || got[1].ID != second.ID {
			t.Errorf("ListExpenses(g1) = %v, want [first second]", expenseIDs(got))
		}
		if len(got) == 2 && len(got[0].SplitWith) != 2 {
			t.Errorf("listed expense lost split lines: %+v", got[0])
		}

		mine, err := s.ListExpenses(ctx, storage.ExpenseFilter{MemberID: "bilal"})
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if len(mine) != 3 {
			t.Errorf("ListExpenses(bilal) returned %d, want 3", len(mine))
		}

		none, err := s.ListExpenses(ctx, storage.ExpenseFilter{MemberID: "zed"})
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if len(none) != 0 {
			t.Errorf("ListExpenses(zed) returned %d, want 0", len(none))
		}
	})

	t.Run("ReplaceExpense merges shallowly and validates", func(t *testing.T) {
		s := newStore(t)
		e := Expense("g1", "Milk", "10", time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))
		if err := s.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		lines := append([]models.SplitLine(nil), e.SplitWith...)
		lines[1].Paid = true
		title := "Milk and bread"
		got, err := s.ReplaceExpense(ctx, e.ID, models.ExpensePatch{Title: &title, SplitWith: &lines})
		if err != nil {
			t.Fatalf("ReplaceExpense failed: %v", err)
		}
		if got.Title != title || !got.SplitWith[1].Paid || !got.Amount.Equal(e.Amount) {
			t.Errorf("ReplaceExpense result = %+v", got)
		}

		amount := decimal.NewFromInt(50)
		var verr *models.ValidationError
		if _, err := s.ReplaceExpense(ctx, e.ID, models.ExpensePatch{Amount: &amount}); !errors.As(err, &verr) {
			t.Errorf("ReplaceExpense breaking split sum = %v, want *models.ValidationError", err)
		}

		stored, err := s.GetExpense(ctx, e.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if stored.Title != title || !stored.Amount.Equal(e.Amount) {
			t.Errorf("stored expense = %+v", stored)
		}
	})

	t.Run("expense NotFound paths", func(t *testing.T) {
		s := newStore(t)
		title := "x"
		if _, err := s.GetExpense(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetExpense = %v, want ErrNotFound", err)
		}
		if _, err := s.ReplaceExpense(ctx, "missing", models.ExpensePatch{Title: &title}); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("ReplaceExpense = %v, want ErrNotFound", err)
		}
		if err := s.DeleteExpense(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("DeleteExpense = %v, want ErrNotFound", err)
		}
	})

	t.Run("DeleteExpense removes the expense", func(t *testing.T) {
		s := newStore(t)
		e := Expense("g1", "Milk", "10", time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))
		if err := s.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if err := s.DeleteExpense(ctx, e.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if _, err := s.GetExpense(ctx, e.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetExpense after delete = %v, want ErrNotFound", err)
		}
	})

	t.Run("reads are snapshots", func(t *testing.T) {
		s := newStore(t)
		e := Expense("g1", "Milk", "10", time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))
		if err := s.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		e.SplitWith[1].Paid = true

		got, err := s.GetExpense(ctx, e.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.SplitWith[1].Paid {
			t.Error("store shares memory with the caller's expense")
		}
		got.SplitWith[1].Paid = true
		again, _ := s.GetExpense(ctx, e.ID)
		if again.SplitWith[1].Paid {
			t.Error("store shares memory with a returned expense")
		}
	})
}

func assertGroup(t *testing.T, got, want *models.Group) {
	t.Helper()
	if got.ID != want.ID || got.Name != want.Name || got.Description != want.Description ||
		got.CreatedBy != want.CreatedBy || got.CoverImage != want.CoverImage {
		t.Errorf("group fields mismatch:\n got %+v\nwant %+v", got, want)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
	if len(got.Members) != len(want.Members) {
		t.Fatalf("Members count = %d, want %d", len(got.Members), len(want.Members))
	}
	for i := range want.Members {
		if got.Members[i] != want.Members[i] {
			t.Errorf("Members[%d] = %+v, want %+v", i, got.Members[i], want.Members[i])
		}
	}
}

func assertExpense(t *testing.T, got, want *models.Expense) {
	t.Helper()
	if got.ID != want.ID || got.GroupID != want.GroupID || got.Title != want.Title ||
		got.Category != want.Category || got.Notes != want.Notes || got.PaidBy != want.PaidBy {
		t.Errorf("expense fields mismatch:\n got %+v\nwant %+v", got, want)
	}
	if !got.Amount.Equal(want.Amount) {
		t.Errorf("Amount = %s, want %s", got.Amount, want.Amount)
	}
	if !got.Date.Equal(want.Date) {
		t.Errorf("Date = %v, want %v", got.Date, want.Date)
	}
	if len(got.SplitWith) != len(want.SplitWith) {
		t.Fatalf("SplitWith count = %d, want %d", len(got.SplitWith), len(want.SplitWith))
	}
	for i, w := range want.SplitWith {
		g := got.SplitWith[i]
		if g.MemberID != w.MemberID || g.Name != w.Name || g.Avatar != w.Avatar || g.Paid != w.Paid || !g.Amount.Equal(w.Amount) {
			t.Errorf("SplitWith[%d] = %+v, want %+v", i, g, w)
		}
	}
}

func groupIDs(groups []*models.Group) []string {
	ids := make([]string, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
	}
	return ids
}

func expenseIDs(expenses []*models.Expense) []string {
	ids := make([]string, len(expenses))
	for i, e := range expenses {
		ids[i] = e.ID
	}
	return ids
}
