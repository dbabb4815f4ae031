package memory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmynk/splitshare/internal/models"
	"github.com/mmynk/splitshare/internal/storage"
	"github.com/mmynk/splitshare/internal/storage/storagetest"
)

func TestMemoryStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		return New()
	})
}

func TestNewSeeded(t *testing.T) {
	g := storagetest.Group("Flat")
	e := storagetest.Expense(g.ID, "Milk", "4", time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))

	s, err := NewSeeded([]models.Group{*g}, []models.Expense{*e})
	if err != nil {
		t.Fatalf("NewSeeded failed: %v", err)
	}
	if _, err := s.GetGroup(t.Context(), g.ID); err != nil {
		t.Errorf("seeded group missing: %v", err)
	}
	if _, err := s.GetExpense(t.Context(), e.ID); err != nil {
		t.Errorf("seeded expense missing: %v", err)
	}
}

func TestNewSeeded_RejectsDuplicates(t *testing.T) {
	g := storagetest.Group("Flat")

	_, err := NewSeeded([]models.Group{*g, *g}, nil)
	if !errors.Is(err, storage.ErrDuplicateID) {
		t.Errorf("NewSeeded = %v, want ErrDuplicateID", err)
	}
}

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	seed := `{
		"groups": [{
			"id": "flat",
			"name": "Flat 4B",
			"members": [{"id": "asha", "name": "Asha", "phone": "1"}, {"id": "bilal", "name": "Bilal", "phone": "2"}],
			"createdBy": "asha",
			"createdAt": "2026-02-01T10:00:00Z"
		}],
		"expenses": [{
			"id": "rent",
			"groupId": "flat",
			"title": "Rent",
			"amount": 100,
			"paidBy": {"id": "asha", "name": "Asha", "phone": "1"},
			"date": "2026-02-02T00:00:00Z",
			"category": "Rent",
			"splitWith": [
				{"memberId": "asha", "name": "Asha", "amount": 50, "paid": true},
				{"memberId": "bilal", "name": "Bilal", "amount": 50}
			]
		}]
	}`
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSeed(path)
	if err != nil {
		t.Fatalf("LoadSeed failed: %v", err)
	}
	g, err := s.GetGroup(t.Context(), "flat")
	if err != nil || len(g.Members) != 2 {
		t.Fatalf("GetGroup = %+v, %v", g, err)
	}
	e, err := s.GetExpense(t.Context(), "rent")
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if e.Amount.String() != "100" || len(e.SplitWith) != 2 {
		t.Errorf("expense = %+v", e)
	}
}

func TestLoadSeed_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadSeed(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("LoadSeed accepted a missing file")
	}

	const group = `{"id": "flat", "name": "Flat 4B", "members": [{"id": "asha", "name": "Asha", "phone": "1"}, {"id": "bilal", "name": "Bilal", "phone": "2"}], "createdBy": "asha", "createdAt": "2026-02-01T10:00:00Z"}`
	expense := func(groupID, payerID, splitMember, extra string) string {
		return `{"id": "rent", "groupId": "` + groupID + `", "title": "Rent", "amount": 100,
			"paidBy": {"id": "` + payerID + `", "name": "Payer", "phone": "1"},
			"date": "2026-02-02T00:00:00Z", "category": "Rent",
			"splitWith": [{"memberId": "asha", "name": "Asha", "amount": 50}, {"memberId": "` + splitMember + `", "name": "Other", "amount": 50}]` + extra + `}`
	}

	tests := []struct {
		name    string
		seed    string
		wantErr error
	}{
		{name: "malformed JSON", seed: "{not json"},
		{name: "unknown top-level field", seed: `{"groups": [], "expenses": [], "users": []}`},
		{name: "unknown group field", seed: `{"groups": [` + group[:len(group)-1] + `, "bogus": 1}]}`},
		{name: "unknown expense field", seed: `{"groups": [` + group + `], "expenses": [` + expense("flat", "asha", "bilal", `, "totallyUnknown": "y"`) + `]}`},
		{
			name:    "expense in a missing group",
			seed:    `{"groups": [` + group + `], "expenses": [` + expense("nope", "asha", "bilal", "") + `]}`,
			wantErr: storage.ErrNotFound,
		},
		{name: "payer outside the group", seed: `{"groups": [` + group + `], "expenses": [` + expense("flat", "zed", "bilal", "") + `]}`},
		{name: "split member outside the group", seed: `{"groups": [` + group + `], "expenses": [` + expense("flat", "asha", "zed", "") + `]}`},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, fmt.Sprintf("seed-%d.json", i))
			if err := os.WriteFile(path, []byte(tt.seed), 0o600); err != nil {
				t.Fatal(err)
			}
			_, err := LoadSeed(path)
			if err == nil {
				t.Fatal("LoadSeed accepted an invalid seed")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadSeed = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewSeeded_RejectsForeignMembers(t *testing.T) {
	g := storagetest.Group("Flat")
	e := storagetest.Expense(g.ID, "Milk", "4", time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))
	e.PaidBy = models.Member{ID: "zed", Name: "Zed"}

	_, err := NewSeeded([]models.Group{*g}, []models.Expense{*e})
	var validationErr *models.ValidationError
	if !errors.As(err, &validationErr) || validationErr.Field != "paidBy.id" {
		t.Errorf("NewSeeded = %v, want a paidBy.id validation error", err)
	}
}
