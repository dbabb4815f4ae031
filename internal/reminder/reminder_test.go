package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitshare/internal/models"
	"github.com/mmynk/splitshare/internal/storage/memory"
	"github.com/mmynk/splitshare/internal/storage/storagetest"
)

type recorder struct {
	got  []Reminder
	fail string // member ID whose notification fails
}

func (r *recorder) Notify(ctx context.Context, rem Reminder) error {
	if rem.Member.ID == r.fail {
		return errors.New("sms gateway down")
	}
	r.got = append(r.got, rem)
	return nil
}

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	g := storagetest.Group("Flat")
	day := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	rent := storagetest.Expense(g.ID, "Rent", "100", day)
	settled := storagetest.Expense(g.ID, "Milk", "10", day)
	settled.SplitWith[1].Paid = true

	s, err := memory.NewSeeded([]models.Group{*g}, []models.Expense{*rent, *settled})
	if err != nil {
		t.Fatalf("NewSeeded failed: %v", err)
	}
	return s
}

func TestJob_Run(t *testing.T) {
	rec := &recorder{}
	sent, err := NewJob(seededStore(t), rec).Run(t.Context())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if sent != 1 || len(rec.got) != 1 {
		t.Fatalf("sent %d reminders (%+v), want 1", sent, rec.got)
	}
	r := rec.got[0]
	if r.Member.ID != "bilal" || !r.Owing.Equal(decimal.NewFromInt(50)) || r.GroupName != "Flat" {
		t.Errorf("reminder = %+v, want bilal owing 50 in Flat", r)
	}
}

func TestJob_Run_SkipsFailedDelivery(t *testing.T) {
	rec := &recorder{fail: "bilal"}
	sent, err := NewJob(seededStore(t), rec).Run(t.Context())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if sent != 0 {
		t.Errorf("sent = %d, want 0", sent)
	}
}

func TestJob_Run_EmptyStore(t *testing.T) {
	sent, err := NewJob(memory.New(), &recorder{}).Run(t.Context())
	if err != nil || sent != 0 {
		t.Errorf("Run() = %d, %v; want 0, nil", sent, err)
	}
}

func TestSchedule(t *testing.T) {
	job := NewJob(memory.New(), LogNotifier{})

	c, err := Schedule("0 9 * * MON", job)
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if len(c.Entries()) != 1 {
		t.Errorf("entries = %d, want 1", len(c.Entries()))
	}

	if _, err := Schedule("whenever", job); err == nil {
		t.Error("Schedule accepted an invalid spec")
	}
}
