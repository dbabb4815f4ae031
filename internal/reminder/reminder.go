// Package reminder periodically tells group members what they still owe.
// It only reads the ledger; nothing is settled or paid.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitshare/internal/calculator"
	"github.com/mmynk/splitshare/internal/models"
	"github.com/mmynk/splitshare/internal/storage"
)

// runTimeout bounds one scheduled pass over the store.
const runTimeout = 2 * time.Minute

// Reminder is one member's outstanding amount in one group.
type Reminder struct {
	GroupID   string
	GroupName string
	Member    models.Member
	Owing     decimal.Decimal
}

// Notifier delivers reminders.
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// LogNotifier writes reminders to a logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, r Reminder) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "Balance reminder",
		"group_id", r.GroupID,
		"group_name", r.GroupName,
		"member_id", r.Member.ID,
		"phone", r.Member.Phone,
		"owing", r.Owing,
	)
	return nil
}

// Job finds members with unpaid shares and notifies them.
type Job struct {
	store    storage.Store
	notifier Notifier
}

// NewJob creates a reminder job over store.
func NewJob(store storage.Store, notifier Notifier) *Job {
	return &Job{store: store, notifier: notifier}
}

// Run sends one reminder per member and group with a positive amount owing.
// A failed notification is logged and does not stop the run.
func (j *Job) Run(ctx context.Context) (int, error) {
	groups, err := j.store.ListGroups(ctx, storage.GroupFilter{})
	if err != nil {
		return 0, fmt.Errorf("failed to list groups: %w", err)
	}

	sent := 0
	for _, g := range groups {
		list, err := j.store.ListExpenses(ctx, storage.ExpenseFilter{GroupID: g.ID})
		if err != nil {
			return sent, fmt.Errorf("failed to list expenses of group %s: %w", g.ID, err)
		}
		expenses := make([]models.Expense, len(list))
		for i, e := range list {
			expenses[i] = *e
		}

		for _, b := range calculator.MemberBalances(*g, expenses) {
			if !b.TotalOwing.IsPositive() {
				continue
			}
			r := Reminder{GroupID: g.ID, GroupName: g.Name, Member: b.Member, Owing: b.TotalOwing}
			if err := j.notifier.Notify(ctx, r); err != nil {
				slog.Warn("Reminder not delivered", "group_id", g.ID, "member_id", b.Member.ID, "error", err)
				continue
			}
			sent++
		}
	}
	return sent, nil
}

// Schedule registers job on a new cron scheduler using a standard
// five-field spec. The caller starts and stops the scheduler.
func Schedule(spec string, job *Job) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		sent, err := job.Run(ctx)
		if err != nil {
			slog.Error("Reminder run failed", "sent", sent, "error", err)
			return
		}
		slog.Info("Reminder run finished", "sent", sent)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule reminders: %w", err)
	}
	return c, nil
}
