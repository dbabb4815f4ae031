// Package storage provides abstractions for persistent data storage.
package storage

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitshare/internal/models"
)

var (
	// ErrNotFound is returned when no entity has the requested ID.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateID is returned when creating an entity whose ID already exists.
	ErrDuplicateID = errors.New("duplicate id")
)

// NotFound wraps ErrNotFound with the entity kind and ID.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

// DuplicateID wraps ErrDuplicateID with the entity kind and ID.
func DuplicateID(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrDuplicateID)
}

// GroupFilter narrows ListGroups. Zero values match everything.
type GroupFilter struct {
	// Search matches name or description, case-insensitively.
	Search string
	// MemberID keeps only groups with this member.
	MemberID string
}

// Match reports whether g passes the filter.
func (f GroupFilter) Match(g *models.Group) bool {
	if f.MemberID != "" && !g.HasMember(f.MemberID) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		return strings.Contains(strings.ToLower(g.Name), q) ||
			strings.Contains(strings.ToLower(g.Description), q)
	}
	return true
}

// ExpenseFilter narrows ListExpenses. Zero values match everything.
type ExpenseFilter struct {
	GroupID string
	// MemberID keeps only expenses the member paid for or shares in.
	MemberID string
}

// Match reports whether e passes the filter.
func (f ExpenseFilter) Match(e *models.Expense) bool {
	if f.GroupID != "" && e.GroupID != f.GroupID {
		return false
	}
	if f.MemberID != "" && !e.Involves(f.MemberID) {
		return false
	}
	return true
}

// GroupStore holds the Groups collection.
//
// Groups are listed by CreatedAt, then ID. TotalExpenses is never persisted
// and always reads back as zero.
type GroupStore interface {
	// ListGroups returns every group that matches filter.
	ListGroups(ctx context.Context, filter GroupFilter) ([]*models.Group, error)

	// GetGroup retrieves a group by its ID.
	// Returns an error wrapping ErrNotFound if the group does not exist.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// CreateGroup validates and persists a new group.
	// The ID and CreatedAt fields are populated when empty.
	// Returns an error wrapping ErrDuplicateID if the ID is taken.
	CreateGroup(ctx context.Context, group *models.Group) error

	// ReplaceGroup shallow-merges patch into the stored group and returns the result.
	// Returns an error wrapping ErrNotFound if the group does not exist.
	ReplaceGroup(ctx context.Context, groupID string, patch models.GroupPatch) (*models.Group, error)

	// DeleteGroup removes a group. Expenses referencing it are left alone.
	// Returns an error wrapping ErrNotFound if the group does not exist.
	DeleteGroup(ctx context.Context, groupID string) error
}

// ExpenseStore holds the Expenses collection.
//
// Expenses are listed by Date, then ID.
type ExpenseStore interface {
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]*models.Expense, error)
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	CreateExpense(ctx context.Context, expense *models.Expense) error
	ReplaceExpense(ctx context.Context, expenseID string, patch models.ExpensePatch) (*models.Expense, error)
	DeleteExpense(ctx context.Context, expenseID string) error
}

// Store defines the repository used by the services.
// This abstraction allows swapping storage backends (memory, SQLite, MongoDB)
// without changing the service layer.
type Store interface {
	GroupStore
	ExpenseStore

	// Close releases any resources held by the store.
	Close() error
}

// PrepareGroup fills in generated fields and validates a group before it is stored.
func PrepareGroup(g *models.Group) error {
	if g.ID == "" {
		g.ID = models.NewID()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	g.CreatedAt = Timestamp(g.CreatedAt)
	g.TotalExpenses = decimal.Zero
	return g.Validate()
}

// PrepareExpense fills in generated fields and validates an expense before it is stored.
func PrepareExpense(e *models.Expense) error {
	if e.ID == "" {
		e.ID = models.NewID()
	}
	e.Date = Timestamp(e.Date)
	return e.Validate()
}

// MergeGroup applies patch to current and validates the result.
func MergeGroup(current *models.Group, patch models.GroupPatch) (*models.Group, error) {
	updated := patch.Apply(current)
	updated.CreatedAt = Timestamp(updated.CreatedAt)
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	return updated, nil
}

// MergeExpense applies patch to current and validates the result.
func MergeExpense(current *models.Expense, patch models.ExpensePatch) (*models.Expense, error) {
	updated := patch.Apply(current)
	updated.Date = Timestamp(updated.Date)
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	return updated, nil
}

// Timestamp returns t in UTC at millisecond precision, the coarsest
// precision of the supported backends.
func Timestamp(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC().Truncate(time.Millisecond)
}

// SortGroups orders groups by CreatedAt, then ID.
func SortGroups(groups []*models.Group) {
	slices.SortFunc(groups, func(a, b *models.Group) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// SortExpenses orders expenses by Date, then ID.
func SortExpenses(expenses []*models.Expense) {
	slices.SortFunc(expenses, func(a, b *models.Expense) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
