// Package memory provides an in-process implementation of the storage.Store interface.
//
// A Store is an explicit state container: create it empty with New or
// seeded with NewSeeded, hand it to whatever needs it, and drop it when done.
// Every value crossing the boundary is copied, so callers only ever hold
// snapshots. Writes are last-write-wins.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/mmynk/splitshare/internal/models"
	"github.com/mmynk/splitshare/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store keeps groups and expenses in maps keyed by ID.
type Store struct {
	mu       sync.RWMutex
	groups   map[string]*models.Group
	expenses map[string]*models.Expense
}

// New returns an empty store.
func New() *Store {
	return &Store{
		groups:   make(map[string]*models.Group),
		expenses: make(map[string]*models.Expense),
	}
}

// NewSeeded returns a store holding the given entities.
// Entities are validated exactly as CreateGroup and CreateExpense would, and
// every expense must reference a seeded group whose members include the
// payer and each split member.
func NewSeeded(groups []models.Group, expenses []models.Expense) (*Store, error) {
	s := New()
	ctx := context.Background()
	for i := range groups {
		g := groups[i]
		if err := s.CreateGroup(ctx, &g); err != nil {
			return nil, fmt.Errorf("seed group %d: %w", i, err)
		}
	}
	for i := range expenses {
		e := expenses[i]
		g, ok := s.groups[e.GroupID]
		if !ok {
			return nil, fmt.Errorf("seed expense %d: %w", i, storage.NotFound("group", e.GroupID))
		}
		if err := g.CheckExpense(&e); err != nil {
			return nil, fmt.Errorf("seed expense %d: %w", i, err)
		}
		if err := s.CreateExpense(ctx, &e); err != nil {
			return nil, fmt.Errorf("seed expense %d: %w", i, err)
		}
	}
	return s, nil
}

// Close is a no-op; the store lives until it is garbage collected.
func (s *Store) Close() error {
	return nil
}

// ListGroups returns copies of all groups matching filter.
func (s *Store) ListGroups(ctx context.Context, filter storage.GroupFilter) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Group, 0, len(s.groups))
	for _, g := range s.groups {
		if filter.Match(g) {
			out = append(out, g.Clone())
		}
	}
	storage.SortGroups(out)
	return out, nil
}

// GetGroup returns a copy of the group with the given ID.
func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[groupID]
	if !ok {
		return nil, storage.NotFound("group", groupID)
	}
	return g.Clone(), nil
}

// CreateGroup stores a copy of group.
func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	if err := storage.PrepareGroup(group); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.groups[group.ID]; exists {
		return storage.DuplicateID("group", group.ID)
	}
	s.groups[group.ID] = group.Clone()
	return nil
}

// ReplaceGroup merges patch into the stored group.
func (s *Store) ReplaceGroup(ctx context.Context, groupID string, patch models.GroupPatch) (*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.groups[groupID]
	if !ok {
		return nil, storage.NotFound("group", groupID)
	}
	updated, err := storage.MergeGroup(current, patch)
	if err != nil {
		return nil, err
	}
	s.groups[groupID] = updated
	return updated.Clone(), nil
}

// DeleteGroup removes the group. Its expenses stay.
func (s *Store) DeleteGroup(ctx context.Context, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[groupID]; !ok {
		return storage.NotFound("group", groupID)
	}
	delete(s.groups, groupID)
	return nil
}

// ListExpenses returns copies of all expenses matching filter.
func (s *Store) ListExpenses(ctx context.Context, filter storage.ExpenseFilter) ([]*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		if filter.Match(e) {
			out = append(out, e.Clone())
		}
	}
	storage.SortExpenses(out)
	return out, nil
}

// GetExpense returns a copy of the expense with the given ID.
func (s *Store) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.expenses[expenseID]
	if !ok {
		return nil, storage.NotFound("expense", expenseID)
	}
	return e.Clone(), nil
}

// CreateExpense stores a copy of expense.
func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if err := storage.PrepareExpense(expense); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.expenses[expense.ID]; exists {
		return storage.DuplicateID("expense", expense.ID)
	}
	s.expenses[expense.ID] = expense.Clone()
	return nil
}

// ReplaceExpense merges patch into the stored expense.
func (s *Store) ReplaceExpense(ctx context.Context, expenseID string, patch models.ExpensePatch) (*models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.expenses[expenseID]
	if !ok {
		return nil, storage.NotFound("expense", expenseID)
	}
	updated, err := storage.MergeExpense(current, patch)
	if err != nil {
		return nil, err
	}
	s.expenses[expenseID] = updated
	return updated.Clone(), nil
}

// DeleteExpense removes the expense.
func (s *Store) DeleteExpense(ctx context.Context, expenseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expenses[expenseID]; !ok {
		return storage.NotFound("expense", expenseID)
	}
	delete(s.expenses, expenseID)
	return nil
}
