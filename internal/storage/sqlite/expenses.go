package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/splitshare/internal/models"
	"github.com/mmynk/splitshare/internal/storage"
)

const expenseColumns = "id, group_id, title, amount, paid_by_id, paid_by_name, paid_by_phone, paid_by_avatar, date, category, notes"

// CreateExpense persists a new expense and its split lines.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if err := storage.PrepareExpense(expense); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	found, err := exists(ctx, tx, "expenses", expense.ID)
	if err != nil {
		return err
	}
	if found {
		return storage.DuplicateID("expense", expense.ID)
	}

	if err := writeExpense(ctx, tx, expense, true); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including its split lines.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	return getExpense(ctx, s.db, expenseID)
}

// ListExpenses retrieves all expenses matching filter, ordered by date.
func (s *SQLiteStore) ListExpenses(ctx context.Context, filter storage.ExpenseFilter) ([]*models.Expense, error) {
	query := "SELECT " + expenseColumns + " FROM expenses WHERE 1 = 1"
	var args []any
	if filter.GroupID != "" {
		query += " AND group_id = ?"
		args = append(args, filter.GroupID)
	}
	if filter.MemberID != "" {
		query += " AND (paid_by_id = ? OR id IN (SELECT expense_id FROM split_lines WHERE member_id = ?))"
		args = append(args, filter.MemberID, filter.MemberID)
	}
	query += " ORDER BY date, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]*models.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	if err := loadSplitLines(ctx, s.db, expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

// ReplaceExpense merges patch into the stored expense and rewrites it.
func (s *SQLiteStore) ReplaceExpense(ctx context.Context, expenseID string, patch models.ExpensePatch) (*models.Expense, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := getExpense(ctx, tx, expenseID)
	if err != nil {
		return nil, err
	}
	updated, err := storage.MergeExpense(current, patch)
	if err != nil {
		return nil, err
	}

	if err := writeExpense(ctx, tx, updated, false); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return updated, nil
}

// DeleteExpense removes an expense and its split lines.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n == 0 {
		return storage.NotFound("expense", expenseID)
	}
	return nil
}

func writeExpense(ctx context.Context, tx *sql.Tx, e *models.Expense, insert bool) error {
	var err error
	if insert {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			e.ID, e.GroupID, e.Title, e.Amount.String(),
			e.PaidBy.ID, e.PaidBy.Name, e.PaidBy.Phone, e.PaidBy.Avatar,
			formatTime(e.Date), e.Category, e.Notes,
		)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE expenses SET group_id = ?, title = ?, amount = ?, paid_by_id = ?, paid_by_name = ?,
			 paid_by_phone = ?, paid_by_avatar = ?, date = ?, category = ?, notes = ? WHERE id = ?`,
			e.GroupID, e.Title, e.Amount.String(), e.PaidBy.ID, e.PaidBy.Name,
			e.PaidBy.Phone, e.PaidBy.Avatar, formatTime(e.Date), e.Category, e.Notes, e.ID,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to write expense: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM split_lines WHERE expense_id = ?", e.ID); err != nil {
		return fmt.Errorf("failed to clear split lines: %w", err)
	}
	for i, l := range e.SplitWith {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO split_lines (expense_id, position, member_id, name, avatar, amount, paid) VALUES (?, ?, ?, ?, ?, ?, ?)",
			e.ID, i, l.MemberID, l.Name, l.Avatar, l.Amount.String(), l.Paid,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split line: %w", err)
		}
	}
	return nil
}

func getExpense(ctx context.Context, q querier, expenseID string) (*models.Expense, error) {
	row := q.QueryRowContext(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE id = ?", expenseID)
	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, storage.NotFound("expense", expenseID)
	}
	if err != nil {
		return nil, err
	}
	if err := loadSplitLines(ctx, q, []*models.Expense{e}); err != nil {
		return nil, err
	}
	return e, nil
}

func scanExpense(row scanner) (*models.Expense, error) {
	e := &models.Expense{}
	var amount, date string
	err := row.Scan(&e.ID, &e.GroupID, &e.Title, &amount,
		&e.PaidBy.ID, &e.PaidBy.Name, &e.PaidBy.Phone, &e.PaidBy.Avatar,
		&date, &e.Category, &e.Notes)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan expense: %w", err)
	}

	if e.Amount, err = parseDecimal(amount); err != nil {
		return nil, err
	}
	if e.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	return e, nil
}

// loadSplitLines fills SplitWith for every expense with a single query.
func loadSplitLines(ctx context.Context, q querier, expenses []*models.Expense) error {
	if len(expenses) == 0 {
		return nil
	}
	byID := make(map[string]*models.Expense, len(expenses))
	ids := make([]string, len(expenses))
	for i, e := range expenses {
		byID[e.ID] = e
		ids[i] = e.ID
	}

	in, args := inClause(ids)
	rows, err := q.QueryContext(ctx,
		"SELECT expense_id, member_id, name, avatar, amount, paid FROM split_lines WHERE expense_id IN "+in+" ORDER BY expense_id, position",
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to get split lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var expenseID, amount string
		var l models.SplitLine
		if err := rows.Scan(&expenseID, &l.MemberID, &l.Name, &l.Avatar, &amount, &l.Paid); err != nil {
			return fmt.Errorf("failed to scan split line: %w", err)
		}
		if l.Amount, err = parseDecimal(amount); err != nil {
			return err
		}
		e := byID[expenseID]
		e.SplitWith = append(e.SplitWith, l)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate split lines: %w", err)
	}
	return nil
}
