package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/splitshare/internal/models"
	"github.com/mmynk/splitshare/internal/storage"
)

const groupColumns = "id, name, description, created_by, created_at, cover_image"

// CreateGroup persists a new group and its members.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if err := storage.PrepareGroup(group); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	found, err := exists(ctx, tx, "groups", group.ID)
	if err != nil {
		return err
	}
	if found {
		return storage.DuplicateID("group", group.ID)
	}

	if err := writeGroup(ctx, tx, group, true); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID, including its members.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return getGroup(ctx, s.db, groupID)
}

// ListGroups retrieves all groups matching filter.
func (s *SQLiteStore) ListGroups(ctx context.Context, filter storage.GroupFilter) ([]*models.Group, error) {
	query := "SELECT " + groupColumns + " FROM groups"
	var args []any
	if filter.MemberID != "" {
		query += " WHERE id IN (SELECT group_id FROM group_members WHERE member_id = ?)"
		args = append(args, filter.MemberID)
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	if err := loadMembers(ctx, s.db, groups); err != nil {
		return nil, err
	}

	// Search is applied in Go so that matching is identical across backends.
	out := groups[:0]
	for _, g := range groups {
		if filter.Match(g) {
			out = append(out, g)
		}
	}
	return out, nil
}

// ReplaceGroup merges patch into the stored group and rewrites it.
func (s *SQLiteStore) ReplaceGroup(ctx context.Context, groupID string, patch models.GroupPatch) (*models.Group, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := getGroup(ctx, tx, groupID)
	if err != nil {
		return nil, err
	}
	updated, err := storage.MergeGroup(current, patch)
	if err != nil {
		return nil, err
	}

	if err := writeGroup(ctx, tx, updated, false); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return updated, nil
}

// DeleteGroup removes a group and its member rows. Expenses are untouched.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if n == 0 {
		return storage.NotFound("group", groupID)
	}
	return nil
}

func writeGroup(ctx context.Context, tx *sql.Tx, g *models.Group, insert bool) error {
	var err error
	if insert {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO groups ("+groupColumns+") VALUES (?, ?, ?, ?, ?, ?)",
			g.ID, g.Name, g.Description, g.CreatedBy, formatTime(g.CreatedAt), g.CoverImage,
		)
	} else {
		_, err = tx.ExecContext(ctx,
			"UPDATE groups SET name = ?, description = ?, created_by = ?, created_at = ?, cover_image = ? WHERE id = ?",
			g.Name, g.Description, g.CreatedBy, formatTime(g.CreatedAt), g.CoverImage, g.ID,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to write group: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM group_members WHERE group_id = ?", g.ID); err != nil {
		return fmt.Errorf("failed to clear group members: %w", err)
	}
	for i, m := range g.Members {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO group_members (group_id, position, member_id, name, phone, avatar) VALUES (?, ?, ?, ?, ?, ?)",
			g.ID, i, m.ID, m.Name, m.Phone, m.Avatar,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
	}
	return nil
}

func getGroup(ctx context.Context, q querier, groupID string) (*models.Group, error) {
	row := q.QueryRowContext(ctx, "SELECT "+groupColumns+" FROM groups WHERE id = ?", groupID)
	g, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return nil, storage.NotFound("group", groupID)
	}
	if err != nil {
		return nil, err
	}
	if err := loadMembers(ctx, q, []*models.Group{g}); err != nil {
		return nil, err
	}
	return g, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGroup(row scanner) (*models.Group, error) {
	g := &models.Group{}
	var createdAt string
	if err := row.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedBy, &createdAt, &g.CoverImage); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan group: %w", err)
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	g.CreatedAt = t
	return g, nil
}

// loadMembers fills Members for every group with a single query.
func loadMembers(ctx context.Context, q querier, groups []*models.Group) error {
	if len(groups) == 0 {
		return nil
	}
	byID := make(map[string]*models.Group, len(groups))
	ids := make([]string, len(groups))
	for i, g := range groups {
		byID[g.ID] = g
		ids[i] = g.ID
	}

	in, args := inClause(ids)
	rows, err := q.QueryContext(ctx,
		"SELECT group_id, member_id, name, phone, avatar FROM group_members WHERE group_id IN "+in+" ORDER BY group_id, position",
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var groupID string
		var m models.Member
		if err := rows.Scan(&groupID, &m.ID, &m.Name, &m.Phone, &m.Avatar); err != nil {
			return fmt.Errorf("failed to scan group member: %w", err)
		}
		g := byID[groupID]
		g.Members = append(g.Members, m)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate group members: %w", err)
	}
	return nil
}
