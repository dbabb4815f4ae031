package service

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/splitshare/internal/calculator"
	"github.com/mmynk/splitshare/internal/middleware"
	"github.com/mmynk/splitshare/internal/models"
	"github.com/mmynk/splitshare/internal/storage"
)

// currentUser returns the authenticated user ID from ctx.
func currentUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errAuthRequired)
	}
	return userID, nil
}

// memberGroup loads a group and checks that userID belongs to it.
func memberGroup(ctx context.Context, store storage.GroupStore, groupID, userID string) (*models.Group, error) {
	if groupID == "" {
		return nil, invalidArgument("group_id required")
	}
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if !group.HasMember(userID) {
		return nil, connect.NewError(connect.CodePermissionDenied, errNotMember)
	}
	return group, nil
}

// groupExpenses lists a group's expenses as values, the form the calculator takes.
func groupExpenses(ctx context.Context, store storage.ExpenseStore, filter storage.ExpenseFilter) ([]models.Expense, error) {
	list, err := store.ListExpenses(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]models.Expense, len(list))
	for i, e := range list {
		out[i] = *e
	}
	return out, nil
}

// withTotals fills the derived TotalExpenses of each group.
func withTotals(ctx context.Context, store storage.ExpenseStore, groups ...*models.Group) error {
	for _, g := range groups {
		expenses, err := groupExpenses(ctx, store, storage.ExpenseFilter{GroupID: g.ID})
		if err != nil {
			return err
		}
		g.TotalExpenses = calculator.GroupTotal(expenses, g.ID)
	}
	return nil
}
