package service

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/mmynk/splitshare/internal/calculator"
	"github.com/mmynk/splitshare/internal/models"
	"github.com/mmynk/splitshare/internal/storage"
)

var (
	// ErrGroupHasExpenses is returned when deleting a group that still has expenses.
	ErrGroupHasExpenses = errors.New("group still has expenses")
	// ErrCannotRemoveCreator is returned when removing a group's creator.
	ErrCannotRemoveCreator = errors.New("the group creator cannot be removed")
	// ErrMemberHasExpenses is returned when removing a member who paid for
	// or shares in one of the group's expenses.
	ErrMemberHasExpenses = errors.New("member is part of existing expenses")
	// ErrMemberExists is returned when adding a member that is already in the group.
	ErrMemberExists = errors.New("member is already in the group")

	errAuthRequired = errors.New("authentication required")
	errNotMember    = errors.New("you must be a member of this group")
)

// toConnectError maps domain and storage errors onto Connect codes.
// Errors that are already *connect.Error pass through unchanged.
func toConnectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	var splitErr *calculator.SplitError
	var validationErr *models.ValidationError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrDuplicateID), errors.Is(err, ErrMemberExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.As(err, &splitErr), errors.As(err, &validationErr):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, ErrGroupHasExpenses),
		errors.Is(err, ErrCannotRemoveCreator),
		errors.Is(err, ErrMemberHasExpenses):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func invalidArgument(format string, args ...any) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}
