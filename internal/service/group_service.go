package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"connectrpc.com/connect"

	"github.com/mmynk/splitshare/internal/calculator"
	"github.com/mmynk/splitshare/internal/models"
	"github.com/mmynk/splitshare/internal/storage"
	pb "github.com/mmynk/splitshare/pkg/proto"
	"github.com/mmynk/splitshare/pkg/proto/protoconnect"
)

// GroupService implements the Connect GroupService
type GroupService struct {
	protoconnect.UnimplementedGroupServiceHandler
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// minGroupMembers applies at creation only. RemoveMember may shrink a group further.
const minGroupMembers = 2

// CreateGroup creates a new group. The caller must be one of the members
// and is recorded as the creator.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[pb.CreateGroupRequest]) (*connect.Response[pb.CreateGroupResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	members := slices.Clone(req.Msg.Members)
	for i := range members {
		if members[i].ID == "" {
			members[i].ID = models.NewID()
		}
	}

	group := &models.Group{
		Name:        req.Msg.Name,
		Description: req.Msg.Description,
		CoverImage:  req.Msg.CoverImage,
		Members:     members,
		CreatedBy:   userID,
	}
	if len(members) < minGroupMembers {
		return nil, invalidArgument("a group needs at least %d members, got %d", minGroupMembers, len(members))
	}
	if !group.HasMember(userID) {
		return nil, connect.NewError(connect.CodePermissionDenied, fmt.Errorf("you must be a member of the group you create"))
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group created", "group_id", group.ID)

	return connect.NewResponse(&pb.CreateGroupResponse{Group: group}), nil
}

// GetGroup retrieves a group by ID, with its current expense total.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[pb.GetGroupRequest]) (*connect.Response[pb.GetGroupResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupId)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupId, userID)
	if err != nil {
		return nil, err
	}
	if err := withTotals(ctx, s.store, group); err != nil {
		slog.Error("GetGroup failed - could not total expenses", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&pb.GetGroupResponse{Group: group}), nil
}

// ListGroups returns the caller's groups, optionally filtered by a search term.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[pb.ListGroupsRequest]) (*connect.Response[pb.ListGroupsResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListGroups request received", "search", req.Msg.Search)

	groups, err := s.store.ListGroups(ctx, storage.GroupFilter{Search: req.Msg.Search, MemberID: userID})
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}
	if err := withTotals(ctx, s.store, groups...); err != nil {
		slog.Error("ListGroups failed - could not total expenses", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("ListGroups successful", "count", len(groups))

	return connect.NewResponse(&pb.ListGroupsResponse{Groups: groups}), nil
}

// UpdateGroup changes a group's name, description or cover image.
func (s *GroupService) UpdateGroup(ctx context.Context, req *connect.Request[pb.UpdateGroupRequest]) (*connect.Response[pb.UpdateGroupResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateGroup request received", "group_id", req.Msg.GroupId)

	if _, err := memberGroup(ctx, s.store, req.Msg.GroupId, userID); err != nil {
		return nil, err
	}

	updated, err := s.store.ReplaceGroup(ctx, req.Msg.GroupId, models.GroupPatch{
		Name:        req.Msg.Name,
		Description: req.Msg.Description,
		CoverImage:  req.Msg.CoverImage,
	})
	if err != nil {
		slog.Error("UpdateGroup failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, toConnectError(err)
	}
	if err := withTotals(ctx, s.store, updated); err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Group updated", "group_id", updated.ID)

	return connect.NewResponse(&pb.UpdateGroupResponse{Group: updated}), nil
}

// DeleteGroup removes a group. Groups that still have expenses cannot be deleted.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[pb.DeleteGroupRequest]) (*connect.Response[pb.DeleteGroupResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupId)

	if _, err := memberGroup(ctx, s.store, req.Msg.GroupId, userID); err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpenses(ctx, storage.ExpenseFilter{GroupID: req.Msg.GroupId})
	if err != nil {
		return nil, toConnectError(err)
	}
	if len(expenses) > 0 {
		slog.Warn("DeleteGroup refused", "group_id", req.Msg.GroupId, "expenses_count", len(expenses))
		return nil, toConnectError(fmt.Errorf("%w: %d remaining", ErrGroupHasExpenses, len(expenses)))
	}

	if err := s.store.DeleteGroup(ctx, req.Msg.GroupId); err != nil {
		slog.Error("DeleteGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group deleted", "group_id", req.Msg.GroupId)

	return connect.NewResponse(&pb.DeleteGroupResponse{}), nil
}

// AddMember appends a member to a group. A member without an ID gets one.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[pb.AddMemberRequest]) (*connect.Response[pb.AddMemberResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("AddMember request received", "group_id", req.Msg.GroupId, "member_id", req.Msg.Member.ID)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupId, userID)
	if err != nil {
		return nil, err
	}

	member := req.Msg.Member
	if member.ID == "" {
		member.ID = models.NewID()
	}
	if group.HasMember(member.ID) {
		return nil, toConnectError(fmt.Errorf("%w: %s", ErrMemberExists, member.ID))
	}

	members := append(slices.Clone(group.Members), member)
	updated, err := s.store.ReplaceGroup(ctx, group.ID, models.GroupPatch{Members: &members})
	if err != nil {
		slog.Error("AddMember failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}
	if err := withTotals(ctx, s.store, updated); err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Member added", "group_id", group.ID, "member_id", member.ID)

	return connect.NewResponse(&pb.AddMemberResponse{Group: updated}), nil
}

// RemoveMember drops a member from a group. The creator and anyone who
// appears in one of the group's expenses stay.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[pb.RemoveMemberRequest]) (*connect.Response[pb.RemoveMemberResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	memberID := req.Msg.MemberId
	slog.Info("RemoveMember request received", "group_id", req.Msg.GroupId, "member_id", memberID)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupId, userID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(memberID) {
		return nil, toConnectError(storage.NotFound("member", memberID))
	}
	if memberID == group.CreatedBy {
		return nil, toConnectError(ErrCannotRemoveCreator)
	}

	involved, err := s.store.ListExpenses(ctx, storage.ExpenseFilter{GroupID: group.ID, MemberID: memberID})
	if err != nil {
		return nil, toConnectError(err)
	}
	if len(involved) > 0 {
		return nil, toConnectError(fmt.Errorf("%w: %s appears in %d", ErrMemberHasExpenses, memberID, len(involved)))
	}

	members := slices.DeleteFunc(slices.Clone(group.Members), func(m models.Member) bool {
		return m.ID == memberID
	})
	updated, err := s.store.ReplaceGroup(ctx, group.ID, models.GroupPatch{Members: &members})
	if err != nil {
		slog.Error("RemoveMember failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}
	if err := withTotals(ctx, s.store, updated); err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Member removed", "group_id", group.ID, "member_id", memberID)

	return connect.NewResponse(&pb.RemoveMemberResponse{Group: updated}), nil
}

// GetGroupBalances computes every member's balance across the group's expenses.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[pb.GetGroupBalancesRequest]) (*connect.Response[pb.GetGroupBalancesResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	groupID := req.Msg.GroupId
	slog.Info("GetGroupBalances request received", "group_id", groupID)

	group, err := memberGroup(ctx, s.store, groupID, userID)
	if err != nil {
		return nil, err
	}

	expenses, err := groupExpenses(ctx, s.store, storage.ExpenseFilter{GroupID: groupID})
	if err != nil {
		slog.Error("GetGroupBalances failed - could not list expenses", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}

	balances := calculator.MemberBalances(*group, expenses)

	slog.Info("GetGroupBalances successful",
		"group_id", groupID,
		"expenses_count", len(expenses),
		"members_count", len(balances),
	)

	return connect.NewResponse(&pb.GetGroupBalancesResponse{
		Balances:      balances,
		TotalExpenses: calculator.GroupTotal(expenses, groupID),
	}), nil
}
