package protoconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	pb "github.com/mmynk/splitshare/pkg/proto"
)

// GroupServiceName is the fully-qualified name of the GroupService service.
const GroupServiceName = "splitshare.v1.GroupService"

// Procedure paths of GroupService.
const (
	GroupServiceCreateGroupProcedure      = "/splitshare.v1.GroupService/CreateGroup"
	GroupServiceGetGroupProcedure         = "/splitshare.v1.GroupService/GetGroup"
	GroupServiceListGroupsProcedure       = "/splitshare.v1.GroupService/ListGroups"
	GroupServiceUpdateGroupProcedure      = "/splitshare.v1.GroupService/UpdateGroup"
	GroupServiceDeleteGroupProcedure      = "/splitshare.v1.GroupService/DeleteGroup"
	GroupServiceAddMemberProcedure        = "/splitshare.v1.GroupService/AddMember"
	GroupServiceRemoveMemberProcedure     = "/splitshare.v1.GroupService/RemoveMember"
	GroupServiceGetGroupBalancesProcedure = "/splitshare.v1.GroupService/GetGroupBalances"
)

// GroupServiceHandler is implemented by the group service.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[pb.CreateGroupRequest]) (*connect.Response[pb.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[pb.GetGroupRequest]) (*connect.Response[pb.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[pb.ListGroupsRequest]) (*connect.Response[pb.ListGroupsResponse], error)
	UpdateGroup(context.Context, *connect.Request[pb.UpdateGroupRequest]) (*connect.Response[pb.UpdateGroupResponse], error)
	DeleteGroup(context.Context, *connect.Request[pb.DeleteGroupRequest]) (*connect.Response[pb.DeleteGroupResponse], error)
	AddMember(context.Context, *connect.Request[pb.AddMemberRequest]) (*connect.Response[pb.AddMemberResponse], error)
	RemoveMember(context.Context, *connect.Request[pb.RemoveMemberRequest]) (*connect.Response[pb.RemoveMemberResponse], error)
	GetGroupBalances(context.Context, *connect.Request[pb.GetGroupBalancesRequest]) (*connect.Response[pb.GetGroupBalancesResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler for every GroupService
// procedure. It returns the path to mount the handler on.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	mux := http.NewServeMux()
	mux.Handle(GroupServiceCreateGroupProcedure, connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...))
	mux.Handle(GroupServiceGetGroupProcedure, connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...))
	mux.Handle(GroupServiceListGroupsProcedure, connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...))
	mux.Handle(GroupServiceUpdateGroupProcedure, connect.NewUnaryHandler(GroupServiceUpdateGroupProcedure, svc.UpdateGroup, opts...))
	mux.Handle(GroupServiceDeleteGroupProcedure, connect.NewUnaryHandler(GroupServiceDeleteGroupProcedure, svc.DeleteGroup, opts...))
	mux.Handle(GroupServiceAddMemberProcedure, connect.NewUnaryHandler(GroupServiceAddMemberProcedure, svc.AddMember, opts...))
	mux.Handle(GroupServiceRemoveMemberProcedure, connect.NewUnaryHandler(GroupServiceRemoveMemberProcedure, svc.RemoveMember, opts...))
	mux.Handle(GroupServiceGetGroupBalancesProcedure, connect.NewUnaryHandler(GroupServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opts...))
	return "/" + GroupServiceName + "/", mux
}

// GroupServiceClient calls GroupService over Connect.
type GroupServiceClient interface {
	CreateGroup(context.Context, *connect.Request[pb.CreateGroupRequest]) (*connect.Response[pb.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[pb.GetGroupRequest]) (*connect.Response[pb.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[pb.ListGroupsRequest]) (*connect.Response[pb.ListGroupsResponse], error)
	UpdateGroup(context.Context, *connect.Request[pb.UpdateGroupRequest]) (*connect.Response[pb.UpdateGroupResponse], error)
	DeleteGroup(context.Context, *connect.Request[pb.DeleteGroupRequest]) (*connect.Response[pb.DeleteGroupResponse], error)
	AddMember(context.Context, *connect.Request[pb.AddMemberRequest]) (*connect.Response[pb.AddMemberResponse], error)
	RemoveMember(context.Context, *connect.Request[pb.RemoveMemberRequest]) (*connect.Response[pb.RemoveMemberResponse], error)
	GetGroupBalances(context.Context, *connect.Request[pb.GetGroupBalancesRequest]) (*connect.Response[pb.GetGroupBalancesResponse], error)
}

// NewGroupServiceClient returns a client for the GroupService served at baseURL.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &groupServiceClient{
		createGroup:      connect.NewClient[pb.CreateGroupRequest, pb.CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		getGroup:         connect.NewClient[pb.GetGroupRequest, pb.GetGroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		listGroups:       connect.NewClient[pb.ListGroupsRequest, pb.ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...),
		updateGroup:      connect.NewClient[pb.UpdateGroupRequest, pb.UpdateGroupResponse](httpClient, baseURL+GroupServiceUpdateGroupProcedure, opts...),
		deleteGroup:      connect.NewClient[pb.DeleteGroupRequest, pb.DeleteGroupResponse](httpClient, baseURL+GroupServiceDeleteGroupProcedure, opts...),
		addMember:        connect.NewClient[pb.AddMemberRequest, pb.AddMemberResponse](httpClient, baseURL+GroupServiceAddMemberProcedure, opts...),
		removeMember:     connect.NewClient[pb.RemoveMemberRequest, pb.RemoveMemberResponse](httpClient, baseURL+GroupServiceRemoveMemberProcedure, opts...),
		getGroupBalances: connect.NewClient[pb.GetGroupBalancesRequest, pb.GetGroupBalancesResponse](httpClient, baseURL+GroupServiceGetGroupBalancesProcedure, opts...),
	}
}

type groupServiceClient struct {
	createGroup      *connect.Client[pb.CreateGroupRequest, pb.CreateGroupResponse]
	getGroup         *connect.Client[pb.GetGroupRequest, pb.GetGroupResponse]
	listGroups       *connect.Client[pb.ListGroupsRequest, pb.ListGroupsResponse]
	updateGroup      *connect.Client[pb.UpdateGroupRequest, pb.UpdateGroupResponse]
	deleteGroup      *connect.Client[pb.DeleteGroupRequest, pb.DeleteGroupResponse]
	addMember        *connect.Client[pb.AddMemberRequest, pb.AddMemberResponse]
	removeMember     *connect.Client[pb.RemoveMemberRequest, pb.RemoveMemberResponse]
	getGroupBalances *connect.Client[pb.GetGroupBalancesRequest, pb.GetGroupBalancesResponse]
}

func (c *groupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[pb.CreateGroupRequest]) (*connect.Response[pb.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroup(ctx context.Context, req *connect.Request[pb.GetGroupRequest]) (*connect.Response[pb.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListGroups(ctx context.Context, req *connect.Request[pb.ListGroupsRequest]) (*connect.Response[pb.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *groupServiceClient) UpdateGroup(ctx context.Context, req *connect.Request[pb.UpdateGroupRequest]) (*connect.Response[pb.UpdateGroupResponse], error) {
	return c.updateGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) DeleteGroup(ctx context.Context, req *connect.Request[pb.DeleteGroupRequest]) (*connect.Response[pb.DeleteGroupResponse], error) {
	return c.deleteGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) AddMember(ctx context.Context, req *connect.Request[pb.AddMemberRequest]) (*connect.Response[pb.AddMemberResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

func (c *groupServiceClient) RemoveMember(ctx context.Context, req *connect.Request[pb.RemoveMemberRequest]) (*connect.Response[pb.RemoveMemberResponse], error) {
	return c.removeMember.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[pb.GetGroupBalancesRequest]) (*connect.Response[pb.GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}

// UnimplementedGroupServiceHandler answers every GroupService procedure with CodeUnimplemented.
type UnimplementedGroupServiceHandler struct{}

func (UnimplementedGroupServiceHandler) CreateGroup(context.Context, *connect.Request[pb.CreateGroupRequest]) (*connect.Response[pb.CreateGroupResponse], error) {
	return nil, unimplemented(GroupServiceCreateGroupProcedure)
}

func (UnimplementedGroupServiceHandler) GetGroup(context.Context, *connect.Request[pb.GetGroupRequest]) (*connect.Response[pb.GetGroupResponse], error) {
	return nil, unimplemented(GroupServiceGetGroupProcedure)
}

func (UnimplementedGroupServiceHandler) ListGroups(context.Context, *connect.Request[pb.ListGroupsRequest]) (*connect.Response[pb.ListGroupsResponse], error) {
	return nil, unimplemented(GroupServiceListGroupsProcedure)
}

func (UnimplementedGroupServiceHandler) UpdateGroup(context.Context, *connect.Request[pb.UpdateGroupRequest]) (*connect.Response[pb.UpdateGroupResponse], error) {
	return nil, unimplemented(GroupServiceUpdateGroupProcedure)
}

func (UnimplementedGroupServiceHandler) DeleteGroup(context.Context, *connect.Request[pb.DeleteGroupRequest]) (*connect.Response[pb.DeleteGroupResponse], error) {
	return nil, unimplemented(GroupServiceDeleteGroupProcedure)
}

func (UnimplementedGroupServiceHandler) AddMember(context.Context, *connect.Request[pb.AddMemberRequest]) (*connect.Response[pb.AddMemberResponse], error) {
	return nil, unimplemented(GroupServiceAddMemberProcedure)
}

func (UnimplementedGroupServiceHandler) RemoveMember(context.Context, *connect.Request[pb.RemoveMemberRequest]) (*connect.Response[pb.RemoveMemberResponse], error) {
	return nil, unimplemented(GroupServiceRemoveMemberProcedure)
}

func (UnimplementedGroupServiceHandler) GetGroupBalances(context.Context, *connect.Request[pb.GetGroupBalancesRequest]) (*connect.Response[pb.GetGroupBalancesResponse], error) {
	return nil, unimplemented(GroupServiceGetGroupBalancesProcedure)
}

func unimplemented(procedure string) error {
	return connect.NewError(connect.CodeUnimplemented, errors.New(procedure+" is not implemented"))
}
