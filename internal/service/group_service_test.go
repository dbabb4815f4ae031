package service

import (
	"context"
	"slices"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitshare/internal/models"
	pb "github.com/mmynk/splitshare/pkg/proto"
)

func TestCreateGroup(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	resp, err := env.groups.CreateGroup(ctx, connect.NewRequest(&pb.CreateGroupRequest{
		Name: "Goa Trip",
		Members: []models.Member{
			{ID: "alice", Name: "Alice", Phone: "+1 555 0100"},
			{Name: "Dev", Phone: "+1 555 0103"},
		},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	g := resp.Msg.Group
	if g.ID == "" {
		t.Error("expected group ID to be generated")
	}
	if g.CreatedBy != "alice" {
		t.Errorf("CreatedBy = %q, want alice", g.CreatedBy)
	}
	if g.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if len(g.Members) != 2 || g.Members[1].ID == "" {
		t.Errorf("members = %+v, want 2 with generated ID for Dev", g.Members)
	}
	if !g.TotalExpenses.IsZero() {
		t.Errorf("TotalExpenses = %s, want 0", g.TotalExpenses)
	}
}

func TestCreateGroup_Errors(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *pb.CreateGroupRequest
		want connect.Code
	}{
		{
			name: "caller not among members",
			req: &pb.CreateGroupRequest{Name: "Other", Members: []models.Member{
				{ID: "bob", Name: "Bob"},
				{ID: "carol", Name: "Carol"},
			}},
			want: connect.CodePermissionDenied,
		},
		{
			name: "missing name",
			req: &pb.CreateGroupRequest{Members: []models.Member{
				{ID: "alice", Name: "Alice"},
				{ID: "bob", Name: "Bob"},
			}},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "single member",
			req: &pb.CreateGroupRequest{Name: "Solo", Members: []models.Member{
				{ID: "alice", Name: "Alice"},
			}},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "no members",
			req:  &pb.CreateGroupRequest{Name: "Empty"},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "duplicate member",
			req: &pb.CreateGroupRequest{Name: "Twins", Members: []models.Member{
				{ID: "alice", Name: "Alice"},
				{ID: "alice", Name: "Alice again"},
			}},
			want: connect.CodeInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.groups.CreateGroup(ctx, connect.NewRequest(tt.req))
			wantCode(t, err, tt.want)
		})
	}
}

func TestGetGroup(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	created := createFlat(t, env)

	resp, err := env.groups.GetGroup(ctx, connect.NewRequest(&pb.GetGroupRequest{GroupId: created.ID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if resp.Msg.Group.Name != "Flat 4B" || len(resp.Msg.Group.Members) != 3 {
		t.Errorf("group = %+v", resp.Msg.Group)
	}

	_, err = env.groups.GetGroup(ctx, connect.NewRequest(&pb.GetGroupRequest{GroupId: "missing"}))
	wantCode(t, err, connect.CodeNotFound)

	_, err = env.groups.GetGroup(ctx, connect.NewRequest(&pb.GetGroupRequest{}))
	wantCode(t, err, connect.CodeInvalidArgument)

	_, err = env.groups.GetGroup(ctx, as("mallory", &pb.GetGroupRequest{GroupId: created.ID}))
	wantCode(t, err, connect.CodePermissionDenied)
}

func TestListGroups(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	createFlat(t, env)
	for _, name := range []string{"Goa Trip", "Office Lunch"} {
		_, err := env.groups.CreateGroup(ctx, connect.NewRequest(&pb.CreateGroupRequest{
			Name:    name,
			Members: []models.Member{{ID: "alice", Name: "Alice"}, {ID: "dev", Name: "Dev"}},
		}))
		if err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
	}
	_, err := env.groups.CreateGroup(ctx, as("bob", &pb.CreateGroupRequest{
		Name:    "Bob's Band",
		Members: []models.Member{{ID: "bob", Name: "Bob"}, {ID: "dev", Name: "Dev"}},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	tests := []struct {
		name   string
		user   string
		search string
		want   []string
	}{
		{"all of alice's groups", "alice", "", []string{"Flat 4B", "Goa Trip", "Office Lunch"}},
		{"search is case-insensitive", "alice", "GOA", []string{"Goa Trip"}},
		{"search matches description", "alice", "bills", []string{"Flat 4B"}},
		{"bob sees shared and own groups", "bob", "", []string{"Flat 4B", "Bob's Band"}},
		{"stranger sees nothing", "mallory", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := env.groups.ListGroups(ctx, as(tt.user, &pb.ListGroupsRequest{Search: tt.search}))
			if err != nil {
				t.Fatalf("ListGroups failed: %v", err)
			}
			var got []string
			for _, g := range resp.Msg.Groups {
				got = append(got, g.Name)
			}
			// groups created within the same millisecond order by ID
			slices.Sort(got)
			want := slices.Sorted(slices.Values(tt.want))
			if !slices.Equal(got, want) {
				t.Errorf("groups = %v, want %v", got, want)
			}
		})
	}
}

func TestUpdateGroup(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	created := createFlat(t, env)
	addExpense(t, env, created.ID, "Rent", "1200")

	name := "Flat 5C"
	resp, err := env.groups.UpdateGroup(ctx, connect.NewRequest(&pb.UpdateGroupRequest{
		GroupId: created.ID,
		Name:    &name,
	}))
	if err != nil {
		t.Fatalf("UpdateGroup failed: %v", err)
	}

	g := resp.Msg.Group
	if g.Name != "Flat 5C" {
		t.Errorf("Name = %q, want Flat 5C", g.Name)
	}
	if g.Description != "rent and bills" {
		t.Errorf("Description = %q, want it untouched", g.Description)
	}
	if !g.TotalExpenses.Equal(dec("1200")) {
		t.Errorf("TotalExpenses = %s, want 1200", g.TotalExpenses)
	}

	blank := "  "
	_, err = env.groups.UpdateGroup(ctx, connect.NewRequest(&pb.UpdateGroupRequest{GroupId: created.ID, Name: &blank}))
	wantCode(t, err, connect.CodeInvalidArgument)

	_, err = env.groups.UpdateGroup(ctx, connect.NewRequest(&pb.UpdateGroupRequest{GroupId: "missing", Name: &name}))
	wantCode(t, err, connect.CodeNotFound)
}

func TestDeleteGroup(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	created := createFlat(t, env)
	expense := addExpense(t, env, created.ID, "Rent", "1200")

	_, err := env.groups.DeleteGroup(ctx, connect.NewRequest(&pb.DeleteGroupRequest{GroupId: created.ID}))
	wantCode(t, err, connect.CodeFailedPrecondition)

	if _, err := env.expenses.DeleteExpense(ctx, connect.NewRequest(&pb.DeleteExpenseRequest{ExpenseId: expense.ID})); err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}
	if _, err := env.groups.DeleteGroup(ctx, connect.NewRequest(&pb.DeleteGroupRequest{GroupId: created.ID})); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}

	_, err = env.groups.GetGroup(ctx, connect.NewRequest(&pb.GetGroupRequest{GroupId: created.ID}))
	wantCode(t, err, connect.CodeNotFound)

	_, err = env.groups.DeleteGroup(ctx, connect.NewRequest(&pb.DeleteGroupRequest{GroupId: created.ID}))
	wantCode(t, err, connect.CodeNotFound)
}

func TestAddMember(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	created := createFlat(t, env)

	resp, err := env.groups.AddMember(ctx, connect.NewRequest(&pb.AddMemberRequest{
		GroupId: created.ID,
		Member:  models.Member{Name: "Dev", Phone: "+1 555 0103"},
	}))
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	members := resp.Msg.Group.Members
	if len(members) != 4 || members[3].Name != "Dev" || members[3].ID == "" {
		t.Errorf("members = %+v, want Dev appended with an ID", members)
	}

	_, err = env.groups.AddMember(ctx, connect.NewRequest(&pb.AddMemberRequest{
		GroupId: created.ID,
		Member:  models.Member{ID: "bob", Name: "Bob"},
	}))
	wantCode(t, err, connect.CodeAlreadyExists)

	_, err = env.groups.AddMember(ctx, connect.NewRequest(&pb.AddMemberRequest{
		GroupId: created.ID,
		Member:  models.Member{ID: "erin"},
	}))
	wantCode(t, err, connect.CodeInvalidArgument)
}

func TestRemoveMember(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	created := createFlat(t, env)
	addExpense(t, env, created.ID, "Pizza", "30", "alice", "bob")

	tests := []struct {
		name     string
		memberID string
		want     connect.Code
	}{
		{"creator stays", "alice", connect.CodeFailedPrecondition},
		{"member with expenses stays", "bob", connect.CodeFailedPrecondition},
		{"unknown member", "zed", connect.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.groups.RemoveMember(ctx, connect.NewRequest(&pb.RemoveMemberRequest{
				GroupId:  created.ID,
				MemberId: tt.memberID,
			}))
			wantCode(t, err, tt.want)
		})
	}

	resp, err := env.groups.RemoveMember(ctx, connect.NewRequest(&pb.RemoveMemberRequest{
		GroupId:  created.ID,
		MemberId: "carol",
	}))
	if err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	if resp.Msg.Group.HasMember("carol") || len(resp.Msg.Group.Members) != 2 {
		t.Errorf("members = %+v, want carol removed", resp.Msg.Group.Members)
	}
}

func TestGetGroupBalances(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	created := createFlat(t, env)
	addExpense(t, env, created.ID, "Groceries", "90")

	// bob pays for a taxi shared with alice
	_, err := env.expenses.CreateExpense(ctx, as("bob", &pb.CreateExpenseRequest{
		GroupId:        created.ID,
		Title:          "Taxi",
		Amount:         dec("20"),
		Category:       "Transportation",
		ParticipantIds: []string{"alice", "bob"},
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	resp, err := env.groups.GetGroupBalances(ctx, connect.NewRequest(&pb.GetGroupBalancesRequest{GroupId: created.ID}))
	if err != nil {
		t.Fatalf("GetGroupBalances failed: %v", err)
	}
	if !resp.Msg.TotalExpenses.Equal(dec("110")) {
		t.Errorf("TotalExpenses = %s, want 110", resp.Msg.TotalExpenses)
	}

	want := map[string]struct{ owed, owing, net string }{
		"alice": {"60", "10", "50"},
		"bob":   {"10", "30", "-20"},
		"carol": {"0", "30", "-30"},
	}
	if len(resp.Msg.Balances) != len(want) {
		t.Fatalf("got %d balances, want %d", len(resp.Msg.Balances), len(want))
	}
	for _, b := range resp.Msg.Balances {
		w := want[b.Member.ID]
		if !b.TotalOwed.Equal(dec(w.owed)) || !b.TotalOwing.Equal(dec(w.owing)) || !b.NetBalance.Equal(dec(w.net)) {
			t.Errorf("%s: owed=%s owing=%s net=%s, want %s/%s/%s",
				b.Member.ID, b.TotalOwed, b.TotalOwing, b.NetBalance, w.owed, w.owing, w.net)
		}
	}
}
