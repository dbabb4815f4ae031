package protoconnect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"

	pb "github.com/mmynk/splitshare/pkg/proto"
)

func TestJSONCodec_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "known fields", body: `{"groupId":"g1"}`, want: "g1"},
		{name: "empty body", body: "", want: ""},
		{name: "whitespace body", body: " \n", want: ""},
		{name: "unknown field", body: `{"groupId":"g1","group_id":"g2"}`, wantErr: true},
		{name: "malformed", body: `{"groupId":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var msg pb.GetGroupRequest
			err := jsonCodec{}.Unmarshal([]byte(tt.body), &msg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && msg.GroupId != tt.want {
				t.Errorf("GroupId = %q, want %q", msg.GroupId, tt.want)
			}
		})
	}
}

func TestJSONCodec_AmountsAreNumbers(t *testing.T) {
	var msg pb.PreviewSplitRequest
	if err := (jsonCodec{}).Unmarshal([]byte(`{"groupId":"g1","amount":12.5}`), &msg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	out, err := jsonCodec{}.Marshal(&msg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(out), `"amount":12.5`) {
		t.Errorf("Marshal() = %s, want amount as a JSON number", out)
	}
}

func TestUnimplementedHandlers(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle(NewGroupServiceHandler(UnimplementedGroupServiceHandler{}))
	mux.Handle(NewExpenseServiceHandler(UnimplementedExpenseServiceHandler{}))
	server := httptest.NewServer(mux)
	defer server.Close()

	ctx := context.Background()
	_, err := NewGroupServiceClient(http.DefaultClient, server.URL).
		GetGroup(ctx, connect.NewRequest(&pb.GetGroupRequest{GroupId: "g1"}))
	if connect.CodeOf(err) != connect.CodeUnimplemented {
		t.Errorf("GetGroup error = %v, want unimplemented", err)
	}

	_, err = NewExpenseServiceClient(http.DefaultClient, server.URL+"/").
		GetDashboard(ctx, connect.NewRequest(&pb.GetDashboardRequest{}))
	if connect.CodeOf(err) != connect.CodeUnimplemented {
		t.Errorf("GetDashboard error = %v, want unimplemented", err)
	}
}

func TestHandler_RejectsUnknownFields(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle(NewGroupServiceHandler(UnimplementedGroupServiceHandler{}))
	server := httptest.NewServer(mux)
	defer server.Close()

	body := strings.NewReader(`{"groupId":"g1","colour":"red"}`)
	resp, err := http.Post(server.URL+GroupServiceGetGroupProcedure, "application/json", body)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}
