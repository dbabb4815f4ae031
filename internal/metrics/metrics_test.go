package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type empty struct{}

func TestSplitRejected(t *testing.T) {
	m := New()
	m.SplitRejected("sum_mismatch")
	m.SplitRejected("sum_mismatch")
	m.SplitRejected("unknown_member")

	if got := testutil.ToFloat64(m.splitRejections.WithLabelValues("sum_mismatch")); got != 2 {
		t.Errorf("sum_mismatch = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.splitRejections.WithLabelValues("unknown_member")); got != 1 {
		t.Errorf("unknown_member = %v, want 1", got)
	}
}

func TestInterceptor(t *testing.T) {
	m := New()
	interceptor := m.Interceptor()

	ok := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return connect.NewResponse(&empty{}), nil
	}
	notFound := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("missing"))
	}

	ctx := context.Background()
	req := connect.NewRequest(&empty{})
	interceptor(ok)(ctx, req)
	interceptor(ok)(ctx, req)
	interceptor(notFound)(ctx, req)

	// Requests built outside a handler carry an empty procedure.
	if got := testutil.ToFloat64(m.requests.WithLabelValues("", "ok")); got != 2 {
		t.Errorf("ok count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("", "not_found")); got != 1 {
		t.Errorf("not_found count = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.duration); n != 1 {
		t.Errorf("duration series = %d, want 1", n)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.SplitRejected("negative_amount")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	want := `splitshare_split_rejections_total{reason="negative_amount"} 1`
	if !strings.Contains(string(body), want) {
		t.Errorf("metrics output missing %q", want)
	}
}
