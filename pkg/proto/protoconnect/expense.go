package protoconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	pb "github.com/mmynk/splitshare/pkg/proto"
)

// ExpenseServiceName is the fully-qualified name of the ExpenseService service.
const ExpenseServiceName = "splitshare.v1.ExpenseService"

// Procedure paths of ExpenseService.
const (
	ExpenseServicePreviewSplitProcedure      = "/splitshare.v1.ExpenseService/PreviewSplit"
	ExpenseServiceCreateExpenseProcedure     = "/splitshare.v1.ExpenseService/CreateExpense"
	ExpenseServiceGetExpenseProcedure        = "/splitshare.v1.ExpenseService/GetExpense"
	ExpenseServiceListExpensesProcedure      = "/splitshare.v1.ExpenseService/ListExpenses"
	ExpenseServiceUpdateExpenseProcedure     = "/splitshare.v1.ExpenseService/UpdateExpense"
	ExpenseServiceDeleteExpenseProcedure     = "/splitshare.v1.ExpenseService/DeleteExpense"
	ExpenseServiceSettleSplitProcedure       = "/splitshare.v1.ExpenseService/SettleSplit"
	ExpenseServiceGetBalanceSummaryProcedure = "/splitshare.v1.ExpenseService/GetBalanceSummary"
	ExpenseServiceGetDashboardProcedure      = "/splitshare.v1.ExpenseService/GetDashboard"
)

// ExpenseServiceHandler is implemented by the expense service.
type ExpenseServiceHandler interface {
	PreviewSplit(context.Context, *connect.Request[pb.PreviewSplitRequest]) (*connect.Response[pb.PreviewSplitResponse], error)
	CreateExpense(context.Context, *connect.Request[pb.CreateExpenseRequest]) (*connect.Response[pb.CreateExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[pb.GetExpenseRequest]) (*connect.Response[pb.GetExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[pb.ListExpensesRequest]) (*connect.Response[pb.ListExpensesResponse], error)
	UpdateExpense(context.Context, *connect.Request[pb.UpdateExpenseRequest]) (*connect.Response[pb.UpdateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[pb.DeleteExpenseRequest]) (*connect.Response[pb.DeleteExpenseResponse], error)
	SettleSplit(context.Context, *connect.Request[pb.SettleSplitRequest]) (*connect.Response[pb.SettleSplitResponse], error)
	GetBalanceSummary(context.Context, *connect.Request[pb.GetBalanceSummaryRequest]) (*connect.Response[pb.GetBalanceSummaryResponse], error)
	GetDashboard(context.Context, *connect.Request[pb.GetDashboardRequest]) (*connect.Response[pb.GetDashboardResponse], error)
}

// NewExpenseServiceHandler builds an HTTP handler for every ExpenseService
// procedure. It returns the path to mount the handler on.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	mux := http.NewServeMux()
	mux.Handle(ExpenseServicePreviewSplitProcedure, connect.NewUnaryHandler(ExpenseServicePreviewSplitProcedure, svc.PreviewSplit, opts...))
	mux.Handle(ExpenseServiceCreateExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts...))
	mux.Handle(ExpenseServiceGetExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceGetExpenseProcedure, svc.GetExpense, opts...))
	mux.Handle(ExpenseServiceListExpensesProcedure, connect.NewUnaryHandler(ExpenseServiceListExpensesProcedure, svc.ListExpenses, opts...))
	mux.Handle(ExpenseServiceUpdateExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceUpdateExpenseProcedure, svc.UpdateExpense, opts...))
	mux.Handle(ExpenseServiceDeleteExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...))
	mux.Handle(ExpenseServiceSettleSplitProcedure, connect.NewUnaryHandler(ExpenseServiceSettleSplitProcedure, svc.SettleSplit, opts...))
	mux.Handle(ExpenseServiceGetBalanceSummaryProcedure, connect.NewUnaryHandler(ExpenseServiceGetBalanceSummaryProcedure, svc.GetBalanceSummary, opts...))
	mux.Handle(ExpenseServiceGetDashboardProcedure, connect.NewUnaryHandler(ExpenseServiceGetDashboardProcedure, svc.GetDashboard, opts...))
	return "/" + ExpenseServiceName + "/", mux
}

// ExpenseServiceClient calls ExpenseService over Connect.
type ExpenseServiceClient interface {
	PreviewSplit(context.Context, *connect.Request[pb.PreviewSplitRequest]) (*connect.Response[pb.PreviewSplitResponse], error)
	CreateExpense(context.Context, *connect.Request[pb.CreateExpenseRequest]) (*connect.Response[pb.CreateExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[pb.GetExpenseRequest]) (*connect.Response[pb.GetExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[pb.ListExpensesRequest]) (*connect.Response[pb.ListExpensesResponse], error)
	UpdateExpense(context.Context, *connect.Request[pb.UpdateExpenseRequest]) (*connect.Response[pb.UpdateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[pb.DeleteExpenseRequest]) (*connect.Response[pb.DeleteExpenseResponse], error)
	SettleSplit(context.Context, *connect.Request[pb.SettleSplitRequest]) (*connect.Response[pb.SettleSplitResponse], error)
	GetBalanceSummary(context.Context, *connect.Request[pb.GetBalanceSummaryRequest]) (*connect.Response[pb.GetBalanceSummaryResponse], error)
	GetDashboard(context.Context, *connect.Request[pb.GetDashboardRequest]) (*connect.Response[pb.GetDashboardResponse], error)
}

// NewExpenseServiceClient returns a client for the ExpenseService served at baseURL.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ExpenseServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &expenseServiceClient{
		previewSplit:      connect.NewClient[pb.PreviewSplitRequest, pb.PreviewSplitResponse](httpClient, baseURL+ExpenseServicePreviewSplitProcedure, opts...),
		createExpense:     connect.NewClient[pb.CreateExpenseRequest, pb.CreateExpenseResponse](httpClient, baseURL+ExpenseServiceCreateExpenseProcedure, opts...),
		getExpense:        connect.NewClient[pb.GetExpenseRequest, pb.GetExpenseResponse](httpClient, baseURL+ExpenseServiceGetExpenseProcedure, opts...),
		listExpenses:      connect.NewClient[pb.ListExpensesRequest, pb.ListExpensesResponse](httpClient, baseURL+ExpenseServiceListExpensesProcedure, opts...),
		updateExpense:     connect.NewClient[pb.UpdateExpenseRequest, pb.UpdateExpenseResponse](httpClient, baseURL+ExpenseServiceUpdateExpenseProcedure, opts...),
		deleteExpense:     connect.NewClient[pb.DeleteExpenseRequest, pb.DeleteExpenseResponse](httpClient, baseURL+ExpenseServiceDeleteExpenseProcedure, opts...),
		settleSplit:       connect.NewClient[pb.SettleSplitRequest, pb.SettleSplitResponse](httpClient, baseURL+ExpenseServiceSettleSplitProcedure, opts...),
		getBalanceSummary: connect.NewClient[pb.GetBalanceSummaryRequest, pb.GetBalanceSummaryResponse](httpClient, baseURL+ExpenseServiceGetBalanceSummaryProcedure, opts...),
		getDashboard:      connect.NewClient[pb.GetDashboardRequest, pb.GetDashboardResponse](httpClient, baseURL+ExpenseServiceGetDashboardProcedure, opts...),
	}
}

type expenseServiceClient struct {
	previewSplit      *connect.Client[pb.PreviewSplitRequest, pb.PreviewSplitResponse]
	createExpense     *connect.Client[pb.CreateExpenseRequest, pb.CreateExpenseResponse]
	getExpense        *connect.Client[pb.GetExpenseRequest, pb.GetExpenseResponse]
	listExpenses      *connect.Client[pb.ListExpensesRequest, pb.ListExpensesResponse]
	updateExpense     *connect.Client[pb.UpdateExpenseRequest, pb.UpdateExpenseResponse]
	deleteExpense     *connect.Client[pb.DeleteExpenseRequest, pb.DeleteExpenseResponse]
	settleSplit       *connect.Client[pb.SettleSplitRequest, pb.SettleSplitResponse]
	getBalanceSummary *connect.Client[pb.GetBalanceSummaryRequest, pb.GetBalanceSummaryResponse]
	getDashboard      *connect.Client[pb.GetDashboardRequest, pb.GetDashboardResponse]
}

func (c *expenseServiceClient) PreviewSplit(ctx context.Context, req *connect.Request[pb.PreviewSplitRequest]) (*connect.Response[pb.PreviewSplitResponse], error) {
	return c.previewSplit.CallUnary(ctx, req)
}

func (c *expenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[pb.CreateExpenseRequest]) (*connect.Response[pb.CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) GetExpense(ctx context.Context, req *connect.Request[pb.GetExpenseRequest]) (*connect.Response[pb.GetExpenseResponse], error) {
	return c.getExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ListExpenses(ctx context.Context, req *connect.Request[pb.ListExpensesRequest]) (*connect.Response[pb.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *expenseServiceClient) UpdateExpense(ctx context.Context, req *connect.Request[pb.UpdateExpenseRequest]) (*connect.Response[pb.UpdateExpenseResponse], error) {
	return c.updateExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[pb.DeleteExpenseRequest]) (*connect.Response[pb.DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) SettleSplit(ctx context.Context, req *connect.Request[pb.SettleSplitRequest]) (*connect.Response[pb.SettleSplitResponse], error) {
	return c.settleSplit.CallUnary(ctx, req)
}

func (c *expenseServiceClient) GetBalanceSummary(ctx context.Context, req *connect.Request[pb.GetBalanceSummaryRequest]) (*connect.Response[pb.GetBalanceSummaryResponse], error) {
	return c.getBalanceSummary.CallUnary(ctx, req)
}

func (c *expenseServiceClient) GetDashboard(ctx context.Context, req *connect.Request[pb.GetDashboardRequest]) (*connect.Response[pb.GetDashboardResponse], error) {
	return c.getDashboard.CallUnary(ctx, req)
}

// UnimplementedExpenseServiceHandler answers every ExpenseService procedure with CodeUnimplemented.
type UnimplementedExpenseServiceHandler struct{}

func (UnimplementedExpenseServiceHandler) PreviewSplit(context.Context, *connect.Request[pb.PreviewSplitRequest]) (*connect.Response[pb.PreviewSplitResponse], error) {
	return nil, unimplemented(ExpenseServicePreviewSplitProcedure)
}

func (UnimplementedExpenseServiceHandler) CreateExpense(context.Context, *connect.Request[pb.CreateExpenseRequest]) (*connect.Response[pb.CreateExpenseResponse], error) {
	return nil, unimplemented(ExpenseServiceCreateExpenseProcedure)
}

func (UnimplementedExpenseServiceHandler) GetExpense(context.Context, *connect.Request[pb.GetExpenseRequest]) (*connect.Response[pb.GetExpenseResponse], error) {
	return nil, unimplemented(ExpenseServiceGetExpenseProcedure)
}

func (UnimplementedExpenseServiceHandler) ListExpenses(context.Context, *connect.Request[pb.ListExpensesRequest]) (*connect.Response[pb.ListExpensesResponse], error) {
	return nil, unimplemented(ExpenseServiceListExpensesProcedure)
}

func (UnimplementedExpenseServiceHandler) UpdateExpense(context.Context, *connect.Request[pb.UpdateExpenseRequest]) (*connect.Response[pb.UpdateExpenseResponse], error) {
	return nil, unimplemented(ExpenseServiceUpdateExpenseProcedure)
}

func (UnimplementedExpenseServiceHandler) DeleteExpense(context.Context, *connect.Request[pb.DeleteExpenseRequest]) (*connect.Response[pb.DeleteExpenseResponse], error) {
	return nil, unimplemented(ExpenseServiceDeleteExpenseProcedure)
}

func (UnimplementedExpenseServiceHandler) SettleSplit(context.Context, *connect.Request[pb.SettleSplitRequest]) (*connect.Response[pb.SettleSplitResponse], error) {
	return nil, unimplemented(ExpenseServiceSettleSplitProcedure)
}

func (UnimplementedExpenseServiceHandler) GetBalanceSummary(context.Context, *connect.Request[pb.GetBalanceSummaryRequest]) (*connect.Response[pb.GetBalanceSummaryResponse], error) {
	return nil, unimplemented(ExpenseServiceGetBalanceSummaryProcedure)
}

func (UnimplementedExpenseServiceHandler) GetDashboard(context.Context, *connect.Request[pb.GetDashboardRequest]) (*connect.Response[pb.GetDashboardResponse], error) {
	return nil, unimplemented(ExpenseServiceGetDashboardProcedure)
}
