package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitshare/internal/calculator"
	"github.com/mmynk/splitshare/internal/models"
	"github.com/mmynk/splitshare/internal/storage"
	pb "github.com/mmynk/splitshare/pkg/proto"
	"github.com/mmynk/splitshare/pkg/proto/protoconnect"
)

const (
	defaultInsightDays  = 30
	defaultRecentLimit  = 5
	maxDashboardRecords = 100
)

// RejectionRecorder counts splits refused by the calculator.
type RejectionRecorder interface {
	SplitRejected(reason string)
}

// ExpenseService implements the Connect ExpenseService
type ExpenseService struct {
	protoconnect.UnimplementedExpenseServiceHandler
	store      storage.Store
	rejections RejectionRecorder
	now        func() time.Time
}

// ExpenseOption configures an ExpenseService.
type ExpenseOption func(*ExpenseService)

// WithRejectionRecorder reports every rejected split to r.
func WithRejectionRecorder(r RejectionRecorder) ExpenseOption {
	return func(s *ExpenseService) { s.rejections = r }
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store, opts ...ExpenseOption) *ExpenseService {
	s := &ExpenseService{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PreviewSplit computes split lines without persisting anything.
func (s *ExpenseService) PreviewSplit(ctx context.Context, req *connect.Request[pb.PreviewSplitRequest]) (*connect.Response[pb.PreviewSplitResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("PreviewSplit request received",
		"group_id", req.Msg.GroupId,
		"strategy", req.Msg.Strategy,
		"amount", req.Msg.Amount,
	)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupId, userID)
	if err != nil {
		return nil, err
	}
	payer, err := resolvePayer(group, req.Msg.PayerId, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	lines, err := s.split(group, req.Msg.Strategy, req.Msg.Amount, payer.ID, req.Msg.ParticipantIds, req.Msg.Shares)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&pb.PreviewSplitResponse{SplitWith: lines}), nil
}

// CreateExpense splits and records a new expense. Nothing is written when
// the split is rejected.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[pb.CreateExpenseRequest]) (*connect.Response[pb.CreateExpenseResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateExpense request received",
		"group_id", req.Msg.GroupId,
		"title", req.Msg.Title,
		"amount", req.Msg.Amount,
		"strategy", req.Msg.Strategy,
	)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupId, userID)
	if err != nil {
		return nil, err
	}
	payer, err := resolvePayer(group, req.Msg.PayerId, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	lines, err := s.split(group, req.Msg.Strategy, req.Msg.Amount, payer.ID, req.Msg.ParticipantIds, req.Msg.Shares)
	if err != nil {
		slog.Warn("CreateExpense split rejected", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	date := req.Msg.Date
	if date.IsZero() {
		date = s.now()
	}
	category := req.Msg.Category
	if category == "" {
		category = models.CategoryOther
	}

	expense := &models.Expense{
		GroupID:   group.ID,
		Title:     req.Msg.Title,
		Amount:    req.Msg.Amount,
		PaidBy:    payer,
		Date:      date.UTC(),
		Category:  category,
		Notes:     req.Msg.Notes,
		SplitWith: lines,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense created", "expense_id", expense.ID, "group_id", group.ID)

	return connect.NewResponse(&pb.CreateExpenseResponse{Expense: expense}), nil
}

// GetExpense retrieves an expense by ID.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[pb.GetExpenseRequest]) (*connect.Response[pb.GetExpenseResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetExpense request received", "expense_id", req.Msg.ExpenseId)

	expense, _, err := s.memberExpense(ctx, req.Msg.ExpenseId, userID)
	if err != nil {
		return nil, err
	}

	return connect.NewResponse(&pb.GetExpenseResponse{Expense: expense}), nil
}

// ListExpenses lists a group's expenses, or every expense the caller is part of.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[pb.ListExpensesRequest]) (*connect.Response[pb.ListExpensesResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListExpenses request received", "group_id", req.Msg.GroupId)

	filter := storage.ExpenseFilter{MemberID: userID}
	if req.Msg.GroupId != "" {
		if _, err := memberGroup(ctx, s.store, req.Msg.GroupId, userID); err != nil {
			return nil, err
		}
		filter = storage.ExpenseFilter{GroupID: req.Msg.GroupId}
	}

	expenses, err := s.store.ListExpenses(ctx, filter)
	if err != nil {
		slog.Error("ListExpenses failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("ListExpenses successful", "count", len(expenses))

	return connect.NewResponse(&pb.ListExpensesResponse{Expenses: expenses}), nil
}

// UpdateExpense applies the set fields, then re-checks the result against
// the group: the payer and every split member must belong to it and the
// lines must still add up to the amount.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[pb.UpdateExpenseRequest]) (*connect.Response[pb.UpdateExpenseResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateExpense request received", "expense_id", req.Msg.ExpenseId)

	current, group, err := s.memberExpense(ctx, req.Msg.ExpenseId, userID)
	if err != nil {
		return nil, err
	}

	patch := models.ExpensePatch{
		Title:    req.Msg.Title,
		Amount:   req.Msg.Amount,
		Date:     req.Msg.Date,
		Category: req.Msg.Category,
		Notes:    req.Msg.Notes,
	}
	if req.Msg.PayerId != nil {
		payer, err := resolvePayer(group, *req.Msg.PayerId, userID)
		if err != nil {
			return nil, toConnectError(err)
		}
		patch.PaidBy = &payer
		if req.Msg.SplitWith == nil && payer.ID != current.PaidBy.ID {
			lines := repay(current.SplitWith, current.PaidBy.ID, payer.ID)
			patch.SplitWith = &lines
		}
	}
	if req.Msg.SplitWith != nil {
		lines := fillLineNames(group, *req.Msg.SplitWith)
		patch.SplitWith = &lines
	}

	merged := patch.Apply(current)
	if err := s.checkLines(group, merged); err != nil {
		slog.Warn("UpdateExpense split rejected", "expense_id", current.ID, "error", err)
		return nil, toConnectError(err)
	}

	updated, err := s.store.ReplaceExpense(ctx, current.ID, patch)
	if err != nil {
		slog.Error("UpdateExpense failed", "expense_id", current.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense updated", "expense_id", updated.ID)

	return connect.NewResponse(&pb.UpdateExpenseResponse{Expense: updated}), nil
}

// DeleteExpense removes an expense.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[pb.DeleteExpenseRequest]) (*connect.Response[pb.DeleteExpenseResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseId)

	if _, _, err := s.memberExpense(ctx, req.Msg.ExpenseId, userID); err != nil {
		return nil, err
	}
	if err := s.store.DeleteExpense(ctx, req.Msg.ExpenseId); err != nil {
		slog.Error("DeleteExpense failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense deleted", "expense_id", req.Msg.ExpenseId)

	return connect.NewResponse(&pb.DeleteExpenseResponse{}), nil
}

// SettleSplit marks one member's share of an expense as paid. It only
// records the fact; no money moves.
func (s *ExpenseService) SettleSplit(ctx context.Context, req *connect.Request[pb.SettleSplitRequest]) (*connect.Response[pb.SettleSplitResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("SettleSplit request received", "expense_id", req.Msg.ExpenseId, "member_id", req.Msg.MemberId)

	expense, _, err := s.memberExpense(ctx, req.Msg.ExpenseId, userID)
	if err != nil {
		return nil, err
	}

	i := slices.IndexFunc(expense.SplitWith, func(l models.SplitLine) bool {
		return l.MemberID == req.Msg.MemberId
	})
	if i < 0 {
		return nil, toConnectError(storage.NotFound("split line", req.Msg.MemberId))
	}
	if expense.SplitWith[i].Paid {
		return connect.NewResponse(&pb.SettleSplitResponse{Expense: expense}), nil
	}

	lines := slices.Clone(expense.SplitWith)
	lines[i].Paid = true
	updated, err := s.store.ReplaceExpense(ctx, expense.ID, models.ExpensePatch{SplitWith: &lines})
	if err != nil {
		slog.Error("SettleSplit failed", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Split settled", "expense_id", expense.ID, "member_id", req.Msg.MemberId)

	return connect.NewResponse(&pb.SettleSplitResponse{Expense: updated}), nil
}

// GetBalanceSummary returns the caller's balance overall and per group.
// With a group ID only that group is considered.
func (s *ExpenseService) GetBalanceSummary(ctx context.Context, req *connect.Request[pb.GetBalanceSummaryRequest]) (*connect.Response[pb.GetBalanceSummaryResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetBalanceSummary request received", "group_id", req.Msg.GroupId)

	var groups []*models.Group
	if req.Msg.GroupId != "" {
		group, err := memberGroup(ctx, s.store, req.Msg.GroupId, userID)
		if err != nil {
			return nil, err
		}
		groups = []*models.Group{group}
	} else {
		groups, err = s.store.ListGroups(ctx, storage.GroupFilter{MemberID: userID})
		if err != nil {
			return nil, toConnectError(err)
		}
	}

	expenses, err := s.expensesOf(ctx, groups)
	if err != nil {
		slog.Error("GetBalanceSummary failed", "error", err)
		return nil, toConnectError(err)
	}

	byGroup := calculator.AggregateByGroup(expenses, userID)
	perGroup := make([]pb.GroupBalance, 0, len(byGroup))
	for _, g := range groups {
		if b, ok := byGroup[g.ID]; ok {
			perGroup = append(perGroup, pb.GroupBalance{GroupId: g.ID, GroupName: g.Name, Balance: b})
		}
	}

	return connect.NewResponse(&pb.GetBalanceSummaryResponse{
		Balance: calculator.Aggregate(expenses, userID),
		Groups:  perGroup,
	}), nil
}

// GetDashboard gathers the caller's balance, latest expenses and spending
// by category across all of their groups.
func (s *ExpenseService) GetDashboard(ctx context.Context, req *connect.Request[pb.GetDashboardRequest]) (*connect.Response[pb.GetDashboardResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	days, limit := req.Msg.Days, req.Msg.Limit
	slog.Info("GetDashboard request received", "days", days, "limit", limit)

	if days < 0 || limit < 0 {
		return nil, invalidArgument("days and limit must not be negative")
	}
	if days == 0 {
		days = defaultInsightDays
	}
	if limit == 0 {
		limit = defaultRecentLimit
	}
	limit = min(limit, maxDashboardRecords)

	groups, err := s.store.ListGroups(ctx, storage.GroupFilter{MemberID: userID})
	if err != nil {
		return nil, toConnectError(err)
	}
	expenses, err := s.expensesOf(ctx, groups)
	if err != nil {
		slog.Error("GetDashboard failed", "error", err)
		return nil, toConnectError(err)
	}

	since := s.now().AddDate(0, 0, -days)

	return connect.NewResponse(&pb.GetDashboardResponse{
		Balance:        calculator.Aggregate(expenses, userID),
		GroupCount:     len(groups),
		RecentExpenses: calculator.RecentExpenses(expenses, limit),
		Insights:       calculator.SpendingInsights(expenses, userID, since),
	}), nil
}

// split runs the calculator for a group, recording rejections.
func (s *ExpenseService) split(group *models.Group, strategy calculator.Strategy, amount decimal.Decimal, payerID string, participantIDs []string, shares []calculator.Share) ([]models.SplitLine, error) {
	members := group.Members
	if strategy != calculator.StrategyCustom && len(participantIDs) > 0 {
		var err error
		if members, err = selectMembers(group, participantIDs); err != nil {
			s.rejected(err)
			return nil, err
		}
	}

	lines, err := calculator.ComputeSplit(strategy, amount, members, payerID, shares)
	if err != nil {
		s.rejected(err)
		return nil, err
	}
	return lines, nil
}

// checkLines validates an edited expense's split against its group.
func (s *ExpenseService) checkLines(group *models.Group, e *models.Expense) error {
	if !group.HasMember(e.PaidBy.ID) {
		err := &calculator.SplitError{Err: calculator.ErrUnknownMember, MemberID: e.PaidBy.ID}
		s.rejected(err)
		return err
	}
	shares := make([]calculator.Share, len(e.SplitWith))
	for i, l := range e.SplitWith {
		shares[i] = calculator.Share{MemberID: l.MemberID, Amount: l.Amount}
	}
	if err := calculator.ValidateCustomSplit(e.Amount, group.Members, shares); err != nil {
		s.rejected(err)
		return err
	}
	return nil
}

func (s *ExpenseService) rejected(err error) {
	var splitErr *calculator.SplitError
	if s.rejections != nil && errors.As(err, &splitErr) {
		s.rejections.SplitRejected(splitErr.Reason())
	}
}

// memberExpense loads an expense and checks that userID belongs to its group.
func (s *ExpenseService) memberExpense(ctx context.Context, expenseID, userID string) (*models.Expense, *models.Group, error) {
	if expenseID == "" {
		return nil, nil, invalidArgument("expense_id required")
	}
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, nil, toConnectError(err)
	}
	group, err := memberGroup(ctx, s.store, expense.GroupID, userID)
	if err != nil {
		return nil, nil, err
	}
	return expense, group, nil
}

// expensesOf collects the expenses of every group in groups.
func (s *ExpenseService) expensesOf(ctx context.Context, groups []*models.Group) ([]models.Expense, error) {
	var all []models.Expense
	for _, g := range groups {
		expenses, err := groupExpenses(ctx, s.store, storage.ExpenseFilter{GroupID: g.ID})
		if err != nil {
			return nil, err
		}
		all = append(all, expenses...)
	}
	return all, nil
}

// resolvePayer returns the group member who paid. An empty ID means the caller.
func resolvePayer(group *models.Group, payerID, userID string) (models.Member, error) {
	if payerID == "" {
		payerID = userID
	}
	payer, ok := group.Member(payerID)
	if !ok {
		return models.Member{}, &calculator.SplitError{Err: calculator.ErrUnknownMember, MemberID: payerID}
	}
	return payer, nil
}

// selectMembers returns the group members named by ids, in the order given.
func selectMembers(group *models.Group, ids []string) ([]models.Member, error) {
	members := make([]models.Member, 0, len(ids))
	for _, id := range ids {
		m, ok := group.Member(id)
		if !ok {
			return nil, &calculator.SplitError{Err: calculator.ErrUnknownMember, MemberID: id}
		}
		members = append(members, m)
	}
	return members, nil
}

// repay moves the paid mark from the old payer's line to the new payer's.
// Lines of other members keep their settled state.
func repay(lines []models.SplitLine, oldPayerID, newPayerID string) []models.SplitLine {
	out := slices.Clone(lines)
	for i := range out {
		switch out[i].MemberID {
		case oldPayerID:
			out[i].Paid = false
		case newPayerID:
			out[i].Paid = true
		}
	}
	return out
}

// fillLineNames copies display names and avatars from the group into lines
// that arrive without them.
func fillLineNames(group *models.Group, lines []models.SplitLine) []models.SplitLine {
	out := slices.Clone(lines)
	for i := range out {
		m, ok := group.Member(out[i].MemberID)
		if !ok {
			continue
		}
		if out[i].Name == "" {
			out[i].Name = m.Name
		}
		if out[i].Avatar == "" {
			out[i].Avatar = m.Avatar
		}
	}
	return out
}
