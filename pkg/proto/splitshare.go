// Package proto holds the request and response messages of the
// splitshare.v1 Connect services. Messages travel as JSON; field names are
// lowerCamelCase and amounts are JSON numbers.
package proto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitshare/internal/calculator"
	"github.com/mmynk/splitshare/internal/models"
)

// GroupService messages.

type CreateGroupRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	CoverImage  string          `json:"coverImage,omitempty"`
	Members     []models.Member `json:"members"`
}

type CreateGroupResponse struct {
	Group *models.Group `json:"group"`
}

type GetGroupRequest struct {
	GroupId string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *models.Group `json:"group"`
}

type ListGroupsRequest struct {
	// Search matches group name or description, case-insensitively.
	Search string `json:"search,omitempty"`
}

type ListGroupsResponse struct {
	Groups []*models.Group `json:"groups"`
}

// UpdateGroupRequest changes only the fields that are set.
type UpdateGroupRequest struct {
	GroupId     string  `json:"groupId"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	CoverImage  *string `json:"coverImage,omitempty"`
}

type UpdateGroupResponse struct {
	Group *models.Group `json:"group"`
}

type DeleteGroupRequest struct {
	GroupId string `json:"groupId"`
}

type DeleteGroupResponse struct{}

type AddMemberRequest struct {
	GroupId string        `json:"groupId"`
	Member  models.Member `json:"member"`
}

type AddMemberResponse struct {
	Group *models.Group `json:"group"`
}

type RemoveMemberRequest struct {
	GroupId  string `json:"groupId"`
	MemberId string `json:"memberId"`
}

type RemoveMemberResponse struct {
	Group *models.Group `json:"group"`
}

type GetGroupBalancesRequest struct {
	GroupId string `json:"groupId"`
}

type GetGroupBalancesResponse struct {
	Balances      []calculator.MemberBalance `json:"balances"`
	TotalExpenses decimal.Decimal            `json:"totalExpenses"`
}

// ExpenseService messages.

type PreviewSplitRequest struct {
	GroupId  string              `json:"groupId"`
	Amount   decimal.Decimal     `json:"amount"`
	Strategy calculator.Strategy `json:"strategy,omitempty"`
	// PayerId defaults to the caller.
	PayerId string `json:"payerId,omitempty"`
	// ParticipantIds narrows an equal split. Empty means every member.
	ParticipantIds []string           `json:"participantIds,omitempty"`
	Shares         []calculator.Share `json:"shares,omitempty"`
}

type PreviewSplitResponse struct {
	SplitWith []models.SplitLine `json:"splitWith"`
}

type CreateExpenseRequest struct {
	GroupId        string              `json:"groupId"`
	Title          string              `json:"title"`
	Amount         decimal.Decimal     `json:"amount"`
	PayerId        string              `json:"payerId,omitempty"`
	Date           time.Time           `json:"date"`
	Category       string              `json:"category,omitempty"`
	Notes          string              `json:"notes,omitempty"`
	Strategy       calculator.Strategy `json:"strategy,omitempty"`
	ParticipantIds []string            `json:"participantIds,omitempty"`
	Shares         []calculator.Share  `json:"shares,omitempty"`
}

type CreateExpenseResponse struct {
	Expense *models.Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseId string `json:"expenseId"`
}

type GetExpenseResponse struct {
	Expense *models.Expense `json:"expense"`
}

type ListExpensesRequest struct {
	// GroupId limits the listing to one group. Empty lists every expense
	// the caller paid for or shares in.
	GroupId string `json:"groupId,omitempty"`
}

type ListExpensesResponse struct {
	Expenses []*models.Expense `json:"expenses"`
}

// UpdateExpenseRequest changes only the fields that are set. SplitWith
// replaces the whole list.
type UpdateExpenseRequest struct {
	ExpenseId string              `json:"expenseId"`
	Title     *string             `json:"title,omitempty"`
	Amount    *decimal.Decimal    `json:"amount,omitempty"`
	PayerId   *string             `json:"payerId,omitempty"`
	Date      *time.Time          `json:"date,omitempty"`
	Category  *string             `json:"category,omitempty"`
	Notes     *string             `json:"notes,omitempty"`
	SplitWith *[]models.SplitLine `json:"splitWith,omitempty"`
}

type UpdateExpenseResponse struct {
	Expense *models.Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseId string `json:"expenseId"`
}

type DeleteExpenseResponse struct{}

type SettleSplitRequest struct {
	ExpenseId string `json:"expenseId"`
	MemberId  string `json:"memberId"`
}

type SettleSplitResponse struct {
	Expense *models.Expense `json:"expense"`
}

type GetBalanceSummaryRequest struct {
	GroupId string `json:"groupId,omitempty"`
}

// GroupBalance is the caller's balance within one group.
type GroupBalance struct {
	GroupId   string `json:"groupId"`
	GroupName string `json:"groupName"`
	calculator.Balance
}

type GetBalanceSummaryResponse struct {
	Balance calculator.Balance `json:"balance"`
	Groups  []GroupBalance     `json:"groups"`
}

type GetDashboardRequest struct {
	// Days is the spending-insights window. Defaults to 30.
	Days int `json:"days,omitempty"`
	// Limit caps the recent expenses. Defaults to 5.
	Limit int `json:"limit,omitempty"`
}

type GetDashboardResponse struct {
	Balance        calculator.Balance         `json:"balance"`
	GroupCount     int                        `json:"groupCount"`
	RecentExpenses []models.Expense           `json:"recentExpenses"`
	Insights       []calculator.CategorySpend `json:"insights"`
}
