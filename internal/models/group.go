package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Member is a person who belongs to a group.
type Member struct {
	// ID identifies the member; unique within a group's member list.
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Phone is the contact number the member was invited with.
	Phone string `json:"phone"`

	// Avatar is an optional image URL.
	Avatar string `json:"avatar,omitempty"`
}

// Group represents a set of members who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Name is the display name of the group (e.g., "Goa Trip", "Flat 4B").
	Name string `json:"name"`

	// Description is optional free text.
	Description string `json:"description,omitempty"`

	// Members is the ordered member list. Never empty; IDs are unique.
	Members []Member `json:"members"`

	// CreatedBy is the member ID of the creator. The creator cannot be removed.
	CreatedBy string `json:"createdBy"`

	// CreatedAt is when the group was created.
	CreatedAt time.Time `json:"createdAt"`

	// TotalExpenses is the sum of all expense amounts in the group.
	// It is derived on read and never persisted.
	TotalExpenses decimal.Decimal `json:"totalExpenses"`

	// CoverImage is an optional image URL.
	CoverImage string `json:"coverImage,omitempty"`
}

// HasMember reports whether memberID is in the group.
func (g *Group) HasMember(memberID string) bool {
	_, ok := g.Member(memberID)
	return ok
}

// Member returns the member with the given ID.
func (g *Group) Member(memberID string) (Member, bool) {
	for _, m := range g.Members {
		if m.ID == memberID {
			return m, true
		}
	}
	return Member{}, false
}

// Clone returns a deep copy of the group.
func (g *Group) Clone() *Group {
	c := *g
	c.Members = append([]Member(nil), g.Members...)
	return &c
}

// Validate checks the group's intrinsic invariants.
func (g *Group) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return invalid("id", "required")
	}
	if strings.TrimSpace(g.Name) == "" {
		return invalid("name", "required")
	}
	if len(g.Members) == 0 {
		return invalid("members", "at least one member is required")
	}
	seen := make(map[string]bool, len(g.Members))
	for _, m := range g.Members {
		if strings.TrimSpace(m.ID) == "" {
			return invalid("members.id", "required")
		}
		if strings.TrimSpace(m.Name) == "" {
			return invalid("members.name", "required for member "+m.ID)
		}
		if seen[m.ID] {
			return invalid("members", "duplicate member "+m.ID)
		}
		seen[m.ID] = true
	}
	if g.CreatedBy == "" {
		return invalid("createdBy", "required")
	}
	if !seen[g.CreatedBy] {
		return invalid("createdBy", "creator "+g.CreatedBy+" is not a member")
	}
	if g.CreatedAt.IsZero() {
		return invalid("createdAt", "required")
	}
	return nil
}

// GroupPatch is a shallow update of a group. Nil fields are left untouched;
// non-nil fields replace the stored value wholesale.
type GroupPatch struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Members     *[]Member  `json:"members,omitempty"`
	CoverImage  *string    `json:"coverImage,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// Apply returns a copy of g with the patch merged in.
func (p GroupPatch) Apply(g *Group) *Group {
	out := g.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Members != nil {
		out.Members = append([]Member(nil), (*p.Members)...)
	}
	if p.CoverImage != nil {
		out.CoverImage = *p.CoverImage
	}
	if p.CreatedAt != nil {
		out.CreatedAt = *p.CreatedAt
	}
	return out
}

// CheckExpense verifies that e belongs to g: the group IDs match and the
// payer and every split member are members of g.
func (g *Group) CheckExpense(e *Expense) error {
	if e.GroupID != g.ID {
		return invalid("groupId", "expense "+e.ID+" belongs to "+e.GroupID+", not "+g.ID)
	}
	if !g.HasMember(e.PaidBy.ID) {
		return invalid("paidBy.id", e.PaidBy.ID+" is not a member of group "+g.ID)
	}
	for _, l := range e.SplitWith {
		if !g.HasMember(l.MemberID) {
			return invalid("splitWith.memberId", l.MemberID+" is not a member of group "+g.ID)
		}
	}
	return nil
}
