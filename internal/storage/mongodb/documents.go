package mongodb

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mmynk/splitshare/internal/models"
)

type memberDoc struct {
	ID     string `bson:"id"`
	Name   string `bson:"name"`
	Phone  string `bson:"phone,omitempty"`
	Avatar string `bson:"avatar,omitempty"`
}

type groupDoc struct {
	ID          string      `bson:"_id"`
	Name        string      `bson:"name"`
	Description string      `bson:"description,omitempty"`
	Members     []memberDoc `bson:"members"`
	// MemberIDs mirrors Members for indexed membership queries.
	MemberIDs  []string  `bson:"memberIds"`
	CreatedBy  string    `bson:"createdBy"`
	CreatedAt  time.Time `bson:"createdAt"`
	CoverImage string    `bson:"coverImage,omitempty"`
}

type splitLineDoc struct {
	MemberID string               `bson:"memberId"`
	Name     string               `bson:"name"`
	Avatar   string               `bson:"avatar,omitempty"`
	Amount   primitive.Decimal128 `bson:"amount"`
	Paid     bool                 `bson:"paid"`
}

type expenseDoc struct {
	ID        string               `bson:"_id"`
	GroupID   string               `bson:"groupId"`
	Title     string               `bson:"title"`
	Amount    primitive.Decimal128 `bson:"amount"`
	PaidBy    memberDoc            `bson:"paidBy"`
	Date      time.Time            `bson:"date"`
	Category  string               `bson:"category"`
	Notes     string               `bson:"notes,omitempty"`
	SplitWith []splitLineDoc       `bson:"splitWith"`
	// Involved holds the payer and every split member.
	Involved []string `bson:"involved"`
}

func toMemberDoc(m models.Member) memberDoc {
	return memberDoc{ID: m.ID, Name: m.Name, Phone: m.Phone, Avatar: m.Avatar}
}

func (d memberDoc) model() models.Member {
	return models.Member{ID: d.ID, Name: d.Name, Phone: d.Phone, Avatar: d.Avatar}
}

func toGroupDoc(g *models.Group) groupDoc {
	doc := groupDoc{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Members:     make([]memberDoc, len(g.Members)),
		MemberIDs:   make([]string, len(g.Members)),
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt,
		CoverImage:  g.CoverImage,
	}
	for i, m := range g.Members {
		doc.Members[i] = toMemberDoc(m)
		doc.MemberIDs[i] = m.ID
	}
	return doc
}

func (d groupDoc) model() *models.Group {
	g := &models.Group{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Members:     make([]models.Member, len(d.Members)),
		CreatedBy:   d.CreatedBy,
		CreatedAt:   d.CreatedAt.UTC(),
		CoverImage:  d.CoverImage,
	}
	for i, m := range d.Members {
		g.Members[i] = m.model()
	}
	return g
}

func toExpenseDoc(e *models.Expense) (expenseDoc, error) {
	amount, err := toDecimal128(e.Amount)
	if err != nil {
		return expenseDoc{}, err
	}
	doc := expenseDoc{
		ID:        e.ID,
		GroupID:   e.GroupID,
		Title:     e.Title,
		Amount:    amount,
		PaidBy:    toMemberDoc(e.PaidBy),
		Date:      e.Date,
		Category:  e.Category,
		Notes:     e.Notes,
		SplitWith: make([]splitLineDoc, len(e.SplitWith)),
		Involved:  []string{e.PaidBy.ID},
	}
	for i, l := range e.SplitWith {
		a, err := toDecimal128(l.Amount)
		if err != nil {
			return expenseDoc{}, err
		}
		doc.SplitWith[i] = splitLineDoc{MemberID: l.MemberID, Name: l.Name, Avatar: l.Avatar, Amount: a, Paid: l.Paid}
		if l.MemberID != e.PaidBy.ID {
			doc.Involved = append(doc.Involved, l.MemberID)
		}
	}
	return doc, nil
}

func (d expenseDoc) model() (*models.Expense, error) {
	amount, err := fromDecimal128(d.Amount)
	if err != nil {
		return nil, err
	}
	e := &models.Expense{
		ID:        d.ID,
		GroupID:   d.GroupID,
		Title:     d.Title,
		Amount:    amount,
		PaidBy:    d.PaidBy.model(),
		Date:      d.Date.UTC(),
		Category:  d.Category,
		Notes:     d.Notes,
		SplitWith: make([]models.SplitLine, len(d.SplitWith)),
	}
	for i, l := range d.SplitWith {
		a, err := fromDecimal128(l.Amount)
		if err != nil {
			return nil, err
		}
		e.SplitWith[i] = models.SplitLine{MemberID: l.MemberID, Name: l.Name, Avatar: l.Avatar, Amount: a, Paid: l.Paid}
	}
	return e, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("failed to encode amount %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to decode amount %s: %w", v, err)
	}
	return d, nil
}
