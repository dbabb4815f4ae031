// Package mongodb provides a MongoDB-backed implementation of the storage.Store interface.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mmynk/splitshare/internal/models"
	"github.com/mmynk/splitshare/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

const disconnectTimeout = 5 * time.Second

// Store keeps groups and expenses in two collections of one database.
type Store struct {
	client   *mongo.Client
	groups   *mongo.Collection
	expenses *mongo.Collection
}

// New connects to MongoDB and ensures the indexes the store relies on.
func New(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client:   client,
		groups:   db.Collection("groups"),
		expenses: db.Collection("expenses"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.groups.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "memberIds", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create group indexes: %w", err)
	}
	_, err = s.expenses.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "groupId", Value: 1}, {Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "involved", Value: 1}}},
		{Keys: bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create expense indexes: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// ListGroups returns every group matching filter, ordered by creation time.
func (s *Store) ListGroups(ctx context.Context, filter storage.GroupFilter) ([]*models.Group, error) {
	query := bson.M{}
	if filter.MemberID != "" {
		query["memberIds"] = filter.MemberID
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := s.groups.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer cursor.Close(ctx)

	groups := make([]*models.Group, 0)
	for cursor.Next(ctx) {
		var doc groupDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode group: %w", err)
		}
		g := doc.model()
		if filter.Match(g) {
			groups = append(groups, g)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return groups, nil
}

// GetGroup retrieves a group by ID.
func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	var doc groupDoc
	err := s.groups.FindOne(ctx, bson.M{"_id": groupID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storage.NotFound("group", groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return doc.model(), nil
}

// CreateGroup inserts a new group document.
func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	if err := storage.PrepareGroup(group); err != nil {
		return err
	}
	if _, err := s.groups.InsertOne(ctx, toGroupDoc(group)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return storage.DuplicateID("group", group.ID)
		}
		return fmt.Errorf("failed to insert group: %w", err)
	}
	return nil
}

// ReplaceGroup merges patch into the stored group and replaces the document.
func (s *Store) ReplaceGroup(ctx context.Context, groupID string, patch models.GroupPatch) (*models.Group, error) {
	current, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	updated, err := storage.MergeGroup(current, patch)
	if err != nil {
		return nil, err
	}

	res, err := s.groups.ReplaceOne(ctx, bson.M{"_id": groupID}, toGroupDoc(updated))
	if err != nil {
		return nil, fmt.Errorf("failed to replace group: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, storage.NotFound("group", groupID)
	}
	return updated, nil
}

// DeleteGroup removes a group document. Expenses are untouched.
func (s *Store) DeleteGroup(ctx context.Context, groupID string) error {
	res, err := s.groups.DeleteOne(ctx, bson.M{"_id": groupID})
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if res.DeletedCount == 0 {
		return storage.NotFound("group", groupID)
	}
	return nil
}

// ListExpenses returns every expense matching filter, ordered by date.
func (s *Store) ListExpenses(ctx context.Context, filter storage.ExpenseFilter) ([]*models.Expense, error) {
	query := bson.M{}
	if filter.GroupID != "" {
		query["groupId"] = filter.GroupID
	}
	if filter.MemberID != "" {
		query["involved"] = filter.MemberID
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := s.expenses.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer cursor.Close(ctx)

	expenses := make([]*models.Expense, 0)
	for cursor.Next(ctx) {
		var doc expenseDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode expense: %w", err)
		}
		e, err := doc.model()
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

// GetExpense retrieves an expense by ID.
func (s *Store) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	var doc expenseDoc
	err := s.expenses.FindOne(ctx, bson.M{"_id": expenseID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storage.NotFound("expense", expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return doc.model()
}

// CreateExpense inserts a new expense document.
func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if err := storage.PrepareExpense(expense); err != nil {
		return err
	}
	doc, err := toExpenseDoc(expense)
	if err != nil {
		return err
	}
	if _, err := s.expenses.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return storage.DuplicateID("expense", expense.ID)
		}
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

// ReplaceExpense merges patch into the stored expense and replaces the document.
func (s *Store) ReplaceExpense(ctx context.Context, expenseID string, patch models.ExpensePatch) (*models.Expense, error) {
	current, err := s.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	updated, err := storage.MergeExpense(current, patch)
	if err != nil {
		return nil, err
	}
	doc, err := toExpenseDoc(updated)
	if err != nil {
		return nil, err
	}

	res, err := s.expenses.ReplaceOne(ctx, bson.M{"_id": expenseID}, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to replace expense: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, storage.NotFound("expense", expenseID)
	}
	return updated, nil
}

// DeleteExpense removes an expense document.
func (s *Store) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.expenses.DeleteOne(ctx, bson.M{"_id": expenseID})
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if res.DeletedCount == 0 {
		return storage.NotFound("expense", expenseID)
	}
	return nil
}
