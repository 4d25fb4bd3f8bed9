package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

const (
	transactionsCollection = "transactions"
	auditCollection        = "transaction_events"
)

// MongoStore persists transactions in a MongoDB collection. Ids are
// ObjectIDs serialized as hex strings.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// transactionDoc is the persisted shape; core.Transaction stays free of
// driver tags.
type transactionDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Type        string             `bson:"type"`
	Amount      float64            `bson:"amount"`
	Description string             `bson:"description,omitempty"`
	Category    string             `bson:"category,omitempty"`
	Date        time.Time          `bson:"date"`
}

func (d transactionDoc) toCore() core.Transaction {
	return core.Transaction{
		ID:          d.ID.Hex(),
		Type:        core.Type(d.Type),
		Amount:      d.Amount,
		Description: d.Description,
		Category:    d.Category,
		Date:        d.Date.UTC(),
	}
}

// NewMongoStore connects, pings and ensures the date index used by the
// descending list sort.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	s := &MongoStore{client: client, db: client.Database(database)}

	_, err = s.transactions().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "date", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create date index: %w", err)
	}

	slog.InfoContext(ctx, "Connected to MongoDB", "database", database)
	return s, nil
}

func (s *MongoStore) transactions() *mongo.Collection {
	return s.db.Collection(transactionsCollection)
}

func (s *MongoStore) Insert(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	doc := transactionDoc{
		Type:        string(tx.Type),
		Amount:      tx.Amount,
		Description: tx.Description,
		Category:    tx.Category,
		Date:        tx.Date.UTC(),
	}
	res, err := s.transactions().InsertOne(ctx, doc)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return core.Transaction{}, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	doc.ID = oid
	return doc.toCore(), nil
}

func (f Filter) bson() bson.M {
	filter := bson.M{}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.StartDate != nil || f.EndDate != nil {
		dateRange := bson.M{}
		if f.StartDate != nil {
			dateRange["$gte"] = f.StartDate.UTC()
		}
		if f.EndDate != nil {
			dateRange["$lte"] = f.EndDate.UTC()
		}
		filter["date"] = dateRange
	}
	return filter
}

func (s *MongoStore) List(ctx context.Context, q ListQuery) ([]core.Transaction, int64, error) {
	filter := q.Filter.bson()

	var (
		txs   []core.Transaction
		total int64
	)
	// Page and total count are independent queries; run them together.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		opts := options.Find().
			SetSort(bson.D{{Key: "date", Value: -1}}).
			SetSkip(q.Skip)
		if q.Limit > 0 {
			opts.SetLimit(q.Limit)
		}
		cur, err := s.transactions().Find(gctx, filter, opts)
		if err != nil {
			return fmt.Errorf("find transactions: %w", err)
		}
		defer cur.Close(gctx)
		for cur.Next(gctx) {
			var doc transactionDoc
			if err := cur.Decode(&doc); err != nil {
				return fmt.Errorf("decode transaction: %w", err)
			}
			txs = append(txs, doc.toCore())
		}
		return cur.Err()
	})
	g.Go(func() error {
		n, err := s.transactions().CountDocuments(gctx, filter)
		if err != nil {
			return fmt.Errorf("count transactions: %w", err)
		}
		total = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (core.Transaction, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// An id that cannot be an ObjectID cannot resolve to a record.
		return core.Transaction{}, core.ErrNotFound
	}
	var doc transactionDoc
	err = s.transactions().FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("find transaction %s: %w", id, err)
	}
	return doc.toCore(), nil
}

func (s *MongoStore) Update(ctx context.Context, id string, set UpdateSet) (core.Transaction, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return core.Transaction{}, core.ErrNotFound
	}

	fields := bson.M{}
	if set.Type != nil {
		fields["type"] = string(*set.Type)
	}
	if set.Amount != nil {
		fields["amount"] = *set.Amount
	}
	if set.Description != nil {
		fields["description"] = *set.Description
	}
	if set.Category != nil {
		fields["category"] = *set.Category
	}
	if set.Date != nil {
		fields["date"] = set.Date.UTC()
	}
	if len(fields) == 0 {
		return s.Get(ctx, id)
	}

	var doc transactionDoc
	err = s.transactions().FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}
	return doc.toCore(), nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return core.ErrNotFound
	}
	res, err := s.transactions().DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *MongoStore) RecordEvent(ctx context.Context, e AuditEntry) error {
	if _, err := s.db.Collection(auditCollection).InsertOne(ctx, e); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
