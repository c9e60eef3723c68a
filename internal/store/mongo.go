package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo opens the durable backend. Data written through it survives
// process restarts.
func ConnectMongo(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

// EnsureIndexes creates the uniqueness guarantees the services rely on:
// one cart per user and globally unique order numbers.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	cartIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := db.Collection("carts").Indexes().CreateOne(ctx, cartIdx); err != nil {
		return fmt.Errorf("failed to create cart index: %w", err)
	}

	orderIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "order_number", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := db.Collection("orders").Indexes().CreateOne(ctx, orderIdx); err != nil {
		return fmt.Errorf("failed to create order index: %w", err)
	}

	return nil
}

type mongoCollection[T any] struct {
	coll *mongo.Collection
}

// NewMongo wraps one MongoDB collection in the Collection contract.
func NewMongo[T any](db *mongo.Database, name string) Collection[T] {
	return &mongoCollection[T]{coll: db.Collection(name)}
}

func (q Query) toBSON() (bson.M, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	filter := bson.M{}
	for _, c := range q.conds {
		switch c.op {
		case OpEq:
			filter[c.field] = c.value
		case OpGte, OpLte:
			sub, _ := filter[c.field].(bson.M)
			if sub == nil {
				sub = bson.M{}
				filter[c.field] = sub
			}
			sub["$"+string(c.op)] = c.value
		}
	}
	if q.or != nil {
		subs := make([]bson.M, 0, len(q.or))
		for _, s := range q.or {
			sb, err := s.toBSON()
			if err != nil {
				return nil, err
			}
			subs = append(subs, sb)
		}
		filter["$or"] = subs
	}
	return filter, nil
}

func (m *mongoCollection[T]) FindOne(ctx context.Context, q Query) (*T, error) {
	filter, err := q.toBSON()
	if err != nil {
		return nil, err
	}

	var rec T
	if err := m.coll.FindOne(ctx, filter).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find record: %w", err)
	}
	return &rec, nil
}

func (m *mongoCollection[T]) FindByID(ctx context.Context, id string) (*T, error) {
	var rec T
	if err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find record by id: %w", err)
	}
	return &rec, nil
}

func (m *mongoCollection[T]) Find(ctx context.Context, q Query, opts *FindOptions) ([]T, error) {
	filter, err := q.toBSON()
	if err != nil {
		return nil, err
	}

	findOpts := options.Find()
	if opts != nil {
		if opts.SortField != "" {
			dir := 1
			if opts.SortDesc {
				dir = -1
			}
			findOpts.SetSort(bson.D{{Key: opts.SortField, Value: dir}})
		}
		if opts.Skip > 0 {
			findOpts.SetSkip(opts.Skip)
		}
		if opts.Limit > 0 {
			findOpts.SetLimit(opts.Limit)
		}
	}

	cursor, err := m.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer cursor.Close(ctx)

	var recs []T
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return recs, nil
}

func (m *mongoCollection[T]) Create(ctx context.Context, rec *T) error {
	doc, err := toDoc(rec)
	if err != nil {
		return err
	}
	if _, ok := doc["_id"]; !ok {
		doc["_id"] = uuid.NewString()
	}

	if _, err := m.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	// Echo the persisted document back so the caller sees the assigned id.
	return fromDoc(doc, rec)
}

func (m *mongoCollection[T]) Update(ctx context.Context, id string, fields map[string]any) error {
	res, err := m.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoCollection[T]) Delete(ctx context.Context, id string) error {
	res, err := m.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoCollection[T]) Count(ctx context.Context, q Query) (int64, error) {
	filter, err := q.toBSON()
	if err != nil {
		return 0, err
	}
	n, err := m.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

func (m *mongoCollection[T]) Distinct(ctx context.Context, field string, q Query) ([]any, error) {
	filter, err := q.toBSON()
	if err != nil {
		return nil, err
	}
	values, err := m.coll.Distinct(ctx, field, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct values: %w", err)
	}
	return values, nil
}
