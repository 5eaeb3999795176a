package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo is a Store backed by MongoDB collections users, uploads, quizzes and activity
type Mongo struct {
	client   *mongo.Client
	users    *mongo.Collection
	uploads  *mongo.Collection
	quizzes  *mongo.Collection
	activity *mongo.Collection
}

// OpenMongo connects to uri and uses database dbName
func OpenMongo(ctx context.Context, uri, dbName string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(dbName)
	m := &Mongo{
		client:   client,
		users:    db.Collection("users"),
		uploads:  db.Collection("uploads"),
		quizzes:  db.Collection("quizzes"),
		activity: db.Collection("activity"),
	}

	_, err = m.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "uid", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to index users: %w", err)
	}
	_, err = m.activity.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "uid", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to index activity: %w", err)
	}
	return m, nil
}

// Close disconnects the client
func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func (m *Mongo) UpsertUser(ctx context.Context, u *User) error {
	now := time.Now().UTC()
	u.UpdatedAt = now
	_, err := m.users.UpdateOne(ctx,
		bson.M{"uid": u.UID},
		bson.M{
			"$set": bson.M{
				"email":             u.Email,
				"display_name":      u.DisplayName,
				"phone_number":      u.PhoneNumber,
				"profile_completed": u.ProfileCompleted,
				"updated_at":        u.UpdatedAt,
			},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (m *Mongo) GetUser(ctx context.Context, uid string) (*User, error) {
	var u User
	if err := m.users.FindOne(ctx, bson.M{"uid": uid}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user %s: %w", uid, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (m *Mongo) CreateUpload(ctx context.Context, u *Upload) error {
	if _, err := m.uploads.InsertOne(ctx, u); err != nil {
		return fmt.Errorf("failed to create upload: %w", err)
	}
	return nil
}

func (m *Mongo) GetUpload(ctx context.Context, id string) (*Upload, error) {
	var u Upload
	if err := m.uploads.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("upload %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get upload: %w", err)
	}
	return &u, nil
}

func (m *Mongo) SaveQuiz(ctx context.Context, q *Quiz) error {
	if _, err := m.quizzes.InsertOne(ctx, q); err != nil {
		return fmt.Errorf("failed to save quiz: %w", err)
	}
	return nil
}

func (m *Mongo) GetQuiz(ctx context.Context, id string) (*Quiz, error) {
	var q Quiz
	if err := m.quizzes.FindOne(ctx, bson.M{"_id": id}).Decode(&q); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("quiz %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return &q, nil
}

func (m *Mongo) RecordActivity(ctx context.Context, a *Activity) error {
	if _, err := m.activity.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

func (m *Mongo) ListActivity(ctx context.Context, uid string, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit))
	cur, err := m.activity.Find(ctx, bson.M{"uid": uid}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer cur.Close(ctx)

	var out []Activity
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode activity: %w", err)
	}
	return out, nil
}
