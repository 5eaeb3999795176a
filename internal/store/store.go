// Package store persists users, uploads, generated quizzes and activity records.
package store

import (
	"context"
	"errors"
	"time"

	"studyquiz"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("not found")

// User is the profile kept for an authenticated identity, keyed by UID
type User struct {
	UID              string    `json:"uid" bson:"uid"`
	Email            string    `json:"email" bson:"email"`
	DisplayName      string    `json:"displayName" bson:"display_name"`
	PhoneNumber      string    `json:"phoneNumber" bson:"phone_number"`
	ProfileCompleted bool      `json:"profileCompleted" bson:"profile_completed"`
	CreatedAt        time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" bson:"updated_at"`
}

// UploadFile describes one stored file of an upload
type UploadFile struct {
	Name        string `json:"name" bson:"name"`
	Size        int64  `json:"size" bson:"size"`
	ContentType string `json:"contentType" bson:"content_type"`
	URL         string `json:"url" bson:"url"`
}

// Upload is the metadata record echoed back by the upload endpoint
type Upload struct {
	ID          string       `json:"id" bson:"_id"`
	UID         string       `json:"uid,omitempty" bson:"uid,omitempty"`
	Title       string       `json:"title" bson:"title"`
	Category    string       `json:"category" bson:"category"`
	Tags        []string     `json:"tags" bson:"tags"`
	Description string       `json:"description" bson:"description"`
	Files       []UploadFile `json:"files" bson:"files"`
	CreatedAt   time.Time    `json:"createdAt" bson:"created_at"`
}

// Quiz is a generated question set kept so it can be played again
type Quiz struct {
	ID        string                   `json:"id" bson:"_id"`
	UID       string                   `json:"uid,omitempty" bson:"uid,omitempty"`
	Title     string                   `json:"title" bson:"title"`
	Set       studyquiz.QuestionSet    `json:"set" bson:"set"`
	Meta      studyquiz.GenerationMeta `json:"meta" bson:"meta"`
	CreatedAt time.Time                `json:"createdAt" bson:"created_at"`
}

// ActivityKind names what an activity record is about
type ActivityKind string

const (
	ActivityQuiz   ActivityKind = "quiz"
	ActivityUpload ActivityKind = "upload"
	ActivityResult ActivityKind = "result"
)

// Activity is one entry of a user's history
type Activity struct {
	ID        string       `json:"id" bson:"_id"`
	UID       string       `json:"uid" bson:"uid"`
	Kind      ActivityKind `json:"kind" bson:"kind"`
	RefID     string       `json:"refId,omitempty" bson:"ref_id,omitempty"`
	Title     string       `json:"title" bson:"title"`
	Items     int          `json:"items" bson:"items"`
	Correct   int          `json:"correct" bson:"correct"`
	Total     int          `json:"total" bson:"total"`
	Demo      bool         `json:"demo" bson:"demo"`
	CreatedAt time.Time    `json:"createdAt" bson:"created_at"`
}

// Store is implemented by the sqlite and MongoDB backends
type Store interface {
	UpsertUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, uid string) (*User, error)

	CreateUpload(ctx context.Context, u *Upload) error
	GetUpload(ctx context.Context, id string) (*Upload, error)

	SaveQuiz(ctx context.Context, q *Quiz) error
	GetQuiz(ctx context.Context, id string) (*Quiz, error)

	RecordActivity(ctx context.Context, a *Activity) error
	ListActivity(ctx context.Context, uid string, limit int) ([]Activity, error)

	Close() error
}

// DefaultActivityLimit is used when a non-positive limit is requested
const DefaultActivityLimit = 20
