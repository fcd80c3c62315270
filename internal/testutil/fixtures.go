package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/mohammad17ali/doc-flow/internal/app/system/authutil"
	"github.com/mohammad17ali/doc-flow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given role and password.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, password, role string) models.User {
	f.t.Helper()

	hash, err := authutil.HashPassword(password)
	if err != nil {
		f.t.Fatalf("hash test password: %v", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        email,
		PasswordHash: hash,
		AuthMethod:   models.LoginMethodPassword,
		Role:         role,
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("create test user: %v", err)
	}
	return user
}

// CreateAdmin creates a test admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email, password string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, password, "admin")
}

// CreateDisabledUser creates a test user with disabled status.
func (f *Fixtures) CreateDisabledUser(ctx context.Context, fullName, email, password string) models.User {
	f.t.Helper()

	u := f.CreateUser(ctx, fullName, email, password, "user")
	if _, err := f.db.Collection("users").UpdateByID(ctx, u.ID, map[string]any{
		"$set": map[string]any{"status": models.StatusDisabled},
	}); err != nil {
		f.t.Fatalf("disable test user: %v", err)
	}
	u.Status = models.StatusDisabled
	return u
}

// CreateGroup creates a test group with the given name.
func (f *Fixtures) CreateGroup(ctx context.Context, name string) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	g := models.Group{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Status:    models.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("groups").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("create test group: %v", err)
	}
	return g
}

// AddMembership joins a user to a group directly.
func (f *Fixtures) AddMembership(ctx context.Context, userID, groupID primitive.ObjectID) {
	f.t.Helper()

	m := models.GroupMembership{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("group_memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("create test membership: %v", err)
	}
}

// CreateDocument creates a catalog document record with the given ACL.
func (f *Fixtures) CreateDocument(ctx context.Context, documentID, title string, permissions []primitive.ObjectID) models.Document {
	f.t.Helper()

	if permissions == nil {
		permissions = []primitive.ObjectID{}
	}
	d := models.Document{
		ID:          primitive.NewObjectID(),
		DocumentID:  documentID,
		Title:       title,
		TitleCI:     text.Fold(title),
		Permissions: permissions,
		Status:      models.StatusActive,
		CreatedAt:   time.Now().UTC(),
	}

	if _, err := f.db.Collection("documents").InsertOne(ctx, d); err != nil {
		f.t.Fatalf("create test document: %v", err)
	}
	return d
}
