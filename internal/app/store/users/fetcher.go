// internal/app/store/users/fetcher.go
package userstore

import (
	"context"

	"github.com/mohammad17ali/doc-flow/internal/app/system/auth"
	"github.com/mohammad17ali/doc-flow/internal/app/system/authutil"
	"github.com/mohammad17ali/doc-flow/internal/app/system/timeouts"
	"github.com/mohammad17ali/doc-flow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.Fetcher against MongoDB. Principals are
// loaded fresh on each validation so role changes, disabled accounts,
// and membership edits take effect immediately instead of at next
// login.
type Fetcher struct {
	users       *mongo.Collection
	memberships *mongo.Collection
}

// NewFetcher creates an auth.Fetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{
		users:       db.Collection("users"),
		memberships: db.Collection("group_memberships"),
	}
}

// VerifyPassword checks credentials and returns the user's hex ID.
// Unknown users, wrong passwords, and disabled accounts all yield
// auth.ErrInvalidCredentials; the unknown-user path still burns a
// bcrypt comparison so the two failures cost about the same.
func (f *Fetcher) VerifyPassword(ctx context.Context, email, password string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	err := f.users.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&u)
	if err != nil {
		authutil.CheckPasswordDummy(password)
		return "", auth.ErrInvalidCredentials
	}

	if u.PasswordHash == "" || !authutil.CheckPassword(password, u.PasswordHash) {
		return "", auth.ErrInvalidCredentials
	}
	if u.Status == models.StatusDisabled {
		return "", auth.ErrInvalidCredentials
	}
	return u.ID.Hex(), nil
}

// FetchPrincipal retrieves a user and their group memberships, and
// returns nil if the user is not found, disabled, or if any error
// occurs. This implements auth.Fetcher.
func (f *Fetcher) FetchPrincipal(ctx context.Context, userID string) *auth.Principal {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"_id":       1,
		"full_name": 1,
		"email":     1,
		"role":      1,
		"status":    1,
	})
	if err := f.users.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&u); err != nil {
		return nil
	}
	if u.Status == models.StatusDisabled {
		return nil
	}

	p := &auth.Principal{
		UserID: u.ID.Hex(),
		Name:   u.FullName,
		Email:  u.Email,
		Role:   u.Role,
	}

	cur, err := f.memberships.Find(ctx, bson.M{"user_id": oid})
	if err != nil {
		// Fail closed: an unreadable membership set means no groups,
		// not a guess.
		return p
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var m struct {
			GroupID primitive.ObjectID `bson:"group_id"`
		}
		if cur.Decode(&m) == nil {
			p.GroupIDs = append(p.GroupIDs, m.GroupID.Hex())
		}
	}
	return p
}
