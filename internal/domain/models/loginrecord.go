// internal/domain/models/loginrecord.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Login methods recorded on a LoginRecord.
const (
	LoginMethodPassword = "password"
	LoginMethodGoogle   = "google"
)

// LoginRecord is the durable audit trail of an issued session. The
// session token itself is never persisted; only the fact that a login
// happened, from where, and when the session will lapse.
type LoginRecord struct {
	ID        string             `bson:"_id" json:"id"` // uuid
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Method    string             `bson:"method" json:"method"` // password | google
	IP        string             `bson:"ip" json:"ip"`
	UserAgent string             `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"`
}
