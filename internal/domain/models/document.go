// internal/domain/models/document.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is a catalog entry for one pre-processed PDF output folder
// under the documents root. DocumentID is the on-disk folder name and
// is unique across the collection.
//
// Permissions is the ACL: the set of groups allowed to view the
// document. An empty set means the document is invisible to all
// non-admin users.
type Document struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DocumentID string             `bson:"document_id" json:"document_id"`
	Title      string             `bson:"title" json:"title"`
	TitleCI    string             `bson:"title_ci" json:"-"`

	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	Permissions []primitive.ObjectID `bson:"permissions" json:"permissions"`
	Status      string               `bson:"status" json:"status"` // active | disabled
	PageCount   int                  `bson:"page_count,omitempty" json:"page_count,omitempty"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`

	CreatedByID *primitive.ObjectID `bson:"created_by_id,omitempty" json:"created_by_id,omitempty"`
	UpdatedByID *primitive.ObjectID `bson:"updated_by_id,omitempty" json:"updated_by_id,omitempty"`
}
