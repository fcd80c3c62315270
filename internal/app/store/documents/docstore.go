// internal/app/store/documents/docstore.go
package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/mohammad17ali/doc-flow/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages catalog document records. The core only reads these
// at authorization time; writes happen through the admin endpoints.
type Store struct {
	c *mongo.Collection
}

var ErrDuplicateDocumentID = errors.New("a document with this document_id already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("documents")}
}

// EnsureIndexes creates the unique folder-name index and the listing
// indexes used by the access-control queries.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "document_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_documents_document_id"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "permissions", Value: 1}},
			Options: options.Index().SetName("idx_documents_acl"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

func (s *Store) Create(ctx context.Context, d models.Document) (models.Document, error) {
	now := time.Now().UTC()
	d.ID = primitive.NewObjectID()
	d.TitleCI = text.Fold(d.Title)
	if d.Status == "" {
		d.Status = models.StatusActive
	}
	if d.Permissions == nil {
		d.Permissions = []primitive.ObjectID{}
	}
	d.CreatedAt = now

	if _, err := s.c.InsertOne(ctx, d); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Document{}, ErrDuplicateDocumentID
		}
		return models.Document{}, err
	}
	return d, nil
}

// Update holds the admin-editable fields of a document record. The
// document_id (on-disk folder name) is immutable after creation.
type Update struct {
	Title       string
	Description string
	Permissions []primitive.ObjectID
	Status      string
	UpdatedByID *primitive.ObjectID
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) error {
	now := time.Now().UTC()
	set := bson.M{
		"title":       upd.Title,
		"title_ci":    text.Fold(upd.Title),
		"description": upd.Description,
		"status":      upd.Status,
		"updated_at":  now,
	}
	if upd.Permissions != nil {
		set["permissions"] = upd.Permissions
	}
	if upd.UpdatedByID != nil {
		set["updated_by_id"] = upd.UpdatedByID
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	return err
}

// GetByDocumentID looks a record up by its on-disk folder name.
// Returns mongo.ErrNoDocuments if absent.
func (s *Store) GetByDocumentID(ctx context.Context, documentID string) (models.Document, error) {
	var d models.Document
	if err := s.c.FindOne(ctx, bson.M{"document_id": documentID}).Decode(&d); err != nil {
		return models.Document{}, err
	}
	return d, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Document, error) {
	var d models.Document
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return models.Document{}, err
	}
	return d, nil
}

// ListActive returns all active documents, sorted by document_id.
// This is the admin listing path.
func (s *Store) ListActive(ctx context.Context) ([]models.Document, error) {
	return s.list(ctx, bson.M{"status": models.StatusActive})
}

// ListActiveByGroups returns active documents whose ACL intersects the
// given group set. Documents with an empty ACL never match.
func (s *Store) ListActiveByGroups(ctx context.Context, groupIDs []primitive.ObjectID) ([]models.Document, error) {
	if len(groupIDs) == 0 {
		return []models.Document{}, nil
	}
	return s.list(ctx, bson.M{
		"status":      models.StatusActive,
		"permissions": bson.M{"$in": groupIDs},
	})
}

// ListAll returns every record regardless of status, for admin CRUD.
func (s *Store) ListAll(ctx context.Context) ([]models.Document, error) {
	return s.list(ctx, bson.M{})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "document_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	docs := []models.Document{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
