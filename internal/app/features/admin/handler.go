// Package admin serves the management API: user, group, and document
// catalog CRUD. Everything here mounts behind RequireAdmin.
package admin

import (
	"net/http"

	"github.com/mohammad17ali/doc-flow/internal/app/features/apiutil"
	docstore "github.com/mohammad17ali/doc-flow/internal/app/store/documents"
	groupstore "github.com/mohammad17ali/doc-flow/internal/app/store/groups"
	userstore "github.com/mohammad17ali/doc-flow/internal/app/store/users"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler holds the stores the admin API writes to.
type Handler struct {
	Users  *userstore.Store
	Groups *groupstore.Store
	Docs   *docstore.Store
	Log    *zap.Logger
}

// NewHandler constructs the admin Handler.
func NewHandler(users *userstore.Store, groups *groupstore.Store, docs *docstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Groups: groups, Docs: docs, Log: logger}
}

// pathID parses the {id} URL parameter as an ObjectID, answering 400
// when it is not one.
func pathID(w http.ResponseWriter, raw string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, apiutil.KindBadRequest)
		return primitive.NilObjectID, false
	}
	return id, true
}
