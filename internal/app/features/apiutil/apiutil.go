// Package apiutil holds the JSON response conventions shared by every
// API feature.
package apiutil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mohammad17ali/doc-flow/internal/app/policy/docpolicy"
	"github.com/mohammad17ali/doc-flow/internal/app/system/auth"
	"github.com/mohammad17ali/doc-flow/internal/app/system/identifier"
	"github.com/mohammad17ali/doc-flow/internal/app/system/locator"
	"go.mongodb.org/mongo-driver/mongo"
)

// Error kinds carried in the JSON body. Clients branch on these, so
// they are part of the wire contract.
const (
	KindInvalidCredentials = "invalid_credentials"
	KindSessionInvalid     = "session_invalid"
	KindForbidden          = "forbidden"
	KindIdentifierRejected = "identifier_rejected"
	KindNotFound           = "not_found"
	KindResourceNotFound   = "resource_not_found"
	KindBadRequest         = "bad_request"
	KindConflict           = "conflict"
	KindStorageUnavailable = "storage_unavailable"
	KindInternal           = "internal"
)

// WriteJSON encodes v with the standard headers.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError emits the uniform error envelope.
func WriteError(w http.ResponseWriter, status int, kind string) {
	WriteJSON(w, status, map[string]string{"error": kind})
}

// WriteDomainError maps the access-control and resolution errors onto
// HTTP statuses. Denied and nonexistent documents share one response
// on purpose so that callers cannot probe the catalog.
func WriteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrSessionInvalid):
		WriteError(w, http.StatusUnauthorized, KindSessionInvalid)
	case errors.Is(err, identifier.ErrRejected):
		WriteError(w, http.StatusBadRequest, KindIdentifierRejected)
	case errors.Is(err, docpolicy.ErrNotFoundOrForbidden), errors.Is(err, mongo.ErrNoDocuments):
		WriteError(w, http.StatusNotFound, KindNotFound)
	case errors.Is(err, locator.ErrNoPDFResource):
		WriteError(w, http.StatusBadRequest, KindBadRequest)
	case errors.Is(err, locator.ErrResourceNotFound):
		WriteError(w, http.StatusNotFound, KindResourceNotFound)
	default:
		WriteError(w, http.StatusInternalServerError, KindStorageUnavailable)
	}
}
