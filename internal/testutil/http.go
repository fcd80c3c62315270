package testutil

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mohammad17ali/doc-flow/internal/app/system/auth"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that call handlers directly instead of
// going through the router.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// AsUser injects a regular-user principal into the request.
func AsUser(r *http.Request, userID string, groupIDs ...string) *http.Request {
	return auth.WithTestPrincipal(r, &auth.Principal{
		UserID:   userID,
		Role:     "user",
		GroupIDs: groupIDs,
	})
}

// AsAdmin injects an admin principal into the request.
func AsAdmin(r *http.Request, userID string) *http.Request {
	return auth.WithTestPrincipal(r, &auth.Principal{
		UserID: userID,
		Role:   "admin",
	})
}
