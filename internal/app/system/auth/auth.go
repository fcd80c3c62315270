package auth

import (
	"context"
	"encoding/json"
	"net/http"
)

/*─────────────────────────────────────────────────────────────────────────────*
|  Principal & request context                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// Principal is the authenticated identity for one request: the user,
// the groups their memberships entitle them to, and whether they hold
// the admin role. It is derived at session-validation time and is
// immutable for the request's lifetime.
type Principal struct {
	UserID   string
	Name     string
	Email    string
	Role     string   // admin | user
	GroupIDs []string // hex ObjectIDs of the user's groups
}

// IsAdmin reports whether the principal bypasses document ACLs.
func (p *Principal) IsAdmin() bool {
	return p.Role == "admin"
}

type ctxKey string

const principalKey ctxKey = "principal"

// CurrentPrincipal returns the principal from the request context and
// a "found?" flag.
func CurrentPrincipal(r *http.Request) (*Principal, bool) {
	p, ok := r.Context().Value(principalKey).(*Principal)
	return p, ok
}

func withPrincipal(r *http.Request, p *Principal) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), principalKey, p))
}

// WithTestPrincipal injects a principal directly, bypassing token
// validation. For handler tests only.
func WithTestPrincipal(r *http.Request, p *Principal) *http.Request {
	return withPrincipal(r, p)
}

/*─────────────────────────────────────────────────────────────────────────────*
|  Middleware                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// LoadPrincipal resolves the request's session token (if any) to a
// principal and injects it into the context. Requests without a valid
// token pass through unauthenticated; route groups decide whether that
// is acceptable via RequireSignedIn / RequireAdmin.
func (a *Authority) LoadPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := a.TokenFromRequest(r); token != "" {
			if p, err := a.Validate(r.Context(), token); err == nil {
				r = withPrincipal(r, p)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures a principal is present in context (set by
// LoadPrincipal) and answers 401 with a stable error kind otherwise.
func (a *Authority) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentPrincipal(r); !ok {
			writeErrorJSON(w, http.StatusUnauthorized, "session_invalid")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin ensures the current principal holds the admin role.
func (a *Authority) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := CurrentPrincipal(r)
		if !ok {
			writeErrorJSON(w, http.StatusUnauthorized, "session_invalid")
			return
		}
		if !p.IsAdmin() {
			writeErrorJSON(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeErrorJSON(w http.ResponseWriter, status int, kind string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": kind})
}
