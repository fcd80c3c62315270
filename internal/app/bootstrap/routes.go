// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"
	"time"

	adminfeature "github.com/mohammad17ali/doc-flow/internal/app/features/admin"
	authgooglefeature "github.com/mohammad17ali/doc-flow/internal/app/features/authgoogle"
	documentsfeature "github.com/mohammad17ali/doc-flow/internal/app/features/documents"
	healthfeature "github.com/mohammad17ali/doc-flow/internal/app/features/health"
	loginfeature "github.com/mohammad17ali/doc-flow/internal/app/features/login"
	logoutfeature "github.com/mohammad17ali/doc-flow/internal/app/features/logout"
	userinfofeature "github.com/mohammad17ali/doc-flow/internal/app/features/userinfo"
	"github.com/mohammad17ali/doc-flow/internal/app/policy/docpolicy"
	docstore "github.com/mohammad17ali/doc-flow/internal/app/store/documents"
	groupstore "github.com/mohammad17ali/doc-flow/internal/app/store/groups"
	loginstore "github.com/mohammad17ali/doc-flow/internal/app/store/logins"
	userstore "github.com/mohammad17ali/doc-flow/internal/app/store/users"
	"github.com/mohammad17ali/doc-flow/internal/app/system/auth"
	"github.com/mohammad17ali/doc-flow/internal/app/system/locator"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. The session authority, stores,
// access policy, and locator are all built here and threaded into the
// feature routers; nothing reaches for globals.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	users := userstore.New(db)
	groups := groupstore.New(db)
	docs := docstore.New(db)
	logins := loginstore.New(db)

	secure := coreCfg.Env == "prod"
	authority, err := auth.NewAuthority(
		userstore.NewFetcher(db),
		appCfg.SessionKey,
		appCfg.SessionName,
		appCfg.SessionDomain,
		appCfg.SessionTTL,
		secure,
		logger,
	)
	if err != nil {
		logger.Error("session authority init failed", zap.Error(err))
		return nil, err
	}

	// Expired sessions are dropped lazily on Validate; the sweeper just
	// keeps the table from accumulating dead entries.
	authority.SweepEvery(context.Background(), time.Hour)

	policy := docpolicy.New(docs)
	loc := locator.New(policy, appCfg.DocumentsRoot, appCfg.BatchRoot, nil)

	r := chi.NewRouter()

	// Global auth middleware: resolves the bearer token or session
	// cookie into a Principal for every request.
	r.Use(authority.LoadPrincipal)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(authority, logins, logger)
	r.Mount("/api/login", loginfeature.Routes(loginHandler))

	googleHandler := authgooglefeature.NewHandler(
		authority, users, logins,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret,
		appCfg.BaseURL, "/", logger,
	)
	r.Mount("/api/auth/google", authgooglefeature.Routes(googleHandler))

	logoutHandler := logoutfeature.NewHandler(authority, logger)
	r.Mount("/api/logout", logoutfeature.Routes(logoutHandler))

	// Authenticated viewer API
	r.Group(func(r chi.Router) {
		r.Use(authority.RequireSignedIn)

		r.Mount("/api/userinfo", userinfofeature.Routes(userinfofeature.NewHandler()))

		documentsHandler := documentsfeature.NewHandler(policy, loc, docs, logger)
		r.Mount("/api/documents", documentsfeature.Routes(documentsHandler))
	})

	// Admin API
	r.Group(func(r chi.Router) {
		r.Use(authority.RequireSignedIn)
		r.Use(authority.RequireAdmin)

		adminHandler := adminfeature.NewHandler(users, groups, docs, logger)
		r.Mount("/api/admin", adminfeature.Routes(adminHandler))
	})

	return r, nil
}
