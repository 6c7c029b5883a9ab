package bootstrap

import (
	"net/http"

	authgooglefeature "github.com/dalemusser/notehub/internal/app/features/authgoogle"
	healthfeature "github.com/dalemusser/notehub/internal/app/features/health"
	notesfeature "github.com/dalemusser/notehub/internal/app/features/notes"
	signinfeature "github.com/dalemusser/notehub/internal/app/features/signin"
	signoutfeature "github.com/dalemusser/notehub/internal/app/features/signout"
	signupfeature "github.com/dalemusser/notehub/internal/app/features/signup"
	userstore "github.com/dalemusser/notehub/internal/app/store/users"
	"github.com/dalemusser/notehub/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. NoteHub builds the session manager,
// applies the session-loading middleware globally, and mounts the auth,
// notes, and health features.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(
		appCfg.SessionKey,
		appCfg.SessionName,
		appCfg.SessionDomain,
		appCfg.SessionTTL,
		secure,
		logger,
	)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Re-fetch the session subject on each request so a deleted account
	// immediately stops authenticating, instead of riding out its cookie.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.NoteHubMongoDatabase))

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.NoteHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	signupHandler := signupfeature.NewHandler(deps.NoteHubMongoDatabase, logger)
	signinHandler := signinfeature.NewHandler(deps.NoteHubMongoDatabase, sessionMgr, logger)
	signoutHandler := signoutfeature.NewHandler(sessionMgr, logger)
	googleHandler := authgooglefeature.NewHandler(
		deps.NoteHubMongoDatabase,
		sessionMgr,
		appCfg.GoogleClientID,
		appCfg.GoogleClientSecret,
		appCfg.BaseURL,
		logger,
	)

	r.Route("/auth", func(ar chi.Router) {
		ar.Post("/signup", signupHandler.HandleSignup)
		ar.Post("/signin", signinHandler.HandleSignin)

		// Federated flow: GET /auth/signin redirects to Google consent,
		// the callback completes the flow.
		ar.Get("/signin", googleHandler.ServeRedirect)
		ar.Get("/signin/callback", googleHandler.ServeCallback)

		ar.Post("/signout", signoutHandler.HandleSignout)
	})

	// Notes CRUD (session required; ownership enforced in the store filters)
	notesHandler := notesfeature.NewHandler(deps.NoteHubMongoDatabase, logger)
	r.Mount("/notes", notesfeature.Routes(notesHandler, sessionMgr))

	return r, nil
}
