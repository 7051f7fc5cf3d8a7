// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	accountsfeature "github.com/PallabGomasta/messhub/internal/app/features/accounts"
	boardfeature "github.com/PallabGomasta/messhub/internal/app/features/board"
	dashboardfeature "github.com/PallabGomasta/messhub/internal/app/features/dashboard"
	errorsfeature "github.com/PallabGomasta/messhub/internal/app/features/errors"
	healthfeature "github.com/PallabGomasta/messhub/internal/app/features/health"
	homefeature "github.com/PallabGomasta/messhub/internal/app/features/home"
	loginfeature "github.com/PallabGomasta/messhub/internal/app/features/login"
	logoutfeature "github.com/PallabGomasta/messhub/internal/app/features/logout"
	messesfeature "github.com/PallabGomasta/messhub/internal/app/features/messes"
	notificationsfeature "github.com/PallabGomasta/messhub/internal/app/features/notifications"
	reportsfeature "github.com/PallabGomasta/messhub/internal/app/features/reports"
	signupfeature "github.com/PallabGomasta/messhub/internal/app/features/signup"
	userstore "github.com/PallabGomasta/messhub/internal/app/store/users"
	"github.com/PallabGomasta/messhub/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// MessHub initializes the template engine, applies session middleware,
// and mounts feature routers for all application areas: home, auth,
// dashboard, messes, accounts, reports, board, and notifications.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Set up the UserFetcher so LoadSessionUser fetches fresh user data on each request.
	// This ensures username changes and deleted accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.SessionFetcher(deps.MongoDatabase))

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Authentication
	signupHandler := signupfeature.NewHandler(deps.MongoDatabase, sessionMgr, errLog, logger)
	r.Mount("/signup", signupfeature.Routes(signupHandler))

	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Dashboard: the signed-in user's messes
	dashboardHandler := dashboardfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	// Mess lifecycle: create, join, roster, manager tools
	messesHandler := messesfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/messes", messesfeature.Routes(messesHandler, sessionMgr))

	// Per-mess accounting: meals, expenses, deposits
	accountsHandler := accountsfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/accounts", accountsfeature.Routes(accountsHandler, sessionMgr))

	// Monthly reports (HTML and PDF export)
	reportsHandler := reportsfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/reports", reportsfeature.Routes(reportsHandler, sessionMgr))

	// Mess message board
	boardHandler := boardfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/board", boardfeature.Routes(boardHandler, sessionMgr))

	// Notification inbox
	notificationsHandler := notificationsfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/notifications", notificationsfeature.Routes(notificationsHandler, sessionMgr))

	return r, nil
}
