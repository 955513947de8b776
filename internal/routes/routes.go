package routes

import (
	"net/http"

	"github.com/chorushq/chorus/internal/app"
	"github.com/chorushq/chorus/internal/handler"
	"github.com/chorushq/chorus/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AccountService)
	account := handler.NewAccountHandler(app.AccountService)
	google := handler.NewGoogleHandler(app.GoogleService, app.Cfg.IsProduction())
	github := handler.NewGithubHandler(app.GithubService)

	mux := http.NewServeMux()

	// Credential endpoints are rate limited
	rateLimiter := middleware.RateLimitAuth()

	// Local identity
	mux.HandleFunc("POST /auth/register", rateLimiter(auth.Register))
	mux.HandleFunc("POST /auth/login", rateLimiter(auth.Login))
	mux.HandleFunc("GET /auth/nickname/{nickname}/available", auth.NicknameAvailable)

	// Google sign-in
	mux.HandleFunc("GET /auth/google", rateLimiter(google.Auth))
	mux.HandleFunc("GET /auth/google/callback", rateLimiter(google.Callback))
	mux.HandleFunc("GET /auth/google/connected", middleware.RequireAuth(google.Connected))

	// Account (requires bearer token)
	mux.HandleFunc("PATCH /account", middleware.RequireAuth(account.UpdateProfile))
	mux.HandleFunc("DELETE /account", middleware.RequireAuth(account.Withdraw))

	// GitHub link
	mux.HandleFunc("GET /account/github", middleware.RequireAuth(github.Status))
	mux.HandleFunc("POST /account/github", middleware.RequireAuth(github.Link))
	mux.HandleFunc("DELETE /account/github", middleware.RequireAuth(github.Unlink))

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.TokenIssuer, app.AccountService),
	)
}
