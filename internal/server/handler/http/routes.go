package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/indranuj17/FeedlinerX/internal/middleware"
	"go.uber.org/zap"
)

// RouterConfig carries the settings the router needs beyond its handlers.
type RouterConfig struct {
	// Secret verifies session tokens.
	Secret []byte
	// CookieName is the session cookie name.
	CookieName string
	// AllowedOrigins lists browser origins allowed by CORS.
	AllowedOrigins []string
}

// NewRouter constructs and returns an HTTP handler that serves
// the FeedlinerX API.
//
// Routes:
//
//	POST   /api/sign-up                → authHandler.SignUp
//	POST   /api/verify-code            → authHandler.VerifyCode
//	GET    /api/check-username-unique  → authHandler.CheckUsernameUnique
//	POST   /api/auth/sign-in           → authHandler.SignIn
//	POST   /api/auth/sign-out          → authHandler.SignOut
//	POST   /api/send-message           → messageHandler.SendMessage
//	POST   /api/suggest-messages       → suggestHandler.Suggest
//	GET    /api/auth/session           → authHandler.Session (session)
//	GET    /api/accept-messages        → messageHandler.AcceptMessagesStatus (session)
//	POST   /api/accept-messages        → messageHandler.UpdateAcceptMessages (session)
//	GET    /api/get-messages           → messageHandler.GetMessages (session)
//	DELETE /api/delete-message/{id}    → messageHandler.DeleteMessage (session)
//	GET    /healthz                    → healthHandler.Healthz
//
// Middleware chain (applied in order):
//  1. RequestID, RealIP                 : request correlation
//  2. WithRequestLogging(logger)        : logs served requests
//  3. Recoverer                         : turns panics into 500s
//  4. cors.Handler                      : browser frontend access
//  5. AllowContentType("application/json"): rejects non-JSON bodies
func NewRouter(
	authHandler *AuthHandler,
	messageHandler *MessageHandler,
	suggestHandler *SuggestHandler,
	healthHandler *HealthHandler,
	cfg RouterConfig,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	// Bodyless requests pass; anything with a body must be JSON.
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.Get("/healthz", healthHandler.Healthz)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/sign-up", authHandler.SignUp)
		r.Post("/verify-code", authHandler.VerifyCode)
		r.Get("/check-username-unique", authHandler.CheckUsernameUnique)
		r.Post("/auth/sign-in", authHandler.SignIn)
		r.Post("/auth/sign-out", authHandler.SignOut)
		r.Post("/send-message", messageHandler.SendMessage)
		r.Post("/suggest-messages", suggestHandler.Suggest)

		// Protected group: requires a valid session
		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(cfg.Secret, cfg.CookieName))
			r.Get("/auth/session", authHandler.Session)
			r.Get("/accept-messages", messageHandler.AcceptMessagesStatus)
			r.Post("/accept-messages", messageHandler.UpdateAcceptMessages)
			r.Get("/get-messages", messageHandler.GetMessages)
			r.Delete("/delete-message/{id}", messageHandler.DeleteMessage)
		})
	})

	return r
}
