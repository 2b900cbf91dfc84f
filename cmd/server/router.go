package main

import (
	"net/http"

	"github.com/gmubooktrading/api/internal/api"
	apiMiddleware "github.com/gmubooktrading/api/internal/api/middleware"
	"github.com/gmubooktrading/api/internal/api/shared"
	"github.com/gmubooktrading/api/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(apiMiddleware.Instrument(app.metrics))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{apiMiddleware.TraceIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	validator := api.NewValidator(app.config.Auth.EmailDomain)
	authHandler := api.NewAuthHandler(app.identity, validator, app.logger)
	bookHandler := api.NewBookHandler(app.books, validator, app.logger)
	listingHandler := api.NewListingHandler(app.listings, validator, app.logger)
	requestHandler := api.NewRequestHandler(app.requests, validator, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.identity, app.logger)

	r.Get("/", api.Welcome)
	r.Get("/health", api.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler(app.registry))

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/signup", authHandler.Signup)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/resend-verification", authHandler.ResendVerification)
		r.Get("/auth/check-verification", authHandler.CheckVerification)
		r.Post("/auth/verify-email", authHandler.VerifyEmail)
		r.Get("/books", bookHandler.ListBooks)
		r.Get("/books/{id}", bookHandler.GetBook)

		// Anonymous callers allowed; authenticated ones get is_owner flags
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.OptionalAuthenticate)
			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/listings", listingHandler.ListListings)
			r.Get("/listings/{id}", listingHandler.GetListing)
			r.Get("/requests", requestHandler.ListRequests)
			r.Get("/requests/{id}", requestHandler.GetRequest)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Get("/auth/user", authHandler.CurrentUser)

			r.Post("/books", bookHandler.CreateBook)

			r.Post("/listings", listingHandler.CreateListing)
			r.Put("/listings/{id}", listingHandler.UpdateListing)
			r.Delete("/listings/{id}", listingHandler.DeleteListing)
			r.Post("/listings/{id}/images", listingHandler.AddImages)
			r.Delete("/listings/{id}/images/{image_id}", listingHandler.DeleteImage)

			r.Post("/requests", requestHandler.CreateRequest)
			r.Put("/requests/{id}", requestHandler.UpdateRequest)
			r.Delete("/requests/{id}", requestHandler.DeleteRequest)
		})
	})

	return r
}
