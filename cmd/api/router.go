package main

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/loeitech/booker/internal/config"
	"github.com/loeitech/booker/internal/handlers"
	"github.com/loeitech/booker/internal/middleware"
	"github.com/loeitech/booker/internal/repo"
)

// newRouter wires repos, handlers, and the middleware chain. Kept separate
// from main so integration tests can build the full router around a mock DB.
func newRouter(database *sql.DB, cfg config.Config) http.Handler {
	userRepo := repo.NewUserRepo(database)
	bookRepo := repo.NewBookRepo(database)
	transactionRepo := repo.NewTransactionRepo(database)

	authHandler := &handlers.AuthHandler{Users: userRepo}
	userHandler := &handlers.UserHandler{Users: userRepo}
	bookHandler := &handlers.BookHandler{Books: bookRepo}
	loanHandler := handlers.NewLoanHandler(bookRepo, transactionRepo)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

	// Health and metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := database.Ping(); err != nil {
			handlers.JSONError(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ready"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Auth, behind a per-IP limiter to slow down credential stuffing
	authLimiter := middleware.AuthRateLimiter()
	r.Group(func(r chi.Router) {
		r.Use(authLimiter.Middleware)
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// Members (admin view)
	r.Get("/users", userHandler.ListMembers)

	// Book catalog
	r.Get("/books", bookHandler.ListBooks)
	r.Post("/books", bookHandler.CreateBook)
	r.Put("/books/{id}", bookHandler.UpdateBook)
	r.Delete("/books/{id}", bookHandler.DeleteBook)

	// Borrow / return workflow
	r.Post("/borrow", loanHandler.Borrow)
	r.Post("/return", loanHandler.Return)
	r.Get("/history/{user_id}", loanHandler.History)
	r.Get("/admin/borrowed-books", loanHandler.ListBorrowed)

	return r
}
