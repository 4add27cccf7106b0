package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/username/gstfolio/src/config"
	"github.com/username/gstfolio/src/services"
	"golang.org/x/time/rate"
)

// Handlers bundles everything the router needs.
type Handlers struct {
	Settings     *services.SettingsService
	Upload       *UploadHandler
	Transactions *TransactionHandler
	Reports      *ReportHandler
	Accounts     *SettingsHandler
}

// NewRouter wires the API routes and the global middleware chain.
func NewRouter(cfg *config.AppConfig, h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "If-None-Match", AccountIDHeader, ClientIDHeader},
		ExposedHeaders:   []string{"ETag", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(RateLimitMiddleware(rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitBurst)))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"GSTFOLIO Backend is running"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/banks", h.Accounts.HandleGetBanks)

		r.Group(func(r chi.Router) {
			r.Use(IdentityMiddleware(h.Settings))

			r.Post("/upload", h.Upload.HandleUpload)

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", h.Transactions.HandleListTransactions)
				r.Delete("/", h.Transactions.HandleNewTask)
				r.Post("/bulk-category", h.Transactions.HandleBulkRecategorize)
				r.Patch("/{id}", h.Transactions.HandleRecategorize)
				r.Delete("/{id}", h.Transactions.HandleDeleteTransaction)
			})

			r.Get("/summary", h.Reports.HandleGetSummary)
			r.Get("/gst-return", h.Reports.HandleGetGSTReturn)
			r.Get("/journal", h.Reports.HandleGetJournal)
			r.Get("/export/report.csv", h.Reports.HandleExportReport)
			r.Get("/export/journal.csv", h.Reports.HandleExportJournal)

			r.Route("/accounts", func(r chi.Router) {
				r.Get("/", h.Accounts.HandleGetAccounts)
				r.Put("/", h.Accounts.HandleReplaceAccounts)
				r.Post("/", h.Accounts.HandleAddAccount)
				r.Post("/reset", h.Accounts.HandleResetAccounts)
				r.Put("/{id}", h.Accounts.HandleUpdateAccount)
				r.Delete("/{id}", h.Accounts.HandleDeleteAccount)
			})

			r.Get("/mapping", h.Accounts.HandleGetMapping)
			r.Get("/upload-history", h.Accounts.HandleGetUploadHistory)
			r.Get("/clients", h.Accounts.HandleListClients)
			r.Post("/clients", h.Accounts.HandleCreateClient)
		})
	})

	return r
}
