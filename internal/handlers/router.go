package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"fraud-dashboard/internal/ctxkeys"
	"fraud-dashboard/internal/middleware"
	"fraud-dashboard/internal/models"
	"fraud-dashboard/internal/views"
)

// RouterConfig holds what the router needs besides the handler Deps.
type RouterConfig struct {
	JWTSecret      string
	TokenTTL       time.Duration
	SecureCookie   bool
	Users          []models.User
	AllowedOrigins []string
	LoginLimiter   *middleware.Limiter // optional
}

// NewRouter wires every dashboard route. Pages are open to any signed-in
// analyst; mutations need the analyst role, model and archive actions the
// admin role.
func NewRouter(d Deps, rc RouterConfig) http.Handler {
	authHandler := NewAuthHandler(d, rc.Users, rc.JWTSecret, rc.TokenTTL, rc.SecureCookie)
	dashboardHandler := NewDashboardHandler(d)
	companyHandler := NewCompanyHandler(d)
	statementHandler := NewStatementHandler(d)
	documentHandler := NewDocumentHandler(d)
	uploadHandler := NewUploadHandler(d)
	riskHandler := NewRiskHandler(d)
	mlHandler := NewMLHandler(d)
	settingsHandler := NewSettingsHandler(d)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)

	// Public routes
	r.Get("/health", dashboardHandler.Health)
	r.Handle("/static/*", views.Static("/static/"))
	r.Get(middleware.LoginPath, authHandler.LoginPage)
	r.Group(func(r chi.Router) {
		if rc.LoginLimiter != nil {
			r.Use(middleware.RateLimit(rc.LoginLimiter))
		}
		r.Post(middleware.LoginPath, authHandler.Login)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(rc.JWTSecret))

		r.Post("/logout", authHandler.Logout)
		r.Get("/", dashboardHandler.Index)
		r.Get("/files/*", uploadHandler.ServeFile)

		// JSON endpoints polled by the pages
		r.Route("/api", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   rc.AllowedOrigins,
				AllowedMethods:   []string{"GET", "OPTIONS"},
				AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
				AllowCredentials: true,
				MaxAge:           300,
			}))
			r.Get("/alerts/feed", riskHandler.Feed)
			r.Get("/uploads/status", uploadHandler.Status)
		})

		// Read-only pages, accessible to viewers
		r.Get("/companies", companyHandler.List)
		r.Get("/companies/{id}", companyHandler.Detail)
		r.Get("/statements", statementHandler.List)
		r.Get("/statements/{id}", statementHandler.Detail)
		r.Get("/statements/{id}/analysis", statementHandler.Analysis)
		r.Get("/documents", documentHandler.List)
		r.Get("/documents/{id}/download", documentHandler.Download)
		r.Get("/risk-assessments", riskHandler.List)
		r.Get("/risk-assessments/export.xlsx", riskHandler.Export)
		r.Get("/risk-assessments/{id}", riskHandler.Detail)
		r.Get("/alerts", riskHandler.AlertList)
		r.Get("/ml-models", mlHandler.List)
		r.Get("/ml-models/{id}/performance", mlHandler.Performance)
		r.Get("/settings/notifications", settingsHandler.Notifications)
		r.Post("/settings/notifications", settingsHandler.SaveNotifications)

		// Write operations restricted to analysts
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireMinRole(ctxkeys.RoleAnalyst))

			r.Get("/companies/new", companyHandler.New)
			r.Post("/companies/new", companyHandler.Create)
			r.Get("/companies/{id}/edit", companyHandler.Edit)
			r.Post("/companies/{id}/edit", companyHandler.Update)
			r.Post("/companies/{id}/delete", companyHandler.Delete)

			r.Get("/statements/new", statementHandler.New)
			r.Post("/statements/new", statementHandler.Create)
			r.Post("/statements/new/fiscal-year", statementHandler.CreateFiscalYear)
			r.Post("/statements/{id}/status", statementHandler.UpdateStatus)
			r.Post("/statements/{id}/delete", statementHandler.Delete)
			r.Get("/statements/{id}/financial-data", statementHandler.FinancialData)
			r.Post("/statements/{id}/financial-data", statementHandler.SaveFinancialData)
			r.Post("/statements/{id}/calculate", statementHandler.Calculate)
			r.Post("/statements/{id}/predict", statementHandler.Predict)
			r.Post("/statements/{id}/assess", statementHandler.Assess)

			r.Get("/documents/upload", uploadHandler.Page)
			r.Post("/documents/upload", uploadHandler.Submit)
			r.Post("/documents/{id}/delete", documentHandler.Delete)

			r.Get("/alerts/{id}/resolve", riskHandler.ResolveForm)
			r.Post("/alerts/{id}/resolve", riskHandler.Resolve)
		})

		// Admin actions
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireMinRole(ctxkeys.RoleAdmin))

			r.Post("/ml-models/{id}/toggle", mlHandler.Toggle)
			r.Post("/ml-models/{id}/delete", mlHandler.Delete)
			r.Post("/risk-assessments/export/archive", riskHandler.Archive)
		})
	})

	return r
}
