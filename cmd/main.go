package main

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"legal-office-api/internal/handler"
	"legal-office-api/internal/middleware"
	"legal-office-api/internal/tenantctx"
	"legal-office-api/pkg/config"
	"legal-office-api/pkg/database"
	"legal-office-api/pkg/jwtutil"
	"legal-office-api/pkg/logger"
	"legal-office-api/prometheus"
)

// strictBinder rejects JSON bodies with unknown fields so malformed or
// oversupplied payloads never reach the repository layer.
type strictBinder struct{}

func (b *strictBinder) Bind(i interface{}, c echo.Context) error {
	req := c.Request()
	if req.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(req.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting legal office service...", zap.String("environment", cfg.Server.Env))

	// Initialize database, schema, and row-level security policies
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Tenant context manager binds the session variable the row policies read
	tenants := tenantctx.New(database.GetDB())

	// Initialize Echo framework
	e := echo.New()
	e.Binder = &strictBinder{}

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes
	auth := e.Group("/auth")
	auth.POST("/login", handler.Login)
	auth.POST("/register", handler.Register)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	// User management
	users := api.Group("/users")
	users.GET("/profile", handler.GetProfile)
	users.PATCH("/profile", handler.UpdateProfile)
	users.POST("/change-password", handler.ChangePassword)

	// Firm management - doesn't require tenant context
	firms := api.Group("/tenants")
	firms.POST("", handler.CreateTenant)
	firms.GET("", handler.ListUserTenants)
	firms.GET("/:id", handler.GetTenant)

	// Firm selection - issues a token scoped to another firm
	api.POST("/tenant-auth/switch", handler.SwitchTenant)

	// Tenant-scoped operations - the binder wraps the whole request span in
	// the tenant context so every query below runs on a bound connection
	scoped := api.Group("")
	scoped.Use(middleware.TenantContext(tenants))

	clients := scoped.Group("/clients")
	clients.GET("", handler.ListClients)
	clients.POST("", handler.CreateClient)
	clients.GET("/:id", handler.GetClient)
	clients.PUT("/:id", handler.UpdateClient)
	clients.DELETE("/:id", handler.DeleteClient)

	courts := scoped.Group("/courts")
	courts.GET("", handler.ListCourts)
	courts.POST("", handler.CreateCourt)
	courts.GET("/:id", handler.GetCourt)
	courts.PUT("/:id", handler.UpdateCourt)
	courts.DELETE("/:id", handler.DeleteCourt)

	cases := scoped.Group("/cases")
	cases.GET("", handler.ListCases)
	cases.POST("", handler.CreateCase)
	cases.GET("/:id", handler.GetCase)
	cases.PUT("/:id", handler.UpdateCase)
	cases.DELETE("/:id", handler.DeleteCase)

	sessions := scoped.Group("/sessions")
	sessions.GET("", handler.ListSessions)
	sessions.POST("", handler.CreateSession)
	sessions.GET("/:id", handler.GetSession)
	sessions.PUT("/:id", handler.UpdateSession)
	sessions.DELETE("/:id", handler.DeleteSession)

	appointments := scoped.Group("/appointments")
	appointments.GET("", handler.ListAppointments)
	appointments.POST("", handler.CreateAppointment)
	appointments.GET("/:id", handler.GetAppointment)
	appointments.PUT("/:id", handler.UpdateAppointment)
	appointments.DELETE("/:id", handler.DeleteAppointment)

	documents := scoped.Group("/documents")
	documents.GET("", handler.ListDocuments)
	documents.POST("", handler.CreateDocument)
	documents.GET("/:id", handler.GetDocument)
	documents.PUT("/:id", handler.UpdateDocument)
	documents.DELETE("/:id", handler.DeleteDocument)

	invoices := scoped.Group("/invoices")
	invoices.GET("", handler.ListInvoices)
	invoices.POST("", handler.CreateInvoice)
	invoices.GET("/:id", handler.GetInvoice)
	invoices.PUT("/:id", handler.UpdateInvoice)
	invoices.POST("/:id/issue", handler.IssueInvoice)
	invoices.POST("/:id/void", handler.VoidInvoice)

	payments := scoped.Group("/payments")
	payments.GET("", handler.ListPayments)
	payments.POST("", handler.CreatePayment)
	payments.GET("/:id", handler.GetPayment)

	trust := scoped.Group("/trust-accounts")
	trust.GET("", handler.ListTrustAccounts)
	trust.POST("", handler.CreateTrustAccount)
	trust.GET("/:id", handler.GetTrustAccount)
	trust.POST("/:id/transactions", handler.CreateTrustTransaction)
	trust.GET("/:id/transactions", handler.ListTrustTransactions)

	// Start server
	log.Info("Starting server", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
