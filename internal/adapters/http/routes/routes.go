package routes

import (
	"pawnbook/internal/adapters/http/handlers"
	"pawnbook/internal/adapters/http/middleware"
	"pawnbook/internal/adapters/persistence/repositories"
	"pawnbook/internal/adapters/persistence/store"
	"pawnbook/internal/config"
	"pawnbook/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, st *store.Store, media *services.MediaService, cfg *config.Config, log *zap.Logger) {
	// Initialize repositories (operator accounts live in MySQL)
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg, log)
	userService := services.NewUserService(userRepo)

	// Ledger services (pawn records live in the entity store)
	ledgerService := services.NewLedgerService(st, log)
	queryService := services.NewQueryService(st)
	analyticsService := services.NewAnalyticsService(st, queryService)
	dayBookService := services.NewDayBookService(st, queryService)
	reportService := services.NewReportService(dayBookService, log)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	customerHandler := handlers.NewCustomerHandler(ledgerService, queryService, analyticsService)
	billHandler := handlers.NewBillHandler(ledgerService, queryService)
	ornamentHandler := handlers.NewOrnamentHandler(ledgerService, queryService)
	accountHandler := handlers.NewAccountHandler(ledgerService, queryService, dayBookService)
	dayBookHandler := handlers.NewDayBookHandler(dayBookService, reportService)
	dashboardHandler := handlers.NewDashboardHandler(dayBookService)
	mediaHandler := handlers.NewMediaHandler(media)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, healthHandler, authHandler, userHandler, customerHandler,
		billHandler, ornamentHandler, accountHandler, dayBookHandler,
		dashboardHandler, mediaHandler, cfg)
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	customerHandler *handlers.CustomerHandler,
	billHandler *handlers.BillHandler,
	ornamentHandler *handlers.OrnamentHandler,
	accountHandler *handlers.AccountHandler,
	dayBookHandler *handlers.DayBookHandler,
	dashboardHandler *handlers.DashboardHandler,
	mediaHandler *handlers.MediaHandler,
	cfg *config.Config,
) {
	// API Info
	router.Get("/", healthHandler.APIInfo)

	// Auth routes (public)
	authRoutes := router.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// User management routes (Admin only)
	userRoutes := router.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	userRoutes.Use(middleware.AdminOnly())
	setupUserRoutes(userRoutes, userHandler)

	// Profile routes (Authenticated users)
	profileRoutes := router.Group("/profile")
	profileRoutes.Use(middleware.AuthMiddleware(cfg))
	setupProfileRoutes(profileRoutes, userHandler)

	// Ledger routes (Authenticated users). Financial views are never cached.
	ledgerRoutes := router.Group("")
	ledgerRoutes.Use(middleware.AuthMiddleware(cfg))
	ledgerRoutes.Use(middleware.NoCacheHeaders())
	setupCustomerRoutes(ledgerRoutes.Group("/customers"), customerHandler)
	setupBillRoutes(ledgerRoutes.Group("/bills"), billHandler)
	setupAccountRoutes(ledgerRoutes.Group("/accounts"), accountHandler)

	ledgerRoutes.Get("/daybook", dayBookHandler.GetDayBook)
	ledgerRoutes.Get("/daybook/export", dayBookHandler.ExportDayBook)
	ledgerRoutes.Get("/transactions", dayBookHandler.ListTransactions)
	ledgerRoutes.Get("/dashboard", dashboardHandler.GetStats)
	ledgerRoutes.Post("/media/upload", mediaHandler.Upload)

	// Ornament catalog (templates change rarely, short public cache on reads)
	ornamentRoutes := router.Group("/ornaments")
	ornamentRoutes.Use(middleware.AuthMiddleware(cfg))
	setupOrnamentRoutes(ornamentRoutes, ornamentHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes, rate limited against brute force
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupUserRoutes configures user management routes (Admin only)
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.ListUsers)
	router.Get("/:id", handler.GetUser)
	router.Put("/:id", handler.UpdateUser)
	router.Delete("/:id", handler.DeleteUser)
}

// setupProfileRoutes configures profile routes (Authenticated)
func setupProfileRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.GetProfile)
	router.Put("/", handler.UpdateProfile)
	router.Put("/password", handler.ChangePassword)
}

// setupCustomerRoutes configures customer routes
func setupCustomerRoutes(router fiber.Router, handler *handlers.CustomerHandler) {
	router.Get("/", handler.ListCustomers)
	router.Post("/", handler.CreateCustomer)
	router.Get("/:id", handler.GetCustomer)
	router.Put("/:id", handler.UpdateCustomer)
	router.Get("/:id/bills", handler.GetCustomerBills)
	router.Get("/:id/analytics", handler.GetCustomerAnalytics)
	router.Get("/:id/transactions", handler.GetCustomerTransactions)
}

// setupBillRoutes configures bill lifecycle routes
func setupBillRoutes(router fiber.Router, handler *handlers.BillHandler) {
	router.Get("/", handler.ListBills)
	router.Post("/", handler.CreateBill)
	router.Get("/:id", handler.GetBill)
	router.Put("/:id", handler.UpdateBill)
	router.Get("/:id/ornaments", handler.GetBillOrnaments)
	router.Post("/:id/interest", handler.PayInterest)
	router.Post("/:id/extra", handler.PayExtra)
	router.Post("/:id/release", handler.ReleaseBill)
	router.Post("/:id/clear", handler.ClearBill)
}

// setupOrnamentRoutes configures ornament catalog routes
func setupOrnamentRoutes(router fiber.Router, handler *handlers.OrnamentHandler) {
	router.Get("/", handler.ListOrnaments)
	router.Get("/templates", middleware.CatalogCache(), handler.ListTemplates)
	router.Post("/templates", handler.CreateTemplate)
	router.Put("/:id", handler.UpdateOrnament)
}

// setupAccountRoutes configures account routes
func setupAccountRoutes(router fiber.Router, handler *handlers.AccountHandler) {
	router.Get("/", handler.ListAccounts)
	router.Post("/", handler.CreateAccount)
	router.Get("/:id", handler.GetAccount)
	router.Put("/:id", handler.UpdateAccount)
	router.Get("/:id/transactions", handler.GetAccountTransactions)
}
