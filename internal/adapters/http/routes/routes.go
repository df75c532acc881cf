package routes

import (
	"librahub/internal/adapters/http/handlers"
	"librahub/internal/adapters/http/middleware"
	"librahub/internal/adapters/persistence/repositories"
	"librahub/internal/config"
	"librahub/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) *services.CronService {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	bookRepo := repositories.NewBookRepository(db)
	registrationRepo := repositories.NewRegistrationRepository(db)
	ticketRepo := repositories.NewBorrowTicketRepository(db)
	returnRepo := repositories.NewReturnTicketRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo)
	notifyService := services.NewNotificationService(notificationRepo, userRepo)
	registrationService := services.NewRegistrationService(db, registrationRepo, ticketRepo, bookRepo, notifyService)
	ticketService := services.NewBorrowTicketService(db, ticketRepo, bookRepo, notifyService)
	returnService := services.NewReturnTicketService(db, returnRepo, ticketRepo, bookRepo, notifyService)
	cronService := services.NewCronService(ticketRepo, refreshTokenRepo, notifyService)
	dashboardService := services.NewDashboardService(db)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	bookHandler := handlers.NewBookHandler(bookRepo, categoryRepo)
	categoryHandler := handlers.NewCategoryHandler(categoryRepo)
	registrationHandler := handlers.NewRegistrationHandler(registrationService)
	ticketHandler := handlers.NewBorrowTicketHandler(ticketService)
	returnHandler := handlers.NewReturnTicketHandler(returnService)
	notificationHandler := handlers.NewNotificationHandler(notifyService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Auth routes (public + protected)
	authRoutes := apiV1.Group("/auth")
	authRoutes.Use(middleware.NoCacheHeaders())
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Public catalog routes
	catalogRoutes := apiV1.Group("/")
	catalogRoutes.Use(middleware.CatalogCache())
	catalogRoutes.Get("/books", bookHandler.ListBooks)
	catalogRoutes.Get("/books/:id", bookHandler.GetBook)
	catalogRoutes.Get("/categories", categoryHandler.ListCategories)
	catalogRoutes.Get("/categories/:id", categoryHandler.GetCategory)

	// Catalog management routes (Staff/Admin)
	bookAdmin := apiV1.Group("/books")
	bookAdmin.Use(middleware.AuthMiddleware(cfg), middleware.StaffOrAdmin())
	bookAdmin.Post("/", bookHandler.CreateBook)
	bookAdmin.Put("/:id", bookHandler.UpdateBook)
	bookAdmin.Patch("/:id/stock", bookHandler.UpdateStock)
	bookAdmin.Delete("/:id", middleware.AdminOnly(), bookHandler.DeleteBook)

	categoryAdmin := apiV1.Group("/categories")
	categoryAdmin.Use(middleware.AuthMiddleware(cfg), middleware.StaffOrAdmin())
	categoryAdmin.Post("/", categoryHandler.CreateCategory)
	categoryAdmin.Put("/:id", categoryHandler.UpdateCategory)
	categoryAdmin.Delete("/:id", middleware.AdminOnly(), categoryHandler.DeleteCategory)

	// Registration routes (authenticated)
	registrationRoutes := apiV1.Group("/registrations")
	registrationRoutes.Use(middleware.AuthMiddleware(cfg))
	registrationRoutes.Post("/", registrationHandler.CreateRegistration)
	registrationRoutes.Get("/", registrationHandler.ListRegistrations)
	registrationRoutes.Get("/:id", registrationHandler.GetRegistration)
	registrationRoutes.Post("/:id/cancel", registrationHandler.CancelRegistration)
	registrationRoutes.Post("/:id/approve", middleware.StaffOrAdmin(), registrationHandler.ApproveRegistration)
	registrationRoutes.Post("/:id/reject", middleware.StaffOrAdmin(), registrationHandler.RejectRegistration)

	// Borrow ticket routes (authenticated)
	ticketRoutes := apiV1.Group("/borrow-tickets")
	ticketRoutes.Use(middleware.AuthMiddleware(cfg))
	ticketRoutes.Post("/", ticketHandler.CreateTicket)
	ticketRoutes.Get("/", ticketHandler.ListTickets)
	ticketRoutes.Get("/:id", ticketHandler.GetTicket)
	ticketRoutes.Post("/:id/approve", middleware.StaffOrAdmin(), ticketHandler.ApproveTicket)
	ticketRoutes.Post("/:id/reject", middleware.StaffOrAdmin(), ticketHandler.RejectTicket)

	// Return ticket routes (authenticated; processing is staff work)
	returnRoutes := apiV1.Group("/return-tickets")
	returnRoutes.Use(middleware.AuthMiddleware(cfg))
	returnRoutes.Get("/stats", middleware.StaffOrAdmin(), returnHandler.GetStats)
	returnRoutes.Post("/", middleware.StaffOrAdmin(), returnHandler.CreateReturn)
	returnRoutes.Get("/", returnHandler.ListReturns)
	returnRoutes.Get("/:id", returnHandler.GetReturn)
	returnRoutes.Post("/:id/pay-fine", middleware.StaffOrAdmin(), returnHandler.PayFine)

	// Notification routes (authenticated)
	notificationRoutes := apiV1.Group("/notifications")
	notificationRoutes.Use(middleware.AuthMiddleware(cfg))
	notificationRoutes.Get("/", notificationHandler.ListNotifications)
	notificationRoutes.Get("/unread-count", notificationHandler.UnreadCount)
	notificationRoutes.Post("/bulk", middleware.AdminOnly(), notificationHandler.Broadcast)
	notificationRoutes.Post("/read-all", notificationHandler.MarkAllRead)
	notificationRoutes.Post("/:id/read", notificationHandler.MarkRead)
	notificationRoutes.Delete("/read", notificationHandler.DeleteRead)
	notificationRoutes.Delete("/:id", notificationHandler.DeleteNotification)

	// Dashboard routes (Staff/Admin)
	dashboardRoutes := apiV1.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg), middleware.StaffOrAdmin())
	dashboardRoutes.Get("/", dashboardHandler.GetAdminDashboard)

	// User management routes
	userRoutes := apiV1.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	userRoutes.Put("/me", userHandler.UpdateProfile)
	userRoutes.Put("/me/password", userHandler.ChangePassword)
	userRoutes.Get("/", middleware.AdminOnly(), userHandler.ListUsers)
	userRoutes.Get("/:id", middleware.AdminOnly(), userHandler.GetUser)
	userRoutes.Put("/:id", middleware.AdminOnly(), userHandler.UpdateUser)
	userRoutes.Delete("/:id", middleware.AdminOnly(), userHandler.DeleteUser)

	return cronService
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes, rate limited harder than the rest of the API
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}
