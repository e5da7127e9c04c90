package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"autoparts-inventory/internal/config"
	"autoparts-inventory/internal/handler"
	"autoparts-inventory/internal/invoice"
	"autoparts-inventory/internal/middleware"
	"autoparts-inventory/internal/model"
	"autoparts-inventory/internal/report"
	"autoparts-inventory/internal/repository"
	"autoparts-inventory/internal/service"
	"autoparts-inventory/internal/ws"
	"autoparts-inventory/pkg/database"
	"autoparts-inventory/pkg/jwt"
	"autoparts-inventory/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// 1. Config and logging
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	defaultVAT, err := decimal.NewFromString(cfg.Inventory.DefaultVATPercent)
	if err != nil {
		log.Fatal("Invalid default VAT percent", zap.String("value", cfg.Inventory.DefaultVATPercent), zap.Error(err))
	}

	// 2. Setup Database
	dsn := cfg.Database.DSN
	if cfg.Database.Driver == "postgres" {
		dsn = cfg.Database.PostgresDSN()
	}
	db, err := database.Connect(database.Options{
		Driver:          cfg.Database.Driver,
		DSN:             dsn,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	// 3. Seed default privileges, roles, and admin user
	seedPrivilegesRolesAndAdmin(db, log)

	// 4. Setup WebSocket Hub
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	wsHub := ws.NewHub(log)
	go wsHub.Run(ctx)

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	contactRepo := repository.NewContactRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration)
	company := invoice.Company{
		Name:    cfg.Invoice.CompanyName,
		Address: cfg.Invoice.CompanyAddress,
		Phone:   cfg.Invoice.CompanyPhone,
	}

	invService := service.NewInventoryService(productRepo, categoryRepo, db, wsHub, log)
	contactService := service.NewContactService(contactRepo, log)
	txService := service.NewTransactionService(txRepo, productRepo, contactRepo, db, wsHub, log, defaultVAT)
	invoiceService := service.NewInvoiceService(txRepo, company, cfg.Invoice.Currency, log)
	reportOpts := []report.Option{report.WithDelimiter(cfg.Report.DelimiterRune())}
	if cfg.Report.BOM {
		reportOpts = append(reportOpts, report.WithBOM())
	}
	reportService := service.NewReportService(productRepo, contactRepo, txRepo, reportOpts...)
	dashService := service.NewDashboardService(txRepo, contactRepo, cfg.Inventory.LowStockThreshold)
	authService := service.NewAuthService(userRepo, tokens, cfg.JWT.IdleTimeout, wsHub, log)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)

	invHandler := handler.NewInventoryHandler(invService)
	contactHandler := handler.NewContactHandler(contactService)
	txHandler := handler.NewTransactionHandler(txService, invoiceService)
	reportHandler := handler.NewReportHandler(reportService)
	dashHandler := handler.NewDashboardHandler(dashService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo, privilegeRepo)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.App.Name,
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// 7. Routes
	api := app.Group("/api/v1")
	requireAuth := middleware.RequireAuth(authService)
	can := middleware.RequirePrivilege

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", requireAuth, authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)

	protected.Get("/dashboard/stats", can("dashboard:view"), dashHandler.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", can("dashboard:view"), dashHandler.GetStockMovement)

	protected.Get("/catalog", middleware.RequireAnyPrivilege("product:view", "transaction:create"), invHandler.GetCatalog)
	protected.Get("/products", can("product:view"), invHandler.GetProducts)
	protected.Get("/products/:id", can("product:view"), invHandler.GetProduct)
	protected.Post("/products", can("product:create"), invHandler.CreateProduct)
	protected.Put("/products/:id", can("product:update"), invHandler.UpdateProduct)
	protected.Delete("/products/:id", can("product:delete"), invHandler.DeleteProduct)

	protected.Get("/categories", can("product:view"), invHandler.GetCategories)
	protected.Post("/categories", can("category:create"), invHandler.CreateCategory)
	protected.Put("/categories/:id", can("category:update"), invHandler.UpdateCategory)
	protected.Delete("/categories/:id", can("category:delete"), invHandler.DeleteCategory)

	protected.Get("/contacts", can("contact:view"), contactHandler.GetContacts)
	protected.Get("/contacts/:id", can("contact:view"), contactHandler.GetContact)
	protected.Post("/contacts", can("contact:create"), contactHandler.CreateContact)
	protected.Put("/contacts/:id", can("contact:update"), contactHandler.UpdateContact)
	protected.Delete("/contacts/:id", can("contact:delete"), contactHandler.DeleteContact)

	protected.Get("/transactions", can("transaction:view"), txHandler.GetTransactions)
	protected.Post("/transactions/preview", middleware.RequireAnyPrivilege("transaction:create", "transaction:update"), txHandler.PreviewTransaction)
	protected.Post("/transactions/lines", middleware.RequireAnyPrivilege("transaction:create", "transaction:update"), txHandler.EditLines)
	protected.Get("/transactions/:id/invoice.pdf", can("transaction:view"), txHandler.GetInvoice)
	protected.Get("/transactions/:id", can("transaction:view"), txHandler.GetTransaction)
	protected.Post("/transactions", can("transaction:create"), txHandler.CreateTransaction)
	protected.Put("/transactions/:id", can("transaction:update"), txHandler.UpdateTransaction)
	protected.Delete("/transactions/:id", can("transaction:delete"), txHandler.DeleteTransaction)

	protected.Get("/reports/products.csv", can("report:export"), reportHandler.ExportProducts)
	protected.Get("/reports/contacts.csv", can("report:export"), reportHandler.ExportContacts)
	protected.Get("/reports/transactions.csv", can("report:export"), reportHandler.ExportTransactions)

	protected.Get("/users", can("user:view"), userHandler.GetUsers)
	protected.Get("/users/:id", can("user:view"), userHandler.GetUser)
	protected.Post("/users", can("user:create"), userHandler.CreateUser)
	protected.Put("/users/:id", can("user:update"), userHandler.UpdateUser)
	protected.Delete("/users/:id", can("user:delete"), userHandler.DeleteUser)
	protected.Put("/users/:id/privileges", can("user:update_privilege"), userHandler.UpdateUserPrivileges)

	protected.Get("/roles", can("user:view"), roleHandler.GetRoles)
	protected.Get("/privileges", can("user:view"), roleHandler.GetPrivileges)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(wsHub.Serve))

	// 8. Graceful Shutdown
	go func() {
		log.Info("Server starting", zap.String("port", cfg.App.Port), zap.String("env", cfg.App.Env))
		if err := app.Listen(":" + cfg.App.Port); err != nil {
			log.Error("Server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("Server exited")
}

// seedPrivilegesRolesAndAdmin creates default privileges, roles, and admin user if they don't exist
func seedPrivilegesRolesAndAdmin(db *gorm.DB, log *zap.Logger) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	if err := privilegeRepo.SeedDefaults(); err != nil {
		log.Warn("Failed to seed privileges", zap.Error(err))
	}
	if err := roleRepo.SeedDefaults(); err != nil {
		log.Warn("Failed to seed roles", zap.Error(err))
	}

	_, err := userRepo.FindByEmail("admin@example.com")
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn("Failed to look up admin user", zap.Error(err))
		return
	}

	masterRole, err := roleRepo.FindByCode(model.RoleMasterAdmin)
	if err != nil {
		log.Warn("MASTER_ADMIN role missing", zap.Error(err))
		return
	}
	admin := &model.User{
		Email:      "admin@example.com",
		FullName:   "Master Administrator",
		RoleID:     &masterRole.ID,
		IsActive:   true,
		Privileges: masterRole.Privileges,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"

	if err := admin.SetPassword("admin123"); err != nil {
		log.Warn("Failed to hash admin password", zap.Error(err))
		return
	}
	if err := userRepo.Create(admin); err != nil {
		log.Warn("Failed to create admin user", zap.Error(err))
		return
	}
	log.Info("Admin user created", zap.String("email", admin.Email), zap.String("role", model.RoleMasterAdmin))
}
