package main

import (
	"log"
	"strings"

	"garage-backend/internal/auth"
	"garage-backend/internal/config"
	"garage-backend/internal/database"
	"garage-backend/internal/inventory"
	"garage-backend/internal/jobs"
	"garage-backend/internal/mailer"
	"garage-backend/internal/models"
	"garage-backend/internal/otp"
	"garage-backend/internal/sales"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	otpLog := otp.NewLog(cfg.OTPLogPath)
	issuer := &otp.Issuer{
		DB:         database.DB,
		Log:        otpLog,
		Mailer:     mailer.NewSMTP(cfg),
		Retries:    cfg.EmailSendRetries,
		RetryDelay: cfg.EmailRetryDelay,
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/register", auth.RegisterHandler(cfg, issuer))
	api.Post("/login", auth.LoginHandler(cfg, issuer))
	api.Post("/verify-otp", auth.VerifyOTPHandler(cfg))

	// Dev-only OTP log tail
	api.Get("/dev/otps", auth.DevOTPsHandler(cfg, otpLog))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/me", auth.MeHandler())
	protected.Post("/create-technician",
		auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), auth.CreateTechnicianHandler())

	// Admin dashboard
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin, models.RoleSupervisor))
	adminRoutes.Get("/stats", auth.AdminStatsHandler())
	adminRoutes.Get("/technicians", auth.ListTechniciansHandler())
	adminRoutes.Get("/recent-activity", auth.RecentActivityHandler())
	adminRoutes.Delete("/technicians/:id", auth.RequireRole(models.RoleAdmin), auth.DeleteTechnicianHandler())
	adminRoutes.Post("/technicians/:id/toggle-active", auth.ToggleTechnicianActiveHandler())

	// Jobs
	jobRoutes := protected.Group("/jobs")
	jobRoutes.Get("", jobs.ListJobsHandler())
	jobRoutes.Post("", auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), jobs.CreateJobHandler())
	jobRoutes.Get("/stats", jobs.JobStatsHandler())
	jobRoutes.Get("/technicians", jobs.AvailableTechniciansHandler())
	jobRoutes.Get("/customers", jobs.AvailableCustomersHandler())
	jobRoutes.Get("/messages", jobs.MyMessagesHandler())
	jobRoutes.Get("/technician-dashboard", jobs.TechnicianDashboardHandler())
	jobRoutes.Get("/customer/:customer_id", jobs.CustomerJobsHandler())
	jobRoutes.Get("/technician/:technician_id", jobs.TechnicianJobsHandler())

	// Technician profiles
	jobRoutes.Get("/technician-profiles",
		auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), jobs.ListProfilesHandler())
	jobRoutes.Post("/technician-profiles",
		auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), jobs.CreateProfileHandler())
	jobRoutes.Get("/technician-profiles/:id", jobs.GetProfileHandler())
	jobRoutes.Put("/technician-profiles/:id",
		auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), jobs.UpdateProfileHandler())
	jobRoutes.Delete("/technician-profiles/:id",
		auth.RequireRole(models.RoleAdmin), jobs.DeleteProfileHandler())

	jobRoutes.Get("/:id", jobs.GetJobHandler())
	jobRoutes.Put("/:id", jobs.UpdateJobHandler())
	jobRoutes.Delete("/:id", auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), jobs.DeleteJobHandler())
	jobRoutes.Post("/:id/status", jobs.UpdateJobStatusHandler())
	jobRoutes.Get("/:id/parts", jobs.ListJobPartsHandler())
	jobRoutes.Post("/:id/parts/add", jobs.AddJobPartHandler())

	// Assignment changes (admin/supervisor)
	jobRoutes.Post("/:id/assign",
		auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), jobs.AssignJobHandler())
	jobRoutes.Post("/:id/reassign",
		auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), jobs.ReassignJobHandler())
	jobRoutes.Post("/:id/unassign",
		auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), jobs.UnassignJobHandler())

	// Technician-side updates (gated by assignment, not role)
	jobRoutes.Post("/:id/progress", jobs.UpdateJobProgressHandler())
	jobRoutes.Post("/:id/request-parts", jobs.RequestPartsHandler())
	jobRoutes.Post("/:id/send-message", jobs.SendMessageHandler())

	// Inventory
	inv := protected.Group("/inventory")
	inv.Get("/categories", inventory.ListCategoriesHandler())
	inv.Post("/categories", auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), inventory.CreateCategoryHandler())
	inv.Get("/parts", inventory.ListPartsHandler())
	inv.Post("/parts", auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), inventory.CreatePartHandler())
	inv.Get("/parts/:id", inventory.GetPartHandler())
	inv.Put("/parts/:id", auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), inventory.UpdatePartHandler())
	inv.Delete("/parts/:id", auth.RequireRole(models.RoleAdmin), inventory.DeletePartHandler())
	inv.Get("/parts/:id/history", inventory.PartHistoryHandler())
	inv.Get("/transactions", inventory.ListTransactionsHandler())
	inv.Post("/assign-to-job", inventory.AssignToJobHandler())
	inv.Post("/reorder", auth.RequireRole(models.RoleAdmin), inventory.ReorderPartHandler())
	inv.Get("/export", inventory.ExportPartsCSVHandler())
	inv.Post("/scan", inventory.ScanBarcodeHandler())

	inv.Get("/suppliers", inventory.ListSuppliersHandler())
	inv.Post("/suppliers", auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), inventory.CreateSupplierHandler())
	inv.Get("/suppliers/:id", inventory.GetSupplierHandler())
	inv.Patch("/suppliers/:id", auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), inventory.UpdateSupplierHandler())
	inv.Delete("/suppliers/:id", auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), inventory.DeleteSupplierHandler())

	inv.Get("/customers", inventory.ListCustomersHandler())
	inv.Post("/customers", auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), inventory.CreateCustomerHandler())
	inv.Get("/customers/:id", inventory.GetCustomerHandler())
	inv.Patch("/customers/:id", auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), inventory.UpdateCustomerHandler())
	inv.Delete("/customers/:id", auth.RequireRole(models.RoleAdmin, models.RoleSupervisor), inventory.DeleteCustomerHandler())

	// Sales
	saleRoutes := protected.Group("/sales")
	saleRoutes.Get("", sales.ListSalesHandler())
	saleRoutes.Post("", sales.CreateSaleHandler())
	saleRoutes.Get("/stats", sales.SalesStatsHandler())
	saleRoutes.Get("/items", sales.SaleItemsHandler())
	saleRoutes.Get("/by-customer/:customer_id", sales.CustomerSalesHandler())
	saleRoutes.Get("/:id", sales.GetSaleHandler())
	saleRoutes.Put("/:id", sales.UpdateSaleHandler())
	saleRoutes.Delete("/:id", sales.DeleteSaleHandler())

	log.Println("Server listening on port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
