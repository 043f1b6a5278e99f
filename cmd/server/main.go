package main

import (
	"strings"

	"alyasmeen-backend/internal/auth"
	"alyasmeen-backend/internal/config"
	"alyasmeen-backend/internal/dashboard"
	"alyasmeen-backend/internal/database"
	"alyasmeen-backend/internal/inventory"
	"alyasmeen-backend/internal/ledger"
	"alyasmeen-backend/internal/sales"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	cfg.RequireJWTSecret()

	db, err := database.Open(cfg.DatabaseDSN)
	if err != nil {
		logrus.Fatalf("store unavailable: %v", err)
	}

	svc := ledger.NewService(db)
	images := inventory.NewImageStore(cfg.ImageDir)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			logrus.WithError(err).Error("unexpected error")
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
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// public
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(db, cfg))
	api.Post("/auth/login", auth.LoginHandler(db, cfg))

	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler(db))

	// products
	protected.Post("/products", inventory.CreateProductHandler(svc, images))
	protected.Get("/products", inventory.ListProductsHandler(svc))

	// sales
	protected.Post("/sales", sales.CreateSaleHandler(svc))
	protected.Get("/sales", sales.ListSalesHandler(svc))
	protected.Get("/sales/export", sales.ExportSalesHandler(svc))
	protected.Put("/sales/:id", sales.UpdateSaleHandler(svc))
	protected.Delete("/sales/:id", sales.DeleteSaleHandler(svc))
	protected.Get("/sales/:id/invoice", sales.InvoiceHandler(svc, cfg))

	// dashboard
	protected.Get("/dashboard/stats", dashboard.StatsHandler(svc))

	logrus.Infof("server listening on port %s", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		logrus.Fatal(err)
	}
}
