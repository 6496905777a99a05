package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"torqbay/internal/caching"
	"torqbay/internal/catalog"
	"torqbay/internal/handlers"
	"torqbay/internal/jobs/background"
	"torqbay/internal/middleware"
	"torqbay/internal/repositories"
	"torqbay/internal/services"
	"torqbay/pkg/database"
)

func main() {
	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}
	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret: %s", jwtSecret)
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin" // Default for development
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin" // Default for development
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	mediaSvc, err := services.NewMediaService(minioEndpoint, minioAccessKey, minioSecretKey, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize media service: %v", err)
	}

	// Razorpay configuration
	razorpayKey := os.Getenv("RAZORPAY_KEY")
	razorpaySecret := os.Getenv("RAZORPAY_SECRET")
	if razorpayKey == "" || razorpaySecret == "" {
		log.Fatal("RAZORPAY_KEY and RAZORPAY_SECRET environment variables are required")
	}
	razorpayWebhookSecret := os.Getenv("RAZORPAY_WEBHOOK_SECRET")

	// Service area: one state, one PIN prefix
	area := services.ServiceArea{
		State:     os.Getenv("SERVICE_STATE"),
		PINPrefix: os.Getenv("SERVICE_PIN_PREFIX"),
	}
	if area.State == "" {
		area.State = "Maharashtra"
	}
	if area.PINPrefix == "" {
		area.PINPrefix = "4"
	}

	// Create repositories
	productRepo := repositories.NewProductRepo(pool)
	ruleRepo := repositories.NewInstallationRuleRepo(pool)
	orderRepo := repositories.NewOrderRepo(pool)
	cartRepo := repositories.NewCartRepo(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Static lookup tables
	index := catalog.NewIndex(catalog.DefaultTree())

	// Create services
	gateway := services.NewRazorpayService(razorpayKey, razorpaySecret, razorpayWebhookSecret)
	productSvc := services.NewProductService(productRepo, index, mediaSvc, cacheSvc)
	ruleSvc := services.NewRuleService(ruleRepo, index, cacheSvc)
	checkoutSvc := services.NewCheckoutService(productRepo, ruleRepo, orderRepo, cartRepo, gateway, cacheSvc, area)
	orderSvc := services.NewOrderService(orderRepo, productRepo)

	// Create handlers
	productHandlers := handlers.NewProductHandlers(productSvc)
	categoryHandlers := handlers.NewCategoryHandlers(index)
	vehicleHandlers := handlers.NewVehicleHandlers()
	installationHandlers := handlers.NewInstallationHandlers(checkoutSvc, ruleSvc)
	cartHandlers := handlers.NewCartHandlers(cartRepo, productSvc, checkoutSvc)
	checkoutHandlers := handlers.NewCheckoutHandlers(checkoutSvc)
	orderHandlers := handlers.NewOrderHandlers(orderSvc)
	webhookHandlers := handlers.NewWebhookHandlers(gateway, orderRepo)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	// Background jobs
	jobScheduler := background.NewJobScheduler(orderSvc, ruleRepo, cacheSvc)
	if err := jobScheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer func() {
		if err := jobScheduler.Stop(); err != nil {
			log.Printf("Failed to stop job scheduler: %v", err)
		}
	}()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Pre(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())

	// Health and monitoring
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/ready", healthHandlers.ReadinessCheck)
	e.GET("/live", healthHandlers.LivenessCheck)
	e.GET("/metrics", healthHandlers.GetMetrics)

	v1 := e.Group("/v1")

	// Public storefront routes
	v1.GET("/products", productHandlers.ListProducts)
	v1.GET("/products/:id", productHandlers.GetProduct)
	v1.GET("/products/slug/:slug", productHandlers.GetProductBySlug)
	v1.GET("/categories", categoryHandlers.ListCategories)
	v1.GET("/categories/:slug/lineage", categoryHandlers.GetLineage)
	v1.GET("/categories/:slug/slugs", categoryHandlers.GetChildSlugs)
	v1.GET("/vehicles/brands", vehicleHandlers.ListBrands)
	v1.GET("/vehicles/segment", vehicleHandlers.GetSegment)
	v1.GET("/installation/quote", installationHandlers.Quote)

	// Gateway callbacks authenticate with their own signature, not a JWT.
	v1.POST("/webhooks/razorpay", webhookHandlers.HandleRazorpayWebhook,
		middleware.RateLimit(cacheSvc, "webhook", 120, time.Minute))

	// Authenticated customer routes
	authed := v1.Group("")
	authed.Use(echojwt.WithConfig(middleware.NewJWTConfig(jwtSecret)))
	authed.GET("/cart", cartHandlers.GetCart)
	authed.POST("/cart", cartHandlers.AddToCart)
	authed.DELETE("/cart", cartHandlers.ClearCart)
	authed.DELETE("/cart/:productId", cartHandlers.RemoveFromCart)
	authed.POST("/checkout", checkoutHandlers.Checkout,
		middleware.RateLimit(cacheSvc, "checkout", 10, time.Minute))
	authed.POST("/payments/verify", checkoutHandlers.VerifyPayment)
	authed.GET("/orders", orderHandlers.ListMyOrders)
	authed.GET("/orders/:id", orderHandlers.GetOrder)
	authed.POST("/orders/:id/cancel", orderHandlers.CancelOrder)

	// Admin routes
	admin := authed.Group("/admin")
	admin.Use(middleware.AdminOnly())
	admin.POST("/products", productHandlers.CreateProduct)
	admin.PUT("/products/:id", productHandlers.UpdateProduct)
	admin.DELETE("/products/:id", productHandlers.DeleteProduct)
	admin.POST("/products/:id/images", productHandlers.UploadProductImage)
	admin.GET("/installation-rules", installationHandlers.ListRules)
	admin.PUT("/installation-rules", installationHandlers.UpsertRule)
	admin.DELETE("/installation-rules/:id", installationHandlers.DeactivateRule)
	admin.GET("/orders", orderHandlers.SearchOrders)
	admin.PUT("/orders/:id/status", orderHandlers.UpdateOrderStatus)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		if err := e.Start(":" + port); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}
}
