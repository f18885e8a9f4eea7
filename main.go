package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	cron "github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"lashstudio-backend/config"
	"lashstudio-backend/models"
	"lashstudio-backend/routes"
	"lashstudio-backend/services"
	"lashstudio-backend/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.Slot{},
		&models.Booking{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if err := ensureAdmin(db); err != nil {
		log.Fatalf("Failed to bootstrap admin user: %v", err)
	}

	notifier := services.NewNotifier()
	gateway := services.NewPaymentGateway()
	availability := services.NewAvailabilityService(db)
	bookings := services.NewBookingService(db, gateway, notifier)
	payments := services.NewPaymentService(db, notifier)
	slots := services.NewSlotService(db)

	limiter := utils.NewRateLimiter()
	limiter.AddTier("public", utils.RateLimitConfig{MaxRequests: 60, Window: time.Minute})
	limiter.AddTier("auth", utils.RateLimitConfig{MaxRequests: 30, Window: time.Minute})
	limiter.AddTier("booking", utils.RateLimitConfig{MaxRequests: 5, Window: 5 * time.Minute})
	limiter.AddTier("admin", utils.RateLimitConfig{MaxRequests: 120, Window: time.Minute})

	startSchedulers(payments, limiter)

	r := routes.SetupRouter(routes.Dependencies{
		DB:           db,
		Limiter:      limiter,
		Availability: availability,
		Bookings:     bookings,
		Payments:     payments,
		Slots:        slots,
	})
	printRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// startSchedulers runs the background sweeps: payment expiry and rate
// limiter cleanup. Both are plain methods, so tests trigger them
// directly instead of waiting on timers.
func startSchedulers(payments *services.PaymentService, limiter *utils.RateLimiter) {
	expiryMinutes := 5
	if env := os.Getenv("PAYMENT_EXPIRY_INTERVAL_MINUTES"); env != "" {
		if m, err := strconv.Atoi(env); err == nil {
			expiryMinutes = m
		}
	}

	c := cron.New()
	c.AddFunc(fmt.Sprintf("@every %dm", expiryMinutes), payments.ExpirePending)
	c.AddFunc("@every 1m", limiter.Cleanup)
	c.Start()
	log.Println("Background schedulers started")
}

// ensureAdmin creates the operator account from env on first start.
func ensureAdmin(db *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin bootstrap")
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	admin := models.User{
		Email:    email,
		Password: password, // hashed in BeforeCreate hook
		Name:     "Operator",
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("Admin user %s created", email)
	return nil
}

func printRoutes(r *gin.Engine) {
	for _, route := range r.Routes() {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
