package routes

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"lashstudio-backend/config"
	"lashstudio-backend/controllers"
	"lashstudio-backend/services"
	"lashstudio-backend/utils"
)

// Dependencies is the explicit application state passed into every
// handler: store handle, services and the rate limiter instance.
type Dependencies struct {
	DB           *gorm.DB
	Limiter      *utils.RateLimiter
	Availability *services.AvailabilityService
	Bookings     *services.BookingService
	Payments     *services.PaymentService
	Slots        *services.SlotService
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.Default()

	allowedOrigin := os.Getenv("WEBAPP_URL")
	if allowedOrigin != "" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{allowedOrigin, "http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
			ExposeHeaders:    []string{"Content-Length", "Retry-After"},
			AllowCredentials: true,
		}))
	} else {
		r.Use(cors.Default())
	}

	r.Use(config.PerformanceLogger())

	authCtrl := &controllers.AuthController{DB: deps.DB}
	serviceCtrl := &controllers.ServiceController{DB: deps.DB}
	availabilityCtrl := &controllers.AvailabilityController{Availability: deps.Availability}
	bookingCtrl := &controllers.BookingController{DB: deps.DB, Bookings: deps.Bookings}
	adminCtrl := &controllers.AdminController{Slots: deps.Slots, Bookings: deps.Bookings}
	paymentCtrl := &controllers.PaymentController{Payments: deps.Payments}

	limitPublic := utils.RateLimitMiddleware(deps.Limiter, "public")
	limitAuth := utils.RateLimitMiddleware(deps.Limiter, "auth")
	limitBooking := utils.RateLimitMiddleware(deps.Limiter, "booking")
	limitAdmin := utils.RateLimitMiddleware(deps.Limiter, "admin")

	started := time.Now()
	r.GET("/api/health", limitPublic, func(c *gin.Context) {
		utils.Respond(c, http.StatusOK, gin.H{
			"status": "ok",
			"uptime": time.Since(started).String(),
		})
	})

	// Payment webhook (no auth — the gateway sends it)
	r.POST("/api/payments/webhook", limitPublic, paymentCtrl.Webhook)

	auth := r.Group("/auth")
	auth.Use(limitAuth)
	{
		auth.POST("/register", authCtrl.Register)
		auth.POST("/login", authCtrl.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", authCtrl.Me)
	}

	// Public read endpoints
	public := r.Group("/api")
	public.Use(limitPublic)
	{
		public.GET("/services", serviceCtrl.ListServices)
		public.GET("/addon-info", serviceCtrl.AddonInfo)
		public.GET("/available-dates", availabilityCtrl.AvailableDates)
		public.GET("/available-times", availabilityCtrl.AvailableTimes)
		public.GET("/calendar", availabilityCtrl.Calendar)
		public.GET("/bookings/:id/status", bookingCtrl.BookingStatus)
	}

	// Authenticated client endpoints
	client := r.Group("/api")
	client.Use(utils.AuthMiddleware())
	{
		client.POST("/bookings", limitBooking, bookingCtrl.CreateBooking)
		client.GET("/bookings/my", limitAuth, bookingCtrl.MyBookings)
		client.DELETE("/bookings/:id", limitAuth, bookingCtrl.CancelBooking)
	}

	// Operator endpoints
	admin := r.Group("/api/admin")
	admin.Use(limitAdmin, utils.AuthMiddleware(), utils.AdminMiddleware())
	{
		admin.GET("/services", serviceCtrl.ListAllServices)
		admin.POST("/services", serviceCtrl.CreateService)
		admin.PUT("/services/:id", serviceCtrl.UpdateService)

		admin.GET("/slots", adminCtrl.ListSlots)
		admin.POST("/slots", adminCtrl.CreateSlots)
		admin.DELETE("/slots/:id", adminCtrl.DeleteSlot)
		admin.POST("/openday", adminCtrl.OpenDay)

		admin.GET("/bookings", adminCtrl.ListBookings)
		admin.POST("/bookings/:id/cancel", adminCtrl.CancelBooking)
	}

	return r
}
