package routes

import (
	"time"

	"prepbook/handlers"
	"prepbook/middleware"
	"prepbook/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAvailabilityRoutes registers slot availability and slot rule endpoints.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/api/availability/:providerId", hb.GetAvailability)

	rules := r.Group("/api/slot-rules")
	{
		rules.GET("/:providerId", hb.GetSlotRules)
		rules.PUT("", middleware.JWTAuthMiddleware(), middleware.RequireRole(models.RoleInterviewer), hb.SaveSlotRules)
	}
}

// RegisterBookingRoutes registers the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/bookings")
	{
		bookingGroup.Use(middleware.JWTAuthMiddleware())
		bookingGroup.POST("", middleware.RequireRole(models.RoleUser), hb.CreateBooking)
		bookingGroup.GET("", hb.ListBookings)
		bookingGroup.GET("/:id", hb.GetBooking)
		bookingGroup.POST("/:id/confirm-payment", hb.ConfirmPayment)
		bookingGroup.POST("/:id/cancel", hb.CancelBooking)
		bookingGroup.POST("/:id/complete", hb.CompleteBooking)
	}
}

// RegisterWalletRoutes registers payment order and wallet endpoints.
func RegisterWalletRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	payments := r.Group("/api/payments")
	{
		payments.Use(middleware.JWTAuthMiddleware())
		payments.POST("/orders", hb.CreatePaymentOrder)
	}

	walletGroup := r.Group("/api/wallet")
	{
		walletGroup.Use(middleware.JWTAuthMiddleware())
		walletGroup.GET("", hb.GetWallet)
		walletGroup.GET("/transactions", hb.ListTransactions)
		walletGroup.POST("/top-up", hb.TopUpWallet)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.JWTAuthAdminMiddleware()...)
		adminGroup.GET("/wallets", hb.AdminHandler.GetAllWalletsHandler)
	}
}

// RegisterHealthRoute adds a simple health check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterAvailabilityRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterWalletRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
