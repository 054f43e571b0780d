package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chasmapasal/chasmapasal-api/internal/auth"
	"github.com/chasmapasal/chasmapasal-api/internal/handlers"
	"github.com/chasmapasal/chasmapasal-api/internal/infra/storage"
	"github.com/chasmapasal/chasmapasal-api/internal/middleware"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

// Handlers is everything the router mounts.
type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Appointment  *handlers.AppointmentHandler
	Payment      *handlers.PaymentHandler
	Order        *handlers.OrderHandler
	Cart         *handlers.CartHandler
	Notification *handlers.NotificationHandler
	Review       *handlers.ReviewHandler
	Product      *handlers.ProductHandler
	Stats        *handlers.StatsHandler
}

// RegisterRoutes mounts the API. uploadDir is served at /uploads when objects
// live on local disk; empty disables it.
func RegisterRoutes(r *gin.Engine, h Handlers, tokens *auth.TokenIssuer, uploadDir string) {

	// ======================================================
	// STATIC
	// ======================================================
	if uploadDir != "" {
		r.Static(storage.PublicPrefix, uploadDir)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authn := middleware.AuthMiddleware(tokens)
	admin := middleware.RequireRole(models.RoleAdmin)
	self := middleware.RequireSelfOrAdmin("userId")

	api := r.Group("/api")

	// ------------------------------
	// USERS
	// ------------------------------
	user := api.Group("/user")
	{
		user.POST("/register", h.Auth.Register)
		user.POST("/login", h.Auth.Login)
		user.POST("/send-verify-otp", h.Auth.SendVerifyOTP)
		user.POST("/verify-email", h.Auth.VerifyEmail)
		user.POST("/send-reset-otp", h.Auth.SendResetOTP)
		user.POST("/reset-password", h.Auth.ResetPassword)

		user.GET("/doctors", h.User.ListDoctors)

		user.GET("/me", authn, h.User.GetMe)
		user.PUT("/:userId/image", authn, h.User.UpdateImage)
		user.DELETE("/doctor/:doctorId", authn, admin, h.User.DeleteDoctor)
	}

	// ------------------------------
	// APPOINTMENTS
	// ------------------------------
	appointment := api.Group("/appointment")
	{
		appointment.GET("/available/slots", h.Appointment.AvailableSlots)

		appointment.POST("", authn, h.Appointment.Create)
		appointment.GET("", authn, admin, h.Appointment.List)
		appointment.GET("/user/:userId", authn, self, h.Appointment.ListByUser)
		appointment.POST("/clear/past", authn, h.Appointment.ClearPast)
		appointment.PUT("/:id", authn, h.Appointment.Update)
		appointment.DELETE("/:id", authn, h.Appointment.Delete)
	}

	// ------------------------------
	// PAYMENTS
	// ------------------------------
	khalti := api.Group("/khalti")
	{
		khalti.GET("/webhook", h.Payment.Webhook)
		khalti.POST("/payment", authn, h.Payment.Checkout)
		khalti.POST("/verify", authn, h.Payment.Verify)
	}

	// ------------------------------
	// ORDERS
	// ------------------------------
	order := api.Group("/order", authn)
	{
		order.POST("", h.Order.Create)
		order.GET("", admin, h.Order.ListAll)
		order.GET("/:id", h.Order.ListByUser)
		order.PUT("/:id", h.Order.Update)
		order.DELETE("/:id", admin, h.Order.Delete)
		order.PATCH("/:id/cancel", h.Order.Cancel)
	}

	// ------------------------------
	// CART
	// ------------------------------
	cart := api.Group("/cart", authn)
	{
		cart.GET("/:userId", self, h.Cart.Get)
		cart.POST("/:userId", self, h.Cart.AddItem)
		cart.DELETE("/:userId", self, h.Cart.Clear)
		cart.DELETE("/:userId/:itemId", self, h.Cart.RemoveItem)
	}

	// ------------------------------
	// NOTIFICATIONS
	// ------------------------------
	notification := api.Group("/notification", authn)
	{
		notification.POST("", h.Notification.Create)
		notification.GET("/:userId", self, h.Notification.List)
		notification.PUT("/read-all/:userId", self, h.Notification.MarkAllRead)
		notification.PUT("/:id", h.Notification.MarkRead)
		notification.DELETE("/all/:userId", self, h.Notification.DeleteAll)
		notification.DELETE("/:id", h.Notification.Delete)
	}

	// ------------------------------
	// REVIEWS
	// ------------------------------
	review := api.Group("/review")
	{
		review.GET("/:doctorId", h.Review.ListForDoctor)
		review.POST("", authn, h.Review.Create)
		review.PUT("/:id", authn, h.Review.Update)
		review.DELETE("/:id", authn, h.Review.Delete)
	}

	// ------------------------------
	// CATALOG
	// ------------------------------
	product := api.Group("/product")
	{
		product.GET("", h.Product.List)
		product.GET("/:id", h.Product.Get)
		product.POST("", authn, admin, h.Product.Create)
		product.PUT("/:id", authn, admin, h.Product.Update)
		product.DELETE("/:id", authn, admin, h.Product.Delete)
	}

	api.POST("/upload", authn, h.Product.Upload)

	// ------------------------------
	// DASHBOARD
	// ------------------------------
	count := api.Group("/count", authn, admin)
	{
		count.GET("", h.Stats.Summary)
		count.GET("/:kind", h.Stats.Count)
	}
}
