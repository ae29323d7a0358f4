// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/havenwellness/haven-go/internal/application/container"
	"github.com/havenwellness/haven-go/internal/presentation/http/handlers"
	"github.com/havenwellness/haven-go/internal/presentation/http/middleware"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Initialize handlers
	visitHandlers := handlers.NewVisitHandlers(container.SessionService, container.Logger, container.PerfTracker)
	eventHandlers := handlers.NewEventHandlers(container.SessionService, container.ExperimentService, container.InteractionService, container.Logger, container.PerfTracker)
	bookingHandlers := handlers.NewBookingHandlers(container.SessionService, container.ExperimentService, container.BookingService, container.Logger, container.PerfTracker)
	promoHandlers := handlers.NewPromoHandlers(container.SessionService, container.ExperimentService, container.PromoService, container.Logger, container.PerfTracker)
	contentHandlers := handlers.NewContentHandlers(container.ContentService, container.Logger, container.PerfTracker)
	contactHandlers := handlers.NewContactHandlers(container.SessionService, container.ExperimentService, container.ContactService, container.Logger, container.PerfTracker)
	analyticsHandlers := handlers.NewAnalyticsHandlers(container.AnalyticsService, container.Logger, container.PerfTracker)
	authHandlers := handlers.NewAuthHandlers(container.AuthService, container.Logger, container.PerfTracker)

	api := r.Group("/api/v1")
	api.Use(middleware.IdentityMiddleware())
	{
		// Identity and session
		auth := api.Group("/auth")
		{
			auth.POST("/visit", visitHandlers.PostVisit)
			auth.POST("/login", authHandlers.PostLogin)
		}

		// Interaction reports
		api.POST("/events", eventHandlers.PostEvents)

		// Booking funnel
		booking := api.Group("/booking")
		{
			booking.GET("/resolve", bookingHandlers.GetResolve)
			booking.POST("/confirmation", bookingHandlers.PostConfirmation)
		}

		// Promotional dialog
		promo := api.Group("/promo")
		{
			promo.GET("/active", promoHandlers.GetActive)
			promo.POST("/:id/shown", promoHandlers.PostShown)
			promo.POST("/:id/dismiss", promoHandlers.PostDismiss)
			promo.POST("/:id/cta", promoHandlers.PostCTA)
		}

		// Content
		api.GET("/treatments", contentHandlers.GetTreatments)
		api.GET("/treatments/:slug", contentHandlers.GetTreatmentBySlug)
		api.GET("/categories", contentHandlers.GetCategories)

		// Contact form
		api.POST("/contact", contactHandlers.PostContact)

		// Admin analytics
		analytics := api.Group("/analytics")
		analytics.Use(authHandlers.AuthMiddleware())
		{
			analytics.GET("/dashboard", analyticsHandlers.GetDashboard)
		}
	}

	return r
}
