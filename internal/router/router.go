package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/booking-core/internal/middleware"
)

type Handler interface {
	CreateBooking(c *gin.Context)
	ListBookings(c *gin.Context)
	GetBooking(c *gin.Context)
	CancelBooking(c *gin.Context)
	ConfirmBooking(c *gin.Context)
	CompleteBooking(c *gin.Context)
	AvailableSlots(c *gin.Context)
	ListBusinessHours(c *gin.Context)
	CreateBusinessHours(c *gin.Context)
	Statistics(c *gin.Context)
}

type Options struct {
	Mode    string
	APIKeys []string
	// MCP — streamable-HTTP обработчик MCP; nil отключает /mcp.
	MCP http.Handler
}

func InitRouter(opts Options, h Handler, mw ...gin.HandlerFunc) *gin.Engine {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	router := gin.New()
	router.Use(mw...)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/", middleware.APIKey(opts.APIKeys))
	{
		// Bookings
		api.POST("/bookings", h.CreateBooking)
		api.GET("/bookings", h.ListBookings)
		api.GET("/bookings/:id", h.GetBooking)
		api.DELETE("/bookings/:id", h.CancelBooking)
		api.POST("/bookings/:id/confirm", h.ConfirmBooking)
		api.POST("/bookings/:id/complete", h.CompleteBooking)

		// Availability
		api.GET("/bookable_items/:id/available_slots", h.AvailableSlots)

		// Businesses
		api.GET("/businesses/:id/hours", h.ListBusinessHours)
		api.POST("/businesses/:id/hours", h.CreateBusinessHours)
		api.GET("/businesses/:id/statistics", h.Statistics)

		if opts.MCP != nil {
			api.Any("/mcp", gin.WrapH(opts.MCP))
		}
	}

	return router
}
