package api

import (
	"github.com/gin-gonic/gin"
)

// NewRouter wires the operations endpoints. reader may be nil when the
// booking store is disabled.
func NewRouter(reader BookingReader) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	NewHealthHandler(reader != nil).Register(router)
	NewBookingHandler(reader).Register(router.Group("/bookings"))

	return router
}
