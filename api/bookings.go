package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Domenick1991/hotelbot/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type BookingReader interface {
	GetByBookingID(ctx context.Context, bookingID string) (*domain.BookingRecord, error)
}

// BookingHandler serves stored bookings to operators. A nil reader means
// persistence is not configured.
type BookingHandler struct {
	reader BookingReader
}

type bookingResponse struct {
	BookingID  string `json:"booking_id"`
	Status     string `json:"status"`
	UserID     int64  `json:"user_id"`
	Username   string `json:"username"`
	RoomType   string `json:"room_type"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Nights     int    `json:"nights"`
	TotalPrice int64  `json:"total_price"`
	Currency   string `json:"currency"`
	CreatedAt  string `json:"created_at"`
}

func NewBookingHandler(reader BookingReader) *BookingHandler {
	return &BookingHandler{reader: reader}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.GET("/:booking_id", h.get)
}

func (h *BookingHandler) get(c *gin.Context) {
	if h.reader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": domain.ErrPersistenceDisabled.Error()})
		return
	}

	id := c.Param("booking_id")
	record, err := h.reader.GetByBookingID(c.Request.Context(), id)
	if errors.Is(err, domain.ErrBookingNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to load booking")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "booking store unavailable"})
		return
	}

	c.JSON(http.StatusOK, bookingResponse{
		BookingID:  record.BookingID,
		Status:     string(record.Status),
		UserID:     record.UserID,
		Username:   record.Username,
		RoomType:   string(record.RoomType),
		CheckIn:    record.CheckIn.Format(domain.DateLayout),
		CheckOut:   record.CheckOut.Format(domain.DateLayout),
		Nights:     record.Nights,
		TotalPrice: record.TotalPrice,
		Currency:   domain.Currency,
		CreatedAt:  record.CreatedAt.Format(time.RFC3339),
	})
}
