package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/vhoang/cinema-booking/internal/app"
	"github.com/vhoang/cinema-booking/internal/middleware"
	"github.com/vhoang/cinema-booking/internal/service"
)

// RegisterRoutes wires every endpoint onto the engine. Seat maps and the
// provider callbacks are unauthenticated; everything else needs a token.
func RegisterRoutes(r *gin.Engine, a *app.App) {
	bookingHandler := NewBookingHandler(a)
	paymentHandler := NewPaymentHandler(a)
	showtimeHandler := NewShowtimeHandler(a)
	adminHandler := NewAdminHandler(a)

	r.GET("/showtimes/:id/seats", showtimeHandler.HandleSeatMap)

	// provider-facing callbacks carry their own HMAC, not a bearer token
	r.GET("/bookings/payment/notify", paymentHandler.HandleIPN)
	r.GET("/bookings/payment/return", paymentHandler.HandleReturn)

	auth := r.Group("/", middleware.JWTAuth(a.Config.JWTSecret))

	auth.POST("/bookings/lock", bookingHandler.HandleLockSeats)
	auth.POST("/bookings/unlock", bookingHandler.HandleUnlockSeats)
	auth.GET("/bookings/locks/my", bookingHandler.HandleMyHolds)

	auth.POST("/bookings", bookingHandler.HandleCreateBooking)
	auth.GET("/bookings/my", bookingHandler.HandleMyBookings)
	auth.GET("/bookings/code/:code", bookingHandler.HandleGetBookingByCode)
	auth.GET("/bookings/:id", bookingHandler.HandleGetBooking)
	auth.POST("/bookings/:id/cancel", bookingHandler.HandleCancelBooking)

	auth.POST("/bookings/:id/payment", paymentHandler.HandleCreatePaymentURL)
	auth.GET("/bookings/:id/payment", paymentHandler.HandleGetPayment)

	admin := auth.Group("/bookings/admin", middleware.RequireAdmin())
	admin.GET("/all", adminHandler.HandleListBookings)
	admin.POST("/expire", adminHandler.HandleForceExpire)
}

// writeServiceError maps domain sentinels onto HTTP statuses; seat
// conflicts additionally carry the exact seats that were lost.
func writeServiceError(ctx *gin.Context, err error) {
	var conflict *service.SeatConflictError
	if errors.As(err, &conflict) {
		ctx.JSON(409, gin.H{
			"error":    "Seat conflict",
			"message":  conflict.Reason.Error(),
			"seat_ids": conflict.SeatIDs,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		ctx.JSON(404, gin.H{"error": "Not found"})
	case errors.Is(err, service.ErrForbidden):
		ctx.JSON(403, gin.H{"error": "Forbidden"})
	case errors.Is(err, service.ErrInvalidSeat), errors.Is(err, service.ErrUnknownConcession):
		ctx.JSON(400, gin.H{"error": "Invalid request", "message": err.Error()})
	case service.IsConflict(err), service.IsPrecondition(err):
		ctx.JSON(409, gin.H{"error": "Conflict", "message": err.Error()})
	default:
		ctx.JSON(500, gin.H{
			"error":   "Internal server error",
			"message": "Failed to process request, please try again later",
		})
	}
}
