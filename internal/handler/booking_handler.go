package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/vhoang/cinema-booking/internal/app"
	"github.com/vhoang/cinema-booking/internal/middleware"
	"github.com/vhoang/cinema-booking/internal/model"
	"github.com/vhoang/cinema-booking/internal/service/domain"
)

type BookingHandler struct {
	app *app.App
}

func NewBookingHandler(app *app.App) *BookingHandler {
	return &BookingHandler{
		app: app,
	}
}

func (h *BookingHandler) HandleLockSeats(ctx *gin.Context) {
	var req LockSeatsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{
			"error":  "Invalid request format",
			"detail": err.Error(),
		})
		return
	}

	identity := middleware.GetIdentity(ctx)
	result, err := h.app.SeatLockService.LockSeats(identity.UserID, req.ShowtimeID, req.SeatIDs)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(200, gin.H{
		"message": "Seats locked",
		"lock":    result,
	})
}

func (h *BookingHandler) HandleUnlockSeats(ctx *gin.Context) {
	var req UnlockSeatsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{
			"error":  "Invalid request format",
			"detail": err.Error(),
		})
		return
	}

	identity := middleware.GetIdentity(ctx)
	released, err := h.app.SeatLockService.UnlockSeats(identity.UserID, req.ShowtimeID, req.SeatIDs)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(200, gin.H{
		"message":  "Seats unlocked",
		"released": released,
	})
}

func (h *BookingHandler) HandleMyHolds(ctx *gin.Context) {
	identity := middleware.GetIdentity(ctx)
	holds, err := h.app.SeatLockService.ListHolds(identity.UserID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(200, gin.H{"holds": holds})
}

func (h *BookingHandler) HandleCreateBooking(ctx *gin.Context) {
	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{
			"error":  "Invalid request format",
			"detail": err.Error(),
		})
		return
	}

	identity := middleware.GetIdentity(ctx)
	summary, err := h.app.BookingWorkflow.CreateBooking(identity.UserID, req.ShowtimeID, req.Concessions)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(201, gin.H{
		"message": "Booking created, complete payment before it expires",
		"booking": summary,
	})
}

func (h *BookingHandler) HandleGetBooking(ctx *gin.Context) {
	identity := middleware.GetIdentity(ctx)
	view, err := h.app.BookingService.GetBooking(identity.UserID, ctx.Param("id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(200, view)
}

func (h *BookingHandler) HandleGetBookingByCode(ctx *gin.Context) {
	identity := middleware.GetIdentity(ctx)
	view, err := h.app.BookingService.GetBookingByCode(identity.UserID, ctx.Param("code"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(200, view)
}

func (h *BookingHandler) HandleMyBookings(ctx *gin.Context) {
	identity := middleware.GetIdentity(ctx)
	status := model.BookingStatus(ctx.Query("status"))

	bookings, err := h.app.BookingService.ListUserBookings(identity.UserID, status)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(200, gin.H{"bookings": bookings})
}

func (h *BookingHandler) HandleCancelBooking(ctx *gin.Context) {
	identity := middleware.GetIdentity(ctx)
	if err := h.app.BookingWorkflow.CancelBooking(identity.UserID, ctx.Param("id")); err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(200, gin.H{"message": "Booking cancelled"})
}

type LockSeatsRequest struct {
	ShowtimeID string   `json:"showtime_id" binding:"required"`
	SeatIDs    []string `json:"seat_ids" binding:"required"`
}

type UnlockSeatsRequest struct {
	ShowtimeID string   `json:"showtime_id" binding:"required"`
	SeatIDs    []string `json:"seat_ids" binding:"required"`
}

type CreateBookingRequest struct {
	ShowtimeID  string                   `json:"showtime_id" binding:"required"`
	Concessions []domain.ConcessionOrder `json:"concessions"`
}
