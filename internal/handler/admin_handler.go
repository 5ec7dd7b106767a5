package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/vhoang/cinema-booking/internal/app"
	"github.com/vhoang/cinema-booking/internal/middleware"
	"github.com/vhoang/cinema-booking/internal/model"
)

type AdminHandler struct {
	app *app.App
}

func NewAdminHandler(app *app.App) *AdminHandler {
	return &AdminHandler{
		app: app,
	}
}

// HandleListBookings lists bookings across users. Cinema-scoped admins
// only see bookings for showtimes of their own cinema.
func (h *AdminHandler) HandleListBookings(ctx *gin.Context) {
	identity := middleware.GetIdentity(ctx)

	cinemaID := ctx.Query("cinema_id")
	if identity.Role == middleware.RoleCinemaAdmin {
		cinemaID = identity.CinemaID
	}

	status := model.BookingStatus(ctx.Query("status"))
	bookings, err := h.app.BookingService.ListAllBookings(cinemaID, status)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(200, gin.H{"bookings": bookings})
}

// HandleForceExpire runs one reaper sweep immediately instead of
// waiting for the next tick.
func (h *AdminHandler) HandleForceExpire(ctx *gin.Context) {
	result := h.app.ExpiryWorkflow.RunOnce()
	ctx.JSON(200, gin.H{
		"message": "Expiry sweep completed",
		"result":  result,
	})
}
