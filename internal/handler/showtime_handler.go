package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/vhoang/cinema-booking/internal/app"
)

type ShowtimeHandler struct {
	app *app.App
}

func NewShowtimeHandler(app *app.App) *ShowtimeHandler {
	return &ShowtimeHandler{
		app: app,
	}
}

func (h *ShowtimeHandler) HandleSeatMap(ctx *gin.Context) {
	seatMap, err := h.app.SeatMapService.GetSeatMap(ctx.Param("id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(200, seatMap)
}
