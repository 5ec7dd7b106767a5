package handler

import (
	"fmt"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/vhoang/cinema-booking/internal/app"
	"github.com/vhoang/cinema-booking/internal/middleware"
	"github.com/vhoang/cinema-booking/internal/service/domain"
)

type PaymentHandler struct {
	app *app.App
}

func NewPaymentHandler(app *app.App) *PaymentHandler {
	return &PaymentHandler{
		app: app,
	}
}

func (h *PaymentHandler) HandleCreatePaymentURL(ctx *gin.Context) {
	var req CreatePaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && ctx.Request.ContentLength > 0 {
		ctx.JSON(400, gin.H{
			"error":  "Invalid request format",
			"detail": err.Error(),
		})
		return
	}

	identity := middleware.GetIdentity(ctx)
	result, err := h.app.PaymentService.CreatePaymentURL(identity.UserID, ctx.Param("id"), domain.PaymentURLRequest{
		ClientIP:  ctx.ClientIP(),
		ReturnURL: req.ReturnURL,
		BankCode:  req.BankCode,
		Locale:    req.Locale,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(200, gin.H{
		"message": "Payment URL created",
		"payment": result,
	})
}

func (h *PaymentHandler) HandleGetPayment(ctx *gin.Context) {
	identity := middleware.GetIdentity(ctx)
	payment, err := h.app.PaymentService.GetPayment(identity.UserID, ctx.Param("id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(200, payment)
}

// HandleIPN answers the provider's server-to-server notification. The
// status is always 200: the ack body, not the HTTP code, tells the
// provider whether to retry.
func (h *PaymentHandler) HandleIPN(ctx *gin.Context) {
	ack := h.app.PaymentWorkflow.ProcessIPN(queryToMap(ctx))
	ctx.JSON(200, ack)
}

// HandleReturn lands the buyer's browser after checkout and bounces it
// to the frontend result page. Nothing is persisted here.
func (h *PaymentHandler) HandleReturn(ctx *gin.Context) {
	result := h.app.PaymentService.HandleReturn(queryToMap(ctx))

	front := h.app.Config.FrontendURL
	if front == "" {
		ctx.JSON(200, result)
		return
	}

	q := url.Values{}
	q.Set("verified", fmt.Sprintf("%t", result.IsVerified))
	q.Set("success", fmt.Sprintf("%t", result.IsSuccess))
	q.Set("booking_code", result.BookingCode)
	q.Set("response_code", result.ResponseCode)
	q.Set("message", result.Message)

	ctx.Redirect(302, front+"/payment/result?"+q.Encode())
}

func queryToMap(ctx *gin.Context) map[string]string {
	params := make(map[string]string)
	for key, values := range ctx.Request.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params
}

type CreatePaymentRequest struct {
	ReturnURL string `json:"return_url"`
	BankCode  string `json:"bank_code"`
	Locale    string `json:"locale"`
}
