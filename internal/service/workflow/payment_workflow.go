package workflow

import (
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/vhoang/cinema-booking/internal/gateway"
	"github.com/vhoang/cinema-booking/internal/mq"
	"github.com/vhoang/cinema-booking/internal/service/domain"
)

// PaymentWorkflow routes the provider callback through the payment
// service and publishes the confirmation event when a booking flips.
type PaymentWorkflow struct {
	PaymentService domain.PaymentService
	MQConn         *amqp.Connection
	Logger         *zap.Logger
}

func NewPaymentWorkflow(paymentService domain.PaymentService, mqConn *amqp.Connection, logger *zap.Logger) *PaymentWorkflow {
	return &PaymentWorkflow{
		PaymentService: paymentService,
		MQConn:         mqConn,
		Logger:         logger,
	}
}

// ProcessIPN always yields an acknowledgement; the caller turns it into
// a 200 response no matter the outcome so the provider stops retrying.
func (w *PaymentWorkflow) ProcessIPN(params map[string]string) gateway.IPNAck {
	ack, outcome := w.PaymentService.HandleIPN(params)
	if outcome != nil && outcome.Confirmed {
		publishBookingEvent(w.MQConn, w.Logger, bookingEvent(mq.BookingConfirmedEvent, &outcome.Booking))
	}
	return ack
}
