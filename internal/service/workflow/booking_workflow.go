package workflow

import (
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/vhoang/cinema-booking/internal/model"
	"github.com/vhoang/cinema-booking/internal/mq"
	"github.com/vhoang/cinema-booking/internal/service/domain"
)

// BookingWorkflow wraps the booking service's state-changing operations
// and publishes the matching lifecycle event after each one commits.
// Publishing is best-effort: the booking is already durable, so a broker
// hiccup is logged and swallowed rather than failing the request.
type BookingWorkflow struct {
	BookingService domain.BookingService
	MQConn         *amqp.Connection
	Logger         *zap.Logger
}

func NewBookingWorkflow(bookingService domain.BookingService, mqConn *amqp.Connection, logger *zap.Logger) *BookingWorkflow {
	return &BookingWorkflow{
		BookingService: bookingService,
		MQConn:         mqConn,
		Logger:         logger,
	}
}

func (w *BookingWorkflow) CreateBooking(userID, showtimeID string, concessions []domain.ConcessionOrder) (*domain.BookingSummary, error) {
	summary, err := w.BookingService.CreateBooking(userID, showtimeID, concessions)
	if err != nil {
		return nil, err
	}

	publishBookingEvent(w.MQConn, w.Logger, mq.BookingEventMessage{
		Type:        mq.BookingCreatedEvent,
		BookingID:   summary.BookingID,
		BookingCode: summary.BookingCode,
		UserID:      userID,
		ShowtimeID:  showtimeID,
		Amount:      summary.FinalAmount,
		OccurredAt:  time.Now(),
	})
	return summary, nil
}

func (w *BookingWorkflow) CancelBooking(userID, bookingID string) error {
	booking, err := w.BookingService.CancelBooking(userID, bookingID)
	if err != nil {
		return err
	}

	publishBookingEvent(w.MQConn, w.Logger, bookingEvent(mq.BookingCancelledEvent, booking))
	return nil
}

func bookingEvent(eventType mq.BookingEventType, booking *model.Booking) mq.BookingEventMessage {
	return mq.BookingEventMessage{
		Type:        eventType,
		BookingID:   booking.ID,
		BookingCode: booking.BookingCode,
		UserID:      booking.UserID,
		ShowtimeID:  booking.ShowtimeID,
		Amount:      booking.FinalAmount,
		OccurredAt:  time.Now(),
	}
}

func publishBookingEvent(conn *amqp.Connection, logger *zap.Logger, event mq.BookingEventMessage) {
	if conn == nil {
		return
	}
	ch, err := mq.NewChannel(conn)
	if err != nil {
		logger.Warn("mq channel open failed", zap.Error(err))
		return
	}
	defer ch.Close()

	if err := mq.SendImmediateMessage(ch, mq.BookingEventsQueue, event); err != nil {
		logger.Warn("booking event publish failed",
			zap.String("type", string(event.Type)),
			zap.String("booking_id", event.BookingID),
			zap.Error(err),
		)
	}
}
