package mq

import "time"

// Queue names and message definitions

// immediate queue of booking lifecycle events
// consumed by the notification service (tickets by email, refund alerts)
const (
	BookingEventsQueue = "booking.events.immediate"
)

type BookingEventType string

const (
	BookingCreatedEvent   BookingEventType = "booking.created"
	BookingConfirmedEvent BookingEventType = "booking.confirmed"
	BookingCancelledEvent BookingEventType = "booking.cancelled"
	BookingExpiredEvent   BookingEventType = "booking.expired"
)

type BookingEventMessage struct {
	Type        BookingEventType `json:"type"`
	BookingID   string           `json:"booking_id"`
	BookingCode string           `json:"booking_code"`
	UserID      string           `json:"user_id"`
	ShowtimeID  string           `json:"showtime_id"`
	Amount      int64            `json:"amount"`
	OccurredAt  time.Time        `json:"occurred_at"`
}
