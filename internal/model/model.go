package model

import (
	"time"
)

type Movie struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Title     string `gorm:"size:200;not null"`
	PosterURL string
	Runtime   int
	AgeRating string `gorm:"size:16"`
}

type Cinema struct {
	ID      string `gorm:"type:uuid;primaryKey"`
	Name    string `gorm:"size:100;not null"`
	Address string
}

type Hall struct {
	ID       string `gorm:"type:uuid;primaryKey"`
	CinemaID string `gorm:"type:uuid;not null;index"`
	Name     string `gorm:"size:50;not null"`
}

type SeatType string

const (
	SeatStandard SeatType = "STANDARD"
	SeatPremium  SeatType = "PREMIUM"
	SeatPaired   SeatType = "PAIRED"
)

type Seat struct {
	ID         string   `gorm:"type:uuid;primaryKey"`
	HallID     string   `gorm:"type:uuid;not null;index"`
	RowLetter  string   `gorm:"size:4;not null"`
	SeatNumber int      `gorm:"not null"`
	Type       SeatType `gorm:"type:varchar(16);not null"`
}

type Showtime struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	MovieID   string    `gorm:"type:uuid;not null;index"`
	CinemaID  string    `gorm:"type:uuid;not null;index"`
	HallID    string    `gorm:"type:uuid;not null;index"`
	StartTime time.Time `gorm:"not null"`
	EndTime   time.Time `gorm:"not null"`
	Format    string    `gorm:"size:16"`
}

type TicketPricing struct {
	ID         string   `gorm:"type:uuid;primaryKey"`
	ShowtimeID string   `gorm:"type:uuid;not null;uniqueIndex:idx_pricing_showtime_type"`
	SeatType   SeatType `gorm:"type:varchar(16);not null;uniqueIndex:idx_pricing_showtime_type"`
	Price      int64    `gorm:"not null"`
}

type Concession struct {
	ID    string `gorm:"type:uuid;primaryKey"`
	Name  string `gorm:"size:100;not null"`
	Price int64  `gorm:"not null"`
}

// SeatHold is a time-boxed claim on one seat of one showtime. The unique
// index on (showtime_id, seat_id) is what makes concurrent lock attempts
// for the same seat lose atomically; expired rows are deleted inside the
// same transaction that inserts fresh holds.
type SeatHold struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	UserID     string    `gorm:"type:uuid;not null;index"`
	ShowtimeID string    `gorm:"type:uuid;not null;uniqueIndex:idx_seat_holds_slot"`
	SeatID     string    `gorm:"type:uuid;not null;uniqueIndex:idx_seat_holds_slot"`
	ExpiresAt  time.Time `gorm:"not null;index"`
	CreatedAt  time.Time
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingExpired   BookingStatus = "EXPIRED"
)

type Booking struct {
	ID          string        `gorm:"type:uuid;primaryKey"`
	BookingCode string        `gorm:"size:20;not null;uniqueIndex"`
	UserID      string        `gorm:"type:uuid;not null;index"`
	ShowtimeID  string        `gorm:"type:uuid;not null;index"`
	FinalAmount int64         `gorm:"not null"`
	Status      BookingStatus `gorm:"type:varchar(16);not null;index"`
	ExpiresAt   time.Time     `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type BookingConcession struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	BookingID    string `gorm:"type:uuid;not null;index"`
	ConcessionID string `gorm:"type:uuid;not null"`
	Quantity     int    `gorm:"not null"`
	UnitPrice    int64  `gorm:"not null"`
	TotalPrice   int64  `gorm:"not null"`
}

// Ticket is the permanent record of a sold seat. The unique index on
// (showtime_id, seat_id) is the sold-seat invariant: a second insert for
// the same slot fails no matter which path raced us there.
type Ticket struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	BookingID  string `gorm:"type:uuid;not null;index"`
	SeatID     string `gorm:"type:uuid;not null;uniqueIndex:idx_tickets_slot"`
	ShowtimeID string `gorm:"type:uuid;not null;uniqueIndex:idx_tickets_slot"`
	Price      int64  `gorm:"not null"`
	CreatedAt  time.Time
}

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "PENDING"
	PaymentProcessing PaymentStatus = "PROCESSING"
	PaymentCompleted  PaymentStatus = "COMPLETED"
	PaymentFailed     PaymentStatus = "FAILED"
	PaymentRefunded   PaymentStatus = "REFUNDED"
)

type PaymentMethod string

const (
	PaymentMethodVNPay PaymentMethod = "VNPAY"
)

type Payment struct {
	ID            string        `gorm:"type:uuid;primaryKey"`
	BookingID     string        `gorm:"type:uuid;not null;uniqueIndex"`
	Amount        int64         `gorm:"not null"`
	Method        PaymentMethod `gorm:"type:varchar(16);not null"`
	Status        PaymentStatus `gorm:"type:varchar(16);not null"`
	TxnRef        string        `gorm:"size:20;index"`
	PaymentURL    string        `gorm:"type:text"`
	TransactionNo string        `gorm:"size:32"`
	BankCode      string        `gorm:"size:32"`
	BankTranNo    string        `gorm:"size:64"`
	PayDate       string        `gorm:"size:14"`
	ResponseCode  string        `gorm:"size:4"`
	CompletedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
