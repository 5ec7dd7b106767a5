package domain

import (
	"crypto/rand"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vhoang/cinema-booking/internal/model"
	"github.com/vhoang/cinema-booking/internal/repository"
	"github.com/vhoang/cinema-booking/internal/service"
)

// BookingService turns a buyer's active seat holds into a priced PENDING
// booking and drives its lifecycle transitions. Tickets are never written
// here: they only materialize inside the payment confirmation transaction.
type BookingService interface {
	CreateBooking(userID, showtimeID string, concessions []ConcessionOrder) (*BookingSummary, error)
	GetBooking(userID, bookingID string) (*BookingView, error)
	GetBookingByCode(userID, code string) (*BookingView, error)
	ListUserBookings(userID string, status model.BookingStatus) ([]model.Booking, error)
	ListAllBookings(cinemaID string, status model.BookingStatus) ([]model.Booking, error)
	CancelBooking(userID, bookingID string) (*model.Booking, error)
	ExpirePending() ([]model.Booking, error)
}

type ConcessionOrder struct {
	ConcessionID string `json:"concession_id"`
	Quantity     int    `json:"quantity"`
}

type BookingSeat struct {
	SeatID string         `json:"seat_id"`
	Row    string         `json:"row"`
	Number int            `json:"number"`
	Type   model.SeatType `json:"seat_type"`
	Price  int64          `json:"price"`
}

type ConcessionLine struct {
	ConcessionID string `json:"concession_id"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	UnitPrice    int64  `json:"unit_price"`
	TotalPrice   int64  `json:"total_price"`
}

type BookingSummary struct {
	BookingID   string              `json:"booking_id"`
	BookingCode string              `json:"booking_code"`
	Status      model.BookingStatus `json:"status"`
	ExpiresAt   time.Time           `json:"expires_at"`

	MovieTitle string    `json:"movie_title"`
	CinemaName string    `json:"cinema_name"`
	HallName   string    `json:"hall_name"`
	StartTime  time.Time `json:"start_time"`
	Format     string    `json:"format"`

	Seats       []BookingSeat    `json:"seats"`
	Concessions []ConcessionLine `json:"concessions"`

	TicketsSubtotal     int64 `json:"tickets_subtotal"`
	ConcessionsSubtotal int64 `json:"concessions_subtotal"`
	FinalAmount         int64 `json:"final_amount"`

	CreatedAt time.Time `json:"created_at"`
}

type BookingView struct {
	Booking     model.Booking             `json:"booking"`
	Tickets     []model.Ticket            `json:"tickets"`
	Concessions []model.BookingConcession `json:"concessions"`
	Payment     *model.Payment            `json:"payment,omitempty"`
}

type bookingService struct {
	tx        repository.TxManager
	bookings  repository.BookingRepo
	holds     repository.SeatHoldRepo
	tickets   repository.TicketRepo
	showtimes repository.ShowtimeRepo
	seats     repository.SeatRepo
	catalog   repository.CatalogRepo
	payments  repository.PaymentRepo

	cache  SeatMapCache
	logger *zap.Logger
}

var _ BookingService = (*bookingService)(nil)

func NewBookingService(
	tx repository.TxManager,
	bookings repository.BookingRepo,
	holds repository.SeatHoldRepo,
	tickets repository.TicketRepo,
	showtimes repository.ShowtimeRepo,
	seats repository.SeatRepo,
	catalog repository.CatalogRepo,
	payments repository.PaymentRepo,
	cache SeatMapCache,
	logger *zap.Logger,
) *bookingService {
	return &bookingService{
		tx:        tx,
		bookings:  bookings,
		holds:     holds,
		tickets:   tickets,
		showtimes: showtimes,
		seats:     seats,
		catalog:   catalog,
		payments:  payments,
		cache:     cache,
		logger:    logger,
	}
}

func (s *bookingService) CreateBooking(userID, showtimeID string, concessions []ConcessionOrder) (*BookingSummary, error) {
	showtime, err := s.showtimes.GetByID(showtimeID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !showtime.StartTime.After(time.Now()) {
		return nil, service.ErrPastShowtime
	}

	holds, err := s.holds.ActiveByUserAndShowtime(userID, showtimeID)
	if err != nil {
		return nil, err
	}
	if len(holds) == 0 {
		return nil, service.ErrNoActiveHold
	}

	pricing, err := s.showtimes.GetPricing(showtimeID)
	if err != nil {
		return nil, err
	}
	priceMap := priceBySeatType(pricing)

	seats, err := s.seats.GetByIDs(holdSeatIDs(holds))
	if err != nil {
		return nil, err
	}

	var ticketsSubtotal int64
	bookingSeats := make([]BookingSeat, 0, len(seats))
	for _, seat := range seats {
		price, ok := priceMap[seat.Type]
		if !ok {
			return nil, service.ErrNoPricing
		}
		ticketsSubtotal += price
		bookingSeats = append(bookingSeats, BookingSeat{
			SeatID: seat.ID,
			Row:    seat.RowLetter,
			Number: seat.SeatNumber,
			Type:   seat.Type,
			Price:  price,
		})
	}

	var concessionsSubtotal int64
	lines := make([]ConcessionLine, 0, len(concessions))
	if len(concessions) > 0 {
		ids := make([]string, 0, len(concessions))
		for _, c := range concessions {
			ids = append(ids, c.ConcessionID)
		}
		items, err := s.catalog.GetConcessions(ids)
		if err != nil {
			return nil, err
		}
		itemMap := make(map[string]model.Concession, len(items))
		for _, item := range items {
			itemMap[item.ID] = item
		}
		for _, c := range concessions {
			item, ok := itemMap[c.ConcessionID]
			if !ok {
				return nil, service.ErrUnknownConcession
			}
			total := item.Price * int64(c.Quantity)
			concessionsSubtotal += total
			lines = append(lines, ConcessionLine{
				ConcessionID: item.ID,
				Name:         item.Name,
				Quantity:     c.Quantity,
				UnitPrice:    item.Price,
				TotalPrice:   total,
			})
		}
	}

	finalAmount := ticketsSubtotal + concessionsSubtotal
	code, err := newBookingCode()
	if err != nil {
		return nil, err
	}

	// The booking cannot outlive the shortest hold backing it.
	expiresAt := holds[0].ExpiresAt
	for _, hold := range holds[1:] {
		if hold.ExpiresAt.Before(expiresAt) {
			expiresAt = hold.ExpiresAt
		}
	}

	booking := &model.Booking{
		ID:          uuid.NewString(),
		BookingCode: code,
		UserID:      userID,
		ShowtimeID:  showtimeID,
		FinalAmount: finalAmount,
		Status:      model.BookingPending,
		ExpiresAt:   expiresAt,
	}

	err = s.tx.Transaction(func(tx *gorm.DB) error {
		if err := s.bookings.WithTx(tx).Create(booking); err != nil {
			return err
		}
		concessionRows := make([]model.BookingConcession, 0, len(lines))
		for _, line := range lines {
			concessionRows = append(concessionRows, model.BookingConcession{
				ID:           uuid.NewString(),
				BookingID:    booking.ID,
				ConcessionID: line.ConcessionID,
				Quantity:     line.Quantity,
				UnitPrice:    line.UnitPrice,
				TotalPrice:   line.TotalPrice,
			})
		}
		return s.bookings.WithTx(tx).AddConcessions(concessionRows)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.String("booking_code", code),
		zap.String("user_id", userID),
		zap.Int64("final_amount", finalAmount),
	)

	movie, err := s.catalog.GetMovie(showtime.MovieID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	cinema, err := s.catalog.GetCinema(showtime.CinemaID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	hall, err := s.catalog.GetHall(showtime.HallID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	return &BookingSummary{
		BookingID:   booking.ID,
		BookingCode: code,
		Status:      booking.Status,
		ExpiresAt:   expiresAt,

		MovieTitle: movie.Title,
		CinemaName: cinema.Name,
		HallName:   hall.Name,
		StartTime:  showtime.StartTime,
		Format:     showtime.Format,

		Seats:       bookingSeats,
		Concessions: lines,

		TicketsSubtotal:     ticketsSubtotal,
		ConcessionsSubtotal: concessionsSubtotal,
		FinalAmount:         finalAmount,

		CreatedAt: booking.CreatedAt,
	}, nil
}

func (s *bookingService) GetBooking(userID, bookingID string) (*BookingView, error) {
	booking, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return s.buildView(userID, booking)
}

func (s *bookingService) GetBookingByCode(userID, code string) (*BookingView, error) {
	booking, err := s.bookings.GetByCode(code)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return s.buildView(userID, booking)
}

// buildView assembles the booking detail; userID == "" skips the
// ownership check (admin paths).
func (s *bookingService) buildView(userID string, booking *model.Booking) (*BookingView, error) {
	if userID != "" && booking.UserID != userID {
		return nil, service.ErrForbidden
	}
	tickets, err := s.tickets.ListByBooking(booking.ID)
	if err != nil {
		return nil, err
	}
	concessions, err := s.bookings.GetConcessions(booking.ID)
	if err != nil {
		return nil, err
	}
	view := &BookingView{Booking: *booking, Tickets: tickets, Concessions: concessions}

	payment, err := s.payments.GetByBookingID(booking.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	} else {
		view.Payment = payment
	}
	return view, nil
}

func (s *bookingService) ListUserBookings(userID string, status model.BookingStatus) ([]model.Booking, error) {
	return s.bookings.ListByUser(userID, status)
}

func (s *bookingService) ListAllBookings(cinemaID string, status model.BookingStatus) ([]model.Booking, error) {
	var showtimeIDs []string
	if cinemaID != "" {
		ids, err := s.showtimes.ListIDsByCinema(cinemaID)
		if err != nil {
			return nil, err
		}
		showtimeIDs = ids
	}
	return s.bookings.ListAdmin(status, showtimeIDs)
}

func (s *bookingService) CancelBooking(userID, bookingID string) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if booking.UserID != userID {
		return nil, service.ErrForbidden
	}
	if booking.Status == model.BookingCancelled {
		return nil, service.ErrAlreadyCancelled
	}

	showtime, err := s.showtimes.GetByID(booking.ShowtimeID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if booking.Status == model.BookingConfirmed && showtime.StartTime.Before(time.Now()) {
		return nil, service.ErrPastShowtime
	}

	err = s.tx.Transaction(func(tx *gorm.DB) error {
		rows, err := s.bookings.WithTx(tx).UpdateStatus(bookingID, booking.Status, model.BookingCancelled)
		if err != nil {
			return err
		}
		if rows == 0 {
			return service.ErrAlreadyCancelled
		}
		if _, err := s.tickets.WithTx(tx).DeleteByBooking(bookingID); err != nil {
			return err
		}
		// Best-effort symmetry: the backing holds may already be gone if
		// the reaper got there first, and deleting nothing is fine.
		_, err = s.holds.WithTx(tx).DeleteByUserAndShowtime(booking.UserID, booking.ShowtimeID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSeatMap(booking.ShowtimeID)
	s.logger.Info("booking cancelled",
		zap.String("booking_id", bookingID),
		zap.String("user_id", userID),
	)
	booking.Status = model.BookingCancelled
	return booking, nil
}

// ExpirePending sweeps PENDING bookings past their deadline. Each booking
// expires in its own transaction so one failure cannot abort the sweep.
func (s *bookingService) ExpirePending() ([]model.Booking, error) {
	candidates, err := s.bookings.ListPendingExpired(time.Now())
	if err != nil {
		return nil, err
	}

	expired := make([]model.Booking, 0, len(candidates))
	for _, booking := range candidates {
		err := s.tx.Transaction(func(tx *gorm.DB) error {
			rows, err := s.bookings.WithTx(tx).UpdateStatus(booking.ID, model.BookingPending, model.BookingExpired)
			if err != nil {
				return err
			}
			if rows == 0 {
				// Confirmed or cancelled since we listed it; leave it be.
				return nil
			}
			if _, err := s.tickets.WithTx(tx).DeleteByBooking(booking.ID); err != nil {
				return err
			}
			if _, err := s.holds.WithTx(tx).DeleteByUserAndShowtime(booking.UserID, booking.ShowtimeID); err != nil {
				return err
			}
			booking.Status = model.BookingExpired
			return nil
		})
		if err != nil {
			s.logger.Error("failed to expire booking",
				zap.String("booking_id", booking.ID), zap.Error(err))
			continue
		}
		if booking.Status == model.BookingExpired {
			s.invalidateSeatMap(booking.ShowtimeID)
			expired = append(expired, booking)
		}
	}

	if len(expired) > 0 {
		s.logger.Info("pending bookings expired", zap.Int("count", len(expired)))
	}
	return expired, nil
}

func (s *bookingService) invalidateSeatMap(showtimeID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSeatMap(showtimeID); err != nil {
		s.logger.Warn("seat map invalidation failed",
			zap.String("showtime_id", showtimeID), zap.Error(err))
	}
}

const bookingCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func newBookingCode() (string, error) {
	buf := make([]byte, 10)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = bookingCodeAlphabet[int(b)%len(bookingCodeAlphabet)]
	}
	return "BK" + string(buf), nil
}
