package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vhoang/cinema-booking/internal/gateway"
	"github.com/vhoang/cinema-booking/internal/model"
	"github.com/vhoang/cinema-booking/internal/repository"
	"github.com/vhoang/cinema-booking/internal/service"
)

// PaymentService owns the provider round trip: signed URL out, IPN
// callback in. Confirmation is the only place tickets get written, and
// it happens in one transaction with the status flip and hold release.
type PaymentService interface {
	CreatePaymentURL(userID, bookingID string, req PaymentURLRequest) (*PaymentURLResult, error)
	HandleIPN(params map[string]string) (gateway.IPNAck, *PaymentOutcome)
	HandleReturn(params map[string]string) ReturnResult
	GetPayment(userID, bookingID string) (*model.Payment, error)
}

type PaymentURLRequest struct {
	ClientIP  string
	ReturnURL string
	BankCode  string
	Locale    string
}

type PaymentURLResult struct {
	PaymentURL  string    `json:"payment_url"`
	BookingCode string    `json:"booking_code"`
	Amount      int64     `json:"amount"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// PaymentOutcome is what the IPN handler hands upward for event
// publishing once the acknowledgement is decided. Nil means nothing
// state-changing happened.
type PaymentOutcome struct {
	Booking   model.Booking
	Confirmed bool
}

type ReturnResult struct {
	IsVerified   bool   `json:"is_verified"`
	IsSuccess    bool   `json:"is_success"`
	Message      string `json:"message"`
	BookingCode  string `json:"booking_code"`
	Amount       int64  `json:"amount"`
	ResponseCode string `json:"response_code"`
}

type paymentService struct {
	tx        repository.TxManager
	bookings  repository.BookingRepo
	payments  repository.PaymentRepo
	holds     repository.SeatHoldRepo
	tickets   repository.TicketRepo
	showtimes repository.ShowtimeRepo
	seats     repository.SeatRepo

	gateway *gateway.VNPay
	cache   SeatMapCache
	logger  *zap.Logger
}

var _ PaymentService = (*paymentService)(nil)

func NewPaymentService(
	tx repository.TxManager,
	bookings repository.BookingRepo,
	payments repository.PaymentRepo,
	holds repository.SeatHoldRepo,
	tickets repository.TicketRepo,
	showtimes repository.ShowtimeRepo,
	seats repository.SeatRepo,
	gw *gateway.VNPay,
	cache SeatMapCache,
	logger *zap.Logger,
) *paymentService {
	return &paymentService{
		tx:        tx,
		bookings:  bookings,
		payments:  payments,
		holds:     holds,
		tickets:   tickets,
		showtimes: showtimes,
		seats:     seats,
		gateway:   gw,
		cache:     cache,
		logger:    logger,
	}
}

func (s *paymentService) CreatePaymentURL(userID, bookingID string, req PaymentURLRequest) (*PaymentURLResult, error) {
	booking, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if booking.UserID != userID {
		return nil, service.ErrForbidden
	}
	switch booking.Status {
	case model.BookingPending:
	case model.BookingConfirmed:
		return nil, service.ErrAlreadyConfirmed
	case model.BookingCancelled:
		return nil, service.ErrAlreadyCancelled
	default:
		return nil, service.ErrBookingExpired
	}
	if !booking.ExpiresAt.After(time.Now()) {
		return nil, service.ErrBookingExpired
	}

	// Re-serving the same URL keeps double-clicks harmless; only a FAILED
	// attempt earns a fresh one.
	existing, err := s.payments.GetByBookingID(bookingID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status != model.PaymentFailed && existing.PaymentURL != "" {
		return &PaymentURLResult{
			PaymentURL:  existing.PaymentURL,
			BookingCode: existing.TxnRef,
			Amount:      existing.Amount,
			ExpiresAt:   booking.ExpiresAt,
		}, nil
	}

	url := s.gateway.BuildPaymentURL(gateway.BuildURLParams{
		Amount:    booking.FinalAmount,
		OrderInfo: fmt.Sprintf("Thanh toan ve xem phim %s", booking.BookingCode),
		TxnRef:    booking.BookingCode,
		IPAddr:    req.ClientIP,
		ReturnURL: req.ReturnURL,
		BankCode:  req.BankCode,
		Locale:    req.Locale,
		ExpireAt:  booking.ExpiresAt,
	})

	payment := &model.Payment{
		ID:         uuid.NewString(),
		BookingID:  booking.ID,
		Amount:     booking.FinalAmount,
		Method:     model.PaymentMethodVNPay,
		Status:     model.PaymentPending,
		TxnRef:     booking.BookingCode,
		PaymentURL: url,
	}
	if err := s.payments.Upsert(payment); err != nil {
		return nil, err
	}

	s.logger.Info("payment url issued",
		zap.String("booking_id", booking.ID),
		zap.String("txn_ref", booking.BookingCode),
		zap.Int64("amount", booking.FinalAmount),
	)

	return &PaymentURLResult{
		PaymentURL:  url,
		BookingCode: booking.BookingCode,
		Amount:      booking.FinalAmount,
		ExpiresAt:   booking.ExpiresAt,
	}, nil
}

// HandleIPN processes the provider's server-to-server callback. Every
// path returns an acknowledgement the provider understands; the HTTP
// status is always 200 so the provider stops retrying once we answered.
func (s *paymentService) HandleIPN(params map[string]string) (gateway.IPNAck, *PaymentOutcome) {
	result := s.gateway.Verify(params)
	if !result.IsVerified {
		s.logger.Warn("ipn checksum failed", zap.String("txn_ref", result.TxnRef))
		return gateway.AckChecksumFailed, nil
	}

	booking, err := s.bookings.GetByCode(result.TxnRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return gateway.AckOrderNotFound, nil
		}
		s.logger.Error("ipn booking lookup failed", zap.Error(err))
		return gateway.AckUnknownError, nil
	}
	if booking.Status == model.BookingConfirmed {
		// Retry of a callback we already processed.
		return gateway.AckOrderAlreadyConfirmed, nil
	}
	if booking.Status != model.BookingPending {
		// Expired or cancelled before the notification landed; the order
		// is no longer payable, so concede rather than invite retries.
		return gateway.AckOrderNotFound, nil
	}
	// Compare in the provider's minor unit so a notification off by even a
	// fraction of the base unit is rejected.
	if result.Amount != booking.FinalAmount*100 {
		s.logger.Warn("ipn amount mismatch",
			zap.String("booking_id", booking.ID),
			zap.Int64("expected", booking.FinalAmount*100),
			zap.Int64("got", result.Amount),
		)
		return gateway.AckInvalidAmount, nil
	}

	if !result.IsSuccess {
		if _, err := s.payments.MarkFailed(booking.ID, result.ResponseCode); err != nil {
			s.logger.Error("ipn mark failed errored",
				zap.String("booking_id", booking.ID), zap.Error(err))
			return gateway.AckUnknownError, nil
		}
		s.logger.Info("payment failed",
			zap.String("booking_id", booking.ID),
			zap.String("response_code", result.ResponseCode),
		)
		return gateway.AckSuccess, &PaymentOutcome{Booking: *booking, Confirmed: false}
	}

	if err := s.confirm(booking, result); err != nil {
		s.logger.Error("ipn confirmation failed",
			zap.String("booking_id", booking.ID), zap.Error(err))
		return gateway.AckUnknownError, nil
	}

	s.invalidateSeatMap(booking.ShowtimeID)
	s.logger.Info("booking confirmed",
		zap.String("booking_id", booking.ID),
		zap.String("booking_code", booking.BookingCode),
		zap.String("transaction_no", result.TransactionNo),
	)
	booking.Status = model.BookingConfirmed
	return gateway.AckSuccess, &PaymentOutcome{Booking: *booking, Confirmed: true}
}

// confirm writes the tickets, completes the payment and flips the
// booking, all or nothing. The unique ticket index backstops any seat
// the holds failed to protect.
func (s *paymentService) confirm(booking *model.Booking, result gateway.VerifyResult) error {
	return s.tx.Transaction(func(tx *gorm.DB) error {
		holds, err := s.holds.WithTx(tx).ActiveByUserAndShowtime(booking.UserID, booking.ShowtimeID)
		if err != nil {
			return err
		}
		if len(holds) == 0 {
			return service.ErrNoActiveHold
		}

		pricing, err := s.showtimes.WithTx(tx).GetPricing(booking.ShowtimeID)
		if err != nil {
			return err
		}
		priceMap := priceBySeatType(pricing)

		seats, err := s.seats.WithTx(tx).GetByIDs(holdSeatIDs(holds))
		if err != nil {
			return err
		}

		now := time.Now()
		tickets := make([]model.Ticket, 0, len(seats))
		for _, seat := range seats {
			price, ok := priceMap[seat.Type]
			if !ok {
				return service.ErrNoPricing
			}
			tickets = append(tickets, model.Ticket{
				ID:         uuid.NewString(),
				BookingID:  booking.ID,
				SeatID:     seat.ID,
				ShowtimeID: booking.ShowtimeID,
				Price:      price,
			})
		}
		if err := s.tickets.WithTx(tx).CreateBatch(tickets); err != nil {
			return err
		}

		meta := model.Payment{
			TransactionNo: result.TransactionNo,
			BankCode:      result.BankCode,
			BankTranNo:    result.BankTranNo,
			PayDate:       result.PayDate,
			ResponseCode:  result.ResponseCode,
			CompletedAt:   &now,
		}
		if _, err := s.payments.WithTx(tx).MarkCompleted(booking.ID, meta); err != nil {
			return err
		}

		rows, err := s.bookings.WithTx(tx).UpdateStatus(booking.ID, model.BookingPending, model.BookingConfirmed)
		if err != nil {
			return err
		}
		if rows == 0 {
			return errors.New("booking no longer pending")
		}

		_, err = s.holds.WithTx(tx).DeleteByUserAndShowtime(booking.UserID, booking.ShowtimeID)
		return err
	})
}

// HandleReturn only verifies and interprets the redirect parameters.
// State changes belong exclusively to the IPN path, which the provider
// guarantees to deliver; the browser redirect does not carry that
// guarantee.
func (s *paymentService) HandleReturn(params map[string]string) ReturnResult {
	result := s.gateway.Verify(params)
	return ReturnResult{
		IsVerified:   result.IsVerified,
		IsSuccess:    result.IsSuccess,
		Message:      result.Message,
		BookingCode:  result.TxnRef,
		Amount:       result.Amount / 100,
		ResponseCode: result.ResponseCode,
	}
}

func (s *paymentService) GetPayment(userID, bookingID string) (*model.Payment, error) {
	booking, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if booking.UserID != userID {
		return nil, service.ErrForbidden
	}
	payment, err := s.payments.GetByBookingID(bookingID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return payment, nil
}

func (s *paymentService) invalidateSeatMap(showtimeID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSeatMap(showtimeID); err != nil {
		s.logger.Warn("seat map invalidation failed",
			zap.String("showtime_id", showtimeID), zap.Error(err))
	}
}
