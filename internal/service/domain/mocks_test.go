package domain

import (
	"time"

	"gorm.io/gorm"

	"github.com/vhoang/cinema-booking/internal/cache"
	"github.com/vhoang/cinema-booking/internal/model"
	"github.com/vhoang/cinema-booking/internal/repository"
)

// Func-field mocks for the repository interfaces. Unset fields fall back
// to harmless defaults (empty lists, record-not-found for single gets).

type MockTxManager struct {
	TransactionFunc func(fn func(tx *gorm.DB) error) error
}

func (m *MockTxManager) Transaction(fn func(tx *gorm.DB) error) error {
	if m.TransactionFunc != nil {
		return m.TransactionFunc(fn)
	}
	return fn(nil)
}

type MockShowtimeRepo struct {
	GetByIDFunc         func(id string) (*model.Showtime, error)
	GetPricingFunc      func(showtimeID string) ([]model.TicketPricing, error)
	ListIDsByCinemaFunc func(cinemaID string) ([]string, error)
}

func (m *MockShowtimeRepo) WithTx(tx *gorm.DB) repository.ShowtimeRepo { return m }

func (m *MockShowtimeRepo) GetByID(id string) (*model.Showtime, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockShowtimeRepo) GetPricing(showtimeID string) ([]model.TicketPricing, error) {
	if m.GetPricingFunc != nil {
		return m.GetPricingFunc(showtimeID)
	}
	return []model.TicketPricing{}, nil
}

func (m *MockShowtimeRepo) ListIDsByCinema(cinemaID string) ([]string, error) {
	if m.ListIDsByCinemaFunc != nil {
		return m.ListIDsByCinemaFunc(cinemaID)
	}
	return []string{}, nil
}

type MockSeatRepo struct {
	GetByIDsFunc       func(ids []string) ([]model.Seat, error)
	GetByIDsInHallFunc func(hallID string, ids []string) ([]model.Seat, error)
	GetByHallFunc      func(hallID string) ([]model.Seat, error)
}

func (m *MockSeatRepo) WithTx(tx *gorm.DB) repository.SeatRepo { return m }

func (m *MockSeatRepo) GetByIDs(ids []string) ([]model.Seat, error) {
	if m.GetByIDsFunc != nil {
		return m.GetByIDsFunc(ids)
	}
	return []model.Seat{}, nil
}

func (m *MockSeatRepo) GetByIDsInHall(hallID string, ids []string) ([]model.Seat, error) {
	if m.GetByIDsInHallFunc != nil {
		return m.GetByIDsInHallFunc(hallID, ids)
	}
	return []model.Seat{}, nil
}

func (m *MockSeatRepo) GetByHall(hallID string) ([]model.Seat, error) {
	if m.GetByHallFunc != nil {
		return m.GetByHallFunc(hallID)
	}
	return []model.Seat{}, nil
}

type MockSeatHoldRepo struct {
	ActiveOtherUserFunc         func(showtimeID string, seatIDs []string, userID string) ([]model.SeatHold, error)
	ActiveByUserAndShowtimeFunc func(userID, showtimeID string) ([]model.SeatHold, error)
	ActiveByUserFunc            func(userID string) ([]model.SeatHold, error)
	ActiveByShowtimeFunc        func(showtimeID string) ([]model.SeatHold, error)
	CreateBatchFunc             func(holds []model.SeatHold) error
	DeleteStaleFunc             func(showtimeID string, seatIDs []string, userID string) (int, error)
	DeleteByUserAndSeatsFunc    func(userID, showtimeID string, seatIDs []string) (int, error)
	DeleteByUserAndShowtimeFunc func(userID, showtimeID string) (int, error)
	DeleteExpiredFunc           func() (int, error)
}

func (m *MockSeatHoldRepo) WithTx(tx *gorm.DB) repository.SeatHoldRepo { return m }

func (m *MockSeatHoldRepo) ActiveOtherUser(showtimeID string, seatIDs []string, userID string) ([]model.SeatHold, error) {
	if m.ActiveOtherUserFunc != nil {
		return m.ActiveOtherUserFunc(showtimeID, seatIDs, userID)
	}
	return []model.SeatHold{}, nil
}

func (m *MockSeatHoldRepo) ActiveByUserAndShowtime(userID, showtimeID string) ([]model.SeatHold, error) {
	if m.ActiveByUserAndShowtimeFunc != nil {
		return m.ActiveByUserAndShowtimeFunc(userID, showtimeID)
	}
	return []model.SeatHold{}, nil
}

func (m *MockSeatHoldRepo) ActiveByUser(userID string) ([]model.SeatHold, error) {
	if m.ActiveByUserFunc != nil {
		return m.ActiveByUserFunc(userID)
	}
	return []model.SeatHold{}, nil
}

func (m *MockSeatHoldRepo) ActiveByShowtime(showtimeID string) ([]model.SeatHold, error) {
	if m.ActiveByShowtimeFunc != nil {
		return m.ActiveByShowtimeFunc(showtimeID)
	}
	return []model.SeatHold{}, nil
}

func (m *MockSeatHoldRepo) CreateBatch(holds []model.SeatHold) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(holds)
	}
	return nil
}

func (m *MockSeatHoldRepo) DeleteStale(showtimeID string, seatIDs []string, userID string) (int, error) {
	if m.DeleteStaleFunc != nil {
		return m.DeleteStaleFunc(showtimeID, seatIDs, userID)
	}
	return 0, nil
}

func (m *MockSeatHoldRepo) DeleteByUserAndSeats(userID, showtimeID string, seatIDs []string) (int, error) {
	if m.DeleteByUserAndSeatsFunc != nil {
		return m.DeleteByUserAndSeatsFunc(userID, showtimeID, seatIDs)
	}
	return 0, nil
}

func (m *MockSeatHoldRepo) DeleteByUserAndShowtime(userID, showtimeID string) (int, error) {
	if m.DeleteByUserAndShowtimeFunc != nil {
		return m.DeleteByUserAndShowtimeFunc(userID, showtimeID)
	}
	return 0, nil
}

func (m *MockSeatHoldRepo) DeleteExpired() (int, error) {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc()
	}
	return 0, nil
}

type MockBookingRepo struct {
	CreateFunc             func(booking *model.Booking) error
	AddConcessionsFunc     func(lines []model.BookingConcession) error
	GetByIDFunc            func(id string) (*model.Booking, error)
	GetByCodeFunc          func(code string) (*model.Booking, error)
	ListByUserFunc         func(userID string, status model.BookingStatus) ([]model.Booking, error)
	ListAdminFunc          func(status model.BookingStatus, showtimeIDs []string) ([]model.Booking, error)
	ListPendingExpiredFunc func(now time.Time) ([]model.Booking, error)
	GetConcessionsFunc     func(bookingID string) ([]model.BookingConcession, error)
	UpdateStatusFunc       func(id string, from, to model.BookingStatus) (int, error)
}

func (m *MockBookingRepo) WithTx(tx *gorm.DB) repository.BookingRepo { return m }

func (m *MockBookingRepo) Create(booking *model.Booking) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(booking)
	}
	return nil
}

func (m *MockBookingRepo) AddConcessions(lines []model.BookingConcession) error {
	if m.AddConcessionsFunc != nil {
		return m.AddConcessionsFunc(lines)
	}
	return nil
}

func (m *MockBookingRepo) GetByID(id string) (*model.Booking, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockBookingRepo) GetByCode(code string) (*model.Booking, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(code)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockBookingRepo) ListByUser(userID string, status model.BookingStatus) ([]model.Booking, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(userID, status)
	}
	return []model.Booking{}, nil
}

func (m *MockBookingRepo) ListAdmin(status model.BookingStatus, showtimeIDs []string) ([]model.Booking, error) {
	if m.ListAdminFunc != nil {
		return m.ListAdminFunc(status, showtimeIDs)
	}
	return []model.Booking{}, nil
}

func (m *MockBookingRepo) ListPendingExpired(now time.Time) ([]model.Booking, error) {
	if m.ListPendingExpiredFunc != nil {
		return m.ListPendingExpiredFunc(now)
	}
	return []model.Booking{}, nil
}

func (m *MockBookingRepo) GetConcessions(bookingID string) ([]model.BookingConcession, error) {
	if m.GetConcessionsFunc != nil {
		return m.GetConcessionsFunc(bookingID)
	}
	return []model.BookingConcession{}, nil
}

func (m *MockBookingRepo) UpdateStatus(id string, from, to model.BookingStatus) (int, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(id, from, to)
	}
	return 1, nil
}

type MockTicketRepo struct {
	SoldSeatIDsFunc            func(showtimeID string, seatIDs []string) ([]string, error)
	SoldSeatIDsForShowtimeFunc func(showtimeID string) ([]string, error)
	ListByBookingFunc          func(bookingID string) ([]model.Ticket, error)
	CreateBatchFunc            func(tickets []model.Ticket) error
	DeleteByBookingFunc        func(bookingID string) (int, error)
}

func (m *MockTicketRepo) WithTx(tx *gorm.DB) repository.TicketRepo { return m }

func (m *MockTicketRepo) SoldSeatIDs(showtimeID string, seatIDs []string) ([]string, error) {
	if m.SoldSeatIDsFunc != nil {
		return m.SoldSeatIDsFunc(showtimeID, seatIDs)
	}
	return []string{}, nil
}

func (m *MockTicketRepo) SoldSeatIDsForShowtime(showtimeID string) ([]string, error) {
	if m.SoldSeatIDsForShowtimeFunc != nil {
		return m.SoldSeatIDsForShowtimeFunc(showtimeID)
	}
	return []string{}, nil
}

func (m *MockTicketRepo) ListByBooking(bookingID string) ([]model.Ticket, error) {
	if m.ListByBookingFunc != nil {
		return m.ListByBookingFunc(bookingID)
	}
	return []model.Ticket{}, nil
}

func (m *MockTicketRepo) CreateBatch(tickets []model.Ticket) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(tickets)
	}
	return nil
}

func (m *MockTicketRepo) DeleteByBooking(bookingID string) (int, error) {
	if m.DeleteByBookingFunc != nil {
		return m.DeleteByBookingFunc(bookingID)
	}
	return 0, nil
}

type MockCatalogRepo struct {
	GetMovieFunc       func(id string) (*model.Movie, error)
	GetCinemaFunc      func(id string) (*model.Cinema, error)
	GetHallFunc        func(id string) (*model.Hall, error)
	GetConcessionsFunc func(ids []string) ([]model.Concession, error)
}

func (m *MockCatalogRepo) WithTx(tx *gorm.DB) repository.CatalogRepo { return m }

func (m *MockCatalogRepo) GetMovie(id string) (*model.Movie, error) {
	if m.GetMovieFunc != nil {
		return m.GetMovieFunc(id)
	}
	return &model.Movie{ID: id, Title: "Unknown"}, nil
}

func (m *MockCatalogRepo) GetCinema(id string) (*model.Cinema, error) {
	if m.GetCinemaFunc != nil {
		return m.GetCinemaFunc(id)
	}
	return &model.Cinema{ID: id, Name: "Unknown"}, nil
}

func (m *MockCatalogRepo) GetHall(id string) (*model.Hall, error) {
	if m.GetHallFunc != nil {
		return m.GetHallFunc(id)
	}
	return &model.Hall{ID: id, Name: "Unknown"}, nil
}

func (m *MockCatalogRepo) GetConcessions(ids []string) ([]model.Concession, error) {
	if m.GetConcessionsFunc != nil {
		return m.GetConcessionsFunc(ids)
	}
	return []model.Concession{}, nil
}

type MockPaymentRepo struct {
	GetByBookingIDFunc func(bookingID string) (*model.Payment, error)
	UpsertFunc         func(payment *model.Payment) error
	MarkCompletedFunc  func(bookingID string, meta model.Payment) (int, error)
	MarkFailedFunc     func(bookingID, responseCode string) (int, error)
}

func (m *MockPaymentRepo) WithTx(tx *gorm.DB) repository.PaymentRepo { return m }

func (m *MockPaymentRepo) GetByBookingID(bookingID string) (*model.Payment, error) {
	if m.GetByBookingIDFunc != nil {
		return m.GetByBookingIDFunc(bookingID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockPaymentRepo) Upsert(payment *model.Payment) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(payment)
	}
	return nil
}

func (m *MockPaymentRepo) MarkCompleted(bookingID string, meta model.Payment) (int, error) {
	if m.MarkCompletedFunc != nil {
		return m.MarkCompletedFunc(bookingID, meta)
	}
	return 1, nil
}

func (m *MockPaymentRepo) MarkFailed(bookingID, responseCode string) (int, error) {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(bookingID, responseCode)
	}
	return 1, nil
}

type MockSeatMapCache struct {
	GetSeatMapFunc        func(showtimeID string, dest any) error
	SetSeatMapFunc        func(showtimeID string, value any) error
	InvalidateSeatMapFunc func(showtimeID string) error
}

func (m *MockSeatMapCache) GetSeatMap(showtimeID string, dest any) error {
	if m.GetSeatMapFunc != nil {
		return m.GetSeatMapFunc(showtimeID, dest)
	}
	return cache.ErrCacheMiss
}

func (m *MockSeatMapCache) SetSeatMap(showtimeID string, value any) error {
	if m.SetSeatMapFunc != nil {
		return m.SetSeatMapFunc(showtimeID, value)
	}
	return nil
}

func (m *MockSeatMapCache) InvalidateSeatMap(showtimeID string) error {
	if m.InvalidateSeatMapFunc != nil {
		return m.InvalidateSeatMapFunc(showtimeID)
	}
	return nil
}
