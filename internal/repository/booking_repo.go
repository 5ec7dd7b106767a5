package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/vhoang/cinema-booking/internal/model"
)

type BookingRepo interface {
	WithTx(tx *gorm.DB) BookingRepo
	Create(booking *model.Booking) error
	AddConcessions(lines []model.BookingConcession) error
	GetByID(id string) (*model.Booking, error)
	GetByCode(code string) (*model.Booking, error)
	ListByUser(userID string, status model.BookingStatus) ([]model.Booking, error)
	ListAdmin(status model.BookingStatus, showtimeIDs []string) ([]model.Booking, error)
	ListPendingExpired(now time.Time) ([]model.Booking, error)
	GetConcessions(bookingID string) ([]model.BookingConcession, error)
	// UpdateStatus transitions a booking and reports how many rows changed.
	// Zero means another transaction won the race; callers must treat that
	// as a clean precondition failure, not corruption.
	UpdateStatus(id string, from, to model.BookingStatus) (int, error)
}

type bookingRepoGorm struct {
	db *gorm.DB
}

var _ BookingRepo = (*bookingRepoGorm)(nil)

func NewBookingRepoGorm(db *gorm.DB) *bookingRepoGorm {
	return &bookingRepoGorm{db: db}
}

func (r *bookingRepoGorm) WithTx(tx *gorm.DB) BookingRepo {
	return &bookingRepoGorm{db: tx}
}

func (r *bookingRepoGorm) Create(booking *model.Booking) error {
	ctx := context.Background()
	return gorm.G[model.Booking](r.db).Create(ctx, booking)
}

func (r *bookingRepoGorm) AddConcessions(lines []model.BookingConcession) error {
	if len(lines) == 0 {
		return nil
	}
	ctx := context.Background()
	return gorm.G[model.BookingConcession](r.db).CreateInBatches(ctx, &lines, len(lines))
}

func (r *bookingRepoGorm) GetByID(id string) (*model.Booking, error) {
	ctx := context.Background()
	booking, err := gorm.G[model.Booking](r.db).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepoGorm) GetByCode(code string) (*model.Booking, error) {
	ctx := context.Background()
	booking, err := gorm.G[model.Booking](r.db).Where("booking_code = ?", code).First(ctx)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepoGorm) ListByUser(userID string, status model.BookingStatus) ([]model.Booking, error) {
	ctx := context.Background()
	q := gorm.G[model.Booking](r.db).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	return q.Order("created_at DESC").Find(ctx)
}

// ListAdmin filters by status and, when the caller is cinema-scoped, by
// the showtimes of that cinema (resolved by the caller; no implicit join).
func (r *bookingRepoGorm) ListAdmin(status model.BookingStatus, showtimeIDs []string) ([]model.Booking, error) {
	ctx := context.Background()
	chain := gorm.G[model.Booking](r.db).Order("created_at DESC")
	if status != "" {
		chain = chain.Where("status = ?", status)
	}
	if showtimeIDs != nil {
		chain = chain.Where("showtime_id IN ?", showtimeIDs)
	}
	return chain.Find(ctx)
}

func (r *bookingRepoGorm) ListPendingExpired(now time.Time) ([]model.Booking, error) {
	ctx := context.Background()
	return gorm.G[model.Booking](r.db).
		Where("status = ? AND expires_at < ?", model.BookingPending, now).
		Find(ctx)
}

func (r *bookingRepoGorm) GetConcessions(bookingID string) ([]model.BookingConcession, error) {
	ctx := context.Background()
	return gorm.G[model.BookingConcession](r.db).Where("booking_id = ?", bookingID).Find(ctx)
}

func (r *bookingRepoGorm) UpdateStatus(id string, from, to model.BookingStatus) (int, error) {
	ctx := context.Background()
	return gorm.G[model.Booking](r.db).
		Where("id = ? AND status = ?", id, from).
		Update(ctx, "status", to)
}
