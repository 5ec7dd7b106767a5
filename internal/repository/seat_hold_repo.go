package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/vhoang/cinema-booking/internal/model"
)

// SeatHoldRepo owns the seat_holds table. A hold that is past its
// expires_at is inactive regardless of whether the reaper has already
// deleted the row, so every "active" query compares against the clock.
type SeatHoldRepo interface {
	WithTx(tx *gorm.DB) SeatHoldRepo
	ActiveOtherUser(showtimeID string, seatIDs []string, userID string) ([]model.SeatHold, error)
	ActiveByUserAndShowtime(userID, showtimeID string) ([]model.SeatHold, error)
	ActiveByUser(userID string) ([]model.SeatHold, error)
	ActiveByShowtime(showtimeID string) ([]model.SeatHold, error)
	CreateBatch(holds []model.SeatHold) error
	// DeleteStale removes the caller's own holds plus any expired holds for
	// the given seats, freeing the (showtime_id, seat_id) slot for a fresh
	// insert within the same transaction.
	DeleteStale(showtimeID string, seatIDs []string, userID string) (int, error)
	DeleteByUserAndSeats(userID, showtimeID string, seatIDs []string) (int, error)
	DeleteByUserAndShowtime(userID, showtimeID string) (int, error)
	DeleteExpired() (int, error)
}

type seatHoldRepoGorm struct {
	db *gorm.DB
}

var _ SeatHoldRepo = (*seatHoldRepoGorm)(nil)

func NewSeatHoldRepoGorm(db *gorm.DB) *seatHoldRepoGorm {
	return &seatHoldRepoGorm{db: db}
}

func (r *seatHoldRepoGorm) WithTx(tx *gorm.DB) SeatHoldRepo {
	return &seatHoldRepoGorm{db: tx}
}

func (r *seatHoldRepoGorm) ActiveOtherUser(showtimeID string, seatIDs []string, userID string) ([]model.SeatHold, error) {
	ctx := context.Background()
	return gorm.G[model.SeatHold](r.db).
		Where("showtime_id = ? AND seat_id IN ? AND user_id <> ? AND expires_at > ?",
			showtimeID, seatIDs, userID, time.Now()).
		Find(ctx)
}

func (r *seatHoldRepoGorm) ActiveByUserAndShowtime(userID, showtimeID string) ([]model.SeatHold, error) {
	ctx := context.Background()
	return gorm.G[model.SeatHold](r.db).
		Where("user_id = ? AND showtime_id = ? AND expires_at > ?", userID, showtimeID, time.Now()).
		Find(ctx)
}

func (r *seatHoldRepoGorm) ActiveByUser(userID string) ([]model.SeatHold, error) {
	ctx := context.Background()
	return gorm.G[model.SeatHold](r.db).
		Where("user_id = ? AND expires_at > ?", userID, time.Now()).
		Find(ctx)
}

func (r *seatHoldRepoGorm) ActiveByShowtime(showtimeID string) ([]model.SeatHold, error) {
	ctx := context.Background()
	return gorm.G[model.SeatHold](r.db).
		Where("showtime_id = ? AND expires_at > ?", showtimeID, time.Now()).
		Find(ctx)
}

func (r *seatHoldRepoGorm) CreateBatch(holds []model.SeatHold) error {
	if len(holds) == 0 {
		return nil
	}
	ctx := context.Background()
	return gorm.G[model.SeatHold](r.db).CreateInBatches(ctx, &holds, len(holds))
}

func (r *seatHoldRepoGorm) DeleteStale(showtimeID string, seatIDs []string, userID string) (int, error) {
	ctx := context.Background()
	return gorm.G[model.SeatHold](r.db).
		Where("showtime_id = ? AND seat_id IN ? AND (user_id = ? OR expires_at <= ?)",
			showtimeID, seatIDs, userID, time.Now()).
		Delete(ctx)
}

func (r *seatHoldRepoGorm) DeleteByUserAndSeats(userID, showtimeID string, seatIDs []string) (int, error) {
	ctx := context.Background()
	return gorm.G[model.SeatHold](r.db).
		Where("user_id = ? AND showtime_id = ? AND seat_id IN ?", userID, showtimeID, seatIDs).
		Delete(ctx)
}

func (r *seatHoldRepoGorm) DeleteByUserAndShowtime(userID, showtimeID string) (int, error) {
	ctx := context.Background()
	return gorm.G[model.SeatHold](r.db).
		Where("user_id = ? AND showtime_id = ?", userID, showtimeID).
		Delete(ctx)
}

func (r *seatHoldRepoGorm) DeleteExpired() (int, error) {
	ctx := context.Background()
	return gorm.G[model.SeatHold](r.db).
		Where("expires_at <= ?", time.Now()).
		Delete(ctx)
}
