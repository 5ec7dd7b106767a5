package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/vhoang/cinema-booking/internal/model"
)

type SeatRepo interface {
	WithTx(tx *gorm.DB) SeatRepo
	GetByIDs(ids []string) ([]model.Seat, error)
	GetByIDsInHall(hallID string, ids []string) ([]model.Seat, error)
	GetByHall(hallID string) ([]model.Seat, error)
}

type seatRepoGorm struct {
	db *gorm.DB
}

var _ SeatRepo = (*seatRepoGorm)(nil)

func NewSeatRepoGorm(db *gorm.DB) *seatRepoGorm {
	return &seatRepoGorm{db: db}
}

func (r *seatRepoGorm) WithTx(tx *gorm.DB) SeatRepo {
	return &seatRepoGorm{db: tx}
}

func (r *seatRepoGorm) GetByIDs(ids []string) ([]model.Seat, error) {
	ctx := context.Background()
	return gorm.G[model.Seat](r.db).Where("id IN ?", ids).Find(ctx)
}

func (r *seatRepoGorm) GetByIDsInHall(hallID string, ids []string) ([]model.Seat, error) {
	ctx := context.Background()
	return gorm.G[model.Seat](r.db).Where("hall_id = ? AND id IN ?", hallID, ids).Find(ctx)
}

func (r *seatRepoGorm) GetByHall(hallID string) ([]model.Seat, error) {
	ctx := context.Background()
	return gorm.G[model.Seat](r.db).
		Where("hall_id = ?", hallID).
		Order("row_letter, seat_number").
		Find(ctx)
}
