package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/vhoang/cinema-booking/internal/model"
)

type ShowtimeRepo interface {
	WithTx(tx *gorm.DB) ShowtimeRepo
	GetByID(id string) (*model.Showtime, error)
	GetPricing(showtimeID string) ([]model.TicketPricing, error)
	ListIDsByCinema(cinemaID string) ([]string, error)
}

type showtimeRepoGorm struct {
	db *gorm.DB
}

var _ ShowtimeRepo = (*showtimeRepoGorm)(nil)

func NewShowtimeRepoGorm(db *gorm.DB) *showtimeRepoGorm {
	return &showtimeRepoGorm{db: db}
}

func (r *showtimeRepoGorm) WithTx(tx *gorm.DB) ShowtimeRepo {
	return &showtimeRepoGorm{db: tx}
}

func (r *showtimeRepoGorm) GetByID(id string) (*model.Showtime, error) {
	ctx := context.Background()
	showtime, err := gorm.G[model.Showtime](r.db).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, err
	}
	return &showtime, nil
}

func (r *showtimeRepoGorm) GetPricing(showtimeID string) ([]model.TicketPricing, error) {
	ctx := context.Background()
	return gorm.G[model.TicketPricing](r.db).Where("showtime_id = ?", showtimeID).Find(ctx)
}

func (r *showtimeRepoGorm) ListIDsByCinema(cinemaID string) ([]string, error) {
	ctx := context.Background()
	showtimes, err := gorm.G[model.Showtime](r.db).Where("cinema_id = ?", cinemaID).Find(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(showtimes))
	for _, st := range showtimes {
		ids = append(ids, st.ID)
	}
	return ids, nil
}
