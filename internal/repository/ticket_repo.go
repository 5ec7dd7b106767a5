package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/vhoang/cinema-booking/internal/model"
)

type TicketRepo interface {
	WithTx(tx *gorm.DB) TicketRepo
	SoldSeatIDs(showtimeID string, seatIDs []string) ([]string, error)
	SoldSeatIDsForShowtime(showtimeID string) ([]string, error)
	ListByBooking(bookingID string) ([]model.Ticket, error)
	CreateBatch(tickets []model.Ticket) error
	DeleteByBooking(bookingID string) (int, error)
}

type ticketRepoGorm struct {
	db *gorm.DB
}

var _ TicketRepo = (*ticketRepoGorm)(nil)

func NewTicketRepoGorm(db *gorm.DB) *ticketRepoGorm {
	return &ticketRepoGorm{db: db}
}

func (r *ticketRepoGorm) WithTx(tx *gorm.DB) TicketRepo {
	return &ticketRepoGorm{db: tx}
}

func (r *ticketRepoGorm) SoldSeatIDs(showtimeID string, seatIDs []string) ([]string, error) {
	ctx := context.Background()
	tickets, err := gorm.G[model.Ticket](r.db).
		Where("showtime_id = ? AND seat_id IN ?", showtimeID, seatIDs).
		Find(ctx)
	if err != nil {
		return nil, err
	}
	return seatIDsOf(tickets), nil
}

func (r *ticketRepoGorm) SoldSeatIDsForShowtime(showtimeID string) ([]string, error) {
	ctx := context.Background()
	tickets, err := gorm.G[model.Ticket](r.db).
		Where("showtime_id = ?", showtimeID).
		Find(ctx)
	if err != nil {
		return nil, err
	}
	return seatIDsOf(tickets), nil
}

func (r *ticketRepoGorm) ListByBooking(bookingID string) ([]model.Ticket, error) {
	ctx := context.Background()
	return gorm.G[model.Ticket](r.db).Where("booking_id = ?", bookingID).Find(ctx)
}

func (r *ticketRepoGorm) CreateBatch(tickets []model.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	ctx := context.Background()
	return gorm.G[model.Ticket](r.db).CreateInBatches(ctx, &tickets, len(tickets))
}

func (r *ticketRepoGorm) DeleteByBooking(bookingID string) (int, error) {
	ctx := context.Background()
	return gorm.G[model.Ticket](r.db).Where("booking_id = ?", bookingID).Delete(ctx)
}

func seatIDsOf(tickets []model.Ticket) []string {
	ids := make([]string, 0, len(tickets))
	for _, t := range tickets {
		ids = append(ids, t.SeatID)
	}
	return ids
}
