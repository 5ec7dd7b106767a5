package domain

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/vhoang/cinema-booking/internal/cache"
	"github.com/vhoang/cinema-booking/internal/model"
	"github.com/vhoang/cinema-booking/internal/repository"
)

type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatLocked    SeatStatus = "LOCKED"
	SeatSold      SeatStatus = "SOLD"
)

type SeatMapEntry struct {
	SeatID string         `json:"seat_id"`
	Row    string         `json:"row"`
	Number int            `json:"number"`
	Type   model.SeatType `json:"seat_type"`
	Status SeatStatus     `json:"status"`
	Price  int64          `json:"price"`
}

type SeatMap struct {
	ShowtimeID string         `json:"showtime_id"`
	StartTime  time.Time      `json:"start_time"`
	Seats      []SeatMapEntry `json:"seats"`
	Available  int            `json:"available"`
	Locked     int            `json:"locked"`
	Sold       int            `json:"sold"`
}

// SeatMapService renders the availability view buyers poll while
// picking seats. The snapshot is cached briefly; a few seconds of
// staleness only costs the buyer a conflict they would hit anyway.
type SeatMapService interface {
	GetSeatMap(showtimeID string) (*SeatMap, error)
}

type seatMapService struct {
	showtimes repository.ShowtimeRepo
	seats     repository.SeatRepo
	holds     repository.SeatHoldRepo
	tickets   repository.TicketRepo

	cache  SeatMapCache
	logger *zap.Logger
}

var _ SeatMapService = (*seatMapService)(nil)

func NewSeatMapService(
	showtimes repository.ShowtimeRepo,
	seats repository.SeatRepo,
	holds repository.SeatHoldRepo,
	tickets repository.TicketRepo,
	c SeatMapCache,
	logger *zap.Logger,
) *seatMapService {
	return &seatMapService{
		showtimes: showtimes,
		seats:     seats,
		holds:     holds,
		tickets:   tickets,
		cache:     c,
		logger:    logger,
	}
}

func (s *seatMapService) GetSeatMap(showtimeID string) (*SeatMap, error) {
	if s.cache != nil {
		var cached SeatMap
		err := s.cache.GetSeatMap(showtimeID, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("seat map cache read failed",
				zap.String("showtime_id", showtimeID), zap.Error(err))
		}
	}

	showtime, err := s.showtimes.GetByID(showtimeID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	seats, err := s.seats.GetByHall(showtime.HallID)
	if err != nil {
		return nil, err
	}
	pricing, err := s.showtimes.GetPricing(showtimeID)
	if err != nil {
		return nil, err
	}
	priceMap := priceBySeatType(pricing)

	sold, err := s.tickets.SoldSeatIDsForShowtime(showtimeID)
	if err != nil {
		return nil, err
	}
	soldSet := make(map[string]struct{}, len(sold))
	for _, id := range sold {
		soldSet[id] = struct{}{}
	}

	holds, err := s.holds.ActiveByShowtime(showtimeID)
	if err != nil {
		return nil, err
	}
	lockedSet := make(map[string]struct{}, len(holds))
	for _, hold := range holds {
		lockedSet[hold.SeatID] = struct{}{}
	}

	seatMap := &SeatMap{
		ShowtimeID: showtimeID,
		StartTime:  showtime.StartTime,
		Seats:      make([]SeatMapEntry, 0, len(seats)),
	}
	for _, seat := range seats {
		status := SeatAvailable
		if _, ok := soldSet[seat.ID]; ok {
			status = SeatSold
			seatMap.Sold++
		} else if _, ok := lockedSet[seat.ID]; ok {
			status = SeatLocked
			seatMap.Locked++
		} else {
			seatMap.Available++
		}
		seatMap.Seats = append(seatMap.Seats, SeatMapEntry{
			SeatID: seat.ID,
			Row:    seat.RowLetter,
			Number: seat.SeatNumber,
			Type:   seat.Type,
			Status: status,
			Price:  priceMap[seat.Type],
		})
	}

	if s.cache != nil {
		if err := s.cache.SetSeatMap(showtimeID, seatMap); err != nil {
			s.logger.Warn("seat map cache write failed",
				zap.String("showtime_id", showtimeID), zap.Error(err))
		}
	}
	return seatMap, nil
}
