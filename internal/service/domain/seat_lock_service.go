package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vhoang/cinema-booking/internal/model"
	"github.com/vhoang/cinema-booking/internal/repository"
	"github.com/vhoang/cinema-booking/internal/service"
)

// SeatLockService is the sole gatekeeper against double-selling: a buyer
// must hold a seat before a booking can consume it, and holds are granted
// under a uniqueness constraint so concurrent claimers lose cleanly.
type SeatLockService interface {
	LockSeats(userID, showtimeID string, seatIDs []string) (*LockResult, error)
	UnlockSeats(userID, showtimeID string, seatIDs []string) (int, error)
	ListHolds(userID string) ([]HoldView, error)
	CleanupExpired() (int, error)
}

type LockedSeat struct {
	SeatID string         `json:"seat_id"`
	Row    string         `json:"row"`
	Number int            `json:"number"`
	Type   model.SeatType `json:"seat_type"`
}

type LockResult struct {
	ShowtimeID string       `json:"showtime_id"`
	Seats      []LockedSeat `json:"seats"`
	ExpiresAt  time.Time    `json:"expires_at"`
}

type HoldView struct {
	ShowtimeID string         `json:"showtime_id"`
	MovieTitle string         `json:"movie_title"`
	StartTime  time.Time      `json:"start_time"`
	SeatID     string         `json:"seat_id"`
	Row        string         `json:"row"`
	Number     int            `json:"number"`
	Type       model.SeatType `json:"seat_type"`
	Price      int64          `json:"price"`
	ExpiresAt  time.Time      `json:"expires_at"`
}

// SeatMapCache is the slice of the redis cache the locking path needs:
// pure invalidation, so stale availability never outlives a hold change.
type SeatMapCache interface {
	GetSeatMap(showtimeID string, dest any) error
	SetSeatMap(showtimeID string, value any) error
	InvalidateSeatMap(showtimeID string) error
}

type seatLockService struct {
	tx        repository.TxManager
	showtimes repository.ShowtimeRepo
	seats     repository.SeatRepo
	holds     repository.SeatHoldRepo
	tickets   repository.TicketRepo
	catalog   repository.CatalogRepo

	cache  SeatMapCache
	logger *zap.Logger

	holdDuration time.Duration
}

var _ SeatLockService = (*seatLockService)(nil)

func NewSeatLockService(
	tx repository.TxManager,
	showtimes repository.ShowtimeRepo,
	seats repository.SeatRepo,
	holds repository.SeatHoldRepo,
	tickets repository.TicketRepo,
	catalog repository.CatalogRepo,
	cache SeatMapCache,
	logger *zap.Logger,
	holdDuration time.Duration,
) *seatLockService {
	return &seatLockService{
		tx:           tx,
		showtimes:    showtimes,
		seats:        seats,
		holds:        holds,
		tickets:      tickets,
		catalog:      catalog,
		cache:        cache,
		logger:       logger,
		holdDuration: holdDuration,
	}
}

func (s *seatLockService) LockSeats(userID, showtimeID string, seatIDs []string) (*LockResult, error) {
	if len(seatIDs) == 0 {
		return nil, service.ErrInvalidSeat
	}

	showtime, err := s.showtimes.GetByID(showtimeID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !showtime.StartTime.After(time.Now()) {
		return nil, service.ErrPastShowtime
	}

	seats, err := s.seats.GetByIDsInHall(showtime.HallID, seatIDs)
	if err != nil {
		return nil, err
	}
	if len(seats) != len(seatIDs) {
		return nil, service.ErrInvalidSeat
	}

	sold, err := s.tickets.SoldSeatIDs(showtimeID, seatIDs)
	if err != nil {
		return nil, err
	}
	if len(sold) > 0 {
		return nil, &service.SeatConflictError{Reason: service.ErrSeatSold, SeatIDs: sold}
	}

	locked, err := s.holds.ActiveOtherUser(showtimeID, seatIDs, userID)
	if err != nil {
		return nil, err
	}
	if len(locked) > 0 {
		return nil, &service.SeatConflictError{Reason: service.ErrSeatLocked, SeatIDs: holdSeatIDs(locked)}
	}

	expiresAt := time.Now().Add(s.holdDuration)

	err = s.tx.Transaction(func(tx *gorm.DB) error {
		holdsTx := s.holds.WithTx(tx)

		// Free the slots: the caller's own prior holds (idempotent refresh)
		// and any expired leftovers still occupying the unique index.
		if _, err := holdsTx.DeleteStale(showtimeID, seatIDs, userID); err != nil {
			return err
		}

		// The pre-check above ran outside this transaction; re-validate so
		// two holders cannot both pass it for the same seat.
		again, err := holdsTx.ActiveOtherUser(showtimeID, seatIDs, userID)
		if err != nil {
			return err
		}
		if len(again) > 0 {
			return &service.SeatConflictError{Reason: service.ErrSeatLocked, SeatIDs: holdSeatIDs(again)}
		}

		fresh := make([]model.SeatHold, 0, len(seatIDs))
		for _, seatID := range seatIDs {
			fresh = append(fresh, model.SeatHold{
				ID:         uuid.NewString(),
				UserID:     userID,
				ShowtimeID: showtimeID,
				SeatID:     seatID,
				ExpiresAt:  expiresAt,
			})
		}
		return holdsTx.CreateBatch(fresh)
	})
	if err != nil {
		// A losing concurrent insert surfaces as a duplicate on the
		// (showtime, seat) slot rather than silently overwriting.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &service.SeatConflictError{Reason: service.ErrSeatLocked, SeatIDs: seatIDs}
		}
		return nil, err
	}

	s.invalidateSeatMap(showtimeID)
	s.logger.Info("seats locked",
		zap.String("user_id", userID),
		zap.String("showtime_id", showtimeID),
		zap.Int("seats", len(seatIDs)),
		zap.Time("expires_at", expiresAt),
	)

	result := &LockResult{ShowtimeID: showtimeID, ExpiresAt: expiresAt}
	for _, seat := range seats {
		result.Seats = append(result.Seats, LockedSeat{
			SeatID: seat.ID,
			Row:    seat.RowLetter,
			Number: seat.SeatNumber,
			Type:   seat.Type,
		})
	}
	return result, nil
}

// UnlockSeats releases the caller's holds for the given seats. Releasing
// seats that are no longer held is a no-op, not an error.
func (s *seatLockService) UnlockSeats(userID, showtimeID string, seatIDs []string) (int, error) {
	count, err := s.holds.DeleteByUserAndSeats(userID, showtimeID, seatIDs)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.invalidateSeatMap(showtimeID)
	}
	s.logger.Info("seats unlocked",
		zap.String("user_id", userID),
		zap.String("showtime_id", showtimeID),
		zap.Int("released", count),
	)
	return count, nil
}

func (s *seatLockService) ListHolds(userID string) ([]HoldView, error) {
	holds, err := s.holds.ActiveByUser(userID)
	if err != nil {
		return nil, err
	}
	views := make([]HoldView, 0, len(holds))

	type showtimeCtx struct {
		showtime *model.Showtime
		title    string
		pricing  map[model.SeatType]int64
	}
	showtimeCache := make(map[string]*showtimeCtx)

	for _, hold := range holds {
		sc, ok := showtimeCache[hold.ShowtimeID]
		if !ok {
			showtime, err := s.showtimes.GetByID(hold.ShowtimeID)
			if err != nil {
				return nil, mapNotFound(err)
			}
			pricing, err := s.showtimes.GetPricing(hold.ShowtimeID)
			if err != nil {
				return nil, err
			}
			movie, err := s.catalog.GetMovie(showtime.MovieID)
			if err != nil {
				return nil, mapNotFound(err)
			}
			sc = &showtimeCtx{showtime: showtime, title: movie.Title, pricing: priceBySeatType(pricing)}
			showtimeCache[hold.ShowtimeID] = sc
		}

		seats, err := s.seats.GetByIDs([]string{hold.SeatID})
		if err != nil {
			return nil, err
		}
		if len(seats) == 0 {
			continue
		}
		seat := seats[0]

		views = append(views, HoldView{
			ShowtimeID: hold.ShowtimeID,
			MovieTitle: sc.title,
			StartTime:  sc.showtime.StartTime,
			SeatID:     seat.ID,
			Row:        seat.RowLetter,
			Number:     seat.SeatNumber,
			Type:       seat.Type,
			Price:      sc.pricing[seat.Type],
			ExpiresAt:  hold.ExpiresAt,
		})
	}
	return views, nil
}

// CleanupExpired reclaims holds whose expiry passed without a booking ever
// consuming them. Invoked by the reaper.
func (s *seatLockService) CleanupExpired() (int, error) {
	count, err := s.holds.DeleteExpired()
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Info("expired seat holds cleaned up", zap.Int("deleted", count))
	}
	return count, nil
}

func (s *seatLockService) invalidateSeatMap(showtimeID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSeatMap(showtimeID); err != nil {
		s.logger.Warn("seat map invalidation failed",
			zap.String("showtime_id", showtimeID), zap.Error(err))
	}
}

func holdSeatIDs(holds []model.SeatHold) []string {
	ids := make([]string, 0, len(holds))
	for _, h := range holds {
		ids = append(ids, h.SeatID)
	}
	return ids
}

func priceBySeatType(pricing []model.TicketPricing) map[model.SeatType]int64 {
	m := make(map[model.SeatType]int64, len(pricing))
	for _, p := range pricing {
		m[p.SeatType] = p.Price
	}
	return m
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return service.ErrNotFound
	}
	return err
}
