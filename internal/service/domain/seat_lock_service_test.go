package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vhoang/cinema-booking/internal/model"
	"github.com/vhoang/cinema-booking/internal/service"
)

func futureShowtime(id string) *model.Showtime {
	return &model.Showtime{
		ID:        id,
		MovieID:   "movie-1",
		CinemaID:  "cinema-1",
		HallID:    "hall-1",
		StartTime: time.Now().Add(2 * time.Hour),
		EndTime:   time.Now().Add(4 * time.Hour),
	}
}

func hallSeats(ids ...string) []model.Seat {
	seats := make([]model.Seat, 0, len(ids))
	for i, id := range ids {
		seats = append(seats, model.Seat{
			ID:         id,
			HallID:     "hall-1",
			RowLetter:  "A",
			SeatNumber: i + 1,
			Type:       model.SeatStandard,
		})
	}
	return seats
}

func newTestSeatLockService(
	showtimes *MockShowtimeRepo,
	seats *MockSeatRepo,
	holds *MockSeatHoldRepo,
	tickets *MockTicketRepo,
) SeatLockService {
	return NewSeatLockService(
		&MockTxManager{},
		showtimes,
		seats,
		holds,
		tickets,
		&MockCatalogRepo{},
		nil,
		zap.NewNop(),
		10*time.Minute,
	)
}

func TestLockSeats_Success(t *testing.T) {
	var created []model.SeatHold
	holds := &MockSeatHoldRepo{
		CreateBatchFunc: func(h []model.SeatHold) error {
			created = h
			return nil
		},
	}
	showtimes := &MockShowtimeRepo{
		GetByIDFunc: func(id string) (*model.Showtime, error) { return futureShowtime(id), nil },
	}
	seats := &MockSeatRepo{
		GetByIDsInHallFunc: func(hallID string, ids []string) ([]model.Seat, error) {
			return hallSeats(ids...), nil
		},
	}

	svc := newTestSeatLockService(showtimes, seats, holds, &MockTicketRepo{})

	result, err := svc.LockSeats("user-1", "show-1", []string{"seat-1", "seat-2"})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Len(t, result.Seats, 2)
	assert.True(t, result.ExpiresAt.After(time.Now().Add(9*time.Minute)))

	require.Len(t, created, 2)
	for _, hold := range created {
		assert.Equal(t, "user-1", hold.UserID)
		assert.Equal(t, "show-1", hold.ShowtimeID)
		assert.Equal(t, result.ExpiresAt, hold.ExpiresAt)
		assert.NotEmpty(t, hold.ID)
	}
}

func TestLockSeats_ShowtimeStarted(t *testing.T) {
	showtimes := &MockShowtimeRepo{
		GetByIDFunc: func(id string) (*model.Showtime, error) {
			st := futureShowtime(id)
			st.StartTime = time.Now().Add(-time.Minute)
			return st, nil
		},
	}

	svc := newTestSeatLockService(showtimes, &MockSeatRepo{}, &MockSeatHoldRepo{}, &MockTicketRepo{})

	_, err := svc.LockSeats("user-1", "show-1", []string{"seat-1"})
	assert.ErrorIs(t, err, service.ErrPastShowtime)
}

func TestLockSeats_UnknownShowtime(t *testing.T) {
	svc := newTestSeatLockService(&MockShowtimeRepo{}, &MockSeatRepo{}, &MockSeatHoldRepo{}, &MockTicketRepo{})

	_, err := svc.LockSeats("user-1", "missing", []string{"seat-1"})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestLockSeats_SeatOutsideHall(t *testing.T) {
	showtimes := &MockShowtimeRepo{
		GetByIDFunc: func(id string) (*model.Showtime, error) { return futureShowtime(id), nil },
	}
	seats := &MockSeatRepo{
		GetByIDsInHallFunc: func(hallID string, ids []string) ([]model.Seat, error) {
			// one of the requested seats belongs to a different hall
			return hallSeats(ids[0]), nil
		},
	}

	svc := newTestSeatLockService(showtimes, seats, &MockSeatHoldRepo{}, &MockTicketRepo{})

	_, err := svc.LockSeats("user-1", "show-1", []string{"seat-1", "other-hall-seat"})
	assert.ErrorIs(t, err, service.ErrInvalidSeat)
}

func TestLockSeats_EmptySelection(t *testing.T) {
	svc := newTestSeatLockService(&MockShowtimeRepo{}, &MockSeatRepo{}, &MockSeatHoldRepo{}, &MockTicketRepo{})

	_, err := svc.LockSeats("user-1", "show-1", nil)
	assert.ErrorIs(t, err, service.ErrInvalidSeat)
}

func TestLockSeats_SoldSeat(t *testing.T) {
	showtimes := &MockShowtimeRepo{
		GetByIDFunc: func(id string) (*model.Showtime, error) { return futureShowtime(id), nil },
	}
	seats := &MockSeatRepo{
		GetByIDsInHallFunc: func(hallID string, ids []string) ([]model.Seat, error) {
			return hallSeats(ids...), nil
		},
	}
	tickets := &MockTicketRepo{
		SoldSeatIDsFunc: func(showtimeID string, seatIDs []string) ([]string, error) {
			return []string{"seat-2"}, nil
		},
	}

	svc := newTestSeatLockService(showtimes, seats, &MockSeatHoldRepo{}, tickets)

	_, err := svc.LockSeats("user-1", "show-1", []string{"seat-1", "seat-2"})
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrSeatSold)

	var conflict *service.SeatConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"seat-2"}, conflict.SeatIDs)
}

func TestLockSeats_HeldByAnotherUser(t *testing.T) {
	showtimes := &MockShowtimeRepo{
		GetByIDFunc: func(id string) (*model.Showtime, error) { return futureShowtime(id), nil },
	}
	seats := &MockSeatRepo{
		GetByIDsInHallFunc: func(hallID string, ids []string) ([]model.Seat, error) {
			return hallSeats(ids...), nil
		},
	}
	holds := &MockSeatHoldRepo{
		ActiveOtherUserFunc: func(showtimeID string, seatIDs []string, userID string) ([]model.SeatHold, error) {
			return []model.SeatHold{{SeatID: "seat-1", UserID: "user-2"}}, nil
		},
	}

	svc := newTestSeatLockService(showtimes, seats, holds, &MockTicketRepo{})

	_, err := svc.LockSeats("user-1", "show-1", []string{"seat-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrSeatLocked)

	var conflict *service.SeatConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"seat-1"}, conflict.SeatIDs)
}

func TestLockSeats_DuplicateKeyMapsToConflict(t *testing.T) {
	showtimes := &MockShowtimeRepo{
		GetByIDFunc: func(id string) (*model.Showtime, error) { return futureShowtime(id), nil },
	}
	seats := &MockSeatRepo{
		GetByIDsInHallFunc: func(hallID string, ids []string) ([]model.Seat, error) {
			return hallSeats(ids...), nil
		},
	}
	holds := &MockSeatHoldRepo{
		CreateBatchFunc: func(h []model.SeatHold) error {
			return gorm.ErrDuplicatedKey
		},
	}

	svc := newTestSeatLockService(showtimes, seats, holds, &MockTicketRepo{})

	_, err := svc.LockSeats("user-1", "show-1", []string{"seat-1"})
	assert.ErrorIs(t, err, service.ErrSeatLocked)
}

func TestLockSeats_DeletesStaleHoldsBeforeInsert(t *testing.T) {
	var staleDeleted bool
	var insertedAfterDelete bool
	holds := &MockSeatHoldRepo{
		DeleteStaleFunc: func(showtimeID string, seatIDs []string, userID string) (int, error) {
			staleDeleted = true
			return 1, nil
		},
		CreateBatchFunc: func(h []model.SeatHold) error {
			insertedAfterDelete = staleDeleted
			return nil
		},
	}
	showtimes := &MockShowtimeRepo{
		GetByIDFunc: func(id string) (*model.Showtime, error) { return futureShowtime(id), nil },
	}
	seats := &MockSeatRepo{
		GetByIDsInHallFunc: func(hallID string, ids []string) ([]model.Seat, error) {
			return hallSeats(ids...), nil
		},
	}

	svc := newTestSeatLockService(showtimes, seats, holds, &MockTicketRepo{})

	_, err := svc.LockSeats("user-1", "show-1", []string{"seat-1"})
	require.NoError(t, err)
	assert.True(t, insertedAfterDelete)
}

func TestUnlockSeats_Idempotent(t *testing.T) {
	holds := &MockSeatHoldRepo{
		DeleteByUserAndSeatsFunc: func(userID, showtimeID string, seatIDs []string) (int, error) {
			return 0, nil
		},
	}

	svc := newTestSeatLockService(&MockShowtimeRepo{}, &MockSeatRepo{}, holds, &MockTicketRepo{})

	released, err := svc.UnlockSeats("user-1", "show-1", []string{"seat-1"})
	require.NoError(t, err)
	assert.Equal(t, 0, released)
}

func TestCleanupExpired(t *testing.T) {
	holds := &MockSeatHoldRepo{
		DeleteExpiredFunc: func() (int, error) { return 3, nil },
	}

	svc := newTestSeatLockService(&MockShowtimeRepo{}, &MockSeatRepo{}, holds, &MockTicketRepo{})

	count, err := svc.CleanupExpired()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestCleanupExpired_Error(t *testing.T) {
	holds := &MockSeatHoldRepo{
		DeleteExpiredFunc: func() (int, error) { return 0, errors.New("db down") },
	}

	svc := newTestSeatLockService(&MockShowtimeRepo{}, &MockSeatRepo{}, holds, &MockTicketRepo{})

	_, err := svc.CleanupExpired()
	assert.Error(t, err)
}
