package workflow

import (
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/vhoang/cinema-booking/internal/mq"
	"github.com/vhoang/cinema-booking/internal/service/domain"
)

// ExpiryWorkflow is the background reaper. On every tick it expires
// overdue PENDING bookings and sweeps orphaned seat holds, then emits
// an expiry event per booking it released.
type ExpiryWorkflow struct {
	BookingService  domain.BookingService
	SeatLockService domain.SeatLockService
	MQConn          *amqp.Connection
	Interval        time.Duration
	Logger          *zap.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
	on     bool
}

type SweepResult struct {
	ExpiredBookings int `json:"expired_bookings"`
	ReleasedHolds   int `json:"released_holds"`
}

func NewExpiryWorkflow(
	bookingService domain.BookingService,
	seatLockService domain.SeatLockService,
	mqConn *amqp.Connection,
	interval time.Duration,
	logger *zap.Logger,
) *ExpiryWorkflow {
	return &ExpiryWorkflow{
		BookingService:  bookingService,
		SeatLockService: seatLockService,
		MQConn:          mqConn,
		Interval:        interval,
		Logger:          logger,
	}
}

func (w *ExpiryWorkflow) Start() {
	w.mu.Lock()
	if w.on {
		w.mu.Unlock()
		return
	}
	w.on = true
	// fresh channel per run so the workflow can be restarted after Stop
	w.stopCh = make(chan struct{})
	stop := w.stopCh
	w.mu.Unlock()

	w.Logger.Info("starting expiry workflow", zap.Duration("interval", w.Interval))
	w.wg.Add(1)
	go w.loop(stop)
}

func (w *ExpiryWorkflow) Stop() {
	w.mu.Lock()
	if !w.on {
		w.mu.Unlock()
		return
	}
	w.on = false
	stop := w.stopCh
	w.mu.Unlock()

	close(stop)
	w.wg.Wait()
	w.Logger.Info("expiry workflow stopped")
}

func (w *ExpiryWorkflow) loop(stop <-chan struct{}) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	// first sweep right away, not one interval later
	w.RunOnce()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			w.RunOnce()
		}
	}
}

// RunOnce does a single sweep. It is also exposed to the admin API so
// operators can force a pass without waiting for the ticker.
func (w *ExpiryWorkflow) RunOnce() SweepResult {
	var result SweepResult

	expired, err := w.BookingService.ExpirePending()
	if err != nil {
		w.Logger.Error("booking expiry sweep failed", zap.Error(err))
	} else {
		result.ExpiredBookings = len(expired)
		for i := range expired {
			publishBookingEvent(w.MQConn, w.Logger, bookingEvent(mq.BookingExpiredEvent, &expired[i]))
		}
	}

	released, err := w.SeatLockService.CleanupExpired()
	if err != nil {
		w.Logger.Error("seat hold cleanup failed", zap.Error(err))
	} else {
		result.ReleasedHolds = released
	}

	return result
}
