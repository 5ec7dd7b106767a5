package app

import (
	"github.com/vhoang/cinema-booking/config"
	"github.com/vhoang/cinema-booking/internal/cache"
	"github.com/vhoang/cinema-booking/internal/gateway"
	"github.com/vhoang/cinema-booking/internal/model"
	"github.com/vhoang/cinema-booking/internal/mq"
	"github.com/vhoang/cinema-booking/internal/repository"
	"github.com/vhoang/cinema-booking/internal/service/domain"
	"github.com/vhoang/cinema-booking/internal/service/workflow"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config

	DB     *gorm.DB
	Cache  *cache.RedisCache
	Logger *zap.Logger
	MQConn *amqp.Connection

	SeatLockService domain.SeatLockService
	BookingService  domain.BookingService
	PaymentService  domain.PaymentService
	SeatMapService  domain.SeatMapService

	BookingWorkflow *workflow.BookingWorkflow
	PaymentWorkflow *workflow.PaymentWorkflow
	ExpiryWorkflow  *workflow.ExpiryWorkflow
}

func New(cfg *config.Config, db *gorm.DB, redisCache *cache.RedisCache, mqConn *amqp.Connection, logger *zap.Logger) *App {
	txManager := repository.NewTxManager(db)
	catalogRepo := repository.NewCatalogRepoGorm(db)
	showtimeRepo := repository.NewShowtimeRepoGorm(db)
	seatRepo := repository.NewSeatRepoGorm(db)
	seatHoldRepo := repository.NewSeatHoldRepoGorm(db)
	bookingRepo := repository.NewBookingRepoGorm(db)
	ticketRepo := repository.NewTicketRepoGorm(db)
	paymentRepo := repository.NewPaymentRepoGorm(db)

	vnpay := gateway.NewVNPay(cfg.VNPay)

	// a nil *RedisCache must stay a nil interface, or the services'
	// cache guards stop working
	var seatMapCache domain.SeatMapCache
	if redisCache != nil {
		seatMapCache = redisCache
	}

	seatLockService := domain.NewSeatLockService(
		txManager, showtimeRepo, seatRepo, seatHoldRepo, ticketRepo, catalogRepo,
		seatMapCache, logger, cfg.SeatHoldDuration)
	bookingService := domain.NewBookingService(
		txManager, bookingRepo, seatHoldRepo, ticketRepo, showtimeRepo, seatRepo,
		catalogRepo, paymentRepo, seatMapCache, logger)
	paymentService := domain.NewPaymentService(
		txManager, bookingRepo, paymentRepo, seatHoldRepo, ticketRepo, showtimeRepo,
		seatRepo, vnpay, seatMapCache, logger)
	seatMapService := domain.NewSeatMapService(
		showtimeRepo, seatRepo, seatHoldRepo, ticketRepo, seatMapCache, logger)

	bookingWorkflow := workflow.NewBookingWorkflow(bookingService, mqConn, logger)
	paymentWorkflow := workflow.NewPaymentWorkflow(paymentService, mqConn, logger)
	expiryWorkflow := workflow.NewExpiryWorkflow(
		bookingService, seatLockService, mqConn, cfg.ReaperInterval, logger)

	return &App{
		Config: cfg,
		DB:     db,
		Cache:  redisCache,
		Logger: logger,
		MQConn: mqConn,

		SeatLockService: seatLockService,
		BookingService:  bookingService,
		PaymentService:  paymentService,
		SeatMapService:  seatMapService,

		BookingWorkflow: bookingWorkflow,
		PaymentWorkflow: paymentWorkflow,
		ExpiryWorkflow:  expiryWorkflow,
	}
}

func (app *App) Init() error {
	if err := app.DB.AutoMigrate(
		&model.Movie{},
		&model.Cinema{},
		&model.Hall{},
		&model.Seat{},
		&model.Showtime{},
		&model.TicketPricing{},
		&model.Concession{},
		&model.SeatHold{},
		&model.Booking{},
		&model.BookingConcession{},
		&model.Ticket{},
		&model.Payment{},
	); err != nil {
		return err
	}

	if app.MQConn != nil {
		if err := mq.InitQueues(app.MQConn); err != nil {
			return err
		}
	}

	app.ExpiryWorkflow.Start()
	return nil
}

func (app *App) Close() error {
	app.ExpiryWorkflow.Stop()

	if app.MQConn != nil {
		app.MQConn.Close()
	}
	if app.Cache != nil {
		app.Cache.Client.Close()
	}

	sqlDB, err := app.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
