package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vhoang/cinema-booking/internal/model"
)

type PaymentRepo interface {
	WithTx(tx *gorm.DB) PaymentRepo
	GetByBookingID(bookingID string) (*model.Payment, error)
	// Upsert keys on booking_id: rebuilding a payment URL for the same
	// booking refreshes the one row instead of growing a second attempt.
	Upsert(payment *model.Payment) error
	MarkCompleted(bookingID string, meta model.Payment) (int, error)
	MarkFailed(bookingID, responseCode string) (int, error)
}

type paymentRepoGorm struct {
	db *gorm.DB
}

var _ PaymentRepo = (*paymentRepoGorm)(nil)

func NewPaymentRepoGorm(db *gorm.DB) *paymentRepoGorm {
	return &paymentRepoGorm{db: db}
}

func (r *paymentRepoGorm) WithTx(tx *gorm.DB) PaymentRepo {
	return &paymentRepoGorm{db: tx}
}

func (r *paymentRepoGorm) GetByBookingID(bookingID string) (*model.Payment, error) {
	ctx := context.Background()
	payment, err := gorm.G[model.Payment](r.db).Where("booking_id = ?", bookingID).First(ctx)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepoGorm) Upsert(payment *model.Payment) error {
	ctx := context.Background()
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	return gorm.G[model.Payment](r.db, clause.OnConflict{
		Columns: []clause.Column{{Name: "booking_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"amount", "method", "status", "txn_ref", "payment_url", "updated_at",
		}),
	}).Create(ctx, payment)
}

func (r *paymentRepoGorm) MarkCompleted(bookingID string, meta model.Payment) (int, error) {
	ctx := context.Background()
	now := time.Now()
	return gorm.G[model.Payment](r.db).
		Where("booking_id = ?", bookingID).
		Updates(ctx, model.Payment{
			Status:        model.PaymentCompleted,
			TransactionNo: meta.TransactionNo,
			BankCode:      meta.BankCode,
			BankTranNo:    meta.BankTranNo,
			PayDate:       meta.PayDate,
			ResponseCode:  meta.ResponseCode,
			CompletedAt:   &now,
		})
}

func (r *paymentRepoGorm) MarkFailed(bookingID, responseCode string) (int, error) {
	ctx := context.Background()
	return gorm.G[model.Payment](r.db).
		Where("booking_id = ?", bookingID).
		Updates(ctx, model.Payment{
			Status:       model.PaymentFailed,
			ResponseCode: responseCode,
		})
}
