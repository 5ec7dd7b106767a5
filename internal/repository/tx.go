package repository

import (
	"gorm.io/gorm"
)

// TxManager runs a function inside one storage transaction. Services only
// see this interface so their orchestration logic stays testable without a
// live database.
type TxManager interface {
	Transaction(fn func(tx *gorm.DB) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

var _ TxManager = (*gormTxManager)(nil)

func NewTxManager(db *gorm.DB) *gormTxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) Transaction(fn func(tx *gorm.DB) error) error {
	return m.db.Transaction(fn)
}
