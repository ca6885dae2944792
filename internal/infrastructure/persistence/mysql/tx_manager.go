package mysql

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// TxManager unit of work on top of gorm transactions.
// The transaction handle travels in the context; every repository resolves
// it through dbFrom, so all calls made with the ctx passed to fn share it.
type TxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction commits when fn returns nil and rolls back otherwise.
// Nested calls become savepoints of the outer transaction.
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    inv, err := inventoryRepo.Reserve(ctx, productID, quantity)
//	    if err != nil {
//	        return err // rollback
//	    }
//	    return logRepo.Create(ctx, inventory.NewReserveLog(inv, quantity, orderID))
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return dbFrom(ctx, m.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFrom returns the transaction carried by ctx, or db outside one.
func dbFrom(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
