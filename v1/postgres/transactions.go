package postgres

import (
	"context"

	"gorm.io/gorm"
)

// cloneWithTx returns a shallow copy of Postgres pinned to tx. It enables
// transaction-scoped operations while sharing the connection monitoring
// state of the parent.
func (p *Postgres) cloneWithTx(tx *gorm.DB) *Postgres {
	clone := &Postgres{
		cfg:             p.cfg,
		tx:              tx,
		shutdownSignal:  p.shutdownSignal,
		retryChanSignal: p.retryChanSignal,
	}
	clone.client.Store(p.client.Load())
	return clone
}

// Transaction executes the given function within a database transaction.
// If the function returns an error, the transaction is rolled back;
// otherwise it is committed.
//
// Example:
//
//	err := pg.Transaction(ctx, func(txPg *Postgres) error {
//		if err := txPg.Create(ctx, doc); err != nil {
//			return err
//		}
//		return txPg.Create(ctx, chunks)
//	})
func (p *Postgres) Transaction(ctx context.Context, fn func(pg *Postgres) error) error {
	return p.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(p.cloneWithTx(tx))
	})
}
