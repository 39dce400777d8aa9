package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
)

// TxRunner runs a function inside a single database transaction. Every
// mutating reservation operation goes through it so the precondition read and
// the state write commit or roll back together.
type TxRunner struct {
	DB *sql.DB
}

func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{DB: db}
}

func (r *TxRunner) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Printf("transaction rollback failed: %v", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
