package etl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/BartekS5/csvbatch/pkg/logger"
	"github.com/BartekS5/csvbatch/pkg/models"
)

// InsertQuery returns the people insert statement using the placeholder
// syntax of driver.
func InsertQuery(driver string) string {
	switch driver {
	case "sqlserver", "azuresql":
		return "INSERT INTO people (first_name, last_name) VALUES (@p1, @p2)"
	default:
		return "INSERT INTO people (first_name, last_name) VALUES (?, ?)"
	}
}

// SQLWriter inserts people rows, one transaction per batch.
type SQLWriter struct {
	DB    *sql.DB
	Query string
}

func NewSQLWriter(db *sql.DB, driver string) *SQLWriter {
	return &SQLWriter{DB: db, Query: InsertQuery(driver)}
}

// Write inserts items in a single transaction. On any failure the
// transaction is rolled back and a write error is returned.
func (w *SQLWriter) Write(ctx context.Context, items []models.PersonDB) (err error) {
	if len(items) == 0 {
		return nil
	}

	tx, err := w.DB.BeginTx(ctx, nil)
	if err != nil {
		return newError(KindWrite, fmt.Errorf("begin transaction: %w", err))
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, w.Query)
	if err != nil {
		return newError(KindWrite, fmt.Errorf("prepare insert: %w", err))
	}
	defer stmt.Close()

	for i, item := range items {
		if _, err = stmt.ExecContext(ctx, item.FirstName, item.LastName); err != nil {
			return newError(KindWrite, fmt.Errorf("insert item %d of batch (%s %s): %w", i+1, item.FirstName, item.LastName, err))
		}
	}

	if err = tx.Commit(); err != nil {
		return newError(KindWrite, fmt.Errorf("commit: %w", err))
	}
	logger.Debugf("Committed %d rows into people", len(items))
	return nil
}
