package etl

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/BartekS5/csvbatch/pkg/models"
	"github.com/DATA-DOG/go-sqlmock"
)

func newMock(t *testing.T) (*SQLWriter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLWriter(db, "sqlmock"), mock
}

func TestInsertQuery(t *testing.T) {
	cases := map[string]string{
		"sqlserver": "INSERT INTO people (first_name, last_name) VALUES (@p1, @p2)",
		"azuresql":  "INSERT INTO people (first_name, last_name) VALUES (@p1, @p2)",
		"mysql":     "INSERT INTO people (first_name, last_name) VALUES (?, ?)",
		"":          "INSERT INTO people (first_name, last_name) VALUES (?, ?)",
	}
	for driver, want := range cases {
		if got := InsertQuery(driver); got != want {
			t.Errorf("InsertQuery(%q) = %q", driver, got)
		}
	}
}

func TestSQLWriterCommitsBatch(t *testing.T) {
	w, mock := newMock(t)
	items := []models.PersonDB{{FirstName: "Alice", LastName: "Lee"}, {FirstName: "Bob", LastName: "Ray"}}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(w.Query)
	prep.ExpectExec().WithArgs("Alice", "Lee").WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs("Bob", "Ray").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	if err := w.Write(context.Background(), items); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSQLWriterRollsBackOnExecError(t *testing.T) {
	w, mock := newMock(t)
	items := []models.PersonDB{{FirstName: "Alice", LastName: "Lee"}, {FirstName: "Bob", LastName: "Ray"}}
	dbErr := errors.New("connection lost")

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(w.Query)
	prep.ExpectExec().WithArgs("Alice", "Lee").WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs("Bob", "Ray").WillReturnError(dbErr)
	mock.ExpectRollback()

	err := w.Write(context.Background(), items)
	if !IsKind(err, KindWrite) {
		t.Fatalf("expected write error, got %v", err)
	}
	if !errors.Is(err, dbErr) {
		t.Errorf("cause not wrapped: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSQLWriterBeginAndPrepareErrors(t *testing.T) {
	items := []models.PersonDB{{FirstName: "Alice", LastName: "Lee"}}

	w, mock := newMock(t)
	mock.ExpectBegin().WillReturnError(errors.New("no connection"))
	if err := w.Write(context.Background(), items); !IsKind(err, KindWrite) {
		t.Errorf("begin: expected write error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}

	w, mock = newMock(t)
	mock.ExpectBegin()
	mock.ExpectPrepare(w.Query).WillReturnError(errors.New("invalid object name 'people'"))
	mock.ExpectRollback()
	if err := w.Write(context.Background(), items); !IsKind(err, KindWrite) {
		t.Errorf("prepare: expected write error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSQLWriterCommitError(t *testing.T) {
	w, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectPrepare(w.Query).ExpectExec().WithArgs("Alice", "Lee").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(errors.New("deadlock"))

	err := w.Write(context.Background(), []models.PersonDB{{FirstName: "Alice", LastName: "Lee"}})
	if !IsKind(err, KindWrite) {
		t.Fatalf("expected write error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSQLWriterEmptyBatch(t *testing.T) {
	w, mock := newMock(t)
	if err := w.Write(context.Background(), nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSQLWriterRollbackErrorKeepsCause(t *testing.T) {
	w, mock := newMock(t)
	dbErr := errors.New("connection lost")
	rbErr := errors.New("rollback refused")

	mock.ExpectBegin()
	mock.ExpectPrepare(w.Query).ExpectExec().WithArgs("A", "B").WillReturnError(dbErr)
	mock.ExpectRollback().WillReturnError(rbErr)

	err := w.Write(context.Background(), []models.PersonDB{{FirstName: "A", LastName: "B"}})
	if !IsKind(err, KindWrite) {
		t.Fatalf("expected write error, got %v", err)
	}
	if !errors.Is(err, dbErr) || !errors.Is(err, rbErr) {
		t.Errorf("error %v lost its causes", err)
	}
	if strings.Count(err.Error(), "write error") != 1 {
		t.Errorf("kind repeated in %q", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
