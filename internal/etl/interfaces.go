package etl

import (
	"context"
	"io"
	"net/url"

	"github.com/BartekS5/csvbatch/pkg/models"
)

// Reader yields parsed rows one at a time and returns io.EOF when exhausted.
type Reader interface {
	Read() (models.PersonCSV, error)
}

// ReadCloser is a Reader that holds an open resource.
type ReadCloser interface {
	Reader
	io.Closer
}

// Processor maps a source row to its stored form. keep is false for rows
// that must be dropped.
type Processor interface {
	Process(in models.PersonCSV) (out models.PersonDB, keep bool)
}

// Writer persists one batch of rows atomically.
type Writer interface {
	Write(ctx context.Context, items []models.PersonDB) error
}

// Opener opens a read stream for a URL of a particular scheme.
type Opener interface {
	Open(ctx context.Context, u *url.URL) (io.ReadCloser, error)
}
