package etl

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/BartekS5/csvbatch/pkg/models"
)

// CSVReader reads people rows from a comma-delimited file. The first line is
// skipped without being parsed.
type CSVReader struct {
	src        *bufio.Reader
	csv        *csv.Reader
	closer     io.Closer
	headerDone bool

	// nextLine is the body line the next record must start on; endOffset is
	// the input offset just past the last record returned.
	nextLine  int
	endOffset int64
}

// OpenCSVReader opens path for reading.
func OpenCSVReader(path string) (*CSVReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file '%s': %w", path, err)
	}
	r := NewCSVReader(f)
	r.closer = f
	return r, nil
}

func NewCSVReader(r io.Reader) *CSVReader {
	return &CSVReader{src: bufio.NewReader(r)}
}

// Read returns the next row, or io.EOF once the input is exhausted. Any
// malformed row yields a parse error.
func (r *CSVReader) Read() (models.PersonCSV, error) {
	if !r.headerDone {
		if err := r.skipHeader(); err != nil {
			return models.PersonCSV{}, err
		}
	}

	record, err := r.csv.Read()
	if err == io.EOF {
		if r.csv.InputOffset() > r.endOffset {
			return models.PersonCSV{}, r.emptyLine()
		}
		return models.PersonCSV{}, io.EOF
	}
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return models.PersonCSV{}, &Error{Kind: KindParse, Line: pe.StartLine + 1, err: pe.Err}
		}
		return models.PersonCSV{}, newError(KindParse, err)
	}

	start, _ := r.csv.FieldPos(0)
	if start > r.nextLine {
		return models.PersonCSV{}, r.emptyLine()
	}
	last, _ := r.csv.FieldPos(len(record) - 1)
	r.nextLine = last + strings.Count(record[len(record)-1], "\n") + 1
	r.endOffset = r.csv.InputOffset()
	line := start + 1 // header

	if len(record) != len(models.PersonFields) {
		return models.PersonCSV{}, &Error{
			Kind: KindParse,
			Line: line,
			err:  fmt.Errorf("expected %d fields, got %d", len(models.PersonFields), len(record)),
		}
	}
	for i, field := range record {
		if !utf8.ValidString(field) {
			return models.PersonCSV{}, &Error{
				Kind: KindParse,
				Line: line,
				err:  fmt.Errorf("field %s is not valid UTF-8", models.PersonFields[i]),
			}
		}
	}

	return models.NewPersonCSV(record), nil
}

func (r *CSVReader) skipHeader() error {
	r.headerDone = true
	if _, err := r.src.ReadString('\n'); err != nil && err != io.EOF {
		return newError(KindParse, err)
	}

	r.csv = csv.NewReader(r.src)
	r.csv.FieldsPerRecord = -1
	r.nextLine = 1
	return nil
}

// emptyLine reports the blank line csv.Reader skipped before the next record.
func (r *CSVReader) emptyLine() error {
	return &Error{
		Kind: KindParse,
		Line: r.nextLine + 1,
		err:  fmt.Errorf("expected %d fields, got empty line", len(models.PersonFields)),
	}
}

func (r *CSVReader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
