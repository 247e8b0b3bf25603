package etl

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BartekS5/csvbatch/pkg/models"
)

func readAll(t *testing.T, r Reader) ([]models.PersonCSV, error) {
	t.Helper()
	var out []models.PersonCSV
	for {
		p, err := r.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, p)
	}
}

func TestCSVReaderParsesRows(t *testing.T) {
	input := sampleCSV + "3,\"Doe, Jane\",Jane,Doe,Q,jd@x.com,556,557,\"Professor, Emeritus\"\n"
	rows, err := readAll(t, NewCSVReader(strings.NewReader(input)))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	want := models.PersonCSV{
		ID: "2", Name: "A Lee", First: "Alice", Last: "Lee", Middle: "",
		Email: "a@x.com", Phone: "555", Fax: "555", Title: "Engineer",
	}
	if rows[1] != want {
		t.Errorf("row 2 = %+v, want %+v", rows[1], want)
	}
	if rows[2].Name != "Doe, Jane" || rows[2].Title != "Professor, Emeritus" {
		t.Errorf("quoted fields = %q / %q", rows[2].Name, rows[2].Title)
	}
}

func TestCSVReaderSkipsHeaderWithoutValidating(t *testing.T) {
	input := "this \"header\" is not, even csv\n2,A Lee,Alice,Lee,,a@x.com,555,555,Engineer\n"
	rows, err := readAll(t, NewCSVReader(strings.NewReader(input)))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 1 || rows[0].First != "Alice" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestCSVReaderSkipsOnlyFirstLine(t *testing.T) {
	// A second header-looking line is data and has 9 fields, so it is returned.
	input := "h\nperson_ID,name,first,last,middle,email,phone,fax,title\n"
	rows, err := readAll(t, NewCSVReader(strings.NewReader(input)))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 1 || rows[0].First != "first" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestCSVReaderMultiLineQuotedField(t *testing.T) {
	input := "h\n1,\"J\nSmith\",John,Smith,,j@x.com,555,555,Engineer\n2,A Lee,Alice,Lee,,a@x.com,555,555,Engineer\n"
	rows, err := readAll(t, NewCSVReader(strings.NewReader(input)))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 2 || rows[0].Name != "J\nSmith" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestCSVReaderEmptyInputs(t *testing.T) {
	for _, input := range []string{"", "person_ID,name\n", "person_ID,name"} {
		rows, err := readAll(t, NewCSVReader(strings.NewReader(input)))
		if err != nil {
			t.Errorf("%q: unexpected error %v", input, err)
		}
		if len(rows) != 0 {
			t.Errorf("%q: got %d rows", input, len(rows))
		}
	}
}

func TestCSVReaderMalformedRows(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "too few fields",
			input:    sampleCSV + "3,short,row\n",
			wantLine: 4,
			wantMsg:  "expected 9 fields, got 3",
		},
		{
			name:     "too many fields",
			input:    "h\n1,a,b,c,d,e,f,g,h,i\n",
			wantLine: 2,
			wantMsg:  "expected 9 fields, got 10",
		},
		{
			name:     "bare quote",
			input:    "h\n" + `1,J "Jo" Smith,John,Smith,,j@x.com,555,555,Engineer` + "\n",
			wantLine: 2,
		},
		{
			name:     "empty line",
			input:    sampleCSV + "\n4,D Kim,Dan,Kim,,d@x.com,555,555,Engineer\n",
			wantLine: 4,
			wantMsg:  "empty line",
		},
		{
			name:     "empty line with crlf",
			input:    "h\r\n1,J,John,Smith,,j,5,5,Eng\r\n\r\n2,A,Alice,Lee,,a,5,5,Eng\r\n",
			wantLine: 3,
			wantMsg:  "empty line",
		},
		{
			name:     "trailing empty line",
			input:    sampleCSV + "\n",
			wantLine: 4,
			wantMsg:  "empty line",
		},
		{
			name:     "blank line",
			input:    "h\n   \n2,A,Alice,Lee,,a,5,5,Eng\n",
			wantLine: 2,
			wantMsg:  "expected 9 fields, got 1",
		},
		{
			name:     "invalid utf-8",
			input:    "h\n1,J Smith,Jo\xffhn,Smith,,j@x.com,555,555,Engineer\n",
			wantLine: 2,
			wantMsg:  "not valid UTF-8",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := readAll(t, NewCSVReader(strings.NewReader(tc.input)))
			var perr *Error
			if !errors.As(err, &perr) || perr.Kind != KindParse {
				t.Fatalf("expected parse error, got %v", err)
			}
			if perr.Line != tc.wantLine {
				t.Errorf("line = %d, want %d", perr.Line, tc.wantLine)
			}
			if tc.wantMsg != "" && !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("error %q does not contain %q", err, tc.wantMsg)
			}
		})
	}
}

func TestOpenCSVReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := OpenCSVReader(path)
	if err != nil {
		t.Fatalf("OpenCSVReader: %v", err)
	}
	rows, err := readAll(t, r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("got %d rows", len(rows))
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}

	if _, err := OpenCSVReader(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}
