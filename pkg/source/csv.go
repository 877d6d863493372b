package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/vanderheijden86/orgchart/pkg/model"
)

// ErrNoIDColumn is returned when the header row lacks an id column.
var ErrNoIDColumn = errors.New("header has no id column")

// maxBody caps how much of an HTTP response is read.
const maxBody = 32 << 20

// ParseCSV reads a header row followed by data rows. Header names are matched
// case-insensitively; unknown columns are ignored and absent ones are empty.
func ParseCSV(r io.Reader) ([]model.PersonRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make([]string, len(header))
	hasID := false
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		cols[i] = h
		hasID = hasID || h == model.ColID
	}
	if !hasID {
		return nil, ErrNoIDColumn
	}

	var records []model.PersonRecord
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(records)+2, err)
		}
		row := make(map[string]string, len(cols))
		for i, v := range fields {
			if i < len(cols) {
				row[cols[i]] = v
			}
		}
		if blankRow(row) {
			continue
		}
		records = append(records, model.FromRow(row))
	}
	return records, nil
}

func blankRow(row map[string]string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// FileSource reads a local CSV file.
type FileSource struct {
	path string
}

// NewFileSource returns a source for the CSV file at path.
func NewFileSource(path string) *FileSource { return &FileSource{path: path} }

func (s *FileSource) Location() string { return s.path }

// Path implements Watchable.
func (s *FileSource) Path() string { return s.path }

func (s *FileSource) Load(ctx context.Context) ([]model.PersonRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, &DataFetchError{Location: s.path, Err: err}
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, &DataFetchError{Location: s.path, Err: err}
	}
	defer f.Close()

	records, err := ParseCSV(f)
	if err != nil {
		return nil, &DataFetchError{Location: s.path, Err: err}
	}
	return records, nil
}

// HTTPSource downloads CSV over HTTP(S).
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s *HTTPSource) Location() string { return s.URL }

func (s *HTTPSource) Load(ctx context.Context) ([]model.PersonRecord, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, &DataFetchError{Location: s.URL, Err: err}
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &DataFetchError{Location: s.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &DataFetchError{Location: s.URL, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	records, err := ParseCSV(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &DataFetchError{Location: s.URL, Err: err}
	}
	return records, nil
}

// WriteCSV writes records with the standard header.
func WriteCSV(w io.Writer, records []model.PersonRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.Columns); err != nil {
		return err
	}
	row := make([]string, len(model.Columns))
	for _, r := range records {
		for i, col := range model.Columns {
			row[i] = r.Field(col)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
