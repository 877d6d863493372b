// Package source loads personnel records from CSV (local or over HTTP) and
// from SQLite tables.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/vanderheijden86/orgchart/pkg/model"
)

// DefaultLocation is the published personnel sheet.
const DefaultLocation = "https://docs.google.com/spreadsheets/d/1f35n_acicq6vS9oR1NDCJL5BvHOJ5GxqSMN1t4vIBXA/export?format=csv&gid=1957984317"

// EnvLocation overrides the default location.
const EnvLocation = "ORGCHART_SOURCE"

// DefaultTable is the SQLite table read when the location names none.
const DefaultTable = "people"

// ErrUnsupported is returned for locations no loader understands.
var ErrUnsupported = errors.New("unsupported source")

// DataFetchError reports that the data could not be retrieved or parsed.
// No chart is drawn when it occurs.
type DataFetchError struct {
	Location string
	Err      error
}

func (e *DataFetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", redact(e.Location), e.Err)
}

func (e *DataFetchError) Unwrap() error { return e.Err }

// redact drops the query string of URLs so tokens do not end up in logs.
func redact(location string) string {
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || u.RawQuery == "" || !strings.HasPrefix(u.Scheme, "http") {
		return location
	}
	u.RawQuery = ""
	return u.String() + "?…"
}

// Source produces records.
type Source interface {
	Load(ctx context.Context) ([]model.PersonRecord, error)
	// Location is the string the source was opened from.
	Location() string
}

// Watchable is implemented by sources backed by a local file.
type Watchable interface {
	Path() string
}

// Resolve picks the location to load: an explicit value first, then the
// environment, then the configured one, then DefaultLocation.
func Resolve(explicit, configured string) string {
	for _, loc := range []string{explicit, os.Getenv(EnvLocation), configured} {
		if strings.TrimSpace(loc) != "" {
			return strings.TrimSpace(loc)
		}
	}
	return DefaultLocation
}

// Open returns the loader for location:
//
//	http(s)://...                CSV over HTTP
//	sqlite:<path>?table=<name>   SQLite table
//	<path>                       local CSV file
func Open(location string, opts ...Option) (Source, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return &HTTPSource{URL: location, Client: o.client}, nil
	case strings.HasPrefix(location, "sqlite:"):
		path, table, err := parseSQLite(location)
		if err != nil {
			return nil, err
		}
		return &SQLiteSource{path: path, table: table, location: location}, nil
	case strings.Contains(location, "://"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, location)
	default:
		return &FileSource{path: location}, nil
	}
}

// Load opens location and loads it in one step.
func Load(ctx context.Context, location string, opts ...Option) ([]model.PersonRecord, error) {
	src, err := Open(location, opts...)
	if err != nil {
		return nil, &DataFetchError{Location: location, Err: err}
	}
	return src.Load(ctx)
}

func parseSQLite(location string) (path, table string, err error) {
	rest := strings.TrimPrefix(location, "sqlite:")
	path, query, _ := strings.Cut(rest, "?")
	if path == "" {
		return "", "", fmt.Errorf("%w: %s: missing database path", ErrUnsupported, location)
	}
	table = DefaultTable
	if query != "" {
		values, err := url.ParseQuery(query)
		if err != nil {
			return "", "", fmt.Errorf("%w: %s: %v", ErrUnsupported, location, err)
		}
		if t := values.Get("table"); t != "" {
			table = t
		}
	}
	if !validIdent(table) {
		return "", "", fmt.Errorf("%w: %s: invalid table name %q", ErrUnsupported, location, table)
	}
	return path, table, nil
}

func validIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
