package source

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/orgchart/pkg/model"
)

// SQLiteSource reads records from one table of a SQLite database. Columns
// are matched to record fields by name; absent columns are empty.
type SQLiteSource struct {
	path     string
	table    string
	location string
}

// NewSQLiteSource returns a source for table in the database at path.
func NewSQLiteSource(path, table string) *SQLiteSource {
	return &SQLiteSource{path: path, table: table, location: "sqlite:" + path + "?table=" + table}
}

func (s *SQLiteSource) Location() string { return s.location }

// Path implements Watchable.
func (s *SQLiteSource) Path() string { return s.path }

// Table returns the table name.
func (s *SQLiteSource) Table() string { return s.table }

func (s *SQLiteSource) Load(ctx context.Context) ([]model.PersonRecord, error) {
	records, err := s.load(ctx)
	if err != nil {
		return nil, &DataFetchError{Location: s.location, Err: err}
	}
	return records, nil
}

func (s *SQLiteSource) load(ctx context.Context) ([]model.PersonRecord, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %q`, s.table))
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", s.table, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	for i, n := range names {
		names[i] = strings.ToLower(n)
	}

	values := make([]sql.NullString, len(names))
	dest := make([]any, len(names))
	for i := range values {
		dest[i] = &values[i]
	}

	var records []model.PersonRecord
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", s.table, err)
		}
		row := make(map[string]string, len(names))
		for i, n := range names {
			row[n] = values[i].String
		}
		records = append(records, model.FromRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", s.table, err)
	}
	return records, nil
}

// WriteSQLite stores records in table, replacing any previous contents.
// The database file is created when missing.
func WriteSQLite(ctx context.Context, path, table string, records []model.PersonRecord) error {
	if !validIdent(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	cols := make([]string, len(model.Columns))
	marks := make([]string, len(model.Columns))
	for i, c := range model.Columns {
		cols[i] = c + " TEXT NOT NULL DEFAULT ''"
		marks[i] = "?"
	}
	stmts := []string{
		fmt.Sprintf(`DROP TABLE IF EXISTS %q`, table),
		fmt.Sprintf(`CREATE TABLE %q (%s)`, table, strings.Join(cols, ", ")),
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("preparing %s: %w", table, err)
		}
	}

	insert, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %q (%s) VALUES (%s)`,
		table, strings.Join(model.Columns, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer insert.Close()

	args := make([]any, len(model.Columns))
	for _, r := range records {
		for i, c := range model.Columns {
			args[i] = r.Field(c)
		}
		if _, err := insert.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}
