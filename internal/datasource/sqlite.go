package datasource

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/rowview/pkg/model"
)

// SQLite sources hold one table:
//
//	CREATE TABLE rows (key, parent_key, fields TEXT)
//
// key and parent_key may be INTEGER or TEXT; fields is a JSON object.
const sqliteQuery = `SELECT key, parent_key, fields FROM rows ORDER BY rowid`

// SQLiteReader provides read access to a rows database.
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a SQLite database read-only.
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}
	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	return &SQLiteReader{db: db, path: source.Path}, nil
}

// Close closes the database connection.
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadRecords reads every row in insertion order.
func (r *SQLiteReader) LoadRecords(ctx context.Context) ([]model.Record, error) {
	rows, err := r.db.QueryContext(ctx, sqliteQuery)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", r.path, err)
	}
	defer rows.Close()

	var out []model.Record
	for rows.Next() {
		var rawKey, rawParent any
		var fields sql.NullString
		if err := rows.Scan(&rawKey, &rawParent, &fields); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		rec := model.Record{Fields: map[string]any{}}
		if rec.Key, err = model.ParseKey(normalizeSQLValue(rawKey)); err != nil {
			return nil, err
		}
		if rec.Key.IsZero() {
			return nil, fmt.Errorf("%s: row without key", r.path)
		}
		if rec.ParentKey, err = model.ParseKey(normalizeSQLValue(rawParent)); err != nil {
			return nil, fmt.Errorf("row %s: parent: %w", rec.Key, err)
		}
		if fields.Valid && fields.String != "" {
			dec := json.NewDecoder(bytes.NewReader([]byte(fields.String)))
			dec.UseNumber()
			if err := dec.Decode(&rec.Fields); err != nil {
				return nil, fmt.Errorf("row %s: fields: %w", rec.Key, err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func normalizeSQLValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
