// Package datasource loads table records from files: JSON arrays, JSONL,
// YAML documents and SQLite databases.
package datasource

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// SourceType identifies the format of a data source.
type SourceType string

const (
	SourceTypeJSON   SourceType = "json"
	SourceTypeJSONL  SourceType = "jsonl"
	SourceTypeYAML   SourceType = "yaml"
	SourceTypeSQLite SourceType = "sqlite"
)

// ErrUnknownFormat is returned for paths whose extension is not recognised.
var ErrUnknownFormat = errors.New("unknown data source format")

// DataSource is one file of records.
type DataSource struct {
	Type SourceType
	Path string
}

func (s DataSource) String() string {
	return fmt.Sprintf("%s (%s)", s.Path, s.Type)
}

// Detect classifies path by its extension.
func Detect(path string) (DataSource, error) {
	var typ SourceType
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		typ = SourceTypeJSON
	case ".jsonl", ".ndjson":
		typ = SourceTypeJSONL
	case ".yaml", ".yml":
		typ = SourceTypeYAML
	case ".db", ".sqlite", ".sqlite3":
		typ = SourceTypeSQLite
	default:
		return DataSource{}, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
	return DataSource{Type: typ, Path: path}, nil
}
