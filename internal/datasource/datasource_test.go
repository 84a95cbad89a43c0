package datasource

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/rowview/pkg/model"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func keysOf(recs []model.Record) string {
	parts := make([]string, len(recs))
	for i, r := range recs {
		parts[i] = r.Key.String()
	}
	return strings.Join(parts, ",")
}

func TestDetect(t *testing.T) {
	tests := map[string]SourceType{
		"a.json":      SourceTypeJSON,
		"a.JSONL":     SourceTypeJSONL,
		"a.ndjson":    SourceTypeJSONL,
		"a.yml":       SourceTypeYAML,
		"a.sqlite3":   SourceTypeSQLite,
		"dir/rows.db": SourceTypeSQLite,
	}
	for path, want := range tests {
		s, err := Detect(path)
		if err != nil || s.Type != want {
			t.Errorf("%s: got (%v, %v), want %v", path, s.Type, err, want)
		}
	}
	if _, err := Detect("rows.csv"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestLoadJSONWithNestedChildren(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rows.json", `[
	  {"key": "p1", "name": "Parent", "size": 3,
	   "children": [
	     {"key": "c1", "name": "Child", "children": [{"key": 7, "name": "Grandchild"}]}
	   ]},
	  {"key": 2, "fields": {"name": "Explicit"}}
	]`)

	recs, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := keysOf(recs); got != "p1,c1,7,2" {
		t.Fatalf("unexpected keys %s", got)
	}
	if recs[1].ParentKey != model.StringKey("p1") || recs[2].ParentKey != model.StringKey("c1") {
		t.Errorf("children must point at their parent: %v %v", recs[1].ParentKey, recs[2].ParentKey)
	}
	if !recs[2].Key.IsInt() {
		t.Error("numeric JSON key must become an integer key")
	}
	if recs[0].Field("size") != "3" || recs[0].Field("name") != "Parent" {
		t.Errorf("unexpected fields %v", recs[0].Fields)
	}
	if _, ok := recs[0].Fields["children"]; ok {
		t.Error("children must not be kept as a field")
	}
	if recs[3].Field("name") != "Explicit" {
		t.Errorf("explicit fields map not used: %v", recs[3].Fields)
	}
}

func TestLoadJSONL(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rows.jsonl", `{"key":"a","name":"A"}

{"key":"b","parent":"a","name":"B"}
`)
	recs, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if keysOf(recs) != "a,b" || recs[1].ParentKey != model.StringKey("a") {
		t.Errorf("unexpected records %+v", recs)
	}

	bad := writeFile(t, dir, "bad.jsonl", "{\"key\":\"a\"}\n{oops\n")
	if _, err := Load(context.Background(), bad); err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected line 2 error, got %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rows.yaml", `
- key: 1
  name: One
  children:
    - key: "1.1"
      name: One dot one
- key: two
  parent: 1
  name: Two
`)
	recs, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if keysOf(recs) != "1,1.1,two" {
		t.Fatalf("unexpected keys %s", keysOf(recs))
	}
	if recs[1].ParentKey != model.IntKey(1) || recs[2].ParentKey != model.IntKey(1) {
		t.Errorf("unexpected parents %v %v", recs[1].ParentKey, recs[2].ParentKey)
	}
}

func TestLoadSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	stmts := []string{
		`CREATE TABLE rows (key, parent_key, fields TEXT)`,
		`INSERT INTO rows VALUES (1, NULL, '{"name":"root"}')`,
		`INSERT INTO rows VALUES ('child', 1, '{"name":"kid","size":4}')`,
		`INSERT INTO rows VALUES ('bare', NULL, NULL)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
	}
	db.Close()

	recs, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if keysOf(recs) != "1,child,bare" {
		t.Fatalf("unexpected keys %s", keysOf(recs))
	}
	if recs[1].ParentKey != model.IntKey(1) || recs[1].Field("size") != "4" {
		t.Errorf("unexpected child %+v", recs[1])
	}
	if !recs[2].ParentKey.IsZero() || len(recs[2].Fields) != 0 {
		t.Errorf("unexpected bare row %+v", recs[2])
	}
}

func TestLoadRejectsMissingKey(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rows.json", `[{"name":"no key"}]`)
	if _, err := Load(context.Background(), path); err == nil {
		t.Error("expected error for record without key")
	}
}

func TestLoadAllPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `[{"key":"a1"},{"key":"a2"}]`)
	b := writeFile(t, dir, "b.jsonl", `{"key":"b1"}`)
	c := writeFile(t, dir, "c.yaml", "- key: c1\n")

	recs, err := LoadAll(context.Background(), []string{c, a, b})
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if got := keysOf(recs); got != "c1,a1,a2,b1" {
		t.Errorf("unexpected order %s", got)
	}

	if _, err := LoadAll(context.Background(), []string{a, filepath.Join(dir, "missing.json")}); err == nil {
		t.Error("expected error for missing file")
	}
}
