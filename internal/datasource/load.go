package datasource

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/rowview/pkg/debug"
	"github.com/vanderheijden86/rowview/pkg/metrics"
	"github.com/vanderheijden86/rowview/pkg/model"
)

// maxParallelLoads bounds concurrent file loads.
const maxParallelLoads = 8

// Load reads all records from one path.
func Load(ctx context.Context, path string) ([]model.Record, error) {
	source, err := Detect(path)
	if err != nil {
		return nil, err
	}
	return LoadFromSource(ctx, source)
}

// LoadFromSource reads all records from a detected source.
func LoadFromSource(ctx context.Context, source DataSource) ([]model.Record, error) {
	defer metrics.Timer(metrics.DataLoad)()

	var (
		records []model.Record
		err     error
	)
	switch source.Type {
	case SourceTypeJSON:
		records, err = loadJSON(source.Path)
	case SourceTypeJSONL:
		records, err = loadJSONL(source.Path)
	case SourceTypeYAML:
		records, err = loadYAML(source.Path)
	case SourceTypeSQLite:
		var r *SQLiteReader
		if r, err = NewSQLiteReader(source); err == nil {
			records, err = r.LoadRecords(ctx)
			r.Close()
		}
	default:
		err = fmt.Errorf("%s: %w", source.Path, ErrUnknownFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", source, err)
	}

	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("loading %s: %w", source, err)
		}
	}
	debug.Log("loaded %d records from %s", len(records), source)
	return records, nil
}

// LoadAll loads every path concurrently and concatenates the records in
// argument order. The first failure cancels the rest.
func LoadAll(ctx context.Context, paths []string) ([]model.Record, error) {
	results := make([][]model.Record, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for i, path := range paths {
		g.Go(func() error {
			recs, err := Load(ctx, path)
			if err != nil {
				return err
			}
			results[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []model.Record
	for _, recs := range results {
		out = append(out, recs...)
	}
	return out, nil
}
