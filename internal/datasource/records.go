package datasource

import (
	"fmt"

	"github.com/vanderheijden86/rowview/pkg/model"
)

// Reserved keys of a record object. Everything else is a field, unless the
// object carries an explicit "fields" map.
const (
	keyField      = "key"
	parentField   = "parent"
	fieldsField   = "fields"
	childrenField = "children"
)

// fromObject converts a decoded object into records. Nested "children"
// become records whose parent is this object's key.
func fromObject(obj map[string]any, parent model.RowKey) ([]model.Record, error) {
	key, err := model.ParseKey(obj[keyField])
	if err != nil {
		return nil, err
	}
	if key.IsZero() {
		return nil, fmt.Errorf("record without %q", keyField)
	}

	rec := model.Record{Key: key, ParentKey: parent}
	if raw, ok := obj[parentField]; ok && raw != nil {
		if rec.ParentKey, err = model.ParseKey(raw); err != nil {
			return nil, fmt.Errorf("record %s: parent: %w", key, err)
		}
	}

	if fields, ok := asObject(obj[fieldsField]); ok {
		rec.Fields = fields
	} else {
		rec.Fields = make(map[string]any, len(obj))
		for name, v := range obj {
			switch name {
			case keyField, parentField, childrenField:
				continue
			}
			rec.Fields[name] = v
		}
	}

	out := []model.Record{rec}
	children, _ := obj[childrenField].([]any)
	for i, c := range children {
		child, ok := asObject(c)
		if !ok {
			return nil, fmt.Errorf("record %s: child %d is not an object", key, i)
		}
		recs, err := fromObject(child, key)
		if err != nil {
			return nil, fmt.Errorf("record %s: child %d: %w", key, i, err)
		}
		out = append(out, recs...)
	}
	return out, nil
}

func fromObjects(items []any) ([]model.Record, error) {
	var out []model.Record
	for i, item := range items {
		obj, ok := asObject(item)
		if !ok {
			return nil, fmt.Errorf("item %d is not an object", i)
		}
		recs, err := fromObject(obj, model.RowKey{})
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, recs...)
	}
	return out, nil
}

// asObject accepts both string-keyed maps and the any-keyed maps some
// decoders produce.
func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}
