// Package model defines the data types shared by the table store, the row
// component and the data sources: row keys, records, columns and the
// flattened row hierarchy.
package model

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"
)

type keyKind uint8

const (
	keyNone keyKind = iota
	keyString
	keyInt
)

// RowKey identifies one logical record. It holds either a string or an
// integer; StringKey("1") and IntKey(1) are different keys. The zero value
// means "no key".
type RowKey struct {
	kind keyKind
	str  string
	num  int64
}

// StringKey returns a string row key.
func StringKey(s string) RowKey {
	return RowKey{kind: keyString, str: s}
}

// IntKey returns a numeric row key.
func IntKey(n int64) RowKey {
	return RowKey{kind: keyInt, num: n}
}

// ParseKey converts a loosely typed value (as decoded from JSON, YAML or SQL)
// into a RowKey. Whole floats become integer keys.
func ParseKey(v any) (RowKey, error) {
	switch x := v.(type) {
	case nil:
		return RowKey{}, nil
	case RowKey:
		return x, nil
	case string:
		return StringKey(x), nil
	case int:
		return IntKey(int64(x)), nil
	case int32:
		return IntKey(int64(x)), nil
	case int64:
		return IntKey(x), nil
	case uint64:
		return IntKey(int64(x)), nil
	case float64:
		if x != float64(int64(x)) {
			return RowKey{}, fmt.Errorf("row key %v is not an integer", x)
		}
		return IntKey(int64(x)), nil
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return RowKey{}, fmt.Errorf("row key %q: %w", x.String(), err)
		}
		return IntKey(n), nil
	default:
		return RowKey{}, fmt.Errorf("unsupported row key type %T", v)
	}
}

// IsZero reports whether k is the "no key" value.
func (k RowKey) IsZero() bool { return k.kind == keyNone }

// IsInt reports whether k is a numeric key.
func (k RowKey) IsInt() bool { return k.kind == keyInt }

// Int returns the numeric value of an integer key.
func (k RowKey) Int() (int64, bool) { return k.num, k.kind == keyInt }

func (k RowKey) String() string {
	switch k.kind {
	case keyString:
		return k.str
	case keyInt:
		return strconv.FormatInt(k.num, 10)
	default:
		return ""
	}
}

// Less orders integer keys before string keys, then by value.
func (k RowKey) Less(o RowKey) bool {
	if k.kind != o.kind {
		return k.kind < o.kind
	}
	if k.kind == keyInt {
		return k.num < o.num
	}
	return k.str < o.str
}

func (k RowKey) MarshalJSON() ([]byte, error) {
	switch k.kind {
	case keyString:
		return json.Marshal(k.str)
	case keyInt:
		return []byte(strconv.FormatInt(k.num, 10)), nil
	default:
		return []byte("null"), nil
	}
}

func (k *RowKey) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*k = RowKey{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*k = StringKey(s)
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("row key %s: %w", data, err)
	}
	*k = IntKey(n)
	return nil
}

// UnmarshalYAML accepts scalar nodes; unquoted integers become numeric keys.
func (k *RowKey) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := ParseKey(raw)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// KeySet is a set of row keys.
type KeySet map[RowKey]struct{}

// NewKeySet returns a set holding keys.
func NewKeySet(keys ...RowKey) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports membership. A nil set has no members.
func (s KeySet) Has(k RowKey) bool {
	_, ok := s[k]
	return ok
}

func (s KeySet) Add(k RowKey) { s[k] = struct{}{} }
func (s KeySet) Remove(k RowKey) { delete(s, k) }

// Keys returns the members in a stable order.
func (s KeySet) Keys() []RowKey {
	keys := make([]RowKey, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

func (s KeySet) Clone() KeySet {
	c := make(KeySet, len(s))
	for k := range s {
		c[k] = struct{}{}
	}
	return c
}
