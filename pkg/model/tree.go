package model

// FlatRow is one record placed in the table: its depth-first position and
// its chain of ancestors.
type FlatRow struct {
	Record       Record
	Index        int      // RowIndex: position in the flattened table
	Indent       int      // Nesting level (0 = root)
	AncestorKeys []RowKey // Root first, excluding the row itself
	HasChildren  bool
}

// Flatten builds the parent/child hierarchy from ParentKey and returns every
// record in depth-first order, children following their parent in input
// order. Records whose parent does not exist become roots. Records caught in
// a parent cycle are attached as roots once the acyclic part is placed.
func Flatten(records []Record) []FlatRow {
	if len(records) == 0 {
		return nil
	}

	byKey := make(map[RowKey]int, len(records))
	for i, rec := range records {
		if _, dup := byKey[rec.Key]; !dup {
			byKey[rec.Key] = i
		}
	}

	childrenOf := make(map[RowKey][]int)
	var roots []int
	for i, rec := range records {
		if byKey[rec.Key] != i {
			continue // duplicate key, first one wins
		}
		if _, ok := byKey[rec.ParentKey]; ok && !rec.ParentKey.IsZero() && rec.ParentKey != rec.Key {
			childrenOf[rec.ParentKey] = append(childrenOf[rec.ParentKey], i)
			continue
		}
		roots = append(roots, i)
	}

	out := make([]FlatRow, 0, len(records))
	placed := make(map[RowKey]bool, len(records))

	var walk func(i int, ancestors []RowKey)
	walk = func(i int, ancestors []RowKey) {
		rec := records[i]
		if placed[rec.Key] {
			return
		}
		placed[rec.Key] = true

		chain := make([]RowKey, len(ancestors))
		copy(chain, ancestors)
		out = append(out, FlatRow{
			Record:       rec,
			Index:        len(out),
			Indent:       len(chain),
			AncestorKeys: chain,
			HasChildren:  len(childrenOf[rec.Key]) > 0,
		})

		next := append(chain, rec.Key)
		for _, c := range childrenOf[rec.Key] {
			walk(c, next)
		}
	}

	for _, r := range roots {
		walk(r, nil)
	}
	// Whatever is left sits on a cycle; promote in input order.
	for i, rec := range records {
		if byKey[rec.Key] == i && !placed[rec.Key] {
			walk(i, nil)
		}
	}
	return out
}
