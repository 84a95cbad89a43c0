package store

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/rowview/pkg/model"
)

// ExpandedState is the on-disk form of the expanded row set.
//
//	{
//	  "version": 1,
//	  "expanded": ["p1", 42]
//	}
//
// A missing or corrupt file means "nothing expanded".
type ExpandedState struct {
	Version  int            `json:"version"`
	Expanded []model.RowKey `json:"expanded"`
}

// ExpandedStateVersion is the current schema version.
const ExpandedStateVersion = 1

// SaveExpanded writes the expanded row keys to path.
func (st *Store) SaveExpanded(path string) error {
	st.mu.Lock()
	state := ExpandedState{
		Version:  ExpandedStateVersion,
		Expanded: st.state.ExpandedRowKeys.Keys(),
	}
	st.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling expanded state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing expanded state: %w", err)
	}
	return nil
}

// LoadExpanded restores the expanded row keys from path and reports whether
// anything was applied. Unreadable or invalid files are logged and ignored.
func (st *Store) LoadExpanded(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("warning: cannot read expanded state %s: %v", path, err)
		}
		return false
	}

	var state ExpandedState
	if err := json.Unmarshal(data, &state); err != nil {
		log.Printf("warning: invalid expanded state file, using defaults: %v", err)
		return false
	}
	if state.Version != ExpandedStateVersion {
		log.Printf("warning: expanded state version %d not supported", state.Version)
		return false
	}

	st.SetState(WithExpandedRowKeys(state.Expanded...))
	return true
}
