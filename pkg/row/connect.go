package row

import (
	"github.com/vanderheijden86/rowview/pkg/store"
)

// Connect creates a row bound to st: its facts are derived from the store
// now and again after every store change, it publishes measurements to st,
// and, unless cfg.OnHover is set, pointer enter/leave update the store's
// hover key. Close the row to drop the subscription.
func Connect(st *store.Store, cfg Config) (*Row, error) {
	cfg.Store = st
	if cfg.OnHover == nil {
		cfg.OnHover = st.HoverHandler()
	}

	props := cfg.Props()
	var facts Facts
	st.View(func(s store.Snapshot) {
		facts = Derive(s, props)
	})

	r, err := New(cfg, facts)
	if err != nil {
		return nil, err
	}
	r.unsubscribe = st.Subscribe(func(s store.Snapshot) {
		r.SetFacts(Derive(s, props))
	})
	return r, nil
}
