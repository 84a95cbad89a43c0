// Package store holds the table-wide state shared by every row instance:
// expanded row keys, the hovered row and the measured row heights.
//
// All writes go through a single update queue. A SetState issued while
// subscribers are being notified (by a subscriber, or by another goroutine)
// is queued and applied after the current notification round, so changes are
// applied in arrival order and no read-modify-write of the height maps can
// interleave with another.
package store

import (
	"sync"

	"github.com/vanderheijden86/rowview/pkg/metrics"
	"github.com/vanderheijden86/rowview/pkg/model"
)

// State is the shared table state.
type State struct {
	ExpandedRowKeys            model.KeySet
	CurrentHoverKey            model.RowKey // zero value: nothing hovered
	ExpandedRowsHeight         map[model.RowKey]int
	FixedColumnsBodyRowsHeight map[int]int
}

func newState() State {
	return State{
		ExpandedRowKeys:            make(model.KeySet),
		ExpandedRowsHeight:         make(map[model.RowKey]int),
		FixedColumnsBodyRowsHeight: make(map[int]int),
	}
}

func (s State) clone() State {
	c := State{
		ExpandedRowKeys:            s.ExpandedRowKeys.Clone(),
		CurrentHoverKey:            s.CurrentHoverKey,
		ExpandedRowsHeight:         make(map[model.RowKey]int, len(s.ExpandedRowsHeight)),
		FixedColumnsBodyRowsHeight: make(map[int]int, len(s.FixedColumnsBodyRowsHeight)),
	}
	for k, v := range s.ExpandedRowsHeight {
		c.ExpandedRowsHeight[k] = v
	}
	for k, v := range s.FixedColumnsBodyRowsHeight {
		c.FixedColumnsBodyRowsHeight[k] = v
	}
	return c
}

// Snapshot is a read-only view of the live state handed to subscribers.
// It is only valid for the duration of the callback.
type Snapshot struct {
	s *State
}

func (v Snapshot) ExpandedRowKeys() model.KeySet { return v.s.ExpandedRowKeys }
func (v Snapshot) IsExpanded(k model.RowKey) bool { return v.s.ExpandedRowKeys.Has(k) }
func (v Snapshot) CurrentHoverKey() model.RowKey { return v.s.CurrentHoverKey }

// ExpandedRowsHeight returns the live key-height map. Do not modify it.
func (v Snapshot) ExpandedRowsHeight() map[model.RowKey]int { return v.s.ExpandedRowsHeight }

// FixedColumnsBodyRowsHeight returns the live index-height map. Do not modify it.
func (v Snapshot) FixedColumnsBodyRowsHeight() map[int]int { return v.s.FixedColumnsBodyRowsHeight }

// Listener receives the state after every applied change.
type Listener func(Snapshot)

type subscription struct {
	id int
	fn Listener
}

// Store owns the table state. The zero value is not usable; call New.
type Store struct {
	mu          sync.Mutex
	state       State
	subs        []subscription
	nextID      int
	queue       [][]Change
	dispatching bool
	batchDepth  int
	pending     bool // changes applied inside a batch, not yet notified
}

// Option configures a Store at construction.
type Option func(*State)

// WithInitialExpanded seeds ExpandedRowKeys.
func WithInitialExpanded(keys ...model.RowKey) Option {
	return func(s *State) {
		for _, k := range keys {
			s.ExpandedRowKeys.Add(k)
		}
	}
}

// WithInitialIndexHeights seeds FixedColumnsBodyRowsHeight.
func WithInitialIndexHeights(heights map[int]int) Option {
	return func(s *State) {
		for i, h := range heights {
			s.FixedColumnsBodyRowsHeight[i] = h
		}
	}
}

// New returns an empty store.
func New(opts ...Option) *Store {
	st := &Store{state: newState()}
	for _, opt := range opts {
		opt(&st.state)
	}
	return st
}

// GetState returns a deep copy of the current state.
func (st *Store) GetState() State {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state.clone()
}

// View calls fn with a snapshot of the live state while holding the store
// lock. fn must not call back into the store.
func (st *Store) View(fn func(Snapshot)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	fn(Snapshot{s: &st.state})
}

// SetState applies changes as one update and notifies subscribers
// synchronously. Calls made during a notification round are queued and
// applied, in order, before the outermost SetState returns. Inside a Batch
// the changes are applied but notification waits for the batch to end.
func (st *Store) SetState(changes ...Change) {
	if len(changes) == 0 {
		return
	}
	st.mu.Lock()
	st.queue = append(st.queue, changes)
	if st.dispatching {
		st.mu.Unlock()
		return
	}
	st.dispatch()
}

// Batch runs fn and holds back subscriber notification for every SetState
// made until the outermost Batch returns, then notifies once if anything
// changed.
func (st *Store) Batch(fn func()) {
	st.mu.Lock()
	st.batchDepth++
	st.mu.Unlock()

	defer func() {
		st.mu.Lock()
		st.batchDepth--
		if st.batchDepth > 0 || !st.pending {
			st.mu.Unlock()
			return
		}
		st.pending = false
		// A nil entry is a notify-only round.
		st.queue = append(st.queue, nil)
		if st.dispatching {
			st.mu.Unlock()
			return
		}
		st.dispatch()
	}()
	fn()
}

// dispatch drains the queue. It is entered with st.mu held and returns with
// it released. A panicking subscriber ends the dispatch; changes still queued
// stay queued and are applied by the next SetState.
func (st *Store) dispatch() {
	st.dispatching = true
	defer metrics.Timer(metrics.StoreDispatch)()

	locked := true
	defer func() {
		if !locked {
			st.mu.Lock()
		}
		st.dispatching = false
		st.mu.Unlock()
	}()

	for len(st.queue) > 0 {
		batch := st.queue[0]
		st.queue = st.queue[1:]
		if batch != nil {
			for _, c := range batch {
				if c != nil {
					c(&st.state)
				}
			}
			metrics.StoreWrites.Inc()
		}
		if st.batchDepth > 0 {
			st.pending = true
			continue
		}

		subs := make([]subscription, len(st.subs))
		copy(subs, st.subs)
		snap := Snapshot{s: &st.state}
		st.mu.Unlock()
		locked = false

		// Only this goroutine mutates state while dispatching is set, so
		// subscribers may read the live maps without the lock.
		for _, sub := range subs {
			sub.fn(snap)
			metrics.StoreNotifies.Inc()
		}

		st.mu.Lock()
		locked = true
	}
}

// Subscribe registers fn for change notifications. The returned function
// removes the subscription and is safe to call more than once.
func (st *Store) Subscribe(fn Listener) (unsubscribe func()) {
	st.mu.Lock()
	id := st.nextID
	st.nextID++
	st.subs = append(st.subs, subscription{id: id, fn: fn})
	st.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			st.mu.Lock()
			defer st.mu.Unlock()
			for i, sub := range st.subs {
				if sub.id == id {
					st.subs = append(st.subs[:i:i], st.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// SubscriberCount reports the number of active subscriptions.
func (st *Store) SubscriberCount() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.subs)
}
