package internal

import (
	"sync"
	"time"

	"github.com/lychee-technology/formwave"
)

// DocumentStoreOptions tunes a DocumentStore. Zero values select the defaults.
type DocumentStoreOptions struct {
	IDs IDGenerator
	Now func() time.Time
}

// DocumentStore implements formwave.DocumentStore.
//
// Every mutation clones the current document, edits the clone and swaps it
// in under mu, so a published *Form is never modified afterwards. Network
// operations release mu for the round trip.
type DocumentStore struct {
	client formwave.FormClient
	ids    IDGenerator
	now    func() time.Time

	mu      sync.Mutex
	forms   []formwave.Form
	current *formwave.Form
	version uint64

	// saveSeq is the sequence number of the last save issued, committedSeq
	// the highest one whose response was adopted.
	saveSeq      uint64
	committedSeq uint64

	listeners    map[uint64]func(formwave.Snapshot)
	nextListener uint64
}

var _ formwave.DocumentStore = (*DocumentStore)(nil)

// NewDocumentStore creates an empty store backed by client.
func NewDocumentStore(client formwave.FormClient, opts DocumentStoreOptions) *DocumentStore {
	if opts.IDs == nil {
		opts.IDs = UUIDGenerator{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &DocumentStore{
		client:    client,
		ids:       opts.IDs,
		now:       opts.Now,
		forms:     []formwave.Form{},
		listeners: make(map[uint64]func(formwave.Snapshot)),
	}
}

// CurrentForm returns a copy of the form being edited, or nil.
func (s *DocumentStore) CurrentForm() *formwave.Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Forms returns a copy of the cached form list.
func (s *DocumentStore) Forms() []formwave.Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return formwave.CloneForms(s.forms)
}

func (s *DocumentStore) Snapshot() formwave.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers listener for every committed state change. Listeners
// run synchronously after the lock is released, in no particular order.
func (s *DocumentStore) Subscribe(listener func(formwave.Snapshot)) func() {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = listener
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *DocumentStore) snapshotLocked() formwave.Snapshot {
	return formwave.Snapshot{
		CurrentForm: s.current.Clone(),
		Forms:       formwave.CloneForms(s.forms),
		Version:     s.version,
	}
}

// commitLocked bumps the version and returns what notify needs. mu must be held.
func (s *DocumentStore) commitLocked() (formwave.Snapshot, []func(formwave.Snapshot)) {
	s.version++
	if len(s.listeners) == 0 {
		return formwave.Snapshot{Version: s.version}, nil
	}
	listeners := make([]func(formwave.Snapshot), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	return s.snapshotLocked(), listeners
}

func notify(snap formwave.Snapshot, listeners []func(formwave.Snapshot)) {
	for _, l := range listeners {
		l(snap)
	}
}

// mutate applies fn to a clone of the current form and publishes the clone
// when fn reports a change. Without a current form it does nothing.
func (s *DocumentStore) mutate(fn func(next *formwave.Form) bool) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	next := s.current.Clone()
	if !fn(next) {
		s.mu.Unlock()
		return
	}
	next.Touch(s.now())
	s.current = next
	snap, listeners := s.commitLocked()
	s.mu.Unlock()

	notify(snap, listeners)
}

func (s *DocumentStore) cacheIndexLocked(formID string) int {
	for i := range s.forms {
		if s.forms[i].ID == formID {
			return i
		}
	}
	return -1
}
