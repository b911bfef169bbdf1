package upload

import (
	"context"
	"slices"
	"sync"
	"time"

	// Packages
	uuid "github.com/google/uuid"
	schema "github.com/mutablelogic/go-dms/pkg/schema"
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Upload is the state of a single file upload
type Upload struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	Size     int64               `json:"size"`
	Written  int64               `json:"written"`
	Progress int                 `json:"progress"` // 0 to 100
	Status   schema.UploadStatus `json:"status"`
	Error    string              `json:"error,omitempty"`
	Document *schema.Document    `json:"document,omitempty"`
	Started  time.Time           `json:"started,omitzero"`
	Finished time.Time           `json:"finished,omitzero"`
}

// Listener receives a snapshot of every upload after each change
type Listener func([]Upload)

// Store holds uploads in insertion order. It is safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	notifyMu  sync.Mutex
	order     []string
	entries   map[string]*entry
	listeners map[uint64]Listener
	next      uint64
	now       func() time.Time
}

type entry struct {
	Upload
	abort context.CancelFunc
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewStore returns an empty store
func NewStore() *Store {
	return &Store{
		entries:   make(map[string]*entry),
		listeners: make(map[uint64]Listener),
		now:       time.Now,
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Add records a new upload with status uploading and returns its identifier.
// abort may be nil; it is called when the upload is cancelled.
func (s *Store) Add(name string, size int64, abort context.CancelFunc) string {
	id := uuid.NewString()
	s.update(func() bool {
		s.entries[id] = &entry{
			Upload: Upload{
				ID:      id,
				Name:    name,
				Size:    size,
				Status:  schema.UploadUploading,
				Started: s.now(),
			},
			abort: abort,
		}
		s.order = append(s.order, id)
		return true
	})
	return id
}

// Progress records bytes written out of total. Progress never decreases and
// is ignored once the upload has finished.
func (s *Store) Progress(id string, written, total int64) {
	s.update(func() bool {
		e := s.active(id)
		if e == nil || written <= e.Written {
			return false
		}
		e.Written = written
		if total > 0 {
			e.Size = total
		}
		if pct := percent(e.Written, e.Size); pct > e.Progress {
			e.Progress = pct
		}
		return true
	})
}

// Complete marks the upload as complete with the committed document
func (s *Store) Complete(id string, doc *schema.Document) {
	s.update(func() bool {
		e := s.active(id)
		if e == nil {
			return false
		}
		e.Status = schema.UploadComplete
		e.Progress = 100
		if e.Written < e.Size {
			e.Written = e.Size
		}
		e.Document = doc
		s.finish(e)
		return true
	})
}

// Fail marks the upload as failed
func (s *Store) Fail(id string, err error) {
	s.update(func() bool {
		e := s.active(id)
		if e == nil {
			return false
		}
		e.Status = schema.UploadFailed
		if err != nil {
			e.Error = err.Error()
		}
		s.finish(e)
		return true
	})
}

// Cancel aborts an upload in progress and marks it as cancelled. It returns
// false if the upload does not exist or has already finished.
func (s *Store) Cancel(id string) bool {
	var abort context.CancelFunc
	cancelled := s.update(func() bool {
		e := s.active(id)
		if e == nil {
			return false
		}
		e.Status = schema.UploadCancelled
		abort = e.abort
		s.finish(e)
		return true
	})
	if abort != nil {
		abort()
	}
	return cancelled
}

// Remove drops an upload from the store. An upload in progress is aborted
// but not marked as cancelled.
func (s *Store) Remove(id string) {
	var abort context.CancelFunc
	s.update(func() bool {
		e, exists := s.entries[id]
		if !exists {
			return false
		}
		if !e.Status.Terminal() {
			abort = e.abort
		}
		delete(s.entries, id)
		s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
		return true
	})
	if abort != nil {
		abort()
	}
}

// Clear drops every finished upload and returns the number removed
func (s *Store) Clear() int {
	var n int
	s.update(func() bool {
		s.order = slices.DeleteFunc(s.order, func(id string) bool {
			if e := s.entries[id]; e.Status.Terminal() {
				delete(s.entries, id)
				n++
				return true
			}
			return false
		})
		return n > 0
	})
	return n
}

// Get returns an upload by identifier
func (s *Store) Get(id string) (Upload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, exists := s.entries[id]; exists {
		return e.Upload, true
	}
	return Upload{}, false
}

// List returns all uploads in insertion order
func (s *Store) List() []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Subscribe registers a listener which is called with a snapshot after
// every change. Listeners may read the store but must not modify it. The
// returned function removes the listener.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	key := s.next
	s.listeners[key] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, key)
	}
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (u Upload) String() string {
	return types.Stringify(u)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// update applies fn under the lock and, if it reports a change, calls the
// listeners with a snapshot outside the lock. Notifications are delivered in
// the order the changes were made.
func (s *Store) update(fn func() bool) bool {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return false
	}
	snapshot := s.snapshot()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
	return true
}

// active returns an upload which has not finished, or nil
func (s *Store) active(id string) *entry {
	if e, exists := s.entries[id]; exists && !e.Status.Terminal() {
		return e
	}
	return nil
}

func (s *Store) finish(e *entry) {
	e.Finished = s.now()
	e.abort = nil
}

func (s *Store) snapshot() []Upload {
	result := make([]Upload, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.entries[id].Upload)
	}
	return result
}

// percent returns written as a percentage of size, clamped to 0..100
func percent(written, size int64) int {
	switch {
	case size <= 0 || written <= 0:
		return 0
	case written >= size:
		return 100
	default:
		return int(written * 100 / size)
	}
}
