// Package catalog holds the document-management metadata: the container
// hierarchy, documents, shares and the activity log. It enforces the naming
// and lifecycle rules and performs no I/O; the manager persists snapshots.
package catalog

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	// Packages
	uuid "github.com/google/uuid"
	navtree "github.com/mutablelogic/go-dms/pkg/navtree"
	schema "github.com/mutablelogic/go-dms/pkg/schema"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type Catalog struct {
	mu sync.RWMutex
	opts
	nodes    map[string]*schema.Node
	docs     map[string]*schema.Document
	shares   map[string]*schema.Share
	activity []schema.Activity // oldest first
	seq      uint64            // last activity ID
}

// Opt is a functional option for the catalog
type Opt func(*opts) error

type opts struct {
	capacity int
	now      func() time.Time
	newID    func() string
	listener func(schema.Activity)
}

// snapshot is the persisted form of the catalog
type snapshot struct {
	Version   int               `json:"version"`
	Seq       uint64            `json:"seq"`
	Nodes     []schema.Node     `json:"nodes,omitempty"`
	Documents []schema.Document `json:"documents,omitempty"`
	Shares    []schema.Share    `json:"shares,omitempty"`
	Activity  []schema.Activity `json:"activity,omitempty"`
}

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// DefaultCapacity is the number of activity entries retained
	DefaultCapacity = 10000

	snapshotVersion = 1
)

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns an empty catalog
func New(opt ...Opt) (*Catalog, error) {
	self := new(Catalog)
	self.opts = opts{
		capacity: DefaultCapacity,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, fn := range opt {
		if err := fn(&self.opts); err != nil {
			return nil, err
		}
	}
	self.reset()

	// Return success
	return self, nil
}

////////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithCapacity sets the number of activity entries retained
func WithCapacity(n int) Opt {
	return func(o *opts) error {
		if n <= 0 {
			return fmt.Errorf("activity capacity must be positive, got %d", n)
		}
		o.capacity = n
		return nil
	}
}

// WithClock replaces the wall clock, for testing
func WithClock(fn func() time.Time) Opt {
	return func(o *opts) error {
		o.now = fn
		return nil
	}
}

// WithListener sets a function which is called for every activity entry
// appended to the log. It is called with the catalog locked and must not
// call back into the catalog.
func WithListener(fn func(schema.Activity)) Opt {
	return func(o *opts) error {
		o.listener = fn
		return nil
	}
}

////////////////////////////////////////////////////////////////////////////////
// SNAPSHOT

// MarshalJSON returns a snapshot of the catalog
func (c *Catalog) MarshalJSON() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := snapshot{
		Version:   snapshotVersion,
		Seq:       c.seq,
		Nodes:     make([]schema.Node, 0, len(c.nodes)),
		Documents: make([]schema.Document, 0, len(c.docs)),
		Shares:    make([]schema.Share, 0, len(c.shares)),
		Activity:  c.activity,
	}
	for _, n := range c.nodes {
		s.Nodes = append(s.Nodes, *n)
	}
	for _, d := range c.docs {
		s.Documents = append(s.Documents, *d)
	}
	for _, sh := range c.shares {
		s.Shares = append(s.Shares, *sh)
	}
	return json.Marshal(s)
}

// UnmarshalJSON replaces the catalog contents with a snapshot. The snapshot
// is validated before anything is replaced.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	} else if s.Version != snapshotVersion {
		return fmt.Errorf("unsupported catalog snapshot version %d", s.Version)
	}

	nodes := make(map[string]*schema.Node, len(s.Nodes))
	for i := range s.Nodes {
		n := s.Nodes[i]
		n.Children = nil
		nodes[n.ID] = &n
	}
	flat := make([]schema.Node, 0, len(nodes))
	for _, n := range nodes {
		var parentKind schema.NodeKind
		if n.Parent != "" {
			parent, exists := nodes[n.Parent]
			if !exists {
				return fmt.Errorf("catalog snapshot: node %q has unknown parent %q", n.ID, n.Parent)
			}
			parentKind = parent.Kind
		}
		if !n.Kind.CanParent(parentKind) {
			return fmt.Errorf("catalog snapshot: %q node %q cannot be placed under %q", n.Kind, n.ID, n.Parent)
		}
		flat = append(flat, *n)
	}
	if _, err := navtree.Build(flat); err != nil {
		return fmt.Errorf("catalog snapshot: %w", err)
	}
	docs := make(map[string]*schema.Document, len(s.Documents))
	for i := range s.Documents {
		d := s.Documents[i]
		if folder, exists := nodes[d.Folder]; !exists {
			return fmt.Errorf("catalog snapshot: document %q has unknown folder %q", d.ID, d.Folder)
		} else if folder.Kind != schema.NodeFolder {
			return fmt.Errorf("catalog snapshot: document %q is not in a folder", d.ID)
		}
		docs[d.ID] = &d
	}
	shares := make(map[string]*schema.Share, len(s.Shares))
	for i := range s.Shares {
		sh := s.Shares[i]
		if _, exists := docs[sh.Document]; !exists {
			continue
		}
		shares[sh.ID] = &sh
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodes, c.docs, c.shares = nodes, docs, shares
	c.activity = s.Activity
	c.seq = s.Seq
	for _, a := range c.activity {
		c.seq = max(c.seq, a.ID)
	}
	c.trim()
	return nil
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (c *Catalog) reset() {
	c.nodes = make(map[string]*schema.Node)
	c.docs = make(map[string]*schema.Document)
	c.shares = make(map[string]*schema.Share)
	c.activity = nil
	c.seq = 0
}
