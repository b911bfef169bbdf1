// Package manager implements the document management service: it applies
// access control, keeps the catalog in step with the object store, and
// records every change in the activity log.
package manager

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	// Packages
	otel "github.com/mutablelogic/go-client/pkg/otel"
	auth "github.com/mutablelogic/go-dms/pkg/auth"
	catalog "github.com/mutablelogic/go-dms/pkg/catalog"
	schema "github.com/mutablelogic/go-dms/pkg/schema"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type Manager struct {
	opts
	catalog *catalog.Catalog

	// Serialises snapshot writes
	persistMu sync.Mutex

	// Presigned uploads awaiting commit, by storage key
	pendingMu sync.Mutex
	pending   map[string]pending

	// Activity subscribers
	subsMu sync.Mutex
	subs   map[chan schema.Activity]struct{}
}

type pending struct {
	Folder      string
	Name        string
	Size        int64
	ContentType string
	User        string
	Expires     time.Time
}

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// SnapshotKey is the storage key of the persisted catalog
	SnapshotKey = "_catalog/catalog.json"

	// SystemUser is recorded as the user for changes made by the server itself
	SystemUser = "system"

	// DocumentPrefix is the storage key prefix for document content
	DocumentPrefix = "doc/"

	// Number of activity entries buffered for each subscriber
	subscriberBuffer = 64
)

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a new document manager, loading the catalog from storage
func New(ctx context.Context, opts ...Opt) (*Manager, error) {
	self := new(Manager)
	self.pending = make(map[string]pending)
	self.subs = make(map[chan schema.Activity]struct{})

	// Apply options
	if opt, err := applyOpts(opts); err != nil {
		return nil, err
	} else {
		self.opts = opt
	}

	// Create the catalog
	if c, err := catalog.New(
		catalog.WithCapacity(self.capacity),
		catalog.WithClock(self.now),
		catalog.WithListener(self.notify),
	); err != nil {
		return nil, errors.Join(err, self.storage.Close())
	} else {
		self.catalog = c
	}

	// Load the snapshot
	if err := self.load(ctx); err != nil {
		return nil, errors.Join(err, self.storage.Close())
	}

	// Return success
	return self, nil
}

// Close the storage and any activity subscriptions
func (manager *Manager) Close() error {
	manager.subsMu.Lock()
	for ch := range manager.subs {
		delete(manager.subs, ch)
		close(ch)
	}
	manager.subsMu.Unlock()
	return manager.storage.Close()
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// StorageURL returns the location of the object store, without credentials
func (manager *Manager) StorageURL() *url.URL {
	return manager.storage.URL()
}

// Subscribe returns a channel of activity entries as they are recorded. The
// channel is closed when the context is done. Entries are dropped for a
// subscriber which does not keep up.
func (manager *Manager) Subscribe(ctx context.Context) (<-chan schema.Activity, error) {
	if _, err := manager.principal(ctx, auth.ActionRead); err != nil {
		return nil, err
	}
	ch := make(chan schema.Activity, subscriberBuffer)
	manager.subsMu.Lock()
	manager.subs[ch] = struct{}{}
	manager.subsMu.Unlock()

	go func() {
		<-ctx.Done()
		manager.subsMu.Lock()
		defer manager.subsMu.Unlock()
		if _, exists := manager.subs[ch]; exists {
			delete(manager.subs, ch)
			close(ch)
		}
	}()

	return ch, nil
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// begin starts a span for an operation, and returns a function which ends
// the span and records the outcome
func (manager *Manager) begin(ctx context.Context, op string) (context.Context, func(error)) {
	start := time.Now()
	child, endFunc := otel.StartSpan(manager.tracer, ctx, spanManagerName(op))
	return child, func(err error) {
		endFunc(err)
		manager.metrics.RecordRequest(op, err, time.Since(start))
		if err != nil {
			manager.logger.Debug().Str("op", op).Err(err).Msg("operation failed")
		}
	}
}

// principal returns the authenticated user, checking their role permits
// the action
func (manager *Manager) principal(ctx context.Context, action auth.Action) (auth.Principal, error) {
	p, ok := auth.FromContext(ctx)
	if !ok {
		return auth.Principal{}, httpresponse.Err(http.StatusUnauthorized).With("not authenticated")
	} else if !p.Can(action) {
		return auth.Principal{}, httpresponse.ErrForbidden.Withf("%s may not %s", p, action)
	}
	return p, nil
}

// document returns the authenticated user, checking their role or a share
// on the document permits the action
func (manager *Manager) document(ctx context.Context, id string, action auth.Action) (auth.Principal, error) {
	p, ok := auth.FromContext(ctx)
	if !ok {
		return auth.Principal{}, httpresponse.Err(http.StatusUnauthorized).With("not authenticated")
	} else if _, err := manager.catalog.GetDocument(id); err != nil {
		return auth.Principal{}, err
	} else if p.Can(action) {
		return p, nil
	}
	share, _ := manager.catalog.Permission(id, p.User)
	if !auth.CanDocument(p.Role, share, action) {
		return auth.Principal{}, httpresponse.ErrForbidden.Withf("%s may not %s document %q", p, action, id)
	}
	return p, nil
}

// notify is called by the catalog for each activity entry
func (manager *Manager) notify(a schema.Activity) {
	manager.logger.Info().
		Uint64("id", a.ID).
		Str("user", a.User).
		Str("action", string(a.Action)).
		Str("document", a.Document).
		Str("node", a.Node).
		Str("name", a.Name).
		Str("detail", a.Detail).
		Msg("activity")

	manager.subsMu.Lock()
	defer manager.subsMu.Unlock()
	for ch := range manager.subs {
		select {
		case ch <- a:
		default:
		}
	}
}

// load reads the catalog snapshot from storage. A missing snapshot leaves
// the catalog empty.
func (manager *Manager) load(ctx context.Context) error {
	r, _, err := manager.storage.Read(ctx, SnapshotKey)
	if errors.Is(err, httpresponse.ErrNotFound) {
		manager.logger.Info().Str("storage", manager.storage.Name()).Msg("starting with an empty catalog")
		return nil
	} else if err != nil {
		return err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	} else if err := json.Unmarshal(data, manager.catalog); err != nil {
		return err
	}
	manager.gauges()
	manager.logger.Info().Str("storage", manager.storage.Name()).Msg("catalog loaded")
	return nil
}

// persist writes the catalog snapshot to storage. The in-memory catalog
// remains authoritative when the write fails, and the next change retries.
func (manager *Manager) persist(ctx context.Context) {
	manager.persistMu.Lock()
	defer manager.persistMu.Unlock()
	defer manager.gauges()

	data, err := json.Marshal(manager.catalog)
	if err != nil {
		manager.logger.Error().Err(err).Msg("catalog snapshot not encoded")
		return
	}
	if _, err := manager.storage.Write(context.WithoutCancel(ctx), SnapshotKey, bytes.NewReader(data), "application/json"); err != nil {
		manager.logger.Error().Err(err).Str("key", SnapshotKey).Msg("catalog snapshot not saved")
	}
}

// gauges updates the document count metrics
func (manager *Manager) gauges() {
	if manager.metrics == nil {
		return
	}
	live, _ := manager.catalog.ListDocuments(schema.DocumentListRequest{})
	trashed, _ := manager.catalog.ListDocuments(schema.DocumentListRequest{Deleted: true})
	if live != nil && trashed != nil {
		manager.metrics.SetDocuments(live.Count, trashed.Count)
	}
}

func spanManagerName(op string) string {
	return schema.SchemaName + ".manager." + op
}
