package manager

import (
	"context"
	"fmt"
	"time"

	// Packages
	dms "github.com/mutablelogic/go-dms"
	backend "github.com/mutablelogic/go-dms/pkg/backend"
	metrics "github.com/mutablelogic/go-dms/pkg/metrics"
	zerolog "github.com/rs/zerolog"
	trace "go.opentelemetry.io/otel/trace"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Opt is a functional option for document manager configuration.
type Opt func(*opts) error

type opts struct {
	tracer   trace.Tracer
	storage  dms.Storage
	logger   zerolog.Logger
	metrics  *metrics.Metrics
	expiry   time.Duration
	maxSize  int64
	capacity int
	now      func() time.Time
}

////////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithTracer sets the tracer used for tracing operations.
func WithTracer(tracer trace.Tracer) Opt {
	return func(o *opts) error {
		o.tracer = tracer
		return nil
	}
}

// WithStorage sets the object store for document content and the catalog.
func WithStorage(storage dms.Storage) Opt {
	return func(o *opts) error {
		if storage == nil {
			return fmt.Errorf("storage is nil")
		} else if o.storage != nil {
			return fmt.Errorf("storage %q already set", o.storage.Name())
		}
		o.storage = storage
		return nil
	}
}

// WithBackend opens a blob backend (mem://, file://, s3://) as the object store.
// The url should be in the format "scheme://name" (e.g., "mem://documents").
func WithBackend(ctx context.Context, url string, backendOpts ...backend.Opt) Opt {
	return func(o *opts) error {
		b, err := backend.NewBlobBackend(ctx, url, backendOpts...)
		if err != nil {
			return err
		}
		return WithStorage(b)(o)
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger zerolog.Logger) Opt {
	return func(o *opts) error {
		o.logger = logger
		return nil
	}
}

// WithMetrics sets the Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Opt {
	return func(o *opts) error {
		o.metrics = m
		return nil
	}
}

// WithExpiry sets how long presigned URLs are valid.
func WithExpiry(expiry time.Duration) Opt {
	return func(o *opts) error {
		if expiry <= 0 {
			return fmt.Errorf("expiry must be positive, got %v", expiry)
		}
		o.expiry = expiry
		return nil
	}
}

// WithMaxSize limits the size of an upload in bytes. Zero means unlimited.
func WithMaxSize(size int64) Opt {
	return func(o *opts) error {
		if size < 0 {
			return fmt.Errorf("max size must not be negative, got %d", size)
		}
		o.maxSize = size
		return nil
	}
}

// WithCapacity sets the number of activity entries retained.
func WithCapacity(n int) Opt {
	return func(o *opts) error {
		if n <= 0 {
			return fmt.Errorf("activity capacity must be positive, got %d", n)
		}
		o.capacity = n
		return nil
	}
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func applyOpts(opt []Opt) (opts, error) {
	// Set defaults
	o := opts{
		logger:   zerolog.Nop(),
		expiry:   backend.DefaultExpiry,
		capacity: 10000,
		now:      time.Now,
	}

	// Apply options
	for _, fn := range opt {
		if err := fn(&o); err != nil {
			return opts{}, err
		}
	}
	if o.storage == nil {
		return opts{}, fmt.Errorf("no storage configured")
	}

	// Return success
	return o, nil
}
