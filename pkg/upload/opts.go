package upload

import (
	"errors"
	"io/fs"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Opt is a functional option for the uploader
type Opt func(*opts) error

type opts struct {
	concurrency int
	filter      func(fs.DirEntry) bool
	hidden      bool
	progress    func(id string, written, total int64)
}

///////////////////////////////////////////////////////////////////////////////
// CONSTANTS

// DefaultConcurrency is the number of files uploaded at once
const DefaultConcurrency = 4

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// WithConcurrency sets the number of files uploaded at once
func WithConcurrency(n int) Opt {
	return func(o *opts) error {
		if n < 1 {
			return errors.New("concurrency must be at least one")
		}
		o.concurrency = n
		return nil
	}
}

// WithFilter sets a function that controls which entries UploadFS walks.
// Return false to skip the entry, and its subtree when it is a directory.
func WithFilter(fn func(fs.DirEntry) bool) Opt {
	return func(o *opts) error {
		o.filter = fn
		return nil
	}
}

// WithHidden includes entries whose names start with a dot in UploadFS
func WithHidden() Opt {
	return func(o *opts) error {
		o.hidden = true
		return nil
	}
}

// WithProgress sets a function which is called with the bytes written for
// each upload, in addition to updating the store
func WithProgress(fn func(id string, written, total int64)) Opt {
	return func(o *opts) error {
		o.progress = fn
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func applyOpts(o *opts, opt ...Opt) error {
	for _, fn := range opt {
		if err := fn(o); err != nil {
			return err
		}
	}
	return nil
}
