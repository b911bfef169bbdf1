package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	// Packages
	schema "github.com/mutablelogic/go-dms/pkg/schema"
	errgroup "golang.org/x/sync/errgroup"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Client performs the three upload steps against the server
type Client interface {
	Presign(ctx context.Context, req schema.PresignRequest) (*schema.PresignResponse, error)
	Transfer(ctx context.Context, presign *schema.PresignResponse, body io.Reader, size int64, progress func(written, total int64)) error
	Commit(ctx context.Context, req schema.CommitRequest) (*schema.Document, error)
}

// File is a single file to upload. Size must be known in advance. When
// ContentType is empty it is detected from the name or content.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
	open        func() (io.ReadCloser, error)
}

// Result is the outcome of uploading one file
type Result struct {
	ID       string           // identifier in the store
	Name     string           // file name
	Document *schema.Document // committed document, or nil
	Err      error
}

// Uploader uploads files into folders, recording progress in a store
type Uploader struct {
	opts
	client Client
	store  *Store
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns an uploader. A new store is created when store is nil.
func New(client Client, store *Store, opt ...Opt) (*Uploader, error) {
	if client == nil {
		return nil, errors.New("missing client")
	}
	if store == nil {
		store = NewStore()
	}
	u := &Uploader{client: client, store: store}
	u.concurrency = DefaultConcurrency
	if err := applyOpts(&u.opts, opt...); err != nil {
		return nil, err
	}
	return u, nil
}

// LocalFile returns a file on the local filesystem which is opened when its
// upload starts
func LocalFile(name string) (File, error) {
	info, err := os.Stat(name)
	if err != nil {
		return File{}, err
	} else if !info.Mode().IsRegular() {
		return File{}, fmt.Errorf("%q is not a regular file", name)
	}
	return File{
		Name: filepath.Base(name),
		Size: info.Size(),
		open: func() (io.ReadCloser, error) { return os.Open(name) },
	}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Store returns the store which records upload progress
func (u *Uploader) Store() *Store {
	return u.store
}

// UploadFile uploads a single file into a folder and returns the document
func (u *Uploader) UploadFile(ctx context.Context, folder string, file File) (*schema.Document, error) {
	result := u.upload(ctx, folder, file)
	return result.Document, result.Err
}

// Upload uploads files into a folder, at most the configured number at once.
// Results are returned in the order of the files; a failure does not stop
// the other uploads.
func (u *Uploader) Upload(ctx context.Context, folder string, files ...File) []Result {
	return u.uploadAll(ctx, folder, u.concurrency, files)
}

// UploadFS uploads every regular file in fsys into a folder. Files in
// subdirectories are uploaded under their base name. Entries whose names
// start with a dot are skipped unless WithHidden is set.
func (u *Uploader) UploadFS(ctx context.Context, folder string, fsys fs.FS, opt ...Opt) ([]Result, error) {
	o := u.opts
	if err := applyOpts(&o, opt...); err != nil {
		return nil, err
	}

	var files []File
	if err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		skip := (o.filter != nil && !o.filter(d)) || (!o.hidden && p != "." && strings.HasPrefix(d.Name(), "."))
		switch {
		case skip && d.IsDir():
			return fs.SkipDir
		case skip, d.IsDir(), !d.Type().IsRegular():
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, File{
			Name: path.Base(p),
			Size: info.Size(),
			open: func() (io.ReadCloser, error) { return fsys.Open(p) },
		})
		return nil
	}); err != nil {
		return nil, err
	}

	// Apply per-call options to the progress hook
	uploader := *u
	uploader.opts = o
	return uploader.uploadAll(ctx, folder, o.concurrency, files), nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (u *Uploader) uploadAll(ctx context.Context, folder string, concurrency int, files []File) []Result {
	results := make([]Result, len(files))
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, file := range files {
		g.Go(func() error {
			results[i] = u.upload(ctx, folder, file)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// upload runs the presign, transfer and commit steps for one file and
// records the outcome in the store
func (u *Uploader) upload(parent context.Context, folder string, file File) Result {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	id := u.store.Add(file.Name, file.Size, cancel)
	result := Result{ID: id, Name: file.Name}
	result.Document, result.Err = u.pipeline(ctx, id, folder, file)
	switch {
	case result.Err == nil:
		u.store.Complete(id, result.Document)
	case ctx.Err() != nil:
		u.store.Cancel(id)
		result.Err = ctx.Err()
	default:
		u.store.Fail(id, result.Err)
	}
	return result
}

func (u *Uploader) pipeline(ctx context.Context, id, folder string, file File) (*schema.Document, error) {
	if file.Size < 0 {
		return nil, errors.New("file size is unknown")
	}
	body := file.Body
	if file.open != nil {
		r, err := file.open()
		if err != nil {
			return nil, err
		}
		defer r.Close()
		body = r
	} else if body == nil {
		return nil, errors.New("file has no content")
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType, body = DetectContentType(file.Name, body)
	}

	// Presign
	presign, err := u.client.Presign(ctx, schema.PresignRequest{
		Folder:      folder,
		Name:        file.Name,
		Size:        file.Size,
		ContentType: contentType,
	})
	if err != nil {
		return nil, err
	}

	// Transfer
	if err := u.client.Transfer(ctx, presign, body, file.Size, func(written, total int64) {
		u.store.Progress(id, written, total)
		if u.progress != nil {
			u.progress(id, written, total)
		}
	}); err != nil {
		return nil, err
	}

	// Commit
	return u.client.Commit(ctx, schema.CommitRequest{
		Key:         presign.Key,
		Folder:      folder,
		Name:        file.Name,
		Size:        file.Size,
		ContentType: contentType,
	})
}
