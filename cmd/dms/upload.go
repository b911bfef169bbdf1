package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	// Packages
	schema "github.com/mutablelogic/go-dms/pkg/schema"
	upload "github.com/mutablelogic/go-dms/pkg/upload"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type UploadCommands struct {
	Upload UploadCommand `cmd:"" group:"DOCUMENTS" help:"Upload files into a folder (Ctrl+C cancels uploads in progress)"`
}

type UploadCommand struct {
	Folder      string   `arg:"" help:"Destination folder path or identifier"`
	Paths       []string `arg:"" type:"path" help:"Files or directories to upload"`
	Hidden      bool     `name:"hidden" help:"Include files and directories whose names begin with '.'"`
	Concurrency int      `name:"concurrency" short:"j" default:"4" help:"Number of files uploaded at once"`
}

// progressView renders the upload store. On a terminal every upload has a
// line which is redrawn in place, otherwise a line is printed as each
// upload finishes.
type progressView struct {
	w       io.Writer
	tty     bool
	lines   int
	printed map[string]bool
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (cmd *UploadCommand) Run(app *Globals) error {
	c, err := app.Client()
	if err != nil {
		return err
	}
	folder, err := resolveFolder(app.ctx, c, cmd.Folder)
	if err != nil {
		return err
	}

	// Separate files and directories
	var files []upload.File
	var dirs []string
	for _, path := range cmd.Paths {
		info, err := os.Stat(path)
		if err != nil {
			return err
		} else if info.IsDir() {
			dirs = append(dirs, path)
			continue
		}
		file, err := upload.LocalFile(path)
		if err != nil {
			return err
		}
		files = append(files, file)
	}

	// Create the uploader and render progress from the store
	opts := []upload.Opt{upload.WithConcurrency(max(cmd.Concurrency, 1))}
	if cmd.Hidden {
		opts = append(opts, upload.WithHidden())
	}
	uploader, err := upload.New(c, nil, opts...)
	if err != nil {
		return err
	}
	view := &progressView{w: os.Stderr, tty: isTerminal(os.Stderr), printed: make(map[string]bool)}
	unsubscribe := uploader.Store().Subscribe(view.render)
	defer unsubscribe()

	// Upload
	if len(files) > 0 {
		uploader.Upload(app.ctx, folder, files...)
	}
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return err
		}
		if _, err := uploader.UploadFS(app.ctx, folder, os.DirFS(abs)); err != nil {
			return err
		}
	}

	// Summary
	counts := map[schema.UploadStatus]int{}
	for _, u := range uploader.Store().List() {
		counts[u.Status]++
	}
	fmt.Fprintf(os.Stderr, "%d uploaded, %d failed, %d cancelled\n", counts[schema.UploadComplete], counts[schema.UploadFailed], counts[schema.UploadCancelled])
	switch {
	case counts[schema.UploadFailed] > 0:
		return fmt.Errorf("%d upload(s) failed", counts[schema.UploadFailed])
	case counts[schema.UploadCancelled] > 0:
		return app.ctx.Err()
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (v *progressView) render(list []upload.Upload) {
	if !v.tty {
		for _, u := range list {
			if u.Status.Terminal() && !v.printed[u.ID] {
				v.printed[u.ID] = true
				fmt.Fprintf(v.w, "  %s\n", formatUpload(u, false))
			}
		}
		return
	}
	if v.lines > 0 {
		fmt.Fprintf(v.w, "\x1b[%dA", v.lines)
	}
	for _, u := range list {
		fmt.Fprintf(v.w, "\r\x1b[K  %s\n", formatUpload(u, true))
	}
	v.lines = len(list)
}

func formatUpload(u upload.Upload, tty bool) string {
	var status string
	switch u.Status {
	case schema.UploadUploading:
		status = fmt.Sprintf("%5d%%", u.Progress)
	case schema.UploadComplete:
		status = fmt.Sprintf("%6s", humanSize(u.Size))
	case schema.UploadFailed:
		status = "failed"
	case schema.UploadCancelled:
		status = "cancel"
	}
	name := u.Name
	if tty {
		name = "\x1b[1m" + name + "\x1b[0m"
	}
	line := status + "  " + name
	if u.Error != "" {
		line += ": " + u.Error
	}
	return line
}
