package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	// Packages
	isatty "github.com/mattn/go-isatty"
	schema "github.com/mutablelogic/go-dms/pkg/schema"
	upload "github.com/mutablelogic/go-dms/pkg/upload"
)

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func prettyJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func bold(s string) string {
	if isTerminal(os.Stdout) {
		return "\x1b[1m" + s + "\x1b[0m"
	}
	return s
}

// printDocuments renders documents in an ls-style table
func printDocuments(docs []schema.Document, count int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, doc := range docs {
		name := bold(doc.Name)
		if len(doc.Tags) > 0 {
			name += "  #" + strings.Join(doc.Tags, " #")
		}
		fmt.Fprintf(w, "%s\t%8s\t%s\t%-24s\t%s\n",
			doc.ID,
			humanSize(doc.Size),
			formatModTime(doc.Modified),
			shortContentType(doc.ContentType, doc.Name),
			name,
		)
	}
	w.Flush()
	if len(docs) < count {
		fmt.Fprintf(os.Stdout, "\n  %d of %d document(s)\n", len(docs), count)
	} else {
		fmt.Fprintf(os.Stdout, "\n  %d document(s)\n", count)
	}
}

// printDocument renders a single document
func printDocument(doc *schema.Document) {
	printDocuments([]schema.Document{*doc}, 1)
}

// shortContentType strips parameters from a MIME type. When ct is empty or
// generic it falls back to the file extension, and "-" when neither helps.
func shortContentType(ct, name string) string {
	if ct == "" || ct == "application/octet-stream" {
		if inferred := upload.MIMEByExt(filepath.Ext(name)); inferred != "" {
			ct = inferred
		}
	}
	if ct == "" {
		return "-"
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}

// humanSize formats a byte count as a human-readable string
func humanSize(n int64) string {
	const (
		KB = int64(1024)
		MB = 1024 * KB
		GB = 1024 * MB
		TB = 1024 * GB
	)
	switch {
	case n >= 1000*GB:
		return fmt.Sprintf("%.1fT", float64(n)/float64(TB))
	case n >= 1000*MB:
		return fmt.Sprintf("%.1fG", float64(n)/float64(GB))
	case n >= 1000*KB:
		return fmt.Sprintf("%.1fM", float64(n)/float64(MB))
	case n >= KB:
		return fmt.Sprintf("%.1fK", float64(n)/float64(KB))
	default:
		return fmt.Sprintf("%dB", n)
	}
}

// formatModTime formats a time in ls-style: "Jan  2 15:04" for the current
// year, or "Jan  2  2006" for older entries
func formatModTime(t time.Time) string {
	if t.IsZero() {
		return "            "
	}
	t = t.Local()
	if t.Year() == time.Now().Year() {
		return t.Format("Jan _2 15:04")
	}
	return t.Format("Jan _2  2006")
}
