package catalog_test

import (
	"strings"
	"testing"

	// Packages
	catalog "github.com/mutablelogic/go-dms/pkg/catalog"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
	assert "github.com/stretchr/testify/assert"
)

func Test_ValidName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain", "Invoice.pdf", "Invoice.pdf", false},
		{"trimmed", "  Q1 report.docx ", "Q1 report.docx", false},
		{"unicode", "Überweisung €.pdf", "Überweisung €.pdf", false},
		{"empty", "   ", "", true},
		{"dot", ".", "", true},
		{"dotdot", "..", "", true},
		{"slash", "a/b", "", true},
		{"backslash", `a\b`, "", true},
		{"control", "a\tb", "", true},
		{"invalid utf8", "bad\xff\xfe.pdf", "", true},
		{"truncated utf8", "caf\xc3", "", true},
		{"too long", strings.Repeat("x", 256), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := catalog.ValidName(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, httpresponse.ErrBadRequest)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_ValidTag(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"lower", "paid", "paid", false},
		{"folded", " Paid-2026 ", "paid-2026", false},
		{"underscore", "q1_done", "q1_done", false},
		{"empty", "", "", true},
		{"space", "not ok", "", true},
		{"too long", strings.Repeat("t", 65), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := catalog.ValidTag(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, httpresponse.ErrBadRequest)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
