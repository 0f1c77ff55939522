package main

import (
	"testing"

	"github.com/tsawler/reflow/format"
	"github.com/tsawler/reflow/render"
)

func TestParsePageSize(t *testing.T) {
	tests := []struct {
		name    string
		want    render.PageSize
		wantErr bool
	}{
		{"letter", render.Letter, false},
		{"A4", render.PageSize{Width: 595.28, Height: 841.89}, false},
		{"legal", render.PageSize{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePageSize(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePageSize(%q) error = %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("parsePageSize(%q) = %+v, want %+v", tt.name, got, tt.want)
			}
		})
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		in   string
		f    format.Format
		want string
	}{
		{"report.pdf", format.DOCX, "report.docx"},
		{"dir/letter.docx", format.PDF, "dir/letter.pdf"},
		{"noext", format.PDF, "noext.pdf"},
	}

	for _, tt := range tests {
		if got := outputName(tt.in, tt.f); got != tt.want {
			t.Errorf("outputName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
