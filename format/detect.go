// Package format identifies and validates the documents the converter
// accepts.
package format

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format represents a supported document format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PDF indicates a PDF document.
	PDF
	// DOCX indicates a Microsoft Word (.docx) document.
	DOCX
)

var (
	// ErrEmpty is returned for zero-length input
	ErrEmpty = errors.New("empty input")
	// ErrTooLarge is returned when input exceeds the size limit
	ErrTooLarge = errors.New("input exceeds size limit")
	// ErrWrongFormat is returned when input is not the expected format
	ErrWrongFormat = errors.New("unexpected document format")
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case PDF:
		return "PDF"
	case DOCX:
		return "DOCX"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case PDF:
		return ".pdf"
	case DOCX:
		return ".docx"
	default:
		return ""
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case PDF:
		return "application/pdf"
	case DOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return PDF
	case ".docx":
		return DOCX
	default:
		return Unknown
	}
}

// DetectFromMagic checks the leading bytes only. A ZIP archive needs its
// directory inspected and is reported as Unknown; use Sniff for that.
func DetectFromMagic(data []byte) Format {
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return PDF
	}
	return Unknown
}

// Sniff determines the format from content. PDF input must start with
// %PDF; DOCX input must be a ZIP archive with entries under word/.
func Sniff(data []byte) Format {
	if f := DetectFromMagic(data); f != Unknown {
		return f
	}
	if !bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		return Unknown
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Unknown
	}
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "word/") {
			return DOCX
		}
	}
	return Unknown
}

// Validate checks that data is non-empty, at most maxBytes long (no limit
// when maxBytes <= 0) and of the wanted format. The size is checked before
// the content is inspected.
func Validate(data []byte, want Format, maxBytes int64) error {
	if len(data) == 0 {
		return ErrEmpty
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(data), maxBytes)
	}
	if got := Sniff(data); got != want {
		return fmt.Errorf("%w: expected %s, got %s", ErrWrongFormat, want, got)
	}
	return nil
}
