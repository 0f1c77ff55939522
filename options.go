package reflow

import (
	"io"
	"log/slog"

	"github.com/tsawler/reflow/render"
)

// BackendBuiltin is the pure Go PDF renderer. It is the only render
// backend compiled into this module.
const BackendBuiltin = "builtin"

// Options holds converter configuration.
type Options struct {
	logger *slog.Logger

	// Rendering (DOCX to PDF)
	pageSize      render.PageSize
	margin        float64
	maxImageWidth float64
	backend       string
}

// Option configures a Converter.
type Option func(*Options)

// defaultOptions returns the default converter options.
func defaultOptions() Options {
	return Options{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		pageSize: render.Letter,
		backend:  BackendBuiltin,
	}
}

// WithLogger sets the logger that receives per-element skips at debug level
// and a summary per conversion. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithPageSize sets the page size of rendered PDFs, in points.
func WithPageSize(size render.PageSize) Option {
	return func(o *Options) {
		o.pageSize = size
	}
}

// WithMargin sets the page margin of rendered PDFs, in points.
func WithMargin(margin float64) Option {
	return func(o *Options) {
		o.margin = margin
	}
}

// WithMaxImageWidth caps the width of pictures in rendered PDFs, in points.
func WithMaxImageWidth(width float64) Option {
	return func(o *Options) {
		o.maxImageWidth = width
	}
}

// WithRenderBackend selects the PDF render backend by name. Asking for a
// backend other than BackendBuiltin makes DOCXToPDF fail with
// ErrFeatureUnavailable.
func WithRenderBackend(name string) Option {
	return func(o *Options) {
		o.backend = name
	}
}

func (o Options) renderOptions() render.Options {
	return render.Options{
		PageSize:      o.pageSize,
		Margin:        o.margin,
		MaxImageWidth: o.maxImageWidth,
	}
}
