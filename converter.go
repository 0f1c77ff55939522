package reflow

import (
	"fmt"
	"time"

	"github.com/tsawler/reflow/extract"
	"github.com/tsawler/reflow/format"
	"github.com/tsawler/reflow/render"
)

// Converter turns PDF documents into DOCX documents and back. Configure it
// once with New; it is safe for concurrent use.
type Converter struct {
	options Options
}

// Result is the outcome of a successful conversion.
type Result struct {
	// Data holds the converted document
	Data []byte
	// Format is the format of Data
	Format format.Format
	// Warnings lists elements that were left out of Data
	Warnings []Warning
	// Pages is the number of source pages for PDF input and the number
	// of rendered pages for DOCX input
	Pages int
}

// New creates a Converter.
//
// Example:
//
//	c := reflow.New(reflow.WithLogger(slog.Default()))
func New(opts ...Option) *Converter {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Converter{options: o}
}

// PDFToDOCX reconstructs the text, tables and images of a PDF as a DOCX
// document. Every page after the first starts with a page break.
//
// Input that is not a PDF, or whose object structure cannot be read, fails
// with ErrMalformedInput. Elements that cannot be extracted are skipped and
// reported in Result.Warnings.
func (c *Converter) PDFToDOCX(data []byte) (*Result, error) {
	if err := format.Validate(data, format.PDF, 0); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	start := time.Now()
	res, err := extract.Convert(data, c.options.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	out := &Result{
		Data:     res.Data,
		Format:   format.DOCX,
		Warnings: warningsFromSkips(res.Skips),
		Pages:    res.Pages,
	}
	c.logResult("pdf to docx", out, start)
	return out, nil
}

// DOCXToPDF lays out the body of a DOCX document on fixed-size pages.
//
// Input that is not a word processing package fails with
// ErrMalformedInput. Selecting a render backend other than BackendBuiltin
// fails with ErrFeatureUnavailable.
func (c *Converter) DOCXToPDF(data []byte) (*Result, error) {
	if c.options.backend != BackendBuiltin {
		return nil, fmt.Errorf("%w: render backend %q", ErrFeatureUnavailable, c.options.backend)
	}
	if err := format.Validate(data, format.DOCX, 0); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	start := time.Now()
	res, err := render.Convert(data, c.options.renderOptions(), c.options.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	out := &Result{
		Data:     res.Data,
		Format:   format.PDF,
		Warnings: warningsFromSkips(res.Skips),
		Pages:    res.Pages,
	}
	c.logResult("docx to pdf", out, start)
	return out, nil
}

// Convert detects the format of data and converts it to the other format:
// PDF input becomes DOCX and DOCX input becomes PDF.
//
// Example:
//
//	res, err := reflow.New().Convert(data)
//	os.WriteFile("out"+res.Format.Extension(), res.Data, 0o644)
func (c *Converter) Convert(data []byte) (*Result, error) {
	switch f := format.Sniff(data); f {
	case format.PDF:
		return c.PDFToDOCX(data)
	case format.DOCX:
		return c.DOCXToPDF(data)
	default:
		return nil, fmt.Errorf("%w: %w: neither PDF nor DOCX", ErrMalformedInput, format.ErrWrongFormat)
	}
}

func (c *Converter) logResult(direction string, res *Result, start time.Time) {
	c.options.logger.Info("conversion finished",
		"direction", direction,
		"pages", res.Pages,
		"bytes", len(res.Data),
		"warnings", len(res.Warnings),
		"elapsed", time.Since(start))
}
