package extract

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/tsawler/reflow/docx"
	"github.com/tsawler/reflow/model"
	"github.com/tsawler/reflow/reader"
)

// Result is a converted flow document
type Result struct {
	Data  []byte
	Skips []model.Skip
	Pages int
}

// Convert turns a PDF into a DOCX package, one page at a time. Every page
// after the first starts with a page break. Skipped elements are logged at
// debug level and returned in the result. A nil logger discards output.
func Convert(data []byte, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r, err := reader.NewReader(data)
	if err != nil {
		return nil, err
	}
	pageList, err := r.Pages()
	if err != nil {
		return nil, fmt.Errorf("failed to read page tree: %w", err)
	}
	logger.Debug("document opened", "version", r.Version().String(), "pages", len(pageList))

	w := docx.NewWriter()
	var skips []model.Skip
	for i, page := range pageList {
		pageNum := i + 1
		if i > 0 {
			w.AddPageBreak()
		}

		units, pageSkips, err := Page(r, page, pageNum)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageNum, err)
		}
		pageSkips = append(pageSkips, Emit(units, w, pageNum)...)
		for _, s := range pageSkips {
			logger.Debug("element skipped",
				"page", s.Page,
				"element", s.Element,
				"reason", s.Reason,
				"err", s.Err)
		}
		skips = append(skips, pageSkips...)
		logger.Debug("page converted", "page", pageNum, "units", len(units))
	}

	out, err := w.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}
	return &Result{Data: out, Skips: skips, Pages: len(pageList)}, nil
}
