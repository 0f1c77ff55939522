package render

import (
	"io"
	"log/slog"

	"github.com/tsawler/reflow/docx"
	"github.com/tsawler/reflow/model"
)

// Result is a rendered PDF
type Result struct {
	Data  []byte
	Skips []model.Skip
	Pages int
}

// Render lays out flow nodes and returns the finished PDF
func Render(nodes []model.FlowBodyNode, opts Options) (*Result, error) {
	r := NewRenderer(opts)
	r.Render(nodes)
	return r.result()
}

func (r *Renderer) result() (*Result, error) {
	data, err := r.Bytes()
	if err != nil {
		return nil, err
	}
	return &Result{Data: data, Skips: r.Skips(), Pages: r.Pages()}, nil
}

// Convert reads a DOCX package and renders its body. When the body draws
// nothing, every paragraph and table the package holds is drawn in a
// simplified form instead. Pictures the package references but does not
// contain are reported as skips along with those the renderer could not
// draw. A nil logger discards output.
func Convert(data []byte, opts Options, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	doc, err := docx.Open(data)
	if err != nil {
		return nil, err
	}

	var skips []model.Skip
	for _, err := range doc.MediaErrors() {
		skips = append(skips, model.Skip{Element: "image", Reason: "image part could not be read", Err: err})
	}

	r := NewRenderer(opts)
	r.Render(doc.Body())
	if !r.Drawn() {
		logger.Debug("body drew nothing, rendering paragraphs and tables directly")
		r.Fallback(doc.Paragraphs(), doc.Tables())
	}
	res, err := r.result()
	if err != nil {
		return nil, err
	}
	res.Skips = append(skips, res.Skips...)

	for _, s := range res.Skips {
		logger.Debug("element skipped",
			"page", s.Page,
			"element", s.Element,
			"reason", s.Reason,
			"err", s.Err)
	}
	logger.Debug("document rendered", "nodes", len(doc.Body()), "pages", res.Pages)
	return res, nil
}
