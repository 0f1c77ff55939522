package extract

import (
	"math"
	"strings"

	"github.com/tsawler/reflow/classify"
	"github.com/tsawler/reflow/docx"
	"github.com/tsawler/reflow/model"
)

// maxImageWidthInches caps the width of emitted pictures
const maxImageWidthInches = 6.0

// Emit appends the ordered units of one page to a flow document. Images
// and paragraphs the writer rejects are left out and returned as skips.
func Emit(units []model.PageContentUnit, w *docx.Writer, pageNum int) []model.Skip {
	var skips []model.Skip
	for _, u := range units {
		switch u := u.(type) {
		case *model.TableUnit:
			w.AddTable(flowTable(u))
			skips = addParagraph(w, &model.Paragraph{}, pageNum, skips)
		case *model.ImageUnit:
			if err := w.AddImage(flowImage(u)); err != nil {
				skips = append(skips, model.Skip{Page: pageNum, Element: "image", Reason: "image could not be embedded", Err: err})
			}
		case *model.TextLine:
			skips = addParagraph(w, flowParagraph(u), pageNum, skips)
		}
	}
	return skips
}

// addParagraph writes p, recording a skip when the writer rejects it
func addParagraph(w *docx.Writer, p *model.Paragraph, pageNum int, skips []model.Skip) []model.Skip {
	if err := w.AddParagraph(p); err != nil {
		skips = append(skips, model.Skip{Page: pageNum, Element: "text", Reason: "paragraph could not be written", Err: err})
	}
	return skips
}

// flowTable pads every row to the widest one and trims cell text
func flowTable(u *model.TableUnit) *model.Table {
	cols := u.ColCount()
	rows := make([][]string, len(u.Rows))
	for i, row := range u.Rows {
		rows[i] = make([]string, cols)
		for j, cell := range row {
			rows[i][j] = strings.TrimSpace(cell)
		}
	}
	return &model.Table{Rows: rows}
}

func flowImage(u *model.ImageUnit) *model.ImageRef {
	align := model.AlignLeft
	if classify.Centered(u.BBox.X, u.BBox.Width, u.PageWidth) {
		align = model.AlignCenter
	}
	return &model.ImageRef{
		Data:        u.Data,
		Format:      u.Format,
		Alignment:   align,
		WidthInches: math.Min(u.BBox.Width/72, maxImageWidthInches),
	}
}

func flowParagraph(l *model.TextLine) *model.Paragraph {
	runs := make([]model.Run, 0, len(l.Spans))
	for _, s := range l.Spans {
		runs = append(runs, model.Run{
			Text:     s.Text,
			Bold:     s.Bold,
			Italic:   s.Italic,
			Size:     s.Size,
			Color:    s.Color,
			HasColor: s.Color.IsSet(),
		})
	}
	return &model.Paragraph{
		Style:     classify.HeadingStyleName(l.HeadingLevel),
		Alignment: l.Alignment,
		Runs:      runs,
	}
}
