package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tsawler/reflow/classify"
	"github.com/tsawler/reflow/model"
	"github.com/tsawler/reflow/pages"
	"github.com/tsawler/reflow/reader"
	"github.com/tsawler/reflow/tables"
	"github.com/tsawler/reflow/text"
)

// Page collects the content units of one page in reading order. pageNum is
// the 1-based page number used in skips.
//
// Elements that cannot be extracted are left out and reported as skips. A
// content stream with a syntax error yields the units read before the error.
// Any other failure to read the page is returned as an error.
func Page(r *reader.Reader, page *pages.Page, pageNum int) ([]model.PageContentUnit, []model.Skip, error) {
	c := &collector{
		page:    page,
		pageNum: pageNum,
		box:     page.MediaBox(),
	}

	ops, err := r.PageOperations(page)
	if err != nil {
		if !errors.Is(err, reader.ErrContentSyntax) {
			return nil, nil, err
		}
		c.skip("content", "page content truncated", err)
	}

	fragments, err := r.ExtractTextFragments(page, ops)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to extract text: %w", err)
	}
	graphics := reader.ExtractGraphics(ops)

	tableBoxes := c.collectTables(tables.NewDetector().Detect(graphics.GetGridLines(), fragments))

	images, errs := r.ExtractPageImages(page, graphics.Placements)
	for _, err := range errs {
		c.skip("image", "image could not be decoded", err)
	}
	c.collectImages(images)

	c.collectText(text.BuildBlocks(text.BuildLines(fragments)), tableBoxes)

	return Order(c.units), c.skips, nil
}

// collector accumulates the units of one page. Boxes are converted to page
// coordinates with the origin at the bottom-left corner of the media box.
type collector struct {
	page    *pages.Page
	pageNum int
	box     model.BBox

	units []model.PageContentUnit
	skips []model.Skip
}

func (c *collector) skip(element, reason string, err error) {
	c.skips = append(c.skips, model.Skip{Page: c.pageNum, Element: element, Reason: reason, Err: err})
}

// local moves a box into page coordinates
func (c *collector) local(b model.BBox) model.BBox {
	return model.BBox{X: b.X - c.box.X, Y: b.Y - c.box.Y, Width: b.Width, Height: b.Height}
}

// top returns the distance from the top of the page to the top of a local box
func (c *collector) top(b model.BBox) float64 {
	return c.box.Height - b.Top()
}

// collectTables adds a unit for every table with at least one non-blank row
// and returns the boxes of all detected tables, emitted or not
func (c *collector) collectTables(detected []*tables.Table) []model.BBox {
	boxes := make([]model.BBox, 0, len(detected))
	for _, t := range detected {
		boxes = append(boxes, t.BBox)

		rows := nonBlankRows(t.Rows)
		if len(rows) == 0 {
			continue
		}
		bbox := c.local(t.BBox)
		c.units = append(c.units, &model.TableUnit{Rows: rows, BBox: bbox, Y: c.top(bbox)})
	}
	return boxes
}

func nonBlankRows(rows [][]string) [][]string {
	var out [][]string
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

func (c *collector) collectImages(images []reader.PageImage) {
	for _, img := range images {
		bbox := c.local(img.BBox)
		c.units = append(c.units, &model.ImageUnit{
			Data:      img.Data,
			Format:    img.Format,
			BBox:      bbox,
			PageWidth: c.box.Width,
			Y:         c.top(bbox),
		})
	}
}

// collectText adds a unit per line. Lines overlapping a table are its cell
// text and are dropped, as are lines without visible text.
func (c *collector) collectText(blocks []text.Block, tableBoxes []model.BBox) {
	for _, block := range blocks {
		overlaps := intersectsAny(block.BBox, tableBoxes)
		for _, line := range block.Lines {
			if overlaps && intersectsAny(line.BBox, tableBoxes) {
				continue
			}
			if unit := c.textLine(line); unit != nil {
				c.units = append(c.units, unit)
			}
		}
	}
}

func intersectsAny(b model.BBox, boxes []model.BBox) bool {
	for _, other := range boxes {
		if b.Intersects(other) {
			return true
		}
	}
	return false
}

func (c *collector) textLine(line text.Line) *model.TextLine {
	var spans []model.StyledSpan
	visible := false
	level := 0
	for _, s := range line.Spans {
		class := classify.Classify(s.FontName, s.Size)
		// smaller levels belong to larger sizes
		if class.HeadingLevel != 0 && (level == 0 || class.HeadingLevel < level) {
			level = class.HeadingLevel
		}
		if s.Text == "" {
			continue
		}
		visible = visible || strings.TrimSpace(s.Text) != ""
		spans = append(spans, model.StyledSpan{
			Text:   s.Text,
			Size:   s.Size,
			Bold:   class.Bold,
			Italic: class.Italic,
			Color:  s.Color,
		})
	}
	if !visible {
		return nil
	}

	bbox := c.local(line.BBox)
	return &model.TextLine{
		Spans:        spans,
		Alignment:    classify.Alignment(bbox.X, c.box.Width-bbox.Right(), c.box.Width),
		DominantSize: line.MaxSize(),
		HeadingLevel: level,
		BBox:         bbox,
		Y:            c.top(bbox),
	}
}
