package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"image"
	"math"
	"strings"

	// decoders for picture dimensions
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/tsawler/reflow/model"
)

// Page geometry of written documents, in twips: US Letter with 1 inch
// margins.
const (
	pageWidthTwips  = 12240
	pageHeightTwips = 15840
	marginTwips     = 1440
	textWidthTwips  = pageWidthTwips - 2*marginTwips
)

const (
	emuPerInch = 914400
	// pictures without an explicit width are sized at 72 dpi
	defaultDPI = 72

	// TableStyle is the style given to every written table
	TableStyle = "Table Grid"
)

const (
	relTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeStyles         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relTypeNumbering      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering"
	relTypeImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
)

type mediaPart struct {
	name   string
	relID  string
	data   []byte
	format model.ImageFormat
}

// Writer builds a DOCX package block by block
type Writer struct {
	body  bytes.Buffer
	media []mediaPart
	// drawing object IDs must be unique within the document
	nextDrawingID int
}

// NewWriter creates an empty document
func NewWriter() *Writer {
	return &Writer{nextDrawingID: 1}
}

// AddParagraph appends a paragraph. Its pictures, if any, are placed
// before its text.
func (w *Writer) AddParagraph(p *model.Paragraph) error {
	var drawings []string
	for i := range p.Images {
		d, err := w.drawing(&p.Images[i])
		if err != nil {
			return err
		}
		drawings = append(drawings, d)
	}

	w.body.WriteString("<w:p>")
	w.writeParagraphProps(p.Style, p.Alignment, p.IsList)
	for _, d := range drawings {
		w.body.WriteString("<w:r>")
		w.body.WriteString(d)
		w.body.WriteString("</w:r>")
	}
	for _, r := range p.Runs {
		w.writeRun(r)
	}
	w.body.WriteString("</w:p>")
	return nil
}

// AddImage appends a paragraph holding a single picture. The picture is
// WidthInches wide (natural size at 72 dpi when zero) and keeps its aspect
// ratio. An image whose dimensions cannot be decoded is rejected and nothing
// is written.
func (w *Writer) AddImage(img *model.ImageRef) error {
	d, err := w.drawing(img)
	if err != nil {
		return err
	}
	w.body.WriteString("<w:p>")
	w.writeParagraphProps("", img.Alignment, false)
	w.body.WriteString("<w:r>")
	w.body.WriteString(d)
	w.body.WriteString("</w:r></w:p>")
	return nil
}

// AddTable appends a table in the Table Grid style. The grid is as wide as
// the longest row; shorter rows are padded with empty cells.
func (w *Writer) AddTable(t *model.Table) {
	cols := t.ColCount()
	if cols == 0 || len(t.Rows) == 0 {
		return
	}
	colWidth := textWidthTwips / cols

	w.body.WriteString(`<w:tbl><w:tblPr>`)
	fmt.Fprintf(&w.body, `<w:tblStyle w:val="%s"/>`, styleID(TableStyle))
	w.body.WriteString(`<w:tblW w:w="0" w:type="auto"/><w:tblLook w:val="04A0" w:firstRow="1" w:lastRow="0" w:firstColumn="1" w:lastColumn="0" w:noHBand="0" w:noVBand="1"/></w:tblPr><w:tblGrid>`)
	for i := 0; i < cols; i++ {
		fmt.Fprintf(&w.body, `<w:gridCol w:w="%d"/>`, colWidth)
	}
	w.body.WriteString(`</w:tblGrid>`)

	for _, row := range t.Rows {
		w.body.WriteString("<w:tr>")
		for j := 0; j < cols; j++ {
			fmt.Fprintf(&w.body, `<w:tc><w:tcPr><w:tcW w:w="%d" w:type="dxa"/></w:tcPr><w:p>`, colWidth)
			if j < len(row) && row[j] != "" {
				w.writeRun(model.Run{Text: row[j]})
			}
			w.body.WriteString("</w:p></w:tc>")
		}
		w.body.WriteString("</w:tr>")
	}
	w.body.WriteString("</w:tbl>")
}

// AddPageBreak appends a paragraph holding a page break
func (w *Writer) AddPageBreak() {
	w.body.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
}

func (w *Writer) writeParagraphProps(style string, align model.Alignment, isList bool) {
	if style == "" && align == model.AlignLeft && !isList {
		return
	}
	w.body.WriteString("<w:pPr>")
	if style != "" {
		fmt.Fprintf(&w.body, `<w:pStyle w:val="%s"/>`, escapeAttr(styleID(style)))
	}
	if isList {
		w.body.WriteString(`<w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr>`)
	}
	if align != model.AlignLeft {
		fmt.Fprintf(&w.body, `<w:jc w:val="%s"/>`, align)
	}
	w.body.WriteString("</w:pPr>")
}

func (w *Writer) writeRun(r model.Run) {
	w.body.WriteString("<w:r>")
	if r.Bold || r.Italic || r.HasColor || r.Size > 0 {
		w.body.WriteString("<w:rPr>")
		if r.Bold {
			w.body.WriteString("<w:b/>")
		}
		if r.Italic {
			w.body.WriteString("<w:i/>")
		}
		if r.HasColor {
			fmt.Fprintf(&w.body, `<w:color w:val="%s"/>`, r.Color.Hex())
		}
		if r.Size > 0 {
			fmt.Fprintf(&w.body, `<w:sz w:val="%d"/>`, int(math.Round(r.Size*2)))
		}
		w.body.WriteString("</w:rPr>")
	}

	// tabs and line breaks have their own elements
	for i, line := range strings.Split(r.Text, "\n") {
		if i > 0 {
			w.body.WriteString("<w:br/>")
		}
		for j, part := range strings.Split(line, "\t") {
			if j > 0 {
				w.body.WriteString("<w:tab/>")
			}
			if part == "" {
				continue
			}
			w.body.WriteString(`<w:t xml:space="preserve">`)
			xml.EscapeText(&w.body, []byte(part))
			w.body.WriteString("</w:t>")
		}
	}
	w.body.WriteString("</w:r>")
}

// drawing stores the picture as a media part and returns the inline
// drawing that shows it
func (w *Writer) drawing(img *model.ImageRef) (string, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return "", fmt.Errorf("reading image size: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", fmt.Errorf("image has no size (%dx%d)", cfg.Width, cfg.Height)
	}

	widthIn := img.WidthInches
	if widthIn <= 0 {
		widthIn = float64(cfg.Width) / defaultDPI
	}
	cx := int64(math.Round(widthIn * emuPerInch))
	cy := int64(math.Round(float64(cx) * float64(cfg.Height) / float64(cfg.Width)))

	format := img.Format
	if format == model.ImageFormatUnknown {
		format = model.DetectImageFormat(img.Data)
	}
	n := len(w.media) + 1
	part := mediaPart{
		name:   fmt.Sprintf("image%d.%s", n, format.Extension()),
		relID:  fmt.Sprintf("rIdImg%d", n),
		data:   img.Data,
		format: format,
	}
	w.media = append(w.media, part)

	id := w.nextDrawingID
	w.nextDrawingID++

	return fmt.Sprintf(`<w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0">`+
		`<wp:extent cx="%[1]d" cy="%[2]d"/><wp:docPr id="%[3]d" name="Picture %[3]d"/>`+
		`<wp:cNvGraphicFramePr><a:graphicFrameLocks xmlns:a="%[4]s" noChangeAspect="1"/></wp:cNvGraphicFramePr>`+
		`<a:graphic xmlns:a="%[4]s"><a:graphicData uri="%[5]s"><pic:pic xmlns:pic="%[5]s">`+
		`<pic:nvPicPr><pic:cNvPr id="%[3]d" name="%[6]s"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%[7]s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%[1]d" cy="%[2]d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
		`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing>`,
		cx, cy, id, nsA, nsPic, part.name, part.relID), nil
}

// Bytes assembles the package
func (w *Writer) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", w.contentTypes()},
		{"_rels/.rels", packageRels()},
		{documentPart, w.document()},
		{"word/_rels/document.xml.rels", w.documentRels()},
		{"word/styles.xml", []byte(stylesPart)},
		{"word/numbering.xml", []byte(numberingPart)},
	}
	for _, m := range w.media {
		parts = append(parts, struct {
			name string
			data []byte
		}{"word/media/" + m.name, m.data})
	}

	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", p.name, err)
		}
		if _, err := f.Write(p.data); err != nil {
			return nil, fmt.Errorf("writing %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing package: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *Writer) document() []byte {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	fmt.Fprintf(&sb, `<w:document xmlns:w="%s" xmlns:r="%s" xmlns:wp="%s"><w:body>`, nsW, nsR, nsWP)
	sb.Write(w.body.Bytes())
	fmt.Fprintf(&sb, `<w:sectPr><w:pgSz w:w="%d" w:h="%d"/><w:pgMar w:top="%[3]d" w:right="%[3]d" w:bottom="%[3]d" w:left="%[3]d" w:header="720" w:footer="720" w:gutter="0"/></w:sectPr>`,
		pageWidthTwips, pageHeightTwips, marginTwips)
	sb.WriteString("</w:body></w:document>")
	return []byte(sb.String())
}

func (w *Writer) contentTypes() []byte {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	sb.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	sb.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	sb.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	seen := make(map[string]bool)
	for _, m := range w.media {
		ext := m.format.Extension()
		if seen[ext] {
			continue
		}
		seen[ext] = true
		fmt.Fprintf(&sb, `<Default Extension="%s" ContentType="%s"/>`, ext, m.format.ContentType())
	}
	sb.WriteString(`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>`)
	sb.WriteString(`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>`)
	sb.WriteString(`<Override PartName="/word/numbering.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"/>`)
	sb.WriteString(`</Types>`)
	return []byte(sb.String())
}

func packageRels() []byte {
	return []byte(xml.Header + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="` + relTypeOfficeDocument + `" Target="word/document.xml"/></Relationships>`)
}

func (w *Writer) documentRels() []byte {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	sb.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	fmt.Fprintf(&sb, `<Relationship Id="rIdStyles" Type="%s" Target="styles.xml"/>`, relTypeStyles)
	fmt.Fprintf(&sb, `<Relationship Id="rIdNumbering" Type="%s" Target="numbering.xml"/>`, relTypeNumbering)
	for _, m := range w.media {
		fmt.Fprintf(&sb, `<Relationship Id="%s" Type="%s" Target="media/%s"/>`, m.relID, relTypeImage, m.name)
	}
	sb.WriteString(`</Relationships>`)
	return []byte(sb.String())
}

// styleID derives a style ID from its display name ("Heading 1" -> "Heading1")
func styleID(name string) string {
	return strings.ReplaceAll(name, " ", "")
}

func escapeAttr(s string) string {
	var sb strings.Builder
	xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
