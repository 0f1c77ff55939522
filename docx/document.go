package docx

import (
	"encoding/xml"
	"strings"
)

// XML namespaces used in DOCX files
const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"
)

// documentXML represents the structure of word/document.xml
type documentXML struct {
	XMLName xml.Name `xml:"document"`
	Body    *bodyXML `xml:"body"`
}

// bodyXML holds the block-level children of the body (or of a content
// control) in document order.
type bodyXML struct {
	Elements []bodyElement
}

// bodyElement is a paragraph or a table; exactly one of the two is set.
// Nested marks blocks found inside an element the body walk does not
// recognise.
type bodyElement struct {
	Paragraph *paragraphXML
	Table     *tableXML
	Nested    bool
}

// UnmarshalXML walks the body tokens so paragraphs and tables keep their
// relative order. Content controls (<w:sdt>) are flattened into the body.
func (b *bodyXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				p := &paragraphXML{}
				if err := d.DecodeElement(p, &t); err != nil {
					return err
				}
				b.Elements = append(b.Elements, bodyElement{Paragraph: p})
			case "tbl":
				tbl := &tableXML{}
				if err := d.DecodeElement(tbl, &t); err != nil {
					return err
				}
				b.Elements = append(b.Elements, bodyElement{Table: tbl})
			case "sdt":
				var sdt sdtXML
				if err := d.DecodeElement(&sdt, &t); err != nil {
					return err
				}
				b.Elements = append(b.Elements, sdt.Content.Elements...)
			default:
				blocks, err := collectBlocks(d)
				if err != nil {
					return err
				}
				b.Elements = append(b.Elements, blocks...)
			}
		case xml.EndElement:
			return nil
		}
	}
}

// collectBlocks consumes the current element and returns the paragraphs
// and tables at any depth inside it, marked as nested
func collectBlocks(d *xml.Decoder) ([]bodyElement, error) {
	var blocks []bodyElement
	for depth := 1; depth > 0; {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				p := &paragraphXML{}
				if err := d.DecodeElement(p, &t); err != nil {
					return nil, err
				}
				blocks = append(blocks, bodyElement{Paragraph: p, Nested: true})
			case "tbl":
				tbl := &tableXML{}
				if err := d.DecodeElement(tbl, &t); err != nil {
					return nil, err
				}
				blocks = append(blocks, bodyElement{Table: tbl, Nested: true})
			default:
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}
	return blocks, nil
}

// imageIDs returns the picture relationship IDs used anywhere in the blocks
func (b *bodyXML) imageIDs() []string {
	var ids []string
	addRuns := func(p *paragraphXML) {
		for _, r := range p.Runs {
			ids = append(ids, r.Images...)
		}
	}
	for _, el := range b.Elements {
		if el.Paragraph != nil {
			addRuns(el.Paragraph)
		}
		if el.Table != nil {
			for _, row := range el.Table.Rows {
				for i := range row.Cells {
					for j := range row.Cells[i].Paragraphs {
						addRuns(&row.Cells[i].Paragraphs[j])
					}
				}
			}
		}
	}
	return ids
}

// sdtXML represents a block-level content control (<w:sdt>).
type sdtXML struct {
	Content bodyXML `xml:"sdtContent"`
}

// paragraphXML represents a paragraph element (<w:p>). Runs nested in
// hyperlinks, insertions, smart tags and simple fields are flattened in
// order.
type paragraphXML struct {
	Properties paragraphPropsXML
	Runs       []runXML
}

func (p *paragraphXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr":
				if err := d.DecodeElement(&p.Properties, &t); err != nil {
					return err
				}
			case "r":
				var r runXML
				if err := d.DecodeElement(&r, &t); err != nil {
					return err
				}
				p.Runs = append(p.Runs, r)
			case "hyperlink", "ins", "smartTag", "fldSimple", "customXml":
				var inner paragraphXML
				if err := d.DecodeElement(&inner, &t); err != nil {
					return err
				}
				p.Runs = append(p.Runs, inner.Runs...)
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

// Text returns the paragraph text
func (p *paragraphXML) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// paragraphPropsXML represents paragraph properties (<w:pPr>).
type paragraphPropsXML struct {
	Style         styleRefXML       `xml:"pStyle"`
	NumPr         numberingPropsXML `xml:"numPr"`
	Justification justificationXML  `xml:"jc"`
}

// styleRefXML represents a style reference.
type styleRefXML struct {
	Val string `xml:"val,attr"`
}

// numberingPropsXML represents numbering properties for lists.
type numberingPropsXML struct {
	XMLName xml.Name
	ILvl    valXML `xml:"ilvl"`
	NumID   valXML `xml:"numId"`
}

// present reports whether the element occurred. numId 0 removes numbering
// inherited from a style.
func (n numberingPropsXML) present() bool {
	return n.XMLName.Local != "" && n.NumID.Val != "0"
}

// valXML is an element carrying a single w:val attribute.
type valXML struct {
	Val string `xml:"val,attr"`
}

// justificationXML represents text justification.
type justificationXML struct {
	Val string `xml:"val,attr"` // left, center, right, both, start, end
}

// runXML represents a text run (<w:r>). Text keeps tabs and breaks in
// position; Images lists the relationship IDs of pictures in the run,
// including those inside its text boxes. TextBoxes holds the blocks of
// the run's text boxes.
type runXML struct {
	Properties runPropsXML
	Text       string
	Images     []string
	TextBoxes  []bodyElement
}

func (r *runXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var sb strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "rPr":
				if err := d.DecodeElement(&r.Properties, &t); err != nil {
					return err
				}
			case "t":
				var s string
				if err := d.DecodeElement(&s, &t); err != nil {
					return err
				}
				sb.WriteString(s)
			case "tab", "ptab":
				sb.WriteString("\t")
				if err := d.Skip(); err != nil {
					return err
				}
			case "br", "cr":
				sb.WriteString("\n")
				if err := d.Skip(); err != nil {
					return err
				}
			case "noBreakHyphen":
				sb.WriteString("-")
				if err := d.Skip(); err != nil {
					return err
				}
			default:
				// drawings, VML pictures and alternate content
				ids, boxes, err := collectDrawing(d)
				if err != nil {
					return err
				}
				r.Images = append(r.Images, ids...)
				r.TextBoxes = append(r.TextBoxes, boxes...)
			}
		case xml.EndElement:
			r.Text = sb.String()
			return nil
		}
	}
}

// collectDrawing consumes the current element and returns the r:embed IDs
// of every <a:blip> inside it and the content of its text boxes. The
// fallback branch of alternate content repeats the choice and is skipped.
func collectDrawing(d *xml.Decoder) ([]string, []bodyElement, error) {
	var ids []string
	var boxes []bodyElement
	for depth := 1; depth > 0; {
		tok, err := d.Token()
		if err != nil {
			return nil, nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "txbxContent":
				var content bodyXML
				if err := d.DecodeElement(&content, &t); err != nil {
					return nil, nil, err
				}
				ids = append(ids, content.imageIDs()...)
				boxes = append(boxes, content.Elements...)
				continue
			case "Fallback":
				if err := d.Skip(); err != nil {
					return nil, nil, err
				}
				continue
			}
			depth++
			if t.Name.Local != "blip" {
				continue
			}
			for _, attr := range t.Attr {
				if attr.Name.Local == "embed" && attr.Value != "" {
					ids = append(ids, attr.Value)
				}
			}
		case xml.EndElement:
			depth--
		}
	}
	return ids, boxes, nil
}

// runPropsXML represents run properties (<w:rPr>).
type runPropsXML struct {
	Bold     boolXML `xml:"b"`
	Italic   boolXML `xml:"i"`
	FontSize valXML  `xml:"sz"`
	Color    valXML  `xml:"color"`
}

// boolXML represents an on/off property. A missing element leaves the
// inherited value; a present one is true unless val says otherwise.
type boolXML struct {
	XMLName xml.Name
	Val     string `xml:"val,attr"`
}

// value returns the property and whether it was set
func (b boolXML) value() (on, set bool) {
	if b.XMLName.Local == "" {
		return false, false
	}
	switch b.Val {
	case "false", "0", "off":
		return false, true
	default:
		return true, true
	}
}

// tableXML represents a table (<w:tbl>).
type tableXML struct {
	XMLName    xml.Name      `xml:"tbl"`
	Properties tablePropsXML `xml:"tblPr"`
	Rows       []tableRowXML `xml:"tr"`
}

// tablePropsXML represents table properties.
type tablePropsXML struct {
	Style styleRefXML `xml:"tblStyle"`
}

// tableRowXML represents a table row (<w:tr>).
type tableRowXML struct {
	Cells []tableCellXML `xml:"tc"`
}

// tableCellXML represents a table cell (<w:tc>).
type tableCellXML struct {
	Properties cellPropsXML   `xml:"tcPr"`
	Paragraphs []paragraphXML `xml:"p"`
}

// cellPropsXML represents cell properties.
type cellPropsXML struct {
	GridSpan valXML    `xml:"gridSpan"`
	VMerge   vMergeXML `xml:"vMerge"`
}

// vMergeXML represents vertical merge.
type vMergeXML struct {
	XMLName xml.Name
	Val     string `xml:"val,attr"` // "restart" or empty (continue)
}

// continues reports whether the cell continues a vertical merge from the
// row above
func (v vMergeXML) continues() bool {
	return v.XMLName.Local != "" && v.Val != "restart"
}
