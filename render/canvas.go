package render

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/tsawler/reflow/model"
)

// canvas is the drawing surface of the renderer. Coordinates are in points
// with the origin at the bottom-left corner of the page; y is the text
// baseline for Text and the bottom edge for Rect and Image.
type canvas interface {
	AddPage()
	SetFont(style string, size float64)
	SetTextColor(c model.RGB)
	StringWidth(s string) float64
	Text(x, y float64, s string)
	Rect(x, y, w, h float64)
	Image(data []byte, x, y, w, h float64) error
	Output() ([]byte, error)
}

// fontFamily is the core font used for all text. Style "B", "I" and "BI"
// select Helvetica-Bold, Helvetica-Oblique and Helvetica-BoldOblique.
const fontFamily = "Helvetica"

// pdfCanvas draws with gofpdf using the core fonts
type pdfCanvas struct {
	pdf    *gofpdf.Fpdf
	height float64
	images int
}

func newPDFCanvas(size PageSize) *pdfCanvas {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: size.Width, Ht: size.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("reflow", false)
	return &pdfCanvas{pdf: pdf, height: size.Height}
}

func (c *pdfCanvas) AddPage() {
	c.pdf.AddPage()
}

func (c *pdfCanvas) SetFont(style string, size float64) {
	c.pdf.SetFont(fontFamily, style, size)
}

func (c *pdfCanvas) SetTextColor(rgb model.RGB) {
	c.pdf.SetTextColor(int(rgb.R), int(rgb.G), int(rgb.B))
}

func (c *pdfCanvas) StringWidth(s string) float64 {
	return c.pdf.GetStringWidth(winAnsi(s))
}

func (c *pdfCanvas) Text(x, y float64, s string) {
	c.pdf.Text(x, c.height-y, winAnsi(s))
}

func (c *pdfCanvas) Rect(x, y, w, h float64) {
	c.pdf.Rect(x, c.height-y-h, w, h, "D")
}

// Image draws PNG data. A rejected image leaves the document usable.
func (c *pdfCanvas) Image(data []byte, x, y, w, h float64) error {
	c.images++
	name := fmt.Sprintf("img%d", c.images)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	c.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if err := c.pdf.Error(); err != nil {
		c.pdf.ClearError()
		return err
	}
	c.pdf.ImageOptions(name, x, c.height-y-h, w, h, false, opts, 0, "")
	return nil
}

func (c *pdfCanvas) Output() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// winAnsi converts UTF-8 text to the single byte encoding of the core
// fonts. Characters outside Windows-1252 become '?'.
func winAnsi(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := charmap.Windows1252.EncodeRune(r); ok {
			out = append(out, b)
		} else {
			out = append(out, '?')
		}
	}
	return string(out)
}
