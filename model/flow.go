package model

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Alignment is a horizontal alignment class
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// ParseAlignment maps a WordprocessingML w:jc value to an alignment class.
// Justified and unknown values fall back to left.
func ParseAlignment(jc string) Alignment {
	switch strings.ToLower(jc) {
	case "center":
		return AlignCenter
	case "right", "end":
		return AlignRight
	default:
		return AlignLeft
	}
}

// RGB is an 8-bit colour. Pure black counts as "unset".
type RGB struct {
	R, G, B uint8
}

// IsSet reports whether the colour differs from pure black
func (c RGB) IsSet() bool {
	return c.R != 0 || c.G != 0 || c.B != 0
}

// Hex returns the colour as RRGGBB
func (c RGB) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// ParseHexColor parses RRGGBB. "auto" and malformed values report ok=false.
func ParseHexColor(s string) (RGB, bool) {
	if len(s) != 6 {
		return RGB{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, true
}

// ImageFormat tags encoded image bytes
type ImageFormat int

const (
	ImageFormatUnknown ImageFormat = iota
	ImageFormatJPEG
	ImageFormatPNG
	ImageFormatGIF
	ImageFormatBMP
	ImageFormatTIFF
	ImageFormatWEBP
)

func (f ImageFormat) String() string {
	switch f {
	case ImageFormatJPEG:
		return "jpeg"
	case ImageFormatPNG:
		return "png"
	case ImageFormatGIF:
		return "gif"
	case ImageFormatBMP:
		return "bmp"
	case ImageFormatTIFF:
		return "tiff"
	case ImageFormatWEBP:
		return "webp"
	default:
		return "unknown"
	}
}

// Extension returns the file extension used when storing the image in a package
func (f ImageFormat) Extension() string {
	if f == ImageFormatJPEG {
		return "jpeg"
	}
	return f.String()
}

// ContentType returns the MIME type of the format
func (f ImageFormat) ContentType() string {
	if f == ImageFormatUnknown {
		return "application/octet-stream"
	}
	return "image/" + f.String()
}

// DetectImageFormat identifies encoded image bytes by their signature
func DetectImageFormat(data []byte) ImageFormat {
	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return ImageFormatJPEG
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return ImageFormatPNG
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return ImageFormatGIF
	case bytes.HasPrefix(data, []byte("BM")):
		return ImageFormatBMP
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return ImageFormatTIFF
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return ImageFormatWEBP
	default:
		return ImageFormatUnknown
	}
}

// NodeKind identifies the variant of a FlowBodyNode
type NodeKind int

const (
	NodeParagraph NodeKind = iota
	NodeTable
	NodeImage
)

func (k NodeKind) String() string {
	switch k {
	case NodeParagraph:
		return "Paragraph"
	case NodeTable:
		return "Table"
	case NodeImage:
		return "Image"
	default:
		return "Unknown"
	}
}

// FlowBodyNode is one top-level block of a flow document. Nodes carry no
// nesting; document order is the only relationship between them.
type FlowBodyNode interface {
	NodeKind() NodeKind
}

// Run is a styled piece of paragraph text. Size is in points; zero means
// inherited from the paragraph style.
type Run struct {
	Text     string
	Bold     bool
	Italic   bool
	Size     float64
	Color    RGB
	HasColor bool
}

// Paragraph is a block of runs
type Paragraph struct {
	Style     string // style display name, e.g. "Heading 2" or "Title"
	Alignment Alignment
	Runs      []Run
	IsList    bool
	// Images are pictures anchored in the paragraph's runs, in run order
	Images []ImageRef
}

func (p *Paragraph) NodeKind() NodeKind { return NodeParagraph }

// Text returns the concatenated run text
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// Table is a grid of cell texts. Rows may be ragged.
type Table struct {
	Rows [][]string
}

func (t *Table) NodeKind() NodeKind { return NodeTable }

// ColCount returns the maximum row length
func (t *Table) ColCount() int {
	n := 0
	for _, row := range t.Rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

// ImageRef is a picture embedded in the flow document
type ImageRef struct {
	Data      []byte
	Format    ImageFormat
	Alignment Alignment
	// WidthInches is the display width; zero means natural size.
	WidthInches float64
}

func (i *ImageRef) NodeKind() NodeKind { return NodeImage }
