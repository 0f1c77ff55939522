package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	// decoders for the formats found in flow documents
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// decodedImage is an embedded picture re-encoded as PNG
type decodedImage struct {
	png           []byte
	width, height int
}

// decodeImage decodes any supported raster format and re-encodes it as PNG
// so the canvas only ever sees one format
func decodeImage(data []byte) (*decodedImage, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%s image has no pixels", format)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, eightBit(img)); err != nil {
		return nil, fmt.Errorf("failed to encode %s image as PNG: %w", format, err)
	}
	return &decodedImage{png: buf.Bytes(), width: b.Dx(), height: b.Dy()}, nil
}

// eightBit returns img in a model with 8 bits per channel. The PDF writer
// rejects 16-bit PNG data.
func eightBit(img image.Image) image.Image {
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.Gray, *image.Paletted:
		return img
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
