package reader

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/tsawler/reflow/core"
	"github.com/tsawler/reflow/graphicsstate"
	"github.com/tsawler/reflow/model"
	"github.com/tsawler/reflow/pages"
)

// maxColorSpaceDepth bounds named and nested colour space lookups
const maxColorSpaceDepth = 8

// maxImageDimension bounds the width and height of a decoded image
const maxImageDimension = 1 << 16

// PageImage is an image XObject placed on a page, re-encoded for embedding.
// DCT images keep their JPEG bytes; everything else is converted to PNG.
type PageImage struct {
	Name   string // XObject name (e.g., "Im1")
	BBox   model.BBox
	Width  int
	Height int
	Format model.ImageFormat
	Data   []byte
}

// ImageError reports an image that could not be extracted
type ImageError struct {
	Name string
	Err  error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("image %s: %v", e.Name, e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }

// ExtractPageImages decodes the image XObjects drawn on a page in the order
// of their first placement. An image drawn several times is returned once.
// Images that fail to decode are reported in the second return value and
// never stop the others.
func (r *Reader) ExtractPageImages(page *pages.Page, placements []graphicsstate.ImagePlacement) ([]PageImage, []error) {
	if len(placements) == 0 {
		return nil, nil
	}
	resources, err := page.Resources()
	if err != nil {
		return nil, []error{err}
	}
	xobjects, err := core.ResolveDict(r, resources.Get("XObject"))
	if err != nil {
		return nil, []error{fmt.Errorf("failed to resolve XObject dictionary: %w", err)}
	}
	if xobjects == nil {
		return nil, nil
	}

	var images []PageImage
	var errs []error
	seen := make(map[string]bool)
	for _, pl := range placements {
		if seen[pl.Name] {
			continue
		}
		seen[pl.Name] = true

		obj, err := core.Resolve(r, xobjects.Get(pl.Name))
		if err != nil {
			errs = append(errs, &ImageError{Name: pl.Name, Err: err})
			continue
		}
		stream, ok := obj.(*core.Stream)
		if !ok {
			continue
		}
		if subtype, _ := stream.Dict.GetName("Subtype"); subtype != "Image" {
			// form XObjects are not images
			continue
		}

		img, err := r.decodeImage(stream, resources)
		if err != nil {
			errs = append(errs, &ImageError{Name: pl.Name, Err: err})
			continue
		}
		img.Name = pl.Name
		img.BBox = pl.BBox
		images = append(images, *img)
	}
	return images, errs
}

// decodeImage converts an image stream to JPEG or PNG bytes
func (r *Reader) decodeImage(stream *core.Stream, resources core.Dict) (*PageImage, error) {
	dict := stream.Dict
	width, wok := r.intEntry(dict, "Width", "W")
	height, hok := r.intEntry(dict, "Height", "H")
	if !wok || !hok || width <= 0 || height <= 0 {
		return nil, fmt.Errorf("image missing Width or Height")
	}
	if width > maxImageDimension || height > maxImageDimension {
		return nil, fmt.Errorf("image too large: %dx%d", width, height)
	}

	filters := stream.Filters()
	last := ""
	if len(filters) > 0 {
		last = filters[len(filters)-1]
	}
	switch last {
	case "JPXDecode":
		return nil, fmt.Errorf("JPEG 2000 images are not supported")
	case "JBIG2Decode":
		return nil, fmt.Errorf("JBIG2 images are not supported")
	}

	data, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode image stream: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image stream is empty")
	}

	if last == "DCTDecode" || last == "DCT" {
		return &PageImage{Width: width, Height: height, Format: model.ImageFormatJPEG, Data: data}, nil
	}

	bpc, ok := r.intEntry(dict, "BitsPerComponent", "BPC")
	var cs *colorSpace
	if mask, _ := dict.Get("ImageMask").(core.Bool); mask {
		bpc = 1
		cs = &colorSpace{kind: csMask, components: 1}
	} else {
		if !ok {
			bpc = 8
		}
		csObj := dict.Get("ColorSpace")
		if csObj == nil {
			csObj = dict.Get("CS")
		}
		if csObj == nil {
			// CCITT images and images without a colour space are gray
			csObj = core.Name("DeviceGray")
		}
		cs, err = r.parseColorSpace(csObj, resources, 0)
		if err != nil {
			return nil, err
		}
	}
	if !validBPC(bpc) {
		return nil, fmt.Errorf("unsupported bits per component: %d", bpc)
	}

	samples := &sampleReader{data: data, width: width, bpc: bpc, components: cs.components}
	if rowBytes := samples.rowBytes(); rowBytes > len(data)/height {
		return nil, fmt.Errorf("insufficient image data: got %d bytes, expected %d rows of %d", len(data), height, rowBytes)
	}

	invert := false
	if dec, ok := dict.GetArray("Decode"); ok && len(dec) >= 2 {
		lo, _ := core.Float(dec[0])
		hi, _ := core.Float(dec[1])
		invert = lo > hi
	}

	goImg := cs.render(samples, width, height, invert)
	var buf bytes.Buffer
	if err := png.Encode(&buf, goImg); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return &PageImage{Width: width, Height: height, Format: model.ImageFormatPNG, Data: buf.Bytes()}, nil
}

func (r *Reader) intEntry(dict core.Dict, keys ...string) (int, bool) {
	for _, key := range keys {
		obj, err := core.Resolve(r, dict.Get(key))
		if err != nil {
			continue
		}
		if v, ok := core.Float(obj); ok {
			return int(v), true
		}
	}
	return 0, false
}

func validBPC(bpc int) bool {
	switch bpc {
	case 1, 2, 4, 8, 16:
		return true
	}
	return false
}

type csKind int

const (
	csGray csKind = iota
	csRGB
	csCMYK
	csIndexed
	csSeparation
	csMask
)

// colorSpace is the subset of PDF colour spaces images are decoded from
type colorSpace struct {
	kind       csKind
	components int

	// Indexed only
	base   *colorSpace
	hival  int
	lookup []byte
}

func deviceSpace(kind csKind) *colorSpace {
	switch kind {
	case csRGB:
		return &colorSpace{kind: csRGB, components: 3}
	case csCMYK:
		return &colorSpace{kind: csCMYK, components: 4}
	}
	return &colorSpace{kind: csGray, components: 1}
}

// parseColorSpace resolves a colour space object. Names other than the
// device families are looked up in the page's /ColorSpace resources.
func (r *Reader) parseColorSpace(obj core.Object, resources core.Dict, depth int) (*colorSpace, error) {
	if depth > maxColorSpaceDepth {
		return nil, fmt.Errorf("colour space nesting too deep")
	}
	resolved, err := core.Resolve(r, obj)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve colour space: %w", err)
	}

	switch v := resolved.(type) {
	case core.Name:
		switch v {
		case "DeviceGray", "G", "CalGray":
			return deviceSpace(csGray), nil
		case "DeviceRGB", "RGB", "CalRGB":
			return deviceSpace(csRGB), nil
		case "DeviceCMYK", "CMYK":
			return deviceSpace(csCMYK), nil
		}
		named, err := core.ResolveDict(r, resources.Get("ColorSpace"))
		if err != nil || named == nil || !named.Has(string(v)) {
			return nil, fmt.Errorf("unknown colour space %s", v)
		}
		return r.parseColorSpace(named.Get(string(v)), resources, depth+1)

	case core.Array:
		if len(v) == 0 {
			return nil, fmt.Errorf("empty colour space array")
		}
		family, _ := v[0].(core.Name)
		switch family {
		case "DeviceGray", "CalGray", "G":
			return deviceSpace(csGray), nil
		case "DeviceRGB", "CalRGB", "RGB":
			return deviceSpace(csRGB), nil
		case "DeviceCMYK", "CMYK":
			return deviceSpace(csCMYK), nil
		case "ICCBased":
			return r.iccSpace(v, resources, depth)
		case "Indexed", "I":
			return r.indexedSpace(v, resources, depth)
		case "Separation":
			return &colorSpace{kind: csSeparation, components: 1}, nil
		}
		return nil, fmt.Errorf("unsupported colour space %s", family)
	}
	return nil, fmt.Errorf("invalid colour space %T", resolved)
}

// iccSpace maps an ICC profile to a device space by its component count
func (r *Reader) iccSpace(arr core.Array, resources core.Dict, depth int) (*colorSpace, error) {
	if len(arr) < 2 {
		return nil, fmt.Errorf("ICCBased colour space without a profile")
	}
	profile, err := core.ResolveDict(r, arr[1])
	if err != nil || profile == nil {
		return nil, fmt.Errorf("unreadable ICC profile")
	}
	if n, ok := profile.GetInt("N"); ok {
		switch n {
		case 1:
			return deviceSpace(csGray), nil
		case 3:
			return deviceSpace(csRGB), nil
		case 4:
			return deviceSpace(csCMYK), nil
		}
	}
	if profile.Has("Alternate") {
		return r.parseColorSpace(profile.Get("Alternate"), resources, depth+1)
	}
	return nil, fmt.Errorf("ICC profile has no usable component count")
}

func (r *Reader) indexedSpace(arr core.Array, resources core.Dict, depth int) (*colorSpace, error) {
	if len(arr) < 4 {
		return nil, fmt.Errorf("indexed colour space needs 4 entries")
	}
	base, err := r.parseColorSpace(arr[1], resources, depth+1)
	if err != nil {
		return nil, fmt.Errorf("indexed base: %w", err)
	}
	if base.kind == csIndexed {
		return nil, fmt.Errorf("indexed colour space over another indexed space")
	}
	hiObj, _ := core.Resolve(r, arr[2])
	hival, ok := core.Float(hiObj)
	if !ok || hival < 0 || hival > 255 {
		return nil, fmt.Errorf("invalid hival")
	}

	lookupObj, err := core.Resolve(r, arr[3])
	if err != nil {
		return nil, fmt.Errorf("failed to resolve lookup table: %w", err)
	}
	var lookup []byte
	switch l := lookupObj.(type) {
	case core.String:
		lookup = []byte(l)
	case *core.Stream:
		lookup, err = l.Decode()
		if err != nil {
			return nil, fmt.Errorf("failed to decode lookup table: %w", err)
		}
	default:
		return nil, fmt.Errorf("invalid lookup table %T", lookupObj)
	}
	return &colorSpace{kind: csIndexed, components: 1, base: base, hival: int(hival), lookup: lookup}, nil
}

// sampleReader reads packed samples; every row starts on a byte boundary
type sampleReader struct {
	data       []byte
	width      int
	bpc        int
	components int
}

func (s *sampleReader) rowBytes() int {
	return (s.width*s.components*s.bpc + 7) / 8
}

// raw returns the unscaled value of component c of pixel (x, y)
func (s *sampleReader) raw(x, y, c int) int {
	bit := (x*s.components + c) * s.bpc
	off := y*s.rowBytes() + bit/8
	switch s.bpc {
	case 8:
		return int(s.data[off])
	case 16:
		return int(s.data[off])<<8 | int(s.data[off+1])
	}
	shift := 8 - s.bpc - bit%8
	return int(s.data[off]>>uint(shift)) & (1<<uint(s.bpc) - 1)
}

// value returns component c of pixel (x, y) scaled to 0..255
func (s *sampleReader) value(x, y, c int) uint8 {
	v := s.raw(x, y, c)
	max := 1<<uint(s.bpc) - 1
	return uint8(v * 255 / max)
}

// render converts samples to a Go image
func (cs *colorSpace) render(s *sampleReader, width, height int, invert bool) image.Image {
	rect := image.Rect(0, 0, width, height)

	if cs.kind == csGray || cs.kind == csMask || cs.kind == csSeparation {
		img := image.NewGray(rect)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				v := s.value(x, y, 0)
				switch cs.kind {
				case csMask:
					// 0 paints the current colour; render painted pixels black
					if (v == 0) != invert {
						v = 0
					} else {
						v = 255
					}
				case csSeparation:
					// a tint of 1 is full ink
					v = 255 - v
					if invert {
						v = 255 - v
					}
				default:
					if invert {
						v = 255 - v
					}
				}
				img.Pix[y*img.Stride+x] = v
			}
		}
		return img
	}

	img := image.NewRGBA(rect)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.RGBA
			switch cs.kind {
			case csRGB:
				c = color.RGBA{s.value(x, y, 0), s.value(x, y, 1), s.value(x, y, 2), 255}
			case csCMYK:
				rr, gg, bb := color.CMYKToRGB(s.value(x, y, 0), s.value(x, y, 1), s.value(x, y, 2), s.value(x, y, 3))
				c = color.RGBA{rr, gg, bb, 255}
			case csIndexed:
				c = cs.lookupColor(s.raw(x, y, 0))
			}
			if invert && cs.kind != csIndexed {
				c = color.RGBA{255 - c.R, 255 - c.G, 255 - c.B, 255}
			}
			off := y*img.Stride + x*4
			img.Pix[off], img.Pix[off+1], img.Pix[off+2], img.Pix[off+3] = c.R, c.G, c.B, c.A
		}
	}
	return img
}

// lookupColor maps a palette index through the base colour space. Indexes
// past hival or the table end are clamped.
func (cs *colorSpace) lookupColor(index int) color.RGBA {
	if index > cs.hival {
		index = cs.hival
	}
	n := cs.base.components
	off := index * n
	if off+n > len(cs.lookup) {
		return color.RGBA{0, 0, 0, 255}
	}
	entry := cs.lookup[off : off+n]
	switch cs.base.kind {
	case csRGB:
		return color.RGBA{entry[0], entry[1], entry[2], 255}
	case csCMYK:
		r, g, b := color.CMYKToRGB(entry[0], entry[1], entry[2], entry[3])
		return color.RGBA{r, g, b, 255}
	case csSeparation:
		v := 255 - entry[0]
		return color.RGBA{v, v, v, 255}
	}
	return color.RGBA{entry[0], entry[0], entry[0], 255}
}
