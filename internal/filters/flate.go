package filters

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
)

// Params represents decode parameters from PDF stream dictionaries.
// Common parameters include Predictor, Columns, Colors, and BitsPerComponent.
type Params map[string]any

// FlateDecode decompresses Flate (zlib/deflate) compressed data and applies
// the predictor named in params, if any.
//
// Truncated streams are common in the wild; whatever was inflated before the
// error is returned as long as it is non-empty.
func FlateDecode(data []byte, params Params) ([]byte, error) {
	decompressed, err := zlibDecompress(data)
	if err != nil {
		return nil, fmt.Errorf("zlib decompression failed: %w", err)
	}
	return applyPredictor(decompressed, params)
}

func zlibDecompress(data []byte) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var buf bytes.Buffer
	_, err = io.Copy(&buf, reader)
	if err != nil {
		if buf.Len() > 0 && (errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, zlib.ErrChecksum)) {
			return buf.Bytes(), nil
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

// applyPredictor undoes TIFF (2) or PNG (10-15) prediction. Predictor 1 and
// a missing predictor return data unchanged.
func applyPredictor(data []byte, params Params) ([]byte, error) {
	predictor := getIntParam(params, "Predictor", 1)
	switch {
	case predictor <= 1:
		return data, nil
	case predictor == 2:
		return applyTIFFPredictor2(data, params)
	case predictor >= 10 && predictor <= 15:
		return applyPNGPredictor(data, params)
	}
	return nil, fmt.Errorf("unsupported predictor: %d", predictor)
}

// rowGeometry returns bytes per pixel (at least 1) and bytes per row
func rowGeometry(params Params) (int, int) {
	columns := getIntParam(params, "Columns", 1)
	colors := getIntParam(params, "Colors", 1)
	bpc := getIntParam(params, "BitsPerComponent", 8)
	bpp := (colors*bpc + 7) / 8
	if bpp < 1 {
		bpp = 1
	}
	return bpp, (columns*colors*bpc + 7) / 8
}

func applyTIFFPredictor2(data []byte, params Params) ([]byte, error) {
	if bpc := getIntParam(params, "BitsPerComponent", 8); bpc != 8 {
		return nil, fmt.Errorf("TIFF predictor only supports 8 bits per component, got %d", bpc)
	}
	bpp, rowSize := rowGeometry(params)
	if rowSize <= 0 {
		return nil, fmt.Errorf("invalid row size %d", rowSize)
	}

	result := make([]byte, len(data))
	copy(result, data)
	for rowStart := 0; rowStart < len(result); rowStart += rowSize {
		end := rowStart + rowSize
		if end > len(result) {
			end = len(result)
		}
		for i := rowStart + bpp; i < end; i++ {
			result[i] += result[i-bpp]
		}
	}
	return result, nil
}

// applyPNGPredictor decodes PNG-predicted rows. Each row starts with a tag
// byte selecting None, Sub, Up, Average or Paeth. A short final row is
// decoded as far as it goes.
func applyPNGPredictor(data []byte, params Params) ([]byte, error) {
	bpp, rowLen := rowGeometry(params)
	if rowLen <= 0 {
		return nil, fmt.Errorf("invalid row size %d", rowLen)
	}
	stride := rowLen + 1

	var out bytes.Buffer
	prev := make([]byte, rowLen)
	cur := make([]byte, rowLen)
	for start := 0; start < len(data); start += stride {
		end := start + stride
		if end > len(data) {
			end = len(data)
		}
		tag := data[start]
		row := data[start+1 : end]
		for i := range cur {
			cur[i] = 0
		}
		copy(cur, row)

		for i := 0; i < len(row); i++ {
			var left, up, upLeft byte
			if i >= bpp {
				left = cur[i-bpp]
				upLeft = prev[i-bpp]
			}
			up = prev[i]
			switch tag {
			case 0:
			case 1:
				cur[i] += left
			case 2:
				cur[i] += up
			case 3:
				cur[i] += byte((int(left) + int(up)) / 2)
			case 4:
				cur[i] += paethPredictor(left, up, upLeft)
			default:
				return nil, fmt.Errorf("unknown PNG predictor tag %d at row %d", tag, start/stride)
			}
		}
		out.Write(cur[:len(row)])
		prev, cur = cur, prev
	}
	return out.Bytes(), nil
}

// paethPredictor selects the neighbour closest to a linear prediction
func paethPredictor(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))

	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

// getIntParam extracts an integer parameter, falling back to defaultValue
func getIntParam(params Params, key string, defaultValue int) int {
	if params == nil {
		return defaultValue
	}
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return defaultValue
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
