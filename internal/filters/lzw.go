package filters

import (
	"bytes"
	"compress/lzw"
	"errors"
	"fmt"
	"io"

	tifflzw "golang.org/x/image/tiff/lzw"
)

// LZWDecode decompresses LZW data. PDF's default EarlyChange of 1 switches
// code width one code early, which is the TIFF variant of the algorithm;
// EarlyChange 0 matches the classic MSB-first encoding.
func LZWDecode(data []byte, params Params) ([]byte, error) {
	var r io.ReadCloser
	if getIntParam(params, "EarlyChange", 1) == 0 {
		r = lzw.NewReader(bytes.NewReader(data), lzw.MSB, 8)
	} else {
		r = tifflzw.NewReader(bytes.NewReader(data), tifflzw.MSB, 8)
	}
	defer r.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		// a missing EOD code still leaves usable output
		if buf.Len() == 0 || !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("lzw decompression failed: %w", err)
		}
	}
	return applyPredictor(buf.Bytes(), params)
}
