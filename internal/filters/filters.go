package filters

import (
	"errors"
	"fmt"
)

// ErrUnsupported marks filters the package recognises but cannot decode
var ErrUnsupported = errors.New("unsupported filter")

// IsImageCodec reports whether the filter produces an encoded image that
// callers should keep as-is rather than decode to samples.
func IsImageCodec(name string) bool {
	switch name {
	case "DCTDecode", "DCT", "JPXDecode", "JBIG2Decode":
		return true
	}
	return false
}

// Decode applies the named filter. Abbreviated names from inline images are
// accepted. Image codecs pass their data through untouched.
func Decode(name string, data []byte, params Params) ([]byte, error) {
	switch name {
	case "FlateDecode", "Fl":
		return FlateDecode(data, params)
	case "LZWDecode", "LZW":
		return LZWDecode(data, params)
	case "ASCIIHexDecode", "AHx":
		return ASCIIHexDecode(data)
	case "ASCII85Decode", "A85":
		return ASCII85Decode(data)
	case "RunLengthDecode", "RL":
		return RunLengthDecode(data)
	case "CCITTFaxDecode", "CCF":
		return CCITTFaxDecode(data, params)
	case "DCTDecode", "DCT", "JPXDecode", "JBIG2Decode":
		return data, nil
	case "Crypt":
		return nil, fmt.Errorf("%w: Crypt", ErrUnsupported)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
}
