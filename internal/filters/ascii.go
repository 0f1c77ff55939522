package filters

import (
	"fmt"
)

// ASCIIHexDecode decodes hexadecimal digit pairs. Whitespace is ignored and
// '>' ends the data; an odd final digit is padded with zero.
func ASCIIHexDecode(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)/2)
	var hi byte
	half := false
	for _, c := range data {
		if isWhitespace(c) {
			continue
		}
		if c == '>' {
			break
		}
		v, err := hexDigitToByte(c)
		if err != nil {
			return nil, err
		}
		if half {
			out = append(out, hi<<4|v)
		} else {
			hi = v
		}
		half = !half
	}
	if half {
		out = append(out, hi<<4)
	}
	return out, nil
}

// ASCII85Decode decodes base-85 data. 'z' stands for four zero bytes and
// "~>" ends the data. A partial final group of n digits yields n-1 bytes.
func ASCII85Decode(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)*4/5)
	var group [5]byte
	n := 0

	flush := func(count int) {
		for i := count; i < 5; i++ {
			group[i] = 84
		}
		var v uint32
		for _, d := range group {
			v = v*85 + uint32(d)
		}
		for j := 0; j < count-1; j++ {
			out = append(out, byte(v>>(24-8*j)))
		}
	}

	for i := 0; i < len(data); i++ {
		c := data[i]
		switch {
		case isWhitespace(c):
			continue
		case c == '~':
			i = len(data)
			continue
		case c == 'z' && n == 0:
			out = append(out, 0, 0, 0, 0)
			continue
		case c < '!' || c > 'u':
			return nil, fmt.Errorf("invalid ASCII85 character: %q", c)
		}
		group[n] = c - '!'
		n++
		if n == 5 {
			flush(5)
			n = 0
		}
	}
	if n > 1 {
		flush(n)
	}
	return out, nil
}

func hexDigitToByte(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	}
	return 0, fmt.Errorf("invalid hex digit: %q", c)
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}
