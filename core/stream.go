package core

import (
	"fmt"

	"github.com/tsawler/reflow/internal/filters"
)

// Filters returns the filter names applied to the stream, outermost first
func (s *Stream) Filters() []string {
	switch f := s.Dict.Get("Filter").(type) {
	case Name:
		return []string{string(f)}
	case Array:
		names := make([]string, 0, len(f))
		for _, obj := range f {
			if n, ok := obj.(Name); ok {
				names = append(names, string(n))
			}
		}
		return names
	}
	return nil
}

// decodeParams returns the DecodeParms dictionary for filter i
func (s *Stream) decodeParams(i int) Dict {
	switch p := s.Dict.Get("DecodeParms").(type) {
	case Dict:
		return p
	case Array:
		if i < len(p) {
			if d, ok := p[i].(Dict); ok {
				return d
			}
		}
	}
	return nil
}

// Decode applies every filter of the stream. Image codecs (DCT, JPX, JBIG2)
// are left encoded, so a DCT image decodes to its JPEG bytes.
func (s *Stream) Decode() ([]byte, error) {
	data := s.Data
	for i, name := range s.Filters() {
		out, err := filters.Decode(name, data, ToParams(s.decodeParams(i)))
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w", name, err)
		}
		data = out
	}
	return data, nil
}

// ToParams converts a dictionary of decode parameters to plain Go values
func ToParams(dict Dict) filters.Params {
	if dict == nil {
		return nil
	}
	params := make(filters.Params, len(dict))
	for k, v := range dict {
		switch obj := v.(type) {
		case Int:
			params[k] = int(obj)
		case Real:
			params[k] = float64(obj)
		case Bool:
			params[k] = bool(obj)
		case Name:
			params[k] = string(obj)
		case String:
			params[k] = string(obj)
		}
	}
	return params
}
