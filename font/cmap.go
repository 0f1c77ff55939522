package font

import (
	"fmt"
	"strconv"

	"github.com/tsawler/reflow/core"
)

// CMap maps multi-byte character codes to Unicode text and, for composite
// fonts, to CIDs. It is built from ToUnicode streams and embedded
// encoding CMaps.
type CMap struct {
	codespaces []codespace
	unicode    map[uint32]string
	ranges     []bfRange
	cids       map[uint32]int
	cidRanges  []cidRange
}

type codespace struct {
	lo, hi uint32
	length int
}

type bfRange struct {
	lo, hi uint32
	length int
	dst    []rune // destination of lo; the last rune is incremented
	array  []string
}

type cidRange struct {
	lo, hi uint32
	cid    int
}

// NewCMap creates an empty CMap
func NewCMap() *CMap {
	return &CMap{unicode: make(map[uint32]string), cids: make(map[uint32]int)}
}

// ParseCMapStream decodes and parses a CMap stream
func ParseCMapStream(stream *core.Stream) (*CMap, error) {
	if stream == nil {
		return nil, fmt.Errorf("nil CMap stream")
	}
	data, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("decode CMap: %w", err)
	}
	return ParseCMap(data)
}

// ParseCMap parses codespacerange, bfchar, bfrange, cidchar and cidrange
// sections. Unknown PostScript around them is skipped.
func ParseCMap(data []byte) (*CMap, error) {
	cm := NewCMap()
	lex := core.NewLexer(data)
	section := ""
	var operands []core.Token

	for {
		tok, err := lex.NextToken()
		if err != nil {
			return cm, fmt.Errorf("CMap syntax: %w", err)
		}
		if tok.Type == core.TokenEOF {
			break
		}

		if tok.Type == core.TokenKeyword {
			kw := string(tok.Value)
			switch kw {
			case "begincodespacerange", "beginbfchar", "beginbfrange", "begincidchar", "begincidrange":
				section = kw
				operands = operands[:0]
				continue
			case "endcodespacerange", "endbfchar", "endbfrange", "endcidchar", "endcidrange":
				section = ""
				operands = operands[:0]
				continue
			}
		}
		if section == "" {
			continue
		}

		if tok.Type == core.TokenArrayStart {
			arr := core.Token{Type: core.TokenArrayStart}
			for {
				el, err := lex.NextToken()
				if err != nil || el.Type == core.TokenEOF {
					return cm, fmt.Errorf("unterminated array in CMap")
				}
				if el.Type == core.TokenArrayEnd {
					break
				}
				// array elements are packed with a length prefix byte
				arr.Value = append(arr.Value, byte(len(el.Value)))
				arr.Value = append(arr.Value, el.Value...)
			}
			tok = arr
		}
		operands = append(operands, tok)
		cm.consume(section, &operands)
	}
	return cm, nil
}

// consume applies a complete entry once enough operands have accumulated
func (cm *CMap) consume(section string, ops *[]core.Token) {
	o := *ops
	switch section {
	case "begincodespacerange":
		if len(o) < 2 {
			return
		}
		cm.codespaces = append(cm.codespaces, codespace{lo: toCode(o[0].Value), hi: toCode(o[1].Value), length: len(o[0].Value)})
	case "beginbfchar":
		if len(o) < 2 {
			return
		}
		cm.unicode[toCode(o[0].Value)] = destString(o[1])
	case "beginbfrange":
		if len(o) < 3 {
			return
		}
		r := bfRange{lo: toCode(o[0].Value), hi: toCode(o[1].Value), length: len(o[0].Value)}
		if o[2].Type == core.TokenArrayStart {
			for v := o[2].Value; len(v) > 0; {
				n := int(v[0])
				if 1+n > len(v) {
					break
				}
				r.array = append(r.array, DecodeUTF16BE(v[1:1+n]))
				v = v[1+n:]
			}
		} else {
			r.dst = []rune(destString(o[2]))
		}
		if r.hi >= r.lo {
			cm.ranges = append(cm.ranges, r)
		}
	case "begincidchar":
		if len(o) < 2 {
			return
		}
		if cid, err := strconv.Atoi(string(o[1].Value)); err == nil {
			cm.cids[toCode(o[0].Value)] = cid
		}
	case "begincidrange":
		if len(o) < 3 {
			return
		}
		if cid, err := strconv.Atoi(string(o[2].Value)); err == nil {
			cm.cidRanges = append(cm.cidRanges, cidRange{lo: toCode(o[0].Value), hi: toCode(o[1].Value), cid: cid})
		}
	default:
		return
	}
	*ops = o[:0]
}

func toCode(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v
}

// destString turns a bfchar/bfrange destination into text. Hex strings are
// UTF-16BE; a name destination is a glyph name.
func destString(tok core.Token) string {
	if tok.Type == core.TokenName {
		if r := GlyphToRune(string(tok.Value)); r != 0 {
			return string(r)
		}
		return ""
	}
	return DecodeUTF16BE(tok.Value)
}

// HasCodespace reports whether the CMap declared any codespace ranges
func (cm *CMap) HasCodespace() bool {
	return len(cm.codespaces) > 0
}

// NextCode reads one character code from data. Codespace ranges decide the
// code length; without them defaultLen bytes are used.
func (cm *CMap) NextCode(data []byte, defaultLen int) (code uint32, n int) {
	if cm != nil && len(cm.codespaces) > 0 {
		for length := 1; length <= 4 && length <= len(data); length++ {
			c := toCode(data[:length])
			for _, cs := range cm.codespaces {
				if cs.length == length && c >= cs.lo && c <= cs.hi {
					return c, length
				}
			}
		}
	}
	if defaultLen > len(data) {
		defaultLen = len(data)
	}
	if defaultLen < 1 {
		defaultLen = 1
	}
	return toCode(data[:defaultLen]), defaultLen
}

// Lookup returns the Unicode text for a code
func (cm *CMap) Lookup(code uint32) (string, bool) {
	if s, ok := cm.unicode[code]; ok {
		return s, true
	}
	for _, r := range cm.ranges {
		if code < r.lo || code > r.hi {
			continue
		}
		off := int(code - r.lo)
		if r.array != nil {
			if off < len(r.array) {
				return r.array[off], true
			}
			return "", false
		}
		if len(r.dst) == 0 {
			return "", false
		}
		out := append([]rune(nil), r.dst...)
		out[len(out)-1] += rune(off)
		return string(out), true
	}
	return "", false
}

// CID maps a code to a CID. Codes not covered by the CMap map to themselves.
func (cm *CMap) CID(code uint32) int {
	if cm == nil {
		return int(code)
	}
	if cid, ok := cm.cids[code]; ok {
		return cid
	}
	for _, r := range cm.cidRanges {
		if code >= r.lo && code <= r.hi {
			return r.cid + int(code-r.lo)
		}
	}
	return int(code)
}
