package font

import (
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/reflow/core"
)

// Encoding maps single-byte character codes of a simple font to Unicode.
// A zero rune means the code has no known character.
type Encoding [256]rune

// fromCharmap builds an encoding from an x/text single-byte charmap
func fromCharmap(cm *charmap.Charmap) *Encoding {
	var e Encoding
	for i := 0; i < 256; i++ {
		r := cm.DecodeByte(byte(i))
		if r != '\uFFFD' && (i >= 32 || r > 0x7F) {
			e[i] = r
		}
	}
	return &e
}

var (
	winAnsiEncoding  = fromCharmap(charmap.Windows1252)
	macRomanEncoding = fromCharmap(charmap.Macintosh)
	standardEncoding = buildStandardEncoding()
	pdfDocEncoding   = buildPDFDocEncoding()
)

// GetEncoding returns the named base encoding. Unknown names yield the
// standard encoding.
func GetEncoding(name string) *Encoding {
	switch name {
	case "WinAnsiEncoding":
		return winAnsiEncoding
	case "MacRomanEncoding", "MacExpertEncoding":
		return macRomanEncoding
	case "PDFDocEncoding":
		return pdfDocEncoding
	}
	return standardEncoding
}

// Decode maps one code
func (e *Encoding) Decode(code byte) rune {
	return e[code]
}

// withDifferences returns a copy of e with a /Differences array applied
func (e *Encoding) withDifferences(diffs core.Array) *Encoding {
	out := *e
	code := 0
	for _, obj := range diffs {
		switch v := obj.(type) {
		case core.Int:
			code = int(v)
		case core.Name:
			if code >= 0 && code < 256 {
				out[code] = GlyphToRune(string(v))
			}
			code++
		}
	}
	return &out
}

func buildStandardEncoding() *Encoding {
	var e Encoding
	for i := 32; i < 127; i++ {
		e[i] = rune(i)
	}
	e[0x27] = '’'
	e[0x60] = '‘'
	upper := map[int]rune{
		0xA1: '¡', 0xA2: '¢', 0xA3: '£', 0xA4: '⁄', 0xA5: '¥', 0xA6: 'ƒ', 0xA7: '§',
		0xA8: '¤', 0xA9: '\'', 0xAA: '“', 0xAB: '«', 0xAC: '‹', 0xAD: '›', 0xAE: 'ﬁ',
		0xAF: 'ﬂ', 0xB1: '–', 0xB2: '†', 0xB3: '‡', 0xB4: '·', 0xB6: '¶', 0xB7: '•',
		0xB8: '‚', 0xB9: '„', 0xBA: '”', 0xBB: '»', 0xBC: '…', 0xBD: '‰', 0xBF: '¿',
		0xC1: '`', 0xC2: '´', 0xC3: 'ˆ', 0xC4: '˜', 0xC5: '¯', 0xC6: '˘', 0xC7: '˙',
		0xC8: '¨', 0xCA: '˚', 0xCB: '¸', 0xCD: '˝', 0xCE: '˛', 0xCF: 'ˇ', 0xD0: '—',
		0xE1: 'Æ', 0xE3: 'ª', 0xE8: 'Ł', 0xE9: 'Ø', 0xEA: 'Œ', 0xEB: 'º', 0xF1: 'æ',
		0xF5: 'ı', 0xF8: 'ł', 0xF9: 'ø', 0xFA: 'œ', 0xFB: 'ß',
	}
	for code, r := range upper {
		e[code] = r
	}
	return &e
}

// buildPDFDocEncoding approximates PDFDocEncoding as Latin-1 with the
// typographic punctuation block at 0x80-0x9F.
func buildPDFDocEncoding() *Encoding {
	var e Encoding
	for i := 32; i < 256; i++ {
		if i != 127 {
			e[i] = rune(i)
		}
	}
	punct := []rune("•†‡…—–ƒ⁄‹›−‰„“”‘’‚™ﬁﬂŁŒŠŸŽıłœšž")
	for i, r := range punct {
		e[0x80+i] = r
	}
	e[0xA0] = '€'
	return &e
}

var asciiGlyphNames = strings.Fields(`space exclam quotedbl numbersign dollar percent ampersand
quotesingle parenleft parenright asterisk plus comma hyphen period slash zero one two three
four five six seven eight nine colon semicolon less equal greater question at`)

var glyphNames = map[string]rune{
	"bracketleft": '[', "backslash": '\\', "bracketright": ']', "asciicircum": '^',
	"underscore": '_', "grave": '`', "braceleft": '{', "bar": '|', "braceright": '}',
	"asciitilde": '~', "quoteright": '’', "quoteleft": '‘', "quotedblleft": '“',
	"quotedblright": '”', "quotesinglbase": '‚', "quotedblbase": '„', "bullet": '•',
	"endash": '–', "emdash": '—', "ellipsis": '…', "dagger": '†', "daggerdbl": '‡',
	"fi": 'ﬁ', "fl": 'ﬂ', "ff": 'ﬀ', "ffi": 'ﬃ', "ffl": 'ﬄ', "trademark": '™',
	"registered": '®', "copyright": '©', "degree": '°', "section": '§', "paragraph": '¶',
	"Euro": '€', "sterling": '£', "yen": '¥', "cent": '¢', "florin": 'ƒ', "minus": '−',
	"multiply": '×', "divide": '÷', "plusminus": '±', "periodcentered": '·',
	"guillemotleft": '«', "guillemotright": '»', "guilsinglleft": '‹', "guilsinglright": '›',
	"exclamdown": '¡', "questiondown": '¿', "germandbls": 'ß', "AE": 'Æ', "ae": 'æ',
	"OE": 'Œ', "oe": 'œ', "Oslash": 'Ø', "oslash": 'ø', "dotlessi": 'ı', "nbspace": '\u00A0',
	"perthousand": '‰', "fraction": '⁄', "onehalf": '½', "onequarter": '¼', "threequarters": '¾',
}

var accentSuffixes = []struct {
	name string
	mark rune
}{
	{"acute", '\u0301'}, {"grave", '\u0300'}, {"circumflex", '\u0302'}, {"dieresis", '\u0308'},
	{"tilde", '\u0303'}, {"ring", '\u030A'}, {"cedilla", '\u0327'}, {"caron", '\u030C'},
}

// GlyphToRune maps an Adobe glyph name to a rune. It understands the common
// Latin names, accented letters such as "eacute", and the uniXXXX and
// uXXXX[XX] forms. Unknown names yield zero.
func GlyphToRune(name string) rune {
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	if len(name) == 1 && isASCIILetter(name[0]) {
		return rune(name[0])
	}
	for i, n := range asciiGlyphNames {
		if n == name {
			return rune(32 + i)
		}
	}
	if r, ok := glyphNames[name]; ok {
		return r
	}
	if strings.HasPrefix(name, "uni") && len(name) >= 7 {
		if v, err := strconv.ParseUint(name[3:7], 16, 32); err == nil {
			return rune(v)
		}
	}
	if strings.HasPrefix(name, "u") && len(name) >= 5 && len(name) <= 7 {
		if v, err := strconv.ParseUint(name[1:], 16, 32); err == nil {
			return rune(v)
		}
	}
	if len(name) > 1 && isASCIILetter(name[0]) {
		for _, a := range accentSuffixes {
			if name[1:] == a.name {
				composed := []rune(norm.NFC.String(string([]rune{rune(name[0]), a.mark})))
				if len(composed) == 1 {
					return composed[0]
				}
			}
		}
	}
	return 0
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// DecodeUTF16BE decodes big-endian UTF-16. A trailing odd byte is dropped.
func DecodeUTF16BE(data []byte) string {
	units := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		units = append(units, uint16(data[i])<<8|uint16(data[i+1]))
	}
	return string(utf16.Decode(units))
}

var ligatures = strings.NewReplacer("ﬀ", "ff", "ﬁ", "fi", "ﬂ", "fl", "ﬃ", "ffi", "ﬄ", "ffl", "ﬅ", "st", "ﬆ", "st")

// NormalizeUnicode expands typographic ligatures and returns NFC text
func NormalizeUnicode(s string) string {
	return norm.NFC.String(ligatures.Replace(s))
}
