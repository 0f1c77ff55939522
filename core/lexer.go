package core

import (
	"bytes"
	"fmt"
)

// TokenType represents the type of token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenComment
	TokenKeyword     // true, false, null, obj, endobj, stream, content operators
	TokenInteger     // 123
	TokenReal        // 3.14
	TokenString      // (hello)
	TokenHexString   // <48656C6C6F>, value already decoded
	TokenName        // /Type
	TokenArrayStart  // [
	TokenArrayEnd    // ]
	TokenDictStart   // <<
	TokenDictEnd     // >>
	TokenIndirectRef // R
)

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value []byte
	Pos   int
}

// Lexer tokenizes PDF syntax held in memory
type Lexer struct {
	data []byte
	pos  int
}

// NewLexer creates a lexer positioned at the start of data
func NewLexer(data []byte) *Lexer {
	return &Lexer{data: data}
}

// Pos returns the current byte offset
func (l *Lexer) Pos() int { return l.pos }

// Seek moves the lexer to an absolute byte offset
func (l *Lexer) Seek(pos int) error {
	if pos < 0 || pos > len(l.data) {
		return fmt.Errorf("seek to %d outside [0, %d]", pos, len(l.data))
	}
	l.pos = pos
	return nil
}

// Data returns the underlying buffer
func (l *Lexer) Data() []byte { return l.data }

// NextToken returns the next token, skipping whitespace
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespace()
	if l.pos >= len(l.data) {
		return Token{Type: TokenEOF, Pos: l.pos}, nil
	}

	start := l.pos
	b := l.data[l.pos]
	switch b {
	case '%':
		end := l.pos
		for end < len(l.data) && l.data[end] != '\r' && l.data[end] != '\n' {
			end++
		}
		l.pos = end
		return Token{Type: TokenComment, Value: l.data[start:end], Pos: start}, nil
	case '[':
		l.pos++
		return Token{Type: TokenArrayStart, Pos: start}, nil
	case ']':
		l.pos++
		return Token{Type: TokenArrayEnd, Pos: start}, nil
	case '{', '}':
		// PostScript calculator braces only appear in type 4 functions
		l.pos++
		return Token{Type: TokenKeyword, Value: []byte{b}, Pos: start}, nil
	case '(':
		return l.readString()
	case '<':
		if l.peekAt(1) == '<' {
			l.pos += 2
			return Token{Type: TokenDictStart, Pos: start}, nil
		}
		return l.readHexString()
	case '>':
		if l.peekAt(1) == '>' {
			l.pos += 2
			return Token{Type: TokenDictEnd, Pos: start}, nil
		}
		return Token{}, fmt.Errorf("unexpected '>' at offset %d", start)
	case '/':
		return l.readName()
	}

	if isDigit(b) || b == '-' || b == '+' || b == '.' {
		return l.readNumber()
	}
	return l.readKeyword()
}

func (l *Lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.data) {
		return 0
	}
	return l.data[l.pos+offset]
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.data) && isWhitespace(l.data[l.pos]) {
		l.pos++
	}
}

// readString reads a literal string, resolving escapes and nested parentheses
func (l *Lexer) readString() (Token, error) {
	start := l.pos
	l.pos++ // (
	var buf bytes.Buffer
	depth := 1
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		l.pos++
		switch b {
		case '(':
			depth++
			buf.WriteByte(b)
		case ')':
			depth--
			if depth == 0 {
				return Token{Type: TokenString, Value: buf.Bytes(), Pos: start}, nil
			}
			buf.WriteByte(b)
		case '\\':
			if l.pos >= len(l.data) {
				break
			}
			next := l.data[l.pos]
			l.pos++
			switch next {
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case 'b':
				buf.WriteByte('\b')
			case 'f':
				buf.WriteByte('\f')
			case '\r':
				if l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
			case '\n':
			default:
				if isOctalDigit(next) {
					val := int(next - '0')
					for i := 0; i < 2 && l.pos < len(l.data) && isOctalDigit(l.data[l.pos]); i++ {
						val = val*8 + int(l.data[l.pos]-'0')
						l.pos++
					}
					buf.WriteByte(byte(val))
				} else {
					buf.WriteByte(next)
				}
			}
		default:
			buf.WriteByte(b)
		}
	}
	return Token{}, fmt.Errorf("unterminated string at offset %d", start)
}

// readHexString reads <...> and returns the decoded bytes. An odd trailing
// digit is padded with zero.
func (l *Lexer) readHexString() (Token, error) {
	start := l.pos
	l.pos++ // <
	var out []byte
	var hi byte
	half := false
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		l.pos++
		if b == '>' {
			if half {
				out = append(out, hi<<4)
			}
			return Token{Type: TokenHexString, Value: out, Pos: start}, nil
		}
		if isWhitespace(b) {
			continue
		}
		if !isHexDigit(b) {
			return Token{}, fmt.Errorf("invalid hex digit %q at offset %d", b, l.pos-1)
		}
		if half {
			out = append(out, hi<<4|hexValue(b))
			half = false
		} else {
			hi = hexValue(b)
			half = true
		}
	}
	return Token{}, fmt.Errorf("unterminated hex string at offset %d", start)
}

// readName reads /Name, resolving #xx escapes
func (l *Lexer) readName() (Token, error) {
	start := l.pos
	l.pos++ // /
	var buf bytes.Buffer
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		if isWhitespace(b) || isDelimiter(b) {
			break
		}
		if b == '#' && l.pos+2 < len(l.data) && isHexDigit(l.data[l.pos+1]) && isHexDigit(l.data[l.pos+2]) {
			buf.WriteByte(hexValue(l.data[l.pos+1])<<4 | hexValue(l.data[l.pos+2]))
			l.pos += 3
			continue
		}
		buf.WriteByte(b)
		l.pos++
	}
	return Token{Type: TokenName, Value: buf.Bytes(), Pos: start}, nil
}

// readNumber reads an integer or real. Producers sometimes emit "--5" or
// "1.2.3"; the lexer stops at the first character that cannot extend a number.
func (l *Lexer) readNumber() (Token, error) {
	start := l.pos
	if b := l.data[l.pos]; b == '-' || b == '+' {
		l.pos++
		for l.pos < len(l.data) && (l.data[l.pos] == '-' || l.data[l.pos] == '+') {
			l.pos++
		}
	}
	digitsStart := l.pos
	real := false
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		if isDigit(b) {
			l.pos++
		} else if b == '.' && !real {
			real = true
			l.pos++
		} else {
			break
		}
	}
	if l.pos == digitsStart || (real && l.pos == digitsStart+1 && l.data[digitsStart] == '.') {
		// a lone sign or dot is read as zero
		return Token{Type: TokenInteger, Value: []byte("0"), Pos: start}, nil
	}

	value := l.data[digitsStart:l.pos]
	if digitsStart > start && l.data[digitsStart-1] == '-' {
		value = append([]byte{'-'}, value...)
	}
	if real {
		return Token{Type: TokenReal, Value: value, Pos: start}, nil
	}
	return Token{Type: TokenInteger, Value: value, Pos: start}, nil
}

// readKeyword reads a bare keyword. Content stream operators such as T*, '
// and " are keywords too.
func (l *Lexer) readKeyword() (Token, error) {
	start := l.pos
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		if isWhitespace(b) || isDelimiter(b) {
			break
		}
		l.pos++
	}
	if l.pos == start {
		l.pos++
		return Token{}, fmt.Errorf("unexpected character %q at offset %d", l.data[start], start)
	}
	value := l.data[start:l.pos]
	if len(value) == 1 && value[0] == 'R' {
		return Token{Type: TokenIndirectRef, Value: value, Pos: start}, nil
	}
	return Token{Type: TokenKeyword, Value: value, Pos: start}, nil
}

// SkipStreamEOL consumes the end-of-line marker following the stream keyword
func (l *Lexer) SkipStreamEOL() {
	// skip spaces some writers put before the EOL
	for l.pos < len(l.data) && l.data[l.pos] == ' ' {
		l.pos++
	}
	if l.pos < len(l.data) && l.data[l.pos] == '\r' {
		l.pos++
	}
	if l.pos < len(l.data) && l.data[l.pos] == '\n' {
		l.pos++
	}
}

// ReadBytes returns the next n bytes and advances past them
func (l *Lexer) ReadBytes(n int) ([]byte, error) {
	if n < 0 || l.pos+n > len(l.data) {
		return nil, fmt.Errorf("read of %d bytes at offset %d exceeds buffer", n, l.pos)
	}
	out := l.data[l.pos : l.pos+n]
	l.pos += n
	return out, nil
}

// IndexFrom returns the offset of the next occurrence of sep at or after
// the current position, or -1.
func (l *Lexer) IndexFrom(sep []byte) int {
	idx := bytes.Index(l.data[l.pos:], sep)
	if idx < 0 {
		return -1
	}
	return l.pos + idx
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == 0
}

func isDelimiter(b byte) bool {
	return b == '(' || b == ')' || b == '<' || b == '>' || b == '[' || b == ']' ||
		b == '{' || b == '}' || b == '/' || b == '%'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isOctalDigit(b byte) bool {
	return b >= '0' && b <= '7'
}

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexValue(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10
	}
	return 0
}
