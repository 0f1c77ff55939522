package contentstream

import (
	"bytes"
	"fmt"
	"io"

	"github.com/tsawler/reflow/core"
)

// Operation is one operator together with the operands that preceded it
type Operation struct {
	Operator string
	Operands []core.Object
	// Inline holds the raw sample data of an inline image (operator "BI").
	// Operands then holds the image dictionary as its single element.
	Inline []byte
}

// Parser splits a content stream into operations
type Parser struct {
	data   []byte
	parser *core.Parser
}

// NewParser creates a content stream parser over data
func NewParser(data []byte) *Parser {
	return &Parser{data: data, parser: core.NewParser(data)}
}

// Parse returns every operation in stream order. On a syntax error it
// returns the operations read so far along with the error, so callers can
// still use the readable prefix of a damaged stream.
func (p *Parser) Parse() ([]Operation, error) {
	lex := p.parser.Lexer()
	var ops []Operation
	var operands []core.Object

	for {
		tok, err := lex.NextToken()
		if err != nil {
			return ops, err
		}

		switch tok.Type {
		case core.TokenEOF:
			return ops, nil
		case core.TokenComment:
			continue
		case core.TokenKeyword:
			op := string(tok.Value)
			switch op {
			case "true", "false", "null":
			case "BI":
				inline, err := p.parseInlineImage()
				if err != nil {
					return ops, err
				}
				ops = append(ops, inline)
				operands = nil
				continue
			default:
				ops = append(ops, Operation{Operator: op, Operands: operands})
				operands = nil
				continue
			}
		case core.TokenArrayEnd, core.TokenDictEnd:
			return ops, fmt.Errorf("unbalanced delimiter at offset %d", tok.Pos)
		}

		obj, err := p.parser.ParseFrom(tok)
		if err != nil {
			if err == io.EOF {
				return ops, nil
			}
			return ops, fmt.Errorf("operand at offset %d: %w", tok.Pos, err)
		}
		operands = append(operands, obj)
	}
}

// parseInlineImage reads "BI <key value>... ID <data> EI". The data end is
// found from /L when present, otherwise by the first EI delimited by
// whitespace.
func (p *Parser) parseInlineImage() (Operation, error) {
	lex := p.parser.Lexer()
	dict := make(core.Dict)
	for {
		tok, err := lex.NextToken()
		if err != nil {
			return Operation{}, err
		}
		if tok.Type == core.TokenEOF {
			return Operation{}, fmt.Errorf("inline image without ID")
		}
		if tok.Type == core.TokenKeyword && string(tok.Value) == "ID" {
			break
		}
		if tok.Type != core.TokenName {
			return Operation{}, fmt.Errorf("inline image key at offset %d is not a name", tok.Pos)
		}
		value, err := p.parser.ParseObject()
		if err != nil {
			return Operation{}, fmt.Errorf("inline image value for %s: %w", tok.Value, err)
		}
		dict[string(tok.Value)] = value
	}

	// a single whitespace byte separates ID from the data
	start := lex.Pos() + 1
	if start > len(p.data) {
		return Operation{}, fmt.Errorf("inline image truncated")
	}

	end := -1
	if n, ok := dict.GetInt("L"); ok && start+int(n) <= len(p.data) {
		end = start + int(n)
	} else {
		end = findInlineEnd(p.data, start)
	}
	if end < 0 {
		return Operation{}, fmt.Errorf("inline image at offset %d has no EI", start)
	}

	data := p.data[start:end]
	_ = lex.Seek(end)
	tok, err := lex.NextToken()
	if err != nil || tok.Type != core.TokenKeyword || string(tok.Value) != "EI" {
		// /L pointed somewhere odd; fall back to scanning
		if e := findInlineEnd(p.data, start); e >= 0 {
			data = p.data[start:e]
			_ = lex.Seek(e)
			_, _ = lex.NextToken()
		}
	}

	return Operation{Operator: "BI", Operands: []core.Object{dict}, Inline: data}, nil
}

// findInlineEnd returns the offset of the whitespace preceding the first
// "EI" that stands alone as a token.
func findInlineEnd(data []byte, from int) int {
	for i := from; i+2 <= len(data); {
		idx := bytes.Index(data[i:], []byte("EI"))
		if idx < 0 {
			return -1
		}
		pos := i + idx
		before := pos > from && isSpace(data[pos-1])
		after := pos+2 == len(data) || isSpace(data[pos+2])
		if before && after {
			return pos - 1
		}
		i = pos + 2
	}
	return -1
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == '\f' || b == 0
}
