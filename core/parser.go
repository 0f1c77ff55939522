package core

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// Parser builds PDF objects from the tokens of a Lexer
type Parser struct {
	lexer    *Lexer
	resolver Resolver
}

// NewParser creates a parser over data, positioned at offset 0
func NewParser(data []byte) *Parser {
	return &Parser{lexer: NewLexer(data)}
}

// SetResolver sets the resolver used for indirect stream lengths
func (p *Parser) SetResolver(r Resolver) {
	p.resolver = r
}

// Lexer exposes the underlying lexer for callers that interleave raw token
// reads with object parsing, such as content stream interpretation.
func (p *Parser) Lexer() *Lexer {
	return p.lexer
}

// Seek positions the parser at an absolute byte offset
func (p *Parser) Seek(pos int) error {
	return p.lexer.Seek(pos)
}

// nextToken returns the next non-comment token
func (p *Parser) nextToken() (Token, error) {
	for {
		tok, err := p.lexer.NextToken()
		if err != nil {
			return tok, err
		}
		if tok.Type != TokenComment {
			return tok, nil
		}
	}
}

// ParseObject parses the next object. io.EOF is returned at end of input.
func (p *Parser) ParseObject() (Object, error) {
	tok, err := p.nextToken()
	if err != nil {
		return nil, err
	}
	return p.ParseFrom(tok)
}

// ParseFrom parses an object whose first token has already been read.
// Keywords other than true, false and null are rejected.
func (p *Parser) ParseFrom(tok Token) (Object, error) {
	switch tok.Type {
	case TokenEOF:
		return nil, io.EOF
	case TokenKeyword:
		switch string(tok.Value) {
		case "null":
			return Null{}, nil
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		}
		return nil, fmt.Errorf("unexpected keyword %q at offset %d", tok.Value, tok.Pos)
	case TokenInteger:
		return p.parseNumber(tok)
	case TokenReal:
		f, err := strconv.ParseFloat(string(tok.Value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid real %q at offset %d", tok.Value, tok.Pos)
		}
		return Real(f), nil
	case TokenString, TokenHexString:
		return String(tok.Value), nil
	case TokenName:
		return Name(tok.Value), nil
	case TokenArrayStart:
		return p.parseArray()
	case TokenDictStart:
		return p.parseDict()
	}
	return nil, fmt.Errorf("unexpected token %v at offset %d", tok.Type, tok.Pos)
}

// parseNumber parses an integer, looking ahead for the "num gen R" pattern.
// The lexer is rewound when the lookahead does not complete a reference.
func (p *Parser) parseNumber(tok Token) (Object, error) {
	n, err := strconv.ParseInt(string(tok.Value), 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(string(tok.Value), 64)
		if ferr != nil {
			return nil, fmt.Errorf("invalid number %q at offset %d", tok.Value, tok.Pos)
		}
		return Real(f), nil
	}

	mark := p.lexer.Pos()
	gen, err := p.lexer.NextToken()
	if err == nil && gen.Type == TokenInteger {
		r, err := p.lexer.NextToken()
		if err == nil && r.Type == TokenIndirectRef {
			g, _ := strconv.Atoi(string(gen.Value))
			return IndirectRef{Number: int(n), Generation: g}, nil
		}
	}
	p.lexer.pos = mark
	return Int(n), nil
}

func (p *Parser) parseArray() (Object, error) {
	arr := Array{}
	for {
		tok, err := p.nextToken()
		if err != nil {
			return nil, err
		}
		switch tok.Type {
		case TokenArrayEnd:
			return arr, nil
		case TokenEOF:
			return nil, fmt.Errorf("unexpected EOF in array")
		}
		obj, err := p.ParseFrom(tok)
		if err != nil {
			return nil, fmt.Errorf("array element: %w", err)
		}
		arr = append(arr, obj)
	}
}

func (p *Parser) parseDict() (Object, error) {
	dict := make(Dict)
	for {
		tok, err := p.nextToken()
		if err != nil {
			return nil, err
		}
		switch tok.Type {
		case TokenDictEnd:
			return dict, nil
		case TokenEOF:
			return nil, fmt.Errorf("unexpected EOF in dictionary")
		case TokenName:
		default:
			return nil, fmt.Errorf("expected name for dictionary key at offset %d, got %v", tok.Pos, tok.Type)
		}
		key := string(tok.Value)

		valTok, err := p.nextToken()
		if err != nil {
			return nil, err
		}
		if valTok.Type == TokenDictEnd {
			// a key with no value; keep it as null and close the dictionary
			dict[key] = Null{}
			return dict, nil
		}
		value, err := p.ParseFrom(valTok)
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", key, err)
		}
		dict[key] = value
	}
}

// ParseIndirectObject parses "num gen obj <object> [stream ... endstream] endobj"
// at the current position. A missing endobj is tolerated.
func (p *Parser) ParseIndirectObject() (*IndirectObject, error) {
	numTok, err := p.nextToken()
	if err != nil {
		return nil, err
	}
	genTok, err := p.nextToken()
	if err != nil {
		return nil, err
	}
	objTok, err := p.nextToken()
	if err != nil {
		return nil, err
	}
	if numTok.Type != TokenInteger || genTok.Type != TokenInteger ||
		objTok.Type != TokenKeyword || string(objTok.Value) != "obj" {
		return nil, fmt.Errorf("expected object header at offset %d", numTok.Pos)
	}
	num, _ := strconv.Atoi(string(numTok.Value))
	gen, _ := strconv.Atoi(string(genTok.Value))

	obj, err := p.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("object %d %d: %w", num, gen, err)
	}

	mark := p.lexer.Pos()
	tok, err := p.nextToken()
	if err == nil && tok.Type == TokenKeyword && string(tok.Value) == "stream" {
		dict, ok := obj.(Dict)
		if !ok {
			return nil, fmt.Errorf("object %d %d: stream must follow a dictionary", num, gen)
		}
		stream, err := p.parseStream(dict)
		if err != nil {
			return nil, fmt.Errorf("object %d %d: %w", num, gen, err)
		}
		obj = stream
		mark = p.lexer.Pos()
		tok, err = p.nextToken()
	}
	if err != nil || tok.Type != TokenKeyword || string(tok.Value) != "endobj" {
		p.lexer.pos = mark
	}

	return &IndirectObject{
		Ref:    IndirectRef{Number: num, Generation: gen},
		Object: obj,
	}, nil
}

var endstreamKeyword = []byte("endstream")

// parseStream reads stream data after the "stream" keyword. When /Length is
// missing, unresolvable or wrong, the data is delimited by searching for
// the endstream keyword instead.
func (p *Parser) parseStream(dict Dict) (*Stream, error) {
	p.lexer.SkipStreamEOL()
	start := p.lexer.Pos()

	if length, ok := p.streamLength(dict); ok && start+length <= len(p.lexer.data) {
		after := p.lexer.data[start+length:]
		trimmed := bytes.TrimLeft(after, " \t\r\n\f\x00")
		if bytes.HasPrefix(trimmed, endstreamKeyword) {
			data, _ := p.lexer.ReadBytes(length)
			p.lexer.pos += len(after) - len(trimmed) + len(endstreamKeyword)
			return &Stream{Dict: dict, Data: data}, nil
		}
	}

	end := p.lexer.IndexFrom(endstreamKeyword)
	if end < 0 {
		return nil, fmt.Errorf("stream at offset %d has no endstream", start)
	}
	data := bytes.TrimRight(p.lexer.data[start:end], "\r\n")
	p.lexer.pos = end + len(endstreamKeyword)
	return &Stream{Dict: dict, Data: data}, nil
}

func (p *Parser) streamLength(dict Dict) (int, bool) {
	obj := dict.Get("Length")
	if ref, ok := obj.(IndirectRef); ok {
		if p.resolver == nil {
			return 0, false
		}
		resolved, err := p.resolver.ResolveReference(ref)
		if err != nil {
			return 0, false
		}
		obj = resolved
	}
	n, ok := obj.(Int)
	if !ok || n < 0 {
		return 0, false
	}
	return int(n), true
}
