package core

import (
	"fmt"
	"strconv"
)

// ObjectStream is a decoded /Type /ObjStm stream holding compressed objects
type ObjectStream struct {
	stream  *Stream
	n       int
	first   int
	decoded []byte
	offsets []objectOffset
}

type objectOffset struct {
	number int
	offset int
}

// NewObjectStream validates the /N and /First entries of an object stream
func NewObjectStream(stream *Stream) (*ObjectStream, error) {
	if stream == nil {
		return nil, fmt.Errorf("nil object stream")
	}
	if t, _ := stream.Dict.GetName("Type"); t != "ObjStm" {
		return nil, fmt.Errorf("stream type %q is not ObjStm", t)
	}
	n, ok := stream.Dict.GetInt("N")
	if !ok || n < 0 {
		return nil, fmt.Errorf("object stream has invalid /N")
	}
	first, ok := stream.Dict.GetInt("First")
	if !ok || first < 0 {
		return nil, fmt.Errorf("object stream has invalid /First")
	}
	return &ObjectStream{stream: stream, n: int(n), first: int(first)}, nil
}

// N returns the number of objects in the stream
func (os *ObjectStream) N() int { return os.n }

func (os *ObjectStream) load() error {
	if os.offsets != nil {
		return nil
	}
	decoded, err := os.stream.Decode()
	if err != nil {
		return fmt.Errorf("decode object stream: %w", err)
	}
	if os.first > len(decoded) {
		return fmt.Errorf("/First %d beyond decoded length %d", os.first, len(decoded))
	}

	lex := NewLexer(decoded[:os.first])
	offsets := make([]objectOffset, 0, os.n)
	for i := 0; i < os.n; i++ {
		numTok, err1 := lex.NextToken()
		offTok, err2 := lex.NextToken()
		if err1 != nil || err2 != nil || numTok.Type != TokenInteger || offTok.Type != TokenInteger {
			break
		}
		num, _ := strconv.Atoi(string(numTok.Value))
		off, _ := strconv.Atoi(string(offTok.Value))
		offsets = append(offsets, objectOffset{number: num, offset: off})
	}
	os.decoded = decoded
	os.offsets = offsets
	return nil
}

// ObjectNumbers lists the object numbers stored in the stream, in index order
func (os *ObjectStream) ObjectNumbers() ([]int, error) {
	if err := os.load(); err != nil {
		return nil, err
	}
	nums := make([]int, len(os.offsets))
	for i, o := range os.offsets {
		nums[i] = o.number
	}
	return nums, nil
}

// GetByIndex parses the object at position index. It also returns the
// object number recorded in the header.
func (os *ObjectStream) GetByIndex(index int) (Object, int, error) {
	if err := os.load(); err != nil {
		return nil, 0, err
	}
	if index < 0 || index >= len(os.offsets) {
		return nil, 0, fmt.Errorf("index %d out of range [0, %d)", index, len(os.offsets))
	}
	entry := os.offsets[index]
	p := NewParser(os.decoded)
	if err := p.Seek(os.first + entry.offset); err != nil {
		return nil, 0, err
	}
	obj, err := p.ParseObject()
	if err != nil {
		return nil, 0, fmt.Errorf("object %d in stream: %w", entry.number, err)
	}
	return obj, entry.number, nil
}

// Get finds an object by number
func (os *ObjectStream) Get(objNum int) (Object, error) {
	if err := os.load(); err != nil {
		return nil, err
	}
	for i, o := range os.offsets {
		if o.number == objNum {
			obj, _, err := os.GetByIndex(i)
			return obj, err
		}
	}
	return nil, fmt.Errorf("object %d not in object stream", objNum)
}
