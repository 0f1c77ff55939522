package core

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
)

// EntryKind distinguishes the three cross-reference entry types
type EntryKind int

const (
	EntryFree EntryKind = iota
	EntryInUse
	EntryCompressed
)

// XRefEntry locates one object. In-use entries carry a byte offset;
// compressed entries name the object stream and the index inside it.
type XRefEntry struct {
	Kind         EntryKind
	Offset       int
	Generation   int
	StreamNumber int
	Index        int
}

// XRefTable maps object numbers to their locations
type XRefTable struct {
	Entries map[int]XRefEntry
	Trailer Dict
}

// NewXRefTable creates an empty table
func NewXRefTable() *XRefTable {
	return &XRefTable{Entries: make(map[int]XRefEntry), Trailer: make(Dict)}
}

// Get retrieves the entry for an object number
func (x *XRefTable) Get(objNum int) (XRefEntry, bool) {
	e, ok := x.Entries[objNum]
	return e, ok
}

// setOlder records an entry only if a newer section has not already done so
func (x *XRefTable) setOlder(objNum int, e XRefEntry) {
	if _, ok := x.Entries[objNum]; !ok {
		x.Entries[objNum] = e
	}
}

// mergeTrailer copies keys missing from the current trailer
func (x *XRefTable) mergeTrailer(d Dict) {
	for k, v := range d {
		if !x.Trailer.Has(k) {
			x.Trailer[k] = v
		}
	}
}

var startxrefKeyword = []byte("startxref")

// FindStartXRef returns the offset recorded after the last startxref keyword
func FindStartXRef(data []byte) (int, error) {
	idx := bytes.LastIndex(data, startxrefKeyword)
	if idx < 0 {
		return 0, fmt.Errorf("startxref not found")
	}
	lex := NewLexer(data)
	lex.pos = idx + len(startxrefKeyword)
	tok, err := lex.NextToken()
	if err != nil || tok.Type != TokenInteger {
		return 0, fmt.Errorf("startxref is not followed by an offset")
	}
	off, err := strconv.Atoi(string(tok.Value))
	if err != nil || off < 0 || off >= len(data) {
		return 0, fmt.Errorf("startxref offset %q out of range", tok.Value)
	}
	return off, nil
}

// LoadXRef reads the cross-reference chain starting at startxref, following
// /Prev and hybrid /XRefStm links. Newer sections take precedence. If the
// chain is broken or lacks a /Root, the table is rebuilt by scanning.
func LoadXRef(data []byte) (*XRefTable, error) {
	table, err := loadXRefChain(data)
	if err == nil && table.Trailer.Has("Root") {
		return table, nil
	}
	rebuilt, rerr := RebuildXRef(data)
	if rerr != nil {
		if err != nil {
			return nil, fmt.Errorf("%w (rebuild: %v)", err, rerr)
		}
		return nil, rerr
	}
	return rebuilt, nil
}

func loadXRefChain(data []byte) (*XRefTable, error) {
	offset, err := FindStartXRef(data)
	if err != nil {
		return nil, err
	}

	table := NewXRefTable()
	seen := make(map[int]bool)
	for pending := []int{offset}; len(pending) > 0; {
		off := pending[0]
		pending = pending[1:]
		if seen[off] {
			continue
		}
		seen[off] = true

		trailer, err := parseXRefSection(data, off, table)
		if err != nil {
			return nil, fmt.Errorf("xref at offset %d: %w", off, err)
		}
		table.mergeTrailer(trailer)

		// hybrid files list compressed objects in a side stream that
		// precedes the section's /Prev
		if stm, ok := trailer.GetInt("XRefStm"); ok {
			pending = append([]int{int(stm)}, pending...)
		}
		if prev, ok := trailer.GetInt("Prev"); ok {
			pending = append(pending, int(prev))
		}
	}
	delete(table.Trailer, "Prev")
	delete(table.Trailer, "XRefStm")
	return table, nil
}

// parseXRefSection parses either a classic table or an xref stream at off
func parseXRefSection(data []byte, off int, table *XRefTable) (Dict, error) {
	lex := NewLexer(data)
	if err := lex.Seek(off); err != nil {
		return nil, err
	}
	tok, err := lex.NextToken()
	if err != nil {
		return nil, err
	}
	if tok.Type == TokenKeyword && string(tok.Value) == "xref" {
		return parseClassicTable(lex, table)
	}
	return parseXRefStream(data, off, table)
}

func parseClassicTable(lex *Lexer, table *XRefTable) (Dict, error) {
	for {
		tok, err := lex.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == TokenKeyword && string(tok.Value) == "trailer" {
			p := &Parser{lexer: lex}
			obj, err := p.ParseObject()
			if err != nil {
				return nil, fmt.Errorf("trailer: %w", err)
			}
			dict, ok := obj.(Dict)
			if !ok {
				return nil, fmt.Errorf("trailer is %s, not a dictionary", obj.Type())
			}
			return dict, nil
		}
		if tok.Type != TokenInteger {
			return nil, fmt.Errorf("unexpected %q in xref table at offset %d", tok.Value, tok.Pos)
		}
		countTok, err := lex.NextToken()
		if err != nil || countTok.Type != TokenInteger {
			return nil, fmt.Errorf("malformed subsection header at offset %d", tok.Pos)
		}
		first, _ := strconv.Atoi(string(tok.Value))
		count, _ := strconv.Atoi(string(countTok.Value))

		for i := 0; i < count; i++ {
			offTok, err1 := lex.NextToken()
			genTok, err2 := lex.NextToken()
			flagTok, err3 := lex.NextToken()
			if err1 != nil || err2 != nil || err3 != nil ||
				offTok.Type != TokenInteger || genTok.Type != TokenInteger || flagTok.Type != TokenKeyword {
				return nil, fmt.Errorf("malformed entry %d of subsection %d", i, first)
			}
			off, _ := strconv.Atoi(string(offTok.Value))
			gen, _ := strconv.Atoi(string(genTok.Value))
			entry := XRefEntry{Kind: EntryFree, Offset: off, Generation: gen}
			if string(flagTok.Value) == "n" {
				entry.Kind = EntryInUse
			}
			table.setOlder(first+i, entry)
		}
	}
}

// parseXRefStream reads a /Type /XRef stream object at off. Its /W array
// gives the byte widths of the type, field 2 and field 3 columns.
func parseXRefStream(data []byte, off int, table *XRefTable) (Dict, error) {
	p := NewParser(data)
	if err := p.Seek(off); err != nil {
		return nil, err
	}
	ind, err := p.ParseIndirectObject()
	if err != nil {
		return nil, err
	}
	stream, ok := ind.Object.(*Stream)
	if !ok {
		return nil, fmt.Errorf("expected xref stream, got %s", ind.Object.Type())
	}
	if t, _ := stream.Dict.GetName("Type"); t != "XRef" {
		return nil, fmt.Errorf("stream type %q is not XRef", t)
	}

	wArr, _ := stream.Dict.GetArray("W")
	w, ok := wArr.Floats()
	if !ok || len(w) != 3 {
		return nil, fmt.Errorf("invalid /W %v", wArr)
	}
	widths := [3]int{int(w[0]), int(w[1]), int(w[2])}
	rowLen := widths[0] + widths[1] + widths[2]
	if rowLen <= 0 {
		return nil, fmt.Errorf("zero-width xref stream rows")
	}

	size, _ := stream.Dict.GetInt("Size")
	index := []float64{0, float64(size)}
	if idxArr, ok := stream.Dict.GetArray("Index"); ok {
		if f, ok := idxArr.Floats(); ok && len(f)%2 == 0 {
			index = f
		}
	}

	decoded, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("decode xref stream: %w", err)
	}

	pos := 0
	for i := 0; i+1 < len(index); i += 2 {
		first, count := int(index[i]), int(index[i+1])
		for j := 0; j < count && pos+rowLen <= len(decoded); j++ {
			row := decoded[pos : pos+rowLen]
			pos += rowLen
			kind := 1
			if widths[0] > 0 {
				kind = readField(row[:widths[0]])
			}
			f2 := readField(row[widths[0] : widths[0]+widths[1]])
			f3 := readField(row[widths[0]+widths[1]:])

			switch kind {
			case 0:
				table.setOlder(first+j, XRefEntry{Kind: EntryFree, Generation: f3})
			case 1:
				table.setOlder(first+j, XRefEntry{Kind: EntryInUse, Offset: f2, Generation: f3})
			case 2:
				table.setOlder(first+j, XRefEntry{Kind: EntryCompressed, StreamNumber: f2, Index: f3})
			}
		}
	}
	return stream.Dict, nil
}

// readField decodes a big-endian unsigned integer
func readField(b []byte) int {
	v := 0
	for _, c := range b {
		v = v<<8 | int(c)
	}
	return v
}

var objHeaderPattern = regexp.MustCompile(`(?m)(?:^|[\s>])(\d{1,10})\s+(\d{1,5})\s+obj\b`)

// RebuildXRef reconstructs a table by scanning the whole file for object
// headers. Objects found later in the file win. Objects held in object
// streams are registered as compressed entries, and when no trailer with a
// /Root survives, the document catalog is located by its /Type.
func RebuildXRef(data []byte) (*XRefTable, error) {
	table := NewXRefTable()
	for _, m := range objHeaderPattern.FindAllSubmatchIndex(data, -1) {
		num, err1 := strconv.Atoi(string(data[m[2]:m[3]]))
		gen, err2 := strconv.Atoi(string(data[m[4]:m[5]]))
		if err1 != nil || err2 != nil {
			continue
		}
		table.Entries[num] = XRefEntry{Kind: EntryInUse, Offset: m[2], Generation: gen}
	}
	if len(table.Entries) == 0 {
		return nil, fmt.Errorf("no objects found while rebuilding xref")
	}

	// the last trailer dictionary in the file is the most recent
	if idx := bytes.LastIndex(data, []byte("trailer")); idx >= 0 {
		p := NewParser(data)
		_ = p.Seek(idx + len("trailer"))
		if obj, err := p.ParseObject(); err == nil {
			if dict, ok := obj.(Dict); ok {
				table.Trailer = dict
			}
		}
	}
	delete(table.Trailer, "Prev")
	delete(table.Trailer, "XRefStm")

	direct := make([]int, 0, len(table.Entries))
	for num := range table.Entries {
		direct = append(direct, num)
	}
	for _, num := range direct {
		entry := table.Entries[num]
		p := NewParser(data)
		if p.Seek(entry.Offset) != nil {
			continue
		}
		ind, err := p.ParseIndirectObject()
		if err != nil {
			continue
		}
		switch obj := ind.Object.(type) {
		case *Stream:
			t, _ := obj.Dict.GetName("Type")
			if t == "ObjStm" {
				registerObjectStream(table, num, obj)
			}
			if t == "XRef" && !table.Trailer.Has("Root") {
				table.mergeTrailer(obj.Dict)
			}
		case Dict:
			if t, _ := obj.GetName("Type"); t == "Catalog" && !table.Trailer.Has("Root") {
				table.Trailer["Root"] = ind.Ref
			}
		}
	}

	if !table.Trailer.Has("Root") {
		return nil, fmt.Errorf("no document catalog found while rebuilding xref")
	}
	return table, nil
}

func registerObjectStream(table *XRefTable, streamNum int, stream *Stream) {
	os, err := NewObjectStream(stream)
	if err != nil {
		return
	}
	nums, err := os.ObjectNumbers()
	if err != nil {
		return
	}
	for i, n := range nums {
		table.setOlder(n, XRefEntry{Kind: EntryCompressed, StreamNumber: streamNum, Index: i})
	}
}
