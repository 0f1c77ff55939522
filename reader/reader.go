package reader

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/tsawler/reflow/contentstream"
	"github.com/tsawler/reflow/core"
	"github.com/tsawler/reflow/graphicsstate"
	"github.com/tsawler/reflow/pages"
	"github.com/tsawler/reflow/text"
)

var (
	// ErrNotPDF is returned when the data carries no %PDF- header
	ErrNotPDF = errors.New("not a PDF document")
	// ErrEncrypted is returned for documents with an /Encrypt dictionary
	ErrEncrypted = errors.New("encrypted PDF documents are not supported")
	// ErrContentSyntax wraps syntax errors inside a page content stream.
	// Operations read before the error are still returned alongside it.
	ErrContentSyntax = errors.New("content stream syntax error")
)

// headerWindow is how far into the file the %PDF- marker may appear; some
// producers prepend junk before it
const headerWindow = 1024

var versionPattern = regexp.MustCompile(`^(\d+)\.(\d+)`)

// PDFVersion represents a PDF version
type PDFVersion struct {
	Major int
	Minor int
}

// String returns the version as a string (e.g., "1.7")
func (v PDFVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Reader gives access to the objects and pages of a PDF held in memory
type Reader struct {
	data    []byte
	xref    *core.XRefTable
	version PDFVersion

	objCache   map[int]core.Object
	objStreams map[int]*core.ObjectStream
	loading    map[int]bool
	pageTree   *pages.PageTree
}

var _ core.Resolver = (*Reader)(nil)

// NewReader parses the header and cross-reference data of a PDF. Damaged
// cross-reference tables are rebuilt by scanning for objects.
func NewReader(data []byte) (*Reader, error) {
	version, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	xref, err := core.LoadXRef(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load xref: %w", err)
	}
	if xref.Trailer.Has("Encrypt") {
		return nil, ErrEncrypted
	}

	return &Reader{
		data:       data,
		xref:       xref,
		version:    version,
		objCache:   make(map[int]core.Object),
		objStreams: make(map[int]*core.ObjectStream),
		loading:    make(map[int]bool),
	}, nil
}

// parseHeader finds %PDF-x.y near the start of the data
func parseHeader(data []byte) (PDFVersion, error) {
	window := data
	if len(window) > headerWindow {
		window = window[:headerWindow]
	}
	idx := bytes.Index(window, []byte("%PDF-"))
	if idx < 0 {
		return PDFVersion{}, ErrNotPDF
	}
	m := versionPattern.FindSubmatch(data[idx+5:])
	if m == nil {
		// a header without a readable version is still a PDF
		return PDFVersion{Major: 1, Minor: 4}, nil
	}
	major, _ := strconv.Atoi(string(m[1]))
	minor, _ := strconv.Atoi(string(m[2]))
	return PDFVersion{Major: major, Minor: minor}, nil
}

// Version returns the PDF version from the header
func (r *Reader) Version() PDFVersion {
	return r.version
}

// GetObject loads an object by number. Objects that are free or absent from
// the cross-reference table resolve to null.
func (r *Reader) GetObject(objNum int) (core.Object, error) {
	if obj, ok := r.objCache[objNum]; ok {
		return obj, nil
	}
	entry, ok := r.xref.Get(objNum)
	if !ok || entry.Kind == core.EntryFree {
		return core.Null{}, nil
	}
	if r.loading[objNum] {
		return nil, fmt.Errorf("object %d refers to itself while loading", objNum)
	}
	r.loading[objNum] = true
	defer delete(r.loading, objNum)

	var obj core.Object
	var err error
	if entry.Kind == core.EntryCompressed {
		obj, err = r.loadCompressed(objNum, entry)
	} else {
		obj, err = r.loadDirect(objNum, entry)
	}
	if err != nil {
		return nil, err
	}
	r.objCache[objNum] = obj
	return obj, nil
}

func (r *Reader) loadDirect(objNum int, entry core.XRefEntry) (core.Object, error) {
	p := core.NewParser(r.data)
	p.SetResolver(r)
	if err := p.Seek(entry.Offset); err != nil {
		return nil, fmt.Errorf("object %d offset %d out of range", objNum, entry.Offset)
	}
	ind, err := p.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("failed to parse object %d: %w", objNum, err)
	}
	if ind.Ref.Number != objNum {
		return nil, fmt.Errorf("object number mismatch: expected %d, got %d", objNum, ind.Ref.Number)
	}
	return ind.Object, nil
}

func (r *Reader) loadCompressed(objNum int, entry core.XRefEntry) (core.Object, error) {
	os, ok := r.objStreams[entry.StreamNumber]
	if !ok {
		container, err := r.GetObject(entry.StreamNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to load object stream %d: %w", entry.StreamNumber, err)
		}
		stream, isStream := container.(*core.Stream)
		if !isStream {
			return nil, fmt.Errorf("object stream %d is a %T", entry.StreamNumber, container)
		}
		os, err = core.NewObjectStream(stream)
		if err != nil {
			return nil, fmt.Errorf("object stream %d: %w", entry.StreamNumber, err)
		}
		r.objStreams[entry.StreamNumber] = os
	}

	obj, num, err := os.GetByIndex(entry.Index)
	if err == nil && num == objNum {
		return obj, nil
	}
	// the index is only a hint; fall back to a lookup by number
	obj, err = os.Get(objNum)
	if err != nil {
		return nil, fmt.Errorf("object %d in stream %d: %w", objNum, entry.StreamNumber, err)
	}
	return obj, nil
}

// ResolveReference resolves an indirect reference
func (r *Reader) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	return r.GetObject(ref.Number)
}

// GetCatalog returns the document catalog (root object)
func (r *Reader) GetCatalog() (core.Dict, error) {
	if !r.xref.Trailer.Has("Root") {
		return nil, fmt.Errorf("trailer missing /Root entry")
	}
	catalog, err := core.ResolveDict(r, r.xref.Trailer.Get("Root"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog: %w", err)
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog is not a dictionary")
	}
	return catalog, nil
}

// Pages returns all pages in document order
func (r *Reader) Pages() ([]*pages.Page, error) {
	if err := r.ensurePageTree(); err != nil {
		return nil, err
	}
	return r.pageTree.Pages()
}

func (r *Reader) ensurePageTree() error {
	if r.pageTree != nil {
		return nil
	}
	catalog, err := r.GetCatalog()
	if err != nil {
		return fmt.Errorf("failed to get catalog: %w", err)
	}
	root, err := pages.NewCatalog(catalog, r).Pages()
	if err != nil {
		return err
	}
	r.pageTree = pages.NewPageTree(root, r)
	return nil
}

// PageOperations parses the content streams of a page. A syntax error in
// the content is reported wrapping ErrContentSyntax together with the
// operations read before it.
func (r *Reader) PageOperations(page *pages.Page) ([]contentstream.Operation, error) {
	data, err := page.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to get contents: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	ops, err := contentstream.NewParser(data).Parse()
	if err != nil {
		return ops, fmt.Errorf("%w: %v", ErrContentSyntax, err)
	}
	return ops, nil
}

// ExtractTextFragments runs the text extractor over parsed page operations
// with the fonts of the page resources
func (r *Reader) ExtractTextFragments(page *pages.Page, ops []contentstream.Operation) ([]text.TextFragment, error) {
	resources, err := page.Resources()
	if err != nil {
		return nil, err
	}
	extractor := text.NewExtractor()
	// an unreadable font dictionary leaves the fallback metrics in place
	_ = extractor.RegisterFontsFromResources(resources, r)
	return extractor.Extract(ops), nil
}

// ExtractGraphics collects ruling lines, rectangles and image placements
// from parsed page operations
func ExtractGraphics(ops []contentstream.Operation) *graphicsstate.GraphicsExtractor {
	ge := graphicsstate.NewGraphicsExtractor()
	ge.Extract(ops)
	return ge
}
