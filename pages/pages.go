package pages

import (
	"bytes"
	"fmt"

	"github.com/tsawler/reflow/core"
	"github.com/tsawler/reflow/model"
)

// maxTreeDepth bounds page tree recursion for malformed or cyclic trees
const maxTreeDepth = 64

// inheritable lists the page attributes a Page may take from an ancestor
var inheritable = []string{"Resources", "MediaBox", "CropBox", "Rotate"}

// DefaultMediaBox is used when no node of the tree defines a MediaBox
var DefaultMediaBox = model.NewBBox(0, 0, 612, 792)

// Catalog represents the PDF document catalog (root of document structure)
type Catalog struct {
	dict     core.Dict
	resolver core.Resolver
}

// NewCatalog creates a new catalog from a dictionary
func NewCatalog(dict core.Dict, resolver core.Resolver) *Catalog {
	return &Catalog{dict: dict, resolver: resolver}
}

// Pages returns the page tree root
func (c *Catalog) Pages() (core.Dict, error) {
	if !c.dict.Has("Pages") {
		return nil, fmt.Errorf("catalog missing /Pages entry")
	}
	pages, err := core.ResolveDict(c.resolver, c.dict.Get("Pages"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve /Pages: %w", err)
	}
	if pages == nil {
		return nil, fmt.Errorf("invalid /Pages entry")
	}
	return pages, nil
}

// PageTree represents the PDF page tree
type PageTree struct {
	root     core.Dict
	resolver core.Resolver
	pages    []*Page
}

// NewPageTree creates a new page tree from the root pages dictionary
func NewPageTree(root core.Dict, resolver core.Resolver) *PageTree {
	return &PageTree{root: root, resolver: resolver}
}

// Pages returns the leaf pages reachable in the tree in document order. A
// damaged /Count entry is ignored.
func (t *PageTree) Pages() ([]*Page, error) {
	if t.pages != nil {
		return t.pages, nil
	}
	var pages []*Page
	visited := make(map[core.IndirectRef]bool)
	if err := t.walk(t.root, core.Dict{}, visited, 0, &pages); err != nil {
		return nil, fmt.Errorf("failed to traverse page tree: %w", err)
	}
	t.pages = pages
	return pages, nil
}

// walk visits a node, carrying the inheritable attributes of its ancestors
func (t *PageTree) walk(node, inherited core.Dict, visited map[core.IndirectRef]bool, depth int, out *[]*Page) error {
	if depth > maxTreeDepth {
		return fmt.Errorf("page tree deeper than %d levels", maxTreeDepth)
	}

	attrs := make(core.Dict, len(inherited))
	for k, v := range inherited {
		attrs[k] = v
	}
	for _, key := range inheritable {
		if node.Has(key) {
			attrs[key] = node.Get(key)
		}
	}

	typ, _ := node.GetName("Type")
	// some producers omit /Type; a node with /Kids is an intermediate node
	if typ == "Page" || (typ == "" && !node.Has("Kids")) {
		*out = append(*out, &Page{dict: node, inherited: attrs, resolver: t.resolver})
		return nil
	}
	if typ != "Pages" && !node.Has("Kids") {
		return fmt.Errorf("unexpected page node type: %s", typ)
	}

	kidsObj, err := core.Resolve(t.resolver, node.Get("Kids"))
	if err != nil {
		return fmt.Errorf("failed to resolve /Kids: %w", err)
	}
	kids, ok := kidsObj.(core.Array)
	if !ok {
		return fmt.Errorf("invalid /Kids type: %T", kidsObj)
	}

	for i, kid := range kids {
		if ref, ok := kid.(core.IndirectRef); ok {
			if visited[ref] {
				return fmt.Errorf("page tree cycle at object %d", ref.Number)
			}
			visited[ref] = true
		}
		kidDict, err := core.ResolveDict(t.resolver, kid)
		if err != nil {
			return fmt.Errorf("failed to resolve kid %d: %w", i, err)
		}
		if kidDict == nil {
			continue
		}
		if err := t.walk(kidDict, attrs, visited, depth+1, out); err != nil {
			return err
		}
	}
	return nil
}

// Page represents a single PDF page
type Page struct {
	dict      core.Dict
	inherited core.Dict // own and inherited attributes, nearest definition wins
	resolver  core.Resolver
}

// NewPage creates a page from its dictionary and the attributes inherited
// from the page tree
func NewPage(dict, inherited core.Dict, resolver core.Resolver) *Page {
	if inherited == nil {
		inherited = dict
	}
	return &Page{dict: dict, inherited: inherited, resolver: resolver}
}

// Dict returns the page dictionary
func (p *Page) Dict() core.Dict {
	return p.dict
}

// MediaBox returns the page boundaries, falling back to US Letter
func (p *Page) MediaBox() model.BBox {
	if box, ok := p.box("MediaBox"); ok {
		return box
	}
	return DefaultMediaBox
}

// CropBox returns the visible area, which defaults to the MediaBox
func (p *Page) CropBox() model.BBox {
	if box, ok := p.box("CropBox"); ok {
		return box
	}
	return p.MediaBox()
}

func (p *Page) box(name string) (model.BBox, bool) {
	obj, err := core.Resolve(p.resolver, p.inherited.Get(name))
	if err != nil {
		return model.BBox{}, false
	}
	arr, ok := obj.(core.Array)
	if !ok || len(arr) != 4 {
		return model.BBox{}, false
	}
	v, ok := arr.Floats()
	if !ok {
		return model.BBox{}, false
	}
	box := model.BBoxFromCorners(model.Point{X: v[0], Y: v[1]}, model.Point{X: v[2], Y: v[3]})
	if box.Width <= 0 || box.Height <= 0 {
		return model.BBox{}, false
	}
	return box, true
}

// Width returns the MediaBox width
func (p *Page) Width() float64 {
	return p.MediaBox().Width
}

// Height returns the MediaBox height
func (p *Page) Height() float64 {
	return p.MediaBox().Height
}

// Rotate returns the page rotation normalized to 0, 90, 180 or 270
func (p *Page) Rotate() int {
	obj, _ := core.Resolve(p.resolver, p.inherited.Get("Rotate"))
	r, ok := obj.(core.Int)
	if !ok {
		return 0
	}
	deg := int(r) % 360
	if deg < 0 {
		deg += 360
	}
	return deg / 90 * 90
}

// Resources returns the page resources dictionary, or an empty dictionary
// when the page has none
func (p *Page) Resources() (core.Dict, error) {
	res, err := core.ResolveDict(p.resolver, p.inherited.Get("Resources"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Resources: %w", err)
	}
	if res == nil {
		return core.Dict{}, nil
	}
	return res, nil
}

// ContentStreams returns the page content streams in order
func (p *Page) ContentStreams() ([]*core.Stream, error) {
	obj, err := core.Resolve(p.resolver, p.dict.Get("Contents"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Contents: %w", err)
	}
	switch v := obj.(type) {
	case nil, core.Null:
		return nil, nil
	case *core.Stream:
		return []*core.Stream{v}, nil
	case core.Array:
		streams := make([]*core.Stream, 0, len(v))
		for i, elem := range v {
			resolved, err := core.Resolve(p.resolver, elem)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve contents[%d]: %w", i, err)
			}
			if s, ok := resolved.(*core.Stream); ok {
				streams = append(streams, s)
			}
		}
		return streams, nil
	default:
		return nil, fmt.Errorf("invalid Contents type: %T", obj)
	}
}

// Contents returns the decoded page content. Multiple streams are joined
// with a newline since operators may be split across stream boundaries.
// Streams that cannot be decoded are skipped.
func (p *Page) Contents() ([]byte, error) {
	streams, err := p.ContentStreams()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	for _, s := range streams {
		data, _ := s.Decode()
		if len(data) == 0 {
			continue
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
