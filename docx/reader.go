package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/tsawler/reflow/model"
)

// ErrNotDOCX is returned when the data is not a DOCX package
var ErrNotDOCX = errors.New("docx: not a word processing package")

const documentPart = "word/document.xml"

// MediaError describes a picture that could not be loaded from the package
type MediaError struct {
	RelID  string
	Target string
	Err    error
}

func (e *MediaError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("image %s: %v", e.RelID, e.Err)
	}
	return fmt.Sprintf("image %s (%s): %v", e.RelID, e.Target, e.Err)
}

func (e *MediaError) Unwrap() error { return e.Err }

// Reader provides access to DOCX document content.
type Reader struct {
	files  map[string]*zip.File
	rels   map[string]relationshipXML
	styles *StyleResolver

	body        []model.FlowBodyNode
	blocks      []model.FlowBodyNode
	mediaErrors []error
}

// Open parses a DOCX package held in memory. The body is read eagerly;
// pictures that cannot be loaded are left out of their paragraph and
// reported by MediaErrors.
func Open(data []byte) (*Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDOCX, err)
	}

	r := &Reader{files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		r.files[f.Name] = f
	}
	if r.files[documentPart] == nil {
		return nil, fmt.Errorf("%w: missing %s", ErrNotDOCX, documentPart)
	}

	if err := r.parseRelationships(); err != nil {
		return nil, fmt.Errorf("parsing relationships: %w", err)
	}

	// Styles are optional; a broken styles part is treated as absent
	var styles *stylesXML
	if data, err := r.getFileContent("word/styles.xml"); err == nil {
		styles = &stylesXML{}
		if xml.Unmarshal(data, styles) != nil {
			styles = nil
		}
	}
	r.styles = NewStyleResolver(styles)

	doc, err := r.parseDocument()
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	r.buildBody(doc)

	return r, nil
}

// Body returns the top-level paragraphs and tables in document order
func (r *Reader) Body() []model.FlowBodyNode {
	return r.body
}

// Paragraphs returns every paragraph outside tables in document order. Besides
// the body paragraphs this includes the text of text boxes and of elements
// the body walk does not recognise; their pictures are left out.
func (r *Reader) Paragraphs() []*model.Paragraph {
	var paras []*model.Paragraph
	for _, n := range r.blocks {
		if p, ok := n.(*model.Paragraph); ok {
			paras = append(paras, p)
		}
	}
	return paras
}

// Tables returns every table outside other tables in document order,
// including those in text boxes
func (r *Reader) Tables() []*model.Table {
	var tables []*model.Table
	for _, n := range r.blocks {
		if t, ok := n.(*model.Table); ok {
			tables = append(tables, t)
		}
	}
	return tables
}

// MediaErrors returns one *MediaError per picture that was left out
func (r *Reader) MediaErrors() []error {
	return r.mediaErrors
}

// getFileContent reads the content of a file from the ZIP archive.
func (r *Reader) getFileContent(name string) ([]byte, error) {
	f := r.files[name]
	if f == nil {
		return nil, fmt.Errorf("file not found: %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// parseRelationships parses the document relationships file.
func (r *Reader) parseRelationships() error {
	r.rels = make(map[string]relationshipXML)
	data, err := r.getFileContent("word/_rels/document.xml.rels")
	if err != nil {
		// Relationships file is optional
		return nil
	}

	var rels relationshipsXML
	if err := xml.Unmarshal(data, &rels); err != nil {
		return err
	}
	for _, rel := range rels.Relationships {
		r.rels[rel.ID] = rel
	}
	return nil
}

// parseDocument parses the main document content.
func (r *Reader) parseDocument() (*documentXML, error) {
	data, err := r.getFileContent(documentPart)
	if err != nil {
		return nil, err
	}

	doc := &documentXML{}
	if err := xml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("unmarshaling document.xml: %w", err)
	}
	return doc, nil
}

func (r *Reader) buildBody(doc *documentXML) {
	if doc.Body == nil {
		return
	}
	r.body = make([]model.FlowBodyNode, 0, len(doc.Body.Elements))
	for _, el := range doc.Body.Elements {
		if el.Nested {
			r.addNested(el)
			continue
		}
		switch {
		case el.Paragraph != nil:
			p := r.processParagraph(el.Paragraph)
			r.body = append(r.body, p)
			r.blocks = append(r.blocks, p)
			r.addTextBoxes(el.Paragraph)
		case el.Table != nil:
			t := parseTable(el.Table)
			r.body = append(r.body, t)
			r.blocks = append(r.blocks, t)
		}
	}
}

// addNested records a block that only Paragraphs and Tables report
func (r *Reader) addNested(el bodyElement) {
	switch {
	case el.Paragraph != nil:
		// pictures are already counted by the run holding the text box
		stripped := *el.Paragraph
		stripped.Runs = make([]runXML, len(el.Paragraph.Runs))
		for i, run := range el.Paragraph.Runs {
			run.Images = nil
			stripped.Runs[i] = run
		}
		r.blocks = append(r.blocks, r.processParagraph(&stripped))
		r.addTextBoxes(el.Paragraph)
	case el.Table != nil:
		r.blocks = append(r.blocks, parseTable(el.Table))
	}
}

// addTextBoxes records the blocks of the text boxes anchored in a paragraph
func (r *Reader) addTextBoxes(p *paragraphXML) {
	for _, run := range p.Runs {
		for _, el := range run.TextBoxes {
			r.addNested(el)
		}
	}
}

// processParagraph resolves a paragraph's style, alignment, list membership,
// runs and pictures.
func (r *Reader) processParagraph(p *paragraphXML) *model.Paragraph {
	styleID := p.Properties.Style.Val
	style := r.styles.Resolve(styleID)

	para := &model.Paragraph{
		Style:     style.Name,
		Alignment: model.ParseAlignment(style.Alignment),
		IsList:    style.IsList,
	}
	if jc := p.Properties.Justification.Val; jc != "" {
		para.Alignment = model.ParseAlignment(jc)
	}
	if p.Properties.NumPr.XMLName.Local != "" {
		para.IsList = p.Properties.NumPr.present()
	}

	for _, run := range p.Runs {
		for _, id := range run.Images {
			if img, err := r.loadImage(id); err != nil {
				r.mediaErrors = append(r.mediaErrors, err)
			} else {
				img.Alignment = para.Alignment
				para.Images = append(para.Images, *img)
			}
		}
		if run.Text != "" {
			para.Runs = append(para.Runs, r.styles.ResolveRun(styleID, run))
		}
	}

	return para
}

// loadImage reads the picture a relationship points at
func (r *Reader) loadImage(relID string) (*model.ImageRef, error) {
	rel, ok := r.rels[relID]
	if !ok {
		return nil, &MediaError{RelID: relID, Err: errors.New("no such relationship")}
	}
	if strings.EqualFold(rel.TargetMode, "External") {
		return nil, &MediaError{RelID: relID, Target: rel.Target, Err: errors.New("linked pictures are not embedded")}
	}

	name := resolveTarget(rel.Target)
	data, err := r.getFileContent(name)
	if err != nil {
		return nil, &MediaError{RelID: relID, Target: rel.Target, Err: err}
	}
	return &model.ImageRef{Data: data, Format: model.DetectImageFormat(data)}, nil
}

// resolveTarget turns a relationship target into a package part name.
// Targets are relative to word/ unless they start with a slash.
func resolveTarget(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Clean(path.Join("word", target))
}
