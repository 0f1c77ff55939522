package docx

import (
	"archive/zip"
	"bytes"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/tsawler/reflow/model"
)

func roundTrip(t *testing.T, w *Writer) *Reader {
	t.Helper()
	data, err := w.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	r, err := Open(data)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return r
}

func readPart(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		defer rc.Close()
		b, _ := io.ReadAll(rc)
		return string(b)
	}
	t.Fatalf("part %s not found", name)
	return ""
}

// ============================================================================
// Writer Tests
// ============================================================================

func TestWriterEmptyDocument(t *testing.T) {
	r := roundTrip(t, NewWriter())
	if len(r.Body()) != 0 {
		t.Errorf("got %d nodes, want 0", len(r.Body()))
	}
}

func TestWriterParagraphs(t *testing.T) {
	w := NewWriter()
	paras := []*model.Paragraph{
		{Style: "Heading 1", Alignment: model.AlignCenter, Runs: []model.Run{{Text: "Report", Bold: true, Size: 20}}},
		{Runs: []model.Run{
			{Text: "plain ", Size: 11},
			{Text: "red <&> text", Italic: true, Size: 10.5, Color: model.RGB{R: 255}, HasColor: true},
		}},
		{Alignment: model.AlignRight, Runs: []model.Run{{Text: "a\tb\nc", Size: 12}}},
		{IsList: true, Runs: []model.Run{{Text: "item", Size: 11}}},
	}
	for _, p := range paras {
		if err := w.AddParagraph(p); err != nil {
			t.Fatalf("AddParagraph() error = %v", err)
		}
	}
	w.AddPageBreak()

	r := roundTrip(t, w)
	got := r.Paragraphs()
	if len(got) != 5 {
		t.Fatalf("got %d paragraphs, want 5", len(got))
	}

	if got[0].Style != "Heading 1" || got[0].Alignment != model.AlignCenter {
		t.Errorf("heading = %q %v", got[0].Style, got[0].Alignment)
	}
	if !reflect.DeepEqual(got[0].Runs, paras[0].Runs) {
		t.Errorf("heading runs = %+v", got[0].Runs)
	}
	if got[1].Style != "Normal" || !reflect.DeepEqual(got[1].Runs, paras[1].Runs) {
		t.Errorf("mixed runs = %q %+v", got[1].Style, got[1].Runs)
	}
	if got[2].Text() != "a\tb\nc" || got[2].Alignment != model.AlignRight {
		t.Errorf("third paragraph = %q %v", got[2].Text(), got[2].Alignment)
	}
	if !got[3].IsList {
		t.Error("list paragraph lost its numbering")
	}
	if got[4].Text() != "\n" {
		t.Errorf("page break paragraph = %q", got[4].Text())
	}
}

func TestWriterTable(t *testing.T) {
	w := NewWriter()
	w.AddTable(&model.Table{Rows: [][]string{{"a", "b", "c"}, {"d"}, {"", "e"}}})
	w.AddTable(&model.Table{})

	data, err := w.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	if doc := readPart(t, data, documentPart); !strings.Contains(doc, `<w:tblStyle w:val="TableGrid"/>`) {
		t.Error("table should use the Table Grid style")
	}
	if styles := readPart(t, data, "word/styles.xml"); !strings.Contains(styles, `<w:name w:val="Table Grid"/>`) {
		t.Error("styles part should define Table Grid")
	}

	r, err := Open(data)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	tables := r.Tables()
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1 (empty tables are not written)", len(tables))
	}
	want := [][]string{{"a", "b", "c"}, {"d", "", ""}, {"", "e", ""}}
	if !reflect.DeepEqual(tables[0].Rows, want) {
		t.Errorf("Rows = %q, want %q", tables[0].Rows, want)
	}
}

func TestWriterImages(t *testing.T) {
	pngData := testPNG(t, 144, 72)

	w := NewWriter()
	if err := w.AddImage(&model.ImageRef{Data: pngData, Format: model.ImageFormatPNG, Alignment: model.AlignCenter, WidthInches: 1}); err != nil {
		t.Fatalf("AddImage() error = %v", err)
	}
	if err := w.AddImage(&model.ImageRef{Data: []byte("garbage")}); err == nil {
		t.Error("AddImage() should reject undecodable data")
	}
	if err := w.AddParagraph(&model.Paragraph{
		Images: []model.ImageRef{{Data: pngData}},
		Runs:   []model.Run{{Text: "caption"}},
	}); err != nil {
		t.Fatalf("AddParagraph() error = %v", err)
	}

	data, err := w.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	doc := readPart(t, data, documentPart)
	// 1 inch wide, half as tall
	if !strings.Contains(doc, `<wp:extent cx="914400" cy="457200"/>`) {
		t.Error("scaled picture extent not found")
	}
	// natural size at 72 dpi
	if !strings.Contains(doc, `<wp:extent cx="1828800" cy="914400"/>`) {
		t.Error("natural picture extent not found")
	}
	if ct := readPart(t, data, "[Content_Types].xml"); !strings.Contains(ct, `Extension="png" ContentType="image/png"`) {
		t.Error("png content type not registered")
	}

	r, err := Open(data)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	paras := r.Paragraphs()
	if len(paras) != 2 {
		t.Fatalf("got %d paragraphs, want 2", len(paras))
	}
	if len(paras[0].Images) != 1 || paras[0].Alignment != model.AlignCenter || paras[0].Images[0].Alignment != model.AlignCenter {
		t.Errorf("image paragraph = %+v", paras[0])
	}
	if !bytes.Equal(paras[0].Images[0].Data, pngData) {
		t.Error("image data changed in the package")
	}
	if len(paras[1].Images) != 1 || paras[1].Text() != "caption" {
		t.Errorf("captioned paragraph = %+v", paras[1])
	}
	if len(r.MediaErrors()) != 0 {
		t.Errorf("unexpected media errors: %v", r.MediaErrors())
	}
}

func TestStyleID(t *testing.T) {
	if got := styleID("Heading 2"); got != "Heading2" {
		t.Errorf("styleID() = %q", got)
	}
	if got := styleID(TableStyle); got != "TableGrid" {
		t.Errorf("styleID() = %q", got)
	}
}
