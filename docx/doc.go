// Package docx reads and writes Office Open XML word processing packages.
//
// # Reading
//
// [Open] parses a package held in memory and exposes its body as an ordered
// list of [model.FlowBodyNode] values. Only top-level paragraphs and tables
// are returned; content controls are flattened into the body.
//
//	r, err := docx.Open(data)
//	if err != nil {
//	    return err
//	}
//	for _, node := range r.Body() {
//	    switch n := node.(type) {
//	    case *model.Paragraph:
//	        fmt.Println(n.Style, n.Text())
//	    case *model.Table:
//	        fmt.Println(len(n.Rows), "rows")
//	    }
//	}
//
// Paragraph styles are resolved through their basedOn chain so the display
// name, alignment, list membership and run formatting reflect what Word
// shows. Pictures referenced from runs are attached to their paragraph;
// those that cannot be loaded are reported by [Reader.MediaErrors].
//
// # Writing
//
// [Writer] builds a package block by block: paragraphs with styled runs,
// tables in the "Table Grid" style, pictures and page breaks. The page is
// US Letter with one inch margins.
//
//	w := docx.NewWriter()
//	w.AddParagraph(&model.Paragraph{Runs: []model.Run{{Text: "Hello"}}})
//	w.AddPageBreak()
//	data, err := w.Bytes()
package docx
