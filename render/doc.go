// Package render lays a flow document out on fixed size PDF pages.
//
// Nodes are drawn top to bottom with a single vertical cursor. Paragraphs
// are word-wrapped to the content width in Helvetica; "Heading N" and
// "Title" styles are drawn bold at a larger size, list items get a bullet
// and an indent. Tables are drawn as bordered grids with equal column
// widths and pictures are scaled down to fit.
//
// A new page starts whenever the cursor would fall below the room the next
// primitive needs. Lines, table rows and pictures are never split across
// pages.
//
// Pictures that cannot be decoded are skipped and reported. Mixed run
// formatting within a paragraph is collapsed: the paragraph is bold or
// italic when any run is, and takes the colour of the first coloured run.
//
//	res, err := render.Convert(docxBytes, render.Options{}, logger)
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("out.pdf", res.Data, 0o644)
package render
