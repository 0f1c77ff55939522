// Package reader provides access to a PDF document held in memory.
//
// It ties the lower level packages together: cross-reference loading and
// object resolution from core, the page tree from pages, and the text and
// graphics extractors.
//
// # Opening Documents
//
//	r, err := reader.NewReader(data)
//	if err != nil {
//	    return err
//	}
//	pages, err := r.Pages()
//
// NewReader accepts a %PDF- header anywhere in the first kilobyte, rebuilds
// a damaged cross-reference table by scanning for objects, and refuses
// encrypted documents with [ErrEncrypted]. References to objects that do not
// exist resolve to null.
//
// # Page Content
//
// Content is parsed once per page and shared by the extractors:
//
//	ops, err := r.PageOperations(page)
//	frags, err := r.ExtractTextFragments(page, ops)
//	graphics := reader.ExtractGraphics(ops)
//	images, imageErrs := r.ExtractPageImages(page, graphics.Placements)
//
// A syntax error part way through a content stream is reported wrapping
// [ErrContentSyntax]; the operations before it are returned as well.
//
// # Images
//
// Image XObjects are returned in the order they are first drawn. JPEG (DCT)
// data is kept as is; other images are decoded from their samples and
// re-encoded as PNG. Gray, RGB, CMYK, ICC-based, indexed and separation
// colour spaces are supported at 1, 2, 4, 8 and 16 bits per component, as
// are stencil masks. JPEG 2000 and JBIG2 images are reported as errors.
package reader
