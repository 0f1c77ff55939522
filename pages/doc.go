// Package pages walks the PDF page tree.
//
// [PageTree] flattens the tree into document order while carrying the
// inheritable attributes (Resources, MediaBox, CropBox, Rotate) down from
// intermediate nodes, so every [Page] sees the nearest definition:
//
//	tree := pages.NewPageTree(pagesDict, resolver)
//	all, err := tree.Pages()
//	content, err := all[0].Contents()
//
// The reachable leaves are authoritative; a damaged /Count is ignored.
// Cycles and dangling /Kids are reported as errors because without a
// consistent page tree there is no page order to convert.
package pages
