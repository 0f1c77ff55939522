// Package extract rebuilds the content of PDF pages as a flow document.
//
// Each page is handled on its own in three steps:
//
//   - [Page] collects text lines, images and tables as
//     [model.PageContentUnit] values and sorts them top to bottom with
//     [Order].
//   - Text that overlaps a detected table is dropped since the table already
//     carries it. Tables whose rows are all blank are not emitted but still
//     suppress the text under them.
//   - [Emit] appends the units to a [docx.Writer]: a styled paragraph per
//     line, a "Table Grid" table followed by an empty paragraph, and an
//     inline picture per image.
//
// [Convert] runs the steps over a whole document. Elements that cannot be
// extracted or embedded are skipped and reported; a page whose structure
// cannot be read fails the conversion.
package extract
