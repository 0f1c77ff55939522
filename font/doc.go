// Package font decodes text shown with PDF fonts.
//
// [Load] builds a [Font] from a font dictionary. Simple fonts (Type1,
// TrueType, Type3) map single-byte codes through their base encoding plus
// /Differences; composite Type0 fonts read multi-byte codes using the
// codespace ranges of their encoding CMap and look widths up by CID.
//
//	f := font.Load(fontDict, resolver)
//	for _, g := range f.Decode(raw) {
//	    fmt.Println(g.Text, g.Width)
//	}
//
// A ToUnicode CMap, when present, always wins for text. Advance widths come
// from /Widths or /W; fonts without them fall back to standard 14 metrics
// chosen by name.
package font
