// Package text extracts positioned text from PDF content streams and
// assembles it into lines, spans and blocks.
//
// [Extractor] interprets the text operators on top of the shared graphics
// state. Each shown string becomes a [TextFragment] whose width comes from
// the font's glyph advances, so TJ kerning and word spacing move the
// following text exactly as a viewer would:
//
//	ex := text.NewExtractor()
//	ex.RegisterFontsFromResources(resources, resolver)
//	frags := ex.Extract(ops)
//	lines := text.BuildLines(frags)
//	blocks := text.BuildBlocks(lines)
//
// [BuildLines] clusters fragments by baseline, splits a baseline at wide
// gaps and merges neighbours with the same font, size and colour into a
// [Span]. A space is inserted where the gap between two fragments exceeds
// 0.15 of the font size. Lines whose strong characters are mostly
// right-to-left are read from right to left.
package text
