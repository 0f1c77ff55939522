// Package classify holds the typographic heuristics shared by both
// conversion directions.
//
// Reading a PDF, [Font] decides weight and slant from the font name alone
// ("bold", "heavy" or "black"; "italic" or "oblique"), [HeadingLevel] turns a
// font size into a heading level, and [Alignment] classifies a line from its
// margins. Rendering a flow document, [ParagraphStyle] maps "Heading N" and
// "Title" style names to a font size and trailing space.
//
// All functions are pure.
package classify
