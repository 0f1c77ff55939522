// Package graphicsstate interprets the non-text parts of a page content
// stream.
//
// GraphicsState tracks the CTM, fill and stroke colours and the text state
// through the q/Q stack. Its Apply method handles every state operator so
// that both the text extractor and the GraphicsExtractor share one
// implementation:
//
//	gs := graphicsstate.NewGraphicsState()
//	for _, op := range ops {
//	    if handled, _ := gs.Apply(op); handled {
//	        continue
//	    }
//	    // path, text or XObject operator
//	}
//
// # Paths
//
// GraphicsExtractor builds paths from m, l, c, v, y, h and re and collects
// them when painted. Stroked segments become ExtractedLine values and
// axis-aligned subpaths become ExtractedRectangle values, both in device
// space. GetGridLines reduces them to the horizontal and vertical rules used
// for table detection.
//
// # XObjects
//
// Each Do operator is recorded as an ImagePlacement whose BBox is the unit
// square transformed by the CTM, which is where an image XObject lands on
// the page.
package graphicsstate
