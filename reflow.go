// Package reflow converts documents between a fixed-layout page format (PDF)
// and a reflowable word processing format (DOCX).
//
// Basic usage:
//
//	c := reflow.New()
//	res, err := c.PDFToDOCX(pdfBytes)
//	if err != nil {
//	    // handle error
//	}
//	if len(res.Warnings) > 0 {
//	    log.Println("Warnings:", reflow.FormatWarnings(res.Warnings))
//	}
//	os.WriteFile("out.docx", res.Data, 0o644)
//
// With options:
//
//	c := reflow.New(
//	    reflow.WithLogger(logger),
//	    reflow.WithPageSize(render.PageSize{Width: 595, Height: 842}),
//	)
//	res, err := c.DOCXToPDF(docxBytes)
//
// Conversions are independent and a Converter holds no state between them,
// so one Converter may be shared across goroutines. Elements that cannot be
// converted are left out of the output and reported as warnings; structural
// failures abort the conversion and no output is returned.
//
// For advanced use cases the extract, render, reader and docx packages are
// also available.
package reflow

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	res := reflow.Must(reflow.New().PDFToDOCX(data))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustData is like Must but returns only the converted bytes.
//
// Example:
//
//	docx := reflow.MustData(reflow.New().PDFToDOCX(data))
func MustData(res *Result, err error) []byte {
	if err != nil {
		panic(err)
	}
	return res.Data
}
