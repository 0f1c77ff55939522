// Package contentstream splits PDF page content streams into operations.
//
//	ops, err := contentstream.NewParser(data).Parse()
//	for _, op := range ops {
//	    fmt.Println(op.Operator, op.Operands)
//	}
//
// Operands are ordinary [core.Object] values. Inline images (BI ... ID ...
// EI) are returned as a single "BI" operation carrying the image dictionary
// and the raw sample bytes, so their binary payload never reaches the
// tokenizer.
package contentstream
