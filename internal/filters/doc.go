// Package filters decodes PDF stream filters.
//
// [Decode] dispatches on the filter name:
//
//	decoded, err := filters.Decode("FlateDecode", data, filters.Params{
//	    "Predictor": 15,
//	    "Columns":   100,
//	    "Colors":    3,
//	})
//
// FlateDecode and LZWDecode honour TIFF and PNG predictors. DCTDecode,
// JPXDecode and JBIG2Decode are image codecs and pass through unchanged so
// the caller can keep the encoded image.
package filters
