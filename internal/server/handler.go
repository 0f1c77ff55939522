package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tsawler/reflow"
	"github.com/tsawler/reflow/format"
)

// multipartOverhead is the request body allowance on top of the file limit
// for multipart boundaries and headers
const multipartOverhead = 1 << 20

// ConvertHandler serves the conversion endpoints. Each request is converted
// independently; nothing is written to disk.
type ConvertHandler struct {
	converter *reflow.Converter
	maxBytes  int64
	logger    *slog.Logger
}

// NewConvertHandler creates a handler that accepts uploads of at most
// maxBytes bytes.
func NewConvertHandler(converter *reflow.Converter, maxBytes int64, logger *slog.Logger) *ConvertHandler {
	return &ConvertHandler{converter: converter, maxBytes: maxBytes, logger: logger}
}

// PDFToWord converts an uploaded PDF to DOCX
func (h *ConvertHandler) PDFToWord(w http.ResponseWriter, r *http.Request) {
	h.convert(w, r, format.PDF, h.converter.PDFToDOCX)
}

// WordToPDF converts an uploaded DOCX to PDF
func (h *ConvertHandler) WordToPDF(w http.ResponseWriter, r *http.Request) {
	h.convert(w, r, format.DOCX, h.converter.DOCXToPDF)
}

func (h *ConvertHandler) convert(w http.ResponseWriter, r *http.Request, want format.Format, fn func([]byte) (*reflow.Result, error)) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeTooLarge(w)
			return
		}
		writeError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	name := strings.TrimSpace(filepath.Base(header.Filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "document"
	}
	if !acceptable(header.Header.Get("Content-Type"), name, want) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid file type: %s. Expected %s.", name, want))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read upload")
		return
	}
	if err := format.Validate(data, want, h.maxBytes); err != nil {
		if errors.Is(err, format.ErrTooLarge) {
			h.writeTooLarge(w)
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid file: %s. Expected %s.", name, want))
		return
	}

	res, err := fn(data)
	if err != nil {
		h.logger.Warn("conversion failed", "file", name, "err", err)
		switch {
		case errors.Is(err, reflow.ErrFeatureUnavailable):
			writeError(w, http.StatusNotImplemented, err.Error())
		case errors.Is(err, reflow.ErrMalformedInput):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "Conversion failed")
		}
		return
	}

	outName := strings.TrimSuffix(name, filepath.Ext(name)) + res.Format.Extension()
	w.Header().Set("Content-Type", res.Format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", outName))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.Header().Set("X-Reflow-Pages", strconv.Itoa(res.Pages))
	w.Header().Set("X-Reflow-Warnings", strconv.Itoa(len(res.Warnings)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Data); err != nil {
		h.logger.Warn("writing response failed", "file", outName, "err", err)
	}
}

func (h *ConvertHandler) writeTooLarge(w http.ResponseWriter) {
	writeError(w, http.StatusRequestEntityTooLarge,
		fmt.Sprintf("File too large. Max size is %d MB.", h.maxBytes/(1024*1024)))
}

// acceptable reports whether an upload claims to be the wanted format,
// either by its declared content type or by its file extension. The bytes
// are checked separately.
func acceptable(contentType, name string, want format.Format) bool {
	if contentType == want.ContentType() {
		return true
	}
	return format.Detect(name) == want
}
