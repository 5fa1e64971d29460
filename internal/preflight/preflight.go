package preflight

import (
	"bytes"
	"errors"
	"fmt"
	"os"
)

// Preflight errors.
var (
	// ErrEmptyDocument is returned when the document has no content.
	ErrEmptyDocument = errors.New("document is empty")

	// ErrUnknownFormat is returned when the document is not a PDF, JPEG,
	// PNG, or TIFF.
	ErrUnknownFormat = errors.New("unrecognized document format: expected PDF, JPEG, PNG, or TIFF")

	// ErrDocumentTooLarge is returned when the document exceeds the
	// upload size limit.
	ErrDocumentTooLarge = errors.New("document exceeds upload size limit")
)

// defaultMaxUploadSize is the upload limit when none is configured.
const defaultMaxUploadSize = 50 * 1024 * 1024 // 50MB

// magic byte prefixes of the accepted document formats.
var (
	pdfMagic      = []byte("%PDF-")
	jpegMagic     = []byte{0xFF, 0xD8, 0xFF}
	pngMagic      = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	tiffLittleEnd = []byte{0x49, 0x49, 0x2A, 0x00}
	tiffBigEnd    = []byte{0x4D, 0x4D, 0x00, 0x2A}
)

// Result is the outcome of a preflight check.
type Result struct {
	// ContentType is the sniffed media type of the document.
	ContentType string

	// SizeBytes is the document size.
	SizeBytes int64

	// Warnings holds non-fatal privacy findings. The document is still
	// uploadable; the caller decides whether to surface or ignore them.
	Warnings []Warning
}

// Checker runs preflight checks on documents.
type Checker struct {
	// maxUploadSize is the largest document accepted.
	maxUploadSize int64
}

// Option configures a Checker.
type Option func(*Checker)

// WithMaxUploadSize sets the upload size limit.
func WithMaxUploadSize(size int64) Option {
	return func(c *Checker) {
		if size > 0 {
			c.maxUploadSize = size
		}
	}
}

// NewChecker creates a Checker.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{maxUploadSize: defaultMaxUploadSize}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check validates document bytes for upload: non-empty, within the size
// limit, and in one of the accepted formats. EXIF-capable images are
// additionally inspected for privacy leaks, reported as warnings.
func (c *Checker) Check(data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}
	if int64(len(data)) > c.maxUploadSize {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrDocumentTooLarge, len(data), c.maxUploadSize)
	}

	contentType, err := SniffContentType(data)
	if err != nil {
		return nil, err
	}

	result := &Result{
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
	}

	// Only JPEG and TIFF carry EXIF.
	if contentType == "image/jpeg" || contentType == "image/tiff" {
		result.Warnings = inspectEXIF(data)
	}
	return result, nil
}

// CheckFile reads path and runs Check on its contents. The file size is
// verified before reading so an oversized file is rejected without
// loading it.
func (c *Checker) CheckFile(path string) (*Result, []byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat document: %w", err)
	}
	if info.Size() > c.maxUploadSize {
		return nil, nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrDocumentTooLarge, info.Size(), c.maxUploadSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read document: %w", err)
	}

	result, err := c.Check(data)
	if err != nil {
		return nil, nil, err
	}
	return result, data, nil
}

// SniffContentType detects the document's media type from its leading
// magic bytes.
func SniffContentType(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return "application/pdf", nil
	case bytes.HasPrefix(data, jpegMagic):
		return "image/jpeg", nil
	case bytes.HasPrefix(data, pngMagic):
		return "image/png", nil
	case bytes.HasPrefix(data, tiffLittleEnd), bytes.HasPrefix(data, tiffBigEnd):
		return "image/tiff", nil
	default:
		return "", ErrUnknownFormat
	}
}
