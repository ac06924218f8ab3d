// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext reads the text layer of PDF files one page at a time.
// Two backends are available: a pure-Go reader and the poppler pdftotext
// binary, which keeps the visual layout of table-heavy pages.
package pdftext

import (
	"context"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/pdiddy/grantdata/pkg/types"
)

// Reader returns the text of every page of a PDF, in page order. Pages
// without a text layer are returned with empty Text so page numbers stay
// aligned with the document.
type Reader interface {
	// Name identifies the backend in logs.
	Name() string

	// Pages reads the PDF at path.
	Pages(ctx context.Context, path string) ([]types.Page, error)
}

// NewReader returns the Reader for backend. An empty backend selects the
// native reader.
func NewReader(backend types.PDFBackend) (Reader, error) {
	switch backend {
	case "", types.BackendNative:
		return &NativeReader{}, nil
	case types.BackendPoppler:
		return NewPopplerReader()
	default:
		return nil, fmt.Errorf("unknown PDF backend %q (want %s or %s)", backend, types.BackendNative, types.BackendPoppler)
	}
}

// PageCount returns the number of pages in the PDF at path. It validates
// the document structure without decoding any content streams.
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	n, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("counting pages of %s: %w", path, err)
	}
	return n, nil
}
