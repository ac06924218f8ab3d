// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/pdiddy/grantdata/pkg/types"
)

const binPdftotext = "pdftotext"

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil && stderr.Len() > 0 {
		return out, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, err
}

var defaultExec executor = &osExecutor{}

// PopplerReader extracts page text by running pdftotext in layout mode.
// pdftotext terminates every page with a form feed, which is how the
// output is split back into pages.
type PopplerReader struct {
	exec executor
}

// NewPopplerReader returns a PopplerReader after checking that the
// pdftotext binary is on PATH.
func NewPopplerReader() (*PopplerReader, error) {
	return newPopplerReader(defaultExec)
}

func newPopplerReader(exec executor) (*PopplerReader, error) {
	if _, err := exec.LookPath(binPdftotext); err != nil {
		return nil, fmt.Errorf("%s not found on PATH (install poppler-utils): %w", binPdftotext, err)
	}
	return &PopplerReader{exec: exec}, nil
}

// Name implements Reader.
func (p *PopplerReader) Name() string { return string(types.BackendPoppler) }

// Pages implements Reader.
func (p *PopplerReader) Pages(ctx context.Context, path string) ([]types.Page, error) {
	out, err := p.exec.Output(ctx, binPdftotext, "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("running %s on %s: %w", binPdftotext, path, err)
	}
	return splitPages(string(out)), nil
}

// splitPages splits form-feed separated output into numbered pages.
func splitPages(out string) []types.Page {
	chunks := strings.Split(out, "\f")
	if n := len(chunks); n > 0 && strings.TrimSpace(chunks[n-1]) == "" {
		chunks = chunks[:n-1]
	}
	pages := make([]types.Page, len(chunks))
	for i, c := range chunks {
		pages[i] = types.Page{Number: i + 1, Text: strings.TrimRight(c, " \t\r\n")}
	}
	return pages
}
