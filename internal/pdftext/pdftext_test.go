// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/grantdata/pkg/types"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool
	output        string
	err           error
	gotArgs       []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	m.gotArgs = append([]string{name}, args...)
	return []byte(m.output), m.err
}

func TestNewPopplerReader_MissingBinary(t *testing.T) {
	_, err := newPopplerReader(&mockExecutor{})
	if err == nil {
		t.Fatal("expected error when pdftotext is missing")
	}
	if !strings.Contains(err.Error(), "poppler-utils") {
		t.Errorf("error = %q, want install hint", err)
	}
}

func TestPopplerReader_Pages(t *testing.T) {
	m := &mockExecutor{
		availableBins: map[string]bool{"pdftotext": true},
		output:        "Omslag\n\fProjektsammanfattning\nProjektets titel: A   \n\f\f",
	}
	r, err := newPopplerReader(m)
	if err != nil {
		t.Fatalf("newPopplerReader: %v", err)
	}

	pages, err := r.Pages(context.Background(), "in.pdf")
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}

	wantArgs := "pdftotext -layout -enc UTF-8 in.pdf -"
	if got := strings.Join(m.gotArgs, " "); got != wantArgs {
		t.Errorf("args = %q, want %q", got, wantArgs)
	}

	want := []types.Page{
		{Number: 1, Text: "Omslag"},
		{Number: 2, Text: "Projektsammanfattning\nProjektets titel: A"},
		{Number: 3, Text: ""},
	}
	if len(pages) != len(want) {
		t.Fatalf("got %d pages, want %d: %+v", len(pages), len(want), pages)
	}
	for i := range want {
		if pages[i] != want[i] {
			t.Errorf("page %d = %+v, want %+v", i, pages[i], want[i])
		}
	}
}

func TestPopplerReader_Error(t *testing.T) {
	m := &mockExecutor{
		availableBins: map[string]bool{"pdftotext": true},
		err:           errors.New("exit status 1: Syntax Error"),
	}
	r, err := newPopplerReader(m)
	if err != nil {
		t.Fatalf("newPopplerReader: %v", err)
	}
	_, err = r.Pages(context.Background(), "broken.pdf")
	if err == nil || !strings.Contains(err.Error(), "broken.pdf") {
		t.Errorf("error = %v, want it to name the file", err)
	}
}

func TestPopplerReader_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := &mockExecutor{
		availableBins: map[string]bool{"pdftotext": true},
		err:           errors.New("signal: killed"),
	}
	r, _ := newPopplerReader(m)
	if _, err := r.Pages(ctx, "in.pdf"); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestSplitPages_Empty(t *testing.T) {
	if got := splitPages(""); len(got) != 0 {
		t.Errorf("splitPages(\"\") = %+v, want none", got)
	}
}

func TestJoinTexts(t *testing.T) {
	tests := []struct {
		name  string
		texts pdf.TextHorizontal
		want  string
	}{
		{
			name: "adjacent glyphs",
			texts: pdf.TextHorizontal{
				{S: "A", X: 10, W: 6, FontSize: 10},
				{S: "B", X: 16, W: 6, FontSize: 10},
			},
			want: "AB",
		},
		{
			name: "word gap",
			texts: pdf.TextHorizontal{
				{S: "Alpha", X: 10, W: 30, FontSize: 10},
				{S: "AB", X: 43, W: 12, FontSize: 10},
			},
			want: "Alpha AB",
		},
		{
			name: "existing space kept single",
			texts: pdf.TextHorizontal{
				{S: "Alpha ", X: 10, W: 30, FontSize: 10},
				{S: "AB", X: 45, W: 12, FontSize: 10},
			},
			want: "Alpha AB",
		},
		{
			name:  "empty row",
			texts: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joinTexts(tt.texts); got != tt.want {
				t.Errorf("joinTexts = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJoinRows(t *testing.T) {
	rows := pdf.Rows{
		{Position: 700, Content: pdf.TextHorizontal{{S: "Projektsammanfattning"}}},
		nil,
		{Position: 680, Content: pdf.TextHorizontal{{S: "Projektets titel:"}}},
	}
	want := "Projektsammanfattning\nProjektets titel:"
	if got := joinRows(rows); got != want {
		t.Errorf("joinRows = %q, want %q", got, want)
	}
}

func TestNativeReader_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	if err := os.WriteFile(path, []byte("not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := (&NativeReader{}).Pages(context.Background(), path); err == nil {
		t.Error("expected error for a non-PDF file")
	}
}

func TestPageCount_Missing(t *testing.T) {
	if _, err := PageCount(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestNewReader(t *testing.T) {
	r, err := NewReader("")
	if err != nil {
		t.Fatalf("NewReader(\"\"): %v", err)
	}
	if r.Name() != "native" {
		t.Errorf("default backend = %q, want native", r.Name())
	}
	if _, err := NewReader("ocr"); err == nil {
		t.Error("expected error for unknown backend")
	}
}
