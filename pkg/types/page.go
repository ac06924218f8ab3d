// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Page is the extracted text of one PDF page.
type Page struct {
	// Number is the 1-based page number within the source file.
	Number int `json:"number" yaml:"number"`

	// Text is the page text with line breaks preserved.
	Text string `json:"text" yaml:"text"`
}
