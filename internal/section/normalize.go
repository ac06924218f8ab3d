// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package section

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	wsRun            = regexp.MustCompile(ws + `+`)
	spaceBeforePunct = regexp.MustCompile(ws + `+([.,;)])`)
)

// Normalize collapses whitespace within each line, removes spaces before
// closing punctuation and drops blank lines. Line breaks between non-blank
// lines are kept. Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = wsRun.ReplaceAllString(line, " ")
		line = spaceBeforePunct.ReplaceAllString(line, "$1")
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// bulletGlyphs are the line prefixes treated as list bullets.
var bulletGlyphs = []string{"●", "•", "-", "*"}

const bulletCutset = "●•-* \t"

func bulleted(line string) bool {
	s := strings.TrimSpace(line)
	for _, g := range bulletGlyphs {
		if strings.HasPrefix(s, g) {
			return true
		}
	}
	return false
}

// Ordinals renders bulleted lines as a numbered list. Each line starting
// with a bullet glyph becomes "n. content", counting from 1 in line order,
// or just "n." when the bullet has no content. Other lines are left as
// they are. Text without bulleted lines is
// returned unchanged.
func Ordinals(text string) string {
	if text == "" {
		return text
	}
	lines := strings.Split(text, "\n")

	hasBullets := false
	for _, l := range lines {
		if bulleted(l) {
			hasBullets = true
			break
		}
	}
	if !hasBullets {
		return text
	}

	n := 1
	for i, l := range lines {
		if !bulleted(l) {
			continue
		}
		content := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(l), bulletCutset))
		if content == "" {
			lines[i] = fmt.Sprintf("%d.", n)
		} else {
			lines[i] = fmt.Sprintf("%d. %s", n, content)
		}
		n++
	}
	return strings.Join(lines, "\n")
}
