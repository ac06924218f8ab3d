// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package section

import "strings"

const partnerSep = "|"

// Partners splits the free-text other-partners field into organization
// names. Bullets start a new item, and each bulleted piece (or unbulleted
// line) is further split on commas. Items keep line order, then the order
// within the line; empty items are dropped.
func Partners(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var items []string
	for _, line := range strings.Split(markBullets(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, piece := range strings.Split(line, partnerSep) {
			for _, part := range strings.Split(piece, ",") {
				if name := cleanPartner(part); name != "" {
					items = append(items, name)
				}
			}
		}
	}
	return items
}

// markBullets replaces bullet glyphs with partnerSep. Round bullets count
// anywhere; dashes and asterisks only as a line prefix or as a standalone
// token, so hyphenated names survive.
func markBullets(text string) string {
	text = strings.NewReplacer("●", partnerSep, "•", partnerSep).Replace(text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		tokens := strings.Fields(line)
		for j, tok := range tokens {
			switch {
			case strings.Trim(tok, "-*") == "":
				tokens[j] = partnerSep
			case j == 0 && strings.ContainsAny(tok[:1], "-*"):
				tokens[j] = partnerSep + strings.TrimLeft(tok, "-*")
			}
		}
		lines[i] = strings.Join(tokens, " ")
	}
	return strings.Join(lines, "\n")
}

func cleanPartner(s string) string {
	s = strings.NewReplacer(partnerSep, "", ",", "", ";", "").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
