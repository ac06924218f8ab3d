// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package section segments the text of one project-summary page into the
// fixed set of named fields of a project portfolio report.
//
// Text fields are found by bilingual (Swedish/English) header phrases and
// sliced between consecutive headers; the two amount fields are captured
// directly by a label-colon-number pattern.
package section

import (
	"fmt"
	"regexp"
	"strings"
)

// Field identifies one canonical field of a project summary.
type Field int

const (
	FocusArea Field = iota
	Title
	Objectives
	Summary
	Coordinator
	OtherPartners
	BudgetedCost
	RequestedContribution

	numFields
)

// Kind is the value type of a field.
type Kind int

const (
	// KindText is free text, possibly spanning several lines.
	KindText Kind = iota
	// KindAmount is a number with an optional currency unit.
	KindAmount
)

// Language selects the column naming used for output.
type Language string

const (
	Swedish Language = "sv"
	English Language = "en"
)

// ParseLanguage maps a config or flag value to a Language.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sv", "swedish", "svenska":
		return Swedish, nil
	case "en", "english":
		return English, nil
	}
	return "", fmt.Errorf("unknown language %q (want sv or en)", s)
}

type fieldSpec struct {
	key      string   // Swedish column name, also the canonical key
	label    string   // English column name
	headers  []string // header phrases, any locale
	kind     Kind
	ordinals bool // render bullet lines as a numbered list
}

var fieldSpecs = [numFields]fieldSpec{
	FocusArea: {
		key:     "Insatsområde som projektet adresserar",
		label:   "Focus area",
		headers: []string{"Insatsområde som projektet adresserar", "Focus area of the project"},
	},
	Title: {
		key:     "Projektets titel",
		label:   "Project title",
		headers: []string{"Projektets titel", "Project title"},
	},
	Objectives: {
		key:   "Mål för projektet",
		label: "Objectives",
		headers: []string{
			"Mål för projektet",
			"Mål för samverkansprojektet",
			"Objective for the project",
			"Collaboration project objectives",
		},
		ordinals: true,
	},
	Summary: {
		key:      "Sammanfattning",
		label:    "Summary",
		headers:  []string{"Sammanfattning", "Summary"},
		ordinals: true,
	},
	Coordinator: {
		key:     "Koordinerande projektpart",
		label:   "Coordinating partner",
		headers: []string{"Koordinerande projektpart", "Coordinator organization"},
	},
	OtherPartners: {
		key:     "Övriga projektparter",
		label:   "Other partners",
		headers: []string{"Övriga projektparter", "Other project parties"},
	},
	BudgetedCost: {
		key:     "Totalt budgeterad kostnad för projektet",
		label:   "Total budgeted cost",
		headers: []string{"Totalt budgeterad kostnad för projektet", "Total budgeted cost"},
		kind:    KindAmount,
	},
	RequestedContribution: {
		key:     "Totalt sökt bidrag",
		label:   "Total requested contribution",
		headers: []string{"Totalt sökt bidrag", "Total requested contribution"},
		kind:    KindAmount,
	},
}

// Fields returns all fields in canonical document order.
func Fields() []Field {
	out := make([]Field, numFields)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// Key returns the canonical (Swedish) name of the field.
func (f Field) Key() string { return fieldSpecs[f].key }

// Name returns the column name of the field in the given language.
func (f Field) Name(lang Language) string {
	if lang == English {
		return fieldSpecs[f].label
	}
	return fieldSpecs[f].key
}

// Kind returns the value type of the field.
func (f Field) Kind() Kind { return fieldSpecs[f].kind }

func (f Field) String() string {
	if f < 0 || f >= numFields {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldSpecs[f].key
}

// PartnerColumn returns the name of the n-th (1-based) partner column.
func PartnerColumn(lang Language, n int) string {
	if lang == English {
		return fmt.Sprintf("Partner %d", n)
	}
	return fmt.Sprintf("Projektpart %d", n)
}

// Markers are the page titles that identify a project summary page.
var Markers = []string{"Projektsammanfattning", "Project summary"}

// Eligible reports whether text is a project summary page. The check is a
// case-sensitive substring match against Markers.
func Eligible(text string) bool {
	for _, m := range Markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// ws matches one whitespace rune, including no-break and other Unicode
// spaces that PDF text extraction produces.
const ws = `[\s\p{Zs}]`

// sectionPatterns holds the compiled patterns of one text field.
type sectionPatterns struct {
	header *regexp.Regexp // any header phrase
	start  *regexp.Regexp // header plus annotation and trailing colon/space
	end    *regexp.Regexp // header phrases of the next field in canonical order
}

var (
	textPatterns [OtherPartners + 1]sectionPatterns
	budgetEnd    *regexp.Regexp
	amountRes    [numFields]*regexp.Regexp // set for KindAmount fields only
)

func init() {
	budgetEnd = regexp.MustCompile(`(?im)(?:Totalt budgeterad|Total budgeted)`)

	for f := FocusArea; f <= OtherPartners; f++ {
		alt := headerAlternation(fieldSpecs[f].headers)
		p := sectionPatterns{
			header: regexp.MustCompile(`(?im)` + alt),
			start:  regexp.MustCompile(`(?im)(?:` + alt + `)(?:` + ws + `*\(.*?\))?[\s\p{Zs}:]*`),
		}
		if f == OtherPartners {
			p.end = budgetEnd
		} else {
			p.end = regexp.MustCompile(`(?im)(?:` + headerAlternation(fieldSpecs[f+1].headers) + `)`)
		}
		textPatterns[f] = p
	}

	for _, f := range Fields() {
		if f.Kind() != KindAmount {
			continue
		}
		amountRes[f] = regexp.MustCompile(`(?i)(?:` + headerAlternation(fieldSpecs[f].headers) + `)` +
			`(?:` + ws + `*\(.*?\))?:` + ws + `*([0-9\s\p{Zs},.]+(?:` + ws + `*(?:MSEK|SEK))?)`)
	}
}

// headerAlternation joins header phrases into a regexp alternation. Spaces
// inside a phrase match any run of horizontal whitespace.
func headerAlternation(phrases []string) string {
	parts := make([]string, len(phrases))
	for i, p := range phrases {
		words := strings.Fields(p)
		for j, w := range words {
			words[j] = regexp.QuoteMeta(w)
		}
		parts[i] = strings.Join(words, `[ \t\p{Zs}]+`)
	}
	return strings.Join(parts, "|")
}
