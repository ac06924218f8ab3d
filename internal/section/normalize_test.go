// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package section

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses inner whitespace", "a   b\t\tc", "a b c"},
		{"drops blank lines", "a\n\n   \nb", "a\nb"},
		{"strips space before punctuation", " c ,d ; e ) f .", "c,d; e) f."},
		{"no-break space", "1\u00a0\u00a0000 kr", "1 000 kr"},
		{"carriage returns", "a\r\nb\r\n", "a\nb"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"  a   b  \n\n c ,d ; e )\n",
		"● Alpha AB\n\n● Beta AB , Gamma AB",
		"x ,  , .\n\t\n y",
		swedishPage,
		englishPage,
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestOrdinals(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "no bullets is a no-op",
			in:   "Första raden\nandra-raden med bindestreck",
			want: "Första raden\nandra-raden med bindestreck",
		},
		{
			name: "single bullet line",
			in:   "Inledning\n● Första målet\nAvslutning",
			want: "Inledning\n1. Första målet\nAvslutning",
		},
		{
			name: "mixed glyphs are numbered in order",
			in:   "• a\n* b\n- c",
			want: "1. a\n2. b\n3. c",
		},
		{
			name: "non bullet lines keep their place",
			in:   "● a\ntext\n● b",
			want: "1. a\ntext\n2. b",
		},
		{
			name: "leading whitespace before bullet",
			in:   "   - indented",
			want: "1. indented",
		},
		{
			name: "inner hyphens are kept",
			in:   "- well-known method",
			want: "1. well-known method",
		},
		{
			name: "bare bullet has no trailing space",
			in:   "intro\n-\n- a",
			want: "intro\n1.\n2. a",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Ordinals(tt.in))
		})
	}
}
