// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/grantdata/internal/section"
	"github.com/pdiddy/grantdata/pkg/types"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// projectPage renders a minimal project summary page.
func projectPage(title string, partners ...string) string {
	var b strings.Builder
	b.WriteString("Projektsammanfattning\n")
	b.WriteString("Projektets titel: " + title + "\n")
	b.WriteString("Mål för projektet: Ökad kunskap\n")
	b.WriteString("Övriga projektparter:\n")
	for _, p := range partners {
		b.WriteString("● " + p + "\n")
	}
	b.WriteString("Totalt budgeterad kostnad för projektet: 1 000 SEK\n")
	b.WriteString("Totalt sökt bidrag: 500 SEK\n")
	return b.String()
}

func TestCollect(t *testing.T) {
	pages := []types.Page{
		{Number: 1, Text: "Innehållsförteckning\n1. Projekt A"},
		{Number: 2, Text: projectPage("Projekt A", "Alpha AB", "Beta AB", "Gamma AB")},
		{Number: 3, Text: "Projektsammanfattning\n"},
		{Number: 4, Text: projectPage("Projekt B", "Delta AB")},
	}

	var log bytes.Buffer
	b, summary, err := Collect(context.Background(), "portfolio.pdf", pages, Options{Logger: quiet}, &log)
	require.NoError(t, err)

	assert.Equal(t, Summary{Extracted: 2, Skipped: 1, Empty: 1}, summary)
	assert.Equal(t, 4, summary.Total())

	require.Len(t, b.Entries, 2)
	assert.Equal(t, 2, b.Entries[0].Page)
	assert.Equal(t, 4, b.Entries[1].Page)
	assert.Equal(t, "portfolio.pdf", b.Entries[0].Source)
	assert.Equal(t, "Projekt A", b.Entries[0].Record.Get(section.Title))
	assert.Equal(t, "500 SEK", b.Entries[1].Record.Get(section.RequestedContribution))

	out := log.String()
	assert.Contains(t, out, "skipped:   page 1")
	assert.Contains(t, out, "empty:     page 3")
	assert.Contains(t, out, "extracted: page 2: Projekt A (3 partners)")
	assert.Contains(t, out, "Batch summary: 2 extracted, 1 skipped, 1 empty (total: 4)")
}

func TestCollect_NoProjects(t *testing.T) {
	pages := []types.Page{
		{Number: 1, Text: "Omslag"},
		{Number: 2, Text: "Projektsammanfattning\nInga uppgifter"},
	}

	b, summary, err := Collect(context.Background(), "cover.pdf", pages, Options{Logger: quiet}, io.Discard)
	assert.ErrorIs(t, err, ErrNoProjects)
	require.NotNil(t, b)
	assert.Empty(t, b.Entries)
	assert.Equal(t, 0, summary.Extracted)
}

func TestCollect_ParallelKeepsOrder(t *testing.T) {
	var pages []types.Page
	for i := 1; i <= 25; i++ {
		pages = append(pages, types.Page{Number: i, Text: projectPage(fmt.Sprintf("Projekt %02d", i))})
	}

	b, summary, err := Collect(context.Background(), "many.pdf", pages, Options{Workers: 8, Logger: quiet}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 25, summary.Extracted)

	require.Len(t, b.Entries, 25)
	for i, e := range b.Entries {
		assert.Equal(t, i+1, e.Page)
		assert.Equal(t, fmt.Sprintf("Projekt %02d", i+1), e.Record.Get(section.Title))
	}
}

func TestCollect_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pages := []types.Page{{Number: 1, Text: projectPage("A")}}
	_, _, err := Collect(ctx, "x.pdf", pages, Options{Logger: quiet}, io.Discard)
	assert.ErrorIs(t, err, context.Canceled)
}

func uniformBatch(t *testing.T) *Batch {
	t.Helper()
	pages := []types.Page{
		{Number: 1, Text: projectPage("Tre parter", "Alpha AB", "Beta AB", "Gamma AB")},
		{Number: 2, Text: projectPage("En part", "Delta AB")},
	}
	b, _, err := Collect(context.Background(), "p.pdf", pages, Options{Logger: quiet}, io.Discard)
	require.NoError(t, err)
	return b
}

func TestColumnsAndRows_PartnerPadding(t *testing.T) {
	b := uniformBatch(t)

	cols := b.Columns(section.Swedish)
	base := len(section.Fields())
	require.Len(t, cols, base+3)
	assert.Equal(t, "Insatsområde som projektet adresserar", cols[0])
	assert.Equal(t, []string{"Projektpart 1", "Projektpart 2", "Projektpart 3"}, cols[base:])

	rows := b.Rows()
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Len(t, r, len(cols))
	}
	assert.Equal(t, []string{"Alpha AB", "Beta AB", "Gamma AB"}, rows[0][base:])
	assert.Equal(t, []string{"Delta AB", "", ""}, rows[1][base:])

	en := b.Columns(section.English)
	assert.Equal(t, "Project title", en[1])
	assert.Equal(t, "Partner 3", en[len(en)-1])
}

func TestFilled(t *testing.T) {
	b := uniformBatch(t)
	filled := b.Filled()
	base := len(section.Fields())
	require.Len(t, filled, base+3)

	assert.Equal(t, 0, filled[section.FocusArea])
	assert.Equal(t, 2, filled[section.Title])
	assert.Equal(t, 2, filled[section.RequestedContribution])
	assert.Equal(t, []int{2, 1, 1}, filled[base:])
}

func TestWriteJSON_OrderedKeys(t *testing.T) {
	b := uniformBatch(t)

	var buf bytes.Buffer
	require.NoError(t, b.WriteJSON(&buf, section.English))

	out := buf.String()
	assert.Less(t, strings.Index(out, `"Focus area"`), strings.Index(out, `"Project title"`))
	assert.Less(t, strings.Index(out, `"Total requested contribution"`), strings.Index(out, `"Partner 1"`))

	var decoded []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "En part", decoded[1]["Project title"])
	assert.Equal(t, "", decoded[1]["Partner 3"])
	assert.Equal(t, "Gamma AB", decoded[0]["Partner 3"])
}

func TestWriteJSON_NoHTMLEscaping(t *testing.T) {
	b := &Batch{Entries: []Entry{{Record: section.Record{}}}}
	b.Entries[0].Record.Values[section.Title] = "R&D <AI>"

	var buf bytes.Buffer
	require.NoError(t, b.WriteJSON(&buf, section.Swedish))
	assert.Contains(t, buf.String(), `"R&D <AI>"`)
}

func TestWriteYAML(t *testing.T) {
	b := uniformBatch(t)

	var buf bytes.Buffer
	require.NoError(t, b.WriteYAML(&buf, section.Swedish))

	var decoded []map[string]string
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Tre parter", decoded[0]["Projektets titel"])
	assert.Equal(t, "", decoded[1]["Projektpart 2"])
	assert.Equal(t, "1 000 SEK", decoded[1]["Totalt budgeterad kostnad för projektet"])
}

func TestMerge(t *testing.T) {
	a := &Batch{Source: "a.pdf", Entries: []Entry{{Source: "a.pdf", Page: 1}}}
	b := &Batch{Source: "b.pdf", Entries: []Entry{{Source: "b.pdf", Page: 1}, {Source: "b.pdf", Page: 2}}}

	a.Merge(b, nil)
	require.Len(t, a.Entries, 3)
	assert.Equal(t, "b.pdf", a.Entries[2].Source)
}
