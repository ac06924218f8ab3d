// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vinnova

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/grantdata/internal/httputil"
	"github.com/pdiddy/grantdata/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

const callsJSON = `[
  {"diarienummer": "2024-01234", "titel": "Avancerad digitalisering 2025", "titelEng": "Advanced digitalisation", "beskrivning": "En lång beskrivning av utlysningen som sträcker sig över betydligt mer än åttio tecken totalt.", "oppningsdatum": "2025-01-15", "stangningsdatum": "2025-03-01", "budget": 1000000},
  {"diarienummer": "2024-05678", "titel": "Cirkulär ekonomi", "oppningsdatum": "2025-02-01"}
]`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	c, err := NewClient(types.VinnovaConfig{BaseURL: ts.URL + "/", APIKey: "secret-key"}, quiet)
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(types.VinnovaConfig{}, quiet)
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestCalls(t *testing.T) {
	var gotReq *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotReq = r
		io.WriteString(w, callsJSON)
	})

	items, err := c.Calls(context.Background(), "2020-01-01", "2026-12-31")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "/utlysningar", gotReq.URL.Path)
	assert.Equal(t, "2020-01-01", gotReq.URL.Query().Get("franOppningsdatum"))
	assert.Equal(t, "2026-12-31", gotReq.URL.Query().Get("tillOppningsdatum"))
	assert.Equal(t, "secret-key", gotReq.Header.Get("Authorization"))
	assert.Equal(t, "application/json", gotReq.Header.Get("Accept"))

	assert.Equal(t, []string{"diarienummer", "titel", "titelEng", "beskrivning", "oppningsdatum", "stangningsdatum", "budget"}, items[0].Keys())
	assert.Equal(t, "Cirkulär ekonomi", items[1].String("titel"))
	assert.Equal(t, "1000000", items[0].String("budget"))
}

func TestFinancedActivities(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/finansieradeaktiviteter", r.URL.Path)
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("franBeslutDatum"))
		assert.Equal(t, "2024-12-31", r.URL.Query().Get("tillBeslutDatum"))
		io.WriteString(w, `[{"diarienummer":"2023-0001","beviljatBelopp":500000,"beslut":"Beviljad"}]`)
	})

	items, err := c.FinancedActivities(context.Background(), "2024-01-01", "2024-12-31")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Beviljad", items[0].String("beslut"))
}

func TestMetadata(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/metadata", r.URL.Path)
		io.WriteString(w, `{"version":"1.0"}`)
	})
	raw, err := c.Metadata(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.0"}`, string(raw))
}

func TestCalls_InvalidDates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := c.Calls(context.Background(), "2020-13-01", "2021-01-01")
	assert.ErrorContains(t, err, "invalid start date")
	_, err = c.Calls(context.Background(), "2021-01-01", "2020-01-01")
	assert.ErrorContains(t, err, "before start date")
}

func TestCalls_HTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message":"invalid key"}`)
	})
	_, err := c.Calls(context.Background(), "2020-01-01", "2020-12-31")
	require.Error(t, err)

	var se *httputil.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Contains(t, err.Error(), "invalid key")
}

func TestCalls_RetriesRateLimit(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		io.WriteString(w, `[]`)
	})
	items, err := c.Calls(context.Background(), "2020-01-01", "2020-12-31")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCalls_BadJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html>maintenance</html>`)
	})
	_, err := c.Calls(context.Background(), "2020-01-01", "2020-12-31")
	assert.ErrorContains(t, err, "decoding response")
}

func decodeItems(t *testing.T, s string) []Item {
	t.Helper()
	var items []Item
	require.NoError(t, json.Unmarshal([]byte(s), &items))
	return items
}

func TestSelectFields(t *testing.T) {
	items := decodeItems(t, callsJSON)
	sel := SelectFields(items, CallFields, 80)
	require.Len(t, sel, 2)

	assert.Equal(t, CallFields, sel[0].Keys())
	desc := sel[0].String("beskrivning")
	assert.Contains(t, desc, "\n")
	for _, line := range strings.Split(desc, "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 80)
	}

	raw, ok := sel[1].Raw("stangningsdatum")
	require.True(t, ok)
	assert.Equal(t, "null", string(raw))
	_, ok = sel[0].Raw("budget")
	assert.False(t, ok)

	// The source items are not modified.
	assert.NotContains(t, items[0].String("beskrivning"), "\n")
}

func TestWrapText_OnlyStrings(t *testing.T) {
	items := decodeItems(t, `[{"titel":"ett två tre","titelEng":7,"beskrivning":null,"diarienummer":"a b c"}]`)
	got := WrapText(items[0], 4)

	assert.Equal(t, "ett\ntvå\ntre", got.String("titel"))
	raw, _ := got.Raw("titelEng")
	assert.Equal(t, "7", string(raw))
	raw, _ = got.Raw("beskrivning")
	assert.Equal(t, "null", string(raw))
	assert.Equal(t, "a b c", got.String("diarienummer"))
}

func TestItem_MarshalKeepsOrder(t *testing.T) {
	items := decodeItems(t, `[{"z":1,"a":"<b>","m":null}]`)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	require.NoError(t, enc.Encode(items))
	assert.Equal(t, `[{"z":1,"a":"<b>","m":null}]`+"\n", buf.String())
}

func TestItem_UnmarshalRejectsNonObject(t *testing.T) {
	var it Item
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &it))
}

func TestWriteSummary(t *testing.T) {
	items := decodeItems(t, callsJSON)
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, items, CallSummary))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Case Number"))
	assert.Contains(t, lines[1], "2024-01234")
	assert.Contains(t, lines[2], "Cirkulär ekonomi")
}

func TestFileName(t *testing.T) {
	now := time.Date(2025, 1, 9, 14, 30, 5, 0, time.UTC)
	assert.Equal(t, "vinnova_calls_selected_fields_20250109_143005.json", FileName(KindCalls, true, now))
	assert.Equal(t, "vinnova_financed_activities_20250109_143005.json", FileName(KindActivities, false, now))
}

func TestWriteDump(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	items := SelectFields(decodeItems(t, callsJSON), CallFields, 80)

	path, err := WriteDump(dir, "dump.json", items)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Cirkulär ekonomi")
	assert.Contains(t, string(data), "\n  {\n    \"titel\"")

	var back []map[string]any
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 2)
	assert.Nil(t, back[1]["stangningsdatum"])
}
