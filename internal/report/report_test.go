package report

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/doctriage/internal/classify"
)

type memStore struct {
	saved map[string][]byte
}

func (m *memStore) Save(ctx context.Context, key string, data []byte) error {
	if m.saved == nil {
		m.saved = map[string][]byte{}
	}
	m.saved[key] = append([]byte(nil), data...)
	return nil
}

func sampleSummary() *classify.RunSummary {
	return &classify.RunSummary{
		Total:    2,
		Applied:  2,
		ByStatus: map[string]int{"accepted": 1, "unassigned": 1},
		Results: []*classify.Result{
			{
				DocID:        1,
				DocumentName: "GST_Certificate.pdf",
				Slug:         "dev_company_gst_pan",
				Final:        0.85,
				Status:       "accepted",
				Rule:         &classify.AppliedRule{Slug: "dev_company_gst_pan", Score: 0.85, Reason: "filename:gst"},
			},
			{
				DocID:        2,
				DocumentName: "scan0001.pdf",
				Slug:         "legal_certified_ec",
				Status:       "unassigned",
			},
		},
	}
}

func TestWriteProducesJSONLAndHTML(t *testing.T) {
	store := &memStore{}
	w := NewWriter(store)

	require.NoError(t, w.Write(context.Background(), "TS", sampleSummary()))
	require.Len(t, store.saved, 2)

	var jsonl, html []byte
	for key, data := range store.saved {
		switch {
		case bytes.HasSuffix([]byte(key), []byte(".jsonl")):
			jsonl = data
		case bytes.HasSuffix([]byte(key), []byte(".html")):
			html = data
		}
		require.Contains(t, key, "classify_TS_")
	}
	require.NotNil(t, jsonl)
	require.NotNil(t, html)

	// One decodable record per line.
	sc := bufio.NewScanner(bytes.NewReader(jsonl))
	lines := 0
	for sc.Scan() {
		var res classify.Result
		require.NoError(t, json.Unmarshal(sc.Bytes(), &res))
		lines++
	}
	require.Equal(t, 2, lines)

	require.Contains(t, string(html), "<table>")
	require.Contains(t, string(html), "dev_company_gst_pan")
	require.Contains(t, string(html), "scan0001.pdf")
}
