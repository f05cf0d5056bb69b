package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"

	"github.com/xxxsen/doctriage/internal/classify"
	"github.com/xxxsen/doctriage/internal/filestore"
)

// Writer renders the artifacts of one classification batch: a JSONL
// file with the full per-document decision records and an HTML summary
// table for whoever reviews the run.
type Writer struct {
	store filestore.Store
	md    goldmark.Markdown
}

func NewWriter(store filestore.Store) *Writer {
	return &Writer{
		store: store,
		md:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Write persists both artifacts, keyed by state and run timestamp. A
// report failure is logged but never fails the run that produced it.
func (w *Writer) Write(ctx context.Context, state string, summary *classify.RunSummary) error {
	stamp := time.Now().UTC().Format("20060102T150405Z")

	var jsonl bytes.Buffer
	enc := json.NewEncoder(&jsonl)
	for _, res := range summary.Results {
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encode result for doc %d: %w", res.DocID, err)
		}
	}
	jsonlKey := fmt.Sprintf("classify_%s_%s.jsonl", state, stamp)
	if err := w.store.Save(ctx, jsonlKey, jsonl.Bytes()); err != nil {
		return fmt.Errorf("save %s: %w", jsonlKey, err)
	}

	html, err := w.renderSummary(state, summary)
	if err != nil {
		return err
	}
	htmlKey := fmt.Sprintf("classify_%s_%s.html", state, stamp)
	if err := w.store.Save(ctx, htmlKey, html); err != nil {
		return fmt.Errorf("save %s: %w", htmlKey, err)
	}

	logutil.GetLogger(ctx).Info("run report written",
		zap.String("jsonl", jsonlKey),
		zap.String("html", htmlKey),
		zap.Int("results", len(summary.Results)),
	)
	return nil
}

func (w *Writer) renderSummary(state string, summary *classify.RunSummary) ([]byte, error) {
	var md bytes.Buffer
	fmt.Fprintf(&md, "# Classification run (%s)\n\n", state)
	fmt.Fprintf(&md, "Documents: %d, applied: %d, failed writes: %d\n\n",
		summary.Total, summary.Applied, len(summary.FailedIDs))
	for status, count := range summary.ByStatus {
		fmt.Fprintf(&md, "- %s: %d\n", status, count)
	}
	md.WriteString("\n| doc | name | category | score | status | rule |\n")
	md.WriteString("|---|---|---|---|---|---|\n")
	for _, res := range summary.Results {
		rule := ""
		if res.Rule != nil {
			rule = res.Rule.Slug
			if res.Rule.Partial {
				rule += " (partial)"
			}
		}
		fmt.Fprintf(&md, "| %d | %s | %s | %.3f | %s | %s |\n",
			res.DocID, res.DocumentName, res.Slug, res.Final, res.Status, rule)
	}

	var html bytes.Buffer
	if err := w.md.Convert(md.Bytes(), &html); err != nil {
		return nil, fmt.Errorf("render summary: %w", err)
	}
	return html.Bytes(), nil
}
