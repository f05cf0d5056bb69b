package classify

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTextRuleDiminishingReturns(t *testing.T) {
	table := []textRule{
		{"three_marker_doc", []*regexp.Regexp{rx(`alpha`), rx(`beta`), rx(`gamma`)}},
	}

	t.Run("one detector stays below candidate threshold", func(t *testing.T) {
		require.Empty(t, evalTextRules(table, "alpha only"))
	})

	t.Run("two detectors accumulate 0.75, still no hit", func(t *testing.T) {
		require.Empty(t, evalTextRules(table, "alpha and beta"))
	})

	t.Run("three detectors accumulate 1.0, emitted capped at 0.95", func(t *testing.T) {
		hits := evalTextRules(table, "alpha beta gamma")
		require.Len(t, hits, 1)
		require.Equal(t, "three_marker_doc", hits[0].Slug)
		require.Equal(t, 0.95, hits[0].Score)
	})
}

func TestBankRouter(t *testing.T) {
	t.Run("corporate statement fans out to entity slugs", func(t *testing.T) {
		text := "Statement of Account for M/s Acme Towers Pvt. Limited, IFSC HDFC0001234"
		hits := bankRouter(text)
		require.Len(t, hits, 3)
		slugs := make([]string, 0, len(hits))
		for _, h := range hits {
			require.Equal(t, 0.9, h.Score)
			slugs = append(slugs, h.Slug)
		}
		require.Equal(t, []string{"dev_company_bank_stmt", "dev_llp_bank_stmt", "dev_partnership_bank_stmt"}, slugs)
	})

	t.Run("personal statement routes to directors slug", func(t *testing.T) {
		text := "Account Statement for Mr. Ravi, A/c No. 00012345, IFSC SBIN0005678"
		hits := bankRouter(text)
		require.Len(t, hits, 1)
		require.Equal(t, "directors_bank_stmt_1y", hits[0].Slug)
		require.Equal(t, 0.9, hits[0].Score)
	})

	t.Run("no statement marker means no hits", func(t *testing.T) {
		require.Empty(t, bankRouter("Memorandum of Association of Acme Pvt Limited"))
	})
}

func TestFilenameHints(t *testing.T) {
	hits := EvaluateRules("", "GST_Certificate.pdf")
	require.NotEmpty(t, hits)
	for _, h := range hits {
		require.Equal(t, 0.85, h.Score)
	}
	best := BestHit(hits)
	require.NotNil(t, best)
	// Ties keep emission order: the dev slug leads the gst hint list.
	require.Equal(t, "dev_company_gst_pan", best.Slug)

	require.Empty(t, EvaluateRules("", "site_photos_tower_b.pdf"))
}

func TestEvaluateRulesPoolsAllLayers(t *testing.T) {
	text := "Statement of Account, IFSC HDFC0001234, GSTIN 36AABCU9603R1ZM"
	hits := EvaluateRules(text, "accountstatement_march.pdf")
	require.NotEmpty(t, hits)

	bySlug := map[string]float64{}
	for _, h := range hits {
		if h.Score > bySlug[h.Slug] {
			bySlug[h.Slug] = h.Score
		}
	}
	// Bank router at 0.9 outranks the filename hints at 0.85.
	require.Equal(t, 0.9, bySlug["dev_company_bank_stmt"])
	require.Equal(t, 0.9, BestHit(hits).Score)
}

func TestBestHitNilOnEmpty(t *testing.T) {
	require.Nil(t, BestHit(nil))
}
