package classify

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/doctriage/internal/model"
)

func TestCleanFilename(t *testing.T) {
	require.Equal(t, "gst_certificate", CleanFilename("uploads/GST_Certificate.pdf"))
	require.Equal(t, "scan0001", CleanFilename(`C:\scans\scan0001.TIFF`))
	require.Equal(t, "statement.2023", CleanFilename("statement.2023"))
}

func TestFilenameScoreRangeAndConvergence(t *testing.T) {
	cat := &model.Category{
		Slug:     "ts_rera_certificate",
		Display:  "RERA Certificate",
		Synonyms: []string{"rera registration"},
	}
	names := []string{
		"zzqx_77.pdf",
		"rera.pdf",
		"rera cert.pdf",
		"rera certificate.pdf",
	}
	prev := 0.0
	for _, name := range names {
		score := FilenameScore(name, cat)
		require.GreaterOrEqual(t, score, 0.0, name)
		require.LessOrEqual(t, score, 1.0, name)
		require.GreaterOrEqual(t, score, prev, name)
		prev = score
	}
	require.Equal(t, 1.0, FilenameScore("rera_certificate.pdf", cat))
}

func TestKeywordScore(t *testing.T) {
	tuning := DefaultTuning()
	chunks := []model.Chunk{
		{ID: 1, Text: "Goods and Services Tax registration certificate GSTIN issued"},
		{ID: 2, Text: "registration particulars of the taxpayer"},
	}

	t.Run("no keywords means zero", func(t *testing.T) {
		cat := &model.Category{Slug: "x", Display: "X"}
		require.Equal(t, 0.0, KeywordScore(chunks, cat, 6, tuning))
	})

	t.Run("sixty percent hit rate saturates", func(t *testing.T) {
		cat := &model.Category{
			Slug:     "gst",
			Keywords: []string{"gstin", "registration", "certificate", "absent-one", "absent-two"},
		}
		require.Equal(t, 1.0, KeywordScore(chunks, cat, 6, tuning))
	})

	t.Run("partial hit rate scales linearly", func(t *testing.T) {
		cat := &model.Category{
			Slug:     "gst",
			Keywords: []string{"gstin", "absent-one", "absent-two", "absent-three", "absent-four"},
		}
		require.InDelta(t, 0.2/0.6, KeywordScore(chunks, cat, 6, tuning), 1e-9)
	})

	t.Run("keywords outside topk window ignored", func(t *testing.T) {
		cat := &model.Category{Slug: "gst", Keywords: []string{"taxpayer"}}
		require.Equal(t, 0.0, KeywordScore(chunks, cat, 1, tuning))
	})
}

// vecAtCosine builds a unit vector at the given cosine against (1,0).
func vecAtCosine(c float64) []float32 {
	return []float32{float32(c), float32(math.Sqrt(1 - c*c))}
}

func TestEmbeddingScore(t *testing.T) {
	tuning := DefaultTuning()
	ref := []float32{1, 0}

	require.Equal(t, 0.0, EmbeddingScore(nil, ref, tuning))
	require.Equal(t, 0.0, EmbeddingScore(ref, nil, tuning))
	require.Equal(t, 0.0, EmbeddingScore(ref, vecAtCosine(0.2), tuning))
	require.Equal(t, 0.0, EmbeddingScore(ref, vecAtCosine(0.05), tuning))
	require.InDelta(t, 1.0, EmbeddingScore(ref, vecAtCosine(0.9), tuning), 1e-6)
	require.InDelta(t, 1.0, EmbeddingScore(ref, ref, tuning), 1e-6)
	require.InDelta(t, 0.5, EmbeddingScore(ref, vecAtCosine(0.55), tuning), 1e-6)
}

func TestDocumentVector(t *testing.T) {
	chunks := []model.Chunk{
		{ID: 1, Text: "a", Embedding: []float32{1, 3}},
		{ID: 2, Text: "b"},
		{ID: 3, Text: "c", Embedding: []float32{3, 1}},
	}
	vec := DocumentVector(chunks, 8)
	require.Equal(t, []float32{2, 2}, vec)

	require.Nil(t, DocumentVector([]model.Chunk{{ID: 1, Text: "no vector"}}, 8))
	require.Nil(t, DocumentVector(nil, 8))

	// maxChunks caps the window before the embedded chunk.
	require.Nil(t, DocumentVector(chunks[1:], 1))
}

func TestIsGenericFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"scanner default", "scan0001.pdf", true},
		{"generic word", "New Document.pdf", true},
		{"short", "ab12.pdf", true},
		{"digit heavy", "20230101120033.pdf", true},
		{"no tokens", "____.pdf", true},
		{"meaningful", "rera_certificate_tower_b.pdf", false},
		{"meaningful with digits", "gst_registration_2023.pdf", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsGenericFilename(tt.in))
		})
	}
}
