package classify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/doctriage/internal/model"
)

func TestFuseClipsToUnitInterval(t *testing.T) {
	// Weights deliberately not summing to 1.
	w := Weights{Filename: 0.8, Keyword: 0.8, Embedding: 0.8}
	require.Equal(t, 1.0, Fuse(ScoreVector{Filename: 1, Keyword: 1, Embedding: 1}, w))
	require.Equal(t, 0.0, Fuse(ScoreVector{}, w))

	w = Weights{Filename: 0.4, Keyword: 0.3, Embedding: 0.3}
	require.InDelta(t, 0.58, Fuse(ScoreVector{Filename: 1, Keyword: 0.6, Embedding: 0}, w), 1e-9)
}

func TestWeightsForDamping(t *testing.T) {
	tuning := DefaultTuning()
	tests := []struct {
		name     string
		dupCount int
		generic  bool
		want     float64
	}{
		{"unique meaningful name", 1, false, 0.40},
		{"unseen name", 0, false, 0.40},
		{"two duplicates", 2, false, 0.20},
		{"three duplicates", 3, false, 0},
		{"many duplicates", 9, false, 0},
		{"generic name", 1, true, 0},
		{"generic beats dup damping", 2, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tuning.WeightsFor(tt.dupCount, tt.generic)
			require.Equal(t, tt.want, w.Filename)
			require.Equal(t, tuning.KeywordWeight, w.Keyword)
			require.Equal(t, tuning.EmbeddingWeight, w.Embedding)
		})
	}
}

func TestStatusThresholds(t *testing.T) {
	tuning := DefaultTuning()
	require.Equal(t, model.StatusAccepted, tuning.StatusFor(0.70))
	require.Equal(t, model.StatusAccepted, tuning.StatusFor(0.95))
	require.Equal(t, model.StatusNeedsReview, tuning.StatusFor(0.60))
	require.Equal(t, model.StatusNeedsReview, tuning.StatusFor(0.699))
	require.Equal(t, model.StatusUnassigned, tuning.StatusFor(0.599))
	require.Equal(t, model.StatusUnassigned, tuning.StatusFor(0))
}
