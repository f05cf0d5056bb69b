package classify

import "github.com/xxxsen/doctriage/internal/model"

// Tuning carries the empirically chosen constants of the pipeline.
// Changing them changes classification outcomes, so they are loaded from
// config rather than re-derived in code.
type Tuning struct {
	FilenameWeight  float64 `json:"filename_weight"`
	KeywordWeight   float64 `json:"keyword_weight"`
	EmbeddingWeight float64 `json:"embedding_weight"`

	// Filename weight damping by corpus-wide duplicate count.
	DupDropCount   int     `json:"dup_drop_count"`
	DupDampCount   int     `json:"dup_damp_count"`
	DupDampedWeight float64 `json:"dup_damped_weight"`

	AcceptThreshold float64 `json:"accept_threshold"`
	ReviewThreshold float64 `json:"review_threshold"`

	KeywordSaturation float64 `json:"keyword_saturation"`
	CosineFloor       float64 `json:"cosine_floor"`
	CosineCeil        float64 `json:"cosine_ceil"`

	KeywordChunks int `json:"keyword_chunks"`
	VectorChunks  int `json:"vector_chunks"`
	RuleChunks    int `json:"rule_chunks"`
	RuleTextCap   int `json:"rule_text_cap"`
	TopK          int `json:"top_k"`
}

func DefaultTuning() Tuning {
	return Tuning{
		FilenameWeight:    0.40,
		KeywordWeight:     0.30,
		EmbeddingWeight:   0.30,
		DupDropCount:      3,
		DupDampCount:      2,
		DupDampedWeight:   0.20,
		AcceptThreshold:   0.70,
		ReviewThreshold:   0.60,
		KeywordSaturation: 0.6,
		CosineFloor:       0.2,
		CosineCeil:        0.9,
		KeywordChunks:     6,
		VectorChunks:      8,
		RuleChunks:        12,
		RuleTextCap:       20000,
		TopK:              3,
	}
}

// ScoreVector holds the three component signals, each in [0,1].
type ScoreVector struct {
	Filename  float64 `json:"s1_fn"`
	Keyword   float64 `json:"s2_kw"`
	Embedding float64 `json:"s3_emb"`
}

// Weights is the per-document weight vector after damping.
type Weights struct {
	Filename  float64 `json:"s1"`
	Keyword   float64 `json:"s2"`
	Embedding float64 `json:"s3"`
}

// WeightsFor damps the filename weight when the name is generic or
// duplicated across the corpus; keyword and embedding weights stay fixed.
func (t Tuning) WeightsFor(dupCount int, generic bool) Weights {
	w := Weights{
		Filename:  t.FilenameWeight,
		Keyword:   t.KeywordWeight,
		Embedding: t.EmbeddingWeight,
	}
	switch {
	case generic || dupCount >= t.DupDropCount:
		w.Filename = 0
	case dupCount == t.DupDampCount:
		w.Filename = t.DupDampedWeight
	}
	return w
}

// Fuse combines the component signals into one confidence, clipped to
// [0,1].
func Fuse(s ScoreVector, w Weights) float64 {
	score := w.Filename*s.Filename + w.Keyword*s.Keyword + w.Embedding*s.Embedding
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// StatusFor maps a final score to a document status. No hysteresis:
// every run recomputes from scratch and may overwrite a prior status.
func (t Tuning) StatusFor(final float64) string {
	switch {
	case final >= t.AcceptThreshold:
		return model.StatusAccepted
	case final >= t.ReviewThreshold:
		return model.StatusNeedsReview
	default:
		return model.StatusUnassigned
	}
}
