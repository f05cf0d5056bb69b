package classify

import (
	"math"
	"regexp"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/xxxsen/doctriage/internal/catalog"
	"github.com/xxxsen/doctriage/internal/model"
)

var (
	extRx  = regexp.MustCompile(`\.(pdf|png|jpg|jpeg|tif|tiff|docx?)$`)
	// Letter runs and digit runs tokenize separately so "scan0001"
	// still exposes its generic "scan" prefix.
	wordRx = regexp.MustCompile(`[A-Za-z]+|[0-9]+`)
)

// genericTokens are filename words that carry no category signal.
var genericTokens = map[string]struct{}{
	"scan": {}, "scanned": {}, "document": {}, "doc": {}, "file": {},
	"new": {}, "untitled": {}, "image": {}, "img": {}, "photo": {},
}

// CleanFilename strips any path prefix and a known scan-file extension
// and lowercases the rest.
func CleanFilename(name string) string {
	if idx := strings.LastIndexAny(name, "/\\"); idx >= 0 {
		name = name[idx+1:]
	}
	return extRx.ReplaceAllString(strings.ToLower(name), "")
}

func norm01(x, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	x = math.Max(lo, math.Min(hi, x))
	return (x - lo) / (hi - lo)
}

// FilenameScore fuzzily matches the cleaned filename against the
// category's display name, slug-as-words and synonyms. The best of three
// complementary metrics wins, scaled to [0,1].
func FilenameScore(name string, cat *model.Category) float64 {
	base := CleanFilename(name)
	best := 0
	for _, cand := range catalog.NamesForFuzzy(cat) {
		if s := fuzzy.TokenSetRatio(base, cand); s > best {
			best = s
		}
		if s := fuzzy.PartialRatio(base, cand); s > best {
			best = s
		}
		if s := fuzzy.QRatio(base, cand); s > best {
			best = s
		}
	}
	return float64(best) / 100.0
}

// KeywordScore is the proportion of the category's keywords and synonyms
// found verbatim in the first topK chunks, pushed through a clipped
// linear normalization so a 60% hit rate already saturates to 1.0. A
// category without keywords scores 0.
func KeywordScore(chunks []model.Chunk, cat *model.Category, topK int, t Tuning) float64 {
	kws := make([]string, 0, len(cat.Keywords)+len(cat.Synonyms))
	kws = append(kws, cat.Keywords...)
	kws = append(kws, cat.Synonyms...)
	if len(kws) == 0 {
		return 0
	}
	if topK > len(chunks) {
		topK = len(chunks)
	}
	var sb strings.Builder
	for _, ch := range chunks[:topK] {
		sb.WriteString(ch.Text)
		sb.WriteByte(' ')
	}
	text := strings.ToLower(sb.String())
	hits := 0
	for _, kw := range kws {
		if kw == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(kw)) {
			hits++
		}
	}
	prop := float64(hits) / float64(len(kws))
	return norm01(prop, 0, t.KeywordSaturation)
}

// DocumentVector is the arithmetic mean of up to maxChunks leading chunk
// embeddings, skipping chunks without one. Returns nil when no chunk
// carries a vector.
func DocumentVector(chunks []model.Chunk, maxChunks int) []float32 {
	if maxChunks > len(chunks) {
		maxChunks = len(chunks)
	}
	var sum []float64
	n := 0
	for _, ch := range chunks[:maxChunks] {
		if len(ch.Embedding) == 0 {
			continue
		}
		if sum == nil {
			sum = make([]float64, len(ch.Embedding))
		}
		if len(ch.Embedding) != len(sum) {
			continue
		}
		for i, v := range ch.Embedding {
			sum[i] += float64(v)
		}
		n++
	}
	if n == 0 {
		return nil
	}
	out := make([]float32, len(sum))
	for i, v := range sum {
		out[i] = float32(v / float64(n))
	}
	return out
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(na) * math.Sqrt(nb)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

// EmbeddingScore remaps raw cosine similarity to [0,1] over the
// discriminative band the embedding model actually produces. Either
// vector missing means 0.
func EmbeddingScore(docVec, catVec []float32, t Tuning) float64 {
	if len(docVec) == 0 || len(catVec) == 0 {
		return 0
	}
	return norm01(cosineSimilarity(docVec, catVec), t.CosineFloor, t.CosineCeil)
}

// IsGenericFilename reports whether the filename carries no usable
// signal: no alphanumeric tokens, a generic scanner word, too short, or
// mostly digits.
func IsGenericFilename(name string) bool {
	base := CleanFilename(name)
	toks := wordRx.FindAllString(base, -1)
	if len(toks) == 0 {
		return true
	}
	for _, tok := range toks {
		if _, ok := genericTokens[tok]; ok {
			return true
		}
	}
	if len(base) <= 6 {
		return true
	}
	digits := 0
	for _, r := range base {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return float64(digits)/float64(len(base)) > 0.6
}
