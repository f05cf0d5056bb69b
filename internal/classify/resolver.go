package classify

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/doctriage/internal/ai"
	"github.com/xxxsen/doctriage/internal/catalog"
	"github.com/xxxsen/doctriage/internal/model"
)

// Store is the document/chunk access the resolver needs. The concrete
// implementation lives in internal/repo.
type Store interface {
	ListDocuments(ctx context.Context, status string, limit int) ([]*model.Document, error)
	ListChunks(ctx context.Context, docID int64, limit int) ([]model.Chunk, error)
	UpdateClassification(ctx context.Context, docID int64, slug, topEntity, orgVariant, stateVariant *string, confidence *float64, status string) error
	FilenameLowercaseCounts(ctx context.Context) (map[string]int, error)
}

// AppliedRule records how a rule hit influenced the final decision.
// Partial means the rule named a slug outside the state-filtered
// candidate set, so it only boosted the score.
type AppliedRule struct {
	Slug    string  `json:"slug"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason"`
	Partial bool    `json:"partial,omitempty"`
}

// Ranked is one candidate category with its fused score, retained for
// audit in the top-K preview.
type Ranked struct {
	Slug      string      `json:"slug"`
	Display   string      `json:"display"`
	TopEntity string      `json:"top_entity"`
	Score     float64     `json:"score"`
	Parts     ScoreVector `json:"parts"`
}

// Result is the decision for one document. Transient: persisted only
// through Store.UpdateClassification.
type Result struct {
	DocID        int64       `json:"doc_id"`
	DocumentName string      `json:"document_name"`
	Slug         string      `json:"best_slug"`
	Display      string      `json:"best_display"`
	TopEntity    string      `json:"top_entity"`
	StateVariant string      `json:"state_variant,omitempty"`
	OrgVariant   string      `json:"org_variant,omitempty"`
	Final        float64     `json:"final"`
	Parts        ScoreVector `json:"parts"`
	Status       string      `json:"status"`
	TopK         []Ranked    `json:"topk"`
	Rule         *AppliedRule `json:"rule,omitempty"`
	Weights      Weights     `json:"weights"`
	DupCount     int         `json:"name_dup_count"`
	GenericName  bool        `json:"is_generic_name"`
}

// Resolver scores documents against the state-filtered candidate set.
// The prototype-vector map and the filename histogram are computed once
// per batch and treated as read-only snapshots afterwards, keeping
// per-document scoring a pure function.
type Resolver struct {
	store    Store
	embedder ai.IEmbedder
	tuning   Tuning
}

func NewResolver(store Store, embedder ai.IEmbedder, tuning Tuning) *Resolver {
	return &Resolver{store: store, embedder: embedder, tuning: tuning}
}

// ruleText builds the rule-input window: leading chunks capped at
// RuleChunks chunks or RuleTextCap characters, whichever first.
func (r *Resolver) ruleText(chunks []model.Chunk) string {
	max := r.tuning.RuleChunks
	if max > len(chunks) {
		max = len(chunks)
	}
	var sb strings.Builder
	for _, ch := range chunks[:max] {
		sb.WriteString(ch.Text)
		sb.WriteByte('\n')
		if sb.Len() > r.tuning.RuleTextCap {
			break
		}
	}
	return sb.String()
}

// Categorize scores one document against the candidate categories and
// returns the decision with its audit trail.
func (r *Resolver) Categorize(ctx context.Context, doc *model.Document, cats []*model.Category, catVecs map[string][]float32, fnameCounts map[string]int) (*Result, error) {
	chunks, err := r.store.ListChunks(ctx, doc.ID, 0)
	if err != nil {
		return nil, fmt.Errorf("list chunks for doc %d: %w", doc.ID, err)
	}

	docVec := DocumentVector(chunks, r.tuning.VectorChunks)
	fullText := r.ruleText(chunks)

	ruleHits := EvaluateRules(fullText, doc.Name)
	ruleBest := BestHit(ruleHits)

	dupCount := fnameCounts[strings.ToLower(doc.Name)]
	generic := IsGenericFilename(doc.Name)
	weights := r.tuning.WeightsFor(dupCount, generic)

	ranked := make([]Ranked, 0, len(cats))
	for _, c := range cats {
		parts := ScoreVector{
			Filename:  FilenameScore(doc.Name, c),
			Keyword:   KeywordScore(chunks, c, r.tuning.KeywordChunks, r.tuning),
			Embedding: EmbeddingScore(docVec, catVecs[c.Slug], r.tuning),
		}
		ranked = append(ranked, Ranked{
			Slug:      c.Slug,
			Display:   c.Display,
			TopEntity: c.TopEntity,
			Score:     Fuse(parts, weights),
			Parts:     parts,
		})
	}
	// Stable: ties keep the original candidate order.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if len(ranked) == 0 {
		return nil, fmt.Errorf("no candidate categories")
	}

	bySlug := catalog.BySlug(cats)
	winner := ranked[0]
	final := winner.Score

	var applied *AppliedRule
	if ruleBest != nil {
		if _, ok := bySlug[ruleBest.Slug]; ok {
			// Rules are authoritative over fused ranking.
			winner = rankedBySlug(ranked, ruleBest.Slug)
			if final < ruleBest.Score {
				final = ruleBest.Score
			}
			applied = &AppliedRule{Slug: ruleBest.Slug, Score: ruleBest.Score, Reason: ruleBest.Reason}
		} else {
			// Wrong state for the rule's slug: boost only.
			boosted := ruleBest.Score * 0.9
			if final < boosted {
				final = boosted
			}
			applied = &AppliedRule{Slug: ruleBest.Slug, Score: boosted, Reason: ruleBest.Reason + " (partial)", Partial: true}
		}
	}

	cat := bySlug[winner.Slug]
	topK := r.tuning.TopK
	if topK > len(ranked) {
		topK = len(ranked)
	}
	return &Result{
		DocID:        doc.ID,
		DocumentName: doc.Name,
		Slug:         winner.Slug,
		Display:      cat.Display,
		TopEntity:    cat.TopEntity,
		StateVariant: cat.StateVariant,
		OrgVariant:   cat.OrgVariant,
		Final:        final,
		Parts:        winner.Parts,
		Status:       r.tuning.StatusFor(final),
		TopK:         ranked[:topK],
		Rule:         applied,
		Weights:      weights,
		DupCount:     dupCount,
		GenericName:  generic,
	}, nil
}

func rankedBySlug(ranked []Ranked, slug string) Ranked {
	for _, rec := range ranked {
		if rec.Slug == slug {
			return rec
		}
	}
	return Ranked{Slug: slug}
}

// RunOptions controls one classification batch.
type RunOptions struct {
	State  string
	Limit  int
	Apply  bool
	Status string
}

// RunSummary reports a finished batch. Unassigned documents are a
// normal outcome; FailedIDs are documents whose storage write failed.
type RunSummary struct {
	Total     int
	Applied   int
	ByStatus  map[string]int
	FailedIDs []int64
	Results   []*Result
}

// Run classifies every listed document against the state-filtered
// candidate set. Storage-write failures are collected in the summary
// and never abort the remaining batch.
func (r *Resolver) Run(ctx context.Context, cats []*model.Category, opts RunOptions) (*RunSummary, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("state", opts.State))

	cands := catalog.FilterByState(cats, opts.State)
	if len(cands) == 0 {
		return nil, fmt.Errorf("no candidate categories for state %q", opts.State)
	}
	catVecs := BuildCategoryVectors(ctx, r.embedder, cands)
	fnameCounts, err := r.store.FilenameLowercaseCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("filename counts: %w", err)
	}
	docs, err := r.store.ListDocuments(ctx, opts.Status, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	summary := &RunSummary{ByStatus: map[string]int{}}
	for _, doc := range docs {
		res, err := r.Categorize(ctx, doc, cands, catVecs, fnameCounts)
		if err != nil {
			logger.Error("categorize failed", zap.Int64("doc_id", doc.ID), zap.Error(err))
			summary.FailedIDs = append(summary.FailedIDs, doc.ID)
			continue
		}
		summary.Total++
		summary.ByStatus[res.Status]++
		summary.Results = append(summary.Results, res)

		logger.Info("document classified",
			zap.Int64("doc_id", res.DocID),
			zap.String("name", res.DocumentName),
			zap.String("slug", res.Slug),
			zap.Float64("final", res.Final),
			zap.String("status", res.Status),
			zap.Any("weights", res.Weights),
		)

		if !opts.Apply {
			continue
		}
		stateVariant := optString(res.StateVariant)
		orgVariant := optString(res.OrgVariant)
		conf := res.Final
		if err := r.store.UpdateClassification(ctx, res.DocID, &res.Slug, &res.TopEntity, orgVariant, stateVariant, &conf, res.Status); err != nil {
			logger.Error("apply classification failed", zap.Int64("doc_id", res.DocID), zap.Error(err))
			summary.FailedIDs = append(summary.FailedIDs, res.DocID)
			continue
		}
		summary.Applied++
	}
	logger.Info("classification run finished",
		zap.Int("total", summary.Total),
		zap.Int("applied", summary.Applied),
		zap.Int("failed", len(summary.FailedIDs)),
		zap.Any("by_status", summary.ByStatus),
	)
	return summary, nil
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
