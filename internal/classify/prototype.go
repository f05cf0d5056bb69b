package classify

import (
	"context"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/doctriage/internal/ai"
	appErr "github.com/xxxsen/doctriage/internal/pkg/errors"
	"github.com/xxxsen/doctriage/internal/model"
)

// BuildCategoryVectors embeds each category's display name, keywords and
// prototype text once per run. When no embedding capability is available
// the map is empty and the embedding score degrades to 0 for every
// document; the pipeline stays fully functional on the remaining
// signals.
func BuildCategoryVectors(ctx context.Context, embedder ai.IEmbedder, cats []*model.Category) map[string][]float32 {
	out := make(map[string][]float32, len(cats))
	if embedder == nil {
		return out
	}
	logger := logutil.GetLogger(ctx)
	for _, c := range cats {
		blob := strings.Join([]string{
			c.Display,
			strings.Join(c.Keywords, " "),
			c.Prototype,
		}, " | ")
		vec, err := embedder.Embed(ctx, blob)
		if err != nil {
			if appErr.IsUnavailable(err) {
				// Initialization failed; all later calls would fail the
				// same way.
				return map[string][]float32{}
			}
			logger.Warn("embed category prototype failed", zap.String("slug", c.Slug), zap.Error(err))
			continue
		}
		out[c.Slug] = vec
	}
	logger.Info("category prototype vectors built", zap.Int("count", len(out)))
	return out
}
