package model

const (
	StatusUnassigned  = "unassigned"
	StatusNeedsReview = "needs_review"
	StatusAccepted    = "accepted"
	StatusDuplicate   = "duplicate"
)

type Document struct {
	ID            int64    `json:"id"`
	Name          string   `json:"document_name"`
	CanonicalSlug *string  `json:"canonical_slug"`
	TopEntity     *string  `json:"top_entity"`
	OrgVariant    *string  `json:"org_variant"`
	StateVariant  *string  `json:"state_variant"`
	Confidence    *float64 `json:"confidence"`
	Status        string   `json:"status"`
}

// Chunk is one ordered text fragment of a document. Embedding may be
// empty when the upload pipeline produced no vector for it.
type Chunk struct {
	ID        int64     `json:"id"`
	Text      string    `json:"chunk"`
	Embedding []float32 `json:"embedding,omitempty"`
}
