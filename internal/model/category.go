package model

// Category is one entry of the document taxonomy. Loaded once per run
// from the catalog file and never mutated afterwards.
type Category struct {
	Slug         string   `json:"slug"`
	Display      string   `json:"display"`
	TopEntity    string   `json:"top_entity"`
	StateVariant string   `json:"state_variant,omitempty"`
	OrgVariant   string   `json:"org_variant,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
	Synonyms     []string `json:"synonyms,omitempty"`
	Prototype    string   `json:"prototype,omitempty"`
}
