package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xxxsen/doctriage/internal/model"
)

// Top-level entity classes that carry a state variant; every other class
// is state-agnostic.
const (
	ClassApprovals = "project_approvals_documents"
	ClassLand      = "project_land_documents"
)

var stateAliases = map[string]string{
	"TELANGANA": "TS",
	"TS":        "TS",
	"KARNATAKA": "KA",
	"KA":        "KA",
}

// NormalizeState maps full state names and short codes onto the short
// codes the taxonomy uses. Unknown values pass through unchanged.
func NormalizeState(v string) string {
	s := strings.ToUpper(strings.TrimSpace(v))
	if s == "" {
		return ""
	}
	if short, ok := stateAliases[s]; ok {
		return short
	}
	return s
}

// legacyEntry is the original flat catalog file shape.
type legacyEntry struct {
	Slug         string   `json:"slug"`
	Display      string   `json:"display"`
	TopEntity    string   `json:"top_entity"`
	StateVariant string   `json:"state_variant"`
	OrgVariant   string   `json:"org_variant"`
	Keywords     []string `json:"keywords"`
	Synonyms     []string `json:"synonyms"`
	Prototype    string   `json:"prototype"`
}

// currentEntry is the newer shape nested under a "categories" key.
type currentEntry struct {
	Slug       string   `json:"slug"`
	Name       string   `json:"name"`
	Display    string   `json:"display"`
	EntityType string   `json:"entity_type"`
	TopEntity  string   `json:"top_entity"`
	State      string   `json:"state"`
	OrgTypes   []string `json:"org_types"`
	Keywords   []string `json:"keywords"`
	Synonyms   []string `json:"synonyms"`
	Prototype  string   `json:"prototype"`
}

type currentFile struct {
	Categories []currentEntry `json:"categories"`
}

// Load reads the category catalog from path. Both historical file shapes
// are accepted: a bare JSON list of entries, or an object with a
// "categories" list using the newer field names. Anything else is a
// configuration error and surfaced before any document is processed.
func Load(path string) ([]*model.Category, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	raw = []byte(strings.TrimSpace(string(raw)))
	if len(raw) == 0 {
		return nil, fmt.Errorf("catalog %s is empty", path)
	}
	switch raw[0] {
	case '[':
		var entries []legacyEntry
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("decode catalog (legacy shape): %w", err)
		}
		out := make([]*model.Category, 0, len(entries))
		for _, e := range entries {
			if e.Slug == "" {
				return nil, fmt.Errorf("catalog entry without slug")
			}
			out = append(out, &model.Category{
				Slug:         e.Slug,
				Display:      e.Display,
				TopEntity:    e.TopEntity,
				StateVariant: NormalizeState(e.StateVariant),
				OrgVariant:   strings.ToLower(e.OrgVariant),
				Keywords:     lowerAll(e.Keywords),
				Synonyms:     lowerAll(e.Synonyms),
				Prototype:    e.Prototype,
			})
		}
		return out, nil
	case '{':
		var file currentFile
		if err := json.Unmarshal(raw, &file); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
		if file.Categories == nil {
			return nil, fmt.Errorf("unrecognized catalog structure: expected list or {categories:[...]}")
		}
		out := make([]*model.Category, 0, len(file.Categories))
		for _, e := range file.Categories {
			if e.Slug == "" {
				return nil, fmt.Errorf("catalog entry without slug")
			}
			display := e.Name
			if display == "" {
				display = e.Display
			}
			if display == "" {
				display = e.Slug
			}
			topEntity := e.EntityType
			if topEntity == "" {
				topEntity = e.TopEntity
			}
			out = append(out, &model.Category{
				Slug:         e.Slug,
				Display:      display,
				TopEntity:    topEntity,
				StateVariant: NormalizeState(e.State),
				OrgVariant:   singleOrg(e.OrgTypes),
				Keywords:     lowerAll(e.Keywords),
				Synonyms:     lowerAll(e.Synonyms),
				Prototype:    e.Prototype,
			})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unrecognized catalog structure: expected list or {categories:[...]}")
	}
}

// FilterByState keeps approvals and land categories only for a matching
// state; everything else applies everywhere.
func FilterByState(cats []*model.Category, state string) []*model.Category {
	state = NormalizeState(state)
	out := make([]*model.Category, 0, len(cats))
	for _, c := range cats {
		if c.TopEntity == ClassApprovals || c.TopEntity == ClassLand {
			if state != "" && c.StateVariant == state {
				out = append(out, c)
			}
			continue
		}
		out = append(out, c)
	}
	return out
}

func BySlug(cats []*model.Category) map[string]*model.Category {
	out := make(map[string]*model.Category, len(cats))
	for _, c := range cats {
		out[c.Slug] = c
	}
	return out
}

// NamesForFuzzy lists the strings a filename is fuzzily compared with:
// display name, slug with underscores as spaces, and synonyms.
func NamesForFuzzy(c *model.Category) []string {
	seen := make(map[string]struct{}, len(c.Synonyms)+2)
	out := make([]string, 0, len(c.Synonyms)+2)
	add := func(s string) {
		s = strings.ToLower(s)
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	add(c.Display)
	add(strings.ReplaceAll(c.Slug, "_", " "))
	for _, s := range c.Synonyms {
		add(s)
	}
	return out
}

// single-org categories keep the scalar; multi-org ones are resolved
// later by role inference.
func singleOrg(orgTypes []string) string {
	uniq := make([]string, 0, len(orgTypes))
	seen := map[string]struct{}{}
	for _, o := range orgTypes {
		o = strings.ToLower(strings.TrimSpace(o))
		if o == "" {
			continue
		}
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		uniq = append(uniq, o)
	}
	if len(uniq) == 1 {
		return uniq[0]
	}
	return ""
}

func lowerAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(s))
	}
	return out
}
