package entity

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/doctriage/internal/model"
)

const (
	RoleDeveloper = "developer_entity"
	RoleGroup     = "group_entity"
	RoleOther     = "other_entity"
)

const (
	OrgCompany     = "company"
	OrgPartnership = "partnership"
	OrgLLP         = "llp"
)

// Number of leading chunks scanned for identifiers per document.
const factChunks = 3

// Store is the document access role inference needs.
type Store interface {
	ListDocuments(ctx context.Context, status string, limit int) ([]*model.Document, error)
	ListChunks(ctx context.Context, docID int64, limit int) ([]model.Chunk, error)
	UpdateClassification(ctx context.Context, docID int64, slug, topEntity, orgVariant, stateVariant *string, confidence *float64, status string) error
}

// Cluster groups documents sharing one entity key with the evidence
// found across them. Built fresh each run; only its role/variant
// conclusions are written back.
type Cluster struct {
	Key      string
	Docs     []*model.Document
	Slugs    []string
	Features map[string]int
	Facts    Facts

	Role       string
	OrgVariant string
	DevScore   int
	GroupScore int
}

// Features scored strong count double toward the developer score;
// common features also feed the group score.
var strongFeatures = map[string]struct{}{
	"tan": {}, "msme": {}, "lei": {}, "sanction_soa": {}, "cibil": {}, "bank_stmt_entity": {},
}

var commonFeatures = map[string]struct{}{
	"gst_pan": {}, "financials_3y": {}, "itrs_3y": {}, "coi_moa_aoa": {},
	"partnership_deed": {}, "llp_agreement": {},
}

// featureFromSlug maps a canonical category slug to the coarse
// evidentiary feature it contributes. Slugs matching nothing contribute
// none.
func featureFromSlug(slug string) string {
	s := strings.ToLower(slug)
	switch {
	case strings.Contains(s, "tan"):
		return "tan"
	case strings.Contains(s, "msme"):
		return "msme"
	case strings.Contains(s, "lei"):
		return "lei"
	case strings.Contains(s, "sanction"), strings.Contains(s, "soa"):
		return "sanction_soa"
	case strings.Contains(s, "cibil"):
		return "cibil"
	case strings.Contains(s, "bank_stmt") && !strings.Contains(s, "directors"):
		return "bank_stmt_entity"
	case strings.Contains(s, "gst_pan"):
		return "gst_pan"
	case strings.Contains(s, "financial"):
		return "financials_3y"
	case strings.Contains(s, "itrs"):
		return "itrs_3y"
	case strings.Contains(s, "moa_aoa"), strings.Contains(s, "incorp"):
		return "coi_moa_aoa"
	case strings.Contains(s, "partnership_deed"):
		return "partnership_deed"
	case strings.Contains(s, "llp_agreement"):
		return "llp_agreement"
	}
	return ""
}

func orgVariantFromSlugs(slugs []string) string {
	s := " " + strings.Join(slugs, " ") + " "
	switch {
	case strings.Contains(s, "llp_agreement"), strings.Contains(s, " llp "):
		return OrgLLP
	case strings.Contains(s, "partnership_deed"), strings.Contains(s, "partnership"):
		return OrgPartnership
	case strings.Contains(s, "moa_aoa"), strings.Contains(s, "incorp"), strings.Contains(s, "coi"):
		return OrgCompany
	}
	return OrgCompany
}

func scoreRole(features map[string]int) (dev, group int) {
	for f, c := range features {
		if _, ok := strongFeatures[f]; ok {
			dev += 2 * c
			continue
		}
		if _, ok := commonFeatures[f]; ok {
			dev += c
			group += c
		}
	}
	return dev, group
}

// Inferrer clusters documents by entity key and assigns each cluster a
// developer/group/other role plus an organization variant.
type Inferrer struct {
	store Store
}

func NewInferrer(store Store) *Inferrer {
	return &Inferrer{store: store}
}

// BuildClusters groups all documents with a non-empty entity key and
// accumulates slugs and features per cluster.
func (inf *Inferrer) BuildClusters(ctx context.Context) ([]*Cluster, error) {
	docs, err := inf.store.ListDocuments(ctx, "", 0)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	index := map[string]*Cluster{}
	var order []string
	for _, doc := range docs {
		chunks, err := inf.store.ListChunks(ctx, doc.ID, factChunks)
		if err != nil {
			return nil, fmt.Errorf("list chunks for doc %d: %w", doc.ID, err)
		}
		var texts []string
		for _, ch := range chunks {
			texts = append(texts, ch.Text)
		}
		facts := ExtractFacts(strings.Join(texts, "\n"))
		key := facts.Key()
		if key == "" {
			continue
		}
		c := index[key]
		if c == nil {
			c = &Cluster{Key: key, Features: map[string]int{}, Facts: facts}
			index[key] = c
			order = append(order, key)
		}
		c.Docs = append(c.Docs, doc)
		slug := ""
		if doc.CanonicalSlug != nil {
			slug = strings.ToLower(*doc.CanonicalSlug)
		}
		c.Slugs = append(c.Slugs, slug)
		if f := featureFromSlug(slug); f != "" {
			c.Features[f]++
		}
	}
	clusters := make([]*Cluster, 0, len(index))
	for _, key := range order {
		clusters = append(clusters, index[key])
	}
	return clusters, nil
}

// AssignRoles scores and orders the clusters: the top one is the
// developer, the runner-up the group, everyone else other.
func AssignRoles(clusters []*Cluster) {
	for _, c := range clusters {
		c.DevScore, c.GroupScore = scoreRole(c.Features)
		c.OrgVariant = orgVariantFromSlugs(c.Slugs)
	}
	sort.SliceStable(clusters, func(i, j int) bool {
		if clusters[i].DevScore != clusters[j].DevScore {
			return clusters[i].DevScore > clusters[j].DevScore
		}
		return clusters[i].GroupScore > clusters[j].GroupScore
	})
	for i, c := range clusters {
		switch i {
		case 0:
			c.Role = RoleDeveloper
		case 1:
			c.Role = RoleGroup
		default:
			c.Role = RoleOther
		}
	}
}

// RunSummary reports one role-inference pass. NothingToAssign is the
// distinct no-op outcome when no document yielded an entity key.
type RunSummary struct {
	Clusters        []*Cluster
	DocsUpdated     int
	FailedIDs       []int64
	NothingToAssign bool
}

// Run clusters every document, assigns roles and, when apply is set,
// writes role + org variant back per member document. The existing
// slug, state, confidence and status are preserved; status defaults to
// unassigned only when absent.
func (inf *Inferrer) Run(ctx context.Context, apply bool) (*RunSummary, error) {
	logger := logutil.GetLogger(ctx)

	clusters, err := inf.BuildClusters(ctx)
	if err != nil {
		return nil, err
	}
	if len(clusters) == 0 {
		logger.Info("no identifiable entities by PAN/GSTIN/LLPIN/CIN; nothing to assign")
		return &RunSummary{NothingToAssign: true}, nil
	}
	AssignRoles(clusters)

	summary := &RunSummary{Clusters: clusters}
	for _, c := range clusters {
		logger.Info("entity cluster",
			zap.String("role", c.Role),
			zap.String("entity", c.Key),
			zap.String("variant", c.OrgVariant),
			zap.Int("dev_score", c.DevScore),
			zap.Int("group_score", c.GroupScore),
			zap.Int("docs", len(c.Docs)),
			zap.Any("features", c.Features),
		)
		if !apply {
			continue
		}
		for _, doc := range c.Docs {
			status := doc.Status
			if status == "" {
				status = model.StatusUnassigned
			}
			role := c.Role
			variant := c.OrgVariant
			err := inf.store.UpdateClassification(ctx, doc.ID, doc.CanonicalSlug, &role, &variant, doc.StateVariant, doc.Confidence, status)
			if err != nil {
				logger.Error("apply role failed", zap.Int64("doc_id", doc.ID), zap.Error(err))
				summary.FailedIDs = append(summary.FailedIDs, doc.ID)
				continue
			}
			summary.DocsUpdated++
		}
	}
	logger.Info("role inference finished",
		zap.Int("clusters", len(clusters)),
		zap.Int("docs_updated", summary.DocsUpdated),
		zap.Int("failed", len(summary.FailedIDs)),
	)
	return summary, nil
}
