package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/doctriage/internal/model"
)

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadLegacyListShape(t *testing.T) {
	path := writeCatalog(t, `[
		{
			"slug": "ts_rera_certificate",
			"display": "RERA Certificate",
			"top_entity": "project_approvals_documents",
			"state_variant": "Telangana",
			"keywords": ["RERA", "TSRERA"],
			"synonyms": ["Rera Cert"]
		},
		{
			"slug": "dev_company_gst_pan",
			"display": "GST Certificate",
			"top_entity": "developer_entity_documents",
			"org_variant": "Company"
		}
	]`)

	cats, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cats, 2)

	rera := cats[0]
	require.Equal(t, "ts_rera_certificate", rera.Slug)
	require.Equal(t, "TS", rera.StateVariant)
	require.Equal(t, []string{"rera", "tsrera"}, rera.Keywords)
	require.Equal(t, []string{"rera cert"}, rera.Synonyms)

	gst := cats[1]
	require.Empty(t, gst.StateVariant)
	require.Equal(t, "company", gst.OrgVariant)
}

func TestLoadCurrentCategoriesShape(t *testing.T) {
	path := writeCatalog(t, `{
		"categories": [
			{
				"slug": "ka_rera",
				"name": "RERA Certificate",
				"entity_type": "project_approvals_documents",
				"state": "Karnataka",
				"org_types": ["company", "llp"],
				"keywords": ["RERA"]
			},
			{
				"slug": "dev_company_tan",
				"name": "TAN Allotment",
				"entity_type": "developer_entity_documents",
				"org_types": ["Company", "company"]
			}
		]
	}`)

	cats, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cats, 2)

	rera := cats[0]
	require.Equal(t, "RERA Certificate", rera.Display)
	require.Equal(t, "project_approvals_documents", rera.TopEntity)
	require.Equal(t, "KA", rera.StateVariant)
	// More than one org type: resolved later by role inference.
	require.Empty(t, rera.OrgVariant)

	tan := cats[1]
	// Duplicate org types collapse to a single scalar.
	require.Equal(t, "company", tan.OrgVariant)
}

func TestLoadRejectsUnknownShapes(t *testing.T) {
	for name, body := range map[string]string{
		"scalar":       `"not a catalog"`,
		"empty":        ``,
		"missing slug": `[{"display": "No Slug"}]`,
		"bare object":  `{"foo": 1}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeCatalog(t, body))
			require.Error(t, err)
		})
	}
}

func TestNormalizeState(t *testing.T) {
	require.Equal(t, "TS", NormalizeState("Telangana"))
	require.Equal(t, "TS", NormalizeState(" ts "))
	require.Equal(t, "KA", NormalizeState("KARNATAKA"))
	require.Equal(t, "MH", NormalizeState("mh"))
	require.Empty(t, NormalizeState("  "))
}

func TestFilterByState(t *testing.T) {
	cats := []*model.Category{
		{Slug: "ts_rera_certificate", TopEntity: ClassApprovals, StateVariant: "TS"},
		{Slug: "ka_rera", TopEntity: ClassApprovals, StateVariant: "KA"},
		{Slug: "land_ts_nala", TopEntity: ClassLand, StateVariant: "TS"},
		{Slug: "dev_company_gst_pan", TopEntity: "developer_entity_documents"},
	}

	ts := FilterByState(cats, "Telangana")
	require.Len(t, ts, 3)
	for _, c := range ts {
		require.NotEqual(t, "ka_rera", c.Slug)
	}

	// Without a state only the state-agnostic classes survive.
	none := FilterByState(cats, "")
	require.Len(t, none, 1)
	require.Equal(t, "dev_company_gst_pan", none[0].Slug)
}

func TestNamesForFuzzy(t *testing.T) {
	c := &model.Category{
		Slug:     "ts_rera_certificate",
		Display:  "RERA Certificate",
		Synonyms: []string{"rera cert", "RERA Certificate"},
	}
	names := NamesForFuzzy(c)
	require.Equal(t, []string{"rera certificate", "ts rera certificate", "rera cert"}, names)
}
