package classify

import (
	"fmt"
	"regexp"
	"strings"
)

// RuleHit is one high-precision detector outcome. Many hits may fire for
// a document; only the maximum-score hit is authoritative, ties resolved
// by emission order.
type RuleHit struct {
	Slug   string  `json:"slug"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

const (
	ruleEmitCap       = 0.95
	ruleFirstMatch    = 0.5
	ruleNextMatch     = 0.25
	ruleCandidateMin  = 0.8
	bankRouterScore   = 0.9
	filenameHintScore = 0.85
)

func rx(p string) *regexp.Regexp { return regexp.MustCompile(`(?im)` + p) }

// Strong identifiers and corporate markers.
var (
	panRx   = rx(`\b[A-Z]{5}[0-9]{4}[A-Z]\b`)
	tanRx   = rx(`\b[A-Z]{4}[0-9]{5}[A-Z]\b`)
	gstinRx = rx(`\b\d{2}[A-Z]{5}\d{4}[A-Z][1-9A-Z]Z[0-9A-Z]\b`)
	leiRx   = regexp.MustCompile(`(?is)\b(?:Legal\s+Entity\s+Identifier|LEI)\b.*?\b([A-Z0-9]{20})\b`)

	cinRx   = rx(`\b[UL]\d{2}[A-Z]{3}\d{4}[A-Z]{3}\d{6}\b`)
	llpinRx = rx(`\bLLPIN\b[:\s-]*[A-Z]{3}-?\d{4}\b`)
	coiRx   = rx(`\bCertificate\s+of\s+Incorporation\b|\bCOI\b`)
	moaRx   = rx(`\bMemorandum\s+of\s+Association\b|\bMOA\b`)
	aoaRx   = rx(`\bArticles\s+of\s+Association\b|\bAOA\b`)

	companyMarkersRx = rx(`\b(Pvt\.?|Private)\s+Limited\b|\bLLP\b|\bLLPIN\b|\bCIN\b|\bCompany\b|\bInc\b|\bLtd\b`)
)

// Approvals and infrastructure.
var (
	reraRx   = rx(`\bRERA\b|\bTSRERA\b|\bK-?RERA\b`)
	hmdaRx   = rx(`\bHyderabad\s+Metropolitan\s+Development\s+Authority\b|\bHMDA\b`)
	dcRx     = rx(`\bDevelopment\s+Permission\b|\bDC\s+Letter\b|\bBuilding\s+Permission\b`)
	bpoRx    = rx(`\bBuilding\s+Permit\s+Order\b|\bPermit\s+Order\b`)
	fireRx   = rx(`\b(Provisional\s+)?No\s*Objection\s*Certificate\b.*\bFire\b`)
	pcbRx    = rx(`\bPollution\s+Control\s+Board\b|\bConsent\s+to\s+(Establish|Operate)\b|\bCTE\b|\bCTO\b`)
	aaiRx    = rx(`\bAirports?\s+Authority\s+of\s+India\b|\bAAI\b.*\bNOC\b|\bheight\s+clearance\b`)
	bwssbRx  = rx(`\bBWSSB\b|\bWater\s+Supply\b|\bWater\s+Connection\b`)
	hmwsRx   = rx(`\bHMWS&SB\b|\bHyderabad\s+Metropolitan\s+Water\b`)
	bescomRx = rx(`\bBESCOM\b|\bBangalore\s+Electricity\b`)
	bsnlRx   = rx(`\bBharat\s+Sanchar\s+Nigam\s+Limited\b|\bBSNL\b`)
)

// Legal and land.
var (
	ecRx       = rx(`\bEncumbrance\s+Certificate\b|\bForm\s+1[56]\b`)
	pahaniRx   = rx(`\bPahani\b|\b1B\b|\bROR\b|\bAdangal\b`)
	passbookRx = rx(`\bPassbook\b`)
	dagpaRx    = rx(`\bDevelopment\s+Agreement[-\s]*cum\s+GPA\b|\bDAGPA\b`)
	jdaRx      = rx(`\bJoint\s+Development\s+Agreement\b|\bJDA\b`)
	gpaRx      = rx(`\bGeneral\s+Power\s+of\s+Attorney\b|\bGPA\b`)
	nalaRx     = rx(`\bNALA\b|\bNon-?Agricultural\s+Land\s+Assessment\b`)
	lucRx      = rx(`\bLand\s+Use\s+Certificate\b|\bLUC\b`)
	tdrRx      = rx(`\bTransfer\s+of\s+Development\s+Rights\b|\bTDR\b`)

	bankStmtRx = rx(`\b(Account\s+Statement|Statement\s+of\s+Account|SOA|Account\s+No\.?|A/c\s+No\.?|IFSC)\b`)
)

// textRule pairs a category slug with its ordered regex detectors. Kept
// as declarative data so the engine stays a pure function of
// (text, filename) and the table can change without touching fusion.
// Slice, not map: evaluation order decides ties, so it must be stable.
type textRule struct {
	slug      string
	detectors []*regexp.Regexp
}

var textRules = []textRule{
	// IDs / KYC
	{"directors_pan_aadhaar", []*regexp.Regexp{panRx, rx(`\bAadhaar\b`)}},
	{"dev_company_gst_pan", []*regexp.Regexp{gstinRx}},
	{"dev_company_tan", []*regexp.Regexp{tanRx}},
	{"dev_company_lei", []*regexp.Regexp{leiRx}},

	// Company / incorporation
	{"dev_company_moa_aoa_incorp", []*regexp.Regexp{moaRx, aoaRx}},
	{"group_company_moa_aoa_incorp", []*regexp.Regexp{moaRx, aoaRx}},
	{"dev_llp_agreement_incorp", []*regexp.Regexp{llpinRx, coiRx}},
	{"dev_partnership_deed_registration", []*regexp.Regexp{rx(`\bPartnership\s+Deed\b|\bFirm\s+Registration\b`)}},

	// Approvals (TS)
	{"ts_hmda_dc_letter", []*regexp.Regexp{hmdaRx, dcRx}},
	{"ts_building_permit_order", []*regexp.Regexp{bpoRx}},
	{"ts_provisional_fire_noc", []*regexp.Regexp{fireRx}},
	{"ts_pollution_noc", []*regexp.Regexp{pcbRx}},
	{"ts_airport_authority", []*regexp.Regexp{aaiRx}},
	{"ts_rera_certificate", []*regexp.Regexp{reraRx}},
	{"ts_permission_water_supply", []*regexp.Regexp{hmwsRx}},

	// Approvals (KA)
	{"ka_commencement_letter", []*regexp.Regexp{rx(`\bCommencement\s+(Certificate|Letter)\b`)}},
	{"ka_provisional_fire_noc", []*regexp.Regexp{fireRx}},
	{"ka_pollution_noc", []*regexp.Regexp{pcbRx}},
	{"ka_airport_authority", []*regexp.Regexp{aaiRx}},
	{"ka_rera", []*regexp.Regexp{reraRx}},
	{"ka_permission_water_supply", []*regexp.Regexp{bwssbRx}},
	{"ka_bescom", []*regexp.Regexp{bescomRx}},
	{"ka_bsnl", []*regexp.Regexp{bsnlRx}},

	// Legal
	{"legal_certified_ec", []*regexp.Regexp{ecRx}},
	{"legal_pahanies", []*regexp.Regexp{pahaniRx}},
	{"legal_passbooks", []*regexp.Regexp{passbookRx}},

	// Land
	{"land_ts_dagpa", []*regexp.Regexp{dagpaRx}},
	{"land_ka_jda", []*regexp.Regexp{jdaRx}},
	{"land_ka_gpa", []*regexp.Regexp{gpaRx}},
	{"land_ts_nala", []*regexp.Regexp{nalaRx}},
	{"land_ts_land_use_certificate", []*regexp.Regexp{lucRx}},
	{"land_ts_tdr", []*regexp.Regexp{tdrRx}},
	{"land_ka_tdr", []*regexp.Regexp{tdrRx}},
}

// filenameHint maps a distinctive filename token to candidate slugs.
// Both state variants are emitted; the resolver filters by state.
type filenameHint struct {
	token string
	slugs []string
}

var filenameHints = []filenameHint{
	{"gst", []string{"dev_company_gst_pan", "group_company_gst_pan", "dev_llp_gst_pan", "dev_partnership_gst_pan"}},
	{"tan", []string{"dev_company_tan", "dev_llp_tan", "dev_partnership_tan"}},
	{"lei", []string{"dev_company_lei", "dev_llp_lei", "dev_partnership_lei"}},
	{"rera", []string{"ts_rera_certificate", "ka_rera"}},
	{"hmda", []string{"ts_hmda_dc_letter"}},
	{"aai", []string{"ts_airport_authority", "ka_airport_authority"}},
	{"moa", []string{"dev_company_moa_aoa_incorp", "group_company_moa_aoa_incorp"}},
	{"aoa", []string{"dev_company_moa_aoa_incorp", "group_company_moa_aoa_incorp"}},
	{"coi", []string{"dev_llp_agreement_incorp"}},
	{"accountstatement", []string{"dev_company_bank_stmt", "dev_llp_bank_stmt", "dev_partnership_bank_stmt", "directors_bank_stmt_1y"}},
	{"statement", []string{"dev_company_bank_stmt", "dev_llp_bank_stmt", "dev_partnership_bank_stmt", "directors_bank_stmt_1y"}},
}

var entityBankStmtSlugs = []string{"dev_company_bank_stmt", "dev_llp_bank_stmt", "dev_partnership_bank_stmt"}

const personalBankStmtSlug = "directors_bank_stmt_1y"

func addHit(hits []RuleHit, slug string, score float64, why string) []RuleHit {
	if score > ruleEmitCap {
		score = ruleEmitCap
	}
	return append(hits, RuleHit{Slug: slug, Score: score, Reason: why})
}

// evalTextRules accumulates per-slug local scores with diminishing
// returns: the first matching detector is worth 0.5, every further one
// 0.25. A slug becomes a hit only at >= 0.8, emitted capped at 0.95.
func evalTextRules(rules []textRule, text string) []RuleHit {
	var hits []RuleHit
	for _, rule := range rules {
		local := 0.0
		var reasons []string
		for _, det := range rule.detectors {
			if det.MatchString(text) {
				if local == 0 {
					local += ruleFirstMatch
				} else {
					local += ruleNextMatch
				}
				reasons = append(reasons, shortPattern(det))
			}
		}
		if local >= ruleCandidateMin {
			hits = addHit(hits, rule.slug, local, strings.Join(reasons, "; "))
		}
	}
	return hits
}

// bankRouter fires only when a bank-statement marker is present. With
// corporate markers around it the statement belongs to the entity,
// otherwise to a person.
func bankRouter(text string) []RuleHit {
	var out []RuleHit
	if !bankStmtRx.MatchString(text) {
		return out
	}
	if companyMarkersRx.MatchString(text) || gstinRx.MatchString(text) || cinRx.MatchString(text) || llpinRx.MatchString(text) {
		for _, s := range entityBankStmtSlugs {
			out = addHit(out, s, bankRouterScore, "bank statement + corporate markers")
		}
		return out
	}
	return addHit(out, personalBankStmtSlug, bankRouterScore, "bank statement + no corporate markers")
}

// EvaluateRules pools hits from the text-rule table, the bank-statement
// router and the filename hints. The caller picks the maximum-score hit.
func EvaluateRules(text, filename string) []RuleHit {
	hits := evalTextRules(textRules, text)
	hits = append(hits, bankRouter(text)...)

	base := CleanFilename(filename)
	for _, hint := range filenameHints {
		if !strings.Contains(base, hint.token) {
			continue
		}
		for _, slug := range hint.slugs {
			hits = addHit(hits, slug, filenameHintScore, fmt.Sprintf("filename:%s", hint.token))
		}
	}
	return hits
}

// BestHit returns the maximum-score hit, or nil when none fired. Equal
// scores keep the earlier hit so re-runs stay deterministic.
func BestHit(hits []RuleHit) *RuleHit {
	var best *RuleHit
	for i := range hits {
		if best == nil || hits[i].Score > best.Score {
			best = &hits[i]
		}
	}
	return best
}

func shortPattern(r *regexp.Regexp) string {
	p := r.String()
	if len(p) > 48 {
		return p[:48] + "..."
	}
	return p
}
