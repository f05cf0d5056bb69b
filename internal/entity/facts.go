package entity

import (
	"regexp"
	"strings"
)

// Facts are the legal identifiers pulled from a document's leading text.
type Facts struct {
	PAN     string
	GSTIN   string
	CIN     string
	LLPIN   string
	Name    string
	NameKey string
	// DerivedPAN is set when PAN came out of the GSTIN rather than the
	// text itself.
	DerivedPAN bool
}

var (
	panRx   = regexp.MustCompile(`\b[A-Z]{5}[0-9]{4}[A-Z]\b`)
	gstinRx = regexp.MustCompile(`\b\d{2}[A-Z]{5}\d{4}[A-Z][1-9A-Z]Z[0-9A-Z]\b`)
	cinRx   = regexp.MustCompile(`\b[UL]\d{2}[A-Z]{3}\d{4}[A-Z]{3}\d{6}\b`)
	llpinRx = regexp.MustCompile(`(?i)\bLLPIN\b[:\s-]*[A-Z]{3}-?\d{4}\b`)
	nameRx  = regexp.MustCompile(`(?i)(?:Name|Legal Name|Name of (?:Business|Company)|Account Name)\s*[:\-]\s*([A-Z0-9&.,() /\-]+)`)
)

var corpSuffixes = []string{
	" PRIVATE LIMITED", " PVT LTD", " LTD", " LIMITED", " LLP",
	" PARTNERSHIP FIRM", " FIRM", " COMPANY",
}

var (
	nameStripRx    = regexp.MustCompile(`[^A-Z0-9& ]+`)
	nameCollapseRx = regexp.MustCompile(`\s+`)
)

// NormalizeName uppercases, strips common corporate suffixes and
// non-alphanumerics except '&', and collapses whitespace, so the same
// entity written slightly differently still keys identically.
func NormalizeName(s string) string {
	s = strings.ToUpper(s)
	for _, suffix := range corpSuffixes {
		s = strings.ReplaceAll(s, suffix, "")
	}
	s = nameStripRx.ReplaceAllString(s, " ")
	return strings.TrimSpace(nameCollapseRx.ReplaceAllString(s, " "))
}

// ExtractFacts scans text for labeled identifiers. Every GSTIN embeds
// the holder's PAN in characters 3-12, so a missing PAN is derived from
// it.
func ExtractFacts(text string) Facts {
	var f Facts
	if m := panRx.FindString(text); m != "" {
		f.PAN = m
	}
	if m := gstinRx.FindString(text); m != "" {
		f.GSTIN = m
	}
	if m := cinRx.FindString(text); m != "" {
		f.CIN = m
	}
	if m := llpinRx.FindString(text); m != "" {
		f.LLPIN = m
	}
	if m := nameRx.FindStringSubmatch(text); m != nil {
		f.Name = strings.TrimSpace(m[1])
		f.NameKey = NormalizeName(f.Name)
	}
	if f.GSTIN != "" && f.PAN == "" && len(f.GSTIN) >= 12 {
		f.PAN = f.GSTIN[2:12]
		f.DerivedPAN = true
	}
	return f
}

// Key picks the strongest available identifier, identifiers strictly
// before names. Empty when the document cannot be tied to an entity.
func (f Facts) Key() string {
	switch {
	case f.PAN != "":
		return "pan:" + f.PAN
	case f.GSTIN != "":
		return "gstin:" + f.GSTIN
	case f.LLPIN != "":
		return "llpin:" + f.LLPIN
	case f.CIN != "":
		return "cin:" + f.CIN
	case f.NameKey != "":
		return "name_key:" + f.NameKey
	}
	return ""
}
