package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractFactsDirectPAN(t *testing.T) {
	f := ExtractFacts("PAN: AAACX1234K issued to the assessee")
	require.Equal(t, "AAACX1234K", f.PAN)
	require.False(t, f.DerivedPAN)
	require.Equal(t, "pan:AAACX1234K", f.Key())
}

func TestExtractFactsDerivesPANFromGSTIN(t *testing.T) {
	f := ExtractFacts("GSTIN 36AAACX1234K1Z5 registered in Telangana")
	require.Equal(t, "36AAACX1234K1Z5", f.GSTIN)
	require.Equal(t, "AAACX1234K", f.PAN)
	require.True(t, f.DerivedPAN)
	// Derived or not, PAN still keys the cluster.
	require.Equal(t, "pan:AAACX1234K", f.Key())
}

func TestExtractFactsDirectPANWinsOverGSTIN(t *testing.T) {
	f := ExtractFacts("PAN: BBBCY9876L\nGSTIN 36AAACX1234K1Z5")
	require.Equal(t, "BBBCY9876L", f.PAN)
	require.False(t, f.DerivedPAN)
}

func TestFactsKeyPriority(t *testing.T) {
	tests := []struct {
		name string
		f    Facts
		want string
	}{
		{"pan first", Facts{PAN: "AAACX1234K", GSTIN: "36AAACX1234K1Z5", CIN: "U72ABC2015PTC123456"}, "pan:AAACX1234K"},
		{"gstin over llpin", Facts{GSTIN: "36AAACX1234K1Z5", LLPIN: "AAB-1234"}, "gstin:36AAACX1234K1Z5"},
		{"llpin over cin", Facts{LLPIN: "AAB-1234", CIN: "U72ABC2015PTC123456"}, "llpin:AAB-1234"},
		{"cin over name", Facts{CIN: "U72ABC2015PTC123456", NameKey: "ACME BUILDERS"}, "cin:U72ABC2015PTC123456"},
		{"name last", Facts{NameKey: "ACME BUILDERS"}, "name_key:ACME BUILDERS"},
		{"nothing", Facts{}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.f.Key())
		})
	}
}

func TestExtractFactsCINAndName(t *testing.T) {
	f := ExtractFacts("CIN: U72ABC2015PTC123456\nName of Company: Acme Builders Private Limited")
	require.Equal(t, "U72ABC2015PTC123456", f.CIN)
	require.Equal(t, "ACME BUILDERS", f.NameKey)
	require.Equal(t, "cin:U72ABC2015PTC123456", f.Key())
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme Builders Private Limited", "ACME BUILDERS"},
		{"Acme Builders Pvt Ltd", "ACME BUILDERS"},
		{"ACME  BUILDERS   LLP", "ACME BUILDERS"},
		{"M/s. Acme & Sons Partnership Firm", "M S ACME & SONS"},
		{"  acme builders ltd  ", "ACME BUILDERS"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, NormalizeName(tc.in), "input %q", tc.in)
	}
}
