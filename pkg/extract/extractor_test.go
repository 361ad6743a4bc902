package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaseNumber(t *testing.T) {
	tests := []struct {
		name string
		text string
		url  string
		want string
	}{
		{"gr with dots", "[ G.R. No. 1, August 15, 1901 ]", "", "G.R. No. 1"},
		{"gr lowercase", "see g.r. no.  4521 here", "", "g.r. no.  4521"},
		{"gr without space", "G.R.No.77", "", "G.R.No.77"},
		{"gr non-breaking space", "G.R.\u00a0No.\u00a0123", "", "G.R.\u00a0No.\u00a0123"},
		{"gr without dots", "GR No 55", "", "GR No 55"},
		{"administrative case", "A.C. No. 12 and A.M. No. 3", "", "A.C. No. 12"},
		{"administrative matter", "A.M. No. 3", "", "A.M. No. 3"},
		{"gr outranks earlier ac", "A.C. No. 12 then G.R. No. 9", "", "G.R. No. 9"},
		{"fallback to filename", "no docket here", "https://lawphil.net/judjuris/juri1901/aug1901/gr_1_1901.html", "gr_1_1901"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CaseNumber(tt.text, tt.url))
		})
	}
}

func TestGRNumber(t *testing.T) {
	assert.Equal(t, "1", GRNumber("G.R. No. 1"))
	assert.Equal(t, "No.77", GRNumber("G.R. No.77"))
	assert.Equal(t, "A.C. No. 12", GRNumber("A.C. No. 12"))
}

func TestDecisionDate(t *testing.T) {
	assert.Equal(t, "August 15, 1901", DecisionDate("[ G.R. No. 1, August 15, 1901 ]"))
	assert.Equal(t, "15 August 1901", DecisionDate("Promulgated 15 August 1901."))
	assert.Equal(t, "MARCH 3, 1950", DecisionDate("decided MARCH 3, 1950"))
	// Month-first pattern wins even when a day-first date appears earlier
	assert.Equal(t, "June 1, 1902", DecisionDate("2 May 1902 ... June 1, 1902"))
	assert.Equal(t, "", DecisionDate("no date at all"))
}

func TestVolumePage(t *testing.T) {
	assert.Equal(t, "1 Phil. 1", VolumePage("reported in 1 Phil. 1 (1901)"))
	assert.Equal(t, "12 phil 345", VolumePage("12 phil 345"))
	assert.Equal(t, "45 SCRA 120", VolumePage("45 SCRA 120"))
	assert.Equal(t, "Vol. 3, p. 14", VolumePage("Vol. 3, p. 14"))
	assert.Equal(t, VolumeNotAvailable, VolumePage("nothing to cite"))
}

func TestDivision(t *testing.T) {
	first := "First Division"
	banc := "En Banc"
	assert.Equal(t, &first, Division("FIRST DIVISION ... en banc"))
	assert.Equal(t, &banc, Division("The Court En Banc"))
	assert.Nil(t, Division("SMITH vs. JONES"))
}

func TestCategorize(t *testing.T) {
	t.Run("defaults to general", func(t *testing.T) {
		assert.Equal(t, []string{GeneralCategory}, Categorize("SMITH vs. JONES"))
		assert.Equal(t, []string{GeneralCategory}, Categorize(""))
	})

	t.Run("table order and dedup", func(t *testing.T) {
		got := Categorize("A murder case about a contract and a CONTRACT dispute over land")
		assert.Equal(t, []string{"Civil Law", "Criminal Law", "Property Law"}, got)
	})

	t.Run("capped at six", func(t *testing.T) {
		text := "civil criminal labor commercial tax administrative constitution family land appeal"
		got := Categorize(text)
		require.Len(t, got, MaxCategories)
		assert.Equal(t, []string{
			"Civil Law", "Criminal Law", "Labor Law", "Commercial Law", "Tax Law", "Administrative Law",
		}, got)
	})

	t.Run("multi word keywords", func(t *testing.T) {
		assert.Equal(t, []string{"Constitutional Law"}, Categorize("Violation of DUE PROCESS"))
	})
}

func TestKeywords(t *testing.T) {
	t.Run("frequency with stable ties", func(t *testing.T) {
		got := Keywords("court court appeal court appeal plaintiff defendant", "Plaintiff")
		assert.Equal(t, []string{"court", "plaintiff", "appeal", "defendant"}, got)
	})

	t.Run("drops stop words and short tokens", func(t *testing.T) {
		got := Keywords("The and of to is was which such all it an ox cat", "")
		assert.Equal(t, []string{"cat"}, got)
	})

	t.Run("mixed tokens are not words", func(t *testing.T) {
		got := Keywords("abc1 señora foo_bar plain", "")
		assert.Equal(t, []string{"plain"}, got)
	})

	t.Run("never more than twenty and no stop words", func(t *testing.T) {
		var b strings.Builder
		for i := 0; i < 40; i++ {
			b.WriteString(strings.Repeat(string(rune('a'+i%26)), 3+i/26))
			b.WriteString(" the and ")
		}
		got := Keywords(b.String(), "")
		assert.Len(t, got, MaxKeywords)
		for _, w := range got {
			assert.False(t, StopWords[w], "stop word %q returned", w)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		got := Keywords("", "")
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestRuleSet_FirstMatch(t *testing.T) {
	rs := RuleSet{
		mustRule("digits", `\d+`),
		{Name: "upper", Pattern: mustRule("", `[A-Z]+`).Pattern, Transform: strings.ToLower},
	}

	v, name, ok := rs.FirstMatch("abc 42 XYZ")
	assert.True(t, ok)
	assert.Equal(t, "42", v)
	assert.Equal(t, "digits", name)

	v, name, ok = rs.FirstMatch("no digits")
	assert.True(t, ok)
	// (?i) makes [A-Z] match lowercase too
	assert.Equal(t, "no", v)
	assert.Equal(t, "upper", name)

	_, _, ok = rs.FirstMatch("   ")
	assert.False(t, ok)
}
