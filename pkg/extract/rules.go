package extract

import "regexp"

// ws and wsClass match the whitespace the archive pages put between tokens, non-breaking spaces included
const (
	wsClass = `\s\v\p{Z}`
	ws      = `[` + wsClass + `]`
)

const monthNames = `(?:January|February|March|April|May|June|July|August|September|October|November|December)`

// Rule is one pattern in a first-match-wins cascade.
// Transform, when set, rewrites the matched text before it is returned.
type Rule struct {
	Name      string
	Pattern   *regexp.Regexp
	Transform func(match string) string
}

// RuleSet evaluates rules in order; the first rule with a match wins
type RuleSet []Rule

// FirstMatch returns the (transformed) leftmost match of the first rule that matches text
func (rs RuleSet) FirstMatch(text string) (value string, rule string, ok bool) {
	for _, r := range rs {
		m := r.Pattern.FindString(text)
		if m == "" {
			continue
		}
		if r.Transform != nil {
			m = r.Transform(m)
		}
		return m, r.Name, true
	}
	return "", "", false
}

func mustRule(name, pattern string) Rule {
	return Rule{Name: name, Pattern: regexp.MustCompile(`(?i)` + pattern)}
}

// CaseNumberRules recognise docket labels, most specific first
var CaseNumberRules = RuleSet{
	mustRule("gr", `G\.R\.?`+ws+`*No\.?`+ws+`*\d+`),
	mustRule("gr_no_dots", `GR`+ws+`*No\.?`+ws+`*\d+`),
	mustRule("ac", `A\.C\.?`+ws+`*No\.?`+ws+`*\d+`),
	mustRule("am", `A\.M\.?`+ws+`*No\.?`+ws+`*\d+`),
}

// DateRules recognise "Month D, YYYY" then "D Month YYYY"
var DateRules = RuleSet{
	mustRule("month_day_year", monthNames+ws+`+\d{1,2},`+ws+`+\d{4}`),
	mustRule("day_month_year", `\d{1,2}`+ws+`+`+monthNames+ws+`+\d{4}`),
}

// VolumeRules recognise reporter citations
var VolumeRules = RuleSet{
	mustRule("phil", `\d+`+ws+`+Phil\.?`+ws+`+\d+`),
	mustRule("scra", `\d+`+ws+`+SCRA`+ws+`+\d+`),
	mustRule("vol_page", `Vol\.?`+ws+`+\d+[,`+wsClass+`]+p\.?`+ws+`+\d+`),
}

// divisionRules are lowercase needles mapped to the canonical panel label
var divisionRules = []struct {
	needle string
	label  string
}{
	{"first division", "First Division"},
	{"second division", "Second Division"},
	{"third division", "Third Division"},
	{"en banc", "En Banc"},
}

// Category is a subject-area tag and the lowercase substrings that trigger it
type Category struct {
	Name     string
	Keywords []string
}

// Categories is scanned in order; the first MaxCategories hits are kept
var Categories = []Category{
	{"Civil Law", []string{"civil", "contract", "property", "obligation", "tort", "damages"}},
	{"Criminal Law", []string{"criminal", "murder", "homicide", "theft", "robbery", "fraud"}},
	{"Labor Law", []string{"labor", "employment", "employee", "employer", "nlrc", "worker"}},
	{"Commercial Law", []string{"commercial", "corporation", "partnership", "banking", "insurance"}},
	{"Tax Law", []string{"tax", "taxation", "bir", "revenue", "customs"}},
	{"Administrative Law", []string{"administrative", "agency", "regulation", "license"}},
	{"Constitutional Law", []string{"constitutional", "constitution", "bill of rights", "due process"}},
	{"Family Law", []string{"family", "marriage", "divorce", "adoption", "custody"}},
	{"Property Law", []string{"land", "real property", "title", "ownership", "possession"}},
	{"Remedial Law", []string{"procedure", "jurisdiction", "appeal", "certiorari", "mandamus"}},
}

// StopWords are dropped before keyword counting
var StopWords = map[string]bool{
	"the": true, "and": true, "or": true, "but": true, "in": true, "on": true, "at": true,
	"to": true, "for": true, "of": true, "with": true, "is": true, "was": true, "are": true,
	"were": true, "been": true, "be": true, "have": true, "has": true, "had": true,
	"that": true, "this": true, "these": true, "those": true, "from": true, "by": true,
	"not": true, "which": true, "such": true, "all": true,
}
