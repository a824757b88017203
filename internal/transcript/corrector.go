package transcript

import (
	"regexp"
	"strings"
)

// correction is one substitution rule. Patterns match whole words,
// case-insensitively, and are applied in table order.
type correction struct {
	pattern     *regexp.Regexp
	replacement string
}

// Corrector fixes tokens the transcriber reliably mishears: demo contact
// names, spelled-out numerals and filler particles. Replacements are
// canonical forms that never match a pattern again, so applying the table
// twice yields the same text as applying it once.
type Corrector struct {
	rules []correction
}

func rule(pattern, replacement string) correction {
	return correction{
		pattern:     regexp.MustCompile(`(?i)\b(?:` + pattern + `)\b`),
		replacement: replacement,
	}
}

// NewCorrector builds the default substitution table.
func NewCorrector() *Corrector {
	return &Corrector{rules: []correction{
		// Contact names as Whisper tends to spell them.
		rule(`neeraj|neraj|nira[gz]|niraaj`, "niraj"),
		rule(`rahool|raahul|rahoul`, "rahul"),
		rule(`pria|preya|priyaa`, "priya"),
		rule(`ameet|amith`, "amit"),
		rule(`anooj|anuaj`, "anuj"),
		// Numeral words.
		rule(`tree|thre`, "three"),
		rule(`fiver`, "five"),
		rule(`hundered|hundrad`, "hundred"),
		rule(`thousend|thousan`, "thousand"),
		// Hinglish particles split or fused by the transcriber.
		rule(`bhej do`, "bhejo"),
		rule(`kar do`, "karo"),
		rule(`rupees?\s+ko`, "rupaye ko"),
		// Fillers.
		rule(`umm+|uhh+|hmm+`, ""),
	}}
}

// Apply runs the substitution table over the text and collapses the
// whitespace left behind by removed fillers.
func (c *Corrector) Apply(text string) string {
	for _, r := range c.rules {
		text = r.pattern.ReplaceAllString(text, r.replacement)
	}
	return strings.Join(strings.Fields(text), " ")
}
