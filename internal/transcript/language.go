package transcript

import (
	"strings"
	"unicode"
)

// hindiWords is the fixed Hindi/Hinglish function-word list used by the
// fallback classifier. A single whole-word hit classifies the text as Hindi.
var hindiWords = map[string]struct{}{
	"ko": {}, "bhejo": {}, "bhej": {}, "karo": {}, "kar": {},
	"mera": {}, "aapka": {}, "kitna": {}, "hai": {}, "ka": {},
	"ki": {}, "ke": {}, "kya": {}, "se": {}, "me": {},
	"par": {}, "pe": {}, "paisa": {}, "rupaye": {}, "kaun": {},
}

// DetectLanguage is the fallback used when the transcriber supplies no
// language tag. Devanagari script wins outright; otherwise one hit on the
// Hinglish word list classifies "hi", everything else is "en". Ambiguous
// transliterations misclassify and that is accepted.
func DetectLanguage(text string) string {
	for _, r := range text {
		if unicode.In(r, unicode.Devanagari) {
			return "hi"
		}
	}

	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:'\"")
		if _, ok := hindiWords[word]; ok {
			return "hi"
		}
	}
	return "en"
}
