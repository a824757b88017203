package user

import "strings"

// Devanagari consonants carry an inherent 'a' that is dropped before a vowel
// sign or virama. The tables cover the characters seen in transcribed names.
var devanagariRoman = map[rune]string{
	'अ': "a", 'आ': "aa", 'इ': "i", 'ई': "ee", 'उ': "u", 'ऊ': "oo",
	'ऋ': "ri", 'ए': "e", 'ऐ': "ai", 'ओ': "o", 'औ': "au",

	'क': "ka", 'ख': "kha", 'ग': "ga", 'घ': "gha", 'ङ': "nga",
	'च': "cha", 'छ': "chha", 'ज': "ja", 'झ': "jha", 'ञ': "nya",
	'ट': "ta", 'ठ': "tha", 'ड': "da", 'ढ': "dha", 'ण': "na",
	'त': "ta", 'थ': "tha", 'द': "da", 'ध': "dha", 'न': "na",
	'प': "pa", 'फ': "pha", 'ब': "ba", 'भ': "bha", 'म': "ma",
	'य': "ya", 'र': "ra", 'ल': "la", 'व': "va",
	'श': "sha", 'ष': "sha", 'स': "sa", 'ह': "ha",

	'ा': "aa", 'ि': "i", 'ी': "ee", 'ु': "u", 'ू': "oo",
	'ृ': "ri", 'े': "e", 'ै': "ai", 'ो': "o", 'ौ': "au",

	'ं': "m", 'ः': "h", 'ँ': "n",
}

const (
	devanagariConsonants = "कखगघङचछजझञटठडढणतथदधनपफबभमयरलवशषसह"
	devanagariVowelSigns = "ािीुूृेैोौ"
	virama               = '्'
)

// TransliterateDevanagari converts Devanagari script to Roman script so
// recipient names spoken in Hindi can be matched against the stored names.
// Non-Devanagari characters pass through unchanged.
func TransliterateDevanagari(text string) string {
	runes := []rune(text)
	var out strings.Builder

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		base, known := devanagariRoman[r]
		if !known {
			if r != virama {
				out.WriteRune(r)
			}
			continue
		}

		if strings.ContainsRune(devanagariConsonants, r) && i+1 < len(runes) {
			next := runes[i+1]
			if next == virama {
				out.WriteString(strings.TrimSuffix(base, "a"))
				i++
				continue
			}
			if strings.ContainsRune(devanagariVowelSigns, next) {
				out.WriteString(strings.TrimSuffix(base, "a"))
				out.WriteString(devanagariRoman[next])
				i++
				continue
			}
		}

		out.WriteString(base)
	}

	return out.String()
}
