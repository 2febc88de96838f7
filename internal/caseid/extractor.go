package caseid

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// DefaultYearPrefix anchors validation to the current filing year; ids from
// other years never validate.
// TODO: move the filing year to configuration when multi-year lookups land.
const DefaultYearPrefix = "2025"

// radicadoLen is the fixed length of a filing number: YYYYMMDD + 4-digit
// consecutive.
const radicadoLen = 12

var (
	keywordDigitsRe = regexp.MustCompile(`(?i)(?:radicado|n[úu]mero|caso|consecutivo|c[óo]digo)[^.,;:¿?¡!\n]*?(\d{8,})`)
	bareIDRe        = regexp.MustCompile(`\b\d{12}\b`)
	keywordClauseRe = regexp.MustCompile(`(?i)(?:radicado|n[úu]mero|caso|consecutivo|c[óo]digo)([^.,;:¿?¡!\n]*)`)
	digitRe         = regexp.MustCompile(`\d+`)
)

// numberWords maps spoken Spanish numbers zero through thirty to digits,
// accented and unaccented spellings both. Callers cite ids digit by digit
// ("dos cero dos cinco…") but compound forms show up too.
var numberWords = map[string]string{
	"cero": "0", "uno": "1", "dos": "2", "tres": "3", "cuatro": "4",
	"cinco": "5", "seis": "6", "siete": "7", "ocho": "8", "nueve": "9",
	"diez": "10", "once": "11", "doce": "12", "trece": "13", "catorce": "14",
	"quince": "15",
	"dieciséis": "16", "dieciseis": "16",
	"diecisiete": "17", "dieciocho": "18", "diecinueve": "19",
	"veinte": "20",
	"veintiuno": "21", "veintiún": "21", "veintiun": "21",
	"veintidós": "22", "veintidos": "22",
	"veintitrés": "23", "veintitres": "23",
	"veinticuatro": "24", "veinticinco": "25",
	"veintiséis": "26", "veintiseis": "26",
	"veintisiete": "27", "veintiocho": "28", "veintinueve": "29",
	"treinta": "30",
}

// numberWordRe matches any spoken number word. Alternatives are ordered
// longest first so "veintidós" never decomposes into "veinti" + "dos".
var numberWordRe = buildNumberWordRe()

func buildNumberWordRe() *regexp.Regexp {
	words := make([]string, 0, len(numberWords))
	for w := range numberWords {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(words, "|") + `)\b`)
}

// Extractor recovers filing numbers (radicados) from free text, including
// ids read aloud and transcribed as number words.
type Extractor struct {
	yearPrefix string
}

func New() *Extractor {
	return &Extractor{yearPrefix: DefaultYearPrefix}
}

// NewWithYearPrefix overrides the 4-digit year prefix candidates must carry.
func NewWithYearPrefix(prefix string) *Extractor {
	return &Extractor{yearPrefix: prefix}
}

// Extract returns the first valid filing number found in text. Candidates are
// tried in order: digits after an id keyword, a bare 12-digit run, spoken
// digits in the keyword clause, spoken digits anywhere. Extraction never
// fails; absence is ("", false).
func (e *Extractor) Extract(text string) (string, bool) {
	if m := keywordDigitsRe.FindStringSubmatch(text); m != nil {
		if id, ok := e.validate(m[1]); ok {
			return id, true
		}
	}

	if m := bareIDRe.FindString(text); m != "" {
		if id, ok := e.validate(m); ok {
			return id, true
		}
	}

	// Spoken form: translate number words inside the keyword clause and
	// concatenate every digit run, so "dos cero dos cinco…" and spaced
	// groups like "2025 0815 0001" both reassemble.
	if m := keywordClauseRe.FindStringSubmatch(text); m != nil {
		if id, ok := e.validate(collectDigits(translateNumberWords(m[1]))); ok {
			return id, true
		}
	}

	if id, ok := e.validate(collectDigits(translateNumberWords(text))); ok {
		return id, true
	}

	return "", false
}

// validate checks a digit-only candidate against the filing number shape:
// pad 8–11 digits with trailing zeros, require the year prefix and a
// plausible month and day.
func (e *Extractor) validate(candidate string) (string, bool) {
	if n := len(candidate); n >= 8 && n < radicadoLen {
		candidate += strings.Repeat("0", radicadoLen-n)
	}
	if len(candidate) != radicadoLen {
		return "", false
	}
	if candidate[:4] != e.yearPrefix {
		return "", false
	}
	month, _ := strconv.Atoi(candidate[4:6])
	day, _ := strconv.Atoi(candidate[6:8])
	if month < 1 || month > 12 {
		return "", false
	}
	if day < 1 || day > 31 {
		return "", false
	}
	return candidate, true
}

func translateNumberWords(clause string) string {
	return numberWordRe.ReplaceAllStringFunc(clause, func(w string) string {
		return numberWords[strings.ToLower(w)]
	})
}

func collectDigits(s string) string {
	return strings.Join(digitRe.FindAllString(s, -1), "")
}
