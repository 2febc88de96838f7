package transcript

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrEmptyTranscript means the raw input was empty or whitespace.
	ErrEmptyTranscript = errors.New("transcript is empty")
	// ErrNoMeaningfulContent means nothing usable survived cleaning.
	ErrNoMeaningfulContent = errors.New("transcript has no meaningful content")
)

var (
	creditLineRe = regexp.MustCompile(`(?i)subt[ií]tulos\s+(?:realizados|creados|hechos)\s+por.*|\S*amara\.org\S*`)
	bracketTagRe = regexp.MustCompile(`\[[^\]]*\]`)
	parenTagRe   = regexp.MustCompile(`(?i)\((?:inaudible|incomprensible|m[úu]sica|ruido|aplausos|risas|tos|silencio)\)`)
	timestampRe  = regexp.MustCompile(`\b\d{1,2}:\d{2}(?::\d{2})?\b`)
	speakerRe    = regexp.MustCompile(`(?im)^\s*(?:hablante|speaker|orador)[_\s]*\d*\s*:`)
	digitRunRe   = regexp.MustCompile(`\d{4,}`)
)

// interrogatives mark a leading question word as a meaningful-content signal.
var interrogatives = map[string]bool{
	"cómo": true, "como": true, "cuándo": true, "cuando": true,
	"dónde": true, "donde": true, "qué": true, "que": true,
	"cuál": true, "cual": true, "quién": true, "quien": true,
	"cuánto": true, "cuanto": true, "por": true,
}

// DefaultVocabulary returns the words that mark a short transcript as
// meaningful: PQRS domain terms plus greetings and courtesy words citizens
// actually say. Single short answers like "sí" must survive sanitization.
func DefaultVocabulary() []string {
	return []string{
		// domain
		"pqrs", "pqrsd", "petición", "peticion", "queja", "reclamo",
		"sugerencia", "denuncia", "solicitud", "radicado", "trámite",
		"tramite", "consulta", "estado", "respuesta",
		// infrastructure the Secretaría handles
		"vía", "via", "calle", "carrera", "obra", "hueco", "pavimento",
		"andén", "anden", "acera", "puente", "alumbrado", "semáforo",
		"semaforo", "alcantarilla",
		// greetings, courtesy, short answers
		"hola", "buenos", "buenas", "días", "dias", "tardes", "noches",
		"gracias", "sí", "si", "no", "ok", "bueno", "listo", "perfecto",
		"ayuda", "favor", "necesito", "quiero", "información", "informacion",
	}
}

// Sanitizer cleans speech-to-text transcripts before they enter the intake
// pipeline. Transcription engines leave credits, sound tags and half-words
// behind; routing that noise into the classifier wastes oracle calls.
type Sanitizer struct {
	vocab map[string]bool
}

func New() *Sanitizer {
	return NewWithVocabulary(DefaultVocabulary())
}

// NewWithVocabulary builds a Sanitizer with a custom meaningful-word table.
func NewWithVocabulary(words []string) *Sanitizer {
	vocab := make(map[string]bool, len(words))
	for _, w := range words {
		vocab[strings.ToLower(w)] = true
	}
	return &Sanitizer{vocab: vocab}
}

// Sanitize strips transcription noise and verifies the result carries
// meaningful content. A short transcript only fails when no semantic
// signal matched: "sí" passes while a transcript that was pure noise
// does not.
func (s *Sanitizer) Sanitize(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrEmptyTranscript
	}

	cleaned := s.clean(raw)

	if utf8.RuneCountInString(cleaned) < 3 && !s.meaningful(cleaned) {
		return "", ErrNoMeaningfulContent
	}
	return cleaned, nil
}

func (s *Sanitizer) clean(raw string) string {
	text := creditLineRe.ReplaceAllString(raw, " ")
	text = bracketTagRe.ReplaceAllString(text, " ")
	text = parenTagRe.ReplaceAllString(text, " ")
	text = timestampRe.ReplaceAllString(text, " ")
	text = speakerRe.ReplaceAllString(text, " ")

	// Drop freestanding single letters and collapse immediate word repeats,
	// both common Whisper stutters. Whitespace collapses as a side effect.
	var kept []string
	prev := ""
	for _, tok := range strings.Fields(text) {
		if utf8.RuneCountInString(tok) == 1 && isAlphabetic(tok) {
			continue
		}
		lower := strings.ToLower(tok)
		if lower == prev {
			continue
		}
		kept = append(kept, tok)
		prev = lower
	}
	return strings.Join(kept, " ")
}

// meaningful reports whether the cleaned text carries any semantic signal:
// a vocabulary word, a digit run of 4+ (partial case ids), a question
// pattern, or any alphabetic word of 3+ letters.
func (s *Sanitizer) meaningful(text string) bool {
	lower := strings.ToLower(text)

	if digitRunRe.MatchString(lower) {
		return true
	}
	if strings.ContainsAny(lower, "¿?") {
		return true
	}

	for i, tok := range strings.Fields(lower) {
		word := strings.Trim(tok, ".,;:¡!¿?\"'()")
		if word == "" {
			continue
		}
		if s.vocab[word] {
			return true
		}
		if i == 0 && interrogatives[word] {
			return true
		}
		if utf8.RuneCountInString(word) >= 3 && isAlphabetic(word) {
			return true
		}
	}
	return false
}

func isAlphabetic(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}
