package cedula

import (
	"regexp"
	"strings"

	"idtools/pkg/models"
)

// nameResult is the partial outcome of one name-extraction strategy.
type nameResult struct {
	Surnames []string
	Names    []string
	Tier     models.ConfidenceTier
}

// found reports whether the strategy produced anything usable. A strategy
// that found either list short-circuits the cascade; partial results are
// never merged across strategies.
func (r nameResult) found() bool {
	return len(r.Surnames) > 0 || len(r.Names) > 0
}

// nameStrategy is one self-contained extraction attempt. Strategies run in
// fixed priority order matching the historical cédula layouts they target.
type nameStrategy func(text string) (nameResult, bool)

var nameStrategies = []nameStrategy{
	extractNamesLegacyRun,
	extractNamesModern,
	extractNamesLabeled,
	extractNamesLoose,
}

var (
	// Legacy layout prints values above their labels, so the OCR yields one
	// contiguous run: number, surnames, "APELLIDOS", names, "NOMBRES".
	legacyRunRe = regexp.MustCompile(`(\d[\d.,]{6,}\d)\s+([A-ZÑÁÉÍÓÚÜ]+(?:\s+[A-ZÑÁÉÍÓÚÜ]+)*?)\s+APELLIDOS\s+([A-ZÑÁÉÍÓÚÜ]+(?:\s+[A-ZÑÁÉÍÓÚÜ]+)*?)\s+NOMBRES\b`)

	// Modern layout reads label first: "APELLIDOS <tokens> NOMBRES <tokens>".
	modernRe = regexp.MustCompile(`(?s)\bAPELLIDOS\b\s+(.+?)\s*\bNOMBRES\b\s+(.+?)(?:\n|$)`)

	// Older cards label with colons: "APELLIDOS: <tokens> NOMBRES: <tokens>".
	labeledRe = regexp.MustCompile(`(?s)\bAPELLIDOS\s*:\s*(.+?)\s*\bNOMBRES\s*:\s*(.+?)(?:\n|$)`)

	// Loose fallback: each label located independently, structure ignored.
	looseSurnamesRe = regexp.MustCompile(`\bAPELLIDOS\b:?\s*([A-ZÑÁÉÍÓÚÜ][A-ZÑÁÉÍÓÚÜ\s]{1,60})`)
	looseNamesRe    = regexp.MustCompile(`\bNOMBRES\b:?\s*([A-ZÑÁÉÍÓÚÜ][A-ZÑÁÉÍÓÚÜ\s]{1,60})`)
)

// nameStopwords terminate a captured span: anything past these keywords
// belongs to a different field on the card.
var nameStopwords = map[string]bool{
	"FECHA":          true,
	"NACIMIENTO":     true,
	"LUGAR":          true,
	"SEXO":           true,
	"ESTATURA":       true,
	"EXPEDICION":     true,
	"NUIP":           true,
	"NUMERO":         true,
	"FIRMA":          true,
	"INDICE":         true,
	"REGISTRADOR":    true,
	"IDENTIFICACION": true,
}

// ExtractNames runs the name/surname strategy cascade over normalized text
// and fills the four name fields of the partial result. ID layouts vary by
// issuance era, so each strategy targets one known layout and the first
// one that yields anything wins.
func ExtractNames(text string, fields *models.ExtractedFields, conf *models.FieldConfidence) {
	for _, strategy := range nameStrategies {
		result, ok := strategy(text)
		if !ok || !result.found() {
			continue
		}
		applyNameResult(result, fields, conf)
		return
	}
}

func applyNameResult(r nameResult, fields *models.ExtractedFields, conf *models.FieldConfidence) {
	if len(r.Surnames) > 0 {
		fields.FirstSurname = &r.Surnames[0]
		conf.FirstSurname = r.Tier
	}
	if len(r.Surnames) > 1 {
		fields.SecondSurname = &r.Surnames[1]
		conf.SecondSurname = r.Tier
	}
	if len(r.Names) > 0 {
		fields.FirstName = &r.Names[0]
		conf.FirstName = r.Tier
	}
	if len(r.Names) > 1 {
		fields.MiddleName = &r.Names[1]
		conf.MiddleName = r.Tier
	}
}

// extractNamesLegacyRun targets the pre-1993 layout where the document
// number and both name blocks appear in one contiguous run before their
// labels. Matches here are the most reliable signal the cascade has.
func extractNamesLegacyRun(text string) (nameResult, bool) {
	m := legacyRunRe.FindStringSubmatch(flatten(text))
	if m == nil {
		return nameResult{}, false
	}
	return nameResult{
		Surnames: cleanNameTokens(m[2]),
		Names:    cleanNameTokens(m[3]),
		Tier:     models.ConfidenceHigh,
	}, true
}

func extractNamesModern(text string) (nameResult, bool) {
	m := modernRe.FindStringSubmatch(text)
	if m == nil {
		return nameResult{}, false
	}
	return labeledResult(cleanNameTokens(m[1]), cleanNameTokens(m[2])), true
}

func extractNamesLabeled(text string) (nameResult, bool) {
	m := labeledRe.FindStringSubmatch(text)
	if m == nil {
		return nameResult{}, false
	}
	return labeledResult(cleanNameTokens(m[1]), cleanNameTokens(m[2])), true
}

// labeledResult grades a label-based match: both blocks present is high
// confidence, a single block is medium.
func labeledResult(surnames, names []string) nameResult {
	tier := models.ConfidenceHigh
	if len(surnames) == 0 || len(names) == 0 {
		tier = models.ConfidenceMedium
	}
	return nameResult{Surnames: surnames, Names: names, Tier: tier}
}

// extractNamesLoose is the last-resort strategy: it looks for each label
// anywhere in the text with no structural requirements. Found values are
// medium confidence at best.
func extractNamesLoose(text string) (nameResult, bool) {
	flat := flatten(text)

	var surnames, names []string
	if m := looseSurnamesRe.FindStringSubmatch(flat); m != nil {
		surnames = cleanNameTokens(m[1])
	}
	if m := looseNamesRe.FindStringSubmatch(flat); m != nil {
		names = cleanNameTokens(m[1])
	}
	if len(surnames) == 0 && len(names) == 0 {
		return nameResult{}, false
	}
	return nameResult{Surnames: surnames, Names: names, Tier: models.ConfidenceMedium}, true
}

// cleanNameTokens tokenizes a captured span, drops noise tokens and
// truncates to the two tokens a cédula name block can hold. Tokens shorter
// than two characters are OCR artifacts; tokens containing digits or
// reaching a stopword end the span.
func cleanNameTokens(span string) []string {
	tokens := strings.Fields(flatten(span))
	cleaned := make([]string, 0, 2)
	for _, tok := range tokens {
		if nameStopwords[tok] {
			break
		}
		if len([]rune(tok)) < 2 || !alphabetic(tok) {
			continue
		}
		cleaned = append(cleaned, Capitalize(tok))
		if len(cleaned) == 2 {
			break
		}
	}
	return cleaned
}

func alphabetic(tok string) bool {
	for _, r := range tok {
		if (r < 'A' || r > 'Z') && !strings.ContainsRune("ÑÁÉÍÓÚÜ", r) {
			return false
		}
	}
	return true
}

// Capitalize returns the token with its first letter upper-cased and the
// rest lowered, e.g. "GARCIA" -> "Garcia".
func Capitalize(tok string) string {
	runes := []rune(strings.ToLower(tok))
	if len(runes) == 0 {
		return tok
	}
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}
