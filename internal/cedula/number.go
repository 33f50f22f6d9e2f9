package cedula

import (
	"regexp"
	"strings"

	"idtools/pkg/models"
)

// numberPattern is one entry in the document-number cascade. Patterns run
// in order from most specific (explicit label plus thousand-separator
// grouping) to least specific (a bare digit run); the first match that
// survives validation wins and carries the pattern's declared tier.
type numberPattern struct {
	re   *regexp.Regexp
	tier models.ConfidenceTier
}

var numberPatterns = []numberPattern{
	{regexp.MustCompile(`N[UÚ]MERO\s*:?\s*(\d{1,3}(?:[.,]\d{3}){2,3})`), models.ConfidenceHigh},
	{regexp.MustCompile(`NUIP\s*:?\s*(\d{1,3}(?:[.,]\d{3}){2,3})`), models.ConfidenceHigh},
	{regexp.MustCompile(`\bN[O0][.°]?\s*:?\s*(\d{1,3}(?:[.,]\d{3}){2,3})`), models.ConfidenceMedium},
	{regexp.MustCompile(`(?:N[UÚ]MERO|NUIP)\s*:?\s*(\d{8,10})\b`), models.ConfidenceMedium},
	{regexp.MustCompile(`\b(\d{1,3}(?:\.\d{3}){2,3})\b`), models.ConfidenceMedium},
	{regexp.MustCompile(`\b(\d{1,3}(?: \d{3}){2,3})\b`), models.ConfidenceMedium},
	{regexp.MustCompile(`\b(\d{8,10})\b`), models.ConfidenceLow},
}

var numberSeparators = strings.NewReplacer(".", "", ",", "", " ", "")

// ExtractDocumentNumber runs the document-number cascade over normalized
// text. It returns nil and low confidence when nothing validates, which is
// the expected outcome for back-side scans.
func ExtractDocumentNumber(text string) (*string, models.ConfidenceTier) {
	flat := flatten(text)

	for _, p := range numberPatterns {
		for _, m := range p.re.FindAllStringSubmatch(flat, -1) {
			candidate := numberSeparators.Replace(m[1])
			if validDocumentNumber(candidate) {
				return &candidate, p.tier
			}
		}
	}
	return nil, models.ConfidenceLow
}

// validDocumentNumber accepts 8-10 digit all-numeric candidates and rejects
// degenerate all-same-digit sequences such as "11111111", which show up
// when the OCR misreads guilloche background patterns.
func validDocumentNumber(candidate string) bool {
	if len(candidate) < 8 || len(candidate) > 10 {
		return false
	}
	same := true
	for i, r := range candidate {
		if r < '0' || r > '9' {
			return false
		}
		if i > 0 && byte(r) != candidate[0] {
			same = false
		}
	}
	return !same
}
