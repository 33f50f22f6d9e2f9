package cedula

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"idtools/pkg/models"
)

// DateTarget selects which date field a resolution pass is looking for.
type DateTarget string

const (
	DateBirth DateTarget = "birth"
	DateIssue DateTarget = "issue"
)

// Spanish month table covering both 3-letter abbreviations and full names,
// plus the SET/SEPT variants Colombian registries use for September.
var spanishMonths = map[string]int{
	"ENE": 1, "FEB": 2, "MAR": 3, "ABR": 4, "MAY": 5, "JUN": 6,
	"JUL": 7, "AGO": 8, "SEP": 9, "SET": 9, "SEPT": 9, "OCT": 10,
	"NOV": 11, "DIC": 12,
	"ENERO": 1, "FEBRERO": 2, "MARZO": 3, "ABRIL": 4, "MAYO": 5,
	"JUNIO": 6, "JULIO": 7, "AGOSTO": 8, "SEPTIEMBRE": 9, "SETIEMBRE": 9,
	"OCTUBRE": 10, "NOVIEMBRE": 11, "DICIEMBRE": 12,
}

// dateAny matches day, month (name or number) and year with the separator
// variants OCR produces. Submatch order: day, month, year.
const dateAny = `(\d{1,2})[-/\s.]+([A-ZÑÁÉÍÓÚ]{3,10}|\d{1,2})[-/\s.]+(\d{2,4})`

// Field-specific pattern lists, ranked by contextual specificity. Tier is
// derived from rank: first quartile high, second medium, remainder low.
var birthDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`FECHA\s+DE\s+NACIMIENTO[\s:]*` + dateAny),
	regexp.MustCompile(`(?:FECHA|F)\.?\s*(?:DE\s+)?NAC(?:IMIENTO)?\.?[\s:]*` + dateAny),
	regexp.MustCompile(`NACIMIENTO[\s:]*` + dateAny),
	regexp.MustCompile(`NACID?[OA]\s+EL[\s:]*` + dateAny),
	regexp.MustCompile(`NACIMIENTO[\s\S]{0,20}?` + dateAny),
	regexp.MustCompile(dateAny + `[\s\S]{0,20}?NACIMIENTO`),
}

var issueDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`FECHA\s+Y\s+LUGAR\s+DE\s+EXPEDICION[\s:]*` + dateAny),
	regexp.MustCompile(`EXPEDICION[\s:]*` + dateAny),
	regexp.MustCompile(`EXPEDID[AO]\s+EL[\s:]*` + dateAny),
	regexp.MustCompile(`EXPEDICION[\s\S]{0,30}?` + dateAny),
	regexp.MustCompile(dateAny + `[\s\S]{0,30}?EXPEDICION`),
	regexp.MustCompile(dateAny + `[\s\S]{0,30}?REGISTRADOR`),
}

// Generic date shapes used by the whole-text fallback scan.
var genericDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{1,2})[-.]([A-ZÑÁÉÍÓÚ]{3,10})[-.](\d{2,4})`),
	regexp.MustCompile(`(\d{1,2})\s+([A-ZÑÁÉÍÓÚ]{3,10})\s+(\d{2,4})`),
	regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})`),
}

// Context keywords for the fallback scan. Go's regexp is RE2 and has no
// lookaround, so the "exclude dates near the other field's label" rule is
// an explicit window check around each candidate instead of a lookbehind.
var (
	issueContextKeywords = []string{"EXPEDICION", "EXPEDID", "REGISTRADOR"}
	birthContextKeywords = []string{"NACIMIENTO", "NACIO", "NACIDO"}
)

const contextWindow = 50

// ResolveDate finds the requested date field in normalized text and returns
// it as an ISO YYYY-MM-DD string, or nil with low confidence when nothing
// plausible is found. Candidates that fail calendar validation are treated
// as non-matches, never as errors.
func ResolveDate(text string, target DateTarget) (*string, models.ConfidenceTier) {
	flat := flatten(text)

	patterns := birthDatePatterns
	if target == DateIssue {
		patterns = issueDatePatterns
	}

	for i, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(flat, -1) {
			if iso, ok := buildDate(m[1], m[2], m[3]); ok {
				return &iso, tierForRank(i, len(patterns))
			}
		}
	}

	// The whole-text fallback only disambiguates birth dates; an issue date
	// without its label stays null rather than guessing.
	if target == DateBirth {
		return fallbackBirthDate(flat)
	}
	return nil, models.ConfidenceLow
}

type dateCandidate struct {
	year, month, day int
	pos              int
	score            int // 2 near birth keyword, 1 year before 2010, 0 none
}

// fallbackBirthDate scans the entire text for every plausible date,
// excludes any candidate whose surrounding context mentions issuance, and
// ranks the rest: near-birth-keyword beats pre-2010 year beats nothing,
// then oldest year first. Older dates are statistically more likely to be
// birth dates than issue dates on a cédula; this is a documented heuristic
// tie-break, not a correctness guarantee.
func fallbackBirthDate(flat string) (*string, models.ConfidenceTier) {
	var candidates []dateCandidate

	for _, re := range genericDatePatterns {
		for _, idx := range re.FindAllStringSubmatchIndex(flat, -1) {
			day := flat[idx[2]:idx[3]]
			mon := flat[idx[4]:idx[5]]
			year := flat[idx[6]:idx[7]]

			y, mo, d, ok := parseDateParts(day, mon, year)
			if !ok {
				continue
			}

			ctx := contextAround(flat, idx[0], idx[1])
			if containsAny(ctx, issueContextKeywords) {
				continue
			}

			score := 0
			switch {
			case containsAny(ctx, birthContextKeywords):
				score = 2
			case y < 2010:
				score = 1
			}
			candidates = append(candidates, dateCandidate{y, mo, d, idx[0], score})
		}
	}

	if len(candidates) == 0 {
		return nil, models.ConfidenceLow
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].year != candidates[j].year {
			return candidates[i].year < candidates[j].year
		}
		return candidates[i].pos < candidates[j].pos
	})

	best := candidates[0]
	iso := fmt.Sprintf("%04d-%02d-%02d", best.year, best.month, best.day)
	tier := models.ConfidenceLow
	if best.score == 2 {
		tier = models.ConfidenceMedium
	}
	return &iso, tier
}

// buildDate parses and validates the three submatches of a date pattern,
// returning the ISO form when the triple is a real calendar date.
func buildDate(day, mon, year string) (string, bool) {
	y, m, d, ok := parseDateParts(day, mon, year)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d), true
}

func parseDateParts(day, mon, year string) (int, int, int, bool) {
	d, err := strconv.Atoi(day)
	if err != nil {
		return 0, 0, 0, false
	}

	m, ok := spanishMonths[mon]
	if !ok {
		m, err = strconv.Atoi(mon)
		if err != nil {
			return 0, 0, 0, false
		}
	}

	y, err := strconv.Atoi(year)
	if err != nil {
		return 0, 0, 0, false
	}
	if len(year) == 2 {
		// Two-digit year pivot: >50 is a 19xx date, otherwise 20xx.
		if y > 50 {
			y += 1900
		} else {
			y += 2000
		}
	}

	if !ValidDate(y, m, d) {
		return 0, 0, 0, false
	}
	return y, m, d, true
}

// ValidDate reports whether the triple is a real calendar date with year in
// [1900, current year], including the leap-year February 29 rule.
func ValidDate(year, month, day int) bool {
	if year < 1900 || year > time.Now().Year() {
		return false
	}
	if month < 1 || month > 12 {
		return false
	}
	if day < 1 || day > daysInMonth(month, year) {
		return false
	}
	return true
}

func daysInMonth(month, year int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if isLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 0
	}
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func contextAround(text string, start, end int) string {
	lo := start - contextWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + contextWindow
	if hi > len(text) {
		hi = len(text)
	}
	return text[lo:hi]
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
