package cedula

import (
	"regexp"
	"strings"
)

var (
	horizontalWS = regexp.MustCompile(`[ \t\f]+`)
	blankLines   = regexp.MustCompile(`\n{2,}`)
)

// Normalize prepares raw OCR text for pattern matching: uppercases,
// collapses CR/LF variants to a single \n, collapses runs of horizontal
// whitespace to one space and trims the result. It never fails; empty
// input yields an empty string.
func Normalize(raw string) string {
	text := strings.ToUpper(raw)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = horizontalWS.ReplaceAllString(text, " ")
	text = blankLines.ReplaceAllString(text, "\n")

	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// flatten replaces newlines with spaces so patterns can match across
// line breaks introduced by the OCR layout.
func flatten(text string) string {
	return strings.ReplaceAll(text, "\n", " ")
}
