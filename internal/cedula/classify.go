package cedula

import (
	"strings"

	"idtools/pkg/models"
)

// Keyword lists for side classification. Matching is substring containment
// over normalized (uppercased) text, so entries are spelled without accents
// the way OCR usually returns them.
var frontIndicators = []string{
	"REPUBLICA DE COLOMBIA",
	"CEDULA DE CIUDADANIA",
	"IDENTIFICACION PERSONAL",
	"APELLIDOS",
	"NOMBRES",
	"NUMERO",
	"NUIP",
}

var backIndicators = []string{
	"FECHA DE NACIMIENTO",
	"LUGAR DE NACIMIENTO",
	"FECHA Y LUGAR DE EXPEDICION",
	"EXPEDICION",
	"ESTATURA",
	"G.S. RH",
	"GRUPO SANGUINEO",
	"REGISTRADOR NACIONAL",
	"INDICE DERECHO",
	"BOGOTA",
	"MEDELLIN",
	"CALI",
	"BARRANQUILLA",
}

// ClassifyDocumentType decides whether normalized text is the front, back
// or both sides of a cédula. The thresholds are load-bearing: at least two
// hits on each list means full, at least two on a single list means that
// side, anything weaker is unknown. This is a deliberately coarse keyword
// heuristic; ties and near-misses land on unknown and the extractor then
// runs every strategy group as a best effort.
func ClassifyDocumentType(text string) models.DocumentType {
	front := countMatches(text, frontIndicators)
	back := countMatches(text, backIndicators)

	switch {
	case front >= 2 && back >= 2:
		return models.DocumentFull
	case front >= 2:
		return models.DocumentFront
	case back >= 2:
		return models.DocumentBack
	default:
		return models.DocumentUnknown
	}
}

func countMatches(text string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			count++
		}
	}
	return count
}
