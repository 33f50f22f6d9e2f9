package cedula

import (
	"idtools/pkg/models"
)

// mergeField wires one ExtractedFields member to its confidence slot so the
// merger can treat all seven fields uniformly without reflection.
type mergeField struct {
	name   string
	isName bool // name-category fields get capitalized on the way out
	value  func(*models.ExtractedFields) **string
	tier   func(*models.FieldConfidence) *models.ConfidenceTier
}

var mergeFields = []mergeField{
	{"numero_documento", false,
		func(f *models.ExtractedFields) **string { return &f.DocumentNumber },
		func(c *models.FieldConfidence) *models.ConfidenceTier { return &c.DocumentNumber }},
	{"primer_nombre", true,
		func(f *models.ExtractedFields) **string { return &f.FirstName },
		func(c *models.FieldConfidence) *models.ConfidenceTier { return &c.FirstName }},
	{"segundo_nombre", true,
		func(f *models.ExtractedFields) **string { return &f.MiddleName },
		func(c *models.FieldConfidence) *models.ConfidenceTier { return &c.MiddleName }},
	{"primer_apellido", true,
		func(f *models.ExtractedFields) **string { return &f.FirstSurname },
		func(c *models.FieldConfidence) *models.ConfidenceTier { return &c.FirstSurname }},
	{"segundo_apellido", true,
		func(f *models.ExtractedFields) **string { return &f.SecondSurname },
		func(c *models.FieldConfidence) *models.ConfidenceTier { return &c.SecondSurname }},
	{"fecha_nacimiento", false,
		func(f *models.ExtractedFields) **string { return &f.BirthDate },
		func(c *models.FieldConfidence) *models.ConfidenceTier { return &c.BirthDate }},
	{"fecha_expedicion", false,
		func(f *models.ExtractedFields) **string { return &f.IssueDate },
		func(c *models.FieldConfidence) *models.ConfidenceTier { return &c.IssueDate }},
}

// mergeCandidate is one (field, source) pair during merging.
type mergeCandidate struct {
	value string
	tier  models.ConfidenceTier
	score *float32
	src   int
}

// Merge combines per-image extraction results into one final record,
// field by field. For each field the highest confidence tier wins; on a
// tier tie the higher numeric score wins when both sources carry one; on a
// full tie the earliest source wins. The first-source rule is a stable,
// documented tie-break: merging the same inputs always yields the same
// output. Merging a single result is a no-op.
func Merge(results []models.ExtractionResult) models.ExtractionResult {
	switch len(results) {
	case 0:
		return models.ExtractionResult{
			Confidence:   models.AllLow(),
			DocumentType: models.DocumentUnknown,
		}
	case 1:
		return results[0]
	}

	merged := models.ExtractionResult{
		Confidence:   models.AllLow(),
		DocumentType: mergeDocumentType(results),
	}

	for _, field := range mergeFields {
		winner := pickWinner(collectCandidates(results, field))
		if winner == nil {
			continue
		}
		value := winner.value
		if field.isName {
			value = Capitalize(value)
		}
		*field.value(&merged.Fields) = &value
		*field.tier(&merged.Confidence) = winner.tier
	}

	merged.Success = anyFieldSet(merged.Fields)
	return merged
}

func collectCandidates(results []models.ExtractionResult, field mergeField) []mergeCandidate {
	var candidates []mergeCandidate
	for i := range results {
		val := *field.value(&results[i].Fields)
		if val == nil {
			continue
		}
		candidates = append(candidates, mergeCandidate{
			value: *val,
			tier:  *field.tier(&results[i].Confidence),
			score: results[i].Score,
			src:   i,
		})
	}
	return candidates
}

// pickWinner resolves conflicting candidates. Candidates arrive in source
// order, so keeping the incumbent on a full tie realizes the deterministic
// first-source rule.
func pickWinner(candidates []mergeCandidate) *mergeCandidate {
	if len(candidates) == 0 {
		return nil
	}
	winner := candidates[0]
	for _, c := range candidates[1:] {
		switch {
		case c.tier.Rank() > winner.tier.Rank():
			winner = c
		case c.tier.Rank() == winner.tier.Rank() &&
			c.score != nil && winner.score != nil && *c.score > *winner.score:
			winner = c
		}
	}
	return &winner
}

// mergeDocumentType prefers the front-derived classification: the number
// and name fields originate on the front, so a front (or full) result is
// authoritative when sources disagree. Preference order is full, front,
// back, unknown, first source winning ties.
func mergeDocumentType(results []models.ExtractionResult) models.DocumentType {
	best := models.DocumentUnknown
	bestRank := docTypeRank(best)
	for _, r := range results {
		if rank := docTypeRank(r.DocumentType); rank > bestRank {
			best = r.DocumentType
			bestRank = rank
		}
	}
	return best
}

func docTypeRank(t models.DocumentType) int {
	switch t {
	case models.DocumentFull:
		return 4
	case models.DocumentFront:
		return 3
	case models.DocumentBack:
		return 2
	default:
		return 1
	}
}
