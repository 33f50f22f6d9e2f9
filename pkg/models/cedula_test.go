package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfidenceTierRank(t *testing.T) {
	assert.Greater(t, ConfidenceHigh.Rank(), ConfidenceMedium.Rank())
	assert.Greater(t, ConfidenceMedium.Rank(), ConfidenceLow.Rank())
	assert.Greater(t, ConfidenceLow.Rank(), ConfidenceTier("").Rank())
}

func TestAllLow(t *testing.T) {
	conf := AllLow()
	assert.Equal(t, ConfidenceLow, conf.DocumentNumber)
	assert.Equal(t, ConfidenceLow, conf.FirstName)
	assert.Equal(t, ConfidenceLow, conf.MiddleName)
	assert.Equal(t, ConfidenceLow, conf.FirstSurname)
	assert.Equal(t, ConfidenceLow, conf.SecondSurname)
	assert.Equal(t, ConfidenceLow, conf.BirthDate)
	assert.Equal(t, ConfidenceLow, conf.IssueDate)
}

func TestExtractionResultJSONShape(t *testing.T) {
	number := "79456123"
	result := ExtractionResult{
		Success:      true,
		Fields:       ExtractedFields{DocumentNumber: &number},
		Confidence:   AllLow(),
		DocumentType: DocumentFront,
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Contains(t, decoded, "success")
	assert.Contains(t, decoded, "fields")
	assert.Contains(t, decoded, "confidence")
	assert.Contains(t, decoded, "documentType")
	// Score is strictly a merge tie-break input and stays off the wire
	// when absent.
	assert.NotContains(t, decoded, "score")

	fields, ok := decoded["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "79456123", fields["numero_documento"])
	assert.Nil(t, fields["primer_nombre"])
}
