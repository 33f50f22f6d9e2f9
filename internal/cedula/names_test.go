package cedula

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idtools/pkg/models"
)

func runNameExtraction(t *testing.T, text string) (models.ExtractedFields, models.FieldConfidence) {
	t.Helper()
	fields := models.ExtractedFields{}
	conf := models.AllLow()
	ExtractNames(text, &fields, &conf)
	return fields, conf
}

func TestExtractNamesModernLayout(t *testing.T) {
	text := "APELLIDOS\nGARCIA LOPEZ\nNOMBRES\nPEDRO PABLO\nFECHA DE NACIMIENTO"

	fields, conf := runNameExtraction(t, text)

	require.NotNil(t, fields.FirstSurname)
	require.NotNil(t, fields.SecondSurname)
	require.NotNil(t, fields.FirstName)
	require.NotNil(t, fields.MiddleName)
	assert.Equal(t, "Garcia", *fields.FirstSurname)
	assert.Equal(t, "Lopez", *fields.SecondSurname)
	assert.Equal(t, "Pedro", *fields.FirstName)
	assert.Equal(t, "Pablo", *fields.MiddleName)
	assert.Equal(t, models.ConfidenceHigh, conf.FirstSurname)
	assert.Equal(t, models.ConfidenceHigh, conf.FirstName)
}

func TestExtractNamesLegacyRunLayout(t *testing.T) {
	// Values printed above their labels, as the pre-1993 layout reads.
	text := "14.237.880\nGARCIA LOPEZ\nAPELLIDOS\nPEDRO PABLO\nNOMBRES"

	fields, conf := runNameExtraction(t, text)

	require.NotNil(t, fields.FirstSurname)
	require.NotNil(t, fields.FirstName)
	assert.Equal(t, "Garcia", *fields.FirstSurname)
	assert.Equal(t, "Lopez", *fields.SecondSurname)
	assert.Equal(t, "Pedro", *fields.FirstName)
	assert.Equal(t, "Pablo", *fields.MiddleName)
	assert.Equal(t, models.ConfidenceHigh, conf.FirstSurname)
	assert.Equal(t, models.ConfidenceHigh, conf.MiddleName)
}

func TestExtractNamesColonLabels(t *testing.T) {
	text := "APELLIDOS: RODRIGUEZ\nNOMBRES: JUAN"

	fields, conf := runNameExtraction(t, text)

	require.NotNil(t, fields.FirstSurname)
	require.NotNil(t, fields.FirstName)
	assert.Equal(t, "Rodriguez", *fields.FirstSurname)
	assert.Equal(t, "Juan", *fields.FirstName)
	assert.Nil(t, fields.SecondSurname)
	assert.Nil(t, fields.MiddleName)
	assert.Equal(t, models.ConfidenceHigh, conf.FirstSurname)
}

func TestExtractNamesLooseFallback(t *testing.T) {
	// Only one label present anywhere, no recognizable structure.
	text := "RUIDO OCR\nNOMBRES MARIA FERNANDA\nMAS RUIDO"

	fields, conf := runNameExtraction(t, text)

	require.NotNil(t, fields.FirstName)
	require.NotNil(t, fields.MiddleName)
	assert.Equal(t, "Maria", *fields.FirstName)
	assert.Equal(t, "Fernanda", *fields.MiddleName)
	assert.Nil(t, fields.FirstSurname)
	assert.Equal(t, models.ConfidenceMedium, conf.FirstName)
	assert.Equal(t, models.ConfidenceMedium, conf.MiddleName)
}

func TestExtractNamesNothingFound(t *testing.T) {
	fields, conf := runNameExtraction(t, "FECHA DE NACIMIENTO 15-ABR-2004")

	assert.Nil(t, fields.FirstSurname)
	assert.Nil(t, fields.SecondSurname)
	assert.Nil(t, fields.FirstName)
	assert.Nil(t, fields.MiddleName)
	assert.Equal(t, models.ConfidenceLow, conf.FirstName)
}

func TestCleanNameTokens(t *testing.T) {
	tests := []struct {
		name     string
		span     string
		expected []string
	}{
		{
			name:     "keeps at most two tokens",
			span:     "GARCIA LOPEZ TORRES",
			expected: []string{"Garcia", "Lopez"},
		},
		{
			name:     "stopword ends the span",
			span:     "JOSE FECHA GARCIA",
			expected: []string{"Jose"},
		},
		{
			name:     "single-character artifacts are dropped",
			span:     "A GARCIA",
			expected: []string{"Garcia"},
		},
		{
			name:     "tokens with digits are dropped",
			span:     "G4RCIA LOPEZ",
			expected: []string{"Lopez"},
		},
		{
			name:     "accented letters survive",
			span:     "PEÑA MUÑOZ",
			expected: []string{"Peña", "Muñoz"},
		},
		{
			name:     "empty span yields nothing",
			span:     "   ",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanNameTokens(tt.span))
		})
	}
}

func ExampleCapitalize() {
	fmt.Println(Capitalize("GARCIA"))
	fmt.Println(Capitalize("ÑUSTES"))
	// Output:
	// Garcia
	// Ñustes
}
