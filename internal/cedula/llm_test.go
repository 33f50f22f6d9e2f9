package cedula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idtools/pkg/models"
)

func TestParseLLMResponse(t *testing.T) {
	t.Run("plain JSON with numeric confidence", func(t *testing.T) {
		parsed, err := parseLLMResponse(`{
			"numero_documento": "79456123",
			"primer_nombre": "PEDRO",
			"segundo_nombre": null,
			"primer_apellido": "GARCIA",
			"segundo_apellido": "LOPEZ",
			"fecha_nacimiento": "2004-04-15",
			"fecha_expedicion": null,
			"confidence": 85
		}`)

		require.NoError(t, err)
		assert.Equal(t, "79456123", parsed.DocumentNumber)
		assert.Equal(t, "PEDRO", parsed.FirstName)
		assert.Equal(t, "", parsed.MiddleName)
		assert.Equal(t, "GARCIA", parsed.FirstSurname)
		assert.Equal(t, "2004-04-15", parsed.BirthDate)
		assert.Equal(t, "85", parsed.Confidence)
	})

	t.Run("code fence with quoted confidence", func(t *testing.T) {
		parsed, err := parseLLMResponse("```json\n{\"primer_nombre\": \"MARIA\", \"confidence\": \"72\"}\n```")

		require.NoError(t, err)
		assert.Equal(t, "MARIA", parsed.FirstName)
		assert.Equal(t, "72", parsed.Confidence)
	})

	t.Run("missing confidence defaults to 50", func(t *testing.T) {
		parsed, err := parseLLMResponse(`{"primer_nombre": "MARIA"}`)

		require.NoError(t, err)
		assert.Equal(t, "50", parsed.Confidence)
	})

	t.Run("invalid JSON is an error", func(t *testing.T) {
		_, err := parseLLMResponse("el documento pertenece a Pedro Garcia")

		assert.Error(t, err)
	})
}

func TestLLMBuildResult(t *testing.T) {
	e := NewLLMExtractorWithDeps(nil, DefaultLLMConfig())

	t.Run("maps score to tier and capitalizes names", func(t *testing.T) {
		result := e.buildResult(&llmResponse{
			DocumentNumber: "79456123",
			FirstName:      "PEDRO",
			FirstSurname:   "GARCIA",
			BirthDate:      "2004-04-15",
			Confidence:     "85",
		})

		assert.True(t, result.Success)
		require.NotNil(t, result.Score)
		assert.Equal(t, float32(85), *result.Score)

		require.NotNil(t, result.Fields.FirstName)
		assert.Equal(t, "Pedro", *result.Fields.FirstName)
		require.NotNil(t, result.Fields.DocumentNumber)
		assert.Equal(t, "79456123", *result.Fields.DocumentNumber)
		assert.Equal(t, models.ConfidenceHigh, result.Confidence.FirstName)
		assert.Equal(t, models.ConfidenceHigh, result.Confidence.DocumentNumber)
	})

	t.Run("literal null and empty values stay absent", func(t *testing.T) {
		result := e.buildResult(&llmResponse{
			FirstName:  "MARIA",
			MiddleName: "null",
			Confidence: "45",
		})

		assert.True(t, result.Success)
		assert.Nil(t, result.Fields.MiddleName)
		assert.Nil(t, result.Fields.DocumentNumber)
		require.NotNil(t, result.Fields.FirstName)
		assert.Equal(t, models.ConfidenceMedium, result.Confidence.FirstName)
	})

	t.Run("unparseable confidence falls back to 50", func(t *testing.T) {
		result := e.buildResult(&llmResponse{
			FirstName:  "MARIA",
			Confidence: "alta",
		})

		require.NotNil(t, result.Score)
		assert.Equal(t, float32(50), *result.Score)
		assert.Equal(t, models.ConfidenceMedium, result.Confidence.FirstName)
	})

	t.Run("nothing extracted is not a success", func(t *testing.T) {
		result := e.buildResult(&llmResponse{Confidence: "90"})

		assert.False(t, result.Success)
	})
}
