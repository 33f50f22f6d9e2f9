package cedula

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "uppercases input",
			input:    "cédula de ciudadanía",
			expected: "CÉDULA DE CIUDADANÍA",
		},
		{
			name:     "collapses CRLF to newline",
			input:    "APELLIDOS\r\nGARCIA",
			expected: "APELLIDOS\nGARCIA",
		},
		{
			name:     "collapses bare CR to newline",
			input:    "APELLIDOS\rGARCIA",
			expected: "APELLIDOS\nGARCIA",
		},
		{
			name:     "collapses horizontal whitespace runs",
			input:    "APELLIDOS \t  GARCIA",
			expected: "APELLIDOS GARCIA",
		},
		{
			name:     "collapses blank lines",
			input:    "APELLIDOS\n\n\nGARCIA",
			expected: "APELLIDOS\nGARCIA",
		},
		{
			name:     "trims every line and the ends",
			input:    "  NOMBRES  \n  JUAN  ",
			expected: "NOMBRES\nJUAN",
		},
		{
			name:     "empty input stays empty",
			input:    "",
			expected: "",
		},
		{
			name:     "whitespace-only input collapses to empty",
			input:    " \t\n  \r\n ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestFlatten(t *testing.T) {
	assert.Equal(t, "APELLIDOS GARCIA NOMBRES JUAN", flatten("APELLIDOS\nGARCIA\nNOMBRES\nJUAN"))
	assert.Equal(t, "SIN SALTOS", flatten("SIN SALTOS"))
}
