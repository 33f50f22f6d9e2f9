package cedula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idtools/pkg/models"
)

func TestResolveBirthDate(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string // empty means no date expected
		tier     models.ConfidenceTier
	}{
		{
			name:     "full label with abbreviated month",
			text:     "FECHA DE NACIMIENTO 15 ABR 2004",
			expected: "2004-04-15",
			tier:     models.ConfidenceHigh,
		},
		{
			name:     "full label with dash separators",
			text:     "FECHA DE NACIMIENTO 01-ENE-1985",
			expected: "1985-01-01",
			tier:     models.ConfidenceHigh,
		},
		{
			name:     "abbreviated label with numeric month",
			text:     "FECHA NAC. 10/12/99",
			expected: "1999-12-10",
			tier:     models.ConfidenceHigh,
		},
		{
			name:     "two-digit year pivots to 2000s",
			text:     "FECHA DE NACIMIENTO 05/02/04",
			expected: "2004-02-05",
			tier:     models.ConfidenceHigh,
		},
		{
			name:     "two-digit year just past pivot stays in 1900s",
			text:     "FECHA DE NACIMIENTO 02/03/51",
			expected: "1951-03-02",
			tier:     models.ConfidenceHigh,
		},
		{
			name:     "full month name",
			text:     "FECHA DE NACIMIENTO 20 SEPTIEMBRE 1990",
			expected: "1990-09-20",
			tier:     models.ConfidenceHigh,
		},
		{
			name:     "NACIDO EL phrasing",
			text:     "NACIDO EL 05 FEB 2001",
			expected: "2001-02-05",
			tier:     models.ConfidenceLow,
		},
		{
			name:     "label near the date but not adjacent",
			text:     "NACIMIENTO BOGOTA 20-JUN-1995",
			expected: "1995-06-20",
			tier:     models.ConfidenceLow,
		},
		{
			name:     "leap day on a leap year is accepted",
			text:     "FECHA DE NACIMIENTO 29 FEB 2000",
			expected: "2000-02-29",
			tier:     models.ConfidenceHigh,
		},
		{
			name: "leap day on a century non-leap year is rejected",
			text: "FECHA DE NACIMIENTO 29 FEB 1900",
		},
		{
			name: "day overflow is rejected",
			text: "FECHA DE NACIMIENTO 31 ABR 2020",
		},
		{
			name: "no date present",
			text: "APELLIDOS GARCIA NOMBRES JUAN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, tier := ResolveDate(tt.text, DateBirth)
			if tt.expected == "" {
				assert.Nil(t, value)
				assert.Equal(t, models.ConfidenceLow, tier)
				return
			}
			require.NotNil(t, value)
			assert.Equal(t, tt.expected, *value)
			assert.Equal(t, tt.tier, tier)
		})
	}
}

func TestResolveIssueDate(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
		tier     models.ConfidenceTier
	}{
		{
			name:     "full label",
			text:     "FECHA Y LUGAR DE EXPEDICION 10-ENE-2022 BOGOTA D.C.",
			expected: "2022-01-10",
			tier:     models.ConfidenceHigh,
		},
		{
			name:     "short label",
			text:     "EXPEDICION 03-MAR-2015",
			expected: "2015-03-03",
			tier:     models.ConfidenceHigh,
		},
		{
			name:     "EXPEDIDA EL phrasing",
			text:     "EXPEDIDA EL 15 MAR 2018",
			expected: "2018-03-15",
			tier:     models.ConfidenceMedium,
		},
		{
			name: "unlabeled date stays null rather than guessing",
			text: "10-ENE-2015",
		},
		{
			name: "no date present",
			text: "REGISTRADOR NACIONAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, tier := ResolveDate(tt.text, DateIssue)
			if tt.expected == "" {
				assert.Nil(t, value)
				assert.Equal(t, models.ConfidenceLow, tier)
				return
			}
			require.NotNil(t, value)
			assert.Equal(t, tt.expected, *value)
			assert.Equal(t, tt.tier, tier)
		})
	}
}

func TestFallbackBirthDateSkipsIssuanceContext(t *testing.T) {
	// No birth label anywhere; the candidate near EXPEDICION must be
	// excluded and the older unlabeled date chosen at low confidence.
	text := "15-MAY-1990 DESPACHO SECCIONAL DE IDENTIFICACION REGISTRADURIA DELEGADA EXPEDICION 10-ENE-2015"

	value, tier := ResolveDate(text, DateBirth)

	require.NotNil(t, value)
	assert.Equal(t, "1990-05-15", *value)
	assert.Equal(t, models.ConfidenceLow, tier)
}

func TestFallbackBirthDateUsesNearbyBirthKeyword(t *testing.T) {
	// The label is too far from the date for any labeled pattern, but close
	// enough for the fallback's context window.
	text := "LUGAR DE NACIMIENTO BOGOTA DISTRITO CAPITAL COLOMBIA 12 MAR 1988"

	value, tier := ResolveDate(text, DateBirth)

	require.NotNil(t, value)
	assert.Equal(t, "1988-03-12", *value)
	assert.Equal(t, models.ConfidenceMedium, tier)
}

func TestFallbackBirthDatePrefersOldestYear(t *testing.T) {
	// Two unlabeled pre-2010 dates: the older one is the more plausible
	// birth date.
	text := "03-JUN-2005 ALGUN TEXTO INTERMEDIO SIN ETIQUETAS RELEVANTES AQUI 22-AGO-1979"

	value, tier := ResolveDate(text, DateBirth)

	require.NotNil(t, value)
	assert.Equal(t, "1979-08-22", *value)
	assert.Equal(t, models.ConfidenceLow, tier)
}

func TestValidDate(t *testing.T) {
	tests := []struct {
		name             string
		year, month, day int
		valid            bool
	}{
		{"regular date", 1985, 6, 15, true},
		{"leap day on leap year", 2000, 2, 29, true},
		{"leap day on divisible-by-four year", 2024, 2, 29, true},
		{"leap day on century year", 1900, 2, 29, false},
		{"April has 30 days", 2020, 4, 31, false},
		{"month out of range", 2020, 13, 1, false},
		{"day zero", 2020, 1, 0, false},
		{"year before 1900", 1899, 12, 31, false},
		{"future year", 2099, 1, 1, false},
		{"lower year bound", 1900, 1, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidDate(tt.year, tt.month, tt.day))
		})
	}
}
