package cedula

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"idtools/pkg/models"
)

func TestTierFromScore(t *testing.T) {
	tests := []struct {
		score    float32
		expected models.ConfidenceTier
	}{
		{100, models.ConfidenceHigh},
		{70, models.ConfidenceHigh},
		{69.9, models.ConfidenceMedium},
		{40, models.ConfidenceMedium},
		{39.9, models.ConfidenceLow},
		{0, models.ConfidenceLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, TierFromScore(tt.score), "score %v", tt.score)
	}
}

func TestTierForRank(t *testing.T) {
	tests := []struct {
		name     string
		index    int
		total    int
		expected models.ConfidenceTier
	}{
		{"first of six", 0, 6, models.ConfidenceHigh},
		{"second of six", 1, 6, models.ConfidenceHigh},
		{"third of six", 2, 6, models.ConfidenceMedium},
		{"fourth of six", 3, 6, models.ConfidenceLow},
		{"last of six", 5, 6, models.ConfidenceLow},
		{"first of seven", 0, 7, models.ConfidenceHigh},
		{"third of seven", 2, 7, models.ConfidenceMedium},
		{"fourth of seven", 3, 7, models.ConfidenceMedium},
		{"fifth of seven", 4, 7, models.ConfidenceLow},
		{"single pattern", 0, 1, models.ConfidenceHigh},
		{"degenerate total", 0, 0, models.ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tierForRank(tt.index, tt.total))
		})
	}
}
