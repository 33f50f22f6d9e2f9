package cedula

import "idtools/pkg/models"

// Numeric-to-tier thresholds for upstream sources that report a 0-100
// confidence score instead of a pattern rank.
const (
	scoreHighMin   = 70
	scoreMediumMin = 40
)

// TierFromScore maps a 0-100 numeric confidence to the three-tier scale:
// >=70 high, >=40 medium, otherwise low.
func TierFromScore(score float32) models.ConfidenceTier {
	switch {
	case score >= scoreHighMin:
		return models.ConfidenceHigh
	case score >= scoreMediumMin:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// tierForRank assigns a tier from a pattern's position in an ordered list:
// first quartile high, second quartile medium, remainder low.
func tierForRank(index, total int) models.ConfidenceTier {
	if total <= 0 {
		return models.ConfidenceLow
	}
	switch {
	case index < (total+3)/4:
		return models.ConfidenceHigh
	case index < (total+1)/2:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}
