package prediction

import "github.com/edupulse/dropout-risk-api/internal/dto"

// Thresholds configure the two risk-level cut points, in percent.
type Thresholds struct {
	High   float64
	Medium float64
}

// DefaultThresholds mirror the values the model was calibrated against.
var DefaultThresholds = Thresholds{High: 70, Medium: 40}

// Level classifies a risk percentage. It is a pure, monotonic function of its
// input against the configured thresholds.
func (t Thresholds) Level(riskPercentage float64) dto.RiskLevelInfo {
	switch {
	case riskPercentage >= t.High:
		return dto.RiskLevelInfo{
			Level:       "HIGH",
			Color:       "red",
			Emoji:       "🔴",
			Description: "Immediate intervention required",
		}
	case riskPercentage >= t.Medium:
		return dto.RiskLevelInfo{
			Level:       "MEDIUM",
			Color:       "orange",
			Emoji:       "🟡",
			Description: "Close monitoring recommended",
		}
	default:
		return dto.RiskLevelInfo{
			Level:       "LOW",
			Color:       "green",
			Emoji:       "🟢",
			Description: "Student appears to be on track",
		}
	}
}
