package prediction

import (
	"strconv"
	"strings"

	"github.com/edupulse/dropout-risk-api/internal/record"
)

// String vocabularies used by Coerce, checked in declaration order. The order
// is a contract: "1" belongs to the gender vocabulary and therefore resolves
// through the gender rule, not the boolean rule. Fixtures depend on this.
var (
	genderMale    = []string{"male", "m", "1"}
	genderFemale  = []string{"female", "f", "0"}
	boolTrue      = []string{"true", "yes", "1"}
	boolFalse     = []string{"false", "no", "0"}
	housingHostel = []string{"hostel", "hosteler"}
	housingDay    = []string{"day scholar", "day-scholar", "dayscholar"}
)

// Coerce converts a raw record value into the numeric form the feature vector
// requires. It is total: every input maps to a float, unknown strings to 0.
func Coerce(v record.Value, featureName string) float64 {
	switch v.Kind() {
	case record.Number:
		return v.Float()
	case record.Absent:
		return 0
	case record.Boolean:
		if v.IsTrue() {
			return 1
		}
		return 0
	case record.Text:
		return coerceText(v.Text())
	}
	return 0
}

func coerceText(s string) float64 {
	normalized := strings.ToLower(strings.TrimSpace(s))

	switch {
	case contains(genderMale, normalized):
		return 1
	case contains(genderFemale, normalized):
		return 0
	case contains(boolTrue, normalized):
		return 1
	case contains(boolFalse, normalized):
		return 0
	case contains(housingHostel, normalized):
		return 1
	case contains(housingDay, normalized):
		return 0
	}

	if parsed, err := strconv.ParseFloat(normalized, 64); err == nil {
		return parsed
	}
	return 0
}

func contains(vocabulary []string, value string) bool {
	for _, entry := range vocabulary {
		if entry == value {
			return true
		}
	}
	return false
}
