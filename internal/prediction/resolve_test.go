package prediction

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edupulse/dropout-risk-api/internal/record"
)

func testFeatureNames() []string {
	return []string{
		"Curricular units 1st sem (approved)",
		"Curricular units 2nd sem (grade)",
		"Age at enrollment",
		"attendance_percentage",
		"family_income",
		"Gender",
		"hostel_day_scholar",
		"distance_from_college_km",
	}
}

func testBundle(t *testing.T) *Bundle {
	t.Helper()

	names := testFeatureNames()
	n := len(names)
	scaler := &Scaler{Mean: make([]float64, n), Scale: make([]float64, n)}
	for i := range scaler.Scale {
		scaler.Scale[i] = 1
	}

	model := &logisticModel{Coefficients: make([]float64, n)}
	encoders := map[string]*LabelEncoder{
		"hostel_day_scholar": {Classes: []string{"Day Scholar", "Hostel"}},
	}

	return NewBundle(model, scaler, names, encoders, map[string]any{"trained_on": "v1"})
}

func TestResolveProducesFullNumericVector(t *testing.T) {
	bundle := testBundle(t)

	vector, _ := Resolve(record.Record{}, bundle)
	require.Len(t, vector, len(bundle.FeatureNames()))
	for i, value := range vector {
		require.False(t, math.IsNaN(value), "feature %d", i)
		require.False(t, math.IsInf(value, 0), "feature %d", i)
	}
}

func TestResolveAliasLookupWins(t *testing.T) {
	bundle := testBundle(t)

	rec := record.Record{
		"units_approved_sem1": record.Num(4),
		"age":                 record.Num(21),
	}

	vector, _ := Resolve(rec, bundle)
	require.Equal(t, 4.0, vector[0])
	require.Equal(t, 21.0, vector[2])
}

func TestResolveNormalizedKeyFallback(t *testing.T) {
	bundle := testBundle(t)

	// No alias points here, but the normalized feature name does.
	rec := record.Record{
		"curricular_units_1st_sem_approved": record.Num(6),
	}

	vector, _ := Resolve(rec, bundle)
	require.Equal(t, 6.0, vector[0])
}

func TestResolveDefaultPolicy(t *testing.T) {
	bundle := testBundle(t)

	rec := record.Record{
		"cgpa_current": record.Num(6.5),
	}

	vector, notes := Resolve(rec, bundle)

	// CGPA on the 10 scale doubles into the 20-scale grade.
	require.Equal(t, 13.0, vector[1])
	// Untouched features fall back to their named defaults.
	require.Equal(t, 5.0, vector[0])
	require.Equal(t, 18.0, vector[2])
	require.Equal(t, 75.0, vector[3])
	require.Equal(t, 500000.0, vector[4])
	require.Equal(t, 1.0, vector[5])
	require.Equal(t, 15.0, vector[7])

	defaulted := map[string]bool{}
	for _, note := range notes {
		if note.Kind == NoteDefaulted {
			defaulted[note.Feature] = true
		}
	}
	require.True(t, defaulted["attendance_percentage"])
	require.True(t, defaulted["family_income"])
}

func TestResolveGradeAboveTenNotDoubled(t *testing.T) {
	bundle := testBundle(t)

	rec := record.Record{"cgpa_semester2": record.Num(14)}
	vector, _ := Resolve(rec, bundle)
	require.Equal(t, 14.0, vector[1])
}

func TestResolveDistanceAliasFallback(t *testing.T) {
	bundle := testBundle(t)

	vector, _ := Resolve(record.Record{"distance_from_college": record.Num(45)}, bundle)
	require.Equal(t, 45.0, vector[7])

	vector, _ = Resolve(record.Record{"distance_from_college_km": record.Num(12)}, bundle)
	require.Equal(t, 12.0, vector[7])
}

func TestResolveHousingUsesEncoderOnRawValue(t *testing.T) {
	bundle := testBundle(t)

	vector, notes := Resolve(record.Record{"hostel_day_scholar": record.Str("Hostel")}, bundle)
	require.Equal(t, 1.0, vector[6])
	for _, note := range notes {
		require.NotEqual(t, NoteEncoderFallback, note.Kind)
	}
}

func TestResolveHousingEncoderFallbackOnUnseenLabel(t *testing.T) {
	bundle := testBundle(t)

	vector, notes := Resolve(record.Record{"hostel_day_scholar": record.Str("PG Accommodation")}, bundle)
	require.Equal(t, 0.0, vector[6])

	var fallback bool
	for _, note := range notes {
		if note.Kind == NoteEncoderFallback {
			fallback = true
		}
	}
	require.True(t, fallback)
}

func TestResolveHousingNumericBypassesEncoder(t *testing.T) {
	bundle := testBundle(t)

	vector, _ := Resolve(record.Record{"hostel_day_scholar": record.Num(1)}, bundle)
	require.Equal(t, 1.0, vector[6])
}

func TestResolveMissingHousingDefaultsToDayScholar(t *testing.T) {
	bundle := testBundle(t)

	vector, _ := Resolve(record.Record{}, bundle)
	require.Equal(t, 0.0, vector[6])
}
