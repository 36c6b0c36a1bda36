package prediction

import (
	"io"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/edupulse/dropout-risk-api/internal/record"
)

// engineWithProbability builds an engine whose classifier always reports the
// given dropout probability, regardless of input.
func engineWithProbability(t *testing.T, dropout float64) *Engine {
	t.Helper()

	names := testFeatureNames()
	n := len(names)
	scaler := &Scaler{Mean: make([]float64, n), Scale: make([]float64, n)}
	for i := range scaler.Scale {
		scaler.Scale[i] = 1
	}

	model := &logisticModel{
		Coefficients: make([]float64, n),
		Intercept:    math.Log(dropout / (1 - dropout)),
	}

	bundle := NewBundle(model, scaler, names, nil, nil)
	return NewEngine(bundle, DefaultThresholds, zerolog.New(io.Discard))
}

func TestPredictRefusesWhenBundleNotLoaded(t *testing.T) {
	bundle := &Bundle{}
	engine := NewEngine(bundle, DefaultThresholds, zerolog.New(io.Discard))

	_, err := engine.Predict(record.Record{})
	require.ErrorIs(t, err, ErrBundleNotLoaded)
}

func TestPredictBuildsCompleteReport(t *testing.T) {
	engine := engineWithProbability(t, 0.8)

	rec := highRiskRecord()
	rec["name"] = record.Str("Rahul Sharma")
	rec["roll_no"] = record.Str("2023CS001")
	rec["course"] = record.Str("B.Tech Computer Science")
	rec["year_string"] = record.Str("2nd Year")

	report, err := engine.Predict(rec)
	require.NoError(t, err)

	require.Equal(t, "Rahul Sharma", report.StudentInfo.Name)
	require.Equal(t, "2023CS001", report.StudentInfo.RollNo)
	require.Equal(t, "2nd Year", report.StudentInfo.Year)

	require.Equal(t, "HIGH", report.RiskLevel)
	require.InDelta(t, 80.0, report.RiskPercentage, 0.1)
	require.Len(t, report.RiskFactors, 5)
	require.NotEmpty(t, report.Recommendations)
	require.Equal(t, 0, report.Recommendations[0].ID)

	require.InDelta(t, 0.8, report.PredictionDetails.DropoutProbability, 0.0001)
	require.InDelta(t, 0.2, report.PredictionDetails.SafeProbability, 0.0001)
	require.InDelta(t, 80.0, report.PredictionDetails.ModelConfidence, 0.1)
	require.False(t, report.Timestamp.IsZero())
	require.False(t, report.FromCache)
}

func TestPredictEmptyRecordStillSucceeds(t *testing.T) {
	engine := engineWithProbability(t, 0.2)

	report, err := engine.Predict(record.Record{})
	require.NoError(t, err)

	require.Equal(t, "LOW", report.RiskLevel)
	require.Equal(t, "Unknown", report.StudentInfo.Name)
	require.Equal(t, "N/A", report.StudentInfo.RollNo)
	require.Equal(t, "Year N/A", report.StudentInfo.Year)
	require.Len(t, report.RiskFactors, 5)
}

func TestPredictYearFallsBackToNumericYear(t *testing.T) {
	engine := engineWithProbability(t, 0.2)

	report, err := engine.Predict(record.Record{"year": record.Num(2)})
	require.NoError(t, err)
	require.Equal(t, "Year 2", report.StudentInfo.Year)
}

func TestPredictDeterministicForSameRecord(t *testing.T) {
	engine := engineWithProbability(t, 0.55)
	rec := highRiskRecord()

	first, err := engine.Predict(rec)
	require.NoError(t, err)
	second, err := engine.Predict(rec)
	require.NoError(t, err)

	require.Equal(t, first.RiskPercentage, second.RiskPercentage)
	require.Equal(t, first.RiskFactors, second.RiskFactors)
	require.Equal(t, first.Recommendations, second.Recommendations)
}

func TestPredictSurfacesInferenceError(t *testing.T) {
	names := testFeatureNames()
	// Scaler fitted on a different width than the feature list.
	scaler := &Scaler{Mean: []float64{0}, Scale: []float64{1}}
	model := &logisticModel{Coefficients: make([]float64, len(names))}
	bundle := NewBundle(model, scaler, names, nil, nil)
	engine := NewEngine(bundle, DefaultThresholds, zerolog.New(io.Discard))

	_, err := engine.Predict(record.Record{})
	require.Error(t, err)

	var inferenceErr *InferenceError
	require.ErrorAs(t, err, &inferenceErr)
	require.Equal(t, "scaling", inferenceErr.Stage)
}

func TestModelInfo(t *testing.T) {
	engine := testEngine(t)

	info := engine.ModelInfo()
	require.True(t, info.Loaded)
	require.Equal(t, len(testFeatureNames()), info.FeatureCount)
	require.Equal(t, "LogisticRegression", info.ModelType)
	require.Equal(t, "v1", info.Metadata["trained_on"])
}
