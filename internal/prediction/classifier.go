package prediction

import (
	"fmt"
	"math"
)

// Classifier is the opaque trained predictor. It consumes a scaled feature
// vector and returns the class probability pair [P(safe), P(dropout)].
type Classifier interface {
	PredictProba(features []float64) ([2]float64, error)
	Name() string
}

// Scaler applies the standardizing transform fitted at training time.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Transform standardizes the vector column-wise. The input is left untouched.
func (s *Scaler) Transform(features []float64) ([]float64, error) {
	if len(features) != len(s.Mean) || len(features) != len(s.Scale) {
		return nil, fmt.Errorf("scaler expects %d features, got %d", len(s.Mean), len(features))
	}

	scaled := make([]float64, len(features))
	for i, value := range features {
		divisor := s.Scale[i]
		if divisor == 0 {
			divisor = 1
		}
		scaled[i] = (value - s.Mean[i]) / divisor
	}
	return scaled, nil
}

// logisticModel is a binary logistic regression exported from the training
// pipeline as plain coefficients.
type logisticModel struct {
	ModelType    string    `json:"model_type"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

func (m *logisticModel) Name() string {
	if m.ModelType == "" {
		return "LogisticRegression"
	}
	return m.ModelType
}

func (m *logisticModel) PredictProba(features []float64) ([2]float64, error) {
	if len(features) != len(m.Coefficients) {
		return [2]float64{}, fmt.Errorf("classifier expects %d features, got %d", len(m.Coefficients), len(features))
	}

	logit := m.Intercept
	for i, value := range features {
		logit += m.Coefficients[i] * value
	}

	dropout := 1 / (1 + math.Exp(-logit))
	if math.IsNaN(dropout) || math.IsInf(dropout, 0) {
		return [2]float64{}, fmt.Errorf("classifier produced a non-finite probability")
	}

	return [2]float64{1 - dropout, dropout}, nil
}

// InferenceError wraps a failure inside the scale-and-classify step. It is
// surfaced to the caller, never silently defaulted.
type InferenceError struct {
	Stage string
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed during %s: %v", e.Stage, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// infer scales the pre-scaling vector and invokes the classifier, returning
// the dropout and safe probabilities.
func (b *Bundle) infer(features []float64) (dropout, safe float64, err error) {
	if !b.Loaded() {
		return 0, 0, ErrBundleNotLoaded
	}

	scaled, err := b.scaler.Transform(features)
	if err != nil {
		return 0, 0, &InferenceError{Stage: "scaling", Err: err}
	}

	proba, err := b.classifier.PredictProba(scaled)
	if err != nil {
		return 0, 0, &InferenceError{Stage: "classification", Err: err}
	}

	return proba[1], proba[0], nil
}
