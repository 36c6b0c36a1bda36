package prediction

import (
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/edupulse/dropout-risk-api/internal/dto"
	"github.com/edupulse/dropout-risk-api/internal/record"
)

// Engine is the dropout risk scoring engine. It owns the model bundle and the
// level thresholds explicitly; there is no process-global state. The bundle is
// read-only after construction, so an Engine is safe for concurrent use.
type Engine struct {
	bundle     *Bundle
	thresholds Thresholds
	logger     zerolog.Logger
	now        func() time.Time
}

// NewEngine builds an engine around a loaded (or not-loaded) bundle.
func NewEngine(bundle *Bundle, thresholds Thresholds, logger zerolog.Logger) *Engine {
	if thresholds.High == 0 && thresholds.Medium == 0 {
		thresholds = DefaultThresholds
	}

	return &Engine{
		bundle:     bundle,
		thresholds: thresholds,
		logger:     logger.With().Str("component", "risk_engine").Logger(),
		now:        time.Now,
	}
}

// Loaded reports whether the engine can score at all.
func (e *Engine) Loaded() bool { return e.bundle.Loaded() }

// Thresholds exposes the configured level cut points.
func (e *Engine) Thresholds() Thresholds { return e.thresholds }

// ModelInfo describes the underlying bundle.
func (e *Engine) ModelInfo() dto.ModelInfo {
	return dto.ModelInfo{
		Loaded:       e.bundle.Loaded(),
		FeatureCount: len(e.bundle.FeatureNames()),
		ModelType:    e.bundle.ModelName(),
		Metadata:     e.bundle.Metadata(),
	}
}

// Predict runs the full scoring pipeline over a raw student record: feature
// resolution, inference, rule-based decomposition, level classification, and
// recommendation derivation. It returns ErrBundleNotLoaded before any work
// when the bundle is incomplete and an *InferenceError when the classifier
// step fails; it never panics across this boundary.
func (e *Engine) Predict(rec record.Record) (dto.RiskReport, error) {
	if !e.bundle.Loaded() {
		return dto.RiskReport{}, ErrBundleNotLoaded
	}

	vector, notes := Resolve(rec, e.bundle)
	for _, note := range notes {
		e.logger.Debug().Str("feature", note.Feature).Str("kind", string(note.Kind)).Msg("feature resolved via fallback")
	}

	dropout, safe, err := e.bundle.infer(vector)
	if err != nil {
		return dto.RiskReport{}, err
	}

	riskPercentage := round1(dropout * 100)
	levelInfo := e.thresholds.Level(riskPercentage)
	factors := Decompose(rec)
	recommendations := e.Recommend(factors, riskPercentage)

	confidence := dropout
	if safe > confidence {
		confidence = safe
	}

	return dto.RiskReport{
		StudentInfo:     studentInfo(rec),
		RiskLevel:       levelInfo.Level,
		RiskLevelInfo:   levelInfo,
		RiskPercentage:  riskPercentage,
		RiskFactors:     factors,
		Recommendations: recommendations,
		PredictionDetails: dto.PredictionDetails{
			DropoutProbability: round4(dropout),
			SafeProbability:    round4(safe),
			ModelConfidence:    round1(confidence * 100),
		},
		Timestamp: e.now().UTC(),
	}, nil
}

func studentInfo(rec record.Record) dto.StudentInfo {
	rollNo := rec.TextOr("roll_no", rec.TextOr("student_id", "N/A"))

	year := rec.TextOr("year_string", "")
	if year == "" {
		year = "Year " + displayValue(rec.Get("year"))
	}

	return dto.StudentInfo{
		Name:   rec.TextOr("name", "Unknown"),
		RollNo: rollNo,
		Course: rec.TextOr("course", "N/A"),
		Year:   year,
	}
}

func displayValue(v record.Value) string {
	switch v.Kind() {
	case record.Text:
		return v.Text()
	case record.Number:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case record.Boolean:
		return strconv.FormatBool(v.IsTrue())
	default:
		return "N/A"
	}
}
