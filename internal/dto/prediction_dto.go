package dto

import "time"

// StudentInfo echoes the identity fields of the student a report belongs to.
// The values are presentation data and are not validated by the engine.
type StudentInfo struct {
	Name   string `json:"name"`
	RollNo string `json:"roll_no"`
	Course string `json:"course"`
	Year   string `json:"year"`
}

// RiskFactor is one ranked rule-based risk category with its share of the
// total explanatory score.
type RiskFactor struct {
	Category     string  `json:"category"`
	Name         string  `json:"name"`
	Icon         string  `json:"icon"`
	Description  string  `json:"description"`
	Contribution float64 `json:"contribution"`
	Score        float64 `json:"score"`
}

// Recommendation is one proposed intervention action.
type Recommendation struct {
	ID          int    `json:"id"`
	Priority    string `json:"priority"`
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Action      string `json:"action"`
}

// RiskLevelInfo carries the display attributes of a risk level.
type RiskLevelInfo struct {
	Level       string `json:"level"`
	Color       string `json:"color"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
}

// PredictionDetails exposes the raw classifier output behind a report.
type PredictionDetails struct {
	DropoutProbability float64 `json:"dropout_probability"`
	SafeProbability    float64 `json:"safe_probability"`
	ModelConfidence    float64 `json:"model_confidence"`
}

// RiskReport is the full explanation of a single dropout-risk prediction.
// It is constructed once per prediction and immutable afterward.
type RiskReport struct {
	StudentInfo       StudentInfo       `json:"student_info"`
	RiskLevel         string            `json:"risk_level"`
	RiskLevelInfo     RiskLevelInfo     `json:"risk_level_info"`
	RiskPercentage    float64           `json:"risk_percentage"`
	RiskFactors       []RiskFactor      `json:"risk_factors"`
	Recommendations   []Recommendation  `json:"recommendations"`
	PredictionDetails PredictionDetails `json:"prediction_details"`
	Insight           string            `json:"insight,omitempty"`
	Timestamp         time.Time         `json:"timestamp"`
	FromCache         bool              `json:"from_cache"`
}

// ModelInfo describes the loaded model bundle.
type ModelInfo struct {
	Loaded       bool           `json:"loaded"`
	FeatureCount int            `json:"feature_count"`
	ModelType    string         `json:"model_type"`
	Metadata     map[string]any `json:"metadata"`
}

// ServiceStatus reports prediction service health for operators.
type ServiceStatus struct {
	ModelLoaded  bool      `json:"model_loaded"`
	CacheEntries int64     `json:"cache_entries"`
	CacheTTL     string    `json:"cache_ttl"`
	ModelInfo    ModelInfo `json:"model_info"`
}

// BatchPredictRequest asks for predictions over a set of roll numbers.
type BatchPredictRequest struct {
	RollNumbers []string `json:"roll_numbers" validate:"required,min=1,max=100,dive,required"`
}

// BatchPredictResult is the per-student outcome of a batch prediction.
type BatchPredictResult struct {
	RollNo  string      `json:"roll_no"`
	Success bool        `json:"success"`
	Report  *RiskReport `json:"report,omitempty"`
	Message string      `json:"message,omitempty"`
}
