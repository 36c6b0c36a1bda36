package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/edupulse/dropout-risk-api/internal/cache"
	"github.com/edupulse/dropout-risk-api/internal/dto"
	"github.com/edupulse/dropout-risk-api/internal/observability"
	"github.com/edupulse/dropout-risk-api/internal/record"
	"github.com/edupulse/dropout-risk-api/internal/repository"
)

// RiskEngine is the prediction pipeline the service orchestrates.
type RiskEngine interface {
	Loaded() bool
	Predict(rec record.Record) (dto.RiskReport, error)
	ModelInfo() dto.ModelInfo
}

// InsightGenerator produces an optional natural-language summary of a
// risk report. Implementations must be safe to skip.
type InsightGenerator interface {
	Enabled() bool
	Generate(ctx context.Context, report dto.RiskReport) (string, error)
}

// PredictionService ties together the student store, the risk engine, the
// prediction cache and the downstream alert channel.
type PredictionService interface {
	Predict(ctx context.Context, rollNo string) (dto.RiskReport, error)
	BatchPredict(ctx context.Context, rollNumbers []string) []dto.BatchPredictResult
	Status(ctx context.Context) dto.ServiceStatus
	ModelInfo() dto.ModelInfo
	ClearCache(ctx context.Context, rollNo string) (int64, error)
}

type predictionService struct {
	students repository.StudentRepository
	engine   RiskEngine
	cache    *cache.PredictionCache
	alerts   AlertPublisher
	insights InsightGenerator
	logger   zerolog.Logger
}

// NewPredictionService constructs the orchestrator. alerts and insights may
// be nil when the corresponding integration is not configured.
func NewPredictionService(
	students repository.StudentRepository,
	engine RiskEngine,
	predictions *cache.PredictionCache,
	alerts AlertPublisher,
	insights InsightGenerator,
	logger zerolog.Logger,
) PredictionService {
	return &predictionService{
		students: students,
		engine:   engine,
		cache:    predictions,
		alerts:   alerts,
		insights: insights,
		logger:   logger.With().Str("component", "prediction_service").Logger(),
	}
}

func (s *predictionService) Predict(ctx context.Context, rollNo string) (dto.RiskReport, error) {
	start := time.Now()

	if report, ok := s.cache.Get(ctx, rollNo); ok {
		observability.CacheLookups().WithLabelValues("hit").Inc()
		observability.Predictions().WithLabelValues("cached").Inc()
		return report, nil
	}
	observability.CacheLookups().WithLabelValues("miss").Inc()

	student, err := s.students.GetByRollNo(ctx, rollNo)
	if err != nil {
		observability.Predictions().WithLabelValues("not_found").Inc()
		return dto.RiskReport{}, err
	}

	report, err := s.engine.Predict(student.ToRecord())
	if err != nil {
		observability.InferenceFailures().Inc()
		observability.Predictions().WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Str("roll_no", rollNo).Msg("prediction failed")
		return dto.RiskReport{}, err
	}

	if s.insights != nil && s.insights.Enabled() {
		insight, err := s.insights.Generate(ctx, report)
		if err != nil {
			s.logger.Warn().Err(err).Str("roll_no", rollNo).Msg("insight generation failed")
		} else {
			report.Insight = insight
		}
	}

	if report.RiskLevel == "HIGH" && s.alerts != nil {
		s.alerts.PublishHighRisk(ctx, report)
		observability.HighRiskAlerts().Inc()
	}

	s.cache.Put(ctx, rollNo, report)

	observability.Predictions().WithLabelValues("success").Inc()
	observability.PredictionLatency().Observe(time.Since(start).Seconds())
	s.logger.Info().
		Str("roll_no", rollNo).
		Str("risk_level", report.RiskLevel).
		Float64("risk_percentage", report.RiskPercentage).
		Msg("prediction served")
	return report, nil
}

func (s *predictionService) BatchPredict(ctx context.Context, rollNumbers []string) []dto.BatchPredictResult {
	results := make([]dto.BatchPredictResult, 0, len(rollNumbers))
	for _, rollNo := range rollNumbers {
		report, err := s.Predict(ctx, rollNo)
		if err != nil {
			results = append(results, dto.BatchPredictResult{
				RollNo:  rollNo,
				Message: err.Error(),
			})
			continue
		}
		results = append(results, dto.BatchPredictResult{
			RollNo:  rollNo,
			Success: true,
			Report:  &report,
		})
	}
	return results
}

func (s *predictionService) Status(ctx context.Context) dto.ServiceStatus {
	return dto.ServiceStatus{
		ModelLoaded:  s.engine.Loaded(),
		CacheEntries: s.cache.Size(ctx),
		CacheTTL:     s.cache.TTL().String(),
		ModelInfo:    s.engine.ModelInfo(),
	}
}

func (s *predictionService) ModelInfo() dto.ModelInfo {
	return s.engine.ModelInfo()
}

// ClearCache drops the cached prediction for one student, or every cached
// prediction when rollNo is empty. It returns the number of entries removed.
func (s *predictionService) ClearCache(ctx context.Context, rollNo string) (int64, error) {
	if rollNo == "" {
		return s.cache.ClearAll(ctx)
	}
	if err := s.cache.Clear(ctx, rollNo); err != nil {
		return 0, err
	}
	return 1, nil
}
