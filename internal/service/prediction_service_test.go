package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/edupulse/dropout-risk-api/internal/cache"
	"github.com/edupulse/dropout-risk-api/internal/dto"
	"github.com/edupulse/dropout-risk-api/internal/models"
	"github.com/edupulse/dropout-risk-api/internal/record"
	"github.com/edupulse/dropout-risk-api/internal/repository"
)

type fakeStudentRepo struct {
	students map[string]models.Student
}

func (r *fakeStudentRepo) GetByRollNo(_ context.Context, rollNo string) (models.Student, error) {
	student, ok := r.students[rollNo]
	if !ok {
		return models.Student{}, repository.ErrStudentNotFound
	}
	return student, nil
}

func (r *fakeStudentRepo) List(context.Context) ([]models.Student, error) {
	out := make([]models.Student, 0, len(r.students))
	for _, st := range r.students {
		out = append(out, st)
	}
	return out, nil
}

func (r *fakeStudentRepo) Search(ctx context.Context, _ string) ([]models.Student, error) {
	return r.List(ctx)
}

func (r *fakeStudentRepo) Upsert(_ context.Context, student models.Student) error {
	r.students[student.RollNo] = student
	return nil
}

func (r *fakeStudentRepo) Count(context.Context) (int64, error) {
	return int64(len(r.students)), nil
}

type stubEngine struct {
	loaded bool
	report dto.RiskReport
	err    error
	calls  int
}

func (e *stubEngine) Loaded() bool { return e.loaded }

func (e *stubEngine) Predict(record.Record) (dto.RiskReport, error) {
	e.calls++
	if e.err != nil {
		return dto.RiskReport{}, e.err
	}
	return e.report, nil
}

func (e *stubEngine) ModelInfo() dto.ModelInfo {
	return dto.ModelInfo{Loaded: e.loaded, FeatureCount: 34, ModelType: "logistic_regression"}
}

type capturePublisher struct {
	published []dto.RiskReport
}

func (p *capturePublisher) PublishHighRisk(_ context.Context, report dto.RiskReport) {
	p.published = append(p.published, report)
}

type stubInsights struct {
	insight string
	err     error
}

func (g *stubInsights) Enabled() bool { return true }

func (g *stubInsights) Generate(context.Context, dto.RiskReport) (string, error) {
	return g.insight, g.err
}

func testCache(t *testing.T) (*cache.PredictionCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.New(client, 5*time.Minute, zerolog.Nop()), mr
}

func testRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: map[string]models.Student{
		"2023CS001": {
			RollNo: "2023CS001",
			Name:   "Rahul Sharma",
			Course: "B.Tech Computer Science",
			Year:   2,
			Metrics: datatypes.JSONMap{
				"attendance_percentage": 42.3,
			},
		},
	}}
}

func highReport(rollNo string) dto.RiskReport {
	return dto.RiskReport{
		StudentInfo:    dto.StudentInfo{Name: "Rahul Sharma", RollNo: rollNo},
		RiskLevel:      "HIGH",
		RiskPercentage: 82.5,
		Timestamp:      time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestPredictCachesAndAlerts(t *testing.T) {
	predictions, _ := testCache(t)
	engine := &stubEngine{loaded: true, report: highReport("2023CS001")}
	alerts := &capturePublisher{}
	svc := NewPredictionService(testRepo(), engine, predictions, alerts, nil, zerolog.Nop())

	report, err := svc.Predict(context.Background(), "2023CS001")
	require.NoError(t, err)
	require.Equal(t, "HIGH", report.RiskLevel)
	require.False(t, report.FromCache)
	require.Len(t, alerts.published, 1)
	require.Equal(t, 1, engine.calls)

	cached, err := svc.Predict(context.Background(), "2023CS001")
	require.NoError(t, err)
	require.True(t, cached.FromCache)
	require.Equal(t, report.RiskPercentage, cached.RiskPercentage)
	require.Equal(t, 1, engine.calls, "cache hit must not invoke the engine")
	require.Len(t, alerts.published, 1, "cache hit must not re-alert")
}

func TestPredictLowRiskDoesNotAlert(t *testing.T) {
	predictions, _ := testCache(t)
	low := highReport("2023CS001")
	low.RiskLevel = "LOW"
	low.RiskPercentage = 12.0
	alerts := &capturePublisher{}
	svc := NewPredictionService(testRepo(), &stubEngine{loaded: true, report: low}, predictions, alerts, nil, zerolog.Nop())

	_, err := svc.Predict(context.Background(), "2023CS001")
	require.NoError(t, err)
	require.Empty(t, alerts.published)
}

func TestPredictUnknownStudent(t *testing.T) {
	predictions, _ := testCache(t)
	svc := NewPredictionService(testRepo(), &stubEngine{loaded: true}, predictions, nil, nil, zerolog.Nop())

	_, err := svc.Predict(context.Background(), "NOPE")
	require.ErrorIs(t, err, repository.ErrStudentNotFound)
}

func TestPredictEngineErrorNotCached(t *testing.T) {
	predictions, _ := testCache(t)
	engine := &stubEngine{loaded: true, err: errors.New("scaler mismatch")}
	svc := NewPredictionService(testRepo(), engine, predictions, nil, nil, zerolog.Nop())

	_, err := svc.Predict(context.Background(), "2023CS001")
	require.Error(t, err)
	require.Zero(t, predictions.Size(context.Background()))
}

func TestPredictAttachesInsight(t *testing.T) {
	predictions, _ := testCache(t)
	engine := &stubEngine{loaded: true, report: highReport("2023CS001")}
	insights := &stubInsights{insight: "Attendance has dropped sharply this semester."}
	svc := NewPredictionService(testRepo(), engine, predictions, nil, insights, zerolog.Nop())

	report, err := svc.Predict(context.Background(), "2023CS001")
	require.NoError(t, err)
	require.Equal(t, insights.insight, report.Insight)

	cached, err := svc.Predict(context.Background(), "2023CS001")
	require.NoError(t, err)
	require.Equal(t, insights.insight, cached.Insight, "insight is cached with the report")
}

func TestPredictInsightFailureIsNonFatal(t *testing.T) {
	predictions, _ := testCache(t)
	engine := &stubEngine{loaded: true, report: highReport("2023CS001")}
	insights := &stubInsights{err: errors.New("upstream timeout")}
	svc := NewPredictionService(testRepo(), engine, predictions, nil, insights, zerolog.Nop())

	report, err := svc.Predict(context.Background(), "2023CS001")
	require.NoError(t, err)
	require.Empty(t, report.Insight)
}

func TestBatchPredictMixedOutcomes(t *testing.T) {
	predictions, _ := testCache(t)
	engine := &stubEngine{loaded: true, report: highReport("2023CS001")}
	svc := NewPredictionService(testRepo(), engine, predictions, nil, nil, zerolog.Nop())

	results := svc.BatchPredict(context.Background(), []string{"2023CS001", "MISSING"})
	require.Len(t, results, 2)

	require.True(t, results[0].Success)
	require.NotNil(t, results[0].Report)
	require.Equal(t, "2023CS001", results[0].RollNo)

	require.False(t, results[1].Success)
	require.Nil(t, results[1].Report)
	require.Contains(t, results[1].Message, "not found")
}

func TestStatus(t *testing.T) {
	predictions, _ := testCache(t)
	engine := &stubEngine{loaded: true, report: highReport("2023CS001")}
	svc := NewPredictionService(testRepo(), engine, predictions, nil, nil, zerolog.Nop())

	_, err := svc.Predict(context.Background(), "2023CS001")
	require.NoError(t, err)

	status := svc.Status(context.Background())
	require.True(t, status.ModelLoaded)
	require.Equal(t, int64(1), status.CacheEntries)
	require.Equal(t, "5m0s", status.CacheTTL)
	require.Equal(t, 34, status.ModelInfo.FeatureCount)
}

func TestClearCache(t *testing.T) {
	predictions, _ := testCache(t)
	engine := &stubEngine{loaded: true, report: highReport("2023CS001")}
	repo := testRepo()
	repo.students["2022EC045"] = models.Student{RollNo: "2022EC045", Name: "Priya Patel"}
	svc := NewPredictionService(repo, engine, predictions, nil, nil, zerolog.Nop())

	ctx := context.Background()
	_, err := svc.Predict(ctx, "2023CS001")
	require.NoError(t, err)
	_, err = svc.Predict(ctx, "2022EC045")
	require.NoError(t, err)

	removed, err := svc.ClearCache(ctx, "2023CS001")
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)
	require.Equal(t, int64(1), predictions.Size(ctx))

	removed, err = svc.ClearCache(ctx, "")
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)
	require.Zero(t, predictions.Size(ctx))
}
