package prediction

import (
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/edupulse/dropout-risk-api/internal/dto"
)

func rankedFactors(categories ...string) []dto.RiskFactor {
	factors := make([]dto.RiskFactor, 0, len(categories))
	for i, category := range categories {
		factors = append(factors, dto.RiskFactor{
			Category:     category,
			Contribution: float64(50 - i*10),
		})
	}
	return factors
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(testBundle(t), DefaultThresholds, zerolog.New(io.Discard))
}

func TestRecommendTopThreeCategoriesInCatalogOrder(t *testing.T) {
	engine := testEngine(t)

	recs := engine.Recommend(rankedFactors(categoryFinancial, categoryAcademic, categoryMental, categoryAttendance, categoryEngagement), 50)

	require.Len(t, recs, 5)
	require.Equal(t, []int{5, 6, 1, 2, 7}, idsOf(recs))
}

func TestRecommendUrgentPrependedAtHighRisk(t *testing.T) {
	engine := testEngine(t)

	recs := engine.Recommend(rankedFactors(categoryAcademic, categoryAttendance, categoryEngagement), 82)

	require.Len(t, recs, 5)
	require.Equal(t, 0, recs[0].ID)
	require.Equal(t, "urgent", recs[0].Priority)
	require.Equal(t, []int{0, 1, 2, 3, 4}, idsOf(recs))
}

func TestRecommendNoUrgentBelowHighThreshold(t *testing.T) {
	engine := testEngine(t)

	recs := engine.Recommend(rankedFactors(categoryAcademic, categoryAttendance, categoryEngagement), 69.9)
	for _, rec := range recs {
		require.NotEqual(t, 0, rec.ID)
	}
}

func TestRecommendCapAndUniqueness(t *testing.T) {
	engine := testEngine(t)

	recs := engine.Recommend(rankedFactors(categoryAcademic, categoryAttendance, categoryFinancial, categoryMental, categoryEngagement), 95)
	require.LessOrEqual(t, len(recs), 5)

	seen := map[int]bool{}
	for _, rec := range recs {
		require.False(t, seen[rec.ID], "duplicate action id %d", rec.ID)
		seen[rec.ID] = true
	}
}

func TestRecommendFewerThanThreeFactors(t *testing.T) {
	engine := testEngine(t)

	recs := engine.Recommend(rankedFactors(categoryEngagement), 10)
	require.Equal(t, []int{9, 10}, idsOf(recs))
}

func idsOf(recs []dto.Recommendation) []int {
	ids := make([]int, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.ID)
	}
	return ids
}
