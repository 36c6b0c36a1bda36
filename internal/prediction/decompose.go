package prediction

import (
	"math"
	"sort"
	"strings"

	"github.com/edupulse/dropout-risk-api/internal/dto"
	"github.com/edupulse/dropout-risk-api/internal/record"
)

// Risk categories in fixed order. The order doubles as the stable tiebreak
// when two categories contribute equally.
const (
	categoryAcademic   = "academic_decline"
	categoryAttendance = "low_attendance"
	categoryFinancial  = "financial_stress"
	categoryMental     = "mental_health"
	categoryEngagement = "low_engagement"
)

var categoryOrder = []string{
	categoryAcademic,
	categoryAttendance,
	categoryFinancial,
	categoryMental,
	categoryEngagement,
}

type factorInfo struct {
	name        string
	icon        string
	description string
}

var factorCatalog = map[string]factorInfo{
	categoryAcademic:   {"Academic Decline", "📚", "Declining grades and poor academic performance"},
	categoryAttendance: {"Low Attendance", "📅", "Irregular class attendance and LMS activity"},
	categoryFinancial:  {"Financial Stress", "💰", "Fee payment delays and financial difficulties"},
	categoryMental:     {"Mental Health Concern", "🧠", "Counselor visits indicating stress or personal issues"},
	categoryEngagement: {"Low Engagement", "📉", "Lack of participation in activities and resources"},
}

// Decompose computes the five rule-based category scores directly from the raw
// record and normalizes them into ranked percentage contributions. It is a
// parallel explanation layer, deliberately independent of the classifier.
func Decompose(rec record.Record) []dto.RiskFactor {
	scores := map[string]float64{
		categoryAcademic:   academicScore(rec),
		categoryAttendance: attendanceScore(rec),
		categoryFinancial:  financialScore(rec),
		categoryMental:     mentalHealthScore(rec),
		categoryEngagement: engagementScore(rec),
	}

	var total float64
	for _, score := range scores {
		total += score
	}

	factors := make([]dto.RiskFactor, 0, len(categoryOrder))
	for _, category := range categoryOrder {
		contribution := 20.0
		if total > 0 {
			contribution = scores[category] / total * 100
		}
		info := factorCatalog[category]
		factors = append(factors, dto.RiskFactor{
			Category:     category,
			Name:         info.name,
			Icon:         info.icon,
			Description:  info.description,
			Contribution: contribution,
			Score:        scores[category],
		})
	}

	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].Contribution > factors[j].Contribution
	})

	for i := range factors {
		factors[i].Contribution = round1(factors[i].Contribution)
		factors[i].Score = round2(factors[i].Score)
	}

	return factors
}

func academicScore(rec record.Record) float64 {
	var score float64

	submissionRate := numField(rec, "assignment_submission_rate", 50)
	switch {
	case submissionRate < 40:
		score += 3
	case submissionRate < 60:
		score += 2
	case submissionRate < 80:
		score += 1
	}

	cgpaCurrent := numField(rec, "cgpa_current", 7)
	cgpaPrevious := numField(rec, "cgpa_previous", 7)
	if cgpaCurrent < cgpaPrevious {
		decline := cgpaPrevious - cgpaCurrent
		switch {
		case decline > 2:
			score += 3
		case decline > 1:
			score += 2
		default:
			score += 1
		}
	}

	switch {
	case cgpaCurrent < 5:
		score += 3
	case cgpaCurrent < 6:
		score += 2
	case cgpaCurrent < 7:
		score += 1
	}

	unitsApproved := chainNumField(rec, 5, "units_approved_sem2", "units_approved_sem1")
	unitsEnrolled := chainNumField(rec, 6, "units_enrolled_sem2", "units_enrolled_sem1")
	if unitsEnrolled > 0 {
		approvalRate := unitsApproved / unitsEnrolled
		switch {
		case approvalRate < 0.5:
			score += 3
		case approvalRate < 0.7:
			score += 2
		case approvalRate < 0.9:
			score += 1
		}
	}

	return score
}

func attendanceScore(rec record.Record) float64 {
	var score float64

	attendance := numField(rec, "attendance_percentage", 75)
	switch {
	case attendance < 40:
		score += 4
	case attendance < 50:
		score += 3
	case attendance < 65:
		score += 2
	case attendance < 75:
		score += 1
	}

	lmsDays := numField(rec, "lms_last_login_days", 1)
	switch {
	case lmsDays > 30:
		score += 3
	case lmsDays > 14:
		score += 2
	case lmsDays > 7:
		score += 1
	}

	return score
}

func financialScore(rec record.Record) float64 {
	var score float64

	delay := numField(rec, "fee_payment_delay_months", 0)
	switch {
	case delay > 3:
		score += 4
	case delay > 2:
		score += 3
	case delay > 1:
		score += 2
	case delay > 0:
		score += 1
	}

	if isAffirmative(rec.Get("debtor")) {
		score += 2
	}

	if isNegative(rec.Get("tuition_fees_up_to_date")) {
		score += 2
	}

	income := numField(rec, "family_income", 500000)
	switch {
	case income < 200000:
		score += 2
	case income < 300000:
		score += 1
	}

	// Low income without a scholarship stacks one more point on top of the
	// income band.
	scholarship, present := rec["scholarship_holder"]
	if income < 300000 && (!present || isNegative(scholarship)) {
		score += 1
	}

	return score
}

func mentalHealthScore(rec record.Record) float64 {
	var score float64

	visits := numField(rec, "counselor_visits", 0)
	switch {
	case visits > 4:
		score += 4
	case visits > 2:
		score += 3
	case visits > 1:
		score += 2
	case visits > 0:
		score += 1
	}

	reason := strings.ToLower(rec.TextOr("counselor_visit_reason", ""))
	if reason == "stress" || reason == "personal" {
		score++
	}

	return score
}

func engagementScore(rec record.Record) float64 {
	var score float64

	library := numField(rec, "library_visits_monthly", 0)
	switch {
	case library == 0:
		score += 2
	case library < 2:
		score += 1
	}

	extracurricular, present := rec["extracurricular_participation"]
	if !present || isNegative(extracurricular) {
		score += 2
	}

	// LMS staleness also counts toward attendance; both categories care about
	// it and the double counting is part of the scoring contract.
	lmsDays := numField(rec, "lms_last_login_days", 1)
	switch {
	case lmsDays > 14:
		score += 2
	case lmsDays > 7:
		score += 1
	}

	return score
}

// numField reads a numeric field from the record through the value coercer,
// falling back to the named default when the field is missing or null.
func numField(rec record.Record, key string, def float64) float64 {
	v, ok := rec[key]
	if !ok || v.IsAbsent() {
		return def
	}
	return Coerce(v, key)
}

// chainNumField tries keys in order; the first present key wins even when its
// value is null, in which case the default applies.
func chainNumField(rec record.Record, def float64, keys ...string) float64 {
	for _, key := range keys {
		if v, ok := rec[key]; ok {
			if v.IsAbsent() {
				return def
			}
			return Coerce(v, key)
		}
	}
	return def
}

func round1(v float64) float64 { return roundTo(v, 10) }
func round2(v float64) float64 { return roundTo(v, 100) }
func round4(v float64) float64 { return roundTo(v, 10000) }

func roundTo(v float64, factor float64) float64 {
	return math.Round(v*factor) / factor
}
