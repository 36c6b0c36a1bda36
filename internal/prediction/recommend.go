package prediction

import "github.com/edupulse/dropout-risk-api/internal/dto"

const maxRecommendations = 5

// recommendationCatalog holds the two fixed intervention templates per risk
// category, in catalog order.
var recommendationCatalog = map[string][]dto.Recommendation{
	categoryAcademic: {
		{
			ID:          1,
			Priority:    "high",
			Icon:        "📚",
			Title:       "Assign Academic Mentor",
			Description: "Pair student with a peer mentor for academic support and study guidance.",
			Action:      "assign_mentor",
		},
		{
			ID:          2,
			Priority:    "medium",
			Icon:        "📝",
			Title:       "Academic Counseling Session",
			Description: "Schedule a session with academic advisor to discuss study strategies.",
			Action:      "schedule_academic_counseling",
		},
	},
	categoryAttendance: {
		{
			ID:          3,
			Priority:    "high",
			Icon:        "📞",
			Title:       "Contact Student",
			Description: "Reach out to understand reasons for low attendance.",
			Action:      "contact_student",
		},
		{
			ID:          4,
			Priority:    "medium",
			Icon:        "👨‍👩‍👦",
			Title:       "Parent Meeting",
			Description: "Schedule a meeting with parents to discuss attendance concerns.",
			Action:      "schedule_parent_meeting",
		},
	},
	categoryFinancial: {
		{
			ID:          5,
			Priority:    "high",
			Icon:        "💰",
			Title:       "Financial Aid Review",
			Description: "Connect with Financial Aid office for scholarship or fee waiver options.",
			Action:      "financial_aid_review",
		},
		{
			ID:          6,
			Priority:    "medium",
			Icon:        "📋",
			Title:       "Payment Plan",
			Description: "Discuss flexible payment plan options with accounts department.",
			Action:      "setup_payment_plan",
		},
	},
	categoryMental: {
		{
			ID:          7,
			Priority:    "high",
			Icon:        "🧠",
			Title:       "Counselor Referral",
			Description: "Refer to mental health counselor for follow-up session.",
			Action:      "counselor_referral",
		},
		{
			ID:          8,
			Priority:    "medium",
			Icon:        "🤝",
			Title:       "Peer Support Group",
			Description: "Connect with peer support group or student wellness program.",
			Action:      "peer_support",
		},
	},
	categoryEngagement: {
		{
			ID:          9,
			Priority:    "medium",
			Icon:        "🎯",
			Title:       "Activity Recommendation",
			Description: "Encourage participation in clubs or extracurricular activities.",
			Action:      "recommend_activities",
		},
		{
			ID:          10,
			Priority:    "low",
			Icon:        "📖",
			Title:       "Library Resources",
			Description: "Introduce student to library resources and study groups.",
			Action:      "library_orientation",
		},
	},
}

var urgentIntervention = dto.Recommendation{
	ID:          0,
	Priority:    "urgent",
	Icon:        "🚨",
	Title:       "Immediate Intervention Required",
	Description: "Schedule urgent meeting with student, advisor, and support team.",
	Action:      "urgent_intervention",
}

// Recommend derives a capped, priority-ordered action list from the top three
// ranked categories. High overall risk prepends an urgent intervention ahead
// of everything else. Duplicate actions keep their first occurrence.
func (e *Engine) Recommend(factors []dto.RiskFactor, riskPercentage float64) []dto.Recommendation {
	recommendations := make([]dto.Recommendation, 0, maxRecommendations+1)

	topCount := 3
	if len(factors) < topCount {
		topCount = len(factors)
	}

	for _, factor := range factors[:topCount] {
		recommendations = append(recommendations, recommendationCatalog[factor.Category]...)
	}

	if riskPercentage >= e.thresholds.High {
		recommendations = append([]dto.Recommendation{urgentIntervention}, recommendations...)
	}

	seen := make(map[int]struct{}, len(recommendations))
	unique := make([]dto.Recommendation, 0, maxRecommendations)
	for _, rec := range recommendations {
		if _, dup := seen[rec.ID]; dup {
			continue
		}
		seen[rec.ID] = struct{}{}
		unique = append(unique, rec)
		if len(unique) == maxRecommendations {
			break
		}
	}

	return unique
}
