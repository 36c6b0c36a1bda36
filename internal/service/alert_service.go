package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/edupulse/dropout-risk-api/internal/dto"
)

// DefaultAlertSubject is the NATS subject high-risk alerts are published to.
const DefaultAlertSubject = "dropout.alerts"

// AlertPublisher notifies downstream consumers (advisor dashboards, the
// alerting pipeline) about students scored at high risk.
type AlertPublisher interface {
	PublishHighRisk(ctx context.Context, report dto.RiskReport)
}

// RiskAlert is the event payload published for a high-risk prediction.
type RiskAlert struct {
	RollNo         string    `json:"roll_no"`
	Name           string    `json:"name"`
	Course         string    `json:"course"`
	RiskLevel      string    `json:"risk_level"`
	RiskPercentage float64   `json:"risk_percentage"`
	TopFactor      string    `json:"top_factor,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type natsAlertPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
	now     func() time.Time
}

// NewAlertPublisher builds a NATS-backed alert publisher. A nil connection
// yields a publisher that silently drops alerts, so alerting stays optional.
func NewAlertPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) AlertPublisher {
	if subject == "" {
		subject = DefaultAlertSubject
	}

	return &natsAlertPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "alert_publisher").Logger(),
		now:     time.Now,
	}
}

// PublishHighRisk is fire-and-forget: a failed publish is logged and the
// prediction flow continues.
func (p *natsAlertPublisher) PublishHighRisk(_ context.Context, report dto.RiskReport) {
	if p.conn == nil {
		return
	}

	alert := RiskAlert{
		RollNo:         report.StudentInfo.RollNo,
		Name:           report.StudentInfo.Name,
		Course:         report.StudentInfo.Course,
		RiskLevel:      report.RiskLevel,
		RiskPercentage: report.RiskPercentage,
		OccurredAt:     p.now().UTC(),
	}
	if len(report.RiskFactors) > 0 {
		alert.TopFactor = report.RiskFactors[0].Category
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to encode risk alert")
		return
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("roll_no", alert.RollNo).Msg("failed to publish risk alert")
		return
	}

	p.logger.Info().Str("roll_no", alert.RollNo).Float64("risk", alert.RiskPercentage).Msg("high risk alert published")
}
