package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/edupulse/dropout-risk-api/internal/dto"
)

var (
	insightDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dropout",
		Subsystem: "ai",
		Name:      "insight_duration_seconds",
		Help:      "Duration of AI insight requests",
	}, []string{"model"})

	insightFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dropout",
		Subsystem: "ai",
		Name:      "insight_failures_total",
		Help:      "Number of AI insight failures",
	}, []string{"model"})
)

// InsightConfig defines configuration options for the OpenAI insight generator.
type InsightConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// InsightGenerator turns a risk report into a short counselor-facing note
// using the OpenAI chat completion API.
type InsightGenerator struct {
	client    *openai.Client
	cfg       InsightConfig
	tracer    trace.Tracer
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewInsightGenerator builds a new generator using the provided configuration.
func NewInsightGenerator(cfg InsightConfig) (*InsightGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 256
	}

	tracer := otel.Tracer("github.com/edupulse/dropout-risk-api/pkg/ai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &InsightGenerator{
		client:    client,
		cfg:       cfg,
		tracer:    tracer,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger,
	}, nil
}

// Enabled reports whether the generator is usable.
func (g *InsightGenerator) Enabled() bool {
	return g != nil && g.client != nil
}

// Generate asks the model for a short plain-text insight about the report.
// The response is stripped of any markup before it is returned.
func (g *InsightGenerator) Generate(parent context.Context, report dto.RiskReport) (string, error) {
	ctx, span := g.tracer.Start(parent, "ai.generate_insight", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
		attribute.String("risk_level", report.RiskLevel),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: insightSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildInsightPrompt(report),
			},
		},
	}

	resp, err := g.client.CreateChatCompletion(ctx, request)
	insightDuration.WithLabelValues(g.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		insightFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("openai insight: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		insightFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	insight := strings.TrimSpace(g.sanitizer.Sanitize(resp.Choices[0].Message.Content))
	if insight == "" {
		err := fmt.Errorf("empty insight returned from openai")
		insightFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		return "", err
	}

	return insight, nil
}

func insightSystemPrompt() string {
	return "You are an academic counselor assistant. Given a student's dropout risk assessment, write two or three plain sent" +
		"ences for the counselor: what is driving the risk and where to start. No markdown, no lists, no preamble."
}

func buildInsightPrompt(report dto.RiskReport) string {
	builder := strings.Builder{}
	builder.WriteString("Student: ")
	builder.WriteString(report.StudentInfo.Name)
	fmt.Fprintf(&builder, " (%s, %s)\n", report.StudentInfo.Course, report.StudentInfo.Year)
	fmt.Fprintf(&builder, "Risk: %.1f%% (%s)\n", report.RiskPercentage, report.RiskLevel)

	builder.WriteString("Top factors:\n")
	for i, factor := range report.RiskFactors {
		if i >= 3 {
			break
		}
		fmt.Fprintf(&builder, "- %s: %.1f%% of total risk\n", factor.Name, factor.Contribution)
	}

	builder.WriteString("Planned interventions:\n")
	for _, rec := range report.Recommendations {
		fmt.Fprintf(&builder, "- %s\n", rec.Title)
	}
	return builder.String()
}
