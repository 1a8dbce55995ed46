// Package moderation provides advisory content screening for user reports.
// Verdicts annotate a report for the admin queue; they never block intake.
package moderation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	screenDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kumpul",
		Subsystem: "moderation",
		Name:      "screen_duration_seconds",
		Help:      "Duration of content screening requests",
	}, []string{"model"})

	screenFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kumpul",
		Subsystem: "moderation",
		Name:      "screen_failures_total",
		Help:      "Number of content screening failures",
	}, []string{"model"})
)

// Verdict is the structured result of screening one piece of text.
type Verdict struct {
	Flagged bool     `json:"flagged"`
	Labels  []string `json:"labels,omitempty"`
	Score   float64  `json:"score"`
}

// Screener classifies reported content.
type Screener interface {
	Screen(ctx context.Context, text string) (Verdict, error)
}

// OpenAIConfig defines configuration options for the OpenAI screener.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIScreener implements Screener against the OpenAI chat completion API.
type OpenAIScreener struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIScreener builds a screener using the provided configuration.
func NewOpenAIScreener(cfg OpenAIConfig) (*OpenAIScreener, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 256
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIScreener{
		client: client,
		cfg:    cfg,
		tracer: otel.Tracer("github.com/daniswara/kumpul-api/pkg/moderation"),
		logger: cfg.Logger.With().Str("component", "moderation_screener").Logger(),
	}, nil
}

// Screen sends the text to OpenAI and parses the structured verdict.
func (s *OpenAIScreener) Screen(parent context.Context, text string) (Verdict, error) {
	ctx, span := s.tracer.Start(parent, "moderation.screen", trace.WithAttributes(
		attribute.String("model", s.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       s.cfg.Model,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: screenerSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildScreenPrompt(text),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := s.client.CreateChatCompletion(ctx, request)
	screenDuration.WithLabelValues(s.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		screenFailures.WithLabelValues(s.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Verdict{}, fmt.Errorf("openai screen: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		screenFailures.WithLabelValues(s.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Verdict{}, err
	}

	verdict, err := parseVerdict(resp.Choices[0].Message.Content)
	if err != nil {
		screenFailures.WithLabelValues(s.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Verdict{}, err
	}

	span.SetAttributes(
		attribute.Bool("moderation.flagged", verdict.Flagged),
		attribute.Float64("moderation.score", verdict.Score),
	)
	span.SetStatus(codes.Ok, "screened")

	s.logger.Debug().
		Bool("flagged", verdict.Flagged).
		Float64("score", verdict.Score).
		Msg("content screened")

	return verdict, nil
}

func screenerSystemPrompt() string {
	return strings.TrimSpace(`
You are a trust and safety classifier for a social networking platform.
Given user-submitted text, decide whether it violates policy (harassment,
hate, sexual content involving minors, threats of violence, self harm,
spam or scams). Respond with a JSON object:
{"flagged": bool, "labels": [string], "score": number between 0 and 1}
where score is your confidence that the content violates policy.`)
}

func buildScreenPrompt(text string) string {
	var builder strings.Builder
	builder.WriteString("# Content\n")
	builder.WriteString(text)
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func parseVerdict(content string) (Verdict, error) {
	var verdict Verdict
	if err := json.Unmarshal([]byte(content), &verdict); err != nil {
		return Verdict{}, fmt.Errorf("parse verdict json: %w", err)
	}

	if verdict.Score < 0 {
		verdict.Score = 0
	}
	if verdict.Score > 1 {
		verdict.Score = 1
	}
	return verdict, nil
}
