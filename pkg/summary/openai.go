package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
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
	summaryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "grades",
		Subsystem: "summary",
		Name:      "request_duration_seconds",
		Help:      "Duration of review summary requests",
	}, []string{"model"})

	summaryFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "grades",
		Subsystem: "summary",
		Name:      "failures_total",
		Help:      "Number of review summary failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI summarizer.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAISummarizer implements Summarizer against the OpenAI chat completion API.
type OpenAISummarizer struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAISummarizer builds a summarizer using the provided configuration.
func NewOpenAISummarizer(cfg OpenAIConfig) (*OpenAISummarizer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 768
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &OpenAISummarizer{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/Suvodeep90/expertiza-E1792/pkg/summary"),
		logger: logger.With().Str("component", "openai_summarizer").Logger(),
	}, nil
}

// Summarize asks the model for one paragraph per round and attaches the locally
// computed averages.
func (s *OpenAISummarizer) Summarize(parent context.Context, input Input) (Result, error) {
	ctx, span := s.tracer.Start(parent, "openai.summarize", trace.WithAttributes(
		attribute.String("model", s.cfg.Model),
		attribute.Int("rounds", len(input.Rounds)),
	))
	defer span.End()

	byRound, byCriterion := Averages(input)
	result := Result{
		Summary:              make(map[int]string, len(input.Rounds)),
		AvgScoresByRound:     byRound,
		AvgScoresByCriterion: byCriterion,
	}
	if len(input.Rounds) == 0 {
		return result, nil
	}

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       s.cfg.Model,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: summarizerSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildUserPrompt(input),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := s.client.CreateChatCompletion(ctx, request)
	summaryDuration.WithLabelValues(s.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		return Result{}, s.fail(span, fmt.Errorf("openai summarize: %w", err))
	}

	if len(resp.Choices) == 0 {
		return Result{}, s.fail(span, fmt.Errorf("no choices returned from openai"))
	}

	summaries, err := parseSummaryResponse(strings.TrimSpace(resp.Choices[0].Message.Content))
	if err != nil {
		return Result{}, s.fail(span, err)
	}
	result.Summary = summaries

	s.logger.Debug().
		Uint("team_id", input.TeamID).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("review summary generated")

	return result, nil
}

func (s *OpenAISummarizer) fail(span trace.Span, err error) error {
	summaryFailures.WithLabelValues(s.cfg.Model).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func summarizerSystemPrompt() string {
	return "You summarise peer reviews of student work. Respond with a JSON object with a rounds object mapping each round" +
		" number to a short paragraph covering strengths, weaknesses and suggested improvements. Do not invent scores."
}

func buildUserPrompt(input Input) string {
	builder := strings.Builder{}
	builder.WriteString("# Assignment\n")
	builder.WriteString(input.AssignmentName)
	for _, round := range input.Rounds {
		fmt.Fprintf(&builder, "\n\n## Round %d\n", round.Round)
		for _, criterion := range round.Criteria {
			fmt.Fprintf(&builder, "\n### %s\n", criterion.Text)
			for _, comment := range criterion.Comments {
				if trimmed := strings.TrimSpace(comment); trimmed != "" {
					builder.WriteString("- ")
					builder.WriteString(trimmed)
					builder.WriteString("\n")
				}
			}
		}
	}
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func parseSummaryResponse(content string) (map[int]string, error) {
	type payload struct {
		Rounds map[string]string `json:"rounds"`
	}

	var data payload
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return nil, fmt.Errorf("parse summary json: %w", err)
	}

	summaries := make(map[int]string, len(data.Rounds))
	for key, text := range data.Rounds {
		round, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("parse summary round %q: %w", key, err)
		}
		summaries[round] = strings.TrimSpace(text)
	}
	return summaries, nil
}
