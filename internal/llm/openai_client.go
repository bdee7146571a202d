package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/blaisecz/smart-wake/internal/domain"
)

var (
	// ErrOpenAIUnavailable indicates the OpenAI service is not configured or unavailable.
	ErrOpenAIUnavailable = errors.New("OpenAI service unavailable")
	// ErrOpenAIRequest indicates an error during the OpenAI API request.
	ErrOpenAIRequest = errors.New("OpenAI request failed")
	// ErrOpenAIResponse indicates an error parsing the OpenAI response.
	ErrOpenAIResponse = errors.New("failed to parse OpenAI response")
)

const systemPrompt = `You are a non-medical assistant for a smart alarm.

The alarm watches motion and heart rate during a window before the user's wake time and fires early ("SMART") when the user seems close to waking, or at the wake time ("FORCED") otherwise. You receive aggregated statistics about recent wake sessions. Base your conclusions only on the provided data.

Your goals:
- Describe how the recent wake-ups went in clear, neutral language.
- Point out how often the alarm woke the user early and how far before the target.
- Mention when the data is too limited to say much.

Rules:
- Do NOT provide medical advice or diagnoses.
- Do NOT mention diseases, disorders, doctors, or treatment.
- Be concise and concrete.

You must respond as strict JSON with exactly this shape:

{
  "summary": "1-2 sentences summarizing the recent wake sessions.",
  "observations": ["2-4 short observations grounded in the numbers."]
}

No extra fields. No comments. No backticks.`

const userPromptTemplate = `Here is JSON describing the user's wake sessions between "from" and "to".

- "sessions" is the number of completed wake sessions.
- "smart_count" and "forced_count" split them by trigger reason; "smart_rate" is the smart share.
- "mean_score_at_fire" is the average wakeability score (0-1) when the alarm fired.
- "mean_minutes_before_target" is how early the alarm fired on average.
- "mean_best_score" is the average of the best score seen per session, when known.

JSON:

%s

Based on this data, respond in the required JSON format.`

// ReportLLM writes the narrative part of a wake report.
type ReportLLM interface {
	Narrate(ctx context.Context, report *domain.WakeReport) (*domain.WakeReportNarrative, error)
}

// OpenAIClient implements ReportLLM using the OpenAI API.
type OpenAIClient struct {
	client openai.Client
	model  string
}

// NewOpenAIClient creates a new OpenAI client for wake report narratives.
// Returns nil if apiKey is empty.
func NewOpenAIClient(apiKey, model string, opts ...option.RequestOption) *OpenAIClient {
	if apiKey == "" {
		return nil
	}

	if model == "" {
		model = "gpt-4o-mini"
	}

	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := openai.NewClient(opts...)

	return &OpenAIClient{
		client: client,
		model:  model,
	}
}

// Narrate calls OpenAI to describe the report statistics.
func (c *OpenAIClient) Narrate(ctx context.Context, report *domain.WakeReport) (*domain.WakeReportNarrative, error) {
	if c == nil {
		return nil, ErrOpenAIUnavailable
	}

	input := struct {
		From string `json:"from"`
		To   string `json:"to"`
		domain.WakeReportStats
	}{
		From:            report.From.Format("2006-01-02"),
		To:              report.To.Format("2006-01-02"),
		WakeReportStats: report.Stats,
	}
	contextJSON, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to serialize report: %v", ErrOpenAIRequest, err)
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(fmt.Sprintf(userPromptTemplate, string(contextJSON))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenAIRequest, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", ErrOpenAIResponse)
	}

	var output domain.WakeReportNarrative
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &output); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenAIResponse, err)
	}

	return &output, nil
}
