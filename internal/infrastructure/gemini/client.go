package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
	"github.com/gdugdh24/speeddate-backend/internal/infrastructure/logger"
)

type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	log    *logger.Logger
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string, log *logger.Logger) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.4)

	return &GeminiClient{
		client: client,
		model:  model,
		log:    log.With("component", "GeminiNarrator"),
	}, nil
}

func (c *GeminiClient) Close() {
	c.client.Close()
}

// Narrate turns a cached breakdown into one short paragraph addressed to the
// member in slot viewer. Only bands are sent, never profile data. When the
// API is unavailable it falls back to the stored explanation lines.
func (c *GeminiClient) Narrate(ctx context.Context, breakdown domain.ScoreBreakdown, viewer domain.Slot) (string, error) {
	prompt := buildPrompt(breakdown, viewer)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		c.log.Warn("Gemini API unavailable, using fallback narrative", "error", err)
		return fallbackNarrative(breakdown), nil
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return fallbackNarrative(breakdown), nil
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return fallbackNarrative(breakdown), nil
	}
	return text, nil
}

// buildPrompt lists each band pair viewer-first: "how it looks to you / how
// it looks to them".
func buildPrompt(b domain.ScoreBreakdown, viewer domain.Slot) string {
	mine, theirs := b.AToB.Bands, b.BToA.Bands
	if viewer == domain.SlotB {
		mine, theirs = theirs, mine
	}
	return fmt.Sprintf(`
		Two people met at a speed-dating event. Our compatibility model rated
		them, each line as seen by the reader / as seen by their date:
		Life goals and values: %s / %s
		Personality fit: %s / %s
		Chemistry on past dates: %s / %s
		Fit with learned preferences: %s / %s
		Profile completeness: %s / %s

		Task: Write one warm, honest paragraph (2-3 sentences) summarising this
		match for the reader. Do not invent facts and do not mention numbers.
		Output: Just the paragraph.
	`,
		mine.LifeAlignment, theirs.LifeAlignment,
		mine.Psychological, theirs.Psychological,
		mine.Chemistry, theirs.Chemistry,
		mine.TasteFit, theirs.TasteFit,
		mine.Completeness, theirs.Completeness,
	)
}

func fallbackNarrative(b domain.ScoreBreakdown) string {
	return strings.Join(b.Explanation, ". ")
}
