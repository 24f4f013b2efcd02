// Package scribe enriches bare quest templates with flavor text and reward
// suggestions. Enrichment is strictly best-effort: every failure is swallowed
// and the template is simply left as the user wrote it.
package scribe

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

// Client is the interface both scribe implementations satisfy.
type Client interface {
	Enrich(ctx context.Context, title string) (*Content, error)
}

// Content is the scribe's suggestion for a template. Ratings are 1-5 scales
// for the time, effort and dread of the chore.
type Content struct {
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Tags        string `json:"tags"`
	Time        int    `json:"time"`
	Effort      int    `json:"effort"`
	Dread       int    `json:"dread"`
}

// XP derives the reward from the clamped ratings.
func (c *Content) XP() int {
	return (clampRating(c.Time) + clampRating(c.Effort) + clampRating(c.Dread)) * 2
}

func (c *Content) Gold() int {
	return c.XP() / 2
}

func clampRating(v int) int {
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}

// New picks an implementation from the environment. Missing credentials mean
// the mock, so local development never needs an API key.
func New() Client {
	if os.Getenv("MOCK_SCRIBE") == "true" || os.Getenv("ANTHROPIC_API_KEY") == "" {
		log.Println("Scribe using mock data")
		return NewMockClient()
	}

	model := os.Getenv("ANTHROPIC_MODEL")
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}
	log.Println("Scribe using Anthropic API:", model)
	return NewAPIClient(model)
}

// ── APIClient — Anthropic SDK (Production) ─────────────────

type APIClient struct {
	client *anthropic.Client
	model  string
}

func NewAPIClient(model string) *APIClient {
	client := anthropic.NewClient(
		option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
	)
	return &APIClient{client: &client, model: model}
}

func (c *APIClient) Enrich(ctx context.Context, title string) (*Content, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   512,
		Temperature: param.NewOpt(0.9),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildUserPrompt(title))),
		},
	}

	message, err := c.callWithRetry(ctx, params)
	if err != nil {
		return nil, err
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return ParseContent(responseText)
}

func (c *APIClient) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			sleepDuration := time.Duration(1<<uint(attempt)) * time.Second
			log.Printf("Retrying Anthropic API call in %v (attempt %d)", sleepDuration, attempt+1)
			time.Sleep(sleepDuration)
		}

		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			return message, nil
		}
		lastErr = err
		log.Printf("Anthropic API attempt %d failed: %v", attempt+1, err)
	}
	return nil, fmt.Errorf("anthropic API failed after retries: %w", lastErr)
}

// ── MockClient — Local Development ─────────────────────────

type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Enrich(ctx context.Context, title string) (*Content, error) {
	return &Content{
		DisplayName: fmt.Sprintf("The Trial of %s", title),
		Description: fmt.Sprintf("A noble household quest awaits: %s. Glory to whoever sees it done.", title),
		Tags:        "household,chore",
		Time:        3,
		Effort:      3,
		Dread:       2,
	}, nil
}
