package digest

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hermes-sec/hermes-cli/internal/model"
	"github.com/hermes-sec/hermes-cli/pkg/anthropic"
	"github.com/hermes-sec/hermes-cli/pkg/azureopenai"
)

// rankTemperature matches the temperature the briefing has always been
// generated with.
const rankTemperature = 0.7

// Ranker produces the daily briefing from a day's admitted articles.
type Ranker interface {
	Rank(ctx context.Context, date string, articles []model.Article) (*model.Briefing, error)
}

// AzureRanker ranks with an Azure OpenAI chat deployment.
type AzureRanker struct {
	client    azureopenai.Client
	maxTokens int
}

// NewAzureRanker creates a Ranker backed by Azure OpenAI.
func NewAzureRanker(client azureopenai.Client, maxTokens int) *AzureRanker {
	return &AzureRanker{client: client, maxTokens: maxTokens}
}

func (r *AzureRanker) Rank(ctx context.Context, date string, articles []model.Article) (*model.Briefing, error) {
	prompt, err := BuildPrompt(articles)
	if err != nil {
		return nil, err
	}

	temp := rankTemperature
	req := azureopenai.ChatCompletionRequest{
		Messages: []azureopenai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: &temp,
	}
	if r.maxTokens > 0 {
		req.MaxTokens = &r.maxTokens
	}

	resp, err := r.client.ChatCompletion(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "digest: rank articles")
	}

	narrative := resp.Text()
	if narrative == "" {
		return nil, eris.New("digest: empty completion")
	}

	zap.L().Info("digest: briefing generated",
		zap.String("date", date),
		zap.Int("articles", len(articles)),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return newBriefing(date, resp.Model, narrative), nil
}

// AnthropicRanker ranks with an Anthropic model.
type AnthropicRanker struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicRanker creates a Ranker backed by Anthropic.
func NewAnthropicRanker(client anthropic.Client, model string, maxTokens int64) *AnthropicRanker {
	return &AnthropicRanker{client: client, model: model, maxTokens: maxTokens}
}

func (r *AnthropicRanker) Rank(ctx context.Context, date string, articles []model.Article) (*model.Briefing, error) {
	prompt, err := BuildPrompt(articles)
	if err != nil {
		return nil, err
	}

	temp := rankTemperature
	resp, err := r.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       r.model,
		MaxTokens:   r.maxTokens,
		System:      systemPrompt,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
	})
	if err != nil {
		return nil, eris.Wrap(err, "digest: rank articles")
	}

	narrative := resp.Text()
	if narrative == "" {
		return nil, eris.New("digest: empty completion")
	}

	zap.L().Info("digest: briefing generated",
		zap.String("date", date),
		zap.Int("articles", len(articles)),
		zap.Int64("output_tokens", resp.Usage.OutputTokens),
	)

	return newBriefing(date, r.model, narrative), nil
}

func newBriefing(date, modelID, narrative string) *model.Briefing {
	return &model.Briefing{
		Date:        date,
		Model:       modelID,
		Narrative:   narrative,
		Items:       ParseNarrative(narrative),
		GeneratedAt: time.Now().UTC(),
	}
}
