package translator

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/valpere/hantran/internal/costs"
)

// DefaultLLMModel is used when no model is configured.
const DefaultLLMModel = "deepseek-chat"

// chatCompleter is the slice of *openai.Client the LLM backend needs.
// Tests inject a stub.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// LLMTranslator translates through any OpenAI-compatible chat-completion
// endpoint. Every response that carries usage is metered into the shared
// cost aggregator, including responses the validator later rejects.
type LLMTranslator struct {
	client  chatCompleter
	model   string
	pricing costs.ModelPricing
	agg     *costs.Aggregator
}

// NewLLMTranslator builds the LLM backend. apiKey and baseURL configure the
// endpoint (baseURL empty means api.openai.com); agg may be nil to disable
// metering.
func NewLLMTranslator(apiKey, baseURL, model string, agg *costs.Aggregator) *LLMTranslator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultLLMModel
	}
	return &LLMTranslator{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		pricing: costs.PricingFor(model),
		agg:     agg,
	}
}

func (t *LLMTranslator) Name() string {
	return "llm"
}

// Translate performs one chat-completion request for a chunk.
func (t *LLMTranslator) Translate(ctx context.Context, req Request) (*Result, error) {
	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(req.Final)},
			{Role: openai.ChatMessageRoleUser, Content: req.Text},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %v: %w", err, ErrTransport)
	}

	usage := &Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		Cost:             t.pricing.Cost(resp.Usage.PromptTokens, resp.Usage.CompletionTokens),
	}
	if t.agg != nil {
		t.agg.Record(usage.PromptTokens, usage.CompletionTokens, usage.Cost)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response: %w", ErrMalformed)
	}
	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty completion content: %w", ErrMalformed)
	}

	return &Result{Text: text, Usage: usage}, nil
}

// systemPrompt instructs the model to emit the translation and nothing
// else. The final chunk gets a closing hint so trailing notes and
// afterwords are carried over rather than summarized.
func systemPrompt(final bool) string {
	var sb strings.Builder
	sb.WriteString("You are a professional literary translator. ")
	sb.WriteString("Translate the following Chinese text into fluent English.\n")
	sb.WriteString("Only respond with the translation, nothing else. ")
	sb.WriteString("No explanations, no notes, no quotes around the output. ")
	sb.WriteString("Preserve paragraph breaks and any [PHn] markers exactly.")
	if final {
		sb.WriteString("\nThis is the final passage of the document; translate it completely even if it is short.")
	}
	return sb.String()
}
