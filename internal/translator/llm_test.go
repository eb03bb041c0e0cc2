package translator

import (
	"context"
	"errors"
	"math"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/valpere/hantran/internal/costs"
)

type stubCompleter struct {
	resp openai.ChatCompletionResponse
	err  error
	last openai.ChatCompletionRequest
}

func (s *stubCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.last = req
	return s.resp, s.err
}

func newTestLLM(stub *stubCompleter, agg *costs.Aggregator) *LLMTranslator {
	return &LLMTranslator{
		client:  stub,
		model:   "gpt-4o-mini",
		pricing: costs.PricingFor("gpt-4o-mini"),
		agg:     agg,
	}
}

func TestLLMTranslate_Success(t *testing.T) {
	stub := &stubCompleter{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: "The translated text."}},
		},
		Usage: openai.Usage{PromptTokens: 120, CompletionTokens: 80},
	}}
	agg := costs.NewAggregator()
	tr := newTestLLM(stub, agg)

	res, err := tr.Translate(context.Background(), Request{Text: "一段中文。"})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Text != "The translated text." {
		t.Errorf("Text = %q", res.Text)
	}
	if res.Usage == nil {
		t.Fatal("expected usage on metered backend")
	}
	if res.Usage.PromptTokens != 120 || res.Usage.CompletionTokens != 80 {
		t.Errorf("usage = %+v", res.Usage)
	}

	want := costs.PricingFor("gpt-4o-mini").Cost(120, 80)
	if math.Abs(res.Usage.Cost-want) > 1e-12 {
		t.Errorf("Cost = %f, expected %f", res.Usage.Cost, want)
	}

	snap := agg.Snapshot()
	if snap.Requests != 1 || snap.Tokens != 200 {
		t.Errorf("aggregator not updated: %+v", snap)
	}

	// The chunk text rides in the user message, the instructions in the
	// system message.
	if len(stub.last.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(stub.last.Messages))
	}
	if stub.last.Messages[1].Content != "一段中文。" {
		t.Errorf("user message = %q", stub.last.Messages[1].Content)
	}
}

func TestLLMTranslate_TransportError(t *testing.T) {
	stub := &stubCompleter{err: errors.New("connection refused")}
	tr := newTestLLM(stub, nil)

	_, err := tr.Translate(context.Background(), Request{Text: "x"})
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestLLMTranslate_NoChoices(t *testing.T) {
	stub := &stubCompleter{resp: openai.ChatCompletionResponse{
		Usage: openai.Usage{PromptTokens: 50, CompletionTokens: 0},
	}}
	agg := costs.NewAggregator()
	tr := newTestLLM(stub, agg)

	_, err := tr.Translate(context.Background(), Request{Text: "x"})
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}

	// The request was billed even though the response is unusable.
	if snap := agg.Snapshot(); snap.Requests != 1 || snap.PromptTokens != 50 {
		t.Errorf("malformed response not metered: %+v", snap)
	}
}

func TestLLMTranslate_EmptyContent(t *testing.T) {
	stub := &stubCompleter{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: "   "}},
		},
	}}
	tr := newTestLLM(stub, nil)

	_, err := tr.Translate(context.Background(), Request{Text: "x"})
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestSystemPrompt_FinalHint(t *testing.T) {
	plain := systemPrompt(false)
	final := systemPrompt(true)
	if plain == final {
		t.Error("final chunk should carry an extra instruction")
	}
	if len(final) <= len(plain) {
		t.Error("final prompt should extend the base prompt")
	}
}
