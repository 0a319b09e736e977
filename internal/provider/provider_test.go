package provider

import (
	"testing"

	"github.com/signaldesk/signaldesk/internal/config"
)

func TestGeminiRequestSystemInstruction(t *testing.T) {
	p := NewGeminiProvider("key", "")
	req := &ChatRequest{
		Messages: []Message{
			{Role: "system", Content: "You are an analyst."},
			{Role: "user", Content: "Assess this signal."},
			{Role: "assistant", Content: "Checking."},
		},
	}

	gemReq := p.buildGeminiRequest(req)
	if gemReq.SystemInstruction == nil || gemReq.SystemInstruction.Parts[0].Text != "You are an analyst." {
		t.Fatalf("system instruction not extracted: %+v", gemReq.SystemInstruction)
	}
	if len(gemReq.Contents) != 2 {
		t.Fatalf("contents = %d, want 2", len(gemReq.Contents))
	}
	if gemReq.Contents[1].Role != "model" {
		t.Errorf("assistant role mapped to %q", gemReq.Contents[1].Role)
	}
}

func TestGeminiToolResultMapping(t *testing.T) {
	p := NewGeminiProvider("key", "")
	req := &ChatRequest{
		Messages: []Message{
			{Role: "tool", Content: "42 signals", ToolCallID: "search_signals"},
		},
	}
	gemReq := p.buildGeminiRequest(req)
	got := gemReq.Contents[0]
	if got.Role != "function" || got.Parts[0].FunctionResp == nil {
		t.Fatalf("tool message not mapped to function response: %+v", got)
	}
	if got.Parts[0].FunctionResp.Response["result"] != "42 signals" {
		t.Errorf("result payload = %+v", got.Parts[0].FunctionResp.Response)
	}
}

func TestGeminiParseResponse(t *testing.T) {
	p := NewGeminiProvider("key", "")
	body := []byte(`{
		"candidates": [{
			"content": {"role": "model", "parts": [
				{"text": "on it "},
				{"functionCall": {"name": "browse_url", "args": {"url": "https://example.com"}}}
			]},
			"finishReason": "STOP"
		}],
		"usageMetadata": {"promptTokenCount": 10, "candidatesTokenCount": 5, "totalTokenCount": 15}
	}`)

	resp, err := p.parseGeminiResponse(body)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "on it " {
		t.Errorf("content = %q", resp.Content)
	}
	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].Name != "browse_url" {
		t.Fatalf("tool calls = %+v", resp.ToolCalls)
	}
	if resp.Usage.TotalTokens != 15 {
		t.Errorf("usage = %+v", resp.Usage)
	}
}

func TestGeminiParseEmptyCandidates(t *testing.T) {
	p := NewGeminiProvider("key", "")
	if _, err := p.parseGeminiResponse([]byte(`{"candidates": []}`)); err == nil {
		t.Fatal("expected error for empty candidates")
	}
}

func TestOpenAIParseMalformedToolArguments(t *testing.T) {
	p := NewOpenAIProvider("key", "", "")
	resp := &openAIResponse{
		Choices: []openAIChoice{{
			Message: openAIMessage{
				Role: "assistant",
				ToolCalls: []openAIToolCall{{
					ID:   "call-1",
					Type: "function",
					Function: struct {
						Name      string `json:"name"`
						Arguments string `json:"arguments"`
					}{Name: "search_signals", Arguments: "{broken"},
				}},
			},
		}},
	}

	parsed, err := p.parseResponse(resp)
	if err != nil {
		t.Fatal(err)
	}
	if parsed.ToolCalls[0].Arguments["raw"] != "{broken" {
		t.Errorf("malformed arguments not preserved: %+v", parsed.ToolCalls[0].Arguments)
	}
}

func TestResolve(t *testing.T) {
	cfg := &config.Config{}
	cfg.Providers.Default = "gemini"
	if _, err := Resolve(cfg); err == nil {
		t.Fatal("expected error without API key")
	}

	cfg.Providers.Gemini.APIKey = "k"
	p, err := Resolve(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.(*GeminiProvider); !ok {
		t.Fatalf("resolved %T, want gemini", p)
	}

	cfg.Providers.Default = "openai"
	cfg.Providers.OpenAI.APIKey = "k"
	p, err = Resolve(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.(*OpenAIProvider); !ok {
		t.Fatalf("resolved %T, want openai", p)
	}

	cfg.Providers.Default = "dialup"
	if _, err := Resolve(cfg); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
