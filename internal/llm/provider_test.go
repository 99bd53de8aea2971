package llm

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/google/generative-ai-go/genai"
    openai "github.com/sashabaranov/go-openai"
)

func TestOpenAIProvider_UsesBaseURL(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.URL.Path != "/v1/chat/completions" {
            t.Errorf("unexpected path %s", r.URL.Path)
        }
        var req openai.ChatCompletionRequest
        _ = json.NewDecoder(r.Body).Decode(&req)
        w.Header().Set("Content-Type", "application/json")
        _ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
            Model:   req.Model,
            Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Role: "assistant", Content: "SCORE: 70"}}},
        })
    }))
    defer srv.Close()

    p := NewOpenAIProvider(srv.URL+"/v1", "test", srv.Client())
    resp, err := p.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{
        Model:    "stub",
        Messages: []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "hi"}},
    })
    if err != nil {
        t.Fatalf("call: %v", err)
    }
    if got := resp.Choices[0].Message.Content; got != "SCORE: 70" {
        t.Fatalf("unexpected content %q", got)
    }
}

func TestToGeminiConversation(t *testing.T) {
    system, history, last, err := toGeminiConversation([]openai.ChatCompletionMessage{
        {Role: openai.ChatMessageRoleSystem, Content: "rules"},
        {Role: openai.ChatMessageRoleUser, Content: "first"},
        {Role: openai.ChatMessageRoleAssistant, Content: "answer"},
        {Role: openai.ChatMessageRoleUser, Content: "second"},
    })
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if system != "rules" || last != "second" {
        t.Fatalf("system=%q last=%q", system, last)
    }
    if len(history) != 2 || history[0].Role != "user" || history[1].Role != "model" {
        t.Fatalf("unexpected history: %+v", history)
    }
}

func TestToGeminiConversation_RequiresUserLast(t *testing.T) {
    _, _, _, err := toGeminiConversation([]openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleSystem, Content: "only"}})
    if err == nil {
        t.Fatal("expected error without a user message")
    }
}

func TestFromGeminiResponse(t *testing.T) {
    resp := &genai.GenerateContentResponse{
        Candidates: []*genai.Candidate{{
            Content:      &genai.Content{Role: "model", Parts: []genai.Part{genai.Text("TIPS:\n"), genai.Text("- SEO | High | A | B")}},
            FinishReason: genai.FinishReasonMaxTokens,
        }},
        UsageMetadata: &genai.UsageMetadata{PromptTokenCount: 10, CandidatesTokenCount: 5, TotalTokenCount: 15},
    }
    out := fromGeminiResponse("gemini-test", resp)
    if len(out.Choices) != 1 {
        t.Fatalf("expected one choice, got %d", len(out.Choices))
    }
    if out.Choices[0].Message.Content != "TIPS:\n- SEO | High | A | B" {
        t.Fatalf("unexpected content %q", out.Choices[0].Message.Content)
    }
    if out.Choices[0].FinishReason != openai.FinishReasonLength {
        t.Fatalf("unexpected finish reason %q", out.Choices[0].FinishReason)
    }
    if out.Usage.TotalTokens != 15 {
        t.Fatalf("usage not mapped: %+v", out.Usage)
    }
    if len(fromGeminiResponse("m", nil).Choices) != 0 {
        t.Fatal("nil response should have no choices")
    }
}
