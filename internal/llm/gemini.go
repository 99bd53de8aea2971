package llm

import (
    "context"
    "errors"
    "fmt"
    "strings"

    "github.com/google/generative-ai-go/genai"
    openai "github.com/sashabaranov/go-openai"
    "google.golang.org/api/option"
)

// GeminiProvider serves Client requests with the Gemini API. System messages
// become the model's system instruction; the remaining conversation is
// replayed as chat history with the last user message sent.
type GeminiProvider struct {
    client *genai.Client
}

// NewGeminiProvider opens a Gemini client authenticated with apiKey.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
    if strings.TrimSpace(apiKey) == "" {
        return nil, errors.New("gemini: api key is required")
    }
    client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
    if err != nil {
        return nil, fmt.Errorf("gemini: create client: %w", err)
    }
    return &GeminiProvider{client: client}, nil
}

// Close releases the underlying client.
func (p *GeminiProvider) Close() error {
    return p.client.Close()
}

func (p *GeminiProvider) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
    system, history, last, err := toGeminiConversation(request.Messages)
    if err != nil {
        return openai.ChatCompletionResponse{}, err
    }
    model := p.client.GenerativeModel(request.Model)
    if system != "" {
        model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
    }
    if request.Temperature > 0 {
        model.SetTemperature(request.Temperature)
    }
    if request.MaxTokens > 0 {
        model.SetMaxOutputTokens(int32(request.MaxTokens))
    }
    model.SetCandidateCount(1)

    chat := model.StartChat()
    chat.History = history
    resp, err := chat.SendMessage(ctx, genai.Text(last))
    if err != nil {
        return openai.ChatCompletionResponse{}, fmt.Errorf("gemini: generate: %w", err)
    }
    return fromGeminiResponse(request.Model, resp), nil
}

// toGeminiConversation splits OpenAI-style messages into a system
// instruction, prior turns and the final user message.
func toGeminiConversation(msgs []openai.ChatCompletionMessage) (system string, history []*genai.Content, last string, err error) {
    var systemParts []string
    var turns []openai.ChatCompletionMessage
    for _, m := range msgs {
        if m.Role == openai.ChatMessageRoleSystem {
            systemParts = append(systemParts, m.Content)
            continue
        }
        turns = append(turns, m)
    }
    if len(turns) == 0 || turns[len(turns)-1].Role != openai.ChatMessageRoleUser {
        return "", nil, "", errors.New("gemini: conversation must end with a user message")
    }
    for _, m := range turns[:len(turns)-1] {
        role := "user"
        if m.Role == openai.ChatMessageRoleAssistant {
            role = "model"
        }
        history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
    }
    return strings.Join(systemParts, "\n\n"), history, turns[len(turns)-1].Content, nil
}

func fromGeminiResponse(model string, resp *genai.GenerateContentResponse) openai.ChatCompletionResponse {
    out := openai.ChatCompletionResponse{Object: "chat.completion", Model: model}
    if resp == nil {
        return out
    }
    for i, cand := range resp.Candidates {
        if cand == nil || cand.Content == nil {
            continue
        }
        var sb strings.Builder
        for _, part := range cand.Content.Parts {
            if t, ok := part.(genai.Text); ok {
                sb.WriteString(string(t))
            }
        }
        out.Choices = append(out.Choices, openai.ChatCompletionChoice{
            Index:        i,
            Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: sb.String()},
            FinishReason: finishReason(cand.FinishReason),
        })
    }
    if u := resp.UsageMetadata; u != nil {
        out.Usage = openai.Usage{
            PromptTokens:     int(u.PromptTokenCount),
            CompletionTokens: int(u.CandidatesTokenCount),
            TotalTokens:      int(u.TotalTokenCount),
        }
    }
    return out
}

func finishReason(r genai.FinishReason) openai.FinishReason {
    switch r {
    case genai.FinishReasonMaxTokens:
        return openai.FinishReasonLength
    case genai.FinishReasonSafety, genai.FinishReasonRecitation:
        return openai.FinishReasonContentFilter
    default:
        return openai.FinishReasonStop
    }
}
