package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/satriahrh/cocoa-fruit/studychat/domain"
	"github.com/satriahrh/cocoa-fruit/studychat/utils/config"
)

type GeminiClient struct {
	client       *genai.Client
	model        string
	systemPrompt string
}

// NewGeminiClient creates a replier backed by the Gemini API. An empty apiKey
// lets the SDK read GEMINI_API_KEY / GOOGLE_API_KEY from the environment.
func NewGeminiClient(ctx context.Context, apiKey, model, systemPrompt string) (*GeminiClient, error) {
	if model == "" {
		model = config.DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &GeminiClient{client: client, model: model, systemPrompt: systemPrompt}, nil
}

// Reply implements domain.Replier. Earlier turns become the chat history and
// the newest user turn is sent as the message.
func (g *GeminiClient) Reply(ctx context.Context, history []domain.Message) (string, error) {
	if len(history) == 0 {
		return "", fmt.Errorf("%w: no messages", domain.ErrInvalidConversation)
	}
	last := history[len(history)-1]

	var config *genai.GenerateContentConfig
	if g.systemPrompt != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(g.systemPrompt, genai.RoleUser),
		}
	}

	chat, err := g.client.Chats.Create(ctx, g.model, config, toContents(history[:len(history)-1]))
	if err != nil {
		return "", fmt.Errorf("creating chat: %w", err)
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: last.Content})
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}

	return resp.Text(), nil
}

func toContents(history []domain.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		if msg.Content == "" {
			continue
		}
		if msg.Role == domain.UserRole {
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
			continue
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
	}
	return contents
}
