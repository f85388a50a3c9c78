package client

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/223MapAction/Model-deploy/internal/config"
	"github.com/223MapAction/Model-deploy/internal/model"
)

// TextClient wraps the generative model used for incident analysis, solution
// recommendation, satellite narratives and chat replies.
type TextClient struct {
	client *genai.Client
	model  string
}

func NewTextClient(cfg config.GenAIConfig) (*TextClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing AI_API_KEY")
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, err
	}
	return &TextClient{client: client, model: cfg.TextModel}, nil
}

// Generate runs a single prompt under the given system instruction and
// returns the model text.
func (c *TextClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.7),
		TopP:            genai.Ptr[float32](0.9),
		MaxOutputTokens: 2000,
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	res, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", err
	}
	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("model returned empty response")
	}
	return text, nil
}

// GenerateChat runs a multi-turn conversation: the stored session history
// followed by the current question, under the incident-context system prompt.
// chatRole maps a stored message role onto the model's turn roles.
func chatRole(msgRole string) genai.Role {
	if msgRole == model.RoleAssistant {
		return genai.RoleModel
	}
	return genai.RoleUser
}

func (c *TextClient) GenerateChat(ctx context.Context, system string, history []model.ChatMessage, question string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, msg := range history {
		contents = append(contents, genai.NewContentFromText(msg.Content, chatRole(msg.Role)))
	}
	contents = append(contents, genai.NewContentFromText(question, genai.RoleUser))

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.5),
		TopP:            genai.Ptr[float32](0.8),
		MaxOutputTokens: 1080,
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	res, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", err
	}
	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("model returned empty response")
	}
	return text, nil
}
