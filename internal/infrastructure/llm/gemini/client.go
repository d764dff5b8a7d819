// Package gemini adapts the Google GenAI SDK to the chat and embedding ports.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/kirillkom/dinelog/internal/core/domain"
	"github.com/kirillkom/dinelog/internal/infrastructure/resilience"
)

type Client struct {
	client     *genai.Client
	genModel   string
	embedModel string
	executor   *resilience.Executor
}

func New(ctx context.Context, apiKey, genModel, embedModel string, executor *resilience.Executor) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "gemini client", errors.New("api key is required"))
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{
		client:     client,
		genModel:   genModel,
		embedModel: embedModel,
		executor:   executor,
	}, nil
}

type ChatCompleter struct {
	client *Client
}

func NewChatCompleter(client *Client) *ChatCompleter {
	return &ChatCompleter{client: client}
}

func (c *ChatCompleter) Complete(ctx context.Context, messages []domain.ChatMessage, opts domain.CompletionOptions) (string, error) {
	system, contents := toContents(messages)
	config := buildGenerateConfig(system, opts)

	text, err := resilience.Do(ctx, c.client.executor, "gemini.chat", func(ctx context.Context) (string, error) {
		resp, err := c.client.client.Models.GenerateContent(ctx, c.client.genModel, contents, config)
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}, classifyGeminiError)
	if err != nil {
		return "", resilience.WrapTemporary("gemini chat", err, classifyGeminiError)
	}
	return strings.TrimSpace(text), nil
}

type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
	}

	vectors, err := resilience.Do(ctx, e.client.executor, "gemini.embed", func(ctx context.Context) ([][]float32, error) {
		resp, err := e.client.client.Models.EmbedContent(ctx, e.client.embedModel, contents, nil)
		if err != nil {
			return nil, err
		}
		out := make([][]float32, 0, len(resp.Embeddings))
		for _, emb := range resp.Embeddings {
			if emb == nil {
				out = append(out, nil)
				continue
			}
			out = append(out, emb.Values)
		}
		return out, nil
	}, classifyGeminiError)
	if err != nil {
		return nil, resilience.WrapTemporary("gemini embed", err, classifyGeminiError)
	}
	return vectors, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, errors.New("empty embedding result")
	}
	return vectors[0], nil
}

// toContents splits system messages into the system instruction and maps
// the remaining turns onto user/model contents.
func toContents(messages []domain.ChatMessage) (*genai.Content, []*genai.Content) {
	var systemParts []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case domain.RoleSystem:
			systemParts = append(systemParts, msg.Content)
		case domain.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	if len(systemParts) == 0 {
		return nil, contents
	}
	return genai.NewContentFromText(strings.Join(systemParts, "\n\n"), genai.RoleUser), contents
}

func buildGenerateConfig(system *genai.Content, opts domain.CompletionOptions) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](float32(opts.Temperature)),
		SystemInstruction: system,
	}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if opts.JSON {
		config.ResponseMIMEType = "application/json"
	}
	return config
}

func classifyGeminiError(err error) resilience.ErrorClassification {
	code, ok := apiErrorCode(err)
	if !ok {
		return resilience.ClassifyHTTPError(err)
	}
	if resilience.IsRetryableHTTPStatus(code) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
}

func apiErrorCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, true
	}
	return 0, false
}
