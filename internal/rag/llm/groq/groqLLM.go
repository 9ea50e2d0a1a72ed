package groq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/synthiquery/api/internal/config"
	"github.com/synthiquery/api/internal/customHttpClient"
	"github.com/synthiquery/api/internal/rag/llm"
	"github.com/synthiquery/api/pkg/logger_i"
)

type llmClient struct {
	client    openai.Client
	modelName string
}

var logger *logger_i.Logger
var groqClient *llmClient
var once sync.Once

// GetGroqClient returns the generation provider, nil when no API key is
// configured. Groq speaks the OpenAI chat-completions protocol, so any
// compatible endpoint works by changing the base URL.
func GetGroqClient(ctx context.Context, modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_groq")
		newGroqClient(modelName, apikey)
	})

	if groqClient == nil {
		return nil
	}
	return &llmClient{client: groqClient.client, modelName: groqClient.modelName}
}

func newGroqClient(modelName string, apikey string) {
	if apikey == "" {
		logger.Error("Generation API key not configured")
		return
	}

	c := openai.NewClient(
		option.WithAPIKey(apikey),
		option.WithBaseURL(config.GenerationBaseURL),
		option.WithHTTPClient(customHttpClient.GetPooledClient()),
	)
	groqClient = &llmClient{client: c, modelName: modelName}
	logger.Debug("Groq model name: " + modelName)
	logger.Info("Groq client created")
}

func (c *llmClient) Generate(ctx context.Context, userQuery string, contextBlocks []string, messageHistory []string) (string, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	genCtx, cancel := context.WithTimeout(ctx, config.GenerateTimeout)
	defer cancel()

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(config.SystemPrompt),
	}
	if len(messageHistory) > 0 {
		messages = append(messages, openai.SystemMessage(
			"Conversation so far, oldest first:\n"+strings.Join(messageHistory, "\n")))
	}

	userPrompt := fmt.Sprintf("Context:\n%s\n\nUser Question: %s",
		strings.Join(contextBlocks, "\n\n"), userQuery)
	messages = append(messages, openai.UserMessage(userPrompt))

	loggr.Debug("Calling generation API", "contextBlocks", len(contextBlocks))
	completion, err := c.client.Chat.Completions.New(genCtx, openai.ChatCompletionNewParams{
		Model:       c.modelName,
		Messages:    messages,
		Temperature: openai.Float(0.2),
		MaxTokens:   openai.Int(1000),
	})
	if err != nil {
		loggr.Error("Generation call failed", "error", err)
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("generation API returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
