package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const languageUnknown = "unknown"

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"
const defaultOpenAIModel = "gpt-4o-mini"

// LanguageClassifier identifies the language of a text span.
type LanguageClassifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// Translator converts text between two language codes.
type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// LanguageService wraps a classifier and a translator, degrading every
// failure: detection falls back to "unknown", translation to the original
// text. Neither backend failure ever reaches message handling as an error.
type LanguageService struct {
	classifier LanguageClassifier
	translator Translator
}

func NewLanguageService(classifier LanguageClassifier, translator Translator) *LanguageService {
	return &LanguageService{classifier: classifier, translator: translator}
}

// NewLanguageServiceFromConfig builds the LLM-backed service, or a disabled
// one when no API key is configured.
func NewLanguageServiceFromConfig(cfg Config) *LanguageService {
	if !cfg.LanguageConfigured() {
		return NewLanguageService(nil, nil)
	}
	backend := &llmLanguageBackend{
		provider:     cfg.LLMProvider,
		model:        cfg.LLMModel,
		anthropicKey: cfg.AnthropicAPIKey,
		openAIKey:    cfg.OpenAIAPIKey,
	}
	return NewLanguageService(backend, backend)
}

func (s *LanguageService) Detect(ctx context.Context, text string) string {
	if s.classifier == nil || strings.TrimSpace(text) == "" {
		return languageUnknown
	}
	code, err := s.classifier.Classify(ctx, text)
	if err != nil {
		log.Printf("language detect error: %v", err)
		return languageUnknown
	}
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return languageUnknown
	}
	return code
}

func (s *LanguageService) Translate(ctx context.Context, text, from, to string) string {
	if from == to || from == languageUnknown {
		return text
	}
	if s.translator == nil {
		return text
	}
	translated, err := s.translator.Translate(ctx, text, from, to)
	if err != nil {
		log.Printf("translate error from=%s to=%s: %v", from, to, err)
		return text
	}
	return translated
}

// TranslateIfNeeded translates only when both codes are present, differ, and
// the target is known.
func (s *LanguageService) TranslateIfNeeded(ctx context.Context, text, from, to string) string {
	if text == "" || from == "" || to == "" {
		return text
	}
	if to == languageUnknown || from == to {
		return text
	}
	return s.Translate(ctx, text, from, to)
}

// --- LLM backend ---

// llmLanguageBackend implements both LanguageClassifier and Translator over
// the configured LLM provider.
type llmLanguageBackend struct {
	provider     string
	model        string
	anthropicKey string
	openAIKey    string
}

var languageCodeRegex = regexp.MustCompile(`^[a-z]{2,3}(-[a-zA-Z]{2,4})?$`)

const classifySystemPrompt = `You identify the language of a text.
Respond with only the ISO 639-1 two-letter language code (e.g. "en", "fr").
If the language cannot be determined, respond with exactly "unknown".
No explanations, no punctuation, just the code.`

func (b *llmLanguageBackend) Classify(ctx context.Context, text string) (string, error) {
	response, err := b.call(ctx, classifySystemPrompt, text)
	if err != nil {
		return "", err
	}
	code := strings.ToLower(strings.TrimSpace(response))
	if code == languageUnknown {
		return languageUnknown, nil
	}
	if !languageCodeRegex.MatchString(code) {
		return "", fmt.Errorf("classifier returned %q, not a language code", response)
	}
	return code, nil
}

func (b *llmLanguageBackend) Translate(ctx context.Context, text, from, to string) (string, error) {
	systemPrompt := fmt.Sprintf(`You translate text from language %q to language %q.
Respond with only the translated text. Preserve line breaks and bullet markers exactly.
Do not add explanations or quotes.`, from, to)
	response, err := b.call(ctx, systemPrompt, text)
	if err != nil {
		return "", err
	}
	translated := strings.TrimSpace(response)
	if translated == "" {
		return "", fmt.Errorf("translator returned empty response")
	}
	return translated, nil
}

func (b *llmLanguageBackend) call(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	switch b.provider {
	case "openai":
		model := b.model
		if model == "" {
			model = defaultOpenAIModel
		}
		return callOpenAI(ctx, b.openAIKey, model, systemPrompt, userPrompt)
	default:
		model := b.model
		if model == "" {
			model = defaultAnthropicModel
		}
		return callAnthropic(ctx, b.anthropicKey, model, systemPrompt, userPrompt)
	}
}

// --- Anthropic ---

func callAnthropic(ctx context.Context, apiKey, model, systemPrompt, userPrompt string) (string, error) {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		log.Printf("llm anthropic error: %v", err)
		return "", fmt.Errorf("Anthropic API error: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in Anthropic response")
}

// --- OpenAI ---

type openAIRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func callOpenAI(ctx context.Context, apiKey, model, systemPrompt, userPrompt string) (string, error) {
	reqBody := openAIRequest{
		Model: model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("llm openai error: %v", err)
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var openAIResp openAIResponse
	if err := json.Unmarshal(respBody, &openAIResp); err != nil {
		return "", fmt.Errorf("parsing OpenAI response: %w", err)
	}

	if openAIResp.Error != nil {
		log.Printf("llm openai api error: %s", openAIResp.Error.Message)
		return "", fmt.Errorf("OpenAI API error: %s", openAIResp.Error.Message)
	}

	if len(openAIResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenAI response")
	}
	return openAIResp.Choices[0].Message.Content, nil
}
