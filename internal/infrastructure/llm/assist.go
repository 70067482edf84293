// Package llm 提供基于 Eino ChatModel 的 AI 辅助能力
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"slanglab-api/internal/config"
	apperrors "slanglab-api/pkg/errors"
	"slanglab-api/pkg/metrics"
)

// Explanation 模型生成的词条释义
type Explanation struct {
	Meaning      string   `json:"meaning"`
	Origin       string   `json:"origin,omitempty"`
	PartOfSpeech string   `json:"part_of_speech,omitempty"`
	Examples     []string `json:"examples,omitempty"`
}

// Translation 模型生成的词条译文
type Translation struct {
	Translation string `json:"translation"`
	Notes       string `json:"notes,omitempty"`
}

// AssistClient AI 辅助客户端。重试策略由底层 provider 负责，此处不重试。
type AssistClient struct {
	chatModel model.BaseChatModel
	timeout   time.Duration
}

// NewChatModel 创建 Eino ChatModel
func NewChatModel(ctx context.Context, cfg *config.LLMConfig) (model.BaseChatModel, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm model is required")
	}

	temperature := float32(cfg.Temperature)
	maxTokens := cfg.MaxTokens
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		Timeout:     cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino chat model: %w", err)
	}
	return chatModel, nil
}

// NewAssistClient 创建 AI 辅助客户端
func NewAssistClient(chatModel model.BaseChatModel, timeout time.Duration) *AssistClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &AssistClient{chatModel: chatModel, timeout: timeout}
}

const explanationSystemPrompt = `You are a slang dictionary editor. Given a slang term, produce a dictionary entry.
Respond with a single JSON object and nothing else, using exactly these keys:
{"meaning": "...", "origin": "...", "part_of_speech": "...", "examples": ["...", "..."]}
Keep the meaning concise and neutral. Provide at most three example sentences.`

// GenerateExplanation 生成词条释义
func (c *AssistClient) GenerateExplanation(ctx context.Context, term, usageContext string) (*Explanation, error) {
	user := fmt.Sprintf("Slang term: %q", term)
	if usageContext != "" {
		user += fmt.Sprintf("\nObserved usage: %q", usageContext)
	}

	content, err := c.generate(ctx, "explanation", explanationSystemPrompt, user)
	if err != nil {
		return nil, err
	}

	var out Explanation
	if err := json.Unmarshal([]byte(extractJSON(content)), &out); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeLLMCallFailed, "parse explanation response")
	}
	if out.Meaning == "" {
		return nil, apperrors.New(apperrors.CodeLLMCallFailed, "model returned empty meaning")
	}
	return &out, nil
}

const translationSystemPrompt = `You are a slang translator. Translate the slang term into the target language,
preserving tone and register. Respond with a single JSON object and nothing else:
{"translation": "...", "notes": "..."}
Notes are optional and should explain nuances a literal translation would lose.`

// GenerateTranslation 生成词条译文
func (c *AssistClient) GenerateTranslation(ctx context.Context, term, meaning, targetLanguage string) (*Translation, error) {
	user := fmt.Sprintf("Slang term: %q\nMeaning: %q\nTarget language: %s", term, meaning, targetLanguage)

	content, err := c.generate(ctx, "translation", translationSystemPrompt, user)
	if err != nil {
		return nil, err
	}

	var out Translation
	if err := json.Unmarshal([]byte(extractJSON(content)), &out); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeLLMCallFailed, "parse translation response")
	}
	if out.Translation == "" {
		return nil, apperrors.New(apperrors.CodeLLMCallFailed, "model returned empty translation")
	}
	return &out, nil
}

func (c *AssistClient) generate(ctx context.Context, kind, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	msg, err := c.chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	})
	metrics.LLMCallDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(kind, "error").Inc()
		return "", apperrors.Wrap(err, apperrors.CodeLLMCallFailed, "chat model call failed")
	}
	metrics.LLMCallTotal.WithLabelValues(kind, "success").Inc()
	return msg.Content, nil
}

// extractJSON 剥离模型偶尔输出的 Markdown 代码围栏
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if i := strings.LastIndex(content, "```"); i >= 0 {
			content = content[:i]
		}
		content = strings.TrimSpace(content)
	}
	return content
}
