// Package nodes holds one Executor implementation per workflow.NodeKind,
// each a real integration against the library SPEC_FULL.md's domain-stack
// table assigns it, wired together by Register into an executor.Registry.
package nodes

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/SHXZ7/autofloww/internal/adapter"
	"github.com/SHXZ7/autofloww/internal/executor"
	"github.com/SHXZ7/autofloww/internal/workflow"
)

const (
	defaultLLMModel    = "meta-llama/llama-3-8b-instruct"
	defaultClaudeModel = "claude-3-haiku-20240307"
	openRouterBaseURL  = "https://openrouter.ai/api/v1"
	llmTimeout         = 60 * time.Second
)

// llmConfig is the config shape shared by gpt/llama/gemini/claude/mistral
// nodes, grounded on spec §4.3's node table.
type llmConfig struct {
	Prompt string `json:"prompt"`
	Label  string `json:"label"`
	Model  string `json:"model"`
}

// LLM dispatches gpt/llama/gemini/mistral to an OpenRouter-compatible
// chat-completions endpoint via openai-go, and claude directly to
// anthropic-sdk-go, per SPEC_FULL.md §4.3. One Executor fronts both
// providers, grounded on the teacher's per-kind switch in executeNode
// (internal/executor/executor.go) generalized behind the registry.
type LLM struct{}

func NewLLM() *LLM { return &LLM{} }

func (LLM) Execute(ctx context.Context, req executor.Request) adapter.Result {
	var cfg llmConfig
	if len(req.Node.Config) > 0 {
		if err := json.Unmarshal(req.Node.Config, &cfg); err != nil {
			return adapter.Error("Error: invalid llm config: %v", err)
		}
	}

	prompt := cfg.Prompt
	if prompt == "" {
		prompt = cfg.Label
	}
	if prompt == "" {
		return adapter.Error("Error: prompt is required")
	}

	prompt = absorbDocumentContent(prompt, req.Predecessors)

	ctx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	var (
		text string
		err  error
	)
	if req.Node.Kind == workflow.NodeClaude {
		text, err = callClaude(ctx, req, cfg, prompt)
	} else {
		text, err = callOpenRouter(ctx, req, cfg, prompt)
	}
	if err != nil {
		return adapter.Error("Error: %v", err)
	}
	return adapter.AIText(text)
}

// absorbDocumentContent implements spec §4.3's llm-specific adapter rule:
// "If any predecessor result begins with `Document parsed: <path>`, read
// that JSON, append its content field to the prompt before calling."
func absorbDocumentContent(prompt string, predecessors map[string]adapter.Result) string {
	for _, r := range predecessors {
		if r.Kind != adapter.KindDocumentParsed {
			continue
		}
		data, err := os.ReadFile(r.Path)
		if err != nil {
			continue
		}
		var doc struct {
			Content string `json:"content"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			continue
		}
		prompt = prompt + "\n\n" + doc.Content
	}
	return prompt
}

func callOpenRouter(ctx context.Context, req executor.Request, cfg llmConfig, prompt string) (string, error) {
	apiKey := req.Broker.OpenRouter(ctx)
	if apiKey == "" {
		return "", errNoCredential("openrouter")
	}

	model := cfg.Model
	if model == "" {
		model = defaultLLMModel
	}

	client := openai.NewClient(option.WithAPIKey(apiKey), option.WithBaseURL(openRouterBaseURL))
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func callClaude(ctx context.Context, req executor.Request, cfg llmConfig, prompt string) (string, error) {
	apiKey := req.Broker.Anthropic(ctx)
	if apiKey == "" {
		return "", errNoCredential("anthropic")
	}

	model := cfg.Model
	if model == "" || !strings.Contains(model, "claude") {
		model = defaultClaudeModel
	}

	client := anthropic.NewClient(anthropicoption.WithAPIKey(apiKey))
	resp, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Content) == 0 {
		return "", errEmptyResponse
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		sb.WriteString(block.Text)
	}
	return sb.String(), nil
}
