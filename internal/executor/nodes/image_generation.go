package nodes

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/go-resty/resty/v2"

	"github.com/SHXZ7/autofloww/internal/adapter"
	"github.com/SHXZ7/autofloww/internal/executor"
)

const (
	defaultImageSize = "1024x1024"
	imagePromptLimit = 500
	imageOutputDir   = "generated_images"
)

type imageConfig struct {
	Prompt   string `json:"prompt"`
	Provider string `json:"provider"` // "openai" (default) or "stability"
	Size     string `json:"size"`
	Quality  string `json:"quality"`
}

// ImageGeneration generates an image via OpenAI's Images API or
// Stability's REST API, writing the PNG to disk, per spec §4.3.
type ImageGeneration struct{}

func NewImageGeneration() *ImageGeneration { return &ImageGeneration{} }

func (ImageGeneration) Execute(ctx context.Context, req executor.Request) adapter.Result {
	var cfg imageConfig
	if len(req.Node.Config) > 0 {
		if err := json.Unmarshal(req.Node.Config, &cfg); err != nil {
			return adapter.Error("Error: invalid image_generation config: %v", err)
		}
	}

	prompt := cfg.Prompt
	if prompt == "" {
		text, ok := firstFreeFormText(req.Predecessors)
		if !ok {
			return adapter.Error("Error: Image prompt is required")
		}
		if len(text) > imagePromptLimit {
			text = text[:imagePromptLimit]
		}
		prompt = text
	}

	size := cfg.Size
	if size == "" {
		size = defaultImageSize
	}

	var (
		data []byte
		err  error
	)
	if cfg.Provider == "stability" {
		data, err = generateViaStability(ctx, req, prompt)
	} else {
		data, err = generateViaOpenAI(ctx, req, prompt, size, cfg.Quality)
	}
	if err != nil {
		return adapter.Error("Error: %v", err)
	}

	path, err := writeGeneratedImage(data)
	if err != nil {
		return adapter.Error("Error: %v", err)
	}
	return adapter.ImageGenerated(path)
}

func generateViaOpenAI(ctx context.Context, req executor.Request, prompt, size, quality string) ([]byte, error) {
	apiKey := req.Broker.OpenAI(ctx)
	if apiKey == "" {
		return nil, errNoCredential("openai")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))
	params := openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModelDallE3,
		Size:           openai.ImageGenerateParamsSize(size),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	}
	if quality != "" {
		params.Quality = openai.ImageGenerateParamsQuality(quality)
	}

	resp, err := client.Images.Generate(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, errEmptyResponse
	}
	return base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
}

func generateViaStability(ctx context.Context, req executor.Request, prompt string) ([]byte, error) {
	apiKey := req.Broker.Stability(ctx)
	if apiKey == "" {
		return nil, errNoCredential("stability")
	}

	var result struct {
		Artifacts []struct {
			Base64 string `json:"base64"`
		} `json:"artifacts"`
	}

	client := resty.New().SetTimeout(llmTimeout)
	resp, err := client.R().SetContext(ctx).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetBody(map[string]interface{}{
			"text_prompts": []map[string]string{{"text": prompt}},
		}).
		SetResult(&result).
		Post("https://api.stability.ai/v1/generation/stable-diffusion-xl-1024-v1-0/text-to-image")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("stability returned status %d", resp.StatusCode())
	}
	if len(result.Artifacts) == 0 {
		return nil, errEmptyResponse
	}
	return base64.StdEncoding.DecodeString(result.Artifacts[0].Base64)
}

func writeGeneratedImage(data []byte) (string, error) {
	if err := os.MkdirAll(imageOutputDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(imageOutputDir, fmt.Sprintf("image_%d.png", time.Now().UnixNano()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
