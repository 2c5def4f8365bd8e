// Package ollama provides the image-captioning model backed by an Ollama server.
package ollama

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/ollama/ollama/api"

	"stylelens-go/core/apperr"
	"stylelens-go/domain/caption"
	"stylelens-go/domain/vision"
)

// DefaultModel is the vision model used for captioning.
const DefaultModel = "llava:7b"

// DefaultPrompt is used when the user supplies no prompt.
const DefaultPrompt = "Describe this image in one concise sentence."

// MaxCaptionTokens caps caption length.
const MaxCaptionTokens = 50

// chatFunc matches api.Client.Chat; injectable for tests.
type chatFunc func(ctx context.Context, req *api.ChatRequest, fn api.ChatResponseFunc) error

// showFunc matches api.Client.Show; injectable for tests.
type showFunc func(ctx context.Context, req *api.ShowRequest) (*api.ShowResponse, error)

// pullFunc matches api.Client.Pull; injectable for tests.
type pullFunc func(ctx context.Context, req *api.PullRequest, fn api.PullProgressFunc) error

// CaptionerConfig configures the captioning model.
type CaptionerConfig struct {
	Host    string
	Model   string
	Timeout time.Duration
}

// DefaultCaptionerConfig returns default captioner configuration.
func DefaultCaptionerConfig() *CaptionerConfig {
	return &CaptionerConfig{
		Host:    "http://localhost:11434",
		Model:   DefaultModel,
		Timeout: 120 * time.Second,
	}
}

// Captioner is a lazily loaded captioning model backed by an Ollama server.
type Captioner struct {
	config *CaptionerConfig
	logger *slog.Logger
	chat   chatFunc
	show   showFunc
	pull   pullFunc

	mu     sync.Mutex
	loaded bool
	info   vision.ModelInfo
}

// NewCaptioner creates an unloaded captioning model.
func NewCaptioner(config *CaptionerConfig, logger *slog.Logger) (*Captioner, error) {
	if config == nil {
		config = DefaultCaptionerConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	base, err := url.Parse(config.Host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host: %w", err)
	}
	client := api.NewClient(base, &http.Client{Timeout: config.Timeout})

	return &Captioner{
		config: config,
		logger: logger,
		chat:   client.Chat,
		show:   client.Show,
		pull:   client.Pull,
		info: vision.ModelInfo{
			Name:        config.Model,
			Kind:        "Image Captioning (BLIP)",
			Device:      "cpu",
			Description: "Generates a short natural-language caption for the image",
		},
	}, nil
}

// Name returns the model identifier.
func (c *Captioner) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.info.Name
}

// EnsureLoaded verifies the model is available on the server on first call
// and is a no-op afterwards. A model missing from the server is pulled from
// the model hub. A failed load leaves the model unloaded.
func (c *Captioner) EnsureLoaded(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return nil
	}

	start := time.Now()
	if _, err := c.show(ctx, &api.ShowRequest{Model: c.config.Model}); err != nil {
		c.logger.Info("Caption model not present, pulling", "model", c.config.Model)
		pullErr := c.pull(ctx, &api.PullRequest{Model: c.config.Model}, func(resp api.ProgressResponse) error {
			return nil
		})
		if pullErr != nil {
			return apperr.NewModelLoad(c.config.Model, pullErr)
		}
		if _, err := c.show(ctx, &api.ShowRequest{Model: c.config.Model}); err != nil {
			return apperr.NewModelLoad(c.config.Model, err)
		}
	}
	elapsed := time.Since(start)

	c.info.Loaded = true
	c.info.LoadDuration = elapsed
	c.loaded = true

	c.logger.Info("Caption model loaded", "model", c.config.Model, "elapsed", elapsed)
	return nil
}

// Info reports display-only metadata.
func (c *Captioner) Info() vision.ModelInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.info
}

// Caption generates a caption for the image. An empty prompt falls back
// to DefaultPrompt. The raw model output is cleaned of special tokens
// and collapsed whitespace before it is returned.
func (c *Captioner) Caption(ctx context.Context, img image.Image, prompt string) (string, error) {
	if err := c.EnsureLoaded(ctx); err != nil {
		return "", err
	}
	if prompt == "" {
		prompt = DefaultPrompt
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	stream := false
	req := &api.ChatRequest{
		Model: c.config.Model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: prompt,
				Images:  []api.ImageData{api.ImageData(buf.Bytes())},
			},
		},
		Stream: &stream,
		Options: map[string]any{
			"num_predict": MaxCaptionTokens,
			"temperature": 0,
		},
	}

	var raw string
	err := c.chat(ctx, req, func(resp api.ChatResponse) error {
		raw += resp.Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("caption request failed: %w", err)
	}

	cleaned := caption.Clean(raw)
	if cleaned == "" {
		return "", fmt.Errorf("empty caption from model")
	}
	return cleaned, nil
}

var _ vision.Captioner = (*Captioner)(nil)
