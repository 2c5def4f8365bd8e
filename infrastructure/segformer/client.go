// Package segformer provides the clothes-segmentation inference client
// and the model wrapper exposed to the application layer.
package segformer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"stylelens-go/domain/segmentation"
)

// ModelMeta describes the model hosted by the inference service.
type ModelMeta struct {
	Name    string
	Classes int
	Device  string
}

// Client talks to the segmentation inference service.
type Client interface {
	// LoadModel asks the service to load model weights, returning its metadata.
	// Calling it on an already-loaded service is cheap.
	LoadModel(ctx context.Context) (*ModelMeta, error)

	// Predict runs inference and returns per-class logits at the model's
	// native output resolution.
	Predict(ctx context.Context, img image.Image) (*segmentation.ScoreMap, error)

	// IsHealthy returns true if the inference service is reachable.
	IsHealthy() bool

	// Close releases resources.
	Close()
}

// ClientConfig contains configuration for the inference client.
type ClientConfig struct {
	BaseURL        string
	Timeout        time.Duration
	HealthInterval time.Duration
	HealthTimeout  time.Duration
}

// DefaultClientConfig returns default inference client configuration.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:        "http://localhost:8600",
		Timeout:        60 * time.Second,
		HealthInterval: 5 * time.Second,
		HealthTimeout:  3 * time.Second,
	}
}

// HTTPClient implements Client against an HTTP inference backend.
type HTTPClient struct {
	config       *ClientConfig
	httpClient   *http.Client
	healthy      atomic.Bool
	healthCtx    context.Context
	healthCancel context.CancelFunc
	healthWg     sync.WaitGroup
}

// NewHTTPClient creates a new HTTP-based inference client.
func NewHTTPClient(config *ClientConfig) *HTTPClient {
	if config == nil {
		config = DefaultClientConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())

	client := &HTTPClient{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		healthCtx:    ctx,
		healthCancel: cancel,
	}

	client.performHealthCheck()

	client.healthWg.Add(1)
	go client.healthCheckLoop()

	return client
}

// LoadModel asks the service to load the model weights.
func (c *HTTPClient) LoadModel(ctx context.Context) (*ModelMeta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/v1/model/load", c.config.BaseURL), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp struct {
		Name    string `json:"name"`
		Classes int    `json:"num_classes"`
		Device  string `json:"device"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &ModelMeta{
		Name:    apiResp.Name,
		Classes: apiResp.Classes,
		Device:  apiResp.Device,
	}, nil
}

// Predict posts the image as PNG and decodes the returned logits.
func (c *HTTPClient) Predict(ctx context.Context, img image.Image) (*segmentation.ScoreMap, error) {
	if !c.IsHealthy() {
		return nil, fmt.Errorf("segmentation service is currently unavailable")
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/v1/segment", c.config.BaseURL), buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "image/png")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp struct {
		Classes int       `json:"classes"`
		Height  int       `json:"height"`
		Width   int       `json:"width"`
		Logits  []float32 `json:"logits"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	scores := &segmentation.ScoreMap{
		Classes: apiResp.Classes,
		Height:  apiResp.Height,
		Width:   apiResp.Width,
		Scores:  apiResp.Logits,
	}
	if err := scores.Validate(); err != nil {
		return nil, fmt.Errorf("malformed logits in response: %w", err)
	}
	return scores, nil
}

// IsHealthy returns true if the inference service is reachable.
func (c *HTTPClient) IsHealthy() bool {
	return c.healthy.Load()
}

// Close releases resources.
func (c *HTTPClient) Close() {
	if c.healthCancel != nil {
		c.healthCancel()
	}
	c.healthWg.Wait()
}

func (c *HTTPClient) healthCheckLoop() {
	defer c.healthWg.Done()

	ticker := time.NewTicker(c.config.HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.healthCtx.Done():
			return
		case <-ticker.C:
			c.performHealthCheck()
		}
	}
}

func (c *HTTPClient) performHealthCheck() {
	ctx, cancel := context.WithTimeout(c.healthCtx, c.config.HealthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/health", c.config.BaseURL), nil)
	if err != nil {
		c.healthy.Store(false)
		return
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.healthy.Store(false)
		return
	}
	defer resp.Body.Close()

	c.healthy.Store(resp.StatusCode == http.StatusOK)
}

// Ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)

// NoOpClient is a no-operation client for testing or when segmentation is disabled.
type NoOpClient struct{}

// NewNoOpClient creates a no-operation inference client.
func NewNoOpClient() *NoOpClient {
	return &NoOpClient{}
}

func (c *NoOpClient) LoadModel(ctx context.Context) (*ModelMeta, error) {
	return nil, fmt.Errorf("segmentation is disabled")
}

func (c *NoOpClient) Predict(ctx context.Context, img image.Image) (*segmentation.ScoreMap, error) {
	return nil, fmt.Errorf("segmentation is disabled")
}

func (c *NoOpClient) IsHealthy() bool {
	return false
}

func (c *NoOpClient) Close() {}

var _ Client = (*NoOpClient)(nil)
