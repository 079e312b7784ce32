// Package image implements avatar image generation: DALL-E first when an
// OpenAI key is configured, with a Replicate prediction fallback polled to
// completion under a hard ceiling.
package image

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/Bluenot3/ZENGEN/internal/bot"
	"github.com/Bluenot3/ZENGEN/internal/observability"
	"github.com/Bluenot3/ZENGEN/internal/provider"
	"github.com/Bluenot3/ZENGEN/internal/usage"
	llmerrors "github.com/Bluenot3/ZENGEN/pkg/errors"
)

const (
	// DefaultOpenAIEndpoint is the DALL-E image generation endpoint.
	DefaultOpenAIEndpoint = "https://api.openai.com/v1/images/generations"

	// DefaultReplicateEndpoint is the Replicate predictions endpoint.
	DefaultReplicateEndpoint = "https://api.replicate.com/v1/predictions"

	// DefaultPollInterval is the wait between Replicate status polls.
	DefaultPollInterval = time.Second

	// DefaultPollTimeout is the hard ceiling on Replicate polling.
	DefaultPollTimeout = 30 * time.Second
)

// DefaultStyleVersions maps generation styles to Replicate model versions.
var DefaultStyleVersions = map[string]string{
	"realistic": "stability-ai/sdxl:39ed52f2a78e934b3ba6e2a89f5b1c712de7dfea535525255b1aa35c5565e08b",
	"artistic":  "stability-ai/stable-diffusion:ac732df83cea7fff18b8472768c88ad041fa750ff7682a21affe81863cbe77e4",
	"anime":     "cjwbw/anything-v4.0:42a996d39a96aedc57b2e0aa8105dea39c9c89d9d266caf6bb4327a1c172674d",
	"3d":        "prompthero/openjourney:9936c2001faa2194a261c01381f90e65261879985476014a0a37a334593a05eb",
}

// Doer issues HTTP requests.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Request describes one image generation job.
type Request struct {
	Prompt         string
	NegativePrompt string
	Style          string
	Size           string
}

// Generator runs image generation jobs against the configured services.
type Generator struct {
	client            Doer
	logger            *observability.Logger
	versions          map[string]string
	openaiEndpoint    string
	replicateEndpoint string
	pollInterval      time.Duration
	pollTimeout       time.Duration
}

// Option configures a Generator.
type Option func(*Generator)

// WithHTTPClient overrides the HTTP transport.
func WithHTTPClient(client Doer) Option {
	return func(g *Generator) { g.client = client }
}

// WithEndpoints overrides the service endpoints, for tests.
func WithEndpoints(openaiEndpoint, replicateEndpoint string) Option {
	return func(g *Generator) {
		g.openaiEndpoint = openaiEndpoint
		g.replicateEndpoint = replicateEndpoint
	}
}

// WithPolling overrides the Replicate poll interval and ceiling.
func WithPolling(interval, timeout time.Duration) Option {
	return func(g *Generator) {
		g.pollInterval = interval
		g.pollTimeout = timeout
	}
}

// WithStyleVersions overrides the style to Replicate version mapping.
func WithStyleVersions(versions map[string]string) Option {
	return func(g *Generator) { g.versions = versions }
}

// NewGenerator creates an image generator.
func NewGenerator(logger *observability.Logger, opts ...Option) *Generator {
	g := &Generator{
		client:            &http.Client{Timeout: 60 * time.Second},
		logger:            logger,
		versions:          DefaultStyleVersions,
		openaiEndpoint:    DefaultOpenAIEndpoint,
		replicateEndpoint: DefaultReplicateEndpoint,
		pollInterval:      DefaultPollInterval,
		pollTimeout:       DefaultPollTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces one image URL. DALL-E is tried first when an OpenAI
// key exists; on failure or absence the Replicate fallback runs. A flat
// price is recorded against the bot's usage ledger per generated image.
func (g *Generator) Generate(ctx context.Context, b *bot.Bot, req Request) (string, error) {
	openaiKey, hasOpenAI := b.Credential(provider.KindOpenAI)
	replicateKey, hasReplicate := b.Credential(provider.KindReplicate)

	if !hasOpenAI && !hasReplicate {
		return "", llmerrors.NewMissingCredentialError("openai or replicate", "dall-e-3")
	}

	if hasOpenAI {
		url, err := g.generateDallE(ctx, openaiKey, req)
		if err == nil {
			b.Ledger().Record("dall-e-3", 1, usage.KindImage)
			return url, nil
		}
		g.logger.RedactedWarn("dall-e generation failed, falling back to replicate", "error", err)
	}

	if !hasReplicate {
		return "", llmerrors.NewProviderError("replicate", "", 0, "no available image generation service")
	}

	url, err := g.generateReplicate(ctx, replicateKey, req)
	if err != nil {
		return "", err
	}
	b.Ledger().Record("replicate-"+req.Style, 1, usage.KindImage)
	return url, nil
}

type dallERequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	Quality        string `json:"quality"`
	ResponseFormat string `json:"response_format"`
}

type dallEResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (g *Generator) generateDallE(ctx context.Context, apiKey string, req Request) (string, error) {
	size := req.Size
	if size == "" {
		size = "1024x1024"
	}

	body, err := json.Marshal(&dallERequest{
		Model:          "dall-e-3",
		Prompt:         req.Prompt,
		N:              1,
		Size:           size,
		Quality:        "standard",
		ResponseFormat: "url",
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.openaiEndpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	var resp dallEResponse
	if err := g.doJSON(httpReq, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", llmerrors.NewProviderError("openai", "dall-e-3", 0, resp.Error.Message)
	}
	if len(resp.Data) == 0 {
		return "", llmerrors.NewProviderError("openai", "dall-e-3", 0, "response contains no images")
	}
	return resp.Data[0].URL, nil
}

type replicateRequest struct {
	Version string         `json:"version"`
	Input   replicateInput `json:"input"`
}

type replicateInput struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	NumOutputs     int    `json:"num_outputs"`
}

type replicatePrediction struct {
	ID     string   `json:"id"`
	Status string   `json:"status"`
	Output []string `json:"output,omitempty"`
	Error  string   `json:"error,omitempty"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

func (g *Generator) generateReplicate(ctx context.Context, apiKey string, req Request) (string, error) {
	version, ok := g.versions[req.Style]
	if !ok {
		return "", llmerrors.NewProviderError("replicate", "", 0, fmt.Sprintf("unknown image style %q", req.Style))
	}

	body, err := json.Marshal(&replicateRequest{
		Version: version,
		Input: replicateInput{
			Prompt:         req.Prompt,
			NegativePrompt: req.NegativePrompt,
			NumOutputs:     1,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.replicateEndpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Token "+apiKey)

	var prediction replicatePrediction
	if err := g.doJSON(httpReq, &prediction); err != nil {
		return "", err
	}
	if prediction.Error != "" {
		return "", llmerrors.NewProviderError("replicate", "", 0, prediction.Error)
	}

	return g.pollPrediction(ctx, apiKey, prediction.URLs.Get)
}

// pollPrediction polls a Replicate prediction at a fixed interval until it
// succeeds, fails, or the ceiling elapses.
func (g *Generator) pollPrediction(ctx context.Context, apiKey, pollURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.pollTimeout)
	defer cancel()

	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", llmerrors.NewTimeoutError("replicate", "image generation timed out")
		case <-ticker.C:
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pollURL, nil)
		if err != nil {
			return "", fmt.Errorf("create poll request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Token "+apiKey)

		var status replicatePrediction
		if err := g.doJSON(httpReq, &status); err != nil {
			return "", err
		}

		switch status.Status {
		case "succeeded":
			if len(status.Output) == 0 {
				return "", llmerrors.NewProviderError("replicate", "", 0, "prediction succeeded with no output")
			}
			return status.Output[0], nil
		case "failed":
			return "", llmerrors.NewProviderError("replicate", "", 0, "image generation failed")
		}
	}
}

func (g *Generator) doJSON(req *http.Request, out any) error {
	resp, err := g.client.Do(req)
	if err != nil {
		// Context expiry during a poll surfaces as a timeout upstream.
		if req.Context().Err() != nil {
			return llmerrors.NewTimeoutError("replicate", "image generation timed out")
		}
		return llmerrors.NewTransportError("image", "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return llmerrors.NewTransportError("image", "", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
