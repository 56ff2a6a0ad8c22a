package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hyperjump/sense/internal/apperr"
)

// Defaults for an OpenAI-compatible embeddings endpoint.
const (
	DefaultBaseURL    = "https://api.siliconflow.cn/v1"
	DefaultModel      = "BAAI/bge-large-zh-v1.5"
	DefaultDimensions = 1024
	DefaultTimeout    = 30 * time.Second

	maxErrorBody = 4 << 10
)

// RateLimitError is wrapped around ErrRateLimited when the provider sent Retry-After.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%v, retry after %s", ErrRateLimited, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// RemoteEmbedder calls POST {base}/embeddings with Bearer auth.
type RemoteEmbedder struct {
	baseURL    string
	model      string
	apiKey     string
	dimensions int
	httpClient *http.Client
}

// RemoteOption configures a RemoteEmbedder.
type RemoteOption func(*RemoteEmbedder)

// WithHTTPClient replaces the default client, whose timeout is DefaultTimeout.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *RemoteEmbedder) { r.httpClient = c }
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) RemoteOption {
	return func(r *RemoteEmbedder) {
		if d > 0 {
			r.httpClient.Timeout = d
		}
	}
}

// NewRemoteEmbedder returns an embedder for baseURL. Empty baseURL, model or dimensions take defaults.
func NewRemoteEmbedder(baseURL, model, apiKey string, dimensions int, opts ...RemoteOption) (*RemoteEmbedder, error) {
	if apiKey == "" {
		return nil, apperr.Errorf(apperr.Config, "remote embedder", "", "api key is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	r := &RemoteEmbedder{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		apiKey:     apiKey,
		dimensions: dimensions,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

type embeddingRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	EncodingFormat string `json:"encoding_format"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
}

// Embed requests one embedding. Every failure is a Provider-kind error.
func (r *RemoteEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, providerErr(errors.New("empty input text"))
	}
	body, err := json.Marshal(embeddingRequest{Model: r.model, Input: text, EncodingFormat: "float"})
	if err != nil {
		return nil, providerErr(fmt.Errorf("marshal request: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, providerErr(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, providerErr(fmt.Errorf("api call: %w", err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, providerErr(statusError(resp))
	}

	var apiResp embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, providerErr(fmt.Errorf("%w: decode: %v", ErrMalformedResponse, err))
	}
	if len(apiResp.Data) == 0 {
		return nil, providerErr(fmt.Errorf("%w: no embeddings returned", ErrMalformedResponse))
	}
	vec := apiResp.Data[0].Embedding
	if len(vec) != r.dimensions {
		return nil, providerErr(fmt.Errorf("%w: got %d dimensions, want %d", ErrMalformedResponse, len(vec), r.dimensions))
	}
	return vec, nil
}

func statusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := fmt.Sprintf("api error %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, detail)
	case http.StatusTooManyRequests:
		if d, ok := parseRetryAfter(resp.Header.Get("Retry-After")); ok {
			return fmt.Errorf("%w: %s", &RateLimitError{RetryAfter: d}, detail)
		}
		return fmt.Errorf("%w: %s", ErrRateLimited, detail)
	default:
		return errors.New(detail)
	}
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(v string) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d, true
		}
		return 0, true
	}
	return 0, false
}

func providerErr(err error) error {
	return apperr.New(apperr.Provider, "embed", "", err)
}

// Dimensions returns the configured output dimension.
func (r *RemoteEmbedder) Dimensions() int { return r.dimensions }

// Model returns the model identifier sent with each request.
func (r *RemoteEmbedder) Model() string { return r.model }

// Close releases idle connections.
func (r *RemoteEmbedder) Close() error {
	r.httpClient.CloseIdleConnections()
	return nil
}
