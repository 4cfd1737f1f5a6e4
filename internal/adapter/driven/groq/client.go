// Package groq implements the ChatStreamer and ModelCatalog ports against an
// OpenAI-compatible chat completion API.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/codelens/internal/domain/model"
	"github.com/ericfisherdev/codelens/internal/domain/port/driven"
)

const catalogTimeout = 10 * time.Second

// Compile-time interface satisfaction checks.
var (
	_ driven.ChatStreamer = (*Client)(nil)
	_ driven.ModelCatalog = (*Client)(nil)
)

// Client talks to the chat completion API.
type Client struct {
	apiKey  model.Credential
	baseURL string
	stream  *http.Client // No overall timeout: a response may stream for minutes.
	catalog *http.Client // httpcache-backed, used only for GET /models.
}

// NewClient creates a Client with the following transport stack:
//  1. default transport for streamed completions (no response caching)
//  2. httpcache (in-memory, honours Cache-Control/ETag) for the model list
func NewClient(apiKey model.Credential, baseURL string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	cacheTransport.MarkCachedResponses = true

	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		stream:  &http.Client{},
		catalog: &http.Client{Transport: cacheTransport, Timeout: catalogTimeout},
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string, apiKey model.Credential) *Client {
	cacheTransport := httpcache.NewTransport(httpcache.NewMemoryCache())
	cacheTransport.Transport = httpClient.Transport
	cacheTransport.MarkCachedResponses = true

	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		stream:  httpClient,
		catalog: &http.Client{Transport: cacheTransport, Timeout: catalogTimeout},
	}
}

// StreamChat posts a chat completion request with stream=true and returns the
// response as a FragmentStream.
func (c *Client) StreamChat(ctx context.Context, req driven.ChatRequest) (driven.FragmentStream, error) {
	body := chatRequest{
		Model:       string(req.Model),
		Messages:    make([]chatMessage, 0, len(req.Messages)),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      true,
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Authorization", "Bearer "+string(c.apiKey))

	resp, err := c.stream.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending chat request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeAPIError(resp)
	}

	return newFragmentStream(resp.Body), nil
}

// ListModels returns the identifiers of every model the API currently serves.
// Responses are cached according to the server's caching headers.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("creating models request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+string(c.apiKey))

	resp, err := c.catalog.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	// Read to EOF so httpcache stores the response.
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading model list: %w", err)
	}

	var list modelList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decoding model list: %w", err)
	}

	ids := make([]string, 0, len(list.Data))
	for _, m := range list.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type modelList struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}
