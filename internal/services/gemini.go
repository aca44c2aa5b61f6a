package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"
)

// FallbackReply is shown when the API answers 200 but the reply text is missing.
const FallbackReply = "Sorry, something went wrong."

// Outcome classifies what the API answered with.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeMalformed
	OutcomeAPIError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeMalformed:
		return "malformed_response"
	case OutcomeAPIError:
		return "api_error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Exchange is the parsed result of one generateContent call. Only transport
// failures are reported as Go errors; everything the API answered with ends
// up here.
type Exchange struct {
	Outcome    Outcome `json:"outcome"`
	Text       string  `json:"text,omitempty"`
	StatusCode int     `json:"status_code,omitempty"`
	Body       string  `json:"body,omitempty"`
}

// Reply picks the string shown to the user as the bot message.
func (e Exchange) Reply() string {
	switch e.Outcome {
	case OutcomeOK:
		return e.Text
	case OutcomeAPIError:
		return fmt.Sprintf("Error: %d, %s", e.StatusCode, e.Body)
	default:
		return FallbackReply
	}
}

// Transport performs a single uncached exchange with the API.
type Transport interface {
	Generate(ctx context.Context, message string) (Exchange, error)
}

// GeminiClient sends one message per call and memoizes results by exact input.
type GeminiClient struct {
	transport Transport
	cache     ReplyCache
	group     singleflight.Group
}

func NewGeminiClient(transport Transport, cache ReplyCache) *GeminiClient {
	if cache == nil {
		cache = NewMemoryReplyCache()
	}
	return &GeminiClient{
		transport: transport,
		cache:     cache,
	}
}

// Exchange returns the memoized result for message, calling the API on a miss.
// Concurrent misses for the same message share one call.
func (c *GeminiClient) Exchange(ctx context.Context, message string) (Exchange, error) {
	if ex, ok := c.cache.Get(ctx, message); ok {
		return ex, nil
	}

	v, err, _ := c.group.Do(message, func() (interface{}, error) {
		if ex, ok := c.cache.Get(ctx, message); ok {
			return ex, nil
		}
		ex, err := c.transport.Generate(ctx, message)
		if err != nil {
			return Exchange{}, err
		}
		c.cache.Set(ctx, message, ex)
		return ex, nil
	})
	if err != nil {
		return Exchange{}, err
	}
	return v.(Exchange), nil
}

// Send returns the text to display as the bot's reply.
func (c *GeminiClient) Send(ctx context.Context, message string) (string, error) {
	ex, err := c.Exchange(ctx, message)
	if err != nil {
		return "", err
	}
	return ex.Reply(), nil
}

// ──── REST transport ────

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

// RESTTransport talks to the generateContent endpoint directly, with the API
// key in the query string.
type RESTTransport struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
}

func NewRESTTransport(baseURL, model, apiKey string) *RESTTransport {
	return &RESTTransport{
		// No timeout: a submission waits until the service answers.
		httpClient: &http.Client{},
		baseURL:    baseURL,
		model:      model,
		apiKey:     apiKey,
	}
}

func (t *RESTTransport) endpoint() string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		t.baseURL, url.PathEscape(t.model), url.QueryEscape(t.apiKey))
}

func (t *RESTTransport) Generate(ctx context.Context, message string) (Exchange, error) {
	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: message}}}},
	})
	if err != nil {
		return Exchange{}, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return Exchange{}, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return Exchange{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Exchange{}, &TransportError{Err: err}
	}

	return parseGenerateResponse(resp.StatusCode, body), nil
}

func parseGenerateResponse(status int, body []byte) Exchange {
	if status != http.StatusOK {
		return Exchange{Outcome: OutcomeAPIError, StatusCode: status, Body: string(body)}
	}

	if !gjson.ValidBytes(body) {
		return Exchange{Outcome: OutcomeMalformed}
	}

	text := gjson.GetBytes(body, "candidates.0.content.parts.0.text")
	if !text.Exists() {
		return Exchange{Outcome: OutcomeMalformed}
	}

	return Exchange{Outcome: OutcomeOK, Text: text.String()}
}
