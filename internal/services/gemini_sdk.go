package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// SDKTransport performs the exchange through the official Go client.
type SDKTransport struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewSDKTransport(ctx context.Context, apiKey, modelName string) (*SDKTransport, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &SDKTransport{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

func (t *SDKTransport) Close() error {
	return t.client.Close()
}

func (t *SDKTransport) Generate(ctx context.Context, message string) (Exchange, error) {
	resp, err := t.model.GenerateContent(ctx, genai.Text(message))
	if err != nil {
		return sdkErrorExchange(err)
	}

	text, ok := firstPartText(resp)
	if !ok {
		return Exchange{Outcome: OutcomeMalformed}, nil
	}
	return Exchange{Outcome: OutcomeOK, Text: text}, nil
}

func sdkErrorExchange(err error) (Exchange, error) {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return Exchange{Outcome: OutcomeAPIError, StatusCode: apiErr.Code, Body: apiErr.Body}, nil
	}

	// A blocked prompt is an answer without usable text.
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return Exchange{Outcome: OutcomeMalformed}, nil
	}

	return Exchange{}, &TransportError{Err: err}
}

func firstPartText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	cand := resp.Candidates[0]
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		return "", false
	}
	t, ok := cand.Content.Parts[0].(genai.Text)
	if !ok {
		return "", false
	}
	return string(t), true
}
