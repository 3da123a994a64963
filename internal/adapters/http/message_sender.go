package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bft-labs/herald/internal/domain"
	"github.com/bft-labs/herald/internal/ports"
)

// Provider defaults for the Graph messages endpoint.
const (
	DefaultBaseURL    = "https://graph.facebook.com"
	DefaultAPIVersion = "v23.0"
)

// maxBodyBytes caps how much of a provider response is kept.
const maxBodyBytes = 64 << 10

// MessageSender implements ports.MessageSender against the Graph API.
type MessageSender struct {
	client     ports.HTTPClient
	baseURL    string
	apiVersion string
}

// NewMessageSender creates a sender. Empty baseURL or apiVersion fall back
// to the defaults.
func NewMessageSender(client ports.HTTPClient, baseURL, apiVersion string) *MessageSender {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	return &MessageSender{
		client:     client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiVersion: strings.Trim(apiVersion, "/"),
	}
}

// Send posts msg to /{version}/{phone_number_id}/messages.
func (s *MessageSender) Send(ctx context.Context, metadata ports.SendMetadata, msg *domain.Message) (ports.Response, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return ports.Response{}, fmt.Errorf("marshal message: %w", err)
	}

	url := s.Endpoint(metadata.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return ports.Response{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+metadata.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return ports.Response{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	// A failed body read keeps the status and whatever was read.
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	return ports.Response{Status: resp.StatusCode, Body: respBody}, nil
}

// Endpoint returns the messages URL for a sender identity.
func (s *MessageSender) Endpoint(phoneNumberID string) string {
	return s.baseURL + "/" + s.apiVersion + "/" + phoneNumberID + "/messages"
}
