package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Notification is the derived push payload: sender name as title, message
// text (or a type placeholder) as body.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// PushSender best-effort delivers a notification to a set of device tokens.
// Callers never rely on the outcome.
type PushSender interface {
	Deliver(ctx context.Context, tokens []string, n Notification) error
}

// ExpoPush posts to an Expo-compatible push endpoint.
type ExpoPush struct {
	endpoint string
	client   *http.Client
}

func NewExpoPush(endpoint string, timeout time.Duration) *ExpoPush {
	return &ExpoPush{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *ExpoPush) Deliver(ctx context.Context, tokens []string, n Notification) error {
	if p.endpoint == "" || len(tokens) == 0 {
		return nil
	}
	payload, err := json.Marshal(map[string]any{
		"to":    tokens,
		"title": n.Title,
		"body":  n.Body,
		"sound": "default",
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("push endpoint returned %d", resp.StatusCode)
	}
	return nil
}
