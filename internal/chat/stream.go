package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v4"
)

// ErrNotConfigured is returned when no Stream credentials are set.
var ErrNotConfigured = errors.New("chat provider is not configured")

// User is the subset of a profile mirrored into the chat provider.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// StreamClient talks to the Stream Chat REST API.
type StreamClient struct {
	apiKey    string
	apiSecret string
	baseURL   string
	http      *http.Client
}

func NewStreamClient(apiKey, apiSecret, baseURL string) *StreamClient {
	return &StreamClient{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *StreamClient) configured() bool {
	return c.apiKey != "" && c.apiSecret != ""
}

// APIKey is the public key clients need alongside a user token.
func (c *StreamClient) APIKey() string { return c.apiKey }

// CreateToken mints a user token for the chat client SDK.
func (c *StreamClient) CreateToken(userID string) (string, error) {
	if !c.configured() {
		return "", ErrNotConfigured
	}
	if userID == "" {
		return "", errors.New("user id is required")
	}
	return c.sign(gojwt.MapClaims{"user_id": userID})
}

// UpsertUser creates or updates a user record on the provider.
func (c *StreamClient) UpsertUser(ctx context.Context, user User) error {
	if !c.configured() {
		return ErrNotConfigured
	}

	body, err := json.Marshal(map[string]any{
		"users": map[string]User{user.ID: user},
	})
	if err != nil {
		return err
	}

	serverToken, err := c.sign(gojwt.MapClaims{"server": true})
	if err != nil {
		return err
	}

	endpoint := c.baseURL + "/users?api_key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", serverToken)
	req.Header.Set("Stream-Auth-Type", "jwt")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upsert chat user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("failed to upsert chat user: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

func (c *StreamClient) sign(claims gojwt.MapClaims) (string, error) {
	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(c.apiSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign chat token: %w", err)
	}
	return signed, nil
}
