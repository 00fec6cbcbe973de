package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultIdentityEndpoint = "https://identitytoolkit.googleapis.com/v1"

// IdentityClient talks to the Identity Toolkit REST API for the operations
// the Admin SDK does not cover: email+password sign-in and password-reset
// emails. These are the calls the mobile client performs against the
// provider directly.
type IdentityClient struct {
	APIKey     string
	Endpoint   string
	HTTPClient *http.Client
}

// NewIdentityClient creates an IdentityClient for the given web API key.
func NewIdentityClient(apiKey string) *IdentityClient {
	return &IdentityClient{
		APIKey:     apiKey,
		Endpoint:   defaultIdentityEndpoint,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// SignInResult is the subset of the provider's sign-in response the backend
// consumes.
type SignInResult struct {
	UID     string `json:"localId"`
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
}

// IdentityError is a non-2xx response from the provider.
type IdentityError struct {
	StatusCode int
	Message    string
}

func (e *IdentityError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("identity provider error (HTTP %d)", e.StatusCode)
	}
	return fmt.Sprintf("identity provider error (HTTP %d): %s", e.StatusCode, e.Message)
}

// SignInWithPassword authenticates an email+password pair. A single attempt
// is made; any failure is returned as-is with no retry.
func (c *IdentityClient) SignInWithPassword(ctx context.Context, email, password string) (*SignInResult, error) {
	body := map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	var result SignInResult
	if err := c.post(ctx, "accounts:signInWithPassword", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SendPasswordResetEmail asks the provider to email a password-reset link.
func (c *IdentityClient) SendPasswordResetEmail(ctx context.Context, email string) error {
	body := map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}
	return c.post(ctx, "accounts:sendOobCode", body, nil)
}

func (c *IdentityClient) post(ctx context.Context, action string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", action, err)
	}

	url := fmt.Sprintf("%s/%s?key=%s", c.Endpoint, action, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling identity provider: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading identity provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(data, &apiErr)
		return &IdentityError{StatusCode: resp.StatusCode, Message: apiErr.Error.Message}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding %s response: %w", action, err)
		}
	}
	return nil
}
