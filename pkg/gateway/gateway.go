// Package gateway is the client side of the contact form: it validates input
// locally, normalizes it and performs a single submission attempt against the
// intake endpoint. It never retries and never queues.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// GenericRetryMessage is shown when the server did not supply a usable error.
const GenericRetryMessage = "Something went wrong. Please try again later."

// Mirrors the server-side shape check. The server re-validates regardless,
// but failing here avoids a pointless network call.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError reports a local precondition failure. No request was sent.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ServerError carries the server-provided error message verbatim.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// TransportError wraps a network failure reaching the intake endpoint. The
// user-facing message is deliberately generic.
type TransportError struct {
	cause error
}

func (e *TransportError) Error() string {
	return GenericRetryMessage
}

func (e *TransportError) Unwrap() error {
	return e.cause
}

// SubmitResult is the confirmation returned on success.
type SubmitResult struct {
	Message      string
	SubmissionID string
}

type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

func New(baseURL, anonKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type submitPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type submitResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	SubmissionID string `json:"submissionId"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Submit validates and normalizes the three fields, then performs one POST to
// the intake endpoint. Callers clear their form when the returned error is nil.
func (c *Client) Submit(ctx context.Context, name, email, message string) (*SubmitResult, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	message = strings.TrimSpace(message)

	if name == "" {
		return nil, &ValidationError{Reason: "Please enter your name."}
	}
	if email == "" {
		return nil, &ValidationError{Reason: "Please enter your email address."}
	}
	if !emailPattern.MatchString(email) {
		return nil, &ValidationError{Reason: "Please enter a valid email address."}
	}
	if message == "" {
		return nil, &ValidationError{Reason: "Please enter a message."}
	}

	body, err := json.Marshal(submitPayload{
		Name:    name,
		Email:   email,
		Message: message,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/contact-form", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.anonKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		serverMessage := GenericRetryMessage
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Error != "" {
			serverMessage = errResp.Error
		}
		return nil, &ServerError{StatusCode: resp.StatusCode, Message: serverMessage}
	}

	var result submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &TransportError{cause: err}
	}

	return &SubmitResult{
		Message:      result.Message,
		SubmissionID: result.SubmissionID,
	}, nil
}
