// Package triage drives the admin workflow: reviewing submissions and moving
// them through the new/read/replied/archived states.
package triage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"contact-service/internal/submission"
)

// Client is a thin HTTP client for the /admin API, authenticated with the
// service role key.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

func NewClient(baseURL, serviceRoleKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceRoleKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// ErrNotFound reports that the referenced submission no longer exists, as
// opposed to a transport or server failure.
var ErrNotFound = submission.ErrSubmissionNotFound

func (c *Client) List(ctx context.Context) ([]submission.Submission, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/admin/submissions", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submissions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list submissions returned status %d", resp.StatusCode)
	}

	var subs []submission.Submission
	if err := json.NewDecoder(resp.Body).Decode(&subs); err != nil {
		return nil, fmt.Errorf("failed to decode submissions: %w", err)
	}
	return subs, nil
}

func (c *Client) UpdateStatus(ctx context.Context, id string, status submission.Status) (*submission.Submission, error) {
	body, err := json.Marshal(map[string]submission.Status{"status": status})
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPatch, "/admin/submissions/"+id+"/status", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var sub submission.Submission
		if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
			return nil, fmt.Errorf("failed to decode submission: %w", err)
		}
		return &sub, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("update status returned status %d", resp.StatusCode)
	}
}

func (c *Client) Delete(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/admin/submissions/"+id, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("delete returned status %d", resp.StatusCode)
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body *bytes.Reader) (*http.Request, error) {
	var req *http.Request
	var err error
	if body == nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	return req, nil
}
