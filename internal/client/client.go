// Package client fetches dashboard payloads from the territorio API.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"territorio/internal/models"
)

// RequestError is a transport failure or a non-2xx response.
type RequestError struct {
	Region     string
	StatusCode int
	Status     string
	Err        error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request %q: %v", e.Region, e.Err)
	}
	return fmt.Sprintf("request %q: %s", e.Region, e.Status)
}

func (e *RequestError) Unwrap() error { return e.Err }

// ParseError is a body that is not a valid dashboard payload.
type ParseError struct {
	Region string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v", e.Region, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the API rooted at baseURL. A zero timeout leaves
// the deadline to the caller's context.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Fetch issues GET /api/data/{region}.
func (c *Client) Fetch(ctx context.Context, region string) (*models.Payload, error) {
	endpoint := c.baseURL + "/api/data/" + url.PathEscape(region)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &RequestError{Region: region, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RequestError{Region: region, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{Region: region, StatusCode: resp.StatusCode, Status: statusText(resp)}
	}

	var p models.Payload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, &ParseError{Region: region, Err: err}
	}
	if err := p.Validate(); err != nil {
		return nil, &ParseError{Region: region, Err: err}
	}
	return &p, nil
}

// Regions issues GET /api/regions.
func (c *Client) Regions(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/regions", nil)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{StatusCode: resp.StatusCode, Status: statusText(resp)}
	}
	var regions []string
	if err := json.NewDecoder(resp.Body).Decode(&regions); err != nil {
		return nil, &ParseError{Err: err}
	}
	return regions, nil
}

func statusText(resp *http.Response) string {
	if t := http.StatusText(resp.StatusCode); t != "" {
		return t
	}
	return resp.Status
}
