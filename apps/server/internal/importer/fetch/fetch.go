// Package fetch performs bounded HTTP retrieval: redirects are followed
// manually up to a fixed hop count, and response bodies are read through a
// byte-capped reader that aborts the connection the moment the cap is crossed.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// maxRedirects bounds the manual redirect loop. The upstream archive
	// host answers with one hop in practice; five is headroom, not policy.
	maxRedirects = 5

	userAgent = "bindle-importer"

	// maxJSONBytes caps metadata responses. Repository metadata is a few KB;
	// anything near this size is not the document we asked for.
	maxJSONBytes = 4 << 20

	clientTimeout = 60 * time.Second
	headerTimeout = 15 * time.Second
)

// HTTPStatusError is returned when the terminal response (after redirect
// resolution) is not 2xx.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

// Error implements the error interface.
func (e HTTPStatusError) Error() string {
	return fmt.Sprintf("GET %s returned %d", e.URL, e.StatusCode)
}

// SizeExceededError is returned when a response body crosses the byte cap
// mid-stream. The connection is aborted without buffering the remainder.
type SizeExceededError struct {
	URL      string
	MaxBytes int64
}

// Error implements the error interface.
func (e SizeExceededError) Error() string {
	return fmt.Sprintf("GET %s exceeded the %d byte cap", e.URL, e.MaxBytes)
}

// TooManyRedirectsError is returned when redirect resolution passes the hop bound.
type TooManyRedirectsError struct {
	URL  string
	Hops int
}

// Error implements the error interface.
func (e TooManyRedirectsError) Error() string {
	return fmt.Sprintf("GET %s followed %d redirects without terminating", e.URL, e.Hops)
}

// MalformedBodyError is returned by FetchJSON when the body does not parse.
type MalformedBodyError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e MalformedBodyError) Error() string {
	return fmt.Sprintf("GET %s returned a malformed body: %v", e.URL, e.Err)
}

// Unwrap exposes the underlying decode error.
func (e MalformedBodyError) Unwrap() error { return e.Err }

// Client is a bounded HTTP fetcher. The zero value is not usable; construct
// with NewClient.
type Client struct {
	httpClient *http.Client
	token      string
}

// NewClient creates a fetcher. token, when non-empty, is sent as a bearer
// credential on every request to raise the upstream rate ceiling.
func NewClient(token string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: clientTimeout,
			Transport: &http.Transport{
				ResponseHeaderTimeout: headerTimeout,
			},
			// Redirects are resolved manually in get so the hop count
			// is bounded and each hop carries our headers.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		token: token,
	}
}

// FetchBytes GETs url and returns at most maxBytes of body. The body is read
// incrementally; crossing the cap aborts the transfer with SizeExceededError.
func (c *Client) FetchBytes(ctx context.Context, url string, maxBytes int64) ([]byte, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	return readCapped(resp.Body, url, maxBytes)
}

// FetchJSON GETs url and decodes the JSON body into v.
func (c *Client) FetchJSON(ctx context.Context, url string, v any) error {
	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := readCapped(resp.Body, url, maxJSONBytes)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return MalformedBodyError{URL: url, Err: err}
	}
	return nil
}

// get issues the request and resolves up to maxRedirects hops by hand.
func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	current := url
	for hop := 0; hop <= maxRedirects; hop++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, current, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("build request for %s: %w", current, err)
		}
		req.Header.Set("User-Agent", userAgent)
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("GET %s: %w", current, err)
		}

		if resp.StatusCode >= 300 && resp.StatusCode < 400 {
			loc := resp.Header.Get("Location")
			resp.Body.Close() //nolint:errcheck
			if loc == "" {
				return nil, HTTPStatusError{URL: current, StatusCode: resp.StatusCode}
			}
			next, err := resp.Request.URL.Parse(loc)
			if err != nil {
				return nil, fmt.Errorf("resolve redirect %q from %s: %w", loc, current, err)
			}
			current = next.String()
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close() //nolint:errcheck
			return nil, HTTPStatusError{URL: current, StatusCode: resp.StatusCode}
		}
		return resp, nil
	}
	return nil, TooManyRedirectsError{URL: url, Hops: maxRedirects}
}

// readCapped reads r fully, failing as soon as more than maxBytes arrive.
// Returning before the body is drained makes the transport drop the
// connection, which is the cancellation the contract asks for.
func readCapped(r io.Reader, url string, maxBytes int64) ([]byte, error) {
	limited := io.LimitReader(r, maxBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, err)
	}
	if int64(len(data)) > maxBytes {
		return nil, SizeExceededError{URL: url, MaxBytes: maxBytes}
	}
	return data, nil
}
