// Package viewer serves the project pages that open a manifest in the
// Sandpack widget. Manifests come from the local public folder or, when a
// base URL is configured, over HTTP.
package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/manifest"
)

// ErrInvalidProjectID is returned for ids that are not a single plain path segment.
var ErrInvalidProjectID = errors.New("invalid project id")

// HTTPError is returned when a manifest fetch answers with a non-success status.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// ValidateID checks that id names a project folder.
func ValidateID(id string) error {
	if id == "" || strings.HasPrefix(id, ".") || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidProjectID, id)
	}
	return nil
}

// Client fetches project manifests, always bypassing caches.
type Client struct {
	// BaseURL is the site root; manifests live at {BaseURL}projects/{id}/{FileName}.
	BaseURL string

	// FileName is the manifest file name. Defaults to files.json.
	FileName string

	HTTP *http.Client
}

// NewClient creates a Client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// URL returns the manifest location of project id.
func (c *Client) URL(id string) string {
	base := c.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + "projects/" + url.PathEscape(id) + "/" + c.fileName()
}

// Fetch downloads and decodes the manifest of project id. Non-success
// statuses return *HTTPError; there are no retries.
func (c *Client) Fetch(ctx context.Context, id string) (manifest.Manifest, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(id), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode}
	}

	return decode(resp.Body)
}

func decode(r io.Reader) (manifest.Manifest, error) {
	var m manifest.Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	if m == nil {
		return nil, errors.New("manifest is empty")
	}
	return m, nil
}

func (c *Client) fileName() string {
	if c.FileName == "" {
		return manifest.DefaultFileName
	}
	return c.FileName
}
