// pattern: Imperative Shell
package instance

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

const defaultTimeout = 2 * time.Second

// Client talks to a running projdex server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client targeting baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Health checks GET /api/health.
func (c *Client) Health() error {
	_, err := c.get("/api/health")
	return err
}

// CatalogSize returns the number of projects the server reports.
func (c *Client) CatalogSize() (int, error) {
	body, err := c.get("/api/projects")
	if err != nil {
		return 0, err
	}
	count := gjson.GetBytes(body, "count")
	if !count.Exists() {
		return 0, fmt.Errorf("unexpected response from projdex: missing count")
	}
	return int(count.Int()), nil
}

func (c *Client) get(path string) ([]byte, error) {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to projdex: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("projdex returned status %d: %s", resp.StatusCode, errorMessage(body))
	}
	return body, nil
}

// errorMessage pulls "error" out of a JSON error body, falling back to the
// raw text.
func errorMessage(body []byte) string {
	if msg := gjson.GetBytes(body, "error"); msg.Type == gjson.String {
		return msg.String()
	}
	return string(body)
}
