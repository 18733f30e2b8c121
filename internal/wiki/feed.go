package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// rcProps selects the record fields the normalizer needs.
const rcProps = "user|comment|flags|title|sizes|loginfo|ids|revision"

// UserAgent identifies this process to the wiki; Wikimedia sites reject
// anonymous API consumers. Shared by the feed client and the stream
// listener.
const UserAgent = "wikinotify (https://github.com/wikinotify)"

// Client fetches the recentchanges feed from a MediaWiki action API.
type Client struct {
	BaseURL    string // wiki root, no trailing slash
	APIPath    string // usually /api.php
	HTTPClient *http.Client
	UserAgent  string
}

// NewClient creates a feed client for the wiki at baseURL.
func NewClient(baseURL, apiPath string) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIPath:    apiPath,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		UserAgent:  UserAgent,
	}
}

// RecentChanges fetches the current recentchanges window, newest first.
// Any transport, status or decode problem is reported as a *FetchError.
func (c *Client) RecentChanges(ctx context.Context) ([]RecentChange, error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("list", "recentchanges")
	q.Set("format", "json")
	q.Set("rcprop", rcProps)
	u := c.BaseURL + c.APIPath + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	// Wikimedia sites require an identifying user agent.
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{URL: u, Err: fmt.Errorf("status %d: %s", resp.StatusCode, body)}
	}

	var result struct {
		Query struct {
			RecentChanges []RecentChange `json:"recentchanges"`
		} `json:"query"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &FetchError{URL: u, Err: fmt.Errorf("decode response: %w", err)}
	}

	return result.Query.RecentChanges, nil
}
