package story

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storyscope/internal/metrics"
)

// Upstream is the story API the Service reads from.
type Upstream interface {
	// NewStoryIDs returns the newest story ids, newest first.
	NewStoryIDs(ctx context.Context) ([]int, error)
	// Item returns the story for id, or nil when the upstream has none.
	Item(ctx context.Context, id int) (*Story, error)
}

const maxResponseBytes = 1 << 20

// Client talks to the Hacker News Firebase API.
type Client struct {
	baseURL   string
	client    *http.Client
	userAgent string
}

// NewClient builds a Client whose every call is bounded by timeout.
func NewClient(baseURL string, timeout time.Duration, version string) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   256,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: timeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout, Transport: transport}, version)
}

func NewClientWithHTTP(baseURL string, hc *http.Client, version string) *Client {
	if version == "" {
		version = "dev"
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    hc,
		userAgent: "storyscope/" + version,
	}
}

func (c *Client) NewStoryIDs(ctx context.Context) ([]int, error) {
	var ids []int
	if err := c.getJSON(ctx, "/newstories.json", &ids); err != nil {
		metrics.RecordUpstream("ids", "error")
		return nil, err
	}
	metrics.RecordUpstream("ids", "ok")
	return ids, nil
}

func (c *Client) Item(ctx context.Context, id int) (*Story, error) {
	var s *Story
	if err := c.getJSON(ctx, "/item/"+strconv.Itoa(id)+".json", &s); err != nil {
		metrics.RecordUpstream("item", "error")
		return nil, err
	}
	if s == nil {
		metrics.RecordUpstream("item", "absent")
		return nil, nil
	}
	metrics.RecordUpstream("item", "ok")
	return s, nil
}

// getJSON decodes the response body into dst. A JSON null or an empty body
// leaves dst untouched.
func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("error fetching %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected response status %d from %s", resp.StatusCode, path)
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	err = json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", path, err)
	}
	return nil
}
