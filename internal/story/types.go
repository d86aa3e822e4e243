package story

import (
	"net"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/publicsuffix"
)

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
)

// Story is a single upstream item. Title is empty when the upstream omits it.
type Story struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
	By    string `json:"by,omitempty"`
	Score int    `json:"score,omitempty"`
	Time  int64  `json:"time,omitempty"`
	Type  string `json:"type,omitempty"`
}

// Site returns the registrable domain of the story link, e.g. "github.com"
// for https://gist.github.com/x. It is empty for text posts.
func (s Story) Site() string {
	if s.URL == "" {
		return ""
	}
	u, err := url.Parse(s.URL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ""
	}
	if net.ParseIP(host) != nil {
		return host
	}
	site, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return strings.TrimPrefix(host, "www.")
	}
	return site
}

// DiscussionURL is the Hacker News comments page for the story.
func (s Story) DiscussionURL() string {
	return "https://news.ycombinator.com/item?id=" + strconv.Itoa(s.ID)
}

// ListingRequest selects one page of the current stories.
type ListingRequest struct {
	SearchTerm string `json:"searchTerm"`
	PageNumber int    `json:"pageNumber"`
	PageSize   int    `json:"pageSize"`
}

// NewListingRequest returns a request for the first default-sized page.
// Decode inbound JSON into it so absent fields keep their defaults.
func NewListingRequest() ListingRequest {
	return ListingRequest{PageNumber: DefaultPageNumber, PageSize: DefaultPageSize}
}

// PagedResult is one page of items plus the number of items matching the
// filter across all pages.
type PagedResult[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
}
