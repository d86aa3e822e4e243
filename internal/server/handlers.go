package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"storyscope/internal/rss"
	"storyscope/internal/story"
)

const (
	maxRequestBytes    = 64 << 10
	defaultRSSPageSize = 30
)

// storyView is a story as returned by the listing endpoints.
type storyView struct {
	story.Story
	Site string `json:"site,omitempty"`
}

type listingResponse struct {
	Items      []storyView `json:"items"`
	TotalCount int         `json:"totalCount"`
}

func newListingResponse(page story.PagedResult[story.Story]) listingResponse {
	views := make([]storyView, len(page.Items))
	for i, st := range page.Items {
		views[i] = storyView{Story: st, Site: st.Site()}
	}
	return listingResponse{Items: views, TotalCount: page.TotalCount}
}

func (s *Server) handleGetNewStories(w http.ResponseWriter, r *http.Request) {
	req, err := decodeListingRequest(r)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	s.serveListing(w, r, req)
}

func (s *Server) handleListNewStories(w http.ResponseWriter, r *http.Request) {
	req, err := parseListingQuery(r)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	s.serveListing(w, r, req)
}

func (s *Server) serveListing(w http.ResponseWriter, r *http.Request, req story.ListingRequest) {
	page, err := s.stories.GetNewStories(r.Context(), req)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, newListingResponse(page))
}

// decodeListingRequest reads a JSON listing request. Fields the client omits
// keep their defaults; an empty or null body is rejected.
func decodeListingRequest(r *http.Request) (story.ListingRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes+1))
	if err != nil {
		return story.ListingRequest{}, badRequest("Unable to read request body")
	}
	if len(body) > maxRequestBytes {
		return story.ListingRequest{}, badRequest("Request body too large")
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return story.ListingRequest{}, badRequest("Request cannot be null")
	}

	req := story.NewListingRequest()
	if err := json.Unmarshal(body, &req); err != nil {
		return story.ListingRequest{}, badRequest("Malformed request body")
	}
	return req, nil
}

func parseListingQuery(r *http.Request) (story.ListingRequest, error) {
	q := r.URL.Query()
	req := story.NewListingRequest()
	req.SearchTerm = q.Get("searchTerm")

	var err error
	if req.PageNumber, err = queryInt(q.Get("pageNumber"), req.PageNumber); err != nil {
		return story.ListingRequest{}, badRequest("pageNumber must be an integer")
	}
	if req.PageSize, err = queryInt(q.Get("pageSize"), req.PageSize); err != nil {
		return story.ListingRequest{}, badRequest("pageSize must be an integer")
	}
	return req, nil
}

func queryInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func (s *Server) handleRSS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pageSize, err := queryInt(q.Get("pageSize"), defaultRSSPageSize)
	if err != nil {
		s.respondWithError(w, r, badRequest("pageSize must be an integer"))
		return
	}
	searchTerm := q.Get("searchTerm")

	page, err := s.stories.GetNewStories(r.Context(), story.ListingRequest{
		SearchTerm: searchTerm,
		PageNumber: 1,
		PageSize:   pageSize,
	})
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}

	title := "Hacker News: new stories"
	if searchTerm != "" {
		title += " matching " + strconv.Quote(searchTerm)
	}
	items := make([]rss.Item, 0, len(page.Items))
	for _, st := range page.Items {
		items = append(items, rssItem(st))
	}
	doc := rss.New(title, siteURL(r)+"/", "The newest stories submitted to Hacker News", time.Now(), items)

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if err := rss.Encode(w, doc); err != nil {
		s.logger.WarnContext(r.Context(), "writing rss response failed", "error", err)
	}
}

// rssItem links to the story itself, or to its discussion page for text posts.
func rssItem(st story.Story) rss.Item {
	link := st.URL
	if link == "" {
		link = st.DiscussionURL()
	}

	description := st.Site()
	if st.By != "" {
		if description != "" {
			description += " "
		}
		description += "by " + st.By
	}

	item := rss.Item{
		Title:       st.Title,
		Link:        link,
		Description: description,
		GUID:        rss.GUID{Value: st.DiscussionURL(), IsPermaLink: true},
	}
	if st.Time > 0 {
		item.PubDate = rss.FormatDate(time.Unix(st.Time, 0))
	}
	return item
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
