package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"trendlens/internal/domain/channel"
)

// ErrSearchUnavailable wraps every failure of the channel search itself
var ErrSearchUnavailable = errors.New("channel search unavailable")

// SearchConfig configures the search-aggregation index
type SearchConfig struct {
	BaseURL    string
	APIKey     string
	Engine     string
	HTTPClient *http.Client
}

// SearchIndex discovers channels by running a "site:t.me" web search through a
// SerpAPI-compatible aggregation API. It implements channel.Index.
type SearchIndex struct {
	config     SearchConfig
	httpClient *http.Client
}

// NewSearchIndex creates a search index client
func NewSearchIndex(config SearchConfig) *SearchIndex {
	if config.BaseURL == "" {
		config.BaseURL = "https://serpapi.com"
	}
	if config.Engine == "" {
		config.Engine = "google"
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &SearchIndex{config: config, httpClient: httpClient}
}

type searchResponse struct {
	Error          string `json:"error"`
	OrganicResults []struct {
		Position int    `json:"position"`
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
	} `json:"organic_results"`
}

// SearchChannels returns up to limit candidates in result order. Hits without a
// public username are returned with an empty Identifier.
func (s *SearchIndex) SearchChannels(ctx context.Context, keyword string, limit int) ([]channel.Candidate, error) {
	if s.config.APIKey == "" {
		return nil, fmt.Errorf("%w: search API key not configured", ErrSearchUnavailable)
	}
	if limit <= 0 {
		limit = 20
	}

	params := url.Values{}
	params.Set("engine", s.config.Engine)
	params.Set("q", "site:t.me "+strings.TrimSpace(keyword))
	params.Set("num", strconv.Itoa(limit))
	params.Set("api_key", s.config.APIKey)
	endpoint := fmt.Sprintf("%s/search.json?%s", strings.TrimRight(s.config.BaseURL, "/"), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrSearchUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed", ErrSearchUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrSearchUnavailable, err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: status %d with undecodable body", ErrSearchUnavailable, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrSearchUnavailable, resp.StatusCode, parsed.Error)
	}

	// A 200 with an error and no results means "nothing found".
	candidates := make([]channel.Candidate, 0, len(parsed.OrganicResults))
	for _, r := range parsed.OrganicResults {
		if len(candidates) == limit {
			break
		}
		identifier, _ := channel.NormalizeIdentifier(r.Link)
		candidates = append(candidates, channel.Candidate{
			Identifier: identifier,
			Title:      r.Title,
			Link:       r.Link,
		})
	}

	return candidates, nil
}
