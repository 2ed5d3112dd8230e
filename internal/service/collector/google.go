package collector

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"trendlens/internal/domain/trend"
)

// GoogleConfig configures the Google Trends collector
type GoogleConfig struct {
	FeedURL    string
	Region     string
	UserAgent  string
	HTTPClient *http.Client
}

// Google reads the public Google Trends RSS feed. No credential is needed.
type Google struct {
	config GoogleConfig
	parser *gofeed.Parser
}

// NewGoogle creates a Google Trends collector
func NewGoogle(config GoogleConfig) *Google {
	if config.Region == "" {
		config.Region = "US"
	}
	if config.UserAgent == "" {
		config.UserAgent = "trendlens/1.0"
	}

	parser := gofeed.NewParser()
	parser.Client = httpClientOrDefault(config.HTTPClient)
	parser.UserAgent = config.UserAgent

	return &Google{config: config, parser: parser}
}

// Source returns the source name
func (g *Google) Source() trend.Source {
	return trend.SourceGoogle
}

// FetchTrends returns the titles of the feed items in feed order
func (g *Google) FetchTrends(ctx context.Context, q trend.Query) ([]string, error) {
	if g.config.FeedURL == "" {
		return nil, unavailable(trend.SourceGoogle, errors.New("feed URL not configured"))
	}

	region := g.config.Region
	if q.Region != "" {
		region = strings.ToUpper(q.Region)
	}

	feedURL, err := url.Parse(g.config.FeedURL)
	if err != nil {
		return nil, unavailable(trend.SourceGoogle, err)
	}
	params := feedURL.Query()
	params.Set("geo", region)
	feedURL.RawQuery = params.Encode()

	feed, err := g.parser.ParseURLWithContext(feedURL.String(), ctx)
	if err != nil {
		return nil, unavailable(trend.SourceGoogle, err)
	}

	titles := make([]string, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		if title := strings.TrimSpace(item.Title); title != "" {
			titles = append(titles, title)
		}
	}

	return titles, nil
}
