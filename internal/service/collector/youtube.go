package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"trendlens/internal/domain/trend"
)

// YouTubeConfig configures the YouTube trending collector
type YouTubeConfig struct {
	BaseURL    string
	APIKey     string
	Region     string
	MaxResults int
	HTTPClient *http.Client
}

// YouTube lists the titles of the most popular videos of a region
type YouTube struct {
	config  YouTubeConfig
	service *youtube.Service
	initErr error
}

// NewYouTube creates a YouTube trending collector
func NewYouTube(config YouTubeConfig) *YouTube {
	if config.BaseURL == "" {
		config.BaseURL = "https://www.googleapis.com"
	}
	if config.Region == "" {
		config.Region = "US"
	}
	if config.MaxResults <= 0 {
		config.MaxResults = 10
	}

	// With an explicit HTTP client the library skips credential discovery,
	// so the API key is sent per call.
	service, err := youtube.NewService(context.Background(),
		option.WithHTTPClient(httpClientOrDefault(config.HTTPClient)),
		option.WithEndpoint(strings.TrimRight(config.BaseURL, "/")+"/"),
	)

	return &YouTube{
		config:  config,
		service: service,
		initErr: err,
	}
}

// Source returns the source name
func (y *YouTube) Source() trend.Source {
	return trend.SourceYouTube
}

// FetchTrends returns the snippet titles of the mostPopular chart
func (y *YouTube) FetchTrends(ctx context.Context, q trend.Query) ([]string, error) {
	if y.config.APIKey == "" {
		return nil, unavailable(trend.SourceYouTube, errors.New("YouTube API key not configured"))
	}
	if y.initErr != nil {
		return nil, unavailable(trend.SourceYouTube, fmt.Errorf("failed to create YouTube service: %w", y.initErr))
	}

	region := y.config.Region
	if q.Region != "" {
		region = strings.ToUpper(q.Region)
	}

	response, err := y.service.Videos.List([]string{"snippet"}).
		Chart("mostPopular").
		RegionCode(region).
		MaxResults(int64(y.config.MaxResults)).
		Context(ctx).
		Do(googleapi.QueryParameter("key", y.config.APIKey))
	if err != nil {
		return nil, unavailable(trend.SourceYouTube, youtubeAPIError(err))
	}

	titles := make([]string, 0, len(response.Items))
	for _, item := range response.Items {
		if item == nil || item.Snippet == nil {
			continue
		}
		if title := strings.TrimSpace(item.Snippet.Title); title != "" {
			titles = append(titles, title)
		}
	}

	return titles, nil
}

func youtubeAPIError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.Code {
	case http.StatusBadRequest:
		return fmt.Errorf("YouTube API rejected the request (status %d)", apiErr.Code)
	case http.StatusForbidden:
		return fmt.Errorf("YouTube API access denied - check the API key and quota")
	case http.StatusTooManyRequests:
		return fmt.Errorf("YouTube API rate limit exceeded")
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("YouTube API server error (status %d)", apiErr.Code)
	default:
		return fmt.Errorf("YouTube API error (status %d)", apiErr.Code)
	}
}
