package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	twitter "github.com/g8rswimmer/go-twitter/v2"
	"github.com/rs/zerolog"

	"trendlens/internal/domain/trend"
)

const maxFallbackTerms = 50

// locationsRetryInterval spaces retries of a failed trends/available load
const locationsRetryInterval = 5 * time.Minute

// XConfig configures the X trends collector
type XConfig struct {
	// BaseURL is the v1.1 REST root serving trends/place.json
	BaseURL string
	// APIHost is the v2 host used by the recent-search fallback
	APIHost       string
	BearerToken   string
	WOEID         int
	FallbackQuery string
	HTTPClient    *http.Client
	Log           zerolog.Logger
}

// X fetches trending topics for a location. When the v1.1 trends endpoint is
// refused (401/403), it falls back to the hashtags of recent tweets about the
// request subject.
type X struct {
	config     XConfig
	httpClient *http.Client
	v2         *twitter.Client

	log zerolog.Logger
	now func() time.Time

	mu               sync.Mutex
	woeids           map[string]int
	locationsLoaded  bool
	locationsRetryAt time.Time
}

// xTrend represents a trending topic from X
type xTrend struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Query       string `json:"query"`
	TweetVolume int    `json:"tweet_volume"`
}

// xTrendsResponse represents the response from the trends/place endpoint
type xTrendsResponse []struct {
	Trends    []xTrend `json:"trends"`
	Locations []struct {
		Name  string `json:"name"`
		WoeID int    `json:"woeid"`
	} `json:"locations"`
}

type bearerAuthorizer struct {
	token string
}

func (a bearerAuthorizer) Add(req *http.Request) {
	req.Header.Add("Authorization", "Bearer "+a.token)
}

// xLocation is one entry of trends/available.json
type xLocation struct {
	WoeID       int    `json:"woeid"`
	CountryCode string `json:"countryCode"`
	PlaceType   struct {
		Code int    `json:"code"`
		Name string `json:"name"`
	} `json:"placeType"`
}

// placeTypeCountry is the trends/available place type of whole countries
const placeTypeCountry = 12

// statusError carries the HTTP status of a refused trends call
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("X API returned status code %d", e.code)
}

// NewX creates an X trends collector
func NewX(config XConfig) *X {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.twitter.com/1.1"
	}
	if config.APIHost == "" {
		config.APIHost = "https://api.twitter.com"
	}
	if config.WOEID <= 0 {
		config.WOEID = 1
	}
	if config.FallbackQuery == "" {
		config.FallbackQuery = "trending"
	}

	httpClient := httpClientOrDefault(config.HTTPClient)

	return &X{
		config:     config,
		httpClient: httpClient,
		v2: &twitter.Client{
			Authorizer: bearerAuthorizer{token: config.BearerToken},
			Client:     httpClient,
			Host:       strings.TrimRight(config.APIHost, "/"),
		},
		log:    config.Log.With().Str("collector", string(trend.SourceX)).Logger(),
		now:    time.Now,
		woeids: make(map[string]int),
	}
}

// Source returns the source name
func (x *X) Source() trend.Source {
	return trend.SourceX
}

// FetchTrends returns trend names for the configured WOEID. q.Region may be a
// numeric WOEID or a two-letter country code.
func (x *X) FetchTrends(ctx context.Context, q trend.Query) ([]string, error) {
	if x.config.BearerToken == "" {
		return nil, unavailable(trend.SourceX, errors.New("X bearer token not configured"))
	}

	names, err := x.placeTrends(ctx, x.woeidFor(ctx, q.Region))
	if err == nil {
		return names, nil
	}

	var refused *statusError
	if !errors.As(err, &refused) || (refused.code != http.StatusUnauthorized && refused.code != http.StatusForbidden) {
		return nil, unavailable(trend.SourceX, err)
	}

	tags, fbErr := x.recentHashtags(ctx, q.Subject)
	if fbErr != nil {
		return nil, unavailable(trend.SourceX, fmt.Errorf("%v; fallback: %w", err, fbErr))
	}
	return tags, nil
}

// woeidFor maps a region to a WOEID. Country codes are resolved through
// trends/available.json once and remembered; a failed load is retried no
// sooner than locationsRetryInterval. Anything unresolvable uses the
// configured WOEID.
func (x *X) woeidFor(ctx context.Context, region string) int {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		return x.config.WOEID
	}
	if id, err := strconv.Atoi(region); err == nil && id > 0 {
		return id
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if !x.locationsLoaded && !x.now().Before(x.locationsRetryAt) {
		locations, err := x.availableLocations(ctx)
		if err != nil {
			x.locationsRetryAt = x.now().Add(locationsRetryInterval)
			x.log.Warn().Err(err).Time("retry_at", x.locationsRetryAt).Msg("failed to load X trend locations")
		} else {
			for _, loc := range locations {
				if loc.PlaceType.Code == placeTypeCountry && loc.CountryCode != "" {
					x.woeids[strings.ToUpper(loc.CountryCode)] = loc.WoeID
				}
			}
			x.locationsLoaded = true
		}
	}

	if id, ok := x.woeids[region]; ok {
		return id
	}
	x.log.Info().Str("region", region).Int("woeid", x.config.WOEID).Msg("no X trend location for region, using default")
	return x.config.WOEID
}

func (x *X) availableLocations(ctx context.Context) ([]xLocation, error) {
	url := fmt.Sprintf("%s/trends/available.json", strings.TrimRight(x.config.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Add("Authorization", "Bearer "+x.config.BearerToken)

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}

	var locations []xLocation
	if err := json.NewDecoder(resp.Body).Decode(&locations); err != nil {
		return nil, fmt.Errorf("failed to decode X locations: %w", err)
	}
	return locations, nil
}

func (x *X) placeTrends(ctx context.Context, woeid int) ([]string, error) {
	url := fmt.Sprintf("%s/trends/place.json?id=%d", strings.TrimRight(x.config.BaseURL, "/"), woeid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Add("Authorization", "Bearer "+x.config.BearerToken)
	req.Header.Add("Content-Type", "application/json")

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}

	var trendsResp xTrendsResponse
	if err := json.NewDecoder(resp.Body).Decode(&trendsResp); err != nil {
		return nil, fmt.Errorf("failed to decode X trends response: %w", err)
	}

	if len(trendsResp) == 0 {
		return []string{}, nil
	}

	names := make([]string, 0, len(trendsResp[0].Trends))
	for _, t := range trendsResp[0].Trends {
		if t.Name != "" {
			names = append(names, t.Name)
		}
	}
	return names, nil
}

// recentHashtags derives a trend list from the v2 recent-search endpoint
func (x *X) recentHashtags(ctx context.Context, subject string) ([]string, error) {
	query := strings.TrimSpace(subject)
	if query == "" {
		query = x.config.FallbackQuery
	}

	opts := twitter.TweetRecentSearchOpts{
		TweetFields: []twitter.TweetField{twitter.TweetFieldEntities},
		MaxResults:  50,
	}

	resp, err := x.v2.TweetRecentSearch(ctx, query+" has:hashtags -is:retweet", opts)
	if err != nil {
		return nil, err
	}

	tags := make([]string, 0)
	if resp == nil || resp.Raw == nil {
		return tags, nil
	}

	for _, tweet := range resp.Raw.Tweets {
		if tweet == nil || tweet.Entities == nil {
			continue
		}
		for _, tag := range tweet.Entities.HashTags {
			if tag.Tag == "" {
				continue
			}
			tags = append(tags, "#"+tag.Tag)
			if len(tags) == maxFallbackTerms {
				return tags, nil
			}
		}
	}

	return tags, nil
}
