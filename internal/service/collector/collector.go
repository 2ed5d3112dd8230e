// Package collector implements the trend sources: Google Trends, X and YouTube.
//
// Collectors never panic past their boundary and never return partial data: a
// call either yields the full list in source order or an error wrapping
// trend.ErrCollectorUnavailable.
package collector

import (
	"fmt"
	"net/http"
	"time"

	"trendlens/internal/domain/trend"
)

const defaultTimeout = 10 * time.Second

func unavailable(source trend.Source, err error) error {
	return fmt.Errorf("%s trends: %w: %w", source, trend.ErrCollectorUnavailable, err)
}

func httpClientOrDefault(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: defaultTimeout}
}
