package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"trendlens/internal/config"
	"trendlens/internal/domain/analysis"
	"trendlens/internal/metrics"
)

type stubAnalyzer struct{}

func (stubAnalyzer) Mode() analysis.Mode { return analysis.ModeSearch }

func (stubAnalyzer) Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error) {
	if req.Subject(analysis.ModeSearch) == "" {
		return nil, analysis.ErrInvalidRequest
	}
	return &analysis.Result{ID: "id-1", Mode: analysis.ModeSearch, Subject: req.Keyword}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *prometheus.Registry) {
	t.Helper()

	reg := prometheus.NewRegistry()
	deps := Dependencies{
		Analyzer:      stubAnalyzer{},
		EventsSubject: "analysis.completed",
		Gatherer:      reg,
		Metrics:       metrics.New(reg),
		Log:           zerolog.New(io.Discard),
	}
	srv := httptest.NewServer(NewRouter(config.ServerConfig{CorsOrigins: []string{"*"}}, deps))
	t.Cleanup(srv.Close)
	return srv, reg
}

func TestRouter_AnalyzeOnBothPaths(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/analyze", "/api/v1/analyze"} {
		resp, err := http.PostForm(srv.URL+path, url.Values{"keyword": {"finance"}})
		if err != nil {
			t.Fatal(err)
		}
		var body map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: status = %d", path, resp.StatusCode)
		}
		if _, ok := body["telegram_channels"]; !ok {
			t.Errorf("%s: missing telegram_channels in %v", path, body)
		}
	}
}

func TestRouter_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestRouter_HistoryDisabledWithoutStore(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/analyses")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestRouter_MetricsRecordRequests(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.PostForm(srv.URL+"/analyze", url.Values{})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	want := `trendlens_http_request_duration_seconds_count{method="POST",route="/analyze",status="400"} 1`
	if !strings.Contains(string(body), want) {
		t.Errorf("metrics output should contain %q", want)
	}
}

// slowAnalyzer blocks until the request context ends
type slowAnalyzer struct{}

func (slowAnalyzer) Mode() analysis.Mode { return analysis.ModeSearch }

func (slowAnalyzer) Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error) {
	<-ctx.Done()
	return nil, fmt.Errorf("%w: %w", analysis.ErrOrchestration, ctx.Err())
}

func TestRouter_AnalyzePastDeadlineIs504(t *testing.T) {
	deps := Dependencies{
		Analyzer: slowAnalyzer{},
		Log:      zerolog.New(io.Discard),
	}
	srv := httptest.NewServer(NewRouter(config.ServerConfig{RequestTimeout: 20 * time.Millisecond}, deps))
	defer srv.Close()

	resp, err := http.PostForm(srv.URL+"/api/v1/analyze", url.Values{"keyword": {"finance"}})
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("timeout response should be the JSON error body: %v", err)
	}
	if body["error"] != "Request timed out" {
		t.Errorf("unexpected error body %v", body)
	}
}
