package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const trendsFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Daily Search Trends</title>
<item><title>Bitcoin ETF</title></item>
<item><title>Dogecoin</title></item>
</channel></rss>`

// fakeUpstreams serves the Google Trends feed and the Telegram Bot API
func fakeUpstreams(t *testing.T) {
	t.Helper()

	google := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(trendsFeed))
	}))
	t.Cleanup(google.Close)

	bot := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.FormValue("chat_id") != "@durov" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
			return
		}
		if strings.HasSuffix(r.URL.Path, "/getChat") {
			w.Write([]byte(`{"ok":true,"result":{"id":-1001,"type":"channel","title":"Durov's Channel","username":"durov"}}`))
			return
		}
		w.Write([]byte(`{"ok":true,"result":900}`))
	}))
	t.Cleanup(bot.Close)

	t.Setenv("GOOGLE_TRENDS_FEED_URL", google.URL)
	t.Setenv("TELEGRAM_API_BASE_URL", bot.URL)
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("X_API_BEARER_TOKEN", "")
	t.Setenv("YOUTUBE_API_KEY", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("DB_ENABLED", "false")
	t.Setenv("NATS_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "error")
}

func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestAnalyze_RequiresExactlyOneSubject(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"analyze"}, "one of --keyword or --channel is required"},
		{[]string{"analyze", "--keyword", "crypto", "--channel", "durov"}, "not both"},
		{[]string{"analyze", "--channel", "   "}, "one of --keyword or --channel is required"},
	}

	for _, tt := range tests {
		_, stderr, err := runCLI(t, tt.args...)
		if err == nil {
			t.Errorf("%v: expected an error", tt.args)
			continue
		}
		if !strings.Contains(stderr, tt.want) {
			t.Errorf("%v: stderr should contain %q, got %q", tt.args, tt.want, stderr)
		}
	}
}

func TestAnalyze_ChannelPrintsEnvelope(t *testing.T) {
	fakeUpstreams(t)

	stdout, stderr, err := runCLI(t, "analyze", "--channel", "@durov")
	if err != nil {
		t.Fatalf("unexpected error: %v (stderr: %s)", err, stderr)
	}

	var body struct {
		Mode            string   `json:"mode"`
		GoogleTrends    []string `json:"google_trends"`
		XTrends         []string `json:"x_trends"`
		TelegramChannel struct {
			Identifier  string `json:"identifier"`
			Subscribers int64  `json:"subscribers"`
		} `json:"telegram_channel"`
		TelegramError *string `json:"telegram_error"`
		Metadata      struct {
			Name string `json:"name"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal([]byte(stdout), &body); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout)
	}

	if body.Mode != "direct" {
		t.Errorf("mode = %q, want direct", body.Mode)
	}
	if len(body.GoogleTrends) != 2 || body.GoogleTrends[0] != "Bitcoin ETF" {
		t.Errorf("google trends = %v", body.GoogleTrends)
	}
	if body.XTrends == nil || len(body.XTrends) != 0 {
		t.Errorf("x trends without credentials should be empty, got %v", body.XTrends)
	}
	if body.TelegramChannel.Identifier != "durov" || body.TelegramChannel.Subscribers != 900 {
		t.Errorf("unexpected channel %+v", body.TelegramChannel)
	}
	if body.TelegramError != nil {
		t.Errorf("telegram_error should be null, got %q", *body.TelegramError)
	}
	if body.Metadata.Name != "Durov Trends" {
		t.Errorf("metadata name = %q", body.Metadata.Name)
	}
}

func TestAnalyze_UnknownChannelStillSucceeds(t *testing.T) {
	fakeUpstreams(t)

	stdout, _, err := runCLI(t, "analyze", "--channel", "nosuchchannel")
	if err != nil {
		t.Fatalf("a failed lookup should not fail the command: %v", err)
	}
	if !strings.Contains(stdout, `"telegram_channel":{}`) {
		t.Errorf("expected an empty channel object, got %s", stdout)
	}
}

func TestVersion(t *testing.T) {
	stdout, _, err := runCLI(t, "--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stdout, "trendlens version ") {
		t.Errorf("unexpected version output %q", stdout)
	}
}
