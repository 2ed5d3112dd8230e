package analysis

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"trendlens/internal/domain/channel"
)

// Common errors
var (
	// ErrInvalidRequest means the mode's required field is missing
	ErrInvalidRequest = errors.New("invalid analysis request")

	// ErrOrchestration means a step that is not individually guarded failed
	ErrOrchestration = errors.New("analysis failed")
	// ErrNotFound means no recorded analysis has the requested ID
	ErrNotFound = errors.New("analysis not found")
)

// Mode selects how channels are resolved
type Mode string

const (
	// ModeDirect looks up exactly one named channel
	ModeDirect Mode = "direct"
	// ModeSearch discovers and ranks channels matching a keyword
	ModeSearch Mode = "search"
)

// Request is the input of one analysis
type Request struct {
	Keyword         string
	ChannelUsername string
	Region          string
}

// Subject returns the trimmed field the given mode requires
func (r Request) Subject(mode Mode) string {
	if mode == ModeSearch {
		return strings.TrimSpace(r.Keyword)
	}
	return strings.TrimSpace(r.ChannelUsername)
}

// RequiredField names the form field the given mode requires
func RequiredField(mode Mode) string {
	if mode == ModeSearch {
		return "keyword"
	}
	return "channel_username"
}

// Metadata is a suggested channel name, username and description
type Metadata struct {
	Name        string `json:"name"`
	Username    string `json:"username,omitempty"`
	Description string `json:"description"`
}

// Result aggregates everything produced by one analysis. Channels is used in
// search mode; Channel and ChannelErr in direct mode.
type Result struct {
	ID          string
	Mode        Mode
	Subject     string
	GeneratedAt time.Time

	GoogleTrends  []string
	XTrends       []string
	YouTubeTrends []string

	Channels   []channel.Record
	Channel    *channel.Record
	ChannelErr error

	Metadata Metadata
}

// ChannelCount returns how many channel records the result carries
func (r *Result) ChannelCount() int {
	if r.Mode == ModeSearch {
		return len(r.Channels)
	}
	if r.Channel != nil {
		return 1
	}
	return 0
}

// TopChannel returns the identifier of the best ranked (or only) channel
func (r *Result) TopChannel() string {
	if r.Mode == ModeSearch {
		if len(r.Channels) == 0 {
			return ""
		}
		return r.Channels[0].Identifier
	}
	if r.Channel != nil {
		return r.Channel.Identifier
	}
	return ""
}

type envelope struct {
	ID            string    `json:"id"`
	Mode          Mode      `json:"mode"`
	Subject       string    `json:"subject"`
	GeneratedAt   time.Time `json:"generated_at"`
	GoogleTrends  []string  `json:"google_trends"`
	XTrends       []string  `json:"x_trends"`
	YouTubeTrends []string  `json:"youtube_trends"`
	Metadata      Metadata  `json:"metadata"`
}

type searchEnvelope struct {
	envelope
	TelegramChannels []channel.Record `json:"telegram_channels"`
}

type directEnvelope struct {
	envelope
	TelegramChannel interface{} `json:"telegram_channel"`
	TelegramError   *string     `json:"telegram_error"`
}

// MarshalJSON writes the response envelope for the result's mode
func (r Result) MarshalJSON() ([]byte, error) {
	base := envelope{
		ID:            r.ID,
		Mode:          r.Mode,
		Subject:       r.Subject,
		GeneratedAt:   r.GeneratedAt,
		GoogleTrends:  nonNil(r.GoogleTrends),
		XTrends:       nonNil(r.XTrends),
		YouTubeTrends: nonNil(r.YouTubeTrends),
		Metadata:      r.Metadata,
	}

	if r.Mode == ModeSearch {
		channels := r.Channels
		if channels == nil {
			channels = []channel.Record{}
		}
		return json.Marshal(searchEnvelope{envelope: base, TelegramChannels: channels})
	}

	out := directEnvelope{envelope: base, TelegramChannel: struct{}{}}
	if r.Channel != nil {
		out.TelegramChannel = r.Channel
	}
	if r.ChannelErr != nil {
		msg := channel.ErrorMessage(r.ChannelErr)
		out.TelegramError = &msg
	}
	return json.Marshal(out)
}

func nonNil(terms []string) []string {
	if terms == nil {
		return []string{}
	}
	return terms
}

// Summary is the persisted digest of one analysis
type Summary struct {
	ID           string    `json:"id"`
	Mode         Mode      `json:"mode"`
	Subject      string    `json:"subject"`
	ChannelCount int       `json:"channel_count"`
	TopChannel   string    `json:"top_channel,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Summarize builds the persisted digest of a result
func Summarize(r *Result) Summary {
	return Summary{
		ID:           r.ID,
		Mode:         r.Mode,
		Subject:      r.Subject,
		ChannelCount: r.ChannelCount(),
		TopChannel:   r.TopChannel(),
		CreatedAt:    r.GeneratedAt,
	}
}
