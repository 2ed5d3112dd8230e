package channel

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Lookup failures. Search mode drops them; direct mode reports them.
var (
	ErrNotFound           = errors.New("channel not found")
	ErrPrivateChannel     = errors.New("channel is private")
	ErrCredentialsMissing = errors.New("telegram credentials missing")
	ErrTransport          = errors.New("telegram transport error")
)

// Record holds resolved metadata for one Telegram channel. Rank is zero until
// the records are ranked.
type Record struct {
	Identifier      string `json:"identifier"`
	DisplayName     string `json:"name"`
	SubscriberCount int64  `json:"subscribers"`
	Description     string `json:"description,omitempty"`
	Rank            int    `json:"rank,omitempty"`
}

// Candidate is a search hit that may point at a channel. Identifier is empty
// when the hit has no public username.
type Candidate struct {
	Identifier string
	Title      string
	Link       string
}

// HasPublicIdentifier reports whether the candidate can be looked up
func (c Candidate) HasPublicIdentifier() bool {
	return c.Identifier != ""
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{3,31}$`)

// t.me paths that never name a public channel
var reservedPaths = map[string]struct{}{
	"joinchat":    {},
	"addstickers": {},
	"addemoji":    {},
	"share":       {},
	"proxy":       {},
	"socks":       {},
	"login":       {},
	"iv":          {},
}

// NormalizeIdentifier turns "name", "@name", "t.me/name" or a full t.me link
// into a bare username. It reports false for invite links and anything that is
// not a public username.
func NormalizeIdentifier(raw string) (string, bool) {
	username, err := ParseIdentifier(raw)
	return username, err == nil
}

// ParseIdentifier is NormalizeIdentifier with a reason. Invite links
// (t.me/+hash, t.me/joinchat/hash) only ever point at private chats and fail
// with ErrPrivateChannel; anything else that is not a username fails with
// ErrNotFound.
func ParseIdentifier(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("empty channel identifier: %w", ErrNotFound)
	}

	if strings.Contains(s, "t.me/") || strings.Contains(s, "telegram.me/") {
		if !strings.Contains(s, "://") {
			s = "https://" + s
		}
		u, err := url.Parse(s)
		if err != nil {
			return "", fmt.Errorf("%q is not a t.me link: %w", raw, ErrNotFound)
		}
		host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		if host != "t.me" && host != "telegram.me" {
			return "", fmt.Errorf("%q is not a t.me link: %w", raw, ErrNotFound)
		}

		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(segments) > 1 && segments[0] == "s" {
			segments = segments[1:]
		}
		s = segments[0]
		if strings.HasPrefix(s, "+") || strings.EqualFold(s, "joinchat") {
			return "", fmt.Errorf("%q is an invite link: %w", raw, ErrPrivateChannel)
		}
		if _, reserved := reservedPaths[strings.ToLower(s)]; reserved {
			return "", fmt.Errorf("%q does not name a channel: %w", raw, ErrNotFound)
		}
	}

	s = strings.TrimPrefix(s, "@")
	if !usernamePattern.MatchString(s) {
		return "", fmt.Errorf("%q is not a public channel username: %w", raw, ErrNotFound)
	}
	return s, nil
}

// ErrorMessage returns the user-facing text for a lookup failure
func ErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPrivateChannel):
		return "This channel is private and cannot be analyzed."
	case errors.Is(err, ErrNotFound):
		return "Channel not found. Check the username and try again."
	case errors.Is(err, ErrCredentialsMissing):
		return "Telegram credentials are not configured."
	default:
		return "Telegram could not be reached. Try again later."
	}
}
