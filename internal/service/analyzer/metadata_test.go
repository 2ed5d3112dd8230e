package analyzer

import (
	"regexp"
	"strings"
	"testing"
)

func TestGenerateMetadata_KeywordUsername(t *testing.T) {
	meta := GenerateMetadata("Crypto", []string{"Bitcoin ETF", "Dogecoin", "NFT"}, true)

	if meta.Username != "crypto_trends" {
		t.Errorf("username = %q, want crypto_trends", meta.Username)
	}
	if meta.Name != "Crypto Trends" {
		t.Errorf("name = %q, want Crypto Trends", meta.Name)
	}
	if !strings.Contains(meta.Description, "Crypto") {
		t.Errorf("description should mention the subject, got %q", meta.Description)
	}
}

func TestSuggestUsername_Constraints(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z0-9_]*_trends$`)

	for _, subject := range []string{
		"Crypto",
		"Stock Market News!",
		"Ünïcödé & émoji 🚀",
		"a very long subject that keeps going and going",
		"",
	} {
		got := SuggestUsername(subject)
		if len(got) > 32 {
			t.Errorf("%q: username %q longer than 32", subject, got)
		}
		if len(subject) < 20 && !valid.MatchString(got) {
			t.Errorf("%q: username %q has invalid shape", subject, got)
		}
		if strings.ContainsFunc(got, func(r rune) bool {
			return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != '_'
		}) {
			t.Errorf("%q: username %q has characters outside [a-z0-9_]", subject, got)
		}
	}
}

func TestSuggestUsername_Truncates(t *testing.T) {
	got := SuggestUsername("abcdefghijklmnopqrstuvwxyz0123456789")
	if got != "abcdefghijklmnopqrstuvwxyz012345" {
		t.Errorf("got %q", got)
	}
}

func TestGenerateMetadata_Fallbacks(t *testing.T) {
	tests := []struct {
		name     string
		subject  string
		trends   []string
		wantName string
		wantDesc string
	}{
		{"subject wins", "finance", []string{"x"}, "Finance Trends", "finance"},
		{"first trend without subject", "  ", []string{"Bitcoin", "NFT", "ETF", "Gold"}, "Bitcoin", "Bitcoin, NFT, ETF"},
		{"literal without anything", "", nil, "Telegram", "Telegram"},
		{"blank trends ignored", "", []string{" ", ""}, "Telegram", "Telegram"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := GenerateMetadata(tt.subject, tt.trends, false)

			if meta.Name != tt.wantName {
				t.Errorf("name = %q, want %q", meta.Name, tt.wantName)
			}
			if !strings.Contains(meta.Description, tt.wantDesc) {
				t.Errorf("description %q should contain %q", meta.Description, tt.wantDesc)
			}
			if strings.Contains(meta.Description, "Gold") {
				t.Errorf("description should use at most 3 trends, got %q", meta.Description)
			}
			if meta.Username != "" {
				t.Errorf("username should be omitted, got %q", meta.Username)
			}
		})
	}
}

func TestGenerateMetadata_NeverEmpty(t *testing.T) {
	inputs := [][]string{nil, {}, {""}, {"one"}, {"a", "b", "c", "d", "e"}}
	for _, subject := range []string{"", "x", "  spaced  ", "!!!"} {
		for _, trends := range inputs {
			meta := GenerateMetadata(subject, trends, true)
			if meta.Name == "" || meta.Description == "" {
				t.Errorf("GenerateMetadata(%q, %v) returned empty fields: %+v", subject, trends, meta)
			}
		}
	}
}
