package analyzer

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"trendlens/internal/domain/analysis"
)

const (
	fallbackName     = "Telegram"
	usernameSuffix   = "_trends"
	usernameMaxLen   = 32
	descriptionTmpl  = "Your daily pulse on %s: the hottest topics from Google, X and YouTube in one place."
	hashtagSuffix    = " #trending #news #telegram"
	descriptionTerms = 3
)

// GenerateMetadata suggests a channel name, username and description for a
// subject and the merged trend pool. The username is only produced when
// withUsername is set (search mode). It never fails: empty inputs fall back
// to fixed literals so name and description are always non-empty.
func GenerateMetadata(subject string, trends []string, withUsername bool) analysis.Metadata {
	subject = strings.TrimSpace(subject)
	trends = nonBlank(trends)

	meta := analysis.Metadata{
		Name:        suggestName(subject, trends),
		Description: suggestDescription(subject, trends),
	}
	if withUsername {
		meta.Username = SuggestUsername(subject)
	}
	return meta
}

func suggestName(subject string, trends []string) string {
	switch {
	case subject != "":
		return cases.Title(language.English).String(subject) + " Trends"
	case len(trends) > 0:
		return trends[0]
	default:
		return fallbackName
	}
}

// SuggestUsername lower-cases subject, keeps only [a-z0-9_], appends "_trends"
// and truncates the result to 32 characters.
func SuggestUsername(subject string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(subject) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	b.WriteString(usernameSuffix)

	username := b.String()
	if len(username) > usernameMaxLen {
		username = username[:usernameMaxLen]
	}
	return username
}

func suggestDescription(subject string, trends []string) string {
	topic := subject
	if topic == "" {
		if len(trends) > descriptionTerms {
			trends = trends[:descriptionTerms]
		}
		topic = strings.Join(trends, ", ")
	}
	if topic == "" {
		topic = fallbackName
	}
	return fmt.Sprintf(descriptionTmpl, topic) + hashtagSuffix
}

func nonBlank(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
