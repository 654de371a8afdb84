package outreach

import "strings"

// Neutral placeholders for records scraped without a usable value.
const (
	fallbackName     = "there"
	fallbackJobTitle = "Data Analyst"
)

// Templates holds the stage message bodies. Each stage has a full variant
// for direct messages and a short variant for connection notes.
type Templates struct {
	FirstFull     string
	FirstShort    string
	FollowupFull  string
	FollowupShort string
}

// FormatMessage substitutes {{Name}}, {{JobTitle}} and {{Company}} into a
// template, falling back to neutral placeholders for missing fields.
func FormatMessage(tmpl, name, jobTitle, company string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fallbackName
	}
	jobTitle = strings.TrimSpace(jobTitle)
	if jobTitle == "" {
		jobTitle = fallbackJobTitle
	}
	r := strings.NewReplacer(
		"{{Name}}", firstName(name),
		"{{JobTitle}}", jobTitle,
		"{{Company}}", strings.TrimSpace(company),
	)
	return r.Replace(tmpl)
}

// ShortenForNote trims text to the note channel's hard character ceiling.
// When truncation happens the result is exactly limit characters long,
// ending in a three-character ellipsis marker.
func ShortenForNote(text string, limit int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-3]) + "..."
}

// firstName keeps only the leading word of a multi-word display name, except
// for generic placeholders which read better whole ("Hiring Team").
func firstName(name string) string {
	if IsGenericName(name) {
		return name
	}
	if idx := strings.Index(name, " "); idx > 0 {
		return name[:idx]
	}
	return name
}
