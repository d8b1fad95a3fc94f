package ingest

import (
	"regexp"
	"sort"
	"strings"
)

// placeholderTag keeps tags non-empty so tag-based filtering never silently
// matches nothing.
const placeholderTag = "general"

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanText trims the text and collapses internal whitespace runs to a
// single space.
func CleanText(s string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}

// categoryRules are checked in order; the first matching rule wins.
var categoryRules = []struct {
	category string
	keywords []string
}{
	{"policy", []string{"refund", "return", "policy"}},
	{"troubleshooting", []string{"error", "issue", "troubleshoot", "bug"}},
	{"contact", []string{"contact", "support", "help"}},
	{"faq", []string{"price", "payment", "billing"}},
}

// GuessCategory infers a category from text using the fixed ordered keyword
// rules, falling back to "general".
func GuessCategory(text string) string {
	t := strings.ToLower(text)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(t, kw) {
				return rule.category
			}
		}
	}
	return "general"
}

// tagKeywords is the fixed vocabulary for tag inference.
var tagKeywords = []string{
	"account", "payment", "delivery", "refund", "error",
	"login", "shipping", "support", "policy",
}

// ExtractTags infers tags whose keyword appears as a substring of the
// lowercased text, sorted lexicographically. Texts matching nothing get the
// placeholder tag.
func ExtractTags(text string) []string {
	t := strings.ToLower(text)

	var tags []string
	for _, kw := range tagKeywords {
		if strings.Contains(t, kw) {
			tags = append(tags, kw)
		}
	}
	if len(tags) == 0 {
		return []string{placeholderTag}
	}
	sort.Strings(tags)
	return tags
}

// splitTags parses an explicit comma-separated tags cell, trimming
// whitespace per tag. Empty cells get the placeholder tag.
func splitTags(cell string) []string {
	if strings.TrimSpace(cell) == "" {
		return []string{placeholderTag}
	}
	parts := strings.Split(cell, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	if len(tags) == 0 {
		return []string{placeholderTag}
	}
	return tags
}
