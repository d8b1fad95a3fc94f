package ingest

import (
	"reflect"
	"testing"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  hello world  ", "hello world"},
		{"collapses runs", "a\t\tb\n\nc", "a b c"},
		{"empty", "", ""},
		{"whitespace only", " \n\t ", ""},
		{"single word", "refund", "refund"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.input); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGuessCategory(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"refund maps to policy", "I want a refund due to a billing error", "policy"},
		{"return maps to policy", "How do I return a damaged item?", "policy"},
		{"error maps to troubleshooting", "The app shows an error on startup", "troubleshooting"},
		{"bug maps to troubleshooting", "Found a bug in the checkout flow", "troubleshooting"},
		{"contact maps to contact", "How do I contact your team?", "contact"},
		{"billing maps to faq", "Questions about billing cycles", "faq"},
		{"no keyword", "The weather is nice today", "general"},
		{"case insensitive", "REFUND please", "policy"},
		{"empty", "", "general"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GuessCategory(tt.text); got != tt.want {
				t.Errorf("GuessCategory(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestGuessCategoryFirstMatchWins(t *testing.T) {
	// "refund" (policy) and "error" (troubleshooting) both appear; policy
	// is checked first.
	if got := GuessCategory("refund failed with an error"); got != "policy" {
		t.Errorf("GuessCategory = %q, want %q", got, "policy")
	}
}

func TestExtractTags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "login and account",
			text: "Please help with login issue for my account",
			want: []string{"account", "login"},
		},
		{
			name: "single keyword",
			text: "When will my delivery arrive?",
			want: []string{"delivery"},
		},
		{
			name: "no keywords",
			text: "Just saying hi",
			want: []string{"general"},
		},
		{
			name: "case insensitive",
			text: "PAYMENT and Shipping questions",
			want: []string{"payment", "shipping"},
		},
		{
			name: "empty text",
			text: "",
			want: []string{"general"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTags(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractTags(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestSplitTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"comma separated", "refund, billing,account", []string{"refund", "billing", "account"}},
		{"single tag", "shipping", []string{"shipping"}},
		{"empty cells dropped", "refund,,  ,billing", []string{"refund", "billing"}},
		{"empty input", "", []string{"general"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitTags(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitTags(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
