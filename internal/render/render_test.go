package render

import (
	"strings"
	"testing"

	"github.com/diogo/chatbot/internal/config"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Width != 80 {
		t.Errorf("expected Width=80, got %d", opts.Width)
	}
	if opts.Style != "dark" {
		t.Errorf("expected Style='dark', got %s", opts.Style)
	}
	if !opts.EnableEmoji {
		t.Error("expected EnableEmoji=true")
	}
}

func TestOptionsChaining(t *testing.T) {
	opts := DefaultOptions().
		WithWidth(100).
		WithStyle("light").
		WithEmoji(false)

	if opts.Width != 100 {
		t.Errorf("expected Width=100, got %d", opts.Width)
	}
	if opts.Style != "light" {
		t.Errorf("expected Style='light', got %s", opts.Style)
	}
	if opts.EnableEmoji {
		t.Error("expected EnableEmoji=false")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "")

	opts := OptionsFromConfig(config.MarkdownConfig{Style: "light", EnableEmoji: false}, 60)
	if opts.Style != "light" || opts.Width != 60 || opts.EnableEmoji {
		t.Errorf("unexpected options: %+v", opts)
	}

	// Empty style keeps the default
	opts = OptionsFromConfig(config.MarkdownConfig{}, 70)
	if opts.Style != "dark" {
		t.Errorf("expected Style='dark', got %s", opts.Style)
	}

	t.Setenv("GLAMOUR_STYLE", "notty")
	opts = OptionsFromConfig(config.MarkdownConfig{Style: "light"}, 70)
	if opts.Style != "notty" {
		t.Errorf("expected GLAMOUR_STYLE to win, got %s", opts.Style)
	}
}

func TestMarkdown(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		width    int
		contains string
	}{
		{
			name:     "plain reply",
			input:    "The sum of 2 and 3 is 5",
			width:    80,
			contains: "sum",
		},
		{
			name:     "bold",
			input:    "This is **bold** text",
			width:    80,
			contains: "bold",
		},
		{
			name:     "narrow_width",
			input:    "Why did the developer go broke? Because he used up all his cache.",
			width:    30,
			contains: "cache",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions().WithWidth(tc.width)
			output, err := Markdown(tc.input, opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(output, tc.contains) {
				t.Errorf("output should contain %q, got: %s", tc.contains, output)
			}
		})
	}
}

func TestMarkdownEmoji(t *testing.T) {
	input := "Hello :smile: world"

	output, err := Markdown(input, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(output, ":smile:") {
		t.Errorf("emoji should have been converted, got: %s", output)
	}

	output, err = Markdown(input, DefaultOptions().WithEmoji(false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, ":smile:") {
		t.Errorf("emoji should NOT have been converted, got: %s", output)
	}
}

func TestReply(t *testing.T) {
	out := Reply("Glad I could assist!", DefaultOptions().WithStyle("notty"))
	if !strings.Contains(out, "Glad I could assist!") {
		t.Errorf("unexpected reply rendering: %q", out)
	}
	if strings.HasPrefix(out, "\n") || strings.HasSuffix(out, "\n") {
		t.Errorf("reply should be trimmed, got %q", out)
	}
}

func TestReplyInvalidStyleFallsBack(t *testing.T) {
	out := Reply("plain text", DefaultOptions().WithStyle("nonexistent_style_path"))
	if out != "plain text" {
		t.Errorf("expected raw text fallback, got %q", out)
	}
}
