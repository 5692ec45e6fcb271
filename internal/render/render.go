package render

import "strings"

// Markdown renders markdown content for terminal display.
// Uses a pooled renderer for better performance and thread safety.
func Markdown(content string, opts Options) (string, error) {
	renderer, err := globalPool.get(opts)
	if err != nil {
		return "", err
	}
	defer globalPool.put(opts, renderer)

	return renderer.Render(content)
}

// Reply renders a bot reply, trimming glamour's surrounding blank lines.
// The plain text is returned if rendering fails.
func Reply(text string, opts Options) string {
	rendered, err := Markdown(text, opts)
	if err != nil {
		return text
	}
	return strings.Trim(rendered, "\n")
}
