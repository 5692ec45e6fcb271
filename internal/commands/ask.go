package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	apierrors "github.com/diogo/chatbot/internal/errors"
	"github.com/diogo/chatbot/internal/render"
)

// Gradient colors for animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#ff6b6b"), // Red
	lipgloss.Color("#feca57"), // Yellow
	lipgloss.Color("#48dbfb"), // Cyan
	lipgloss.Color("#ff9ff3"), // Pink
	lipgloss.Color("#54a0ff"), // Blue
	lipgloss.Color("#5f27cd"), // Purple
}

var (
	colorText     = lipgloss.Color("#c0caf5")
	colorTextDim  = lipgloss.Color("#565f89")
	colorTextMute = lipgloss.Color("#3b4261")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorPrimary  = lipgloss.Color("#7aa2f7")
	colorError    = lipgloss.Color("#f7768e")
)

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginBottom(1)

	categoryStyle = lipgloss.NewStyle().
			Foreground(colorTextDim).
			Italic(true)
)

// askFlags holds the one-shot reply options
type askFlags struct {
	file    string
	output  string
	raw     bool
	explain bool
	copy    bool
}

func (f *askFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Read the message from a file")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Save the reply to a file")
	cmd.Flags().BoolVar(&f.raw, "raw", false, "Print only the reply text")
	cmd.Flags().BoolVar(&f.explain, "explain", false, "Also print which category answered")
	cmd.Flags().BoolVar(&f.copy, "copy", false, "Copy the reply to the clipboard")
}

func newAskCmd(deps *Dependencies) *cobra.Command {
	flags := &askFlags{}
	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Print a single reply",
		Long: `Resolve one message and print the reply.

The message is taken from --file, the argument or stdin, in that order.
Output is decorated on a terminal and plain text otherwise.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(deps, args, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

// spinner handles the animated loading indicator
type spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool // Flag to prevent double-close
}

// newSpinner creates a new animated spinner writing to out
func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

	spinColor := gradientColors[s.frame%len(gradientColors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[s.frame%len(chars)])

	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dotColor := gradientColors[(s.frame+i)%len(gradientColors)]
			dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)
	fmt.Fprintf(s.out, "\r\033[K%s %s %s", spinnerChar, msg, dots.String())
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// halt stops the spinner and waits for it to clear its line
func (s *spinner) halt() {
	s.stopOnce()
	<-s.done
}

// runAsk resolves one message and prints the reply
func runAsk(deps *Dependencies, args []string, flags *askFlags) error {
	input, err := readInput(deps, args, flags.file)
	if err != nil {
		return err
	}
	input = strings.TrimSpace(input)
	if input == "" {
		// Blank input is ignored, as in the chat
		return nil
	}

	if err := deps.setupLogger(false); err != nil {
		return err
	}

	decorated := !flags.raw && deps.IsTTY()

	// The thinking pause only makes sense behind a spinner
	r, err := deps.newResolver(decorated)
	if err != nil {
		return err
	}

	var spin *spinner
	if decorated {
		spin = newSpinner(deps.Stderr, "Thinking")
		spin.start()
	}

	start := time.Now()
	res := r.Explain(context.Background(), input)
	deps.Logger.Debug("reply resolved",
		zap.String("category", string(res.Category)),
		zap.Duration("took", time.Since(start)),
	)

	if spin != nil {
		spin.halt()
	}

	if flags.explain {
		line := fmt.Sprintf("category: %s", res.Category)
		if decorated {
			line = categoryStyle.Render(line)
		}
		fmt.Fprintln(deps.Stderr, line)
		if res.Fallback != nil {
			fmt.Fprintln(deps.Stderr, formatErrorMessage(res.Fallback, "Advice unavailable"))
		}
	}

	if flags.copy || deps.Config.CopyToClipboard {
		if err := deps.CopyText(res.Text); err != nil {
			warnMsg := lipgloss.NewStyle().Foreground(colorError).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			)
			fmt.Fprintln(deps.Stderr, warnMsg)
		} else if decorated {
			clipMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard")
			fmt.Fprintln(deps.Stderr, clipMsg)
		}
	}

	if flags.output != "" {
		if err := os.WriteFile(flags.output, []byte(res.Text+"\n"), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if decorated {
			successMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render(
				fmt.Sprintf("✓ Reply saved to %s", flags.output),
			)
			fmt.Fprintln(deps.Stderr, successMsg)
		}
		return nil
	}

	if !decorated {
		fmt.Fprintln(deps.Stdout, res.Text)
		return nil
	}

	bubbleWidth := deps.TermWidth() - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	contentWidth := bubbleWidth - 4

	fmt.Fprintln(deps.Stdout, assistantLabelStyle.Render("✦ "+deps.Config.BotName))
	rendered := render.Reply(res.Text, render.OptionsFromConfig(deps.Config.Markdown, contentWidth))
	fmt.Fprintln(deps.Stdout, assistantBubbleStyle.Width(bubbleWidth).Render(rendered))

	return nil
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // default width
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, label string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", label, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	switch {
	case apierrors.IsTimeoutError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The advice service timed out. Raise advice_timeout_seconds or try again"))
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Check your internet connection, or run with --no-remote"))
	case apierrors.IsParseError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The advice service sent an unexpected payload; check advice_url"))
	}

	return sb.String()
}
