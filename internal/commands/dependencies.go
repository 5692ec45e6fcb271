package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/diogo/chatbot/internal/advice"
	"github.com/diogo/chatbot/internal/config"
	"github.com/diogo/chatbot/internal/logging"
	"github.com/diogo/chatbot/internal/resolver"
	"github.com/diogo/chatbot/internal/responses"
	"github.com/diogo/chatbot/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(opts tui.Options) error
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(opts tui.Options) error {
	return tui.Run(opts)
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// Config is loaded by the root command unless already set.
	Config *config.Config

	// Advice answers unmatched input. Built from Config when nil.
	Advice advice.Fetcher

	// Logger is built from Config when nil.
	Logger *zap.Logger

	// TUI is the terminal user interface.
	TUI TUIInterface

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// StdinPiped reports whether input is being piped in.
	StdinPiped func() bool
	// IsTTY reports whether Stdout is a terminal.
	IsTTY func() bool
	// TermWidth returns the terminal width.
	TermWidth func() int
	// CopyText writes text to the system clipboard.
	CopyText func(string) error

	cleanup []func()
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		TUI:        &DefaultTUI{},
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		StdinPiped: stdinPiped,
		IsTTY:      isStdoutTTY,
		TermWidth:  getTerminalWidth,
		CopyText:   clipboard.WriteAll,
	}
}

// loadConfig reads the config file once
func (d *Dependencies) loadConfig() error {
	if d.Config != nil {
		return nil
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	d.Config = &cfg
	return nil
}

// setupLogger builds the logger. Interactive sessions own the terminal, so
// verbose output there only goes to the log file.
func (d *Dependencies) setupLogger(interactive bool) error {
	if d.Logger != nil {
		return nil
	}

	opts := logging.Options{
		Verbose: d.Config.Verbose,
		File:    d.Config.LogFile,
	}
	if !interactive && d.Config.Verbose && d.Config.LogFile == "" {
		opts.Writer = d.Stderr
	}

	logger, cleanup, err := logging.New(opts)
	if err != nil {
		return err
	}
	d.Logger = logger
	d.cleanup = append(d.cleanup, cleanup)
	return nil
}

// newResolver builds the resolver, creating the advice client on first use
func (d *Dependencies) newResolver(thinkingDelay bool) (*resolver.Resolver, error) {
	catalog, err := responses.New(d.Config.BotName)
	if err != nil {
		return nil, fmt.Errorf("failed to load replies: %w", err)
	}

	opts := []resolver.Option{
		resolver.WithCatalog(catalog),
		resolver.WithLogger(d.Logger),
	}
	if thinkingDelay {
		opts = append(opts, resolver.WithThinkingDelay(d.Config.ThinkingDelay()))
	}

	if !d.Config.DisableRemote {
		if d.Advice == nil {
			client, err := advice.NewClientFromConfig(*d.Config, d.Logger)
			if err != nil {
				return nil, fmt.Errorf("failed to create advice client: %w", err)
			}
			d.Advice = client
		}
		opts = append(opts, resolver.WithAdvice(d.Advice))
	}

	return resolver.New(opts...), nil
}

// Close flushes the logger
func (d *Dependencies) Close() {
	for _, fn := range d.cleanup {
		fn()
	}
	d.cleanup = nil
}
