package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diogo/chatbot/internal/tui"
)

func newChatCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session.

Every message is answered on its own; the bot keeps no conversation context.
Type /exit or /quit, or press Esc or Ctrl+C to end the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(deps)
		},
	}
}

func runChat(deps *Dependencies) error {
	if err := deps.setupLogger(true); err != nil {
		return err
	}

	r, err := deps.newResolver(true)
	if err != nil {
		return err
	}

	cfg := deps.Config
	deps.Logger.Info("starting chat",
		zap.String("bot", cfg.BotName),
		zap.Bool("remote", !cfg.DisableRemote),
	)

	return deps.TUI.RunChat(tui.Options{
		Responder:   r,
		BotName:     cfg.BotName,
		TypingDelay: cfg.TypingDelay(),
		WideWidth:   cfg.WideWidth,
		Markdown:    cfg.Markdown,
		Logger:      deps.Logger,
	})
}
