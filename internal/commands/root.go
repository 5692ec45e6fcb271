// Package commands provides CLI commands for chatbot.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootFlags holds the persistent overrides of the config file
type rootFlags struct {
	verbose  bool
	logFile  string
	noRemote bool
}

// NewRootCmd creates the chatbot command tree over deps
func NewRootCmd(deps *Dependencies) *cobra.Command {
	flags := &rootFlags{}
	ask := &askFlags{}

	cmd := &cobra.Command{
		Use:   "chatbot [message]",
		Short: "A small terminal chatbot",
		Long: `chatbot answers greetings, small talk and simple arithmetic from a
local set of replies, and asks a public advice service about anything else.

Examples:
  chatbot                          Start interactive chat
  chatbot chat                     Start interactive chat
  chatbot "what is 12 x 4"         Print a single reply
  echo "tell me a joke" | chatbot  Read the message from stdin
  chatbot ask -f message.txt       Read the message from a file
  chatbot config init              Write the default config file`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return applyRootFlags(cmd, deps, flags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Stdout, "chatbot %s (built %s)\n", Version, BuildTime)
				return nil
			}

			if ask.file != "" || len(args) > 0 || deps.StdinPiped() {
				return runAsk(deps, args, ask)
			}

			return runChat(deps)
		},
	}

	cmd.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&flags.logFile, "log-file", "", "Write logs to this file")
	cmd.PersistentFlags().BoolVar(&flags.noRemote, "no-remote", false, "Never query the advice service")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")
	ask.register(cmd)

	cmd.AddCommand(newChatCmd(deps))
	cmd.AddCommand(newAskCmd(deps))
	cmd.AddCommand(newConfigCmd(deps))

	return cmd
}

// applyRootFlags loads the config and layers explicitly set flags on top
func applyRootFlags(cmd *cobra.Command, deps *Dependencies, flags *rootFlags) error {
	// config subcommands work on the file itself
	if cmd.Parent() != nil && cmd.Parent().Name() == "config" {
		return nil
	}

	if err := deps.loadConfig(); err != nil {
		return err
	}

	pf := cmd.Flags()
	if pf.Changed("verbose") {
		deps.Config.Verbose = flags.verbose
	}
	if pf.Changed("log-file") {
		deps.Config.LogFile = flags.logFile
	}
	if pf.Changed("no-remote") {
		deps.Config.DisableRemote = flags.noRemote
	}
	return nil
}

// Execute runs the root command
func Execute() {
	if err := execute(NewDependencies(), nil); err != nil {
		os.Exit(1)
	}
}

// execute runs the command tree with args (os.Args when nil) and always
// flushes the logger, whether or not the command failed
func execute(deps *Dependencies, args []string) error {
	defer deps.Close()

	cmd := NewRootCmd(deps)
	if args != nil {
		cmd.SetArgs(args)
	}
	return cmd.Execute()
}

// stdinPiped reports whether stdin is a pipe or file rather than a terminal
func stdinPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readInput returns the message from a file, the argument or stdin, in
// that order
func readInput(deps *Dependencies, args []string, file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), nil
	}

	if len(args) > 0 {
		return args[0], nil
	}

	if deps.StdinPiped() {
		data, err := io.ReadAll(deps.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	return "", nil
}
