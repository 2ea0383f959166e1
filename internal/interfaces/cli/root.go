// Package cli implements the fangmatch command-line interface.  All
// commands run the matching engine in-process against the seed catalog, so
// the CLI works offline; point it at a config file to use a database.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/herbwise/fangmatch/internal/application/catalog"
	"github.com/herbwise/fangmatch/internal/application/matching"
	"github.com/herbwise/fangmatch/internal/config"
	"github.com/herbwise/fangmatch/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

const (
	formatJSON = "json"
	formatText = "text"
)

// rootOptions holds the global flags.
type rootOptions struct {
	configPath string
	format     string
	logLevel   string
}

// cliEnv carries the lazily built services into subcommands.
type cliEnv struct {
	opts     *rootOptions
	catalog  *catalog.Service
	matching *matching.Service
	stdout   io.Writer
}

func (e *cliEnv) init() error {
	cfg := config.NewDefault()
	if e.opts.configPath != "" {
		loaded, err := config.Load(e.opts.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if e.opts.format != formatJSON && e.opts.format != formatText {
		return fmt.Errorf("unknown output format %q", e.opts.format)
	}

	// Default log level is warn so command output stays clean; raise it
	// with --log-level when debugging the matcher.
	log, err := logging.NewLogger(logging.Config{Level: e.opts.logLevel, Format: "console"})
	if err != nil {
		return err
	}

	e.catalog = catalog.NewService(log)
	e.matching = matching.NewService(e.catalog, cfg.Matching.MatcherOptions(),
		log, matching.WithMaxResults(cfg.Matching.MaxResults))
	return nil
}

func (e *cliEnv) printJSON(v interface{}) error {
	enc := json.NewEncoder(e.stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// NewRootCommand builds the full command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	env := &cliEnv{opts: opts, stdout: os.Stdout}

	cmd := &cobra.Command{
		Use:           "fangmatch",
		Short:         "Match herb lists against classical formulas",
		Long:          "fangmatch parses free-text herb lists and matches them against a catalog of classical formulas.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			env.stdout = cmd.OutOrStdout()
			if cmd.Name() == "version" {
				return nil
			}
			return env.init()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to configuration file")
	cmd.PersistentFlags().StringVarP(&opts.format, "format", "f", formatText, "output format: text or json")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	cmd.AddCommand(
		newMatchCommand(env),
		newParseCommand(env),
		newFormulaCommand(env),
		newVersionCommand(env),
	)
	return cmd
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// readInput joins args, falling back to stdin so herb lists can be piped.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		text := ""
		for i, a := range args {
			if i > 0 {
				text += " "
			}
			text += a
		}
		return text, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", err
	}
	return string(data), nil
}
