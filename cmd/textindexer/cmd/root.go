package cmd

import (
	"os"

	"github.com/joshvoll/textindexer/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

type rootOptions struct {
	logJSON  bool
	logLevel string
	color    bool

	logger zerolog.Logger
}

// Execute runs the root command, logging any failure it returns.
func Execute() error {
	opts := new(rootOptions)
	root := newRootCmd(opts)
	if err := root.Execute(); err != nil {
		logging.Failure(opts.logger, err, "textindexer failed")
		return err
	}
	return nil
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	opts.logger = logging.Configure(logging.Config{Output: os.Stderr, Level: zerolog.InfoLevel})

	root := &cobra.Command{
		Use:           "textindexer",
		Short:         "Index and search HTML documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(opts.logLevel)
			if err != nil {
				return xerrors.Errorf("invalid --log-level: %w", err)
			}
			opts.logger = logging.Configure(logging.Config{
				Output:           cmd.ErrOrStderr(),
				EncodeLogsAsJSON: opts.logJSON,
				WithColor:        opts.color,
				Level:            level,
			})
			return nil
		},
	}

	root.PersistentFlags().BoolVar(&opts.logJSON, "log-json", false, "Emit logs as JSON")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Minimum log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&opts.color, "color", false, "Colorize console logs")

	root.AddCommand(newIndexCmd(opts))
	return root
}
