package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the lanebook CLI until the command finishes or ctx is
// cancelled.
//
// Logging goes to stderr at info level, or debug level with --verbose. The
// logger is attached to the command context for loggerFromContext. With
// --metrics-file, metrics are written once the command returns.
func Execute(ctx context.Context) error {
	var verbose bool

	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := LogInfo
		if verbose {
			level = LogDebug
		}
		c.SetLogLevel(level)
		c.startMetrics()
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	}
	err := root.ExecuteContext(ctx)
	if ferr := c.flushMetrics(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}
