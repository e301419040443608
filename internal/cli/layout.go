package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lanebook/pkg/session"
)

// layoutCommand prints the lane table of a chart script.
func (c *CLI) layoutCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "layout [chart.toml]",
		Short: "Print how a chart's measures are packed into lanes",
		Long: `Build a chart script and print one row per lane: its tick span, how full
it is, the measures (or measure fragments) it holds and how many notes fall
into it.

The built document is cached, so repeated runs on an unchanged script skip
the replay.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeScripts,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), cmd.OutOrStdout(), args[0], strict)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "validate the lane layout after every measure edit")
	return cmd
}

func (c *CLI) runLayout(ctx context.Context, w io.Writer, input string, strict bool) error {
	runner, script, opts, err := c.prepare(ctx, input)
	if err != nil {
		return err
	}
	defer runner.Close()
	opts.Strict = strict

	prog := newProgress(opts.Logger)
	sess, cached, err := runner.BuildWithCacheInfo(ctx, script, opts)
	if err != nil {
		return fmt.Errorf("build %s: %w", input, err)
	}
	st := sess.Stats()
	prog.done(fmt.Sprintf("Built %d measures", st.Measures))

	var rows [][]string
	_ = sess.Read(func(v session.View) error {
		rows = laneRows(v)
		return nil
	})
	info := sess.Info()
	fmt.Fprintln(w, StyleTitle.Render(script.Name))
	fmt.Fprintf(w, "%s %s\n", StyleDim.Render("capacity"), StyleNumber.Render(fmt.Sprintf("%g bars (%d ticks)", info.LaneMaxBar, info.CapacityTicks())))
	fmt.Fprintln(w, laneTable(rows, -1))
	fmt.Fprintln(w, statsLine(st, cached))
	fmt.Fprintln(w)
	printNextStep("Render it", appName+" render "+input)
	return nil
}
