package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lanebook/pkg/errors"
	"github.com/matzehuels/lanebook/pkg/pipeline"
)

type renderOpts struct {
	output   string
	formats  []string
	detailed bool
	scale    float64
	refresh  bool
	strict   bool
}

// renderCommand writes the requested output formats of a chart script.
func (c *CLI) renderCommand() *cobra.Command {
	var formats string
	opts := renderOpts{scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "render [chart.toml]",
		Short: "Render a chart to SVG, DOT, JSON, CBOR, PNG or PDF",
		Long: `Render a chart script.

Formats:
  svg        lanes and notes
  dot        lane/measure graph as Graphviz source
  graph.svg  the same graph laid out by Graphviz
  json       the full chart document, readable by ImportJSON
  cbor       the same document in compact binary form
  png, pdf   the lane SVG converted with rsvg-convert (librsvg)

Each format is written to <output>.<format>; <output> defaults to the script
path without its extension.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeScripts,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formats)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			if opts.output != "" {
				if err := errors.ValidateOutputPath(opts.output); err != nil {
					return err
				}
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: script path without extension)")
	cmd.Flags().StringVarP(&formats, "format", "f", "", "output format(s): svg (default), dot, graph.svg, json, cbor, png, pdf (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "add tick spans to graph labels")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached outputs")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "validate the lane layout after every measure edit")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, ro renderOpts) error {
	runner, script, opts, err := c.prepare(ctx, input)
	if err != nil {
		return err
	}
	defer runner.Close()
	opts.Formats = ro.formats
	opts.Detailed = ro.detailed
	opts.Scale = ro.scale
	opts.Refresh = ro.refresh
	opts.Strict = ro.strict

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(ro.formats, ", ")))
	spinner.Start()
	result, err := runner.Execute(ctx, script, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	base := basePath(ro.output, input)
	printSuccess("Rendered %s", script.Name)
	for _, f := range ro.formats {
		path := base + "." + f
		if err := writeOutput(path, result.Artifacts[f]); err != nil {
			return err
		}
		printFile(path)
	}
	fmt.Println(statsLine(result.Stats.Stats, result.CacheInfo.RenderHit))
	return nil
}

// basePath strips a known format extension from output, or derives the
// base from input when output is empty.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	// graph.svg before svg
	for _, f := range append([]string{pipeline.FormatGraphSVG}, pipeline.ValidFormats...) {
		if strings.HasSuffix(output, "."+f) {
			return strings.TrimSuffix(output, "."+f)
		}
	}
	return output
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
