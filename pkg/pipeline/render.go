package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	chartio "github.com/matzehuels/lanebook/pkg/io"
	"github.com/matzehuels/lanebook/pkg/observability"
	"github.com/matzehuels/lanebook/pkg/render"
	"github.com/matzehuels/lanebook/pkg/render/nodelink"
	"github.com/matzehuels/lanebook/pkg/session"
)

// Render produces the requested formats of sess without caching. PNG and
// PDF are converted from the lane SVG.
func Render(ctx context.Context, sess *session.Session, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	artifacts, err := renderFormats(ctx, sess, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func renderFormats(ctx context.Context, sess *session.Session, opts Options) (map[string][]byte, error) {
	var svg []byte
	var dot string
	_ = sess.Read(func(v session.View) error {
		svg = render.RenderSVG(v, render.WithVisibility(v.Status.Visibility))
		dot = nodelink.ToDOT(v, nodelink.Options{Detailed: opts.Detailed})
		return nil
	})

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = svg
		case FormatDOT:
			data = []byte(dot)
		case FormatGraphSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatJSON:
			var buf bytes.Buffer
			err = chartio.WriteJSON(sess, &buf)
			data = buf.Bytes()
		case FormatCBOR:
			var buf bytes.Buffer
			err = chartio.WriteCBOR(sess, &buf)
			data = buf.Bytes()
		case FormatPNG:
			data, err = render.ToPNG(ctx, svg, opts.Scale)
		case FormatPDF:
			data, err = render.ToPDF(ctx, svg)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
