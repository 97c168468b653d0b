package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relink/pkg/document"
	"github.com/matzehuels/relink/pkg/pipeline"
	"github.com/matzehuels/relink/pkg/render/nodelink"
)

// visualizeCommand creates the visualize command.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
		opts       nodelink.Options
	)

	cmd := &cobra.Command{
		Use:   "visualize [diagram.json]",
		Short: "Export a diagram as SVG, DOT or JSON",
		Long: `Export a diagram as it is stored: boxes at their bounds and relationships
along their waypoint paths. Nothing is re-laid out; run 'recalc' first to
bring relationships up to date.

SVG output needs Graphviz, which is embedded. Results are cached locally.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := pipeline.ParseFormats(formatsStr)
			if err != nil {
				return err
			}
			return c.runVisualize(cmd.Context(), args[0], formats, opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "label boxes and relationships with their types")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runVisualize(ctx context.Context, input string, formats []string, opts nodelink.Options, output string, noCache bool) error {
	m, err := document.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load diagram %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()
	artifacts, cacheHit, err := runner.Export(ctx, m, formats, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()

	return writeArtifacts(artifacts, formats, input, output, cacheHit)
}

// writeArtifacts writes one file per format. With a single format, output
// names the file; otherwise it is a base path extended by each format.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string, cacheHit bool) error {
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := basePath(output, input) + "." + f
		if len(formats) == 1 && output != "" {
			path = output
		}
		if f == pipeline.FormatJSON && path == input {
			return fmt.Errorf("refusing to overwrite input %s", input)
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	status := "Rendered"
	if cacheHit {
		status = "Rendered (cached)"
	}
	printSuccess("%s %s", status, input)
	for _, p := range paths {
		printFile(p)
	}
	return nil
}
