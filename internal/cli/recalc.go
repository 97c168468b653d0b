package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relink/pkg/diagram"
	"github.com/matzehuels/relink/pkg/document"
	"github.com/matzehuels/relink/pkg/pipeline"
)

// recalcCommand creates the recalc command.
func (c *CLI) recalcCommand() *cobra.Command {
	var (
		eventsPath string
		output     string
		stepsPath  string
		noCache    bool
		refresh    bool
		ed         editorFlags
	)

	cmd := &cobra.Command{
		Use:   "recalc [diagram.json]",
		Short: "Replay editing events and re-lay out affected relationships",
		Long: `Replay an event script on a diagram and write the updated diagram.

Without --events every relationship is recalculated once, which brings a
hand-edited diagram back into a consistent state.

The event script is a JSON array (or an object with an "events" array):

  [
    {"op": "move", "ids": ["A"], "delta": {"x": 10, "y": 0}},
    {"op": "update", "id": "R", "values": {"name": "owns"}}
  ]

Results are cached locally; --refresh recomputes them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRecalc(cmd.Context(), args[0], recalcParams{
				events:  eventsPath,
				output:  output,
				steps:   stepsPath,
				noCache: noCache,
				refresh: refresh,
				editor:  ed,
			})
		},
	}

	cmd.Flags().StringVarP(&eventsPath, "events", "e", "", "event script (default: recalculate everything)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <input>.relinked.json)")
	cmd.Flags().StringVar(&stepsPath, "steps", "", "also write the per-trigger steps as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached results")
	ed.register(cmd)

	return cmd
}

type recalcParams struct {
	events  string
	output  string
	steps   string
	noCache bool
	refresh bool
	editor  editorFlags
}

func (c *CLI) runRecalc(ctx context.Context, input string, p recalcParams) error {
	res, err := c.replay(ctx, input, p.events, p.editor, p.noCache, p.refresh)
	if err != nil {
		return err
	}

	output := p.output
	if output == "" {
		output = basePath("", input) + ".relinked.json"
	}
	if output == "-" {
		if err := document.Write(res.Model, os.Stdout); err != nil {
			return fmt.Errorf("write diagram: %w", err)
		}
	} else {
		if err := document.WriteFile(res.Model, output); err != nil {
			return fmt.Errorf("write diagram: %w", err)
		}
	}
	if p.steps != "" {
		if err := writeSteps(p.steps, res.Steps); err != nil {
			return err
		}
	}

	// Keep stdout clean when it carries the diagram.
	if output == "-" {
		return nil
	}
	printSuccess("Recalculated %s", input)
	printStats(res.Stats, res.CacheHit)
	printFile(output)
	if p.steps != "" {
		printFile(p.steps)
	}
	printNextStep("Render it", "relink visualize "+output)
	return nil
}

// replay loads a diagram and event script and runs them through a runner.
func (c *CLI) replay(ctx context.Context, input, eventsPath string, ed editorFlags, noCache, refresh bool) (*pipeline.Result, error) {
	m, events, err := loadInputs(input, eventsPath)
	if err != nil {
		return nil, err
	}
	res, err := c.run(ctx, m, events, ed, noCache, refresh)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", input, err)
	}
	return res, nil
}

func (c *CLI) run(ctx context.Context, m *diagram.Model, events []pipeline.Event, ed editorFlags, noCache, refresh bool) (*pipeline.Result, error) {
	prog := newProgress(loggerFromContext(ctx))

	opts, err := c.replayOptions(events, ed, refresh)
	if err != nil {
		return nil, err
	}
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := runner.Replay(ctx, m, opts)
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Replayed %d events", res.Stats.Events))
	return res, nil
}

// loadInputs reads a diagram and its event script. A missing script means
// one recalc event covering every relationship.
func loadInputs(input, eventsPath string) (*diagram.Model, []pipeline.Event, error) {
	m, err := document.ReadFile(input)
	if err != nil {
		return nil, nil, fmt.Errorf("load diagram %s: %w", input, err)
	}
	if eventsPath == "" {
		return m, []pipeline.Event{{Op: pipeline.OpRecalc}}, nil
	}
	events, err := pipeline.ReadEventsFile(eventsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load events %s: %w", eventsPath, err)
	}
	return m, events, nil
}

func writeSteps(path string, steps []pipeline.Step) error {
	if steps == nil {
		steps = []pipeline.Step{}
	}
	data, err := json.MarshalIndent(steps, "", "  ")
	if err != nil {
		return fmt.Errorf("encode steps: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write steps: %w", err)
	}
	return nil
}

// basePath returns output, or input with its extension stripped.
func basePath(output, input string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}
