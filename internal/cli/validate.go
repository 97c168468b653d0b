package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var eventsPath string

	cmd := &cobra.Command{
		Use:   "validate [diagram.json]",
		Short: "Check a diagram and event script without writing anything",
		Long: `Check that a diagram is well formed: ids are unique, owners exist, ownership
is acyclic and every relationship endpoint resolves.

With --events the script is also replayed in memory, so unknown ids and
invalid geometry in the events are reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), args[0], eventsPath)
		},
	}

	cmd.Flags().StringVarP(&eventsPath, "events", "e", "", "event script to check against the diagram")
	return cmd
}

func (c *CLI) runValidate(ctx context.Context, input, eventsPath string) error {
	m, events, err := loadInputs(input, eventsPath)
	if err != nil {
		return err
	}

	printSuccess("%s is valid", input)
	printKeyValue("elements", strconv.Itoa(m.ElementCount()))
	printKeyValue("relationships", strconv.Itoa(m.RelationshipCount()))
	for _, cycle := range m.DependencyCycles() {
		printWarning("relationships attached to each other in a cycle: %s", strings.Join(cycle, " → "))
	}

	if eventsPath == "" {
		return nil
	}
	res, err := c.run(ctx, m, events, editorFlags{}, true, false)
	if err != nil {
		return err
	}
	printSuccess("%s applies cleanly (%d events)", eventsPath, len(events))
	printStats(res.Stats, false)
	return nil
}
