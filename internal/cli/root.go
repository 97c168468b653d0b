package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/relink/pkg/buildinfo"
	"github.com/matzehuels/relink/pkg/engine"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "relink",
		Short: "Relink keeps diagram relationships consistent with their elements",
		Long: `Relink replays editing events on diagrams and re-lays out every relationship
they affect: edges attached to moved or resized boxes, edges attached to other
edges, and the containers that must grow to hold them.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/relink/relink.toml)")

	root.AddCommand(c.recalcCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// editorFlags holds the editor state given on the command line.
type editorFlags struct {
	selected []string
	readOnly bool
}

func (f *editorFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.selected, "select", nil, "ids selected in the editor before the first event")
	cmd.Flags().BoolVar(&f.readOnly, "read-only", false, "treat the diagram as read-only")
}

func (f editorFlags) editor() engine.Editor {
	ed := engine.Editor{ReadOnly: f.readOnly}
	if len(f.selected) > 0 {
		ed.Selected = make(map[string]bool, len(f.selected))
		for _, id := range f.selected {
			ed.Selected[id] = true
		}
	}
	return ed
}
