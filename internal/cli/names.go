package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/resolvetree/internal/schema"
	"github.com/roach88/resolvetree/internal/typenames"
)

// OwnerNames are the synthetic type names of one entity or relationship.
type OwnerNames struct {
	Owner string          `json:"owner"`
	Names typenames.Names `json:"names"`
}

// NewNamesCommand creates the names command.
func NewNamesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "names [schema]",
		Short: "List the synthetic type names of a schema",
		Long: `List the type names the read API derives for every entity and relationship:
the operation, connection, edge, node and properties types that inline
fragments may name.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.Config.Schema
			if len(args) > 0 {
				path = args[0]
			}
			return runNames(rootOpts, path, cmd)
		},
	}
	return cmd
}

func runNames(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	def, err := loadDefinition(path)
	if err != nil {
		return reportFailure(formatter, err)
	}
	model, err := buildModel(def)
	if err != nil {
		return reportFailure(formatter, err)
	}

	names := CollectNames(model)
	if formatter.JSON() {
		return formatter.Success(names)
	}

	w := formatter.Writer
	for _, n := range names {
		fmt.Fprintf(w, "%s\n", n.Owner)
		fmt.Fprintf(w, "  operation:  %s\n", n.Names.ConnectionOperation)
		fmt.Fprintf(w, "  connection: %s\n", n.Names.Connection)
		fmt.Fprintf(w, "  edge:       %s\n", n.Names.Edge)
		fmt.Fprintf(w, "  node:       %s\n", n.Names.Node)
		if n.Names.HasProperties() {
			fmt.Fprintf(w, "  properties: %s\n", n.Names.Properties)
		}
	}
	return nil
}

// CollectNames returns the names of every entity followed by its
// relationships, in declaration order.
func CollectNames(model *schema.Model) []OwnerNames {
	var out []OwnerNames
	for _, e := range model.Entities() {
		out = append(out, OwnerNames{Owner: e.Name, Names: typenames.For(e)})
		for _, r := range e.Relationships() {
			out = append(out, OwnerNames{Owner: e.Name + "." + r.Name, Names: typenames.For(r)})
		}
	}
	return out
}
