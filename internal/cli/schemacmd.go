package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/resolvetree/internal/schema"
	"github.com/roach88/resolvetree/internal/store"
)

// SchemaOptions holds flags shared by the schema subcommands.
type SchemaOptions struct {
	*RootOptions
	DB    string
	Label string
}

// PushResult is the output of schema push.
type PushResult struct {
	Snapshot store.Snapshot `json:"snapshot"`
	Created  bool           `json:"created"`
}

// NewSchemaCommand creates the schema command group.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SchemaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage stored schema snapshots",
		Long: `Store schema definitions in a SQLite snapshot store.

Snapshots are content addressed: pushing an unchanged definition stores
nothing new. compile --db selects a snapshot by hash, hash prefix, label
or "latest".`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "snapshot store path (default from config)")

	push := &cobra.Command{
		Use:           "push <schema>",
		Short:         "Validate and store a schema definition",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchemaPush(cmd.Context(), opts, args[0], cmd)
		},
	}
	push.Flags().StringVar(&opts.Label, "label", "", "label the snapshot")

	list := &cobra.Command{
		Use:           "list",
		Short:         "List stored snapshots, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchemaList(cmd.Context(), opts, cmd)
		},
	}

	show := &cobra.Command{
		Use:           "show <ref>",
		Short:         "Print a stored snapshot",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchemaShow(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.AddCommand(push, list, show)
	return cmd
}

// open opens the snapshot store named by --db or the config file.
func (opts *SchemaOptions) open() (*store.Store, error) {
	path := firstNonEmpty(opts.DB, opts.Config.Database)
	if path == "" {
		return nil, &LoadFailure{Exit: ExitCommandError, Code: ErrCodeInvalidArgs, Message: "no snapshot store given: use --db or set database in the config file"}
	}
	return openStore(path)
}

func runSchemaPush(ctx context.Context, opts *SchemaOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	def, err := loadDefinition(path)
	if err != nil {
		return reportFailure(formatter, err)
	}
	st, err := opts.open()
	if err != nil {
		return reportFailure(formatter, err)
	}
	defer st.Close()

	snap, created, err := st.PutSchema(ctx, def, opts.Label)
	if err != nil {
		var verrs schema.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return formatter.Fail(ExitFailure, verrs[0].Code,
				fmt.Sprintf("schema has %d validation error(s)", len(verrs)), []schema.ValidationError(verrs))
		}
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	opts.logger().Info("schema pushed", "hash", snap.Hash, "label", snap.Label, "created", created)

	snap.Definition = nil
	if formatter.JSON() {
		return formatter.Success(PushResult{Snapshot: snap, Created: created})
	}

	state := "stored"
	if !created {
		state = "unchanged"
	}
	fmt.Fprintf(formatter.Writer, "✓ Schema %s: %s", state, snap.Hash)
	if snap.Label != "" {
		fmt.Fprintf(formatter.Writer, " (%s)", snap.Label)
	}
	fmt.Fprintln(formatter.Writer)
	return nil
}

func runSchemaList(ctx context.Context, opts *SchemaOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := opts.open()
	if err != nil {
		return reportFailure(formatter, err)
	}
	defer st.Close()

	snaps, err := st.ListSchemas(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	if formatter.JSON() {
		return formatter.Success(snaps)
	}

	if len(snaps) == 0 {
		fmt.Fprintln(formatter.Writer, "No schemas stored.")
		return nil
	}
	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tHASH\tLABEL\tENTITIES\tCREATED")
	for _, s := range snaps {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", s.Seq, shortHash(s.Hash), s.Label, s.Entities, s.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func runSchemaShow(ctx context.Context, opts *SchemaOptions, ref string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := opts.open()
	if err != nil {
		return reportFailure(formatter, err)
	}
	defer st.Close()

	snap, err := st.GetSchema(ctx, ref)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrAmbiguous) {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, err.Error(), nil)
		}
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	if formatter.JSON() {
		return formatter.Success(snap)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "hash:     %s\n", snap.Hash)
	if snap.Label != "" {
		fmt.Fprintf(w, "label:    %s\n", snap.Label)
	}
	fmt.Fprintf(w, "created:  %s\n", snap.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "entities:\n")
	for _, e := range snap.Definition.Entities {
		fmt.Fprintf(w, "  %s (%d attributes, %d relationships)\n", e.Name, len(e.Attributes), len(e.Relationships))
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
