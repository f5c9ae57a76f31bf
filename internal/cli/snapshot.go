package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/repoatlas/repoatlas/pkg/store"
)

// snapshotStoreOpts selects the snapshot backend: the default file store, a
// custom directory, or MongoDB.
type snapshotStoreOpts struct {
	dir      string
	mongoURI string
	mongoDB  string
}

func (o *snapshotStoreOpts) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&o.dir, "dir", "", "snapshot directory (default ~/.config/repoatlas/snapshots)")
	cmd.PersistentFlags().StringVar(&o.mongoURI, "mongo", "", "MongoDB URI for a shared snapshot store")
	cmd.PersistentFlags().StringVar(&o.mongoDB, "mongo-db", "repoatlas", "MongoDB database name")
}

func (o *snapshotStoreOpts) open(ctx context.Context) (store.Store, error) {
	if o.mongoURI != "" {
		return store.NewMongoStore(ctx, o.mongoURI, o.mongoDB, "snapshots")
	}
	return store.NewFileStore(o.dir)
}

// snapshotCommand creates the snapshot management command.
func (c *CLI) snapshotCommand() *cobra.Command {
	var opts snapshotStoreOpts

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage stored scan snapshots",
	}
	opts.register(cmd)

	cmd.AddCommand(c.snapshotSaveCommand(&opts))
	cmd.AddCommand(c.snapshotListCommand(&opts))
	cmd.AddCommand(c.snapshotShowCommand(&opts))
	cmd.AddCommand(c.snapshotDeleteCommand(&opts))

	return cmd
}

func (c *CLI) snapshotSaveCommand(storeOpts *snapshotStoreOpts) *cobra.Command {
	var opts scanOpts

	cmd := &cobra.Command{
		Use:   "save [path]",
		Short: "Scan a repository and store the model as a snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			m, _, err := c.resolveModel(cmd.Context(), root, opts)
			if err != nil {
				return err
			}

			s, err := storeOpts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			snap := store.NewSnapshot(m)
			if err := s.Put(cmd.Context(), snap); err != nil {
				return err
			}
			printSuccess("Saved snapshot of %s", m.RepoName)
			printKeyValue("id", snap.State.SnapshotID)
			printScanStats(snap.State.Assemblies, snap.State.Packages, snap.State.Unassigned, false)
			return nil
		},
	}
	opts.register(cmd)
	return cmd
}

func (c *CLI) snapshotListCommand(storeOpts *snapshotStoreOpts) *cobra.Command {
	var repoName string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := storeOpts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			states, err := s.List(cmd.Context(), repoName)
			if err != nil {
				return err
			}
			if len(states) == 0 {
				printInfo("No snapshots")
				return nil
			}
			for _, st := range states {
				fmt.Printf("%s  %s  %s  %d assemblies, %d packages\n",
					st.SnapshotID,
					st.CreatedAt.Format("2006-01-02 15:04"),
					st.RepoName,
					st.Assemblies, st.Packages)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&repoName, "repo", "", "only snapshots of this repository")
	return cmd
}

func (c *CLI) snapshotShowCommand(storeOpts *snapshotStoreOpts) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored model as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := storeOpts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			snap, err := s.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeModel(snap.Model, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

func (c *CLI) snapshotDeleteCommand(storeOpts *snapshotStoreOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := storeOpts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted snapshot %s", args[0])
			return nil
		},
	}
}
