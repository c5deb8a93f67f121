package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sebastienferry/site-purge/internal/pkg/config"
	"github.com/sebastienferry/site-purge/internal/pkg/purge"
	"github.com/spf13/cobra"
)

type runFlags struct {
	force bool
}

func newRunCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Delete every document of the purgeable collections",
		Long: "Deletes every document of the purgeable collections, in order and in batches.\n" +
			"Shows the document counts first and asks for two confirmations.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), config.Current, func(d *Deps) error {
				p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
				return runPurge(cmd, d, p, flags)
			})
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Skip the confirmation prompts")

	return cmd
}

func runPurge(cmd *cobra.Command, d *Deps, p *prompter, flags runFlags) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	target := d.Config.Store.Target()

	if !flags.force {
		collections := d.Purger.Collections()
		printCounts(out, collections, countCollections(ctx, d.Store, collections))

		if !p.confirm(fmt.Sprintf("Delete every document of these collections in %s?", target)) {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
		if !p.confirmPhrase("DELETE " + target) {
			fmt.Fprintln(out, "Confirmation phrase mismatch, cancelled.")
			return nil
		}
	}

	report, err := d.Purger.Purge(ctx, func(message string) {
		fmt.Fprintln(out, message)
	})
	if err != nil {
		return fmt.Errorf("purge stopped on an unavailable store: %w", err)
	}
	if failed := report.Failed(); len(failed) > 0 {
		return fmt.Errorf("purge failed on %d collection(s): %v", len(failed), failed)
	}
	return nil
}

func printCounts(out io.Writer, collections []purge.CollectionName, counts []int64) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COLLECTION\tDOCUMENTS")
	for i, collection := range collections {
		count := fmt.Sprint(counts[i])
		if counts[i] < 0 {
			count = "?"
		}
		fmt.Fprintf(w, "%s\t%s\n", collection, count)
	}
	w.Flush()
}
