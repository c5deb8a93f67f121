package main

import (
	"github.com/sebastienferry/site-purge/internal/pkg/config"
	"github.com/sebastienferry/site-purge/internal/pkg/purge"
	"github.com/spf13/cobra"
)

func newCollectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List the purgeable collections and their document count",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), config.Current, func(d *Deps) error {
				collections := purge.Collections()
				printCounts(cmd.OutOrStdout(), collections, countCollections(cmd.Context(), d.Store, collections))
				return nil
			})
		},
	}
}
