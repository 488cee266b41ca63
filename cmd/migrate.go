package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables and the default administrator, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
