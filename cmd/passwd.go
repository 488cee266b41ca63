package main

import (
	"errors"
	"fmt"

	"PropertyManager/internal/db"

	"github.com/spf13/cobra"
)

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Set a new password for an existing user",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if email == "" || password == "" {
			return errors.New("--email and --password are required")
		}

		_, store, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		if err := store.SetPassword(cmd.Context(), email, password); errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("user %s not found", email)
		} else if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", email)
		return nil
	},
}

func init() {
	passwdCmd.Flags().String("email", "", "user email")
	passwdCmd.Flags().String("password", "", "new password")
	rootCmd.AddCommand(passwdCmd)
}
