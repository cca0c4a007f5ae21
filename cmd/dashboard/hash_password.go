package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"fraud-dashboard/internal/handlers"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print the bcrypt hash for an auth.users entry",
	Long:  "Hashes the password given as argument, or read from stdin, for use as password_hash in the users configuration.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password := ""
		if len(args) == 1 {
			password = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return eris.Wrap(err, "read password")
			}
			password = strings.TrimRight(line, "\r\n")
		}
		if len(password) < 8 {
			return eris.New("password must be at least 8 characters")
		}

		hash, err := handlers.HashPassword(password)
		if err != nil {
			return eris.Wrap(err, "hash password")
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
}
