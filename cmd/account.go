package cmd

import (
	"fmt"
	"strings"

	"github.com/skillswap/skillswap/internal/auth"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage local login accounts",
}

var accountCreateFlags struct {
	Username string
	Email    string
	Password string
	Roles    []string
}

var accountCreateCmd = &cobra.Command{
	Use:     "create",
	Short:   "Create a local account",
	Long:    `Create a username/password account that can log in through /api/v1/auth/login.`,
	Example: `skillswap account create --username admin --email admin@example.com --password s3cret-pass --role ADMIN`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDatabase()
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close() //nolint: errcheck

		account, err := auth.NewLocalProvider(db).CreateAccount(cmd.Context(),
			accountCreateFlags.Username,
			accountCreateFlags.Email,
			accountCreateFlags.Password,
			accountCreateFlags.Roles,
		)
		if err != nil {
			return err
		}

		roles := "none"
		if len(account.Roles) > 0 {
			roles = strings.Join(account.Roles, ", ")
		}
		fmt.Printf("Created account %q (roles: %s)\n", account.Username, roles)
		return nil
	},
}

func init() {
	accountCreateCmd.Flags().StringVarP(&accountCreateFlags.Username, "username", "u", "", "Account username")
	accountCreateCmd.Flags().StringVar(&accountCreateFlags.Email, "email", "", "Account email")
	accountCreateCmd.Flags().StringVarP(&accountCreateFlags.Password, "password", "p", "", "Account password (at least 8 characters)")
	accountCreateCmd.Flags().StringSliceVar(&accountCreateFlags.Roles, "role", nil, "Role to grant, e.g. ADMIN (repeatable)")
	_ = accountCreateCmd.MarkFlagRequired("username")
	_ = accountCreateCmd.MarkFlagRequired("password")

	accountCmd.AddCommand(accountCreateCmd)
	rootCmd.AddCommand(accountCmd)
}
