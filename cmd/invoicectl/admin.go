package main

import (
	"context"

	authdomain "github.com/smallbiznis/invoicedesk/internal/auth/domain"
	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage user accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	Example: `  invoicectl admin create --email ops@example.com --password 's3cret-pass'
  invoicectl admin create --email boss@example.com --password 's3cret-pass' --role admin`,
	Args: cobra.NoArgs,
	RunE: runAdminCreate,
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminCreateCmd)

	adminCreateCmd.Flags().String("email", "", "Account email")
	adminCreateCmd.Flags().String("password", "", "Account password")
	adminCreateCmd.Flags().String("name", "", "Display name (defaults to the email local part)")
	adminCreateCmd.Flags().String("role", string(authdomain.RoleUser), "Role: admin or user")
	_ = adminCreateCmd.MarkFlagRequired("email")
	_ = adminCreateCmd.MarkFlagRequired("password")
}

func runAdminCreate(cmd *cobra.Command, _ []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	name, _ := cmd.Flags().GetString("name")
	role, _ := cmd.Flags().GetString("role")

	var authsvc authdomain.Service
	return withApp(cmd.Context(), func(ctx context.Context) error {
		user, err := authsvc.CreateUser(ctx, authdomain.CreateUserRequest{
			Email:    email,
			Password: password,
			Name:     name,
			Role:     authdomain.Role(role),
		})
		if err != nil {
			return err
		}
		cmd.Printf("created %s (%s) id=%s\n", user.Email, user.Role, user.ID)
		return nil
	}, &authsvc)
}
