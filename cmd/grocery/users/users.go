package users

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"grocerytracker/cmd/grocery/config"
	"grocerytracker/cmd/grocery/output"
	"grocerytracker/internal/models"

	"github.com/spf13/cobra"
)

// ==========================
// CLI Command Init
// ==========================

// InitUsers registers account commands on the root command.
func InitUsers(rootCmd *cobra.Command) {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage your account and login session",
		Long: `Register or login a user of the grocery tracker API.
Stores the login token locally for future commands.`,
	}

	usersCmd.AddCommand(
		registerCmd(),
		loginCmd(),
		logoutCmd(),
		whoamiCmd(),
		deleteCmd(),
	)
	rootCmd.AddCommand(usersCmd)
}

// ==========================
// Register User
// ==========================
func registerCmd() *cobra.Command {
	var email, password, displayName string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user",
		Long:  "Register a new user with email, password and an optional display name.",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			email = promptIfEmpty(in, "Email", email)
			password = promptIfEmpty(in, "Password", password)

			var resp struct {
				Data models.UserView `json:"data"`
			}
			payload := map[string]string{
				"email":       email,
				"password":    password,
				"displayName": displayName,
			}
			if err := config.CallJSON(http.MethodPost, "/registration", payload, &resp, false); err != nil {
				return fmt.Errorf("failed to register user: %w", err)
			}

			fmt.Printf("User %s registered successfully! You can now login.\n", resp.Data.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address of the account")
	cmd.Flags().StringVar(&password, "password", "", "Password (at least 5 characters)")
	cmd.Flags().StringVar(&displayName, "name", "", "Display name, defaults to the email")
	return cmd
}

// ==========================
// Login User
// ==========================
func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login an existing user",
		Long:  "Login and save the token locally for future CLI commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			email = promptIfEmpty(in, "Email", email)
			password = promptIfEmpty(in, "Password", password)

			var resp struct {
				Token string          `json:"token"`
				Data  models.UserView `json:"data"`
			}
			payload := map[string]string{"email": email, "password": password}
			if err := config.CallJSON(http.MethodPost, "/login", payload, &resp, false); err != nil {
				return fmt.Errorf("failed to login: %w", err)
			}
			if resp.Token == "" {
				return fmt.Errorf("login succeeded but no token returned")
			}

			if err := config.SaveToken(resp.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Printf("Login successful. Welcome, %s!\n", resp.Data.DisplayName)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address of the account")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	return cmd
}

// ==========================
// Logout User
// ==========================
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout current user",
		Long:  "Remove the locally saved token. Tokens are not revoked on the server.",
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := config.ClearToken()
			if err != nil {
				return err
			}
			if !removed {
				fmt.Println("No user logged in.")
				return nil
			}
			fmt.Println("Logged out successfully.")
			return nil
		},
	}
}

// ==========================
// Current User
// ==========================
func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw json.RawMessage
			if err := config.CallJSON(http.MethodGet, "/user", nil, &raw, true); err != nil {
				return err
			}

			// The API answers a bare false when the account no longer exists.
			var resp struct {
				Data models.UserView `json:"data"`
			}
			if strings.TrimSpace(string(raw)) == "false" || json.Unmarshal(raw, &resp) != nil {
				fmt.Println("Your session refers to an account that no longer exists. Please login again.")
				return nil
			}

			output.RenderTable(
				[]string{"ID", "Name", "Email"},
				[][]interface{}{{resp.Data.ID, resp.Data.DisplayName, resp.Data.Email}},
			)
			return nil
		},
	}
}

// ==========================
// Delete Account
// ==========================
func deleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete your account",
		Long:  "Delete the logged in account. Grocery entries are not removed unless the server cascades deletes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.LoadToken(); err != nil {
				return config.ErrNotLoggedIn
			}

			var deleted models.UserView
			done, err := output.ConfirmDelete(context.Background(), cmd.InOrStdin(), cmd.OutOrStdout(), "your account", yes,
				func(context.Context, string) error {
					var resp struct {
						Data models.UserView `json:"data"`
					}
					if err := config.CallJSON(http.MethodDelete, "/user", nil, &resp, true); err != nil {
						return err
					}
					deleted = resp.Data
					return nil
				})
			if err != nil {
				return fmt.Errorf("failed to delete account: %w", err)
			}
			if !done {
				fmt.Println("Cancelled.")
				return nil
			}

			if _, err := config.ClearToken(); err != nil {
				return err
			}
			fmt.Printf("Account %s deleted.\n", deleted.Email)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	return cmd
}

func promptIfEmpty(in *bufio.Reader, label, value string) string {
	if value != "" {
		return value
	}
	fmt.Printf("%s: ", label)
	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return ""
	}
	return strings.TrimSpace(line)
}
