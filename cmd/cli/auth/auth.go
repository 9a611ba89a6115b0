package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/loeitech/booker/cmd/cli/api"
	"github.com/loeitech/booker/cmd/cli/config"
)

// InitAuth registers the register, login and logout commands on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(registerCmd(), loginCmd(), logoutCmd())
}

// ==========================
// Register
// ==========================
func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Register a new user",
		Long:  "Register a new user with username and password.",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, password, err := promptCredentials()
			if err != nil {
				return err
			}

			data, status, err := api.PostJSON("/register", map[string]string{
				"username": username,
				"password": password,
			})
			if err != nil {
				return err
			}
			if status != 201 {
				return fmt.Errorf("%s", api.ErrorMessage(data, status))
			}

			fmt.Println("User registered successfully! You can now login.")
			return nil
		},
	}
}

// ==========================
// Login
// ==========================
func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Login an existing user",
		Long:  "Login and save the session locally for future CLI commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, password, err := promptCredentials()
			if err != nil {
				return err
			}

			data, status, err := api.PostJSON("/login", map[string]string{
				"username": username,
				"password": password,
			})
			if err != nil {
				return err
			}
			if status != 200 {
				return fmt.Errorf("%s", api.ErrorMessage(data, status))
			}

			var out struct {
				User config.Session `json:"user"`
			}
			if err := json.Unmarshal(data, &out); err != nil {
				return err
			}
			if out.User.ID == 0 {
				return fmt.Errorf("user not returned by API")
			}

			if err := config.SaveSession(out.User); err != nil {
				return err
			}

			fmt.Printf("Login successful! Logged in as %s (%s).\n", out.User.Username, out.User.Role)
			return nil
		},
	}
}

// ==========================
// Logout
// ==========================
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout current user",
		Long:  "Remove the locally saved session.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ClearSession(); err != nil {
				if os.IsNotExist(err) {
					fmt.Println("No user logged in.")
					return nil
				}
				return err
			}
			fmt.Println("Logged out successfully.")
			return nil
		},
	}
}

// ==========================
// Prompt Helpers
// ==========================
func promptCredentials() (string, string, error) {
	var username string
	fmt.Print("Username: ")
	fmt.Scanln(&username)
	username = strings.TrimSpace(username)
	if username == "" {
		return "", "", fmt.Errorf("username is required")
	}

	password, err := readPassword("Password: ")
	if err != nil {
		return "", "", err
	}
	if password == "" {
		return "", "", fmt.Errorf("password is required")
	}

	return username, password, nil
}

// readPassword reads a password without echoing it to the terminal.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(bytePassword)), nil
}
