package cli

import (
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store an API token for the backend",
	Long: `Prompt for the backend API token and store it in the system keyring.
The token is sent as a bearer token on every request from the next run on.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := promptForToken()
		if err != nil {
			return err
		}

		if err := appInstance.SaveToken(token); err != nil {
			return fmt.Errorf("failed to store API token: %w", err)
		}

		fmt.Println("✓ API token stored")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored API token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appInstance.DeleteToken(); err != nil {
			return fmt.Errorf("failed to remove API token: %w", err)
		}

		fmt.Println("✓ API token removed")
		return nil
	},
}

// promptForToken reads the token without echoing it
func promptForToken() (string, error) {
	fmt.Printf("API token for %s: ", appInstance.Config.API.BaseURL)

	token, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // New line after token input
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	value := strings.TrimSpace(string(token))
	if value == "" {
		return "", fmt.Errorf("token cannot be empty")
	}

	return value, nil
}
