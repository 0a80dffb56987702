package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/ruminaider/mcp-roster/internal/credentials"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the sync provider token",
}

var tokenSetCmd = &cobra.Command{
	Use:   "set [token]",
	Short: "Store the sync token",
	Long:  "Store the bearer token used for sync. Prompts with hidden input when no argument is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var token string
		if len(args) == 1 {
			token = args[0]
		} else {
			if !term.IsTerminal(os.Stdin.Fd()) {
				return fmt.Errorf("token argument required when stdin is not a terminal")
			}
			var err error
			if token, err = promptToken("Sync token"); err != nil {
				return err
			}
		}
		token = strings.TrimSpace(token)
		if token == "" {
			return fmt.Errorf("token is empty")
		}

		return withApp(func(a *app) error {
			if err := a.tokens.Set(token); err != nil {
				return err
			}
			fmt.Println("Token saved.")
			if _, ok := os.LookupEnv(credentials.TokenEnv); ok {
				fmt.Printf("Note: %s is set and takes precedence.\n", credentials.TokenEnv)
			}
			return nil
		})
	},
}

var tokenStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a sync token is available",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			token, ok, err := a.store.Get()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("No sync token stored.")
				return nil
			}
			source := "credential store"
			if v := os.Getenv(credentials.TokenEnv); v != "" {
				source = credentials.TokenEnv
			}
			fmt.Printf("Token %s (from %s)\n", maskSecret(token), source)
			return nil
		})
	},
}

// promptToken asks for a token with hidden input. An empty answer is
// returned as is so the caller decides what it means.
func promptToken(title string) (string, error) {
	var token string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Description("Paste the bearer token issued by your sync provider").
				EchoMode(huh.EchoModePassword).
				Value(&token),
		),
	).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	return token, nil
}

// maskSecret shows the first 4 characters of a secret, then asterisks.
func maskSecret(value string) string {
	if len(value) <= 4 {
		return "****"
	}
	return value[:4] + strings.Repeat("*", min(len(value)-4, 12))
}

func init() {
	tokenCmd.AddCommand(tokenSetCmd)
	tokenCmd.AddCommand(tokenStatusCmd)
}
