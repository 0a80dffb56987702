package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/ruminaider/mcp-roster/internal/credentials"
	"github.com/ruminaider/mcp-roster/internal/mcpjson"
	"github.com/ruminaider/mcp-roster/internal/notify"
	"github.com/ruminaider/mcp-roster/internal/remote"
	"github.com/ruminaider/mcp-roster/internal/servers"
	"github.com/ruminaider/mcp-roster/internal/sync"
)

// maxRejectedTokens bounds how many times a rejected token is re-prompted.
const maxRejectedTokens = 3

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull new servers from the sync provider",
	Long: "Fetch the provider's server list and append every server not already in the " +
		"collection. Prompts for a token when none is stored.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			ctx := cmd.Context()
			rep, err := a.orch.Request(ctx)
			if err != nil {
				return keepApplied(a, rep, err)
			}

			rejectedTokens := 0
			for rep.Status == sync.StatusNeedsToken || rep.Status == sync.StatusUnauthorized {
				if rep.Status == sync.StatusUnauthorized {
					printNotice(a.board)
					rejectedTokens++
				}
				if !term.IsTerminal(os.Stdin.Fd()) || rejectedTokens >= maxRejectedTokens {
					a.orch.CancelPrompt()
					return fmt.Errorf("no usable sync token: set %s or run 'mcp-roster token set'", credentials.TokenEnv)
				}

				token, err := promptToken("Sync token for " + a.client.Provider())
				if errors.Is(err, huh.ErrUserAborted) {
					a.orch.CancelPrompt()
					fmt.Println("Sync cancelled.")
					return nil
				}
				if err != nil {
					return err
				}
				if rep, err = a.orch.Submit(ctx, token); err != nil {
					return keepApplied(a, rep, err)
				}
			}

			printNotice(a.board)
			printReport(rep)
			if len(rep.Added) == 0 {
				return nil
			}
			return a.save()
		})
	},
}

// keepApplied saves the servers a failed sync added before it stopped.
func keepApplied(a *app, rep sync.Report, err error) error {
	if len(rep.Added) == 0 {
		return err
	}
	return errors.Join(err, a.save())
}

// printNotice writes the latest sync notice with a level marker.
func printNotice(b *notify.Board) {
	n, ok := b.Get(sync.NotificationKey)
	if !ok {
		return
	}
	marker := "ℹ"
	switch n.Level {
	case notify.LevelSuccess:
		marker = "✓"
	case notify.LevelError:
		marker = "✗"
	}
	fmt.Printf("%s %s\n", marker, n.Message)
}

func printReport(rep sync.Report) {
	for _, e := range rep.Added {
		fmt.Printf("  + %s\n", e.Name)
	}
	if len(rep.Rejected) > 0 {
		fmt.Printf("\nSkipped %d malformed provider item(s):\n", len(rep.Rejected))
		for _, r := range rep.Rejected {
			name := r.Name
			if name == "" {
				name = fmt.Sprintf("#%d", r.Index)
			}
			fmt.Printf("  - %s: %s\n", name, r.Reason)
		}
	}

	secrets := mcpjson.DetectSecrets(asCandidates(rep.Added))
	if len(secrets) > 0 {
		fmt.Printf("\n%d env value(s) on new servers look like credentials:\n", len(secrets))
		for _, s := range secrets {
			fmt.Printf("  - %s.env.%s = %s (%s)\n", s.Server, s.EnvKey, maskSecret(s.Value), s.Reason)
		}
	}
}

func asCandidates(entries []servers.Entry) []remote.Candidate {
	out := make([]remote.Candidate, len(entries))
	for i, e := range entries {
		out[i] = remote.Candidate{Name: e.Name, Env: e.Env}
	}
	return out
}
