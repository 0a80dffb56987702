package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/ruminaider/mcp-roster/internal/mcpjson"
	"github.com/ruminaider/mcp-roster/internal/merge"
	"github.com/ruminaider/mcp-roster/internal/remote"
)

var (
	importRedact bool
	importPick   bool
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import servers from an .mcp.json file",
	Long: "Read an .mcp.json file and append every server not already in the collection, " +
		"using the same equivalence rules as sync.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configs, err := mcpjson.Read(args[0])
		if err != nil {
			return err
		}
		candidates, rejected := mcpjson.Candidates(configs)
		for _, r := range rejected {
			fmt.Printf("Skipping %s: %s\n", r.Name, r.Reason)
		}
		if len(candidates) == 0 {
			return fmt.Errorf("no usable MCP servers found in %s", args[0])
		}
		fmt.Printf("Found %d MCP server(s) in %s\n", len(candidates), args[0])

		interactive := term.IsTerminal(os.Stdin.Fd())

		secrets := mcpjson.DetectSecrets(candidates)
		if len(secrets) > 0 {
			fmt.Printf("\nDetected %d secret(s):\n", len(secrets))
			for _, s := range secrets {
				fmt.Printf("  - %s.env.%s = %s (%s)\n", s.Server, s.EnvKey, maskSecret(s.Value), s.Reason)
			}
			fmt.Println()

			redact := importRedact
			if !redact && interactive {
				err := huh.NewForm(
					huh.NewGroup(
						huh.NewConfirm().
							Title("Replace detected secrets with ${ENV_VAR} references?").
							Description("Keeps literal credentials out of servers.yaml").
							Value(&redact),
					),
				).Run()
				if err != nil {
					return err
				}
			}
			if redact {
				candidates = mcpjson.ReplaceSecrets(candidates, secrets)
				fmt.Printf("Replaced %d secret(s) with env var references.\n", len(secrets))
			}
		}

		if importPick && interactive && len(candidates) > 1 {
			candidates, err = pickCandidates(candidates)
			if err != nil {
				return err
			}
			if len(candidates) == 0 {
				fmt.Println("No servers selected. Nothing to import.")
				return nil
			}
		}

		return withApp(func(a *app) error {
			out := merge.Merge(candidates, a.manager.Entries())
			for _, e := range out.Added {
				if _, err := a.manager.Add(e); err != nil {
					return err
				}
				fmt.Printf("  + %s\n", e.Name)
			}
			fmt.Println(out.Message)
			if len(out.Added) == 0 {
				return nil
			}
			if err := a.manager.SetSelected(out.Added[0].ID); err != nil {
				return err
			}
			return a.save()
		})
	},
}

func pickCandidates(candidates []remote.Candidate) ([]remote.Candidate, error) {
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}
	selected, err := runPicker("Select MCP servers to import:", names)
	if err != nil {
		return nil, err
	}
	keep := make(map[string]bool, len(selected))
	for _, name := range selected {
		keep[name] = true
	}
	var out []remote.Candidate
	for _, c := range candidates {
		if keep[c.Name] {
			out = append(out, c)
		}
	}
	return out, nil
}

func init() {
	importCmd.Flags().BoolVar(&importRedact, "redact", false, "Replace detected secrets with ${ENV_VAR} references without asking")
	importCmd.Flags().BoolVar(&importPick, "pick", false, "Choose which servers to import")
}
