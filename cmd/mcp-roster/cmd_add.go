package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/ruminaider/mcp-roster/internal/merge"
	"github.com/ruminaider/mcp-roster/internal/servers"
)

var (
	addName        string
	addDescription string
	addType        string
	addURL         string
	addCommand     string
	addArgs        []string
	addEnv         map[string]string
	addTags        []string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a server to the end of the collection",
	Long: "Add a server by flags, or interactively when --name is omitted on a terminal.\n" +
		"Either --url (remote) or --command (local) is required.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e := servers.Entry{
			Name:        addName,
			Description: addDescription,
			Type:        addType,
			BaseURL:     addURL,
			Command:     addCommand,
			Args:        addArgs,
			Env:         addEnv,
			Tags:        addTags,
		}
		if e.Name == "" {
			if !term.IsTerminal(os.Stdin.Fd()) {
				return fmt.Errorf("--name is required")
			}
			if err := runAddForm(&e); err != nil {
				return err
			}
		}
		if err := validateEntry(e); err != nil {
			return err
		}

		return withApp(func(a *app) error {
			key := merge.Key(e)
			for _, existing := range a.manager.Entries() {
				if merge.Key(existing) == key {
					fmt.Printf("Note: %q looks like the existing server %q.\n", e.Name, existing.Name)
					break
				}
			}

			stored, err := a.manager.Add(e)
			if err != nil {
				return err
			}
			if err := a.save(); err != nil {
				return err
			}
			fmt.Printf("Added %s at position %d\n", stored.Name, a.manager.Len())
			return nil
		})
	},
}

// runAddForm asks for the fields a server needs.
func runAddForm(e *servers.Entry) error {
	var endpoint string
	typ := servers.TypeStdio
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Server name").
				Value(&e.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Description").
				Value(&e.Description),
			huh.NewSelect[string]().
				Title("Transport").
				Options(
					huh.NewOption("Local command (stdio)", servers.TypeStdio),
					huh.NewOption("Streamable HTTP", servers.TypeStreamableHTTP),
					huh.NewOption("Server-sent events", servers.TypeSSE),
				).
				Value(&typ),
		),
		huh.NewGroup(
			huh.NewInput().
				TitleFunc(func() string {
					if typ == servers.TypeStdio {
						return "Command line"
					}
					return "Server URL"
				}, &typ).
				Value(&endpoint).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("required")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	e.Name = strings.TrimSpace(e.Name)
	e.Type = typ
	if typ == servers.TypeStdio {
		fields := strings.Fields(endpoint)
		e.Command, e.Args = fields[0], fields[1:]
	} else {
		e.BaseURL = strings.TrimSpace(endpoint)
	}
	return nil
}

func validateEntry(e servers.Entry) error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if e.BaseURL == "" && e.Command == "" {
		return fmt.Errorf("either --url or --command is required")
	}
	if e.BaseURL != "" && e.Command != "" {
		return fmt.Errorf("--url and --command are mutually exclusive")
	}
	if e.BaseURL != "" {
		u, err := url.Parse(e.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid url %q", e.BaseURL)
		}
	}
	switch e.Type {
	case "", servers.TypeStdio, servers.TypeSSE, servers.TypeStreamableHTTP:
		return nil
	}
	return fmt.Errorf("unknown transport type %q", e.Type)
}

func init() {
	addCmd.Flags().StringVar(&addName, "name", "", "Server name")
	addCmd.Flags().StringVar(&addDescription, "description", "", "Short description")
	addCmd.Flags().StringVar(&addType, "type", "", "Transport: stdio, sse or streamableHttp (inferred when omitted)")
	addCmd.Flags().StringVar(&addURL, "url", "", "Remote server URL")
	addCmd.Flags().StringVar(&addCommand, "command", "", "Local command to run")
	addCmd.Flags().StringSliceVar(&addArgs, "arg", nil, "Command argument (repeatable)")
	addCmd.Flags().StringToStringVar(&addEnv, "env", nil, "Environment variable KEY=VALUE (repeatable)")
	addCmd.Flags().StringSliceVar(&addTags, "tag", nil, "Tag (repeatable)")
}
