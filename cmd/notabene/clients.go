package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/notabene-app/notabene/internal/cli"
	"github.com/notabene-app/notabene/internal/model"
	"github.com/spf13/cobra"
)

func clientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Manage the client directory",
		Long: `Manage the clients and projects meetings are filed under.

Client domains and keywords drive classification directly: a meeting
with an attendee from a client's domain is filed under that client.`,
	}

	cmd.AddCommand(clientsListCmd())
	cmd.AddCommand(clientsAddCmd())
	cmd.AddCommand(clientsAddProjectCmd())

	return cmd
}

func clientsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active clients and their projects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			clients, err := store.ListActiveClients(ctx)
			if err != nil {
				return fmt.Errorf("failed to list clients: %w", err)
			}
			if len(clients) == 0 {
				fmt.Println(cli.FormatInfo("No active clients."))
				return nil
			}
			projects, err := store.ListActiveProjects(ctx)
			if err != nil {
				return fmt.Errorf("failed to list projects: %w", err)
			}

			for _, c := range clients {
				fmt.Println(cli.BoldStyle.Render(fmt.Sprintf("[%d] %s", c.ID, c.Name)))
				if len(c.Domains) > 0 {
					fmt.Printf("    domains:  %s\n", strings.Join(c.Domains, ", "))
				}
				if len(c.Keywords) > 0 {
					fmt.Printf("    keywords: %s\n", strings.Join(c.Keywords, ", "))
				}
				for _, p := range projects {
					if p.ClientID == c.ID {
						fmt.Printf("    %s [%d] %s (%d team members)\n", cli.FolderIcon, p.ID, p.Name, len(p.Team))
					}
				}
			}
			return nil
		},
	}
}

func clientsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a client",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			name, _ := cmd.Flags().GetString("name")
			domains, _ := cmd.Flags().GetString("domains")
			keywords, _ := cmd.Flags().GetString("keywords")

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			client := model.Client{
				Name:     name,
				Domains:  splitList(domains),
				Keywords: splitList(keywords),
				IsActive: true,
			}
			if err := store.CreateClient(ctx, &client); err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created client %d: %s", client.ID, client.Name)))
			return nil
		},
	}

	cmd.Flags().String("name", "", "Client name (required)")
	cmd.Flags().String("domains", "", "Comma-separated email domains")
	cmd.Flags().String("keywords", "", "Comma-separated title/description keywords")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func clientsAddProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-project",
		Short: "Add a project to a client",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			clientArg, _ := cmd.Flags().GetString("client")
			name, _ := cmd.Flags().GetString("name")
			keywords, _ := cmd.Flags().GetString("keywords")
			team, _ := cmd.Flags().GetString("team")

			clientID, err := strconv.ParseInt(clientArg, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid client ID %q", clientArg)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			// Fail early with a clear message if the client is unknown.
			client, err := store.GetClient(ctx, clientID)
			if err != nil {
				return fmt.Errorf("failed to load client %d: %w", clientID, err)
			}

			project := model.Project{
				ClientID: client.ID,
				Name:     name,
				Status:   model.ProjectActive,
				Keywords: splitList(keywords),
			}
			for _, email := range splitList(team) {
				project.Team = append(project.Team, model.ProjectMember{Email: email})
			}

			if err := store.CreateProject(ctx, &project); err != nil {
				return fmt.Errorf("failed to create project: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created project %d: %s / %s", project.ID, client.Name, project.Name)))
			return nil
		},
	}

	cmd.Flags().String("client", "", "Client ID (required)")
	cmd.Flags().String("name", "", "Project name (required)")
	cmd.Flags().String("keywords", "", "Comma-separated keywords")
	cmd.Flags().String("team", "", "Comma-separated team member emails")
	_ = cmd.MarkFlagRequired("client")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
