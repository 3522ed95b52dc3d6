package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"agent-chat/internal/app"
	"agent-chat/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

func newApplication(cmd *cobra.Command) (*app.Application, error) {
	cfg, err := app.LoadConfig(app.DefaultConfigPath())
	if err != nil {
		return nil, err
	}
	mock, _ := cmd.Flags().GetBool("mock")
	ephemeral, _ := cmd.Flags().GetBool("ephemeral")
	if cfg.APIKey == "" {
		// No key, no remote calls: fall back to the mock collaborators.
		mock = true
	}
	return app.NewApplication(cfg, app.Options{Mock: mock, Ephemeral: ephemeral})
}

func main() {
	root := &cobra.Command{
		Use:     "agentchat",
		Short:   "Chat with AI agents from your terminal",
		Long:    "agentchat keeps multi-turn conversations with AI assistant personas, persists the in-progress session per agent, and archives finished conversations into a local history.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApplication(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			name, _ := cmd.Flags().GetString("agent")
			if name == "" {
				name = application.Config.DefaultAgent
			}
			agent, err := application.Agents.FindAgent(ctx, name)
			if err != nil {
				return err
			}

			model, err := tui.New(application, agent)
			if err != nil {
				return err
			}
			p := tea.NewProgram(model, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return err
			}
			return nil
		},
	}
	root.PersistentFlags().Bool("mock", false, "Use canned responses instead of the chat API")
	root.PersistentFlags().Bool("ephemeral", false, "Keep all state in memory, nothing on disk")
	root.Flags().String("agent", "", "Agent persona to chat with")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List saved conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApplication(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if id, _ := cmd.Flags().GetString("delete"); id != "" {
				if err := application.History.DeleteOne(ctx, id); err != nil {
					return err
				}
				fmt.Println("Deleted.")
				return nil
			}
			if clear, _ := cmd.Flags().GetBool("clear"); clear {
				if err := application.History.DeleteAll(ctx); err != nil {
					return err
				}
				fmt.Println("History cleared.")
				return nil
			}

			entries, err := application.History.List(ctx)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No saved chats yet.")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tAGENT\tCREATED\tPREVIEW")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, e.AgentName, e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Preview())
			}
			return w.Flush()
		},
	}
	historyCmd.Flags().String("delete", "", "Delete the conversation with this id")
	historyCmd.Flags().Bool("clear", false, "Delete all saved conversations")
	root.AddCommand(historyCmd)

	agentsCmd := &cobra.Command{
		Use:   "agents",
		Short: "List available agent personas",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApplication(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			user, err := application.Agents.List(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tEMOJI\tKIND\tID")
			for _, a := range app.FeaturedAgents {
				fmt.Fprintf(w, "%s\t%s\tfeatured\t%s\n", a.Name, a.Emoji, a.ID)
			}
			for _, a := range user {
				fmt.Fprintf(w, "%s\t%s\tcustom\t%s\n", a.Name, a.Emoji, a.ID)
			}
			return w.Flush()
		},
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a custom agent persona",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApplication(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			name, _ := cmd.Flags().GetString("name")
			emoji, _ := cmd.Flags().GetString("emoji")
			prompt, _ := cmd.Flags().GetString("prompt")
			agent, err := application.Agents.Create(ctx, name, emoji, prompt)
			if err != nil {
				return err
			}
			fmt.Printf("Created agent %s (%s)\n", agent.Name, agent.ID)
			return nil
		},
	}
	createCmd.Flags().String("name", "", "Agent name (also its session identity)")
	createCmd.Flags().String("emoji", "🤖", "Agent emoji")
	createCmd.Flags().String("prompt", "", "Instruction prompt seeded as the system message")
	_ = createCmd.MarkFlagRequired("name")
	_ = createCmd.MarkFlagRequired("prompt")
	agentsCmd.AddCommand(createCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a custom agent persona",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApplication(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := application.Agents.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println("Deleted.")
			return nil
		},
	}
	agentsCmd.AddCommand(deleteCmd)
	root.AddCommand(agentsCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
