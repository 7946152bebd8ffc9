package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"craftfolio.dev/internal/services"
)

// MessagesCmd returns the messages subcommand
func MessagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Print contact messages, newest first",
		RunE:  runMessages,
	}

	cmd.Flags().Int("limit", 20, "Maximum number of messages to print")
	cmd.Flags().Bool("json", false, "Output in JSON format")

	return cmd
}

func runMessages(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			slog.Error("Error closing store", "error", err)
		}
	}()

	msgs, err := services.NewContactService(s).List(ctx, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(msgs)
	}

	if len(msgs) == 0 {
		fmt.Fprintln(out, "No messages")
		return nil
	}
	for _, m := range msgs {
		fmt.Fprintf(out, "[%s] %s <%s>\n  %s\n", m.CreatedAt.Local().Format("2006-01-02 15:04"), m.Name, m.Email, m.Message)
	}
	return nil
}
