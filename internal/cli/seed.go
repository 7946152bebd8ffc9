package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"craftfolio.dev/internal/models"
	"craftfolio.dev/internal/services"
)

// SeedFile is the JSON document accepted by the seed command
type SeedFile struct {
	About    *models.About         `json:"about"`
	Projects []models.ProjectInput `json:"projects"`
}

// SeedCmd returns the seed subcommand
func SeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <file.json>",
		Short: "Load the about profile and projects from a JSON file",
		Long: `Load content from a JSON file of the form

  {"about": {"name": "...", "description": "...", "skills": ["Go"]},
   "projects": [{"title": "...", "description": "...", "link": "https://...",
                 "thumbnail": "/uploads/x.png", "category": "Backend"}]}

Every record goes through the same validation as the API. Projects whose title
already exists are skipped, so seeding twice is harmless.`,
		Args: cobra.ExactArgs(1),
		RunE: runSeed,
	}
	return cmd
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}
	var seed SeedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

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

	if seed.About != nil {
		if _, err := services.NewAboutService(s).Save(ctx, *seed.About); err != nil {
			return fmt.Errorf("about: %w", err)
		}
		fmt.Fprintf(out, "Saved about profile for %s\n", seed.About.Name)
	}

	projects := services.NewProjectService(s)
	existing, err := projects.ListAll(ctx)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[p.Title] = true
	}

	created, skipped := 0, 0
	for i, in := range seed.Projects {
		if seen[in.Title] {
			skipped++
			continue
		}
		p, err := projects.Create(ctx, in)
		if err != nil {
			return fmt.Errorf("project %d (%q): %w", i+1, in.Title, err)
		}
		seen[p.Title] = true
		created++
	}

	fmt.Fprintf(out, "Created %d projects, skipped %d existing\n", created, skipped)
	return nil
}
