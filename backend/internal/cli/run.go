package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tgosint/backend/internal/app"
	"tgosint/backend/internal/archive"
	"tgosint/backend/internal/interactions"
	"tgosint/backend/internal/render"
	"tgosint/backend/pkg/config"
	"tgosint/backend/pkg/logger"
)

// RunSubjects prints every subject folder name
func RunSubjects(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	subjects, err := archive.ListSubjects(cfg.DataDir)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(subjects) == 0 {
		fmt.Fprintf(out, "No subjects in %s\n", cfg.DataDir)
		return nil
	}
	for _, name := range subjects {
		fmt.Fprintln(out, name)
	}
	return nil
}

// RunMentions analyses mentions for one subject and prints the top rows
func RunMentions(cmd *cobra.Command, args []string) error {
	return withSubject(cmd, args[0], func(ctx context.Context, a *app.App, folder string) error {
		report, err := a.Analyzer.AnalyzeMentions(ctx, folder)
		if err != nil {
			return err
		}
		return printMentions(cmd, report)
	})
}

// RunReplies analyses the reply graph for one subject and prints the top pairs
func RunReplies(cmd *cobra.Command, args []string) error {
	return withSubject(cmd, args[0], func(ctx context.Context, a *app.App, folder string) error {
		report, err := a.Analyzer.AnalyzeReplies(ctx, folder)
		if err != nil {
			return err
		}
		return printReplies(cmd, report)
	})
}

// RunActivity prints the activity histograms for one subject
func RunActivity(cmd *cobra.Command, args []string) error {
	return withSubject(cmd, args[0], func(ctx context.Context, a *app.App, folder string) error {
		report, err := a.Analyzer.AnalyzeActivity(ctx, folder)
		if err != nil {
			return err
		}
		return render.PrintActivity(cmd.OutOrStdout(), report.Histogram)
	})
}

// RunAnalyze runs every analysis for one subject
func RunAnalyze(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to read --json flag: %w", err)
	}
	return withSubject(cmd, args[0], func(ctx context.Context, a *app.App, folder string) error {
		report, err := a.Analyzer.Analyze(ctx, folder)
		if err != nil {
			return err
		}
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		if err := printMentions(cmd, report.Mentions); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout())
		if err := printReplies(cmd, report.Replies); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return render.PrintActivity(cmd.OutOrStdout(), report.Activity.Histogram)
	})
}

func printMentions(cmd *cobra.Command, report *interactions.MentionReport) error {
	out := cmd.OutOrStdout()
	if err := render.PrintMentions(out, interactions.MentionRows(report.Top), 0); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "Saved %d mentions to %s\n", len(report.All), report.OutputPath)
	return err
}

func printReplies(cmd *cobra.Command, report *interactions.ReplyReport) error {
	out := cmd.OutOrStdout()
	if report.Scoped {
		fmt.Fprintf(out, "Subject: %s\n", report.SubjectLabel)
	}
	if err := render.PrintReplies(out, interactions.ReplyRows(report.Top), 0); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "Saved %d reply pairs to %s\n", len(report.All), report.OutputPath)
	return err
}

// withSubject loads configuration, builds the pipeline and resolves the subject folder
func withSubject(cmd *cobra.Command, name string, run func(ctx context.Context, a *app.App, folder string) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Env); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()
	log := logger.Get()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a := app.New(ctx, cfg, log)
	defer a.Close(ctx)

	folder, err := a.SubjectFolder(name)
	if err != nil {
		return err
	}
	if info, err := os.Stat(folder); err != nil || !info.IsDir() {
		return fmt.Errorf("subject %q not found in %s", name, cfg.DataDir)
	}

	log.Debug("Analysing subject", zap.String("subject", name), zap.String("folder", folder))
	return run(ctx, a, folder)
}

// loadConfig reads the environment and applies command-line overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	dataDir, err := cmd.Flags().GetString("data-dir")
	if err != nil {
		return nil, fmt.Errorf("failed to read --data-dir flag: %w", err)
	}
	if dataDir = strings.TrimSpace(dataDir); dataDir != "" {
		cfg.DataDir = dataDir
	}

	top, err := cmd.Flags().GetInt("top")
	if err != nil {
		return nil, fmt.Errorf("failed to read --top flag: %w", err)
	}
	if top < 0 {
		return nil, fmt.Errorf("--top must not be negative")
	}
	if top > 0 {
		cfg.TopMentions = top
		cfg.TopReplies = top
	}
	return cfg, nil
}
