package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"NewsRadar/internal/app"
	"NewsRadar/internal/config"
	"NewsRadar/internal/domain"
	"NewsRadar/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "newsradar",
		Short:         "Polls Kazakh news sites, filters by keyword relevance, and stores articles for moderation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newFetchCmd(),
		newFetchSourceCmd(),
		newPendingCmd(),
		newApproveCmd(),
		newRejectCmd(),
		newStatsCmd(),
		newExportCmd(),
		newScheduleCmd(),
	)
	return root
}

// withApp builds the application for one command invocation and tears it
// down afterwards.
func withApp(ctx context.Context, fn func(ctx context.Context, a *app.Application) error) error {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	return fn(ctx, application)
}

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetch from all configured sources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
				summary, err := a.FetchAll(ctx)
				printSummary(summary)
				return err
			})
		},
	}
}

func newFetchSourceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch-source NAME",
		Short: "Fetch from a single source by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
				summary, err := a.FetchSource(ctx, args[0])
				printSummary(summary)
				return err
			})
		},
	}
}

func newPendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List articles awaiting moderation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(_ context.Context, a *app.Application) error {
				pending := a.Pending()
				fmt.Printf("Pending articles (%d):\n", len(pending))
				for _, article := range pending {
					fmt.Printf("  [%d] %s\n", article.ID, truncate(article.Title, 70))
					fmt.Printf("      source=%s category=%s keywords=%d\n",
						article.Source, article.Category, article.KeywordCount)
				}
				return nil
			})
		},
	}
}

func newApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve ID",
		Short: "Approve a pending article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid article id %q", args[0])
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
				if err := a.Approve(ctx, id); err != nil {
					return err
				}
				fmt.Printf("article %d approved\n", id)
				return nil
			})
		},
	}
}

func newRejectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reject ID",
		Short: "Reject a pending article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid article id %q", args[0])
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
				if err := a.Reject(ctx, id); err != nil {
					return err
				}
				fmt.Printf("article %d rejected\n", id)
				return nil
			})
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show storage statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(_ context.Context, a *app.Application) error {
				stats := a.Stats()
				fmt.Printf("total=%d pending=%d approved=%d rejected=%d seen_urls=%d\n",
					stats.Total, stats.Pending, stats.Approved, stats.Rejected, stats.Seen)
				return nil
			})
		},
	}
}

func newExportCmd() *cobra.Command {
	var (
		state string
		out   string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export articles as JSON (approved by default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(_ context.Context, a *app.Application) error {
				articles := a.Export(domain.ReviewState(state))
				raw, err := json.MarshalIndent(articles, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal export: %w", err)
				}

				if out == "" {
					fmt.Println(string(raw))
					return nil
				}
				if err := os.WriteFile(out, raw, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				fmt.Printf("exported %d articles to %s\n", len(articles), out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&state, "state", string(domain.ReviewApproved), "review state to export (empty for all)")
	cmd.Flags().StringVar(&out, "out", "", "output file (stdout when empty)")
	return cmd
}

func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run periodic fetches until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return withApp(ctx, func(ctx context.Context, a *app.Application) error {
				return a.RunSchedule(ctx)
			})
		},
	}
}

func printSummary(s domain.Summary) {
	fmt.Printf("fetched=%d extracted=%d classified=%d inserted=%d duplicates=%d errors=%d\n",
		s.Fetched, s.Extracted, s.Classified, s.Inserted, s.Duplicates, s.Errors)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
