package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"cherryblossom/internal/collect"
	"cherryblossom/internal/config"
	"cherryblossom/internal/dashboard"
	"cherryblossom/internal/platform/crypto"
	"cherryblossom/internal/platform/timingsite"
	"cherryblossom/internal/results"
	"cherryblossom/internal/transform"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// app holds what the database backed commands share.
type app struct {
	cfg         config.Config
	pool        *pgxpool.Pool
	collector   *collect.Service
	transformer *transform.Service
	dashboard   *dashboard.Service
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	resultsRepo := results.NewPostgresRepo(pool, cfg.DBTimeout)
	collectRepo := collect.NewPostgresRepo(pool)
	site := timingsite.NewClient(cfg.SiteBaseURL, cfg.SiteUserAgent, cfg.SiteRPS, cfg.SiteMaxRetries)

	return &app{
		cfg:  cfg,
		pool: pool,
		collector: collect.NewService(site, collectRepo, collect.Config{
			Years:       cfg.Years,
			MaxPages:    cfg.CollectMaxPages,
			FlushEvery:  cfg.CollectFlush,
			Concurrency: cfg.CollectWorkers,
		}),
		transformer: transform.NewService(collectRepo, resultsRepo, transform.Config{
			Years:   cfg.Years,
			Options: transform.Options{MinFinish: cfg.MinFinish(), MaxFinish: cfg.MaxFinish()},
		}),
		dashboard: dashboard.NewService(resultsRepo),
	}, nil
}

func (a *app) close() {
	a.pool.Close()
}

// withApp runs fn against a freshly opened app and closes it afterwards.
func withApp(fn func(cmd *cobra.Command, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd, a)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "pipeline",
		Short:        "Collect, clean and inspect Cherry Blossom 10 Mile results",
		SilenceUsage: true,
	}
	root.AddCommand(
		newCollectCmd(),
		newTransformCmd(),
		newRunCmd(),
		newSummaryCmd(),
		newTokenCmd(),
	)
	return root
}

func newCollectCmd() *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Scrape raw results for one or every configured year",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app) error {
			return runCollect(cmd.Context(), a, year)
		}),
	}
	cmd.Flags().IntVar(&year, "year", 0, "race year (default: every configured year)")
	return cmd
}

func newTransformCmd() *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Clean the latest collection and publish a dataset version",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app) error {
			return runTransform(cmd.Context(), cmd.OutOrStdout(), a, year)
		}),
	}
	cmd.Flags().IntVar(&year, "year", 0, "race year (default: every configured year)")
	return cmd
}

func newRunCmd() *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Collect then transform",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app) error {
			if err := runCollect(cmd.Context(), a, year); err != nil {
				return err
			}
			return runTransform(cmd.Context(), cmd.OutOrStdout(), a, year)
		}),
	}
	cmd.Flags().IntVar(&year, "year", 0, "race year (default: every configured year)")
	return cmd
}

func newSummaryCmd() *cobra.Command {
	var years []int
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print summary statistics of the published datasets as JSON",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app) error {
			summary, err := a.dashboard.Summary(cmd.Context(), dashboard.Filter{Years: years})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), summary)
		}),
	}
	cmd.Flags().IntSliceVar(&years, "year", nil, "race years to include (default: all)")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an operator token for the job endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			token, jti, err := crypto.GenerateToken(cfg.AdminJWTSecret, subject, crypto.RoleAdmin, ttl)
			if err != nil {
				return err
			}
			log.Printf("token minted subject=%s jti=%s ttl=%s", subject, jti, ttl)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "operator", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}

func runCollect(ctx context.Context, a *app, year int) error {
	if year == 0 {
		return a.collector.Run(ctx)
	}
	run, err := a.collector.CollectYear(ctx, year)
	if err != nil {
		return err
	}
	log.Printf("collect done year=%d run_id=%s pages=%d rows=%d", year, run.ID, run.PagesFetched, run.RowsSaved)
	return nil
}

func runTransform(ctx context.Context, out io.Writer, a *app, year int) error {
	if year == 0 {
		reports, err := a.transformer.TransformAll(ctx)
		if werr := writeJSON(out, reports); werr != nil {
			return errors.Join(err, werr)
		}
		return err
	}
	report, err := a.transformer.Transform(ctx, year)
	if report != nil {
		if werr := writeJSON(out, report); werr != nil {
			return errors.Join(err, werr)
		}
	}
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
