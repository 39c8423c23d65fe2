package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"alignbench/adapters/excel"
	"alignbench/domain/run"
	"alignbench/domain/scoring"
	"alignbench/internal/container"
	"alignbench/internal/errors"
	"alignbench/internal/report"
	"alignbench/internal/testkit"
)

// scoreOptions are the flags shared by score and demo
type scoreOptions struct {
	format     string
	output     string
	iterations int
	seed       int64
	workers    int
	persist    bool
}

func (o *scoreOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "format", "f", "json", "Output format: json, markdown or html")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Write output to a file instead of stdout")
	cmd.Flags().IntVar(&o.iterations, "bootstrap", -1, "Bootstrap iterations for standard errors (default ALIGN_BOOTSTRAP_ITERATIONS)")
	cmd.Flags().Int64Var(&o.seed, "seed", -1, "Bootstrap seed (default ALIGN_BOOTSTRAP_SEED)")
	cmd.Flags().IntVar(&o.workers, "workers", 0, "Bootstrap workers (default ALIGN_WORKERS)")
	cmd.Flags().BoolVar(&o.persist, "persist", false, "Save the run to DATABASE_URL")
}

func newScoreCmd() *cobra.Command {
	opts := &scoreOptions{}
	cmd := &cobra.Command{
		Use:   "score <file>",
		Short: "Score a benchmark file (.xlsx, .csv or .json)",
		Long: `Score a benchmark file of paired human and agent test statistics.

Example: alignbench score results.xlsx --format markdown --bootstrap 500`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := excel.NewDataReader(args[0]).ReadDataset()
			if err != nil {
				return err
			}
			return runScore(cmd.Context(), cmd.OutOrStdout(), ds, opts)
		},
	}
	opts.register(cmd)
	return cmd
}

func newDemoCmd() *cobra.Command {
	opts := &scoreOptions{}
	gen := testkit.DefaultBenchmarkConfig()
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Score a synthetic benchmark with a configurable agent bias",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := testkit.NewBenchmarkGenerator(gen).Generate()
			if err != nil {
				return err
			}
			return runScore(cmd.Context(), cmd.OutOrStdout(), ds, opts)
		},
	}
	opts.register(cmd)
	cmd.Flags().IntVar(&gen.Studies, "studies", gen.Studies, "Number of synthetic studies")
	cmd.Flags().Float64Var(&gen.Exaggeration, "exaggeration", gen.Exaggeration, "Agent effect multiplier")
	cmd.Flags().Float64Var(&gen.Shift, "shift", gen.Shift, "Agent effect shift in d units")
	cmd.Flags().Float64Var(&gen.Noise, "noise", gen.Noise, "Agent effect noise SD")
	cmd.Flags().Float64Var(&gen.MissingRate, "missing-rate", gen.MissingRate, "Share of tests with a missing agent statistic")
	cmd.Flags().Int64Var(&gen.Seed, "data-seed", gen.Seed, "Seed of the synthetic data")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the score-run tables in DATABASE_URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.Database.Enabled() {
				return errors.ConfigInvalid("DATABASE_URL is required")
			}
			c, err := container.New(cfg)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			if err := c.Connect(ctx); err != nil {
				return err
			}
			defer c.Shutdown(context.Background())
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func runScore(ctx context.Context, stdout io.Writer, ds scoring.Dataset, opts *scoreOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.iterations >= 0 {
		cfg.Bootstrap.Iterations = opts.iterations
	}
	if opts.seed >= 0 {
		cfg.Bootstrap.Seed = opts.seed
	}
	if opts.workers > 0 {
		cfg.Bootstrap.Workers = opts.workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	c, err := container.New(cfg)
	if err != nil {
		return err
	}
	if opts.persist {
		if err := c.Connect(ctx); err != nil {
			return err
		}
		defer c.Shutdown(context.Background())
	}

	sr, err := c.Scoring.Score(ctx, ds, opts.persist)
	if err != nil {
		return err
	}

	out := stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	return render(out, sr, opts.format)
}

func render(w io.Writer, sr *run.ScoreRun, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sr)
	case "markdown", "md":
		_, err := io.WriteString(w, report.Markdown(sr.Result))
		return err
	case "html":
		_, err := w.Write(report.HTML(sr.Result))
		return err
	}
	return errors.InvalidInput(fmt.Sprintf("unknown format %q", format))
}
