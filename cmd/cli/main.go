package main

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"clustereval/adapters/postgres"
	"clustereval/adapters/results"
	"clustereval/adapters/spreadsheet"
	"clustereval/app"
	"clustereval/internal"
	"clustereval/internal/config"
	"clustereval/ports"
	"clustereval/ui"
)

func main() {
	// .env is optional; environment variables win.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "clustereval",
		Short: "Score a sample clustering against known phenotype traits",
	}
	rootCmd.AddCommand(newEvaluateCmd(), newServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newEvaluateCmd() *cobra.Command {
	var phenotypePath, clusterPath, resultsDir string
	var threshold int

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run one evaluation and write the result table",
		Long: `Run the trait-by-trait association tests between a phenotype table and a
sample-to-cluster mapping. Flags fall back to PHENOTYPE_DATA_PATH,
CLUSTER_MAPPING_PATH, THRESHOLD, and RESULTS_DIR.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if phenotypePath == "" {
				phenotypePath = cfg.Evaluation.PhenotypePath
			}
			if clusterPath == "" {
				clusterPath = cfg.Evaluation.ClusterPath
			}
			if threshold == 0 {
				threshold = cfg.Evaluation.Threshold
			}
			if resultsDir == "" {
				resultsDir = cfg.Evaluation.ResultsDir
			}

			service, _, err := buildService(cfg)
			if err != nil {
				return err
			}
			record, err := service.Run(cmd.Context(), app.RunRequest{
				PhenotypePath: phenotypePath,
				ClusterPath:   clusterPath,
				Threshold:     threshold,
				ResultsDir:    resultsDir,
			})
			if err != nil {
				return err
			}

			fmt.Printf("run %s: %d traits evaluated\n", record.ID, len(record.Rows))
			fmt.Printf("results: %s\n", record.ResultPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&phenotypePath, "phenotypes", "", "phenotype table (tsv, csv, or xlsx)")
	cmd.Flags().StringVar(&clusterPath, "clusters", "", "sample-to-cluster mapping (tsv)")
	cmd.Flags().IntVar(&threshold, "threshold", 0, "max distinct values for a categorical trait")
	cmd.Flags().StringVar(&resultsDir, "results-dir", "", "directory for result files")
	return cmd
}

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve evaluations and run history over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port == "" {
				port = cfg.Server.Port
			}

			service, repository, err := buildService(cfg)
			if err != nil {
				return err
			}
			server := ui.NewServer(service, repository, cfg.Evaluation.ResultsDir, internal.DefaultLogger)
			return server.ListenAndServe(port)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port")
	return cmd
}

func buildService(cfg *config.Config) (*app.EvaluationService, ports.RunRepository, error) {
	logger := internal.DefaultLogger
	reader := spreadsheet.NewReader(logger)

	var repository ports.RunRepository
	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		repository, err = postgres.NewRunRepository(db)
		if err != nil {
			return nil, nil, err
		}
	}

	service := app.NewEvaluationService(reader, reader, results.NewWriter(), repository, logger)
	return service, repository, nil
}
