package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/diabetes-prediction-engine/internal/catalog"
	"github.com/diabetes-prediction-engine/internal/domain"
	"github.com/diabetes-prediction-engine/internal/history"
	"github.com/diabetes-prediction-engine/internal/service"
	"github.com/diabetes-prediction-engine/pkg/archive"
	"github.com/diabetes-prediction-engine/pkg/external"
)

// openInput returns stdin for "-" and the named file otherwise.
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

func (a *app) predictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Run a single evaluation from a JSON request and print the prediction",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			cfg := a.config.GetConfig()

			in, err := openInput(cmd, path)
			if err != nil {
				return err
			}
			defer in.Close()

			var req domain.EvaluationRequest
			if err := json.NewDecoder(in).Decode(&req); err != nil {
				return fmt.Errorf("failed to decode evaluation request: %w", err)
			}

			scorer := external.NewScorerClient(external.ScorerConfigFrom(cfg.Scorer), a.logger)
			scorer.Initialize(cmd.Context())

			predictor := service.NewPredictor(
				service.PredictorConfig{StrictNormalization: cfg.Prediction.StrictNormalization},
				a.newFallback(cfg.Prediction),
				scorer,
				catalog.NewMemoryStore(),
				nil,
				a.logger,
			)

			resp, err := predictor.Predict(cmd.Context(), &req)
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(resp)
		},
	}
	cmd.Flags().String("file", "-", "Evaluation request JSON file, or - for stdin")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the evaluation history as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			toArchive, _ := cmd.Flags().GetBool("archive")
			cfg := a.config.GetConfig()
			ctx := cmd.Context()

			store, err := history.Open(cfg.History, a.config.GetDatabaseURL())
			if err != nil {
				return err
			}
			defer store.Close()

			if toArchive {
				sink, err := archive.New(ctx, cfg.Archive, a.logger)
				if err != nil {
					return err
				}
				result, err := history.ArchiveExport(ctx, store, sink, a.logger)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "archived %d evaluations to %s\n", result.Count, result.Location)
				return nil
			}

			if output == "-" {
				return store.ExportJSON(ctx, cmd.OutOrStdout())
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := store.ExportJSON(ctx, f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().String("output", "-", "Destination file, or - for stdout")
	cmd.Flags().Bool("archive", false, "Write the export to the configured archive instead")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import evaluations from a history export, skipping ones already stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")

			in, err := openInput(cmd, path)
			if err != nil {
				return err
			}
			defer in.Close()

			store, err := history.Open(a.config.GetConfig().History, a.config.GetDatabaseURL())
			if err != nil {
				return err
			}
			defer store.Close()

			imported, skipped, err := store.ImportJSON(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d evaluations, skipped %d\n", imported, skipped)
			return nil
		},
	}
	cmd.Flags().String("file", "-", "History export JSON file, or - for stdin")
	return cmd
}
