package main

import (
	"encoding/json"
	"fmt"
	"os"

	"ecocast/adapters/excel"
	"ecocast/app"
	"ecocast/domain/forecast"
	"ecocast/internal"
	"ecocast/internal/config"
	"ecocast/internal/testkit"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ecocast-cli",
		Short: "Ecocast CLI for reconciling stress-index forecasts against monitoring data",
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newDemoCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var historyPath, forecastPath, outputPath string
	var strict bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile a raw forecast table against the historical series",
		Long: `Reconcile a mechanistic forecast against the historical observation
series and write the blended projection table.

Example: ecocast-cli run --history history.csv --forecast forecast.csv --output projections.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err == nil {
				internal.DefaultLogger.Debug("loaded environment from .env")
			}

			appConfig, err := config.LoadBatch()
			if err != nil {
				return err
			}
			if historyPath == "" {
				historyPath = appConfig.Paths.HistoryFile
			}
			if forecastPath == "" {
				forecastPath = appConfig.Paths.ForecastFile
			}
			if outputPath == "" {
				outputPath = appConfig.Paths.OutputFile
			}

			scenarioCfg, err := appConfig.ScenarioConfig()
			if err != nil {
				return err
			}

			service := app.NewReconcileService(scenarioCfg, excel.NewTableReader(), nil, internal.DefaultLogger)
			service.SetStrict(strict)
			result, err := service.Run(cmd.Context(), app.RunRequest{
				HistoryPath:  historyPath,
				ForecastPath: forecastPath,
			})
			if err != nil {
				return err
			}

			if err := excel.NewTableWriter().WriteTable(outputPath, result.Table); err != nil {
				return err
			}

			printSummary(result.Manifest, outputPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&historyPath, "history", "", "historical observation table (csv or xlsx)")
	cmd.Flags().StringVar(&forecastPath, "forecast", "", "raw scenario forecast table (csv or xlsx)")
	cmd.Flags().StringVar(&outputPath, "output", "", "blended projection output file")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when the scenario ranking cannot be corrected")

	return cmd
}

func newDemoCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the pipeline on synthetic inputs and print the manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig, err := config.LoadBatch()
			if err != nil {
				return err
			}
			scenarioCfg, err := appConfig.ScenarioConfig()
			if err != nil {
				return err
			}

			reader, err := testkit.NewStaticReader()
			if err != nil {
				return err
			}

			service := app.NewReconcileService(scenarioCfg, reader, nil, internal.DefaultLogger)
			result, err := service.Run(cmd.Context(), app.RunRequest{
				HistoryPath:  "synthetic",
				ForecastPath: "synthetic",
			})
			if err != nil {
				return err
			}

			if outputPath != "" {
				if err := excel.NewTableWriter().WriteTable(outputPath, result.Table); err != nil {
					return err
				}
			}

			printSummary(result.Manifest, outputPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&outputPath, "output", "", "optional projection output file")
	return cmd
}

func printSummary(manifest *forecast.RunManifest, outputPath string) {
	fmt.Printf("Run %s complete\n", manifest.RunID)
	fmt.Printf("  anchor:      %.4g @ %v\n", manifest.AnchorValue, manifest.AnchorYear.Float())
	fmt.Printf("  trend slope: %+.4f per year\n", manifest.TrendSlope)
	fmt.Printf("  scenarios:   %d (history %d pts, forecast %d pts)\n",
		manifest.ScenarioCount, manifest.HistoryPoints, manifest.ForecastPoints)
	fmt.Printf("  corrected:   %v (%d pass(es))\n", manifest.Corrected, manifest.CorrectionPasses)
	if len(manifest.Warnings) > 0 {
		fmt.Printf("  warnings:\n")
		for _, w := range manifest.Warnings {
			fmt.Printf("    - %s\n", w)
		}
	}
	fmt.Printf("  runtime:     %dms\n", manifest.RuntimeMs)
	if outputPath != "" {
		fmt.Printf("  output:      %s\n", outputPath)
	}

	if data, err := json.MarshalIndent(manifest.WarningCounts(), "", "  "); err == nil && len(manifest.Warnings) > 0 {
		fmt.Printf("  warning counts: %s\n", data)
	}
}
