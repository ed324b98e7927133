package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/predict-service/internal/features"
	"github.com/jonathan/predict-service/internal/inference"
	"github.com/jonathan/predict-service/internal/observability"
	"github.com/jonathan/predict-service/internal/server"
	"github.com/spf13/cobra"
)

var (
	predictBundle  string
	predictInput   string
	predictVerbose bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Score a bankruptcy request offline",
	Long: `Score one JSON object of company features with a bankruptcy bundle, applying the same
label normalization and schema checks as the HTTP service. The result is printed as JSON.`,
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().StringVar(&predictBundle, "bundle", "", "Model bundle (defaults to the configured bankruptcy bundle)")
	predictCmd.Flags().StringVarP(&predictInput, "input", "i", "", "Path to the request JSON, or - for stdin (required)")
	predictCmd.Flags().BoolVarP(&predictVerbose, "verbose", "v", false, "Print bundle and request summaries to stderr")

	if err := predictCmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("failed to mark input flag as required: %v", err))
	}

	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadSettings()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	bundlePath := predictBundle
	if bundlePath == "" {
		bundlePath = cfg.Bankruptcy.Bundle
	}

	svc, err := loadBankruptcy(bundlePath, cfg.Server.KeyCacheSize)
	if err != nil {
		return fmt.Errorf("failed to load bankruptcy model: %w", err)
	}

	body, err := readInput(cmd.InOrStdin(), predictInput)
	if err != nil {
		return err
	}

	var printer *observability.Printer
	if predictVerbose {
		printer = observability.NewPrinter(cmd.ErrOrStderr())
		printer.PrintBundle(svc.bundle)
	}

	result, err := scoreRequest(svc, body, printer)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return err
}

// scoreRequest runs body through the gate and predictor. A nil printer disables summaries.
func scoreRequest(svc *bankruptcyService, body []byte, printer *observability.Printer) (inference.Result, error) {
	fields, err := server.DecodeFields(body)
	if err != nil {
		return inference.Result{}, err
	}

	checked, err := svc.gate.Check(fields)
	if err != nil {
		var missingErr *features.MissingFeaturesError
		if printer != nil && errors.As(err, &missingErr) {
			printer.PrintMissing(missingErr)
		}
		return inference.Result{}, err
	}

	result, err := svc.predictor.Predict(checked.Vector)
	if err != nil {
		return inference.Result{}, err
	}

	if printer != nil {
		printer.PrintChecked(checked)
		printer.PrintPrediction(result)
	}
	return result, nil
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return data, nil
}
