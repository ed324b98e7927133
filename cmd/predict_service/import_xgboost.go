package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/predict-service/internal/features"
	"github.com/jonathan/predict-service/internal/model"
	"github.com/spf13/cobra"
)

var (
	importModel     string
	importOutput    string
	importName      string
	importVersion   string
	importThreshold float64
)

var importXGBoostCmd = &cobra.Command{
	Use:   "import-xgboost",
	Short: "Convert an xgboost JSON model into a bundle",
	Long: `Convert a binary:logistic gbtree saved with Booster.save_model("model.json") into a
tree_ensemble bundle. Models saved without feature names get the built-in bankruptcy schema.`,
	RunE: runImportXGBoost,
}

func init() {
	importXGBoostCmd.Flags().StringVarP(&importModel, "model", "m", "", "Path to the xgboost JSON model (required)")
	importXGBoostCmd.Flags().StringVarP(&importOutput, "out", "o", "", "Path to the output bundle (required)")
	importXGBoostCmd.Flags().StringVar(&importName, "name", "bankruptcy-xgb", "Bundle name")
	importXGBoostCmd.Flags().StringVar(&importVersion, "version", "", "Bundle version")
	importXGBoostCmd.Flags().Float64Var(&importThreshold, "threshold", 0.28, "Decision threshold stored in the bundle")

	if err := importXGBoostCmd.MarkFlagRequired("model"); err != nil {
		panic(fmt.Sprintf("failed to mark model flag as required: %v", err))
	}
	if err := importXGBoostCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(importXGBoostCmd)
}

func runImportXGBoost(cmd *cobra.Command, _ []string) error {
	bundle, err := importXGBoost(importModel, importOutput, model.ConvertOptions{
		Name:      importName,
		Version:   importVersion,
		Threshold: &importThreshold,
		Features:  features.BankruptcySchema().Names(),
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s: %d trees over %d features\n",
		importOutput, len(bundle.Model.Trees), bundle.Classifier().Width())
	return err
}

func importXGBoost(modelPath, outPath string, opts model.ConvertOptions) (*model.Bundle, error) {
	data, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read xgboost model: %w", err)
	}

	bundle, err := model.ConvertXGBoost(data, opts)
	if err != nil {
		return nil, err
	}

	encoded, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode bundle: %w", err)
	}

	// Ensure output directory exists
	outputDir := filepath.Dir(outPath)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.WriteFile(outPath, append(encoded, '\n'), 0644); err != nil {
		return nil, fmt.Errorf("failed to write bundle: %w", err)
	}
	return bundle, nil
}
