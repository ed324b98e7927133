package main

import (
	"fmt"

	"github.com/jonathan/predict-service/internal/model"
	"github.com/jonathan/predict-service/internal/observability"
	"github.com/spf13/cobra"
)

var checkBundleService string

var checkBundleCmd = &cobra.Command{
	Use:   "check-bundle <path>",
	Short: "Validate a model bundle",
	Long: `Load a model bundle, validate it against the bundle schema and check that its feature list,
vectorizer and model agree. With --service the bundle is also wired the way that service would
wire it at startup.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckBundle,
}

func init() {
	checkBundleCmd.Flags().StringVar(&checkBundleService, "service", "", "Also check the bundle for a service: bankruptcy or lead")
	rootCmd.AddCommand(checkBundleCmd)
}

func runCheckBundle(cmd *cobra.Command, args []string) error {
	bundle, err := checkBundle(args[0], checkBundleService)
	if err != nil {
		return err
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintBundle(bundle)
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Bundle OK: %s\n", bundle.Path())
	return err
}

func checkBundle(path, service string) (*model.Bundle, error) {
	switch service {
	case "":
		return model.LoadBundle(path)
	case serviceBankruptcy:
		// The cache size is irrelevant for a one-off check.
		svc, err := loadBankruptcy(path, 0)
		if err != nil {
			return nil, err
		}
		return svc.bundle, nil
	case serviceLead:
		svc, err := loadLead(path)
		if err != nil {
			return nil, err
		}
		return svc.bundle, nil
	default:
		return nil, fmt.Errorf("unknown service %q: expected bankruptcy or lead", service)
	}
}
