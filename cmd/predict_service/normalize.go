package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/jonathan/predict-service/internal/features"
	"github.com/spf13/cobra"
)

var normalizeShowLabel bool

var normalizeCmd = &cobra.Command{
	Use:   "normalize [labels...]",
	Short: "Print the canonical feature key for each label",
	Long: `Print the canonical feature key for each label given as an argument, or for each line of
standard input when no arguments are given. A label with no letters or digits prints an empty line.`,
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().BoolVar(&normalizeShowLabel, "show-label", false, "Print the original label before each key, tab separated")
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	return normalizeLabels(cmd.InOrStdin(), cmd.OutOrStdout(), args, normalizeShowLabel)
}

func normalizeLabels(in io.Reader, out io.Writer, args []string, showLabel bool) error {
	w := bufio.NewWriter(out)
	emit := func(label string) error {
		key := features.Canonicalize(label)
		var err error
		if showLabel {
			_, err = fmt.Fprintf(w, "%s\t%s\n", label, key)
		} else {
			_, err = fmt.Fprintln(w, key)
		}
		return err
	}

	if len(args) > 0 {
		for _, label := range args {
			if err := emit(label); err != nil {
				return err
			}
		}
		return w.Flush()
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := emit(scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read labels: %w", err)
	}
	return w.Flush()
}
