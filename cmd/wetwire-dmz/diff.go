package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	wetwire "github.com/lex00/wetwire-dmz-go"
	"github.com/lex00/wetwire-dmz-go/internal/differ"
)

func newDiffCmd() *cobra.Command {
	var (
		outputFormat string
		ignoreOrder  bool
	)

	cmd := &cobra.Command{
		Use:   "diff <template1> <template2>",
		Short: "Compare two CloudFormation templates",
		Long: `Diff compares two templates (JSON or YAML) resource by resource and
output by output.

Examples:
    wetwire-dmz build -o new.json && wetwire-dmz diff deployed.json new.json
    wetwire-dmz diff a.yaml b.json --ignore-order --format json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := differ.CompareFiles(args[0], args[1], differ.Options{IgnoreOrder: ignoreOrder})
			if err != nil {
				return err
			}
			return outputDiffResult(cmd.OutOrStdout(), result, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&ignoreOrder, "ignore-order", false, "Ignore array element order")

	return cmd
}

func outputDiffResult(w io.Writer, result *differ.Result, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(wetwire.DiffResult{
			Success: true,
			Diff:    result.Diff,
			Summary: result.Summary,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))

	case "text":
		if result.Summary.Total == 0 {
			fmt.Fprintln(w, "Templates are identical.")
			return nil
		}

		printEntries := func(sign string, entries []wetwire.DiffEntry) {
			for _, e := range entries {
				fmt.Fprintf(w, "%s %s (%s)\n", sign, e.Resource, e.Type)
				for _, c := range e.Changes {
					fmt.Fprintf(w, "    %s\n", c)
				}
			}
		}
		printEntries("+", result.Diff.Added)
		printEntries("-", result.Diff.Removed)
		printEntries("~", result.Diff.Modified)

		fmt.Fprintf(w, "\n%d added, %d removed, %d modified\n",
			result.Summary.Added, result.Summary.Removed, result.Summary.Modified)

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	return nil
}
