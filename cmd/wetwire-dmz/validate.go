package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	wetwire "github.com/lex00/wetwire-dmz-go"
	"github.com/lex00/wetwire-dmz-go/internal/config"
	"github.com/lex00/wetwire-dmz-go/internal/linter"
	"github.com/lex00/wetwire-dmz-go/internal/synth"
	"github.com/lex00/wetwire-dmz-go/internal/validation"
)

// newValidateCmd creates the "validate" subcommand for checking the config
// and the synthesized template.
func newValidateCmd(opts *globalOptions) *cobra.Command {
	var (
		overrides    config.Overrides
		outputFormat string
		skipCfnLint  bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the network config and synthesized template",
		Long: `Validate checks the network configuration end to end.

Checks performed:
  - Config: CIDR, masks, AZ count, names and prefix list IDs
  - Synthesis: the template builds without errors
  - Security lint: the DMZ rules (see "wetwire-dmz lint")
  - cfn-lint: CloudFormation schema validation of the template

Examples:
    wetwire-dmz validate
    wetwire-dmz validate -c prod.yaml --format json
    wetwire-dmz validate --skip-cfn-lint`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runValidate(opts, overrides, skipCfnLint)
			if err != nil {
				return err
			}
			return outputValidateResult(cmd.OutOrStdout(), result, outputFormat)
		},
	}

	addNetworkFlags(cmd, &overrides)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&skipCfnLint, "skip-cfn-lint", false, "Skip CloudFormation schema validation")

	return cmd
}

// runValidate runs every validation stage and folds the findings into a
// ValidateResult.
func runValidate(opts *globalOptions, overrides config.Overrides, skipCfnLint bool) (wetwire.ValidateResult, error) {
	cfg, err := opts.loadConfig(overrides)
	if err != nil {
		return wetwire.ValidateResult{}, err
	}

	var result wetwire.ValidateResult

	var tmpl *wetwire.Template
	res, synthErr := synth.Synthesize(cfg, opts.log())
	if synthErr != nil {
		result.Errors = append(result.Errors, splitErrors(synthErr)...)
	} else {
		tmpl = res.Template
		result.Resources = len(tmpl.Resources)
	}

	vr, err := validation.Validate(cfg.Network, tmpl, validation.Options{SkipCfnLint: skipCfnLint})
	if err != nil {
		return wetwire.ValidateResult{}, err
	}

	for _, msg := range vr.PropsErrors {
		result.Errors = append(result.Errors, msg)
	}
	if vr.LintResult != nil {
		for _, issue := range vr.LintResult.Issues {
			msg := fmt.Sprintf("%s: %s: %s", issue.Rule, issue.Resource, issue.Message)
			if issue.Severity == linter.SeverityError {
				result.Errors = append(result.Errors, msg)
			} else {
				result.Warnings = append(result.Warnings, msg)
			}
		}
	}
	if vr.CfnLintResult != nil {
		result.Errors = append(result.Errors, vr.CfnLintResult.Errors...)
		result.Warnings = append(result.Warnings, vr.CfnLintResult.Warnings...)
	}

	result.Success = len(result.Errors) == 0
	opts.log().Debug("validation finished",
		"errors", len(result.Errors),
		"warnings", len(result.Warnings),
	)
	return result, nil
}

func outputValidateResult(w io.Writer, result wetwire.ValidateResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))

	case "text":
		if result.Success {
			fmt.Fprintf(w, "Validation passed: %d resources OK\n", result.Resources)
			for _, warnMsg := range result.Warnings {
				fmt.Fprintf(w, "  WARNING: %s\n", warnMsg)
			}
			return nil
		}

		fmt.Fprintln(w, "Validation FAILED:")
		for _, errMsg := range result.Errors {
			fmt.Fprintf(w, "  ERROR: %s\n", errMsg)
		}
		for _, warnMsg := range result.Warnings {
			fmt.Fprintf(w, "  WARNING: %s\n", warnMsg)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if !result.Success {
		return exitError{code: 1}
	}

	return nil
}
