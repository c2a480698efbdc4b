package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	wetwire "github.com/lex00/wetwire-dmz-go"
	"github.com/lex00/wetwire-dmz-go/internal/config"
	"github.com/lex00/wetwire-dmz-go/internal/linter"
)

func newLintCmd(opts *globalOptions) *cobra.Command {
	var (
		overrides      config.Overrides
		outputFormat   string
		templateFile   string
		rules          []string
		internetFacing []string
	)

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check the network's security posture",
		Long: `Lint synthesizes the network, or reads an existing template, and checks it
against the DMZ security rules.

Rules:
    DMZ001: Security groups must not allow all outbound traffic
    DMZ002: Only internet-facing groups may accept traffic from the internet
    DMZ003: Security group rules should carry a description
    DMZ004: The network must not contain NAT gateways
    DMZ005: Every VPC needs a flow log capturing ALL traffic
    DMZ006: Isolated subnets must not assign public IPs
    DMZ007: Flow log groups should be retained on stack deletion

Exit status is 2 when an error-severity issue is found.

Examples:
    wetwire-dmz lint
    wetwire-dmz lint --template template.json
    wetwire-dmz lint --rules DMZ001,DMZ002 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lintOpts := linter.Options{
				EnabledRules:         rules,
				InternetFacingGroups: internetFacing,
			}

			var result linter.Result
			if templateFile != "" {
				r, err := linter.LintFile(templateFile, lintOpts)
				if err != nil {
					return err
				}
				result = r
			} else {
				res, err := opts.synthesize(overrides)
				if err != nil {
					return err
				}
				result = linter.LintTemplate(res.Template, lintOpts)
			}

			return outputLintResult(cmd.OutOrStdout(), toLintResult(result), outputFormat)
		},
	}

	addNetworkFlags(cmd, &overrides)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringVarP(&templateFile, "template", "t", "", "Lint this template file instead of synthesizing")
	cmd.Flags().StringSliceVar(&rules, "rules", nil, "Only run these rule IDs")
	cmd.Flags().StringSliceVar(&internetFacing, "internet-facing", nil, "Group names allowed to accept internet traffic")

	return cmd
}

func toLintResult(r linter.Result) wetwire.LintResult {
	result := wetwire.LintResult{Success: r.Success}
	for _, issue := range r.Issues {
		result.Issues = append(result.Issues, wetwire.LintIssue{
			Resource: issue.Resource,
			Severity: string(issue.Severity),
			Message:  issue.Message,
			Rule:     issue.Rule,
		})
	}
	return result
}

func outputLintResult(w io.Writer, result wetwire.LintResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))

	case "text":
		if len(result.Issues) == 0 {
			fmt.Fprintln(w, "No issues found.")
			return nil
		}

		for _, issue := range result.Issues {
			fmt.Fprintf(w, "%s: %s: %s [%s]\n", issue.Resource, issue.Severity, issue.Message, issue.Rule)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if !result.Success {
		return exitError{code: 2}
	}

	return nil
}
