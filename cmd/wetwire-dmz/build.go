package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	wetwire "github.com/lex00/wetwire-dmz-go"
	"github.com/lex00/wetwire-dmz-go/internal/config"
	"github.com/lex00/wetwire-dmz-go/internal/synth"
)

func newBuildCmd(opts *globalOptions) *cobra.Command {
	var (
		overrides    config.Overrides
		outputFormat string
		outputFile   string
		asResult     bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate CloudFormation template from the network config",
		Long: `Build declares the network described by the config file and flags and
writes the CloudFormation template.

Examples:
    wetwire-dmz build
    wetwire-dmz build -c prod.yaml -o template.json
    wetwire-dmz build --cidr 10.1.0.0/16 --max-azs 3 --format yaml
    wetwire-dmz build --result    # JSON build result with resource list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result := runBuild(opts, overrides)
			if asResult {
				return writeBuildResult(cmd.OutOrStdout(), result)
			}
			return outputResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), result, outputFormat, outputFile)
		},
	}

	addNetworkFlags(cmd, &overrides)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&asResult, "result", false, "Print a JSON build result instead of the bare template")

	return cmd
}

func runBuild(opts *globalOptions, overrides config.Overrides) wetwire.BuildResult {
	res, err := opts.synthesize(overrides)
	if err != nil {
		return wetwire.BuildResult{
			Success: false,
			Errors:  splitErrors(err),
		}
	}
	return buildResultOf(res)
}

func buildResultOf(res *synth.Result) wetwire.BuildResult {
	resources := make([]string, 0, len(res.Template.Resources))
	for _, e := range res.Stack.Resources() {
		resources = append(resources, e.LogicalID)
	}
	return wetwire.BuildResult{
		Success:   true,
		Template:  *res.Template,
		Resources: resources,
	}
}

func outputResult(stdout, stderr io.Writer, result wetwire.BuildResult, format, outputFile string) error {
	if !result.Success {
		for _, e := range result.Errors {
			fmt.Fprintln(stderr, e)
		}
		return fmt.Errorf("build failed")
	}

	data, err := encodeTemplate(&result.Template, format)
	if err != nil {
		return err
	}

	if outputFile == "" {
		fmt.Fprintln(stdout, string(data))
		return nil
	}

	return os.WriteFile(outputFile, data, 0644)
}

func writeBuildResult(w io.Writer, result wetwire.BuildResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	if !result.Success {
		return exitError{code: 1}
	}
	return nil
}

// splitErrors returns one message per joined construction error. Wrapping
// prefixes above the join are dropped; each leaf names its own path.
func splitErrors(err error) []string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		joined, ok := e.(interface{ Unwrap() []error })
		if !ok {
			continue
		}
		var msgs []string
		for _, leaf := range joined.Unwrap() {
			msgs = append(msgs, splitErrors(leaf)...)
		}
		return msgs
	}
	return []string{err.Error()}
}
