package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	wetwire "github.com/lex00/wetwire-dmz-go"
	"github.com/lex00/wetwire-dmz-go/internal/config"
	"github.com/lex00/wetwire-dmz-go/internal/synth"
)

func newListCmd(opts *globalOptions) *cobra.Command {
	var (
		overrides    config.Overrides
		outputFormat string
		resourceType string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List synthesized resources",
		Long: `List synthesizes the network and displays every resource with its logical ID,
CloudFormation type and construct path.

Examples:
    wetwire-dmz list
    wetwire-dmz list --type AWS::EC2::SecurityGroup
    wetwire-dmz list --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.synthesize(overrides)
			if err != nil {
				return err
			}
			return outputListResult(cmd.OutOrStdout(), listResources(res, resourceType), outputFormat)
		},
	}

	addNetworkFlags(cmd, &overrides)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringVarP(&resourceType, "type", "t", "", "Only list resources of this CloudFormation type")

	return cmd
}

func listResources(res *synth.Result, resourceType string) wetwire.ListResult {
	listResult := wetwire.ListResult{
		Resources: make([]wetwire.ListResource, 0, len(res.Template.Resources)),
	}

	for _, e := range res.Stack.Resources() {
		if resourceType != "" && e.Resource.ResourceType() != resourceType {
			continue
		}
		listResult.Resources = append(listResult.Resources, wetwire.ListResource{
			Name: e.LogicalID,
			Type: e.Resource.ResourceType(),
			Path: e.Path,
		})
	}

	// Sort by name for consistent output
	sort.Slice(listResult.Resources, func(i, j int) bool {
		return listResult.Resources[i].Name < listResult.Resources[j].Name
	})

	return listResult
}

func outputListResult(w io.Writer, result wetwire.ListResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))

	case "text":
		if len(result.Resources) == 0 {
			fmt.Fprintln(w, "No resources found.")
			return nil
		}

		fmt.Fprintf(w, "Synthesized resources (%d):\n\n", len(result.Resources))
		for _, res := range result.Resources {
			fmt.Fprintf(w, "  %s: %s\n", res.Name, res.Type)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	return nil
}
