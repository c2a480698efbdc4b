package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lex00/wetwire-dmz-go/internal/config"
	"github.com/lex00/wetwire-dmz-go/internal/graph"
)

func newGraphCmd(opts *globalOptions) *cobra.Command {
	var (
		overrides     config.Overrides
		outputFormat  string
		kind          string
		clusterByType bool
		placeholders  bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Generate DOT graph of security group rules",
		Long: `Generate a DOT or Mermaid graph of the synthesized network.

By default the graph shows allowed traffic between the security groups,
prefix lists and the internet. --kind resources draws the resource
dependency graph instead.

The output can be rendered with Graphviz:
    wetwire-dmz graph | dot -Tpng -o rules.png

Or used in GitHub markdown (Mermaid format):
    wetwire-dmz graph -f mermaid

Examples:
    wetwire-dmz graph
    wetwire-dmz graph --placeholders          # show "Disallow all traffic" rules
    wetwire-dmz graph --kind resources -C     # dependencies, clustered by service`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var graphFormat graph.Format
			switch outputFormat {
			case "dot":
				graphFormat = graph.FormatDOT
			case "mermaid":
				graphFormat = graph.FormatMermaid
			default:
				return fmt.Errorf("unknown format: %s (use 'dot' or 'mermaid')", outputFormat)
			}

			var graphKind graph.Kind
			switch kind {
			case "rules":
				graphKind = graph.KindRules
			case "resources":
				graphKind = graph.KindResources
			default:
				return fmt.Errorf("unknown kind: %s (use 'rules' or 'resources')", kind)
			}

			res, err := opts.synthesize(overrides)
			if err != nil {
				return err
			}

			gen := &graph.Generator{
				Format:              graphFormat,
				Kind:                graphKind,
				ClusterByType:       clusterByType,
				IncludePlaceholders: placeholders,
			}
			return gen.Generate(res.Template, cmd.OutOrStdout())
		},
	}

	addNetworkFlags(cmd, &overrides)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "dot", "Output format: dot or mermaid")
	cmd.Flags().StringVarP(&kind, "kind", "k", "rules", "Graph kind: rules or resources")
	cmd.Flags().BoolVarP(&clusterByType, "cluster", "C", false, "Cluster resources by AWS service type")
	cmd.Flags().BoolVar(&placeholders, "placeholders", false, "Include placeholder egress rules")

	return cmd
}
