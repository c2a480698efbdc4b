// Command wetwire-dmz synthesizes a CloudFormation template for a paired
// DMZ/isolated VPC and its security groups.
//
// Usage:
//
//	wetwire-dmz build                 Generate CloudFormation template
//	wetwire-dmz validate              Check config and template
//	wetwire-dmz list                  List synthesized resources
//	wetwire-dmz lint                  Check the security posture
//	wetwire-dmz graph                 Draw the security group rules
//	wetwire-dmz diff a.json b.json    Compare two templates
//	wetwire-dmz watch                 Rebuild when the config changes
//	wetwire-dmz prefix-lists          Look up S3/DynamoDB prefix lists
//	wetwire-dmz version               Show version
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := newRootCmd()

	if err := rootCmd.Execute(); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "wetwire-dmz",
		Short: "Generate a DMZ/isolated VPC CloudFormation template",
		Long: `wetwire-dmz generates a CloudFormation template for a VPC split into a
public DMZ tier and an isolated application tier, with flow logs and a fixed
set of security groups.

Describe the network in network.yaml:

    network:
      cidr: 10.0.0.0/21
      max_azs: 2
      flow_log_group_name: /vpc/flowLogs
      storage_gateway_prefix_list_id: pl-63a5400a
      key_value_gateway_prefix_list_id: pl-02cd2c6b

Then generate CloudFormation JSON:

    wetwire-dmz build`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.setupLogger(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: network.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&opts.logJSON, "log-json", false, "Write logs as JSON")

	rootCmd.AddCommand(
		newBuildCmd(opts),
		newValidateCmd(opts),
		newListCmd(opts),
		newLintCmd(opts),
		newGraphCmd(opts),
		newDiffCmd(),
		newWatchCmd(opts),
		newPrefixListsCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wetwire-dmz %s\n", getVersion())
		},
	}
}
