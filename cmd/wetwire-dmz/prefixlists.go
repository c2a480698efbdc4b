package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	awsec2 "github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lex00/wetwire-dmz-go/internal/aws"
	"github.com/lex00/wetwire-dmz-go/internal/aws/prefixlist"
	"github.com/lex00/wetwire-dmz-go/internal/config"
)

func newPrefixListsCmd(opts *globalOptions) *cobra.Command {
	var (
		profile      string
		region       string
		outputFormat string
		all          bool
	)

	cmd := &cobra.Command{
		Use:   "prefix-lists",
		Short: "Look up the S3 and DynamoDB gateway prefix lists",
		Long: `Prefix-lists queries EC2 for the AWS-managed prefix lists of the S3 and
DynamoDB gateway endpoints in a region. The cluster instance security group
allows HTTPS egress to both.

Profile and region default to the config file's aws section, then to the
SDK's usual environment and shared config lookup.

Examples:
    wetwire-dmz prefix-lists --region eu-west-1
    wetwire-dmz prefix-lists --format yaml    # network section fragment
    wetwire-dmz prefix-lists --all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(config.Overrides{Profile: profile, Region: region})
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			awsCfg, err := aws.LoadConfig(ctx, cfg.AWS.Profile, cfg.AWS.Region)
			if err != nil {
				return err
			}
			opts.log().Debug("looking up prefix lists", "region", awsCfg.Region, "profile", cfg.AWS.Profile)

			client := prefixlist.NewClient(awsec2.NewFromConfig(awsCfg))
			if all {
				return runListPrefixLists(ctx, cmd.OutOrStdout(), client, outputFormat)
			}
			return runGatewayPrefixLists(ctx, cmd.OutOrStdout(), client, awsCfg.Region, outputFormat)
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "", "AWS profile")
	cmd.Flags().StringVar(&region, "region", "", "AWS region")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text, json or yaml")
	cmd.Flags().BoolVar(&all, "all", false, "List every AWS-managed prefix list in the region")

	return cmd
}

type prefixListClient interface {
	List(ctx context.Context) ([]prefixlist.PrefixList, error)
	Gateways(ctx context.Context, region string) (prefixlist.Gateways, error)
}

func runGatewayPrefixLists(ctx context.Context, w io.Writer, client prefixListClient, region, format string) error {
	gw, err := client.Gateways(ctx, region)
	if err != nil {
		return err
	}

	switch format {
	case "text":
		fmt.Fprintf(w, "Region: %s\n", gw.Region)
		fmt.Fprintf(w, "  storage (s3):         %s  %s\n", gw.Storage.ID, gw.Storage.Name)
		fmt.Fprintf(w, "  key-value (dynamodb): %s  %s\n", gw.KeyValue.ID, gw.KeyValue.Name)

	case "json":
		data, err := json.MarshalIndent(map[string]string{
			"region":                           gw.Region,
			"storage_gateway_prefix_list_id":   gw.Storage.ID,
			"key_value_gateway_prefix_list_id": gw.KeyValue.ID,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))

	case "yaml":
		// A network section fragment ready to paste into network.yaml.
		data, err := yaml.Marshal(map[string]any{
			"network": map[string]string{
				"storage_gateway_prefix_list_id":   gw.Storage.ID,
				"key_value_gateway_prefix_list_id": gw.KeyValue.ID,
			},
		})
		if err != nil {
			return err
		}
		fmt.Fprint(w, string(data))

	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}

func runListPrefixLists(ctx context.Context, w io.Writer, client prefixListClient, format string) error {
	lists, err := client.List(ctx)
	if err != nil {
		return err
	}

	switch format {
	case "text":
		if len(lists) == 0 {
			fmt.Fprintln(w, "No prefix lists found.")
			return nil
		}
		for _, pl := range lists {
			fmt.Fprintf(w, "  %s  %-40s %d CIDRs\n", pl.ID, pl.Name, len(pl.CIDRs))
		}

	case "json":
		data, err := json.MarshalIndent(lists, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))

	case "yaml":
		data, err := yaml.Marshal(lists)
		if err != nil {
			return err
		}
		fmt.Fprint(w, string(data))

	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}
