package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	wetwire "github.com/lex00/wetwire-dmz-go"
	"github.com/lex00/wetwire-dmz-go/internal/config"
	"github.com/lex00/wetwire-dmz-go/internal/logging"
	"github.com/lex00/wetwire-dmz-go/internal/synth"
	"github.com/lex00/wetwire-dmz-go/internal/template"
)

// exitError ends the process with code without printing anything more.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// globalOptions are the persistent root flags.
type globalOptions struct {
	configPath string
	verbose    bool
	logJSON    bool

	logger *logging.Logger
}

func (o *globalOptions) setupLogger(w io.Writer) {
	cfg := logging.DefaultConfig()
	cfg.Output = w
	cfg.JSON = o.logJSON
	if o.verbose {
		cfg.Level = logging.LevelDebug
	}
	o.logger = logging.New(cfg)
}

func (o *globalOptions) log() *logging.Logger {
	if o.logger == nil {
		o.setupLogger(os.Stderr)
	}
	return o.logger
}

// loadConfig reads the config file and applies flag overrides.
func (o *globalOptions) loadConfig(overrides config.Overrides) (config.File, error) {
	path := o.configPath
	if path == "" {
		path = config.DefaultPath
	}

	o.log().Debug("loading config", "path", path)
	f, err := config.Load(path)
	if err != nil {
		return config.File{}, err
	}
	return f.Merge(overrides), nil
}

// synthesize loads the config and builds the template.
func (o *globalOptions) synthesize(overrides config.Overrides) (*synth.Result, error) {
	cfg, err := o.loadConfig(overrides)
	if err != nil {
		return nil, err
	}
	return synth.Synthesize(cfg, o.log())
}

// addNetworkFlags registers the flags that override the config file's
// network and stack sections.
func addNetworkFlags(cmd *cobra.Command, o *config.Overrides) {
	f := cmd.Flags()
	f.StringVar(&o.StackName, "stack-name", "", "Stack name")
	f.StringVar(&o.Description, "description", "", "Template description")
	f.StringVar(&o.CIDR, "cidr", "", "VPC CIDR block")
	f.IntVar(&o.MaxAZs, "max-azs", 0, "Number of availability zones")
	f.StringVar(&o.DMZSubnetName, "dmz-subnet-name", "", "Name of the public subnet tier (default DMZ)")
	f.IntVar(&o.DMZSubnetCIDRMask, "dmz-subnet-mask", 0, "CIDR mask of DMZ subnets (default 24)")
	f.StringVar(&o.IsolatedSubnetName, "isolated-subnet-name", "", "Name of the isolated subnet tier (default APPLICATION)")
	f.IntVar(&o.IsolatedSubnetCIDRMask, "isolated-subnet-mask", 0, "CIDR mask of isolated subnets (default 24)")
	f.StringVar(&o.FlowLogGroupName, "flow-log-group", "", "Flow log group name")
	f.Var(&o.FlowLogRetention, "retention", "Flow log retention, e.g. 7, one_week, 1w, infinite (default one_week)")
	f.StringVar(&o.StorageGatewayPrefixListID, "storage-prefix-list", "", "S3 gateway prefix list ID")
	f.StringVar(&o.KeyValueGatewayPrefixListID, "key-value-prefix-list", "", "DynamoDB gateway prefix list ID")
	f.BoolVar(&o.ExportLoadBalancerGroupID, "export-lb-group", false, "Also export the load balancer security group ID")
}

// encodeTemplate renders t in the given format.
func encodeTemplate(t *wetwire.Template, format string) ([]byte, error) {
	switch format {
	case "json":
		return template.ToJSON(t)
	case "yaml":
		return template.ToYAML(t)
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}
