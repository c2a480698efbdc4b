// Package config loads the network definition from a YAML file and applies
// command-line overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lex00/wetwire-dmz-go/network"
)

// DefaultPath is the config file read when no --config flag is given.
const DefaultPath = "network.yaml"

// DefaultStackName names the stack when the file does not.
const DefaultStackName = "DmzNetwork"

// File is the on-disk configuration.
type File struct {
	Stack   Stack         `yaml:"stack"`
	Network network.Props `yaml:"network"`
	AWS     AWS           `yaml:"aws,omitempty"`
}

// Stack describes the synthesized template.
type Stack struct {
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// AWS selects the credentials used by commands that call AWS.
type AWS struct {
	Profile string `yaml:"profile,omitempty"`
	Region  string `yaml:"region,omitempty"`
}

// Load reads the config file at path. A missing DefaultPath yields an empty
// File so that flags alone can describe the network; any other missing file
// is an error.
func Load(path string) (*File, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultPath {
			return &File{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a config document. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &f, nil
}

// Overrides are values given on the command line. Zero values leave the
// file's value in place.
type Overrides struct {
	StackName   string
	Description string

	CIDR                        string
	MaxAZs                      int
	DMZSubnetName               string
	DMZSubnetCIDRMask           int
	IsolatedSubnetName          string
	IsolatedSubnetCIDRMask      int
	FlowLogGroupName            string
	FlowLogRetention            network.RetentionDays
	StorageGatewayPrefixListID  string
	KeyValueGatewayPrefixListID string
	ExportLoadBalancerGroupID   bool

	Profile string
	Region  string
}

// Merge returns a copy of f with o applied. Flags take precedence over the
// file.
func (f File) Merge(o Overrides) File {
	setString(&f.Stack.Name, o.StackName)
	setString(&f.Stack.Description, o.Description)

	n := &f.Network
	setString(&n.CIDR, o.CIDR)
	setInt(&n.MaxAZs, o.MaxAZs)
	setString(&n.DMZSubnetName, o.DMZSubnetName)
	setInt(&n.DMZSubnetCIDRMask, o.DMZSubnetCIDRMask)
	setString(&n.IsolatedSubnetName, o.IsolatedSubnetName)
	setInt(&n.IsolatedSubnetCIDRMask, o.IsolatedSubnetCIDRMask)
	setString(&n.FlowLogGroupName, o.FlowLogGroupName)
	if o.FlowLogRetention != 0 {
		n.FlowLogRetention = o.FlowLogRetention
	}
	setString(&n.StorageGatewayPrefixListID, o.StorageGatewayPrefixListID)
	setString(&n.KeyValueGatewayPrefixListID, o.KeyValueGatewayPrefixListID)
	if o.ExportLoadBalancerGroupID {
		n.ExportLoadBalancerGroupID = true
	}

	setString(&f.AWS.Profile, o.Profile)
	setString(&f.AWS.Region, o.Region)
	return f
}

// StackName returns the configured stack name or DefaultStackName.
func (f File) StackName() string {
	if f.Stack.Name == "" {
		return DefaultStackName
	}
	return f.Stack.Name
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
