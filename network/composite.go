// Package network declares a paired DMZ/isolated VPC and the security groups
// that guard it.
//
// A Composite carves one public (DMZ) and one isolated (application) subnet
// per availability zone out of a single VPC, ships all VPC traffic to a
// CloudWatch log group and attaches a SecurityGroupSet. Nothing is validated
// while constructing; bad input is recorded on the stack and reported when
// the template is built.
package network

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"

	"github.com/lex00/wetwire-dmz-go/resources/logs"
	"github.com/lex00/wetwire-dmz-go/stack"
)

// Defaults applied to unset Props fields.
const (
	DefaultDMZSubnetName      = "DMZ"
	DefaultIsolatedSubnetName = "APPLICATION"
	DefaultSubnetCIDRMask     = 24
	DefaultFlowLogRetention   = OneWeek
)

// VpcIDExportName is the export name of the VPC ID output.
const VpcIDExportName = "vpcId"

// LoadBalancerGroupExportName is the export name of the optional load
// balancer security group output.
const LoadBalancerGroupExportName = "publicLoadBalancerSecurityGroupId"

// Props configures a Composite. Zero values are unset.
type Props struct {
	CIDR   string `yaml:"cidr"`
	MaxAZs int    `yaml:"max_azs"`

	DMZSubnetName          string `yaml:"dmz_subnet_name,omitempty"`
	DMZSubnetCIDRMask      int    `yaml:"dmz_subnet_cidr_mask,omitempty"`
	IsolatedSubnetName     string `yaml:"isolated_subnet_name,omitempty"`
	IsolatedSubnetCIDRMask int    `yaml:"isolated_subnet_cidr_mask,omitempty"`

	FlowLogGroupName string        `yaml:"flow_log_group_name"`
	FlowLogRetention RetentionDays `yaml:"flow_log_retention,omitempty"`

	StorageGatewayPrefixListID  string `yaml:"storage_gateway_prefix_list_id"`
	KeyValueGatewayPrefixListID string `yaml:"key_value_gateway_prefix_list_id"`

	// ExportLoadBalancerGroupID adds an output exporting the public load
	// balancer security group ID.
	ExportLoadBalancerGroupID bool `yaml:"export_load_balancer_group_id,omitempty"`
}

// WithDefaults returns a copy of p with unset fields resolved.
func (p Props) WithDefaults() Props {
	if p.DMZSubnetName == "" {
		p.DMZSubnetName = DefaultDMZSubnetName
	}
	if p.DMZSubnetCIDRMask == 0 {
		p.DMZSubnetCIDRMask = DefaultSubnetCIDRMask
	}
	if p.IsolatedSubnetName == "" {
		p.IsolatedSubnetName = DefaultIsolatedSubnetName
	}
	if p.IsolatedSubnetCIDRMask == 0 {
		p.IsolatedSubnetCIDRMask = DefaultSubnetCIDRMask
	}
	if p.FlowLogRetention == 0 {
		p.FlowLogRetention = DefaultFlowLogRetention
	}
	return p
}

// Validate checks p before construction. NewComposite does not call it;
// the same problems otherwise surface when the template is built.
func (p Props) Validate() error {
	p = p.WithDefaults()
	var errs []error

	prefix, err := netip.ParsePrefix(p.CIDR)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("cidr: %w", err))
	case !prefix.Addr().Is4():
		errs = append(errs, fmt.Errorf("cidr: %s is not an IPv4 block", p.CIDR))
	}

	if p.MaxAZs < 1 {
		errs = append(errs, fmt.Errorf("max_azs: must be at least 1, got %d", p.MaxAZs))
	}
	for _, f := range []struct {
		name string
		mask int
	}{
		{"isolated_subnet_cidr_mask", p.IsolatedSubnetCIDRMask},
		{"dmz_subnet_cidr_mask", p.DMZSubnetCIDRMask},
	} {
		if f.mask < 16 || f.mask > 28 {
			errs = append(errs, fmt.Errorf("%s: must be between 16 and 28, got %d", f.name, f.mask))
		}
	}
	if p.DMZSubnetName == p.IsolatedSubnetName {
		errs = append(errs, fmt.Errorf("subnet names must differ, both are %q", p.DMZSubnetName))
	}

	if strings.TrimSpace(p.FlowLogGroupName) == "" {
		errs = append(errs, errors.New("flow_log_group_name: required"))
	}
	if !p.FlowLogRetention.Valid() {
		errs = append(errs, fmt.Errorf("flow_log_retention: unsupported value %d", int(p.FlowLogRetention)))
	}

	for _, f := range []struct {
		name string
		id   string
	}{
		{"storage_gateway_prefix_list_id", p.StorageGatewayPrefixListID},
		{"key_value_gateway_prefix_list_id", p.KeyValueGatewayPrefixListID},
	} {
		if !strings.HasPrefix(f.id, "pl-") {
			errs = append(errs, fmt.Errorf("%s: %q is not a prefix list ID", f.name, f.id))
		}
	}

	if err == nil && prefix.Addr().Is4() && p.MaxAZs > 0 {
		alloc, _ := newCIDRAllocator(p.CIDR)
	tiers:
		for _, mask := range []int{p.IsolatedSubnetCIDRMask, p.DMZSubnetCIDRMask} {
			for az := 0; az < p.MaxAZs; az++ {
				if _, aerr := alloc.allocate(mask); aerr != nil {
					errs = append(errs, fmt.Errorf("cidr: %w", aerr))
					break tiers
				}
			}
		}
	}

	return errors.Join(errs...)
}

// Composite is the declared network: the VPC and its subnets, flow logging,
// the VPC ID output and the security groups.
type Composite struct {
	props Props

	VPC            *VPC
	LogGroup       *stack.Entry
	FlowLog        *FlowLog
	SecurityGroups *SecurityGroupSet

	VpcIDOutput *stack.OutputEntry
	// LoadBalancerGroupOutput is nil unless ExportLoadBalancerGroupID is set.
	LoadBalancerGroupOutput *stack.OutputEntry
}

// NewComposite declares the network under scope.
func NewComposite(scope stack.Scope, id string, props Props) *Composite {
	p := props.WithDefaults()
	sc := scope.Child(id)
	c := &Composite{props: p}

	c.VPC = NewVPC(sc, "Vpc", VPCProps{
		CIDR:   p.CIDR,
		MaxAZs: p.MaxAZs,
		Subnets: []SubnetConfig{
			{Name: p.IsolatedSubnetName, Type: SubnetIsolated, CIDRMask: p.IsolatedSubnetCIDRMask},
			{Name: p.DMZSubnetName, Type: SubnetPublic, CIDRMask: p.DMZSubnetCIDRMask},
		},
	})

	c.LogGroup = sc.Add("VpcFlowLogGroup", &logs.LogGroup{
		LogGroupName:    p.FlowLogGroupName,
		RetentionInDays: p.FlowLogRetention.InDays(),
	}, stack.Retain())

	c.FlowLog = c.VPC.AddFlowLog("FlowLog", FlowLogOptions{LogGroup: c.LogGroup, TrafficType: "ALL"})

	c.VpcIDOutput = sc.AddOutput("vpcId", c.VPC.Ref(), "The Id of the VPC", VpcIDExportName)

	c.SecurityGroups = NewSecurityGroupSet(c.VPC.Scope(), "PrimarySecurityGroups", SecurityGroupSetProps{
		VPC:                         c.VPC,
		StorageGatewayPrefixListID:  p.StorageGatewayPrefixListID,
		KeyValueGatewayPrefixListID: p.KeyValueGatewayPrefixListID,
	})

	if p.ExportLoadBalancerGroupID {
		c.LoadBalancerGroupOutput = sc.AddOutput("publicLoadBalancerSecurityGroupId",
			c.SecurityGroups.PublicLoadBalancerGroup.GroupID(),
			"The Id of the public load balancer security group",
			LoadBalancerGroupExportName)
	}

	return c
}

// Props returns the resolved properties.
func (c *Composite) Props() Props { return c.props }

// CIDR returns the VPC address block.
func (c *Composite) CIDR() string { return c.props.CIDR }

// MaxAZs returns the number of availability zones spanned.
func (c *Composite) MaxAZs() int { return c.props.MaxAZs }

// DMZSubnetName returns the resolved public tier name.
func (c *Composite) DMZSubnetName() string { return c.props.DMZSubnetName }

// DMZSubnetCIDRMask returns the resolved public tier mask.
func (c *Composite) DMZSubnetCIDRMask() int { return c.props.DMZSubnetCIDRMask }

// IsolatedSubnetName returns the resolved isolated tier name.
func (c *Composite) IsolatedSubnetName() string { return c.props.IsolatedSubnetName }

// IsolatedSubnetCIDRMask returns the resolved isolated tier mask.
func (c *Composite) IsolatedSubnetCIDRMask() int { return c.props.IsolatedSubnetCIDRMask }

// FlowLogGroupName returns the flow log destination group name.
func (c *Composite) FlowLogGroupName() string { return c.props.FlowLogGroupName }

// FlowLogRetention returns the resolved retention period.
func (c *Composite) FlowLogRetention() RetentionDays { return c.props.FlowLogRetention }

// StorageGatewayPrefixListID returns the S3 prefix list ID.
func (c *Composite) StorageGatewayPrefixListID() string { return c.props.StorageGatewayPrefixListID }

// KeyValueGatewayPrefixListID returns the DynamoDB prefix list ID.
func (c *Composite) KeyValueGatewayPrefixListID() string {
	return c.props.KeyValueGatewayPrefixListID
}
