package network

import (
	"fmt"

	"github.com/lex00/wetwire-dmz-go/intrinsics"
	"github.com/lex00/wetwire-dmz-go/resources/ec2"
	"github.com/lex00/wetwire-dmz-go/resources/iam"
	"github.com/lex00/wetwire-dmz-go/stack"
)

// SubnetType is the tier of a subnet.
type SubnetType string

const (
	// SubnetPublic subnets route 0.0.0.0/0 to the internet gateway.
	SubnetPublic SubnetType = "Public"
	// SubnetIsolated subnets have no route out of the VPC.
	SubnetIsolated SubnetType = "Isolated"
)

// Subnet tag keys.
const (
	TagSubnetName = "subnet-name"
	TagSubnetType = "subnet-type"
)

// SubnetConfig describes one subnet tier. A tier is declared once per AZ.
type SubnetConfig struct {
	Name     string
	Type     SubnetType
	CIDRMask int
}

// VPCProps configures a VPC.
type VPCProps struct {
	CIDR    string
	MaxAZs  int
	Subnets []SubnetConfig
}

// Subnet is a declared subnet with its route table.
type Subnet struct {
	Name       string
	Type       SubnetType
	AZIndex    int
	CIDR       string
	Entry      *stack.Entry
	RouteTable *stack.Entry
	// DefaultRoute is set on public subnets only.
	DefaultRoute *stack.Entry
}

// VPC is a handle on a declared AWS::EC2::VPC and its subnets.
type VPC struct {
	scope           stack.Scope
	entry           *stack.Entry
	cidr            string
	subnets         []*Subnet
	internetGateway *stack.Entry
	attachment      *stack.Entry
}

// NewVPC declares a VPC with one subnet per tier per AZ. Subnet CIDRs are
// allocated in tier order, AZ by AZ. Public tiers get an internet gateway.
// There are never NAT gateways.
//
// Address-space errors are recorded on the stack.
func NewVPC(scope stack.Scope, id string, props VPCProps) *VPC {
	sc := scope.Child(id)
	v := &VPC{
		scope: sc,
		cidr:  props.CIDR,
		entry: scope.Add(id, &ec2.VPC{
			CidrBlock:          props.CIDR,
			EnableDnsHostnames: true,
			EnableDnsSupport:   true,
			InstanceTenancy:    "default",
			Tags:               []any{intrinsics.Tag{Key: "Name", Value: sc.Path()}},
		}),
	}

	alloc, err := newCIDRAllocator(props.CIDR)
	if err != nil {
		sc.Fail(err)
	}

	for _, cfg := range props.Subnets {
		if cfg.Type == SubnetPublic && v.internetGateway == nil {
			v.addInternetGateway()
		}
		for az := 0; az < props.MaxAZs; az++ {
			cidr := ""
			if alloc != nil {
				block, err := alloc.allocate(cfg.CIDRMask)
				if err != nil {
					sc.Fail(fmt.Errorf("subnet %s%d: %w", cfg.Name, az+1, err))
				} else {
					cidr = block.String()
				}
			}
			v.addSubnet(cfg, az, cidr)
		}
	}

	return v
}

func (v *VPC) addInternetGateway() {
	v.internetGateway = v.scope.Add("IGW", &ec2.InternetGateway{
		Tags: []any{intrinsics.Tag{Key: "Name", Value: v.scope.Path()}},
	})
	v.attachment = v.scope.Add("VPCGW", &ec2.VPCGatewayAttachment{
		VpcId:             v.Ref(),
		InternetGatewayId: v.internetGateway.Ref(),
	})
}

func (v *VPC) addSubnet(cfg SubnetConfig, az int, cidr string) {
	id := fmt.Sprintf("%sSubnet%d", cfg.Name, az+1)
	sc := v.scope.Child(id)

	s := &Subnet{Name: cfg.Name, Type: cfg.Type, AZIndex: az, CIDR: cidr}
	s.Entry = v.scope.Add(id, &ec2.Subnet{
		VpcId:               v.Ref(),
		CidrBlock:           cidr,
		AvailabilityZone:    intrinsics.AZ(az),
		MapPublicIpOnLaunch: cfg.Type == SubnetPublic,
		Tags: []any{
			intrinsics.Tag{Key: TagSubnetName, Value: cfg.Name},
			intrinsics.Tag{Key: TagSubnetType, Value: string(cfg.Type)},
			intrinsics.Tag{Key: "Name", Value: sc.Path()},
		},
	})
	s.RouteTable = sc.Add("RouteTable", &ec2.RouteTable{
		VpcId: v.Ref(),
		Tags:  []any{intrinsics.Tag{Key: "Name", Value: sc.Path()}},
	})
	sc.Add("RouteTableAssociation", &ec2.SubnetRouteTableAssociation{
		RouteTableId: s.RouteTable.Ref(),
		SubnetId:     s.Entry.Ref(),
	})
	if cfg.Type == SubnetPublic {
		s.DefaultRoute = sc.Add("DefaultRoute", &ec2.Route{
			RouteTableId:         s.RouteTable.Ref(),
			DestinationCidrBlock: "0.0.0.0/0",
			GatewayId:            v.internetGateway.Ref(),
		}, stack.DependsOn(v.attachment))
	}

	v.subnets = append(v.subnets, s)
}

// Ref returns a Ref to the VPC, which resolves to its ID.
func (v *VPC) Ref() intrinsics.Ref { return v.entry.Ref() }

// LogicalID returns the VPC's logical ID.
func (v *VPC) LogicalID() string { return v.entry.LogicalID }

// Entry returns the stack entry of the VPC.
func (v *VPC) Entry() *stack.Entry { return v.entry }

// CIDR returns the VPC's address block.
func (v *VPC) CIDR() string { return v.cidr }

// Scope returns the VPC's construct scope.
func (v *VPC) Scope() stack.Scope { return v.scope }

// Subnets returns every subnet in declaration order.
func (v *VPC) Subnets() []*Subnet {
	out := make([]*Subnet, len(v.subnets))
	copy(out, v.subnets)
	return out
}

// SubnetsOfType returns the subnets of one tier.
func (v *VPC) SubnetsOfType(t SubnetType) []*Subnet {
	var out []*Subnet
	for _, s := range v.subnets {
		if s.Type == t {
			out = append(out, s)
		}
	}
	return out
}

// InternetGateway returns the internet gateway entry, or nil when the VPC
// has no public tier.
func (v *VPC) InternetGateway() *stack.Entry { return v.internetGateway }

// FlowLogOptions configures a VPC flow log delivered to CloudWatch Logs.
type FlowLogOptions struct {
	LogGroup    *stack.Entry
	TrafficType string
}

// FlowLog is a declared flow log with its delivery role.
type FlowLog struct {
	Entry  *stack.Entry
	Role   *stack.Entry
	Policy *stack.Entry
}

// AddFlowLog captures the VPC's traffic into a CloudWatch log group. The
// flow-log service assumes a role allowed to write to that group.
func (v *VPC) AddFlowLog(id string, opts FlowLogOptions) *FlowLog {
	sc := v.scope.Child(id)
	trafficType := opts.TrafficType
	if trafficType == "" {
		trafficType = "ALL"
	}

	role := sc.Add("IAMRole", &iam.Role{
		AssumeRolePolicyDocument: intrinsics.NewPolicyDocument(intrinsics.PolicyStatement{
			Effect:    "Allow",
			Principal: intrinsics.ServicePrincipal{"vpc-flow-logs.amazonaws.com"},
			Action:    "sts:AssumeRole",
		}),
		Tags: []any{intrinsics.Tag{Key: "Name", Value: sc.Path()}},
	})
	policy := sc.Add("IAMRoleDefaultPolicy", &iam.Policy{
		PolicyName: sc.LogicalID("IAMRoleDefaultPolicy"),
		PolicyDocument: intrinsics.NewPolicyDocument(
			intrinsics.PolicyStatement{
				Effect: "Allow",
				Action: intrinsics.Any(
					"logs:CreateLogStream",
					"logs:PutLogEvents",
					"logs:DescribeLogStreams",
				),
				Resource: opts.LogGroup.GetAtt("Arn"),
			},
			intrinsics.PolicyStatement{
				Effect:   "Allow",
				Action:   "iam:PassRole",
				Resource: role.GetAtt("Arn"),
			},
		),
		Roles: []any{role.Ref()},
	})
	flowLog := sc.Add("FlowLog", &ec2.FlowLog{
		ResourceId:               v.Ref(),
		ResourceKind:             "VPC",
		TrafficType:              trafficType,
		LogDestinationType:       "cloud-watch-logs",
		LogGroupName:             opts.LogGroup.Ref(),
		DeliverLogsPermissionArn: role.GetAtt("Arn"),
		Tags:                     []any{intrinsics.Tag{Key: "Name", Value: sc.Path()}},
	})

	return &FlowLog{Entry: flowLog, Role: role, Policy: policy}
}
