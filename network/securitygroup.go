package network

import (
	"fmt"

	"github.com/lex00/wetwire-dmz-go/intrinsics"
	"github.com/lex00/wetwire-dmz-go/resources/ec2"
	"github.com/lex00/wetwire-dmz-go/stack"
)

// Direction is the traffic direction of a rule.
type Direction string

const (
	Ingress Direction = "ingress"
	Egress  Direction = "egress"
)

// Rule is a declared security group rule, kept on the group handle for
// inspection.
type Rule struct {
	Direction   Direction
	Peer        Peer
	Port        Port
	Description string
	// Standalone is the separate rule resource, set when the peer is a group.
	Standalone *stack.Entry
}

// noTrafficEgress keeps CloudFormation from applying EC2's implicit
// allow-all egress to a group that has no egress rule of its own.
var noTrafficEgress = ec2.SecurityGroup_Egress{
	IpProtocol:  "icmp",
	FromPort:    intrinsics.IntPtr(252),
	ToPort:      intrinsics.IntPtr(86),
	CidrIp:      "255.255.255.255/32",
	Description: "Disallow all traffic",
}

var allowAllEgress = ec2.SecurityGroup_Egress{
	IpProtocol:  "-1",
	CidrIp:      "0.0.0.0/0",
	Description: "Allow all outbound traffic by default",
}

// SecurityGroupProps configures a single security group.
type SecurityGroupProps struct {
	VPC              *VPC
	GroupName        string
	Description      string
	AllowAllOutbound bool
}

// SecurityGroup is a handle on a declared AWS::EC2::SecurityGroup.
// It is itself a Peer: rules whose peer is a group are emitted as standalone
// SecurityGroupIngress/SecurityGroupEgress resources.
type SecurityGroup struct {
	scope            stack.Scope
	entry            *stack.Entry
	resource         *ec2.SecurityGroup
	name             string
	allowAllOutbound bool
	rules            []Rule
}

// NewSecurityGroup declares a security group in the VPC.
func NewSecurityGroup(scope stack.Scope, id string, props SecurityGroupProps) *SecurityGroup {
	res := &ec2.SecurityGroup{
		GroupDescription: props.Description,
		GroupName:        props.GroupName,
		VpcId:            props.VPC.Ref(),
		Tags:             []any{intrinsics.Tag{Key: "Name", Value: props.GroupName}},
	}
	if props.AllowAllOutbound {
		res.SecurityGroupEgress = []ec2.SecurityGroup_Egress{allowAllEgress}
	} else {
		res.SecurityGroupEgress = []ec2.SecurityGroup_Egress{noTrafficEgress}
	}

	return &SecurityGroup{
		scope:            scope.Child(id),
		entry:            scope.Add(id, res),
		resource:         res,
		name:             props.GroupName,
		allowAllOutbound: props.AllowAllOutbound,
	}
}

// Name returns the group's stable name.
func (g *SecurityGroup) Name() string { return g.name }

// Description returns the group description.
func (g *SecurityGroup) Description() string { return g.resource.GroupDescription }

// LogicalID returns the group's logical ID.
func (g *SecurityGroup) LogicalID() string { return g.entry.LogicalID }

// Entry returns the stack entry of the group.
func (g *SecurityGroup) Entry() *stack.Entry { return g.entry }

// GroupID returns an Fn::GetAtt of the group's ID.
func (g *SecurityGroup) GroupID() intrinsics.GetAtt { return g.entry.GetAtt("GroupId") }

// AllowAllOutbound reports whether the group permits all egress.
func (g *SecurityGroup) AllowAllOutbound() bool { return g.allowAllOutbound }

// Rules returns the rules declared on the group, in declaration order.
func (g *SecurityGroup) Rules() []Rule {
	out := make([]Rule, len(g.rules))
	copy(out, g.rules)
	return out
}

// String implements Peer.
func (g *SecurityGroup) String() string { return g.name }

func (g *SecurityGroup) inline() bool { return false }

func (g *SecurityGroup) ingressRule(port Port, description string) ec2.SecurityGroup_Ingress {
	return ec2.SecurityGroup_Ingress{
		IpProtocol:            port.Protocol,
		FromPort:              port.fromPtr(),
		ToPort:                port.toPtr(),
		SourceSecurityGroupId: g.GroupID(),
		Description:           description,
	}
}

func (g *SecurityGroup) egressRule(port Port, description string) ec2.SecurityGroup_Egress {
	return ec2.SecurityGroup_Egress{
		IpProtocol:                 port.Protocol,
		FromPort:                   port.fromPtr(),
		ToPort:                     port.toPtr(),
		DestinationSecurityGroupId: g.GroupID(),
		Description:                description,
	}
}

// AddIngressRule allows traffic from peer on port.
func (g *SecurityGroup) AddIngressRule(peer Peer, port Port, description string) {
	rule := Rule{Direction: Ingress, Peer: peer, Port: port, Description: description}

	if peer.inline() {
		g.resource.SecurityGroupIngress = append(g.resource.SecurityGroupIngress, peer.ingressRule(port, description))
	} else {
		src := peer.(*SecurityGroup)
		rule.Standalone = g.scope.Add(fmt.Sprintf("from %s:%s", src.LogicalID(), port.idPart()), &ec2.SecurityGroupIngress{
			GroupId:               g.GroupID(),
			IpProtocol:            port.Protocol,
			FromPort:              port.fromPtr(),
			ToPort:                port.toPtr(),
			SourceSecurityGroupId: src.GroupID(),
			Description:           description,
		})
	}

	g.rules = append(g.rules, rule)
}

// AddEgressRule allows traffic to peer on port. The first egress rule
// replaces the "Disallow all traffic" placeholder. Groups that already
// allow all outbound traffic ignore egress rules.
func (g *SecurityGroup) AddEgressRule(peer Peer, port Port, description string) {
	if g.allowAllOutbound {
		return
	}
	g.removeNoTrafficEgress()

	rule := Rule{Direction: Egress, Peer: peer, Port: port, Description: description}

	if peer.inline() {
		g.resource.SecurityGroupEgress = append(g.resource.SecurityGroupEgress, peer.egressRule(port, description))
	} else {
		dst := peer.(*SecurityGroup)
		rule.Standalone = g.scope.Add(fmt.Sprintf("to %s:%s", dst.LogicalID(), port.idPart()), &ec2.SecurityGroupEgress{
			GroupId:                    g.GroupID(),
			IpProtocol:                 port.Protocol,
			FromPort:                   port.fromPtr(),
			ToPort:                     port.toPtr(),
			DestinationSecurityGroupId: dst.GroupID(),
			Description:                description,
		})
	}

	g.rules = append(g.rules, rule)
}

func (g *SecurityGroup) removeNoTrafficEgress() {
	kept := g.resource.SecurityGroupEgress[:0]
	for _, r := range g.resource.SecurityGroupEgress {
		if isNoTrafficEgress(r) {
			continue
		}
		kept = append(kept, r)
	}
	if len(kept) == 0 {
		kept = nil
	}
	g.resource.SecurityGroupEgress = kept
}

func isNoTrafficEgress(r ec2.SecurityGroup_Egress) bool {
	return r.CidrIp == noTrafficEgress.CidrIp &&
		r.IpProtocol == noTrafficEgress.IpProtocol &&
		r.FromPort != nil && *r.FromPort == *noTrafficEgress.FromPort &&
		r.ToPort != nil && *r.ToPort == *noTrafficEgress.ToPort
}
