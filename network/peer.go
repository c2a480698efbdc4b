package network

import (
	"github.com/lex00/wetwire-dmz-go/resources/ec2"
)

// Peer is the other end of a security group rule: another group, a prefix
// list, or an address range.
type Peer interface {
	// String identifies the peer in graphs and rule listings.
	String() string

	// inline reports whether the rule can live inside the group's own
	// SecurityGroupIngress/SecurityGroupEgress properties.
	inline() bool
	ingressRule(port Port, description string) ec2.SecurityGroup_Ingress
	egressRule(port Port, description string) ec2.SecurityGroup_Egress
}

// AnyIPv4 matches every IPv4 address.
func AnyIPv4() Peer { return cidrPeer{cidr: "0.0.0.0/0"} }

// AnyIPv6 matches every IPv6 address.
func AnyIPv6() Peer { return cidrPeer{cidr: "::/0", v6: true} }

// IPv4 matches a single IPv4 CIDR block.
func IPv4(cidr string) Peer { return cidrPeer{cidr: cidr} }

// PrefixList matches the address ranges of a managed prefix list, such as
// the one behind an S3 or DynamoDB gateway endpoint.
func PrefixList(id string) Peer { return prefixListPeer{id: id} }

type cidrPeer struct {
	cidr string
	v6   bool
}

func (p cidrPeer) String() string { return p.cidr }
func (p cidrPeer) inline() bool   { return true }

func (p cidrPeer) ingressRule(port Port, description string) ec2.SecurityGroup_Ingress {
	r := ec2.SecurityGroup_Ingress{
		IpProtocol:  port.Protocol,
		FromPort:    port.fromPtr(),
		ToPort:      port.toPtr(),
		Description: description,
	}
	if p.v6 {
		r.CidrIpv6 = p.cidr
	} else {
		r.CidrIp = p.cidr
	}
	return r
}

func (p cidrPeer) egressRule(port Port, description string) ec2.SecurityGroup_Egress {
	r := ec2.SecurityGroup_Egress{
		IpProtocol:  port.Protocol,
		FromPort:    port.fromPtr(),
		ToPort:      port.toPtr(),
		Description: description,
	}
	if p.v6 {
		r.CidrIpv6 = p.cidr
	} else {
		r.CidrIp = p.cidr
	}
	return r
}

type prefixListPeer struct {
	id string
}

func (p prefixListPeer) String() string { return p.id }
func (p prefixListPeer) inline() bool   { return true }

func (p prefixListPeer) ingressRule(port Port, description string) ec2.SecurityGroup_Ingress {
	return ec2.SecurityGroup_Ingress{
		IpProtocol:         port.Protocol,
		FromPort:           port.fromPtr(),
		ToPort:             port.toPtr(),
		SourcePrefixListId: p.id,
		Description:        description,
	}
}

func (p prefixListPeer) egressRule(port Port, description string) ec2.SecurityGroup_Egress {
	return ec2.SecurityGroup_Egress{
		IpProtocol:              port.Protocol,
		FromPort:                port.fromPtr(),
		ToPort:                  port.toPtr(),
		DestinationPrefixListId: p.id,
		Description:             description,
	}
}
