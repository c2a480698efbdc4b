package network

import (
	"github.com/lex00/wetwire-dmz-go/stack"
)

// Stable names of the four groups. Each is used as GroupName and Name tag.
const (
	InterfaceEndpointGroupName  = "Vpc/InterfaceEndpoint/SecurityGroup"
	ClusterInstanceGroupName    = "Vpc/ClusterInstance/SecurityGroup"
	PublicLoadBalancerGroupName = "Vpc/PublicALB/SecurityGroup"
	VpcLinkGroupName            = "Vpc/VpcLink/SecurityGroup"
)

// SecurityGroupSetProps configures a SecurityGroupSet.
type SecurityGroupSetProps struct {
	VPC *VPC
	// StorageGatewayPrefixListID is the S3 gateway endpoint prefix list.
	StorageGatewayPrefixListID string
	// KeyValueGatewayPrefixListID is the DynamoDB gateway endpoint prefix list.
	KeyValueGatewayPrefixListID string
}

// SecurityGroupSet is the fixed set of groups guarding the network:
//
//	internet ──443/80──▶ PublicLoadBalancer ──tcp──▶ ClusterInstance
//	VpcLink ───────────────────────────────tcp──▶ ClusterInstance
//	ClusterInstance ──443──▶ InterfaceEndpoint, S3 and DynamoDB prefix lists
//
// Nothing else may leave the cluster instances.
type SecurityGroupSet struct {
	VPC                         *VPC
	StorageGatewayPrefixListID  string
	KeyValueGatewayPrefixListID string

	InterfaceEndpointGroup  *SecurityGroup
	ClusterInstanceGroup    *SecurityGroup
	PublicLoadBalancerGroup *SecurityGroup
	VpcLinkGroup            *SecurityGroup
}

// NewSecurityGroupSet declares the four groups and their rules.
func NewSecurityGroupSet(scope stack.Scope, id string, props SecurityGroupSetProps) *SecurityGroupSet {
	sc := scope.Child(id)
	set := &SecurityGroupSet{
		VPC:                         props.VPC,
		StorageGatewayPrefixListID:  props.StorageGatewayPrefixListID,
		KeyValueGatewayPrefixListID: props.KeyValueGatewayPrefixListID,
	}

	// Groups reference each other, so all four exist before any rule.
	set.InterfaceEndpointGroup = NewSecurityGroup(sc, "InterfaceEndpointSecurityGroup", SecurityGroupProps{
		VPC:         props.VPC,
		GroupName:   InterfaceEndpointGroupName,
		Description: "Allows HTTPS access to Interface Endpoints, from within VPC",
	})
	set.ClusterInstanceGroup = NewSecurityGroup(sc, "ClusterInstanceSecurityGroup", SecurityGroupProps{
		VPC:         props.VPC,
		GroupName:   ClusterInstanceGroupName,
		Description: "Controls all netwrok access from cluster/ASG instaces",
	})
	set.PublicLoadBalancerGroup = NewSecurityGroup(sc, "PublicLoadBalancerSecurityGroup", SecurityGroupProps{
		VPC:         props.VPC,
		GroupName:   PublicLoadBalancerGroupName,
		Description: "Allow HTTP access to ec2 instances for - NGINX Server, Tomcat",
	})
	set.VpcLinkGroup = NewSecurityGroup(sc, "VpcLinkSecurityGroup", SecurityGroupProps{
		VPC:         props.VPC,
		GroupName:   VpcLinkGroupName,
		Description: "A security group for the API GW VPC Link",
	})

	set.addRules()
	return set
}

func (s *SecurityGroupSet) addRules() {
	endpoints := s.InterfaceEndpointGroup
	cluster := s.ClusterInstanceGroup
	lb := s.PublicLoadBalancerGroup
	link := s.VpcLinkGroup

	endpoints.AddIngressRule(cluster, TCP(443), "Allow incoming HTTPS traffic from ASG Instances")

	cluster.AddEgressRule(endpoints, TCP(443), "Allow outgoing HTTPS traffic to VPC Enpoint Interfaces")
	cluster.AddEgressRule(PrefixList(s.StorageGatewayPrefixListID), TCP(443), "Allow outgoing HTTPS traffic to s3 Gateway Interfaces")
	cluster.AddEgressRule(PrefixList(s.KeyValueGatewayPrefixListID), TCP(443), "Allow outgoing HTTPS traffic to Dynamo DB Gateway Interfaces")

	lb.AddIngressRule(AnyIPv4(), TCP(443), "Allow Internet access for IPv4 sources over HTTPS")
	lb.AddIngressRule(AnyIPv6(), TCP(443), "Allow Internet access for IPv6 sources over HTTPS")
	lb.AddIngressRule(AnyIPv4(), TCP(80), "Allow Internet access for IPv4 sources over HTTP")
	lb.AddIngressRule(AnyIPv6(), TCP(80), "Allow Internet access for IPv6 sources over HTTP")

	lb.AddEgressRule(cluster, AllTCP(), "Only allow outgoing to ASG instances")
	cluster.AddIngressRule(lb, AllTCP(), "Only allow incoming to ASG instances from load balancer only")

	link.AddEgressRule(cluster, AllTCP(), "Only allow outgoing to ASG instances")
	cluster.AddIngressRule(link, AllTCP(), "Allow access from Api Gw to EC2 instances, through VPC Link")
}

// Groups returns the four groups in declaration order.
func (s *SecurityGroupSet) Groups() []*SecurityGroup {
	return []*SecurityGroup{
		s.InterfaceEndpointGroup,
		s.ClusterInstanceGroup,
		s.PublicLoadBalancerGroup,
		s.VpcLinkGroup,
	}
}

// Group returns the group with the given stable name.
func (s *SecurityGroupSet) Group(name string) (*SecurityGroup, bool) {
	for _, g := range s.Groups() {
		if g.Name() == name {
			return g, true
		}
	}
	return nil, false
}
