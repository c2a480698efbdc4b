// Package ec2 provides the AWS::EC2 resource types used by the network
// constructs.
//
// Reference-typed fields are declared as any so they accept either a literal
// value or an intrinsic (Ref, GetAtt, Select).
package ec2

// VPC is an AWS::EC2::VPC.
type VPC struct {
	CidrBlock          any    `json:"CidrBlock"`
	EnableDnsHostnames bool   `json:"EnableDnsHostnames"`
	EnableDnsSupport   bool   `json:"EnableDnsSupport"`
	InstanceTenancy    string `json:"InstanceTenancy,omitempty"`
	Tags               []any  `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (VPC) ResourceType() string { return "AWS::EC2::VPC" }

// Subnet is an AWS::EC2::Subnet.
type Subnet struct {
	VpcId               any   `json:"VpcId"`
	CidrBlock           any   `json:"CidrBlock"`
	AvailabilityZone    any   `json:"AvailabilityZone,omitempty"`
	MapPublicIpOnLaunch bool  `json:"MapPublicIpOnLaunch"`
	Tags                []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (Subnet) ResourceType() string { return "AWS::EC2::Subnet" }

// RouteTable is an AWS::EC2::RouteTable.
type RouteTable struct {
	VpcId any   `json:"VpcId"`
	Tags  []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (RouteTable) ResourceType() string { return "AWS::EC2::RouteTable" }

// SubnetRouteTableAssociation is an AWS::EC2::SubnetRouteTableAssociation.
type SubnetRouteTableAssociation struct {
	RouteTableId any `json:"RouteTableId"`
	SubnetId     any `json:"SubnetId"`
}

// ResourceType returns the CloudFormation type.
func (SubnetRouteTableAssociation) ResourceType() string {
	return "AWS::EC2::SubnetRouteTableAssociation"
}

// Route is an AWS::EC2::Route.
type Route struct {
	RouteTableId         any    `json:"RouteTableId"`
	DestinationCidrBlock string `json:"DestinationCidrBlock,omitempty"`
	GatewayId            any    `json:"GatewayId,omitempty"`
	NatGatewayId         any    `json:"NatGatewayId,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (Route) ResourceType() string { return "AWS::EC2::Route" }

// InternetGateway is an AWS::EC2::InternetGateway.
type InternetGateway struct {
	Tags []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (InternetGateway) ResourceType() string { return "AWS::EC2::InternetGateway" }

// VPCGatewayAttachment is an AWS::EC2::VPCGatewayAttachment.
type VPCGatewayAttachment struct {
	VpcId             any `json:"VpcId"`
	InternetGatewayId any `json:"InternetGatewayId,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (VPCGatewayAttachment) ResourceType() string { return "AWS::EC2::VPCGatewayAttachment" }

// FlowLog is an AWS::EC2::FlowLog.
// ResourceKind serializes as the ResourceType property ("VPC", "Subnet",
// "NetworkInterface"); the Go name avoids the ResourceType method.
type FlowLog struct {
	ResourceId               any    `json:"ResourceId"`
	ResourceKind             string `json:"ResourceType"`
	TrafficType              string `json:"TrafficType"`
	LogDestinationType       string `json:"LogDestinationType,omitempty"`
	LogGroupName             any    `json:"LogGroupName,omitempty"`
	DeliverLogsPermissionArn any    `json:"DeliverLogsPermissionArn,omitempty"`
	Tags                     []any  `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (FlowLog) ResourceType() string { return "AWS::EC2::FlowLog" }

// SecurityGroup is an AWS::EC2::SecurityGroup.
type SecurityGroup struct {
	GroupDescription     string                  `json:"GroupDescription"`
	GroupName            string                  `json:"GroupName,omitempty"`
	VpcId                any                     `json:"VpcId,omitempty"`
	SecurityGroupIngress []SecurityGroup_Ingress `json:"SecurityGroupIngress,omitempty"`
	SecurityGroupEgress  []SecurityGroup_Egress  `json:"SecurityGroupEgress,omitempty"`
	Tags                 []any                   `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (SecurityGroup) ResourceType() string { return "AWS::EC2::SecurityGroup" }

// SecurityGroup_Ingress is an inline ingress rule of a SecurityGroup.
type SecurityGroup_Ingress struct {
	IpProtocol            string `json:"IpProtocol"`
	FromPort              *int   `json:"FromPort,omitempty"`
	ToPort                *int   `json:"ToPort,omitempty"`
	CidrIp                string `json:"CidrIp,omitempty"`
	CidrIpv6              string `json:"CidrIpv6,omitempty"`
	SourcePrefixListId    string `json:"SourcePrefixListId,omitempty"`
	SourceSecurityGroupId any    `json:"SourceSecurityGroupId,omitempty"`
	Description           string `json:"Description,omitempty"`
}

// SecurityGroup_Egress is an inline egress rule of a SecurityGroup.
type SecurityGroup_Egress struct {
	IpProtocol                 string `json:"IpProtocol"`
	FromPort                   *int   `json:"FromPort,omitempty"`
	ToPort                     *int   `json:"ToPort,omitempty"`
	CidrIp                     string `json:"CidrIp,omitempty"`
	CidrIpv6                   string `json:"CidrIpv6,omitempty"`
	DestinationPrefixListId    string `json:"DestinationPrefixListId,omitempty"`
	DestinationSecurityGroupId any    `json:"DestinationSecurityGroupId,omitempty"`
	Description                string `json:"Description,omitempty"`
}

// SecurityGroupIngress is a standalone AWS::EC2::SecurityGroupIngress rule.
type SecurityGroupIngress struct {
	GroupId               any    `json:"GroupId"`
	IpProtocol            string `json:"IpProtocol"`
	FromPort              *int   `json:"FromPort,omitempty"`
	ToPort                *int   `json:"ToPort,omitempty"`
	SourceSecurityGroupId any    `json:"SourceSecurityGroupId,omitempty"`
	SourcePrefixListId    string `json:"SourcePrefixListId,omitempty"`
	CidrIp                string `json:"CidrIp,omitempty"`
	CidrIpv6              string `json:"CidrIpv6,omitempty"`
	Description           string `json:"Description,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (SecurityGroupIngress) ResourceType() string { return "AWS::EC2::SecurityGroupIngress" }

// SecurityGroupEgress is a standalone AWS::EC2::SecurityGroupEgress rule.
type SecurityGroupEgress struct {
	GroupId                    any    `json:"GroupId"`
	IpProtocol                 string `json:"IpProtocol"`
	FromPort                   *int   `json:"FromPort,omitempty"`
	ToPort                     *int   `json:"ToPort,omitempty"`
	DestinationSecurityGroupId any    `json:"DestinationSecurityGroupId,omitempty"`
	DestinationPrefixListId    string `json:"DestinationPrefixListId,omitempty"`
	CidrIp                     string `json:"CidrIp,omitempty"`
	CidrIpv6                   string `json:"CidrIpv6,omitempty"`
	Description                string `json:"Description,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (SecurityGroupEgress) ResourceType() string { return "AWS::EC2::SecurityGroupEgress" }
