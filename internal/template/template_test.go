package template

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wetwire "github.com/lex00/wetwire-dmz-go"
	"github.com/lex00/wetwire-dmz-go/intrinsics"
	"github.com/lex00/wetwire-dmz-go/resources/ec2"
	"github.com/lex00/wetwire-dmz-go/resources/logs"
	"github.com/lex00/wetwire-dmz-go/stack"
)

func TestBuilder_Build_SimpleResource(t *testing.T) {
	st := stack.New("Test")
	st.Scope().Add("Vpc", &ec2.VPC{CidrBlock: "10.0.0.0/16", EnableDnsSupport: true})

	template, err := NewBuilder(st).Build()
	require.NoError(t, err)

	assert.Equal(t, "2010-09-09", template.AWSTemplateFormatVersion)
	assert.Len(t, template.Resources, 1)

	vpc := template.Resources["Vpc"]
	assert.Equal(t, "AWS::EC2::VPC", vpc.Type)
	assert.Equal(t, "10.0.0.0/16", vpc.Properties["CidrBlock"])
	assert.Equal(t, true, vpc.Properties["EnableDnsSupport"])
}

func TestBuilder_Order_WithDependencies(t *testing.T) {
	st := stack.New("Test")
	root := st.Scope()
	vpc := root.Add("Vpc", &ec2.VPC{CidrBlock: "10.0.0.0/16"})
	subnet := root.Add("ASubnet", &ec2.Subnet{VpcId: vpc.Ref(), CidrBlock: "10.0.0.0/24"})
	rt := root.Add("ARouteTable", &ec2.RouteTable{VpcId: vpc.Ref()})
	root.Add("AAssociation", &ec2.SubnetRouteTableAssociation{
		RouteTableId: rt.Ref(),
		SubnetId:     subnet.Ref(),
	})

	order, err := NewBuilder(st).Order()
	require.NoError(t, err)
	require.Len(t, order, 4)

	pos := make(map[string]int)
	for i, name := range order {
		pos[name] = i
	}
	assert.Less(t, pos["Vpc"], pos["ASubnet"])
	assert.Less(t, pos["Vpc"], pos["ARouteTable"])
	assert.Less(t, pos["ASubnet"], pos["AAssociation"])
	assert.Less(t, pos["ARouteTable"], pos["AAssociation"])
}

func TestBuilder_Order_Deterministic(t *testing.T) {
	build := func() []string {
		st := stack.New("Test")
		root := st.Scope()
		vpc := root.Add("Vpc", &ec2.VPC{CidrBlock: "10.0.0.0/16"})
		for _, id := range []string{"C", "A", "B"} {
			root.Add(id, &ec2.RouteTable{VpcId: vpc.Ref()})
		}
		order, err := NewBuilder(st).Order()
		require.NoError(t, err)
		return order
	}

	assert.Equal(t, []string{"Vpc", "A", "B", "C"}, build())
	assert.Equal(t, build(), build())
}

func TestBuilder_Build_DependsOnAndPolicies(t *testing.T) {
	st := stack.New("Test")
	root := st.Scope()
	vpc := root.Add("Vpc", &ec2.VPC{CidrBlock: "10.0.0.0/16"})
	igw := root.Add("Igw", &ec2.InternetGateway{})
	attach := root.Add("Attach", &ec2.VPCGatewayAttachment{VpcId: vpc.Ref(), InternetGatewayId: igw.Ref()})
	rt := root.Add("Rt", &ec2.RouteTable{VpcId: vpc.Ref()})
	root.Add("Route", &ec2.Route{
		RouteTableId:         rt.Ref(),
		DestinationCidrBlock: "0.0.0.0/0",
		GatewayId:            igw.Ref(),
	}, stack.DependsOn(attach))
	root.Add("Logs", &logs.LogGroup{LogGroupName: "/vpc/flowLogs", RetentionInDays: 7}, stack.Retain())

	template, err := NewBuilder(st).Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"Attach"}, template.Resources["Route"].DependsOn)
	assert.Equal(t, "Retain", template.Resources["Logs"].DeletionPolicy)
	assert.Equal(t, "Retain", template.Resources["Logs"].UpdateReplacePolicy)
	assert.Empty(t, template.Resources["Rt"].DeletionPolicy)

	order, err := NewBuilder(st).Order()
	require.NoError(t, err)
	assert.Less(t, indexOf(order, "Attach"), indexOf(order, "Route"))
}

func TestBuilder_Build_PseudoParametersAreNotDependencies(t *testing.T) {
	st := stack.New("Test")
	st.Scope().Add("Logs", &logs.LogGroup{LogGroupName: "/vpc/flowLogs"})
	st.Scope().AddOutput("Region", intrinsics.AWS_REGION, "", "")

	template, err := NewBuilder(st).Build()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"Ref": "AWS::Region"}, template.Outputs["Region"].Value)
}

func TestBuilder_Build_UndeclaredReference(t *testing.T) {
	st := stack.New("Test")
	st.Scope().Add("Subnet", &ec2.Subnet{VpcId: intrinsics.Ref{LogicalName: "Missing"}, CidrBlock: "10.0.0.0/24"})

	_, err := NewBuilder(st).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undeclared resource Missing")
}

func TestBuilder_Build_StackErrorsFailSynthesis(t *testing.T) {
	st := stack.New("Test")
	sc := st.Scope().Child("Network")
	sc.Add("Vpc", &ec2.VPC{CidrBlock: "bogus"})
	sentinel := errors.New("invalid CIDR")
	sc.Fail(sentinel)

	template, err := NewBuilder(st).Build()
	require.Error(t, err)
	assert.Nil(t, template)
	assert.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), "Network: invalid CIDR")
}

func TestBuilder_Build_Cycle(t *testing.T) {
	st := stack.New("Test")
	root := st.Scope()
	root.Add("A", &ec2.SecurityGroupIngress{GroupId: intrinsics.GetAtt{LogicalName: "B", Attribute: "GroupId"}, IpProtocol: "tcp"})
	root.Add("B", &ec2.SecurityGroupIngress{GroupId: intrinsics.GetAtt{LogicalName: "A", Attribute: "GroupId"}, IpProtocol: "tcp"})

	_, err := NewBuilder(st).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular dependency")
}

func TestBuilder_Build_Outputs(t *testing.T) {
	st := stack.New("Test")
	vpc := st.Scope().Add("Vpc", &ec2.VPC{CidrBlock: "10.0.0.0/16"})
	st.Scope().AddOutput("vpcId", vpc.Ref(), "The Id of the VPC", "vpcId")

	template, err := NewBuilder(st).Build()
	require.NoError(t, err)

	require.Contains(t, template.Outputs, "vpcId")
	out := template.Outputs["vpcId"]
	assert.Equal(t, "The Id of the VPC", out.Description)
	assert.Equal(t, map[string]any{"Ref": "Vpc"}, out.Value)
	require.NotNil(t, out.Export)
	assert.Equal(t, "vpcId", out.Export.Name)
}

func TestToJSON(t *testing.T) {
	st := stack.New("Test")
	st.Description = "test stack"
	st.Scope().Add("Vpc", &ec2.VPC{CidrBlock: "10.0.0.0/16"})

	template, err := NewBuilder(st).Build()
	require.NoError(t, err)

	data, err := ToJSON(template)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, "2010-09-09", parsed["AWSTemplateFormatVersion"])
	assert.Equal(t, "test stack", parsed["Description"])
	assert.Contains(t, parsed["Resources"], "Vpc")
}

func TestToYAML(t *testing.T) {
	st := stack.New("Test")
	st.Scope().Add("Vpc", &ec2.VPC{CidrBlock: "10.0.0.0/16"})

	template, err := NewBuilder(st).Build()
	require.NoError(t, err)

	data, err := ToYAML(template)
	require.NoError(t, err)

	out := string(data)
	assert.True(t, strings.Contains(out, "AWSTemplateFormatVersion: \"2010-09-09\"") ||
		strings.Contains(out, "AWSTemplateFormatVersion: '2010-09-09'"))
	assert.Contains(t, out, "Type: AWS::EC2::VPC")
	assert.Contains(t, out, "CidrBlock: 10.0.0.0/16")
}

func TestCollectRefs(t *testing.T) {
	value := map[string]any{
		"A": map[string]any{"Ref": "Vpc"},
		"B": []any{map[string]any{"Fn::GetAtt": []any{"Role", "Arn"}}},
		"C": map[string]any{"Fn::GetAtt": "Group.GroupId"},
		"D": map[string]any{"Fn::Select": []any{0, map[string]any{"Fn::GetAZs": ""}}},
	}

	assert.Equal(t, []string{"Vpc", "Role", "Group"}, collectRefs(value, nil))
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func TestReferences(t *testing.T) {
	def := wetwire.ResourceDef{
		Type: "AWS::EC2::Route",
		Properties: map[string]any{
			"RouteTableId": map[string]any{"Ref": "Rt"},
			"GatewayId":    map[string]any{"Ref": "Igw"},
			"Region":       map[string]any{"Ref": "AWS::Region"},
		},
		DependsOn: []string{"Attach", "Igw"},
	}

	assert.ElementsMatch(t, []string{"Rt", "Igw", "Attach"}, References(def))
}
