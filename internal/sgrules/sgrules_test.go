package sgrules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wetwire "github.com/lex00/wetwire-dmz-go"
)

func testTemplate() *wetwire.Template {
	return &wetwire.Template{
		Resources: map[string]wetwire.ResourceDef{
			"Lb": {
				Type: TypeSecurityGroup,
				Properties: map[string]any{
					"GroupName": "Vpc/PublicALB/SecurityGroup",
					"SecurityGroupIngress": []any{
						map[string]any{"IpProtocol": "tcp", "FromPort": float64(443), "ToPort": float64(443), "CidrIp": "0.0.0.0/0", "Description": "https"},
						map[string]any{"IpProtocol": "tcp", "FromPort": 80, "ToPort": 80, "CidrIpv6": "::/0"},
					},
				},
			},
			"Cluster": {
				Type: TypeSecurityGroup,
				Properties: map[string]any{
					"GroupName": "Vpc/ClusterInstance/SecurityGroup",
					"SecurityGroupEgress": []any{
						map[string]any{"IpProtocol": "tcp", "FromPort": float64(443), "ToPort": float64(443), "DestinationPrefixListId": "pl-1"},
					},
				},
			},
			"Link": {
				Type: TypeSecurityGroup,
				Properties: map[string]any{
					"SecurityGroupEgress": []any{
						map[string]any{"IpProtocol": "icmp", "FromPort": float64(252), "ToPort": float64(86), "CidrIp": "255.255.255.255/32"},
					},
				},
			},
			"ClusterFromLb": {
				Type: TypeSecurityGroupIngress,
				Properties: map[string]any{
					"GroupId":               map[string]any{"Fn::GetAtt": []any{"Cluster", "GroupId"}},
					"SourceSecurityGroupId": map[string]any{"Fn::GetAtt": []any{"Lb", "GroupId"}},
					"IpProtocol":            "tcp",
					"FromPort":              float64(0),
					"ToPort":                float64(65535),
				},
			},
			"Bucket": {Type: "AWS::S3::Bucket"},
		},
	}
}

func TestGroups(t *testing.T) {
	groups := Groups(testTemplate())

	assert.Equal(t, map[string]string{
		"Cluster": "Vpc/ClusterInstance/SecurityGroup",
		"Lb":      "Vpc/PublicALB/SecurityGroup",
		"Link":    "Link",
	}, groups)
}

func TestExtract(t *testing.T) {
	rules := Extract(testTemplate())
	require.Len(t, rules, 5)

	// Sorted by declaring resource: Cluster, ClusterFromLb, Lb, Lb, Link
	egress := rules[0]
	assert.Equal(t, "Cluster", egress.Group)
	assert.Equal(t, Egress, egress.Direction)
	assert.Equal(t, Peer{Kind: PeerPrefixList, ID: "pl-1"}, egress.Peer)
	assert.Equal(t, "tcp/443", egress.Ports())

	standalone := rules[1]
	assert.Equal(t, "Cluster", standalone.Group)
	assert.Equal(t, "ClusterFromLb", standalone.Resource)
	assert.Equal(t, Ingress, standalone.Direction)
	assert.Equal(t, Peer{Kind: PeerGroup, ID: "Lb"}, standalone.Peer)
	assert.Equal(t, "tcp/all", standalone.Ports())

	assert.True(t, rules[2].Peer.IsInternet())
	assert.Equal(t, "https", rules[2].Description)
	assert.True(t, rules[3].Peer.IsInternet())
	assert.Equal(t, "tcp/80", rules[3].Ports())

	assert.True(t, rules[4].Placeholder)
	assert.False(t, rules[0].Placeholder)
}

func TestRule_Ports(t *testing.T) {
	tests := []struct {
		rule Rule
		want string
	}{
		{Rule{Protocol: "-1"}, "all"},
		{Rule{Protocol: "tcp", FromPort: 0, ToPort: 65535}, "tcp/all"},
		{Rule{Protocol: "tcp", FromPort: 443, ToPort: 443}, "tcp/443"},
		{Rule{Protocol: "udp", FromPort: 1000, ToPort: 2000}, "udp/1000-2000"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.Ports())
		})
	}
}

func TestReferencedName(t *testing.T) {
	assert.Equal(t, "sg-123", referencedName("sg-123"))
	assert.Equal(t, "Vpc", referencedName(map[string]any{"Ref": "Vpc"}))
	assert.Equal(t, "Sg", referencedName(map[string]any{"Fn::GetAtt": []any{"Sg", "GroupId"}}))
}
