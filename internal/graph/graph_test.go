package graph

import (
	"strings"
	"testing"

	wetwire "github.com/lex00/wetwire-dmz-go"
)

func ruleTemplate() *wetwire.Template {
	return &wetwire.Template{
		Resources: map[string]wetwire.ResourceDef{
			"LbGroup": {
				Type: "AWS::EC2::SecurityGroup",
				Properties: map[string]any{
					"GroupName": "Vpc/PublicALB/SecurityGroup",
					"SecurityGroupIngress": []any{
						map[string]any{"IpProtocol": "tcp", "FromPort": float64(443), "ToPort": float64(443), "CidrIp": "0.0.0.0/0"},
					},
				},
			},
			"ClusterGroup": {
				Type: "AWS::EC2::SecurityGroup",
				Properties: map[string]any{
					"GroupName": "Vpc/ClusterInstance/SecurityGroup",
					"SecurityGroupEgress": []any{
						map[string]any{"IpProtocol": "tcp", "FromPort": float64(443), "ToPort": float64(443), "DestinationPrefixListId": "pl-78a54011"},
					},
				},
			},
			"LinkGroup": {
				Type: "AWS::EC2::SecurityGroup",
				Properties: map[string]any{
					"GroupName": "Vpc/VpcLink/SecurityGroup",
					"SecurityGroupEgress": []any{
						map[string]any{"IpProtocol": "icmp", "FromPort": float64(252), "ToPort": float64(86), "CidrIp": "255.255.255.255/32"},
					},
				},
			},
			"LbEgressToCluster": {
				Type: "AWS::EC2::SecurityGroupEgress",
				Properties: map[string]any{
					"GroupId":                    map[string]any{"Fn::GetAtt": []any{"LbGroup", "GroupId"}},
					"DestinationSecurityGroupId": map[string]any{"Fn::GetAtt": []any{"ClusterGroup", "GroupId"}},
					"IpProtocol":                 "tcp",
					"FromPort":                   float64(0),
					"ToPort":                     float64(65535),
				},
			},
			"ClusterIngressFromLb": {
				Type: "AWS::EC2::SecurityGroupIngress",
				Properties: map[string]any{
					"GroupId":               map[string]any{"Fn::GetAtt": []any{"ClusterGroup", "GroupId"}},
					"SourceSecurityGroupId": map[string]any{"Fn::GetAtt": []any{"LbGroup", "GroupId"}},
					"IpProtocol":            "tcp",
					"FromPort":              float64(0),
					"ToPort":                float64(65535),
				},
			},
		},
	}
}

func TestGenerator_Generate_RuleGraph(t *testing.T) {
	gen := &Generator{}
	var sb strings.Builder
	err := gen.Generate(ruleTemplate(), &sb)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := sb.String()

	if !strings.Contains(output, "digraph") {
		t.Error("expected digraph declaration")
	}
	if !strings.Contains(output, "cluster_vpc") {
		t.Error("expected VPC cluster")
	}
	for _, want := range []string{
		"Vpc/PublicALB/SecurityGroup",
		"Vpc/ClusterInstance/SecurityGroup",
		"internet 0.0.0.0/0",
		"prefix list pl-78a54011",
		"tcp/443",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}

	// The LB to cluster flow is declared on both groups but drawn once
	if n := strings.Count(output, "tcp/all"); n != 1 {
		t.Errorf("expected one tcp/all edge, got %d:\n%s", n, output)
	}

	if strings.Contains(output, "255.255.255.255/32") {
		t.Error("expected placeholder egress to be hidden")
	}
}

func TestGenerator_Generate_IncludePlaceholders(t *testing.T) {
	gen := &Generator{IncludePlaceholders: true}
	output, err := gen.GenerateString(ruleTemplate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(output, "255.255.255.255/32") {
		t.Error("expected placeholder egress to be drawn")
	}
	if !strings.Contains(output, "dotted") {
		t.Error("expected placeholder edge to be dotted")
	}
}

func TestGenerator_Generate_ResourceGraph(t *testing.T) {
	tmpl := &wetwire.Template{
		Resources: map[string]wetwire.ResourceDef{
			"Vpc": {Type: "AWS::EC2::VPC"},
			"Subnet": {
				Type:       "AWS::EC2::Subnet",
				Properties: map[string]any{"VpcId": map[string]any{"Ref": "Vpc"}},
			},
			"Role": {Type: "AWS::IAM::Role"},
			"FlowLog": {
				Type: "AWS::EC2::FlowLog",
				Properties: map[string]any{
					"ResourceId":               map[string]any{"Ref": "Vpc"},
					"DeliverLogsPermissionArn": map[string]any{"Fn::GetAtt": []any{"Role", "Arn"}},
				},
			},
		},
	}

	gen := &Generator{Kind: KindResources}
	output, err := gen.GenerateString(tmpl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"Vpc", "Subnet", "FlowLog", "AWS::EC2::FlowLog"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output", want)
		}
	}
	if !strings.Contains(output, "blue") {
		t.Error("expected GetAtt edge to be colored")
	}
}

func TestGenerator_Generate_ClusterByType(t *testing.T) {
	tmpl := &wetwire.Template{
		Resources: map[string]wetwire.ResourceDef{
			"Vpc":    {Type: "AWS::EC2::VPC"},
			"Subnet": {Type: "AWS::EC2::Subnet"},
			"Role":   {Type: "AWS::IAM::Role"},
		},
	}

	gen := &Generator{Kind: KindResources, ClusterByType: true}
	output, err := gen.GenerateString(tmpl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(output, "cluster_EC2") {
		t.Error("expected EC2 cluster subgraph")
	}
	if strings.Contains(output, "cluster_IAM") {
		t.Error("expected no cluster for a single IAM resource")
	}
}

func TestGenerator_Generate_MermaidFormat(t *testing.T) {
	gen := &Generator{Format: FormatMermaid, Kind: KindResources}
	output, err := gen.GenerateString(ruleTemplate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(output, "graph") && !strings.Contains(output, "flowchart") {
		t.Errorf("expected mermaid graph/flowchart, got:\n%s", output)
	}
	if strings.Contains(output, "digraph") {
		t.Error("expected mermaid format, not DOT")
	}
}

func TestExtractService(t *testing.T) {
	tests := map[string]string{
		"AWS::EC2::VPC":       "EC2",
		"AWS::Logs::LogGroup": "Logs",
		"Custom":              "Other",
	}
	for in, want := range tests {
		if got := extractService(in); got != want {
			t.Errorf("extractService(%q) = %q, want %q", in, got, want)
		}
	}
}
