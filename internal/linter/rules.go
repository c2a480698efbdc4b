package linter

import (
	"fmt"
	"strings"

	wetwire "github.com/lex00/wetwire-dmz-go"
	"github.com/lex00/wetwire-dmz-go/internal/sgrules"
	"github.com/lex00/wetwire-dmz-go/network"
)

// Rule is the interface for lint rules.
type Rule interface {
	ID() string
	Description() string
	Check(t *wetwire.Template) []Issue
}

// AllRules returns every rule with its default settings.
func AllRules() []Rule {
	return []Rule{
		AllowAllEgress{},
		InternetIngress{AllowedGroups: []string{network.PublicLoadBalancerGroupName}},
		MissingRuleDescription{},
		NATGatewayPresent{},
		FlowLogCoverage{},
		IsolatedSubnetPublicIP{},
		UnretainedFlowLogGroup{},
	}
}

// AllowAllEgress detects groups that can send anywhere: an explicit
// allow-all egress rule, or no egress rule at all, which CloudFormation
// turns into EC2's default allow-all.
type AllowAllEgress struct{}

func (r AllowAllEgress) ID() string { return "DMZ001" }
func (r AllowAllEgress) Description() string {
	return "Security groups must not allow all outbound traffic"
}

func (r AllowAllEgress) Check(t *wetwire.Template) []Issue {
	var issues []Issue
	hasEgress := make(map[string]bool)

	for _, rule := range sgrules.Extract(t) {
		if rule.Direction != sgrules.Egress {
			continue
		}
		hasEgress[rule.Group] = true
		if rule.Peer.IsInternet() && (rule.Protocol == "-1" || (rule.FromPort <= 0 && rule.ToPort >= 65535)) {
			issues = append(issues, Issue{
				Rule:       r.ID(),
				Resource:   rule.Resource,
				Message:    fmt.Sprintf("%s allows all outbound traffic to %s", rule.Group, rule.Peer),
				Suggestion: "Restrict egress to the groups and prefix lists the instances need",
				Severity:   SeverityError,
			})
		}
	}

	for id := range sgrules.Groups(t) {
		if !hasEgress[id] {
			issues = append(issues, Issue{
				Rule:       r.ID(),
				Resource:   id,
				Message:    fmt.Sprintf("%s declares no egress rules and falls back to EC2's default allow-all egress", id),
				Suggestion: "Add the \"Disallow all traffic\" placeholder egress rule",
				Severity:   SeverityError,
			})
		}
	}

	return issues
}

// InternetIngress detects internet ingress outside the internet-facing
// groups, and internet ingress on ports other than HTTP and HTTPS.
type InternetIngress struct {
	AllowedGroups []string
}

func (r InternetIngress) ID() string { return "DMZ002" }
func (r InternetIngress) Description() string {
	return "Only internet-facing groups may accept traffic from the internet"
}

func (r InternetIngress) Check(t *wetwire.Template) []Issue {
	groups := sgrules.Groups(t)
	allowed := make(map[string]bool)
	for _, name := range r.AllowedGroups {
		allowed[name] = true
	}

	var issues []Issue
	for _, rule := range sgrules.Extract(t) {
		if rule.Direction != sgrules.Ingress || !rule.Peer.IsInternet() {
			continue
		}
		name := groups[rule.Group]
		if name == "" {
			name = rule.Group
		}

		switch {
		case !allowed[name]:
			issues = append(issues, Issue{
				Rule:       r.ID(),
				Resource:   rule.Resource,
				Message:    fmt.Sprintf("%s accepts %s traffic from %s but is not internet facing", name, rule.Ports(), rule.Peer),
				Suggestion: "Route internet traffic through the public load balancer group",
				Severity:   SeverityError,
			})
		case rule.Protocol != "tcp" || rule.FromPort != rule.ToPort || (rule.FromPort != 80 && rule.FromPort != 443):
			issues = append(issues, Issue{
				Rule:       r.ID(),
				Resource:   rule.Resource,
				Message:    fmt.Sprintf("%s accepts %s from %s; only tcp/80 and tcp/443 are expected", name, rule.Ports(), rule.Peer),
				Severity:   SeverityWarning,
			})
		}
	}
	return issues
}

// MissingRuleDescription detects rules without a description.
type MissingRuleDescription struct{}

func (r MissingRuleDescription) ID() string { return "DMZ003" }
func (r MissingRuleDescription) Description() string {
	return "Security group rules should carry a description"
}

func (r MissingRuleDescription) Check(t *wetwire.Template) []Issue {
	var issues []Issue
	for _, rule := range sgrules.Extract(t) {
		if strings.TrimSpace(rule.Description) != "" {
			continue
		}
		issues = append(issues, Issue{
			Rule:     r.ID(),
			Resource: rule.Resource,
			Message:  fmt.Sprintf("%s rule %s %s has no description", rule.Direction, rule.Ports(), rule.Peer),
			Severity: SeverityWarning,
		})
	}
	return issues
}

// NATGatewayPresent detects NAT gateways and routes through them. The
// isolated tier must have no path out of the VPC.
type NATGatewayPresent struct{}

func (r NATGatewayPresent) ID() string { return "DMZ004" }
func (r NATGatewayPresent) Description() string {
	return "The network must not contain NAT gateways"
}

func (r NATGatewayPresent) Check(t *wetwire.Template) []Issue {
	var issues []Issue
	for _, name := range t.ResourcesOfType("AWS::EC2::NatGateway") {
		issues = append(issues, Issue{
			Rule:     r.ID(),
			Resource: name,
			Message:  "NAT gateway declared",
			Severity: SeverityError,
		})
	}
	for _, name := range t.ResourcesOfType("AWS::EC2::Route") {
		if _, ok := t.Resources[name].Properties["NatGatewayId"]; ok {
			issues = append(issues, Issue{
				Rule:     r.ID(),
				Resource: name,
				Message:  "route targets a NAT gateway",
				Severity: SeverityError,
			})
		}
	}
	return issues
}

// FlowLogCoverage detects VPCs without a flow log capturing ALL traffic.
type FlowLogCoverage struct{}

func (r FlowLogCoverage) ID() string { return "DMZ005" }
func (r FlowLogCoverage) Description() string {
	return "Every VPC needs a flow log capturing ALL traffic"
}

func (r FlowLogCoverage) Check(t *wetwire.Template) []Issue {
	covered := make(map[string]bool)
	for _, name := range t.ResourcesOfType("AWS::EC2::FlowLog") {
		props := t.Resources[name].Properties
		if props["ResourceType"] != "VPC" || props["TrafficType"] != "ALL" {
			continue
		}
		if ref, ok := props["ResourceId"].(map[string]any); ok {
			if vpc, ok := ref["Ref"].(string); ok {
				covered[vpc] = true
			}
		}
	}

	var issues []Issue
	for _, name := range t.ResourcesOfType("AWS::EC2::VPC") {
		if covered[name] {
			continue
		}
		issues = append(issues, Issue{
			Rule:       r.ID(),
			Resource:   name,
			Message:    "VPC has no flow log capturing ALL traffic",
			Suggestion: "Add an AWS::EC2::FlowLog with ResourceType VPC and TrafficType ALL",
			Severity:   SeverityError,
		})
	}
	return issues
}

// IsolatedSubnetPublicIP detects isolated subnets that map public IPs.
type IsolatedSubnetPublicIP struct{}

func (r IsolatedSubnetPublicIP) ID() string { return "DMZ006" }
func (r IsolatedSubnetPublicIP) Description() string {
	return "Isolated subnets must not assign public IPs"
}

func (r IsolatedSubnetPublicIP) Check(t *wetwire.Template) []Issue {
	var issues []Issue
	for _, name := range t.ResourcesOfType("AWS::EC2::Subnet") {
		props := t.Resources[name].Properties
		if tagValue(props, "subnet-type") != "Isolated" {
			continue
		}
		if public, _ := props["MapPublicIpOnLaunch"].(bool); public {
			issues = append(issues, Issue{
				Rule:     r.ID(),
				Resource: name,
				Message:  "isolated subnet maps public IPs on launch",
				Severity: SeverityError,
			})
		}
	}
	return issues
}

// UnretainedFlowLogGroup detects flow log groups that would be deleted
// with the stack.
type UnretainedFlowLogGroup struct{}

func (r UnretainedFlowLogGroup) ID() string { return "DMZ007" }
func (r UnretainedFlowLogGroup) Description() string {
	return "Flow log groups should be retained on stack deletion"
}

func (r UnretainedFlowLogGroup) Check(t *wetwire.Template) []Issue {
	var issues []Issue
	for _, name := range t.ResourcesOfType("AWS::EC2::FlowLog") {
		ref, ok := t.Resources[name].Properties["LogGroupName"].(map[string]any)
		if !ok {
			continue
		}
		group, _ := ref["Ref"].(string)
		def, ok := t.Resources[group]
		if !ok || def.DeletionPolicy == "Retain" {
			continue
		}
		issues = append(issues, Issue{
			Rule:       r.ID(),
			Resource:   group,
			Message:    fmt.Sprintf("log group receiving %s is deleted with the stack", name),
			Suggestion: "Set DeletionPolicy and UpdateReplacePolicy to Retain",
			Severity:   SeverityWarning,
		})
	}
	return issues
}

func tagValue(props map[string]any, key string) string {
	tags, _ := props["Tags"].([]any)
	for _, raw := range tags {
		tag, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if tag["Key"] == key {
			v, _ := tag["Value"].(string)
			return v
		}
	}
	return ""
}
