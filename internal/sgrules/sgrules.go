// Package sgrules reads security group rules back out of a synthesized
// template, whether they are inlined on the group or declared as standalone
// SecurityGroupIngress/SecurityGroupEgress resources.
package sgrules

import (
	"fmt"
	"sort"

	wetwire "github.com/lex00/wetwire-dmz-go"
)

// CloudFormation types the package understands.
const (
	TypeSecurityGroup        = "AWS::EC2::SecurityGroup"
	TypeSecurityGroupIngress = "AWS::EC2::SecurityGroupIngress"
	TypeSecurityGroupEgress  = "AWS::EC2::SecurityGroupEgress"
)

// Direction of a rule.
type Direction string

const (
	Ingress Direction = "ingress"
	Egress  Direction = "egress"
)

// PeerKind classifies the other end of a rule.
type PeerKind string

const (
	PeerGroup      PeerKind = "group"
	PeerPrefixList PeerKind = "prefix-list"
	PeerCIDR       PeerKind = "cidr"
	PeerUnknown    PeerKind = "unknown"
)

// Peer is the other end of a rule. For PeerGroup, ID is the logical ID when
// the group is declared in the template, otherwise the literal group ID.
type Peer struct {
	Kind PeerKind
	ID   string
}

// IsInternet reports whether the peer is the whole IPv4 or IPv6 internet.
func (p Peer) IsInternet() bool {
	return p.Kind == PeerCIDR && (p.ID == "0.0.0.0/0" || p.ID == "::/0")
}

func (p Peer) String() string {
	return p.ID
}

// Rule is one security group rule.
type Rule struct {
	// Group is the logical ID of the group the rule belongs to, or the
	// literal group ID when it is not declared in the template.
	Group string
	// Resource is the logical ID of the resource declaring the rule.
	Resource    string
	Direction   Direction
	Protocol    string
	FromPort    int
	ToPort      int
	Peer        Peer
	Description string
	// Placeholder marks the "Disallow all traffic" egress that keeps a
	// group's egress closed.
	Placeholder bool
}

// Ports renders the rule's port range.
func (r Rule) Ports() string {
	switch {
	case r.Protocol == "-1":
		return "all"
	case r.FromPort == 0 && r.ToPort == 65535:
		return r.Protocol + "/all"
	case r.FromPort == r.ToPort:
		return fmt.Sprintf("%s/%d", r.Protocol, r.FromPort)
	default:
		return fmt.Sprintf("%s/%d-%d", r.Protocol, r.FromPort, r.ToPort)
	}
}

// Groups returns the security groups in the template, logical ID to
// GroupName. Groups without a name map to their logical ID.
func Groups(t *wetwire.Template) map[string]string {
	groups := make(map[string]string)
	for _, name := range t.ResourcesOfType(TypeSecurityGroup) {
		groupName, _ := t.Resources[name].Properties["GroupName"].(string)
		if groupName == "" {
			groupName = name
		}
		groups[name] = groupName
	}
	return groups
}

// Extract returns every rule in the template. Rules are ordered by declaring
// resource, then by their position in that resource.
func Extract(t *wetwire.Template) []Rule {
	names := make([]string, 0, len(t.Resources))
	for name := range t.Resources {
		names = append(names, name)
	}
	sort.Strings(names)

	var rules []Rule
	for _, name := range names {
		res := t.Resources[name]
		switch res.Type {
		case TypeSecurityGroup:
			for _, raw := range listOf(res.Properties["SecurityGroupIngress"]) {
				rules = append(rules, parseRule(name, name, Ingress, raw))
			}
			for _, raw := range listOf(res.Properties["SecurityGroupEgress"]) {
				rules = append(rules, parseRule(name, name, Egress, raw))
			}
		case TypeSecurityGroupIngress:
			rules = append(rules, parseRule(name, referencedName(res.Properties["GroupId"]), Ingress, res.Properties))
		case TypeSecurityGroupEgress:
			rules = append(rules, parseRule(name, referencedName(res.Properties["GroupId"]), Egress, res.Properties))
		}
	}
	return rules
}

func parseRule(resource, group string, dir Direction, raw any) Rule {
	props, _ := raw.(map[string]any)
	r := Rule{
		Group:     group,
		Resource:  resource,
		Direction: dir,
		FromPort:  -1,
		ToPort:    -1,
	}
	r.Protocol, _ = props["IpProtocol"].(string)
	r.Description, _ = props["Description"].(string)
	if v, ok := number(props["FromPort"]); ok {
		r.FromPort = v
	}
	if v, ok := number(props["ToPort"]); ok {
		r.ToPort = v
	}

	switch {
	case props["CidrIp"] != nil:
		r.Peer = Peer{Kind: PeerCIDR, ID: fmt.Sprint(props["CidrIp"])}
	case props["CidrIpv6"] != nil:
		r.Peer = Peer{Kind: PeerCIDR, ID: fmt.Sprint(props["CidrIpv6"])}
	case props["SourcePrefixListId"] != nil:
		r.Peer = Peer{Kind: PeerPrefixList, ID: fmt.Sprint(props["SourcePrefixListId"])}
	case props["DestinationPrefixListId"] != nil:
		r.Peer = Peer{Kind: PeerPrefixList, ID: fmt.Sprint(props["DestinationPrefixListId"])}
	case props["SourceSecurityGroupId"] != nil:
		r.Peer = Peer{Kind: PeerGroup, ID: referencedName(props["SourceSecurityGroupId"])}
	case props["DestinationSecurityGroupId"] != nil:
		r.Peer = Peer{Kind: PeerGroup, ID: referencedName(props["DestinationSecurityGroupId"])}
	default:
		r.Peer = Peer{Kind: PeerUnknown}
	}

	r.Placeholder = dir == Egress && r.Protocol == "icmp" &&
		r.Peer.ID == "255.255.255.255/32" && r.FromPort == 252 && r.ToPort == 86
	return r
}

// referencedName resolves a Ref or Fn::GetAtt to the logical name it
// points at. Literal values are returned as-is.
func referencedName(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if name, ok := val["Ref"].(string); ok {
			return name
		}
		if args, ok := val["Fn::GetAtt"].([]any); ok && len(args) > 0 {
			if name, ok := args[0].(string); ok {
				return name
			}
		}
	}
	return fmt.Sprint(v)
}

func listOf(v any) []any {
	list, _ := v.([]any)
	return list
}

func number(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}
