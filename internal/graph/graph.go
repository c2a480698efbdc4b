// Package graph renders a synthesized template as a DOT or Mermaid graph:
// either the security group traffic graph or the resource dependency graph.
package graph

import (
	"io"
	"sort"
	"strings"

	"github.com/emicklei/dot"

	wetwire "github.com/lex00/wetwire-dmz-go"
	"github.com/lex00/wetwire-dmz-go/internal/sgrules"
	"github.com/lex00/wetwire-dmz-go/internal/template"
)

// Format specifies the output format for the graph.
type Format string

const (
	// FormatDOT outputs Graphviz DOT format.
	FormatDOT Format = "dot"
	// FormatMermaid outputs Mermaid format for GitHub/markdown rendering.
	FormatMermaid Format = "mermaid"
)

// Kind selects what the graph shows.
type Kind string

const (
	// KindRules draws allowed traffic between security groups and peers.
	KindRules Kind = "rules"
	// KindResources draws Ref/GetAtt/DependsOn edges between resources.
	KindResources Kind = "resources"
)

// Generator creates graphs from templates.
type Generator struct {
	// Format specifies the output format (dot or mermaid). Defaults to dot.
	Format Format

	// Kind selects the graph. Defaults to rules.
	Kind Kind

	// ClusterByType groups resources by AWS service in the resource graph.
	ClusterByType bool

	// IncludePlaceholders draws the "Disallow all traffic" egress rules.
	IncludePlaceholders bool
}

// Generate creates a graph of the template and writes it to w.
func (g *Generator) Generate(t *wetwire.Template, w io.Writer) error {
	var graph *dot.Graph
	if g.Kind == KindResources {
		graph = g.buildResourceGraph(t)
	} else {
		graph = g.buildRuleGraph(t)
	}

	format := g.Format
	if format == "" {
		format = FormatDOT
	}

	var output string
	if format == FormatMermaid {
		output = dot.MermaidGraph(graph, dot.MermaidTopToBottom)
	} else {
		output = graph.String()
	}

	_, err := w.Write([]byte(output))
	return err
}

// GenerateString is a convenience method that returns the graph as a string.
func (g *Generator) GenerateString(t *wetwire.Template) (string, error) {
	var sb strings.Builder
	if err := g.Generate(t, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func newGraph() *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "TB")

	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})
	graph.EdgeInitializer(func(e dot.Edge) {
		e.Attr("fontname", "Arial")
		e.Attr("fontsize", "10")
	})
	return graph
}

// buildRuleGraph draws one edge per allowed flow, pointing the way traffic
// is initiated. A flow declared on both groups is drawn once.
func (g *Generator) buildRuleGraph(t *wetwire.Template) *dot.Graph {
	graph := newGraph()
	groups := sgrules.Groups(t)

	vpc := graph.Subgraph("cluster_vpc", dot.ClusterOption{})
	vpc.Attr("label", "VPC")
	vpc.Attr("style", "rounded")

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	nodes := make(map[string]dot.Node)
	for _, id := range ids {
		n := vpc.Node(id)
		n.Label(groups[id])
		nodes[id] = n
	}

	peerNode := func(p sgrules.Peer) dot.Node {
		if n, ok := nodes[p.ID]; ok {
			return n
		}
		n := graph.Node(p.ID)
		switch {
		case p.IsInternet():
			n.Label("internet " + p.ID)
			n.Attr("shape", "ellipse")
		case p.Kind == sgrules.PeerPrefixList:
			n.Label("prefix list " + p.ID)
			n.Attr("shape", "folder")
		default:
			n.Attr("shape", "ellipse")
		}
		nodes[p.ID] = n
		return n
	}

	drawn := make(map[string]bool)
	for _, r := range sgrules.Extract(t) {
		if r.Placeholder && !g.IncludePlaceholders {
			continue
		}
		self, ok := nodes[r.Group]
		if !ok {
			self = peerNode(sgrules.Peer{Kind: sgrules.PeerGroup, ID: r.Group})
		}
		other := peerNode(r.Peer)

		from, to := other, self
		fromID, toID := r.Peer.ID, r.Group
		if r.Direction == sgrules.Egress {
			from, to = self, other
			fromID, toID = r.Group, r.Peer.ID
		}

		key := fromID + "->" + toID + ":" + r.Ports()
		if drawn[key] {
			continue
		}
		drawn[key] = true

		e := graph.Edge(from, to, r.Ports())
		if r.Peer.IsInternet() {
			e.Attr("color", "red")
		}
		if r.Placeholder {
			e.Attr("style", "dotted")
		}
	}

	return graph
}

// buildResourceGraph draws an edge from each resource to every resource it
// references.
func (g *Generator) buildResourceGraph(t *wetwire.Template) *dot.Graph {
	graph := newGraph()

	names := make([]string, 0, len(t.Resources))
	for name := range t.Resources {
		names = append(names, name)
	}
	sort.Strings(names)

	if g.ClusterByType {
		g.addClusteredNodes(graph, t, names)
	} else {
		for _, name := range names {
			graph.Node(name).Label(name + "\\n[" + t.Resources[name].Type + "]")
		}
	}

	for _, name := range names {
		def := t.Resources[name]
		getAtts := getAttTargets(def.Properties)
		for _, dep := range template.References(def) {
			if _, ok := t.Resources[dep]; !ok {
				continue
			}
			e := graph.Edge(graph.Node(name), graph.Node(dep))
			if getAtts[dep] {
				e.Attr("color", "blue")
			}
		}
	}

	return graph
}

// addClusteredNodes adds resource nodes grouped by AWS service.
func (g *Generator) addClusteredNodes(graph *dot.Graph, t *wetwire.Template, names []string) {
	byService := make(map[string][]string)
	var services []string
	for _, name := range names {
		service := extractService(t.Resources[name].Type)
		if _, ok := byService[service]; !ok {
			services = append(services, service)
		}
		byService[service] = append(byService[service], name)
	}
	sort.Strings(services)

	for _, service := range services {
		resNames := byService[service]
		if len(resNames) > 1 {
			cluster := graph.Subgraph("cluster_"+service, dot.ClusterOption{})
			cluster.Attr("label", service)
			cluster.Attr("style", "rounded")
			cluster.Attr("bgcolor", "lightyellow")

			for _, name := range resNames {
				cluster.Node(name).Label(name + "\\n[" + t.Resources[name].Type + "]")
			}
		} else {
			for _, name := range resNames {
				graph.Node(name).Label(name + "\\n[" + t.Resources[name].Type + "]")
			}
		}
	}
}

// getAttTargets returns the resources referenced through Fn::GetAtt.
func getAttTargets(v any) map[string]bool {
	targets := make(map[string]bool)
	var walk func(any)
	walk = func(v any) {
		switch val := v.(type) {
		case map[string]any:
			if args, ok := val["Fn::GetAtt"].([]any); ok && len(args) > 0 {
				if name, ok := args[0].(string); ok {
					targets[name] = true
				}
			}
			for _, child := range val {
				walk(child)
			}
		case []any:
			for _, child := range val {
				walk(child)
			}
		}
	}
	walk(v)
	return targets
}

// extractService extracts the AWS service name from a CloudFormation type.
// e.g., "AWS::EC2::VPC" -> "EC2"
func extractService(cfType string) string {
	parts := strings.Split(cfType, "::")
	if len(parts) == 3 {
		return parts[1]
	}
	return "Other"
}
