// Package template synthesizes a stack into a CloudFormation template.
package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	wetwire "github.com/lex00/wetwire-dmz-go"
	"github.com/lex00/wetwire-dmz-go/stack"
)

// Builder constructs a CloudFormation template from a stack.
type Builder struct {
	stack     *stack.Stack
	resources map[string]*stack.Entry
	props     map[string]map[string]any
	deps      map[string][]string
}

// NewBuilder creates a template builder for the stack.
func NewBuilder(st *stack.Stack) *Builder {
	b := &Builder{
		stack:     st,
		resources: make(map[string]*stack.Entry),
		props:     make(map[string]map[string]any),
		deps:      make(map[string][]string),
	}
	for _, e := range st.Resources() {
		b.resources[e.LogicalID] = e
	}
	return b
}

// Build constructs the CloudFormation template. Every error recorded on the
// stack while it was declared is returned here, and no template is produced.
func (b *Builder) Build() (*wetwire.Template, error) {
	order, err := b.Order()
	if err != nil {
		return nil, err
	}

	template := &wetwire.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Description:              b.stack.Description,
		Resources:                make(map[string]wetwire.ResourceDef, len(order)),
	}

	for _, name := range order {
		e := b.resources[name]
		var dependsOn []string
		if len(e.DependsOn) > 0 {
			dependsOn = append(dependsOn, e.DependsOn...)
			sort.Strings(dependsOn)
		}
		template.Resources[name] = wetwire.ResourceDef{
			Type:                e.Resource.ResourceType(),
			Properties:          b.props[name],
			DependsOn:           dependsOn,
			DeletionPolicy:      e.DeletionPolicy,
			UpdateReplacePolicy: e.UpdateReplacePolicy,
		}
	}

	if outputs := b.stack.Outputs(); len(outputs) > 0 {
		template.Outputs = make(map[string]wetwire.Output, len(outputs))
		for _, o := range outputs {
			output, err := b.serializeOutput(o)
			if err != nil {
				return nil, fmt.Errorf("serializing output %s: %w", o.LogicalID, err)
			}
			template.Outputs[o.LogicalID] = output
		}
	}

	return template, nil
}

// Order returns the logical IDs of the stack's resources in dependency
// order. Dependencies come from Ref and Fn::GetAtt in properties and from
// explicit DependsOn.
func (b *Builder) Order() ([]string, error) {
	if err := b.stack.Err(); err != nil {
		return nil, fmt.Errorf("stack %s: %w", b.stack.Name, err)
	}

	var errs []error
	for name, e := range b.resources {
		props, err := serializeResource(e.Resource)
		if err != nil {
			errs = append(errs, fmt.Errorf("serializing %s: %w", name, err))
			continue
		}
		b.props[name] = props

		seen := make(map[string]bool)
		var deps []string
		for _, ref := range collectRefs(props, nil) {
			if strings.HasPrefix(ref, "AWS::") || seen[ref] {
				continue
			}
			if _, ok := b.resources[ref]; !ok {
				errs = append(errs, fmt.Errorf("%s: reference to undeclared resource %s", name, ref))
				continue
			}
			seen[ref] = true
			deps = append(deps, ref)
		}
		for _, dep := range e.DependsOn {
			if _, ok := b.resources[dep]; !ok {
				errs = append(errs, fmt.Errorf("%s: DependsOn undeclared resource %s", name, dep))
				continue
			}
			if !seen[dep] {
				seen[dep] = true
				deps = append(deps, dep)
			}
		}
		b.deps[name] = deps
	}
	if len(errs) > 0 {
		sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
		return nil, errors.Join(errs...)
	}

	return b.topologicalSort()
}

// serializeResource converts a resource struct to CloudFormation properties.
func serializeResource(value any) (map[string]any, error) {
	// Round-trip through JSON so intrinsics and typed rules become plain maps.
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	var props map[string]any
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, err
	}
	if len(props) == 0 {
		return nil, nil
	}
	return props, nil
}

func (b *Builder) serializeOutput(o *stack.OutputEntry) (wetwire.Output, error) {
	data, err := json.Marshal(o.Value)
	if err != nil {
		return wetwire.Output{}, err
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return wetwire.Output{}, err
	}

	for _, ref := range collectRefs(value, nil) {
		if strings.HasPrefix(ref, "AWS::") {
			continue
		}
		if _, ok := b.resources[ref]; !ok {
			return wetwire.Output{}, fmt.Errorf("reference to undeclared resource %s", ref)
		}
	}

	output := wetwire.Output{Description: o.Description, Value: value}
	if o.ExportName != "" {
		output.Export = &wetwire.Export{Name: o.ExportName}
	}
	return output, nil
}

// References returns the logical names a resource definition depends on
// through Ref, Fn::GetAtt or DependsOn, without pseudo parameters.
func References(def wetwire.ResourceDef) []string {
	seen := make(map[string]bool)
	var refs []string
	for _, ref := range append(collectRefs(def.Properties, nil), def.DependsOn...) {
		if strings.HasPrefix(ref, "AWS::") || seen[ref] {
			continue
		}
		seen[ref] = true
		refs = append(refs, ref)
	}
	return refs
}

// collectRefs returns the logical names referenced by Ref and Fn::GetAtt
// anywhere in value.
func collectRefs(value any, refs []string) []string {
	switch v := value.(type) {
	case map[string]any:
		if len(v) == 1 {
			if name, ok := v["Ref"].(string); ok {
				return append(refs, name)
			}
			if args, ok := v["Fn::GetAtt"]; ok {
				switch a := args.(type) {
				case []any:
					if len(a) > 0 {
						if name, ok := a[0].(string); ok {
							return append(refs, name)
						}
					}
				case string:
					return append(refs, strings.SplitN(a, ".", 2)[0])
				}
			}
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			refs = collectRefs(v[k], refs)
		}
	case []any:
		for _, elem := range v {
			refs = collectRefs(elem, refs)
		}
	}
	return refs
}

// topologicalSort returns resources in dependency order.
func (b *Builder) topologicalSort() ([]string, error) {
	graph := make(map[string][]string)
	inDegree := make(map[string]int)

	for name := range b.resources {
		graph[name] = nil
		inDegree[name] = 0
	}

	for name := range b.resources {
		for _, dep := range b.deps[name] {
			graph[dep] = append(graph[dep], name)
			inDegree[name]++
		}
	}

	// Kahn's algorithm
	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range graph[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
				sort.Strings(queue)
			}
		}
	}

	if len(result) != len(b.resources) {
		return nil, b.detectCycle()
	}

	return result, nil
}

// detectCycle finds and reports a cycle in the dependency graph.
func (b *Builder) detectCycle() error {
	visited := make(map[string]bool)
	path := make(map[string]bool)

	var cycle []string
	var findCycle func(node string) bool
	findCycle = func(node string) bool {
		visited[node] = true
		path[node] = true

		for _, dep := range b.deps[node] {
			if !visited[dep] {
				if findCycle(dep) {
					cycle = append([]string{node}, cycle...)
					return true
				}
			} else if path[dep] {
				cycle = append([]string{dep, node}, cycle...)
				return true
			}
		}

		path[node] = false
		return false
	}

	names := make([]string, 0, len(b.resources))
	for name := range b.resources {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !visited[name] && findCycle(name) {
			break
		}
	}

	if len(cycle) > 0 {
		msg := "circular dependency detected:\n"
		for i, name := range cycle {
			msg += fmt.Sprintf("  %s (%s)", name, b.resources[name].Path)
			if i < len(cycle)-1 {
				msg += "\n    → "
			}
		}
		return errors.New(msg)
	}

	return errors.New("circular dependency detected")
}

// ToJSON serializes the template to JSON.
func ToJSON(t *wetwire.Template) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// ToYAML serializes the template to YAML.
func ToYAML(t *wetwire.Template) ([]byte, error) {
	return yaml.Marshal(t)
}
