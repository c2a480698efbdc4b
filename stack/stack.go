// Package stack records declared resources in an ordered configuration tree.
//
// Constructs add resources through a Scope. A scope's path determines the
// logical IDs of the resources declared under it, so the same construction
// always yields the same IDs.
package stack

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/lex00/wetwire-dmz-go/intrinsics"
)

// Resource is any value that declares a CloudFormation resource type.
// All types in the resources packages implement it.
type Resource interface {
	ResourceType() string
}

// Entry is a resource recorded in a stack.
type Entry struct {
	// LogicalID is the CloudFormation logical ID
	LogicalID string
	// Path is the construct path the resource was declared at
	Path string
	// Resource is the typed resource value
	Resource Resource

	DependsOn           []string
	DeletionPolicy      string
	UpdateReplacePolicy string
}

// Ref returns a Ref to the entry.
func (e *Entry) Ref() intrinsics.Ref {
	return intrinsics.Ref{LogicalName: e.LogicalID}
}

// GetAtt returns an Fn::GetAtt of the given attribute of the entry.
func (e *Entry) GetAtt(attribute string) intrinsics.GetAtt {
	return intrinsics.GetAtt{LogicalName: e.LogicalID, Attribute: attribute}
}

// OutputEntry is a stack output.
type OutputEntry struct {
	LogicalID   string
	Path        string
	Description string
	Value       any
	ExportName  string
}

// Option adjusts an entry as it is added.
type Option func(*Entry)

// DependsOn adds explicit dependencies on other entries.
func DependsOn(deps ...*Entry) Option {
	return func(e *Entry) {
		for _, d := range deps {
			e.DependsOn = append(e.DependsOn, d.LogicalID)
		}
	}
}

// Retain keeps the physical resource when it is removed from the stack or
// replaced during an update.
func Retain() Option {
	return func(e *Entry) {
		e.DeletionPolicy = "Retain"
		e.UpdateReplacePolicy = "Retain"
	}
}

// Stack is the root of a configuration tree.
type Stack struct {
	Name        string
	Description string

	entries []*Entry
	outputs []*OutputEntry
	byID    map[string]*Entry
	outIDs  map[string]bool
	errs    []error
}

// New creates an empty stack.
func New(name string) *Stack {
	return &Stack{
		Name:   name,
		byID:   make(map[string]*Entry),
		outIDs: make(map[string]bool),
	}
}

// Scope returns the root scope of the stack.
func (s *Stack) Scope() Scope {
	return Scope{stack: s}
}

// Resources returns the recorded resources in declaration order.
func (s *Stack) Resources() []*Entry {
	out := make([]*Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Outputs returns the recorded outputs in declaration order.
func (s *Stack) Outputs() []*OutputEntry {
	out := make([]*OutputEntry, len(s.outputs))
	copy(out, s.outputs)
	return out
}

// Lookup finds a resource by logical ID.
func (s *Stack) Lookup(logicalID string) (*Entry, bool) {
	e, ok := s.byID[logicalID]
	return e, ok
}

// Err returns every error recorded during construction, joined.
// Construction never fails eagerly; the errors surface at synthesis.
func (s *Stack) Err() error {
	return errors.Join(s.errs...)
}

// Scope is a position in the configuration tree.
type Scope struct {
	stack *Stack
	path  []string
}

// Stack returns the stack the scope belongs to.
func (sc Scope) Stack() *Stack {
	return sc.stack
}

// Path returns the slash-separated construct path of the scope.
func (sc Scope) Path() string {
	return strings.Join(sc.path, "/")
}

// Child returns a nested scope.
func (sc Scope) Child(id string) Scope {
	path := make([]string, len(sc.path), len(sc.path)+1)
	copy(path, sc.path)
	return Scope{stack: sc.stack, path: append(path, id)}
}

// LogicalID returns the logical ID a resource named id would receive in
// this scope.
func (sc Scope) LogicalID(id string) string {
	var b strings.Builder
	for _, part := range append(append([]string{}, sc.path...), id) {
		for _, r := range part {
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// Add records a resource under the scope and returns its entry.
// A logical ID collision is recorded as a stack error; the first
// declaration wins.
func (sc Scope) Add(id string, r Resource, opts ...Option) *Entry {
	e := &Entry{
		LogicalID: sc.LogicalID(id),
		Path:      sc.Child(id).Path(),
		Resource:  r,
	}
	for _, opt := range opts {
		opt(e)
	}

	if prev, exists := sc.stack.byID[e.LogicalID]; exists {
		sc.Fail(fmt.Errorf("duplicate logical ID %s (declared at %s and %s)", e.LogicalID, prev.Path, e.Path))
		return prev
	}

	sc.stack.byID[e.LogicalID] = e
	sc.stack.entries = append(sc.stack.entries, e)
	return e
}

// AddOutput records a stack output under the scope.
func (sc Scope) AddOutput(id string, value any, description, exportName string) *OutputEntry {
	o := &OutputEntry{
		LogicalID:   sc.LogicalID(id),
		Path:        sc.Child(id).Path(),
		Description: description,
		Value:       value,
		ExportName:  exportName,
	}
	if sc.stack.outIDs[o.LogicalID] {
		sc.Fail(fmt.Errorf("duplicate output %s", o.LogicalID))
		return o
	}
	sc.stack.outIDs[o.LogicalID] = true
	sc.stack.outputs = append(sc.stack.outputs, o)
	return o
}

// Fail records a construction error against the scope's path.
func (sc Scope) Fail(err error) {
	if path := sc.Path(); path != "" {
		err = fmt.Errorf("%s: %w", path, err)
	}
	sc.stack.errs = append(sc.stack.errs, err)
}
