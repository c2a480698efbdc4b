// Package synth turns a loaded configuration into a CloudFormation
// template.
package synth

import (
	"fmt"

	wetwire "github.com/lex00/wetwire-dmz-go"
	"github.com/lex00/wetwire-dmz-go/internal/config"
	"github.com/lex00/wetwire-dmz-go/internal/logging"
	"github.com/lex00/wetwire-dmz-go/internal/template"
	"github.com/lex00/wetwire-dmz-go/network"
	"github.com/lex00/wetwire-dmz-go/stack"
)

// CompositeID is the construct ID of the network; it prefixes every
// logical ID in the template.
const CompositeID = "Network"

// DefaultDescription is used when the config names no description.
const DefaultDescription = "DMZ and isolated application network"

// Result holds everything produced by a synthesis.
type Result struct {
	Stack     *stack.Stack
	Composite *network.Composite
	Template  *wetwire.Template
}

// Synthesize declares the network described by cfg and builds its
// template. Construction errors are returned here, joined; no partial
// template is produced.
func Synthesize(cfg config.File, logger *logging.Logger) (*Result, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	st := stack.New(cfg.StackName())
	st.Description = cfg.Stack.Description
	if st.Description == "" {
		st.Description = DefaultDescription
	}

	props := cfg.Network
	logger.Debug("declaring network",
		"stack", st.Name,
		"cidr", props.CIDR,
		"max_azs", props.MaxAZs,
	)
	composite := network.NewComposite(st.Scope(), CompositeID, props)

	tmpl, err := template.NewBuilder(st).Build()
	if err != nil {
		return nil, fmt.Errorf("synthesizing %s: %w", st.Name, err)
	}

	logger.Debug("synthesized template",
		"resources", len(tmpl.Resources),
		"outputs", len(tmpl.Outputs),
	)

	return &Result{
		Stack:     st,
		Composite: composite,
		Template:  tmpl,
	}, nil
}
