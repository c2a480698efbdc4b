// Package linter checks a synthesized template against the network's
// security posture.
//
// Rules:
//
//	DMZ001: Security groups must not allow all outbound traffic
//	DMZ002: Only internet-facing groups may accept traffic from the internet
//	DMZ003: Security group rules should carry a description
//	DMZ004: The network must not contain NAT gateways
//	DMZ005: Every VPC needs a flow log capturing ALL traffic
//	DMZ006: Isolated subnets must not assign public IPs
//	DMZ007: Flow log groups should be retained on stack deletion
package linter

import (
	"fmt"
	"os"
	"sort"

	wetwire "github.com/lex00/wetwire-dmz-go"
	"github.com/lex00/wetwire-dmz-go/internal/differ"
)

// Severity of an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is a single lint finding.
type Issue struct {
	Rule       string
	Resource   string
	Message    string
	Suggestion string
	Severity   Severity
}

// Result contains the outcome of linting.
type Result struct {
	Success bool
	Issues  []Issue
}

// Options configures the linter.
type Options struct {
	// Rules to enable. If empty, all rules are enabled.
	EnabledRules []string
	// InternetFacingGroups lists the group names allowed to accept traffic
	// from the internet. Defaults to the public load balancer group.
	InternetFacingGroups []string
}

// LintTemplate lints a synthesized template. Success is false only when an
// error-severity issue is found.
func LintTemplate(t *wetwire.Template, opts Options) Result {
	var issues []Issue
	for _, rule := range getRules(opts) {
		issues = append(issues, rule.Check(t)...)
	}

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Rule != issues[j].Rule {
			return issues[i].Rule < issues[j].Rule
		}
		return issues[i].Resource < issues[j].Resource
	})

	success := true
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			success = false
			break
		}
	}

	return Result{Success: success, Issues: issues}
}

// LintFile lints a template file in JSON or YAML.
func LintFile(path string, opts Options) (Result, error) {
	if _, err := os.Stat(path); err != nil {
		return Result{}, err
	}
	t, err := differ.LoadTemplate(path)
	if err != nil {
		return Result{}, fmt.Errorf("loading %s: %w", path, err)
	}
	return LintTemplate(t, opts), nil
}

// getRules returns the rules to use based on options.
func getRules(opts Options) []Rule {
	all := AllRules()

	if len(opts.InternetFacingGroups) > 0 {
		for i, r := range all {
			if ii, ok := r.(InternetIngress); ok {
				ii.AllowedGroups = opts.InternetFacingGroups
				all[i] = ii
			}
		}
	}

	if len(opts.EnabledRules) == 0 {
		return all
	}

	enabled := make(map[string]bool)
	for _, id := range opts.EnabledRules {
		enabled[id] = true
	}

	var filtered []Rule
	for _, r := range all {
		if enabled[r.ID()] {
			filtered = append(filtered, r)
		}
	}

	return filtered
}
