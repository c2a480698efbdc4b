// Package validation checks a network configuration end to end:
//   - props: the opt-in Props.Validate checks
//   - lint: the network security rules (internal/linter)
//   - cfn-lint-go: CloudFormation schema validation of the synthesized template
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lex00/cfn-lint-go/pkg/lint"

	wetwire "github.com/lex00/wetwire-dmz-go"
	"github.com/lex00/wetwire-dmz-go/internal/linter"
	"github.com/lex00/wetwire-dmz-go/internal/template"
	"github.com/lex00/wetwire-dmz-go/network"
)

// CfnLintResult contains the result of running cfn-lint.
type CfnLintResult struct {
	Passed        bool     `json:"passed"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
	Informational []string `json:"informational"`
}

// TotalIssues returns the total number of issues found.
func (r CfnLintResult) TotalIssues() int {
	return len(r.Errors) + len(r.Warnings) + len(r.Informational)
}

// ValidationResult contains every validation result for a configuration.
type ValidationResult struct {
	PropsErrors   []string       `json:"props_errors,omitempty"`
	LintResult    *linter.Result `json:"lint_result,omitempty"`
	CfnLintResult *CfnLintResult `json:"cfn_lint_result,omitempty"`
}

// Passed reports whether no stage found an error.
func (r ValidationResult) Passed() bool {
	if len(r.PropsErrors) > 0 {
		return false
	}
	if r.LintResult != nil && !r.LintResult.Success {
		return false
	}
	if r.CfnLintResult != nil && !r.CfnLintResult.Passed {
		return false
	}
	return true
}

// RunCfnLint runs cfn-lint-go on the given template file.
func RunCfnLint(templatePath string) (*CfnLintResult, error) {
	if _, err := os.Stat(templatePath); err != nil {
		return &CfnLintResult{
			Passed: false,
			Errors: []string{fmt.Sprintf("Template file not found: %s", templatePath)},
		}, nil
	}

	linter := lint.New(lint.Options{})
	matches, err := linter.LintFile(templatePath)
	if err != nil {
		return &CfnLintResult{
			Passed: false,
			Errors: []string{fmt.Sprintf("Linter error: %v", err)},
		}, nil
	}

	result := &CfnLintResult{
		Errors:        []string{},
		Warnings:      []string{},
		Informational: []string{},
	}

	for _, match := range matches {
		formatted := formatMatch(match)

		switch match.Level {
		case "Error":
			result.Errors = append(result.Errors, formatted)
		case "Warning":
			result.Warnings = append(result.Warnings, formatted)
		default:
			result.Informational = append(result.Informational, formatted)
		}
	}

	// Warnings are acceptable
	result.Passed = len(result.Errors) == 0

	return result, nil
}

// CfnLintTemplate writes the template to a temporary file and runs
// cfn-lint-go on it.
func CfnLintTemplate(t *wetwire.Template) (*CfnLintResult, error) {
	data, err := template.ToJSON(t)
	if err != nil {
		return nil, fmt.Errorf("serializing template: %w", err)
	}

	dir, err := os.MkdirTemp("", "wetwire-dmz-validate-")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "template.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing template: %w", err)
	}

	return RunCfnLint(path)
}

// formatMatch formats a cfn-lint-go match for display.
func formatMatch(match lint.Match) string {
	pathStr := ""
	if len(match.Location.Path) > 0 {
		parts := make([]string, len(match.Location.Path))
		for i, p := range match.Location.Path {
			parts[i] = fmt.Sprintf("%v", p)
		}
		pathStr = strings.Join(parts, "/")
	}

	if pathStr != "" {
		return fmt.Sprintf("%s: %s (at %s)", match.Rule.ID, match.Message, pathStr)
	}
	return fmt.Sprintf("%s: %s", match.Rule.ID, match.Message)
}

// Options selects the validation stages.
type Options struct {
	// SkipCfnLint skips CloudFormation schema validation.
	SkipCfnLint bool
	Lint        linter.Options
}

// Validate runs every stage. Prop errors do not stop the later stages when
// a template could still be synthesized; t may be nil when synthesis failed.
func Validate(props network.Props, t *wetwire.Template, opts Options) (*ValidationResult, error) {
	result := &ValidationResult{}

	if err := props.Validate(); err != nil {
		result.PropsErrors = splitJoined(err)
	}

	if t == nil {
		return result, nil
	}

	lintResult := linter.LintTemplate(t, opts.Lint)
	result.LintResult = &lintResult

	if !opts.SkipCfnLint {
		cfnResult, err := CfnLintTemplate(t)
		if err != nil {
			return nil, fmt.Errorf("running cfn-lint: %w", err)
		}
		result.CfnLintResult = cfnResult
	}

	return result, nil
}

// splitJoined flattens an errors.Join tree into messages.
func splitJoined(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var msgs []string
		for _, e := range joined.Unwrap() {
			msgs = append(msgs, splitJoined(e)...)
		}
		return msgs
	}
	return []string{err.Error()}
}
