package validation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lex00/cfn-lint-go/pkg/lint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wetwire "github.com/lex00/wetwire-dmz-go"
	"github.com/lex00/wetwire-dmz-go/internal/linter"
	"github.com/lex00/wetwire-dmz-go/network"
)

func TestCfnLintResult_TotalIssues(t *testing.T) {
	tests := []struct {
		name     string
		result   CfnLintResult
		expected int
	}{
		{
			name:     "empty result",
			result:   CfnLintResult{},
			expected: 0,
		},
		{
			name: "errors only",
			result: CfnLintResult{
				Errors: []string{"error1", "error2"},
			},
			expected: 2,
		},
		{
			name: "mixed issues",
			result: CfnLintResult{
				Errors:        []string{"error1"},
				Warnings:      []string{"warning1", "warning2"},
				Informational: []string{"info1"},
			},
			expected: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.result.TotalIssues())
		})
	}
}

func TestFormatMatch(t *testing.T) {
	tests := []struct {
		name     string
		match    lint.Match
		expected string
	}{
		{
			name: "simple match",
			match: lint.Match{
				Rule:    lint.MatchRule{ID: "E1234"},
				Message: "Something is wrong",
			},
			expected: "E1234: Something is wrong",
		},
		{
			name: "match with path",
			match: lint.Match{
				Rule:    lint.MatchRule{ID: "E3012"},
				Message: "Property has wrong type",
				Location: lint.MatchLocation{
					Path: []any{"Resources", "NetworkVpc", "Properties"},
				},
			},
			expected: "E3012: Property has wrong type (at Resources/NetworkVpc/Properties)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatMatch(tt.match))
		})
	}
}

func TestRunCfnLint_FileNotFound(t *testing.T) {
	result, err := RunCfnLint("/nonexistent/template.yaml")
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Template file not found")
}

func TestRunCfnLint_ValidTemplate(t *testing.T) {
	tempDir := t.TempDir()
	templatePath := filepath.Join(tempDir, "template.yaml")

	validTemplate := `AWSTemplateFormatVersion: '2010-09-09'
Description: Test template
Resources:
  Vpc:
    Type: AWS::EC2::VPC
    Properties:
      CidrBlock: 10.0.0.0/21
`
	require.NoError(t, os.WriteFile(templatePath, []byte(validTemplate), 0644))

	result, err := RunCfnLint(templatePath)
	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestCfnLintTemplate(t *testing.T) {
	tmpl := &wetwire.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Resources: map[string]wetwire.ResourceDef{
			"Vpc": {Type: "AWS::EC2::VPC", Properties: map[string]any{"CidrBlock": "10.0.0.0/21"}},
		},
	}

	result, err := CfnLintTemplate(tmpl)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.NotContains(t, result.Errors, "Template file not found")
}

func TestValidationResult_Passed(t *testing.T) {
	tests := []struct {
		name   string
		result ValidationResult
		want   bool
	}{
		{"empty", ValidationResult{}, true},
		{"props errors", ValidationResult{PropsErrors: []string{"cidr"}}, false},
		{"lint failed", ValidationResult{LintResult: &linter.Result{Success: false}}, false},
		{"cfn-lint failed", ValidationResult{CfnLintResult: &CfnLintResult{Passed: false}}, false},
		{"all passed", ValidationResult{
			LintResult:    &linter.Result{Success: true},
			CfnLintResult: &CfnLintResult{Passed: true},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.Passed())
		})
	}
}

func TestValidate_PropsErrorsWithoutTemplate(t *testing.T) {
	result, err := Validate(network.Props{CIDR: "not-a-cidr", MaxAZs: 2}, nil, Options{SkipCfnLint: true})
	require.NoError(t, err)

	assert.False(t, result.Passed())
	assert.Nil(t, result.LintResult)
	assert.NotEmpty(t, result.PropsErrors)
}

func TestSplitJoined(t *testing.T) {
	err := errors.Join(errors.New("a"), errors.Join(errors.New("b"), errors.New("c")))
	assert.Equal(t, []string{"a", "b", "c"}, splitJoined(err))
	assert.Equal(t, []string{"single"}, splitJoined(errors.New("single")))
}
