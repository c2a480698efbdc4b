package linter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wetwire "github.com/lex00/wetwire-dmz-go"
)

func TestLintTemplate_Reference(t *testing.T) {
	result := LintTemplate(referenceTemplate(t), Options{})
	assert.True(t, result.Success)
	assert.Empty(t, result.Issues)
}

func TestLintTemplate_WarningsDoNotFail(t *testing.T) {
	tmpl := templateOf(map[string]wetwire.ResourceDef{
		"Sg": group("sg", nil, []any{cidrRule("10.0.0.0/8", "tcp", 443, 443, "")}),
	})

	result := LintTemplate(tmpl, Options{})
	assert.True(t, result.Success)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "DMZ003", result.Issues[0].Rule)
}

func TestLintTemplate_SortedByRule(t *testing.T) {
	tmpl := templateOf(map[string]wetwire.ResourceDef{
		"Nat": {Type: "AWS::EC2::NatGateway", Properties: map[string]any{}},
		"B":   group("b", nil, nil),
		"A":   group("a", nil, nil),
	})

	result := LintTemplate(tmpl, Options{})
	assert.False(t, result.Success)
	require.Len(t, result.Issues, 3)
	assert.Equal(t, []string{"DMZ001", "DMZ001", "DMZ004"}, []string{
		result.Issues[0].Rule, result.Issues[1].Rule, result.Issues[2].Rule,
	})
	assert.Equal(t, "A", result.Issues[0].Resource)
	assert.Equal(t, "B", result.Issues[1].Resource)
}

func TestLintTemplate_EnabledRules(t *testing.T) {
	tmpl := templateOf(map[string]wetwire.ResourceDef{
		"Nat": {Type: "AWS::EC2::NatGateway", Properties: map[string]any{}},
		"A":   group("a", nil, nil),
	})

	result := LintTemplate(tmpl, Options{EnabledRules: []string{"DMZ004"}})
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "DMZ004", result.Issues[0].Rule)
}

func TestLintTemplate_InternetFacingGroups(t *testing.T) {
	tmpl := templateOf(map[string]wetwire.ResourceDef{
		"Sg": group("edge", []any{cidrRule("0.0.0.0/0", "tcp", 443, 443, "https")}, []any{
			cidrRule("255.255.255.255/32", "icmp", 252, 86, "Disallow all traffic"),
		}),
	})

	assert.False(t, LintTemplate(tmpl, Options{}).Success)
	assert.True(t, LintTemplate(tmpl, Options{InternetFacingGroups: []string{"edge"}}).Success)
}

func TestLintFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "template.json")

	data, err := json.Marshal(referenceTemplate(t))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	result, err := LintFile(path, Options{})
	require.NoError(t, err)
	assert.True(t, result.Success)

	_, err = LintFile(filepath.Join(dir, "missing.json"), Options{})
	assert.Error(t, err)
}
