package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lex00/wetwire-dmz-go/internal/aws/prefixlist"
	"github.com/lex00/wetwire-dmz-go/internal/config"
	"github.com/lex00/wetwire-dmz-go/internal/logging"
)

func overridesWithAZs(n int) config.Overrides {
	return config.Overrides{MaxAZs: n}
}

func TestNewBuildCmd(t *testing.T) {
	cmd := newBuildCmd(&globalOptions{})

	if cmd.Use != "build" {
		t.Errorf("Use = %q, want 'build'", cmd.Use)
	}

	for _, flag := range []string{"format", "output", "result", "cidr", "max-azs", "retention", "storage-prefix-list", "key-value-prefix-list"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("missing --%s flag", flag)
		}
	}
}

func TestRetentionFlag(t *testing.T) {
	cmd := newBuildCmd(&globalOptions{})

	flag := cmd.Flags().Lookup("retention")
	if flag == nil {
		t.Fatal("missing --retention flag")
	}
	if flag.Value.Type() != "retention" {
		t.Errorf("retention type = %q, want 'retention'", flag.Value.Type())
	}
	if err := cmd.Flags().Set("retention", "fortnight"); err == nil {
		t.Error("expected error for unknown retention")
	}
	if err := cmd.Flags().Set("retention", "2w"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewDiffCmd(t *testing.T) {
	cmd := newDiffCmd()

	if cmd.Use != "diff <template1> <template2>" {
		t.Errorf("Use = %q, want 'diff <template1> <template2>'", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}

	if cmd.Flags().Lookup("format") == nil {
		t.Error("missing --format flag")
	}

	if cmd.Flags().Lookup("ignore-order") == nil {
		t.Error("missing --ignore-order flag")
	}
}

func TestNewWatchCmd(t *testing.T) {
	cmd := newWatchCmd(&globalOptions{})

	if cmd.Use != "watch" {
		t.Errorf("Use = %q, want 'watch'", cmd.Use)
	}

	if cmd.Flags().Lookup("lint-only") == nil {
		t.Error("missing --lint-only flag")
	}

	flag := cmd.Flags().Lookup("debounce")
	if flag == nil {
		t.Fatal("missing --debounce flag")
	}
	if flag.DefValue != "500ms" {
		t.Errorf("debounce default = %q, want '500ms'", flag.DefValue)
	}
}

func TestIsConfigEvent(t *testing.T) {
	path := filepath.Join(string(filepath.Separator), "work", "network.yaml")

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write", fsnotify.Event{Name: path, Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: path, Op: fsnotify.Create}, true},
		{"chmod", fsnotify.Event{Name: path, Op: fsnotify.Chmod}, false},
		{"other file", fsnotify.Event{Name: filepath.Join(filepath.Dir(path), "other.yaml"), Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isConfigEvent(tt.event, path))
		})
	}
}

func TestRunLintAndBuild(t *testing.T) {
	path := writeConfig(t, testConfig)
	out := filepath.Join(t.TempDir(), "template.json")
	opts := &globalOptions{configPath: path, logger: logging.Discard()}

	ok := runLintAndBuild(opts, config.Overrides{}, watchOptions{outputFormat: "json", outputFile: out})
	require.True(t, ok)
	_, err := os.Stat(out)
	assert.NoError(t, err)

	ok = runLintAndBuild(opts, overridesWithAZs(9), watchOptions{outputFormat: "json", outputFile: out})
	assert.False(t, ok)
}

func TestRunLintAndBuild_LintOnly(t *testing.T) {
	path := writeConfig(t, testConfig)
	var buf bytes.Buffer
	opts := &globalOptions{configPath: path, logger: logging.Discard()}

	ok := runLintAndBuild(opts, config.Overrides{}, watchOptions{lintOnly: true, out: &buf})
	assert.True(t, ok)
	assert.Empty(t, buf.String())
}

func TestRunWatch_StopsOnCancel(t *testing.T) {
	path := writeConfig(t, testConfig)
	var buf bytes.Buffer
	opts := &globalOptions{configPath: path, logger: logging.Discard()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runWatch(ctx, opts, config.Overrides{}, watchOptions{outputFormat: "json", out: &buf})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "AWSTemplateFormatVersion")
}

type fakePrefixLists struct {
	lists []prefixlist.PrefixList
	gw    prefixlist.Gateways
	err   error
}

func (f fakePrefixLists) List(ctx context.Context) ([]prefixlist.PrefixList, error) {
	return f.lists, f.err
}

func (f fakePrefixLists) Gateways(ctx context.Context, region string) (prefixlist.Gateways, error) {
	return f.gw, f.err
}

func TestRunGatewayPrefixLists(t *testing.T) {
	client := fakePrefixLists{gw: prefixlist.Gateways{
		Region:   "us-east-1",
		Storage:  prefixlist.PrefixList{ID: "pl-63a5400a", Name: "com.amazonaws.us-east-1.s3"},
		KeyValue: prefixlist.PrefixList{ID: "pl-02cd2c6b", Name: "com.amazonaws.us-east-1.dynamodb"},
	}}

	var buf bytes.Buffer
	require.NoError(t, runGatewayPrefixLists(context.Background(), &buf, client, "us-east-1", "yaml"))
	assert.Equal(t, "network:\n    key_value_gateway_prefix_list_id: pl-02cd2c6b\n    storage_gateway_prefix_list_id: pl-63a5400a\n", buf.String())

	buf.Reset()
	require.NoError(t, runGatewayPrefixLists(context.Background(), &buf, client, "us-east-1", "text"))
	assert.Contains(t, buf.String(), "pl-63a5400a")
	assert.Contains(t, buf.String(), "com.amazonaws.us-east-1.dynamodb")

	assert.Error(t, runGatewayPrefixLists(context.Background(), &buf, client, "us-east-1", "xml"))
}

func TestRunGatewayPrefixLists_Error(t *testing.T) {
	client := fakePrefixLists{err: errors.New("prefix lists not found")}

	var buf bytes.Buffer
	err := runGatewayPrefixLists(context.Background(), &buf, client, "us-east-1", "text")
	require.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestRunListPrefixLists(t *testing.T) {
	client := fakePrefixLists{lists: []prefixlist.PrefixList{
		{ID: "pl-02cd2c6b", Name: "com.amazonaws.us-east-1.dynamodb", CIDRs: []string{"3.218.182.0/24"}},
	}}

	var buf bytes.Buffer
	require.NoError(t, runListPrefixLists(context.Background(), &buf, client, "json"))
	assert.Contains(t, buf.String(), `"id": "pl-02cd2c6b"`)

	buf.Reset()
	require.NoError(t, runListPrefixLists(context.Background(), &buf, fakePrefixLists{}, "text"))
	assert.Contains(t, buf.String(), "No prefix lists found.")
}
