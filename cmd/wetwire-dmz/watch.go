package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/lex00/wetwire-dmz-go/internal/config"
	"github.com/lex00/wetwire-dmz-go/internal/linter"
	"github.com/lex00/wetwire-dmz-go/internal/synth"
)

// newWatchCmd creates the "watch" subcommand for auto-rebuilding on config
// changes.
func newWatchCmd(opts *globalOptions) *cobra.Command {
	var (
		overrides    config.Overrides
		lintOnly     bool
		debounce     time.Duration
		outputFormat string
		outputFile   string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Auto-rebuild on config file changes",
		Long: `Watch monitors the config file for changes and automatically rebuilds.

The watch command:
- Monitors the config file (network.yaml unless --config is given)
- Synthesizes and lints the network on each change
- Writes the template if lint passes (unless --lint-only)
- Debounces rapid changes to avoid excessive rebuilds

Examples:
    wetwire-dmz watch -o template.json
    wetwire-dmz watch --lint-only
    wetwire-dmz watch --debounce 1s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runWatch(ctx, opts, overrides, watchOptions{
				lintOnly:     lintOnly,
				debounce:     debounce,
				outputFormat: outputFormat,
				outputFile:   outputFile,
				out:          cmd.OutOrStdout(),
			})
		},
	}

	addNetworkFlags(cmd, &overrides)
	cmd.Flags().BoolVar(&lintOnly, "lint-only", false, "Only run lint, skip build")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Debounce duration for rapid changes")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format for build: json or yaml")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file for build (default: stdout)")

	return cmd
}

type watchOptions struct {
	lintOnly     bool
	debounce     time.Duration
	outputFormat string
	outputFile   string
	out          io.Writer
}

// runWatch monitors the config file and rebuilds on changes until ctx is
// cancelled.
func runWatch(ctx context.Context, opts *globalOptions, overrides config.Overrides, wo watchOptions) error {
	logger := opts.log().WithComponent("watch")

	path := opts.configPath
	if path == "" {
		path = config.DefaultPath
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	// Editors replace files on save, so watch the directory and filter.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(absPath), err)
	}
	logger.Info("watching", "path", absPath)

	runLintAndBuild(opts, overrides, wo)

	var debounceTimer *time.Timer
	rebuildChan := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isConfigEvent(event, absPath) {
				continue
			}

			// Debounce: reset timer on each change
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(wo.debounce, func() {
				select {
				case rebuildChan <- struct{}{}:
				default:
				}
			})

		case <-rebuildChan:
			logger.Info("change detected, rebuilding")
			runLintAndBuild(opts, overrides, wo)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", "error", err)

		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			logger.Info("stopping watch")
			return nil
		}
	}
}

// isConfigEvent reports whether event changes the watched config file.
func isConfigEvent(event fsnotify.Event, configPath string) bool {
	if filepath.Clean(event.Name) != configPath {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// runLintAndBuild synthesizes, lints, and writes the template when lint
// passes. Failures are logged; watching continues.
func runLintAndBuild(opts *globalOptions, overrides config.Overrides, wo watchOptions) bool {
	logger := opts.log().WithComponent("watch")

	cfg, err := opts.loadConfig(overrides)
	if err != nil {
		logger.Error("config error", "error", err)
		return false
	}

	res, err := synth.Synthesize(cfg, opts.log())
	if err != nil {
		for _, msg := range splitErrors(err) {
			logger.Error("build error", "error", msg)
		}
		return false
	}

	lintResult := linter.LintTemplate(res.Template, linter.Options{})
	for _, issue := range lintResult.Issues {
		logger.Warn(issue.Message, "rule", issue.Rule, "resource", issue.Resource, "severity", string(issue.Severity))
	}
	if !lintResult.Success {
		logger.Error("lint failed, skipping build")
		return false
	}

	if wo.lintOnly {
		logger.Info("lint passed")
		return true
	}

	data, err := encodeTemplate(res.Template, wo.outputFormat)
	if err != nil {
		logger.Error("output error", "error", err)
		return false
	}

	if wo.outputFile == "" {
		fmt.Fprintln(wo.out, string(data))
	} else if err := os.WriteFile(wo.outputFile, data, 0644); err != nil {
		logger.Error("failed to write output", "error", err)
		return false
	}

	logger.Info("build successful", "resources", len(res.Template.Resources), "output", wo.outputFile)
	return true
}
