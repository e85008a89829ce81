package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/c360studio/annograph/analysis/tokenizer"
	appconfig "github.com/c360studio/annograph/config"
	"github.com/c360studio/annograph/graph"
	"github.com/c360studio/annograph/pipeline"
	"github.com/c360studio/annograph/resolve"
)

const outSuffix = ".out.json"

// debounceDelay is how long to wait for more changes before re-annotating.
const debounceDelay = 500 * time.Millisecond

func annotateCmd() *cobra.Command {
	var (
		producer      string
		allowInsecure bool
		watch         bool
		logLevel      string
	)

	cmd := &cobra.Command{
		Use:   "annotate <pattern>...",
		Short: "Annotate graph files locally without NATS",
		Long: `Annotate runs the tokenizer pipeline over serialized graph files.

Each argument is a file path or glob pattern (** is supported). For an
input file graph.json the enriched graph is written to graph.out.json
next to it, and a per-view summary is printed.

With --watch, matched files are re-annotated whenever they change.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(logLevel)
			slog.SetDefault(logger)
			return runAnnotate(args, producer, allowInsecure, watch, logger)
		},
	}

	cmd.Flags().StringVar(&producer, "producer", "", "App identity recorded on produced views (default from config)")
	cmd.Flags().BoolVar(&allowInsecure, "allow-insecure", false, "Allow http and private-network document locations")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-annotate files when they change")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	return cmd
}

func runAnnotate(patterns []string, producer string, allowInsecure, watch bool, logger *slog.Logger) error {
	cfg, err := appconfig.NewLoader(logger).Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if producer == "" {
		producer = cfg.App.Identifier
	}

	resolver := resolve.New(resolve.Options{
		Timeout:        cfg.Resolver.Timeout,
		MaxContentSize: cfg.Resolver.MaxContentSize,
		UserAgent:      cfg.Resolver.UserAgent,
		AllowInsecure:  allowInsecure || cfg.Resolver.AllowInsecure,
	})

	runner, err := pipeline.NewRunner(pipeline.Config{
		Producer: producer,
		Analyzer: tokenizer.New(),
		Resolver: resolver,
	})
	if err != nil {
		return fmt.Errorf("create runner: %w", err)
	}

	files, err := expandInputs(patterns)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files match %s", strings.Join(patterns, " "))
	}

	ctx := context.Background()
	failed := 0
	for _, file := range files {
		if err := annotateFile(ctx, runner, file); err != nil {
			logger.Error("Annotation failed", "file", file, "error", err)
			failed++
		}
	}

	if watch {
		return watchAndAnnotate(ctx, runner, patterns, files, logger)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

// expandInputs resolves glob patterns to a deduplicated list of files,
// skipping previous annotation outputs.
func expandInputs(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("resolve pattern %q: %w", pattern, err)
		}
		if matches == nil && !strings.ContainsAny(pattern, "*?[") {
			// Literal path: let annotateFile surface the read error
			matches = []string{pattern}
		}

		for _, m := range matches {
			if strings.HasSuffix(m, outSuffix) {
				continue
			}
			if info, err := os.Stat(m); err == nil && info.IsDir() {
				continue
			}
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	return files, nil
}

// annotateFile runs the pipeline over one graph file and writes the
// enriched graph next to it.
func annotateFile(ctx context.Context, runner *pipeline.Runner, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	g, err := graph.Parse(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	result, err := runner.Run(ctx, g)
	if err != nil {
		return fmt.Errorf("annotate %s: %w", path, err)
	}

	out, err := g.Serialize()
	if err != nil {
		return fmt.Errorf("serialize %s: %w", path, err)
	}

	outPath := outputPath(path)
	if err := os.WriteFile(outPath, out, 0644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	printSummary(path, outPath, g, result)
	return nil
}

// outputPath derives the annotation output file name from the input name.
func outputPath(path string) string {
	ext := filepath.Ext(path)
	if ext == ".json" {
		return strings.TrimSuffix(path, ext) + outSuffix
	}
	return path + outSuffix
}

// printSummary prints one line per created view.
func printSummary(inPath, outPath string, g *graph.Graph, result *pipeline.Result) {
	fmt.Printf("%s -> %s\n", inPath, outPath)
	created := make(map[string]bool, len(result.NewViews))
	for _, id := range result.NewViews {
		created[id] = true
	}
	for i := range g.Views {
		view := g.Views[i]
		if !created[view.ID] {
			continue
		}
		contains := make([]string, 0, len(view.Metadata.Contains))
		for _, decl := range view.Metadata.Contains {
			contains = append(contains, decl.Type)
		}
		fmt.Printf("  view %s: %d annotations (%s)\n",
			view.ID, len(view.Annotations), strings.Join(contains, ", "))
	}
	for _, diag := range result.Diagnostics {
		fmt.Printf("  unreadable %s: %s\n", diag.AnchorID, diag.Message)
	}
}

// watchAndAnnotate re-runs annotation when matched files change.
func watchAndAnnotate(ctx context.Context, runner *pipeline.Runner, patterns, files []string, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directories of matched files; fsnotify does not follow
	// globs itself.
	dirs := make(map[string]bool)
	for _, f := range files {
		dir := filepath.Dir(f)
		if !dirs[dir] {
			dirs[dir] = true
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
		}
	}

	logger.Info("Watching for changes", "dirs", len(dirs))

	signalCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pending := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-signalCtx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if strings.HasSuffix(event.Name, outSuffix) {
				continue
			}
			if !matchesAny(patterns, event.Name) {
				continue
			}
			pending[event.Name] = true
			if timer == nil {
				timer = time.NewTimer(debounceDelay)
			} else {
				timer.Reset(debounceDelay)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			for file := range pending {
				if err := annotateFile(signalCtx, runner, file); err != nil {
					logger.Error("Annotation failed", "file", file, "error", err)
				}
			}
			pending = make(map[string]bool)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", "error", err)
		}
	}
}

// matchesAny reports whether the path matches one of the input patterns.
func matchesAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if pattern == path {
			return true
		}
		ok, err := doublestar.PathMatch(filepath.ToSlash(pattern), filepath.ToSlash(path))
		if err == nil && ok {
			return true
		}
	}
	return false
}
