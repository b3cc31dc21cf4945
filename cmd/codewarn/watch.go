package main

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/ritzau/codewarn/pkg/config"
	"github.com/ritzau/codewarn/pkg/logging"
	"github.com/ritzau/codewarn/pkg/model"
	"github.com/ritzau/codewarn/pkg/pubsub"
	"github.com/ritzau/codewarn/pkg/scan"
	"github.com/ritzau/codewarn/pkg/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the analysis whenever the graph, sources or config change",
	Long: `Run the analysis, then watch the project and re-run it whenever the code
graph, a source file or a config file changes. Parsed test files and
components are cached between runs.

Examples:
  codewarn watch
  codewarn watch --quiet-ms 500 -v`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Int("quiet-ms", 300, "Quiet period before a change triggers a run")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	cache, err := scan.NewCache(cfg.Scan.CacheSize)
	if err != nil {
		return fmt.Errorf("failed to create parse cache: %w", err)
	}
	runner, err := newRunner(cfg, cache)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	fw, err := watcher.NewFileWatcher(watcher.Targets{
		Project:     cfg.Project,
		Graph:       cfg.ProjectPath(cfg.Graph),
		ConfigFiles: configFiles(cmd, cfg),
	})
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}

	debouncer := watcher.NewDebouncer(fw.Events(),
		time.Duration(cfg.Watch.QuietMs)*time.Millisecond,
		time.Duration(cfg.Watch.MaxWaitMs)*time.Millisecond)
	debouncer.Start(ctx)

	broker := pubsub.NewBroker()
	defer broker.Close()
	sub, err := broker.Subscribe(ctx, pubsub.TopicRuns)
	if err != nil {
		return err
	}
	var current atomic.Pointer[config.Config]
	current.Store(cfg)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		printRuns(cmd.OutOrStdout(), sub, current.Load)
	}()

	rerun := func(reason string) {
		_ = broker.Publish(pubsub.TopicRuns, pubsub.RunStarted, pubsub.RunStatus{Reason: reason})
		result, err := runner.Run(ctx, reason)
		if err != nil {
			// The graph may be mid-write, the next change retries
			logging.Warn("analysis failed", "reason", reason, "error", err)
			_ = broker.Publish(pubsub.TopicRuns, pubsub.RunFailed, pubsub.RunStatus{Reason: reason, Message: err.Error()})
			return
		}
		_ = broker.Publish(pubsub.TopicRuns, pubsub.RunFinished, result)
	}

	rerun("initial analysis")

	for batch := range debouncer.Output() {
		changes := watcher.AnalyzeChanges(batch)
		logging.Debug("changes detected", "files", len(changes.ChangedFiles), "reason", changes.Reason())

		if changes.ReloadConfig {
			next, err := loadConfig(cmd)
			if err != nil {
				logging.Error("keeping previous config", "error", err)
				continue
			}
			nextRunner, err := newRunner(next, cache)
			if err != nil {
				logging.Error("keeping previous config", "error", err)
				continue
			}
			runner = nextRunner
			current.Store(next)
			cache.Purge()
		}

		rerun(changes.Reason())
	}

	broker.Close()
	<-printed
	logging.Info("stopped watching")
	return nil
}

// printRuns writes each finished run as a report, or every run event as a
// JSON line when the format is json.
func printRuns(w io.Writer, sub pubsub.Subscription, current func() *config.Config) {
	for event := range sub.Events() {
		cfg := current()
		if cfg.Format == "json" {
			if err := pubsub.WriteJSONLine(w, event); err != nil {
				logging.Error("failed to write event", "error", err)
			}
			continue
		}
		if event.Type != pubsub.RunFinished {
			continue
		}

		var result model.Result
		if err := event.Decode(&result); err != nil {
			logging.Error("failed to decode run result", "error", err)
			continue
		}
		if err := report(w, cfg, &result); err != nil && !errors.Is(err, errFindings) {
			logging.Error("failed to write report", "error", err)
		}
	}
}

// configFiles lists the files whose changes reload the configuration.
func configFiles(cmd *cobra.Command, cfg *config.Config) []string {
	files := []string{".env", cfg.ProjectPath(cfg.TSConfig), cfg.ProjectPath(".gitignore")}
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		files = append(files, path)
	} else {
		files = append(files, config.DefaultFile)
	}
	return files
}
