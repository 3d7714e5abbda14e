package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"langid/internal/batch"
	"langid/internal/report"
	"langid/internal/resultcache"
)

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [flags] file...",
		Short: "Rank the language of many files in parallel",
		Long: `Batch ranks every file concurrently against one model. Results are printed
in argument order and cached on disk, keyed by model, languages and input.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runBatch,
	}
	cmd.Flags().Int("jobs", 0, "max parallel workers (0 = GOMAXPROCS, or [batch].jobs)")
	cmd.Flags().Bool("no-cache", false, "do not read or write the result cache")
	cmd.Flags().Bool("clear-cache", false, "drop all cached results before running")
	cmd.Flags().String("cache-dir", "", "result cache directory (default $XDG_CACHE_HOME/langid)")
	cmd.Flags().Int64("max-bytes", 0, "skip files larger than this many bytes (0 = no limit)")
	cmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	env, err := prepare(cmd, true)
	if err != nil {
		return err
	}
	defer env.close()

	flags := cmd.Flags()
	jobs := env.settings.File.Batch.Jobs
	if flags.Changed("jobs") {
		if jobs, err = flags.GetInt("jobs"); err != nil {
			return fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	noCache, err := flags.GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	useCache := env.settings.File.Batch.Cache && !noCache
	clearCache, err := flags.GetBool("clear-cache")
	if err != nil {
		return fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	cacheDir, err := flags.GetString("cache-dir")
	if err != nil {
		return fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	maxBytes, err := flags.GetInt64("max-bytes")
	if err != nil {
		return fmt.Errorf("failed to get max-bytes flag: %w", err)
	}
	uiFlag, err := flags.GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode("ui", uiFlag)
	if err != nil {
		return err
	}

	m, err := env.loadModel()
	if err != nil {
		return err
	}

	var cache *resultcache.Cache
	if useCache || clearCache {
		if cacheDir != "" {
			cache, err = resultcache.OpenDir(cacheDir)
		} else {
			cache, err = resultcache.Open("langid")
		}
		if err != nil {
			return fmt.Errorf("failed to open result cache: %w", err)
		}
		if clearCache {
			if err := cache.DropAll(); err != nil {
				return fmt.Errorf("failed to clear result cache: %w", err)
			}
		}
		if !useCache {
			cache = nil
		}
	}

	var timings batch.Timings
	req := batch.Request{
		Files:    args,
		Jobs:     jobs,
		MaxBytes: maxBytes,
		Cache:    cache,
		Tracer:   env.tracer,
		Timings:  &timings,
	}

	var (
		results []batch.FileResult
		sum     batch.Summary
	)
	idx := env.timer.Begin("batch")
	if resolveMode(mode, cmd.OutOrStdout()) {
		results, sum, err = runBatchWithUI(env.ctx(), fmt.Sprintf("classifying %d files", len(args)), m, req)
	} else {
		results, sum, err = batch.Run(env.ctx(), m, req)
	}
	env.timer.End(idx, fmt.Sprintf("%d files, %d cached", sum.Files, sum.Cached))
	if err != nil {
		return err
	}
	recordBatchTimings(env.timer, &timings)

	entries := make([]report.Entry, len(results))
	for i, res := range results {
		entries[i] = report.Entry{Label: res.Path, Ranked: res.Ranked, Cached: res.Cached, Error: res.Error}
	}
	opts := report.Options{
		Format: env.settings.Format,
		Top:    env.settings.Top,
		Names:  env.settings.Names,
		Color:  env.settings.Color,
		Labels: true,
	}
	if err := report.Write(cmd.OutOrStdout(), entries, opts); err != nil {
		return err
	}
	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", sum.Failed, sum.Files)
	}
	return nil
}
