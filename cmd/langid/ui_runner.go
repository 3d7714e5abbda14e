package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"langid/internal/batch"
	"langid/internal/ui"
)

type batchOutcome struct {
	results []batch.FileResult
	summary batch.Summary
	err     error
}

func runBatchWithUI(ctx context.Context, title string, m batch.Ranker, req batch.Request) ([]batch.FileResult, batch.Summary, error) {
	events := make(chan batch.Event, 256)
	outcomeCh := make(chan batchOutcome, 1)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		reqCopy := req
		reqCopy.Progress = batch.ChannelSink{Ch: events}
		results, sum, err := batch.Run(ctx, m, reqCopy)
		outcomeCh <- batchOutcome{results: results, summary: sum, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, req.Files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	final, uiErr := program.Run()
	if uiErr != nil || ui.Interrupted(final) {
		cancel()
	}
	// ctrl+c leaves the UI early; drain so workers never block on a full channel
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, outcome.summary, uiErr
	}
	return outcome.results, outcome.summary, outcome.err
}
