package main

import (
	"langid/internal/batch"
	"langid/internal/observ"
)

// recordBatchTimings adds the summed per-file stage durations to the timer.
// Workers overlap, so these can exceed the wall time of the batch phase.
func recordBatchTimings(t *observ.Timer, timings *batch.Timings) {
	if t == nil || timings == nil {
		return
	}
	for _, stage := range []batch.Stage{batch.StageRead, batch.StageCache, batch.StageClassify} {
		if d := timings.Duration(stage); d > 0 {
			t.Record("  "+string(stage), d, "sum over files")
		}
	}
}
