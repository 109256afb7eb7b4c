package pipeline

import (
	"sync"

	"github.com/scalus-go/scalus/internal/sir"
)

// Job is one unit of work for Pool: an independent SIR program to run
// through its own Pipeline. Each job gets its own budget and trace log —
// spec §5's "parallel independent evaluations share no mutable state"
// carries through to worker fan-out as well as to direct concurrent use.
type Job struct {
	Pipeline *Pipeline
	Root     sir.Node
}

// JobResult pairs a Job's index (so callers can correlate results back to
// their input slice) with its Outcome and any pipeline-level error.
type JobResult struct {
	Index   int
	Outcome Outcome
	Err     error
}

// RunAll runs every job concurrently, one goroutine per job, and returns
// results in the same order as jobs — grounded on the teacher's own
// bare `go func(){ for { ... } }()` background-loop wiring in NewHandler,
// generalized from a fire-and-forget maintenance loop to a bounded,
// joined fan-out over a fixed batch of independent scripts.
func RunAll(jobs []Job) []JobResult {
	results := make([]JobResult, len(jobs))
	var wg sync.WaitGroup
	wg.Add(len(jobs))
	for i, job := range jobs {
		go func(i int, job Job) {
			defer wg.Done()
			outcome, err := job.Pipeline.Run(job.Root)
			results[i] = JobResult{Index: i, Outcome: outcome, Err: err}
		}(i, job)
	}
	wg.Wait()
	return results
}
