// Package download provides the orchestration logic for fetching
// Scratch projects concurrently.
//
// # Manager
//
// The Manager coordinates the entire download session:
//
//  1. Pull project IDs from a source
//  2. Dispatch fetch tasks to a worker pool
//  3. Record every terminal outcome exactly once
//  4. Keep pulling replacements until the success target is met
//
// # Basic Usage
//
//	manager := download.NewManager(download.Config{
//	    Source:   source.NewSequenceSource(104, 0),
//	    Runner:   fetcher,
//	    Recorder: recorder,
//	    Workers:  8,
//	    Target:   100,
//	})
//
//	err := manager.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Concurrency
//
// A single control goroutine owns the source and the recorder; only the
// fetch work itself fans out. The number of dispatched-but-unrecorded
// tasks never exceeds a window of four tasks per worker, so an
// unbounded source cannot flood memory and a stop has a bounded drain.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
//
// # Retry Logic
//
// Each task carries its own attempt budget, spent inside one worker
// invocation with exponential backoff between attempts. The manager
// never re-dispatches a task; a task that exhausts its budget is failed
// and, when a target is set, its slot goes to a fresh ID instead.
package download
