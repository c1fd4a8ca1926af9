// Package scheduler plans and executes match lifecycle transitions.
//
// When a match is written, Planner derives which status edges still lie
// in the future and enqueues a delayed transition job per edge under a
// deterministic identity, so re-planning after an edit replaces rather
// than duplicates. Worker polls the queue for due jobs and drives them
// through Processor, which applies a guarded conditional update: the
// transition is only written when the persisted status still matches
// the job's expectation, making duplicate or stale firings harmless.
package scheduler
