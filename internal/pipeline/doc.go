// Package pipeline orchestrates file discovery, parallel job dispatch,
// safe in-place replacement, and outcome aggregation.
//
// Control flow for one run:
//
//	Discover -> Strategy.Dispatch(Executor) -> Aggregator -> RunResult
//
// Every per-file failure is returned as a [JobOutcome]; only pre-flight
// problems (missing directory, encoder too old for wide mode) and operator
// interrupts surface as Go errors from [Run].
package pipeline
