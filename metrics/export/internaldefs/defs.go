package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// CounterDef defines a public type used by goSession APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goSession APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session engine.
var CounterDefs = []CounterDef{
	{ID: goSession.MetricSessionLoaded, Name: "gosession_session_loaded_total", Help: "Sessions decoded successfully from a request."},
	{ID: goSession.MetricSessionEmpty, Name: "gosession_session_empty_total", Help: "Requests that resolved to an empty session."},
	{ID: goSession.MetricSessionExpired, Name: "gosession_session_expired_total", Help: "Sessions discarded for exceeding the inactivity interval."},
	{ID: goSession.MetricMalformedCookie, Name: "gosession_malformed_cookie_total", Help: "Cookie sets rejected as malformed, tampered, or undecryptable."},
	{ID: goSession.MetricSessionStored, Name: "gosession_session_stored_total", Help: "Dirty sessions re-encoded on commit."},
	{ID: goSession.MetricSessionTerminated, Name: "gosession_session_terminated_total", Help: "Sessions terminated and expired on the client."},
	{ID: goSession.MetricChunksWritten, Name: "gosession_chunks_written_total", Help: "Payload cookie chunks written to responses."},
	{ID: goSession.MetricChunksCleared, Name: "gosession_chunks_cleared_total", Help: "Stale payload cookie chunks expired on shrink."},
	{ID: goSession.MetricConfigReloaded, Name: "gosession_config_reloaded_total", Help: "Successful configuration reloads."},
	{ID: goSession.MetricStoreFailure, Name: "gosession_store_failure_total", Help: "Server-side store operations that failed."},
}

// HistogramDefs is an exported constant or variable used by the session engine.
var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricCommitLatency, Name: "gosession_commit_latency_seconds", Help: "Commit latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the session engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
