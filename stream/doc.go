// Package stream is the streaming operation engine. The Manager owns the
// table of in-flight scan operations, admits new ones against concurrency
// limits, feeds ordered chunks to the analysis backend through the
// adapter, mirrors backpressure signals onto operation state, recovers
// from faults per the policy package, and sweeps stale operations on a
// fixed period.
//
// Operations are step-driven by external calls; the engine never runs
// intra-operation parallelism and never reorders chunks. The only shared
// mutable state is the injected operation store, and every mutation goes
// through a Manager entry point.
package stream
