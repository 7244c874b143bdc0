// Package gateway turns raw transport bytes into engine calls. The
// Dispatcher is transport-agnostic: websocket and NATS hand it request
// envelopes and forward whatever reply it renders. It owns the mapping
// from engine errors to wire error codes and from backpressure signals
// to retry hints.
package gateway
