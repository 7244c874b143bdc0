// Package uploadguard provides the background streaming engine for upload
// content scanning: files intercepted at the browser boundary are fed to the
// engine chunk by chunk, analyzed incrementally under a fixed memory ceiling,
// and answered with an allow-or-block risk verdict.
//
// # Architecture
//
// The engine is a single long-running daemon. Clients (extension pages, test
// harnesses, other services) speak a versioned JSON envelope protocol over
// WebSocket or NATS request/reply; every operation flows through the same
// dispatcher regardless of transport.
//
//	┌──────────────────────────────────────┐
//	│      Transports (ws, natsrpc)        │  Framing only
//	└──────────────────┬───────────────────┘
//	                   ↓ raw envelopes
//	┌──────────────────────────────────────┐
//	│        Gateway Dispatcher            │  Protocol semantics,
//	│   (parse, route, render replies)     │  error codes
//	└──────────────────┬───────────────────┘
//	                   ↓ typed calls
//	┌──────────────────────────────────────┐
//	│         Stream Manager               │  Admission, lifecycle,
//	│ (operations, backpressure, faults)   │  cleanup sweeps
//	└──────────────────┬───────────────────┘
//	                   ↓ opaque handles
//	┌──────────────────────────────────────┐
//	│        Backend Adapter               │  Circuit breaker,
//	│  (native / legacy / fallback)        │  shape normalization
//	└──────────────────────────────────────┘
//
// Each upload is one operation: init, N ordered chunks, finalize. Operations
// move through initializing, processing, paused, and the terminal completed
// and error states. The manager enforces concurrency and queue limits, pauses
// producers through backpressure signals, retries or degrades failed backend
// calls per the recovery policy, and sweeps stale operations on a timer.
//
// # Packages
//
// Engine core:
//   - stream: operation lifecycle, admission, cleanup
//   - backend: adapter over analysis builds, handle arena, normalization
//   - backend/native: banned-phrase, PII, and entropy analysis
//   - backend/legacy: older result shape, kept for compatibility testing
//   - backend/fallback: word-count-only degraded analysis
//   - backpressure: pause/resume signals and flow valves
//   - policy: fault classification, recovery decisions, fault log
//
// Protocol:
//   - message: envelope and payload types
//   - gateway: dispatcher and wire error codes
//   - transport/ws: WebSocket server
//   - transport/natsrpc: NATS request/reply responder
//
// Infrastructure:
//   - config: analysis presets, engine limits, loader
//   - errors: classified error handling
//   - metric: Prometheus metrics and exposition server
//   - health: component health statuses
//   - pkg/buffer: generic ring buffer
//   - pkg/retry: retry with progressive backoff
//   - pkg/timestamp: Unix-millisecond helpers
//
// # Binary
//
// cmd/uploadguardd runs the daemon:
//
//	uploadguardd serve --listen 127.0.0.1:8745 --metrics 127.0.0.1:9745
//
// The server binds loopback only; the engine is a local companion process,
// not a network service.
package uploadguard
