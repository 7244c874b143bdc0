// Package config defines the daemon and analysis configuration model.
//
// Two configuration scopes exist with different lifetimes:
//
//   - AnalysisConfig: merged from defaults and per-request overrides when an
//     operation is initialized, then frozen for that operation's lifetime.
//     Named presets (default, high, low) are ordinary validated
//     configurations resolvable by Preset().
//   - EngineConfig / ServerConfig: process-wide limits and listeners, swapped
//     atomically through SafeConfig when a CONFIG_UPDATE arrives.
//
// File loading goes through afero so tests can exercise the loader against
// an in-memory filesystem.
package config
