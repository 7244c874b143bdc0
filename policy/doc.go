// Package policy classifies faults and decides how the engine recovers
// from them. Classification prefers sentinel error checks raised by lower
// layers and falls back to coarse keyword matching over the error text.
// Decisions map a classified fault and its attempt count to one of
// RETRY, FALLBACK, ABORT, or IGNORE; every occurrence is appended to a
// bounded fault log queryable through status requests.
package policy
