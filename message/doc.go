// Package message defines the typed, versioned wire contracts for every
// cross-boundary exchange with the scan engine.
//
// # Design principles
//
//   - Closed type enum: an envelope with an unknown type fails validation
//     before its payload is touched.
//   - Wholesale rejection: Parse either returns a fully validated envelope
//     plus typed payload, or an error. No partially processed messages.
//   - Typed constructors: NewEnvelope takes a Payload that carries its own
//     message type, so producers cannot emit an envelope whose type
//     disagrees with its contents.
//   - Strict decoding: unknown payload fields are rejected, making schema
//     drift between producer and engine observable instead of silent.
//
// Request/response pairing is structural: Type.ResponseType() gives the
// response kind for each request kind, and Envelope.Reply builds a
// correlated response reusing the request ID.
package message
