package message

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/c360/uploadguard/errors"
)

// payloadFactories maps each message type to a factory for its payload
// struct. The table is fixed at init; decoding a type without a factory is
// a validation fault, never a partial parse.
var payloadFactories = map[Type]func() Payload{
	TypeStreamInit:           func() Payload { return &StreamInitPayload{} },
	TypeStreamChunk:          func() Payload { return &StreamChunkPayload{} },
	TypeStreamFinalize:       func() Payload { return &StreamFinalizePayload{} },
	TypeStatusRequest:        func() Payload { return &StatusRequestPayload{} },
	TypeConfigUpdate:         func() Payload { return &ConfigUpdatePayload{} },
	TypeStreamInitResult:     func() Payload { return &StreamInitResult{} },
	TypeStreamChunkResult:    func() Payload { return &StreamChunkResult{} },
	TypeStreamFinalizeResult: func() Payload { return &StreamFinalizeResult{} },
	TypeStatusResponse:       func() Payload { return &StatusResponsePayload{} },
	TypeConfigAck:            func() Payload { return &ConfigAckPayload{} },
}

// decodePayload unmarshals raw payload bytes into the typed struct for the
// given message type. Unknown fields are rejected so schema drift between
// producer and engine surfaces as a validation fault instead of silently
// dropped data.
func decodePayload(t Type, data []byte) (Payload, error) {
	factory, ok := payloadFactories[t]
	if !ok {
		return nil, errors.WrapInvalid(errors.ErrInvalidMessage, "message", "decodePayload",
			fmt.Sprintf("no payload schema for type %q", t))
	}

	payload := factory()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(payload); err != nil {
		return nil, errors.WrapInvalid(err, "message", "decodePayload",
			fmt.Sprintf("decode %s payload", t))
	}
	return payload, nil
}
