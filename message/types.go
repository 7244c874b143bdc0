package message

// Type identifies a message kind on the wire. The set is closed: an
// envelope carrying any other value fails validation before the payload is
// even looked at.
type Type string

// Request message types
const (
	TypeStreamInit     Type = "STREAM_INIT"
	TypeStreamChunk    Type = "STREAM_CHUNK"
	TypeStreamFinalize Type = "STREAM_FINALIZE"
	TypeStatusRequest  Type = "STATUS_REQUEST"
	TypeConfigUpdate   Type = "CONFIG_UPDATE"
)

// Response message types
const (
	TypeStreamInitResult     Type = "STREAM_INIT_RESULT"
	TypeStreamChunkResult    Type = "STREAM_CHUNK_RESULT"
	TypeStreamFinalizeResult Type = "STREAM_FINALIZE_RESULT"
	TypeStatusResponse       Type = "STATUS_RESPONSE"
	TypeConfigAck            Type = "CONFIG_ACK"
)

// knownTypes is the closed enum of valid message types
var knownTypes = map[Type]bool{
	TypeStreamInit:           true,
	TypeStreamChunk:          true,
	TypeStreamFinalize:       true,
	TypeStatusRequest:        true,
	TypeConfigUpdate:         true,
	TypeStreamInitResult:     true,
	TypeStreamChunkResult:    true,
	TypeStreamFinalizeResult: true,
	TypeStatusResponse:       true,
	TypeConfigAck:            true,
}

// IsValid reports whether the type belongs to the closed enum
func (t Type) IsValid() bool {
	return knownTypes[t]
}

// ResponseType returns the response kind paired with a request kind,
// and false for types that are not requests.
func (t Type) ResponseType() (Type, bool) {
	switch t {
	case TypeStreamInit:
		return TypeStreamInitResult, true
	case TypeStreamChunk:
		return TypeStreamChunkResult, true
	case TypeStreamFinalize:
		return TypeStreamFinalizeResult, true
	case TypeStatusRequest:
		return TypeStatusResponse, true
	case TypeConfigUpdate:
		return TypeConfigAck, true
	default:
		return "", false
	}
}
