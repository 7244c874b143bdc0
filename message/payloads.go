package message

import (
	"fmt"

	"github.com/c360/uploadguard/config"
	"github.com/c360/uploadguard/types"
)

// ErrorInfo is the structured error shape carried by failure responses
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StreamInitPayload opens a new streaming scan operation
type StreamInitPayload struct {
	OperationID string                 `json:"operation_id"`
	File        types.FileInfo         `json:"file"`
	Config      *config.AnalysisConfig `json:"config,omitempty"`
	Preset      string                 `json:"preset,omitempty"`
}

// MessageType implements Payload
func (p *StreamInitPayload) MessageType() Type { return TypeStreamInit }

// Validate implements Payload
func (p *StreamInitPayload) Validate() error {
	if p.OperationID == "" {
		return fmt.Errorf("operation_id is required")
	}
	if err := p.File.Validate(); err != nil {
		return fmt.Errorf("file: %w", err)
	}
	if p.Config != nil {
		// Overrides are partial; only explicitly set fields are checked
		if p.Config.RiskThreshold < 0 || p.Config.RiskThreshold > 1 {
			return fmt.Errorf("config: risk_threshold must be in [0,1]")
		}
		if p.Config.EntropyThreshold < 0 {
			return fmt.Errorf("config: entropy_threshold cannot be negative")
		}
		if p.Config.MaxWords < 0 {
			return fmt.Errorf("config: max_words cannot be negative")
		}
		if p.Config.ChunkSize < 0 {
			return fmt.Errorf("config: chunk_size cannot be negative")
		}
	}
	return nil
}

// ChunkData carries one ordered slice of file content
type ChunkData struct {
	Index  int    `json:"index"`
	Data   string `json:"data"`
	IsLast bool   `json:"is_last"`
}

// StreamChunkPayload delivers one chunk for an open operation
type StreamChunkPayload struct {
	OperationID string    `json:"operation_id"`
	Chunk       ChunkData `json:"chunk"`
	Force       bool      `json:"force,omitempty"`
}

// MessageType implements Payload
func (p *StreamChunkPayload) MessageType() Type { return TypeStreamChunk }

// Validate implements Payload
func (p *StreamChunkPayload) Validate() error {
	if p.OperationID == "" {
		return fmt.Errorf("operation_id is required")
	}
	if p.Chunk.Index < 0 {
		return fmt.Errorf("chunk index cannot be negative, got %d", p.Chunk.Index)
	}
	return nil
}

// StreamFinalizePayload requests the final risk result for an operation
type StreamFinalizePayload struct {
	OperationID string `json:"operation_id"`
	Force       bool   `json:"force,omitempty"`
}

// MessageType implements Payload
func (p *StreamFinalizePayload) MessageType() Type { return TypeStreamFinalize }

// Validate implements Payload
func (p *StreamFinalizePayload) Validate() error {
	if p.OperationID == "" {
		return fmt.Errorf("operation_id is required")
	}
	return nil
}

// StatusRequestPayload queries engine state
type StatusRequestPayload struct {
	RequestedInfo []string `json:"requested_info"`
}

// Valid requested_info values
const (
	InfoConfig = "config"
	InfoStats  = "stats"
	InfoHealth = "health"
	InfoFaults = "faults"
)

// MessageType implements Payload
func (p *StatusRequestPayload) MessageType() Type { return TypeStatusRequest }

// Validate implements Payload
func (p *StatusRequestPayload) Validate() error {
	if len(p.RequestedInfo) == 0 {
		return fmt.Errorf("requested_info cannot be empty")
	}
	valid := map[string]bool{InfoConfig: true, InfoStats: true, InfoHealth: true, InfoFaults: true}
	for _, info := range p.RequestedInfo {
		if !valid[info] {
			return fmt.Errorf("unknown requested_info value %q", info)
		}
	}
	return nil
}

// ConfigUpdatePayload replaces the default analysis configuration
type ConfigUpdatePayload struct {
	Config           config.AnalysisConfig `json:"config"`
	ApplyImmediately bool                  `json:"apply_immediately"`
}

// MessageType implements Payload
func (p *ConfigUpdatePayload) MessageType() Type { return TypeConfigUpdate }

// Validate implements Payload
func (p *ConfigUpdatePayload) Validate() error {
	if err := p.Config.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// BackpressureInfo mirrors the controller's signal on the wire
type BackpressureInfo struct {
	Pause          bool    `json:"pause"`
	ResumeAfterMs  int64   `json:"resume_after_ms"`
	QueueSize      int     `json:"queue_size"`
	MaxQueueSize   int     `json:"max_queue_size"`
	ProcessingRate float64 `json:"processing_rate"`
}

// StreamInitResult answers a STREAM_INIT
type StreamInitResult struct {
	Success     bool       `json:"success"`
	OperationID string     `json:"operation_id"`
	TotalChunks int        `json:"total_chunks,omitempty"`
	Error       *ErrorInfo `json:"error,omitempty"`
	Retryable   bool       `json:"retryable"`
}

// MessageType implements Payload
func (p *StreamInitResult) MessageType() Type { return TypeStreamInitResult }

// Validate implements Payload
func (p *StreamInitResult) Validate() error {
	if p.OperationID == "" {
		return fmt.Errorf("operation_id is required")
	}
	if !p.Success && p.Error == nil {
		return fmt.Errorf("failed result must carry an error")
	}
	return nil
}

// StreamChunkResult answers a STREAM_CHUNK
type StreamChunkResult struct {
	Success         bool                  `json:"success"`
	ChunkIndex      int                   `json:"chunk_index"`
	Progress        float64               `json:"progress"` // 0-100
	EstimatedTimeMs int64                 `json:"estimated_time_ms,omitempty"`
	Backpressure    *BackpressureInfo     `json:"backpressure,omitempty"`
	Stats           *types.OperationStats `json:"stats,omitempty"`
	Error           *ErrorInfo            `json:"error,omitempty"`
	Retryable       bool                  `json:"retryable"`
	RetryAfterMs    int64                 `json:"retry_after_ms,omitempty"`
}

// MessageType implements Payload
func (p *StreamChunkResult) MessageType() Type { return TypeStreamChunkResult }

// Validate implements Payload
func (p *StreamChunkResult) Validate() error {
	if p.ChunkIndex < 0 {
		return fmt.Errorf("chunk_index cannot be negative")
	}
	if p.Progress < 0 || p.Progress > 100 {
		return fmt.Errorf("progress must be in [0,100], got %v", p.Progress)
	}
	if !p.Success && p.Error == nil {
		return fmt.Errorf("failed result must carry an error")
	}
	return nil
}

// StreamFinalizeResult answers a STREAM_FINALIZE
type StreamFinalizeResult struct {
	Success   bool              `json:"success"`
	Result    *types.RiskResult `json:"result,omitempty"`
	Error     *ErrorInfo        `json:"error,omitempty"`
	Retryable bool              `json:"retryable"`
}

// MessageType implements Payload
func (p *StreamFinalizeResult) MessageType() Type { return TypeStreamFinalizeResult }

// Validate implements Payload
func (p *StreamFinalizeResult) Validate() error {
	if p.Success && p.Result == nil {
		return fmt.Errorf("successful result must carry a risk result")
	}
	if !p.Success && p.Error == nil {
		return fmt.Errorf("failed result must carry an error")
	}
	return nil
}

// HealthInfo summarizes engine liveness for status queries
type HealthInfo struct {
	Healthy          bool              `json:"healthy"`
	Status           string            `json:"status"`
	ActiveOperations int               `json:"active_operations"`
	UptimeMs         int64             `json:"uptime_ms"`
	Version          string            `json:"version"`
	Components       []ComponentHealth `json:"components,omitempty"`
}

// ComponentHealth is one component's contribution to the engine health
type ComponentHealth struct {
	Component string `json:"component"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
}

// FaultInfo is one fault log entry rendered for status queries
type FaultInfo struct {
	Kind      string `json:"kind"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
	Retryable bool   `json:"retryable"`
	Context   string `json:"context,omitempty"`
}

// StatusResponsePayload answers a STATUS_REQUEST; only requested sections
// are populated
type StatusResponsePayload struct {
	Config *config.Config                  `json:"config,omitempty"`
	Stats  map[string]types.OperationStats `json:"stats,omitempty"`
	Health *HealthInfo                     `json:"health,omitempty"`
	Faults []FaultInfo                     `json:"faults,omitempty"`
}

// MessageType implements Payload
func (p *StatusResponsePayload) MessageType() Type { return TypeStatusResponse }

// Validate implements Payload
func (p *StatusResponsePayload) Validate() error {
	return nil
}

// ConfigAckPayload acknowledges a CONFIG_UPDATE
type ConfigAckPayload struct {
	Success bool       `json:"success"`
	Applied bool       `json:"applied"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// MessageType implements Payload
func (p *ConfigAckPayload) MessageType() Type { return TypeConfigAck }

// Validate implements Payload
func (p *ConfigAckPayload) Validate() error {
	if !p.Success && p.Error == nil {
		return fmt.Errorf("failed ack must carry an error")
	}
	return nil
}
