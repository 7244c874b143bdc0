package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/c360/uploadguard/backpressure"
	"github.com/c360/uploadguard/config"
	"github.com/c360/uploadguard/errors"
	"github.com/c360/uploadguard/health"
	"github.com/c360/uploadguard/message"
	"github.com/c360/uploadguard/stream"
)

// Source is the engine's identity in reply envelopes
const Source = "engine"

// defaultFaultWindow is how many fault log entries a status query returns
const defaultFaultWindow = 50

// Dispatcher routes validated message envelopes to the streaming
// operation manager and renders typed responses. Transports hand it raw
// bytes and send back whatever it returns; the dispatcher owns all
// protocol semantics.
type Dispatcher struct {
	manager *stream.Manager
	cfg     *config.SafeConfig
	logger  *slog.Logger
	version string
}

// NewDispatcher creates a dispatcher bound to one manager
func NewDispatcher(manager *stream.Manager, cfg *config.SafeConfig, logger *slog.Logger, version string) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		manager: manager,
		cfg:     cfg,
		logger:  logger,
		version: version,
	}
}

// Dispatch parses and validates one request envelope, routes it, and
// returns the marshaled reply. Invalid messages are rejected wholesale:
// nothing is acted on and the error surfaces to the transport.
func (d *Dispatcher) Dispatch(ctx context.Context, data []byte) ([]byte, error) {
	env, payload, err := message.Parse(data)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Dispatcher", "Dispatch", "message validation")
	}

	var response message.Payload
	switch p := payload.(type) {
	case *message.StreamInitPayload:
		response = d.handleInit(ctx, p)
	case *message.StreamChunkPayload:
		response = d.handleChunk(p)
	case *message.StreamFinalizePayload:
		response = d.handleFinalize(ctx, p)
	case *message.StatusRequestPayload:
		response = d.handleStatus(p)
	case *message.ConfigUpdatePayload:
		response = d.handleConfigUpdate(p)
	default:
		return nil, errors.WrapInvalid(errors.ErrInvalidMessage, "Dispatcher", "Dispatch",
			"no handler for message type "+string(env.Type))
	}

	if env.Target == "" {
		env.Target = Source
	}
	reply, err := env.Reply(response)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Dispatcher", "Dispatch", "building reply")
	}
	return json.Marshal(reply)
}

func (d *Dispatcher) handleInit(ctx context.Context, p *message.StreamInitPayload) message.Payload {
	snap, err := d.manager.InitOperation(ctx, p.OperationID, p.File, p.Config, p.Preset)
	if err != nil {
		d.logger.Warn("stream init rejected",
			"operation_id", p.OperationID,
			"error", err)
		return &message.StreamInitResult{
			Success:     false,
			OperationID: p.OperationID,
			Error:       errorInfo(err),
			Retryable:   errors.IsTransient(err),
		}
	}

	return &message.StreamInitResult{
		Success:     true,
		OperationID: snap.ID,
		TotalChunks: totalChunks(snap.File.Size, snap.Config.ChunkSize),
	}
}

func (d *Dispatcher) handleChunk(p *message.StreamChunkPayload) message.Payload {
	outcome, err := d.manager.ProcessChunk(p.OperationID, p.Chunk.Index, p.Chunk.Data, p.Chunk.IsLast, p.Force)

	result := &message.StreamChunkResult{
		ChunkIndex:   p.Chunk.Index,
		Backpressure: backpressureInfo(outcome.Backpressure),
	}
	if outcome.Stats.TotalChunks > 0 {
		stats := outcome.Stats
		result.Stats = &stats
	}

	if err != nil {
		result.Error = errorInfo(err)
		result.Retryable = errors.IsTransient(err)
		if outcome.Decision != nil && outcome.Decision.Delay > 0 {
			result.RetryAfterMs = outcome.Decision.Delay.Milliseconds()
		} else if outcome.Backpressure.Pause {
			result.RetryAfterMs = outcome.Backpressure.ResumeAfter.Milliseconds()
		}
		return result
	}

	result.Success = true
	result.Progress = progress(outcome.Stats.TotalContentLength, fileSizeFor(d.manager, p.OperationID))
	result.EstimatedTimeMs = estimateRemaining(outcome.Stats.Elapsed, result.Progress)
	if outcome.Backpressure.Pause {
		result.RetryAfterMs = outcome.Backpressure.ResumeAfter.Milliseconds()
	}
	return result
}

func (d *Dispatcher) handleFinalize(ctx context.Context, p *message.StreamFinalizePayload) message.Payload {
	result, err := d.manager.FinalizeOperation(ctx, p.OperationID, p.Force)
	if err != nil {
		return &message.StreamFinalizeResult{
			Success:   false,
			Error:     errorInfo(err),
			Retryable: errors.IsTransient(err),
		}
	}
	return &message.StreamFinalizeResult{
		Success: true,
		Result:  &result,
	}
}

func (d *Dispatcher) handleStatus(p *message.StatusRequestPayload) message.Payload {
	response := &message.StatusResponsePayload{}
	for _, info := range p.RequestedInfo {
		switch info {
		case message.InfoConfig:
			response.Config = d.cfg.Get()
		case message.InfoStats:
			response.Stats = d.manager.OperationStats()
		case message.InfoHealth:
			hc := d.manager.HealthCheck()
			info := &message.HealthInfo{
				Healthy:          hc.Healthy,
				Status:           hc.Status.Status,
				ActiveOperations: hc.ActiveOperations,
				UptimeMs:         hc.Uptime.Milliseconds(),
				Version:          d.version,
			}
			for _, sub := range hc.Status.SubStatuses {
				info.Components = append(info.Components, message.ComponentHealth{
					Component: sub.Component,
					Status:    sub.Status,
					Message:   sub.Message,
				})
			}
			response.Health = info
		case message.InfoFaults:
			for _, record := range d.manager.Faults(defaultFaultWindow) {
				response.Faults = append(response.Faults, message.FaultInfo{
					Kind:      string(record.Kind),
					Severity:  record.Severity,
					Message:   health.Sanitize(record.Message),
					Timestamp: record.Timestamp,
					Retryable: record.Retryable,
					Context:   record.Context,
				})
			}
		}
	}
	return response
}

// handleConfigUpdate swaps the default analysis configuration. In-flight
// operations keep the snapshot they were admitted with regardless of
// apply_immediately; only future admissions see the new defaults.
func (d *Dispatcher) handleConfigUpdate(p *message.ConfigUpdatePayload) message.Payload {
	updated := d.cfg.Get()
	updated.Analysis = p.Config

	if err := d.cfg.Update(updated); err != nil {
		return &message.ConfigAckPayload{
			Success: false,
			Error:   errorInfo(err),
		}
	}

	d.logger.Info("analysis configuration updated",
		"apply_immediately", p.ApplyImmediately)
	return &message.ConfigAckPayload{
		Success: true,
		Applied: true,
	}
}

// totalChunks is the chunk count a producer should slice the file into
func totalChunks(size, chunkSize int64) int {
	if size <= 0 {
		return 1
	}
	if chunkSize <= 0 {
		chunkSize = config.DefaultChunkSize
	}
	return int((size + chunkSize - 1) / chunkSize)
}

// progress maps processed bytes to 0-100 against the declared file size
func progress(processed, total int64) float64 {
	if total <= 0 {
		return 100
	}
	p := float64(processed) / float64(total) * 100
	if p > 100 {
		p = 100
	}
	return p
}

// estimateRemaining extrapolates remaining time from elapsed and progress
func estimateRemaining(elapsed time.Duration, progress float64) int64 {
	if progress <= 0 || progress >= 100 {
		return 0
	}
	remaining := float64(elapsed.Milliseconds()) * (100 - progress) / progress
	return int64(remaining)
}

func fileSizeFor(m *stream.Manager, id string) int64 {
	snap, err := m.GetOperation(id)
	if err != nil {
		return 0
	}
	return snap.File.Size
}

func backpressureInfo(sig backpressure.Signal) *message.BackpressureInfo {
	return &message.BackpressureInfo{
		Pause:          sig.Pause,
		ResumeAfterMs:  sig.ResumeAfter.Milliseconds(),
		QueueSize:      sig.QueueSize,
		MaxQueueSize:   sig.MaxQueueSize,
		ProcessingRate: sig.ProcessingRate,
	}
}

// errorInfo renders an error as the wire error shape
func errorInfo(err error) *message.ErrorInfo {
	return &message.ErrorInfo{
		Code:    errorCode(err),
		Message: err.Error(),
	}
}

// ErrorFrame renders a bare error reply for requests that failed envelope
// validation and therefore cannot be correlated to a request id.
func ErrorFrame(err error) []byte {
	frame := struct {
		Success bool               `json:"success"`
		Error   *message.ErrorInfo `json:"error"`
	}{Success: false, Error: errorInfo(err)}
	data, _ := json.Marshal(frame)
	return data
}
