package message

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/c360/uploadguard/config"
	"github.com/c360/uploadguard/types"
)

func TestStreamInitPayload_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, initPayload().Validate())
	})

	t.Run("missing operation id", func(t *testing.T) {
		p := initPayload()
		p.OperationID = ""
		assert.Error(t, p.Validate())
	})

	t.Run("invalid file", func(t *testing.T) {
		p := initPayload()
		p.File.Name = ""
		assert.Error(t, p.Validate())
	})

	t.Run("negative file size", func(t *testing.T) {
		p := initPayload()
		p.File.Size = -1
		assert.Error(t, p.Validate())
	})

	t.Run("override risk threshold out of range", func(t *testing.T) {
		p := initPayload()
		p.Config = &config.AnalysisConfig{RiskThreshold: 1.5}
		assert.Error(t, p.Validate())
	})

	t.Run("partial overrides allowed", func(t *testing.T) {
		p := initPayload()
		p.Config = &config.AnalysisConfig{RiskThreshold: 0.4}
		assert.NoError(t, p.Validate())
	})
}

func TestStreamChunkPayload_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		p := &StreamChunkPayload{OperationID: "op-1", Chunk: ChunkData{Index: 0, Data: "hello"}}
		assert.NoError(t, p.Validate())
	})

	t.Run("missing operation id", func(t *testing.T) {
		p := &StreamChunkPayload{Chunk: ChunkData{Index: 0}}
		assert.Error(t, p.Validate())
	})

	t.Run("negative index", func(t *testing.T) {
		p := &StreamChunkPayload{OperationID: "op-1", Chunk: ChunkData{Index: -1}}
		assert.Error(t, p.Validate())
	})

	t.Run("empty data allowed", func(t *testing.T) {
		p := &StreamChunkPayload{OperationID: "op-1", Chunk: ChunkData{Index: 2, IsLast: true}}
		assert.NoError(t, p.Validate())
	})
}

func TestStatusRequestPayload_Validate(t *testing.T) {
	t.Run("valid sections", func(t *testing.T) {
		p := &StatusRequestPayload{RequestedInfo: []string{InfoConfig, InfoStats, InfoHealth, InfoFaults}}
		assert.NoError(t, p.Validate())
	})

	t.Run("empty request", func(t *testing.T) {
		assert.Error(t, (&StatusRequestPayload{}).Validate())
	})

	t.Run("unknown section", func(t *testing.T) {
		p := &StatusRequestPayload{RequestedInfo: []string{"secrets"}}
		assert.Error(t, p.Validate())
	})
}

func TestConfigUpdatePayload_Validate(t *testing.T) {
	t.Run("valid full config", func(t *testing.T) {
		p := &ConfigUpdatePayload{Config: config.DefaultAnalysisConfig()}
		assert.NoError(t, p.Validate())
	})

	t.Run("invalid config rejected", func(t *testing.T) {
		cfg := config.DefaultAnalysisConfig()
		cfg.RiskThreshold = 3
		p := &ConfigUpdatePayload{Config: cfg}
		assert.Error(t, p.Validate())
	})
}

func TestResultPayloads_Validate(t *testing.T) {
	t.Run("failed init result needs error", func(t *testing.T) {
		p := &StreamInitResult{Success: false, OperationID: "op-1"}
		assert.Error(t, p.Validate())
		p.Error = &ErrorInfo{Code: "CAPACITY_EXCEEDED", Message: "full"}
		assert.NoError(t, p.Validate())
	})

	t.Run("chunk result progress bounds", func(t *testing.T) {
		p := &StreamChunkResult{Success: true, ChunkIndex: 0, Progress: 101}
		assert.Error(t, p.Validate())
		p.Progress = 50
		assert.NoError(t, p.Validate())
	})

	t.Run("successful finalize needs a result", func(t *testing.T) {
		p := &StreamFinalizeResult{Success: true}
		assert.Error(t, p.Validate())
		p.Result = &types.RiskResult{Decision: types.DecisionAllow, Scored: true}
		assert.NoError(t, p.Validate())
	})
}
