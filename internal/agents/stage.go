// Package agents implements the four stage agents of the trading
// pipeline: director, quant, risk, and execution. Each agent sends a role
// prompt to the reasoning capability, extracts the JSON object from the
// raw response, validates it against the stage schema, and decodes it into
// the domain type. Invalid responses are retried up to the configured
// limit; the first schema-valid response wins.
package agents

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/bhardwajRahul/AutoHedge/internal/adapters/ai"
	"github.com/bhardwajRahul/AutoHedge/internal/domain/trade"
	"github.com/bhardwajRahul/AutoHedge/internal/metrics"
	"github.com/bhardwajRahul/AutoHedge/pkg/errors"
	"github.com/bhardwajRahul/AutoHedge/pkg/logger"
)

// Runtime carries the shared machinery every stage agent needs.
type Runtime struct {
	Capability  ai.Capability
	Auditor     Auditor
	RetryLimit  int // retries beyond the first attempt
	Temperature float64
	MaxTokens   int
}

// NewRuntime builds a runtime with sane fallbacks for optional fields.
func NewRuntime(capability ai.Capability, auditor Auditor, retryLimit int, temperature float64, maxTokens int) *Runtime {
	if auditor == nil {
		auditor = NopAuditor{}
	}
	if retryLimit < 0 {
		retryLimit = 0
	}
	return &Runtime{
		Capability:  capability,
		Auditor:     auditor,
		RetryLimit:  retryLimit,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}

// stageCall identifies one stage invocation for auditing and logging.
type stageCall struct {
	RunID  uuid.UUID
	Symbol string
	Stage  trade.Stage
	System string
	User   string
}

// runStage drives the call-extract-validate-decode loop for one stage.
// Transient capability failures and malformed output are both retried up
// to the limit with the same inputs; the first schema-valid response
// wins. Context cancellation aborts immediately.
func runStage[T any](ctx context.Context, rt *Runtime, call stageCall) (*T, error) {
	schema := schemaFor(call.Stage)
	log := logger.Get().With("run_id", call.RunID, "symbol", call.Symbol, "stage", call.Stage)

	var lastErr error
	capabilityDown := false
	for attempt := 0; attempt <= rt.RetryLimit; attempt++ {
		if attempt > 0 {
			metrics.StageRetries.WithLabelValues(string(call.Stage)).Inc()
			log.Warnw("retrying stage", "attempt", attempt, "error", lastErr)
		}
		if err := ctx.Err(); err != nil {
			return nil, errors.NewStageError(string(call.Stage), err)
		}

		start := time.Now()
		resp, err := rt.Capability.Generate(ctx, ai.Request{
			System:      call.System,
			User:        call.User,
			Temperature: rt.Temperature,
			MaxTokens:   rt.MaxTokens,
		})
		if err != nil {
			metrics.RecordStageCall(string(call.Stage), time.Since(start), 0, err)
			rt.Auditor.Audit(ctx, AuditEntry{
				RunID: call.RunID, Symbol: call.Symbol, Stage: call.Stage,
				Attempt: attempt, Prompt: call.User, Error: err.Error(),
				Timestamp: time.Now().UTC(),
			})
			lastErr = err
			capabilityDown = true
			continue
		}
		metrics.RecordStageCall(string(call.Stage), time.Since(start), resp.Usage.TotalTokens, nil)

		out, vErr := decodeStageOutput[T](schema, resp.Content)
		rt.Auditor.Audit(ctx, AuditEntry{
			RunID: call.RunID, Symbol: call.Symbol, Stage: call.Stage,
			Attempt: attempt, Prompt: call.User, Response: resp.Content,
			Valid: vErr == nil, Error: errString(vErr),
			Timestamp: time.Now().UTC(),
		})
		if vErr == nil {
			return out, nil
		}
		lastErr = vErr
		capabilityDown = false
	}

	if capabilityDown {
		if !errors.Is(lastErr, errors.ErrCapabilityUnavailable) {
			lastErr = errors.Wrap(errors.ErrCapabilityUnavailable, lastErr.Error())
		}
		return nil, errors.NewStageError(string(call.Stage),
			errors.Wrapf(lastErr, "after %d attempts", rt.RetryLimit+1))
	}
	return nil, errors.NewStageError(string(call.Stage),
		errors.Wrapf(errors.ErrSchemaValidation, "after %d attempts: %v", rt.RetryLimit+1, lastErr))
}

// decodeStageOutput extracts the JSON object from raw model text,
// validates it against the stage schema, and decodes it.
func decodeStageOutput[T any](schema *jsonschema.Schema, raw string) (*T, error) {
	doc, ok := extractJSONObject(raw)
	if !ok {
		return nil, errors.New("no JSON object in response")
	}

	var generic interface{}
	if err := json.Unmarshal([]byte(doc), &generic); err != nil {
		return nil, errors.Wrap(err, "parse JSON object")
	}

	if err := schema.Validate(generic); err != nil {
		return nil, errors.Wrap(err, "schema validation")
	}

	var out T
	if err := json.Unmarshal([]byte(doc), &out); err != nil {
		return nil, errors.Wrap(err, "decode stage output")
	}
	return &out, nil
}

func schemaFor(stage trade.Stage) *jsonschema.Schema {
	switch stage {
	case trade.StageDirector:
		return compiledThesisSchema
	case trade.StageQuant:
		return compiledAnalysisSchema
	case trade.StageRisk:
		return compiledRiskSchema
	default:
		return compiledExecutionSchema
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
