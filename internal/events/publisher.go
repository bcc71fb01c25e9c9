// Package events publishes run lifecycle events for downstream consumers.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bhardwajRahul/AutoHedge/internal/adapters/kafka"
	"github.com/bhardwajRahul/AutoHedge/internal/domain/trade"
	"github.com/bhardwajRahul/AutoHedge/internal/metrics"
	"github.com/bhardwajRahul/AutoHedge/pkg/logger"
)

// Event types
const (
	TypeRunStarted      = "run.started"
	TypeSymbolCompleted = "symbol.completed"
	TypeRunFinished     = "run.finished"
)

// RunEvent is the wire payload for all run lifecycle events.
type RunEvent struct {
	Type       string       `json:"type"`
	RunID      uuid.UUID    `json:"run_id"`
	TaskID     uuid.UUID    `json:"task_id"`
	Symbol     string       `json:"symbol,omitempty"`
	Status     trade.Status `json:"status,omitempty"`
	Symbols    []string     `json:"symbols,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// Publisher emits run lifecycle events. Publish failures are logged, not
// propagated: eventing is observability, not a pipeline dependency.
type Publisher interface {
	RunStarted(ctx context.Context, runID, taskID uuid.UUID, symbols []string)
	SymbolCompleted(ctx context.Context, record *trade.TradeRecord)
	RunFinished(ctx context.Context, result *trade.RunResult)
}

// KafkaPublisher publishes run events to a Kafka topic.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
	log      *logger.Logger
}

// NewKafkaPublisher creates a Kafka-backed publisher.
func NewKafkaPublisher(producer *kafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		log:      logger.Get().With("component", "events"),
	}
}

func (p *KafkaPublisher) RunStarted(ctx context.Context, runID, taskID uuid.UUID, symbols []string) {
	p.publish(ctx, runID.String(), RunEvent{
		Type: TypeRunStarted, RunID: runID, TaskID: taskID,
		Symbols: symbols, OccurredAt: time.Now().UTC(),
	})
}

func (p *KafkaPublisher) SymbolCompleted(ctx context.Context, record *trade.TradeRecord) {
	p.publish(ctx, record.RunID.String(), RunEvent{
		Type: TypeSymbolCompleted, RunID: record.RunID, TaskID: record.TaskID,
		Symbol: record.Symbol, Status: record.Status, OccurredAt: time.Now().UTC(),
	})
}

func (p *KafkaPublisher) RunFinished(ctx context.Context, result *trade.RunResult) {
	p.publish(ctx, result.RunID.String(), RunEvent{
		Type: TypeRunFinished, RunID: result.RunID, TaskID: result.Task.ID,
		Symbols: result.Symbols(), OccurredAt: time.Now().UTC(),
	})
}

func (p *KafkaPublisher) publish(ctx context.Context, key string, event RunEvent) {
	if err := p.producer.Publish(ctx, p.topic, key, event); err != nil {
		metrics.KafkaPublishErrors.Inc()
		p.log.Errorw("publish run event", "type", event.Type, "error", err)
	}
}

// NopPublisher drops all events.
type NopPublisher struct{}

func (NopPublisher) RunStarted(context.Context, uuid.UUID, uuid.UUID, []string) {}
func (NopPublisher) SymbolCompleted(context.Context, *trade.TradeRecord)       {}
func (NopPublisher) RunFinished(context.Context, *trade.RunResult)             {}
