package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"casbridge/internal/pkg/mq"
	"casbridge/internal/service/licensing/domain"
)

// 事件类型。下游分析管道按这个字段路由。
const (
	eventTypeSaleLogged     = "cassandra.sale.logged"
	eventTypeProductLogged  = "cassandra.product.logged"
	eventTypeRelationSynced = "cassandra.relation.synced"
)

// eventEnvelope 是发往 Kafka 的统一信封。
type eventEnvelope struct {
	EventID    string `json:"event_id"`
	EventType  string `json:"event_type"`
	OccurredAt string `json:"occurred_at"`
	Payload    any    `json:"payload"`
}

// EventsKafkaAdapter 是 port.EventSink 的 Kafka 实现。
// 成功上报到 Cassandra 之后，同一份数据再发布一份给下游消费。
type EventsKafkaAdapter struct {
	writer *kafka.Writer
}

// NewEventsKafkaAdapter 创建一个新的事件发布适配器。
func NewEventsKafkaAdapter(writer *kafka.Writer) *EventsKafkaAdapter {
	return &EventsKafkaAdapter{writer: writer}
}

func (a *EventsKafkaAdapter) publish(ctx context.Context, eventType string, key string, payload any) error {
	envelope := eventEnvelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
		Payload:    payload,
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}
	if err := mq.ProduceMessage(ctx, a.writer, []byte(key), value); err != nil {
		return fmt.Errorf("failed to produce %s event: %w", eventType, err)
	}
	return nil
}

// SaleLogged 发布一条销售上报事件。
func (a *EventsKafkaAdapter) SaleLogged(ctx context.Context, record *domain.SalesRecord) error {
	key := record.OrderCurrency
	if len(record.Lines) > 0 {
		key = fmt.Sprintf("%d", record.Lines[0].OrderID)
	}
	return a.publish(ctx, eventTypeSaleLogged, key, record)
}

// ProductLogged 发布一条商品交互事件。
func (a *EventsKafkaAdapter) ProductLogged(ctx context.Context, entry *domain.ProductLog) error {
	return a.publish(ctx, eventTypeProductLogged, fmt.Sprintf("%d", entry.ProductID), entry)
}

// RelationSynced 发布一条关系同步事件，relation-sync 任务使用。
func (a *EventsKafkaAdapter) RelationSynced(ctx context.Context, relation *domain.OrderItemRelation) error {
	return a.publish(ctx, eventTypeRelationSynced, fmt.Sprintf("%d", relation.OrderItemID), relation)
}
