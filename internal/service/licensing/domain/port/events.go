package port

import (
	"context"

	"casbridge/internal/service/licensing/domain"
)

// EventSink 接收成功上报后的领域事件，供下游分析管道消费。
// 发布失败只记录日志，绝不影响上报调用本身的结果。
type EventSink interface {
	SaleLogged(ctx context.Context, record *domain.SalesRecord) error
	ProductLogged(ctx context.Context, entry *domain.ProductLog) error
	RelationSynced(ctx context.Context, relation *domain.OrderItemRelation) error
}
