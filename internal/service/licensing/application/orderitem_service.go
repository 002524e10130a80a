package application

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"casbridge/internal/pkg/constants"
	"casbridge/internal/service/licensing/domain"
	"casbridge/internal/service/licensing/domain/port"
)

// OrderItemService 封装 OrderItemRelation 资源的查询与删除。
type OrderItemService struct {
	exec   Executor
	hosts  HostResolver
	orders port.OrderProvider // 仅用于日志里补充订单号，可为 nil
	tracer trace.Tracer
}

// NewOrderItemService 创建一个新的订单行关系门面。
func NewOrderItemService(
	exec Executor,
	hosts HostResolver,
	orders port.OrderProvider,
	tracer trace.Tracer,
) *OrderItemService {
	return &OrderItemService{exec: exec, hosts: hosts, orders: orders, tracer: tracer}
}

// Get 取一条订单行关系。
// 远端对这个资源经常回 404，那是合法的"没找到"，返回 nil 而不是错误。
func (s *OrderItemService) Get(ctx context.Context, orderItemID int64) *domain.OrderItemRelation {
	const op = "orderitem.Get"
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()
	start := time.Now()

	if orderItemID <= 0 {
		logSwallowed(ctx, op, "", &domain.PreconditionError{
			Op: op, Reason: "order_item_id must be a positive integer",
		})
		return nil
	}

	url := fmt.Sprintf("%s%s%d/", s.hosts.BaseURL(ctx), constants.PathAuthOrderItems, orderItemID)
	resp, err := s.exec.Execute(ctx, http.MethodGet, url, nil,
		[]int{http.StatusOK, http.StatusNotFound}, nil)
	if err != nil {
		observe(op, outcomeFailure, start)
		logSwallowed(ctx, op, s.orderContext(ctx, orderItemID), err)
		return nil
	}
	if resp.StatusCode == http.StatusNotFound {
		observe(op, outcomeNotFound, start)
		return nil
	}

	obj, ok := resp.Object()
	if !ok {
		observe(op, outcomeFailure, start)
		logSwallowed(ctx, op, s.orderContext(ctx, orderItemID), &domain.MalformedResponseError{
			Field: "(body)", Reason: "response body is not a JSON object",
		})
		return nil
	}
	relation, err := domain.MapOrderItemRelation(obj)
	if err != nil {
		observe(op, outcomeFailure, start)
		logSwallowed(ctx, op, s.orderContext(ctx, orderItemID), err)
		return nil
	}

	observe(op, outcomeSuccess, start)
	return relation
}

// orderContext 给失败日志补一条订单号线索。查不到就省略。
func (s *OrderItemService) orderContext(ctx context.Context, orderItemID int64) string {
	if s.orders == nil {
		return ""
	}
	orderID, err := s.orders.OrderIDByOrderItemID(ctx, orderItemID)
	if err != nil || orderID == 0 {
		return ""
	}
	return fmt.Sprintf("Order ID: %d", orderID)
}

// GetFromOrder 用订单号直接取关系。只允许单行、单件的订单。
func (s *OrderItemService) GetFromOrder(ctx context.Context, orderID int64) *domain.OrderItemRelation {
	const op = "orderitem.GetFromOrder"

	if s.orders == nil {
		logSwallowed(ctx, op, "", &domain.PreconditionError{
			Op: op, Reason: "order provider is not configured",
		})
		return nil
	}

	order, err := s.orders.OrderByID(ctx, orderID)
	if err != nil || order == nil {
		logSwallowed(ctx, op, fmt.Sprintf("Order ID: %d", orderID), err)
		return nil
	}
	if len(order.Lines) != 1 || order.Lines[0].Quantity != 1 {
		logSwallowed(ctx, op, fmt.Sprintf("Order ID: %d", orderID), &domain.PreconditionError{
			Op: op, Reason: "only single-item, single-quantity orders are supported",
		})
		return nil
	}

	return s.Get(ctx, order.Lines[0].OrderItemID)
}

// List 只取列表的第一页。
func (s *OrderItemService) List(ctx context.Context) []*domain.OrderItemRelation {
	const op = "orderitem.List"
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()
	start := time.Now()

	url := s.hosts.BaseURL(ctx) + constants.PathAuthOrderItems
	out, err := fetchOnePage(ctx, s.exec, url, domain.MapOrderItemRelations)
	if err != nil {
		observe(op, outcomeFailure, start)
		logSwallowed(ctx, op, "", err)
		return nil
	}

	observe(op, outcomeSuccess, start)
	return out
}

// ListAll 沿分页游标取全部订单行关系。
// 中途任何一页失败都返回空列表(已取的页一并丢弃)。
func (s *OrderItemService) ListAll(ctx context.Context) []*domain.OrderItemRelation {
	const op = "orderitem.ListAll"
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()
	start := time.Now()

	url := s.hosts.BaseURL(ctx) + constants.PathAuthOrderItems
	out, err := fetchAllPages(ctx, s.exec, url, domain.MapOrderItemRelations)
	if err != nil {
		observe(op, outcomeFailure, start)
		logSwallowed(ctx, op, "", err)
		return nil
	}

	observe(op, outcomeSuccess, start)
	return out
}

// ListByUser 取一个用户名下的全部键，同样追完所有分页。
func (s *OrderItemService) ListByUser(ctx context.Context, userID int64) []*domain.OrderItemRelation {
	const op = "orderitem.ListByUser"
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()
	start := time.Now()

	if userID <= 0 {
		logSwallowed(ctx, op, "", &domain.PreconditionError{
			Op: op, Reason: "user_id must be a positive integer",
		})
		return nil
	}

	url := fmt.Sprintf("%s%suser/%d/", s.hosts.BaseURL(ctx), constants.PathAuthOrderItems, userID)
	out, err := fetchAllPages(ctx, s.exec, url, domain.MapOrderItemRelations)
	if err != nil {
		observe(op, outcomeFailure, start)
		logSwallowed(ctx, op, "", err)
		return nil
	}

	observe(op, outcomeSuccess, start)
	return out
}

// Delete 删除一条订单行关系(键本身保留)。
// 204 算成功；远端经常回 404，同样不算异常，只是结果为 false。
func (s *OrderItemService) Delete(ctx context.Context, orderItemID int64) bool {
	const op = "orderitem.Delete"
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()
	start := time.Now()

	if orderItemID <= 0 {
		logSwallowed(ctx, op, "", &domain.PreconditionError{
			Op: op, Reason: "order_item_id must be a positive integer",
		})
		return false
	}

	url := fmt.Sprintf("%s%s%d/", s.hosts.BaseURL(ctx), constants.PathOrderItemDelete, orderItemID)
	resp, err := s.exec.Execute(ctx, http.MethodDelete, url, nil,
		[]int{http.StatusNoContent, http.StatusNotFound}, nil)
	if err != nil {
		observe(op, outcomeFailure, start)
		logSwallowed(ctx, op, "", err)
		return false
	}

	if resp.StatusCode == http.StatusNoContent {
		observe(op, outcomeSuccess, start)
		return true
	}
	observe(op, outcomeNotFound, start)
	return false
}
