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

// SalesService 把本地完成的订单以反规范化快照上报给远端。
type SalesService struct {
	exec   Executor
	hosts  HostResolver
	orders port.OrderProvider
	events port.EventSink // 可为 nil
	tracer trace.Tracer
}

// NewSalesService 创建一个新的销售上报门面。
func NewSalesService(
	exec Executor,
	hosts HostResolver,
	orders port.OrderProvider,
	events port.EventSink,
	tracer trace.Tracer,
) *SalesService {
	return &SalesService{exec: exec, hosts: hosts, orders: orders, events: events, tracer: tracer}
}

// Send 上报一笔订单。成功返回远端回写的快照，失败返回 nil。
func (s *SalesService) Send(
	ctx context.Context,
	keyType, keyValue, siteURL string,
	userID int64,
	orderID int64,
) *domain.SalesRecord {

	const op = "sales.Send"
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()
	start := time.Now()

	if keyType == "" || keyValue == "" || siteURL == "" || orderID <= 0 {
		logSwallowed(ctx, op, "", &domain.PreconditionError{
			Op: op, Reason: "key_type, key_value, site_url and a positive order_id are required",
		})
		return nil
	}
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

	body := buildSalesBody(keyType, keyValue, siteURL, userID, order)

	resp, err := s.exec.Execute(
		ctx,
		http.MethodPost,
		s.hosts.BaseURL(ctx)+constants.PathLogsSales,
		body,
		[]int{http.StatusCreated},
		nil,
	)
	if err != nil {
		observe(op, outcomeFailure, start)
		logSwallowed(ctx, op, fmt.Sprintf("Order ID: %d", orderID), err)
		return nil
	}

	obj, ok := resp.Object()
	if !ok {
		observe(op, outcomeFailure, start)
		logSwallowed(ctx, op, "", &domain.MalformedResponseError{
			Field: "(body)", Reason: "response body is not a JSON object",
		})
		return nil
	}
	record, err := domain.MapSalesRecord(obj)
	if err != nil {
		observe(op, outcomeFailure, start)
		logSwallowed(ctx, op, "", err)
		return nil
	}

	observe(op, outcomeSuccess, start)

	if s.events != nil {
		if err := s.events.SaleLogged(ctx, record); err != nil {
			logSwallowed(ctx, op, "event publish", err)
		}
	}
	return record
}

// buildSalesBody 从本地订单组装上报请求体，字段名对齐远端契约。
// 金额字段全程保持字符串。
func buildSalesBody(
	keyType, keyValue, siteURL string,
	userID int64,
	order *port.OrderRecord,
) map[string]any {

	lines := make([]map[string]any, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, map[string]any{
			"order_item_id":   line.OrderItemID,
			"order_item_name": line.OrderItemName,
			"order_item_type": line.OrderItemType,
			"order_id":        order.OrderID,
			"qty":             line.Quantity,
			"product_id":      line.ProductID,
			"variation_id":    line.VariationID,
			"line_subtotal":   line.LineSubtotal,
			"line_total":      line.LineTotal,
		})
	}

	return map[string]any{
		"key_type":            keyType,
		"key_value":           keyValue,
		"site_url":            siteURL,
		"user_id":             userID,
		"order_id":            order.OrderID,
		"order_date":          order.OrderDate,
		"post_status":         order.PostStatus,
		"order_currency":      order.OrderCurrency,
		"customer_user_agent": order.CustomerUserAgent,
		"customer_user":       order.CustomerUser,
		"created_via":         order.CreatedVia,
		"order_version":       order.OrderVersion,
		"billing_country":     order.BillingCountry,
		"billing_city":        order.BillingCity,
		"billing_state":       order.BillingState,
		"shipping_country":    order.ShippingCountry,
		"shipping_city":       order.ShippingCity,
		"shipping_state":      order.ShippingState,
		"payment_method":      order.PaymentMethod,
		"order_total":         order.OrderTotal,
		"completed_date":      order.CompletedDate,
		"sales_sub":           lines,
	}
}
