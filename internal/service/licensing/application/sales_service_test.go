package application

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casbridge/internal/pkg/constants"
	"casbridge/internal/service/licensing/domain"
	"casbridge/internal/service/licensing/domain/port"
)

// recordingSink 记录发布过的领域事件。
type recordingSink struct {
	sales    []*domain.SalesRecord
	products []*domain.ProductLog
	failWith error
}

func (r *recordingSink) SaleLogged(_ context.Context, record *domain.SalesRecord) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.sales = append(r.sales, record)
	return nil
}

func (r *recordingSink) ProductLogged(_ context.Context, entry *domain.ProductLog) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.products = append(r.products, entry)
	return nil
}

func (r *recordingSink) RelationSynced(context.Context, *domain.OrderItemRelation) error {
	return nil
}

func completedOrder() *port.OrderRecord {
	return &port.OrderRecord{
		OrderID:       500,
		OrderDate:     "2016-05-01 15:00:00",
		PostStatus:    "wc-completed",
		OrderCurrency: "KRW",
		OrderTotal:    "45000.00",
		CompletedDate: "2016-05-01 15:10:00",
		Lines: []port.OrderLine{
			{
				OrderItemID:  42,
				Quantity:     1,
				ProductID:    77,
				LineSubtotal: "45000.00",
				LineTotal:    "45000.00",
			},
		},
	}
}

const salesResponseBody = `{
	"order_currency": "KRW",
	"order_total": "45000.00",
	"post_status": "wc-completed",
	"sales_sub": [{"order_id": 500, "order_item_id": 42, "qty": 1, "line_total": "45000.00"}]
}`

func TestSalesSend(t *testing.T) {
	orders := &fakeOrders{orders: map[int64]*port.OrderRecord{500: completedOrder()}}
	sink := &recordingSink{}
	exec := newStubExecutor(t).reply(jsonResponse(t, http.StatusCreated, salesResponseBody), nil)
	svc := NewSalesService(exec, testHosts(), orders, sink, testTracer())

	record := svc.Send(context.Background(), "single", "ABCD", "https://shop.example.com", 7, 500)
	require.NotNil(t, record)
	assert.Equal(t, "45000.00", record.OrderTotal)
	require.Len(t, record.Lines, 1)
	assert.Equal(t, int64(500), record.Lines[0].OrderID)

	// 请求体字段对齐远端契约，金额保持字符串
	assert.Equal(t, testBaseURL+constants.PathLogsSales, exec.calls[0].URL)
	body, ok := exec.calls[0].Body.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "45000.00", body["order_total"])
	assert.Equal(t, int64(500), body["order_id"])
	lines, ok := body["sales_sub"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(42), lines[0]["order_item_id"])

	// 成功后同一份数据进事件管道
	require.Len(t, sink.sales, 1)
	assert.Same(t, record, sink.sales[0])
}

func TestSalesSendUnknownOrder(t *testing.T) {
	orders := &fakeOrders{orders: map[int64]*port.OrderRecord{}}
	exec := newStubExecutor(t)
	svc := NewSalesService(exec, testHosts(), orders, nil, testTracer())

	assert.Nil(t, svc.Send(context.Background(), "single", "ABCD", "https://shop.example.com", 7, 500))
	assert.Empty(t, exec.calls)
}

func TestSalesSendRemoteFailureSwallowed(t *testing.T) {
	orders := &fakeOrders{orders: map[int64]*port.OrderRecord{500: completedOrder()}}
	exec := newStubExecutor(t).reply(nil, fmt.Errorf("dial tcp: timeout"))
	svc := NewSalesService(exec, testHosts(), orders, nil, testTracer())

	assert.Nil(t, svc.Send(context.Background(), "single", "ABCD", "https://shop.example.com", 7, 500))
}

func TestSalesSendEventFailureDoesNotAffectResult(t *testing.T) {
	orders := &fakeOrders{orders: map[int64]*port.OrderRecord{500: completedOrder()}}
	sink := &recordingSink{failWith: fmt.Errorf("broker unavailable")}
	exec := newStubExecutor(t).reply(jsonResponse(t, http.StatusCreated, salesResponseBody), nil)
	svc := NewSalesService(exec, testHosts(), orders, sink, testTracer())

	// 发布失败只记日志，上报结果不受影响
	assert.NotNil(t, svc.Send(context.Background(), "single", "ABCD", "https://shop.example.com", 7, 500))
}

func TestSalesSendPreconditions(t *testing.T) {
	exec := newStubExecutor(t)
	svc := NewSalesService(exec, testHosts(), &fakeOrders{}, nil, testTracer())

	assert.Nil(t, svc.Send(context.Background(), "", "ABCD", "https://shop.example.com", 7, 500))
	assert.Nil(t, svc.Send(context.Background(), "single", "ABCD", "https://shop.example.com", 7, 0))
	assert.Empty(t, exec.calls)
}
