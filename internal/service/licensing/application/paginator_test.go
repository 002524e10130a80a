package application

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casbridge/internal/pkg/httpclient"
	"casbridge/internal/service/licensing/domain"
)

func relationPage(next string, orderItemIDs ...int64) string {
	page := `{"next": `
	if next == "" {
		page += "null"
	} else {
		page += fmt.Sprintf("%q", next)
	}
	page += `, "results": [`
	for i, id := range orderItemIDs {
		if i > 0 {
			page += ","
		}
		page += fmt.Sprintf(`{"order_item_id": %d, "user_id": 1, "key": %d}`, id, id*10)
	}
	return page + `]}`
}

func TestFetchAllPagesConcatenatesInOrder(t *testing.T) {
	exec := newStubExecutor(t).
		reply(jsonResponse(t, 200, relationPage("http://cassandra.test/p2", 1, 2)), nil).
		reply(jsonResponse(t, 200, relationPage("http://cassandra.test/p3", 3)), nil).
		reply(jsonResponse(t, 200, relationPage("", 4)), nil)

	out, err := fetchAllPages(context.Background(), exec, "http://cassandra.test/p1",
		domain.MapOrderItemRelations)
	require.NoError(t, err)

	require.Len(t, out, 4)
	for i, rel := range out {
		assert.Equal(t, int64(i+1), rel.OrderItemID)
	}
	// 恰好三次调用，游标顺序不乱
	require.Len(t, exec.calls, 3)
	assert.Equal(t, "http://cassandra.test/p1", exec.calls[0].URL)
	assert.Equal(t, "http://cassandra.test/p2", exec.calls[1].URL)
	assert.Equal(t, "http://cassandra.test/p3", exec.calls[2].URL)
}

func TestFetchAllPagesDiscardsOnMidwayFailure(t *testing.T) {
	exec := newStubExecutor(t).
		reply(jsonResponse(t, 200, relationPage("http://cassandra.test/p2", 1, 2)), nil).
		reply(nil, &httpclient.TransportError{Err: fmt.Errorf("connection refused")})

	out, err := fetchAllPages(context.Background(), exec, "http://cassandra.test/p1",
		domain.MapOrderItemRelations)

	// 第一页已经拿到，但整次抓取失败后一并丢弃
	require.Error(t, err)
	assert.Nil(t, out)
}

func TestFetchAllPagesDiscardsOnMappingFailure(t *testing.T) {
	exec := newStubExecutor(t).
		reply(jsonResponse(t, 200, relationPage("http://cassandra.test/p2", 1)), nil).
		reply(jsonResponse(t, 200, `{"next": null, "results": [{"user_id": 1}]}`), nil)

	out, err := fetchAllPages(context.Background(), exec, "http://cassandra.test/p1",
		domain.MapOrderItemRelations)
	require.Error(t, err)
	assert.Nil(t, out)
}

func TestFetchAllPagesStopsOnShapeMismatch(t *testing.T) {
	exec := newStubExecutor(t).
		reply(jsonResponse(t, 200, relationPage("http://cassandra.test/p2", 1)), nil).
		reply(jsonResponse(t, 200, `{"detail": "unexpected shape"}`), nil)

	out, err := fetchAllPages(context.Background(), exec, "http://cassandra.test/p1",
		domain.MapOrderItemRelations)

	// 形态不符不是失败，只是游标走到头了
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(1), out[0].OrderItemID)
}

func TestFetchOnePageIgnoresNext(t *testing.T) {
	exec := newStubExecutor(t).
		reply(jsonResponse(t, 200, relationPage("http://cassandra.test/p2", 1, 2)), nil)

	out, err := fetchOnePage(context.Background(), exec, "http://cassandra.test/p1",
		domain.MapOrderItemRelations)
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Len(t, exec.calls, 1)
}
