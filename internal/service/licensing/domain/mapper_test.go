package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validKeyObject() map[string]any {
	return map[string]any{
		"key":         "ABCD-EFGH-IJKL",
		"type":        map[string]any{"type": "single"},
		"is_active":   true,
		"issue_date":  "2016-05-01",
		"expire_date": "2017-05-01",
		"created":     "2016-05-01 10:00:00",
		"updated":     "2016-05-01 10:00:00",
	}
}

func validDomainObject() map[string]any {
	return map[string]any{
		"company_name": "<b>ACME</b>  Corp",
		"url":          "https://shop.example.com",
		"deactivated":  nil,
		"created":      "2016-05-01 10:00:00",
		"updated":      "2016-05-01 10:00:00",
	}
}

func TestMapLicenseKey(t *testing.T) {
	key, err := MapLicenseKey(validKeyObject())
	require.NoError(t, err)

	assert.Equal(t, "ABCD-EFGH-IJKL", key.Key)
	assert.Equal(t, "single", key.Type)
	assert.True(t, key.IsActive())

	// 过期日总是钉在当日最后一秒
	assert.Equal(t, 23, key.ExpireDate.Hour())
	assert.Equal(t, 59, key.ExpireDate.Minute())
	assert.Equal(t, 59, key.ExpireDate.Second())
	assert.Equal(t, 0, key.IssueDate.Hour())
}

func TestMapLicenseKeyBareTypeString(t *testing.T) {
	raw := validKeyObject()
	raw["type"] = "subscription"

	key, err := MapLicenseKey(raw)
	require.NoError(t, err)
	assert.Equal(t, "subscription", key.Type)
}

func TestMapLicenseKeyStringBool(t *testing.T) {
	raw := validKeyObject()
	raw["is_active"] = "1"

	key, err := MapLicenseKey(raw)
	require.NoError(t, err)
	assert.True(t, key.Active)
}

func TestMapLicenseKeyMissingField(t *testing.T) {
	raw := validKeyObject()
	delete(raw, "expire_date")

	_, err := MapLicenseKey(raw)
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "expire_date", malformed.Field)
}

func TestMapSiteDomain(t *testing.T) {
	dom, err := MapSiteDomain(validDomainObject())
	require.NoError(t, err)

	// 标签被剥掉，空白折叠
	assert.Equal(t, "ACME Corp", dom.CompanyName)
	assert.Equal(t, "https://shop.example.com", dom.URL)
	assert.False(t, dom.IsDeactivated())
}

func TestMapSiteDomainDeactivated(t *testing.T) {
	raw := validDomainObject()
	raw["deactivated"] = "2017-01-01 00:00:00"

	dom, err := MapSiteDomain(raw)
	require.NoError(t, err)
	assert.True(t, dom.IsDeactivated())
}

func TestMapSiteDomainRejectsBadURL(t *testing.T) {
	raw := validDomainObject()
	raw["url"] = "javascript:alert(1)"

	_, err := MapSiteDomain(raw)
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "url", malformed.Field)
}

func TestMapOrderItemRelationWithIDs(t *testing.T) {
	rel, err := MapOrderItemRelation(map[string]any{
		"order_item_id": float64(42),
		"user_id":       float64(7),
		"key":           float64(1001),
		"domain":        float64(55),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), rel.OrderItemID)
	assert.Equal(t, int64(7), rel.UserID)
	assert.Equal(t, RefID, rel.Key.Kind())
	assert.Equal(t, int64(1001), rel.Key.ID())
	assert.Equal(t, RefID, rel.Domain.Kind())
	assert.Equal(t, int64(55), rel.Domain.ID())
}

func TestMapOrderItemRelationWithEntities(t *testing.T) {
	rel, err := MapOrderItemRelation(map[string]any{
		"order_item_id": float64(42),
		"user_id":       float64(7),
		"key":           validKeyObject(),
		"domain":        validDomainObject(),
	})
	require.NoError(t, err)

	require.Equal(t, RefEntity, rel.Key.Kind())
	assert.Equal(t, "ABCD-EFGH-IJKL", rel.Key.Entity().Key)
	require.Equal(t, RefEntity, rel.Domain.Kind())
	assert.Equal(t, "https://shop.example.com", rel.Domain.Entity().URL)
}

func TestMapOrderItemRelationNullDomain(t *testing.T) {
	rel, err := MapOrderItemRelation(map[string]any{
		"order_item_id": float64(42),
		"user_id":       float64(7),
		"key":           float64(1001),
		"domain":        nil,
	})
	require.NoError(t, err)
	assert.True(t, rel.Domain.IsAbsent())

	// domain 整个缺失等同于 null
	rel, err = MapOrderItemRelation(map[string]any{
		"order_item_id": float64(42),
		"user_id":       float64(7),
		"key":           float64(1001),
	})
	require.NoError(t, err)
	assert.True(t, rel.Domain.IsAbsent())
}

func TestMapOrderItemRelationRejectsNullKey(t *testing.T) {
	_, err := MapOrderItemRelation(map[string]any{
		"order_item_id": float64(42),
		"user_id":       float64(7),
		"key":           nil,
	})
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "key", malformed.Field)
}

func TestMapOrderItemRelationsFailsWhole(t *testing.T) {
	good := map[string]any{
		"order_item_id": float64(1),
		"user_id":       float64(1),
		"key":           float64(1),
	}
	bad := map[string]any{
		"order_item_id": float64(2),
		"user_id":       float64(2),
		// key 缺失
	}

	out, err := MapOrderItemRelations([]any{good, bad})
	require.Error(t, err)
	assert.Nil(t, out)
}

func TestMapSalesRecordKeepsMoneyVerbatim(t *testing.T) {
	rec, err := MapSalesRecord(map[string]any{
		"order_currency": "KRW",
		"order_total":    "19.999",
		"sales_sub": []any{
			map[string]any{
				"order_id":      float64(100),
				"qty":           float64(2),
				"line_subtotal": "9.9995",
				"line_total":    float64(19.999),
			},
			"unexpected string element",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "19.999", rec.OrderTotal)
	// 非对象元素被跳过
	require.Len(t, rec.Lines, 1)
	assert.Equal(t, "9.9995", rec.Lines[0].LineSubtotal)
	// 偶尔以数字到达的金额用最短往返格式转回字符串
	assert.Equal(t, "19.999", rec.Lines[0].LineTotal)
	assert.Equal(t, int64(2), rec.Lines[0].Quantity)
}

func TestMapSalesRecordOrderDateNoCorrection(t *testing.T) {
	rec, err := MapSalesRecord(map[string]any{
		"post_date": "2016-05-01 15:00:00",
	})
	require.NoError(t, err)
	// 订单日期保留本地隐含时区，不换算到基准时区
	assert.Equal(t, "Local", rec.OrderDate.Location().String())
}

func TestMapProductLog(t *testing.T) {
	entry, err := MapProductLog(map[string]any{
		"user_id":      float64(3),
		"product_id":   float64(77),
		"quantity":     float64(1),
		"price":        "4500.00",
		"product_name": "Sample Widget",
		"term_name":    "gadgets|widgets",
		"log_type":     "add_to_cart",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(77), entry.ProductID)
	assert.Equal(t, "4500.00", entry.Price)
	assert.Equal(t, LogTypeAddToCart, entry.LogType)
	assert.Equal(t, "gadgets|widgets", entry.TermName)
}

func TestOptionalNonNegIntTakesAbsoluteValue(t *testing.T) {
	n, err := optionalNonNegInt(map[string]any{"qty": float64(-3)}, "qty")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
