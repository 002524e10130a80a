package adapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"casbridge/internal/service/licensing/domain/port"
)

// WooMySQLAdapter 直接读 WordPress/WooCommerce 的库表，
// 实现订单、商品、文章三个数据提供方端口。只读，不写商城库。
type WooMySQLAdapter struct {
	db     *gorm.DB
	prefix string // 表前缀，通常是 "wp_"
}

// NewWooMySQLAdapter 创建一个新的商城数据适配器。
func NewWooMySQLAdapter(db *gorm.DB, tablePrefix string) *WooMySQLAdapter {
	if tablePrefix == "" {
		tablePrefix = "wp_"
	}
	return &WooMySQLAdapter{db: db, prefix: tablePrefix}
}

func (a *WooMySQLAdapter) table(name string) string { return a.prefix + name }

type wooPostRow struct {
	ID         int64
	PostDate   string
	PostStatus string
	PostTitle  string
}

// postMeta 把一篇 post 的全部 meta 读成 key→value。
func (a *WooMySQLAdapter) postMeta(ctx context.Context, postID int64) (map[string]string, error) {
	var rows []struct {
		MetaKey   string
		MetaValue string
	}
	err := a.db.WithContext(ctx).
		Raw(fmt.Sprintf("SELECT meta_key, meta_value FROM %s WHERE post_id = ?", a.table("postmeta")), postID).
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load postmeta for post %d", postID)
	}
	meta := make(map[string]string, len(rows))
	for _, row := range rows {
		meta[row.MetaKey] = row.MetaValue
	}
	return meta, nil
}

// OrderByID 读出一张订单的快照。金额字段原样保留 meta 里的字符串。
func (a *WooMySQLAdapter) OrderByID(ctx context.Context, orderID int64) (*port.OrderRecord, error) {
	var post wooPostRow
	err := a.db.WithContext(ctx).
		Raw(fmt.Sprintf(
			"SELECT ID, post_date, post_status FROM %s WHERE ID = ? AND post_type = 'shop_order'",
			a.table("posts")), orderID).
		Scan(&post).Error
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load order %d", orderID)
	}
	if post.ID == 0 {
		return nil, nil
	}

	meta, err := a.postMeta(ctx, orderID)
	if err != nil {
		return nil, err
	}

	customerUser := int64(0)
	fmt.Sscanf(meta["_customer_user"], "%d", &customerUser)

	record := &port.OrderRecord{
		OrderID:           post.ID,
		OrderDate:         post.PostDate,
		PostStatus:        post.PostStatus,
		OrderCurrency:     meta["_order_currency"],
		CustomerUserAgent: meta["_customer_user_agent"],
		CustomerUser:      customerUser,
		CreatedVia:        meta["_created_via"],
		OrderVersion:      meta["_order_version"],
		BillingCountry:    meta["_billing_country"],
		BillingCity:       meta["_billing_city"],
		BillingState:      meta["_billing_state"],
		ShippingCountry:   meta["_shipping_country"],
		ShippingCity:      meta["_shipping_city"],
		ShippingState:     meta["_shipping_state"],
		PaymentMethod:     meta["_payment_method"],
		OrderTotal:        meta["_order_total"],
		CompletedDate:     meta["_completed_date"],
	}

	lines, err := a.orderLines(ctx, orderID)
	if err != nil {
		return nil, err
	}
	record.Lines = lines
	return record, nil
}

func (a *WooMySQLAdapter) orderLines(ctx context.Context, orderID int64) ([]port.OrderLine, error) {
	var items []struct {
		OrderItemID   int64
		OrderItemName string
		OrderItemType string
	}
	err := a.db.WithContext(ctx).
		Raw(fmt.Sprintf(
			"SELECT order_item_id, order_item_name, order_item_type FROM %s WHERE order_id = ? ORDER BY order_item_id",
			a.table("woocommerce_order_items")), orderID).
		Scan(&items).Error
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load order items for order %d", orderID)
	}

	lines := make([]port.OrderLine, 0, len(items))
	for _, item := range items {
		var metaRows []struct {
			MetaKey   string
			MetaValue string
		}
		err := a.db.WithContext(ctx).
			Raw(fmt.Sprintf(
				"SELECT meta_key, meta_value FROM %s WHERE order_item_id = ?",
				a.table("woocommerce_order_itemmeta")), item.OrderItemID).
			Scan(&metaRows).Error
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load item meta for order item %d", item.OrderItemID)
		}
		meta := make(map[string]string, len(metaRows))
		for _, row := range metaRows {
			meta[row.MetaKey] = row.MetaValue
		}

		qty := int64(0)
		fmt.Sscanf(meta["_qty"], "%d", &qty)
		productID := int64(0)
		fmt.Sscanf(meta["_product_id"], "%d", &productID)
		variationID := int64(0)
		fmt.Sscanf(meta["_variation_id"], "%d", &variationID)

		lines = append(lines, port.OrderLine{
			OrderItemID:   item.OrderItemID,
			OrderItemName: item.OrderItemName,
			OrderItemType: item.OrderItemType,
			Quantity:      qty,
			ProductID:     productID,
			VariationID:   variationID,
			LineSubtotal:  meta["_line_subtotal"],
			LineTotal:     meta["_line_total"],
		})
	}
	return lines, nil
}

// OrderIDByOrderItemID 由订单行号反查订单号。找不到返回 0。
func (a *WooMySQLAdapter) OrderIDByOrderItemID(ctx context.Context, orderItemID int64) (int64, error) {
	var orderID int64
	err := a.db.WithContext(ctx).
		Raw(fmt.Sprintf(
			"SELECT order_id FROM %s WHERE order_item_id = ?",
			a.table("woocommerce_order_items")), orderItemID).
		Scan(&orderID).Error
	if err != nil {
		return 0, errors.Wrapf(err, "failed to resolve order id for order item %d", orderItemID)
	}
	return orderID, nil
}

// ProductByID 读出商品快照: 名称、价格(字符串)、版本、分类名列表。
func (a *WooMySQLAdapter) ProductByID(ctx context.Context, productID int64) (*port.ProductRecord, error) {
	var post wooPostRow
	err := a.db.WithContext(ctx).
		Raw(fmt.Sprintf(
			"SELECT ID, post_title FROM %s WHERE ID = ? AND post_type IN ('product', 'product_variation')",
			a.table("posts")), productID).
		Scan(&post).Error
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load product %d", productID)
	}
	if post.ID == 0 {
		return nil, nil
	}

	meta, err := a.postMeta(ctx, productID)
	if err != nil {
		return nil, err
	}

	var names []string
	err = a.db.WithContext(ctx).
		Raw(fmt.Sprintf(`
			SELECT t.name FROM %s t
			JOIN %s tt ON tt.term_id = t.term_id
			JOIN %s tr ON tr.term_taxonomy_id = tt.term_taxonomy_id
			WHERE tr.object_id = ? AND tt.taxonomy = 'product_cat'`,
			a.table("terms"), a.table("term_taxonomy"), a.table("term_relationships")), productID).
		Scan(&names).Error
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load categories for product %d", productID)
	}

	return &port.ProductRecord{
		ProductID:      post.ID,
		Name:           post.PostTitle,
		Price:          meta["_price"],
		ProductVersion: meta["_product_version"],
		CategoryNames:  names,
	}, nil
}

// PostByID 读出一篇文章的全部列和序列化后的 meta。
func (a *WooMySQLAdapter) PostByID(ctx context.Context, postID int64) (*port.PostRecord, error) {
	fields := map[string]any{}
	err := a.db.WithContext(ctx).
		Raw(fmt.Sprintf("SELECT * FROM %s WHERE ID = ?", a.table("posts")), postID).
		Scan(&fields).Error
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load post %d", postID)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	meta, err := a.postMeta(ctx, postID)
	if err != nil {
		return nil, err
	}
	serialized, err := json.Marshal(meta)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize postmeta")
	}

	return &port.PostRecord{
		PostID: postID,
		Fields: fields,
		Meta:   string(serialized),
	}, nil
}
