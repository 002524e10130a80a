package port

import "context"

// OrderLine 是本地商城一条订单行的查询结果。
type OrderLine struct {
	OrderItemID   int64
	OrderItemName string
	OrderItemType string
	Quantity      int64
	ProductID     int64
	VariationID   int64
	LineSubtotal  string
	LineTotal     string
}

// OrderRecord 是本地商城订单的查询结果，字段对应 WooCommerce 的订单元数据。
type OrderRecord struct {
	OrderID           int64
	OrderDate         string
	PostStatus        string
	OrderCurrency     string
	CustomerUserAgent string
	CustomerUser      int64
	CreatedVia        string
	OrderVersion      string
	BillingCountry    string
	BillingCity       string
	BillingState      string
	ShippingCountry   string
	ShippingCity      string
	ShippingState     string
	PaymentMethod     string
	OrderTotal        string // 金额保持字符串
	CompletedDate     string
	Lines             []OrderLine
}

// ProductRecord 是本地商城商品的查询结果。
type ProductRecord struct {
	ProductID      int64
	Name           string
	Price          string // 金额保持字符串
	ProductVersion string
	CategoryNames  []string
}

// PostRecord 是本地商城一篇文章的查询结果。
// Fields 是 posts 表的原始列，Meta 是序列化后的 postmeta。
type PostRecord struct {
	PostID int64
	Fields map[string]any
	Meta   string
}

// OrderProvider 按需提供订单数据。由外部商城(WooCommerce)侧实现。
type OrderProvider interface {
	OrderByID(ctx context.Context, orderID int64) (*OrderRecord, error)
	OrderIDByOrderItemID(ctx context.Context, orderItemID int64) (int64, error)
}

// ProductProvider 按需提供商品数据。
type ProductProvider interface {
	ProductByID(ctx context.Context, productID int64) (*ProductRecord, error)
}

// PostProvider 按需提供文章数据。
type PostProvider interface {
	PostByID(ctx context.Context, postID int64) (*PostRecord, error)
}
