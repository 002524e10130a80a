package domain

import "time"

// Timestamps 是多数远端实体共有的创建/修改时间对。
// 以值类型内嵌进各实体，替代远端模型里的 mixin 继承链。
type Timestamps struct {
	Created time.Time
	Updated time.Time
}

// LicenseKey 是一把已签发的许可证键。
// 由映射层从响应构造，构造后不可变。
type LicenseKey struct {
	Key        string
	Type       string
	Active     bool
	IssueDate  time.Time // 原始数据是 date，时刻恒为 00:00:00
	ExpireDate time.Time // 不变式: 时刻恒为当日 23:59:59
	Timestamps
}

// IsActive 报告键当前是否处于激活状态。
func (k *LicenseKey) IsActive() bool { return k.Active }

// SiteDomain 是一条注册过的站点记录，对应一把键绑定的安装点。
type SiteDomain struct {
	CompanyName string // 选填
	URL         string // 必填
	Deactivated *time.Time
	Timestamps
}

// IsDeactivated 报告域名是否已被停用。不变式: 与 Deactivated 非空等价。
func (d *SiteDomain) IsDeactivated() bool { return d.Deactivated != nil }

// OrderItemRelation 把一条订单行、一把键、一个可选的站点域名
// 和一个用户绑定在一起。Key 引用永远不为缺失态，Domain 可以。
type OrderItemRelation struct {
	OrderItemID int64
	UserID      int64
	Key         Ref[LicenseKey]
	Domain      Ref[SiteDomain]
}

// SalesLine 是销售快照里的一条订单行。
// 金额保持精确字符串，绝不过浮点数。
type SalesLine struct {
	OrderItemID   int64
	OrderItemName string
	OrderItemType string
	OrderID       int64
	Quantity      int64
	ProductID     int64
	VariationID   int64
	LineSubtotal  string
	LineTotal     string
}

// SalesRecord 是一笔已完成订单的反规范化快照。
type SalesRecord struct {
	Domain            *SiteDomain // 可选
	OrderDate         time.Time
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
	OrderTotal        string // 精确字符串
	CompletedDate     time.Time
	Lines             []*SalesLine
}

// LogType 标记商品交互事件的种类。
type LogType string

const (
	LogTypeAddToCart LogType = "add_to_cart"
	LogTypeTodaySeen LogType = "today_seen"
	LogTypeWishList  LogType = "wish_list"
)

// ProductLog 是一条已记录的商品交互事件。
type ProductLog struct {
	UserID         int64
	Domain         *SiteDomain // 可选
	Created        time.Time
	CustomerID     int64
	ProductID      int64
	VariationID    int64
	Quantity       int64
	Price          string // 价格快照，精确字符串
	ProductName    string
	ProductVersion string
	TermName       string // 按名称排序、"|" 连接的分类标签
	LogType        LogType
}
