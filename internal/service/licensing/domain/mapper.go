package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// 响应到实体的映射层。
//
// 输入是解码后的无类型 JSON 对象 (map[string]any)，除了"大致像某个实体"
// 之外没有任何结构保证。每个实体一个映射函数；必填字段缺失、类型不符、
// 或正整数检查不通过，一律返回 *MalformedResponseError，不产生半成品。

// ---- 原始字段取值工具 ----

func rawLookup(raw map[string]any, field string) (any, bool) {
	v, ok := raw[field]
	return v, ok
}

func requireField(raw map[string]any, field string) (any, error) {
	v, ok := raw[field]
	if !ok {
		return nil, newMalformed(field, "required field is missing")
	}
	return v, nil
}

func asString(field string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", newMalformed(field, "expected a string, got %T", v)
	}
	return s, nil
}

// asInt 接受 JSON 数字(解码为 float64)、整数和数字字符串。
// 远端对数字字段的序列化同样不稳定。
func asInt(field string, v any) (int64, error) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, newMalformed(field, "expected an integer, got %v", n)
		}
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, newMalformed(field, "expected an integer, got %q", n)
		}
		return i, nil
	default:
		return 0, newMalformed(field, "expected an integer, got %T", v)
	}
}

func requirePositiveInt(raw map[string]any, field string) (int64, error) {
	v, err := requireField(raw, field)
	if err != nil {
		return 0, err
	}
	n, err := asInt(field, v)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, newMalformed(field, "expected a positive integer, got %d", n)
	}
	return n, nil
}

func optionalNonNegInt(raw map[string]any, field string) (int64, error) {
	v, ok := rawLookup(raw, field)
	if !ok || v == nil {
		return 0, nil
	}
	n, err := asInt(field, v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		n = -n
	}
	return n, nil
}

func optionalText(raw map[string]any, field string) (string, error) {
	v, ok := rawLookup(raw, field)
	if !ok || v == nil {
		return "", nil
	}
	s, err := asString(field, v)
	if err != nil {
		return "", err
	}
	return sanitizeText(s), nil
}

func requireText(raw map[string]any, field string) (string, error) {
	v, err := requireField(raw, field)
	if err != nil {
		return "", err
	}
	s, err := asString(field, v)
	if err != nil {
		return "", err
	}
	return sanitizeText(s), nil
}

// optionalMoney 保留金额的精确字符串表示，绝不转成浮点数存储。
// 偶尔以 JSON 数字到达的值用最短往返格式转回字符串。
func optionalMoney(raw map[string]any, field string) (string, error) {
	v, ok := rawLookup(raw, field)
	if !ok || v == nil {
		return "", nil
	}
	switch n := v.(type) {
	case string:
		return sanitizeText(n), nil
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	default:
		return "", newMalformed(field, "expected a decimal string, got %T", v)
	}
}

func asBool(field string, v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case float64:
		return b != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "1", "true", "yes", "on":
			return true, nil
		case "0", "false", "no", "off", "":
			return false, nil
		}
		return false, newMalformed(field, "expected a boolean, got %q", b)
	default:
		return false, newMalformed(field, "expected a boolean, got %T", v)
	}
}

func requireDateTime(raw map[string]any, field string, correctTimezone bool) (time.Time, error) {
	v, err := requireField(raw, field)
	if err != nil {
		return time.Time{}, err
	}
	t, err := ConvertDateTime(v, correctTimezone)
	if err != nil {
		return time.Time{}, wrapMalformed(field, err)
	}
	return t, nil
}

func optionalDateTime(raw map[string]any, field string, correctTimezone bool) (time.Time, bool, error) {
	v, ok := rawLookup(raw, field)
	if !ok || v == nil {
		return time.Time{}, false, nil
	}
	if s, isStr := v.(string); isStr && s == "" {
		return time.Time{}, false, nil
	}
	t, err := ConvertDateTime(v, correctTimezone)
	if err != nil {
		return time.Time{}, false, wrapMalformed(field, err)
	}
	return t, true, nil
}

func mapTimestamps(raw map[string]any) (Timestamps, error) {
	created, err := requireDateTime(raw, "created", true)
	if err != nil {
		return Timestamps{}, err
	}
	updated, err := requireDateTime(raw, "updated", true)
	if err != nil {
		return Timestamps{}, err
	}
	return Timestamps{Created: created, Updated: updated}, nil
}

// isNumeric 判断多态字段是否是裸外键形态。
func isNumeric(v any) bool {
	switch n := v.(type) {
	case float64, int, int64:
		return true
	case string:
		_, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return err == nil
	default:
		return false
	}
}

// ---- 实体映射 ----

// MapLicenseKey 把一个响应对象映射为 LicenseKey。
func MapLicenseKey(raw map[string]any) (*LicenseKey, error) {
	key, err := requireText(raw, "key")
	if err != nil {
		return nil, err
	}

	// type 字段内嵌了一层: {"type": {"type": "..."}}。
	// 它本是远端的一张外键表，这里只保留类型标签。
	typeValue, err := requireField(raw, "type")
	if err != nil {
		return nil, err
	}
	var keyType string
	switch tv := typeValue.(type) {
	case map[string]any:
		keyType, err = requireText(tv, "type")
		if err != nil {
			return nil, wrapMalformed("type", err)
		}
	case string:
		keyType = sanitizeText(tv)
	default:
		return nil, newMalformed("type", "expected an object or a string, got %T", typeValue)
	}

	activeValue, err := requireField(raw, "is_active")
	if err != nil {
		return nil, err
	}
	active, err := asBool("is_active", activeValue)
	if err != nil {
		return nil, err
	}

	issueDate, err := requireDateTime(raw, "issue_date", true)
	if err != nil {
		return nil, err
	}
	expireDate, err := requireDateTime(raw, "expire_date", true)
	if err != nil {
		return nil, err
	}

	ts, err := mapTimestamps(raw)
	if err != nil {
		return nil, err
	}

	return &LicenseKey{
		Key:        key,
		Type:       keyType,
		Active:     active,
		IssueDate:  issueDate,
		ExpireDate: endOfDay(expireDate),
		Timestamps: ts,
	}, nil
}

// MapSiteDomain 把一个响应对象映射为 SiteDomain。
func MapSiteDomain(raw map[string]any) (*SiteDomain, error) {
	companyName, err := optionalText(raw, "company_name")
	if err != nil {
		return nil, err
	}

	urlValue, err := requireField(raw, "url")
	if err != nil {
		return nil, err
	}
	urlText, err := asString("url", urlValue)
	if err != nil {
		return nil, err
	}
	siteURL := sanitizeURL(urlText)
	if siteURL == "" {
		return nil, newMalformed("url", "not a valid http(s) URL: %q", urlText)
	}

	var deactivated *time.Time
	if t, ok, err := optionalDateTime(raw, "deactivated", true); err != nil {
		return nil, err
	} else if ok {
		deactivated = &t
	}

	ts, err := mapTimestamps(raw)
	if err != nil {
		return nil, err
	}

	return &SiteDomain{
		CompanyName: companyName,
		URL:         siteURL,
		Deactivated: deactivated,
		Timestamps:  ts,
	}, nil
}

// mapKeyRef 解析 OrderItemRelation.key 的多态形态。key 永远不允许缺失。
func mapKeyRef(field string, v any) (Ref[LicenseKey], error) {
	switch {
	case isNumeric(v):
		id, err := asInt(field, v)
		if err != nil {
			return AbsentRef[LicenseKey](), err
		}
		if id <= 0 {
			return AbsentRef[LicenseKey](), newMalformed(field, "expected a positive key id, got %d", id)
		}
		return RefOfID[LicenseKey](id), nil
	default:
		if obj, ok := v.(map[string]any); ok {
			key, err := MapLicenseKey(obj)
			if err != nil {
				return AbsentRef[LicenseKey](), wrapMalformed(field, err)
			}
			return RefOfEntity(key), nil
		}
		return AbsentRef[LicenseKey](), newMalformed(field, "unknown structure (%T)", v)
	}
}

// mapDomainRef 解析可空的多态 domain 字段。null 是合法的缺失态。
func mapDomainRef(field string, v any) (Ref[SiteDomain], error) {
	switch {
	case v == nil:
		return AbsentRef[SiteDomain](), nil
	case isNumeric(v):
		id, err := asInt(field, v)
		if err != nil {
			return AbsentRef[SiteDomain](), err
		}
		if id <= 0 {
			return AbsentRef[SiteDomain](), newMalformed(field, "expected a positive domain id, got %d", id)
		}
		return RefOfID[SiteDomain](id), nil
	default:
		if obj, ok := v.(map[string]any); ok {
			dom, err := MapSiteDomain(obj)
			if err != nil {
				return AbsentRef[SiteDomain](), wrapMalformed(field, err)
			}
			return RefOfEntity(dom), nil
		}
		return AbsentRef[SiteDomain](), newMalformed(field, "unknown structure (%T)", v)
	}
}

// MapOrderItemRelation 把一个响应对象映射为 OrderItemRelation。
func MapOrderItemRelation(raw map[string]any) (*OrderItemRelation, error) {
	orderItemID, err := requirePositiveInt(raw, "order_item_id")
	if err != nil {
		return nil, err
	}
	userID, err := requirePositiveInt(raw, "user_id")
	if err != nil {
		return nil, err
	}

	keyValue, err := requireField(raw, "key")
	if err != nil {
		return nil, err
	}
	keyRef, err := mapKeyRef("key", keyValue)
	if err != nil {
		return nil, err
	}

	// domain 缺失等同于 null
	domainRef, err := mapDomainRef("domain", raw["domain"])
	if err != nil {
		return nil, err
	}

	return &OrderItemRelation{
		OrderItemID: orderItemID,
		UserID:      userID,
		Key:         keyRef,
		Domain:      domainRef,
	}, nil
}

// MapOrderItemRelations 按序映射一列响应对象。
// 任何一个元素映射失败，整个调用失败，不静默返回部分结果。
func MapOrderItemRelations(rawList []any) ([]*OrderItemRelation, error) {
	out := make([]*OrderItemRelation, 0, len(rawList))
	for i, elem := range rawList {
		obj, ok := elem.(map[string]any)
		if !ok {
			return nil, newMalformed("results", "element %d is not an object (%T)", i, elem)
		}
		rel, err := MapOrderItemRelation(obj)
		if err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
	return out, nil
}

// mapOptionalDomain 处理 sales/log 响应里"仅当是对象时才映射"的 domain 字段。
func mapOptionalDomain(raw map[string]any) (*SiteDomain, error) {
	v, ok := rawLookup(raw, "domain")
	if !ok || v == nil {
		return nil, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		// 裸外键等其它形态在销售/日志快照里没有用处，按缺失处理
		return nil, nil
	}
	dom, err := MapSiteDomain(obj)
	if err != nil {
		return nil, wrapMalformed("domain", err)
	}
	return dom, nil
}

// MapSalesLine 把一条 sales_sub 元素映射为 SalesLine。所有字段均可缺省。
func MapSalesLine(raw map[string]any) (*SalesLine, error) {
	line := &SalesLine{}
	var err error

	if line.OrderItemID, err = optionalNonNegInt(raw, "order_item_id"); err != nil {
		return nil, err
	}
	if line.OrderItemName, err = optionalText(raw, "order_item_name"); err != nil {
		return nil, err
	}
	if line.OrderItemType, err = optionalText(raw, "order_item_type"); err != nil {
		return nil, err
	}
	if line.OrderID, err = optionalNonNegInt(raw, "order_id"); err != nil {
		return nil, err
	}
	if line.Quantity, err = optionalNonNegInt(raw, "qty"); err != nil {
		return nil, err
	}
	if line.ProductID, err = optionalNonNegInt(raw, "product_id"); err != nil {
		return nil, err
	}
	if line.VariationID, err = optionalNonNegInt(raw, "variation_id"); err != nil {
		return nil, err
	}
	if line.LineSubtotal, err = optionalMoney(raw, "line_subtotal"); err != nil {
		return nil, err
	}
	if line.LineTotal, err = optionalMoney(raw, "line_total"); err != nil {
		return nil, err
	}
	return line, nil
}

// MapSalesRecord 把一个响应对象映射为 SalesRecord。
// 快照字段全部按可缺省处理；订单日期保留其自带时区。
func MapSalesRecord(raw map[string]any) (*SalesRecord, error) {
	rec := &SalesRecord{}
	var err error

	if rec.Domain, err = mapOptionalDomain(raw); err != nil {
		return nil, err
	}
	if rec.OrderDate, _, err = optionalDateTime(raw, "post_date", false); err != nil {
		return nil, err
	}
	if rec.PostStatus, err = optionalText(raw, "post_status"); err != nil {
		return nil, err
	}
	if rec.OrderCurrency, err = optionalText(raw, "order_currency"); err != nil {
		return nil, err
	}
	if rec.CustomerUserAgent, err = optionalText(raw, "customer_user_agent"); err != nil {
		return nil, err
	}
	if rec.CustomerUser, err = optionalNonNegInt(raw, "customer_user"); err != nil {
		return nil, err
	}
	if rec.CreatedVia, err = optionalText(raw, "created_via"); err != nil {
		return nil, err
	}
	if rec.OrderVersion, err = optionalText(raw, "order_version"); err != nil {
		return nil, err
	}
	if rec.BillingCountry, err = optionalText(raw, "billing_country"); err != nil {
		return nil, err
	}
	if rec.BillingCity, err = optionalText(raw, "billing_city"); err != nil {
		return nil, err
	}
	if rec.BillingState, err = optionalText(raw, "billing_state"); err != nil {
		return nil, err
	}
	if rec.ShippingCountry, err = optionalText(raw, "shipping_country"); err != nil {
		return nil, err
	}
	if rec.ShippingCity, err = optionalText(raw, "shipping_city"); err != nil {
		return nil, err
	}
	if rec.ShippingState, err = optionalText(raw, "shipping_state"); err != nil {
		return nil, err
	}
	if rec.PaymentMethod, err = optionalText(raw, "payment_method"); err != nil {
		return nil, err
	}
	if rec.OrderTotal, err = optionalMoney(raw, "order_total"); err != nil {
		return nil, err
	}
	if rec.CompletedDate, _, err = optionalDateTime(raw, "completed_date", false); err != nil {
		return nil, err
	}

	if v, ok := rawLookup(raw, "sales_sub"); ok && v != nil {
		rawLines, ok := v.([]any)
		if !ok {
			return nil, newMalformed("sales_sub", "expected an array, got %T", v)
		}
		for _, elem := range rawLines {
			obj, ok := elem.(map[string]any)
			if !ok {
				// 远端偶尔会混入非对象元素，跳过
				continue
			}
			line, err := MapSalesLine(obj)
			if err != nil {
				return nil, wrapMalformed("sales_sub", err)
			}
			rec.Lines = append(rec.Lines, line)
		}
	}

	return rec, nil
}

// MapProductLog 把一个响应对象映射为 ProductLog。所有字段均可缺省。
func MapProductLog(raw map[string]any) (*ProductLog, error) {
	entry := &ProductLog{}
	var err error

	if entry.UserID, err = optionalNonNegInt(raw, "user_id"); err != nil {
		return nil, err
	}
	if entry.Domain, err = mapOptionalDomain(raw); err != nil {
		return nil, err
	}
	if entry.Created, _, err = optionalDateTime(raw, "created", false); err != nil {
		return nil, err
	}
	if entry.CustomerID, err = optionalNonNegInt(raw, "customer_id"); err != nil {
		return nil, err
	}
	if entry.ProductID, err = optionalNonNegInt(raw, "product_id"); err != nil {
		return nil, err
	}
	if entry.VariationID, err = optionalNonNegInt(raw, "variation_id"); err != nil {
		return nil, err
	}
	if entry.Quantity, err = optionalNonNegInt(raw, "quantity"); err != nil {
		return nil, err
	}
	if entry.Price, err = optionalMoney(raw, "price"); err != nil {
		return nil, err
	}
	if entry.ProductName, err = optionalText(raw, "product_name"); err != nil {
		return nil, err
	}
	if entry.ProductVersion, err = optionalText(raw, "product_version"); err != nil {
		return nil, err
	}
	if entry.TermName, err = optionalText(raw, "term_name"); err != nil {
		return nil, err
	}

	logType, err := optionalText(raw, "log_type")
	if err != nil {
		return nil, err
	}
	entry.LogType = LogType(logType)

	return entry, nil
}
