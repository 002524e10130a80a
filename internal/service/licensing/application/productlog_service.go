package application

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"casbridge/internal/pkg/constants"
	"casbridge/internal/service/licensing/domain"
	"casbridge/internal/service/licensing/domain/port"
)

// ProductLogService 上报商品交互事件: 加购、浏览、加愿望单。
// 三种事件共用一套请求体，只有目标路径不同。
type ProductLogService struct {
	exec     Executor
	hosts    HostResolver
	products port.ProductProvider
	events   port.EventSink // 可为 nil
	tracer   trace.Tracer
}

// NewProductLogService 创建一个新的商品事件门面。
func NewProductLogService(
	exec Executor,
	hosts HostResolver,
	products port.ProductProvider,
	events port.EventSink,
	tracer trace.Tracer,
) *ProductLogService {
	return &ProductLogService{
		exec:     exec,
		hosts:    hosts,
		products: products,
		events:   events,
		tracer:   tracer,
	}
}

// logPaths 事件种类到远端路径的映射。
var logPaths = map[domain.LogType]string{
	domain.LogTypeAddToCart: constants.PathLogsAddToCarts,
	domain.LogTypeTodaySeen: constants.PathLogsTodaySeen,
	domain.LogTypeWishList:  constants.PathLogsWishLists,
}

// Send 上报一条商品交互事件。成功返回远端回写的日志条目，失败返回 nil。
//
// customerID 是商城侧当前登录用户；variationID 没有变体时传 0。
func (s *ProductLogService) Send(
	ctx context.Context,
	logType domain.LogType,
	keyType, keyValue, siteURL string,
	userID, customerID, productID, quantity, variationID int64,
) *domain.ProductLog {

	op := fmt.Sprintf("productlog.Send.%s", logType)
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()
	start := time.Now()

	path, ok := logPaths[logType]
	if !ok {
		logSwallowed(ctx, op, "", &domain.PreconditionError{
			Op: op, Reason: fmt.Sprintf("unknown log type %q", logType),
		})
		return nil
	}
	if keyType == "" || keyValue == "" || siteURL == "" || productID <= 0 {
		logSwallowed(ctx, op, "", &domain.PreconditionError{
			Op: op, Reason: "key_type, key_value, site_url and a positive product_id are required",
		})
		return nil
	}
	if s.products == nil {
		logSwallowed(ctx, op, "", &domain.PreconditionError{
			Op: op, Reason: "product provider is not configured",
		})
		return nil
	}

	product, err := s.products.ProductByID(ctx, productID)
	if err != nil || product == nil {
		logSwallowed(ctx, op, fmt.Sprintf("Product ID: %d", productID), err)
		return nil
	}

	body := map[string]any{
		"key_type":        keyType,
		"key_value":       keyValue,
		"site_url":        siteURL,
		"user_id":         userID,
		"customer_id":     customerID,
		"product_id":      productID,
		"variation_id":    variationID,
		"quantity":        quantity,
		"product_name":    product.Name,
		"price":           product.Price,
		"product_version": product.ProductVersion,
		"term_name":       joinTermNames(product.CategoryNames),
	}

	resp, err := s.exec.Execute(
		ctx,
		http.MethodPost,
		s.hosts.BaseURL(ctx)+path,
		body,
		[]int{http.StatusCreated},
		nil,
	)
	if err != nil {
		observe(op, outcomeFailure, start)
		logSwallowed(ctx, op, fmt.Sprintf("Product ID: %d", productID), err)
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
	entry, err := domain.MapProductLog(obj)
	if err != nil {
		observe(op, outcomeFailure, start)
		logSwallowed(ctx, op, "", err)
		return nil
	}

	observe(op, outcomeSuccess, start)

	if s.events != nil {
		if err := s.events.ProductLogged(ctx, entry); err != nil {
			logSwallowed(ctx, op, "event publish", err)
		}
	}
	return entry
}

// joinTermNames 把分类名排序后用 "|" 连接成一个标签串。
func joinTermNames(names []string) string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}
