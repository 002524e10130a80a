package interfaces

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"casbridge/internal/service/licensing/application"
	"casbridge/internal/service/licensing/domain"
)

// BridgeHandler 封装了桥接服务对商城侧暴露的 HTTP 处理器。
// 门面层已经把远端失败吞掉了，这里只需要把"没拿到结果"翻译成 404/502。
type BridgeHandler struct {
	auth       *application.AuthService
	orderItems *application.OrderItemService
	sales      *application.SalesService
	products   *application.ProductLogService
	posts      *application.PostService
}

// NewBridgeHandler 创建一个新的 HTTP 处理器实例。
func NewBridgeHandler(
	auth *application.AuthService,
	orderItems *application.OrderItemService,
	sales *application.SalesService,
	products *application.ProductLogService,
	posts *application.PostService,
) *BridgeHandler {
	return &BridgeHandler{
		auth:       auth,
		orderItems: orderItems,
		sales:      sales,
		products:   products,
		posts:      posts,
	}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *BridgeHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/bridge/activate", h.handleActivate)
	mux.HandleFunc("/bridge/verify", h.handleVerify)
	mux.HandleFunc("/bridge/issue", h.handleIssue)
	mux.HandleFunc("/bridge/order-item", h.handleGetOrderItem)
	mux.HandleFunc("/bridge/order-items", h.handleListOrderItems)
	mux.HandleFunc("/bridge/order-item/delete", h.handleDeleteOrderItem)
	mux.HandleFunc("/bridge/logs/sale", h.handleLogSale)
	mux.HandleFunc("/bridge/logs/product", h.handleLogProduct)
	mux.HandleFunc("/bridge/posts", h.handleMirrorPost)
}

func extractCtx(r *http.Request) *http.Request {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	return r.WithContext(ctx)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

type authRequest struct {
	KeyType     string `json:"key_type"`
	KeyValue    string `json:"key_value"`
	SiteURL     string `json:"site_url"`
	CompanyName string `json:"company_name"`
	Activate    bool   `json:"activate"`
}

func (h *BridgeHandler) handleActivate(w http.ResponseWriter, r *http.Request) {
	r = extractCtx(r)

	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result := h.auth.Activate(r.Context(), req.KeyType, req.KeyValue, req.SiteURL, req.CompanyName, req.Activate)
	if result == nil {
		http.Error(w, "activation did not succeed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, authResultToDTO(result))
}

func (h *BridgeHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	r = extractCtx(r)

	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result := h.auth.Verify(r.Context(), req.KeyType, req.KeyValue, req.SiteURL)
	if result == nil {
		http.Error(w, "verification did not succeed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, authResultToDTO(result))
}

type issueRequest struct {
	OrderItemID int64  `json:"order_item_id"`
	KeyType     string `json:"key_type"`
	UserID      int64  `json:"user_id"`
	Duration    string `json:"duration"`
	IssueDate   string `json:"issue_date"`
}

func (h *BridgeHandler) handleIssue(w http.ResponseWriter, r *http.Request) {
	r = extractCtx(r)

	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	relation := h.auth.Issue(r.Context(), req.OrderItemID, req.KeyType, req.UserID, req.Duration, req.IssueDate)
	if relation == nil {
		http.Error(w, "issue did not succeed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusCreated, relationToDTO(relation))
}

func (h *BridgeHandler) handleGetOrderItem(w http.ResponseWriter, r *http.Request) {
	r = extractCtx(r)

	id, _ := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	relation := h.orderItems.Get(r.Context(), id)
	if relation == nil {
		http.Error(w, "order item relation not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, relationToDTO(relation))
}

func (h *BridgeHandler) handleListOrderItems(w http.ResponseWriter, r *http.Request) {
	r = extractCtx(r)

	var relations []*domain.OrderItemRelation
	if userParam := r.URL.Query().Get("user_id"); userParam != "" {
		userID, _ := strconv.ParseInt(userParam, 10, 64)
		relations = h.orderItems.ListByUser(r.Context(), userID)
	} else {
		relations = h.orderItems.ListAll(r.Context())
	}

	out := make([]map[string]any, 0, len(relations))
	for _, relation := range relations {
		out = append(out, relationToDTO(relation))
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": out, "count": len(out)})
}

func (h *BridgeHandler) handleDeleteOrderItem(w http.ResponseWriter, r *http.Request) {
	r = extractCtx(r)

	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, _ := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	deleted := h.orderItems.Delete(r.Context(), id)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}

type logSaleRequest struct {
	KeyType  string `json:"key_type"`
	KeyValue string `json:"key_value"`
	SiteURL  string `json:"site_url"`
	UserID   int64  `json:"user_id"`
	OrderID  int64  `json:"order_id"`
}

func (h *BridgeHandler) handleLogSale(w http.ResponseWriter, r *http.Request) {
	r = extractCtx(r)

	var req logSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	record := h.sales.Send(r.Context(), req.KeyType, req.KeyValue, req.SiteURL, req.UserID, req.OrderID)
	if record == nil {
		http.Error(w, "sales logging did not succeed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusCreated, salesToDTO(record))
}

type logProductRequest struct {
	LogType     string `json:"log_type"`
	KeyType     string `json:"key_type"`
	KeyValue    string `json:"key_value"`
	SiteURL     string `json:"site_url"`
	UserID      int64  `json:"user_id"`
	CustomerID  int64  `json:"customer_id"`
	ProductID   int64  `json:"product_id"`
	Quantity    int64  `json:"quantity"`
	VariationID int64  `json:"variation_id"`
}

func (h *BridgeHandler) handleLogProduct(w http.ResponseWriter, r *http.Request) {
	r = extractCtx(r)

	var req logProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	entry := h.products.Send(
		r.Context(),
		domain.LogType(req.LogType),
		req.KeyType, req.KeyValue, req.SiteURL,
		req.UserID, req.CustomerID, req.ProductID, req.Quantity, req.VariationID,
	)
	if entry == nil {
		http.Error(w, "product logging did not succeed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusCreated, productLogToDTO(entry))
}

type mirrorPostRequest struct {
	KeyType  string `json:"key_type"`
	KeyValue string `json:"key_value"`
	SiteURL  string `json:"site_url"`
	UserID   int64  `json:"user_id"`
	PostID   int64  `json:"post_id"`
}

func (h *BridgeHandler) handleMirrorPost(w http.ResponseWriter, r *http.Request) {
	r = extractCtx(r)

	var req mirrorPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	remoteID := h.posts.Send(r.Context(), req.KeyType, req.KeyValue, req.SiteURL, req.UserID, req.PostID)
	if remoteID == 0 {
		http.Error(w, "post mirroring did not succeed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"remote_post_id": remoteID})
}

// ---- 响应 DTO ----

func authResultToDTO(result *application.AuthResult) map[string]any {
	status := "authorized"
	if result.Status == application.AuthDenied {
		status = "denied"
	}
	out := map[string]any{"status": status}
	if result.Relation != nil {
		out["relation"] = relationToDTO(result.Relation)
	}
	return out
}

// relationToDTO 把多态引用按线格式还原: 外键输出数字，内嵌实体输出对象，缺失输出 null。
func relationToDTO(relation *domain.OrderItemRelation) map[string]any {
	out := map[string]any{
		"order_item_id": relation.OrderItemID,
		"user_id":       relation.UserID,
	}

	switch relation.Key.Kind() {
	case domain.RefID:
		out["key"] = relation.Key.ID()
	case domain.RefEntity:
		out["key"] = keyToDTO(relation.Key.Entity())
	default:
		out["key"] = nil
	}

	switch relation.Domain.Kind() {
	case domain.RefID:
		out["domain"] = relation.Domain.ID()
	case domain.RefEntity:
		out["domain"] = domainToDTO(relation.Domain.Entity())
	default:
		out["domain"] = nil
	}
	return out
}

func keyToDTO(key *domain.LicenseKey) map[string]any {
	return map[string]any{
		"key":         key.Key,
		"type":        key.Type,
		"is_active":   key.Active,
		"issue_date":  key.IssueDate.Format(time.RFC3339),
		"expire_date": key.ExpireDate.Format(time.RFC3339),
		"created":     key.Created.Format(time.RFC3339),
		"updated":     key.Updated.Format(time.RFC3339),
	}
}

func domainToDTO(dom *domain.SiteDomain) map[string]any {
	out := map[string]any{
		"company_name": dom.CompanyName,
		"url":          dom.URL,
		"deactivated":  nil,
		"created":      dom.Created.Format(time.RFC3339),
		"updated":      dom.Updated.Format(time.RFC3339),
	}
	if dom.Deactivated != nil {
		out["deactivated"] = dom.Deactivated.Format(time.RFC3339)
	}
	return out
}

func salesToDTO(record *domain.SalesRecord) map[string]any {
	lines := make([]map[string]any, 0, len(record.Lines))
	for _, line := range record.Lines {
		lines = append(lines, map[string]any{
			"order_item_id":   line.OrderItemID,
			"order_item_name": line.OrderItemName,
			"order_id":        line.OrderID,
			"qty":             line.Quantity,
			"product_id":      line.ProductID,
			"variation_id":    line.VariationID,
			"line_subtotal":   line.LineSubtotal,
			"line_total":      line.LineTotal,
		})
	}
	out := map[string]any{
		"order_currency": record.OrderCurrency,
		"order_total":    record.OrderTotal,
		"payment_method": record.PaymentMethod,
		"post_status":    record.PostStatus,
		"sales_sub":      lines,
	}
	if record.Domain != nil {
		out["domain"] = domainToDTO(record.Domain)
	}
	return out
}

func productLogToDTO(entry *domain.ProductLog) map[string]any {
	out := map[string]any{
		"user_id":         entry.UserID,
		"customer_id":     entry.CustomerID,
		"product_id":      entry.ProductID,
		"variation_id":    entry.VariationID,
		"quantity":        entry.Quantity,
		"price":           entry.Price,
		"product_name":    entry.ProductName,
		"product_version": entry.ProductVersion,
		"term_name":       entry.TermName,
		"log_type":        string(entry.LogType),
	}
	if entry.Domain != nil {
		out["domain"] = domainToDTO(entry.Domain)
	}
	return out
}
