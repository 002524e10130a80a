package application

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"casbridge/internal/pkg/constants"
	"casbridge/internal/service/licensing/domain"
)

// AuthStatus 把"远端明确拒绝(403)"从错误里拆出来，作为合法的业务结果。
type AuthStatus int

const (
	AuthAuthorized AuthStatus = iota
	AuthDenied
)

// AuthResult 是一次激活/校验调用的完整结果。
// 403 时 Status 为 AuthDenied，响应体可映射时 Relation 仍会被填上。
type AuthResult struct {
	Status   AuthStatus
	Relation *domain.OrderItemRelation
}

// AuthService 封装键的激活、校验与签发。
// 所有远端失败都在这里记日志并吞掉，调用方只需判空。
type AuthService struct {
	exec   Executor
	hosts  HostResolver
	tracer trace.Tracer
}

// NewAuthService 创建一个新的认证门面。
func NewAuthService(exec Executor, hosts HostResolver, tracer trace.Tracer) *AuthService {
	return &AuthService{exec: exec, hosts: hosts, tracer: tracer}
}

// Activate 激活(或携带 activate=false 试探)一把键。
// 成功返回结果对象，任何失败返回 nil。
func (s *AuthService) Activate(
	ctx context.Context,
	keyType, keyValue, siteURL, companyName string,
	activate bool,
) *AuthResult {

	const op = "auth.Activate"

	if keyType == "" || keyValue == "" || siteURL == "" {
		logSwallowed(ctx, op, "", &domain.PreconditionError{
			Op: op, Reason: "key_type, key_value and site_url must be non-empty",
		})
		return nil
	}

	body := map[string]any{
		"key_type":     keyType,
		"key_value":    keyValue,
		"site_url":     siteURL,
		"company_name": companyName,
		"activate":     activate,
	}
	return s.postAuth(ctx, op, constants.PathAuthActivate, body)
}

// Verify 校验一把键是否仍然有效。
// 原实现对空的 key_type/key_value 直接短路返回 NULL，保持一致。
func (s *AuthService) Verify(ctx context.Context, keyType, keyValue, siteURL string) *AuthResult {
	const op = "auth.Verify"

	if keyType == "" || keyValue == "" {
		return nil
	}

	body := map[string]any{
		"key_type":  keyType,
		"key_value": keyValue,
		"site_url":  siteURL,
	}
	return s.postAuth(ctx, op, constants.PathAuthVerify, body)
}

// postAuth 是 Activate/Verify 共用的调用骨架: POST，接受 200 和 403。
// 403 不是错误，表示"未授权"这一合法结果。
func (s *AuthService) postAuth(ctx context.Context, op, path string, body map[string]any) *AuthResult {
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()
	start := time.Now()

	resp, err := s.exec.Execute(
		ctx,
		http.MethodPost,
		s.hosts.BaseURL(ctx)+path,
		body,
		[]int{http.StatusOK, http.StatusForbidden},
		nil,
	)
	if err != nil {
		observe(op, outcomeFailure, start)
		logSwallowed(ctx, op, "", err)
		return nil
	}

	result := &AuthResult{Status: AuthAuthorized}
	if resp.StatusCode == http.StatusForbidden {
		result.Status = AuthDenied
	}
	span.SetAttributes(attribute.Int("cassandra.status_code", resp.StatusCode))

	if obj, ok := resp.Object(); ok {
		relation, err := domain.MapOrderItemRelation(obj)
		switch {
		case err == nil:
			result.Relation = relation
		case result.Status == AuthAuthorized:
			// 200 却映射不了，按失败处理
			observe(op, outcomeFailure, start)
			logSwallowed(ctx, op, "", err)
			return nil
		}
		// 403 的响应体可有可无，映射不了就只返回状态
	} else if result.Status == AuthAuthorized {
		observe(op, outcomeFailure, start)
		logSwallowed(ctx, op, "", &domain.MalformedResponseError{
			Field: "(body)", Reason: "response body is not a JSON object",
		})
		return nil
	}

	if result.Status == AuthDenied {
		observe(op, outcomeDenied, start)
	} else {
		observe(op, outcomeSuccess, start)
	}
	return result
}

// Issue 为一条订单行签发一把新键。
//
// duration 是有效期；issueDate 为空表示今天。
// 成功返回新建的 OrderItemRelation，失败返回 nil。
func (s *AuthService) Issue(
	ctx context.Context,
	orderItemID int64,
	keyType string,
	userID int64,
	duration string,
	issueDate string,
) *domain.OrderItemRelation {

	const op = "auth.Issue"
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()
	start := time.Now()

	if orderItemID <= 0 || userID <= 0 || keyType == "" {
		logSwallowed(ctx, op, "", &domain.PreconditionError{
			Op: op, Reason: "order_item_id, user_id and key_type are required",
		})
		return nil
	}

	body := map[string]any{
		"order_item_id": orderItemID,
		"user_id":       userID,
		"key_type":      keyType,
		"duration":      duration,
	}
	if issueDate != "" {
		body["issue_date"] = issueDate
	} else {
		body["issue_date"] = nil
	}

	resp, err := s.exec.Execute(
		ctx,
		http.MethodPost,
		s.hosts.BaseURL(ctx)+constants.PathAuthIssue,
		body,
		[]int{http.StatusCreated},
		nil,
	)
	if err != nil {
		observe(op, outcomeFailure, start)
		logSwallowed(ctx, op, "", err)
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
	relation, err := domain.MapOrderItemRelation(obj)
	if err != nil {
		observe(op, outcomeFailure, start)
		logSwallowed(ctx, op, "", err)
		return nil
	}

	observe(op, outcomeSuccess, start)
	return relation
}
