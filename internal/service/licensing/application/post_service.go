package application

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"casbridge/internal/pkg/constants"
	"casbridge/internal/service/licensing/domain"
	"casbridge/internal/service/licensing/domain/port"
)

// PostService 把本地文章镜像到远端。
type PostService struct {
	exec   Executor
	hosts  HostResolver
	posts  port.PostProvider
	tracer trace.Tracer
}

// NewPostService 创建一个新的文章镜像门面。
func NewPostService(exec Executor, hosts HostResolver, posts port.PostProvider, tracer trace.Tracer) *PostService {
	return &PostService{exec: exec, hosts: hosts, posts: posts, tracer: tracer}
}

// Send 镜像一篇文章，成功返回远端分配的文章 id，失败返回 0。
func (s *PostService) Send(
	ctx context.Context,
	keyType, keyValue, siteURL string,
	userID, postID int64,
) int64 {

	const op = "post.Send"
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()
	start := time.Now()

	if keyType == "" || keyValue == "" || siteURL == "" || postID <= 0 {
		logSwallowed(ctx, op, "", &domain.PreconditionError{
			Op: op, Reason: "key_type, key_value, site_url and a positive post_id are required",
		})
		return 0
	}
	if s.posts == nil {
		logSwallowed(ctx, op, "", &domain.PreconditionError{
			Op: op, Reason: "post provider is not configured",
		})
		return 0
	}

	post, err := s.posts.PostByID(ctx, postID)
	if err != nil || post == nil {
		logSwallowed(ctx, op, fmt.Sprintf("Post ID: %d", postID), err)
		return 0
	}

	body := map[string]any{
		"key_type":  keyType,
		"key_value": keyValue,
		"site_url":  siteURL,
		"user_id":   userID,
	}
	// posts 表的原始列直接并入请求体；本地主键改名为 post_id
	for k, v := range post.Fields {
		body[k] = v
	}
	body["post_id"] = post.PostID
	delete(body, "ID")
	body["postmeta"] = post.Meta

	resp, err := s.exec.Execute(
		ctx,
		http.MethodPost,
		s.hosts.BaseURL(ctx)+constants.PathPosts,
		body,
		[]int{http.StatusCreated},
		nil,
	)
	if err != nil {
		observe(op, outcomeFailure, start)
		logSwallowed(ctx, op, fmt.Sprintf("Post ID: %d", postID), err)
		return 0
	}

	obj, ok := resp.Object()
	if !ok {
		observe(op, outcomeFailure, start)
		logSwallowed(ctx, op, "", &domain.MalformedResponseError{
			Field: "(body)", Reason: "response body is not a JSON object",
		})
		return 0
	}
	idValue, ok := obj["id"]
	if !ok {
		observe(op, outcomeFailure, start)
		logSwallowed(ctx, op, "", &domain.MalformedResponseError{
			Field: "id", Reason: "required field is missing",
		})
		return 0
	}
	remoteID, ok := idValue.(float64)
	if !ok || remoteID <= 0 {
		observe(op, outcomeFailure, start)
		logSwallowed(ctx, op, "", &domain.MalformedResponseError{
			Field: "id", Reason: fmt.Sprintf("expected a positive integer, got %v", idValue),
		})
		return 0
	}

	observe(op, outcomeSuccess, start)
	return int64(remoteID)
}
