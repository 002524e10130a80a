package application

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casbridge/internal/service/licensing/domain/port"
)

// fakePosts 是 PostProvider 的内存桩。
type fakePosts struct {
	posts map[int64]*port.PostRecord
}

func (f *fakePosts) PostByID(_ context.Context, postID int64) (*port.PostRecord, error) {
	return f.posts[postID], nil
}

func TestPostSend(t *testing.T) {
	posts := &fakePosts{posts: map[int64]*port.PostRecord{
		9: {
			PostID: 9,
			Fields: map[string]any{
				"ID":         float64(9),
				"post_title": "Hello",
				"post_type":  "post",
			},
			Meta: `{"_thumbnail_id":"12"}`,
		},
	}}
	exec := newStubExecutor(t).reply(jsonResponse(t, http.StatusCreated, `{"id": 1234}`), nil)
	svc := NewPostService(exec, testHosts(), posts, testTracer())

	remoteID := svc.Send(context.Background(), "single", "ABCD", "https://shop.example.com", 7, 9)
	assert.Equal(t, int64(1234), remoteID)

	body, ok := exec.calls[0].Body.(map[string]any)
	require.True(t, ok)
	// 本地主键改名为 post_id，原始的 ID 列不外泄
	assert.Equal(t, int64(9), body["post_id"])
	assert.NotContains(t, body, "ID")
	assert.Equal(t, "Hello", body["post_title"])
	assert.Equal(t, `{"_thumbnail_id":"12"}`, body["postmeta"])
}

func TestPostSendUnknownPost(t *testing.T) {
	exec := newStubExecutor(t)
	svc := NewPostService(exec, testHosts(), &fakePosts{}, testTracer())

	assert.Zero(t, svc.Send(context.Background(), "single", "ABCD", "https://shop.example.com", 7, 9))
	assert.Empty(t, exec.calls)
}

func TestPostSendBadRemoteID(t *testing.T) {
	posts := &fakePosts{posts: map[int64]*port.PostRecord{
		9: {PostID: 9, Fields: map[string]any{}},
	}}
	exec := newStubExecutor(t).reply(jsonResponse(t, http.StatusCreated, `{"detail": "created"}`), nil)
	svc := NewPostService(exec, testHosts(), posts, testTracer())

	assert.Zero(t, svc.Send(context.Background(), "single", "ABCD", "https://shop.example.com", 7, 9))
}
