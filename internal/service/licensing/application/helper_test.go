package application

import (
	"context"
	"encoding/json"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"casbridge/internal/pkg/httpclient"
)

// 门面测试共用的 Executor 桩: 按入队顺序回放响应，并记录每次调用。

type execCall struct {
	Method string
	URL    string
	Body   any
}

type execReply struct {
	resp *httpclient.Response
	err  error
}

type stubExecutor struct {
	t       *testing.T
	calls   []execCall
	replies []execReply
}

func newStubExecutor(t *testing.T) *stubExecutor {
	return &stubExecutor{t: t}
}

func (s *stubExecutor) reply(resp *httpclient.Response, err error) *stubExecutor {
	s.replies = append(s.replies, execReply{resp: resp, err: err})
	return s
}

func (s *stubExecutor) Execute(
	_ context.Context,
	method, rawURL string,
	body any,
	_ []int,
	_ map[string]string,
) (*httpclient.Response, error) {
	s.calls = append(s.calls, execCall{Method: method, URL: rawURL, Body: body})
	if len(s.replies) == 0 {
		s.t.Fatalf("unexpected call: %s %s", method, rawURL)
	}
	next := s.replies[0]
	s.replies = s.replies[1:]
	return next.resp, next.err
}

// jsonResponse 从 JSON 文本构造一个已解码的响应。
func jsonResponse(t *testing.T, statusCode int, body string) *httpclient.Response {
	t.Helper()
	resp := &httpclient.Response{StatusCode: statusCode, Raw: body}
	if body != "" {
		if err := json.Unmarshal([]byte(body), &resp.JSON); err != nil {
			t.Fatalf("bad test fixture: %v", err)
		}
	}
	return resp
}

func testTracer() trace.Tracer {
	return otel.Tracer("test")
}

const testBaseURL = "http://cassandra.test/api/v1"

func testHosts() HostResolver {
	return StaticHost(testBaseURL)
}
