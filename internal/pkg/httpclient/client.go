// internal/pkg/httpclient/client.go

package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TransportError 表示请求根本没有到达(或没有返回自)远端主机:
// 网络错误、超时、DNS 失败。这类错误不做自动重试。
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport failed: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// UnexpectedStatusError 表示响应状态码不在本次调用的可接受集合里。
// 携带状态码和原始响应体文本，方便定位。
type UnexpectedStatusError struct {
	StatusCode int
	Body       string
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d, body: %s", e.StatusCode, e.Body)
}

// Response 是一次成功(状态码被接受)调用的结果。
// content type 为 JSON 时 JSON 字段持有解码后的无类型结构，否则为 nil。
type Response struct {
	StatusCode int
	JSON       any
	Raw        string
}

// Object 以对象形态返回解码后的响应体。
func (r *Response) Object() (map[string]any, bool) {
	obj, ok := r.JSON.(map[string]any)
	return obj, ok
}

// Client 是一个可追踪的、可注入的 HTTP 客户端。
// 所有发往 Cassandra 的调用都经由它执行。
type Client struct {
	Tracer     trace.Tracer
	HTTPClient *http.Client
}

// NewClient 创建一个新的客户端实例。
// 不设置 Timeout 字段，让请求完全受控于传入的 context。
func NewClient(tracer trace.Tracer) *Client {
	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
		},
	}
	return &Client{
		Tracer:     tracer,
		HTTPClient: httpClient,
	}
}

// Execute 执行一次 HTTP 调用并校验状态码。
//
// body 为 nil 时不带请求体；[]byte 原样发送；其余类型 JSON 编码后发送
// 并默认带上 application/json。accepts 为空时默认只接受 200。
//
// 失败形态:
//   - 传输层失败 → *TransportError
//   - 状态码不在 accepts 内 → *UnexpectedStatusError
func (c *Client) Execute(
	ctx context.Context,
	method, rawURL string,
	body any,
	accepts []int,
	headers map[string]string,
) (*Response, error) {

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	spanName := fmt.Sprintf("call-%s", strings.Split(parsedURL.Host, ":")[0])

	ctx, span := c.Tracer.Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	var reader io.Reader
	contentType := ""
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			span.RecordError(err)
			return nil, &TransportError{Err: err}
		}
		reader = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), rawURL, reader)
	if err != nil {
		span.RecordError(err)
		return nil, &TransportError{Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	span.SetAttributes(
		attribute.String("http.url", rawURL),
		attribute.String("http.method", strings.ToUpper(method)),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, &TransportError{Err: err}
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if len(accepts) == 0 {
		accepts = []int{http.StatusOK}
	}
	accepted := false
	for _, code := range accepts {
		if resp.StatusCode == code {
			accepted = true
			break
		}
	}
	if !accepted {
		err := &UnexpectedStatusError{StatusCode: resp.StatusCode, Body: string(rawBody)}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	out := &Response{StatusCode: resp.StatusCode, Raw: string(rawBody)}
	if isJSONContentType(resp.Header.Get("Content-Type")) && len(rawBody) > 0 {
		if err := json.Unmarshal(rawBody, &out.JSON); err != nil {
			// 声称是 JSON 却解不开: 保留原始文本，让映射层报结构错误
			out.JSON = nil
		}
	}
	return out, nil
}

func isJSONContentType(ct string) bool {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct) == "application/json"
}
