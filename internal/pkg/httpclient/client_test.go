package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func newTestClient() *Client {
	return NewClient(otel.Tracer("test"))
}

func TestExecuteDecodesJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write([]byte(`{"key": "ABCD", "count": 3}`))
	}))
	defer srv.Close()

	resp, err := newTestClient().Execute(context.Background(), http.MethodGet, srv.URL, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	obj, ok := resp.Object()
	require.True(t, ok)
	assert.Equal(t, "ABCD", obj["key"])
	assert.Equal(t, float64(3), obj["count"])
}

func TestExecuteNonJSONKeepsRawOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	resp, err := newTestClient().Execute(context.Background(), http.MethodGet, srv.URL, nil, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, resp.JSON)
	assert.Equal(t, "<html>maintenance</html>", resp.Raw)
}

func TestExecuteUndecodableJSONKeepsRaw(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"broken":`))
	}))
	defer srv.Close()

	resp, err := newTestClient().Execute(context.Background(), http.MethodGet, srv.URL, nil, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, resp.JSON)
	assert.Equal(t, `{"broken":`, resp.Raw)
}

func TestExecuteRejectsUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient().Execute(context.Background(), http.MethodGet, srv.URL, nil, nil, nil)
	var statusErr *UnexpectedStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "nope")
}

func TestExecuteAcceptsListedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	resp, err := newTestClient().Execute(context.Background(), http.MethodGet, srv.URL, nil,
		[]int{http.StatusOK, http.StatusNotFound}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExecuteEncodesBodyAsJSON(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	_, err := newTestClient().Execute(context.Background(), http.MethodPost, srv.URL,
		map[string]any{"key_value": "ABCD"}, []int{http.StatusCreated}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ABCD", got["key_value"])
}

func TestExecuteTransportError(t *testing.T) {
	// 端口没人监听
	_, err := newTestClient().Execute(context.Background(), http.MethodGet,
		"http://127.0.0.1:1/x", nil, nil, nil)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
}
